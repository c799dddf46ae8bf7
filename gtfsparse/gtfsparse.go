// Package gtfsparse reads a GTFS feed's stops.txt, trips.txt and
// stop_times.txt and partitions its trips into "scientific routes" —
// equivalence classes of trips sharing the exact same stop sequence
// (C3). GTFS route ids, calendars and service dates are ignored;
// spec.md treats the entire feed's trips as one set.
package gtfsparse

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/ttpr0/transit-preprocess/model"
)

type gtfsStop struct {
	ID   string
	Name string
	Lat  float64
	Lon  float64
}

type gtfsStopTime struct {
	TripID           string
	ArrivalSeconds   int
	DepartureSeconds int
	StopID           string
	StopSequence     int
}

// Load reads folder/{stops,trips,stop_times}.txt and returns the
// partitioned, ranked GtfsParsedData.
func Load(folder string) (*model.GtfsParsedData, error) {
	stops, err := readStops(filepath.Join(folder, "stops.txt"))
	if err != nil {
		return nil, err
	}
	stopTimes, err := readStopTimes(filepath.Join(folder, "stop_times.txt"))
	if err != nil {
		return nil, err
	}
	tripIDs, err := readTripIDs(filepath.Join(folder, "trips.txt"))
	if err != nil {
		return nil, err
	}

	trips, tripCount, err := buildTrips(tripIDs, stopTimes)
	if err != nil {
		return nil, err
	}

	routes := partitionTripsInRoutes(trips)
	if err := checkRoutePartitionConsistency(routes, tripCount); err != nil {
		return nil, err
	}

	rankedRoutes, routeToRank := rankRoutes(routes)
	rankedStops, stopIDToRank, err := rankStops(routes, stops)
	if err != nil {
		return nil, err
	}

	return &model.GtfsParsedData{
		Routes:       routes,
		RankedRoutes: rankedRoutes,
		RouteToRank:  routeToRank,
		RankedStops:  rankedStops,
		StopIDToRank: stopIDToRank,
	}, nil
}

type orderedTrip struct {
	label  model.RouteLabel
	id     model.OrderableTripId
	events []model.StopEvent
}

// buildTrips assembles one orderedTrip per trip id, reading its stop
// sequence and events from stopTimes (ordered by stop_sequence).
func buildTrips(tripIDs []string, stopTimes map[string][]gtfsStopTime) ([]orderedTrip, int, error) {
	trips := make([]orderedTrip, 0, len(tripIDs))
	for _, tripID := range tripIDs {
		events := stopTimes[tripID]
		if len(events) < 2 {
			return nil, 0, fmt.Errorf("%w: trip %q has %d stop-times, want >= 2", ErrTripTooShort, tripID, len(events))
		}
		sort.Slice(events, func(i, j int) bool { return events[i].StopSequence < events[j].StopSequence })

		stopIDs := make([]string, len(events))
		stopEvents := make([]model.StopEvent, len(events))
		previousDeparture := -1
		for i, e := range events {
			if strings.Contains(e.StopID, "+") {
				return nil, 0, fmt.Errorf("%w: stop id %q", ErrStopIDDelimiterConflict, e.StopID)
			}
			if e.DepartureSeconds <= previousDeparture {
				return nil, 0, fmt.Errorf("%w: trip %q, stop_sequence %d", ErrStopTimesUnordered, tripID, e.StopSequence)
			}
			previousDeparture = e.DepartureSeconds
			stopIDs[i] = e.StopID
			stopEvents[i] = model.StopEvent{ArrivalSeconds: e.ArrivalSeconds, DepartureSeconds: e.DepartureSeconds}
		}

		trips = append(trips, orderedTrip{
			label: model.NewRouteLabel(stopIDs),
			id: model.OrderableTripId{
				DepartureSeconds: stopEvents[0].DepartureSeconds,
				TripID:           tripID,
			},
			events: stopEvents,
		})
	}
	return trips, len(tripIDs), nil
}

// partitionTripsInRoutes groups trips sharing a RouteLabel, within each
// route ordering trips by OrderableTripId (spec.md §4.3, "Ordering
// within a route").
func partitionTripsInRoutes(trips []orderedTrip) []model.LabeledRoute {
	index := map[model.RouteLabel]int{}
	var routes []model.LabeledRoute

	for _, trip := range trips {
		i, ok := index[trip.label]
		if !ok {
			routes = append(routes, model.LabeledRoute{Label: trip.label, Route: model.ParsedRoute{Label: trip.label}})
			i = len(routes) - 1
			index[trip.label] = i
		}
		routes[i].Route.Trips = append(routes[i].Route.Trips, model.TripEvents{TripID: trip.id, Events: trip.events})
	}

	for i := range routes {
		trips := routes[i].Route.Trips
		sort.SliceStable(trips, func(a, b int) bool { return trips[a].TripID.Less(trips[b].TripID) })
	}

	sort.Slice(routes, func(i, j int) bool { return routes[i].Label < routes[j].Label })
	return routes
}

// checkRoutePartitionConsistency verifies that every trip ended up in
// exactly one route (spec.md §4.3, "Consistency check").
func checkRoutePartitionConsistency(routes []model.LabeledRoute, tripCount int) error {
	total := 0
	for _, lr := range routes {
		total += len(lr.Route.Trips)
	}
	if total != tripCount {
		return fmt.Errorf("%w: partitioned %d trips across routes, want %d (feed trip count)", ErrRoutePartitionInconsistent, total, tripCount)
	}
	return nil
}

// rankRoutes ranks routes[] by the lexicographic order already imposed
// on it by partitionTripsInRoutes.
func rankRoutes(routes []model.LabeledRoute) ([]model.RouteLabel, map[model.RouteLabel]int) {
	ranked := make([]model.RouteLabel, len(routes))
	toRank := make(map[model.RouteLabel]int, len(routes))
	for i, lr := range routes {
		ranked[i] = lr.Label
		toRank[lr.Label] = i
	}
	return ranked, toRank
}

// rankStops collects every stop id referenced by at least one route
// label, in lexicographic order of stop id, and ranks them (spec.md
// §4.3, "Ranking"). Stops unused by any route are dropped entirely.
func rankStops(routes []model.LabeledRoute, stops map[string]gtfsStop) ([]model.ParsedStop, map[string]int, error) {
	used := map[string]bool{}
	for _, lr := range routes {
		for _, stopID := range lr.Label.StopIDs() {
			used[stopID] = true
		}
	}

	ids := make([]string, 0, len(used))
	for id := range used {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	ranked := make([]model.ParsedStop, 0, len(ids))
	toRank := make(map[string]int, len(ids))
	for i, id := range ids {
		stop, ok := stops[id]
		if !ok {
			return nil, nil, fmt.Errorf("%w: stop id %q", ErrUnknownStop, id)
		}
		ranked = append(ranked, model.NewParsedStop(stop.ID, stop.Name, stop.Lat, stop.Lon))
		toRank[id] = i
	}
	return ranked, toRank, nil
}

//*******************************************
// CSV ingestion
//*******************************************

func readStops(path string) (map[string]gtfsStop, error) {
	rows, err := readCSV(path)
	if err != nil {
		return nil, err
	}
	stops := make(map[string]gtfsStop, len(rows))
	for _, row := range rows {
		id, err := requireField(row, "stop_id", path)
		if err != nil {
			return nil, err
		}
		lat, err := requireFloat(row, "stop_lat", path)
		if err != nil {
			return nil, err
		}
		lon, err := requireFloat(row, "stop_lon", path)
		if err != nil {
			return nil, err
		}
		stops[id] = gtfsStop{ID: id, Name: row["stop_name"], Lat: model.TrimCoord(lat), Lon: model.TrimCoord(lon)}
	}
	return stops, nil
}

func readTripIDs(path string) ([]string, error) {
	rows, err := readCSV(path)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		id, err := requireField(row, "trip_id", path)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func readStopTimes(path string) (map[string][]gtfsStopTime, error) {
	rows, err := readCSV(path)
	if err != nil {
		return nil, err
	}
	byTrip := make(map[string][]gtfsStopTime, len(rows))
	for _, row := range rows {
		tripID, err := requireField(row, "trip_id", path)
		if err != nil {
			return nil, err
		}
		stopID, err := requireField(row, "stop_id", path)
		if err != nil {
			return nil, err
		}
		arrival, err := requireGTFSTime(row, "arrival_time", path)
		if err != nil {
			return nil, err
		}
		departure, err := requireGTFSTime(row, "departure_time", path)
		if err != nil {
			return nil, err
		}
		seq, err := requireInt(row, "stop_sequence", path)
		if err != nil {
			return nil, err
		}
		byTrip[tripID] = append(byTrip[tripID], gtfsStopTime{
			TripID:           tripID,
			ArrivalSeconds:   arrival,
			DepartureSeconds: departure,
			StopID:           stopID,
			StopSequence:     seq,
		})
	}
	return byTrip, nil
}

// readCSV reads a GTFS text file into a slice of header-keyed rows.
func readCSV(path string) ([]map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("gtfsparse: unable to read %q: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("gtfsparse: %q: missing header row: %w", path, err)
	}

	var rows []map[string]string
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("gtfsparse: %q: %w", path, err)
		}
		row := make(map[string]string, len(header))
		for i, col := range header {
			if i < len(record) {
				row[col] = record[i]
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func requireField(row map[string]string, field, path string) (string, error) {
	v, ok := row[field]
	if !ok || v == "" {
		return "", fmt.Errorf("%w: %q: field %q", ErrMissingField, path, field)
	}
	return v, nil
}

func requireFloat(row map[string]string, field, path string) (float64, error) {
	v, err := requireField(row, field, path)
	if err != nil {
		return 0, err
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: field %q = %q is not a number: %w", ErrInvalidField, path, field, v, err)
	}
	return f, nil
}

func requireInt(row map[string]string, field, path string) (int, error) {
	v, err := requireField(row, field, path)
	if err != nil {
		return 0, err
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: field %q = %q is not an integer: %w", ErrInvalidField, path, field, v, err)
	}
	return i, nil
}

// requireGTFSTime parses a GTFS HH:MM:SS time-of-day into seconds since
// midnight. Hours may exceed 23 for trips past midnight, per the GTFS
// spec.
func requireGTFSTime(row map[string]string, field, path string) (int, error) {
	v, err := requireField(row, field, path)
	if err != nil {
		return 0, err
	}
	parts := strings.Split(v, ":")
	if len(parts) != 3 {
		return 0, fmt.Errorf("%w: %q: field %q = %q is not HH:MM:SS", ErrInvalidField, path, field, v)
	}
	h, err1 := strconv.Atoi(parts[0])
	m, err2 := strconv.Atoi(parts[1])
	s, err3 := strconv.Atoi(parts[2])
	if err1 != nil || err2 != nil || err3 != nil {
		return 0, fmt.Errorf("%w: %q: field %q = %q is not HH:MM:SS", ErrInvalidField, path, field, v)
	}
	return h*3600 + m*60 + s, nil
}
