package serialize

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/ttpr0/transit-preprocess/model"
)

// gtfsDocument is the gtfs.json wire shape: ranked_routes/ranked_stops
// are plain arrays, but routes (and each route's trips) are encoded as
// arrays of [key, value] pairs to preserve map order through JSON,
// which has no ordered-map type (spec.md §4.6).
type gtfsDocument struct {
	RankedRoutes []string          `json:"ranked_routes"`
	RankedStops  []gtfsStopJSON    `json:"ranked_stops"`
	Routes       []json.RawMessage `json:"routes"`
}

type gtfsStopJSON struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// WriteGTFSJSON writes data to path in the gtfs.json shape.
func WriteGTFSJSON(path string, data *model.GtfsParsedData) error {
	doc := gtfsDocument{
		RankedRoutes: make([]string, len(data.RankedRoutes)),
		RankedStops:  make([]gtfsStopJSON, len(data.RankedStops)),
		Routes:       make([]json.RawMessage, len(data.Routes)),
	}
	for i, label := range data.RankedRoutes {
		doc.RankedRoutes[i] = string(label)
	}
	for i, s := range data.RankedStops {
		doc.RankedStops[i] = gtfsStopJSON{ID: s.ID, Name: s.Name, Latitude: s.Lat, Longitude: s.Lon}
	}
	for i, lr := range data.Routes {
		raw, err := marshalRoutePair(lr)
		if err != nil {
			return fmt.Errorf("serialize: marshaling route %q: %w", lr.Label, err)
		}
		doc.Routes[i] = raw
	}

	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("serialize: marshaling gtfs.json: %w", err)
	}
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return fmt.Errorf("serialize: writing %q: %w", path, err)
	}
	return nil
}

// marshalRoutePair encodes one [label, trips] pair; trips is itself an
// array of [[dep_seconds, trip_id], [[arr, dep], ...]] pairs.
func marshalRoutePair(lr model.LabeledRoute) (json.RawMessage, error) {
	trips := make([]json.RawMessage, len(lr.Route.Trips))
	for i, t := range lr.Route.Trips {
		events := make([][2]int, len(t.Events))
		for j, ev := range t.Events {
			events[j] = [2]int{ev.ArrivalSeconds, ev.DepartureSeconds}
		}
		tripKey := []interface{}{t.TripID.DepartureSeconds, t.TripID.TripID}
		pair := []interface{}{tripKey, events}
		raw, err := json.Marshal(pair)
		if err != nil {
			return nil, err
		}
		trips[i] = raw
	}
	return json.Marshal([]interface{}{string(lr.Label), trips})
}

// ReadGTFSJSON re-parses a gtfs.json document, asserting every
// required field is present and correctly shaped.
func ReadGTFSJSON(path string) (*model.GtfsParsedData, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("serialize: reading %q: %w", path, err)
	}

	var doc gtfsDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: %q is not a valid gtfs.json document: %v", ErrInvalidDocument, path, err)
	}

	data := &model.GtfsParsedData{
		RankedRoutes: make([]model.RouteLabel, len(doc.RankedRoutes)),
		RouteToRank:  make(map[model.RouteLabel]int, len(doc.RankedRoutes)),
		RankedStops:  make([]model.ParsedStop, len(doc.RankedStops)),
		StopIDToRank: make(map[string]int, len(doc.RankedStops)),
		Routes:       make([]model.LabeledRoute, len(doc.Routes)),
	}
	for i, label := range doc.RankedRoutes {
		data.RankedRoutes[i] = model.RouteLabel(label)
		data.RouteToRank[model.RouteLabel(label)] = i
	}
	for i, s := range doc.RankedStops {
		data.RankedStops[i] = model.NewParsedStop(s.ID, s.Name, s.Latitude, s.Longitude)
		data.StopIDToRank[s.ID] = i
	}
	for i, raw := range doc.Routes {
		lr, err := unmarshalRoutePair(raw, path, i)
		if err != nil {
			return nil, err
		}
		data.Routes[i] = lr
	}

	return data, nil
}

func unmarshalRoutePair(raw json.RawMessage, path string, routeIndex int) (model.LabeledRoute, error) {
	var pair []json.RawMessage
	if err := json.Unmarshal(raw, &pair); err != nil || len(pair) != 2 {
		return model.LabeledRoute{}, fmt.Errorf("%w: %q routes[%d] is not a 2-element [label, trips] pair", ErrInvalidDocument, path, routeIndex)
	}

	var label string
	if err := json.Unmarshal(pair[0], &label); err != nil {
		return model.LabeledRoute{}, fmt.Errorf("%w: %q routes[%d][0] is not a string label", ErrInvalidDocument, path, routeIndex)
	}

	var rawTrips []json.RawMessage
	if err := json.Unmarshal(pair[1], &rawTrips); err != nil {
		return model.LabeledRoute{}, fmt.Errorf("%w: %q routes[%d][1] is not a trips array", ErrInvalidDocument, path, routeIndex)
	}

	trips := make([]model.TripEvents, len(rawTrips))
	for i, rawTrip := range rawTrips {
		te, err := unmarshalTripPair(rawTrip, path, routeIndex, i)
		if err != nil {
			return model.LabeledRoute{}, err
		}
		trips[i] = te
	}

	routeLabel := model.RouteLabel(label)
	return model.LabeledRoute{
		Label: routeLabel,
		Route: model.ParsedRoute{Label: routeLabel, Trips: trips},
	}, nil
}

func unmarshalTripPair(raw json.RawMessage, path string, routeIndex, tripIndex int) (model.TripEvents, error) {
	var pair []json.RawMessage
	if err := json.Unmarshal(raw, &pair); err != nil || len(pair) != 2 {
		return model.TripEvents{}, fmt.Errorf("%w: %q routes[%d][1][%d] is not a 2-element [tripid, events] pair", ErrInvalidDocument, path, routeIndex, tripIndex)
	}

	var tripKey []json.RawMessage
	if err := json.Unmarshal(pair[0], &tripKey); err != nil || len(tripKey) != 2 {
		return model.TripEvents{}, fmt.Errorf("%w: %q routes[%d][1][%d][0] is not a 2-element [dep_seconds, trip_id] pair", ErrInvalidDocument, path, routeIndex, tripIndex)
	}
	var depSeconds int
	var tripID string
	if err := json.Unmarshal(tripKey[0], &depSeconds); err != nil {
		return model.TripEvents{}, fmt.Errorf("%w: %q routes[%d][1][%d][0][0] is not an int", ErrInvalidDocument, path, routeIndex, tripIndex)
	}
	if err := json.Unmarshal(tripKey[1], &tripID); err != nil {
		return model.TripEvents{}, fmt.Errorf("%w: %q routes[%d][1][%d][0][1] is not a string", ErrInvalidDocument, path, routeIndex, tripIndex)
	}

	var rawEvents [][2]int
	if err := json.Unmarshal(pair[1], &rawEvents); err != nil {
		return model.TripEvents{}, fmt.Errorf("%w: %q routes[%d][1][%d][1] is not an array of [arr, dep] pairs", ErrInvalidDocument, path, routeIndex, tripIndex)
	}
	events := make([]model.StopEvent, len(rawEvents))
	for i, ev := range rawEvents {
		events[i] = model.StopEvent{ArrivalSeconds: ev[0], DepartureSeconds: ev[1]}
	}

	return model.TripEvents{
		TripID: model.OrderableTripId{DepartureSeconds: depSeconds, TripID: tripID},
		Events: events,
	}, nil
}
