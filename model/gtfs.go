package model

import "strings"

// RouteLabel is the '+'-joined concatenation of a scientific route's
// stop ids — the equivalence-class identity of spec.md's "scientific
// route" (distinct from a GTFS route_id).
type RouteLabel string

// NewRouteLabel builds a RouteLabel from an ordered stop-id sequence.
// Precondition: no stopID contains '+' (spec.md §3).
func NewRouteLabel(stopIDs []string) RouteLabel {
	return RouteLabel(strings.Join(stopIDs, "+"))
}

// StopIDs splits the label back into its stop-id sequence.
func (l RouteLabel) StopIDs() []string {
	return strings.Split(string(l), "+")
}

// OrderableTripId orders trips within a route: earliest first-stop
// departure first, ties broken by trip id.
type OrderableTripId struct {
	DepartureSeconds int
	TripID           string
}

// Less gives the lexicographic order on (DepartureSeconds, TripID).
func (a OrderableTripId) Less(b OrderableTripId) bool {
	if a.DepartureSeconds != b.DepartureSeconds {
		return a.DepartureSeconds < b.DepartureSeconds
	}
	return a.TripID < b.TripID
}

// StopEvent is a trip's arrival/departure at one stop of its route.
type StopEvent struct {
	ArrivalSeconds   int
	DepartureSeconds int
}

// TripEvents associates an OrderableTripId with its ordered stop events;
// len(Events) always equals the route's stop count.
type TripEvents struct {
	TripID OrderableTripId
	Events []StopEvent
}

// ParsedRoute is a scientific route: its label plus its trips, ordered
// by OrderableTripId (spec.md §3 requires the ordering to survive
// serialization, so Trips is a slice, not a map).
type ParsedRoute struct {
	Label RouteLabel
	Trips []TripEvents
}

// ParsedStop is a GTFS stop used by at least one ParsedRoute.
type ParsedStop struct {
	ID   string
	Name string
	Lat  float64
	Lon  float64
}

// NewParsedStop builds a ParsedStop with Lat/Lon trimmed via TrimCoord,
// per spec.md §3.
func NewParsedStop(id, name string, lat, lon float64) ParsedStop {
	return ParsedStop{ID: id, Name: name, Lat: TrimCoord(lat), Lon: TrimCoord(lon)}
}

// LabeledRoute pairs a route label with its route, preserving iteration
// order when GtfsParsedData.Routes is serialized (spec.md §4.6: "routes
// serialized as an array of [label, trips] pairs to preserve map
// order"). Storing this as a slice rather than a map sidesteps Go's
// unordered map iteration entirely instead of working around it.
type LabeledRoute struct {
	Label RouteLabel
	Route ParsedRoute
}

// GtfsParsedData is the full output of the GTFS route partitioner (C3).
type GtfsParsedData struct {
	// Routes is ordered by RouteLabel's lexicographic order on the
	// label string, which is also rank order.
	Routes []LabeledRoute
	// RankedRoutes[i] is the RouteLabel of rank i.
	RankedRoutes []RouteLabel
	// RouteToRank is the reverse mapping of RankedRoutes.
	RouteToRank map[RouteLabel]int
	// RankedStops[i] is the ParsedStop of rank i.
	RankedStops []ParsedStop
	// StopIDToRank is the reverse mapping of RankedStops.
	StopIDToRank map[string]int
}

// RouteByLabel finds a route by label in Routes, or returns false.
func (d *GtfsParsedData) RouteByLabel(label RouteLabel) (ParsedRoute, bool) {
	for _, lr := range d.Routes {
		if lr.Label == label {
			return lr.Route, true
		}
	}
	return ParsedRoute{}, false
}
