// Package model holds the shared data-model types of the preprocessing
// pipeline: locations, polylines, edges, stops, and the GTFS and graph
// structures every other package reads or produces.
//
// Edges are id-based rather than embedding full node values (see
// SPEC_FULL.md §9, "owned-vs-borrowed node data") — a node's rank lives in the
// dense store built by the graph package, not on the edge itself, so
// there is no "unranked" sentinel to forget to check.
package model

import (
	"math"
	"strconv"

	"github.com/paulmach/orb"
)

// Location is a (lon, lat) pair, WGS-84.
type Location = orb.Point

// Polyline is a non-empty ordered sequence of Locations; its first and
// last points are an edge's endpoints.
type Polyline = orb.LineString

// NodeID is the canonical string identity of an OSM node or a GTFS
// stop: for OSM nodes this is "https://www.openstreetmap.org/node/<id>";
// for stops it is the GTFS stop id verbatim.
type NodeID string

// OSMNodeURL builds the canonical NodeId form for an OSM node id.
func OSMNodeURL(osmID int64) NodeID {
	return NodeID("https://www.openstreetmap.org/node/" + strconv.FormatInt(osmID, 10))
}

// Node is a graph vertex: its location and, once ranked by the graph
// package, its dense rank. A Node with Ranked == false has not yet gone
// through Finalize.
type Node struct {
	ID       NodeID
	Location Location
	Rank     int
	Ranked   bool
}

// URL is the canonical OSM URL form of the node id; for stop nodes this
// is just the stop id, since stops have no OSM presence.
func (n Node) URL() NodeID {
	return n.ID
}

// Edge is a directed edge between two nodes, carrying the polyline
// geometry that produced its length and weight.
//
// Invariants: Polyline.Front() == the location of NodeFromID's node,
// Polyline.Back() == the location of NodeToID's node, LengthMeters ==
// haversine_sum(Polyline), WeightSecs == LengthMeters / walkspeed.
type Edge struct {
	NodeFromID   NodeID
	NodeToID     NodeID
	Polyline     Polyline
	LengthMeters float64
	WeightSecs   float64
}

// Equal reports componentwise equality, as required by spec.md §3.
func (e Edge) Equal(o Edge) bool {
	if e.NodeFromID != o.NodeFromID || e.NodeToID != o.NodeToID {
		return false
	}
	if len(e.Polyline) != len(o.Polyline) {
		return false
	}
	for i := range e.Polyline {
		if !pointsEqual(e.Polyline[i], o.Polyline[i]) {
			return false
		}
	}
	return floatsEqual(e.LengthMeters, o.LengthMeters) && floatsEqual(e.WeightSecs, o.WeightSecs)
}

const coordEpsilon = 1e-9

func pointsEqual(a, b Location) bool {
	return absf(a[0]-b[0]) < coordEpsilon && absf(a[1]-b[1]) < coordEpsilon
}

func floatsEqual(a, b float64) bool {
	return absf(a-b) < 1e-6
}

func absf(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// coordTrimFactor matches the original's trimming_factor: coordinates
// are rounded to 9 decimal places so that a JSON marshal/unmarshal
// round-trip is bit-identical (spec.md §3); at this precision the
// rounding has no visible effect on the coordinate itself.
const coordTrimFactor = 1e9

// TrimCoord rounds a lon/lat value to 9 decimal places. Every Stop must
// be built with trimmed coordinates (spec.md §3) so callers constructing
// one from a raw source (CSV, JSON, ...) should run both Lon and Lat
// through this first.
func TrimCoord(x float64) float64 {
	return math.Round(x*coordTrimFactor) / coordTrimFactor
}

// Stop is a GTFS stop trimmed to 9 decimal places on ingestion so JSON
// round-trips are bit-identical (spec.md §3).
type Stop struct {
	ID   string
	Name string
	Lon  float64
	Lat  float64
}

// NewStop builds a Stop with Lon/Lat trimmed via TrimCoord.
func NewStop(id, name string, lon, lat float64) Stop {
	return Stop{ID: id, Name: name, Lon: TrimCoord(lon), Lat: TrimCoord(lat)}
}

// Equal uses exact string comparison for id/name and epsilon comparison
// for coordinates, per spec.md §3.
func (s Stop) Equal(o Stop) bool {
	return s.ID == o.ID && s.Name == o.Name && pointsEqual(Location{s.Lon, s.Lat}, Location{o.Lon, o.Lat})
}

// StopWithClosestNode augments a Stop with the OSM node it was attached
// to during stop attachment (C4).
type StopWithClosestNode struct {
	Stop
	ClosestNodeID  NodeID
	ClosestNodeURL NodeID
}
