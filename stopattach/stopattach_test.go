package stopattach

import (
	"errors"
	"testing"

	"github.com/paulmach/orb"

	"github.com/ttpr0/transit-preprocess/model"
)

func TestAttachFindsNearestNode(t *testing.T) {
	osmEdges := []model.Edge{
		{
			NodeFromID: "https://www.openstreetmap.org/node/1",
			NodeToID:   "https://www.openstreetmap.org/node/2",
			Polyline:   orb.LineString{{0, 0}, {1, 0}},
		},
		{
			NodeFromID: "https://www.openstreetmap.org/node/2",
			NodeToID:   "https://www.openstreetmap.org/node/3",
			Polyline:   orb.LineString{{1, 0}, {10, 10}},
		},
	}
	stops := []model.ParsedStop{
		{ID: "S1", Name: "Stop 1", Lat: 0.01, Lon: 1.01},
	}

	edges, attached, err := Attach(stops, osmEdges, 5.0)
	if err != nil {
		t.Fatalf("Attach: %v", err)
	}

	if len(edges) != len(osmEdges)+1 {
		t.Fatalf("len(edges) = %d; want %d", len(edges), len(osmEdges)+1)
	}
	if len(attached) != 1 {
		t.Fatalf("len(attached) = %d; want 1", len(attached))
	}

	stopEdge := edges[len(edges)-1]
	if stopEdge.NodeFromID != "S1" {
		t.Errorf("stopEdge.NodeFromID = %q; want \"S1\"", stopEdge.NodeFromID)
	}
	if stopEdge.NodeToID != "https://www.openstreetmap.org/node/2" {
		t.Errorf("stopEdge.NodeToID = %q; want node 2 (closest to stop at 1.01,0.01)", stopEdge.NodeToID)
	}
	if attached[0].ClosestNodeID != stopEdge.NodeToID {
		t.Errorf("attached[0].ClosestNodeID = %q; want %q", attached[0].ClosestNodeID, stopEdge.NodeToID)
	}
	if stopEdge.LengthMeters <= 0 {
		t.Errorf("stopEdge.LengthMeters = %v; want > 0", stopEdge.LengthMeters)
	}
}

func TestAttachPreservesOsmEdgesFirst(t *testing.T) {
	osmEdges := []model.Edge{
		{NodeFromID: "a", NodeToID: "b", Polyline: orb.LineString{{0, 0}, {1, 1}}},
	}
	stops := []model.ParsedStop{
		{ID: "S1", Lat: 0, Lon: 0},
		{ID: "S2", Lat: 1, Lon: 1},
	}

	edges, attached, err := Attach(stops, osmEdges, 5.0)
	if err != nil {
		t.Fatalf("Attach: %v", err)
	}

	if edges[0].NodeFromID != "a" || edges[0].NodeToID != "b" {
		t.Errorf("edges[0] = %v; want the original OSM edge first", edges[0])
	}
	if edges[1].NodeFromID != "S1" || edges[2].NodeFromID != "S2" {
		t.Errorf("stop edges out of order: %v, %v", edges[1], edges[2])
	}
	if attached[0].ID != "S1" || attached[1].ID != "S2" {
		t.Errorf("attached stops out of order: %v", attached)
	}
}

func TestAttachErrorsOnNoEdges(t *testing.T) {
	stops := []model.ParsedStop{{ID: "S1", Lat: 0, Lon: 0}}
	_, _, err := Attach(stops, nil, 5.0)
	if err == nil {
		t.Fatalf("Attach with no OSM edges: error = nil; want an error (nothing to attach to)")
	}
	if !errors.Is(err, ErrNoNearbyNode) {
		t.Errorf("Attach with no OSM edges: error = %v; want errors.Is(err, ErrNoNearbyNode)", err)
	}
}
