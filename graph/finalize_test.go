package graph

import (
	"errors"
	"testing"

	"github.com/ttpr0/transit-preprocess/model"
)

func sampleStopsAndEdges() ([]model.StopWithClosestNode, []model.Edge) {
	stops := []model.StopWithClosestNode{
		{Stop: model.Stop{ID: "S1", Lon: 0, Lat: 0}, ClosestNodeID: "N1", ClosestNodeURL: "N1"},
		{Stop: model.Stop{ID: "S2", Lon: 1, Lat: 1}, ClosestNodeID: "N2", ClosestNodeURL: "N2"},
	}
	edges := []model.Edge{
		{NodeFromID: "N1", NodeToID: "N2", Polyline: model.Polyline{{0.1, 0.1}, {0.9, 0.9}}, LengthMeters: 100, WeightSecs: 72},
		{NodeFromID: "S1", NodeToID: "N1", Polyline: model.Polyline{{0, 0}, {0.1, 0.1}}, LengthMeters: 10, WeightSecs: 7.2},
		{NodeFromID: "S2", NodeToID: "N2", Polyline: model.Polyline{{1, 1}, {0.9, 0.9}}, LengthMeters: 10, WeightSecs: 7.2},
	}
	return stops, edges
}

// TestFinalizeStopsOccupyLowRanks mirrors spec.md §8 scenario 5: with k
// stops, stop nodes must occupy ranks [0, k).
func TestFinalizeStopsOccupyLowRanks(t *testing.T) {
	stops, edges := sampleStopsAndEdges()

	g, err := Finalize(edges, stops, 5.0)
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}

	if len(g.Nodes) < 2 {
		t.Fatalf("len(Nodes) = %d; want >= 2", len(g.Nodes))
	}
	seenStopIDs := map[model.NodeID]bool{}
	for i := 0; i < len(stops); i++ {
		seenStopIDs[g.Nodes[i].ID] = true
	}
	for _, stop := range stops {
		if !seenStopIDs[model.NodeID(stop.ID)] {
			t.Errorf("stop %s not found among ranks [0, %d)", stop.ID, len(stops))
		}
	}
}

// TestFinalizeMirrorsEveryEdge confirms the bidirectional-mirror
// invariant: edge count doubles, and each original edge has a reverse
// counterpart with identical length/weight and reversed polyline.
func TestFinalizeMirrorsEveryEdge(t *testing.T) {
	stops, edges := sampleStopsAndEdges()

	g, err := Finalize(edges, stops, 5.0)
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}

	if len(g.Edges) != 2*len(edges) {
		t.Fatalf("len(Edges) = %d; want %d", len(g.Edges), 2*len(edges))
	}

	for _, orig := range edges {
		found := false
		for _, e := range g.Edges {
			if e.NodeFromID == orig.NodeToID && e.NodeToID == orig.NodeFromID &&
				e.LengthMeters == orig.LengthMeters && e.WeightSecs == orig.WeightSecs {
				if len(e.Polyline) == len(orig.Polyline) {
					ok := true
					for i := range e.Polyline {
						if e.Polyline[i] != orig.Polyline[len(orig.Polyline)-1-i] {
							ok = false
						}
					}
					if ok {
						found = true
					}
				}
			}
		}
		if !found {
			t.Errorf("no reverse mirror found for edge %s->%s", orig.NodeFromID, orig.NodeToID)
		}
	}
}

func TestFinalizeAdjacencyConsistency(t *testing.T) {
	stops, edges := sampleStopsAndEdges()

	g, err := Finalize(edges, stops, 5.0)
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}

	if len(g.NodeToOutEdges) != len(g.Nodes) {
		t.Fatalf("len(NodeToOutEdges) = %d; want %d (len(Nodes))", len(g.NodeToOutEdges), len(g.Nodes))
	}

	for rank, outEdges := range g.NodeToOutEdges {
		fromNode := g.Nodes[rank]
		for _, idx := range outEdges {
			if g.Edges[idx].NodeFromID != fromNode.ID {
				t.Errorf("NodeToOutEdges[%d] contains edge %d whose NodeFromID is %s, want %s",
					rank, idx, g.Edges[idx].NodeFromID, fromNode.ID)
			}
		}
	}
}

func TestFinalizeRejectsEmptyPolyline(t *testing.T) {
	stops, edges := sampleStopsAndEdges()
	edges[0].Polyline = nil

	_, err := Finalize(edges, stops, 5.0)
	if err == nil {
		t.Fatalf("Finalize with an empty polyline: error = nil; want an error")
	}
	if !errors.Is(err, ErrEmptyPolyline) {
		t.Errorf("Finalize with an empty polyline: error = %v; want errors.Is(err, ErrEmptyPolyline)", err)
	}
}
