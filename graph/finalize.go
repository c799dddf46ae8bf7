// Package graph assigns dense node ranks, mirrors every edge into its
// reverse, builds the rank-indexed adjacency and checks the result for
// consistency - turning C2+C4's unranked edge list into the finalized
// WalkingGraph downstream ULTRA/HL-UW consumers require (C5).
package graph

import (
	"fmt"
	"sort"

	"github.com/ttpr0/transit-preprocess/model"
)

// Finalize ranks every node referenced by edges (stops first, so stops
// occupy ranks [0, len(stops)) as ULTRA/HL-UW requires), mirrors each
// edge into a reverse edge, and builds the dense out-edge adjacency.
func Finalize(edges []model.Edge, stops []model.StopWithClosestNode, walkspeedKmPerHour float64) (*model.WalkingGraph, error) {
	rankOf, nodeOrder := rankNodes(edges, stops)

	bidirectional := addReversedEdges(edges)

	nodes := make([]model.Node, len(nodeOrder))
	for id, rank := range rankOf {
		nodes[rank] = model.Node{ID: id, Rank: rank, Ranked: true}
	}
	for i, e := range bidirectional {
		if len(e.Polyline) == 0 {
			return nil, fmt.Errorf("%w: edge %d (%s -> %s)", ErrEmptyPolyline, i, e.NodeFromID, e.NodeToID)
		}
		nodes[rankOf[e.NodeFromID]].Location = e.Polyline[0]
		nodes[rankOf[e.NodeToID]].Location = e.Polyline[len(e.Polyline)-1]
	}

	adjacency := mapNodesToOutEdges(bidirectional, rankOf, len(nodeOrder))

	if err := checkStructuresConsistency(bidirectional, rankOf, adjacency); err != nil {
		return nil, err
	}

	g := &model.WalkingGraph{
		Nodes:              nodes,
		Edges:              bidirectional,
		NodeToOutEdges:     adjacency,
		Stops:              stops,
		WalkspeedKmPerHour: walkspeedKmPerHour,
	}
	return g, nil
}

// rankNodes assigns every node referenced by edges a dense rank,
// stops first. Returns the rank-by-id map and the ids in rank order.
func rankNodes(edges []model.Edge, stops []model.StopWithClosestNode) (map[model.NodeID]int, []model.NodeID) {
	rankOf := make(map[model.NodeID]int, len(edges)*2)
	order := make([]model.NodeID, 0, len(edges)*2)

	assign := func(id model.NodeID) {
		if _, ok := rankOf[id]; ok {
			return
		}
		rankOf[id] = len(order)
		order = append(order, id)
	}

	for _, stop := range stops {
		assign(model.NodeID(stop.ID))
	}
	for _, e := range edges {
		assign(e.NodeFromID)
		assign(e.NodeToID)
	}

	return rankOf, order
}

// addReversedEdges doubles edges: for every edge it appends a mirror
// with swapped endpoints, reversed polyline, and identical
// length/weight.
func addReversedEdges(edges []model.Edge) []model.Edge {
	bidirectional := make([]model.Edge, 0, len(edges)*2)
	bidirectional = append(bidirectional, edges...)
	for _, e := range edges {
		reversed := make(model.Polyline, len(e.Polyline))
		for i, pt := range e.Polyline {
			reversed[len(e.Polyline)-1-i] = pt
		}
		bidirectional = append(bidirectional, model.Edge{
			NodeFromID:   e.NodeToID,
			NodeToID:     e.NodeFromID,
			Polyline:     reversed,
			LengthMeters: e.LengthMeters,
			WeightSecs:   e.WeightSecs,
		})
	}
	return bidirectional
}

// mapNodesToOutEdges builds the dense node-to-out-edges adjacency: for
// rank r, adjacency[r] lists the indices into edges of r's out-edges.
func mapNodesToOutEdges(edges []model.Edge, rankOf map[model.NodeID]int, nodeCount int) [][]int {
	adjacency := make([][]int, nodeCount)
	for i, e := range edges {
		rank := rankOf[e.NodeFromID]
		adjacency[rank] = append(adjacency[rank], i)
	}
	return adjacency
}

// checkStructuresConsistency verifies that the set of ranks referenced
// by edges equals the set of ranks that have adjacency entries, in
// both directions.
func checkStructuresConsistency(edges []model.Edge, rankOf map[model.NodeID]int, adjacency [][]int) error {
	fromEdges := map[int]bool{}
	for _, e := range edges {
		fromEdges[rankOf[e.NodeFromID]] = true
		fromEdges[rankOf[e.NodeToID]] = true
	}

	fromAdjacency := map[int]bool{}
	for rank := range adjacency {
		fromAdjacency[rank] = true
	}

	if len(fromEdges) != len(fromAdjacency) {
		return inconsistencyError(fromEdges, fromAdjacency)
	}
	for rank := range fromEdges {
		if !fromAdjacency[rank] {
			return inconsistencyError(fromEdges, fromAdjacency)
		}
	}
	return nil
}

func inconsistencyError(fromEdges, fromAdjacency map[int]bool) error {
	missing := make([]int, 0)
	for rank := range fromEdges {
		if !fromAdjacency[rank] {
			missing = append(missing, rank)
		}
	}
	sort.Ints(missing)
	return fmt.Errorf("%w: %d ranks referenced by edges, %d ranks in adjacency, missing %v",
		ErrRankConsistency, len(fromEdges), len(fromAdjacency), missing)
}
