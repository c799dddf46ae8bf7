package model

// WalkingGraph is the finalized, ranked, bidirectional walking graph
// produced by the graph finalizer (C5).
type WalkingGraph struct {
	// Nodes is the dense node store, indexed by rank. Stops occupy
	// ranks [0, len(Stops)).
	Nodes []Node
	// Edges is the bidirectional edge list: for every edge e at some
	// index, its mirror (swapped endpoints, reversed polyline, equal
	// length/weight) exists at another index.
	Edges []Edge
	// NodeToOutEdges[rank] lists the indices into Edges of rank's
	// out-edges. Indexed by rank, dense (vector-of-vectors, not a map
	// — see SPEC_FULL.md §9, "adjacency storage").
	NodeToOutEdges [][]int
	// Stops is the stop-attachment output, in rank order — Stops[i]
	// is the stop occupying rank i.
	Stops []StopWithClosestNode
	// WalkspeedKmPerHour is the walking speed used to compute every
	// edge's WeightSecs from its LengthMeters.
	WalkspeedKmPerHour float64
}
