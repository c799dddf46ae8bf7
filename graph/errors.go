package graph

import "errors"

// Sentinel errors for the failure classes this package can return.
var (
	ErrEmptyPolyline   = errors.New("graph: edge has an empty polyline")
	ErrRankConsistency = errors.New("graph: rank and adjacency structures are inconsistent")
)
