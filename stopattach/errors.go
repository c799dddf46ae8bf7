package stopattach

import "errors"

// Sentinel errors for the failure classes this package can return.
var (
	ErrNoNearbyNode  = errors.New("stopattach: no OSM node found near stop")
	ErrEmptyPolyline = errors.New("stopattach: edge has an empty polyline")
)
