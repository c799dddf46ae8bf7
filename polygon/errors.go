package polygon

import "errors"

// ErrInvalidPolygon is returned when the file at a given path fails to
// parse as the GeoJSON Polygon feature Load expects.
var ErrInvalidPolygon = errors.New("polygon: invalid polygon document")
