// Package polygon loads the optional GeoJSON filter polygon used by the
// OSM way-splitter (C2) to restrict which ways are kept.
package polygon

import (
	"fmt"
	"os"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"
)

// NoPolygon is the sentinel path value that disables polygon filtering.
const NoPolygon = "NONE"

// Load reads the polygon at path, or returns the empty polygon if path is
// the NoPolygon sentinel. The file must be a GeoJSON FeatureCollection
// whose first feature's geometry is a Polygon; only the outer ring is
// kept (spec.md §4.1 - "the first ring's coordinates form the polygon").
func Load(path string) (orb.Polygon, error) {
	if path == NoPolygon {
		return orb.Polygon{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("polygon: unable to read %q: %w", path, err)
	}

	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %q is not a GeoJSON FeatureCollection: %v", ErrInvalidPolygon, path, err)
	}
	if len(fc.Features) == 0 {
		return nil, fmt.Errorf("%w: %q has no features", ErrInvalidPolygon, path)
	}

	feature := fc.Features[0]
	poly, ok := feature.Geometry.(orb.Polygon)
	if !ok {
		return nil, fmt.Errorf("%w: %q feature[0].geometry.type is %q, want \"Polygon\"", ErrInvalidPolygon, path, feature.Geometry.GeoJSONType())
	}
	if len(poly) == 0 {
		return nil, fmt.Errorf("%w: %q feature[0].geometry has no rings", ErrInvalidPolygon, path)
	}

	return orb.Polygon{poly[0]}, nil
}

// IsEmpty reports whether p has no outer-ring points - an empty polygon
// matches every point (spec.md §4.1).
func IsEmpty(p orb.Polygon) bool {
	return len(p) == 0 || len(p[0]) == 0
}

// IsInside reports whether pt lies within p's outer ring, or true if p
// is empty.
func IsInside(p orb.Polygon, pt orb.Point) bool {
	if IsEmpty(p) {
		return true
	}
	return planar.PolygonContains(p, pt)
}
