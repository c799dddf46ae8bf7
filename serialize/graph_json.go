// Package serialize writes and re-parses the preprocessor's three
// output artifacts: the graph GeoJSON, the GTFS structured JSON, and
// the flat-text HL-UW files (C6).
package serialize

import (
	"fmt"
	"os"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/ttpr0/transit-preprocess/model"
)

// WriteGraphGeoJSON writes g's edges as a GeoJSON FeatureCollection of
// LineString features to path, one feature per edge, in edges order.
func WriteGraphGeoJSON(path string, g *model.WalkingGraph) error {
	ranks := make(map[model.NodeID]int, len(g.Nodes))
	for _, n := range g.Nodes {
		ranks[n.ID] = n.Rank
	}

	fc := geojson.NewFeatureCollection()
	for _, e := range g.Edges {
		f := geojson.NewFeature(orb.LineString(e.Polyline))
		f.Properties = geojson.Properties{
			"node_from":      string(e.NodeFromID),
			"node_to":        string(e.NodeToID),
			"node_from_rank": ranks[e.NodeFromID],
			"node_to_rank":   ranks[e.NodeToID],
			"node_from_url":  string(e.NodeFromID),
			"node_to_url":    string(e.NodeToID),
			"weight":         e.WeightSecs,
			"length_meters":  e.LengthMeters,
		}
		fc.Append(f)
	}

	data, err := fc.MarshalJSON()
	if err != nil {
		return fmt.Errorf("serialize: marshaling graph GeoJSON: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("serialize: writing %q: %w", path, err)
	}
	return nil
}

// ReadGraphGeoJSON re-parses a graph GeoJSON FeatureCollection back
// into the unranked edge list it was built from, asserting every
// required property is present and correctly typed.
func ReadGraphGeoJSON(path string) ([]model.Edge, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("serialize: reading %q: %w", path, err)
	}

	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %q is not a GeoJSON FeatureCollection: %v", ErrInvalidDocument, path, err)
	}

	edges := make([]model.Edge, 0, len(fc.Features))
	for i, f := range fc.Features {
		ls, ok := f.Geometry.(orb.LineString)
		if !ok {
			return nil, fmt.Errorf("%w: %q feature[%d].geometry.type is %q, want \"LineString\"", ErrInvalidDocument, path, i, f.Geometry.GeoJSONType())
		}

		nodeFrom, err := requireStringProp(f.Properties, "node_from", path, i)
		if err != nil {
			return nil, err
		}
		nodeTo, err := requireStringProp(f.Properties, "node_to", path, i)
		if err != nil {
			return nil, err
		}
		weight, err := requireFloatProp(f.Properties, "weight", path, i)
		if err != nil {
			return nil, err
		}
		length, err := requireFloatProp(f.Properties, "length_meters", path, i)
		if err != nil {
			return nil, err
		}

		edges = append(edges, model.Edge{
			NodeFromID:   model.NodeID(nodeFrom),
			NodeToID:     model.NodeID(nodeTo),
			Polyline:     model.Polyline(ls),
			LengthMeters: length,
			WeightSecs:   weight,
		})
	}
	return edges, nil
}

func requireStringProp(props geojson.Properties, key, path string, featureIndex int) (string, error) {
	v, ok := props[key]
	if !ok {
		return "", fmt.Errorf("%w: %q feature[%d].properties has no %q", ErrInvalidDocument, path, featureIndex, key)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%w: %q feature[%d].properties.%s is not a string", ErrInvalidDocument, path, featureIndex, key)
	}
	return s, nil
}

func requireFloatProp(props geojson.Properties, key, path string, featureIndex int) (float64, error) {
	v, ok := props[key]
	if !ok {
		return 0, fmt.Errorf("%w: %q feature[%d].properties has no %q", ErrInvalidDocument, path, featureIndex, key)
	}
	f, ok := v.(float64)
	if !ok {
		return 0, fmt.Errorf("%w: %q feature[%d].properties.%s is not a number", ErrInvalidDocument, path, featureIndex, key)
	}
	return f, nil
}

// WriteStopsGeoJSON writes stops as a GeoJSON FeatureCollection of
// Point features, for the HL-UW server's own use (spec.md §4.6).
func WriteStopsGeoJSON(path string, stops []model.StopWithClosestNode) error {
	fc := geojson.NewFeatureCollection()
	for _, s := range stops {
		f := geojson.NewFeature(orb.Point{s.Lon, s.Lat})
		f.Properties = geojson.Properties{
			"stop_id":          s.ID,
			"stop_name":        s.Name,
			"closest_node_id":  string(s.ClosestNodeID),
			"closest_node_url": string(s.ClosestNodeURL),
		}
		fc.Append(f)
	}

	data, err := fc.MarshalJSON()
	if err != nil {
		return fmt.Errorf("serialize: marshaling stops GeoJSON: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("serialize: writing %q: %w", path, err)
	}
	return nil
}
