package serialize

import (
	"fmt"
	"os"

	"github.com/ttpr0/transit-preprocess/model"
)

// CheckGTFSRoundTrip re-reads the gtfs.json just written to path and
// re-writes it, failing if the byte output diverges (spec.md §8's
// round-trip property, checked eagerly as the original driver does).
func CheckGTFSRoundTrip(path string, data *model.GtfsParsedData) error {
	parsed, err := ReadGTFSJSON(path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRoundTrip, err)
	}
	recheckPath := path + ".roundtrip-check"
	defer os.Remove(recheckPath)
	if err := WriteGTFSJSON(recheckPath, parsed); err != nil {
		return fmt.Errorf("%w: %v", ErrRoundTrip, err)
	}
	if !sameFileContents(path, recheckPath) {
		return fmt.Errorf("%w: %q differs after a marshal/unmarshal/marshal cycle", ErrRoundTrip, path)
	}
	return nil
}

// CheckGraphRoundTrip mirrors CheckGTFSRoundTrip for walking_graph.json,
// comparing edges componentwise via model.Edge.Equal rather than
// requiring byte-identical GeoJSON (ReadGraphGeoJSON recovers only the
// edge list, not the node ranks the file also carries, so the file
// cannot be re-written from what it parses back).
func CheckGraphRoundTrip(path string, g *model.WalkingGraph) error {
	parsed, err := ReadGraphGeoJSON(path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRoundTrip, err)
	}
	if len(parsed) != len(g.Edges) {
		return fmt.Errorf("%w: %q: got %d edges back, want %d", ErrRoundTrip, path, len(parsed), len(g.Edges))
	}
	for i := range g.Edges {
		if !parsed[i].Equal(g.Edges[i]) {
			return fmt.Errorf("%w: %q: edge %d differs after round-trip", ErrRoundTrip, path, i)
		}
	}
	return nil
}

func sameFileContents(a, b string) bool {
	da, err := os.ReadFile(a)
	if err != nil {
		return false
	}
	db, err := os.ReadFile(b)
	if err != nil {
		return false
	}
	return string(da) == string(db)
}
