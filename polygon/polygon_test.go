package polygon

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/paulmach/orb"
)

func TestLoadNoneSentinel(t *testing.T) {
	p, err := Load(NoPolygon)
	if err != nil {
		t.Fatalf("Load(NONE) error = %v", err)
	}
	if !IsEmpty(p) {
		t.Errorf("Load(NONE) = %v; want empty polygon", p)
	}
}

const squareGeoJSON = `{
  "type": "FeatureCollection",
  "features": [
    {
      "type": "Feature",
      "properties": {},
      "geometry": {
        "type": "Polygon",
        "coordinates": [
          [
            [0, 0],
            [0, 10],
            [10, 10],
            [10, 0],
            [0, 0]
          ]
        ]
      }
    }
  ]
}`

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "polygon.geojson")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestLoadSquare(t *testing.T) {
	path := writeFile(t, squareGeoJSON)

	p, err := Load(path)
	if err != nil {
		t.Fatalf("Load(%q) error = %v", path, err)
	}
	if IsEmpty(p) {
		t.Fatalf("Load(%q) = empty; want a square", path)
	}

	inside := orb.Point{5, 5}
	outside := orb.Point{20, 20}

	if !IsInside(p, inside) {
		t.Errorf("IsInside(%v) = false; want true", inside)
	}
	if IsInside(p, outside) {
		t.Errorf("IsInside(%v) = true; want false", outside)
	}
}

func TestIsInsideEmptyMatchesEverything(t *testing.T) {
	p := orb.Polygon{}
	if !IsInside(p, orb.Point{100, 100}) {
		t.Errorf("IsInside on empty polygon = false; want true")
	}
}

func TestLoadWrongGeometryType(t *testing.T) {
	path := writeFile(t, `{
		"type": "FeatureCollection",
		"features": [
			{"type": "Feature", "properties": {}, "geometry": {"type": "Point", "coordinates": [0, 0]}}
		]
	}`)

	_, err := Load(path)
	if err == nil {
		t.Fatalf("Load(%q) error = nil; want an error naming the geometry type", path)
	}
	if !errors.Is(err, ErrInvalidPolygon) {
		t.Errorf("Load(%q) error = %v; want errors.Is(err, ErrInvalidPolygon)", path, err)
	}
}

func TestLoadNoFeatures(t *testing.T) {
	path := writeFile(t, `{"type": "FeatureCollection", "features": []}`)

	_, err := Load(path)
	if err == nil {
		t.Fatalf("Load(%q) error = nil; want an error for empty features", path)
	}
	if !errors.Is(err, ErrInvalidPolygon) {
		t.Errorf("Load(%q) error = %v; want errors.Is(err, ErrInvalidPolygon)", path, err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.geojson")); err == nil {
		t.Errorf("Load(missing) error = nil; want an error")
	}
}
