package vector

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/paulmach/orb"

	rferrors "github.com/matzehuels/rasterfold/pkg/errors"
)

const twoSquares = `{
  "type": "FeatureCollection",
  "features": [
    {"type": "Feature", "properties": {"value": 5, "name": "a"},
     "geometry": {"type": "Polygon", "coordinates": [[[0,0],[3,0],[3,3],[0,3],[0,0]]]}},
    {"type": "Feature", "properties": {"value": 10},
     "geometry": {"type": "Polygon", "coordinates": [[[1,1],[4,1],[4,4],[1,4],[1,1]]]}},
    {"type": "Feature", "properties": {"value": 1}, "geometry": null}
  ]
}`

func collect(t *testing.T, s Source) []Feature {
	t.Helper()
	var out []Feature
	for f, err := range s.Features() {
		if err != nil {
			t.Fatalf("Features() error = %v", err)
		}
		out = append(out, f)
	}
	return out
}

func TestReadGeoJSONFeatureCollection(t *testing.T) {
	src, err := ReadGeoJSON(strings.NewReader(twoSquares))
	if err != nil {
		t.Fatalf("ReadGeoJSON() error = %v", err)
	}
	defer src.Close()

	if src.Len() != 3 {
		t.Errorf("Len() = %d, want 3", src.Len())
	}
	if src.GeometryType() != "Polygon" {
		t.Errorf("GeometryType() = %q, want Polygon", src.GeometryType())
	}
	if src.CRS() != "" {
		t.Errorf("CRS() = %q, want empty", src.CRS())
	}

	feats := collect(t, src)
	if len(feats) != 3 {
		t.Fatalf("got %d features, want 3", len(feats))
	}
	for i, f := range feats {
		if f.Index != i {
			t.Errorf("feature %d Index = %d", i, f.Index)
		}
	}

	want := orb.Polygon{{{0, 0}, {3, 0}, {3, 3}, {0, 3}, {0, 0}}}
	if diff := cmp.Diff(want, feats[0].Geometry); diff != "" {
		t.Errorf("geometry mismatch (-want +got):\n%s", diff)
	}
	if v, err := feats[1].Float("value"); err != nil || v != 10 {
		t.Errorf("feature 1 value = %v, %v; want 10", v, err)
	}
	if !feats[2].IsEmpty() {
		t.Error("feature with null geometry should be empty")
	}
}

func TestReadGeoJSONSingleFeatureAndGeometry(t *testing.T) {
	tests := []struct {
		name  string
		doc   string
		gtype string
	}{
		{
			name:  "feature",
			doc:   `{"type":"Feature","properties":{"v":1},"geometry":{"type":"Point","coordinates":[1,2]}}`,
			gtype: "Point",
		},
		{
			name:  "bare geometry",
			doc:   `{"type":"LineString","coordinates":[[0,0],[2,2]]}`,
			gtype: "LineString",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, err := ReadGeoJSON(strings.NewReader(tt.doc))
			if err != nil {
				t.Fatalf("ReadGeoJSON() error = %v", err)
			}
			if src.Len() != 1 {
				t.Errorf("Len() = %d, want 1", src.Len())
			}
			if src.GeometryType() != tt.gtype {
				t.Errorf("GeometryType() = %q, want %q", src.GeometryType(), tt.gtype)
			}
		})
	}
}

func TestReadGeoJSONMixedTypes(t *testing.T) {
	doc := `{"type":"FeatureCollection","features":[
	  {"type":"Feature","properties":{},"geometry":{"type":"Point","coordinates":[0,0]}},
	  {"type":"Feature","properties":{},"geometry":{"type":"LineString","coordinates":[[0,0],[1,1]]}}]}`
	src, err := ReadGeoJSON(strings.NewReader(doc))
	if err != nil {
		t.Fatal(err)
	}
	if src.GeometryType() != "Unknown" {
		t.Errorf("GeometryType() = %q, want Unknown", src.GeometryType())
	}
}

func TestReadGeoJSONErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"not json", `{"type":`},
		{"no type", `{"features":[]}`},
		{"unknown geometry", `{"type":"Circle","coordinates":[0,0]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadGeoJSON(strings.NewReader(tt.doc))
			if !rferrors.Is(err, rferrors.ErrCodeIO) {
				t.Errorf("ReadGeoJSON() error = %v, want IO_ERROR", err)
			}
		})
	}
}

func TestFeaturesStopsEarly(t *testing.T) {
	src, err := ReadGeoJSON(strings.NewReader(twoSquares))
	if err != nil {
		t.Fatal(err)
	}
	n := 0
	for range src.Features() {
		n++
		break
	}
	if n != 1 {
		t.Errorf("iterated %d features after break, want 1", n)
	}
}

func TestOpenGeoJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "squares.geojson")
	if err := os.WriteFile(path, []byte(twoSquares), 0o644); err != nil {
		t.Fatal(err)
	}

	src, err := OpenGeoJSON(path)
	if err != nil {
		t.Fatalf("OpenGeoJSON() error = %v", err)
	}
	if src.Len() != 3 {
		t.Errorf("Len() = %d, want 3", src.Len())
	}

	_, err = OpenGeoJSON(filepath.Join(t.TempDir(), "missing.geojson"))
	if !rferrors.Is(err, rferrors.ErrCodeIO) {
		t.Errorf("OpenGeoJSON(missing) error = %v, want IO_ERROR", err)
	}
}
