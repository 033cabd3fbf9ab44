package vector

import (
	"encoding/json"
	"testing"

	"github.com/paulmach/orb"

	rferrors "github.com/matzehuels/rasterfold/pkg/errors"
)

func TestFeatureFloat(t *testing.T) {
	f := Feature{
		Index: 3,
		Properties: map[string]any{
			"f64":    2.5,
			"f32":    float32(1.5),
			"i64":    int64(-7),
			"int":    42,
			"u8":     uint8(9),
			"number": json.Number("12.25"),
			"str":    "5",
			"flag":   true,
			"null":   nil,
		},
	}

	tests := []struct {
		field string
		want  float64
		code  rferrors.Code
	}{
		{"f64", 2.5, ""},
		{"f32", 1.5, ""},
		{"i64", -7, ""},
		{"int", 42, ""},
		{"u8", 9, ""},
		{"number", 12.25, ""},
		{"str", 0, rferrors.ErrCodeFieldNotNumeric},
		{"flag", 0, rferrors.ErrCodeFieldNotNumeric},
		{"null", 0, rferrors.ErrCodeFieldNotNumeric},
		{"missing", 0, rferrors.ErrCodeFieldNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			got, err := f.Float(tt.field)
			if tt.code != "" {
				if !rferrors.Is(err, tt.code) {
					t.Fatalf("Float(%q) error = %v, want code %v", tt.field, err, tt.code)
				}
				return
			}
			if err != nil {
				t.Fatalf("Float(%q) error = %v", tt.field, err)
			}
			if got != tt.want {
				t.Errorf("Float(%q) = %v, want %v", tt.field, got, tt.want)
			}
		})
	}
}

func TestFeatureFloatNilProperties(t *testing.T) {
	_, err := Feature{}.Float("value")
	if !rferrors.Is(err, rferrors.ErrCodeFieldNotFound) {
		t.Errorf("Float() error = %v, want FIELD_NOT_FOUND", err)
	}
}

func TestIsEmptyGeometry(t *testing.T) {
	tests := []struct {
		name string
		g    orb.Geometry
		want bool
	}{
		{"nil", nil, true},
		{"point", orb.Point{1, 2}, false},
		{"empty multipoint", orb.MultiPoint{}, true},
		{"empty linestring", orb.LineString{}, true},
		{"linestring", orb.LineString{{0, 0}, {1, 1}}, false},
		{"empty polygon", orb.Polygon{}, true},
		{"polygon with empty shell", orb.Polygon{orb.Ring{}}, true},
		{"polygon", orb.Polygon{{{0, 0}, {1, 0}, {1, 1}, {0, 0}}}, false},
		{"multipolygon of empties", orb.MultiPolygon{orb.Polygon{}}, true},
		{"empty collection", orb.Collection{}, true},
		{"nested collection", orb.Collection{orb.Collection{orb.Point{0, 0}}}, false},
		{"multilinestring of empties", orb.MultiLineString{orb.LineString{}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsEmptyGeometry(tt.g); got != tt.want {
				t.Errorf("IsEmptyGeometry() = %v, want %v", got, tt.want)
			}
		})
	}
}
