// Package vector defines the feature model consumed by the fold loop and a
// GeoJSON reader for it.
//
// Geometries are held as orb geometries so that backends can exchange them
// without sharing a geometry library: the GDAL backend converts to and from
// OGR through WKB, the native burner walks the orb types directly.
package vector

import (
	"encoding/json"
	"iter"

	"github.com/paulmach/orb"

	rferrors "github.com/matzehuels/rasterfold/pkg/errors"
)

// Feature is one vector record.
type Feature struct {
	// Index is the 0-based position of the feature in source order.
	Index int
	// Geometry may be nil for features without geometry.
	Geometry orb.Geometry
	// Properties maps field names to int64, float64, string, bool or nil.
	Properties map[string]any
}

// Float returns the numeric value of field. Missing fields fail with
// FIELD_NOT_FOUND; null, boolean and string values fail with
// FIELD_NOT_NUMERIC.
func (f Feature) Float(field string) (float64, error) {
	v, ok := f.Properties[field]
	if !ok {
		return 0, rferrors.New(rferrors.ErrCodeFieldNotFound,
			"feature %d has no field %q", f.Index, field)
	}
	if x, ok := toFloat(v); ok {
		return x, nil
	}
	if v == nil {
		return 0, rferrors.New(rferrors.ErrCodeFieldNotNumeric,
			"feature %d: field %q is null", f.Index, field)
	}
	return 0, rferrors.New(rferrors.ErrCodeFieldNotNumeric,
		"feature %d: field %q is not numeric (%T)", f.Index, field, v)
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int8:
		return float64(x), true
	case int16:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint:
		return float64(x), true
	case uint8:
		return float64(x), true
	case uint16:
		return float64(x), true
	case uint32:
		return float64(x), true
	case uint64:
		return float64(x), true
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

// IsEmpty reports whether the feature has no geometry or an empty one.
func (f Feature) IsEmpty() bool {
	return IsEmptyGeometry(f.Geometry)
}

// IsEmptyGeometry reports whether g is nil or has no coordinates.
func IsEmptyGeometry(g orb.Geometry) bool {
	switch g := g.(type) {
	case nil:
		return true
	case orb.Point:
		return false
	case orb.MultiPoint:
		return len(g) == 0
	case orb.LineString:
		return len(g) == 0
	case orb.MultiLineString:
		for _, ls := range g {
			if len(ls) > 0 {
				return false
			}
		}
		return true
	case orb.Ring:
		return len(g) == 0
	case orb.Polygon:
		return len(g) == 0 || len(g[0]) == 0
	case orb.MultiPolygon:
		for _, p := range g {
			if !IsEmptyGeometry(p) {
				return false
			}
		}
		return true
	case orb.Collection:
		for _, c := range g {
			if !IsEmptyGeometry(c) {
				return false
			}
		}
		return true
	case orb.Bound:
		return false
	}
	return true
}

// Source is an ordered, read-only sequence of features.
type Source interface {
	// Len returns the total number of features.
	Len() int
	// Features yields the features in source order. Iteration stops at the
	// first error.
	Features() iter.Seq2[Feature, error]
	// CRS returns the source spatial reference as WKT, or "" when unknown.
	CRS() string
	// GeometryType names the layer geometry type, e.g. "Polygon".
	GeometryType() string
	// Close releases the source.
	Close() error
}
