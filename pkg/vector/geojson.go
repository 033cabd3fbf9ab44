package vector

import (
	"encoding/json"
	"fmt"
	"io"
	"iter"
	"os"

	"github.com/paulmach/orb/geojson"

	rferrors "github.com/matzehuels/rasterfold/pkg/errors"
)

// GeoJSON is an in-memory Source decoded from an RFC 7946 document. A
// FeatureCollection, a single Feature or a bare Geometry are accepted; a
// bare Geometry becomes one feature without properties.
//
// RFC 7946 coordinates are always WGS 84 longitude/latitude, and the
// document carries no other CRS, so CRS reports "".
type GeoJSON struct {
	features []*geojson.Feature
	gtype    string
}

var _ Source = (*GeoJSON)(nil)

// ReadGeoJSON decodes a GeoJSON document from r.
func ReadGeoJSON(r io.Reader) (*GeoJSON, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, rferrors.Wrap(rferrors.ErrCodeIO, err, "read geojson")
	}
	return decodeGeoJSON(data)
}

// OpenGeoJSON reads and decodes the GeoJSON file at path.
func OpenGeoJSON(path string) (*GeoJSON, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, rferrors.Wrap(rferrors.ErrCodeIO, err, "open %s", path)
	}
	src, err := decodeGeoJSON(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return src, nil
}

func decodeGeoJSON(data []byte) (*GeoJSON, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, rferrors.Wrap(rferrors.ErrCodeIO, err, "decode geojson")
	}

	var features []*geojson.Feature
	switch head.Type {
	case "FeatureCollection":
		fc, err := geojson.UnmarshalFeatureCollection(data)
		if err != nil {
			return nil, rferrors.Wrap(rferrors.ErrCodeIO, err, "decode feature collection")
		}
		features = fc.Features
	case "Feature":
		f, err := geojson.UnmarshalFeature(data)
		if err != nil {
			return nil, rferrors.Wrap(rferrors.ErrCodeIO, err, "decode feature")
		}
		features = []*geojson.Feature{f}
	case "":
		return nil, rferrors.New(rferrors.ErrCodeIO, "decode geojson: missing type member")
	default:
		g, err := geojson.UnmarshalGeometry(data)
		if err != nil {
			return nil, rferrors.Wrap(rferrors.ErrCodeIO, err, "decode geometry")
		}
		features = []*geojson.Feature{{Type: "Feature", Geometry: g.Geometry()}}
	}

	return &GeoJSON{features: features, gtype: layerType(features)}, nil
}

// layerType returns the common geometry type of all features, "Unknown"
// when they differ or "None" when no feature has a geometry.
func layerType(features []*geojson.Feature) string {
	t := ""
	for _, f := range features {
		if f == nil || f.Geometry == nil {
			continue
		}
		gt := f.Geometry.GeoJSONType()
		switch t {
		case "":
			t = gt
		case gt:
		default:
			return "Unknown"
		}
	}
	if t == "" {
		return "None"
	}
	return t
}

// Len returns the number of features.
func (s *GeoJSON) Len() int { return len(s.features) }

// Features yields the features in document order. Null features are
// yielded without geometry or properties.
func (s *GeoJSON) Features() iter.Seq2[Feature, error] {
	return func(yield func(Feature, error) bool) {
		for i, gf := range s.features {
			f := Feature{Index: i}
			if gf != nil {
				f.Geometry = gf.Geometry
				f.Properties = map[string]any(gf.Properties)
			}
			if !yield(f, nil) {
				return
			}
		}
	}
}

// CRS always returns "".
func (s *GeoJSON) CRS() string { return "" }

// GeometryType returns the GeoJSON type shared by every feature.
func (s *GeoJSON) GeometryType() string { return s.gtype }

// Close is a no-op.
func (s *GeoJSON) Close() error { return nil }
