package gdal

import (
	"fmt"
	"iter"

	"github.com/airbusgeo/godal"

	rferrors "github.com/matzehuels/rasterfold/pkg/errors"
	"github.com/matzehuels/rasterfold/pkg/vector"
)

// Source reads the first layer of any OGR-readable dataset.
//
// Fields are converted to int64 (integer fields), float64 (real fields)
// or string; other field types are not exposed. Unset and null fields are
// nil, so a numeric read of them fails as it does for GeoJSON sources.
type Source struct {
	path  string
	ds    *godal.Dataset
	layer godal.Layer
	count int
	crs   string
	gtype string
	nulls map[int][]string
}

var _ vector.Source = (*Source)(nil)

// OpenSource opens the vector dataset at path.
func OpenSource(path string) (*Source, error) {
	Register()
	ds, err := godal.Open(path, godal.VectorOnly())
	if err != nil {
		return nil, rferrors.Wrap(rferrors.ErrCodeIO, err, "open vector %s", path)
	}
	layers := ds.Layers()
	if len(layers) == 0 {
		_ = ds.Close()
		return nil, rferrors.New(rferrors.ErrCodeIO, "%s has no vector layer", path)
	}

	s := &Source{path: path, ds: ds, layer: layers[0]}
	s.count, err = s.layer.FeatureCount()
	if err != nil {
		_ = ds.Close()
		return nil, rferrors.Wrap(rferrors.ErrCodeIO, err, "count features of %s", path)
	}
	// A layer without spatial reference fails to export; treat it as
	// unknown.
	if wkt, err := s.layer.SpatialRef().WKT(); err == nil {
		s.crs = wkt
	}
	s.gtype = s.sniffGeometryType()
	if s.nulls, err = nullFields(path); err != nil {
		_ = ds.Close()
		return nil, err
	}
	return s, nil
}

// sniffGeometryType reports the geometry type of the first feature that
// has one.
func (s *Source) sniffGeometryType() string {
	defer s.layer.ResetReading()
	s.layer.ResetReading()
	for {
		f := s.layer.NextFeature()
		if f == nil {
			return "None"
		}
		og := f.Geometry()
		if og.Empty() {
			f.Close()
			continue
		}
		g, err := fromOGR(og)
		f.Close()
		if err != nil || g == nil {
			return "Unknown"
		}
		return g.GeoJSONType()
	}
}

// Len returns the layer's feature count.
func (s *Source) Len() int { return s.count }

// CRS returns the layer's spatial reference as WKT.
func (s *Source) CRS() string { return s.crs }

// GeometryType returns the geometry type of the first non-empty feature.
func (s *Source) GeometryType() string { return s.gtype }

// Features yields the layer's features in layer order. Each call restarts
// reading from the first feature.
func (s *Source) Features() iter.Seq2[vector.Feature, error] {
	return func(yield func(vector.Feature, error) bool) {
		s.layer.ResetReading()
		for i := 0; ; i++ {
			f := s.layer.NextFeature()
			if f == nil {
				return
			}
			feat, err := convertFeature(i, f, s.nulls[i])
			f.Close()
			if err != nil {
				yield(vector.Feature{Index: i}, err)
				return
			}
			if !yield(feat, nil) {
				return
			}
		}
	}
}

// convertFeature copies f into a vector.Feature. nulls names the fields
// of f that are unset or null.
func convertFeature(i int, f *godal.Feature, nulls []string) (vector.Feature, error) {
	out := vector.Feature{Index: i, Properties: make(map[string]any)}
	for name, fld := range f.Fields() {
		switch fld.Type() {
		case godal.FTInt, godal.FTInt64:
			out.Properties[name] = fld.Int()
		case godal.FTReal:
			out.Properties[name] = fld.Float()
		case godal.FTString:
			out.Properties[name] = fld.String()
		}
	}
	for _, name := range nulls {
		out.Properties[name] = nil
	}

	og := f.Geometry()
	if og.Empty() {
		return out, nil
	}
	g, err := fromOGR(og)
	if err != nil {
		return out, fmt.Errorf("feature %d: %w", i, err)
	}
	out.Geometry = g
	return out, nil
}

// Close closes the dataset.
func (s *Source) Close() error {
	if s.ds == nil {
		return nil
	}
	err := s.ds.Close()
	s.ds = nil
	if err != nil {
		return rferrors.Wrap(rferrors.ErrCodeIO, err, "close %s", s.path)
	}
	return nil
}
