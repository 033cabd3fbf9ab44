package gdal

import (
	"github.com/airbusgeo/godal"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkb"
	"github.com/paulmach/orb/geojson"

	rferrors "github.com/matzehuels/rasterfold/pkg/errors"
)

// toOGR converts an orb geometry to an OGR geometry tagged with sr (which
// may be nil). The caller closes the result.
func toOGR(g orb.Geometry, sr *godal.SpatialRef) (*godal.Geometry, error) {
	data, err := wkb.Marshal(g)
	if err != nil {
		return nil, rferrors.Wrap(rferrors.ErrCodeUnsupported, err, "encode %s geometry", g.GeoJSONType())
	}
	og, err := godal.NewGeometryFromWKB(data, sr)
	if err != nil {
		return nil, rferrors.Wrap(rferrors.ErrCodeIO, err, "decode %s geometry", g.GeoJSONType())
	}
	return og, nil
}

// fromOGR converts an OGR geometry to orb. Plain 2D WKB is decoded
// directly; geometries orb cannot read as WKB (3D or measured variants)
// go through GeoJSON, which drops the extra ordinates and keeps 7
// decimals.
func fromOGR(og *godal.Geometry) (orb.Geometry, error) {
	data, err := og.WKB()
	if err != nil {
		return nil, rferrors.Wrap(rferrors.ErrCodeIO, err, "export geometry")
	}
	if g, err := wkb.Unmarshal(data); err == nil {
		return g, nil
	}

	js, err := og.GeoJSON()
	if err != nil {
		return nil, rferrors.Wrap(rferrors.ErrCodeIO, err, "export geometry")
	}
	gg, err := geojson.UnmarshalGeometry([]byte(js))
	if err != nil {
		return nil, rferrors.Wrap(rferrors.ErrCodeUnsupported, err, "convert geometry")
	}
	return gg.Geometry(), nil
}
