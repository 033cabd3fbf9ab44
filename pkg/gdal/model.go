package gdal

import (
	"github.com/airbusgeo/godal"

	rferrors "github.com/matzehuels/rasterfold/pkg/errors"
	"github.com/matzehuels/rasterfold/pkg/raster"
)

// ReadModel reads the shape, georeferencing and band 1 data type of the
// raster at path. No pixel data is read. A raster without geotransform
// gets raster.DefaultGeoTransform, as GDAL reports it. Band types the
// writer cannot produce are reported by name and rejected only when the
// output inherits them.
func ReadModel(path string) (raster.Model, error) {
	Register()
	ds, err := godal.Open(path, godal.RasterOnly())
	if err != nil {
		return raster.Model{}, rferrors.Wrap(rferrors.ErrCodeIO, err, "open raster %s", path)
	}
	defer ds.Close()

	st := ds.Structure()
	m := raster.Model{
		Width:        st.SizeX,
		Height:       st.SizeY,
		GeoTransform: raster.DefaultGeoTransform,
		Projection:   ds.Projection(),
		DataType:     st.DataType.String(),
	}
	if gt, err := ds.GeoTransform(); err == nil {
		m.GeoTransform = raster.GeoTransform(gt)
	}
	if st.NBands == 0 {
		return raster.Model{}, rferrors.New(rferrors.ErrCodeIO, "raster %s has no bands", path)
	}
	if err := m.Validate(); err != nil {
		return raster.Model{}, err
	}
	return m, nil
}
