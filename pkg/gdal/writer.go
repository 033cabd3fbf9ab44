package gdal

import (
	"fmt"
	"os"

	"github.com/airbusgeo/godal"

	rferrors "github.com/matzehuels/rasterfold/pkg/errors"
	"github.com/matzehuels/rasterfold/pkg/grid"
	"github.com/matzehuels/rasterfold/pkg/raster"
)

// WriteOptions controls how WriteGeoTIFF creates the output.
type WriteOptions struct {
	// DataType overrides the model's data type. Values are converted by
	// GDAL: NaN and fractions do not survive integer types.
	DataType string
	// NoData, when set, is recorded as the band's NoData value.
	NoData *float64
	// CreationOptions are GTiff KEY=VALUE creation options.
	CreationOptions []string
}

// WriteGeoTIFF writes g as a single-band GeoTIFF at path with the model's
// size, geotransform and projection. The file is removed again if any step
// after creation fails.
func WriteGeoTIFF(path string, model raster.Model, g *grid.Grid, opts WriteOptions) (err error) {
	Register()
	if g.Width != model.Width || g.Height != model.Height {
		return fmt.Errorf("%w: model is %dx%d, grid is %dx%d",
			grid.ErrShapeMismatch, model.Width, model.Height, g.Width, g.Height)
	}

	name := opts.DataType
	if name == "" {
		name = model.DataType
	}
	if name == "" {
		name = raster.Float64
	}
	dt, err := dataType(name)
	if err != nil {
		return err
	}

	var createOpts []godal.DatasetCreateOption
	if len(opts.CreationOptions) > 0 {
		createOpts = append(createOpts, godal.CreationOption(opts.CreationOptions...))
	}
	ds, err := godal.Create(godal.GTiff, path, 1, dt, model.Width, model.Height, createOpts...)
	if err != nil {
		return rferrors.Wrap(rferrors.ErrCodeIO, err, "create %s", path)
	}
	defer func() {
		if ds != nil {
			_ = ds.Close()
		}
		if err != nil {
			_ = os.Remove(path)
		}
	}()

	if err = ds.SetGeoTransform([6]float64(model.GeoTransform)); err != nil {
		return rferrors.Wrap(rferrors.ErrCodeIO, err, "set geotransform on %s", path)
	}
	if model.Projection != "" {
		if err = ds.SetProjection(model.Projection); err != nil {
			return rferrors.Wrap(rferrors.ErrCodeIO, err, "set projection on %s", path)
		}
	}

	band := ds.Bands()[0]
	if opts.NoData != nil {
		if err = band.SetNoData(*opts.NoData); err != nil {
			return rferrors.Wrap(rferrors.ErrCodeIO, err, "set nodata on %s", path)
		}
	}
	if err = band.Write(0, 0, g.Data, g.Width, g.Height); err != nil {
		return rferrors.Wrap(rferrors.ErrCodeIO, err, "write %s", path)
	}

	closeErr := ds.Close()
	ds = nil
	if closeErr != nil {
		err = rferrors.Wrap(rferrors.ErrCodeIO, closeErr, "close %s", path)
		return err
	}
	return nil
}
