package gdal

import (
	"fmt"

	"github.com/airbusgeo/godal"
	"github.com/paulmach/orb"

	"github.com/matzehuels/rasterfold/pkg/burn"
	rferrors "github.com/matzehuels/rasterfold/pkg/errors"
	"github.com/matzehuels/rasterfold/pkg/grid"
	"github.com/matzehuels/rasterfold/pkg/raster"
	"github.com/matzehuels/rasterfold/pkg/vector"
)

// Burner rasterizes geometries with GDAL's all-touched rasterizer into a
// single in-memory Float64 band carrying the model's georeferencing.
//
// Geometries are taken to be in the source CRS given to NewBurner and are
// reprojected to the model's projection when the two differ. When either
// side has no spatial reference, coordinates are used as they are.
//
// A Burner is not safe for concurrent use. Close releases the in-memory
// dataset.
type Burner struct {
	ds     *godal.Dataset
	band   godal.Band
	width  int
	height int

	srcSR     *godal.SpatialRef
	dstSR     *godal.SpatialRef
	reproject bool
}

var _ burn.Burner = (*Burner)(nil)

// NewBurner creates the in-memory dataset for model. srcCRS is the WKT of
// the vector source, "" when unknown.
func NewBurner(model raster.Model, srcCRS string) (*Burner, error) {
	Register()
	if err := model.Validate(); err != nil {
		return nil, err
	}
	ds, err := godal.Create(godal.Memory, "", 1, godal.Float64, model.Width, model.Height)
	if err != nil {
		return nil, rferrors.Wrap(rferrors.ErrCodeIO, err, "create in-memory raster")
	}
	b := &Burner{ds: ds, band: ds.Bands()[0], width: model.Width, height: model.Height}

	if err := ds.SetGeoTransform([6]float64(model.GeoTransform)); err != nil {
		b.Close()
		return nil, rferrors.Wrap(rferrors.ErrCodeIO, err, "set geotransform")
	}
	if model.Projection != "" {
		if err := ds.SetProjection(model.Projection); err != nil {
			b.Close()
			return nil, rferrors.Wrap(rferrors.ErrCodeIO, err, "set projection")
		}
	}

	if b.srcSR, err = spatialRef(srcCRS); err != nil {
		b.Close()
		return nil, err
	}
	if b.dstSR, err = spatialRef(model.Projection); err != nil {
		b.Close()
		return nil, err
	}
	b.reproject = b.srcSR != nil && b.dstSR != nil && !b.srcSR.IsSame(b.dstSR)
	return b, nil
}

// Reprojects reports whether geometries are reprojected before burning.
func (b *Burner) Reprojects() bool { return b.reproject }

// Burn implements burn.Burner.
func (b *Burner) Burn(g orb.Geometry, dst *grid.Grid) error {
	if dst.Width != b.width || dst.Height != b.height {
		return fmt.Errorf("%w: burner is %dx%d, grid is %dx%d",
			grid.ErrShapeMismatch, b.width, b.height, dst.Width, dst.Height)
	}
	if vector.IsEmptyGeometry(g) {
		return nil
	}

	og, err := toOGR(g, b.srcSR)
	if err != nil {
		return err
	}
	defer og.Close()

	if b.reproject {
		if err := og.Reproject(b.dstSR); err != nil {
			return rferrors.Wrap(rferrors.ErrCodeIO, err, "reproject geometry")
		}
	}

	if err := b.band.Fill(0, 0); err != nil {
		return rferrors.Wrap(rferrors.ErrCodeIO, err, "clear occupancy band")
	}
	if err := b.ds.RasterizeGeometry(og, godal.Values(1), godal.AllTouched()); err != nil {
		return rferrors.Wrap(rferrors.ErrCodeIO, err, "rasterize geometry")
	}
	if err := b.band.Read(0, 0, dst.Data, b.width, b.height); err != nil {
		return rferrors.Wrap(rferrors.ErrCodeIO, err, "read occupancy band")
	}
	return nil
}

// Close releases the in-memory dataset and spatial references.
func (b *Burner) Close() error {
	if b.srcSR != nil {
		b.srcSR.Close()
		b.srcSR = nil
	}
	if b.dstSR != nil {
		b.dstSR.Close()
		b.dstSR = nil
	}
	if b.ds == nil {
		return nil
	}
	err := b.ds.Close()
	b.ds = nil
	if err != nil {
		return rferrors.Wrap(rferrors.ErrCodeIO, err, "close in-memory raster")
	}
	return nil
}
