// Package gdal adapts GDAL/OGR (through godal) to the rasterfold model:
// it reads vector sources and the model raster, burns geometries with
// GDAL's rasterizer and writes the result as a GeoTIFF.
//
// GDAL drivers are registered on first use.
package gdal

import (
	"sync"

	"github.com/airbusgeo/godal"

	rferrors "github.com/matzehuels/rasterfold/pkg/errors"
	"github.com/matzehuels/rasterfold/pkg/raster"
)

var registerOnce sync.Once

// Register registers all GDAL drivers. It is safe to call repeatedly.
func Register() {
	registerOnce.Do(godal.RegisterAll)
}

var dataTypes = map[string]godal.DataType{
	raster.Byte:    godal.Byte,
	raster.UInt16:  godal.UInt16,
	raster.Int16:   godal.Int16,
	raster.UInt32:  godal.UInt32,
	raster.Int32:   godal.Int32,
	raster.Float32: godal.Float32,
	raster.Float64: godal.Float64,
}

// dataType maps a data type name to its godal value.
func dataType(name string) (godal.DataType, error) {
	canon, err := raster.ParseDataType(name)
	if err != nil {
		return godal.Unknown, err
	}
	return dataTypes[canon], nil
}

// spatialRef parses a WKT definition. An empty definition yields nil.
func spatialRef(wkt string) (*godal.SpatialRef, error) {
	if wkt == "" {
		return nil, nil
	}
	sr, err := godal.NewSpatialRefFromWKT(wkt)
	if err != nil {
		return nil, rferrors.Wrap(rferrors.ErrCodeIO, err, "parse spatial reference")
	}
	return sr, nil
}
