package pipeline

import (
	"path/filepath"
	"strings"

	"github.com/matzehuels/rasterfold/pkg/burn"
	rferrors "github.com/matzehuels/rasterfold/pkg/errors"
	"github.com/matzehuels/rasterfold/pkg/gdal"
	"github.com/matzehuels/rasterfold/pkg/raster"
	"github.com/matzehuels/rasterfold/pkg/vector"
)

// Engine opens vector sources and builds the burner that rasterizes their
// features. Burners that implement io.Closer are closed after the run.
type Engine interface {
	OpenSource(path string) (vector.Source, error)
	NewBurner(model raster.Model, src vector.Source) (burn.Burner, error)
}

// DefaultEngines returns the built-in engines keyed by name.
func DefaultEngines() map[string]Engine {
	return map[string]Engine{
		EngineGDAL:   GDALEngine{},
		EngineNative: NativeEngine{},
	}
}

// GDALEngine reads any OGR dataset and burns through an in-memory GDAL
// raster, reprojecting features to the model CRS when needed.
type GDALEngine struct{}

// OpenSource opens the first layer of the dataset at path.
func (GDALEngine) OpenSource(path string) (vector.Source, error) {
	src, err := gdal.OpenSource(path)
	if err != nil {
		return nil, err
	}
	return src, nil
}

// NewBurner creates a GDAL burner for model.
func (GDALEngine) NewBurner(model raster.Model, src vector.Source) (burn.Burner, error) {
	b, err := gdal.NewBurner(model, src.CRS())
	if err != nil {
		return nil, err
	}
	return b, nil
}

// NativeEngine reads GeoJSON files and burns with burn.Native. Features
// must already be in the model's CRS.
type NativeEngine struct{}

// geoJSONExtensions are the source extensions the native engine reads.
var geoJSONExtensions = map[string]bool{
	".geojson": true,
	".json":    true,
}

// OpenSource opens a GeoJSON file.
func (NativeEngine) OpenSource(path string) (vector.Source, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if !geoJSONExtensions[ext] {
		return nil, rferrors.New(rferrors.ErrCodeUnsupported,
			"native engine reads GeoJSON only, got %q (use --engine gdal)", path)
	}
	src, err := vector.OpenGeoJSON(path)
	if err != nil {
		return nil, err
	}
	return src, nil
}

// NewBurner creates a native burner for model.
func (NativeEngine) NewBurner(model raster.Model, _ vector.Source) (burn.Burner, error) {
	b, err := burn.NewNative(model)
	if err != nil {
		return nil, err
	}
	return b, nil
}
