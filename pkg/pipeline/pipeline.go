// Package pipeline provides the rasterfold conversion pipeline.
//
// A run reads a vector source and a model raster, burns every feature alone
// into an occupancy grid, folds the occupancy into an accumulator with the
// selected method and writes the result as a single-band GeoTIFF that
// shares the model's georeferencing.
//
// # Architecture
//
// The pipeline has three stages:
//
//  1. Open: validate options, read the raster model, open the source and
//     build a burner for the selected engine
//  2. Fold: for each feature, burn it into a zeroed occupancy grid and fold
//     that grid into the accumulator (count, max or mean)
//  3. Write: finalize the accumulator and write the output raster
//
// Nothing is written unless every feature folded successfully.
//
// # Usage
//
//	runner := pipeline.NewRunner(logger)
//	opts := pipeline.Options{
//	    Source: "parcels.gpkg",
//	    Raster: "dem.tif",
//	    Output: "max_height.tif",
//	    Method: fold.MethodMax,
//	    Field:  "height",
//	}
//	result, err := runner.Execute(ctx, opts)
package pipeline

import (
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	rferrors "github.com/matzehuels/rasterfold/pkg/errors"
	"github.com/matzehuels/rasterfold/pkg/fold"
	"github.com/matzehuels/rasterfold/pkg/grid"
	"github.com/matzehuels/rasterfold/pkg/raster"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and config file
// =============================================================================

// Engine names.
const (
	// EngineGDAL reads any OGR source and burns with GDAL's rasterizer.
	EngineGDAL = "gdal"

	// EngineNative reads GeoJSON and burns with the pure Go burner.
	EngineNative = "native"
)

// DefaultEngine is the engine used when none is given.
const DefaultEngine = EngineGDAL

// ValidEngines is the set of supported engines.
var ValidEngines = map[string]bool{
	EngineGDAL:   true,
	EngineNative: true,
}

// outputExtensions are the extensions GTiff outputs are expected to carry.
var outputExtensions = map[string]bool{
	".tif":  true,
	".tiff": true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for one conversion run.
type Options struct {
	// Dataset paths
	Source string `toml:"-"` // vector input
	Raster string `toml:"-"` // model raster
	Output string `toml:"-"` // GeoTIFF to create

	// Fold options
	Method fold.Method `toml:"method"`
	Field  string      `toml:"field"`
	Engine string      `toml:"engine"`

	// Output options
	DataType        string   `toml:"type"`
	NoData          *float64 `toml:"nodata"`
	CreationOptions []string `toml:"creation_options"`

	// Runtime options (not serialized)
	Logger *log.Logger `toml:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Output is the path of the written raster.
	Output string

	// Model is the raster model the output was aligned to.
	Model raster.Model

	// Method is the reducer that produced Grid.
	Method fold.Method

	// DataType is the data type of the written band.
	DataType string

	// Grid holds the values written to the output band.
	Grid *grid.Grid

	// Stats contains timing and count information.
	Stats Stats
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Features  int // features folded
	Empty     int // features without geometry
	Touched   int // pixels touched by at least one feature
	OpenTime  time.Duration
	FoldTime  time.Duration
	WriteTime time.Duration
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateEngine checks that an engine name is valid.
func ValidateEngine(engine string) error {
	if !ValidEngines[engine] {
		return rferrors.New(rferrors.ErrCodeInvalidInput,
			"invalid engine: %q (must be one of: gdal, native)", engine)
	}
	return nil
}

// HasTIFFExtension reports whether path ends in .tif or .tiff.
func HasTIFFExtension(path string) bool {
	return outputExtensions[strings.ToLower(filepath.Ext(path))]
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks every option and applies defaults. It opens
// no file. This method is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}

	// The method/field pair comes first so that the classic usage error
	// wins over any other complaint.
	m, err := fold.ParseMethod(string(o.Method))
	if err != nil {
		return err
	}
	o.Method = m
	if err := fold.Validate(o.Method, o.Field); err != nil {
		return err
	}

	for _, p := range []struct{ kind, path string }{
		{"source", o.Source},
		{"raster", o.Raster},
		{"output", o.Output},
	} {
		if err := rferrors.ValidatePath(p.kind, p.path); err != nil {
			return err
		}
	}

	if o.Engine == "" {
		o.Engine = DefaultEngine
	}
	o.Engine = strings.ToLower(o.Engine)
	if err := ValidateEngine(o.Engine); err != nil {
		return err
	}

	if o.DataType != "" {
		dt, err := raster.ParseDataType(o.DataType)
		if err != nil {
			return err
		}
		o.DataType = dt
	}
	for _, co := range o.CreationOptions {
		if err := rferrors.ValidateCreationOption(co); err != nil {
			return err
		}
	}

	if !HasTIFFExtension(o.Output) {
		o.Logger.Warn("output is always written as GeoTIFF", "output", o.Output)
	}
	o.validated = true
	return nil
}
