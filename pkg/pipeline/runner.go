package pipeline

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/rasterfold/pkg/burn"
	rferrors "github.com/matzehuels/rasterfold/pkg/errors"
	"github.com/matzehuels/rasterfold/pkg/fold"
	"github.com/matzehuels/rasterfold/pkg/gdal"
	"github.com/matzehuels/rasterfold/pkg/grid"
	"github.com/matzehuels/rasterfold/pkg/observability"
	"github.com/matzehuels/rasterfold/pkg/raster"
	"github.com/matzehuels/rasterfold/pkg/vector"
)

// Progress receives per-feature progress from a run.
type Progress interface {
	// Start is called once with the number of features to fold.
	Start(total int)
	// Advance is called with the 1-based index of each folded feature.
	Advance(done int)
	// Finish is called when the fold loop ends, successfully or not.
	Finish()
}

type noopProgress struct{}

func (noopProgress) Start(int)   {}
func (noopProgress) Advance(int) {}
func (noopProgress) Finish()     {}

// Runner executes conversion runs.
//
// The dataset functions default to the GDAL implementations; they are
// fields so that callers can substitute their own readers and writers.
// A Runner keeps no state between runs.
type Runner struct {
	Logger   *log.Logger
	Progress Progress
	Engines  map[string]Engine

	ReadModel func(path string) (raster.Model, error)
	Write     func(path string, model raster.Model, g *grid.Grid, opts gdal.WriteOptions) error
}

// NewRunner creates a runner with the built-in engines.
// If logger is nil, the default logger is used.
func NewRunner(logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Logger:    logger,
		Progress:  noopProgress{},
		Engines:   DefaultEngines(),
		ReadModel: gdal.ReadModel,
		Write:     gdal.WriteGeoTIFF,
	}
}

// Execute runs the complete open → fold → write pipeline.
//
// Options are validated before any dataset is opened. The output is
// written only after every feature has been folded; a cancelled ctx stops
// the run between features and nothing is written.
func (r *Runner) Execute(ctx context.Context, opts Options) (result *Result, err error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	engine, ok := r.Engines[opts.Engine]
	if !ok {
		return nil, rferrors.New(rferrors.ErrCodeUnsupported, "engine %q is not available", opts.Engine)
	}

	start := time.Now()
	hooks := observability.Pipeline()
	folded := 0
	defer func() {
		hooks.OnRunComplete(ctx, opts.Method.String(), folded, time.Since(start), err)
	}()

	result = &Result{Output: opts.Output}

	// Stage 1: Open
	src, err := r.openSource(ctx, engine, opts.Source)
	if err != nil {
		return nil, fmt.Errorf("open source: %w", err)
	}
	defer src.Close()

	model, err := r.readModel(ctx, opts.Raster)
	if err != nil {
		return nil, fmt.Errorf("read raster: %w", err)
	}
	result.Model = model
	result.Method = opts.Method
	result.DataType = outputType(opts.DataType, model)
	if _, err := raster.ParseDataType(result.DataType); err != nil {
		return nil, rferrors.New(rferrors.ErrCodeUnsupported,
			"raster %s has data type %s, which cannot be written; set an output type",
			opts.Raster, result.DataType)
	}
	if opts.Method == fold.MethodMean && raster.IsInteger(result.DataType) && opts.NoData == nil {
		opts.Logger.Warn("untouched pixels of a mean are NaN, which an integer band cannot hold",
			"type", result.DataType,
			"hint", "set --type Float32 or --nodata")
	}

	burner, err := engine.NewBurner(model, src)
	if err != nil {
		return nil, fmt.Errorf("create burner: %w", err)
	}
	if c, ok := burner.(io.Closer); ok {
		defer c.Close()
	}
	result.Stats.OpenTime = time.Since(start)

	px, py := model.GeoTransform.PixelSize()
	bounds := model.Bounds()
	opts.Logger.Info("opened inputs",
		"features", src.Len(),
		"geometry", src.GeometryType(),
		"width", model.Width,
		"height", model.Height,
		"pixel", fmt.Sprintf("%gx%g", px, py),
		"bounds", fmt.Sprintf("%g,%g,%g,%g", bounds.Min[0], bounds.Min[1], bounds.Max[0], bounds.Max[1]),
		"duration", result.Stats.OpenTime)
	if !model.GeoTransform.IsNorthUp() {
		opts.Logger.Info("model raster is rotated", "geotransform", [6]float64(model.GeoTransform))
	}

	// Stage 2: Fold
	foldStart := time.Now()
	acc := fold.NewAccumulator(opts.Method, model.Width, model.Height)
	occ := grid.New(model.Width, model.Height)

	hooks.OnRunStart(ctx, opts.Method.String(), src.Len())
	progress := r.progress()
	progress.Start(src.Len())
	err = func() error {
		defer progress.Finish()
		for f, err := range src.Features() {
			if err != nil {
				return err
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			featureStart := time.Now()
			if err := r.foldFeature(f, opts, burner, occ, acc); err != nil {
				return err
			}
			if f.IsEmpty() {
				result.Stats.Empty++
			}
			folded++
			hooks.OnFeatureFolded(ctx, f.Index, f.IsEmpty(), time.Since(featureStart))
			progress.Advance(folded)
		}
		return nil
	}()
	if err != nil {
		return nil, fmt.Errorf("fold: %w", err)
	}

	out, err := acc.Finalize()
	if err != nil {
		return nil, err
	}
	if opts.NoData != nil {
		if err := acc.ApplyNoData(*opts.NoData); err != nil {
			return nil, err
		}
	}
	result.Grid = out
	result.Stats.Features = folded
	result.Stats.Touched = acc.Touched()
	result.Stats.FoldTime = time.Since(foldStart)

	opts.Logger.Info("folded features",
		"method", opts.Method,
		"features", folded,
		"empty", result.Stats.Empty,
		"touched", result.Stats.Touched,
		"duration", result.Stats.FoldTime)

	// Stage 3: Write
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	writeStart := time.Now()
	if err := r.write(ctx, opts, model, out); err != nil {
		return nil, fmt.Errorf("write output: %w", err)
	}
	result.Stats.WriteTime = time.Since(writeStart)

	opts.Logger.Info("wrote raster",
		"output", opts.Output,
		"duration", result.Stats.WriteTime)

	return result, nil
}

// foldFeature burns f alone into occ and folds it into acc. Features
// without geometry leave occ zero but still need a field value for max
// and mean.
func (r *Runner) foldFeature(f vector.Feature, opts Options, b burn.Burner, occ *grid.Grid, acc *fold.Accumulator) error {
	occ.Zero()
	if !f.IsEmpty() {
		if err := b.Burn(f.Geometry, occ); err != nil {
			return fmt.Errorf("feature %d: %w", f.Index, err)
		}
	}

	var v float64
	if opts.Method.NeedsField() {
		var err error
		if v, err = f.Float(opts.Field); err != nil {
			return fmt.Errorf("feature %d: %w", f.Index, err)
		}
	}
	return acc.Fold(occ, v)
}

func (r *Runner) openSource(ctx context.Context, engine Engine, path string) (vector.Source, error) {
	start := time.Now()
	src, err := engine.OpenSource(path)
	observability.Dataset().OnOpen(ctx, "source", path, time.Since(start), err)
	return src, err
}

func (r *Runner) readModel(ctx context.Context, path string) (raster.Model, error) {
	start := time.Now()
	model, err := r.ReadModel(path)
	observability.Dataset().OnOpen(ctx, "raster", path, time.Since(start), err)
	return model, err
}

func (r *Runner) write(ctx context.Context, opts Options, model raster.Model, g *grid.Grid) error {
	start := time.Now()
	err := r.Write(opts.Output, model, g, gdal.WriteOptions{
		DataType:        opts.DataType,
		NoData:          opts.NoData,
		CreationOptions: opts.CreationOptions,
	})
	observability.Dataset().OnWrite(ctx, opts.Output, g.Len(), time.Since(start), err)
	return err
}

// outputType returns the data type the writer will use.
func outputType(override string, model raster.Model) string {
	switch {
	case override != "":
		return override
	case model.DataType != "":
		return model.DataType
	}
	return raster.Float64
}

func (r *Runner) progress() Progress {
	if r.Progress == nil {
		return noopProgress{}
	}
	return r.Progress
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
