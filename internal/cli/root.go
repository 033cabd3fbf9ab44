package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	rferrors "github.com/matzehuels/rasterfold/pkg/errors"
	"github.com/matzehuels/rasterfold/pkg/fold"
	"github.com/matzehuels/rasterfold/pkg/pipeline"
	"github.com/matzehuels/rasterfold/pkg/raster"
)

// convertFlags holds the raw flag values of the root command.
type convertFlags struct {
	method          string
	field           string
	engine          string
	dataType        string
	nodata          float64
	creationOptions []string
	config          string
	quiet           bool
}

func methodNames() []string {
	names := make([]string, len(fold.Methods))
	for i, m := range fold.Methods {
		names[i] = m.String()
	}
	return names
}

// bind registers the flags on cmd.
func (f *convertFlags) bind(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&f.method, "method", string(fold.DefaultMethod), "reducer: "+strings.Join(methodNames(), ", "))
	flags.StringVar(&f.field, "field", "", "numeric attribute to reduce (required for max and mean)")
	flags.StringVar(&f.engine, "engine", pipeline.DefaultEngine, "burn engine: gdal (any OGR source), native (GeoJSON)")
	flags.StringVar(&f.dataType, "type", "", "output data type (default: the model raster's): "+strings.Join(raster.DataTypes, ", "))
	flags.Float64Var(&f.nodata, "nodata", 0, "value for pixels no feature touches, recorded as the band's NoData")
	flags.StringArrayVar(&f.creationOptions, "co", nil, "GTiff creation option KEY=VALUE (repeatable)")
	flags.StringVar(&f.config, "config", "", "TOML file with default options")
	flags.BoolVarP(&f.quiet, "quiet", "q", false, "hide the progress bar and summary")

	_ = cmd.RegisterFlagCompletionFunc("method", cobra.FixedCompletions(methodNames(), cobra.ShellCompDirectiveNoFileComp))
	_ = cmd.RegisterFlagCompletionFunc("engine", cobra.FixedCompletions(
		[]string{pipeline.EngineGDAL, pipeline.EngineNative}, cobra.ShellCompDirectiveNoFileComp))
	_ = cmd.RegisterFlagCompletionFunc("type", cobra.FixedCompletions(raster.DataTypes, cobra.ShellCompDirectiveNoFileComp))
	_ = cmd.RegisterFlagCompletionFunc("config", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return []string{"toml"}, cobra.ShellCompDirectiveFilterFileExt
	})
}

// resolve builds pipeline options from the config file and the flags set
// on cmd. Flags win over the file; the file wins over defaults.
func (f *convertFlags) resolve(cmd *cobra.Command, args []string) (pipeline.Options, bool, error) {
	var cfg fileConfig
	if f.config != "" {
		var err error
		if cfg, err = loadConfig(f.config); err != nil {
			return pipeline.Options{}, false, err
		}
	}
	opts := cfg.Options
	quiet := cfg.Quiet

	changed := cmd.Flags().Changed
	if changed("method") || opts.Method == "" {
		opts.Method = fold.Method(f.method)
	}
	if changed("field") {
		opts.Field = f.field
	}
	if changed("engine") || opts.Engine == "" {
		opts.Engine = f.engine
	}
	if changed("type") {
		opts.DataType = f.dataType
	}
	if changed("nodata") {
		v := f.nodata
		opts.NoData = &v
	}
	if changed("co") {
		opts.CreationOptions = f.creationOptions
	}
	if changed("quiet") {
		quiet = f.quiet
	}

	opts.Source, opts.Raster, opts.Output = args[0], args[1], args[2]
	return opts, quiet, nil
}

// convertCommand creates the root command, which runs the conversion.
func (c *CLI) convertCommand() *cobra.Command {
	f := &convertFlags{}

	cmd := &cobra.Command{
		Use:   appName + " SOURCE RASTER OUTPUT",
		Short: "Rasterize vector features onto a model raster's grid",
		Long: `Rasterize vector features onto a model raster's grid.

Every feature of SOURCE is burned alone onto the grid of RASTER, marking
all pixels its geometry touches, and folded into the output:

  count  number of features touching the pixel
  max    largest --field value among features touching the pixel
  mean   mean --field value of features touching the pixel (NaN if none)

OUTPUT is written as a single-band GeoTIFF with RASTER's size,
geotransform and projection.`,
		Example: `  rasterfold parcels.gpkg dem.tif parcel_count.tif
  rasterfold buildings.shp dem.tif max_height.tif --method max --field height
  rasterfold zones.geojson dem.tif mean.tif --method mean --field score --engine native --type Float32`,
		Args: func(cmd *cobra.Command, args []string) error {
			if err := cobra.ExactArgs(3)(cmd, args); err != nil {
				return rferrors.Wrap(rferrors.ErrCodeInvalidInput, err, "expected SOURCE RASTER OUTPUT")
			}
			return nil
		},
		ValidArgsFunction: completeArgs,
		SilenceUsage:      true,
		SilenceErrors:     true,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, quiet, err := f.resolve(cmd, args)
			if err != nil {
				return err
			}
			return c.runConvert(cmd.Context(), opts, quiet)
		},
	}
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return rferrors.Wrap(rferrors.ErrCodeInvalidInput, err, "invalid flag")
	})
	f.bind(cmd)

	return cmd
}

// runConvert executes the pipeline and prints a summary.
func (c *CLI) runConvert(ctx context.Context, opts pipeline.Options, quiet bool) error {
	if quiet && c.Logger.GetLevel() == log.InfoLevel {
		c.SetLogLevel(log.WarnLevel)
	}

	result, err := c.newRunner(quiet).Execute(ctx, opts)
	if err != nil {
		return err
	}
	if quiet {
		return nil
	}

	printSuccess("Wrote %s raster", result.DataType)
	printFile(result.Output)
	printKeyValue("method", result.Method.String())
	printKeyValue("size", fmt.Sprintf("%d x %d", result.Model.Width, result.Model.Height))
	printStats(result.Stats.Features, result.Stats.Empty, result.Stats.Touched, result.Model.Pixels())
	return nil
}

// completeArgs completes SOURCE and RASTER with any file and OUTPUT with
// GeoTIFF names.
func completeArgs(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	switch len(args) {
	case 0, 1:
		return nil, cobra.ShellCompDirectiveDefault
	case 2:
		return []string{"tif", "tiff"}, cobra.ShellCompDirectiveFilterFileExt
	}
	return nil, cobra.ShellCompDirectiveNoFileComp
}
