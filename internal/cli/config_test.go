package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"

	rferrors "github.com/matzehuels/rasterfold/pkg/errors"
	"github.com/matzehuels/rasterfold/pkg/fold"
	"github.com/matzehuels/rasterfold/pkg/pipeline"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rasterfold.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
method = "mean"
field = "height"
engine = "native"
type = "Float32"
nodata = -9999
creation_options = ["COMPRESS=DEFLATE", "TILED=YES"]
quiet = true
`)

	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}
	if cfg.Method != fold.MethodMean {
		t.Errorf("Method = %q, want mean", cfg.Method)
	}
	if cfg.Field != "height" {
		t.Errorf("Field = %q, want height", cfg.Field)
	}
	if cfg.Engine != pipeline.EngineNative {
		t.Errorf("Engine = %q, want native", cfg.Engine)
	}
	if cfg.DataType != "Float32" {
		t.Errorf("DataType = %q, want Float32", cfg.DataType)
	}
	if cfg.NoData == nil || *cfg.NoData != -9999 {
		t.Errorf("NoData = %v, want -9999", cfg.NoData)
	}
	if len(cfg.CreationOptions) != 2 {
		t.Errorf("CreationOptions = %v, want 2 entries", cfg.CreationOptions)
	}
	if !cfg.Quiet {
		t.Error("Quiet = false, want true")
	}
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		path func(t *testing.T) string
	}{
		{"missing", func(t *testing.T) string { return filepath.Join(t.TempDir(), "nope.toml") }},
		{"malformed", func(t *testing.T) string { return writeConfig(t, "method = \n") }},
		{"unknown key", func(t *testing.T) string { return writeConfig(t, "methd = \"max\"\n") }},
		{"wrong type", func(t *testing.T) string { return writeConfig(t, "nodata = \"none\"\n") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loadConfig(tt.path(t))
			if !rferrors.Is(err, rferrors.ErrCodeInvalidConfig) {
				t.Errorf("loadConfig() error = %v, want INVALID_CONFIG", err)
			}
		})
	}
}

// parseFlags binds a fresh flag set, parses argv and resolves options.
func parseFlags(t *testing.T, argv ...string) (pipeline.Options, bool) {
	t.Helper()
	f := &convertFlags{}
	cmd := &cobra.Command{}
	f.bind(cmd)
	if err := cmd.ParseFlags(argv); err != nil {
		t.Fatalf("ParseFlags() error = %v", err)
	}
	opts, quiet, err := f.resolve(cmd, []string{"in.shp", "model.tif", "out.tif"})
	if err != nil {
		t.Fatalf("resolve() error = %v", err)
	}
	return opts, quiet
}

func TestResolveDefaults(t *testing.T) {
	opts, quiet := parseFlags(t)

	if opts.Method != fold.MethodCount {
		t.Errorf("Method = %q, want count", opts.Method)
	}
	if opts.Engine != pipeline.EngineGDAL {
		t.Errorf("Engine = %q, want gdal", opts.Engine)
	}
	if opts.NoData != nil {
		t.Errorf("NoData = %v, want nil", *opts.NoData)
	}
	if quiet {
		t.Error("quiet = true, want false")
	}
	if opts.Source != "in.shp" || opts.Raster != "model.tif" || opts.Output != "out.tif" {
		t.Errorf("paths = %q %q %q", opts.Source, opts.Raster, opts.Output)
	}
}

func TestResolvePrecedence(t *testing.T) {
	path := writeConfig(t, `
method = "mean"
field = "height"
nodata = -1
creation_options = ["COMPRESS=LZW"]
quiet = true
`)

	t.Run("file over defaults", func(t *testing.T) {
		opts, quiet := parseFlags(t, "--config", path)
		if opts.Method != fold.MethodMean || opts.Field != "height" {
			t.Errorf("Method/Field = %q/%q, want mean/height", opts.Method, opts.Field)
		}
		if opts.NoData == nil || *opts.NoData != -1 {
			t.Errorf("NoData = %v, want -1", opts.NoData)
		}
		if opts.Engine != pipeline.DefaultEngine {
			t.Errorf("Engine = %q, want default", opts.Engine)
		}
		if !quiet {
			t.Error("quiet = false, want true from file")
		}
	})

	t.Run("flags over file", func(t *testing.T) {
		opts, quiet := parseFlags(t, "--config", path,
			"--method", "max", "--field", "floors", "--nodata", "0",
			"--co", "COMPRESS=DEFLATE", "--co", "PREDICTOR=2", "--quiet=false")
		if opts.Method != fold.MethodMax || opts.Field != "floors" {
			t.Errorf("Method/Field = %q/%q, want max/floors", opts.Method, opts.Field)
		}
		if opts.NoData == nil || *opts.NoData != 0 {
			t.Errorf("NoData = %v, want 0", opts.NoData)
		}
		if len(opts.CreationOptions) != 2 || opts.CreationOptions[0] != "COMPRESS=DEFLATE" {
			t.Errorf("CreationOptions = %v", opts.CreationOptions)
		}
		if quiet {
			t.Error("quiet = true, want false from flag")
		}
	})
}
