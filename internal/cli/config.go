package cli

import (
	"errors"
	"io/fs"
	"strings"

	"github.com/BurntSushi/toml"

	rferrors "github.com/matzehuels/rasterfold/pkg/errors"
	"github.com/matzehuels/rasterfold/pkg/pipeline"
)

// fileConfig is the layout of a --config file:
//
//	method = "mean"
//	field = "height"
//	engine = "gdal"
//	type = "Float32"
//	nodata = -9999
//	creation_options = ["COMPRESS=DEFLATE", "TILED=YES"]
//	quiet = false
//
// Dataset paths are positional arguments only.
type fileConfig struct {
	pipeline.Options
	Quiet bool `toml:"quiet"`
}

// loadConfig reads a TOML config file. Unknown keys are rejected so that
// typos do not silently fall back to defaults.
func loadConfig(path string) (fileConfig, error) {
	var cfg fileConfig
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fileConfig{}, rferrors.Wrap(rferrors.ErrCodeInvalidConfig, err, "config file %s not found", path)
		}
		return fileConfig{}, rferrors.Wrap(rferrors.ErrCodeInvalidConfig, err, "parse config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fileConfig{}, rferrors.New(rferrors.ErrCodeInvalidConfig,
			"unknown keys in %s: %s", path, strings.Join(keys, ", "))
	}
	return cfg, nil
}
