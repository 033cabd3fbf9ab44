// Package cli implements the rasterfold command-line interface.
//
// The root command converts a vector source into a raster aligned to a
// model raster:
//
//	rasterfold SOURCE RASTER OUTPUT [--method count|max|mean] [--field NAME]
//
// Options can also come from a TOML file given with --config; flags win
// over the file, which wins over built-in defaults.
//
// # Logging
//
// Logs go to stderr through charmbracelet/log. --verbose (-v) enables debug
// logging and per-feature debug events; --quiet keeps only warnings and
// hides the progress bar.
package cli

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/rasterfold/pkg/buildinfo"
	"github.com/matzehuels/rasterfold/pkg/observability"
	"github.com/matzehuels/rasterfold/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for display.
const appName = "rasterfold"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// Progress is where the progress bar is drawn.
	Progress io.Writer
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger:   newLogger(w, level),
		Progress: os.Stderr,
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// EnableDebugHooks routes pipeline and dataset events to the logger at
// debug level.
func (c *CLI) EnableDebugHooks() {
	h := &debugHooks{logger: c.Logger}
	observability.SetPipelineHooks(h)
	observability.SetDatasetHooks(h)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := c.convertCommand()
	root.Version = buildinfo.Version
	root.SetVersionTemplate(buildinfo.Template())

	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(quiet bool) *pipeline.Runner {
	runner := pipeline.NewRunner(c.Logger)
	if !quiet && c.Progress != nil {
		runner.Progress = newProgressBar(c.Progress)
	}
	return runner
}
