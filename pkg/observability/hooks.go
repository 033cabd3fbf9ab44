// Package observability provides hooks for metrics, tracing, and logging.
//
// Libraries emit events through the registered hooks; nothing is recorded
// unless main installs an implementation. The defaults are no-ops.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetPipelineHooks(&myPipelineHooks{})
//	    observability.SetDatasetHooks(&myDatasetHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Pipeline().OnRunStart(ctx, method, features)
//	// ... fold features ...
//	observability.Pipeline().OnRunComplete(ctx, method, folded, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Pipeline Hooks
// =============================================================================

// PipelineHooks receives events from the conversion pipeline.
type PipelineHooks interface {
	// OnRunStart is called once the inputs are open, before the first
	// feature is burned.
	OnRunStart(ctx context.Context, method string, features int)

	// OnFeatureFolded is called after each feature has been folded into
	// the accumulator. index is 0-based; empty is true for features
	// without geometry.
	OnFeatureFolded(ctx context.Context, index int, empty bool, duration time.Duration)

	// OnRunComplete is called when a run ends, successfully or not.
	OnRunComplete(ctx context.Context, method string, folded int, duration time.Duration, err error)
}

// =============================================================================
// Dataset Hooks
// =============================================================================

// DatasetHooks receives events from dataset reads and writes.
type DatasetHooks interface {
	// OnOpen records the opening of an input dataset. kind is "source" or
	// "raster".
	OnOpen(ctx context.Context, kind, path string, duration time.Duration, err error)

	// OnWrite records the writing of the output raster.
	OnWrite(ctx context.Context, path string, pixels int, duration time.Duration, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopPipelineHooks is a no-op implementation of PipelineHooks.
type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnRunStart(context.Context, string, int)                          {}
func (NoopPipelineHooks) OnFeatureFolded(context.Context, int, bool, time.Duration)        {}
func (NoopPipelineHooks) OnRunComplete(context.Context, string, int, time.Duration, error) {}

// NoopDatasetHooks is a no-op implementation of DatasetHooks.
type NoopDatasetHooks struct{}

func (NoopDatasetHooks) OnOpen(context.Context, string, string, time.Duration, error) {}
func (NoopDatasetHooks) OnWrite(context.Context, string, int, time.Duration, error)   {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	pipelineHooks PipelineHooks = NoopPipelineHooks{}
	datasetHooks  DatasetHooks  = NoopDatasetHooks{}
	hooksMu       sync.RWMutex
)

// SetPipelineHooks registers custom pipeline hooks.
// This should be called once at application startup before any run.
func SetPipelineHooks(h PipelineHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		pipelineHooks = h
	}
}

// SetDatasetHooks registers custom dataset hooks.
// This should be called once at application startup before any run.
func SetDatasetHooks(h DatasetHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		datasetHooks = h
	}
}

// Pipeline returns the registered pipeline hooks.
func Pipeline() PipelineHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return pipelineHooks
}

// Dataset returns the registered dataset hooks.
func Dataset() DatasetHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return datasetHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	pipelineHooks = NoopPipelineHooks{}
	datasetHooks = NoopDatasetHooks{}
}
