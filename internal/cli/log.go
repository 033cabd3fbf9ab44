package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/rasterfold/pkg/observability"
)

// newLogger creates a new logger with timestamp formatting.
// The logger writes to w and filters messages at the specified level.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// debugHooks logs observability events at debug level.
type debugHooks struct {
	logger *log.Logger
}

var (
	_ observability.PipelineHooks = (*debugHooks)(nil)
	_ observability.DatasetHooks  = (*debugHooks)(nil)
)

func (h *debugHooks) OnRunStart(_ context.Context, method string, features int) {
	h.logger.Debug("run started", "method", method, "features", features)
}

func (h *debugHooks) OnFeatureFolded(_ context.Context, index int, empty bool, d time.Duration) {
	if empty {
		h.logger.Debug("feature has no geometry", "index", index)
		return
	}
	h.logger.Debug("folded feature", "index", index, "duration", d)
}

func (h *debugHooks) OnRunComplete(_ context.Context, method string, folded int, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("run failed", "method", method, "folded", folded, "duration", d, "err", err)
		return
	}
	h.logger.Debug("run complete", "method", method, "folded", folded, "duration", d)
}

func (h *debugHooks) OnOpen(_ context.Context, kind, path string, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("open failed", "kind", kind, "path", path, "err", err)
		return
	}
	h.logger.Debug("opened dataset", "kind", kind, "path", path, "duration", d)
}

func (h *debugHooks) OnWrite(_ context.Context, path string, pixels int, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("write failed", "path", path, "err", err)
		return
	}
	h.logger.Debug("wrote dataset", "path", path, "pixels", pixels, "duration", d)
}
