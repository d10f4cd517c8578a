// Package logging configures the process-wide slog logger.
package logging

import (
	"io"
	"log/slog"
	"os"

	"github.com/samber/oops"
)

// Setup creates a logger tagged with service and version.
// format: "json" or "text" (defaults to "json" if empty).
// If w is nil, writes to os.Stderr.
func Setup(service, version, format string, w io.Writer) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}

	var h slog.Handler
	if format == "text" {
		h = slog.NewTextHandler(w, opts)
	} else {
		h = slog.NewJSONHandler(w, opts)
	}
	return slog.New(h).With("service", service, "version", version)
}

// LogError logs err at error level. For oops errors the code and context
// are emitted as separate attributes.
func LogError(logger *slog.Logger, msg string, err error) {
	if oe, ok := oops.AsOops(err); ok {
		attrs := []any{"error", oe.Error()}
		if code := oe.Code(); code != nil && code != "" {
			attrs = append(attrs, "code", code)
		}
		if ctx := oe.Context(); len(ctx) > 0 {
			attrs = append(attrs, "context", ctx)
		}
		logger.Error(msg, attrs...)
		return
	}
	logger.Error(msg, "error", err)
}
