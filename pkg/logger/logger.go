// Package logger configures the process-wide slog logger for the retrieval
// engine and threads per-request loggers through context. Components get
// their own child logger via WithComponent so index builds, query serving,
// and ingest can be filtered apart in aggregated output.
package logger

import (
	"context"
	"log/slog"
	"os"
	"strings"
)

type requestIDKey struct{}

var levelNames = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// Setup installs the default logger. Format "json" emits structured JSON
// for log shipping; anything else falls back to the human-readable text
// handler. Unknown levels default to info.
func Setup(level, format string) {
	lvl, ok := levelNames[strings.ToLower(level)]
	if !ok {
		lvl = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: lvl}

	var h slog.Handler
	if format == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(h))
}

// WithRequestID stores a request ID for FromContext to pick up.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// FromContext returns a logger carrying the request ID stored in ctx, or
// the default logger when none is present.
func FromContext(ctx context.Context) *slog.Logger {
	id, ok := ctx.Value(requestIDKey{}).(string)
	if !ok || id == "" {
		return slog.Default()
	}
	return slog.Default().With("request_id", id)
}

// WithComponent returns a child logger tagged with the component name.
func WithComponent(name string) *slog.Logger {
	return slog.Default().With("component", name)
}
