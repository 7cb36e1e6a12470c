// Package ctxlog provides a context key for safely passing a slog.Logger
// instance through context.Context, and helpers for logging diagnostics with
// their source locations.
package ctxlog

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hashicorp/hcl/v2"
)

// key is an unexported type to prevent collisions with context keys from other packages.
type key struct{}

// loggerKey is the key for the slog.Logger in a context.Context.
var loggerKey = key{}

// WithLogger returns a new context with the provided logger embedded.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// FromContext extracts the slog.Logger from a context. It panics when no
// logger was embedded.
func FromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(loggerKey).(*slog.Logger); ok {
		return logger
	}
	panic("ctxlog: logger missing from context")
}

// LogDiagnostics writes one record per diagnostic. Errors are logged at error
// level, warnings at warn level. The location is attached as a "location"
// attribute in file:line:col form.
func LogDiagnostics(logger *slog.Logger, diags hcl.Diagnostics) {
	for _, d := range diags {
		level := slog.LevelError
		if d.Severity == hcl.DiagWarning {
			level = slog.LevelWarn
		}
		attrs := []any{}
		if d.Subject != nil {
			attrs = append(attrs, "location", Location(*d.Subject))
		}
		if d.Detail != "" {
			attrs = append(attrs, "detail", d.Detail)
		}
		logger.Log(context.Background(), level, d.Summary, attrs...)
	}
}

// Location renders a source range as file:line:col.
func Location(r hcl.Range) string {
	return fmt.Sprintf("%s:%d:%d", r.Filename, r.Start.Line, r.Start.Column)
}
