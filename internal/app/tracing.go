package app

import (
	"context"
	"errors"
	"fmt"
	"os"

	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/vk/jayvee"

// newTracer returns a tracer that writes finished spans as JSON to path.
// With an empty path it returns a nil tracer, which the engine replaces with
// a no-op one. The returned shutdown function flushes and closes the file.
func newTracer(path string) (trace.Tracer, func(context.Context) error, error) {
	if path == "" {
		return nil, func(context.Context) error { return nil }, nil
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create trace file: %w", err)
	}
	exporter, err := stdouttrace.New(stdouttrace.WithWriter(f), stdouttrace.WithPrettyPrint())
	if err != nil {
		f.Close()
		return nil, nil, fmt.Errorf("failed to create trace exporter: %w", err)
	}

	provider := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	shutdown := func(ctx context.Context) error {
		return errors.Join(provider.Shutdown(ctx), f.Close())
	}
	return provider.Tracer(tracerName), shutdown, nil
}
