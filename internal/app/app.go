package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/vk/jayvee/internal/ctxlog"
	"github.com/vk/jayvee/internal/loader"
	"github.com/vk/jayvee/internal/metrics"
	"github.com/vk/jayvee/internal/registry"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	registry *registry.Registry
	metrics  *metrics.Metrics
	config   *Config
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance, including its own isolated logger and registry.
// It panics when the registered executors and module manifests disagree,
// which is a programming error.
func NewApp(outW io.Writer, cfg *Config, modules ...registry.Module) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	reg := registry.New()
	if len(modules) == 0 {
		modules = coreModules
	}
	for _, mod := range modules {
		mod.Register(reg)
	}
	logger.Debug("All Go modules registered.", "count", len(modules))

	// The manifests alone must load cleanly and match the executors.
	ws, diags := loader.New(reg).Load(ctx)
	if diags.HasErrors() {
		panic(fmt.Errorf("module manifests are invalid: %w", diags))
	}
	if err := reg.ValidateRegistry(ctx, ws); err != nil {
		panic(err)
	}
	logger.Debug("Registry validation passed.", "executors", len(reg.ExecutorNames()))

	return &App{
		outW:     outW,
		logger:   logger,
		registry: reg,
		metrics:  metrics.New(),
		config:   cfg,
	}
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// Metrics returns the application's metrics collector.
func (a *App) Metrics() *metrics.Metrics {
	return a.metrics
}
