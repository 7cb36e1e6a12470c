package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/vk/jayvee/internal/ctxlog"
	"github.com/vk/jayvee/internal/engine"
	"github.com/vk/jayvee/internal/iotype"
	"github.com/vk/jayvee/internal/model"
)

// Run loads, validates and executes the configured pipelines. Pipelines run
// one after another; a failing pipeline does not prevent the others from
// running, and all failures are returned together.
func (a *App) Run(ctx context.Context) (err error) {
	runID := uuid.NewString()
	logger := a.logger.With("run_id", runID)
	ctx = ctxlog.WithLogger(ctx, logger)
	logger.Debug("App.Run method started.")

	params, err := loadParams(a.config)
	if err != nil {
		return err
	}
	ws, err := a.loadWorkspace(ctx, params)
	if err != nil {
		return err
	}
	pipelines, err := a.selectPipelines(ws)
	if err != nil {
		return err
	}
	if len(pipelines) == 0 {
		logger.Warn("No pipelines found, execution not required.")
		return nil
	}

	tracer, shutdown, err := newTracer(a.config.TraceFile)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, shutdown(context.WithoutCancel(ctx)))
	}()

	eng := engine.New(a.registry, a.metrics, tracer, engine.Options{
		Debug:        a.config.Debug,
		Granularity:  iotype.Granularity(a.config.DebugGranularity),
		DebugTargets: a.config.DebugTargets,
	})

	var errs []error
	for _, p := range pipelines {
		if _, err := eng.RunPipeline(ctx, p, params); err != nil {
			errs = append(errs, fmt.Errorf("pipeline '%s': %w", p.Name, err))
			if ctx.Err() != nil {
				break
			}
		}
	}

	if a.config.MetricsFile != "" {
		if err := a.metrics.WriteFile(a.config.MetricsFile); err != nil {
			errs = append(errs, err)
		} else {
			logger.Debug("Metrics written.", "path", a.config.MetricsFile)
		}
	}

	logger.Debug("App.Run method finished.", "failed_pipelines", len(errs))
	return errors.Join(errs...)
}

// Validate loads and validates the configured sources without executing
// anything. Runtime parameters are checked when a parameters file or
// parameters are configured.
func (a *App) Validate(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)

	params, err := loadParams(a.config)
	if err != nil {
		return err
	}
	if a.config.ParamsFile == "" && len(a.config.Params) == 0 {
		params = nil
	}

	ws, err := a.loadWorkspace(ctx, params)
	if err != nil {
		return err
	}
	if _, err := a.selectPipelines(ws); err != nil {
		return err
	}
	a.logger.Info("✅ Workspace is valid.", "pipelines", len(ws.Pipelines))
	return nil
}

func (a *App) selectPipelines(ws *model.Workspace) ([]*model.Pipeline, error) {
	if a.config.Pipeline == "" {
		return ws.Pipelines, nil
	}
	p, ok := ws.Pipeline(a.config.Pipeline)
	if !ok {
		return nil, fmt.Errorf("pipeline '%s' is not declared", a.config.Pipeline)
	}
	return []*model.Pipeline{p}, nil
}
