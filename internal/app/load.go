package app

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/vk/jayvee/internal/ctxlog"
	"github.com/vk/jayvee/internal/expr"
	"github.com/vk/jayvee/internal/loader"
	"github.com/vk/jayvee/internal/model"
	"github.com/vk/jayvee/internal/validation"
)

// DiagnosticsError is returned when loading or validating the sources
// produced errors. The diagnostics have already been reported.
type DiagnosticsError struct {
	Stage string
	Diags hcl.Diagnostics
}

func (e *DiagnosticsError) Error() string {
	return fmt.Sprintf("%s failed with %d error(s)", e.Stage, len(e.Diags.Errs()))
}

// loadWorkspace loads and validates the configured sources. Warnings are
// reported but do not fail.
func (a *App) loadWorkspace(ctx context.Context, params *expr.Parameters) (*model.Workspace, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Loading workspace...", "paths", a.config.Paths)

	l := loader.New(a.registry)
	ws, diags, err := l.LoadFiles(ctx, a.config.Paths...)
	if err != nil {
		return nil, fmt.Errorf("failed to load sources: %w", err)
	}
	a.reportDiagnostics(ctx, l.Files(), diags)
	if diags.HasErrors() {
		return nil, &DiagnosticsError{Stage: "loading", Diags: diags}
	}
	logger.Info("Workspace loaded.",
		"pipelines", len(ws.Pipelines),
		"valuetypes", len(ws.ValueTypes),
		"transforms", len(ws.Transforms),
	)

	diags = validation.New(a.registry).Validate(ctx, ws, params)
	a.reportDiagnostics(ctx, l.Files(), diags)
	if diags.HasErrors() {
		return nil, &DiagnosticsError{Stage: "validation", Diags: diags}
	}
	logger.Debug("Workspace validation passed.")
	return ws, nil
}

// reportDiagnostics renders diags with source snippets for the text format
// and as structured records for the json format.
func (a *App) reportDiagnostics(ctx context.Context, files map[string]*hcl.File, diags hcl.Diagnostics) {
	if len(diags) == 0 {
		return
	}
	if a.config.LogFormat == "json" {
		ctxlog.LogDiagnostics(ctxlog.FromContext(ctx), diags)
		return
	}
	wr := hcl.NewDiagnosticTextWriter(a.outW, files, 100, false)
	if err := wr.WriteDiagnostics(diags); err != nil {
		ctxlog.FromContext(ctx).Warn("Failed to render diagnostics.", "error", err)
		ctxlog.LogDiagnostics(ctxlog.FromContext(ctx), diags)
	}
}
