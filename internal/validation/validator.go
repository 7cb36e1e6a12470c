// Package validation checks a loaded workspace before it is executed.
//
// Validation is exhaustive: every declaration is checked and all problems are
// returned together as hcl.Diagnostics. Constant property expressions are
// evaluated with the Exhaustive strategy so that domain errors in operands
// that would otherwise be short-circuited are reported as well.
package validation

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/vk/jayvee/internal/constraint"
	"github.com/vk/jayvee/internal/ctxlog"
	"github.com/vk/jayvee/internal/expr"
	"github.com/vk/jayvee/internal/model"
	"github.com/vk/jayvee/internal/registry"
)

// Validator checks workspaces against the operators and constraint kinds of a
// registry.
type Validator struct {
	ops         *expr.Registry
	constraints *constraint.Registry
}

// New creates a validator for the given registry.
func New(reg *registry.Registry) *Validator {
	return &Validator{ops: reg.Operators, constraints: reg.Constraints}
}

// Validate checks ws. When params is not nil, runtime parameters used by
// pipelines are checked for presence and parseability as well.
func (v *Validator) Validate(ctx context.Context, ws *model.Workspace, params *expr.Parameters) hcl.Diagnostics {
	logger := ctxlog.FromContext(ctx)

	r := &run{
		Validator: v,
		ws:        ws,
		params:    params,
		eval:      expr.NewContext(v.ops, params),
	}
	r.eval.CollectDiagnostics(&r.diags)

	for _, name := range ws.ValueTypeOrder {
		r.valueType(ws.ValueTypes[name])
	}
	for _, name := range sortedKeys(ws.Constraints) {
		r.constraint(ws.Constraints[name])
	}
	for _, name := range sortedKeys(ws.Transforms) {
		r.transform(ws.Transforms[name])
	}
	r.compositeCycles()
	for _, name := range sortedKeys(ws.BlockTypes) {
		r.blockType(ws.BlockTypes[name])
	}
	for _, p := range ws.Pipelines {
		r.container(p, nil)
	}

	logger.Debug("Workspace validated.", "errors", len(r.diags.Errs()), "diagnostics", len(r.diags))
	return r.diags
}

// run holds the state of a single validation pass.
type run struct {
	*Validator
	ws     *model.Workspace
	params *expr.Parameters
	eval   *expr.Context
	diags  hcl.Diagnostics
}

func (r *run) errorf(subject hcl.Range, summary, format string, args ...any) {
	r.diags = append(r.diags, &hcl.Diagnostic{
		Severity: hcl.DiagError,
		Summary:  summary,
		Detail:   fmt.Sprintf(format, args...),
		Subject:  subject.Ptr(),
	})
}

func (r *run) warnf(subject hcl.Range, summary, format string, args ...any) {
	r.diags = append(r.diags, &hcl.Diagnostic{
		Severity: hcl.DiagWarning,
		Summary:  summary,
		Detail:   fmt.Sprintf(format, args...),
		Subject:  subject.Ptr(),
	})
}
