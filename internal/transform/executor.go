// Package transform applies a transform definition to table columns row by
// row.
package transform

import (
	"context"
	"errors"
	"fmt"

	"github.com/vk/jayvee/internal/constraint"
	"github.com/vk/jayvee/internal/ctxlog"
	"github.com/vk/jayvee/internal/expr"
	"github.com/vk/jayvee/internal/iotype"
	"github.com/vk/jayvee/internal/model"
	"github.com/vk/jayvee/internal/valuetype"
)

var (
	ErrNoInputPorts        = errors.New("transform declares no input ports")
	ErrNoOutputPort        = errors.New("transform declares no output port")
	ErrNoBody              = errors.New("transform has no output assignment")
	ErrColumnCountMismatch = errors.New("number of columns does not match the number of input ports")
)

// Executor runs one transform.
type Executor struct {
	def         *model.Transform
	constraints *constraint.Registry
}

// NewExecutor checks the shape of def and returns an executor for it.
func NewExecutor(def *model.Transform, constraints *constraint.Registry) (*Executor, error) {
	switch {
	case len(def.Inputs) == 0:
		return nil, fmt.Errorf("transform '%s': %w", def.Name, ErrNoInputPorts)
	case def.Output == nil:
		return nil, fmt.Errorf("transform '%s': %w", def.Name, ErrNoOutputPort)
	case def.Body == nil:
		return nil, fmt.Errorf("transform '%s': %w", def.Name, ErrNoBody)
	}
	return &Executor{def: def, constraints: constraints}, nil
}

// OutputType returns the type of the produced column.
func (x *Executor) OutputType() valuetype.ValueType {
	return x.def.Output.Type
}

// Result is the outcome of applying a transform. Column holds one value per
// kept row, in row order. DeletedRows lists the zero-based rows that were
// dropped, ascending.
type Result struct {
	Column      *iotype.Column
	DeletedRows []int
}

// Apply evaluates the transform for every row. The i-th column is bound to
// the i-th input port. Rows whose inputs or output do not fit the declared
// types, or whose output does not evaluate, are dropped and logged.
func (x *Executor) Apply(ctx context.Context, columns []*iotype.Column, numRows int, ec *expr.Context) (*Result, error) {
	if len(columns) != len(x.def.Inputs) {
		return nil, fmt.Errorf("transform '%s': %w: got %d columns for %d ports",
			x.def.Name, ErrColumnCountMismatch, len(columns), len(x.def.Inputs))
	}
	for _, col := range columns {
		if len(col.Values) < numRows {
			return nil, fmt.Errorf("transform '%s': column '%s' has %d values, expected %d",
				x.def.Name, col.Name, len(col.Values), numRows)
		}
	}

	logger := ctxlog.FromContext(ctx).With("transform", x.def.Name)
	res := &Result{
		Column: &iotype.Column{Type: x.def.Output.Type, Values: make([]valuetype.Value, 0, numRows)},
	}

	for row := 0; row < numRows; row++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		v, reason := x.applyRow(columns, row, ec)
		if v == nil {
			logger.Debug("Dropping row.", "row", row+1, "reason", reason)
			res.DeletedRows = append(res.DeletedRows, row)
			continue
		}
		res.Column.Values = append(res.Column.Values, v)
	}
	return res, nil
}

// applyRow returns the output value of one row, or nil and the reason the
// row is dropped.
func (x *Executor) applyRow(columns []*iotype.Column, row int, ec *expr.Context) (valuetype.Value, string) {
	bindings := make(map[string]valuetype.Value, len(x.def.Inputs))
	for i, port := range x.def.Inputs {
		v := columns[i].Values[row]
		if !x.constraints.IsValid(ec, v, port.Type) {
			return nil, fmt.Sprintf("type mismatch: value %s of column '%s' is not a valid %s",
				valuetype.Format(v), columns[i].Name, port.Type.Name())
		}
		bindings[port.Name] = v
	}

	ec.PushScope(bindings)
	defer ec.PopScope()

	out := expr.Evaluate(x.def.Body, ec, expr.Lazy)
	if out == nil {
		return nil, "evaluation failed"
	}
	if !x.constraints.IsValid(ec, out, x.def.Output.Type) {
		return nil, fmt.Sprintf("type mismatch: result %s is not a valid %s", valuetype.Format(out), x.def.Output.Type.Name())
	}
	return out, ""
}
