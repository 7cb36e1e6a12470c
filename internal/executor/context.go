package executor

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/vk/jayvee/internal/cellrange"
	"github.com/vk/jayvee/internal/constraint"
	"github.com/vk/jayvee/internal/expr"
	"github.com/vk/jayvee/internal/metrics"
	"github.com/vk/jayvee/internal/model"
	"github.com/vk/jayvee/internal/valuetype"
)

// Context is what an executor may use besides its input.
type Context struct {
	Block       *model.Block
	Eval        *expr.Context
	Constraints *constraint.Registry
	Metrics     *metrics.Metrics
}

// PropertyError reports a property that could not be resolved to a valid
// value.
type PropertyError struct {
	Block    string
	Property string
	Range    hcl.Range
	Reason   string
	Diags    hcl.Diagnostics
}

func (e *PropertyError) Error() string {
	msg := fmt.Sprintf("block '%s': property '%s' %s", e.Block, e.Property, e.Reason)
	if len(e.Diags) > 0 {
		details := make([]string, 0, len(e.Diags))
		for _, d := range e.Diags {
			details = append(details, d.Error())
		}
		msg += ": " + strings.Join(details, "; ")
	}
	return msg
}

// Has reports whether the property is assigned or has a default.
func (c *Context) Has(name string) bool {
	if _, ok := c.Block.Properties[name]; ok {
		return true
	}
	spec, ok := c.Block.Type.Property(name)
	return ok && spec.Default != nil
}

// Property evaluates the named property. An optional property that is
// neither assigned nor defaulted yields (nil, nil).
func (c *Context) Property(name string) (valuetype.Value, error) {
	spec, ok := c.Block.Type.Property(name)
	if !ok {
		return nil, c.errorf(name, c.Block.DeclRange, nil, "is not declared by blocktype '%s'", c.Block.Type.Name)
	}

	e, rng := spec.Default, spec.DeclRange
	if assigned, ok := c.Block.Properties[name]; ok {
		e, rng = assigned.Expr, assigned.DeclRange
	}
	if e == nil {
		if spec.Optional {
			return nil, nil
		}
		return nil, c.errorf(name, c.Block.DeclRange, nil, "is required")
	}

	var diags hcl.Diagnostics
	restore := c.Eval.CollectDiagnostics(&diags)
	v := expr.EvaluateAs(e, c.Eval, spec.Type, expr.Lazy)
	restore()

	if v == nil {
		return nil, c.errorf(name, rng, diags, "could not be evaluated")
	}
	if !c.Constraints.IsValid(c.Eval, v, spec.Type) {
		return nil, c.errorf(name, rng, nil, "value %s is not a valid %s", valuetype.Format(v), spec.Type.Name())
	}
	return v, nil
}

func (c *Context) errorf(name string, rng hcl.Range, diags hcl.Diagnostics, format string, args ...any) error {
	return &PropertyError{
		Block:    c.Block.Name,
		Property: name,
		Range:    rng,
		Reason:   fmt.Sprintf(format, args...),
		Diags:    diags,
	}
}

func typed[T valuetype.Value](c *Context, name string) (T, error) {
	var zero T
	v, err := c.Property(name)
	if err != nil {
		return zero, err
	}
	t, ok := v.(T)
	if !ok {
		return zero, c.errorf(name, c.Block.DeclRange, nil, "has unexpected value %s", valuetype.Format(v))
	}
	return t, nil
}

// Text returns a text property.
func (c *Context) Text(name string) (string, error) {
	t, err := typed[valuetype.Text](c, name)
	return string(t), err
}

// Integer returns an integer property.
func (c *Context) Integer(name string) (int, error) {
	n, err := typed[valuetype.Number](c, name)
	if err != nil {
		return 0, err
	}
	if math.Abs(float64(n)) > 1<<53 {
		return 0, c.errorf(name, c.Block.DeclRange, nil, "value %s is out of range", valuetype.Format(n))
	}
	return int(n), nil
}

// Decimal returns a decimal property.
func (c *Context) Decimal(name string) (float64, error) {
	n, err := typed[valuetype.Number](c, name)
	return float64(n), err
}

// Bool returns a boolean property.
func (c *Context) Bool(name string) (bool, error) {
	b, err := typed[valuetype.Bool](c, name)
	return bool(b), err
}

// Regex returns a compiled regular expression property.
func (c *Context) Regex(name string) (*regexp.Regexp, error) {
	r, err := typed[valuetype.Regex](c, name)
	if err != nil {
		return nil, err
	}
	return r.Regexp(), nil
}

// CellRange returns a cell range property.
func (c *Context) CellRange(name string) (cellrange.Range, error) {
	r, err := typed[valuetype.CellRange](c, name)
	return r.Range, err
}

// Collection returns a collection property.
func (c *Context) Collection(name string) (valuetype.Collection, error) {
	return typed[valuetype.Collection](c, name)
}

// Transform returns the transform a property refers to.
func (c *Context) Transform(name string) (*model.Transform, error) {
	ref, err := typed[valuetype.TransformRef](c, name)
	if err != nil {
		return nil, err
	}
	tr, ok := ref.Ref.(*model.Transform)
	if !ok {
		return nil, c.errorf(name, c.Block.DeclRange, nil, "does not refer to a transform")
	}
	return tr, nil
}
