package expr

import (
	"math"

	"github.com/hashicorp/hcl/v2"
	"github.com/vk/jayvee/internal/model"
	"github.com/vk/jayvee/internal/valuetype"
)

// unaryFunc adapts a function over an already evaluated operand.
type unaryFunc func(ctx *Context, operand valuetype.Value, e *model.UnaryExpression) valuetype.Value

func (f unaryFunc) Evaluate(e *model.UnaryExpression, ctx *Context, s Strategy) valuetype.Value {
	v := Evaluate(e.Operand, ctx, s)
	if v == nil {
		return nil
	}
	return f(ctx, v, e)
}

// binaryFunc adapts a function over two eagerly evaluated operands.
type binaryFunc func(ctx *Context, left, right valuetype.Value, e *model.BinaryExpression) valuetype.Value

func (f binaryFunc) Evaluate(e *model.BinaryExpression, ctx *Context, s Strategy) valuetype.Value {
	left := Evaluate(e.Left, ctx, s)
	if left == nil && s == Lazy {
		return nil
	}
	right := Evaluate(e.Right, ctx, s)
	if left == nil || right == nil {
		return nil
	}
	return f(ctx, left, right, e)
}

// ternaryFunc adapts a function over three eagerly evaluated operands.
type ternaryFunc func(ctx *Context, a, b, c valuetype.Value, e *model.TernaryExpression) valuetype.Value

func (f ternaryFunc) Evaluate(e *model.TernaryExpression, ctx *Context, s Strategy) valuetype.Value {
	vals := make([]valuetype.Value, 0, 3)
	for _, op := range []model.Expression{e.First, e.Second, e.Third} {
		v := Evaluate(op, ctx, s)
		if v == nil && s == Lazy {
			return nil
		}
		vals = append(vals, v)
	}
	for _, v := range vals {
		if v == nil {
			return nil
		}
	}
	return f(ctx, vals[0], vals[1], vals[2], e)
}

func asNumber(v valuetype.Value) (float64, bool) {
	n, ok := v.(valuetype.Number)
	return float64(n), ok
}

func asBool(v valuetype.Value) (bool, bool) {
	b, ok := v.(valuetype.Bool)
	return bool(b), ok
}

func asText(v valuetype.Value) (string, bool) {
	t, ok := v.(valuetype.Text)
	return string(t), ok
}

// number wraps a computed float, rejecting non-finite results.
func number(ctx *Context, f float64, op string, rng hcl.Range) valuetype.Value {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		ctx.report("Arithmetic error", rng, "The result of '%s' is not a finite number.", op)
		return nil
	}
	return valuetype.Number(f)
}

func operandMismatch(ctx *Context, op string, rng hcl.Range, values ...valuetype.Value) valuetype.Value {
	kinds := make([]string, len(values))
	for i, v := range values {
		if t := valuetype.TypeOf(v); t != nil {
			kinds[i] = t.Name()
		} else {
			kinds[i] = "unknown"
		}
	}
	ctx.report("Invalid operand", rng, "Operator '%s' cannot be applied to operands of type %v.", op, kinds)
	return nil
}

// typeError appends a type diagnostic and returns nil.
func typeError(diags *hcl.Diagnostics, rng hcl.Range, summary, detail string) valuetype.ValueType {
	if diags != nil {
		*diags = append(*diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  summary,
			Detail:   detail,
			Subject:  rng.Ptr(),
		})
	}
	return nil
}
