package expr

import (
	"fmt"

	"github.com/vk/jayvee/internal/model"
	"github.com/vk/jayvee/internal/valuetype"
)

// Evaluate computes the value of e. It returns nil when the expression is
// undefined: an unbound variable, a missing runtime parameter, an operand of
// the wrong kind or a domain error. Diagnostics for these cases are reported
// to the context's sink, when one is installed.
//
// Evaluate does not change the context apart from scopes pushed by the
// caller beforehand.
func Evaluate(e model.Expression, ctx *Context, s Strategy) valuetype.Value {
	switch e := e.(type) {
	case *model.Literal:
		return e.Value

	case *model.CollectionLiteral:
		out := make(valuetype.Collection, 0, len(e.Elements))
		undefined := false
		for _, el := range e.Elements {
			v := Evaluate(el, ctx, s)
			if v == nil {
				undefined = true
				if s == Lazy {
					return nil
				}
				continue
			}
			out = append(out, v)
		}
		if undefined {
			return nil
		}
		return out

	case *model.Variable:
		v, ok := ctx.Lookup(e.Name)
		if !ok {
			ctx.report("Unbound variable", e.SrcRange, "There is no value bound to '%s' in this scope.", e.Name)
			return nil
		}
		return v

	case *model.RuntimeParameter:
		raw, ok := ctx.params.Raw(e.Name)
		if !ok {
			ctx.report("Missing runtime parameter", e.SrcRange, "The runtime parameter '%s' was not provided.", e.Name)
			return nil
		}
		return valuetype.Text(raw)

	case *model.ValueKeyword:
		v, ok := ctx.ValueUnderTest()
		if !ok {
			ctx.report("No value under test", e.SrcRange, "The 'value' keyword can only be used inside constraint expressions.")
			return nil
		}
		return v

	case *model.UnaryExpression:
		ev, ok := ctx.ops.unary[e.Operator]
		if !ok {
			ctx.report("Unknown operator", e.SrcRange, "No evaluator is registered for unary operator '%s'.", e.Operator)
			return nil
		}
		return ev.Evaluate(e, ctx, s)

	case *model.BinaryExpression:
		ev, ok := ctx.ops.binary[e.Operator]
		if !ok {
			ctx.report("Unknown operator", e.SrcRange, "No evaluator is registered for binary operator '%s'.", e.Operator)
			return nil
		}
		return ev.Evaluate(e, ctx, s)

	case *model.TernaryExpression:
		ev, ok := ctx.ops.ternary[e.Operator]
		if !ok {
			ctx.report("Unknown operator", e.SrcRange, "No evaluator is registered for ternary operator '%s'.", e.Operator)
			return nil
		}
		return ev.Evaluate(e, ctx, s)
	}
	panic(fmt.Sprintf("expr: unknown expression node %T", e))
}

// EvaluateAs evaluates e where a value of type t is expected. A runtime
// parameter used as the whole expression is parsed as t; any other
// expression is evaluated normally.
func EvaluateAs(e model.Expression, ctx *Context, t valuetype.ValueType, s Strategy) valuetype.Value {
	if rp, ok := e.(*model.RuntimeParameter); ok {
		v := ctx.params.Lookup(rp.Name, t)
		if v == nil {
			if _, present := ctx.params.Raw(rp.Name); present {
				ctx.report("Invalid runtime parameter", rp.SrcRange, "The runtime parameter '%s' is not a valid %s.", rp.Name, t.Name())
			} else {
				ctx.report("Missing runtime parameter", rp.SrcRange, "The runtime parameter '%s' was not provided.", rp.Name)
			}
		}
		return v
	}
	return Evaluate(e, ctx, s)
}
