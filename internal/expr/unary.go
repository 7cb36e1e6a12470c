package expr

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/hashicorp/hcl/v2"
	"github.com/vk/jayvee/internal/model"
	"github.com/vk/jayvee/internal/valuetype"
)

func registerUnaryOperators(r *Registry) {
	unary := func(op string, ev unaryFunc, tc UnaryTypeComputer) {
		r.RegisterUnaryEvaluator(op, ev)
		r.RegisterUnaryTypeComputer(op, tc)
	}

	unary("not", evalNot, requireUnary(valuetype.Boolean, fixedResult(valuetype.Boolean)))
	unary("+", numericUnary(func(x float64) float64 { return x }), requireUnary(valuetype.Decimal, sameNumeric))
	unary("-", numericUnary(func(x float64) float64 { return -x }), requireUnary(valuetype.Decimal, sameNumeric))
	unary("sqrt", evalSqrt, requireUnary(valuetype.Decimal, fixedResult(valuetype.Decimal)))
	unary("floor", numericUnary(math.Floor), requireUnary(valuetype.Decimal, fixedResult(valuetype.Integer)))
	unary("ceil", numericUnary(math.Ceil), requireUnary(valuetype.Decimal, fixedResult(valuetype.Integer)))
	unary("round", numericUnary(roundHalfUp), requireUnary(valuetype.Decimal, fixedResult(valuetype.Integer)))
	unary("lengthof", evalLengthOf, typeLengthOf)
	unary("lowercase", textUnary(strings.ToLower), requireUnary(valuetype.TextType, fixedResult(valuetype.TextType)))
	unary("uppercase", textUnary(strings.ToUpper), requireUnary(valuetype.TextType, fixedResult(valuetype.TextType)))
	unary("asText", evalAsText, conversion(valuetype.TextType))
	unary("asDecimal", evalAsDecimal, conversion(valuetype.Decimal))
	unary("asInteger", evalAsInteger, conversion(valuetype.Integer))
	unary("asBoolean", evalAsBoolean, conversion(valuetype.Boolean))
}

func roundHalfUp(x float64) float64 {
	return math.Floor(x + 0.5)
}

func evalNot(ctx *Context, v valuetype.Value, e *model.UnaryExpression) valuetype.Value {
	b, ok := asBool(v)
	if !ok {
		return operandMismatch(ctx, e.Operator, e.SrcRange, v)
	}
	return valuetype.Bool(!b)
}

func numericUnary(fn func(float64) float64) unaryFunc {
	return func(ctx *Context, v valuetype.Value, e *model.UnaryExpression) valuetype.Value {
		x, ok := asNumber(v)
		if !ok {
			return operandMismatch(ctx, e.Operator, e.SrcRange, v)
		}
		return number(ctx, fn(x), e.Operator, e.SrcRange)
	}
}

func textUnary(fn func(string) string) unaryFunc {
	return func(ctx *Context, v valuetype.Value, e *model.UnaryExpression) valuetype.Value {
		s, ok := asText(v)
		if !ok {
			return operandMismatch(ctx, e.Operator, e.SrcRange, v)
		}
		return valuetype.Text(fn(s))
	}
}

func evalSqrt(ctx *Context, v valuetype.Value, e *model.UnaryExpression) valuetype.Value {
	x, ok := asNumber(v)
	if !ok {
		return operandMismatch(ctx, e.Operator, e.SrcRange, v)
	}
	if x < 0 {
		ctx.report("Arithmetic error", e.SrcRange, "Cannot take the square root of the negative number %s.", valuetype.Format(v))
		return nil
	}
	return number(ctx, math.Sqrt(x), e.Operator, e.SrcRange)
}

func evalLengthOf(ctx *Context, v valuetype.Value, e *model.UnaryExpression) valuetype.Value {
	switch v := v.(type) {
	case valuetype.Text:
		return valuetype.Number(utf8.RuneCountInString(string(v)))
	case valuetype.Collection:
		return valuetype.Number(len(v))
	}
	return operandMismatch(ctx, e.Operator, e.SrcRange, v)
}

func evalAsText(ctx *Context, v valuetype.Value, e *model.UnaryExpression) valuetype.Value {
	switch v.(type) {
	case valuetype.Text, valuetype.Number, valuetype.Bool:
		return valuetype.Text(valuetype.Format(v))
	}
	return operandMismatch(ctx, e.Operator, e.SrcRange, v)
}

func evalAsDecimal(ctx *Context, v valuetype.Value, e *model.UnaryExpression) valuetype.Value {
	switch v := v.(type) {
	case valuetype.Number:
		return v
	case valuetype.Bool:
		if v {
			return valuetype.Number(1)
		}
		return valuetype.Number(0)
	case valuetype.Text:
		return parseOrReport(ctx, string(v), valuetype.Decimal, e.SrcRange)
	}
	return operandMismatch(ctx, e.Operator, e.SrcRange, v)
}

func evalAsInteger(ctx *Context, v valuetype.Value, e *model.UnaryExpression) valuetype.Value {
	switch v := v.(type) {
	case valuetype.Number:
		if !v.IsInteger() {
			ctx.report("Conversion error", e.SrcRange, "The decimal %s has a fractional part and cannot be converted to integer.", valuetype.Format(v))
			return nil
		}
		return v
	case valuetype.Bool:
		if v {
			return valuetype.Number(1)
		}
		return valuetype.Number(0)
	case valuetype.Text:
		return parseOrReport(ctx, string(v), valuetype.Integer, e.SrcRange)
	}
	return operandMismatch(ctx, e.Operator, e.SrcRange, v)
}

func evalAsBoolean(ctx *Context, v valuetype.Value, e *model.UnaryExpression) valuetype.Value {
	switch v := v.(type) {
	case valuetype.Bool:
		return v
	case valuetype.Number:
		return valuetype.Bool(v != 0)
	case valuetype.Text:
		return parseOrReport(ctx, string(v), valuetype.Boolean, e.SrcRange)
	}
	return operandMismatch(ctx, e.Operator, e.SrcRange, v)
}

func parseOrReport(ctx *Context, s string, t valuetype.ValueType, rng hcl.Range) valuetype.Value {
	v, ok := valuetype.Parse(s, t)
	if !ok {
		ctx.report("Conversion error", rng, "The text %q is not a valid %s.", s, t.Name())
		return nil
	}
	return v
}

// requireUnary checks that the operand converts to want before delegating.
func requireUnary(want valuetype.ValueType, next UnaryTypeComputer) UnaryTypeComputer {
	return func(operand valuetype.ValueType, e *model.UnaryExpression, diags *hcl.Diagnostics) valuetype.ValueType {
		if !operand.IsConvertibleTo(want) {
			return typeError(diags, e.Operand.Range(), "Invalid operand type",
				fmt.Sprintf("Operator '%s' expects an operand of type %s, got %s.", e.Operator, want.Name(), operand.Name()))
		}
		return next(operand, e, diags)
	}
}

func fixedResult(t valuetype.ValueType) UnaryTypeComputer {
	return func(valuetype.ValueType, *model.UnaryExpression, *hcl.Diagnostics) valuetype.ValueType {
		return t
	}
}

func sameNumeric(operand valuetype.ValueType, _ *model.UnaryExpression, _ *hcl.Diagnostics) valuetype.ValueType {
	if operand.IsConvertibleTo(valuetype.Integer) {
		return valuetype.Integer
	}
	return valuetype.Decimal
}

func typeLengthOf(operand valuetype.ValueType, e *model.UnaryExpression, diags *hcl.Diagnostics) valuetype.ValueType {
	switch operand.(type) {
	case *valuetype.CollectionType, valuetype.EmptyCollectionType:
		return valuetype.Integer
	}
	if operand.IsConvertibleTo(valuetype.TextType) {
		return valuetype.Integer
	}
	return typeError(diags, e.Operand.Range(), "Invalid operand type",
		fmt.Sprintf("Operator 'lengthof' expects text or a collection, got %s.", operand.Name()))
}

// conversion accepts any scalar user-declarable operand.
func conversion(result valuetype.ValueType) UnaryTypeComputer {
	return func(operand valuetype.ValueType, e *model.UnaryExpression, diags *hcl.Diagnostics) valuetype.ValueType {
		for _, t := range []valuetype.ValueType{valuetype.Boolean, valuetype.Decimal, valuetype.TextType} {
			if operand.IsConvertibleTo(t) {
				return result
			}
		}
		return typeError(diags, e.Operand.Range(), "Invalid operand type",
			fmt.Sprintf("Operator '%s' cannot convert a value of type %s.", e.Operator, operand.Name()))
	}
}
