package expr

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/vk/jayvee/internal/model"
	"github.com/vk/jayvee/internal/valuetype"
)

func registerTernaryOperators(r *Registry) {
	r.RegisterTernaryEvaluator("if", conditional{})
	r.RegisterTernaryTypeComputer("if", typeConditional)

	r.RegisterTernaryEvaluator("replace", ternaryFunc(evalReplace))
	r.RegisterTernaryTypeComputer("replace", typeReplace)
}

// conditional evaluates `cond ? then : else`. Under Lazy only the chosen
// branch is evaluated.
type conditional struct{}

func (conditional) Evaluate(e *model.TernaryExpression, ctx *Context, s Strategy) valuetype.Value {
	cond := Evaluate(e.First, ctx, s)
	if s == Exhaustive {
		then := Evaluate(e.Second, ctx, s)
		otherwise := Evaluate(e.Third, ctx, s)
		b, ok := asBool(cond)
		if cond == nil {
			return nil
		}
		if !ok {
			return operandMismatch(ctx, e.Operator, e.SrcRange, cond)
		}
		if b {
			return then
		}
		return otherwise
	}

	if cond == nil {
		return nil
	}
	b, ok := asBool(cond)
	if !ok {
		return operandMismatch(ctx, e.Operator, e.SrcRange, cond)
	}
	if b {
		return Evaluate(e.Second, ctx, s)
	}
	return Evaluate(e.Third, ctx, s)
}

func evalReplace(ctx *Context, a, b, c valuetype.Value, e *model.TernaryExpression) valuetype.Value {
	s, okA := asText(a)
	re, okB := b.(valuetype.Regex)
	repl, okC := asText(c)
	if !okA || !okB || !okC {
		return operandMismatch(ctx, e.Operator, e.SrcRange, a, b, c)
	}
	return valuetype.Text(re.Regexp().ReplaceAllString(s, repl))
}

func typeConditional(cond, then, otherwise valuetype.ValueType, e *model.TernaryExpression, diags *hcl.Diagnostics) valuetype.ValueType {
	if !cond.IsConvertibleTo(valuetype.Boolean) {
		return typeError(diags, e.First.Range(), "Invalid operand type",
			fmt.Sprintf("The condition must be boolean, got %s.", cond.Name()))
	}
	switch {
	case then.IsConvertibleTo(otherwise):
		return otherwise
	case otherwise.IsConvertibleTo(then):
		return then
	}
	return typeError(diags, e.SrcRange, "Incompatible branches",
		fmt.Sprintf("The branches have unrelated types %s and %s.", then.Name(), otherwise.Name()))
}

func typeReplace(a, b, c valuetype.ValueType, e *model.TernaryExpression, diags *hcl.Diagnostics) valuetype.ValueType {
	ok := true
	for _, check := range []struct {
		got     valuetype.ValueType
		want    valuetype.ValueType
		operand model.Expression
	}{
		{a, valuetype.TextType, e.First},
		{b, valuetype.RegexType, e.Second},
		{c, valuetype.TextType, e.Third},
	} {
		if !check.got.IsConvertibleTo(check.want) {
			typeError(diags, check.operand.Range(), "Invalid operand type",
				fmt.Sprintf("Operator 'replace' expects %s, got %s.", check.want.Name(), check.got.Name()))
			ok = false
		}
	}
	if !ok {
		return nil
	}
	return valuetype.TextType
}
