package expr

import (
	"fmt"
	"math"

	"github.com/hashicorp/hcl/v2"
	"github.com/vk/jayvee/internal/model"
	"github.com/vk/jayvee/internal/valuetype"
)

func registerBinaryOperators(r *Registry) {
	binary := func(op string, ev BinaryEvaluator, tc BinaryTypeComputer) {
		r.RegisterBinaryEvaluator(op, ev)
		r.RegisterBinaryTypeComputer(op, tc)
	}

	binary("pow", arithmetic(math.Pow), numericBinary(valuetype.Decimal))
	binary("root", binaryFunc(evalRoot), numericBinary(valuetype.Decimal))
	binary("*", arithmetic(func(a, b float64) float64 { return a * b }), numericBinary(nil))
	binary("+", arithmetic(func(a, b float64) float64 { return a + b }), numericBinary(nil))
	binary("-", arithmetic(func(a, b float64) float64 { return a - b }), numericBinary(nil))
	binary("/", binaryFunc(evalDivide), numericBinary(valuetype.Decimal))
	binary("%", binaryFunc(evalModulo), numericBinary(nil))

	binary("<", comparison(func(a, b float64) bool { return a < b }), relational)
	binary("<=", comparison(func(a, b float64) bool { return a <= b }), relational)
	binary(">", comparison(func(a, b float64) bool { return a > b }), relational)
	binary(">=", comparison(func(a, b float64) bool { return a >= b }), relational)

	binary("==", binaryFunc(func(_ *Context, l, r valuetype.Value, _ *model.BinaryExpression) valuetype.Value {
		return valuetype.Bool(valuetype.Equal(l, r))
	}), equality)
	binary("!=", binaryFunc(func(_ *Context, l, r valuetype.Value, _ *model.BinaryExpression) valuetype.Value {
		return valuetype.Bool(!valuetype.Equal(l, r))
	}), equality)

	binary("matches", binaryFunc(evalMatches), typeMatches)
	binary("in", binaryFunc(evalIn), typeIn)

	binary("xor", logical(func(a, b bool) bool { return a != b }), booleanBinary)
	binary("and", shortCircuit{stopOn: false}, booleanBinary)
	binary("or", shortCircuit{stopOn: true}, booleanBinary)
}

func arithmetic(fn func(a, b float64) float64) binaryFunc {
	return func(ctx *Context, l, r valuetype.Value, e *model.BinaryExpression) valuetype.Value {
		a, okA := asNumber(l)
		b, okB := asNumber(r)
		if !okA || !okB {
			return operandMismatch(ctx, e.Operator, e.SrcRange, l, r)
		}
		return number(ctx, fn(a, b), e.Operator, e.SrcRange)
	}
}

func evalDivide(ctx *Context, l, r valuetype.Value, e *model.BinaryExpression) valuetype.Value {
	a, okA := asNumber(l)
	b, okB := asNumber(r)
	if !okA || !okB {
		return operandMismatch(ctx, e.Operator, e.SrcRange, l, r)
	}
	if b == 0 {
		ctx.report("Arithmetic error", e.SrcRange, "Division by zero.")
		return nil
	}
	return number(ctx, a/b, e.Operator, e.SrcRange)
}

func evalModulo(ctx *Context, l, r valuetype.Value, e *model.BinaryExpression) valuetype.Value {
	a, okA := asNumber(l)
	b, okB := asNumber(r)
	if !okA || !okB {
		return operandMismatch(ctx, e.Operator, e.SrcRange, l, r)
	}
	if b == 0 {
		ctx.report("Arithmetic error", e.SrcRange, "Modulo by zero.")
		return nil
	}
	return number(ctx, math.Mod(a, b), e.Operator, e.SrcRange)
}

func evalRoot(ctx *Context, l, r valuetype.Value, e *model.BinaryExpression) valuetype.Value {
	radicand, okA := asNumber(l)
	degree, okB := asNumber(r)
	if !okA || !okB {
		return operandMismatch(ctx, e.Operator, e.SrcRange, l, r)
	}
	if degree == 0 {
		ctx.report("Arithmetic error", e.SrcRange, "The root of degree zero is undefined.")
		return nil
	}
	if radicand < 0 {
		odd := degree == math.Trunc(degree) && math.Mod(math.Abs(degree), 2) == 1
		if !odd {
			ctx.report("Arithmetic error", e.SrcRange, "Cannot take a root of degree %s of the negative number %s.", valuetype.Format(r), valuetype.Format(l))
			return nil
		}
		return number(ctx, -math.Pow(-radicand, 1/degree), e.Operator, e.SrcRange)
	}
	return number(ctx, math.Pow(radicand, 1/degree), e.Operator, e.SrcRange)
}

func comparison(fn func(a, b float64) bool) binaryFunc {
	return func(ctx *Context, l, r valuetype.Value, e *model.BinaryExpression) valuetype.Value {
		a, okA := asNumber(l)
		b, okB := asNumber(r)
		if !okA || !okB {
			return operandMismatch(ctx, e.Operator, e.SrcRange, l, r)
		}
		return valuetype.Bool(fn(a, b))
	}
}

func logical(fn func(a, b bool) bool) binaryFunc {
	return func(ctx *Context, l, r valuetype.Value, e *model.BinaryExpression) valuetype.Value {
		a, okA := asBool(l)
		b, okB := asBool(r)
		if !okA || !okB {
			return operandMismatch(ctx, e.Operator, e.SrcRange, l, r)
		}
		return valuetype.Bool(fn(a, b))
	}
}

func evalMatches(ctx *Context, l, r valuetype.Value, e *model.BinaryExpression) valuetype.Value {
	s, okA := asText(l)
	re, okB := r.(valuetype.Regex)
	if !okA || !okB {
		return operandMismatch(ctx, e.Operator, e.SrcRange, l, r)
	}
	return valuetype.Bool(re.Regexp().MatchString(s))
}

func evalIn(ctx *Context, l, r valuetype.Value, e *model.BinaryExpression) valuetype.Value {
	coll, ok := r.(valuetype.Collection)
	if !ok {
		return operandMismatch(ctx, e.Operator, e.SrcRange, l, r)
	}
	for _, el := range coll {
		if valuetype.Equal(l, el) {
			return valuetype.Bool(true)
		}
	}
	return valuetype.Bool(false)
}

// shortCircuit implements `and` (stopOn false) and `or` (stopOn true).
type shortCircuit struct {
	stopOn bool
}

func (sc shortCircuit) Evaluate(e *model.BinaryExpression, ctx *Context, s Strategy) valuetype.Value {
	left := Evaluate(e.Left, ctx, s)
	lb, leftOK := asBool(left)
	if left != nil && !leftOK {
		return operandMismatch(ctx, e.Operator, e.SrcRange, left)
	}
	if s == Lazy {
		if left == nil {
			return nil
		}
		if lb == sc.stopOn {
			return valuetype.Bool(lb)
		}
	}

	right := Evaluate(e.Right, ctx, s)
	if left == nil || right == nil {
		return nil
	}
	rb, ok := asBool(right)
	if !ok {
		return operandMismatch(ctx, e.Operator, e.SrcRange, right)
	}
	if lb == sc.stopOn {
		return valuetype.Bool(lb)
	}
	return valuetype.Bool(rb)
}

// numericBinary requires numeric operands. A nil result type applies the
// promotion rule: integer when both operands are integers, decimal otherwise.
func numericBinary(result valuetype.ValueType) BinaryTypeComputer {
	return func(l, r valuetype.ValueType, e *model.BinaryExpression, diags *hcl.Diagnostics) valuetype.ValueType {
		okL := requireOperand(l, valuetype.Decimal, e, e.Left, diags)
		okR := requireOperand(r, valuetype.Decimal, e, e.Right, diags)
		if !okL || !okR {
			return nil
		}
		if result != nil {
			return result
		}
		if l.IsConvertibleTo(valuetype.Integer) && r.IsConvertibleTo(valuetype.Integer) {
			return valuetype.Integer
		}
		return valuetype.Decimal
	}
}

func relational(l, r valuetype.ValueType, e *model.BinaryExpression, diags *hcl.Diagnostics) valuetype.ValueType {
	okL := requireOperand(l, valuetype.Decimal, e, e.Left, diags)
	okR := requireOperand(r, valuetype.Decimal, e, e.Right, diags)
	if !okL || !okR {
		return nil
	}
	return valuetype.Boolean
}

func booleanBinary(l, r valuetype.ValueType, e *model.BinaryExpression, diags *hcl.Diagnostics) valuetype.ValueType {
	okL := requireOperand(l, valuetype.Boolean, e, e.Left, diags)
	okR := requireOperand(r, valuetype.Boolean, e, e.Right, diags)
	if !okL || !okR {
		return nil
	}
	return valuetype.Boolean
}

func equality(l, r valuetype.ValueType, e *model.BinaryExpression, diags *hcl.Diagnostics) valuetype.ValueType {
	if !l.IsConvertibleTo(r) && !r.IsConvertibleTo(l) {
		return typeError(diags, e.SrcRange, "Incomparable types",
			fmt.Sprintf("Operator '%s' cannot compare %s with %s.", e.Operator, l.Name(), r.Name()))
	}
	return valuetype.Boolean
}

func typeMatches(l, r valuetype.ValueType, e *model.BinaryExpression, diags *hcl.Diagnostics) valuetype.ValueType {
	okL := requireOperand(l, valuetype.TextType, e, e.Left, diags)
	okR := requireOperand(r, valuetype.RegexType, e, e.Right, diags)
	if !okL || !okR {
		return nil
	}
	return valuetype.Boolean
}

func typeIn(l, r valuetype.ValueType, e *model.BinaryExpression, diags *hcl.Diagnostics) valuetype.ValueType {
	switch coll := r.(type) {
	case valuetype.EmptyCollectionType:
		return valuetype.Boolean
	case *valuetype.CollectionType:
		elem := coll.Element()
		if !l.IsConvertibleTo(elem) && !elem.IsConvertibleTo(l) {
			return typeError(diags, e.Left.Range(), "Invalid operand type",
				fmt.Sprintf("A value of type %s can never be an element of %s.", l.Name(), r.Name()))
		}
		return valuetype.Boolean
	}
	return typeError(diags, e.Right.Range(), "Invalid operand type",
		fmt.Sprintf("Operator 'in' expects a collection on the right, got %s.", r.Name()))
}

func requireOperand(got, want valuetype.ValueType, e *model.BinaryExpression, operand model.Expression, diags *hcl.Diagnostics) bool {
	if got.IsConvertibleTo(want) {
		return true
	}
	typeError(diags, operand.Range(), "Invalid operand type",
		fmt.Sprintf("Operator '%s' expects an operand of type %s, got %s.", e.Operator, want.Name(), got.Name()))
	return false
}
