package loader

import (
	"bytes"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/vk/jayvee/internal/cellrange"
	"github.com/vk/jayvee/internal/model"
	"github.com/vk/jayvee/internal/valuetype"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"
)

var binaryOperators = map[*hclsyntax.Operation]string{
	hclsyntax.OpLogicalOr:          "or",
	hclsyntax.OpLogicalAnd:         "and",
	hclsyntax.OpEqual:              "==",
	hclsyntax.OpNotEqual:           "!=",
	hclsyntax.OpGreaterThan:        ">",
	hclsyntax.OpGreaterThanOrEqual: ">=",
	hclsyntax.OpLessThan:           "<",
	hclsyntax.OpLessThanOrEqual:    "<=",
	hclsyntax.OpAdd:                "+",
	hclsyntax.OpSubtract:           "-",
	hclsyntax.OpMultiply:           "*",
	hclsyntax.OpDivide:             "/",
	hclsyntax.OpModulo:             "%",
}

var unaryOperators = map[*hclsyntax.Operation]string{
	hclsyntax.OpLogicalNot: "not",
	hclsyntax.OpNegate:     "-",
}

// expression translates an HCL expression. allowValue permits the `value`
// keyword, which only has a meaning inside constraint expressions. It
// returns nil after reporting a diagnostic.
func (d *decoder) expression(e hclsyntax.Expression, allowValue bool) model.Expression {
	rng := e.Range()

	switch e := e.(type) {
	case *hclsyntax.LiteralValueExpr:
		return d.literal(e.Val, rng)

	case *hclsyntax.TemplateExpr:
		if !e.IsStringLiteral() {
			d.errorf(rng, "Unsupported expression", "String templates are not supported; use a plain string.")
			return nil
		}
		v, diags := e.Value(nil)
		d.diags = append(d.diags, diags...)
		if diags.HasErrors() {
			return nil
		}
		return d.literal(v, rng)

	case *hclsyntax.ParenthesesExpr:
		return d.expression(e.Expression, allowValue)

	case *hclsyntax.TupleConsExpr:
		elems := make([]model.Expression, 0, len(e.Exprs))
		ok := true
		for _, x := range e.Exprs {
			el := d.expression(x, allowValue)
			if el == nil {
				ok = false
				continue
			}
			elems = append(elems, el)
		}
		if !ok {
			return nil
		}
		return &model.CollectionLiteral{Elements: elems, SrcRange: rng}

	case *hclsyntax.ObjectConsExpr:
		return d.assignments(e)

	case *hclsyntax.ScopeTraversalExpr:
		return d.traversal(e.Traversal, rng, allowValue)

	case *hclsyntax.UnaryOpExpr:
		op, known := unaryOperators[e.Op]
		if !known {
			d.errorf(rng, "Unsupported operator", "This unary operator is not supported.")
			return nil
		}
		operand := d.expression(e.Val, allowValue)
		if operand == nil {
			return nil
		}
		return &model.UnaryExpression{Operator: op, Operand: operand, SrcRange: rng}

	case *hclsyntax.BinaryOpExpr:
		op, known := binaryOperators[e.Op]
		if !known {
			d.errorf(rng, "Unsupported operator", "This binary operator is not supported.")
			return nil
		}
		left, right := d.expression(e.LHS, allowValue), d.expression(e.RHS, allowValue)
		if left == nil || right == nil {
			return nil
		}
		return &model.BinaryExpression{Operator: op, Left: left, Right: right, SrcRange: rng}

	case *hclsyntax.ConditionalExpr:
		cond := d.expression(e.Condition, allowValue)
		then := d.expression(e.TrueResult, allowValue)
		otherwise := d.expression(e.FalseResult, allowValue)
		if cond == nil || then == nil || otherwise == nil {
			return nil
		}
		return &model.TernaryExpression{Operator: "if", First: cond, Second: then, Third: otherwise, SrcRange: rng}

	case *hclsyntax.FunctionCallExpr:
		return d.call(e, allowValue)
	}

	d.errorf(rng, "Unsupported expression", "Expressions of this kind (%T) are not supported.", e)
	return nil
}

func (d *decoder) literal(v cty.Value, rng hcl.Range) model.Expression {
	val, err := literalValue(v)
	if err != nil {
		d.errorf(rng, "Invalid literal", "%s.", err)
		return nil
	}
	lit := &model.Literal{Value: val, SrcRange: rng}
	if v.Type() == cty.Number && d.writtenAsDecimal(rng) {
		lit.Type = valuetype.Decimal
	}
	return lit
}

// writtenAsDecimal reports whether the number at rng has a fraction or an
// exponent in its source text.
func (d *decoder) writtenAsDecimal(rng hcl.Range) bool {
	src, ok := d.sources[rng.Filename]
	if !ok || rng.Start.Byte < 0 || rng.End.Byte > len(src) || rng.Start.Byte >= rng.End.Byte {
		return false
	}
	return bytes.ContainsAny(src[rng.Start.Byte:rng.End.Byte], ".eE")
}

// traversal translates names: runtime parameters, the value keyword,
// constraint and transform references, and free variables.
func (d *decoder) traversal(t hcl.Traversal, rng hcl.Range, allowValue bool) model.Expression {
	root := t.RootName()

	if root == keywordRequires {
		if len(t) == 2 {
			if attr, ok := t[1].(hcl.TraverseAttr); ok {
				return &model.RuntimeParameter{Name: attr.Name, SrcRange: rng}
			}
		}
		d.errorf(rng, "Invalid runtime parameter", "Runtime parameters are written as %s.NAME.", keywordRequires)
		return nil
	}

	if len(t) != 1 {
		d.errorf(rng, "Unsupported expression", "Attribute and index access is only supported on %s.", keywordRequires)
		return nil
	}

	if root == keywordValue {
		if !allowValue {
			d.errorf(rng, "Misplaced value keyword", "The %q keyword can only be used in constraint expressions.", keywordValue)
			return nil
		}
		return &model.ValueKeyword{SrcRange: rng}
	}
	if c, ok := d.ws.Constraints[root]; ok {
		return &model.Literal{Value: valuetype.ConstraintRef{Ref: c}, SrcRange: rng}
	}
	if tr, ok := d.ws.Transforms[root]; ok {
		return &model.Literal{Value: valuetype.TransformRef{Ref: tr}, SrcRange: rng}
	}
	return &model.Variable{Name: root, SrcRange: rng}
}

// assignments translates `{ "name" = type, ... }` into a collection of
// value type assignments, in source order.
func (d *decoder) assignments(e *hclsyntax.ObjectConsExpr) model.Expression {
	elems := make([]model.Expression, 0, len(e.Items))
	ok := true
	for _, item := range e.Items {
		name, valid := d.objectKey(item.KeyExpr)
		t := d.valueType(item.ValueExpr)
		if !valid || t == nil {
			ok = false
			continue
		}
		elems = append(elems, &model.Literal{
			Value:    valuetype.ValuetypeAssignment{Name: name, Type: t},
			SrcRange: hcl.RangeBetween(item.KeyExpr.Range(), item.ValueExpr.Range()),
		})
	}
	if !ok {
		return nil
	}
	return &model.CollectionLiteral{Elements: elems, SrcRange: e.SrcRange}
}

func (d *decoder) objectKey(e hclsyntax.Expression) (string, bool) {
	if key, ok := e.(*hclsyntax.ObjectConsKeyExpr); ok {
		if kw := hcl.ExprAsKeyword(key.Wrapped); kw != "" && !key.ForceNonLiteral {
			return kw, true
		}
		e = key.Wrapped
	}
	s, err := constantString(e)
	if err != nil {
		d.errorf(e.Range(), "Invalid assignment name", "Names must be identifiers or constant strings: %s.", err)
		return "", false
	}
	return s, true
}

// call translates literal constructors and operator calls.
func (d *decoder) call(e *hclsyntax.FunctionCallExpr, allowValue bool) model.Expression {
	rng := e.Range()

	switch e.Name {
	case "regex":
		return d.constructor(e, func(arg hclsyntax.Expression) (valuetype.Value, error) {
			src, err := constantString(arg)
			if err != nil {
				return nil, err
			}
			return valuetype.NewRegex(src)
		})
	case "range", "cell", "column":
		parse := map[string]func(string) (cellrange.Range, error){
			"range":  cellrange.Parse,
			"cell":   cellrange.Cell,
			"column": cellrange.Column,
		}[e.Name]
		return d.constructor(e, func(arg hclsyntax.Expression) (valuetype.Value, error) {
			src, err := constantString(arg)
			if err != nil {
				return nil, err
			}
			r, err := parse(src)
			if err != nil {
				return nil, err
			}
			return valuetype.CellRange{Range: r}, nil
		})
	case "row":
		return d.constructor(e, func(arg hclsyntax.Expression) (valuetype.Value, error) {
			v, diags := arg.Value(nil)
			if diags.HasErrors() {
				return nil, fmt.Errorf("expected a constant row number")
			}
			var n int
			if err := gocty.FromCtyValue(v, &n); err != nil {
				return nil, fmt.Errorf("expected a whole row number: %w", err)
			}
			r, err := cellrange.Row(n)
			if err != nil {
				return nil, err
			}
			return valuetype.CellRange{Range: r}, nil
		})
	}

	args := make([]model.Expression, 0, len(e.Args))
	for _, a := range e.Args {
		x := d.expression(a, allowValue)
		if x == nil {
			return nil
		}
		args = append(args, x)
	}

	switch {
	case len(args) == 1 && d.ops.IsUnary(e.Name):
		return &model.UnaryExpression{Operator: e.Name, Operand: args[0], SrcRange: rng}
	case len(args) == 2 && d.ops.IsBinary(e.Name):
		return &model.BinaryExpression{Operator: e.Name, Left: args[0], Right: args[1], SrcRange: rng}
	case len(args) == 3 && d.ops.IsTernary(e.Name):
		return &model.TernaryExpression{Operator: e.Name, First: args[0], Second: args[1], Third: args[2], SrcRange: rng}
	case d.ops.IsUnary(e.Name) || d.ops.IsBinary(e.Name) || d.ops.IsTernary(e.Name):
		d.errorf(rng, "Wrong number of arguments", "Operator %q does not take %d arguments.", e.Name, len(args))
	default:
		d.errorf(e.NameRange, "Call to unknown function", "There is no function named %q.", e.Name)
	}
	return nil
}

func (d *decoder) constructor(e *hclsyntax.FunctionCallExpr, build func(hclsyntax.Expression) (valuetype.Value, error)) model.Expression {
	if len(e.Args) != 1 {
		d.errorf(e.Range(), "Wrong number of arguments", "%s(...) takes exactly one argument.", e.Name)
		return nil
	}
	v, err := build(e.Args[0])
	if err != nil {
		d.errorf(e.Args[0].Range(), "Invalid "+e.Name+" literal", "%s.", err)
		return nil
	}
	return &model.Literal{Value: v, SrcRange: e.Range()}
}

func constantString(e hclsyntax.Expression) (string, error) {
	v, diags := e.Value(nil)
	if diags.HasErrors() {
		return "", fmt.Errorf("expected a constant string")
	}
	s, err := convert.Convert(v, cty.String)
	if err != nil || s.IsNull() {
		return "", fmt.Errorf("expected a constant string")
	}
	return s.AsString(), nil
}
