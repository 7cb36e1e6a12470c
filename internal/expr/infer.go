package expr

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/vk/jayvee/internal/model"
	"github.com/vk/jayvee/internal/valuetype"
)

// TypeEnv is the validation-time counterpart of Context: it binds variable
// names to types instead of values.
type TypeEnv struct {
	ops            *Registry
	vars           map[string]valuetype.ValueType
	valueUnderTest valuetype.ValueType
}

// NewTypeEnv creates an empty type environment.
func NewTypeEnv(ops *Registry) *TypeEnv {
	return &TypeEnv{ops: ops, vars: make(map[string]valuetype.ValueType)}
}

// Bind declares the type of a variable.
func (env *TypeEnv) Bind(name string, t valuetype.ValueType) *TypeEnv {
	env.vars[name] = t
	return env
}

// WithValueUnderTest declares the type of the `value` keyword.
func (env *TypeEnv) WithValueUnderTest(t valuetype.ValueType) *TypeEnv {
	env.valueUnderTest = t
	return env
}

// InferType computes the static type of e. It returns nil when the type
// cannot be determined; the reason is appended to diags. Diagnostics are not
// repeated for enclosing expressions once an operand failed.
func InferType(e model.Expression, env *TypeEnv, diags *hcl.Diagnostics) valuetype.ValueType {
	switch e := e.(type) {
	case *model.Literal:
		if e.Type != nil {
			return e.Type
		}
		t := valuetype.TypeOf(e.Value)
		if t == nil {
			return typeError(diags, e.SrcRange, "Ambiguous collection", "The elements of this collection have unrelated types.")
		}
		return t

	case *model.CollectionLiteral:
		elems := make([]valuetype.ValueType, 0, len(e.Elements))
		failed := false
		for _, el := range e.Elements {
			t := InferType(el, env, diags)
			if t == nil {
				failed = true
				continue
			}
			elems = append(elems, t)
		}
		if failed {
			return nil
		}
		if len(elems) == 0 {
			return valuetype.EmptyCollection
		}
		common, ok := valuetype.CommonType(elems...)
		if !ok {
			return typeError(diags, e.SrcRange, "Ambiguous collection",
				fmt.Sprintf("The elements of this collection have unrelated types %s.", typeNames(elems)))
		}
		return valuetype.NewCollection(common)

	case *model.Variable:
		t, ok := env.vars[e.Name]
		if !ok {
			return typeError(diags, e.SrcRange, "Unknown reference",
				fmt.Sprintf("'%s' does not refer to a property, port, constraint or transform in scope.", e.Name))
		}
		return t

	case *model.RuntimeParameter:
		return typeError(diags, e.SrcRange, "Misplaced runtime parameter",
			fmt.Sprintf("The runtime parameter '%s' can only be used as the whole value of a property.", e.Name))

	case *model.ValueKeyword:
		if env.valueUnderTest == nil {
			return typeError(diags, e.SrcRange, "Misplaced value keyword", "The 'value' keyword can only be used inside constraint expressions.")
		}
		return env.valueUnderTest

	case *model.UnaryExpression:
		operand := InferType(e.Operand, env, diags)
		if operand == nil {
			return nil
		}
		tc, ok := env.ops.unaryTypes[e.Operator]
		if !ok {
			return typeError(diags, e.SrcRange, "Unknown operator", fmt.Sprintf("There is no unary operator '%s'.", e.Operator))
		}
		return tc(operand, e, diags)

	case *model.BinaryExpression:
		left := InferType(e.Left, env, diags)
		right := InferType(e.Right, env, diags)
		if left == nil || right == nil {
			return nil
		}
		tc, ok := env.ops.binaryTypes[e.Operator]
		if !ok {
			return typeError(diags, e.SrcRange, "Unknown operator", fmt.Sprintf("There is no binary operator '%s'.", e.Operator))
		}
		return tc(left, right, e, diags)

	case *model.TernaryExpression:
		first := InferType(e.First, env, diags)
		second := InferType(e.Second, env, diags)
		third := InferType(e.Third, env, diags)
		if first == nil || second == nil || third == nil {
			return nil
		}
		tc, ok := env.ops.ternaryTypes[e.Operator]
		if !ok {
			return typeError(diags, e.SrcRange, "Unknown operator", fmt.Sprintf("There is no ternary operator '%s'.", e.Operator))
		}
		return tc(first, second, third, e, diags)
	}
	panic(fmt.Sprintf("expr: unknown expression node %T", e))
}

func typeNames(types []valuetype.ValueType) []string {
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = t.Name()
	}
	return names
}
