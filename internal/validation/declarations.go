package validation

import (
	"sort"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/vk/jayvee/internal/expr"
	"github.com/vk/jayvee/internal/model"
	"github.com/vk/jayvee/internal/transform"
	"github.com/vk/jayvee/internal/valuetype"
)

func (r *run) valueType(a *valuetype.Atomic) {
	if a.HasCycle() {
		r.errorf(a.DeclarationRange(), "Cyclic value type",
			"Value type '%s' is part of a supertype cycle: %s.", a.Name(), strings.Join(supertypeChain(a), " -> "))
		return
	}

	// Undefined supertypes are reported by the loader.
	super, base := a.Supertype(), a.Base()
	if super == nil || base == nil {
		return
	}
	p, ok := base.(valuetype.Primitive)
	if !ok || !p.IsUserDeclarable() {
		r.errorf(a.DeclarationRange(), "Invalid supertype",
			"Value type '%s' must be based on boolean, integer, decimal or text, not %s.", a.Name(), base.Name())
		return
	}

	for _, ref := range a.Constraints() {
		c, ok := ref.(*model.Constraint)
		if !ok {
			continue
		}
		target := r.constraints.AppliesTo(c)
		if target == nil {
			continue
		}
		if !super.IsConvertibleTo(target) {
			r.errorf(a.DeclarationRange(), "Incompatible constraint",
				"Constraint '%s' applies to %s values, but '%s' is based on %s.", c.Name, target.Name(), a.Name(), super.Name())
		}
	}
}

// supertypeChain lists the atomic types reached from a, ending with the
// first repeated one.
func supertypeChain(a *valuetype.Atomic) []string {
	var names []string
	seen := map[*valuetype.Atomic]bool{}
	cur := a
	for cur != nil && !seen[cur] {
		seen[cur] = true
		names = append(names, cur.Name())
		cur, _ = cur.DeclaredSupertype().(*valuetype.Atomic)
	}
	if cur != nil {
		names = append(names, cur.Name())
	}
	return names
}

func (r *run) constraint(c *model.Constraint) {
	if c.IsExpression() {
		if c.On == nil || c.Expression == nil {
			return
		}
		var diags hcl.Diagnostics
		env := expr.NewTypeEnv(r.ops).WithValueUnderTest(c.On)
		t := expr.InferType(c.Expression, env, &diags)
		r.diags = append(r.diags, diags...)
		if t != nil && !t.IsConvertibleTo(valuetype.Boolean) {
			r.errorf(c.Expression.Range(), "Non-boolean constraint",
				"The expression of constraint '%s' must be boolean, found %s.", c.Name, t.Name())
		}
		return
	}

	kind, ok := r.constraints.Kind(c.Kind)
	if !ok {
		r.errorf(c.DeclRange, "Unknown constraint type",
			"'%s' is not a constraint type. Known types: %s.", c.Kind, strings.Join(r.constraints.Names(), ", "))
		return
	}
	r.properties(c.Name, c.DeclRange, kind.Properties, c.Properties, expr.NewTypeEnv(r.ops))
}

func (r *run) transform(t *model.Transform) {
	if len(t.Inputs) == 0 {
		r.errorf(t.DeclRange, "Transform without inputs", "Transform '%s': %s.", t.Name, transform.ErrNoInputPorts)
	}
	if t.Output == nil || t.Output.Type == nil || t.Body == nil {
		return
	}

	env := expr.NewTypeEnv(r.ops)
	seen := map[string]hcl.Range{t.Output.Name: t.Output.DeclRange}
	for _, in := range t.Inputs {
		if prev, dup := seen[in.Name]; dup {
			r.errorf(in.DeclRange, "Duplicate port", "Transform '%s' already declares a port named '%s' at %s.", t.Name, in.Name, prev)
			continue
		}
		seen[in.Name] = in.DeclRange
		if in.Type != nil {
			env.Bind(in.Name, in.Type)
		}
	}

	var diags hcl.Diagnostics
	bodyType := expr.InferType(t.Body, env, &diags)
	r.diags = append(r.diags, diags...)
	if bodyType != nil && !bodyType.IsConvertibleTo(t.Output.Type) {
		r.errorf(t.Body.Range(), "Transform output type mismatch",
			"Transform '%s' produces %s but its output '%s' is declared as %s.", t.Name, bodyType.Name(), t.Output.Name, t.Output.Type.Name())
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
