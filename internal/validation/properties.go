package validation

import (
	"github.com/hashicorp/hcl/v2"
	"github.com/vk/jayvee/internal/expr"
	"github.com/vk/jayvee/internal/model"
	"github.com/vk/jayvee/internal/valuetype"
)

// properties checks the assignments of a block or constraint against the
// declared property specs.
func (r *run) properties(owner string, ownerRange hcl.Range, specs []*model.PropertySpec, assigned map[string]*model.Property, env *expr.TypeEnv) {
	declared := make(map[string]*model.PropertySpec, len(specs))
	for _, spec := range specs {
		declared[spec.Name] = spec
		if _, ok := assigned[spec.Name]; !ok && spec.Required() {
			r.errorf(ownerRange, "Missing required property", "'%s' must assign property '%s'.", owner, spec.Name)
		}
	}

	for _, name := range sortedKeys(assigned) {
		prop := assigned[name]
		spec, ok := declared[name]
		if !ok {
			r.errorf(prop.DeclRange, "Unknown property", "'%s' has no property named '%s'.", owner, name)
			continue
		}
		r.propertyValue(owner, spec, prop.Expr, prop.DeclRange, env)
	}
}

// propertyValue checks a single property expression against the type it must
// produce.
func (r *run) propertyValue(owner string, spec *model.PropertySpec, e model.Expression, rng hcl.Range, env *expr.TypeEnv) {
	if e == nil || spec.Type == nil {
		return
	}

	if rp, ok := e.(*model.RuntimeParameter); ok {
		if !parseable(spec.Type) {
			r.errorf(rp.SrcRange, "Unsupported runtime parameter",
				"Property '%s' of '%s' has type %s, which cannot be provided as a runtime parameter.", spec.Name, owner, spec.Type.Name())
			return
		}
		if r.params != nil {
			r.checkValue(owner, spec, expr.EvaluateAs(e, r.eval, spec.Type, expr.Exhaustive), rng)
		}
		return
	}

	var diags hcl.Diagnostics
	t := expr.InferType(e, env, &diags)
	r.diags = append(r.diags, diags...)
	if t == nil {
		return
	}
	if !assignable(t, spec.Type) {
		r.errorf(e.Range(), "Type mismatch",
			"Property '%s' of '%s' expects %s, found %s.", spec.Name, owner, spec.Type.Name(), t.Name())
		return
	}

	if model.IsConstant(e) {
		before := len(r.diags)
		v := expr.EvaluateAs(e, r.eval, spec.Type, expr.Exhaustive)
		if len(r.diags) == before {
			r.checkValue(owner, spec, v, rng)
		}
	}
}

// assignable reports whether a value of type t may be assigned to a property
// of type target. Properties of an atomic value type accept values of its
// primitive base; the type's constraints are checked on the value.
func assignable(t, target valuetype.ValueType) bool {
	if t.IsConvertibleTo(target) {
		return true
	}
	if a, ok := target.(*valuetype.Atomic); ok && a.Base() != nil {
		return t.IsConvertibleTo(a.Base())
	}
	return false
}

// checkValue reports a value that does not satisfy the constraints of the
// property type. A nil value has already been reported by the evaluator.
func (r *run) checkValue(owner string, spec *model.PropertySpec, v valuetype.Value, rng hcl.Range) {
	if v == nil {
		return
	}
	if !r.constraints.IsValid(r.eval, v, spec.Type) {
		r.errorf(rng, "Invalid property value",
			"Property '%s' of '%s': %s is not a valid %s.", spec.Name, owner, valuetype.Format(v), spec.Type.Name())
	}
}

// parseable reports whether values of t can be parsed from text.
func parseable(t valuetype.ValueType) bool {
	return valuetype.Visit[bool](t, parseableVisitor{})
}

type parseableVisitor struct{}

func (parseableVisitor) VisitPrimitive(p valuetype.Primitive) bool {
	switch p {
	case valuetype.Boolean, valuetype.Integer, valuetype.Decimal, valuetype.TextType, valuetype.RegexType, valuetype.CellRangeType:
		return true
	}
	return false
}

func (v parseableVisitor) VisitAtomic(a *valuetype.Atomic) bool {
	super := a.Supertype()
	return super != nil && valuetype.Visit[bool](super, v)
}

func (parseableVisitor) VisitCollection(*valuetype.CollectionType) bool { return false }

func (parseableVisitor) VisitEmptyCollection(valuetype.EmptyCollectionType) bool { return false }
