package constraint

import (
	"github.com/vk/jayvee/internal/expr"
	"github.com/vk/jayvee/internal/model"
	"github.com/vk/jayvee/internal/valuetype"
)

// Properties resolves the property values of one constraint, falling back to
// the kind's defaults.
type Properties struct {
	kind       *Kind
	constraint *model.Constraint
	ctx        *expr.Context
}

// Value evaluates the named property. It returns nil when the property is
// neither assigned nor defaulted, or when it does not evaluate.
func (p *Properties) Value(name string) valuetype.Value {
	spec, ok := p.kind.Property(name)
	if !ok {
		return nil
	}
	e := spec.Default
	if assigned, ok := p.constraint.Properties[name]; ok {
		e = assigned.Expr
	}
	if e == nil {
		return nil
	}
	return expr.EvaluateAs(e, p.ctx, spec.Type, expr.Lazy)
}

// Number returns a numeric property.
func (p *Properties) Number(name string) (float64, bool) {
	n, ok := p.Value(name).(valuetype.Number)
	return float64(n), ok
}

// Bool returns a boolean property.
func (p *Properties) Bool(name string) (bool, bool) {
	b, ok := p.Value(name).(valuetype.Bool)
	return bool(b), ok
}

// Collection returns a collection property.
func (p *Properties) Collection(name string) (valuetype.Collection, bool) {
	c, ok := p.Value(name).(valuetype.Collection)
	return c, ok
}
