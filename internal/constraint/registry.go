// Package constraint evaluates constraints against values and decides
// whether a value is valid for a value type.
//
// Constraint kinds are registered by name. A kind declares the value type it
// applies to, the properties it accepts and the executor that checks a value.
// Expression constraints are not registered; they evaluate their boolean
// expression with the value bound to the `value` keyword.
package constraint

import (
	"fmt"
	"sort"

	"github.com/vk/jayvee/internal/expr"
	"github.com/vk/jayvee/internal/model"
	"github.com/vk/jayvee/internal/valuetype"
)

// Executor checks a single value against a configured constraint.
type Executor interface {
	IsValid(v valuetype.Value, c *model.Constraint, p *Properties) bool
}

// ExecutorFunc adapts a function to the Executor interface.
type ExecutorFunc func(v valuetype.Value, c *model.Constraint, p *Properties) bool

func (f ExecutorFunc) IsValid(v valuetype.Value, c *model.Constraint, p *Properties) bool {
	return f(v, c, p)
}

// Kind describes a registered constraint kind.
type Kind struct {
	Name       string
	On         valuetype.ValueType
	Properties []*model.PropertySpec
	Executor   Executor
}

// Property returns the property spec with the given name.
func (k *Kind) Property(name string) (*model.PropertySpec, bool) {
	for _, p := range k.Properties {
		if p.Name == name {
			return p, true
		}
	}
	return nil, false
}

// Registry maps kind names to kinds.
type Registry struct {
	kinds map[string]*Kind
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{kinds: make(map[string]*Kind)}
}

// NewDefaultRegistry creates a registry holding the built-in kinds.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	RegisterBuiltins(r)
	return r
}

// Register adds a kind. It panics if the name is taken.
func (r *Registry) Register(k *Kind) {
	if k.Name == model.ExpressionConstraintKind {
		panic(fmt.Sprintf("constraint kind name '%s' is reserved", k.Name))
	}
	if _, exists := r.kinds[k.Name]; exists {
		panic(fmt.Sprintf("constraint kind with name '%s' already registered", k.Name))
	}
	r.kinds[k.Name] = k
}

// Kind looks up a kind by name.
func (r *Registry) Kind(name string) (*Kind, bool) {
	k, ok := r.kinds[name]
	return k, ok
}

// Names returns the registered kind names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.kinds))
	for name := range r.kinds {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// AppliesTo returns the value type c constrains, or nil for an unknown kind.
func (r *Registry) AppliesTo(c *model.Constraint) valuetype.ValueType {
	if c.IsExpression() {
		return c.On
	}
	if k, ok := r.kinds[c.Kind]; ok {
		return k.On
	}
	return nil
}

// Check reports whether v satisfies c. It panics when the kind of c is not
// registered; validation rejects such constraints before execution.
func (r *Registry) Check(ctx *expr.Context, v valuetype.Value, c *model.Constraint) bool {
	if c.IsExpression() {
		return checkExpression(ctx, v, c)
	}
	k, ok := r.kinds[c.Kind]
	if !ok {
		panic(fmt.Sprintf("no executor registered for constraint kind '%s'", c.Kind))
	}
	return k.Executor.IsValid(v, c, &Properties{kind: k, constraint: c, ctx: ctx})
}

func checkExpression(ctx *expr.Context, v valuetype.Value, c *model.Constraint) bool {
	restore := ctx.BindValueUnderTest(v)
	defer restore()

	b, ok := expr.Evaluate(c.Expression, ctx, expr.Lazy).(valuetype.Bool)
	return ok && bool(b)
}

// IsValid reports whether v is a valid value of type t. For atomic types the
// supertype is checked first, then each own constraint in declaration order;
// the first failure ends the check.
func (r *Registry) IsValid(ctx *expr.Context, v valuetype.Value, t valuetype.ValueType) bool {
	if v == nil {
		return false
	}
	return valuetype.Visit[bool](t, validity{r: r, ctx: ctx, v: v})
}

type validity struct {
	r   *Registry
	ctx *expr.Context
	v   valuetype.Value
}

func (c validity) VisitPrimitive(p valuetype.Primitive) bool {
	return p.IsInternalValueRepresentation(c.v)
}

func (c validity) VisitAtomic(a *valuetype.Atomic) bool {
	super := a.Supertype()
	if super == nil || !c.r.IsValid(c.ctx, c.v, super) {
		return false
	}
	for _, ref := range a.Constraints() {
		con, ok := ref.(*model.Constraint)
		if !ok {
			panic(fmt.Sprintf("valuetype '%s' references %T, not a constraint", a.Name(), ref))
		}
		if !c.r.Check(c.ctx, c.v, con) {
			return false
		}
	}
	return true
}

func (c validity) VisitCollection(t *valuetype.CollectionType) bool {
	coll, ok := c.v.(valuetype.Collection)
	if !ok {
		return false
	}
	for _, el := range coll {
		if !c.r.IsValid(c.ctx, el, t.Element()) {
			return false
		}
	}
	return true
}

func (c validity) VisitEmptyCollection(valuetype.EmptyCollectionType) bool {
	coll, ok := c.v.(valuetype.Collection)
	return ok && len(coll) == 0
}
