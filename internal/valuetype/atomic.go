package valuetype

import (
	"errors"
	"fmt"

	"github.com/hashicorp/hcl/v2"
)

// ErrUnresolvedSupertype is returned when an atomic type is defined without a
// resolvable supertype.
var ErrUnresolvedSupertype = errors.New("unresolved supertype")

// Reference points back to a named declaration, such as a constraint or a
// transform, and its source location.
type Reference interface {
	DefinitionName() string
	DefinitionRange() hcl.Range
}

// Atomic is a user-declared refinement of another value type with an ordered
// list of constraints.
type Atomic struct {
	name        string
	decl        hcl.Range
	super       ValueType
	constraints []Reference
}

// DeclareAtomic creates an atomic type whose supertype is not known yet. The
// type must be completed with Define before use; declarations are split so
// that atomic types referring to each other can be loaded in any order.
func DeclareAtomic(name string, decl hcl.Range) *Atomic {
	return &Atomic{name: name, decl: decl}
}

// NewAtomic declares and defines an atomic type in one step.
func NewAtomic(name string, decl hcl.Range, supertype ValueType, constraints ...Reference) (*Atomic, error) {
	a := DeclareAtomic(name, decl)
	if err := a.Define(supertype, constraints...); err != nil {
		return nil, err
	}
	return a, nil
}

// Define sets the supertype and constraints of a declared atomic type.
func (a *Atomic) Define(supertype ValueType, constraints ...Reference) error {
	if supertype == nil {
		return fmt.Errorf("value type '%s': %w", a.name, ErrUnresolvedSupertype)
	}
	a.super = supertype
	a.constraints = constraints
	return nil
}

// DeclarationRange returns the source range of the declaration.
func (a *Atomic) DeclarationRange() hcl.Range { return a.decl }

// Constraints returns the constraints declared directly on this type.
func (a *Atomic) Constraints() []Reference { return a.constraints }

// Supertype returns the declared supertype, or nil when the supertype chain
// contains a cycle or has not been defined.
func (a *Atomic) Supertype() ValueType {
	if a.HasCycle() {
		return nil
	}
	return a.super
}

// DeclaredSupertype returns the supertype as declared, even when the chain
// contains a cycle.
func (a *Atomic) DeclaredSupertype() ValueType { return a.super }

// HasCycle reports whether following supertypes from a revisits an atomic type.
func (a *Atomic) HasCycle() bool {
	visited := map[*Atomic]struct{}{}
	var cur ValueType = a
	for {
		at, ok := cur.(*Atomic)
		if !ok {
			return false
		}
		if _, seen := visited[at]; seen {
			return true
		}
		visited[at] = struct{}{}
		if at.super == nil {
			return false
		}
		cur = at.super
	}
}

// Base returns the nearest non-atomic ancestor, or nil on a cycle.
func (a *Atomic) Base() ValueType {
	if a.HasCycle() {
		return nil
	}
	var cur ValueType = a
	for {
		at, ok := cur.(*Atomic)
		if !ok {
			return cur
		}
		if at.super == nil {
			return nil
		}
		cur = at.super
	}
}

// Ancestry returns a followed by its atomic ancestors, nearest first. It is
// empty when the chain contains a cycle.
func (a *Atomic) Ancestry() []*Atomic {
	if a.HasCycle() {
		return nil
	}
	var out []*Atomic
	var cur ValueType = a
	for {
		at, ok := cur.(*Atomic)
		if !ok || at == nil {
			return out
		}
		out = append(out, at)
		cur = at.super
	}
}

func (a *Atomic) Name() string { return a.name }

func (a *Atomic) IsConvertibleTo(target ValueType) bool {
	if a.Equals(target) {
		return true
	}
	super := a.Supertype()
	if super == nil {
		return false
	}
	return super.IsConvertibleTo(target)
}

func (a *Atomic) Equals(other ValueType) bool {
	o, ok := other.(*Atomic)
	if !ok {
		return false
	}
	if o == a {
		return true
	}
	return o.name == a.name && o.decl == a.decl
}

func (a *Atomic) IsInternalValueRepresentation(v Value) bool {
	super := a.Supertype()
	if super == nil {
		return false
	}
	return super.IsInternalValueRepresentation(v)
}

func (*Atomic) sealed() {}
