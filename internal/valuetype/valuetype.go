package valuetype

import (
	"fmt"
)

// ValueType is the semantic type of a runtime value.
type ValueType interface {
	// Name returns the user-facing name of the type.
	Name() string
	// IsConvertibleTo reports whether values of this type may be used where
	// target is expected. The relation is reflexive and transitive.
	IsConvertibleTo(target ValueType) bool
	// Equals reports type identity.
	Equals(other ValueType) bool
	// IsInternalValueRepresentation is the runtime guard for the value shape
	// of this type. It does not evaluate constraints.
	IsInternalValueRepresentation(v Value) bool

	sealed()
}

// Visitor dispatches over the closed set of ValueType variants.
type Visitor[R any] interface {
	VisitPrimitive(p Primitive) R
	VisitAtomic(a *Atomic) R
	VisitCollection(c *CollectionType) R
	VisitEmptyCollection(e EmptyCollectionType) R
}

// Visit calls the visitor method matching the variant of t.
func Visit[R any](t ValueType, v Visitor[R]) R {
	switch t := t.(type) {
	case Primitive:
		return v.VisitPrimitive(t)
	case *Atomic:
		return v.VisitAtomic(t)
	case *CollectionType:
		return v.VisitCollection(t)
	case EmptyCollectionType:
		return v.VisitEmptyCollection(t)
	default:
		panic(fmt.Sprintf("valuetype: unknown variant %T", t))
	}
}

// CollectionType is a homogeneous sequence type.
type CollectionType struct {
	elem ValueType
}

// NewCollection returns the collection type with the given element type.
func NewCollection(elem ValueType) *CollectionType {
	return &CollectionType{elem: elem}
}

// Element returns the element type.
func (c *CollectionType) Element() ValueType { return c.elem }

func (c *CollectionType) Name() string {
	return fmt.Sprintf("Collection<%s>", c.elem.Name())
}

func (c *CollectionType) IsConvertibleTo(target ValueType) bool {
	other, ok := target.(*CollectionType)
	if !ok {
		return false
	}
	return c.elem.IsConvertibleTo(other.elem)
}

func (c *CollectionType) Equals(other ValueType) bool {
	o, ok := other.(*CollectionType)
	return ok && c.elem.Equals(o.elem)
}

func (c *CollectionType) IsInternalValueRepresentation(v Value) bool {
	coll, ok := v.(Collection)
	if !ok {
		return false
	}
	for _, el := range coll {
		if !c.elem.IsInternalValueRepresentation(el) {
			return false
		}
	}
	return true
}

func (*CollectionType) sealed() {}

// EmptyCollectionType is the type of the literal `[]`. It converts to every
// collection type.
type EmptyCollectionType struct{}

// EmptyCollection is the single instance of EmptyCollectionType.
var EmptyCollection = EmptyCollectionType{}

func (EmptyCollectionType) Name() string { return "Collection<>" }

func (EmptyCollectionType) IsConvertibleTo(target ValueType) bool {
	switch target.(type) {
	case *CollectionType, EmptyCollectionType:
		return true
	}
	return false
}

func (EmptyCollectionType) Equals(other ValueType) bool {
	_, ok := other.(EmptyCollectionType)
	return ok
}

func (EmptyCollectionType) IsInternalValueRepresentation(v Value) bool {
	coll, ok := v.(Collection)
	return ok && len(coll) == 0
}

func (EmptyCollectionType) sealed() {}

// CommonType returns the widest of the given types, provided every other
// type converts to it. It reports false when two types are unrelated.
func CommonType(types ...ValueType) (ValueType, bool) {
	if len(types) == 0 {
		return EmptyCollection, true
	}
	common := types[0]
	for _, t := range types[1:] {
		switch {
		case t.IsConvertibleTo(common):
		case common.IsConvertibleTo(t):
			common = t
		default:
			return nil, false
		}
	}
	return common, true
}

// TypeOf returns the most specific primitive or collection type of a value.
// Atomic types are never inferred from values.
func TypeOf(v Value) ValueType {
	switch v := v.(type) {
	case Bool:
		return Boolean
	case Number:
		if v.IsInteger() {
			return Integer
		}
		return Decimal
	case Text:
		return TextType
	case Regex:
		return RegexType
	case CellRange:
		return CellRangeType
	case ConstraintRef:
		return ConstraintType
	case TransformRef:
		return TransformType
	case ValuetypeAssignment:
		return ValuetypeAssignmentType
	case Collection:
		if len(v) == 0 {
			return EmptyCollection
		}
		elems := make([]ValueType, 0, len(v))
		for _, el := range v {
			et := TypeOf(el)
			if et == nil {
				return nil
			}
			elems = append(elems, et)
		}
		common, ok := CommonType(elems...)
		if !ok {
			return nil
		}
		return NewCollection(common)
	}
	return nil
}
