package valuetype

import "math"

// Primitive enumerates the built-in value types.
type Primitive uint8

const (
	Boolean Primitive = iota + 1
	Integer
	Decimal
	TextType
	RegexType
	CellRangeType
	ConstraintType
	TransformType
	ValuetypeAssignmentType
)

type primitiveInfo struct {
	name string
	// userDeclarable primitives may appear as the supertype of an atomic
	// value type and as a column type.
	userDeclarable bool
	isRepr         func(Value) bool
}

var primitives = [...]primitiveInfo{
	Boolean: {name: "boolean", userDeclarable: true, isRepr: func(v Value) bool {
		_, ok := v.(Bool)
		return ok
	}},
	Integer: {name: "integer", userDeclarable: true, isRepr: func(v Value) bool {
		n, ok := v.(Number)
		return ok && n.IsInteger()
	}},
	Decimal: {name: "decimal", userDeclarable: true, isRepr: func(v Value) bool {
		n, ok := v.(Number)
		return ok && !math.IsNaN(float64(n)) && !math.IsInf(float64(n), 0)
	}},
	TextType: {name: "text", userDeclarable: true, isRepr: func(v Value) bool {
		_, ok := v.(Text)
		return ok
	}},
	RegexType: {name: "Regex", isRepr: func(v Value) bool {
		_, ok := v.(Regex)
		return ok
	}},
	CellRangeType: {name: "CellRange", isRepr: func(v Value) bool {
		_, ok := v.(CellRange)
		return ok
	}},
	ConstraintType: {name: "Constraint", isRepr: func(v Value) bool {
		_, ok := v.(ConstraintRef)
		return ok
	}},
	TransformType: {name: "Transform", isRepr: func(v Value) bool {
		_, ok := v.(TransformRef)
		return ok
	}},
	ValuetypeAssignmentType: {name: "ValuetypeAssignment", isRepr: func(v Value) bool {
		_, ok := v.(ValuetypeAssignment)
		return ok
	}},
}

// Primitives returns every primitive type in declaration order.
func Primitives() []Primitive {
	out := make([]Primitive, 0, len(primitives)-1)
	for p := Boolean; p <= ValuetypeAssignmentType; p++ {
		out = append(out, p)
	}
	return out
}

// PrimitiveByName looks up a primitive by its user-facing name.
func PrimitiveByName(name string) (Primitive, bool) {
	for _, p := range Primitives() {
		if primitives[p].name == name {
			return p, true
		}
	}
	return 0, false
}

func (p Primitive) valid() bool {
	return p >= Boolean && p <= ValuetypeAssignmentType
}

func (p Primitive) Name() string {
	if !p.valid() {
		return "invalid"
	}
	return primitives[p].name
}

func (p Primitive) String() string { return p.Name() }

// IsUserDeclarable reports whether the primitive may back an atomic type or
// a table column.
func (p Primitive) IsUserDeclarable() bool {
	return p.valid() && primitives[p].userDeclarable
}

// IsNumeric reports whether the primitive is integer or decimal.
func (p Primitive) IsNumeric() bool {
	return p == Integer || p == Decimal
}

func (p Primitive) IsConvertibleTo(target ValueType) bool {
	other, ok := target.(Primitive)
	if !ok {
		return false
	}
	if p == other {
		return true
	}
	return p == Integer && other == Decimal
}

func (p Primitive) Equals(other ValueType) bool {
	o, ok := other.(Primitive)
	return ok && o == p
}

func (p Primitive) IsInternalValueRepresentation(v Value) bool {
	if !p.valid() || v == nil {
		return false
	}
	return primitives[p].isRepr(v)
}

func (Primitive) sealed() {}
