package valuetype

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/vk/jayvee/internal/cellrange"
)

// Value is the internal runtime representation of a value. A nil Value means
// "undefined".
type Value interface {
	isValue()
}

// Bool is a boolean value.
type Bool bool

// Number backs both integer and decimal values.
type Number float64

// IsInteger reports whether n is finite and integral.
func (n Number) IsInteger() bool {
	f := float64(n)
	return !math.IsInf(f, 0) && !math.IsNaN(f) && f == math.Trunc(f)
}

// Text is a string value.
type Text string

// Regex is a compiled regular expression value.
type Regex struct {
	Source string
	re     *regexp.Regexp
}

// NewRegex compiles src.
func NewRegex(src string) (Regex, error) {
	re, err := regexp.Compile(src)
	if err != nil {
		return Regex{}, err
	}
	return Regex{Source: src, re: re}, nil
}

// MustRegex is like NewRegex but panics on error.
func MustRegex(src string) Regex {
	r, err := NewRegex(src)
	if err != nil {
		panic(err)
	}
	return r
}

// Regexp returns the compiled expression.
func (r Regex) Regexp() *regexp.Regexp {
	if r.re == nil {
		r.re = regexp.MustCompile(r.Source)
	}
	return r.re
}

// CellRange is a cell range value.
type CellRange struct {
	Range cellrange.Range
}

// Collection is a sequence of values.
type Collection []Value

// ConstraintRef refers to a constraint declaration.
type ConstraintRef struct {
	Ref Reference
}

// TransformRef refers to a transform declaration.
type TransformRef struct {
	Ref Reference
}

// ValuetypeAssignment pairs a name, usually a column name, with a value type.
type ValuetypeAssignment struct {
	Name string
	Type ValueType
}

func (Bool) isValue()                {}
func (Number) isValue()              {}
func (Text) isValue()                {}
func (Regex) isValue()               {}
func (CellRange) isValue()           {}
func (Collection) isValue()          {}
func (ConstraintRef) isValue()       {}
func (TransformRef) isValue()        {}
func (ValuetypeAssignment) isValue() {}

// Equal compares two values structurally.
func Equal(a, b Value) bool {
	switch a := a.(type) {
	case Bool:
		o, ok := b.(Bool)
		return ok && a == o
	case Number:
		o, ok := b.(Number)
		return ok && a == o
	case Text:
		o, ok := b.(Text)
		return ok && a == o
	case Regex:
		o, ok := b.(Regex)
		return ok && a.Source == o.Source
	case CellRange:
		o, ok := b.(CellRange)
		return ok && a.Range == o.Range
	case Collection:
		o, ok := b.(Collection)
		if !ok || len(a) != len(o) {
			return false
		}
		for i := range a {
			if !Equal(a[i], o[i]) {
				return false
			}
		}
		return true
	case ConstraintRef:
		o, ok := b.(ConstraintRef)
		return ok && sameRef(a.Ref, o.Ref)
	case TransformRef:
		o, ok := b.(TransformRef)
		return ok && sameRef(a.Ref, o.Ref)
	case ValuetypeAssignment:
		o, ok := b.(ValuetypeAssignment)
		return ok && a.Name == o.Name && a.Type.Equals(o.Type)
	}
	return false
}

func sameRef(a, b Reference) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.DefinitionName() == b.DefinitionName() && a.DefinitionRange() == b.DefinitionRange()
}

// Format renders v the way it appears in text output and in the asText
// conversion.
func Format(v Value) string {
	switch v := v.(type) {
	case nil:
		return "undefined"
	case Bool:
		return strconv.FormatBool(bool(v))
	case Number:
		return strconv.FormatFloat(float64(v), 'f', -1, 64)
	case Text:
		return string(v)
	case Regex:
		return "/" + v.Source + "/"
	case CellRange:
		return v.Range.String()
	case Collection:
		parts := make([]string, len(v))
		for i, el := range v {
			parts[i] = Format(el)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case ConstraintRef:
		return v.Ref.DefinitionName()
	case TransformRef:
		return v.Ref.DefinitionName()
	case ValuetypeAssignment:
		return fmt.Sprintf("%q oftype %s", v.Name, v.Type.Name())
	}
	return fmt.Sprintf("%v", v)
}
