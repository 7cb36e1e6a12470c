package valuetype

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/vk/jayvee/internal/cellrange"
)

var (
	integerPattern = regexp.MustCompile(`^[+-]?[0-9]+$`)
	decimalPattern = regexp.MustCompile(`^[+-]?([0-9]*[.,])?[0-9]+([eE][+-]?[0-9]+)?$`)
)

// Parse converts a textual representation, such as a runtime parameter or a
// sheet cell, into a value of type t. It reports false when the text is not
// a valid representation. Constraints of atomic types are not checked.
func Parse(s string, t ValueType) (Value, bool) {
	v := Visit[Value](t, textParser{s: s})
	return v, v != nil
}

type textParser struct {
	s string
}

func (p textParser) VisitPrimitive(prim Primitive) Value {
	s := strings.TrimSpace(p.s)
	switch prim {
	case Boolean:
		switch strings.ToLower(s) {
		case "true":
			return Bool(true)
		case "false":
			return Bool(false)
		}
	case Integer:
		if !integerPattern.MatchString(s) {
			return nil
		}
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil
		}
		return Number(n)
	case Decimal:
		if !decimalPattern.MatchString(s) {
			return nil
		}
		f, err := strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64)
		if err != nil {
			return nil
		}
		return Number(f)
	case TextType:
		return Text(p.s)
	case RegexType:
		r, err := NewRegex(p.s)
		if err != nil {
			return nil
		}
		return r
	case CellRangeType:
		r, err := cellrange.Parse(s)
		if err != nil {
			return nil
		}
		return CellRange{Range: r}
	}
	return nil
}

func (p textParser) VisitAtomic(a *Atomic) Value {
	super := a.Supertype()
	if super == nil {
		return nil
	}
	return Visit[Value](super, p)
}

func (textParser) VisitCollection(*CollectionType) Value { return nil }

func (textParser) VisitEmptyCollection(EmptyCollectionType) Value { return nil }
