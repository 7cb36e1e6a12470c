package constraint

import (
	"math"
	"unicode/utf8"

	"github.com/vk/jayvee/internal/model"
	"github.com/vk/jayvee/internal/valuetype"
)

// RegisterBuiltins adds the built-in constraint kinds to r.
func RegisterBuiltins(r *Registry) {
	r.Register(&Kind{
		Name:       "AllowlistConstraint",
		On:         valuetype.TextType,
		Properties: []*model.PropertySpec{{Name: "allowlist", Type: valuetype.NewCollection(valuetype.TextType)}},
		Executor:   ExecutorFunc(listMembership("allowlist", true)),
	})
	r.Register(&Kind{
		Name:       "DenylistConstraint",
		On:         valuetype.TextType,
		Properties: []*model.PropertySpec{{Name: "denylist", Type: valuetype.NewCollection(valuetype.TextType)}},
		Executor:   ExecutorFunc(listMembership("denylist", false)),
	})
	r.Register(&Kind{
		Name: "LengthConstraint",
		On:   valuetype.TextType,
		Properties: []*model.PropertySpec{
			{Name: "minLength", Type: valuetype.Integer, Optional: true},
			{Name: "maxLength", Type: valuetype.Integer, Optional: true},
		},
		Executor: ExecutorFunc(checkLength),
	})
	r.Register(&Kind{
		Name: "RangeConstraint",
		On:   valuetype.Decimal,
		Properties: []*model.PropertySpec{
			{Name: "lowerBound", Type: valuetype.Decimal, Optional: true},
			{Name: "lowerBoundInclusive", Type: valuetype.Boolean, Default: literal(valuetype.Bool(true))},
			{Name: "upperBound", Type: valuetype.Decimal, Optional: true},
			{Name: "upperBoundInclusive", Type: valuetype.Boolean, Default: literal(valuetype.Bool(true))},
		},
		Executor: ExecutorFunc(checkRange),
	})
	r.Register(&Kind{
		Name:       "RegexConstraint",
		On:         valuetype.TextType,
		Properties: []*model.PropertySpec{{Name: "regex", Type: valuetype.RegexType}},
		Executor:   ExecutorFunc(checkRegex),
	})
}

func literal(v valuetype.Value) model.Expression {
	return &model.Literal{Value: v}
}

func listMembership(property string, wantMember bool) func(valuetype.Value, *model.Constraint, *Properties) bool {
	return func(v valuetype.Value, _ *model.Constraint, p *Properties) bool {
		s, ok := v.(valuetype.Text)
		if !ok {
			return false
		}
		list, ok := p.Collection(property)
		if !ok {
			return false
		}
		member := false
		for _, el := range list {
			if valuetype.Equal(s, el) {
				member = true
				break
			}
		}
		return member == wantMember
	}
}

func checkLength(v valuetype.Value, _ *model.Constraint, p *Properties) bool {
	s, ok := v.(valuetype.Text)
	if !ok {
		return false
	}
	n := float64(utf8.RuneCountInString(string(s)))
	if lo, ok := p.Number("minLength"); ok && n < lo {
		return false
	}
	if hi, ok := p.Number("maxLength"); ok && n > hi {
		return false
	}
	return true
}

func checkRange(v valuetype.Value, _ *model.Constraint, p *Properties) bool {
	var x float64
	switch v := v.(type) {
	case valuetype.Number:
		x = float64(v)
	case valuetype.Text:
		parsed, ok := valuetype.Parse(string(v), valuetype.Decimal)
		if !ok {
			return false
		}
		x = float64(parsed.(valuetype.Number))
	default:
		return false
	}
	if math.IsNaN(x) {
		return false
	}

	if lo, ok := p.Number("lowerBound"); ok {
		inclusive, _ := p.Bool("lowerBoundInclusive")
		if x < lo || (!inclusive && x == lo) {
			return false
		}
	}
	if hi, ok := p.Number("upperBound"); ok {
		inclusive, _ := p.Bool("upperBoundInclusive")
		if x > hi || (!inclusive && x == hi) {
			return false
		}
	}
	return true
}

func checkRegex(v valuetype.Value, _ *model.Constraint, p *Properties) bool {
	s, ok := v.(valuetype.Text)
	if !ok {
		return false
	}
	re, ok := p.Value("regex").(valuetype.Regex)
	if !ok {
		return false
	}
	return re.Regexp().MatchString(string(s))
}
