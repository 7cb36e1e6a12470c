package valuetype

import (
	"testing"

	"github.com/hashicorp/hcl/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func declRange(line int) hcl.Range {
	return hcl.Range{Filename: "types.jv", Start: hcl.Pos{Line: line, Column: 1}, End: hcl.Pos{Line: line, Column: 10}}
}

func TestPrimitiveConversion(t *testing.T) {
	assert.True(t, Integer.IsConvertibleTo(Decimal))
	assert.False(t, Decimal.IsConvertibleTo(Integer))
	assert.True(t, TextType.IsConvertibleTo(TextType))
	assert.False(t, Boolean.IsConvertibleTo(TextType))
	assert.False(t, Integer.IsConvertibleTo(NewCollection(Integer)))
}

func TestConversionIsTransitive(t *testing.T) {
	// --- Arrange ---
	percent, err := NewAtomic("Percent", declRange(1), Integer)
	require.NoError(t, err)
	smallPercent, err := NewAtomic("SmallPercent", declRange(2), percent)
	require.NoError(t, err)

	all := []ValueType{
		Boolean, Integer, Decimal, TextType, RegexType, CellRangeType,
		ConstraintType, TransformType, ValuetypeAssignmentType,
		percent, smallPercent,
		NewCollection(Integer), NewCollection(Decimal), NewCollection(smallPercent),
		EmptyCollection,
	}

	// --- Act & Assert ---
	for _, a := range all {
		assert.True(t, a.IsConvertibleTo(a), "%s must convert to itself", a.Name())
		for _, b := range all {
			for _, c := range all {
				if a.IsConvertibleTo(b) && b.IsConvertibleTo(c) {
					assert.True(t, a.IsConvertibleTo(c), "%s -> %s -> %s", a.Name(), b.Name(), c.Name())
				}
			}
		}
	}
	assert.True(t, smallPercent.IsConvertibleTo(Decimal))
	assert.False(t, percent.IsConvertibleTo(smallPercent))
}

func TestCollectionTypes(t *testing.T) {
	ints := NewCollection(Integer)
	assert.True(t, ints.IsConvertibleTo(NewCollection(Decimal)))
	assert.False(t, NewCollection(Decimal).IsConvertibleTo(ints))
	assert.True(t, ints.Equals(NewCollection(Integer)))
	assert.Equal(t, "Collection<integer>", ints.Name())

	assert.True(t, EmptyCollection.IsConvertibleTo(ints))
	assert.False(t, ints.IsConvertibleTo(EmptyCollection))

	assert.True(t, ints.IsInternalValueRepresentation(Collection{Number(1), Number(2)}))
	assert.False(t, ints.IsInternalValueRepresentation(Collection{Number(1.5)}))
	assert.True(t, EmptyCollection.IsInternalValueRepresentation(Collection{}))
}

func TestAtomicEquality(t *testing.T) {
	a, err := NewAtomic("Percent", declRange(1), Decimal)
	require.NoError(t, err)
	sameDecl, err := NewAtomic("Percent", declRange(1), Decimal)
	require.NoError(t, err)
	otherDecl, err := NewAtomic("Percent", declRange(5), Decimal)
	require.NoError(t, err)

	assert.True(t, a.Equals(sameDecl))
	assert.False(t, a.Equals(otherDecl))
	assert.False(t, a.Equals(Decimal))
}

func TestAtomicConstruction(t *testing.T) {
	_, err := NewAtomic("Broken", declRange(1), nil)
	require.ErrorIs(t, err, ErrUnresolvedSupertype)
}

func TestAtomicSupertypeCycle(t *testing.T) {
	// --- Arrange ---
	a := DeclareAtomic("A", declRange(1))
	b := DeclareAtomic("B", declRange(2))
	require.NoError(t, a.Define(b))
	require.NoError(t, b.Define(a))

	// --- Act & Assert ---
	assert.True(t, a.HasCycle())
	assert.Nil(t, a.Supertype())
	assert.Nil(t, a.Base())
	assert.Empty(t, a.Ancestry())
	assert.False(t, a.IsConvertibleTo(Integer))
	assert.False(t, a.IsInternalValueRepresentation(Number(1)))
	assert.True(t, a.IsConvertibleTo(a))
}

func TestAtomicAncestry(t *testing.T) {
	base, err := NewAtomic("Base", declRange(1), TextType)
	require.NoError(t, err)
	child, err := NewAtomic("Child", declRange(2), base)
	require.NoError(t, err)

	assert.Equal(t, []*Atomic{child, base}, child.Ancestry())
	assert.Equal(t, TextType, child.Base())
	assert.True(t, child.IsInternalValueRepresentation(Text("x")))
}

func TestInternalValueRepresentation(t *testing.T) {
	cases := []struct {
		typ   ValueType
		value Value
		want  bool
	}{
		{Boolean, Bool(true), true},
		{Boolean, Text("true"), false},
		{Integer, Number(3), true},
		{Integer, Number(3.5), false},
		{Decimal, Number(3), true},
		{Decimal, Number(3.5), true},
		{TextType, Text(""), true},
		{RegexType, MustRegex("a+"), true},
		{Integer, nil, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, tc.typ.IsInternalValueRepresentation(tc.value), "%s(%v)", tc.typ.Name(), tc.value)
	}
}

func TestParse(t *testing.T) {
	cases := []struct {
		text string
		typ  ValueType
		want Value
	}{
		{"true", Boolean, Bool(true)},
		{"FALSE", Boolean, Bool(false)},
		{"42", Integer, Number(42)},
		{"-7", Integer, Number(-7)},
		{"3,5", Decimal, Number(3.5)},
		{"1e3", Decimal, Number(1000)},
		{" hello ", TextType, Text(" hello ")},
		{"A1:B*", CellRangeType, nil},
	}
	for _, tc := range cases {
		got, ok := Parse(tc.text, tc.typ)
		require.True(t, ok, tc.text)
		if tc.want != nil {
			assert.True(t, Equal(tc.want, got), "%q as %s", tc.text, tc.typ.Name())
		}
	}

	for _, bad := range []struct {
		text string
		typ  ValueType
	}{
		{"4.5", Integer},
		{"yes", Boolean},
		{"abc", Decimal},
		{"[", RegexType},
		{"1", NewCollection(Integer)},
	} {
		_, ok := Parse(bad.text, bad.typ)
		assert.False(t, ok, "%q as %s", bad.text, bad.typ.Name())
	}
}

func TestTypeOfAndCommonType(t *testing.T) {
	assert.Equal(t, Integer, TypeOf(Number(1)))
	assert.Equal(t, Decimal, TypeOf(Number(1.5)))
	assert.True(t, NewCollection(Decimal).Equals(TypeOf(Collection{Number(1), Number(1.5)})))
	assert.Equal(t, EmptyCollection, TypeOf(Collection{}))
	assert.Nil(t, TypeOf(Collection{Number(1), Text("a")}))

	_, ok := CommonType(Integer, TextType)
	assert.False(t, ok)
}

type kindCounter struct{}

func (kindCounter) VisitPrimitive(Primitive) string                  { return "primitive" }
func (kindCounter) VisitAtomic(*Atomic) string                       { return "atomic" }
func (kindCounter) VisitCollection(*CollectionType) string           { return "collection" }
func (kindCounter) VisitEmptyCollection(EmptyCollectionType) string { return "empty" }

func TestVisit(t *testing.T) {
	a, err := NewAtomic("A", declRange(1), Integer)
	require.NoError(t, err)

	assert.Equal(t, "primitive", Visit[string](Integer, kindCounter{}))
	assert.Equal(t, "atomic", Visit[string](a, kindCounter{}))
	assert.Equal(t, "collection", Visit[string](NewCollection(a), kindCounter{}))
	assert.Equal(t, "empty", Visit[string](EmptyCollection, kindCounter{}))
}
