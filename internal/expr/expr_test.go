package expr

import (
	"testing"

	"github.com/hashicorp/hcl/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/jayvee/internal/model"
	"github.com/vk/jayvee/internal/valuetype"
)

func lit(v valuetype.Value) model.Expression { return &model.Literal{Value: v} }
func num(f float64) model.Expression          { return lit(valuetype.Number(f)) }
func text(s string) model.Expression          { return lit(valuetype.Text(s)) }
func boolean(b bool) model.Expression         { return lit(valuetype.Bool(b)) }
func variable(name string) model.Expression   { return &model.Variable{Name: name} }

// decimal is a whole number written with a fraction, like `1.0`.
func decimal(f float64) model.Expression {
	return &model.Literal{Value: valuetype.Number(f), Type: valuetype.Decimal}
}

func un(op string, x model.Expression) model.Expression {
	return &model.UnaryExpression{Operator: op, Operand: x}
}

func bin(op string, l, r model.Expression) model.Expression {
	return &model.BinaryExpression{Operator: op, Left: l, Right: r}
}

func tern(op string, a, b, c model.Expression) model.Expression {
	return &model.TernaryExpression{Operator: op, First: a, Second: b, Third: c}
}

func coll(els ...model.Expression) model.Expression {
	return &model.CollectionLiteral{Elements: els}
}

func newTestContext(t *testing.T, params map[string]string) (*Context, *hcl.Diagnostics) {
	t.Helper()
	ctx := NewContext(NewRegistry(), NewParameters(params))
	diags := &hcl.Diagnostics{}
	t.Cleanup(ctx.CollectDiagnostics(diags))
	return ctx, diags
}

func TestRegistryParity(t *testing.T) {
	t.Run("built-in operators are complete", func(t *testing.T) {
		require.NoError(t, NewRegistry().Validate())
	})

	t.Run("missing type computer is reported", func(t *testing.T) {
		r := NewEmptyRegistry()
		r.RegisterUnaryEvaluator("neg", unaryFunc(evalNot))
		r.RegisterBinaryTypeComputer("cmp", relational)

		err := r.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unary operator 'neg' has an evaluator but no type computer")
		assert.Contains(t, err.Error(), "binary operator 'cmp' has a type computer but no evaluator")
	})

	t.Run("duplicate registration panics", func(t *testing.T) {
		r := NewRegistry()
		assert.Panics(t, func() { r.RegisterBinaryEvaluator("+", shortCircuit{}) })
	})

	t.Run("operator sets", func(t *testing.T) {
		r := NewRegistry()
		assert.ElementsMatch(t, []string{"if", "replace"}, r.TernaryOperators())
		assert.Contains(t, r.BinaryOperators(), "matches")
		assert.Contains(t, r.UnaryOperators(), "lengthof")
		assert.True(t, r.IsBinary("root"))
		assert.False(t, r.IsUnary("root"))
	})
}

func TestEvaluateOperators(t *testing.T) {
	cases := []struct {
		name string
		expr model.Expression
		want valuetype.Value
	}{
		{"addition", bin("+", num(1), num(2)), valuetype.Number(3)},
		{"subtraction", bin("-", num(1), num(2.5)), valuetype.Number(-1.5)},
		{"multiplication", bin("*", num(3), num(4)), valuetype.Number(12)},
		{"division yields decimal", bin("/", num(7), num(2)), valuetype.Number(3.5)},
		{"modulo", bin("%", num(7), num(3)), valuetype.Number(1)},
		{"pow", bin("pow", num(2), num(10)), valuetype.Number(1024)},
		{"negation", un("-", num(4)), valuetype.Number(-4)},
		{"not", un("not", boolean(false)), valuetype.Bool(true)},
		{"floor", un("floor", num(2.7)), valuetype.Number(2)},
		{"ceil", un("ceil", num(20.2)), valuetype.Number(21)},
		{"round half up", un("round", num(2.5)), valuetype.Number(3)},
		{"round negative half", un("round", num(-2.5)), valuetype.Number(-2)},
		{"sqrt", un("sqrt", num(9)), valuetype.Number(3)},
		{"lengthof text", un("lengthof", text("häuser")), valuetype.Number(6)},
		{"lengthof collection", un("lengthof", coll(num(1), num(2))), valuetype.Number(2)},
		{"lowercase", un("lowercase", text("ABC")), valuetype.Text("abc")},
		{"uppercase", un("uppercase", text("abc")), valuetype.Text("ABC")},
		{"asText", un("asText", num(1.5)), valuetype.Text("1.5")},
		{"asInteger", un("asInteger", text("42")), valuetype.Number(42)},
		{"asDecimal", un("asDecimal", text("4,5")), valuetype.Number(4.5)},
		{"asBoolean", un("asBoolean", num(0)), valuetype.Bool(false)},
		{"less than", bin("<", num(1), num(2)), valuetype.Bool(true)},
		{"greater or equal", bin(">=", num(1), num(2)), valuetype.Bool(false)},
		{"integer equals decimal", bin("==", num(2), num(2.0)), valuetype.Bool(true)},
		{"not equal", bin("!=", text("a"), text("b")), valuetype.Bool(true)},
		{"xor", bin("xor", boolean(true), boolean(true)), valuetype.Bool(false)},
		{"matches", bin("matches", text("abc123"), lit(valuetype.MustRegex(`^[a-z]+\d+$`))), valuetype.Bool(true)},
		{"in", bin("in", text("b"), coll(text("a"), text("b"))), valuetype.Bool(true)},
		{"not in", bin("in", num(3), coll(num(1), num(2))), valuetype.Bool(false)},
		{"replace", tern("replace", text("a-b-c"), lit(valuetype.MustRegex("-")), text("+")), valuetype.Text("a+b+c")},
		{"if true", tern("if", boolean(true), num(1), num(2)), valuetype.Number(1)},
		{"if false", tern("if", boolean(false), num(1), num(2)), valuetype.Number(2)},
		{"collection", coll(num(1), text("x")), valuetype.Collection{valuetype.Number(1), valuetype.Text("x")}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ctx, diags := newTestContext(t, nil)
			got := Evaluate(tc.expr, ctx, Lazy)
			require.NotNil(t, got, "diagnostics: %v", *diags)
			assert.True(t, valuetype.Equal(tc.want, got), "want %s, got %s", valuetype.Format(tc.want), valuetype.Format(got))
			assert.Empty(t, *diags)
		})
	}
}

func TestEvaluateRoot(t *testing.T) {
	ctx, _ := newTestContext(t, nil)

	v, ok := Evaluate(bin("root", num(27), num(3)), ctx, Lazy).(valuetype.Number)
	require.True(t, ok)
	assert.InDelta(t, 3, float64(v), 1e-9)

	v, ok = Evaluate(bin("root", num(-8), num(3)), ctx, Lazy).(valuetype.Number)
	require.True(t, ok)
	assert.InDelta(t, -2, float64(v), 1e-9)
}

func TestEvaluateDomainErrors(t *testing.T) {
	cases := map[string]model.Expression{
		"division by zero":      bin("/", num(1), num(0)),
		"modulo by zero":        bin("%", num(1), num(0)),
		"negative sqrt":         un("sqrt", num(-1)),
		"even root of negative": bin("root", num(-4), num(2)),
		"zero degree root":      bin("root", num(4), num(0)),
		"lossy asInteger":       un("asInteger", num(4.5)),
		"unparsable asDecimal":  un("asDecimal", text("four")),
		"operand kind mismatch": bin("+", num(1), text("a")),
	}
	for name, e := range cases {
		t.Run(name, func(t *testing.T) {
			ctx, diags := newTestContext(t, nil)
			assert.Nil(t, Evaluate(e, ctx, Lazy))
			assert.Len(t, *diags, 1)
		})
	}

	t.Run("no sink means no panic", func(t *testing.T) {
		ctx := NewContext(NewRegistry(), nil)
		assert.Nil(t, Evaluate(bin("/", num(1), num(0)), ctx, Lazy))
	})
}

// probe counts how often its operand is evaluated.
type probe struct {
	calls *int
}

func (p probe) Evaluate(e *model.UnaryExpression, ctx *Context, s Strategy) valuetype.Value {
	*p.calls++
	return Evaluate(e.Operand, ctx, s)
}

func TestShortCircuit(t *testing.T) {
	cases := []struct {
		op        string
		left      bool
		strategy  Strategy
		wantCalls int
		want      bool
	}{
		{"and", false, Lazy, 0, false},
		{"and", false, Exhaustive, 1, false},
		{"and", true, Lazy, 1, true},
		{"or", true, Lazy, 0, true},
		{"or", true, Exhaustive, 1, true},
		{"or", false, Lazy, 1, true},
	}

	for _, tc := range cases {
		t.Run(tc.op+"/"+tc.strategy.String(), func(t *testing.T) {
			// --- Arrange ---
			calls := 0
			ops := NewRegistry()
			ops.RegisterUnaryEvaluator("probe", probe{calls: &calls})
			ops.RegisterUnaryTypeComputer("probe", fixedResult(valuetype.Boolean))
			ctx := NewContext(ops, nil)

			// --- Act ---
			got := Evaluate(bin(tc.op, boolean(tc.left), un("probe", boolean(true))), ctx, tc.strategy)

			// --- Assert ---
			assert.Equal(t, tc.wantCalls, calls)
			assert.Equal(t, valuetype.Bool(tc.want), got)
		})
	}
}

func TestConditionalLaziness(t *testing.T) {
	calls := 0
	ops := NewRegistry()
	ops.RegisterUnaryEvaluator("probe", probe{calls: &calls})
	ops.RegisterUnaryTypeComputer("probe", fixedResult(valuetype.Integer))
	ctx := NewContext(ops, nil)

	e := tern("if", boolean(true), num(1), un("probe", num(2)))

	assert.Equal(t, valuetype.Number(1), Evaluate(e, ctx, Lazy))
	assert.Equal(t, 0, calls)

	assert.Equal(t, valuetype.Number(1), Evaluate(e, ctx, Exhaustive))
	assert.Equal(t, 1, calls)
}

func TestCollectionStrategies(t *testing.T) {
	e := coll(num(1), variable("missing"), bin("/", num(1), num(0)))

	t.Run("lazy aborts on the first undefined element", func(t *testing.T) {
		ctx, diags := newTestContext(t, nil)
		assert.Nil(t, Evaluate(e, ctx, Lazy))
		assert.Len(t, *diags, 1)
	})

	t.Run("exhaustive attempts every element", func(t *testing.T) {
		ctx, diags := newTestContext(t, nil)
		assert.Nil(t, Evaluate(e, ctx, Exhaustive))
		assert.Len(t, *diags, 2)
	})
}

func TestScopes(t *testing.T) {
	ctx, _ := newTestContext(t, nil)

	ctx.PushScope(map[string]valuetype.Value{"x": valuetype.Number(1), "y": valuetype.Number(2)})
	ctx.PushScope(map[string]valuetype.Value{"x": valuetype.Number(10)})
	assert.Equal(t, valuetype.Number(12), Evaluate(bin("+", variable("x"), variable("y")), ctx, Lazy))
	assert.Equal(t, 2, ctx.Depth())

	ctx.PopScope()
	assert.Equal(t, valuetype.Number(3), Evaluate(bin("+", variable("x"), variable("y")), ctx, Lazy))

	ctx.PopScope()
	assert.Nil(t, Evaluate(variable("x"), ctx, Lazy))
	assert.Panics(t, ctx.PopScope)
}

func TestValueUnderTest(t *testing.T) {
	ctx, diags := newTestContext(t, nil)
	e := bin(">", un("lengthof", &model.ValueKeyword{}), num(2))

	restore := ctx.BindValueUnderTest(valuetype.Text("abc"))
	assert.Equal(t, valuetype.Bool(true), Evaluate(e, ctx, Lazy))
	restore()

	assert.Nil(t, Evaluate(e, ctx, Lazy))
	assert.Len(t, *diags, 1)
}

func TestRuntimeParameters(t *testing.T) {
	ctx, diags := newTestContext(t, map[string]string{"LIMIT": "42", "RATIO": "abc"})

	limit := &model.RuntimeParameter{Name: "LIMIT"}
	assert.Equal(t, valuetype.Number(42), EvaluateAs(limit, ctx, valuetype.Integer, Lazy))
	assert.Equal(t, valuetype.Text("42"), EvaluateAs(limit, ctx, valuetype.TextType, Lazy))
	assert.Empty(t, *diags)

	assert.Nil(t, EvaluateAs(&model.RuntimeParameter{Name: "RATIO"}, ctx, valuetype.Decimal, Lazy))
	assert.Nil(t, EvaluateAs(&model.RuntimeParameter{Name: "MISSING"}, ctx, valuetype.Decimal, Lazy))
	require.Len(t, *diags, 2)
	assert.Equal(t, "Invalid runtime parameter", (*diags)[0].Summary)
	assert.Equal(t, "Missing runtime parameter", (*diags)[1].Summary)

	assert.Equal(t, []string{"LIMIT", "RATIO"}, ctx.Parameters().Names())
}

func TestInferType(t *testing.T) {
	env := NewTypeEnv(NewRegistry()).
		Bind("count", valuetype.Integer).
		Bind("name", valuetype.TextType)

	cases := []struct {
		name string
		expr model.Expression
		want valuetype.ValueType
	}{
		{"integer addition stays integer", bin("+", variable("count"), num(1)), valuetype.Integer},
		{"mixed addition widens", bin("+", variable("count"), num(1.5)), valuetype.Decimal},
		{"decimal literal widens", bin("*", num(2), decimal(1)), valuetype.Decimal},
		{"decimal literal widens a variable", bin("*", variable("count"), decimal(1)), valuetype.Decimal},
		{"division is decimal", bin("/", num(4), num(2)), valuetype.Decimal},
		{"floor is integer", un("floor", num(2.5)), valuetype.Integer},
		{"negation keeps integer", un("-", variable("count")), valuetype.Integer},
		{"lengthof text", un("lengthof", variable("name")), valuetype.Integer},
		{"relational", bin("<", variable("count"), num(2.5)), valuetype.Boolean},
		{"in empty collection", bin("in", variable("name"), coll()), valuetype.Boolean},
		{"conditional widens", tern("if", boolean(true), num(1), num(1.5)), valuetype.Decimal},
		{"replace", tern("replace", variable("name"), lit(valuetype.MustRegex("a")), text("b")), valuetype.TextType},
		{"collection widens", coll(num(1), num(2.5)), valuetype.NewCollection(valuetype.Decimal)},
		{"empty collection", coll(), valuetype.EmptyCollection},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			diags := hcl.Diagnostics{}
			got := InferType(tc.expr, env, &diags)
			require.NotNil(t, got, "diagnostics: %v", diags)
			assert.True(t, tc.want.Equals(got), "want %s, got %s", tc.want.Name(), got.Name())
			assert.Empty(t, diags)
		})
	}
}

func TestInferTypeErrors(t *testing.T) {
	env := NewTypeEnv(NewRegistry()).Bind("name", valuetype.TextType)

	cases := []struct {
		name      string
		expr      model.Expression
		wantDiags int
		summary   string
	}{
		{"arithmetic on text", bin("+", variable("name"), num(1)), 1, "Invalid operand type"},
		{"both operands reported", bin("*", text("a"), boolean(true)), 2, "Invalid operand type"},
		{"incomparable", bin("==", text("a"), num(1)), 1, "Incomparable types"},
		{"unknown reference", un("not", variable("missing")), 1, "Unknown reference"},
		{"ambiguous collection", coll(num(1), text("a")), 1, "Ambiguous collection"},
		{"unrelated branches", tern("if", boolean(true), num(1), text("a")), 1, "Incompatible branches"},
		{"runtime parameter inside expression", bin("+", &model.RuntimeParameter{Name: "X"}, num(1)), 1, "Misplaced runtime parameter"},
		{"value outside constraint", &model.ValueKeyword{}, 1, "Misplaced value keyword"},
		{"in without collection", bin("in", text("a"), text("b")), 1, "Invalid operand type"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			diags := hcl.Diagnostics{}
			assert.Nil(t, InferType(tc.expr, env, &diags))
			require.Len(t, diags, tc.wantDiags)
			assert.Equal(t, tc.summary, diags[0].Summary)
		})
	}

	t.Run("value keyword inside constraint", func(t *testing.T) {
		diags := hcl.Diagnostics{}
		scoped := NewTypeEnv(NewRegistry()).WithValueUnderTest(valuetype.Decimal)
		assert.Equal(t, valuetype.Boolean, InferType(bin(">", &model.ValueKeyword{}, num(0)), scoped, &diags))
		assert.Empty(t, diags)
	})
}

func TestParametersCache(t *testing.T) {
	p := NewParameters(map[string]string{"N": "7"})

	first := p.Lookup("N", valuetype.Integer)
	second := p.Lookup("N", valuetype.Integer)

	assert.Equal(t, valuetype.Number(7), first)
	assert.Equal(t, first, second)
	assert.Equal(t, valuetype.Text("7"), p.Lookup("N", valuetype.TextType))
	assert.Nil(t, p.Lookup("N", valuetype.Boolean))
	assert.Nil(t, p.Lookup("M", valuetype.Integer))
}
