package executor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/jayvee/internal/cellrange"
	"github.com/vk/jayvee/internal/constraint"
	"github.com/vk/jayvee/internal/expr"
	"github.com/vk/jayvee/internal/iotype"
	"github.com/vk/jayvee/internal/model"
	"github.com/vk/jayvee/internal/valuetype"
)

func lit(v valuetype.Value) model.Expression { return &model.Literal{Value: v} }

func newTestContext(params map[string]string, props map[string]model.Expression) *Context {
	bt := &model.BlockType{
		Name:    "Sample",
		Builtin: true,
		Input:   &model.IOPort{Name: "default", Type: iotype.TypeNone},
		Output:  &model.IOPort{Name: "default", Type: iotype.TypeFile},
		Properties: []*model.PropertySpec{
			{Name: "url", Type: valuetype.TextType},
			{Name: "retries", Type: valuetype.Integer, Default: lit(valuetype.Number(0))},
			{Name: "ratio", Type: valuetype.Decimal, Optional: true},
			{Name: "follow", Type: valuetype.Boolean, Default: lit(valuetype.Bool(true))},
			{Name: "pattern", Type: valuetype.RegexType, Optional: true},
			{Name: "select", Type: valuetype.CellRangeType, Optional: true},
			{Name: "lines", Type: valuetype.NewCollection(valuetype.Integer), Optional: true},
		},
	}
	block := &model.Block{Name: "Fetch", TypeName: bt.Name, Type: bt, Properties: map[string]*model.Property{}}
	for name, e := range props {
		block.Properties[name] = &model.Property{Name: name, Expr: e}
	}
	return &Context{
		Block:       block,
		Eval:        expr.NewContext(expr.NewRegistry(), expr.NewParameters(params)),
		Constraints: constraint.NewDefaultRegistry(),
	}
}

func TestPropertyAccessors(t *testing.T) {
	ec := newTestContext(map[string]string{"RETRIES": "3"}, map[string]model.Expression{
		"url":     lit(valuetype.Text("https://example.com/cars.csv")),
		"retries": &model.RuntimeParameter{Name: "RETRIES"},
		"pattern": lit(valuetype.MustRegex(`\d+`)),
		"select":  lit(valuetype.CellRange{Range: cellrange.MustParse("A1:C*")}),
		"lines":   &model.CollectionLiteral{Elements: []model.Expression{lit(valuetype.Number(1)), lit(valuetype.Number(3))}},
	})

	url, err := ec.Text("url")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/cars.csv", url)

	retries, err := ec.Integer("retries")
	require.NoError(t, err)
	assert.Equal(t, 3, retries)

	follow, err := ec.Bool("follow")
	require.NoError(t, err)
	assert.True(t, follow, "default value")

	re, err := ec.Regex("pattern")
	require.NoError(t, err)
	assert.True(t, re.MatchString("a42"))

	sel, err := ec.CellRange("select")
	require.NoError(t, err)
	assert.Equal(t, "A1:C*", sel.String())

	lines, err := ec.Collection("lines")
	require.NoError(t, err)
	assert.Len(t, lines, 2)

	ratio, err := ec.Property("ratio")
	require.NoError(t, err)
	assert.Nil(t, ratio, "optional property without default")
	assert.False(t, ec.Has("ratio"))
	assert.True(t, ec.Has("follow"))
}

func TestPropertyErrors(t *testing.T) {
	cases := []struct {
		name   string
		props  map[string]model.Expression
		params map[string]string
		get    func(*Context) error
		reason string
	}{
		{
			name:   "missing required",
			get:    func(ec *Context) error { _, err := ec.Text("url"); return err },
			reason: "is required",
		},
		{
			name:   "undeclared",
			get:    func(ec *Context) error { _, err := ec.Property("nope"); return err },
			reason: "is not declared by blocktype 'Sample'",
		},
		{
			name:   "missing runtime parameter",
			props:  map[string]model.Expression{"retries": &model.RuntimeParameter{Name: "RETRIES"}},
			get:    func(ec *Context) error { _, err := ec.Integer("retries"); return err },
			reason: "could not be evaluated",
		},
		{
			name:   "unparsable runtime parameter",
			props:  map[string]model.Expression{"retries": &model.RuntimeParameter{Name: "RETRIES"}},
			params: map[string]string{"RETRIES": "many"},
			get:    func(ec *Context) error { _, err := ec.Integer("retries"); return err },
			reason: "could not be evaluated",
		},
		{
			name:   "invalid value for type",
			props:  map[string]model.Expression{"retries": lit(valuetype.Number(1.5))},
			get:    func(ec *Context) error { _, err := ec.Integer("retries"); return err },
			reason: "value 1.5 is not a valid integer",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ec := newTestContext(tc.params, tc.props)

			err := tc.get(ec)

			var perr *PropertyError
			require.ErrorAs(t, err, &perr)
			assert.Equal(t, "Fetch", perr.Block)
			assert.Equal(t, tc.reason, perr.Reason)
		})
	}
}

func TestPropertyReadsScope(t *testing.T) {
	// --- Arrange ---
	ec := newTestContext(nil, map[string]model.Expression{"url": &model.Variable{Name: "source"}})
	ec.Eval.PushScope(map[string]valuetype.Value{"source": valuetype.Text("file.csv")})
	defer ec.Eval.PopScope()

	// --- Act ---
	url, err := ec.Text("url")

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, "file.csv", url)
}
