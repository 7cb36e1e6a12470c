package cellrange

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColumnIndexAndName(t *testing.T) {
	cases := map[string]int{"A": 0, "Z": 25, "AA": 26, "AZ": 51, "BA": 52, "zz": 701}
	for letters, idx := range cases {
		got, err := ColumnIndex(letters)
		require.NoError(t, err, letters)
		assert.Equal(t, idx, got, letters)
	}

	assert.Equal(t, "A", ColumnName(0))
	assert.Equal(t, "AA", ColumnName(26))
	assert.Equal(t, "ZZ", ColumnName(701))
	assert.Equal(t, "*", ColumnName(Last))

	_, err := ColumnIndex("A1")
	assert.Error(t, err)

	got, err := ColumnIndex("FXSHRXW")
	require.NoError(t, err)
	assert.Equal(t, math.MaxInt32-1, got)
}

func TestColumnIndexOutOfRange(t *testing.T) {
	for _, ref := range []string{"FXSHRXX1", "ZZZZZZZZZZZZZZ1", strings.Repeat("Z", 70) + "1"} {
		// --- Act ---
		_, err := ParseCell(ref)

		// --- Assert ---
		require.Error(t, err, ref)
		assert.Contains(t, err.Error(), "out of range")
	}
}

func TestParse(t *testing.T) {
	t.Run("range with wildcards", func(t *testing.T) {
		r, err := Parse("A2:C*")
		require.NoError(t, err)
		assert.Equal(t, Index{Column: 0, Row: 1}, r.Start)
		assert.Equal(t, Index{Column: 2, Row: Last}, r.End)
		assert.Equal(t, "A2:C*", r.String())
	})

	t.Run("single cell", func(t *testing.T) {
		r, err := Parse("B3")
		require.NoError(t, err)
		assert.Equal(t, r.Start, r.End)
		assert.Equal(t, "B3", r.String())
	})

	t.Run("invalid references", func(t *testing.T) {
		for _, s := range []string{"", "A", "3", "A0", "1A", "A1:"} {
			_, err := Parse(s)
			assert.Error(t, err, s)
		}
	})
}

func TestColumnRowCell(t *testing.T) {
	col, err := Column("B")
	require.NoError(t, err)
	assert.True(t, col.IsColumn())
	assert.False(t, col.IsRow())

	row, err := Row(2)
	require.NoError(t, err)
	assert.True(t, row.IsRow())
	assert.Equal(t, "A2:*2", row.String())

	_, err = Row(0)
	assert.Error(t, err)

	cell, err := Cell("C4")
	require.NoError(t, err)
	assert.True(t, cell.IsOneDimensional())
}

func TestBind(t *testing.T) {
	r, err := Parse("B1:*2")
	require.NoError(t, err)

	bound, ok := r.Bind(4, 3)
	require.True(t, ok)
	assert.Equal(t, Index{Column: 1, Row: 0}, bound.Start)
	assert.Equal(t, Index{Column: 3, Row: 1}, bound.End)

	_, ok = r.Bind(4, 1)
	assert.False(t, ok, "row 2 is outside a one-row sheet")

	inverted, err := Parse("C1:A1")
	require.NoError(t, err)
	_, ok = inverted.Bind(5, 5)
	assert.False(t, ok)
}
