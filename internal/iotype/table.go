package iotype

import (
	"fmt"
	"slices"

	"github.com/vk/jayvee/internal/valuetype"
)

// Column is a named, typed column of a table.
type Column struct {
	Name   string
	Type   valuetype.ValueType
	Values []valuetype.Value
}

// Table is an ordered set of equally long columns.
type Table struct {
	columns []*Column
	rows    int
}

// NewTable creates an empty table with the given number of rows.
func NewTable(rows int) *Table {
	return &Table{rows: rows}
}

func (*Table) IOType() IOType { return TypeTable }

// NumRows returns the row count.
func (t *Table) NumRows() int { return t.rows }

// Columns returns the columns in order.
func (t *Table) Columns() []*Column { return t.columns }

// Column looks up a column by name.
func (t *Table) Column(name string) (*Column, bool) {
	for _, c := range t.columns {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}

// PutColumn adds col, replacing any existing column with the same name in
// place.
func (t *Table) PutColumn(col *Column) error {
	if len(col.Values) != t.rows {
		return fmt.Errorf("column '%s' has %d values, table has %d rows", col.Name, len(col.Values), t.rows)
	}
	for i, c := range t.columns {
		if c.Name == col.Name {
			t.columns[i] = col
			return nil
		}
	}
	t.columns = append(t.columns, col)
	return nil
}

// DeleteRows removes the given zero-based rows from every column.
func (t *Table) DeleteRows(rows []int) {
	if len(rows) == 0 {
		return
	}
	drop := toSet(rows)
	for _, c := range t.columns {
		kept := make([]valuetype.Value, 0, len(c.Values))
		for i, v := range c.Values {
			if _, ok := drop[i]; !ok {
				kept = append(kept, v)
			}
		}
		c.Values = kept
	}
	removed := 0
	for r := range drop {
		if r >= 0 && r < t.rows {
			removed++
		}
	}
	t.rows -= removed
}

// Clone returns a copy whose columns may be modified independently.
func (t *Table) Clone() *Table {
	out := &Table{rows: t.rows, columns: make([]*Column, len(t.columns))}
	for i, c := range t.columns {
		out.columns[i] = &Column{Name: c.Name, Type: c.Type, Values: slices.Clone(c.Values)}
	}
	return out
}

// Row returns the values of one row, in column order.
func (t *Table) Row(i int) []valuetype.Value {
	row := make([]valuetype.Value, len(t.columns))
	for c, col := range t.columns {
		row[c] = col.Values[i]
	}
	return row
}
