package sqlite

import (
	"fmt"
	"strings"

	"github.com/vk/jayvee/internal/iotype"
	"github.com/vk/jayvee/internal/valuetype"
)

// statements holds the SQL needed to load one table.
type statements struct {
	Drop   string
	Create string
	Insert string
}

func buildStatements(name string, t *iotype.Table) statements {
	table := quoteIdent(name)

	defs := make([]string, 0, len(t.Columns()))
	cols := make([]string, 0, len(t.Columns()))
	marks := make([]string, 0, len(t.Columns()))
	for _, c := range t.Columns() {
		defs = append(defs, quoteIdent(c.Name)+" "+columnType(c.Type))
		cols = append(cols, quoteIdent(c.Name))
		marks = append(marks, "?")
	}

	return statements{
		Drop:   fmt.Sprintf("DROP TABLE IF EXISTS %s;", table),
		Create: fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s);", table, strings.Join(defs, ", ")),
		Insert: fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s);", table, strings.Join(cols, ", "), strings.Join(marks, ", ")),
	}
}

func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// columnType maps a value type to a SQLite column type by its primitive base.
func columnType(t valuetype.ValueType) string {
	switch base(t) {
	case valuetype.Boolean:
		return "boolean"
	case valuetype.Integer:
		return "integer"
	case valuetype.Decimal:
		return "real"
	default:
		return "text"
	}
}

func base(t valuetype.ValueType) valuetype.ValueType {
	if a, ok := t.(*valuetype.Atomic); ok {
		return a.Base()
	}
	return t
}

// sqlValue converts a cell to a value the driver accepts.
func sqlValue(v valuetype.Value, t valuetype.ValueType) any {
	switch v := v.(type) {
	case valuetype.Bool:
		return bool(v)
	case valuetype.Number:
		if base(t) == valuetype.Integer {
			return int64(v)
		}
		return float64(v)
	case valuetype.Text:
		return string(v)
	default:
		return valuetype.Format(v)
	}
}
