package iotype

import (
	"fmt"
	"strings"

	"github.com/vk/jayvee/internal/valuetype"
)

// Granularity controls how much of a value Describe renders.
type Granularity string

const (
	Minimal    Granularity = "minimal"
	Peek       Granularity = "peek"
	Exhaustive Granularity = "exhaustive"
)

const peekLimit = 10

// Describe renders a human readable summary of v for debug output.
func Describe(v Value, g Granularity) string {
	limit := peekLimit
	switch g {
	case Minimal:
		limit = 0
	case Exhaustive:
		limit = -1
	}

	var b strings.Builder
	switch v := v.(type) {
	case nil:
		b.WriteString("<nothing>")
	case noneValue:
		b.WriteString("None")
	case *File:
		fmt.Fprintf(&b, "File %q (%s, %d bytes)", v.Name, v.MimeType, len(v.Content))
	case *TextFile:
		fmt.Fprintf(&b, "TextFile %q (%d lines)", v.Name, len(v.Lines))
		for i, line := range v.Lines {
			if limit >= 0 && i >= limit {
				break
			}
			fmt.Fprintf(&b, "\n  %d: %s", i+1, line)
		}
	case *Sheet:
		fmt.Fprintf(&b, "Sheet (%d columns, %d rows)", v.Width(), v.Height())
		for i, row := range v.Rows() {
			if limit >= 0 && i >= limit {
				break
			}
			fmt.Fprintf(&b, "\n  %s", strings.Join(row, " | "))
		}
	case *Table:
		names := make([]string, len(v.Columns()))
		for i, c := range v.Columns() {
			names[i] = fmt.Sprintf("%s: %s", c.Name, c.Type.Name())
		}
		fmt.Fprintf(&b, "Table (%d rows) [%s]", v.NumRows(), strings.Join(names, ", "))
		for i := 0; i < v.NumRows(); i++ {
			if limit >= 0 && i >= limit {
				break
			}
			cells := make([]string, 0, len(v.Columns()))
			for _, cell := range v.Row(i) {
				cells = append(cells, valuetype.Format(cell))
			}
			fmt.Fprintf(&b, "\n  %s", strings.Join(cells, " | "))
		}
	default:
		fmt.Fprintf(&b, "%T", v)
	}
	return b.String()
}
