// Package cellrange implements A1-style cell references and ranges over a
// two-dimensional sheet, including the `*` wildcard for "last column/row".
package cellrange

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Last marks a wildcard coordinate that resolves to the last column or row
// of the sheet a range is bound against.
const Last = -1

// Index is a zero-based cell coordinate. Either component may be Last.
type Index struct {
	Column int
	Row    int
}

// Range is an inclusive rectangle of cells.
type Range struct {
	Start Index
	End   Index
}

// ParseCell parses a single cell reference such as "B3" or "C*".
func ParseCell(s string) (Index, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Index{}, fmt.Errorf("empty cell reference")
	}

	split := 0
	if s[0] == '*' {
		split = 1
	} else {
		for split < len(s) && isLetter(s[split]) {
			split++
		}
	}
	if split == 0 || split == len(s) {
		return Index{}, fmt.Errorf("invalid cell reference '%s'", s)
	}

	col, err := parseColumnPart(s[:split])
	if err != nil {
		return Index{}, err
	}
	row, err := parseRowPart(s[split:])
	if err != nil {
		return Index{}, err
	}
	return Index{Column: col, Row: row}, nil
}

// Parse parses a range in A1 notation. A single cell reference is accepted
// as a one-cell range.
func Parse(s string) (Range, error) {
	start, end, found := strings.Cut(s, ":")
	from, err := ParseCell(start)
	if err != nil {
		return Range{}, err
	}
	if !found {
		return Range{Start: from, End: from}, nil
	}
	to, err := ParseCell(end)
	if err != nil {
		return Range{}, err
	}
	return Range{Start: from, End: to}, nil
}

// MustParse is like Parse but panics on malformed input.
func MustParse(s string) Range {
	r, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return r
}

// Column returns the range covering every row of the named column.
func Column(letters string) (Range, error) {
	col, err := parseColumnPart(letters)
	if err != nil {
		return Range{}, err
	}
	return Range{Start: Index{Column: col, Row: 0}, End: Index{Column: col, Row: Last}}, nil
}

// Row returns the range covering every column of the one-based row.
func Row(row int) (Range, error) {
	if row < 1 {
		return Range{}, fmt.Errorf("row number must be positive, got %d", row)
	}
	return Range{Start: Index{Column: 0, Row: row - 1}, End: Index{Column: Last, Row: row - 1}}, nil
}

// Cell returns the one-cell range for the given reference.
func Cell(ref string) (Range, error) {
	idx, err := ParseCell(ref)
	if err != nil {
		return Range{}, err
	}
	return Range{Start: idx, End: idx}, nil
}

// maxColumn bounds column references so indexes fit in an int everywhere.
const maxColumn = math.MaxInt32

// ColumnIndex converts column letters ("A", "AB") to a zero-based index.
func ColumnIndex(letters string) (int, error) {
	if letters == "" {
		return 0, fmt.Errorf("empty column reference")
	}
	var idx int64
	for i := 0; i < len(letters); i++ {
		c := letters[i]
		if !isLetter(c) {
			return 0, fmt.Errorf("invalid column reference '%s'", letters)
		}
		idx = idx*26 + int64(upper(c)-'A'+1)
		if idx > maxColumn {
			return 0, fmt.Errorf("column reference '%s' is out of range", letters)
		}
	}
	return int(idx - 1), nil
}

// ColumnName converts a zero-based column index to its letters.
func ColumnName(idx int) string {
	if idx < 0 {
		return "*"
	}
	var b []byte
	for n := idx + 1; n > 0; n = (n - 1) / 26 {
		b = append([]byte{byte('A' + (n-1)%26)}, b...)
	}
	return string(b)
}

func (i Index) String() string {
	row := "*"
	if i.Row != Last {
		row = strconv.Itoa(i.Row + 1)
	}
	return ColumnName(i.Column) + row
}

func (r Range) String() string {
	if r.Start == r.End {
		return r.Start.String()
	}
	return r.Start.String() + ":" + r.End.String()
}

// Bind resolves wildcards against a sheet of the given size. The second
// return value is false if the bound range falls outside the sheet or is
// inverted.
func (r Range) Bind(width, height int) (Range, bool) {
	resolve := func(v, size int) int {
		if v == Last {
			return size - 1
		}
		return v
	}
	bound := Range{
		Start: Index{Column: resolve(r.Start.Column, width), Row: resolve(r.Start.Row, height)},
		End:   Index{Column: resolve(r.End.Column, width), Row: resolve(r.End.Row, height)},
	}
	if bound.Start.Column < 0 || bound.Start.Row < 0 {
		return bound, false
	}
	if bound.End.Column >= width || bound.End.Row >= height {
		return bound, false
	}
	if bound.Start.Column > bound.End.Column || bound.Start.Row > bound.End.Row {
		return bound, false
	}
	return bound, true
}

// IsOneDimensional reports whether the range spans a single row or column.
func (r Range) IsOneDimensional() bool {
	return r.Start.Column == r.End.Column || r.Start.Row == r.End.Row
}

// IsColumn reports whether the range spans exactly one whole column.
func (r Range) IsColumn() bool {
	return r.Start.Column == r.End.Column && r.Start.Column != Last && r.Start.Row == 0 && r.End.Row == Last
}

// IsRow reports whether the range spans exactly one whole row.
func (r Range) IsRow() bool {
	return r.Start.Row == r.End.Row && r.Start.Row != Last && r.Start.Column == 0 && r.End.Column == Last
}

func parseColumnPart(s string) (int, error) {
	if s == "*" {
		return Last, nil
	}
	return ColumnIndex(s)
}

func parseRowPart(s string) (int, error) {
	if s == "*" {
		return Last, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid row reference '%s'", s)
	}
	return n - 1, nil
}

func isLetter(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
}

func upper(c byte) byte {
	if c >= 'a' && c <= 'z' {
		return c - 'a' + 'A'
	}
	return c
}
