package iotype

import (
	"fmt"
	"slices"

	"github.com/vk/jayvee/internal/cellrange"
)

// Sheet is a rectangular grid of text cells. Rows shorter than the widest row
// are padded with empty cells.
type Sheet struct {
	rows  [][]string
	width int
}

// NewSheet builds a sheet from rows, padding short rows.
func NewSheet(rows [][]string) *Sheet {
	width := 0
	for _, r := range rows {
		width = max(width, len(r))
	}
	padded := make([][]string, len(rows))
	for i, r := range rows {
		row := make([]string, width)
		copy(row, r)
		padded[i] = row
	}
	return &Sheet{rows: padded, width: width}
}

func (*Sheet) IOType() IOType { return TypeSheet }

// Width returns the number of columns.
func (s *Sheet) Width() int { return s.width }

// Height returns the number of rows.
func (s *Sheet) Height() int { return len(s.rows) }

// Rows returns the underlying rows. Callers must not modify them.
func (s *Sheet) Rows() [][]string { return s.rows }

// Cell returns the cell at the zero-based position.
func (s *Sheet) Cell(row, col int) string { return s.rows[row][col] }

// Clone returns a deep copy.
func (s *Sheet) Clone() *Sheet {
	rows := make([][]string, len(s.rows))
	for i, r := range s.rows {
		rows[i] = slices.Clone(r)
	}
	return &Sheet{rows: rows, width: s.width}
}

// Bind resolves r against the sheet dimensions.
func (s *Sheet) Bind(r cellrange.Range) (cellrange.Range, error) {
	bound, ok := r.Bind(s.width, len(s.rows))
	if !ok {
		return bound, fmt.Errorf("cell range %s does not fit the sheet dimensions (%d columns, %d rows)", r, s.width, len(s.rows))
	}
	return bound, nil
}

// Select returns a new sheet containing only the cells within r.
func (s *Sheet) Select(r cellrange.Range) (*Sheet, error) {
	b, err := s.Bind(r)
	if err != nil {
		return nil, err
	}
	rows := make([][]string, 0, b.End.Row-b.Start.Row+1)
	for i := b.Start.Row; i <= b.End.Row; i++ {
		rows = append(rows, slices.Clone(s.rows[i][b.Start.Column:b.End.Column+1]))
	}
	return NewSheet(rows), nil
}

// DeleteColumns removes the given zero-based columns.
func (s *Sheet) DeleteColumns(cols []int) {
	drop := toSet(cols)
	for i, r := range s.rows {
		kept := r[:0:0]
		for c, cell := range r {
			if _, ok := drop[c]; !ok {
				kept = append(kept, cell)
			}
		}
		s.rows[i] = kept
	}
	for c := range drop {
		if c >= 0 && c < s.width {
			s.width--
		}
	}
}

// DeleteRows removes the given zero-based rows.
func (s *Sheet) DeleteRows(rows []int) {
	drop := toSet(rows)
	kept := s.rows[:0:0]
	for i, r := range s.rows {
		if _, ok := drop[i]; !ok {
			kept = append(kept, r)
		}
	}
	s.rows = kept
}

// Write stores values into the cells of a one-dimensional range, in row-major
// order. Extra cells keep their previous content.
func (s *Sheet) Write(r cellrange.Range, values []string) error {
	b, err := s.Bind(r)
	if err != nil {
		return err
	}
	if !b.IsOneDimensional() {
		return fmt.Errorf("cell range %s is not one-dimensional", r)
	}
	i := 0
	for row := b.Start.Row; row <= b.End.Row; row++ {
		for col := b.Start.Column; col <= b.End.Column; col++ {
			if i >= len(values) {
				return nil
			}
			s.rows[row][col] = values[i]
			i++
		}
	}
	return nil
}

func toSet(xs []int) map[int]struct{} {
	set := make(map[int]struct{}, len(xs))
	for _, x := range xs {
		set[x] = struct{}{}
	}
	return set
}
