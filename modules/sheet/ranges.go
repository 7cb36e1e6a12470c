package sheet

import (
	"context"
	"fmt"

	"github.com/vk/jayvee/internal/ctxlog"
	"github.com/vk/jayvee/internal/executor"
	"github.com/vk/jayvee/internal/iotype"
	"github.com/vk/jayvee/internal/valuetype"
)

// sheetFunc adapts an operation on a copy of the input sheet.
func sheetFunc(op func(*iotype.Sheet, *executor.Context) (*iotype.Sheet, error)) func(context.Context, iotype.Value, *executor.Context) (iotype.Value, error) {
	return func(ctx context.Context, input iotype.Value, ec *executor.Context) (iotype.Value, error) {
		in := input.(*iotype.Sheet)
		out, err := op(in.Clone(), ec)
		if err != nil {
			return nil, err
		}
		ctxlog.FromContext(ctx).Debug("Reshaped sheet.",
			"rows_before", in.Height(), "columns_before", in.Width(),
			"rows_after", out.Height(), "columns_after", out.Width(),
		)
		return out, nil
	}
}

func selectCells(s *iotype.Sheet, ec *executor.Context) (*iotype.Sheet, error) {
	r, err := ec.CellRange("select")
	if err != nil {
		return nil, err
	}
	return s.Select(r)
}

func writeCells(s *iotype.Sheet, ec *executor.Context) (*iotype.Sheet, error) {
	at, err := ec.CellRange("at")
	if err != nil {
		return nil, err
	}
	coll, err := ec.Collection("write")
	if err != nil {
		return nil, err
	}

	bound, err := s.Bind(at)
	if err != nil {
		return nil, err
	}
	cells := (bound.End.Row - bound.Start.Row + 1) * (bound.End.Column - bound.Start.Column + 1)
	if len(coll) > cells {
		return nil, fmt.Errorf("cannot write %d values into the %d cell(s) of %s", len(coll), cells, at)
	}

	values := make([]string, len(coll))
	for i, v := range coll {
		values[i] = string(v.(valuetype.Text))
	}
	if err := s.Write(at, values); err != nil {
		return nil, err
	}
	return s, nil
}

// wholeRanges binds every range of the named property and checks that it
// spans a whole column or row. It returns the column or row indices.
func wholeRanges(s *iotype.Sheet, ec *executor.Context, property string, column bool) ([]int, error) {
	coll, err := ec.Collection(property)
	if err != nil {
		return nil, err
	}

	indices := make([]int, 0, len(coll))
	for _, v := range coll {
		r := v.(valuetype.CellRange).Range
		if column && !r.IsColumn() {
			return nil, fmt.Errorf("%s is not a whole column", r)
		}
		if !column && !r.IsRow() {
			return nil, fmt.Errorf("%s is not a whole row", r)
		}
		bound, err := s.Bind(r)
		if err != nil {
			return nil, err
		}
		if column {
			indices = append(indices, bound.Start.Column)
		} else {
			indices = append(indices, bound.Start.Row)
		}
	}
	return indices, nil
}

func deleteColumns(s *iotype.Sheet, ec *executor.Context) (*iotype.Sheet, error) {
	cols, err := wholeRanges(s, ec, "delete", true)
	if err != nil {
		return nil, err
	}
	s.DeleteColumns(cols)
	return s, nil
}

func deleteRows(s *iotype.Sheet, ec *executor.Context) (*iotype.Sheet, error) {
	rows, err := wholeRanges(s, ec, "delete", false)
	if err != nil {
		return nil, err
	}
	s.DeleteRows(rows)
	return s, nil
}
