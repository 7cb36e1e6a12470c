package table

import (
	"context"
	"fmt"

	"github.com/vk/jayvee/internal/ctxlog"
	"github.com/vk/jayvee/internal/executor"
	"github.com/vk/jayvee/internal/iotype"
	"github.com/vk/jayvee/internal/valuetype"
)

// columnSource maps a declared column to the sheet column it is read from.
type columnSource struct {
	name  string
	typ   valuetype.ValueType
	index int
}

// interpret parses every data row of a sheet into typed values. A row with a
// cell that does not parse or violates the constraints of its column type is
// dropped.
func interpret(ctx context.Context, input iotype.Value, ec *executor.Context) (iotype.Value, error) {
	sheet := input.(*iotype.Sheet)
	logger := ctxlog.FromContext(ctx)

	header, err := ec.Bool("header")
	if err != nil {
		return nil, err
	}
	coll, err := ec.Collection("columns")
	if err != nil {
		return nil, err
	}

	sources, err := columnSources(ctx, sheet, coll, header)
	if err != nil {
		return nil, err
	}

	rows := sheet.Rows()
	if header && len(rows) > 0 {
		rows = rows[1:]
	}

	values := make([][]valuetype.Value, len(sources))
	kept, dropped := 0, 0
rowLoop:
	for i, row := range rows {
		parsed := make([]valuetype.Value, len(sources))
		for c, src := range sources {
			cell := row[src.index]
			v, ok := valuetype.Parse(cell, src.typ)
			if !ok || !ec.Constraints.IsValid(ec.Eval, v, src.typ) {
				logger.Debug("Dropping row.", "row", rowNumber(i, header), "column", src.name, "value", cell, "type", src.typ.Name())
				dropped++
				continue rowLoop
			}
			parsed[c] = v
		}
		for c := range sources {
			values[c] = append(values[c], parsed[c])
		}
		kept++
	}

	t := iotype.NewTable(kept)
	for c, src := range sources {
		col := &iotype.Column{Name: src.name, Type: src.typ, Values: values[c]}
		if col.Values == nil {
			col.Values = []valuetype.Value{}
		}
		if err := t.PutColumn(col); err != nil {
			return nil, err
		}
	}

	ec.Metrics.RecordDroppedRows(ec.Block.Name, dropped)
	if dropped > 0 {
		logger.Info("Dropped rows that do not match the column types.", "dropped", dropped, "kept", kept)
	}
	return t, nil
}

// columnSources resolves the declared columns against the header row, or by
// position without a header. Declared columns missing from the header are
// skipped with a warning.
func columnSources(ctx context.Context, sheet *iotype.Sheet, coll valuetype.Collection, header bool) ([]columnSource, error) {
	var headerRow []string
	if header && sheet.Height() > 0 {
		headerRow = sheet.Rows()[0]
	}

	sources := make([]columnSource, 0, len(coll))
	for i, v := range coll {
		a := v.(valuetype.ValuetypeAssignment)
		src := columnSource{name: a.Name, typ: a.Type, index: -1}

		if header {
			for idx, h := range headerRow {
				if h == a.Name {
					src.index = idx
					break
				}
			}
			if src.index < 0 {
				ctxlog.FromContext(ctx).Warn("Column not found in the header, skipping it.", "column", a.Name)
				continue
			}
		} else {
			if i >= sheet.Width() {
				return nil, fmt.Errorf("column '%s' is declared at position %d, but the sheet has only %d column(s)", a.Name, i+1, sheet.Width())
			}
			src.index = i
		}
		sources = append(sources, src)
	}
	return sources, nil
}

func rowNumber(i int, header bool) int {
	if header {
		return i + 2
	}
	return i + 1
}
