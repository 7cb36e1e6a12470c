package table

import (
	"context"
	"fmt"

	"github.com/vk/jayvee/internal/ctxlog"
	"github.com/vk/jayvee/internal/executor"
	"github.com/vk/jayvee/internal/iotype"
	"github.com/vk/jayvee/internal/transform"
	"github.com/vk/jayvee/internal/valuetype"
)

// transformTable applies a transform row by row and stores its results in
// the output column. Rows the transform drops are removed from every column.
func transformTable(ctx context.Context, input iotype.Value, ec *executor.Context) (iotype.Value, error) {
	table := input.(*iotype.Table)

	inputNames, err := ec.Collection("inputColumns")
	if err != nil {
		return nil, err
	}
	outputName, err := ec.Text("outputColumn")
	if err != nil {
		return nil, err
	}
	def, err := ec.Transform("uses")
	if err != nil {
		return nil, err
	}

	x, err := transform.NewExecutor(def, ec.Constraints)
	if err != nil {
		return nil, err
	}
	if len(inputNames) != len(def.Inputs) {
		return nil, fmt.Errorf("transform '%s' expects %d input column(s), got %d", def.Name, len(def.Inputs), len(inputNames))
	}

	columns := make([]*iotype.Column, len(inputNames))
	for i, v := range inputNames {
		name := string(v.(valuetype.Text))
		col, ok := table.Column(name)
		if !ok {
			return nil, fmt.Errorf("column '%s' does not exist in the table", name)
		}
		port := def.Inputs[i]
		if !col.Type.IsConvertibleTo(port.Type) {
			return nil, fmt.Errorf("column '%s' has type %s, which does not match input '%s' of type %s",
				name, col.Type.Name(), port.Name, port.Type.Name())
		}
		columns[i] = col
	}

	res, err := x.Apply(ctx, columns, table.NumRows(), ec.Eval)
	if err != nil {
		return nil, err
	}

	out := table.Clone()
	out.DeleteRows(res.DeletedRows)
	res.Column.Name = outputName
	if existing, ok := out.Column(outputName); ok {
		ctxlog.FromContext(ctx).Debug("Overwriting column.", "column", outputName, "old_type", existing.Type.Name(), "new_type", res.Column.Type.Name())
	}
	if err := out.PutColumn(res.Column); err != nil {
		return nil, err
	}

	ec.Metrics.RecordDroppedRows(ec.Block.Name, len(res.DeletedRows))
	if n := len(res.DeletedRows); n > 0 {
		ctxlog.FromContext(ctx).Info("Dropped rows the transform could not compute.", "dropped", n, "kept", out.NumRows())
	}
	return out, nil
}
