// Package sheet provides the CSVInterpreter and the blocktypes that reshape
// sheets by cell ranges.
package sheet

import (
	_ "embed"

	"github.com/vk/jayvee/internal/executor"
	"github.com/vk/jayvee/internal/iotype"
	"github.com/vk/jayvee/internal/registry"
)

//go:embed manifest.jv
var manifest []byte

// Module implements the registry.Module interface.
type Module struct{}

// Register registers the sheet executors and their manifest.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterManifest("sheet.jv", manifest)

	r.RegisterBlockExecutor("CSVInterpreter", func() executor.BlockExecutor {
		return &executor.Func{In: iotype.TypeTextFile, Out: iotype.TypeSheet, Fn: interpretCSV}
	})

	sheetOps := map[string]func(*iotype.Sheet, *executor.Context) (*iotype.Sheet, error){
		"CellRangeSelector": selectCells,
		"CellWriter":        writeCells,
		"ColumnDeleter":     deleteColumns,
		"RowDeleter":        deleteRows,
	}
	for name, op := range sheetOps {
		op := op // per-iteration copy; go.mod targets Go 1.21 loop semantics
		r.RegisterBlockExecutor(name, func() executor.BlockExecutor {
			return &executor.Func{In: iotype.TypeSheet, Out: iotype.TypeSheet, Fn: sheetFunc(op)}
		})
	}
}
