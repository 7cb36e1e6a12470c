// Package table provides the blocktypes that turn sheets into typed tables
// and derive new columns with transforms.
package table

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

// Register registers the table executors and their manifest.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterManifest("table.jv", manifest)
	r.RegisterBlockExecutor("TableInterpreter", func() executor.BlockExecutor {
		return &executor.Func{In: iotype.TypeSheet, Out: iotype.TypeTable, Fn: interpret}
	})
	r.RegisterBlockExecutor("TableTransformer", func() executor.BlockExecutor {
		return &executor.Func{In: iotype.TypeTable, Out: iotype.TypeTable, Fn: transformTable}
	})
}
