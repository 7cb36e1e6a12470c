// Package text_file provides blocktypes that decode files into lines of text
// and operate on those lines.
package text_file

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

// Register registers the text file executors and their manifest.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterManifest("text_file.jv", manifest)
	r.RegisterBlockExecutor("TextFileInterpreter", func() executor.BlockExecutor {
		return &executor.Func{In: iotype.TypeFile, Out: iotype.TypeTextFile, Fn: interpret}
	})
	r.RegisterBlockExecutor("TextLineDeleter", func() executor.BlockExecutor {
		return &executor.Func{In: iotype.TypeTextFile, Out: iotype.TypeTextFile, Fn: deleteLines}
	})
	r.RegisterBlockExecutor("TextRangeSelector", func() executor.BlockExecutor {
		return &executor.Func{In: iotype.TypeTextFile, Out: iotype.TypeTextFile, Fn: selectRange}
	})
}
