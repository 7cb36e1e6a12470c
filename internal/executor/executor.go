// Package executor defines the contract between the execution engine and the
// code that implements a blocktype.
//
// A BlockExecutor declares the IO types it consumes and produces; the engine
// checks them against the blocktype before each call. Executors read their
// configuration through the Context, which evaluates property expressions
// against the current scope and runtime parameters.
package executor

import (
	"context"

	"github.com/vk/jayvee/internal/iotype"
)

// BlockExecutor executes one block.
//
// Execute receives the value produced by the block's parent, or iotype.None
// for blocks without input. Returning a nil Value means "nothing to hand on":
// downstream blocks are skipped, which is not an error.
type BlockExecutor interface {
	InputType() iotype.IOType
	OutputType() iotype.IOType
	Execute(ctx context.Context, input iotype.Value, ec *Context) (iotype.Value, error)
}

// Factory creates a fresh executor for each block execution.
type Factory func() BlockExecutor

// Func adapts a function with fixed IO types to a BlockExecutor.
type Func struct {
	In  iotype.IOType
	Out iotype.IOType
	Fn  func(ctx context.Context, input iotype.Value, ec *Context) (iotype.Value, error)
}

func (f *Func) InputType() iotype.IOType  { return f.In }
func (f *Func) OutputType() iotype.IOType { return f.Out }

func (f *Func) Execute(ctx context.Context, input iotype.Value, ec *Context) (iotype.Value, error) {
	return f.Fn(ctx, input, ec)
}
