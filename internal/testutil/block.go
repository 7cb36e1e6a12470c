// Package testutil contains helpers shared by the tests of the block
// executors and the end-to-end tests.
package testutil

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/jayvee/internal/ctxlog"
	"github.com/vk/jayvee/internal/executor"
	"github.com/vk/jayvee/internal/expr"
	"github.com/vk/jayvee/internal/iotype"
	"github.com/vk/jayvee/internal/loader"
	"github.com/vk/jayvee/internal/metrics"
	"github.com/vk/jayvee/internal/model"
	"github.com/vk/jayvee/internal/registry"
)

// Context returns a background context carrying a logger that discards its
// output.
func Context() context.Context {
	return ctxlog.WithLogger(context.Background(), slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))
}

// Block is a loaded block ready to be handed to its executor. Logs collects
// what the executor logs at the default level.
type Block struct {
	Executor executor.BlockExecutor
	Context  *executor.Context
	Metrics  *metrics.Metrics
	Logs     *bytes.Buffer
}

// Run executes the block on input.
func (b *Block) Run(input iotype.Value) (iotype.Value, error) {
	ctx := ctxlog.WithLogger(context.Background(), slog.New(slog.NewTextHandler(b.Logs, nil)))
	return b.Executor.Execute(ctx, input, b.Context)
}

// LoadBlock registers mod, loads src and prepares the block named blockName,
// which may be declared in any pipeline of src. Runtime parameters are taken
// from params.
func LoadBlock(t *testing.T, mod registry.Module, src, blockName string, params map[string]string) *Block {
	t.Helper()

	reg := registry.New()
	mod.Register(reg)

	ws, diags := loader.New(reg).LoadSource(Context(), "test.jv", []byte(src))
	require.False(t, diags.HasErrors(), diags.Error())

	var block *model.Block
	for _, p := range ws.Pipelines {
		if b, ok := model.FindBlock(p, blockName); ok {
			block = b
			break
		}
	}
	require.NotNil(t, block, "block '%s' not found", blockName)
	require.NotNil(t, block.Type, "block '%s' has no resolved type", blockName)

	exec, ok := reg.Executor(block.Type.Name)
	require.True(t, ok, "no executor registered for '%s'", block.Type.Name)

	m := metrics.New()
	return &Block{
		Executor: exec,
		Metrics:  m,
		Logs:     &bytes.Buffer{},
		Context: &executor.Context{
			Block:       block,
			Eval:        expr.NewContext(reg.Operators, expr.NewParameters(params)),
			Constraints: reg.Constraints,
			Metrics:     m,
		},
	}
}
