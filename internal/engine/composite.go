package engine

import (
	"context"
	"fmt"

	"github.com/vk/jayvee/internal/executor"
	"github.com/vk/jayvee/internal/iotype"
	"github.com/vk/jayvee/internal/model"
	"github.com/vk/jayvee/internal/valuetype"
)

// compositeExecutor runs the inner blocks of a composite blocktype.
type compositeExecutor struct {
	engine    *Engine
	blockType *model.BlockType
}

func (c *compositeExecutor) InputType() iotype.IOType  { return c.blockType.InputType() }
func (c *compositeExecutor) OutputType() iotype.IOType { return c.blockType.OutputType() }

// Execute binds the composite's properties, evaluated in the caller's scope,
// into a new scope and runs the inner blocks with input as their initial
// value. The result is the value of the block piped into the output port.
func (c *compositeExecutor) Execute(ctx context.Context, input iotype.Value, ec *executor.Context) (iotype.Value, error) {
	bindings := make(map[string]valuetype.Value, len(c.blockType.Properties))
	for _, spec := range c.blockType.Properties {
		v, err := ec.Property(spec.Name)
		if err != nil {
			return nil, err
		}
		if v != nil {
			bindings[spec.Name] = v
		}
	}

	ec.Eval.PushScope(bindings)
	defer ec.Eval.PopScope()

	items, err := c.engine.runContainer(ctx, c.blockType, input, ec.Eval)
	if err != nil {
		return nil, err
	}

	if c.blockType.Output == nil || c.blockType.OutputType() == iotype.TypeNone {
		return iotype.None, nil
	}
	terminal := c.terminal()
	if terminal == "" {
		return nil, fmt.Errorf("composite blocktype '%s' has no block piped into output '%s'", c.blockType.Name, c.blockType.Output.Name)
	}
	for _, it := range items {
		if it.Block.Name == terminal {
			return it.Value, nil
		}
	}
	return nil, fmt.Errorf("composite blocktype '%s': terminal block '%s' not found", c.blockType.Name, terminal)
}

func (c *compositeExecutor) terminal() string {
	for _, p := range model.IngoingPipes(c.blockType, c.blockType.Output.Name) {
		return p.From
	}
	return ""
}
