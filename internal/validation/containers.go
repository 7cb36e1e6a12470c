package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/vk/jayvee/internal/dag"
	"github.com/vk/jayvee/internal/expr"
	"github.com/vk/jayvee/internal/iotype"
	"github.com/vk/jayvee/internal/model"
)

func (r *run) blockType(bt *model.BlockType) {
	for _, spec := range bt.Properties {
		if spec.Default != nil {
			r.propertyValue(bt.Name, spec, spec.Default, spec.DeclRange, expr.NewTypeEnv(r.ops))
		}
	}
	if bt.Builtin {
		return
	}

	if bt.Input == nil || bt.Output == nil {
		r.errorf(bt.DeclRange, "Missing port", "Composite blocktype '%s' must declare one input and one output port.", bt.Name)
	}
	r.container(bt, bt)
}

// compositeCycles reports composite blocktypes that use themselves, directly
// or through other composite blocktypes.
func (r *run) compositeCycles() {
	g := dag.New()
	for _, bt := range r.ws.CompositeBlockTypes() {
		g.AddNode(bt.Name)
	}
	for _, bt := range r.ws.CompositeBlockTypes() {
		for _, b := range bt.Blocks {
			if b.Type == nil || b.Type.Builtin {
				continue
			}
			if b.Type == bt {
				r.errorf(b.DeclRange, "Recursive blocktype", "Blocktype '%s' uses itself in block '%s'.", bt.Name, b.Name)
				continue
			}
			_ = g.AddEdge(b.Type.Name, bt.Name)
		}
	}

	var cycle *dag.CycleError
	if errors.As(g.DetectCycles(), &cycle) {
		for _, name := range cycle.Nodes() {
			bt := r.ws.BlockTypes[name]
			r.errorf(bt.DeclRange, "Recursive blocktype",
				"Blocktype '%s' uses itself through %s.", name, strings.Join(cycle.Nodes(), ", "))
		}
	}
}

// container checks the blocks and pipes of a pipeline or composite blocktype.
func (r *run) container(c model.Container, composite *model.BlockType) {
	env := expr.NewTypeEnv(r.ops)
	if composite != nil {
		for _, spec := range composite.Properties {
			if spec.Type != nil {
				env.Bind(spec.Name, spec.Type)
			}
		}
	}

	blocks := make(map[string]*model.Block, len(c.ContainedBlocks()))
	for _, b := range c.ContainedBlocks() {
		blocks[b.Name] = b
		if b.Type == nil {
			if b.TypeName != "" {
				r.errorf(b.DeclRange, "Unknown blocktype", "Block '%s' uses '%s', which is not a declared blocktype.", b.Name, b.TypeName)
			}
			continue
		}
		r.properties(fmt.Sprintf("block '%s'", b.Name), b.DeclRange, b.Type.Properties, b.Properties, env)
	}

	ingoing := make(map[string]int)
	for _, p := range c.ContainedPipes() {
		from, okFrom := r.pipeSource(c, composite, blocks, p)
		to, okTo := r.pipeTarget(c, composite, blocks, p)
		if !okFrom || !okTo {
			continue
		}

		ingoing[p.To]++
		if ingoing[p.To] == 2 {
			r.errorf(p.DeclRange, "Multiple inputs", "'%s' already receives input from another pipe; a block accepts a single input.", p.To)
		}

		switch {
		case from == iotype.TypeNone:
			r.errorf(p.DeclRange, "Invalid pipe", "'%s' produces no output that could be piped.", p.From)
		case to == iotype.TypeNone:
			r.errorf(p.DeclRange, "Invalid pipe", "'%s' takes no input.", p.To)
		case from != to:
			r.errorf(p.DeclRange, "Incompatible pipe", "'%s' produces %s but '%s' expects %s.", p.From, from, p.To, to)
		}
	}

	for _, b := range c.ContainedBlocks() {
		if b.Type != nil && b.Type.InputType() != iotype.TypeNone && ingoing[b.Name] == 0 {
			r.errorf(b.DeclRange, "Unconnected input", "Block '%s' expects %s input but nothing is piped into it.", b.Name, b.Type.InputType())
		}
	}
	if composite != nil && composite.OutputType() != iotype.TypeNone && ingoing[composite.Output.Name] == 0 {
		r.errorf(composite.Output.DeclRange, "Unconnected output", "Nothing is piped into output '%s' of blocktype '%s'.", composite.Output.Name, composite.Name)
	}

	r.cycles(c, blocks)
}

func (r *run) pipeSource(c model.Container, composite *model.BlockType, blocks map[string]*model.Block, p *model.Pipe) (iotype.IOType, bool) {
	if b, ok := blocks[p.From]; ok {
		if b.Type == nil {
			return 0, false
		}
		return b.Type.OutputType(), true
	}
	if composite != nil {
		if composite.Input != nil && p.From == composite.Input.Name {
			return composite.Input.Type, true
		}
		if composite.Output != nil && p.From == composite.Output.Name {
			r.errorf(p.DeclRange, "Invalid pipe", "Output port '%s' cannot be the source of a pipe.", p.From)
			return 0, false
		}
	}
	r.errorf(p.DeclRange, "Unknown pipe endpoint", "'%s' is not a block of '%s'.", p.From, c.ContainerName())
	return 0, false
}

func (r *run) pipeTarget(c model.Container, composite *model.BlockType, blocks map[string]*model.Block, p *model.Pipe) (iotype.IOType, bool) {
	if b, ok := blocks[p.To]; ok {
		if b.Type == nil {
			return 0, false
		}
		return b.Type.InputType(), true
	}
	if composite != nil {
		if composite.Output != nil && p.To == composite.Output.Name {
			return composite.Output.Type, true
		}
		if composite.Input != nil && p.To == composite.Input.Name {
			r.errorf(p.DeclRange, "Invalid pipe", "Input port '%s' cannot be the target of a pipe.", p.To)
			return 0, false
		}
	}
	r.errorf(p.DeclRange, "Unknown pipe endpoint", "'%s' is not a block of '%s'.", p.To, c.ContainerName())
	return 0, false
}

func (r *run) cycles(c model.Container, blocks map[string]*model.Block) {
	g := dag.New()
	for _, b := range c.ContainedBlocks() {
		g.AddNode(b.Name)
	}
	for _, p := range c.ContainedPipes() {
		if blocks[p.From] == nil || blocks[p.To] == nil {
			continue
		}
		if p.From == p.To {
			r.errorf(p.DeclRange, "Cyclic pipeline", "Block '%s' is piped into itself.", p.From)
			continue
		}
		_ = g.AddEdge(p.From, p.To)
	}

	err := g.DetectCycles()
	var cycle *dag.CycleError
	if errors.As(err, &cycle) {
		r.errorf(c.ContainerRange(), "Cyclic pipeline", "'%s' contains a cycle between blocks %s.", c.ContainerName(), strings.Join(cycle.Nodes(), ", "))
	}
}
