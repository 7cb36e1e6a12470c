package engine

import (
	"fmt"

	"github.com/vk/jayvee/internal/dag"
	"github.com/vk/jayvee/internal/model"
)

// ExecutionOrder returns the blocks of c in topological order, each in the
// Pending state. Pipes that start or end at a port of the enclosing
// composite blocktype are not edges.
func ExecutionOrder(c model.Container) ([]*ExecutionOrderItem, error) {
	g := dag.New()
	blocks := make(map[string]*model.Block, len(c.ContainedBlocks()))
	for _, b := range c.ContainedBlocks() {
		g.AddNode(b.Name)
		blocks[b.Name] = b
	}
	for _, p := range c.ContainedPipes() {
		_, fromBlock := blocks[p.From]
		_, toBlock := blocks[p.To]
		if !fromBlock || !toBlock {
			continue
		}
		if err := g.AddEdge(p.From, p.To); err != nil {
			return nil, fmt.Errorf("%s: invalid pipe %s -> %s: %w", c.ContainerName(), p.From, p.To, err)
		}
	}

	sorted, err := g.TopologicalSort()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", c.ContainerName(), err)
	}

	items := make([]*ExecutionOrderItem, len(sorted))
	for i, name := range sorted {
		items[i] = &ExecutionOrderItem{Block: blocks[name], State: Pending}
	}
	return items, nil
}
