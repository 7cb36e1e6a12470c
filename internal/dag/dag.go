package dag

import (
	"fmt"
	"slices"
)

// New creates and returns an initialized, empty Graph.
func New() *Graph {
	return &Graph{
		nodes: make(map[string]*node),
	}
}

// AddNode adds a new node with the given ID to the graph. If a node with
// the same ID already exists, the function does nothing.
func (g *Graph) AddNode(id string) {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	if _, ok := g.nodes[id]; ok {
		return
	}

	g.nodes[id] = &node{id: id}
	g.order = append(g.order, id)
}

// AddEdge creates a directed edge from the `fromID` node to the `toID` node.
// This signifies that `toID` has a dependency on `fromID`. An error is returned
// if either node does not exist or if the edge would create a self-reference.
// Adding an existing edge again has no effect.
func (g *Graph) AddEdge(fromID, toID string) error {
	if fromID == toID {
		return fmt.Errorf("self-referential edge not allowed: %s -> %s", fromID, fromID)
	}

	g.mutex.Lock()
	defer g.mutex.Unlock()

	fromNode, ok := g.nodes[fromID]
	if !ok {
		return fmt.Errorf("source node not found: %s", fromID)
	}

	toNode, ok := g.nodes[toID]
	if !ok {
		return fmt.Errorf("destination node not found: %s", toID)
	}

	if slices.Contains(toNode.deps, fromID) {
		return nil
	}
	toNode.deps = append(toNode.deps, fromID)
	fromNode.dependents = append(fromNode.dependents, toID)
	g.edges = append(g.edges, Edge{From: fromID, To: toID})

	return nil
}

// Nodes returns all node IDs in insertion order.
func (g *Graph) Nodes() []string {
	g.mutex.RLock()
	defer g.mutex.RUnlock()
	return slices.Clone(g.order)
}

// Edges returns all edges in insertion order.
func (g *Graph) Edges() []Edge {
	g.mutex.RLock()
	defer g.mutex.RUnlock()
	return slices.Clone(g.edges)
}

// Dependencies returns a slice of node IDs that the given node depends on.
func (g *Graph) Dependencies(id string) ([]string, error) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	n, ok := g.nodes[id]
	if !ok {
		return nil, fmt.Errorf("node not found: %s", id)
	}
	return slices.Clone(n.deps), nil
}

// Dependents returns a slice of node IDs that depend on the given node.
func (g *Graph) Dependents(id string) ([]string, error) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	n, ok := g.nodes[id]
	if !ok {
		return nil, fmt.Errorf("node not found: %s", id)
	}
	return slices.Clone(n.dependents), nil
}

// TopologicalSort orders the nodes so that every node comes after all of its
// dependencies, using Kahn's algorithm. Ties are broken by insertion order.
// Edges that remain unvisited when no more nodes can be released form a
// cycle, reported as a *CycleError; no partial order is returned.
func (g *Graph) TopologicalSort() ([]string, error) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	visited := make(map[Edge]bool, len(g.edges))
	remaining := func(id string) int {
		count := 0
		for _, dep := range g.nodes[id].deps {
			if !visited[Edge{From: dep, To: id}] {
				count++
			}
		}
		return count
	}

	var queue []string
	for _, id := range g.order {
		if len(g.nodes[id].deps) == 0 {
			queue = append(queue, id)
		}
	}

	sorted := make([]string, 0, len(g.order))
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		sorted = append(sorted, id)

		for _, dependent := range g.nodes[id].dependents {
			visited[Edge{From: id, To: dependent}] = true
			if remaining(dependent) == 0 {
				queue = append(queue, dependent)
			}
		}
	}

	var unvisited []Edge
	for _, e := range g.edges {
		if !visited[e] {
			unvisited = append(unvisited, e)
		}
	}
	if len(unvisited) > 0 {
		return nil, &CycleError{Edges: unvisited}
	}
	return sorted, nil
}

// DetectCycles checks the graph for any cycles. It returns a non-nil error
// if a cycle is found.
func (g *Graph) DetectCycles() error {
	_, err := g.TopologicalSort()
	return err
}
