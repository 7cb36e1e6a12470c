package dag

import (
	"fmt"
	"strings"
	"sync"
)

// Graph is a collection of nodes and their dependencies.
// All operations on the graph are concurrency-safe.
type Graph struct {
	// mutex protects nodes, order and edges.
	mutex sync.RWMutex
	// nodes stores all nodes in the graph, keyed by their unique ID.
	nodes map[string]*node
	// order lists node IDs in insertion order.
	order []string
	// edges lists edges in insertion order, without duplicates.
	edges []Edge
}

// Edge is a directed edge: To depends on From.
type Edge struct {
	From string
	To   string
}

// node represents a single vertex in the graph. It is un-exported to
// enforce interaction with the graph via the public API (using string IDs),
// not by direct struct manipulation.
type node struct {
	id string
	// deps holds the IDs this node depends on, in insertion order.
	deps []string
	// dependents holds the IDs that depend on this node, in insertion order.
	dependents []string
}

// CycleError is returned by TopologicalSort when the graph is not acyclic.
// Edges lists the edges that could not be visited.
type CycleError struct {
	Edges []Edge
}

func (e *CycleError) Error() string {
	parts := make([]string, len(e.Edges))
	for i, edge := range e.Edges {
		parts[i] = edge.From + " -> " + edge.To
	}
	return fmt.Sprintf("cycle detected involving edges: %s", strings.Join(parts, ", "))
}

// Nodes returns the IDs of the nodes involved in the cycle, without
// duplicates, in edge order.
func (e *CycleError) Nodes() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, edge := range e.Edges {
		for _, id := range []string{edge.From, edge.To} {
			if _, ok := seen[id]; !ok {
				seen[id] = struct{}{}
				out = append(out, id)
			}
		}
	}
	return out
}
