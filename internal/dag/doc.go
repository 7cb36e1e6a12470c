// Package dag provides the directed graph used to order the blocks of a
// pipeline or composite blocktype. Nodes keep their insertion order so that
// the topological order is deterministic for a given source file.
package dag
