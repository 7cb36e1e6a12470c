// Package engine runs pipelines. It orders the blocks of a pipeline
// topologically, then executes them one at a time: each block receives the
// value produced by its parent, a block whose parent produced nothing is
// skipped, and the first executor error stops the run.
//
// Composite blocktypes are executed by the engine itself: their properties
// are bound into a new scope and their inner blocks are run in the same way.
package engine
