package engine

import (
	"fmt"
	"time"

	"github.com/hashicorp/hcl/v2"
	"github.com/vk/jayvee/internal/iotype"
	"github.com/vk/jayvee/internal/model"
)

// State is the lifecycle state of a block within one run.
type State uint8

const (
	Pending State = iota
	Running
	Completed
	Skipped
	Failed
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Running:
		return "running"
	case Completed:
		return "completed"
	case Skipped:
		return "skipped"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("State(%d)", uint8(s))
}

// ExecutionOrderItem tracks one block of a run. Value is nil until the block
// completes, and stays nil for skipped and failed blocks.
type ExecutionOrderItem struct {
	Block    *model.Block
	Value    iotype.Value
	State    State
	Duration time.Duration
}

// BlockError wraps the failure of a single block.
type BlockError struct {
	Block     string
	BlockType string
	Range     hcl.Range
	Err       error
}

func (e *BlockError) Error() string {
	return fmt.Sprintf("block '%s' (%s) failed: %v", e.Block, e.BlockType, e.Err)
}

func (e *BlockError) Unwrap() error { return e.Err }

// PanicError is the cause of a BlockError raised by an executor panic.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("executor panicked: %v", e.Value)
}
