package engine

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/vk/jayvee/internal/ctxlog"
	"github.com/vk/jayvee/internal/executor"
	"github.com/vk/jayvee/internal/expr"
	"github.com/vk/jayvee/internal/iotype"
	"github.com/vk/jayvee/internal/metrics"
	"github.com/vk/jayvee/internal/model"
	"github.com/vk/jayvee/internal/registry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Options control optional engine behaviour.
type Options struct {
	// Debug logs a description of every block result.
	Debug bool
	// Granularity selects how much of a result is described.
	Granularity iotype.Granularity
	// DebugTargets restricts debug output to the named blocks. Empty means
	// all blocks.
	DebugTargets []string
}

// Engine executes pipelines against a registry.
type Engine struct {
	registry *registry.Registry
	metrics  *metrics.Metrics
	tracer   trace.Tracer
	opts     Options
}

// New creates an engine. A nil metrics collector records nothing and a nil
// tracer falls back to a no-op tracer.
func New(reg *registry.Registry, m *metrics.Metrics, tracer trace.Tracer, opts Options) *Engine {
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("jayvee")
	}
	if opts.Granularity == "" {
		opts.Granularity = iotype.Peek
	}
	return &Engine{registry: reg, metrics: m, tracer: tracer, opts: opts}
}

// RunPipeline executes every block of p in topological order. It returns the
// execution order with the final state of every block, also when a block
// failed.
func (e *Engine) RunPipeline(ctx context.Context, p *model.Pipeline, params *expr.Parameters) ([]*ExecutionOrderItem, error) {
	logger := ctxlog.FromContext(ctx).With("pipeline", p.Name)
	ctx = ctxlog.WithLogger(ctx, logger)

	ctx, span := e.tracer.Start(ctx, "pipeline.run", trace.WithAttributes(attribute.String("pipeline.name", p.Name)))
	defer span.End()

	logger.Info("🚀 Starting pipeline.")
	start := time.Now()

	ec := expr.NewContext(e.registry.Operators, params)
	items, err := e.runContainer(ctx, p, iotype.None, ec)
	elapsed := time.Since(start)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		e.metrics.RecordRun(p.Name, Failed.String(), elapsed)
		logger.Error("💥 Pipeline failed.", "duration", elapsed, "error", err)
		return items, err
	}

	span.SetStatus(codes.Ok, "")
	e.metrics.RecordRun(p.Name, Completed.String(), elapsed)
	logger.Info("🏁 Pipeline finished.", "duration", elapsed)
	return items, nil
}

// runContainer executes the blocks of c. Blocks without a parent block
// receive initial.
func (e *Engine) runContainer(ctx context.Context, c model.Container, initial iotype.Value, ec *expr.Context) ([]*ExecutionOrderItem, error) {
	items, err := ExecutionOrder(c)
	if err != nil {
		return nil, err
	}
	byName := make(map[string]*ExecutionOrderItem, len(items))
	for _, it := range items {
		byName[it.Block.Name] = it
	}

	logger := ctxlog.FromContext(ctx)
	logger.Debug("Execution order resolved.", "container", c.ContainerName(), "blocks", len(items))

	for _, it := range items {
		if err := ctx.Err(); err != nil {
			return items, fmt.Errorf("run of '%s' cancelled: %w", c.ContainerName(), err)
		}

		input := initial
		if parents := model.Parents(c, it.Block.Name); len(parents) > 0 {
			input = byName[parents[0].Name].Value
			if input == nil {
				it.State = Skipped
				e.metrics.RecordBlock(it.Block.TypeName, Skipped.String(), 0, false)
				logger.Info("⏭️ Skipping block, its parent produced no value.", "block", it.Block.Name, "parent", parents[0].Name)
				continue
			}
		}

		if err := e.runBlock(ctx, it, input, ec); err != nil {
			return items, err
		}
	}
	return items, nil
}

func (e *Engine) runBlock(ctx context.Context, it *ExecutionOrderItem, input iotype.Value, ec *expr.Context) error {
	b := it.Block
	logger := ctxlog.FromContext(ctx).With("block", b.Name, "blocktype", b.TypeName)
	ctx = ctxlog.WithLogger(ctx, logger)

	ctx, span := e.tracer.Start(ctx, "block.execute", trace.WithAttributes(
		attribute.String("block.name", b.Name),
		attribute.String("block.type", b.TypeName),
	))
	defer span.End()

	it.State = Running
	logger.Debug("▶️ Starting block.")
	start := time.Now()
	out, err := e.execute(ctx, b, input, ec)
	it.Duration = time.Since(start)

	if err != nil {
		it.State = Failed
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		e.metrics.RecordBlock(b.TypeName, Failed.String(), it.Duration, true)
		return &BlockError{Block: b.Name, BlockType: b.TypeName, Range: b.DeclRange, Err: err}
	}

	it.Value = out
	it.State = Completed
	span.SetStatus(codes.Ok, "")
	e.metrics.RecordBlock(b.TypeName, Completed.String(), it.Duration, true)
	logger.Debug("✅ Finished block.", "duration", it.Duration)

	if e.debugTarget(b.Name) {
		logger.Info("Block result.", "result", iotype.Describe(out, e.opts.Granularity))
	}
	return nil
}

// execute runs the executor for b, converting panics into errors.
func (e *Engine) execute(ctx context.Context, b *model.Block, input iotype.Value, ec *expr.Context) (out iotype.Value, err error) {
	exec, err := e.executorFor(b)
	if err != nil {
		return nil, err
	}
	if exec.InputType() != b.Type.InputType() || exec.OutputType() != b.Type.OutputType() {
		return nil, fmt.Errorf("executor handles %s -> %s, blocktype declares %s -> %s",
			exec.InputType(), exec.OutputType(), b.Type.InputType(), b.Type.OutputType())
	}
	if input.IOType() != exec.InputType() {
		return nil, fmt.Errorf("received %s, expected %s", input.IOType(), exec.InputType())
	}

	defer func() {
		if r := recover(); r != nil {
			out, err = nil, &PanicError{Value: r}
		}
	}()

	bctx := &executor.Context{
		Block:       b,
		Eval:        ec,
		Constraints: e.registry.Constraints,
		Metrics:     e.metrics,
	}
	out, err = exec.Execute(ctx, input, bctx)
	if err != nil {
		return nil, err
	}
	if out != nil && out.IOType() != exec.OutputType() {
		return nil, fmt.Errorf("executor produced %s, expected %s", out.IOType(), exec.OutputType())
	}
	return out, nil
}

var errNoExecutor = errors.New("no executor registered")

func (e *Engine) executorFor(b *model.Block) (executor.BlockExecutor, error) {
	if b.Type == nil {
		return nil, fmt.Errorf("blocktype '%s' is not resolved", b.TypeName)
	}
	if !b.Type.Builtin {
		return &compositeExecutor{engine: e, blockType: b.Type}, nil
	}
	exec, ok := e.registry.Executor(b.Type.Name)
	if !ok {
		return nil, fmt.Errorf("%w for blocktype '%s'", errNoExecutor, b.Type.Name)
	}
	return exec, nil
}

func (e *Engine) debugTarget(block string) bool {
	if !e.opts.Debug {
		return false
	}
	return len(e.opts.DebugTargets) == 0 || slices.Contains(e.opts.DebugTargets, block)
}
