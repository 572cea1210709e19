// Package executor fans research subtasks out to concurrent workers. It is
// the only place in the engine where concurrency is introduced; everything
// upstream and downstream observes complete batches.
package executor

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/deepresearch-ai/deepresearch/core"
	"github.com/deepresearch-ai/deepresearch/logging"
)

// Worker executes a single subtask.
type Worker interface {
	Execute(ctx context.Context, task core.Subtask) (core.Finding, error)
}

// BatchExecutor runs a batch of subtasks concurrently, one goroutine per
// task, and returns exactly one Finding per input in input order. Per-task
// failures degrade to zero-confidence findings; only context cancellation
// fails the batch as a whole.
type BatchExecutor struct {
	worker Worker
	opts   Options
	logger logging.Logger
}

// Options configures the batch executor.
type Options struct {
	// MaxConcurrency bounds how many workers run at once. Zero means
	// unbounded.
	MaxConcurrency int
	Logger         logging.Logger
}

// NewBatchExecutor wraps a worker with concurrent batch dispatch.
func NewBatchExecutor(worker Worker, optFns ...func(o *Options)) *BatchExecutor {
	opts := Options{}
	for _, fn := range optFns {
		fn(&opts)
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	return &BatchExecutor{worker: worker, opts: opts, logger: logger}
}

// ExecuteBatch dispatches every subtask and waits for all of them. The
// returned slice pairs findings[i] with subtasks[i]. A non-nil error means
// the batch was interrupted and the partial results must be discarded.
func (e *BatchExecutor) ExecuteBatch(ctx context.Context, subtasks []core.Subtask) ([]core.Finding, error) {
	if len(subtasks) == 0 {
		return []core.Finding{}, nil
	}

	findings := make([]core.Finding, len(subtasks))
	g, gctx := errgroup.WithContext(ctx)
	if e.opts.MaxConcurrency > 0 {
		g.SetLimit(e.opts.MaxConcurrency)
	}

	for i, task := range subtasks {
		g.Go(func() error {
			finding, err := e.runOne(gctx, task)
			if err != nil {
				e.logger.Warn("subtask failed", "task_id", task.ID, "error", err)
				finding = core.FailureFinding(task.ID, err)
			}
			findings[i] = finding
			return gctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("batch interrupted: %w", err)
	}
	e.logger.Info("batch complete", "tasks", len(subtasks))
	return findings, nil
}

// runOne executes a single subtask, converting worker panics into errors so
// one misbehaving task cannot take down its siblings.
func (e *BatchExecutor) runOne(ctx context.Context, task core.Subtask) (finding core.Finding, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("worker panic: %v", r)
		}
	}()
	return e.worker.Execute(ctx, task)
}
