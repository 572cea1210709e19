package executor

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deepresearch-ai/deepresearch/core"
)

// scriptedWorker maps task IDs to canned outcomes.
type scriptedWorker struct {
	findings map[string]core.Finding
	errs     map[string]error
	panics   map[string]bool
}

func (w *scriptedWorker) Execute(ctx context.Context, task core.Subtask) (core.Finding, error) {
	if w.panics[task.ID] {
		panic("worker exploded")
	}
	if err, ok := w.errs[task.ID]; ok {
		return core.Finding{}, err
	}
	if f, ok := w.findings[task.ID]; ok {
		return f, nil
	}
	return core.Finding{TaskID: task.ID, Narrative: "ok", Confidence: 0.8}, nil
}

func batchOf(n int) []core.Subtask {
	tasks := make([]core.Subtask, n)
	for i := range tasks {
		tasks[i] = core.Subtask{ID: fmt.Sprintf("task_%d", i+1), Objective: "o", SearchStrategy: "broad", OutputFormat: "f", ToolGuidance: "g", Boundaries: "b"}
	}
	return tasks
}

func TestExecuteBatchPairsOutputsToInputs(t *testing.T) {
	e := NewBatchExecutor(&scriptedWorker{})
	tasks := batchOf(4)

	findings, err := e.ExecuteBatch(context.Background(), tasks)
	require.NoError(t, err)
	require.Len(t, findings, len(tasks))
	for i, f := range findings {
		assert.Equal(t, tasks[i].ID, f.TaskID)
	}
}

func TestExecuteBatchIsolatesFailures(t *testing.T) {
	worker := &scriptedWorker{errs: map[string]error{"task_2": errors.New("model unavailable")}}
	e := NewBatchExecutor(worker)
	tasks := batchOf(4)

	findings, err := e.ExecuteBatch(context.Background(), tasks)
	require.NoError(t, err)
	require.Len(t, findings, 4)

	assert.Equal(t, 0.8, findings[0].Confidence)
	assert.Zero(t, findings[1].Confidence)
	require.Len(t, findings[1].Gaps, 1)
	assert.Contains(t, findings[1].Gaps[0], "execution failed")
	assert.Contains(t, findings[1].Gaps[0], "model unavailable")
	assert.Equal(t, 0.8, findings[2].Confidence)
	assert.Equal(t, 0.8, findings[3].Confidence)
}

func TestExecuteBatchRecoversPanics(t *testing.T) {
	worker := &scriptedWorker{panics: map[string]bool{"task_1": true}}
	e := NewBatchExecutor(worker)

	findings, err := e.ExecuteBatch(context.Background(), batchOf(2))
	require.NoError(t, err)
	require.Len(t, findings, 2)
	assert.Zero(t, findings[0].Confidence)
	assert.Contains(t, findings[0].Gaps[0], "worker panic")
	assert.Equal(t, 0.8, findings[1].Confidence)
}

func TestExecuteBatchEmptyInput(t *testing.T) {
	e := NewBatchExecutor(&scriptedWorker{})

	findings, err := e.ExecuteBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, findings)
}

func TestExecuteBatchCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	e := NewBatchExecutor(&scriptedWorker{})
	findings, err := e.ExecuteBatch(ctx, batchOf(3))
	require.Error(t, err)
	assert.Nil(t, findings)
}

func TestExecuteBatchBoundedConcurrency(t *testing.T) {
	e := NewBatchExecutor(&scriptedWorker{}, func(o *Options) { o.MaxConcurrency = 2 })

	findings, err := e.ExecuteBatch(context.Background(), batchOf(8))
	require.NoError(t, err)
	assert.Len(t, findings, 8)
}
