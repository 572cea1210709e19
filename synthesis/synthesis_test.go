package synthesis

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deepresearch-ai/deepresearch/core"
	"github.com/deepresearch-ai/deepresearch/model"
)

func sampleFindings() []core.Finding {
	return []core.Finding{
		{TaskID: "task_1", Narrative: "Go appeared in 2009.", Confidence: 0.9},
		{TaskID: "task_2", Narrative: "Generics landed in Go 1.18.", Confidence: 0.8, Gaps: []string{"adoption numbers"}},
	}
}

const nextTaskJSON = `{"task_id": "task_3", "objective": "generics adoption", "search_strategy": "specific", "output_format": "bullets", "tool_guidance": "search_web", "boundaries": "post 1.18"}`

func TestSynthesizeEmptyFindings(t *testing.T) {
	mock := model.NewMockModel()

	out := New(mock).Synthesize(context.Background(), 0, 3, "", nil)

	assert.Equal(t, "No research findings available.", out.Narrative)
	assert.False(t, out.Continue)
	// No model call was made.
	assert.Empty(t, mock.Requests())
}

func TestSynthesizeContinue(t *testing.T) {
	mock := model.NewMockModel()
	mock.EnqueueText(`{
	  "synthesis": "Go history is well covered, adoption data missing.",
	  "gaps": ["adoption numbers"],
	  "needs_more_research": true,
	  "next_tasks": [` + nextTaskJSON + `]
	}`)

	out := New(mock).Synthesize(context.Background(), 0, 3, "", sampleFindings())

	assert.True(t, out.Continue)
	require.Len(t, out.NextSubtasks, 1)
	assert.Equal(t, "task_3", out.NextSubtasks[0].ID)
	assert.Equal(t, []string{"adoption numbers"}, out.Gaps)

	reqs := mock.Requests()
	require.Len(t, reqs, 1)
	assert.Contains(t, reqs[0].Instructions, "### task_1")
	assert.Contains(t, reqs[0].Instructions, "iteration 1 of max 3")
}

func TestSynthesizeBudgetExhaustedForcesStop(t *testing.T) {
	mock := model.NewMockModel()
	mock.EnqueueText(`{"synthesis": "s", "needs_more_research": true, "next_tasks": [` + nextTaskJSON + `]}`)

	// Final round: the model wants more but the budget is spent.
	out := New(mock).Synthesize(context.Background(), 2, 3, "", sampleFindings())

	assert.False(t, out.Continue)
	assert.Empty(t, out.NextSubtasks)
}

func TestSynthesizeNoValidNextTasksForcesStop(t *testing.T) {
	mock := model.NewMockModel()
	mock.EnqueueText(`{
	  "synthesis": "s",
	  "needs_more_research": true,
	  "next_tasks": [
	    {"task_id": "", "objective": "missing id"},
	    {"task_id": "task_x", "objective": "no directives"}
	  ]
	}`)

	out := New(mock).Synthesize(context.Background(), 0, 3, "", sampleFindings())

	assert.False(t, out.Continue)
	assert.Empty(t, out.NextSubtasks)
}

func TestSynthesizeDropsDuplicateNextTasks(t *testing.T) {
	mock := model.NewMockModel()
	mock.EnqueueText(`{"synthesis": "s", "needs_more_research": true, "next_tasks": [` + nextTaskJSON + `,` + nextTaskJSON + `]}`)

	out := New(mock).Synthesize(context.Background(), 0, 3, "", sampleFindings())

	assert.True(t, out.Continue)
	assert.Len(t, out.NextSubtasks, 1)
}

func TestSynthesizeUnparsableResponseFallsBack(t *testing.T) {
	mock := model.NewMockModel()
	mock.EnqueueText("The research looks complete to me.")

	out := New(mock).Synthesize(context.Background(), 0, 3, "", sampleFindings())

	assert.False(t, out.Continue)
	assert.Contains(t, out.Narrative, "## Research Findings")
	assert.Contains(t, out.Narrative, "### task_1")
	assert.Contains(t, out.Narrative, "Go appeared in 2009.")
	assert.Contains(t, out.Narrative, "### task_2")
}

func TestSynthesizeModelFailureFallsBack(t *testing.T) {
	mock := model.NewMockModel()
	mock.EnqueueError(errors.New("service down"))

	out := New(mock).Synthesize(context.Background(), 0, 3, "", sampleFindings())

	assert.False(t, out.Continue)
	assert.Contains(t, out.Narrative, "### task_1")
	// One call only, no retry.
	assert.Len(t, mock.Requests(), 1)
}

func TestSynthesizePriorSynthesisForwarded(t *testing.T) {
	mock := model.NewMockModel()
	mock.EnqueueText(`{"synthesis": "updated", "needs_more_research": false}`)

	out := New(mock).Synthesize(context.Background(), 1, 3, "earlier summary", sampleFindings())

	assert.Equal(t, "updated", out.Narrative)
	reqs := mock.Requests()
	require.Len(t, reqs, 1)
	assert.Contains(t, reqs[0].Instructions, "earlier summary")
}
