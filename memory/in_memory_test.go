package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deepresearch-ai/deepresearch/core"
)

func TestInMemoryStoreRoundTrip(t *testing.T) {
	store := NewInMemoryStore()

	plan := core.ResearchPlan{
		Complexity: core.ComplexityModerate,
		Strategy:   "split by subtopic",
		Subtasks:   []core.Subtask{{ID: "task_1", Objective: "history"}},
	}
	loc, err := store.RecordPlan("abc12345", "history of Go", plan)
	require.NoError(t, err)
	assert.Equal(t, "memory://abc12345/plan", loc)

	query, got, ok := store.Plan("abc12345")
	require.True(t, ok)
	assert.Equal(t, "history of Go", query)
	assert.Equal(t, plan, got)

	findings := []core.Finding{{TaskID: "task_1", Narrative: "Go appeared in 2009", Confidence: 0.9}}
	loc, err = store.RecordRound("abc12345", 0, findings, "initial synthesis")
	require.NoError(t, err)
	assert.Equal(t, "memory://abc12345/rounds/0", loc)

	rounds := store.Rounds("abc12345")
	require.Len(t, rounds, 1)
	assert.Equal(t, 0, rounds[0].Round)
	assert.Equal(t, "initial synthesis", rounds[0].Synthesis)

	sources := []core.Source{{URL: "https://go.dev", Title: "Go"}}
	loc, err = store.RecordFinalReport("abc12345", "# Report", sources)
	require.NoError(t, err)
	assert.Equal(t, "memory://abc12345/report", loc)

	report, gotSources, ok := store.FinalReport("abc12345")
	require.True(t, ok)
	assert.Equal(t, "# Report", report)
	assert.Equal(t, sources, gotSources)
}

func TestInMemoryStoreUnknownSession(t *testing.T) {
	store := NewInMemoryStore()

	_, _, ok := store.Plan("missing")
	assert.False(t, ok)
	assert.Nil(t, store.Rounds("missing"))
	_, _, ok = store.FinalReport("missing")
	assert.False(t, ok)
}

func TestInMemoryStoreCopiesFindings(t *testing.T) {
	store := NewInMemoryStore()

	findings := []core.Finding{{TaskID: "task_1", Narrative: "original"}}
	_, err := store.RecordRound("abc12345", 0, findings, "")
	require.NoError(t, err)

	findings[0].Narrative = "mutated"
	rounds := store.Rounds("abc12345")
	require.Len(t, rounds, 1)
	assert.Equal(t, "original", rounds[0].Findings[0].Narrative)
}
