package memory

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deepresearch-ai/deepresearch/core"
)

func TestMarkdownStoreRecordPlan(t *testing.T) {
	dir := t.TempDir()
	store := NewMarkdownStore(dir)

	plan := core.ResearchPlan{
		Complexity: core.ComplexityComplex,
		Strategy:   "split by decade",
		Subtasks: []core.Subtask{
			{ID: "task_1", Objective: "early history", SearchStrategy: "query archives", OutputFormat: "bullet list", ToolGuidance: "use search_web", Boundaries: "before 2010 only"},
		},
	}
	loc, err := store.RecordPlan("abc12345", "history of Go", plan)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "research_plan_abc12345.md"), loc)

	data, err := os.ReadFile(loc)
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, "# Research Plan")
	assert.Contains(t, text, "**Query**: history of Go")
	assert.Contains(t, text, "### Task 1: task_1")
	assert.Contains(t, text, "- **Boundaries**: before 2010 only")
}

func TestMarkdownStoreRecordRoundAppends(t *testing.T) {
	dir := t.TempDir()
	store := NewMarkdownStore(dir)

	findings := []core.Finding{{
		TaskID:     "task_1",
		Narrative:  "Go appeared in 2009",
		Confidence: 0.9,
		Sources:    []core.Source{{URL: "https://go.dev", Title: "Go"}},
		Gaps:       []string{"pre-release design docs"},
	}}

	loc, err := store.RecordRound("abc12345", 0, findings, "round zero synthesis")
	require.NoError(t, err)
	_, err = store.RecordRound("abc12345", 1, findings, "round one synthesis")
	require.NoError(t, err)

	data, err := os.ReadFile(loc)
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, "# Research Progress")
	assert.Contains(t, text, "## Round 0")
	assert.Contains(t, text, "## Round 1")
	assert.Contains(t, text, "round zero synthesis")
	assert.Contains(t, text, "round one synthesis")
	assert.Contains(t, text, "[Go](https://go.dev)")
	assert.Contains(t, text, "- pre-release design docs")
}

func TestMarkdownStoreRecordFinalReport(t *testing.T) {
	dir := t.TempDir()
	store := NewMarkdownStore(dir)

	sources := []core.Source{
		{URL: "https://go.dev", Title: "Go"},
		{URL: "https://example.com/untitled"},
	}
	loc, err := store.RecordFinalReport("abc12345", "## Findings\n\nGo is great [1].", sources)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "final_report_abc12345.md"), loc)

	data, err := os.ReadFile(loc)
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, "Go is great [1].")
	assert.Contains(t, text, "[1] [Go](https://go.dev)")
	assert.Contains(t, text, "[2] [Unknown Source](https://example.com/untitled)")
}

func TestMarkdownStoreCreatesDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "out")
	store := NewMarkdownStore(dir)

	_, err := store.RecordFinalReport("abc12345", "report", nil)
	require.NoError(t, err)
	_, err = os.Stat(dir)
	assert.NoError(t, err)
}
