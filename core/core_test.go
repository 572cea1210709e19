package core

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func validSubtask(id string) Subtask {
	return Subtask{
		ID:             id,
		Objective:      "find adoption numbers",
		SearchStrategy: "broad",
		OutputFormat:   "bullet list",
		ToolGuidance:   "prefer web search",
		Boundaries:     "skip vendor marketing",
	}
}

func TestValidateSubtask(t *testing.T) {
	assert.NoError(t, ValidateSubtask(validSubtask("t1")))

	cases := map[string]func(*Subtask){
		"id":              func(s *Subtask) { s.ID = "" },
		"objective":       func(s *Subtask) { s.Objective = "" },
		"search strategy": func(s *Subtask) { s.SearchStrategy = "" },
		"output format":   func(s *Subtask) { s.OutputFormat = "" },
		"tool guidance":   func(s *Subtask) { s.ToolGuidance = "" },
		"boundaries":      func(s *Subtask) { s.Boundaries = "" },
	}
	for name, mutate := range cases {
		s := validSubtask("t1")
		mutate(&s)
		assert.Error(t, ValidateSubtask(s), "expected rejection for missing %s", name)
	}
}

func TestFailureFinding(t *testing.T) {
	f := FailureFinding("t3", errors.New("boom"))
	assert.Equal(t, "t3", f.TaskID)
	assert.Zero(t, f.Confidence)
	assert.Empty(t, f.Sources)
	assert.Equal(t, []string{"execution failed: boom"}, f.Gaps)
}

func TestDegradedPlan(t *testing.T) {
	p := DegradedPlan("response is not valid JSON")
	assert.Empty(t, p.Subtasks)
	assert.Equal(t, "planning failed: response is not valid JSON", p.Strategy)
}

func TestSourceSetDedup(t *testing.T) {
	set := NewSourceSet()
	set.Add(Source{URL: "https://a.example", Title: "first"})
	set.Add(Source{URL: "https://b.example", Title: "b"})
	set.Add(Source{URL: "https://a.example", Title: "second"})
	set.Add(Source{URL: ""})

	assert.Equal(t, 2, set.Len())
	got := set.Slice()
	assert.Equal(t, "https://a.example", got[0].URL)
	// First-seen wins for title/snippet.
	assert.Equal(t, "first", got[0].Title)
	assert.Equal(t, "https://b.example", got[1].URL)
}

func TestSourceSetMergeIdempotent(t *testing.T) {
	findings := []Finding{
		{TaskID: "t1", Sources: []Source{{URL: "https://a.example"}, {URL: "https://b.example"}}},
		{TaskID: "t2", Sources: []Source{{URL: "https://b.example"}, {URL: "https://c.example"}}},
	}

	set := NewSourceSet()
	set.Merge(findings...)
	once := set.Slice()

	set.Merge(findings...)
	twice := set.Slice()

	assert.Equal(t, once, twice)
	assert.Equal(t, 3, set.Len())
}

func TestNewSessionState(t *testing.T) {
	st := NewSessionState(0)
	assert.Equal(t, 1, st.MaxRounds)
	assert.Equal(t, 0, st.Round)
	assert.False(t, st.Terminal)
	assert.NotNil(t, st.AllSources)
}
