package core

import "fmt"

// Complexity classifies a research query by how much delegation it warrants.
type Complexity string

const (
	// ComplexitySimple indicates direct fact-finding on a single topic.
	ComplexitySimple Complexity = "simple"
	// ComplexityModerate indicates comparisons or multi-faceted topics.
	ComplexityModerate Complexity = "moderate"
	// ComplexityComplex indicates deep research across interrelated aspects.
	ComplexityComplex Complexity = "complex"
)

// Subtask is one delegated unit of research work. The directive fields are
// free text passed opaquely to the worker; the orchestrator only enforces
// their presence. A Subtask is immutable once dispatched.
type Subtask struct {
	ID             string `json:"task_id"`
	Objective      string `json:"objective"`
	SearchStrategy string `json:"search_strategy"` // "broad" or "specific"
	OutputFormat   string `json:"output_format"`
	ToolGuidance   string `json:"tool_guidance"`
	Boundaries     string `json:"boundaries"`
}

// ValidateSubtask checks the shape invariants for a proposed subtask: a
// non-empty id and all five directive fields present. Candidates that fail
// are dropped by the caller, never dispatched.
func ValidateSubtask(s Subtask) error {
	switch {
	case s.ID == "":
		return fmt.Errorf("subtask has empty id")
	case s.Objective == "":
		return fmt.Errorf("subtask %s has empty objective", s.ID)
	case s.SearchStrategy == "":
		return fmt.Errorf("subtask %s has empty search strategy", s.ID)
	case s.OutputFormat == "":
		return fmt.Errorf("subtask %s has empty output format", s.ID)
	case s.ToolGuidance == "":
		return fmt.Errorf("subtask %s has empty tool guidance", s.ID)
	case s.Boundaries == "":
		return fmt.Errorf("subtask %s has empty boundaries", s.ID)
	}
	return nil
}

// Source is a web reference backing a Finding. Score is in [0,1]; zero when
// the search backend reported none.
type Source struct {
	URL     string  `json:"url"`
	Title   string  `json:"title"`
	Snippet string  `json:"snippet"`
	Score   float64 `json:"score"`
}

// Finding is the normalized result of executing one Subtask. Exactly one
// Finding exists per dispatched Subtask; failed executions are encoded as a
// Finding with zero confidence and a gap naming the cause rather than being
// dropped.
type Finding struct {
	TaskID     string   `json:"task_id"`
	Narrative  string   `json:"narrative"`
	Sources    []Source `json:"sources"`
	Confidence float64  `json:"confidence"`
	Gaps       []string `json:"gaps"`
}

// FailureFinding converts a per-task execution failure into the Finding the
// batch contract requires: zero confidence, no sources, one gap entry.
func FailureFinding(taskID string, cause error) Finding {
	return Finding{
		TaskID:     taskID,
		Confidence: 0,
		Gaps:       []string{fmt.Sprintf("execution failed: %v", cause)},
	}
}

// ResearchPlan is the Planner's output for one round. An empty Subtasks
// slice is a valid plan meaning no further delegation is needed.
type ResearchPlan struct {
	Complexity Complexity `json:"query_complexity"`
	Strategy   string     `json:"strategy"`
	Subtasks   []Subtask  `json:"subagent_tasks"`
}

// DegradedPlan is the planning fallback when the reasoning service returns
// an unusable response: zero subtasks, so the engine proceeds straight to
// synthesis instead of crashing. No retry is attempted.
func DegradedPlan(reason string) ResearchPlan {
	return ResearchPlan{
		Complexity: ComplexityModerate,
		Strategy:   fmt.Sprintf("planning failed: %s", reason),
	}
}

// Synthesis is the merged analysis of one round plus the continue/stop
// decision. Continue is only honored when NextSubtasks survived validation;
// the engine treats Continue=true with no subtasks as a stop.
type Synthesis struct {
	Narrative      string    `json:"narrative"`
	Gaps           []string  `json:"gaps"`
	Contradictions []string  `json:"contradictions"`
	Continue       bool      `json:"continue"`
	NextSubtasks   []Subtask `json:"next_subtasks"`
}
