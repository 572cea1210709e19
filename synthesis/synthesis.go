// Package synthesis merges a round of research findings into a single
// narrative and decides whether the session should iterate again.
package synthesis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/deepresearch-ai/deepresearch/core"
	"github.com/deepresearch-ai/deepresearch/internal/util"
	"github.com/deepresearch-ai/deepresearch/logging"
	"github.com/deepresearch-ai/deepresearch/model"
)

const synthesisInstructions = `You are synthesizing research findings from multiple research workers.

## Worker Results
%s

## Current Date
%s

## Prior Synthesis
%s

## Iteration
This is iteration %d of max %d.

## Instructions
1. Analyze the findings from all workers
2. Identify any gaps or contradictions
3. Decide if more research is needed

Return a JSON object:
{
    "synthesis": "<combined findings summary>",
    "gaps": ["<gap1>", "<gap2>"],
    "contradictions": ["<if any>"],
    "needs_more_research": true/false,
    "reason": "<why more research is/isn't needed>",
    "next_tasks": [
        {
            "task_id": "<unique_id>",
            "objective": "<clear objective>",
            "search_strategy": "broad" | "specific",
            "output_format": "<expected format>",
            "tool_guidance": "<tool recommendations>",
            "boundaries": "<scope limits>"
        }
    ]
}`

// synthesisResponse mirrors the JSON the synthesis prompt asks for.
type synthesisResponse struct {
	Synthesis         string         `json:"synthesis"`
	Gaps              []string       `json:"gaps"`
	Contradictions    []string       `json:"contradictions"`
	NeedsMoreResearch bool           `json:"needs_more_research"`
	NextTasks         []core.Subtask `json:"next_tasks"`
}

// Options configures the synthesis engine.
type Options struct {
	Temperature float64
	Logger      logging.Logger
}

// Engine combines per-task findings and produces the continue/stop decision.
// It never mutates session state; the controller applies its output.
type Engine struct {
	model  model.Model
	opts   Options
	logger logging.Logger
	now    func() time.Time
}

// New creates a synthesis engine backed by the given model.
func New(m model.Model, optFns ...func(o *Options)) *Engine {
	opts := Options{Temperature: 0.3}
	for _, fn := range optFns {
		fn(&opts)
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	return &Engine{model: m, opts: opts, logger: logger, now: time.Now}
}

// Synthesize merges one round of findings. Zero findings short-circuit to the
// local fallback without a model call. An unparsable model response degrades
// to a concatenation of the narratives and stops the iteration.
func (e *Engine) Synthesize(ctx context.Context, round, maxRounds int, priorSynthesis string, findings []core.Finding) core.Synthesis {
	if len(findings) == 0 {
		return core.Synthesis{Narrative: "No research findings available."}
	}
	if priorSynthesis == "" {
		priorSynthesis = "None."
	}

	resp, err := e.model.Generate(ctx, model.Request{
		Instructions: fmt.Sprintf(synthesisInstructions,
			formatFindings(findings), e.now().Format(time.RFC3339),
			priorSynthesis, round+1, maxRounds),
		Messages: []model.Message{
			model.UserMessage("Synthesize the research findings and decide next steps."),
		},
		Temperature: e.opts.Temperature,
	})
	if err != nil {
		e.logger.Warn("synthesis model call failed", "error", err)
		return fallbackSynthesis(findings)
	}

	var decoded synthesisResponse
	if err := util.DecodeJSON(resp.Text, &decoded); err != nil {
		e.logger.Warn("synthesis response unparsable", "error", err)
		return fallbackSynthesis(findings)
	}

	narrative := decoded.Synthesis
	if narrative == "" {
		narrative = fallbackSynthesis(findings).Narrative
	}

	out := core.Synthesis{
		Narrative:      narrative,
		Gaps:           decoded.Gaps,
		Contradictions: decoded.Contradictions,
	}

	// Iterating requires both the model's vote and remaining round budget.
	if decoded.NeedsMoreResearch && round+1 < maxRounds {
		out.NextSubtasks = e.filterNextTasks(decoded.NextTasks)
		out.Continue = len(out.NextSubtasks) > 0
		if !out.Continue {
			e.logger.Warn("continue requested with no valid next tasks, stopping")
		}
	}
	return out
}

// filterNextTasks validates proposed follow-up subtasks and drops invalid
// entries and duplicate IDs.
func (e *Engine) filterNextTasks(tasks []core.Subtask) []core.Subtask {
	seen := make(map[string]struct{}, len(tasks))
	kept := tasks[:0:0]
	for _, task := range tasks {
		if err := core.ValidateSubtask(task); err != nil {
			e.logger.Warn("dropping invalid next subtask", "task_id", task.ID, "error", err)
			continue
		}
		if _, dup := seen[task.ID]; dup {
			e.logger.Warn("dropping duplicate next subtask", "task_id", task.ID)
			continue
		}
		seen[task.ID] = struct{}{}
		kept = append(kept, task)
	}
	return kept
}

// formatFindings renders the batch for the synthesis prompt.
func formatFindings(findings []core.Finding) string {
	var b strings.Builder
	for _, f := range findings {
		fmt.Fprintf(&b, "\n### %s\n", f.TaskID)
		fmt.Fprintf(&b, "**Confidence**: %.0f%%\n", f.Confidence*100)
		fmt.Fprintf(&b, "**Findings**: %s\n", f.Narrative)
		gaps := "None"
		if len(f.Gaps) > 0 {
			gaps = strings.Join(f.Gaps, ", ")
		}
		fmt.Fprintf(&b, "**Gaps**: %s\n", gaps)
	}
	return b.String()
}

// fallbackSynthesis concatenates narratives by task ID when the model output
// is unusable. It always stops the iteration.
func fallbackSynthesis(findings []core.Finding) core.Synthesis {
	var b strings.Builder
	b.WriteString("## Research Findings\n\n")
	for _, f := range findings {
		fmt.Fprintf(&b, "### %s\n\n%s\n\n", f.TaskID, f.Narrative)
	}
	return core.Synthesis{Narrative: b.String()}
}
