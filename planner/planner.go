// Package planner turns a free-form query into a research plan by asking the
// reasoning model for a structured decomposition. Planning is attempted once
// per session; a malformed or failed response degrades to an empty plan
// instead of retrying.
package planner

import (
	"context"
	"fmt"
	"time"

	"github.com/deepresearch-ai/deepresearch/core"
	"github.com/deepresearch-ai/deepresearch/internal/util"
	"github.com/deepresearch-ai/deepresearch/logging"
	"github.com/deepresearch-ai/deepresearch/model"
)

const planningInstructions = `You are a Lead Research Agent coordinating a multi-agent research system.

## Your Role
You analyze user queries, create research strategies, and delegate to specialized research workers.

## Complexity Assessment Guidelines
- **Simple** (1 worker, 3-10 tool calls): Direct fact-finding, single topic
- **Moderate** (2-4 workers, 10-15 calls each): Comparisons, multi-faceted topics
- **Complex** (5-10+ workers): Deep research, many interrelated aspects

## Delegation Principles
For each worker task, you MUST provide:
1. **Clear objective**: What specific information to find
2. **Search strategy**: Start broad, then narrow
3. **Output format**: How to structure findings
4. **Tool guidance**: Which tools to prioritize (web search, etc.)
5. **Boundaries**: What NOT to do, scope limits to prevent overlap

## Current Context
%s

## Current Date
%s

## Instructions
Based on the user query and any existing context, create a detailed research plan.
Return a JSON object with this structure:
{
    "query_complexity": "simple" | "moderate" | "complex",
    "strategy": "<overall approach>",
    "subagent_tasks": [
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

// Options configures the planner.
type Options struct {
	Temperature float64
	Logger      logging.Logger
}

// Planner produces the round-zero research plan.
type Planner struct {
	model  model.Model
	opts   Options
	logger logging.Logger
	now    func() time.Time
}

// New creates a planner backed by the given reasoning model.
func New(m model.Model, optFns ...func(o *Options)) *Planner {
	opts := Options{Temperature: 0.3}
	for _, fn := range optFns {
		fn(&opts)
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	return &Planner{model: m, opts: opts, logger: logger, now: time.Now}
}

// Plan asks the model to decompose the query into subtasks. The returned plan
// is always usable: on model failure or an unparsable response it carries
// zero subtasks and a "planning failed" strategy so the session can proceed
// straight to synthesis.
func (p *Planner) Plan(ctx context.Context, query, priorContext string) core.ResearchPlan {
	if priorContext == "" {
		priorContext = "No prior context."
	}

	resp, err := p.model.Generate(ctx, model.Request{
		Instructions: fmt.Sprintf(planningInstructions, priorContext, p.now().Format(time.RFC3339)),
		Messages: []model.Message{
			model.UserMessage(fmt.Sprintf("Create a research plan for: %s", query)),
		},
		Temperature: p.opts.Temperature,
	})
	if err != nil {
		p.logger.Warn("planning model call failed", "error", err)
		return core.DegradedPlan(err.Error())
	}

	var decoded core.ResearchPlan
	if err := util.DecodeJSON(resp.Text, &decoded); err != nil {
		p.logger.Warn("planning response unparsable", "error", err)
		return core.DegradedPlan(err.Error())
	}
	if decoded.Complexity == "" {
		decoded.Complexity = core.ComplexityModerate
	}

	decoded.Subtasks = filterSubtasks(decoded.Subtasks, p.logger)
	p.logger.Info("research plan created",
		"complexity", string(decoded.Complexity),
		"subtasks", len(decoded.Subtasks))
	return decoded
}

// filterSubtasks drops invalid subtasks and all but the first occurrence of a
// duplicated task ID.
func filterSubtasks(tasks []core.Subtask, logger logging.Logger) []core.Subtask {
	seen := make(map[string]struct{}, len(tasks))
	kept := tasks[:0:0]
	for _, task := range tasks {
		if err := core.ValidateSubtask(task); err != nil {
			logger.Warn("dropping invalid subtask", "task_id", task.ID, "error", err)
			continue
		}
		if _, dup := seen[task.ID]; dup {
			logger.Warn("dropping duplicate subtask", "task_id", task.ID)
			continue
		}
		seen[task.ID] = struct{}{}
		kept = append(kept, task)
	}
	return kept
}
