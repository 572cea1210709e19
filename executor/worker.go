package executor

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/deepresearch-ai/deepresearch/core"
	"github.com/deepresearch-ai/deepresearch/internal/util"
	"github.com/deepresearch-ai/deepresearch/logging"
	"github.com/deepresearch-ai/deepresearch/model"
	"github.com/deepresearch-ai/deepresearch/tool"
)

const workerInstructions = `You are a specialized Research Subagent with a specific task.

## Your Task
**Objective**: %s
**Search Strategy**: %s
**Output Format**: %s
**Tool Guidance**: %s
**Boundaries**: %s

## Current Time and Date
%s

## Research Methodology
1. Start broad to understand the landscape, then narrow with targeted follow-up searches.
2. After each search ask what assumptions you are making and what evidence contradicts the finding.
3. Chase contradictions, uncertainties and interesting leads with follow-up queries.
4. Explicitly note what you still do not know.

## Research Principles
1. **Quality over quantity**: Better to deeply understand 3 sources than skim 10
2. **Source diversity**: Seek different perspectives and types of sources
3. **Evidence-based**: Always track sources for every claim
4. **Gap awareness**: Explicitly note what you don't know
%s
## Output Format
After completing your research, provide findings in this JSON format:
{
    "findings": "<your detailed findings with critical analysis>",
    "sources": [
        {"url": "<url>", "title": "<title>", "snippet": "<relevant excerpt>", "score": <relevance score>}
    ],
    "confidence": <0.0 to 1.0>,
    "gaps": ["<information still missing>"]
}`

// maxToolRounds bounds the worker's tool-call loop so a model that keeps
// requesting searches cannot run a task forever.
const maxToolRounds = 10

// workerResponse mirrors the JSON the worker prompt asks the model to emit.
type workerResponse struct {
	Findings   string        `json:"findings"`
	Sources    []core.Source `json:"sources"`
	Confidence float64       `json:"confidence"`
	Gaps       []string      `json:"gaps"`
}

// ResearchWorker executes one subtask against the reasoning model, driving a
// bounded tool-call loop for web searches and normalizing the final answer
// into a Finding.
type ResearchWorker struct {
	model       model.Model
	tools       map[string]tool.Tool
	defs        []model.ToolDefinition
	temperature float64
	logger      logging.Logger
	now         func() time.Time
}

// WorkerOptions configures a ResearchWorker.
type WorkerOptions struct {
	Temperature float64
	Logger      logging.Logger
}

// NewResearchWorker wires a model and the search tools into a worker.
func NewResearchWorker(m model.Model, tools []tool.Tool, optFns ...func(o *WorkerOptions)) *ResearchWorker {
	opts := WorkerOptions{Temperature: 0.5}
	for _, fn := range optFns {
		fn(&opts)
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NoOpLogger{}
	}

	byName := make(map[string]tool.Tool, len(tools))
	defs := make([]model.ToolDefinition, 0, len(tools))
	for _, t := range tools {
		byName[t.Name()] = t
		defs = append(defs, model.ToolDefinition{
			Name:        t.Name(),
			Description: t.Description(),
			Parameters:  t.Parameters(),
		})
	}
	return &ResearchWorker{
		model:       m,
		tools:       byName,
		defs:        defs,
		temperature: opts.Temperature,
		logger:      logger,
		now:         time.Now,
	}
}

// Execute runs the subtask to completion. The returned error covers model
// failures only; tool errors and malformed output degrade inside the Finding.
func (w *ResearchWorker) Execute(ctx context.Context, task core.Subtask) (core.Finding, error) {
	instructions := fmt.Sprintf(workerInstructions,
		task.Objective, task.SearchStrategy, task.OutputFormat,
		task.ToolGuidance, task.Boundaries, w.now().Format(time.RFC3339),
		toolSection(w.defs))

	messages := []model.Message{
		model.UserMessage(fmt.Sprintf("Research task: %s", task.Objective)),
	}

	var final *model.Response
	for round := 0; round < maxToolRounds; round++ {
		resp, err := w.model.Generate(ctx, model.Request{
			Instructions: instructions,
			Messages:     messages,
			Tools:        w.defs,
			Temperature:  w.temperature,
		})
		if err != nil {
			return core.Finding{}, fmt.Errorf("task %s: %w", task.ID, err)
		}
		if len(resp.ToolCalls) == 0 {
			final = resp
			break
		}

		messages = append(messages, model.AssistantMessage(resp.Text, resp.ToolCalls...))
		results := make([]model.ToolResult, 0, len(resp.ToolCalls))
		for _, call := range resp.ToolCalls {
			results = append(results, model.ToolResult{ID: call.ID, Content: w.callTool(ctx, call)})
		}
		messages = append(messages, model.ToolMessage(results...))
	}
	if final == nil {
		return core.Finding{}, fmt.Errorf("task %s: tool loop exceeded %d rounds", task.ID, maxToolRounds)
	}

	return w.normalize(task.ID, final.Text), nil
}

// callTool executes one tool call and renders the outcome as text for the
// model. Failures are surfaced as error strings, never as batch failures.
func (w *ResearchWorker) callTool(ctx context.Context, call model.ToolCall) string {
	t, ok := w.tools[call.Name]
	if !ok {
		return fmt.Sprintf("Error: unknown tool %q", call.Name)
	}

	var args map[string]any
	if call.Arguments != "" {
		if err := json.Unmarshal([]byte(call.Arguments), &args); err != nil {
			return fmt.Sprintf("Error: invalid tool arguments: %v", err)
		}
	}

	out, err := t.Call(ctx, args)
	if err != nil {
		w.logger.Warn("tool call failed", "tool", call.Name, "error", err)
		return fmt.Sprintf("Error: %v", err)
	}
	switch v := out.(type) {
	case string:
		return v
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("Error: tool output encode: %v", err)
		}
		return string(encoded)
	}
}

// normalize converts the model's final text into a Finding. A non-JSON
// answer keeps the raw text as the narrative at half confidence.
func (w *ResearchWorker) normalize(taskID, text string) core.Finding {
	var decoded workerResponse
	if err := util.DecodeJSON(text, &decoded); err != nil {
		return core.Finding{
			TaskID:     taskID,
			Narrative:  text,
			Confidence: 0.5,
			Gaps:       []string{"response was not in expected JSON format"},
		}
	}

	narrative := decoded.Findings
	if narrative == "" {
		narrative = text
	}
	sources := decoded.Sources[:0:0]
	for _, src := range decoded.Sources {
		if src.URL == "" {
			continue
		}
		sources = append(sources, src)
	}
	return core.Finding{
		TaskID:     taskID,
		Narrative:  narrative,
		Sources:    sources,
		Confidence: clamp01(decoded.Confidence),
		Gaps:       decoded.Gaps,
	}
}

// toolSection renders the available-tools block of the worker prompt, empty
// when the worker has no tools.
func toolSection(defs []model.ToolDefinition) string {
	if len(defs) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("\n## Available Tools\n")
	for i, def := range defs {
		fmt.Fprintf(&b, "%d. **%s**: %s\n", i+1, def.Name, def.Description)
	}
	return b.String()
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
