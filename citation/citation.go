// Package citation turns the accumulated synthesis into the final cited
// report. It is the terminal step of a session: whatever happens, a report is
// produced and recorded.
package citation

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

const citationInstructions = `You are a Citation Agent responsible for adding proper academic-style citations to a research report.

## Research Synthesis
%s

## Available Sources
%s

## Current Date
%s

## Instructions
1. Create a polished research report based on the synthesis
2. Add inline citations [1], [2], etc. for factual claims
3. Match each citation to the appropriate source
4. Ensure all major claims are attributed

Return a JSON object:
{
    "report": "<full report with inline citations>",
    "citations_used": [<list of source indices used, 1-indexed>]
}`

// citationResponse mirrors the JSON the citation prompt asks for.
type citationResponse struct {
	Report        string `json:"report"`
	CitationsUsed []int  `json:"citations_used"`
}

// Options configures the finalizer.
type Options struct {
	Temperature float64
	Logger      logging.Logger
}

// Finalizer produces the cited report and persists it.
type Finalizer struct {
	model  model.Model
	memory core.SessionMemory
	opts   Options
	logger logging.Logger
	now    func() time.Time
}

// New creates a finalizer. The memory is required: the final report is always
// recorded, even on the degraded path.
func New(m model.Model, memory core.SessionMemory, optFns ...func(o *Options)) *Finalizer {
	opts := Options{Temperature: 0.3}
	for _, fn := range optFns {
		fn(&opts)
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	return &Finalizer{model: m, memory: memory, opts: opts, logger: logger, now: time.Now}
}

// Finalize asks the model for a cited report over the synthesis and the
// numbered source list. An unusable response degrades to the raw synthesis
// with the full bibliography. Returns the report text, the cited sources and
// the memory locator.
func (f *Finalizer) Finalize(ctx context.Context, sessionID, synthesisText string, sources []core.Source) (string, []core.Source, string) {
	report := synthesisText
	cited := sources

	resp, err := f.model.Generate(ctx, model.Request{
		Instructions: fmt.Sprintf(citationInstructions,
			synthesisText, formatSources(sources), f.now().Format(time.RFC3339)),
		Messages: []model.Message{
			model.UserMessage("Create the final cited research report."),
		},
		Temperature: f.opts.Temperature,
	})
	if err != nil {
		f.logger.Warn("citation model call failed", "error", err)
	} else {
		var decoded citationResponse
		if err := util.DecodeJSON(resp.Text, &decoded); err != nil {
			f.logger.Warn("citation response unparsable", "error", err)
		} else if decoded.Report == "" {
			// Citation indices are meaningless against the raw synthesis,
			// so the full bibliography is kept too.
			f.logger.Warn("citation response missing report, keeping synthesis")
		} else {
			report = decoded.Report
			cited = filterSources(sources, decoded.CitationsUsed)
		}
	}

	locator, err := f.memory.RecordFinalReport(sessionID, report, cited)
	if err != nil {
		f.logger.Warn("recording final report failed", "error", err)
	}
	return report, cited, locator
}

// filterSources keeps the 1-indexed sources the model claims to have cited.
// An empty or entirely invalid list keeps everything.
func filterSources(sources []core.Source, used []int) []core.Source {
	if len(used) == 0 {
		return sources
	}
	kept := sources[:0:0]
	for _, idx := range used {
		if idx < 1 || idx > len(sources) {
			continue
		}
		kept = append(kept, sources[idx-1])
	}
	if len(kept) == 0 {
		return sources
	}
	return kept
}

// formatSources renders the numbered source list for the prompt.
func formatSources(sources []core.Source) string {
	if len(sources) == 0 {
		return "No sources available."
	}
	var b strings.Builder
	for i, src := range sources {
		title := src.Title
		if title == "" {
			title = "Unknown"
		}
		fmt.Fprintf(&b, "[%d] %s: %s\n", i+1, title, src.URL)
		if src.Snippet != "" {
			snippet := src.Snippet
			if len(snippet) > 200 {
				snippet = snippet[:200] + "..."
			}
			fmt.Fprintf(&b, "    Snippet: %s\n", snippet)
		}
	}
	return b.String()
}
