// Package deepresearch orchestrates multi-agent deep research sessions: a
// query is decomposed into subtasks, executed concurrently against an LLM
// with web-search tools, synthesized, iterated until convergence or a round
// budget, and finalized into a cited report.
package deepresearch

import (
	"context"
	"fmt"

	anthropicsdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/google/uuid"

	"github.com/deepresearch-ai/deepresearch/citation"
	"github.com/deepresearch-ai/deepresearch/config"
	"github.com/deepresearch-ai/deepresearch/core"
	"github.com/deepresearch-ai/deepresearch/engine"
	"github.com/deepresearch-ai/deepresearch/executor"
	"github.com/deepresearch-ai/deepresearch/logging"
	"github.com/deepresearch-ai/deepresearch/memory"
	"github.com/deepresearch-ai/deepresearch/model"
	"github.com/deepresearch-ai/deepresearch/model/anthropic"
	"github.com/deepresearch-ai/deepresearch/model/gemini"
	"github.com/deepresearch-ai/deepresearch/model/openai"
	"github.com/deepresearch-ai/deepresearch/planner"
	"github.com/deepresearch-ai/deepresearch/synthesis"
	"github.com/deepresearch-ai/deepresearch/tool"
)

// Report is the outcome of a research session.
type Report = engine.Report

// Options configures a DeepResearch instance.
type Options struct {
	// Provider selects the reasoning backend when Model is nil: "openai",
	// "anthropic" or "gemini".
	Provider string

	// ModelName overrides the provider's default model.
	ModelName string

	// APIKey authenticates the provider. Empty falls back to the
	// provider SDK's environment lookup.
	APIKey string

	// Model injects a concrete model, bypassing the provider factory.
	Model model.Model

	// MaxRounds bounds the research iteration loop.
	MaxRounds int

	// MaxConcurrency bounds parallel subtask execution. Zero means
	// unbounded.
	MaxConcurrency int

	// Tools are the research tools exposed to workers. Nil means no
	// tools; use NewSearchTools for the Tavily set.
	Tools []tool.Tool

	// Memory persists plans, rounds and reports. Defaults to the
	// in-memory store.
	Memory core.SessionMemory

	Logger logging.Logger
}

// DeepResearch is the top-level facade wiring the planner, executor,
// synthesis engine and finalizer into an iteration controller.
type DeepResearch struct {
	controller *engine.Controller
	memory     core.SessionMemory
	logger     logging.Logger
}

// New creates a DeepResearch instance.
func New(optFns ...func(o *Options)) (*DeepResearch, error) {
	opts := Options{Provider: "openai", MaxRounds: 3}
	for _, fn := range optFns {
		fn(&opts)
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	mem := opts.Memory
	if mem == nil {
		mem = memory.NewInMemoryStore()
	}

	m := opts.Model
	if m == nil {
		var err error
		m, err = newProviderModel(opts)
		if err != nil {
			return nil, err
		}
	}

	worker := executor.NewResearchWorker(m, opts.Tools, func(o *executor.WorkerOptions) {
		o.Logger = logger
	})
	batch := executor.NewBatchExecutor(worker, func(o *executor.Options) {
		o.MaxConcurrency = opts.MaxConcurrency
		o.Logger = logger
	})

	controller := engine.New(
		planner.New(m, func(o *planner.Options) { o.Logger = logger }),
		batch,
		synthesis.New(m, func(o *synthesis.Options) { o.Logger = logger }),
		citation.New(m, mem, func(o *citation.Options) { o.Logger = logger }),
		mem,
		func(o *engine.Options) {
			o.MaxRounds = opts.MaxRounds
			o.Logger = logger
		},
	)

	return &DeepResearch{controller: controller, memory: mem, logger: logger}, nil
}

// newProviderModel selects a model adapter by provider name.
func newProviderModel(opts Options) (model.Model, error) {
	switch opts.Provider {
	case "openai":
		return openai.NewModel(func(o *openai.Options) {
			if opts.ModelName != "" {
				o.Model = opts.ModelName
			}
			if opts.APIKey != "" {
				o.APIKey = opts.APIKey
			}
		}), nil
	case "anthropic":
		return anthropic.NewModel(func(o *anthropic.Options) {
			if opts.ModelName != "" {
				o.Model = anthropicsdk.Model(opts.ModelName)
			}
			if opts.APIKey != "" {
				o.APIKey = opts.APIKey
			}
		}), nil
	case "gemini":
		return gemini.NewModel(func(o *gemini.Options) {
			if opts.ModelName != "" {
				o.Model = opts.ModelName
			}
			if opts.APIKey != "" {
				o.APIKey = opts.APIKey
			}
		}), nil
	}
	return nil, fmt.Errorf("unknown provider %q", opts.Provider)
}

// Run executes a complete research session for the query and returns the
// final report. Each run gets a fresh 8-character session token used in all
// session records.
func (d *DeepResearch) Run(ctx context.Context, query string) (*Report, error) {
	if query == "" {
		return nil, fmt.Errorf("empty query")
	}
	sessionID := uuid.NewString()[:8]
	d.logger.Info("starting research session", "session_id", sessionID, "query", query)

	report, err := d.controller.Run(ctx, sessionID, query)
	if err != nil {
		return nil, err
	}
	d.logger.Info("research session complete",
		"session_id", sessionID, "rounds", report.Rounds, "sources", len(report.Sources))
	return report, nil
}

// NewSearchTools builds the Tavily-backed research tool set.
func NewSearchTools(tavilyAPIKey string) []tool.Tool {
	client := tool.NewTavilyClient(tavilyAPIKey)
	return []tool.Tool{
		tool.NewSearchTool(client),
		tool.NewSearchWithSourcesTool(client),
		tool.NewDeepSearchTool(client),
	}
}

// FromConfig converts a loaded configuration into facade options.
func FromConfig(cfg config.Config) func(o *Options) {
	return func(o *Options) {
		o.Provider = cfg.Provider
		o.ModelName = cfg.Model
		o.APIKey = cfg.ProviderAPIKey()
		o.MaxRounds = cfg.MaxRounds
		o.MaxConcurrency = cfg.MaxConcurrency
		if cfg.TavilyAPIKey != "" {
			o.Tools = NewSearchTools(cfg.TavilyAPIKey)
		}
		o.Memory = memory.NewMarkdownStore(cfg.OutputDir)
	}
}
