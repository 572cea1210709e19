// Package engine drives one research session through its lifecycle: plan,
// execute, synthesize, iterate, finalize. The controller is single-threaded;
// concurrency lives entirely inside the batch executor.
package engine

import (
	"context"
	"fmt"

	"github.com/deepresearch-ai/deepresearch/core"
	"github.com/deepresearch-ai/deepresearch/logging"
)

// state names the controller's phases. Transitions are linear with a single
// loop-back edge from synthesizing to executing.
type state int

const (
	statePlanning state = iota
	stateExecuting
	stateSynthesizing
	stateFinalizing
	stateFinalized
)

func (s state) String() string {
	switch s {
	case statePlanning:
		return "planning"
	case stateExecuting:
		return "executing"
	case stateSynthesizing:
		return "synthesizing"
	case stateFinalizing:
		return "finalizing"
	case stateFinalized:
		return "finalized"
	}
	return "unknown"
}

// Planner produces the round-zero research plan.
type Planner interface {
	Plan(ctx context.Context, query, priorContext string) core.ResearchPlan
}

// Executor runs one batch of subtasks.
type Executor interface {
	ExecuteBatch(ctx context.Context, subtasks []core.Subtask) ([]core.Finding, error)
}

// Synthesizer merges a round of findings and decides whether to iterate.
type Synthesizer interface {
	Synthesize(ctx context.Context, round, maxRounds int, priorSynthesis string, findings []core.Finding) core.Synthesis
}

// Finalizer produces and records the terminal report.
type Finalizer interface {
	Finalize(ctx context.Context, sessionID, synthesisText string, sources []core.Source) (report string, cited []core.Source, locator string)
}

// Report is the outcome of a completed session.
type Report struct {
	SessionID string
	Rounds    int
	Text      string
	Sources   []core.Source
	Locator   string
}

// Options configures the controller.
type Options struct {
	MaxRounds int
	Logger    logging.Logger
}

// Controller owns the session state machine. Planning happens once; further
// rounds are driven by the synthesis engine's follow-up subtasks, so the
// planner is never consulted again after round zero.
type Controller struct {
	planner     Planner
	executor    Executor
	synthesizer Synthesizer
	finalizer   Finalizer
	memory      core.SessionMemory
	maxRounds   int
	logger      logging.Logger
}

// New wires the four phase components and the session memory into a
// controller.
func New(planner Planner, executor Executor, synthesizer Synthesizer, finalizer Finalizer, memory core.SessionMemory, optFns ...func(o *Options)) *Controller {
	opts := Options{MaxRounds: 3}
	for _, fn := range optFns {
		fn(&opts)
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	return &Controller{
		planner:     planner,
		executor:    executor,
		synthesizer: synthesizer,
		finalizer:   finalizer,
		memory:      memory,
		maxRounds:   opts.MaxRounds,
		logger:      logger,
	}
}

// Run executes one full session. It always produces a report unless the
// context is cancelled; degraded phases shrink the report, they never abort
// it. In-flight work is discarded on cancellation, nothing partial is merged.
func (c *Controller) Run(ctx context.Context, sessionID, query string) (*Report, error) {
	st := core.NewSessionState(c.maxRounds)
	var tasks []core.Subtask
	phase := statePlanning

	for phase != stateFinalizing {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("session %s cancelled: %w", sessionID, err)
		}

		switch phase {
		case statePlanning:
			plan := c.planner.Plan(ctx, query, "")
			if locator, err := c.memory.RecordPlan(sessionID, query, plan); err != nil {
				c.logger.Warn("recording plan failed", "session_id", sessionID, "error", err)
			} else {
				c.logger.Debug("plan recorded", "session_id", sessionID, "locator", locator)
			}
			tasks = plan.Subtasks
			if len(tasks) == 0 {
				phase = stateSynthesizing
			} else {
				phase = stateExecuting
			}

		case stateExecuting:
			c.logger.Info("executing round", "session_id", sessionID, "round", st.Round, "tasks", len(tasks))
			findings, err := c.executor.ExecuteBatch(ctx, tasks)
			if err != nil {
				return nil, fmt.Errorf("session %s round %d: %w", sessionID, st.Round, err)
			}
			st.AllFindings = append(st.AllFindings, findings...)
			st.AllSources.Merge(findings...)
			phase = stateSynthesizing

		case stateSynthesizing:
			batch := st.AllFindings[len(st.AllFindings)-len(tasks):]
			syn := c.synthesizer.Synthesize(ctx, st.Round, st.MaxRounds, st.AccumulatedSynthesis, batch)
			st.AccumulatedSynthesis = syn.Narrative
			if locator, err := c.memory.RecordRound(sessionID, st.Round, batch, syn.Narrative); err != nil {
				c.logger.Warn("recording round failed", "session_id", sessionID, "round", st.Round, "error", err)
			} else {
				c.logger.Debug("round recorded", "session_id", sessionID, "locator", locator)
			}
			st.Round++

			if syn.Continue && len(syn.NextSubtasks) > 0 && st.Round < st.MaxRounds {
				tasks = syn.NextSubtasks
				phase = stateExecuting
				c.logger.Info("continuing research", "session_id", sessionID, "round", st.Round, "next_tasks", len(tasks))
			} else {
				phase = stateFinalizing
			}
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("session %s cancelled: %w", sessionID, err)
	}

	c.logger.Info("finalizing", "session_id", sessionID, "rounds", st.Round, "sources", st.AllSources.Len())
	text, cited, locator := c.finalizer.Finalize(ctx, sessionID, st.AccumulatedSynthesis, st.AllSources.Slice())
	st.Terminal = true

	return &Report{
		SessionID: sessionID,
		Rounds:    st.Round,
		Text:      text,
		Sources:   cited,
		Locator:   locator,
	}, nil
}
