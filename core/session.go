package core

// SessionState is the iteration engine's working memory for one research
// session. It is owned exclusively by the engine: workers, the planner and
// the synthesis engine receive snapshots and return new values, and the
// engine performs all merges single-threaded between component calls, so no
// locking is required.
type SessionState struct {
	Round                int
	MaxRounds            int
	AllFindings          []Finding
	AllSources           *SourceSet
	AccumulatedSynthesis string
	Terminal             bool
}

// NewSessionState initializes the working state for a session. maxRounds
// values below 1 are raised to 1.
func NewSessionState(maxRounds int) *SessionState {
	if maxRounds < 1 {
		maxRounds = 1
	}
	return &SessionState{
		MaxRounds:  maxRounds,
		AllSources: NewSourceSet(),
	}
}

// SessionMemory is the append-only persistence port for plan, per-round
// progress and the final report. Implementations live in the memory package;
// the engine records through this interface and treats failures as
// observability events, never as fatal errors ("last write wins" on the
// final report, no transactional guarantees).
type SessionMemory interface {
	// RecordPlan persists the round-0 research plan and returns a locator
	// for the stored record.
	RecordPlan(sessionID, query string, plan ResearchPlan) (string, error)

	// RecordRound appends one round's findings and synthesis text.
	RecordRound(sessionID string, round int, findings []Finding, synthesisText string) (string, error)

	// RecordFinalReport persists the cited final report with its sources.
	RecordFinalReport(sessionID, report string, sources []Source) (string, error)
}
