package memory

import (
	"fmt"
	"sync"

	"github.com/deepresearch-ai/deepresearch/core"
)

// RoundRecord is one persisted round snapshot.
type RoundRecord struct {
	Round     int
	Findings  []core.Finding
	Synthesis string
}

// sessionRecord holds everything recorded for one session.
type sessionRecord struct {
	query   string
	plan    core.ResearchPlan
	rounds  []RoundRecord
	report  string
	sources []core.Source
}

// InMemoryStore is a volatile SessionMemory keeping records in a process
// local map. It is safe for concurrent access and best suited for tests or
// ephemeral demo runs. Returned slices are copies to prevent external
// mutation of internal state.
type InMemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*sessionRecord
}

// NewInMemoryStore constructs an empty in-memory session memory.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{sessions: make(map[string]*sessionRecord)}
}

func (s *InMemoryStore) sessionLocked(sessionID string) *sessionRecord {
	rec, ok := s.sessions[sessionID]
	if !ok {
		rec = &sessionRecord{}
		s.sessions[sessionID] = rec
	}
	return rec
}

// RecordPlan stores the round-0 plan, overwriting any previous one.
func (s *InMemoryStore) RecordPlan(sessionID, query string, plan core.ResearchPlan) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec := s.sessionLocked(sessionID)
	rec.query = query
	rec.plan = plan
	return fmt.Sprintf("memory://%s/plan", sessionID), nil
}

// RecordRound appends one round's findings and synthesis.
func (s *InMemoryStore) RecordRound(sessionID string, round int, findings []core.Finding, synthesisText string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec := s.sessionLocked(sessionID)
	copied := make([]core.Finding, len(findings))
	copy(copied, findings)
	rec.rounds = append(rec.rounds, RoundRecord{Round: round, Findings: copied, Synthesis: synthesisText})
	return fmt.Sprintf("memory://%s/rounds/%d", sessionID, round), nil
}

// RecordFinalReport stores the final report, last write wins.
func (s *InMemoryStore) RecordFinalReport(sessionID, report string, sources []core.Source) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec := s.sessionLocked(sessionID)
	rec.report = report
	rec.sources = make([]core.Source, len(sources))
	copy(rec.sources, sources)
	return fmt.Sprintf("memory://%s/report", sessionID), nil
}

// Plan returns the recorded plan and query for a session.
func (s *InMemoryStore) Plan(sessionID string) (string, core.ResearchPlan, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.sessions[sessionID]
	if !ok {
		return "", core.ResearchPlan{}, false
	}
	return rec.query, rec.plan, true
}

// Rounds returns a copy of the recorded rounds for a session.
func (s *InMemoryStore) Rounds(sessionID string) []RoundRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.sessions[sessionID]
	if !ok {
		return nil
	}
	out := make([]RoundRecord, len(rec.rounds))
	copy(out, rec.rounds)
	return out
}

// FinalReport returns the recorded report text and sources for a session.
func (s *InMemoryStore) FinalReport(sessionID string) (string, []core.Source, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.sessions[sessionID]
	if !ok || rec.report == "" {
		return "", nil, false
	}
	sources := make([]core.Source, len(rec.sources))
	copy(sources, rec.sources)
	return rec.report, sources, true
}
