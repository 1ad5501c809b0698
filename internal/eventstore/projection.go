package eventstore

import (
	"context"
	"maps"
	"sync"
	"time"
)

// SessionSummary is a read model aggregating the diagnostic events one
// adapter session produced.
type SessionSummary struct {
	SessionID      string         `json:"session_id"`
	Docset         string         `json:"docset,omitempty"`
	StartedAt      time.Time      `json:"started_at"`
	LastEventAt    time.Time      `json:"last_event_at"`
	EventCount     int            `json:"event_count"`
	WarningCount   int            `json:"warning_count"`
	RulesetVersion string         `json:"ruleset_version,omitempty"`
	Kinds          map[string]int `json:"kinds,omitempty"`
}

// SessionHistoryProjection maintains an in-memory view of recent sessions,
// reconstructed from events in the store.
type SessionHistoryProjection struct {
	mu       sync.RWMutex
	store    Store
	sessions map[string]*SessionSummary
	history  []*SessionSummary // ordered by start time, newest first
	maxSize  int
}

// NewSessionHistoryProjection creates a projection backed by the given store.
func NewSessionHistoryProjection(store Store, maxHistorySize int) *SessionHistoryProjection {
	if maxHistorySize <= 0 {
		maxHistorySize = 100
	}
	return &SessionHistoryProjection{
		store:    store,
		sessions: make(map[string]*SessionSummary),
		history:  make([]*SessionSummary, 0, maxHistorySize),
		maxSize:  maxHistorySize,
	}
}

// Rebuild reconstructs the projection from all events in the store.
// Typically called at startup.
func (p *SessionHistoryProjection) Rebuild(ctx context.Context) error {
	records, err := p.store.GetRange(ctx, time.Time{}, time.Now().Add(time.Hour))
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.sessions = make(map[string]*SessionSummary)
	p.history = make([]*SessionSummary, 0, p.maxSize)

	for _, record := range records {
		p.applyLocked(record)
	}

	p.sortHistoryLocked()

	if len(p.history) > p.maxSize {
		p.history = p.history[:p.maxSize]
	}
	p.pruneSessionsLocked()
	return nil
}

// Apply folds a single stored event into the projection. Used for live
// updates as events are recorded.
func (p *SessionHistoryProjection) Apply(record Record) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.applyLocked(record)
	p.sortHistoryLocked()
	if len(p.history) > p.maxSize {
		p.history = p.history[:p.maxSize]
	}
	p.pruneSessionsLocked()
}

func (p *SessionHistoryProjection) applyLocked(record Record) {
	if record.SessionID == "" {
		return
	}

	summary, exists := p.sessions[record.SessionID]
	if !exists {
		summary = &SessionSummary{
			SessionID: record.SessionID,
			StartedAt: record.Timestamp,
			Kinds:     make(map[string]int),
		}
		p.sessions[record.SessionID] = summary
		p.history = append(p.history, summary)
	}

	if record.Timestamp.Before(summary.StartedAt) {
		summary.StartedAt = record.Timestamp
	}
	if record.Timestamp.After(summary.LastEventAt) {
		summary.LastEventAt = record.Timestamp
	}
	summary.EventCount++
	summary.Kinds[record.Kind]++
	if record.Severity == "warning" {
		summary.WarningCount++
	}
	if docset := record.Metadata["docset"]; docset != "" {
		summary.Docset = docset
	}
	if record.Kind == "ruleset_version" {
		if version := record.Metadata["version"]; version != "" {
			summary.RulesetVersion = version
		}
	}
}

// pruneSessionsLocked drops sessions that fell out of the bounded history.
// Caller must hold p.mu (write lock).
func (p *SessionHistoryProjection) pruneSessionsLocked() {
	keep := make(map[string]struct{}, len(p.history))
	for _, h := range p.history {
		if h != nil {
			keep[h.SessionID] = struct{}{}
		}
	}

	for id := range p.sessions {
		if _, ok := keep[id]; !ok {
			delete(p.sessions, id)
		}
	}
}

// sortHistoryLocked sorts history by start time, newest first.
func (p *SessionHistoryProjection) sortHistoryLocked() {
	// Insertion sort; history is bounded and usually small.
	for i := 1; i < len(p.history); i++ {
		for j := i; j > 0 && p.history[j].StartedAt.After(p.history[j-1].StartedAt); j-- {
			p.history[j], p.history[j-1] = p.history[j-1], p.history[j]
		}
	}
}

// GetHistory returns the session history, newest first. Summaries are
// copies; live updates never mutate a returned value.
func (p *SessionHistoryProjection) GetHistory() []*SessionSummary {
	p.mu.RLock()
	defer p.mu.RUnlock()

	result := make([]*SessionSummary, len(p.history))
	for i, h := range p.history {
		result[i] = copySummaryLocked(h)
	}
	return result
}

// GetSession returns the summary for a specific session.
func (p *SessionHistoryProjection) GetSession(sessionID string) (*SessionSummary, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	summary, exists := p.sessions[sessionID]
	if !exists {
		return nil, false
	}
	return copySummaryLocked(summary), true
}

func copySummaryLocked(summary *SessionSummary) *SessionSummary {
	cp := *summary
	cp.Kinds = maps.Clone(summary.Kinds)
	return &cp
}
