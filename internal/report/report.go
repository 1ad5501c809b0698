// Package report renders recorded diagnostic sessions as markdown and HTML.
package report

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"git.home.luguber.info/inful/opsadapter/internal/diagnostics"
	"git.home.luguber.info/inful/opsadapter/internal/eventstore"
	ferrors "git.home.luguber.info/inful/opsadapter/internal/foundation/errors"
	"git.home.luguber.info/inful/opsadapter/internal/logfields"
)

// Report aggregates recorded diagnostics over a time window, grouped into
// sessions in first-seen order.
type Report struct {
	GeneratedAt time.Time
	Since       time.Time
	Sessions    []SessionReport
}

// SessionReport collects one adapter session's events in recorded order.
type SessionReport struct {
	SessionID string
	Docset    string
	StartedAt time.Time
	Events    []diagnostics.Event
	Warnings  int
}

// TotalEvents counts events across all sessions.
func (r Report) TotalEvents() int {
	total := 0
	for _, s := range r.Sessions {
		total += len(s.Events)
	}
	return total
}

// TotalWarnings counts warning events across all sessions.
func (r Report) TotalWarnings() int {
	total := 0
	for _, s := range r.Sessions {
		total += s.Warnings
	}
	return total
}

// Build reads all events recorded at or after since and groups them by
// session. A zero since covers everything in the store.
func Build(ctx context.Context, store eventstore.Store, since time.Time) (Report, error) {
	records, err := store.GetRange(ctx, since, time.Now().UTC().Add(time.Hour))
	if err != nil {
		return Report{}, err
	}

	report := Report{GeneratedAt: time.Now().UTC(), Since: since}
	bySession := map[string]int{}

	for _, record := range records {
		event := decodeEvent(record)

		idx, ok := bySession[record.SessionID]
		if !ok {
			report.Sessions = append(report.Sessions, SessionReport{
				SessionID: record.SessionID,
				StartedAt: record.Timestamp,
			})
			idx = len(report.Sessions) - 1
			bySession[record.SessionID] = idx
		}

		session := &report.Sessions[idx]
		session.Events = append(session.Events, event)
		if record.Severity == string(ferrors.SeverityWarning) {
			session.Warnings++
		}
		if session.Docset == "" {
			session.Docset = event.Fields["docset"]
		}
	}
	return report, nil
}

// decodeEvent restores the typed event from a stored record. Records with
// unreadable payloads still appear in the report, reconstructed from the
// record columns.
func decodeEvent(record eventstore.Record) diagnostics.Event {
	var event diagnostics.Event
	if err := json.Unmarshal(record.Payload, &event); err != nil {
		slog.Debug("Skipping unreadable event payload", logfields.SessionID(record.SessionID), logfields.Error(err))
		return diagnostics.Event{
			SessionID: record.SessionID,
			Kind:      diagnostics.Kind(record.Kind),
			Severity:  ferrors.ErrorSeverity(record.Severity),
			Message:   "unreadable event payload",
			Fields:    record.Metadata,
			Time:      record.Timestamp,
		}
	}
	return event
}
