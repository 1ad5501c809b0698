package diagnostics

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/opsadapter/internal/logfields"
)

// Reporter stamps events with a session correlation ID and delivers them to
// the configured sink. A nil Reporter is valid and drops every event, so
// callers never guard their publishes.
type Reporter struct {
	sessionID string
	sink      Sink
}

// NewReporter creates a reporter with a fresh session ID.
func NewReporter(sink Sink) *Reporter {
	return &Reporter{
		sessionID: uuid.NewString(),
		sink:      sink,
	}
}

// SessionID returns the correlation ID stamped on published events.
func (r *Reporter) SessionID() string {
	if r == nil {
		return ""
	}
	return r.sessionID
}

// Publish delivers the event. Sink failures are logged and swallowed;
// diagnostics never interrupt the operation that produced them.
func (r *Reporter) Publish(ctx context.Context, event Event) {
	if r == nil || r.sink == nil {
		return
	}
	if event.SessionID == "" {
		event.SessionID = r.sessionID
	}
	if err := r.sink.Record(ctx, event); err != nil {
		slog.Warn("Failed to record diagnostic event",
			slog.String("kind", string(event.Kind)),
			logfields.Error(err))
	}
}

// Close closes the sink.
func (r *Reporter) Close() error {
	if r == nil || r.sink == nil {
		return nil
	}
	return r.sink.Close()
}
