package diagnostics

import (
	"context"
	"encoding/json"

	"git.home.luguber.info/inful/opsadapter/internal/eventstore"
	ferrors "git.home.luguber.info/inful/opsadapter/internal/foundation/errors"
)

// StoreSink persists events to an event store. It takes ownership of the
// store; closing the sink closes the store.
type StoreSink struct {
	store      eventstore.Store
	projection *eventstore.SessionHistoryProjection
}

// NewStoreSink creates a sink writing to store. When projection is non-nil
// every recorded event is also folded into it, keeping live read models in
// sync without a rebuild.
func NewStoreSink(store eventstore.Store, projection *eventstore.SessionHistoryProjection) *StoreSink {
	return &StoreSink{store: store, projection: projection}
}

// Record persists the event.
func (s *StoreSink) Record(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryEventStore, "marshal diagnostic event").Build()
	}

	if err := s.store.Append(ctx, event.SessionID, string(event.Kind), string(event.Severity), payload, event.Fields); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryEventStore, "append diagnostic event").
			WithContext("kind", string(event.Kind)).
			Build()
	}

	if s.projection != nil {
		s.projection.Apply(eventstore.Record{
			SessionID: event.SessionID,
			Kind:      string(event.Kind),
			Severity:  string(event.Severity),
			Timestamp: event.Time,
			Payload:   payload,
			Metadata:  event.Fields,
		})
	}
	return nil
}

// Close closes the underlying store.
func (s *StoreSink) Close() error {
	return s.store.Close()
}
