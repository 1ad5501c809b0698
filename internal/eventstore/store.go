// Package eventstore persists diagnostic events across adapter runs.
package eventstore

import (
	"context"
	"time"
)

// Record is one stored diagnostic event row.
type Record struct {
	ID        int64
	SessionID string
	Kind      string
	Severity  string
	Timestamp time.Time
	Payload   []byte
	Metadata  map[string]string
}

// Store defines the interface for persisting and retrieving diagnostic events.
type Store interface {
	// Append adds a new event to the store.
	Append(ctx context.Context, sessionID, kind, severity string, payload []byte, metadata map[string]string) error

	// GetBySession retrieves all events recorded under one session.
	GetBySession(ctx context.Context, sessionID string) ([]Record, error)

	// GetRange retrieves events within a time range.
	GetRange(ctx context.Context, start, end time.Time) ([]Record, error)

	// Close closes the store and releases resources.
	Close() error
}
