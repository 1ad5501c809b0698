package eventstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"sync"
	"time"

	ferrors "git.home.luguber.info/inful/opsadapter/internal/foundation/errors"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS diagnostic_events (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id TEXT NOT NULL,
	kind TEXT NOT NULL,
	severity TEXT NOT NULL,
	timestamp INTEGER NOT NULL,
	payload BLOB NOT NULL,
	metadata TEXT
);
CREATE INDEX IF NOT EXISTS idx_session_id ON diagnostic_events(session_id);
CREATE INDEX IF NOT EXISTS idx_timestamp ON diagnostic_events(timestamp);
CREATE INDEX IF NOT EXISTS idx_kind ON diagnostic_events(kind);
`

const recordColumns = "id, session_id, kind, severity, timestamp, payload, metadata"

// SQLiteStore persists diagnostic events in a SQLite file. The mutex
// serializes writers in-process; busy_timeout covers a resolve run
// appending while the serve daemon holds the same file.
type SQLiteStore struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewSQLiteStore opens or creates the event database at dbPath. Use
// ":memory:" for an ephemeral store.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryEventStore, "open event database").
			WithContext("path", dbPath).
			Build()
	}

	for _, stmt := range []string{"PRAGMA busy_timeout=5000", schema} {
		if _, err := db.Exec(stmt); err != nil {
			_ = db.Close()
			return nil, ferrors.WrapError(err, ferrors.CategoryEventStore, "prepare event database").
				WithContext("path", dbPath).
				Build()
		}
	}

	return &SQLiteStore{db: db}, nil
}

// Append writes one event row. Metadata marshals to JSON; nil stays NULL.
func (s *SQLiteStore) Append(ctx context.Context, sessionID, kind, severity string, payload []byte, metadata map[string]string) error {
	var metadataJSON []byte
	if metadata != nil {
		b, err := json.Marshal(metadata)
		if err != nil {
			return ferrors.WrapError(err, ferrors.CategoryEventStore, "marshal event metadata").Build()
		}
		metadataJSON = b
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO diagnostic_events (session_id, kind, severity, timestamp, payload, metadata) VALUES (?, ?, ?, ?, ?, ?)",
		sessionID, kind, severity, time.Now().Unix(), payload, metadataJSON)
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryEventStore, "append event").
			WithContext("session_id", sessionID).
			WithContext("kind", kind).
			Build()
	}
	return nil
}

// GetBySession returns all events recorded under one session, oldest first.
func (s *SQLiteStore) GetBySession(ctx context.Context, sessionID string) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT "+recordColumns+" FROM diagnostic_events WHERE session_id = ? ORDER BY id", sessionID)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryEventStore, "query session events").
			WithContext("session_id", sessionID).
			Build()
	}
	defer rows.Close()

	return scanRecords(rows)
}

// GetRange returns events with timestamps in [start, end], oldest first.
func (s *SQLiteStore) GetRange(ctx context.Context, start, end time.Time) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT "+recordColumns+" FROM diagnostic_events WHERE timestamp >= ? AND timestamp <= ? ORDER BY id",
		start.Unix(), end.Unix())
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryEventStore, "query event range").Build()
	}
	defer rows.Close()

	return scanRecords(rows)
}

func scanRecords(rows *sql.Rows) ([]Record, error) {
	var records []Record
	for rows.Next() {
		var (
			r        Record
			unixTime int64
			metaJSON []byte
		)
		if err := rows.Scan(&r.ID, &r.SessionID, &r.Kind, &r.Severity, &unixTime, &r.Payload, &metaJSON); err != nil {
			return nil, ferrors.WrapError(err, ferrors.CategoryEventStore, "scan event row").Build()
		}
		r.Timestamp = time.Unix(unixTime, 0)
		if len(metaJSON) > 0 {
			if err := json.Unmarshal(metaJSON, &r.Metadata); err != nil {
				return nil, ferrors.WrapError(err, ferrors.CategoryEventStore, "decode event metadata").Build()
			}
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryEventStore, "iterate event rows").Build()
	}
	return records, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}
