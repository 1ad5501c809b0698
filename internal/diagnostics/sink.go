package diagnostics

import (
	"context"
	"errors"
	"log/slog"

	ferrors "git.home.luguber.info/inful/opsadapter/internal/foundation/errors"
	"git.home.luguber.info/inful/opsadapter/internal/logfields"
)

// Sink receives diagnostic events. Implementations must tolerate concurrent
// Record calls.
type Sink interface {
	Record(ctx context.Context, event Event) error
	Close() error
}

// LogSink writes events to slog. It is the always-on sink: even a bare
// library embedding gets its diagnostics as structured log lines.
type LogSink struct {
	logger *slog.Logger
}

// NewLogSink creates a sink writing to the given logger, or slog.Default()
// when nil.
func NewLogSink(logger *slog.Logger) *LogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSink{logger: logger}
}

// Record logs the event at the level matching its severity.
func (s *LogSink) Record(ctx context.Context, event Event) error {
	attrs := make([]any, 0, 2+len(event.Fields))
	attrs = append(attrs, slog.String("kind", string(event.Kind)))
	if event.SessionID != "" {
		attrs = append(attrs, logfields.SessionID(event.SessionID))
	}
	for key, value := range event.Fields {
		attrs = append(attrs, slog.String(key, value))
	}
	s.logger.Log(ctx, ferrors.SlogLevelFor(event.Severity), event.Message, attrs...)
	return nil
}

// Close is a no-op; the sink owns no resources.
func (s *LogSink) Close() error { return nil }

// MultiSink fans an event out to several sinks. One failing sink never
// stops delivery to the others.
type MultiSink struct {
	sinks []Sink
}

// NewMultiSink combines sinks into one. Nil entries are skipped.
func NewMultiSink(sinks ...Sink) *MultiSink {
	filtered := make([]Sink, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			filtered = append(filtered, s)
		}
	}
	return &MultiSink{sinks: filtered}
}

// Record delivers the event to every sink and joins any failures.
func (m *MultiSink) Record(ctx context.Context, event Event) error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.Record(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close closes every sink and joins any failures.
func (m *MultiSink) Close() error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
