package diagnostics

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	ferrors "git.home.luguber.info/inful/opsadapter/internal/foundation/errors"
	"git.home.luguber.info/inful/opsadapter/internal/logfields"
)

// NATSSink publishes events to a JetStream subject so external consumers can
// follow adapter diagnostics without scraping logs.
type NATSSink struct {
	conn    *nats.Conn
	js      jetstream.JetStream
	subject string
}

// NewNATSSink connects to NATS and ensures the diagnostics stream exists.
func NewNATSSink(url, subject, stream string) (*NATSSink, error) {
	conn, err := nats.Connect(url)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryEventStore, "connect to NATS").
			WithContext("url", url).
			Build()
	}

	js, err := jetstream.New(conn)
	if err != nil {
		conn.Close()
		return nil, ferrors.WrapError(err, ferrors.CategoryEventStore, "create JetStream context").Build()
	}

	sink := &NATSSink{conn: conn, js: js, subject: subject}
	if err := sink.ensureStream(stream); err != nil {
		conn.Close()
		return nil, err
	}

	slog.Info("NATS diagnostics sink initialized",
		logfields.URL(url),
		logfields.Subject(subject))
	return sink, nil
}

// ensureStream creates the stream when it does not exist yet.
func (s *NATSSink) ensureStream(name string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := s.js.Stream(ctx, name); err == nil {
		return nil
	}

	_, err := s.js.CreateStream(ctx, jetstream.StreamConfig{
		Name:        name,
		Description: "OpsAdapter diagnostic events",
		Subjects:    []string{s.subject},
		MaxBytes:    100 * 1024 * 1024,
	})
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryEventStore, "create diagnostics stream").
			WithContext("stream", name).
			Build()
	}

	slog.Info("Created diagnostics stream", slog.String("stream", name))
	return nil
}

// Record publishes the event. Publishing is bounded so a stalled broker
// cannot block the calling operation.
func (s *NATSSink) Record(ctx context.Context, event Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryEventStore, "marshal diagnostic event").Build()
	}

	pubCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := s.js.Publish(pubCtx, s.subject, data); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryEventStore, "publish diagnostic event").
			WithContext("subject", s.subject).
			Build()
	}
	return nil
}

// Close closes the NATS connection.
func (s *NATSSink) Close() error {
	if s.conn != nil {
		s.conn.Close()
	}
	return nil
}
