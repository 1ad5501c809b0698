package commands

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/opsadapter/internal/adapter"
	"git.home.luguber.info/inful/opsadapter/internal/config"
	"git.home.luguber.info/inful/opsadapter/internal/diagnostics"
	"git.home.luguber.info/inful/opsadapter/internal/eventstore"
	"git.home.luguber.info/inful/opsadapter/internal/logfields"
	"git.home.luguber.info/inful/opsadapter/internal/metrics"
	"git.home.luguber.info/inful/opsadapter/internal/server"
)

// sessionHistorySize bounds the status page's recent session table.
const sessionHistorySize = 100

// ServeCmd implements the 'serve' command.
type ServeCmd struct {
	Addr string `help:"Listen address override."`
}

func (s *ServeCmd) Run(_ *Global, root *CLI) error {
	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}
	if s.Addr != "" {
		cfg.Server.Addr = s.Addr
	}
	env := config.LoadEnvironment()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	registry := prometheus.NewRegistry()
	recorder := metrics.NewPrometheusRecorder(registry)

	// The server reads the store for the status page while the adapter
	// writes through the sink, so the serve command owns the store handle.
	var (
		store      eventstore.Store
		projection *eventstore.SessionHistoryProjection
		extraSinks []diagnostics.Sink
	)
	if cfg.EventStore.Path != "" {
		sqlStore, err := eventstore.NewSQLiteStore(cfg.EventStore.Path)
		if err != nil {
			return err
		}
		projection = eventstore.NewSessionHistoryProjection(sqlStore, sessionHistorySize)
		if err := projection.Rebuild(ctx); err != nil {
			slog.Warn("session history rebuild failed", logfields.Error(err))
		}
		extraSinks = append(extraSinks, diagnostics.NewStoreSink(sqlStore, projection))
		store = sqlStore
	}

	a, err := adapter.New(env, adapter.Options{
		DataDir:     cfg.DataDir,
		NATSURL:     cfg.NATS.URL,
		NATSSubject: cfg.NATS.Subject,
		NATSStream:  cfg.NATS.Stream,
		Recorder:    recorder,
		ExtraSinks:  extraSinks,
	})
	if err != nil {
		if store != nil {
			_ = store.Close()
		}
		return err
	}
	defer a.Close()

	srv, err := server.New(cfg, a, server.Options{
		Registry:   registry,
		Store:      store,
		Projection: projection,
		ConfigPath: root.Config,
	})
	if err != nil {
		return err
	}

	return srv.Run(ctx)
}
