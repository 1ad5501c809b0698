// Package server runs the sidecar HTTP surface over a wired adapter:
// virtual endpoint access, build configuration resolution, health, metrics,
// and the admin status page.
package server

import (
	"context"
	stderrors "errors"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/opsadapter/internal/adapter"
	"git.home.luguber.info/inful/opsadapter/internal/config"
	"git.home.luguber.info/inful/opsadapter/internal/eventstore"
	"git.home.luguber.info/inful/opsadapter/internal/foundation/errors"
	"git.home.luguber.info/inful/opsadapter/internal/logfields"
	"git.home.luguber.info/inful/opsadapter/internal/metrics"
)

// Options carry the optional server collaborators.
type Options struct {
	// Registry serves /metrics when non-nil and receives the probe gauge.
	Registry *prometheus.Registry

	// Store powers the status page's diagnostics report.
	Store eventstore.Store

	// Projection powers the status page's recent session table.
	Projection *eventstore.SessionHistoryProjection

	// ConfigPath enables hot reload of dynamic settings when non-empty.
	ConfigPath string
}

// Server is the sidecar HTTP server.
type Server struct {
	mu        sync.RWMutex
	cfg       *config.Config
	boundAddr string

	adapter    *adapter.Adapter
	health     *healthState
	store      eventstore.Store
	projection *eventstore.SessionHistoryProjection
	registry   *prometheus.Registry

	httpServer *http.Server
	prober     *prober
	watcher    *configWatcher
	mchain     func(http.Handler) http.Handler
	startTime  time.Time
}

// New assembles the server around a wired adapter. Probes are scheduled when
// the configuration enables them; Run starts everything.
func New(cfg *config.Config, a *adapter.Adapter, opts Options) (*Server, error) {
	s := &Server{
		cfg:        cfg,
		adapter:    a,
		health:     newHealthState(),
		store:      opts.Store,
		projection: opts.Projection,
		registry:   opts.Registry,
		mchain:     middlewareChain(slog.Default()),
		startTime:  time.Now(),
	}

	if cfg.Probes.Enabled {
		prober, err := newProber(a.Client(), a.Endpoints(), s.health, a.Reporter(), cfg.ProbeInterval(), opts.Registry)
		if err != nil {
			return nil, err
		}
		s.prober = prober
	}

	if opts.ConfigPath != "" {
		watcher, err := newConfigWatcher(opts.ConfigPath, s.applyConfig)
		if err != nil {
			return nil, err
		}
		s.watcher = watcher
	}

	return s, nil
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/ops/", s.mchain(http.HandlerFunc(s.handleOps)))
	mux.Handle("/buildconfig", s.mchain(http.HandlerFunc(s.handleBuildConfig)))
	mux.Handle("/healthz", s.mchain(http.HandlerFunc(s.handleHealthz)))
	mux.Handle("/status", s.mchain(http.HandlerFunc(s.handleStatus)))
	if s.registry != nil {
		mux.Handle("/metrics", metrics.HTTPHandler(s.registry))
	}
	mux.Handle("/", s.mchain(http.HandlerFunc(s.handleRoot)))
	return mux
}

// Run binds the listener and serves until ctx is canceled or the listener
// fails. Shutdown drains in-flight requests within the configured budget.
func (s *Server) Run(ctx context.Context) error {
	cfg := s.currentConfig()

	listener, err := net.Listen("tcp", cfg.Server.Addr)
	if err != nil {
		return errors.WrapError(err, errors.CategoryServer, "bind listener").
			WithContext("addr", cfg.Server.Addr).
			Build()
	}

	s.mu.Lock()
	s.boundAddr = listener.Addr().String()
	s.httpServer = &http.Server{
		Handler:      s.routes(),
		ReadTimeout:  cfg.ReadTimeout(),
		WriteTimeout: cfg.WriteTimeout(),
		IdleTimeout:  120 * time.Second,
	}
	httpServer := s.httpServer
	s.mu.Unlock()

	if s.prober != nil {
		if err := s.prober.start(ctx); err != nil {
			_ = listener.Close()
			return err
		}
	}
	if s.watcher != nil {
		if err := s.watcher.start(ctx); err != nil {
			slog.Warn("config watcher not started, hot reload disabled", logfields.Error(err))
			s.watcher = nil
		}
	}

	slog.Info("sidecar listening",
		"addr", s.BoundAddr(),
		logfields.Environment(string(s.adapter.Environment().Tier)),
		logfields.SessionID(s.adapter.SessionID()))

	serveErr := make(chan error, 1)
	go func() {
		if err := httpServer.Serve(listener); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			serveErr <- err
			return
		}
		serveErr <- nil
	}()

	select {
	case err := <-serveErr:
		s.stopBackground()
		if err != nil {
			return errors.WrapError(err, errors.CategoryServer, "serve").Build()
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down sidecar")
	s.stopBackground()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout())
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return errors.WrapError(err, errors.CategoryServer, "graceful shutdown").Build()
	}
	<-serveErr
	return nil
}

func (s *Server) stopBackground() {
	if s.watcher != nil {
		s.watcher.stop()
	}
	if s.prober != nil {
		s.prober.stop()
	}
}

// applyConfig moves dynamic settings onto the running server. Listener,
// sink, and logging changes only take effect on restart.
func (s *Server) applyConfig(ctx context.Context, cfg *config.Config) {
	old := s.currentConfig()

	if s.prober != nil {
		if err := s.prober.updateInterval(ctx, cfg.ProbeInterval()); err != nil {
			slog.Warn("probe interval not applied", logfields.Error(err))
		}
	}

	static := []struct {
		name    string
		changed bool
	}{
		{"server.addr", cfg.Server.Addr != old.Server.Addr},
		{"probes.enabled", cfg.Probes.Enabled != old.Probes.Enabled},
		{"nats", cfg.NATS != old.NATS},
		{"eventstore.path", cfg.EventStore.Path != old.EventStore.Path},
		{"logging", cfg.Logging != old.Logging},
		{"data_dir", cfg.DataDir != old.DataDir},
	}
	for _, field := range static {
		if field.changed {
			slog.Warn("config change requires restart", "field", field.name)
		}
	}

	s.mu.Lock()
	s.cfg = cfg
	s.mu.Unlock()
}

func (s *Server) currentConfig() *config.Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

// BoundAddr returns the listening address once Run has bound it, or empty.
func (s *Server) BoundAddr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.boundAddr
}
