package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/opsadapter/internal/diagnostics"
	"git.home.luguber.info/inful/opsadapter/internal/foundation/errors"
	"git.home.luguber.info/inful/opsadapter/internal/logfields"
	"git.home.luguber.info/inful/opsadapter/internal/opsconfig"
)

const (
	probeJobName = "upstream-probes"
	probeTimeout = 10 * time.Second
)

// prober schedules recurring reachability checks of the upstream bases and
// feeds the results into health state, metrics, and diagnostics.
type prober struct {
	scheduler gocron.Scheduler
	client    *http.Client
	targets   map[string]string
	health    *healthState
	reporter  *diagnostics.Reporter
	interval  time.Duration
	jobID     uuid.UUID
	probeUp   *prometheus.GaugeVec
}

func newProber(client *http.Client, endpoints opsconfig.Endpoints, health *healthState, reporter *diagnostics.Reporter, interval time.Duration, registry *prometheus.Registry) (*prober, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryServer, "create probe scheduler").Build()
	}

	probeUp := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "opsadapter",
		Name:      "probe_up",
		Help:      "Whether the last reachability probe of an upstream base succeeded.",
	}, []string{"endpoint"})
	if registry != nil {
		registry.MustRegister(probeUp)
	}

	return &prober{
		scheduler: scheduler,
		client:    client,
		targets: map[string]string{
			"registry":   endpoints.RegistryBase,
			"validation": endpoints.ValidationBase,
		},
		health:   health,
		reporter: reporter,
		interval: interval,
		probeUp:  probeUp,
	}, nil
}

// start registers the recurring job and fires one immediate round so the
// health endpoint has data before the first interval elapses.
func (p *prober) start(ctx context.Context) error {
	job, err := p.scheduler.NewJob(
		gocron.DurationJob(p.interval),
		gocron.NewTask(func() { p.run(ctx) }),
		gocron.WithName(probeJobName),
	)
	if err != nil {
		return errors.WrapError(err, errors.CategoryServer, "schedule upstream probes").Build()
	}
	p.jobID = job.ID()
	p.scheduler.Start()
	go p.run(ctx)
	return nil
}

// updateInterval reschedules the probe job. Called by the config watcher when
// the interval changes on disk.
func (p *prober) updateInterval(ctx context.Context, interval time.Duration) error {
	if interval == p.interval {
		return nil
	}
	job, err := p.scheduler.Update(p.jobID,
		gocron.DurationJob(interval),
		gocron.NewTask(func() { p.run(ctx) }),
		gocron.WithName(probeJobName),
	)
	if err != nil {
		return errors.WrapError(err, errors.CategoryServer, "reschedule upstream probes").
			WithContext("interval", interval.String()).
			Build()
	}
	p.jobID = job.ID()
	p.interval = interval
	slog.Info("probe interval updated", "interval", interval.String())
	return nil
}

func (p *prober) stop() {
	if err := p.scheduler.Shutdown(); err != nil {
		slog.Warn("probe scheduler shutdown failed", logfields.Error(err))
	}
}

func (p *prober) run(ctx context.Context) {
	for endpoint, base := range p.targets {
		p.probe(ctx, endpoint, base)
	}
}

// probe counts any HTTP response as reachable; upstream application errors
// are the fetch layer's concern.
func (p *prober) probe(ctx context.Context, endpoint, base string) {
	probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	start := time.Now()
	req, err := http.NewRequestWithContext(probeCtx, http.MethodGet, base, nil)
	if err == nil {
		var resp *http.Response
		resp, err = p.client.Do(req)
		if resp != nil {
			_ = resp.Body.Close()
		}
	}
	duration := time.Since(start)

	p.health.record(endpoint, base, err)
	if err != nil {
		p.probeUp.WithLabelValues(endpoint).Set(0)
		slog.Warn("upstream probe failed",
			logfields.Endpoint(endpoint),
			logfields.URL(base),
			slog.Duration("duration", duration),
			logfields.Error(err))
	} else {
		p.probeUp.WithLabelValues(endpoint).Set(1)
		slog.Debug("upstream probe succeeded",
			logfields.Endpoint(endpoint),
			logfields.URL(base),
			slog.Duration("duration", duration))
	}

	p.reporter.Publish(ctx, diagnostics.ProbeResult(endpoint, err).WithField("url", base))
}
