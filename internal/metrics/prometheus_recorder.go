package metrics

import (
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	once            sync.Once
	fetchDuration   *prom.HistogramVec
	fetchResults    *prom.CounterVec
	interceptHits   *prom.CounterVec
	interceptPasses prom.Counter
	resolutions     *prom.CounterVec
	warnings        *prom.CounterVec
	schemaFallbacks prom.Counter
	inflightFetches prom.Gauge
}

// NewPrometheusRecorder constructs and registers Prometheus metrics (idempotent).
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{}
	pr.once.Do(func() {
		pr.fetchDuration = prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "opsadapter",
			Name:      "fetch_duration_seconds",
			Help:      "Duration of upstream config service fetches",
			Buckets:   prom.DefBuckets,
		}, []string{"scope"})
		pr.fetchResults = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "opsadapter",
			Name:      "fetch_results_total",
			Help:      "Fetch result counts by outcome",
		}, []string{"scope", "result"})
		pr.interceptHits = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "opsadapter",
			Name:      "intercept_hits_total",
			Help:      "Requests answered by a virtual endpoint",
		}, []string{"endpoint"})
		pr.interceptPasses = prom.NewCounter(prom.CounterOpts{
			Namespace: "opsadapter",
			Name:      "intercept_passes_total",
			Help:      "Requests forwarded to the real network",
		})
		pr.resolutions = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "opsadapter",
			Name:      "resolutions_total",
			Help:      "Config resolutions by final outcome",
		}, []string{"outcome"})
		pr.warnings = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "opsadapter",
			Name:      "warnings_total",
			Help:      "Warnings raised or absorbed by category",
		}, []string{"category"})
		pr.schemaFallbacks = prom.NewCounter(prom.CounterOpts{
			Namespace: "opsadapter",
			Name:      "schema_fallbacks_total",
			Help:      "Metadata schemas degraded to the empty document",
		})
		pr.inflightFetches = prom.NewGauge(prom.GaugeOpts{
			Namespace: "opsadapter",
			Name:      "inflight_fetches",
			Help:      "Upstream fetches currently in flight",
		})
		reg.MustRegister(pr.fetchDuration, pr.fetchResults, pr.interceptHits, pr.interceptPasses, pr.resolutions, pr.warnings, pr.schemaFallbacks, pr.inflightFetches)
	})
	return pr
}

func (p *PrometheusRecorder) ObserveFetchDuration(scope string, d time.Duration) {
	if p == nil || p.fetchDuration == nil {
		return
	}
	p.fetchDuration.WithLabelValues(scope).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncFetchResult(scope string, result ResultLabel) {
	if p == nil || p.fetchResults == nil {
		return
	}
	p.fetchResults.WithLabelValues(scope, string(result)).Inc()
}

func (p *PrometheusRecorder) IncInterceptHit(endpoint string) {
	if p == nil || p.interceptHits == nil {
		return
	}
	p.interceptHits.WithLabelValues(endpoint).Inc()
}

func (p *PrometheusRecorder) IncInterceptPass() {
	if p == nil || p.interceptPasses == nil {
		return
	}
	p.interceptPasses.Inc()
}

func (p *PrometheusRecorder) IncResolutionOutcome(outcome string) {
	if p == nil || p.resolutions == nil {
		return
	}
	p.resolutions.WithLabelValues(outcome).Inc()
}

func (p *PrometheusRecorder) IncWarning(category string) {
	if p == nil || p.warnings == nil {
		return
	}
	p.warnings.WithLabelValues(category).Inc()
}

func (p *PrometheusRecorder) IncSchemaFallback() {
	if p == nil || p.schemaFallbacks == nil {
		return
	}
	p.schemaFallbacks.Inc()
}

func (p *PrometheusRecorder) SetInflightFetches(n int) {
	if p == nil || p.inflightFetches == nil {
		return
	}
	p.inflightFetches.Set(float64(n))
}
