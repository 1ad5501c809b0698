package metrics

import "time"

// ResultLabel enumerates fetch result categories for counters.
type ResultLabel string

const (
	ResultSuccess  ResultLabel = "success"
	ResultWarning  ResultLabel = "warning"
	ResultError    ResultLabel = "error"
	ResultCanceled ResultLabel = "canceled"
)

// Recorder defines observability hooks for fetch and resolution metrics.
// Implementations may forward to Prometheus, OpenTelemetry, etc. All methods
// must be safe for nil receivers when using the NoopRecorder (allowing
// optional injection).
type Recorder interface {
	ObserveFetchDuration(scope string, d time.Duration)
	IncFetchResult(scope string, result ResultLabel)
	IncInterceptHit(endpoint string)
	IncInterceptPass()
	IncResolutionOutcome(outcome string) // outcome: resolved|not_provisioned|skipped|failed
	IncWarning(category string)
	IncSchemaFallback()
	SetInflightFetches(n int)
}

// OrNoop returns r, or a NoopRecorder when r is nil. Constructors use it so
// callers can inject nil without guarding every metric call.
func OrNoop(r Recorder) Recorder {
	if r == nil {
		return NoopRecorder{}
	}
	return r
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveFetchDuration(string, time.Duration) {}
func (NoopRecorder) IncFetchResult(string, ResultLabel)         {}
func (NoopRecorder) IncInterceptHit(string)                     {}
func (NoopRecorder) IncInterceptPass()                          {}
func (NoopRecorder) IncResolutionOutcome(string)                {}
func (NoopRecorder) IncWarning(string)                          {}
func (NoopRecorder) IncSchemaFallback()                         {}
func (NoopRecorder) SetInflightFetches(int)                     {}
