// Package observability carries the adapter's in-process telemetry: spans
// that time upstream operations and log through slog, and a stats collector
// that aggregates counters for the status page. Prometheus export is a
// separate concern and lives in the metrics package.
package observability

import (
	"context"
	"log/slog"
	"time"

	ferrors "git.home.luguber.info/inful/opsadapter/internal/foundation/errors"
)

// A Span times one named operation. It keeps the attributes it was started
// with so the completion log line is self-describing.
type Span struct {
	name  string
	start time.Time
	attrs []any
}

// End logs the span outcome. Successful spans log at debug level; failed
// spans log at the level matching the error's severity, so a
// warning-severity resolution miss does not surface as an error.
func (s *Span) End(err error) {
	args := append([]any{"span", s.name, "duration_ms", time.Since(s.start).Milliseconds()}, s.attrs...)
	if err != nil {
		level := ferrors.SlogLevelFor(ferrors.GetSeverity(err))
		slog.Log(context.Background(), level, "Span failed", append(args, "error", err)...)
		return
	}
	slog.Debug("Span completed", args...)
}

// Duration returns the time elapsed since the span started.
func (s *Span) Duration() time.Duration {
	return time.Since(s.start)
}

// EndSpan ends span with the outcome err. Nil spans are ignored so callers
// can end unconditionally.
func EndSpan(span *Span, err error) {
	if span != nil {
		span.End(err)
	}
}

// Tracer hands out spans for the adapter's upstream operations. Spans stay
// local; there is no exporter and no sampling.
type Tracer struct{}

func (t *Tracer) start(ctx context.Context, name string, attrs ...any) (context.Context, *Span) {
	slog.Debug("Span started", append([]any{"span", name}, attrs...)...)
	return ctx, &Span{name: name, start: time.Now(), attrs: attrs}
}

// StartFetchSpan times an upstream HTTP fetch. The scope names what the
// fetch is for (docsets, markdown_rules, metadata_schema) so slow endpoints
// are attributable from the log alone.
func (t *Tracer) StartFetchSpan(ctx context.Context, scope, url string) (context.Context, *Span) {
	return t.start(ctx, "fetch."+scope, "url", url)
}

// StartResolveSpan times a docset build configuration resolution.
func (t *Tracer) StartResolveSpan(ctx context.Context, docset string) (context.Context, *Span) {
	return t.start(ctx, "resolve.build_config", "docset", docset)
}

// StartInterceptSpan times a request answered by a virtual endpoint.
func (t *Tracer) StartInterceptSpan(ctx context.Context, endpoint string) (context.Context, *Span) {
	return t.start(ctx, "intercept."+endpoint, "endpoint", endpoint)
}

// StartGatewaySpan times a validation gateway operation.
func (t *Tracer) StartGatewaySpan(ctx context.Context, operation string) (context.Context, *Span) {
	return t.start(ctx, "gateway."+operation, "operation", operation)
}

var globalTracer Tracer

// GetGlobalTracer returns the process-wide tracer.
func GetGlobalTracer() *Tracer {
	return &globalTracer
}
