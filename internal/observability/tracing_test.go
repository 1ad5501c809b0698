package observability

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	ferrors "git.home.luguber.info/inful/opsadapter/internal/foundation/errors"
)

func TestTracerSpanNames(t *testing.T) {
	tracer := GetGlobalTracer()
	ctx := context.Background()

	tests := []struct {
		name     string
		start    func() (context.Context, *Span)
		spanName string
	}{
		{
			name:     "fetch",
			start:    func() (context.Context, *Span) { return tracer.StartFetchSpan(ctx, "docsets", "http://registry.test/api") },
			spanName: "fetch.docsets",
		},
		{
			name:     "resolve",
			start:    func() (context.Context, *Span) { return tracer.StartResolveSpan(ctx, "azure-docs") },
			spanName: "resolve.build_config",
		},
		{
			name:     "intercept",
			start:    func() (context.Context, *Span) { return tracer.StartInterceptSpan(ctx, "markdown_rules") },
			spanName: "intercept.markdown_rules",
		},
		{
			name:     "gateway",
			start:    func() (context.Context, *Span) { return tracer.StartGatewaySpan(ctx, "metadata_schema") },
			spanName: "gateway.metadata_schema",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotCtx, span := tt.start()
			if gotCtx != ctx {
				t.Error("expected the caller context to pass through unchanged")
			}
			if span.name != tt.spanName {
				t.Errorf("span name = %q, want %q", span.name, tt.spanName)
			}
		})
	}
}

func TestSpanDuration(t *testing.T) {
	span := &Span{name: "fetch.docsets", start: time.Now().Add(-50 * time.Millisecond)}
	if d := span.Duration(); d < 50*time.Millisecond {
		t.Errorf("duration = %v, want at least 50ms", d)
	}
}

func TestEndSpanNilSpan(t *testing.T) {
	// Callers end unconditionally, so a nil span must be a no-op.
	EndSpan(nil, errors.New("connection reset"))
	EndSpan(nil, nil)
}

// captureLogs redirects the default logger into a buffer for the duration
// of the test.
func captureLogs(t *testing.T, level slog.Level) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: level})))
	t.Cleanup(func() { slog.SetDefault(prev) })
	return &buf
}

func TestSpanEndLogLevels(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want []string
	}{
		{
			name: "success completes at debug",
			err:  nil,
			want: []string{`msg="Span completed"`, "duration_ms="},
		},
		{
			name: "warning severity failure logs warn",
			err:  ferrors.ValidationError("ruleset degraded").Build(),
			want: []string{`msg="Span failed"`, "level=WARN"},
		},
		{
			name: "unclassified failure logs error",
			err:  errors.New("connection reset"),
			want: []string{`msg="Span failed"`, "level=ERROR"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := captureLogs(t, slog.LevelDebug)
			_, span := GetGlobalTracer().StartGatewaySpan(context.Background(), "markdown_rules")
			span.End(tt.err)

			out := buf.String()
			for _, want := range tt.want {
				if !strings.Contains(out, want) {
					t.Errorf("log output missing %q:\n%s", want, out)
				}
			}
		})
	}
}
