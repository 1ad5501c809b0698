package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/opsadapter/internal/diagnostics"
	"git.home.luguber.info/inful/opsadapter/internal/opsconfig"
)

func TestProber_ProbeRecordsResults(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(upstream.Close)

	collector := diagnostics.NewCollector()
	reporter := diagnostics.NewReporter(collector)
	health := newHealthState()

	// Port 1 refuses connections, so the validation target always fails.
	endpoints := opsconfig.Endpoints{
		RegistryBase:   upstream.URL,
		ValidationBase: "http://127.0.0.1:1",
	}

	p, err := newProber(upstream.Client(), endpoints, health, reporter, time.Minute, nil)
	require.NoError(t, err)
	t.Cleanup(p.stop)

	p.run(t.Context())

	checks := health.snapshot()
	require.Len(t, checks, 2)
	require.True(t, checks["registry"].Healthy)
	require.False(t, checks["validation"].Healthy)
	require.NotEmpty(t, checks["validation"].Error)
	require.False(t, health.healthy())

	probeEvents := collector.ByKind(diagnostics.KindProbe)
	require.Len(t, probeEvents, 2)
}

func TestProber_NonOKResponseStillCountsAsReachable(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(upstream.Close)

	health := newHealthState()
	endpoints := opsconfig.Endpoints{RegistryBase: upstream.URL, ValidationBase: upstream.URL}

	p, err := newProber(upstream.Client(), endpoints, health, diagnostics.NewReporter(nil), time.Minute, nil)
	require.NoError(t, err)
	t.Cleanup(p.stop)

	p.run(t.Context())

	require.True(t, health.healthy())
}

func TestProber_StartFiresImmediateRound(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(upstream.Close)

	health := newHealthState()
	endpoints := opsconfig.Endpoints{RegistryBase: upstream.URL, ValidationBase: upstream.URL}

	p, err := newProber(upstream.Client(), endpoints, health, diagnostics.NewReporter(nil), time.Hour, nil)
	require.NoError(t, err)
	require.NoError(t, p.start(t.Context()))
	t.Cleanup(p.stop)

	deadline := time.After(2 * time.Second)
	for len(health.snapshot()) < 2 {
		select {
		case <-deadline:
			t.Fatal("timed out waiting for the immediate probe round")
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestProber_UpdateInterval(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(upstream.Close)

	health := newHealthState()
	endpoints := opsconfig.Endpoints{RegistryBase: upstream.URL, ValidationBase: upstream.URL}

	p, err := newProber(upstream.Client(), endpoints, health, diagnostics.NewReporter(nil), time.Hour, nil)
	require.NoError(t, err)
	require.NoError(t, p.start(t.Context()))
	t.Cleanup(p.stop)

	require.NoError(t, p.updateInterval(t.Context(), 30*time.Minute))
	require.Equal(t, 30*time.Minute, p.interval)

	// Unchanged interval is a no-op.
	require.NoError(t, p.updateInterval(t.Context(), 30*time.Minute))
	require.Equal(t, 30*time.Minute, p.interval)
}

func TestHealthState(t *testing.T) {
	health := newHealthState()
	require.True(t, health.healthy())

	health.record("registry", "https://registry.example", nil)
	require.True(t, health.healthy())

	health.record("validation", "https://validation.example", http.ErrServerClosed)
	require.False(t, health.healthy())

	checks := health.snapshot()
	require.Len(t, checks, 2)
	require.Equal(t, "https://validation.example", checks["validation"].URL)
	require.Contains(t, checks["validation"].Error, "closed")

	// Snapshots are copies; mutating one does not leak back.
	delete(checks, "registry")
	require.Len(t, health.snapshot(), 2)
}
