package server

import (
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"git.home.luguber.info/inful/opsadapter/internal/foundation/errors"
	"git.home.luguber.info/inful/opsadapter/internal/logfields"
	"git.home.luguber.info/inful/opsadapter/internal/opsconfig"
	"git.home.luguber.info/inful/opsadapter/internal/version"
)

// handleOps maps GET /ops/<path>?<query> onto the virtual URL space and
// serves it through the interceptor, so tooling outside the adapter process
// can query the same endpoints a build would.
func (s *Server) handleOps(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		invalidMethod(w, r)
		return
	}

	suffix := strings.TrimPrefix(r.URL.Path, "/ops/")
	if suffix == "" {
		writeError(w, http.StatusNotFound, errors.ValidationError("missing virtual endpoint path").Build())
		return
	}

	virtual := opsconfig.VirtualBase + suffix
	if r.URL.RawQuery != "" {
		virtual += "?" + r.URL.RawQuery
	}

	req, err := http.NewRequestWithContext(r.Context(), http.MethodGet, virtual, nil)
	if err != nil {
		writeError(w, http.StatusBadRequest, errors.WrapError(err, errors.CategoryValidation, "build virtual request").
			WithContext("url", virtual).
			Build())
		return
	}

	resp, err := s.adapter.Interceptor().InterceptHTTPRequest(req)
	if err != nil {
		writeError(w, httpErrors.StatusCodeFor(err), err)
		return
	}
	if resp == nil {
		writeError(w, http.StatusNotFound, errors.ValidationError("no virtual endpoint matches path").
			WithContext("url", virtual).
			Build())
		return
	}
	defer resp.Body.Close()

	w.Header().Set("Content-Type", resp.Header.Get("Content-Type"))
	w.WriteHeader(resp.StatusCode)
	if _, err := io.Copy(w, resp.Body); err != nil {
		slog.Error("failed streaming virtual endpoint response", logfields.URL(virtual), logfields.Error(err))
	}
}

// handleBuildConfig resolves a docset build configuration on demand.
func (s *Server) handleBuildConfig(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		invalidMethod(w, r)
		return
	}

	query := r.URL.Query()
	name := query.Get("name")
	repository := query.Get("repository_url")
	branch := query.Get("branch")

	buildConfig, err := s.adapter.Resolver().GetBuildConfig(r.Context(), name, repository, branch)
	if err != nil {
		if opsconfig.IsDocsetNotProvisioned(err) {
			writeError(w, http.StatusNotFound, err)
			return
		}
		writeError(w, http.StatusBadGateway, err)
		return
	}
	if buildConfig == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	_ = writeJSONPretty(w, r, http.StatusOK, buildConfig)
}

// healthResponse is the health check payload.
type healthResponse struct {
	Status        string                `json:"status"`
	Environment   string                `json:"environment"`
	SessionID     string                `json:"session_id"`
	Version       string                `json:"version"`
	Timestamp     time.Time             `json:"timestamp"`
	UptimeSeconds float64               `json:"uptime_seconds"`
	Probes        map[string]probeCheck `json:"probes,omitempty"`
}

// handleHealthz reports liveness plus the last probe results. Unreachable
// upstreams degrade the status but keep the 200: the adapter still serves
// fallbacks, and a restart would not fix the upstream.
func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		invalidMethod(w, r)
		return
	}

	status := "ok"
	if !s.health.healthy() {
		status = "degraded"
	}

	resp := &healthResponse{
		Status:        status,
		Environment:   string(s.adapter.Environment().Tier),
		SessionID:     s.adapter.SessionID(),
		Version:       version.Version,
		Timestamp:     time.Now().UTC(),
		UptimeSeconds: time.Since(s.startTime).Seconds(),
		Probes:        s.health.snapshot(),
	}
	_ = writeJSONPretty(w, r, http.StatusOK, resp)
}

// serviceInfo describes the sidecar on the root path.
type serviceInfo struct {
	Service     string   `json:"service"`
	Version     string   `json:"version"`
	Environment string   `json:"environment"`
	SessionID   string   `json:"session_id"`
	Endpoints   []string `json:"endpoints"`
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		writeError(w, http.StatusNotFound, errors.ValidationError("unknown path").
			WithContext("path", r.URL.Path).
			Build())
		return
	}
	if r.Method != http.MethodGet {
		invalidMethod(w, r)
		return
	}

	info := serviceInfo{
		Service:     "opsadapter",
		Version:     version.Version,
		Environment: string(s.adapter.Environment().Tier),
		SessionID:   s.adapter.SessionID(),
		Endpoints:   []string{"/ops/", "/buildconfig", "/healthz", "/metrics", "/status"},
	}
	_ = writeJSONPretty(w, r, http.StatusOK, info)
}
