package server

import (
	"context"
	"html/template"
	"log/slog"
	"maps"
	"net/http"
	"slices"
	"time"

	"git.home.luguber.info/inful/opsadapter/internal/eventstore"
	"git.home.luguber.info/inful/opsadapter/internal/foundation/errors"
	"git.home.luguber.info/inful/opsadapter/internal/logfields"
	"git.home.luguber.info/inful/opsadapter/internal/observability"
	"git.home.luguber.info/inful/opsadapter/internal/report"
	"git.home.luguber.info/inful/opsadapter/internal/version"
)

// statusReportWindow bounds how far back the embedded diagnostics report
// reaches, keeping the page cheap on long-lived stores.
const statusReportWindow = 24 * time.Hour

// statusPageData is rendered on the status page and returned for
// format=json requests.
type statusPageData struct {
	Service     string                      `json:"service"`
	Version     string                      `json:"version"`
	Environment string                      `json:"environment"`
	SessionID   string                      `json:"session_id"`
	StartTime   time.Time                   `json:"start_time"`
	Uptime      string                      `json:"uptime"`
	GeneratedAt time.Time                   `json:"generated_at"`
	Probes      []probeCheck                `json:"probes,omitempty"`
	Sessions    []*eventstore.SessionSummary `json:"sessions,omitempty"`
	Stats       string                      `json:"stats"`
	ReportError string                      `json:"report_error,omitempty"`
	Report      template.HTML               `json:"-"`
}

// handleStatus renders the admin status page: probe results, recent
// sessions, adapter statistics, and the recent diagnostics report.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		invalidMethod(w, r)
		return
	}

	data := s.statusData(r.Context())

	if r.Header.Get("Accept") == "application/json" || r.URL.Query().Get("format") == "json" {
		_ = writeJSONPretty(w, r, http.StatusOK, data)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	t, err := template.New("status").Parse(statusHTMLTemplate)
	if err != nil {
		writeError(w, http.StatusInternalServerError, errors.WrapError(err, errors.CategoryInternal, "parse status template").Build())
		return
	}
	if err := t.Execute(w, data); err != nil {
		slog.Error("failed rendering status page", logfields.Error(err))
	}
}

func (s *Server) statusData(ctx context.Context) *statusPageData {
	data := &statusPageData{
		Service:     "opsadapter",
		Version:     version.Full(),
		Environment: string(s.adapter.Environment().Tier),
		SessionID:   s.adapter.SessionID(),
		StartTime:   s.startTime.UTC(),
		Uptime:      time.Since(s.startTime).Round(time.Second).String(),
		GeneratedAt: time.Now().UTC(),
		Stats:       observability.GetStatsCollector().GetSnapshot().FormatStats(),
	}

	checks := s.health.snapshot()
	for _, name := range slices.Sorted(maps.Keys(checks)) {
		data.Probes = append(data.Probes, checks[name])
	}

	if s.projection != nil {
		data.Sessions = s.projection.GetHistory()
	}

	if s.store != nil {
		rep, err := report.Build(ctx, s.store, time.Now().Add(-statusReportWindow))
		if err == nil {
			var rendered string
			rendered, err = report.RenderHTML(report.RenderMarkdown(rep))
			if err == nil {
				data.Report = template.HTML(rendered)
			}
		}
		if err != nil {
			data.ReportError = err.Error()
			slog.Warn("status page report unavailable", logfields.Error(err))
		}
	}

	return data
}

const statusHTMLTemplate = `<!DOCTYPE html>
<html>
<head>
    <title>{{.Service}} status</title>
    <meta charset="utf-8">
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; margin: 40px; background: #f5f5f5; color: #333; }
        .container { max-width: 1100px; margin: 0 auto; background: white; padding: 30px; border-radius: 8px; box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
        h1 { margin-top: 0; }
        table { border-collapse: collapse; width: 100%; margin: 15px 0; }
        th, td { text-align: left; padding: 8px 12px; border-bottom: 1px solid #ddd; }
        th { background: #fafafa; }
        .meta { color: #666; font-size: 0.9em; }
        .healthy { color: #2e7d32; font-weight: 600; }
        .unhealthy { color: #c62828; font-weight: 600; }
        pre { background: #fafafa; padding: 12px; border-radius: 4px; overflow-x: auto; }
        .report { margin-top: 30px; }
        .report table { font-size: 0.9em; }
    </style>
</head>
<body>
<div class="container">
    <h1>{{.Service}} status</h1>
    <p class="meta">Version {{.Version}}, environment {{.Environment}}, session {{.SessionID}}</p>
    <p class="meta">Started {{.StartTime.Format "2006-01-02 15:04:05"}} UTC, uptime {{.Uptime}}, generated {{.GeneratedAt.Format "2006-01-02 15:04:05"}} UTC</p>

    {{if .Probes}}
    <h2>Upstream probes</h2>
    <table>
        <tr><th>Endpoint</th><th>URL</th><th>State</th><th>Checked</th><th>Error</th></tr>
        {{range .Probes}}
        <tr>
            <td>{{.Endpoint}}</td>
            <td>{{.URL}}</td>
            {{if .Healthy}}<td class="healthy">reachable</td>{{else}}<td class="unhealthy">unreachable</td>{{end}}
            <td>{{.CheckedAt.Format "15:04:05"}}</td>
            <td>{{.Error}}</td>
        </tr>
        {{end}}
    </table>
    {{end}}

    {{if .Sessions}}
    <h2>Recent sessions</h2>
    <table>
        <tr><th>Session</th><th>Docset</th><th>Started</th><th>Events</th><th>Warnings</th><th>Ruleset</th></tr>
        {{range .Sessions}}
        <tr>
            <td>{{printf "%.8s" .SessionID}}</td>
            <td>{{.Docset}}</td>
            <td>{{.StartedAt.Format "2006-01-02 15:04:05"}}</td>
            <td>{{.EventCount}}</td>
            <td>{{.WarningCount}}</td>
            <td>{{.RulesetVersion}}</td>
        </tr>
        {{end}}
    </table>
    {{end}}

    <h2>Adapter statistics</h2>
    <pre>{{.Stats}}</pre>

    {{if .ReportError}}<p class="unhealthy">Diagnostics report unavailable: {{.ReportError}}</p>{{end}}
    {{if .Report}}<div class="report">{{.Report}}</div>{{end}}
</div>
</body>
</html>`
