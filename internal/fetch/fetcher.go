// Package fetch performs the adapter's outbound HTTP GETs: one request per
// call, ops headers injected, with a 404 hook and a ruleset-version
// diagnostic side-channel.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"git.home.luguber.info/inful/opsadapter/internal/config"
	"git.home.luguber.info/inful/opsadapter/internal/diagnostics"
	ferrors "git.home.luguber.info/inful/opsadapter/internal/foundation/errors"
	"git.home.luguber.info/inful/opsadapter/internal/logfields"
	"git.home.luguber.info/inful/opsadapter/internal/metrics"
	"git.home.luguber.info/inful/opsadapter/internal/observability"
)

// Header names on ops requests and responses.
const (
	// HeaderBuildUserToken carries the ops access token on every request.
	HeaderBuildUserToken = "X-OP-BuildUserToken"
	// HeaderRepositoryURL and HeaderRepositoryBranch scope validation
	// service requests to one repository state.
	HeaderRepositoryURL    = "X-Metadata-RepositoryUrl"
	HeaderRepositoryBranch = "X-Metadata-RepositoryBranch"
	// HeaderRulesetVersion is the response header advertising the active
	// validation ruleset version.
	HeaderRulesetVersion = "X-Metadata-Version"
)

// Options tune a single Fetch call. The zero value is valid.
type Options struct {
	// Headers are attached verbatim. Values are not validated, so callers
	// may pass characters a validating client would reject, such as tokens.
	Headers map[string]string
	// On404 runs when the response status is 404, before that status turns
	// into a transport error. A non-nil return replaces the transport error.
	On404 func() error
	// Scope names the timing span recorded for this call.
	Scope string
}

// Fetcher issues single GET requests against the ops services. Safe for
// concurrent use; the only shared mutable state lives inside the transport.
type Fetcher struct {
	client   *http.Client
	token    string
	reporter *diagnostics.Reporter
	recorder metrics.Recorder
	inflight atomic.Int64
}

// New creates a Fetcher sharing the adapter's http.Client. A nil client
// falls back to http.DefaultClient; a nil reporter drops diagnostics.
func New(client *http.Client, env config.Environment, reporter *diagnostics.Reporter, recorder metrics.Recorder) *Fetcher {
	if client == nil {
		client = http.DefaultClient
	}
	return &Fetcher{
		client:   client,
		token:    env.OpsToken,
		reporter: reporter,
		recorder: metrics.OrNoop(recorder),
	}
}

// Fetch issues one GET and returns the response body as text. The call is
// wrapped in a named timing scope; no retries, no caching.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string, opts Options) (string, error) {
	scope := opts.Scope
	if scope == "" {
		scope = "remote"
	}

	ctx, span := observability.GetGlobalTracer().StartFetchSpan(ctx, scope, rawURL)
	f.recorder.SetInflightFetches(int(f.inflight.Add(1)))
	start := time.Now()

	body, err := f.fetch(ctx, rawURL, opts)

	duration := time.Since(start)
	f.recorder.SetInflightFetches(int(f.inflight.Add(-1)))
	observability.GetStatsCollector().RecordFetch(scope, duration, err == nil)
	f.recorder.ObserveFetchDuration(scope, duration)
	f.recorder.IncFetchResult(scope, resultLabel(err))
	observability.EndSpan(span, err)

	return body, err
}

func (f *Fetcher) fetch(ctx context.Context, rawURL string, opts Options) (string, error) {
	slog.Debug("Fetching remote resource",
		logfields.URL(rawURL),
		logfields.Scope(opts.Scope))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", ferrors.WrapError(err, ferrors.CategoryNetwork, "build request").
			WithContext("url", rawURL).
			Build()
	}

	if f.token != "" {
		req.Header.Set(HeaderBuildUserToken, f.token)
	}
	for key, value := range opts.Headers {
		req.Header.Set(key, value)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return "", ferrors.WrapError(err, ferrors.CategoryNetwork, "send request").
			WithContext("url", rawURL).
			Build()
	}
	defer func() { _ = resp.Body.Close() }()

	// Purely observational; never affects control flow.
	if version := resp.Header.Get(HeaderRulesetVersion); version != "" {
		f.reporter.Publish(ctx, diagnostics.RulesetVersion(rawURL, version))
	}

	if resp.StatusCode == http.StatusNotFound && opts.On404 != nil {
		if hookErr := opts.On404(); hookErr != nil {
			return "", hookErr
		}
	}

	// A rejected token needs a new token, not a retry.
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return "", ferrors.AuthError(fmt.Sprintf("status %d fetching %s, check DOCS_OPS_TOKEN", resp.StatusCode, rawURL)).
			WithContext("url", rawURL).
			WithContext("status", resp.StatusCode).
			Build()
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return "", ferrors.NetworkError(fmt.Sprintf("unexpected status %d fetching %s", resp.StatusCode, rawURL)).
			WithContext("url", rawURL).
			WithContext("status", resp.StatusCode).
			Build()
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", ferrors.WrapError(err, ferrors.CategoryNetwork, "read response body").
			WithContext("url", rawURL).
			Build()
	}

	return string(data), nil
}

func resultLabel(err error) metrics.ResultLabel {
	switch {
	case err == nil:
		return metrics.ResultSuccess
	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		return metrics.ResultCanceled
	case ferrors.IsWarning(err):
		return metrics.ResultWarning
	default:
		return metrics.ResultError
	}
}
