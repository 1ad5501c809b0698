// Package validation fronts the content validation service with a fail-soft
// gateway. Gateway calls never propagate errors: any failure while fetching
// or merging validation documents degrades to the permissive "{}" fallback,
// recorded as a single build warning.
package validation

import (
	"context"
	"log/slog"
	"net/url"

	"git.home.luguber.info/inful/opsadapter/internal/diagnostics"
	"git.home.luguber.info/inful/opsadapter/internal/fetch"
	ferrors "git.home.luguber.info/inful/opsadapter/internal/foundation/errors"
	"git.home.luguber.info/inful/opsadapter/internal/logfields"
	"git.home.luguber.info/inful/opsadapter/internal/metrics"
	"git.home.luguber.info/inful/opsadapter/internal/observability"
	"git.home.luguber.info/inful/opsadapter/internal/opsconfig"
	"git.home.luguber.info/inful/opsadapter/internal/schema"
)

// Fallback is returned whenever a gateway call cannot produce real
// validation data. Consumers treat it as "no constraints".
const Fallback = "{}"

const warningValidationIncomplete = "validation incomplete"

// Gateway retrieves markdown validation rules and metadata schemas from the
// validation service on behalf of intercepted requests.
type Gateway struct {
	fetcher   *fetch.Fetcher
	endpoints opsconfig.Endpoints
	convert   schema.Converter
	reporter  *diagnostics.Reporter
	recorder  metrics.Recorder
}

// NewGateway builds a gateway against the given validation service
// endpoints. A nil converter selects schema.Convert.
func NewGateway(fetcher *fetch.Fetcher, endpoints opsconfig.Endpoints, converter schema.Converter, reporter *diagnostics.Reporter, recorder metrics.Recorder) *Gateway {
	if converter == nil {
		converter = schema.Convert
	}
	return &Gateway{
		fetcher:   fetcher,
		endpoints: endpoints,
		convert:   converter,
		reporter:  reporter,
		recorder:  metrics.OrNoop(recorder),
	}
}

// GetMarkdownValidationRules fetches the markdown rule document for the
// repository and branch encoded in requestURL's query. On any failure it
// returns Fallback instead of an error.
func (g *Gateway) GetMarkdownValidationRules(ctx context.Context, requestURL string) string {
	ctx, span := observability.GetGlobalTracer().StartGatewaySpan(ctx, "markdown_rules")

	body, err := g.fetcher.Fetch(ctx, g.endpoints.MarkdownRulesURL(), fetch.Options{
		Headers: repositoryHeaders(requestURL),
		Scope:   "markdown_rules",
	})
	observability.EndSpan(span, err)
	if err != nil {
		g.reportIncomplete(ctx, "markdown_rules", err)
		return Fallback
	}
	return body
}

// GetMetadataSchema fetches the metadata rule and allowlist documents and
// merges them into one schema document. The rules fetch runs concurrently
// with the allowlists fetch, the only fan-out in the adapter. On any failure
// from either fetch or the merge it returns Fallback instead of an error.
func (g *Gateway) GetMetadataSchema(ctx context.Context, requestURL string) string {
	ctx, span := observability.GetGlobalTracer().StartGatewaySpan(ctx, "metadata_schema")

	headers := repositoryHeaders(requestURL)

	type fetched struct {
		body string
		err  error
	}
	rulesCh := make(chan fetched, 1)
	go func() {
		body, err := g.fetcher.Fetch(ctx, g.endpoints.MetadataRulesURL(), fetch.Options{
			Headers: headers,
			Scope:   "metadata_rules",
		})
		rulesCh <- fetched{body: body, err: err}
	}()

	allowlists, err := g.fetcher.Fetch(ctx, g.endpoints.AllowlistsURL(), fetch.Options{
		Headers: headers,
		Scope:   "allowlists",
	})
	rules := <-rulesCh

	if err == nil {
		err = rules.err
	}
	var body string
	if err == nil {
		body, err = g.convert(rules.body, allowlists)
	}
	observability.EndSpan(span, err)
	if err != nil {
		g.recorder.IncSchemaFallback()
		observability.GetStatsCollector().RecordSchemaFallback()
		g.reportIncomplete(ctx, "metadata_schema", err)
		return Fallback
	}
	return body
}

// reportIncomplete records the degradation signal for a failed gateway call.
// Exactly one warning is recorded per failed call, even when both metadata
// fetches fail.
func (g *Gateway) reportIncomplete(ctx context.Context, operation string, err error) {
	slog.Debug("validation service call failed, continuing with fallback",
		logfields.Scope(operation), logfields.Error(err))
	g.recorder.IncWarning(string(ferrors.CategoryValidation))
	observability.GetStatsCollector().RecordWarning(string(ferrors.CategoryValidation))
	g.reporter.Publish(ctx, diagnostics.BuildWarning(warningValidationIncomplete).
		WithField("operation", operation).
		WithField("error", err.Error()))
}

// repositoryHeaders recovers the repository URL and branch the resolver
// embedded in the virtual URL and republishes them as validation service
// headers. Both headers are always present; missing query parameters yield
// empty values.
func repositoryHeaders(requestURL string) map[string]string {
	repository, branch := "", ""
	if parsed, err := url.Parse(requestURL); err == nil {
		query := parsed.Query()
		repository = query.Get("repository_url")
		branch = query.Get("branch")
	}
	return map[string]string{
		fetch.HeaderRepositoryURL:    repository,
		fetch.HeaderRepositoryBranch: branch,
	}
}
