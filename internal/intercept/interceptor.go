// Package intercept routes outgoing requests for the adapter's virtual
// endpoints to local handlers instead of the network.
package intercept

import (
	"context"
	"io"
	"net/http"
	"strings"

	"git.home.luguber.info/inful/opsadapter/internal/fetch"
	"git.home.luguber.info/inful/opsadapter/internal/metrics"
	"git.home.luguber.info/inful/opsadapter/internal/observability"
	"git.home.luguber.info/inful/opsadapter/internal/opsconfig"
	"git.home.luguber.info/inful/opsadapter/internal/validation"
)

// handler answers one virtual endpoint with a response body.
type handler func(ctx context.Context, requestURL string) (string, error)

// route binds a virtual URL prefix to its handler. Routes live in a fixed
// ordered table; matching is a starts-with test in declaration order.
type route struct {
	prefix   string
	endpoint string
	handle   handler
}

// Interceptor holds the virtual endpoint table. It keeps no state across
// calls; every interception is a pure function of the request and the table.
type Interceptor struct {
	routes   []route
	recorder metrics.Recorder
}

// NewInterceptor builds the three-route table: moniker definitions served by
// the registry, metadata schemas and markdown validation rules served by the
// gateway.
func NewInterceptor(fetcher *fetch.Fetcher, gateway *validation.Gateway, endpoints opsconfig.Endpoints, recorder metrics.Recorder) *Interceptor {
	routes := []route{
		{
			prefix:   opsconfig.PrefixMonikerDefinition,
			endpoint: "moniker_definition",
			handle: func(ctx context.Context, _ string) (string, error) {
				return fetcher.Fetch(ctx, endpoints.MonikerTreeURL(), fetch.Options{Scope: "moniker_tree"})
			},
		},
		{
			prefix:   opsconfig.PrefixMetadataSchema,
			endpoint: "metadata_schema",
			handle: func(ctx context.Context, requestURL string) (string, error) {
				return gateway.GetMetadataSchema(ctx, requestURL), nil
			},
		},
		{
			prefix:   opsconfig.PrefixMarkdownValidationRules,
			endpoint: "markdown_validation_rules",
			handle: func(ctx context.Context, requestURL string) (string, error) {
				return gateway.GetMarkdownValidationRules(ctx, requestURL), nil
			},
		},
	}
	return &Interceptor{routes: routes, recorder: metrics.OrNoop(recorder)}
}

// InterceptHTTPRequest offers an outgoing request to the virtual endpoint
// table. The first matching prefix wins. A (nil, nil) return means no route
// matched and the caller should perform the real network call. Handler
// failures (only the moniker route can fail) propagate to the caller.
func (i *Interceptor) InterceptHTTPRequest(req *http.Request) (*http.Response, error) {
	rawURL := req.URL.String()
	for _, rt := range i.routes {
		if !strings.HasPrefix(rawURL, rt.prefix) {
			continue
		}
		i.recorder.IncInterceptHit(rt.endpoint)
		observability.GetStatsCollector().RecordInterceptHit(rt.endpoint)

		ctx, span := observability.GetGlobalTracer().StartInterceptSpan(req.Context(), rt.endpoint)
		body, err := rt.handle(ctx, rawURL)
		observability.EndSpan(span, err)
		if err != nil {
			return nil, err
		}
		return synthesizeResponse(req, body), nil
	}

	i.recorder.IncInterceptPass()
	observability.GetStatsCollector().RecordInterceptPass()
	return nil, nil
}

// synthesizeResponse wraps handler output as a successful response paired
// with the original request.
func synthesizeResponse(req *http.Request, body string) *http.Response {
	return &http.Response{
		Status:        "200 OK",
		StatusCode:    http.StatusOK,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        http.Header{"Content-Type": []string{"application/json"}},
		Body:          io.NopCloser(strings.NewReader(body)),
		ContentLength: int64(len(body)),
		Request:       req,
	}
}
