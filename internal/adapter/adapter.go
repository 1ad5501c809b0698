// Package adapter assembles the build-pipeline adapter: one shared HTTP
// client feeding the fetcher, resolver, gateway, and interceptor, plus the
// diagnostics pipeline they report into.
package adapter

import (
	"net/http"

	"git.home.luguber.info/inful/opsadapter/internal/config"
	"git.home.luguber.info/inful/opsadapter/internal/diagnostics"
	"git.home.luguber.info/inful/opsadapter/internal/eventstore"
	"git.home.luguber.info/inful/opsadapter/internal/fetch"
	"git.home.luguber.info/inful/opsadapter/internal/intercept"
	"git.home.luguber.info/inful/opsadapter/internal/metrics"
	"git.home.luguber.info/inful/opsadapter/internal/opsconfig"
	"git.home.luguber.info/inful/opsadapter/internal/schema"
	"git.home.luguber.info/inful/opsadapter/internal/validation"
)

// Options tune the assembly. The zero value builds a network-only adapter
// with log-sink diagnostics and no metrics.
type Options struct {
	// Client is the shared HTTP client. Nil builds a private client whose
	// idle connections are released on Close.
	Client *http.Client

	// Endpoints overrides the environment-derived endpoint bases, for
	// deployments talking to a registry or validation emulator.
	Endpoints opsconfig.Endpoints

	// Converter overrides the metadata schema merge. Nil selects
	// schema.Convert.
	Converter schema.Converter

	// DataDir anchors the bundled local metadata schema. Empty means "data".
	DataDir string

	// StorePath enables the SQLite event sink when non-empty.
	StorePath string

	// NATSURL enables the JetStream event sink when non-empty. Subject and
	// stream fall back to the configuration defaults.
	NATSURL     string
	NATSSubject string
	NATSStream  string

	// Recorder receives adapter metrics. Nil records nothing.
	Recorder metrics.Recorder

	// ExtraSinks join the diagnostics pipeline after the built-in sinks.
	ExtraSinks []diagnostics.Sink
}

// Adapter owns the wired components for one build session.
type Adapter struct {
	env         config.Environment
	endpoints   opsconfig.Endpoints
	client      *http.Client
	ownedClient bool
	reporter    *diagnostics.Reporter
	fetcher     *fetch.Fetcher
	resolver    *opsconfig.ConfigResolver
	gateway     *validation.Gateway
	interceptor *intercept.Interceptor
}

// New wires an adapter for the given environment. The returned adapter must
// be closed; Close is safe to defer immediately after a successful New.
func New(env config.Environment, opts Options) (*Adapter, error) {
	client := opts.Client
	owned := false
	if client == nil {
		client = &http.Client{}
		owned = true
	}

	sinks := []diagnostics.Sink{diagnostics.NewLogSink(nil)}
	if opts.StorePath != "" {
		store, err := eventstore.NewSQLiteStore(opts.StorePath)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, diagnostics.NewStoreSink(store, nil))
	}
	if opts.NATSURL != "" {
		defaults := config.Default().NATS
		subject := opts.NATSSubject
		if subject == "" {
			subject = defaults.Subject
		}
		stream := opts.NATSStream
		if stream == "" {
			stream = defaults.Stream
		}
		sink, err := diagnostics.NewNATSSink(opts.NATSURL, subject, stream)
		if err != nil {
			_ = diagnostics.NewMultiSink(sinks...).Close()
			return nil, err
		}
		sinks = append(sinks, sink)
	}
	sinks = append(sinks, opts.ExtraSinks...)

	reporter := diagnostics.NewReporter(diagnostics.NewMultiSink(sinks...))
	recorder := metrics.OrNoop(opts.Recorder)

	endpoints := opts.Endpoints
	if endpoints == (opsconfig.Endpoints{}) {
		endpoints = opsconfig.EndpointsFor(env)
	}
	hostnames := opsconfig.NewHostnameResolver(env)

	fetcher := fetch.New(client, env, reporter, recorder)
	resolver := opsconfig.NewConfigResolver(fetcher, endpoints, hostnames, opts.DataDir, recorder)
	gateway := validation.NewGateway(fetcher, endpoints, opts.Converter, reporter, recorder)
	interceptor := intercept.NewInterceptor(fetcher, gateway, endpoints, recorder)

	return &Adapter{
		env:         env,
		endpoints:   endpoints,
		client:      client,
		ownedClient: owned,
		reporter:    reporter,
		fetcher:     fetcher,
		resolver:    resolver,
		gateway:     gateway,
		interceptor: interceptor,
	}, nil
}

// Close flushes and closes the diagnostic sinks and releases the owned HTTP
// client's idle connections. Injected clients are left untouched.
func (a *Adapter) Close() error {
	err := a.reporter.Close()
	if a.ownedClient {
		a.client.CloseIdleConnections()
	}
	return err
}

// Environment reports the environment the adapter was built for.
func (a *Adapter) Environment() config.Environment { return a.env }

// Endpoints reports the resolved upstream endpoint bases.
func (a *Adapter) Endpoints() opsconfig.Endpoints { return a.endpoints }

// Client exposes the HTTP client used for direct upstream calls. Virtual
// endpoint traffic goes through InterceptingClient instead.
func (a *Adapter) Client() *http.Client { return a.client }

// SessionID identifies this adapter's diagnostic session.
func (a *Adapter) SessionID() string { return a.reporter.SessionID() }

// Fetcher exposes the shared remote fetcher.
func (a *Adapter) Fetcher() *fetch.Fetcher { return a.fetcher }

// Resolver exposes the build configuration resolver.
func (a *Adapter) Resolver() *opsconfig.ConfigResolver { return a.resolver }

// Gateway exposes the validation rule gateway.
func (a *Adapter) Gateway() *validation.Gateway { return a.gateway }

// Interceptor exposes the virtual endpoint interceptor.
func (a *Adapter) Interceptor() *intercept.Interceptor { return a.interceptor }

// Reporter exposes the diagnostics reporter for adapter-adjacent events.
func (a *Adapter) Reporter() *diagnostics.Reporter { return a.reporter }

// InterceptingClient returns a client that answers the adapter's virtual
// endpoints locally and performs real network calls for everything else.
func (a *Adapter) InterceptingClient() *http.Client {
	return &http.Client{Transport: intercept.NewTransport(a.interceptor, a.client.Transport)}
}
