package opsconfig

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/opsadapter/internal/fetch"
	ferrors "git.home.luguber.info/inful/opsadapter/internal/foundation/errors"
	"git.home.luguber.info/inful/opsadapter/internal/logfields"
	"git.home.luguber.info/inful/opsadapter/internal/metrics"
	"git.home.luguber.info/inful/opsadapter/internal/observability"
)

// Resolution outcomes recorded to metrics.
const (
	outcomeResolved       = "resolved"
	outcomeNotProvisioned = "not_provisioned"
	outcomeSkipped        = "skipped"
	outcomeFailed         = "failed"
)

// ConfigResolver turns (docset name, repository, branch) into a BuildConfig
// document by querying the docset registry.
type ConfigResolver struct {
	fetcher   *fetch.Fetcher
	endpoints Endpoints
	hostnames HostnameResolver
	dataDir   string
	recorder  metrics.Recorder
}

// NewConfigResolver creates a resolver querying the given endpoint set.
// dataDir anchors the bundled local metadata schema; empty means "data".
func NewConfigResolver(fetcher *fetch.Fetcher, endpoints Endpoints, hostnames HostnameResolver, dataDir string, recorder metrics.Recorder) *ConfigResolver {
	if dataDir == "" {
		dataDir = "data"
	}
	return &ConfigResolver{
		fetcher:   fetcher,
		endpoints: endpoints,
		hostnames: hostnames,
		dataDir:   dataDir,
		recorder:  metrics.OrNoop(recorder),
	}
}

// Endpoints exposes the endpoint set the resolver operates on.
func (r *ConfigResolver) Endpoints() Endpoints {
	return r.endpoints
}

// GetBuildConfig resolves one docset's build configuration.
//
// It returns (nil, nil) when name or repository is empty: no configuration
// was requested. A registry 404, an empty registry response, and an
// unmatched name all return the same warning-severity not-provisioned
// error; the caller decides whether the build carries on without a config
// document.
func (r *ConfigResolver) GetBuildConfig(ctx context.Context, name, repository, branch string) (*BuildConfig, error) {
	if name == "" || repository == "" {
		slog.Debug("No build configuration requested",
			logfields.Docset(name),
			logfields.Repository(repository))
		r.recordOutcome(outcomeSkipped)
		return nil, nil
	}

	ctx, span := observability.GetGlobalTracer().StartResolveSpan(ctx, name)
	cfg, err := r.resolve(ctx, name, repository, branch)
	r.recordOutcome(resolutionOutcome(err))
	observability.EndSpan(span, err)

	if err == nil {
		slog.Info("Resolved build configuration",
			logfields.Docset(name),
			logfields.SiteName(cfg.SiteName),
			logfields.Hostname(cfg.HostName),
			logfields.Locale(cfg.Localization.DefaultLocale))
	}
	return cfg, err
}

func (r *ConfigResolver) resolve(ctx context.Context, name, repository, branch string) (*BuildConfig, error) {
	body, err := r.fetcher.Fetch(ctx, r.endpoints.DocsetsQueryURL(repository), fetch.Options{
		Scope: "docsets",
		On404: func() error { return errDocsetNotProvisioned(name) },
	})
	if err != nil {
		return nil, err
	}

	var docsets []DocsetInfo
	if err := json.Unmarshal([]byte(body), &docsets); err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryDocset, "parse docsets response").
			WithContext("docset", name).
			Build()
	}

	docset, found := matchDocset(docsets, name)
	if !found {
		return nil, errDocsetNotProvisioned(name)
	}

	return r.buildConfig(docset, repository, branch), nil
}

func (r *ConfigResolver) buildConfig(docset DocsetInfo, repository, branch string) *BuildConfig {
	return &BuildConfig{
		Product:      docset.ProductName,
		SiteName:     docset.SiteName,
		HostName:     r.hostnames.GetHostName(docset.SiteName),
		BasePath:     normalizeBasePath(docset.BasePath),
		XrefHostName: r.hostnames.GetXrefHostName(docset.SiteName, branch),
		Localization: Localization{
			DefaultLocale: r.hostnames.GetDefaultLocale(docset.SiteName),
		},
		MonikerDefinition:       PrefixMonikerDefinition,
		MarkdownValidationRules: VirtualURL(PrefixMarkdownValidationRules, repository, branch),
		MetadataSchema: []string{
			filepath.Join(r.dataDir, "schemas", "metadata.json"),
			VirtualURL(PrefixMetadataSchema, repository, branch),
		},
	}
}

func (r *ConfigResolver) recordOutcome(outcome string) {
	r.recorder.IncResolutionOutcome(outcome)
	observability.GetStatsCollector().RecordResolution(outcome)
}

// matchDocset finds the registry entry for name, case-insensitively.
func matchDocset(docsets []DocsetInfo, name string) (DocsetInfo, bool) {
	for _, d := range docsets {
		if strings.EqualFold(d.Name, name) {
			return d, true
		}
	}
	return DocsetInfo{}, false
}

// errDocsetNotProvisioned unwinds the resolution call yet carries warning
// severity; a missing registry entry interrupts this docset's configuration
// step, not necessarily the build.
func errDocsetNotProvisioned(name string) error {
	return ferrors.DocsetError(fmt.Sprintf("docset %q is not provisioned for this repository", name)).
		WithContext("docset", name).
		Build()
}

// IsDocsetNotProvisioned reports whether err is the warning-severity
// not-provisioned signal.
func IsDocsetNotProvisioned(err error) bool {
	return ferrors.HasCategory(err, ferrors.CategoryDocset) && ferrors.IsWarning(err)
}

func resolutionOutcome(err error) string {
	switch {
	case err == nil:
		return outcomeResolved
	case IsDocsetNotProvisioned(err):
		return outcomeNotProvisioned
	default:
		return outcomeFailed
	}
}
