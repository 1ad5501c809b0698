package opsconfig

import (
	"net/url"

	"git.home.luguber.info/inful/opsadapter/internal/config"
)

// Upstream service bases per environment tier.
const (
	registryBaseProduction = "https://op-build-prod.azurewebsites.net"
	registryBaseSandbox    = "https://op-build-sandbox2.azurewebsites.net"

	validationBaseProduction = "https://docs.microsoft.com/api/metadata"
	validationBaseSandbox    = "https://ppe.docs.microsoft.com/api/metadata"
)

// VirtualBase prefixes every URL the adapter answers locally instead of
// forwarding upstream.
const VirtualBase = "https://ops/"

// Virtual URL prefixes the interceptor answers locally. Declaration order
// here is the route-table scan order.
const (
	PrefixMonikerDefinition       = VirtualBase + "monikerdefinition/"
	PrefixMetadataSchema          = VirtualBase + "metadataschema/"
	PrefixMarkdownValidationRules = VirtualBase + "markdownvalidationrules/"
)

// Endpoints holds the upstream base URLs selected by the environment tier
// and builds the concrete request URLs on them.
type Endpoints struct {
	RegistryBase   string
	ValidationBase string
}

// EndpointsFor selects the production or sandbox bases.
func EndpointsFor(env config.Environment) Endpoints {
	if env.IsProduction() {
		return Endpoints{
			RegistryBase:   registryBaseProduction,
			ValidationBase: validationBaseProduction,
		}
	}
	return Endpoints{
		RegistryBase:   registryBaseSandbox,
		ValidationBase: validationBaseSandbox,
	}
}

// DocsetsQueryURL builds the registry query for docsets provisioned on a
// repository. The repository URL is query-encoded.
func (e Endpoints) DocsetsQueryURL(repository string) string {
	q := url.Values{}
	q.Set("git_repo_url", repository)
	q.Set("docset_query_status", "Created")
	return e.RegistryBase + "/v2/Queries/Docsets?" + q.Encode()
}

// MonikerTreeURL builds the registry URL for the full moniker tree.
func (e Endpoints) MonikerTreeURL() string {
	return e.RegistryBase + "/v2/monikertrees/allfamiliesproductsmonikers"
}

// MetadataRulesURL builds the validation service URL for metadata rules.
func (e Endpoints) MetadataRulesURL() string {
	return e.ValidationBase + "/rules"
}

// MarkdownRulesURL builds the validation service URL for markdown rules.
func (e Endpoints) MarkdownRulesURL() string {
	return e.ValidationBase + "/rules/content"
}

// AllowlistsURL builds the validation service URL for attribute allowlists.
func (e Endpoints) AllowlistsURL() string {
	return e.ValidationBase + "/allowlists"
}

// VirtualURL appends the repository and branch query parameters to a virtual
// prefix so the interceptor can recover them from the outgoing request.
func VirtualURL(prefix, repository, branch string) string {
	q := url.Values{}
	q.Set("repository_url", repository)
	q.Set("branch", branch)
	return prefix + "?" + q.Encode()
}
