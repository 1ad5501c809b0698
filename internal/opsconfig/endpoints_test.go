package opsconfig

import (
	"net/url"
	"strings"
	"testing"

	"git.home.luguber.info/inful/opsadapter/internal/config"
)

func TestEndpointsFor(t *testing.T) {
	tests := []struct {
		name               string
		tier               config.DocsEnvironment
		wantRegistryBase   string
		wantValidationBase string
	}{
		{
			name:               "production",
			tier:               config.EnvironmentProduction,
			wantRegistryBase:   "https://op-build-prod.azurewebsites.net",
			wantValidationBase: "https://docs.microsoft.com/api/metadata",
		},
		{
			name:               "sandbox",
			tier:               config.EnvironmentSandbox,
			wantRegistryBase:   "https://op-build-sandbox2.azurewebsites.net",
			wantValidationBase: "https://ppe.docs.microsoft.com/api/metadata",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			endpoints := EndpointsFor(config.Environment{Tier: tt.tier})
			if endpoints.RegistryBase != tt.wantRegistryBase {
				t.Errorf("RegistryBase = %q, expected %q", endpoints.RegistryBase, tt.wantRegistryBase)
			}
			if endpoints.ValidationBase != tt.wantValidationBase {
				t.Errorf("ValidationBase = %q, expected %q", endpoints.ValidationBase, tt.wantValidationBase)
			}
		})
	}
}

func TestDocsetsQueryURL(t *testing.T) {
	endpoints := Endpoints{RegistryBase: "https://registry.example"}
	raw := endpoints.DocsetsQueryURL("https://github.com/org/repo name")

	parsed, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("generated URL does not parse: %v", err)
	}
	if parsed.Path != "/v2/Queries/Docsets" {
		t.Errorf("path = %q, expected /v2/Queries/Docsets", parsed.Path)
	}
	if got := parsed.Query().Get("git_repo_url"); got != "https://github.com/org/repo name" {
		t.Errorf("git_repo_url = %q, expected decoded repository", got)
	}
	if got := parsed.Query().Get("docset_query_status"); got != "Created" {
		t.Errorf("docset_query_status = %q, expected Created", got)
	}
	// The raw repository URL must be encoded, never embedded verbatim.
	if strings.Contains(raw, "https://github.com/org") {
		t.Errorf("repository embedded unencoded in %q", raw)
	}
}

func TestValidationServiceURLs(t *testing.T) {
	endpoints := Endpoints{ValidationBase: "https://validation.example/api/metadata"}

	if got := endpoints.MetadataRulesURL(); got != "https://validation.example/api/metadata/rules" {
		t.Errorf("MetadataRulesURL() = %q", got)
	}
	if got := endpoints.MarkdownRulesURL(); got != "https://validation.example/api/metadata/rules/content" {
		t.Errorf("MarkdownRulesURL() = %q", got)
	}
	if got := endpoints.AllowlistsURL(); got != "https://validation.example/api/metadata/allowlists" {
		t.Errorf("AllowlistsURL() = %q", got)
	}
}

func TestMonikerTreeURL(t *testing.T) {
	endpoints := Endpoints{RegistryBase: "https://registry.example"}
	if got := endpoints.MonikerTreeURL(); got != "https://registry.example/v2/monikertrees/allfamiliesproductsmonikers" {
		t.Errorf("MonikerTreeURL() = %q", got)
	}
}

func TestVirtualURL(t *testing.T) {
	raw := VirtualURL(PrefixMarkdownValidationRules, "https://github.com/org/repo", "feature/x")

	if !strings.HasPrefix(raw, PrefixMarkdownValidationRules) {
		t.Fatalf("URL %q does not start with its prefix", raw)
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("generated URL does not parse: %v", err)
	}
	if got := parsed.Query().Get("repository_url"); got != "https://github.com/org/repo" {
		t.Errorf("repository_url = %q", got)
	}
	if got := parsed.Query().Get("branch"); got != "feature/x" {
		t.Errorf("branch = %q", got)
	}
	if strings.Contains(raw, "feature/x") {
		t.Errorf("branch embedded unencoded in %q", raw)
	}
}
