package opsconfig

import (
	"strings"

	"golang.org/x/text/language"

	"git.home.luguber.info/inful/opsadapter/internal/config"
)

// Site names with dedicated host mappings. Every other site falls through to
// the docs.microsoft.com default.
const (
	siteAzureCN   = "DocsAzureCN"
	siteDevCenter = "dev.microsoft.com"
	siteRDCenter  = "rd.microsoft.com"
)

var (
	localeChina   = language.MustParse("zh-CN")
	localeDefault = language.MustParse("en-US")
)

// HostnameResolver derives host names and locales for a site. All methods
// are pure and total over arbitrary string inputs.
type HostnameResolver struct {
	production bool
}

// NewHostnameResolver creates a resolver for the environment's tier.
func NewHostnameResolver(env config.Environment) HostnameResolver {
	return HostnameResolver{production: env.IsProduction()}
}

// GetHostName maps a site name to the host serving it in this environment.
func (r HostnameResolver) GetHostName(siteName string) string {
	switch siteName {
	case siteAzureCN:
		if r.production {
			return "docs.azure.cn"
		}
		return "ppe.docs.azure.cn"
	case siteDevCenter:
		if r.production {
			return "developer.microsoft.com"
		}
		return "devmsft-sandbox.azurewebsites.net"
	case siteRDCenter:
		return "rd.microsoft.com"
	default:
		if r.production {
			return "docs.microsoft.com"
		}
		return "ppe.docs.microsoft.com"
	}
}

// GetDefaultLocale returns the locale content defaults to on this site.
func (r HostnameResolver) GetDefaultLocale(siteName string) string {
	if siteName == siteAzureCN {
		return strings.ToLower(localeChina.String())
	}
	return strings.ToLower(localeDefault.String())
}

// GetXrefHostName returns the host cross-references resolve against.
// Non-live branches in production resolve against the review host; every
// other combination uses the site host unchanged.
func (r HostnameResolver) GetXrefHostName(siteName, branch string) string {
	host := r.GetHostName(siteName)
	if r.production && !isLiveBranch(branch) {
		return "review." + host
	}
	return host
}

// Live branches are exactly these two literals.
func isLiveBranch(branch string) bool {
	return branch == "live" || branch == "live-sxs"
}
