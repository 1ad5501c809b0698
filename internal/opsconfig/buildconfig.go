package opsconfig

import "strings"

// BuildConfig is the resolved build configuration for one docset. It is
// recomputed fresh on every resolution; nothing caches it.
type BuildConfig struct {
	Product                 string       `json:"product"`
	SiteName                string       `json:"siteName"`
	HostName                string       `json:"hostName"`
	BasePath                string       `json:"basePath"`
	XrefHostName            string       `json:"xrefHostName"`
	Localization            Localization `json:"localization"`
	MonikerDefinition       string       `json:"monikerDefinition"`
	MarkdownValidationRules string       `json:"markdownValidationRules"`
	// MetadataSchema always holds exactly two entries: the bundled local
	// schema path and the remote schema URL.
	MetadataSchema []string `json:"metadataSchema"`
}

// Localization carries the locale section of the build configuration.
type Localization struct {
	DefaultLocale string `json:"defaultLocale"`
}

// normalizeBasePath guarantees a leading slash on the docset base path.
func normalizeBasePath(basePath string) string {
	if basePath == "" {
		return "/"
	}
	if !strings.HasPrefix(basePath, "/") {
		return "/" + basePath
	}
	return basePath
}
