// Package opsconfig turns docset registry entries into the build
// configuration document the rest of the pipeline consumes.
package opsconfig

// DocsetInfo is one row of the registry's docsets query response. Name
// uniqueness is case-insensitive by registry contract, not enforced here.
type DocsetInfo struct {
	Name        string `json:"name"`
	BasePath    string `json:"base_path"`
	SiteName    string `json:"site_name"`
	ProductName string `json:"product_name"`
}
