// Package version exposes the build identity stamped in through ldflags:
//
//	go build -ldflags "-X git.home.luguber.info/inful/opsadapter/internal/version.Version=v1.3.0"
package version

import "fmt"

// Version is the release version, "unknown" for untagged builds.
var Version = "unknown"

// Build metadata, also stamped through ldflags.
var (
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// Full returns the version together with any build metadata that was
// stamped in, for the status page. Unset fields are omitted rather than
// printed as "unknown".
func Full() string {
	s := Version
	if GitCommit != "unknown" {
		s = fmt.Sprintf("%s (%s)", s, shortCommit(GitCommit))
	}
	if BuildTime != "unknown" {
		s += " built " + BuildTime
	}
	return s
}

func shortCommit(commit string) string {
	if len(commit) > 8 {
		return commit[:8]
	}
	return commit
}
