// Package gitinfo detects repository identity from a local git working tree.
package gitinfo

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-git/go-git/v5"

	ferrors "git.home.luguber.info/inful/opsadapter/internal/foundation/errors"
)

// Info identifies the repository a working tree belongs to.
type Info struct {
	RepositoryURL string
	Branch        string
	Commit        string
}

// Detect opens the working tree at or above path and reads the origin remote
// URL, the checked-out branch, and the HEAD commit. A detached HEAD leaves
// Branch empty; a missing origin remote leaves RepositoryURL empty.
func Detect(path string) (Info, error) {
	repository, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return Info{}, ferrors.WrapError(err, ferrors.CategoryGit, fmt.Sprintf("open repository at %s", path)).Build()
	}

	var info Info

	remote, err := repository.Remote("origin")
	switch {
	case err == nil:
		if urls := remote.Config().URLs; len(urls) > 0 {
			info.RepositoryURL = normalizeRemoteURL(urls[0])
		}
	case errors.Is(err, git.ErrRemoteNotFound):
	default:
		return Info{}, ferrors.WrapError(err, ferrors.CategoryGit, "read origin remote").Build()
	}

	head, err := repository.Head()
	if err != nil {
		return Info{}, ferrors.WrapError(err, ferrors.CategoryGit, "read HEAD").Build()
	}
	if head.Name().IsBranch() {
		info.Branch = head.Name().Short()
	}
	info.Commit = head.Hash().String()

	return info, nil
}

// normalizeRemoteURL rewrites SSH-style remotes into https form and strips
// the .git suffix. The docset registry keys repositories by their https URL.
func normalizeRemoteURL(raw string) string {
	normalized := raw
	if rest, ok := strings.CutPrefix(normalized, "ssh://git@"); ok {
		normalized = "https://" + rest
	} else if rest, ok := strings.CutPrefix(normalized, "git@"); ok {
		if host, repoPath, found := strings.Cut(rest, ":"); found {
			normalized = "https://" + host + "/" + repoPath
		}
	}
	return strings.TrimSuffix(normalized, ".git")
}
