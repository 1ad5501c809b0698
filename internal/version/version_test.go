package version

import "testing"

func TestFull(t *testing.T) {
	origVersion, origCommit, origBuilt := Version, GitCommit, BuildTime
	t.Cleanup(func() {
		Version, GitCommit, BuildTime = origVersion, origCommit, origBuilt
	})

	tests := []struct {
		name    string
		version string
		commit  string
		built   string
		want    string
	}{
		{
			name:    "untagged build",
			version: "unknown",
			commit:  "unknown",
			built:   "unknown",
			want:    "unknown",
		},
		{
			name:    "version only",
			version: "v1.3.0",
			commit:  "unknown",
			built:   "unknown",
			want:    "v1.3.0",
		},
		{
			name:    "commit shortened to eight characters",
			version: "v1.3.0",
			commit:  "0123456789abcdef",
			built:   "unknown",
			want:    "v1.3.0 (01234567)",
		},
		{
			name:    "short commit kept whole",
			version: "v1.3.0",
			commit:  "0123456",
			built:   "unknown",
			want:    "v1.3.0 (0123456)",
		},
		{
			name:    "full build identity",
			version: "v1.3.0",
			commit:  "0123456789abcdef",
			built:   "2026-08-23T10:00:00Z",
			want:    "v1.3.0 (01234567) built 2026-08-23T10:00:00Z",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			Version, GitCommit, BuildTime = tt.version, tt.commit, tt.built
			if got := Full(); got != tt.want {
				t.Errorf("Full() = %q, want %q", got, tt.want)
			}
		})
	}
}
