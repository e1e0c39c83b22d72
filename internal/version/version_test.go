package version

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func withBuildVars(t *testing.T, v, commit, built string) {
	t.Helper()
	oldVersion, oldCommit, oldTime := Version, GitCommit, BuildTime
	Version, GitCommit, BuildTime = v, commit, built
	t.Cleanup(func() {
		Version, GitCommit, BuildTime = oldVersion, oldCommit, oldTime
	})
}

func TestStampedVersion(t *testing.T) {
	withBuildVars(t, "v1.2.3", "0123456789abcdef", "2026-03-01T10:00:00Z")

	assert.Equal(t, "v1.2.3", GetVersion())
	assert.Equal(t, "0123456789abcdef", GetGitCommit())
	assert.Equal(t, "v1.2.3 (0123456)", GetShortVersion())
	assert.True(t, IsRelease())
	assert.Equal(t, time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC), GetBuildTime())

	detailed := GetDetailedVersion()
	assert.Contains(t, detailed, "Version: v1.2.3")
	assert.Contains(t, detailed, "Commit: 0123456789abcdef")
	assert.Contains(t, detailed, "Built: 2026-03-01T10:00:00Z")

	assert.True(t, strings.HasPrefix(UserAgent(), "vedit/v1.2.3 ("))
}

func TestParseISOTime(t *testing.T) {
	tests := []struct {
		name  string
		input string
		zero  bool
	}{
		{"rfc3339", "2026-01-02T03:04:05Z", false},
		{"no zone", "2026-01-02T03:04:05", false},
		{"space separated", "2026-01-02 03:04:05", false},
		{"millis", "2026-01-02T03:04:05.000Z", false},
		{"unknown", "unknown", true},
		{"empty", "", true},
		{"garbage", "yesterday", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.zero, parseISOTime(tt.input).IsZero())
		})
	}
}
