// Package version reports how the vedit binary was built. Values come from
// -ldflags when set, otherwise from the module build info.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
	"time"
)

// BuildInfo contains version and build information
type BuildInfo struct {
	Version   string    `json:"version"`
	GitCommit string    `json:"git_commit"`
	BuildTime time.Time `json:"build_time"`
	GoVersion string    `json:"go_version"`
	Platform  string    `json:"platform"`
	BuildUser string    `json:"build_user,omitempty"`
}

// Set at build time with
//
//	-ldflags "-X github.com/conneroisu/vedit/internal/version.Version=v0.1.0"
var (
	Version   = "dev"
	GitCommit = "unknown"
	// BuildTime is RFC3339
	BuildTime = "unknown"
	BuildUser = "unknown"
)

const (
	devVersion     = "dev"
	unknownCommit  = "unknown"
	shortCommitLen = 7
)

// GetBuildInfo returns comprehensive build information
func GetBuildInfo() *BuildInfo {
	return &BuildInfo{
		Version:   GetVersion(),
		GitCommit: GetGitCommit(),
		BuildTime: GetBuildTime(),
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
		BuildUser: BuildUser,
	}
}

// GetVersion returns the release version, the module version, or
// dev-<commit> for an untagged VCS build.
func GetVersion() string {
	if Version != "" && Version != devVersion {
		return Version
	}

	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	if rev := buildSetting("vcs.revision"); len(rev) >= shortCommitLen {
		return devVersion + "-" + rev[:shortCommitLen]
	}
	return devVersion
}

// GetGitCommit returns the git commit hash
func GetGitCommit() string {
	if GitCommit != "" && GitCommit != unknownCommit {
		return GitCommit
	}
	if rev := buildSetting("vcs.revision"); rev != "" {
		return rev
	}
	return unknownCommit
}

// GetBuildTime returns the build time, or the VCS commit time when no build
// time was stamped. The zero time means neither is known.
func GetBuildTime() time.Time {
	if t := parseISOTime(BuildTime); !t.IsZero() {
		return t
	}
	return parseISOTime(buildSetting("vcs.time"))
}

// GetShortVersion returns a short version string suitable for display
func GetShortVersion() string {
	v := GetVersion()
	commit := GetGitCommit()
	if commit == unknownCommit || len(commit) < shortCommitLen {
		return v
	}

	short := commit[:shortCommitLen]
	switch {
	case strings.HasPrefix(v, devVersion+"-"):
		return v
	case v == devVersion:
		return devVersion + "-" + short
	default:
		return fmt.Sprintf("%s (%s)", v, short)
	}
}

// GetDetailedVersion returns one "Key: value" line per known build field.
func GetDetailedVersion() string {
	info := GetBuildInfo()

	lines := []string{"Version: " + info.Version}
	if info.GitCommit != unknownCommit {
		lines = append(lines, "Commit: "+info.GitCommit)
	}
	if !info.BuildTime.IsZero() {
		lines = append(lines, "Built: "+info.BuildTime.Format(time.RFC3339))
	}
	lines = append(lines, "Go: "+info.GoVersion, "Platform: "+info.Platform)
	if info.BuildUser != "" && info.BuildUser != "unknown" {
		lines = append(lines, "User: "+info.BuildUser)
	}

	return strings.Join(lines, "\n")
}

// UserAgent identifies vedit to code-edit endpoints.
func UserAgent() string {
	return fmt.Sprintf("vedit/%s (%s)", GetVersion(), runtime.GOOS)
}

// IsRelease reports whether this is a tagged build.
func IsRelease() bool {
	v := GetVersion()
	return v != devVersion && !strings.HasPrefix(v, devVersion+"-")
}

// IsDirty returns true if the working directory was dirty when built
func IsDirty() bool {
	return buildSetting("vcs.modified") == "true"
}

func buildSetting(key string) string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	for _, setting := range info.Settings {
		if setting.Key == key {
			return setting.Value
		}
	}
	return ""
}

var timeFormats = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05.000Z",
}

// parseISOTime returns the zero time for empty or unparseable input.
func parseISOTime(s string) time.Time {
	if s == "" || s == "unknown" {
		return time.Time{}
	}
	for _, layout := range timeFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
