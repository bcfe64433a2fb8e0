// Package version reports how the typetour binary was built.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
	"time"
)

// Set at build time with -ldflags "-X github.com/conneroisu/typetour/internal/version.Version=...".
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

// BuildInfo contains version and build information
type BuildInfo struct {
	Version   string    `json:"version"`
	GitCommit string    `json:"git_commit"`
	BuildTime time.Time `json:"build_time"`
	GoVersion string    `json:"go_version"`
	Platform  string    `json:"platform"`
	Dirty     bool      `json:"dirty"`
}

// Get returns the build information, filling gaps from the module's VCS
// stamps when ldflags were not set.
func Get() BuildInfo {
	info := BuildInfo{
		Version:   Version,
		GitCommit: GitCommit,
		BuildTime: parseBuildTime(BuildTime),
		GoVersion: runtime.Version(),
		Platform:  fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
	}

	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}
	if info.Version == "dev" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		info.Version = bi.Main.Version
	}
	for _, setting := range bi.Settings {
		switch setting.Key {
		case "vcs.revision":
			if info.GitCommit == "unknown" {
				info.GitCommit = setting.Value
			}
		case "vcs.time":
			if info.BuildTime.IsZero() {
				info.BuildTime = parseBuildTime(setting.Value)
			}
		case "vcs.modified":
			info.Dirty = setting.Value == "true"
		}
	}
	return info
}

// Short renders "typetour v1.2.3 (abcdef1)".
func (b BuildInfo) Short() string {
	var s strings.Builder
	s.WriteString("typetour ")
	s.WriteString(b.Version)
	if b.GitCommit != "unknown" && len(b.GitCommit) >= 7 {
		fmt.Fprintf(&s, " (%s", b.GitCommit[:7])
		if b.Dirty {
			s.WriteString(", dirty")
		}
		s.WriteString(")")
	}
	return s.String()
}

// IsRelease reports whether this is a tagged build.
func (b BuildInfo) IsRelease() bool {
	return b.Version != "dev" && !strings.HasPrefix(b.Version, "dev-") && !b.Dirty
}

func parseBuildTime(value string) time.Time {
	if value == "" || value == "unknown" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}
