package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"time"
)

// Set at build time:
//
//	go build -ldflags="-X github.com/muurk/powerpack/internal/version.Version=v1.2.3 \
//	                   -X github.com/muurk/powerpack/internal/version.Commit=abc123"
//
// Unset values are filled from the VCS stamp in the binary's build info.
var (
	Version = ""
	Commit  = ""
)

// Info describes the running binary
type Info struct {
	Version   string    `json:"version"`
	Commit    string    `json:"commit"`
	Dirty     bool      `json:"dirty,omitempty"`
	BuiltAt   time.Time `json:"built_at,omitempty"`
	GoVersion string    `json:"go_version"`
	Platform  string    `json:"platform"`
}

var current = load()

func init() {
	Version = current.Version
	Commit = current.Commit
}

func load() Info {
	info := Info{
		Version:   Version,
		Commit:    Commit,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}

	if bi, ok := debug.ReadBuildInfo(); ok {
		applyBuildSettings(&info, bi.Settings)
	}

	if info.Version == "" {
		if info.BuiltAt.IsZero() {
			info.Version = "dev"
		} else {
			info.Version = "dev-" + info.BuiltAt.Format("20060102")
		}
	}
	if info.Commit == "" {
		info.Commit = "unknown"
	}
	return info
}

func applyBuildSettings(info *Info, settings []debug.BuildSetting) {
	for _, s := range settings {
		switch s.Key {
		case "vcs.revision":
			if info.Commit == "" {
				info.Commit = shortHash(s.Value)
			}
		case "vcs.modified":
			info.Dirty = s.Value == "true"
		case "vcs.time":
			if t, err := time.Parse(time.RFC3339, s.Value); err == nil {
				info.BuiltAt = t
			}
		}
	}
	if info.Dirty && info.Commit != "" {
		info.Commit += "-dirty"
	}
}

func shortHash(rev string) string {
	if len(rev) > 7 {
		return rev[:7]
	}
	return rev
}

// Get returns the build information of the running binary
func Get() Info {
	return current
}

// Full returns the version string including commit
func Full() string {
	return fmt.Sprintf("%s (commit: %s)", current.Version, current.Commit)
}

// UserAgent is sent with every API request
func UserAgent() string {
	return fmt.Sprintf("powerpack/%s (%s)", current.Version, current.Platform)
}
