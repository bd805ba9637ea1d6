// Package version reports which flatq build is running.
package version

import (
	"runtime/debug"
	"strconv"
	"sync"

	"github.com/cespare/xxhash/v2"
)

const Version = "0.1.0"

// Overridden with -ldflags "-X github.com/standardbeagle/flatq/internal/version.GitCommit=...".
var (
	BuildDate = "development"
	GitCommit = "unknown"
)

// Build describes the running binary.
type Build struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Date      string `json:"date"`
	Modified  bool   `json:"modified,omitempty"`
	GoVersion string `json:"go_version,omitempty"`
	ID        string `json:"build_id"`
}

var (
	current     Build
	currentOnce sync.Once
)

// Current returns the build details, filling in the commit and date from
// the embedded VCS settings when ldflags did not set them.
func Current() Build {
	currentOnce.Do(func() {
		current = readBuild(debug.ReadBuildInfo())
	})
	return current
}

func readBuild(info *debug.BuildInfo, ok bool) Build {
	b := Build{Version: Version, Commit: GitCommit, Date: BuildDate}
	if !ok {
		b.ID = Version + "-" + GitCommit
		return b
	}
	b.GoVersion = info.GoVersion

	h := xxhash.New()
	h.WriteString(info.GoVersion)
	h.WriteString(info.Main.Path)
	h.WriteString(info.Main.Version)
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			if b.Commit == "unknown" && len(s.Value) >= 7 {
				b.Commit = s.Value[:7]
			}
		case "vcs.time":
			if b.Date == "development" {
				b.Date = s.Value
			}
		case "vcs.modified":
			b.Modified = s.Value == "true"
		default:
			continue
		}
		h.WriteString(s.Key)
		h.WriteString(s.Value)
	}
	b.ID = strconv.FormatUint(h.Sum64(), 16)
	return b
}

func Info() string {
	return Version
}

// FullInfo is the one-line version banner.
func FullInfo() string {
	b := Current()
	s := "flatq " + b.Version + " (commit: " + b.Commit
	if b.Modified {
		s += "+dirty"
	}
	return s + ", built: " + b.Date + ")"
}

// BuildID fingerprints the binary so two builds of one version differ.
func BuildID() string {
	return Current().ID
}
