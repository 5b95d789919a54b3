// Package version reports which build of the service is running
package version

import "runtime/debug"

// set at link time, e.g. -ldflags "-X vera/internal/core/version.version=v1.2.0"
var (
	version = "dev"
	commit  string
	date    string
)

type BuildInfo struct {
	Service string `json:"service"`
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}

var readBuildInfo = debug.ReadBuildInfo

// Info prefers link-time values and falls back to the VCS stamp the go tool embeds
func Info() BuildInfo {
	b := BuildInfo{Service: "vera-api", Version: version, Commit: commit, Date: date}
	if bi, ok := readBuildInfo(); ok {
		for _, s := range bi.Settings {
			switch {
			case s.Key == "vcs.revision" && b.Commit == "":
				b.Commit = s.Value
			case s.Key == "vcs.time" && b.Date == "":
				b.Date = s.Value
			}
		}
	}
	if b.Commit == "" {
		b.Commit = "none"
	}
	if b.Date == "" {
		b.Date = "unknown"
	}
	return b
}
