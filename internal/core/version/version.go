// Package version exposes the identity stamped into the binary at link time.
package version

// BuildInfo is what /meta/version serves.
type BuildInfo struct {
	Service string `json:"service"`
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}

// Info snapshots the stamped build identity. Unstamped builds answer with
// the dev placeholders.
func Info() BuildInfo {
	// Set via -ldflags "-X 'newshound/internal/core/version.version=v0.0.1'
	// -X 'newshound/internal/core/version.commit=abcd' -X 'newshound/internal/core/version.date=2026-08-01'"
	return BuildInfo{
		Service: "newshound-api",
		Version: version,
		Commit:  commit,
		Date:    date,
	}
}

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)
