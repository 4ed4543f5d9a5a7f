package buildconfig

import "fmt"

// Build-time variables injected via ldflags
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func Version() string {
	return version
}

func Commit() string {
	return commit
}

// VersionInfo returns full version information for /metrics and trustctl version.
func VersionInfo() map[string]string {
	return map[string]string{
		"version":    version,
		"commit":     commit,
		"build_date": buildDate,
	}
}

func String() string {
	return fmt.Sprintf("trustmind %s (commit %s, built %s)", version, commit, buildDate)
}
