// Package version holds build metadata stamped in with -ldflags.
package version

// Set via -ldflags "-X github.com/clawd-xsl/android-remote/internal/version.Version=...".
var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)
