// Package version holds build metadata injected via ldflags.
package version

// Overridden at build time, e.g.
// -ldflags "-X .../internal/version.Version=v1.2.0".
var (
	Version = "dev"
	Commit  = "unknown"
)
