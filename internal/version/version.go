// Package version holds build-time metadata injected via ldflags.
package version

var (
	// Version is the semantic version, overridden at build time.
	Version = "dev"
	// Commit is the git commit hash the binary was built from.
	Commit = ""
	// BuildDate is the build timestamp.
	BuildDate = ""
)
