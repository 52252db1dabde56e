// Package version holds build information set with -ldflags.
package version

var (
	// Version is the release version.
	Version = "dev"
	// Commit is the git commit the binary was built from.
	Commit = "unknown"
)
