// Package version provides build-time version information.
package version

import "fmt"

// Name is the product name shown in titles and dialogs.
const Name = "Tint-Care"

// These variables are set at build time using -ldflags
var (
	// Version is the semantic version
	Version = "1.0.0"

	// BuildTime is the UTC time when the binary was built
	BuildTime = "unknown"

	// GitCommit is the git commit hash
	GitCommit = "unknown"
)

// String returns a one-line version banner.
func String() string {
	return fmt.Sprintf("%s %s (%s, built %s)", Name, Version, GitCommit, BuildTime)
}
