// Package version holds build metadata injected via ldflags:
//
//	-X github.com/bazaarmkt/bazaarmkt/internal/version.Version=v1.4.0
package version

import "fmt"

//nolint:revive // Set via ldflags at build time.
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// String formats the build for startup logs and the health report.
func String() string {
	return fmt.Sprintf("%s (%s, built %s)", Version, Commit, Date)
}
