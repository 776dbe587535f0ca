// Package vars holds build-time version metadata, set via -ldflags.
package vars

import "fmt"

// Version, Commit and BuildDate are overridden at build time with
// -ldflags "-X github.com/mapgrid/routecore/internal/vars.Version=...".
var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

// Print writes version information to stdout.
func Print() {
	fmt.Printf("routecore %s (commit %s, built %s)\n", Version, Commit, BuildDate)
}
