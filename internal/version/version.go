// Package version carries the build stamp of the langloc binary. The
// stamp is written into every session_start event so a log can be traced
// back to the exact presenter build that produced it.
package version

import (
	"fmt"
	"runtime"
)

// Set via ldflags:
//
//	go build -ldflags="-X github.com/andywolf/langloc/internal/version.Version=v1.0.0"
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

// Short returns the bare version, e.g. "v1.2.3" or "dev".
func Short() string {
	return Version
}

func shortCommit() string {
	if len(Commit) > 7 {
		return Commit[:7]
	}
	return Commit
}

// Info returns a one-line stamp:
// "langloc v1.2.3 (commit: abc1234, built: 2024-01-15T10:30:00Z, go: go1.23.x)"
func Info() string {
	return fmt.Sprintf("langloc %s (commit: %s, built: %s, go: %s)",
		Version, shortCommit(), BuildDate, runtime.Version())
}

// Full returns the multi-line form printed by "langloc version -v".
func Full() string {
	return fmt.Sprintf(`langloc %s
  Commit:     %s
  Built:      %s
  Go version: %s
  OS/Arch:    %s/%s`,
		Version, Commit, BuildDate, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
