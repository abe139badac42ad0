package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// develVersion is what the toolchain records for builds outside a module download.
const develVersion = "(devel)"

var (
	// Version is the semantic version of the build. It can be overridden via ldflags.
	Version = ""
	// Commit is the short git SHA embedded at build time (or "none").
	Commit = "none"
	// BuildTime is the UTC build timestamp embedded at build time.
	BuildTime = "unknown"
)

// Short returns only the version string.
func Short() string {
	if Version != "" {
		return Version
	}

	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != develVersion {
		return info.Main.Version
	}

	return "dev"
}

// Full returns a human-readable version string with commit, build time and Go version.
func Full() string {
	return fmt.Sprintf("mod-version %s, commit: %s, built at: %s, %s",
		Short(), Commit, BuildTime, runtime.Version())
}
