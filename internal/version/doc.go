// Package version exposes build metadata of the mod-version tool itself.
//
// Version, Commit and BuildTime are injected at build time via Go ldflags.
// When they are not, Version falls back to the module version recorded by
// the Go toolchain, so `go install` builds still report something useful.
package version
