// Package version contains the version derivation rules of a mod build.
//
// Derive turns a git describe string, a branch name and a Config into a
// Result of the form MCVERSION-MOD.API.MINOR.PATCH[suffix][-branch]. It never
// fails: malformed input yields the UNKNOWN_VERSION fallback, and the Result
// carries the reason so callers can tell a degraded build from a clean one.
package version
