package version

import (
	"context"
	"fmt"
	"strings"

	"github.com/oshokin/mod-version/internal/logger"
)

const (
	// NoFreeze disables the minor freeze.
	NoFreeze = -1

	// MasterBranch is the default release branch.
	MasterBranch = "master"

	// PlatformBranchPrefix marks release branches dedicated to one platform version.
	PlatformBranchPrefix = "MC_"

	// UnknownMarker is embedded into the fallback version.
	UnknownMarker = "UNKNOWN_VERSION"
)

// Config holds the externally supplied, per-run derivation settings.
type Config struct {
	// Suffix is appended verbatim after the numeric part, e.g. "-beta".
	Suffix string
	// MinorFreeze pins the minor component; NoFreeze disables it.
	MinorFreeze int
	// MCVersion is the target platform version, e.g. "1.12".
	MCVersion string
}

// Components are the pieces a derived version is assembled from.
type Components struct {
	MCVersion       string
	ModAndAPI       string
	CommitsSinceTag int
	Minor           int
	Patch           int
	MinorFrozen     bool
	Suffix          string
	BranchSuffix    string
}

// Result is the outcome of Derive.
type Result struct {
	// Version is the formatted version string. It is never empty.
	Version string
	// Components is populated in full only when Reason is nil.
	Components Components
	// Reason explains why the fallback was used; nil on success.
	Reason error
}

// Degraded reports whether Version is the UNKNOWN_VERSION fallback.
func (r Result) Degraded() bool {
	return r.Reason != nil
}

// Derive computes the version for a describe string and branch.
// It logs and degrades instead of failing.
func Derive(ctx context.Context, describe, branch string, cfg Config) Result {
	checkPlatformBranch(ctx, branch, cfg.MCVersion)

	components := Components{
		MCVersion:    cfg.MCVersion,
		Suffix:       cfg.Suffix,
		BranchSuffix: BranchSuffix(branch),
	}

	parsed, err := ParseDescribe(describe)
	if err != nil {
		logger.ErrorKV(ctx, "Git describe information in unknown/incorrect format",
			"describe", describe, "reason", err)

		return Result{
			Version: fmt.Sprintf("%s-%s%s%s",
				components.MCVersion, UnknownMarker, components.Suffix, components.BranchSuffix),
			Components: components,
			Reason:     err,
		}
	}

	components.ModAndAPI = parsed.ModAndAPI
	components.CommitsSinceTag = parsed.CommitsSinceTag
	components.Minor = parsed.CommitsSinceTag

	if cfg.MinorFreeze >= 0 {
		components.MinorFrozen = true
		components.Minor = cfg.MinorFreeze
		components.Patch = parsed.CommitsSinceTag - cfg.MinorFreeze

		if components.Patch < 0 {
			logger.WarnKV(ctx, "Fewer commits since tag than the frozen minor, patch is negative",
				"commits_since_tag", parsed.CommitsSinceTag, "minor_freeze", cfg.MinorFreeze)
		}
	}

	return Result{
		Version:    components.String(),
		Components: components,
	}
}

// String formats complete components.
func (c Components) String() string {
	return fmt.Sprintf("%s-%s.%d.%d%s%s",
		c.MCVersion, c.ModAndAPI, c.Minor, c.Patch, c.Suffix, c.BranchSuffix)
}

// BranchSuffix returns "" for release branches and "-<sanitized branch>" otherwise.
func BranchSuffix(branch string) string {
	if branch == MasterBranch || strings.HasPrefix(branch, PlatformBranchPrefix) {
		return ""
	}

	return "-" + SanitizeBranch(branch)
}

// SanitizeBranch replaces every rune outside [a-zA-Z0-9.-] with '_'.
func SanitizeBranch(branch string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-':
			return r
		default:
			return '_'
		}
	}, branch)
}

// checkPlatformBranch warns when an MC_ branch targets another platform version.
func checkPlatformBranch(ctx context.Context, branch, mcVersion string) {
	branchMCVersion, ok := strings.CutPrefix(branch, PlatformBranchPrefix)
	if !ok || branchMCVersion == mcVersion {
		return
	}

	logger.WarnKV(ctx, "Branch version different than project MC version",
		"mc_version", mcVersion, "branch", branch, "branch_version", branchMCVersion)
}
