package version

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Reason names why a describe string could not be parsed.
type Reason string

const (
	// ReasonEmpty means the describe string was empty.
	ReasonEmpty Reason = "empty describe"
	// ReasonBadTag means the tag is not exactly vX.Y.
	ReasonBadTag Reason = "tag is not in vX.Y form"
	// ReasonBadCommitCount means the commits-since-tag field is not a non-negative integer.
	ReasonBadCommitCount Reason = "commit count is not a non-negative integer"
)

// ErrMalformedDescribe matches every *FormatError via errors.Is.
var ErrMalformedDescribe = errors.New("malformed describe")

// FormatError reports an unparseable describe string.
type FormatError struct {
	// Describe is the offending input.
	Describe string
	// Reason names the failed check.
	Reason Reason
}

// Error implements error.
func (e *FormatError) Error() string {
	return fmt.Sprintf("describe %q in unknown/incorrect format: %s", e.Describe, e.Reason)
}

// Is makes errors.Is(err, ErrMalformedDescribe) succeed.
func (e *FormatError) Is(target error) bool {
	return target == ErrMalformedDescribe
}

// Describe is a parsed describe string.
type Describe struct {
	// ModAndAPI is the tag without its leading "v", e.g. "2.4".
	ModAndAPI string
	// CommitsSinceTag is zero for a bare tag.
	CommitsSinceTag int
}

const (
	tagPrefix      = 'v'
	partsSeparator = "-"
	tagSeparator   = "."
)

// ParseDescribe parses "vX.Y" or "vX.Y-N[-...]".
// Fields after the commit count, usually the abbreviated hash, are ignored.
func ParseDescribe(describe string) (Describe, error) {
	if describe == "" {
		return Describe{}, &FormatError{Describe: describe, Reason: ReasonEmpty}
	}

	tag, rest, hasCount := strings.Cut(describe, partsSeparator)
	if !isBaseTag(tag) {
		return Describe{}, &FormatError{Describe: describe, Reason: ReasonBadTag}
	}

	parsed := Describe{ModAndAPI: tag[1:]}
	if !hasCount {
		return parsed, nil
	}

	count, _, _ := strings.Cut(rest, partsSeparator)
	if !isDigits(count) {
		return Describe{}, &FormatError{Describe: describe, Reason: ReasonBadCommitCount}
	}

	n, err := strconv.Atoi(count)
	if err != nil {
		return Describe{}, &FormatError{Describe: describe, Reason: ReasonBadCommitCount}
	}

	parsed.CommitsSinceTag = n

	return parsed, nil
}

// isBaseTag reports whether s is exactly v<digits>.<digits>.
func isBaseTag(s string) bool {
	if len(s) < 2 || s[0] != tagPrefix {
		return false
	}

	major, minor, ok := strings.Cut(s[1:], tagSeparator)

	return ok && isDigits(major) && isDigits(minor)
}

// isDigits reports whether s is a non-empty run of ASCII digits.
func isDigits(s string) bool {
	if s == "" {
		return false
	}

	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}

	return true
}
