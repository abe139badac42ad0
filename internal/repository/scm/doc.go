// Package scm queries source control for the inputs of the version deriver:
// a git-describe style string built from annotated tags and the name of the
// checked-out branch.
package scm
