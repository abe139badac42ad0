// Package versioner wires the version deriver to its collaborators.
//
// DeriveAndPersist queries git, derives the version and hands it to a state
// sink. Run is the CLI entry point that loads settings first. Explain renders
// the derived components as a table and Expand substitutes the version into
// resource files such as mcmod.info.
package versioner
