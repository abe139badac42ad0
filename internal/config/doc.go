// Package config defines the build settings consumed by the version deriver
// and provides helpers to load, validate and save them in YAML format.
//
// The settings mirror the build properties of the mod: a version suffix, an
// optional minor freeze and the target platform version, given either
// directly or through the Forge version it is embedded in.
package config
