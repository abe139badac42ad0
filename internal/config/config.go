package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/oshokin/mod-version/internal/domain/version"
	"github.com/oshokin/mod-version/internal/logger"
)

// Config holds the version settings of a build.
type Config struct {
	// VersionSuffix is appended after the numeric version, e.g. "-beta".
	VersionSuffix string `yaml:"version_suffix"`
	// VersionMinorFreeze is empty or a non-negative integer pinning the minor component.
	VersionMinorFreeze string `yaml:"version_minor_freeze"`
	// MCVersion is the target platform version. Derived from ForgeVersion when empty.
	MCVersion string `yaml:"mc_version"`
	// ForgeVersion is the Forge dependency version, e.g. "1.11-13.19.0.2148".
	ForgeVersion string `yaml:"forge_version"`
	// VersionFile is where the VERSION=<version> line is written.
	VersionFile string `yaml:"version_file"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
}

const (
	// DefaultConfigFilename is the default filename for version settings.
	DefaultConfigFilename = "mod-version.yaml"

	// DefaultVersionFilename is the default state file consumed by packaging steps.
	DefaultVersionFilename = "VERSION"

	// DefaultFilePermissions is the default file permission for written files.
	DefaultFilePermissions = 0o644

	// forgeVersionSeparator splits the platform version from the Forge build.
	forgeVersionSeparator = "-"
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errMCVersionRequired is returned when neither mc_version nor forge_version is set.
	errMCVersionRequired = errors.New("mc_version or forge_version must be provided")
	// errInvalidMinorFreeze is returned for a minor freeze that is not a non-negative integer.
	errInvalidMinorFreeze = errors.New("version_minor_freeze must be empty or a non-negative integer")
	// errInvalidLogLevel is returned for an unknown log level.
	errInvalidLogLevel = errors.New("unknown log level")
)

// Load reads configuration from the provided path and validates essential fields.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	return &cfg, nil
}

// LoadOptional is like Load but returns an empty Config when the file does not exist.
func LoadOptional(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return new(Config), nil
	}

	return cfg, err
}

// Save writes the configuration to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate checks the provided settings and fills defaults.
func Validate(settings *Config) error {
	if settings == nil {
		return errConfigIsNotSet
	}

	if settings.ResolveMCVersion() == "" {
		return errMCVersionRequired
	}

	if _, err := settings.MinorFreeze(); err != nil {
		return err
	}

	if settings.LogLevel != "" {
		if _, ok := logger.ParseLogLevel(settings.LogLevel); !ok {
			return fmt.Errorf("%w: %q", errInvalidLogLevel, settings.LogLevel)
		}
	}

	// Set default version file if not specified
	if settings.VersionFile == "" {
		settings.VersionFile = DefaultVersionFilename
	}

	return nil
}

// ResolveMCVersion returns MCVersion, or ForgeVersion up to its first "-".
func (c *Config) ResolveMCVersion() string {
	if c.MCVersion != "" {
		return c.MCVersion
	}

	mcVersion, _, _ := strings.Cut(c.ForgeVersion, forgeVersionSeparator)

	return mcVersion
}

// MinorFreeze parses VersionMinorFreeze; an empty value yields version.NoFreeze.
func (c *Config) MinorFreeze() (int, error) {
	raw := strings.TrimSpace(c.VersionMinorFreeze)
	if raw == "" {
		return version.NoFreeze, nil
	}

	freeze, err := strconv.Atoi(raw)
	if err != nil || freeze < 0 {
		return 0, fmt.Errorf("%w: %q", errInvalidMinorFreeze, c.VersionMinorFreeze)
	}

	return freeze, nil
}

// Deriver converts the settings into the deriver configuration.
func (c *Config) Deriver() (version.Config, error) {
	freeze, err := c.MinorFreeze()
	if err != nil {
		return version.Config{}, err
	}

	mcVersion := c.ResolveMCVersion()
	if mcVersion == "" {
		return version.Config{}, errMCVersionRequired
	}

	return version.Config{
		Suffix:      c.VersionSuffix,
		MinorFreeze: freeze,
		MCVersion:   mcVersion,
	}, nil
}
