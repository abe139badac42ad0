package versioner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/oshokin/mod-version/internal/config"
	"github.com/oshokin/mod-version/internal/domain/version"
	"github.com/oshokin/mod-version/internal/logger"
	"github.com/oshokin/mod-version/internal/repository/scm"
	"github.com/oshokin/mod-version/internal/repository/state"
)

// Opener opens the repository containing a directory.
type Opener func(dir string) (scm.Repository, error)

// Options contains inputs for the CLI entry point.
type Options struct {
	// ConfigPath is the settings YAML file, relative to Dir; a missing file means defaults.
	ConfigPath string
	// Dir is the project directory searched for a git repository.
	Dir string
	// Overrides are applied on top of the loaded settings. Nil means "not set".
	Suffix       *string
	MinorFreeze  *string
	MCVersion    *string
	ForgeVersion *string
	VersionFile  *string
	LogLevel     *string
	// Stdout writes the VERSION line to Out instead of the version file.
	Stdout bool
	// Out receives the VERSION line when Stdout is set.
	Out io.Writer
	// Strict turns a degraded result into an error after it was persisted.
	Strict bool
	// Open overrides the repository opener; defaults to scm.OpenRepository.
	Open Opener
}

// ErrDegraded is returned in strict mode when the fallback version was used.
var ErrDegraded = errors.New("version could not be derived from git")

// Run loads settings, derives the version and persists it.
func Run(ctx context.Context, opts *Options) (version.Result, error) {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "mod-version")

	cfg, err := loadConfig(ctx, opts)
	if err != nil {
		return version.Result{}, err
	}

	deriverConfig, err := cfg.Deriver()
	if err != nil {
		return version.Result{}, err
	}

	open := opts.Open
	if open == nil {
		open = scm.OpenRepository
	}

	result, err := DeriveAndPersist(ctx, open, opts.Dir, newSink(opts, cfg), deriverConfig)
	if err != nil {
		return result, err
	}

	if opts.Strict && result.Degraded() {
		return result, fmt.Errorf("%w: %w", ErrDegraded, result.Reason)
	}

	return result, nil
}

// DeriveAndPersist queries the repository in dir, derives the version and saves it to sink.
// A missing repository or a failed query is logged and replaced by the defaults
// describe="" and branch="master". Only a sink failure is returned.
func DeriveAndPersist(
	ctx context.Context,
	open Opener,
	dir string,
	sink state.Sink,
	cfg version.Config,
) (version.Result, error) {
	describe, branch := queryRepository(ctx, open, dir)

	result := version.Derive(ctx, describe, branch, cfg)

	if err := sink.Save(ctx, result.Version); err != nil {
		return result, fmt.Errorf("persist version: %w", err)
	}

	logger.InfoKV(ctx, "Derived version",
		"version", result.Version, "describe", describe, "branch", branch, "degraded", result.Degraded())

	return result, nil
}

// queryRepository returns the describe string and branch, or their defaults.
func queryRepository(ctx context.Context, open Opener, dir string) (string, string) {
	var (
		describe string
		branch   = version.MasterBranch
	)

	repo, err := open(dir)
	if err != nil {
		if errors.Is(err, scm.ErrRepositoryNotFound) {
			logger.ErrorKV(ctx, "Git repository not found! Version will be incorrect!", "dir", dir)
		} else {
			logger.ErrorKV(ctx, "Unable to open git repository, version will be incorrect", "error", err)
		}

		return describe, branch
	}

	if value, err := repo.Describe(ctx); err != nil {
		logger.ErrorKV(ctx, "Unable to describe HEAD", "error", err)
	} else {
		describe = value
	}

	if value, err := repo.CurrentBranch(ctx); err != nil {
		logger.ErrorKV(ctx, "Unable to read current branch", "error", err)
	} else {
		branch = value
	}

	return describe, branch
}

// Current returns the version stored by the last run, read from the same
// version file Run writes to.
func Current(ctx context.Context, opts *Options) (string, error) {
	ctx = logger.WithName(ctx, "mod-version")

	// Only the version file location matters here, so the platform version is not required.
	cfg, err := readConfig(ctx, opts)
	if err != nil {
		return "", err
	}

	if cfg.VersionFile == "" {
		cfg.VersionFile = config.DefaultVersionFilename
	}

	path := versionFilePath(opts, cfg)

	stored, err := state.NewFileRepository(path).Load(ctx)
	if err != nil {
		return "", fmt.Errorf("%s: %w", path, err)
	}

	return stored, nil
}

// loadConfig reads settings, validates them and sets the log level.
func loadConfig(ctx context.Context, opts *Options) (*config.Config, error) {
	cfg, err := readConfig(ctx, opts)
	if err != nil {
		return nil, err
	}

	if err = config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("validate configuration: %w", err)
	}

	if level, ok := logger.ParseLogLevel(cfg.LogLevel); ok {
		logger.SetLevel(level)
	}

	return cfg, nil
}

// readConfig reads settings and applies overrides.
// A relative config path is resolved against the project directory.
func readConfig(ctx context.Context, opts *Options) (*config.Config, error) {
	configPath := opts.ConfigPath
	if configPath == "" {
		configPath = config.DefaultConfigFilename
	}

	configPath = inProjectDir(opts.Dir, configPath)

	if _, statErr := os.Stat(configPath); errors.Is(statErr, os.ErrNotExist) {
		logger.DebugKV(ctx, "Configuration file not found, using defaults", "path", configPath)
	}

	cfg, err := config.LoadOptional(configPath)
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}

	override(&cfg.VersionSuffix, opts.Suffix)
	override(&cfg.VersionMinorFreeze, opts.MinorFreeze)
	override(&cfg.MCVersion, opts.MCVersion)
	override(&cfg.ForgeVersion, opts.ForgeVersion)
	override(&cfg.VersionFile, opts.VersionFile)
	override(&cfg.LogLevel, opts.LogLevel)

	return cfg, nil
}

// newSink picks the state sink: stdout, or the version file.
//
//nolint:ireturn // The sink is chosen at runtime.
func newSink(opts *Options, cfg *config.Config) state.Sink {
	if opts.Stdout && opts.Out != nil {
		return state.WriterSink{W: opts.Out}
	}

	return state.NewFileRepository(versionFilePath(opts, cfg))
}

// versionFilePath resolves the configured version file against the project directory.
func versionFilePath(opts *Options, cfg *config.Config) string {
	return inProjectDir(opts.Dir, cfg.VersionFile)
}

func inProjectDir(dir, path string) string {
	if filepath.IsAbs(path) || dir == "" {
		return path
	}

	return filepath.Join(dir, path)
}

func override(dst, src *string) {
	if src != nil {
		*dst = *src
	}
}
