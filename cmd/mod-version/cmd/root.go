package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/mod-version/internal/config"
	"github.com/oshokin/mod-version/internal/domain/version"
	"github.com/oshokin/mod-version/internal/service/versioner"
	buildinfo "github.com/oshokin/mod-version/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string
	// projectDir is searched for the git repository.
	projectDir string
	// toStdout writes the VERSION line to stdout instead of the version file.
	toStdout bool
	// strict fails the command when the fallback version was used.
	strict bool

	// Raw flag values; only applied when the flag was set.
	versionSuffix      string
	versionMinorFreeze string
	mcVersion          string
	forgeVersion       string
	versionFile        string
	logLevel           string

	// rootCmd derives, persists and prints the mod version.
	rootCmd = &cobra.Command{
		Use:   "mod-version",
		Short: "Derive the mod version from git history.",
		Long: `Derives MCVERSION-MOD.API.MINOR.PATCH[suffix][-branch] from the nearest annotated
vX.Y tag, the number of commits since it and the current branch.

The result is printed to stdout and written as VERSION=<version> to the version file
for later packaging steps. Builds from branches other than master and MC_* carry the
branch name as a suffix. A malformed or missing tag never fails the build: the
version falls back to MCVERSION-UNKNOWN_VERSION unless --strict is given.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			result, err := run(cmd)
			if err != nil {
				return err
			}

			if !toStdout {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), result.Version)
			}

			return nil
		},
	}
)

// Execute runs the mod-version CLI and exits with non-zero status on error.
func Execute() {
	buildinfo.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// run derives and persists the version with the options built from flags.
func run(cmd *cobra.Command) (version.Result, error) {
	// Setup graceful shutdown handling.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	return versioner.Run(ctx, options(cmd))
}

// options maps flags to versioner options. Unset flags leave settings from the file intact.
func options(cmd *cobra.Command) *versioner.Options {
	flags := cmd.Flags()

	changed := func(name string, value *string) *string {
		if flags.Changed(name) {
			return value
		}

		return nil
	}

	return &versioner.Options{
		ConfigPath:   configPath,
		Dir:          projectDir,
		Suffix:       changed("suffix", &versionSuffix),
		MinorFreeze:  changed("minor-freeze", &versionMinorFreeze),
		MCVersion:    changed("mc-version", &mcVersion),
		ForgeVersion: changed("forge-version", &forgeVersion),
		VersionFile:  changed("output", &versionFile),
		LogLevel:     changed("log-level", &logLevel),
		Stdout:       toStdout,
		Out:          cmd.OutOrStdout(),
		Strict:       strict,
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Persistent so every subcommand derives with the same settings.
	flags := rootCmd.PersistentFlags()

	flags.StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file, relative to --dir")
	flags.StringVarP(&projectDir, "dir", "C", ".", "project directory inside the git repository")
	flags.StringVarP(&versionFile, "output", "o", config.DefaultVersionFilename, "version file, relative to --dir")
	flags.StringVar(&versionSuffix, "suffix", "", "version suffix, e.g. -beta")
	flags.StringVar(&versionMinorFreeze, "minor-freeze", "", "pin the minor component; empty disables")
	flags.StringVar(&mcVersion, "mc-version", "", "target MC version")
	flags.StringVar(&forgeVersion, "forge-version", "", "Forge version the MC version is taken from")
	flags.StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")
	flags.BoolVar(&toStdout, "stdout", false, "write VERSION=<version> to stdout instead of the version file")
	flags.BoolVar(&strict, "strict", false, "fail when the version cannot be derived from git")

	rootCmd.AddCommand(explainCmd, currentCmd, expandCmd)
}
