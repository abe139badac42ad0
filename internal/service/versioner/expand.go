package versioner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/oshokin/mod-version/internal/config"
	"github.com/oshokin/mod-version/internal/domain/version"
	"github.com/oshokin/mod-version/internal/logger"
)

const (
	// VersionPlaceholder is replaced in sources, e.g. a @Mod annotation.
	VersionPlaceholder = "@@VERSION@@"
	// ResourceVersionToken is replaced in resources such as mcmod.info.
	ResourceVersionToken = "${version}"
	// ResourceMCVersionToken is replaced with the platform version.
	ResourceMCVersionToken = "${mcversion}"
)

// ExpandOptions controls placeholder substitution.
type ExpandOptions struct {
	// Files are rewritten in place unless OutDir is set.
	Files []string
	// OutDir receives the expanded copies under their base names.
	OutDir string
}

var (
	errNoFiles = errors.New("no files to expand")
	// errDuplicateTarget is returned when two inputs would land on the same output file.
	errDuplicateTarget = errors.New("several files expand to the same target")
)

// Expand substitutes the derived version into the given files.
func Expand(ctx context.Context, result version.Result, opts *ExpandOptions) error {
	if len(opts.Files) == 0 {
		return errNoFiles
	}

	replacer := strings.NewReplacer(
		VersionPlaceholder, result.Version,
		ResourceVersionToken, result.Version,
		ResourceMCVersionToken, result.Components.MCVersion,
	)

	targets := make(map[string]string, len(opts.Files))

	for _, name := range opts.Files {
		target := expandTarget(name, opts.OutDir)
		if previous, ok := targets[target]; ok {
			return fmt.Errorf("%w: %s and %s -> %s", errDuplicateTarget, previous, name, target)
		}

		targets[target] = name
	}

	if opts.OutDir != "" {
		if err := os.MkdirAll(opts.OutDir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}

	for _, name := range opts.Files {
		target := expandTarget(name, opts.OutDir)

		if err := expandFile(replacer, filepath.Clean(name), target); err != nil {
			return err
		}

		logger.InfoKV(ctx, "Expanded version placeholders", "source", name, "target", target)
	}

	return nil
}

// expandTarget is the file written for name: name itself, or its base name inside outDir.
func expandTarget(name, outDir string) string {
	if outDir == "" {
		return filepath.Clean(name)
	}

	return filepath.Join(outDir, filepath.Base(name))
}

func expandFile(replacer *strings.Replacer, source, target string) error {
	contents, err := os.ReadFile(source)
	if err != nil {
		return fmt.Errorf("read %s: %w", source, err)
	}

	mode := os.FileMode(config.DefaultFilePermissions)
	if info, statErr := os.Stat(source); statErr == nil {
		mode = info.Mode().Perm()
	}

	if err = os.WriteFile(target, []byte(replacer.Replace(string(contents))), mode); err != nil {
		return fmt.Errorf("write %s: %w", target, err)
	}

	return nil
}
