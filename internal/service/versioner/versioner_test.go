package versioner

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/mod-version/internal/domain/version"
	"github.com/oshokin/mod-version/internal/repository/scm"
	"github.com/oshokin/mod-version/internal/repository/state"
)

var (
	errTestDescribe = errors.New("test describe error")
	errTestWrite    = errors.New("test write error")
)

// memoryRepository is a minimal in-memory scm.Repository for tests.
type memoryRepository struct {
	// describe is returned from Describe.
	describe string
	// describeErr is returned from Describe when set.
	describeErr error
	// branch is returned from CurrentBranch.
	branch string
}

func (m *memoryRepository) Describe(context.Context) (string, error) {
	return m.describe, m.describeErr
}

func (m *memoryRepository) CurrentBranch(context.Context) (string, error) {
	return m.branch, nil
}

// openMemory returns an Opener that always yields repo.
func openMemory(repo *memoryRepository) Opener {
	return func(string) (scm.Repository, error) {
		return repo, nil
	}
}

// openMissing behaves like a directory outside any git repository.
func openMissing(dir string) (scm.Repository, error) {
	return nil, errors.Join(scm.ErrRepositoryNotFound, errors.New(dir))
}

// failingSink rejects every write.
type failingSink struct{}

func (failingSink) Save(context.Context, string) error {
	return errTestWrite
}

// TestDeriveAndPersist_Repository derives from repository data and persists the line.
func TestDeriveAndPersist_Repository(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	repo := &memoryRepository{describe: "v2.4-17-gabc123", branch: "master"}
	cfg := version.Config{Suffix: "-beta", MinorFreeze: version.NoFreeze, MCVersion: "1.11"}

	res, err := DeriveAndPersist(context.Background(), openMemory(repo), ".", state.WriterSink{W: &buf}, cfg)
	require.NoError(t, err)
	require.False(t, res.Degraded())
	require.Equal(t, "1.11-2.4.17.0-beta", res.Version)
	require.Equal(t, "VERSION=1.11-2.4.17.0-beta", buf.String())
}

// TestDeriveAndPersist_NoRepository falls back to the defaults and still persists.
func TestDeriveAndPersist_NoRepository(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	cfg := version.Config{MinorFreeze: version.NoFreeze, MCVersion: "1.11"}

	res, err := DeriveAndPersist(context.Background(), openMissing, ".", state.WriterSink{W: &buf}, cfg)
	require.NoError(t, err)
	require.True(t, res.Degraded())
	require.ErrorIs(t, res.Reason, version.ErrMalformedDescribe)
	// Branch defaults to master, so no branch suffix.
	require.Equal(t, "1.11-UNKNOWN_VERSION", res.Version)
	require.Equal(t, "VERSION=1.11-UNKNOWN_VERSION", buf.String())
}

// TestDeriveAndPersist_QueryFailure degrades when describe cannot be computed.
func TestDeriveAndPersist_QueryFailure(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	repo := &memoryRepository{describeErr: errTestDescribe, branch: "dev"}
	cfg := version.Config{MinorFreeze: version.NoFreeze, MCVersion: "1.11"}

	res, err := DeriveAndPersist(context.Background(), openMemory(repo), ".", state.WriterSink{W: &buf}, cfg)
	require.NoError(t, err)
	require.True(t, res.Degraded())
	require.Equal(t, "1.11-UNKNOWN_VERSION-dev", res.Version)
}

// TestDeriveAndPersist_SinkFailure surfaces write errors.
func TestDeriveAndPersist_SinkFailure(t *testing.T) {
	t.Parallel()

	repo := &memoryRepository{describe: "v2.4", branch: "master"}
	cfg := version.Config{MinorFreeze: version.NoFreeze, MCVersion: "1.11"}

	res, err := DeriveAndPersist(context.Background(), openMemory(repo), ".", failingSink{}, cfg)
	require.ErrorIs(t, err, errTestWrite)
	require.Equal(t, "1.11-2.4.0.0", res.Version)
}

// TestRun_WritesVersionFile loads settings from YAML and writes VERSION into the project directory.
func TestRun_WritesVersionFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	configPath := filepath.Join(dir, "mod-version.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(
		"forge_version: 1.11-13.19.0.2148\nversion_minor_freeze: \"10\"\n"), 0o600))

	opts := &Options{
		ConfigPath: configPath,
		Dir:        dir,
		Open:       openMemory(&memoryRepository{describe: "v2.4-17-gabc123", branch: "master"}),
	}

	for i := 0; i < 2; i++ {
		res, err := Run(context.Background(), opts)
		require.NoError(t, err)
		require.Equal(t, "1.11-2.4.10.7", res.Version)

		contents, err := os.ReadFile(filepath.Join(dir, "VERSION"))
		require.NoError(t, err)
		require.Equal(t, "VERSION=1.11-2.4.10.7", string(contents))
	}
}

// TestRun_Overrides applies flag values over the settings file and writes to stdout.
func TestRun_Overrides(t *testing.T) {
	t.Parallel()

	var (
		out         bytes.Buffer
		dir         = t.TempDir()
		suffix      = "-beta"
		mcVersion   = "1.12"
		minorFreeze = ""
	)

	opts := &Options{
		ConfigPath:  filepath.Join(dir, "missing.yaml"),
		Dir:         dir,
		Suffix:      &suffix,
		MCVersion:   &mcVersion,
		MinorFreeze: &minorFreeze,
		Stdout:      true,
		Out:         &out,
		Open:        openMemory(&memoryRepository{describe: "v3.0-2-g1234567", branch: "feature/x"}),
	}

	res, err := Run(context.Background(), opts)
	require.NoError(t, err)
	require.Equal(t, "1.12-3.0.2.0-beta-feature_x", res.Version)
	require.Equal(t, "VERSION=1.12-3.0.2.0-beta-feature_x", out.String())

	_, err = os.Stat(filepath.Join(dir, "VERSION"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

// TestRun_Strict fails after persisting a degraded version.
func TestRun_Strict(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	mcVersion := "1.12"

	opts := &Options{
		ConfigPath: filepath.Join(dir, "missing.yaml"),
		Dir:        dir,
		MCVersion:  &mcVersion,
		Strict:     true,
		Open:       openMissing,
	}

	res, err := Run(context.Background(), opts)
	require.ErrorIs(t, err, ErrDegraded)
	require.ErrorIs(t, err, version.ErrMalformedDescribe)
	require.Equal(t, "1.12-UNKNOWN_VERSION", res.Version)

	stored, err := state.NewFileRepository(filepath.Join(dir, "VERSION")).Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, res.Version, stored)
}

// TestRun_InvalidConfig rejects settings without a platform version.
func TestRun_InvalidConfig(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	_, err := Run(context.Background(), &Options{
		ConfigPath: filepath.Join(dir, "missing.yaml"),
		Dir:        dir,
		Open:       openMissing,
	})
	require.Error(t, err)
}

// TestCurrent_ReadsConfiguredVersionFile reads back what Run wrote to version_file.
func TestCurrent_ReadsConfiguredVersionFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "mod-version.yaml"), []byte(
		"mc_version: \"1.12\"\nversion_file: build/VERSION\n"), 0o600))

	opts := &Options{
		ConfigPath: "mod-version.yaml",
		Dir:        dir,
		Open:       openMemory(&memoryRepository{describe: "v1.2-3-gabc1234", branch: "master"}),
	}

	res, err := Run(context.Background(), opts)
	require.NoError(t, err)
	require.Equal(t, "1.12-1.2.3.0", res.Version)

	_, err = os.Stat(filepath.Join(dir, "build", "VERSION"))
	require.NoError(t, err)

	stored, err := Current(context.Background(), &Options{ConfigPath: "mod-version.yaml", Dir: dir})
	require.NoError(t, err)
	require.Equal(t, res.Version, stored)
}

// TestCurrent_OutputOverride prefers the flag value over version_file.
func TestCurrent_OutputOverride(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	output := "dist/VERSION"

	require.NoError(t, state.NewFileRepository(filepath.Join(dir, output)).Save(context.Background(), "1.12-1.0.0.0"))

	stored, err := Current(context.Background(), &Options{ConfigPath: "mod-version.yaml", Dir: dir, VersionFile: &output})
	require.NoError(t, err)
	require.Equal(t, "1.12-1.0.0.0", stored)

	_, err = Current(context.Background(), &Options{ConfigPath: "mod-version.yaml", Dir: dir})
	require.ErrorIs(t, err, state.ErrNotFound)
}

// TestRun_ConfigRelativeToDir loads a relative config path from the project directory.
func TestRun_ConfigRelativeToDir(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	project := filepath.Join(dir, "sub")
	require.NoError(t, os.MkdirAll(project, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(project, "mod-version.yaml"), []byte(
		"forge_version: 1.11-13.19.0.2148\nversion_suffix: \"-beta\"\n"), 0o600))

	res, err := Run(context.Background(), &Options{
		ConfigPath: "mod-version.yaml",
		Dir:        project,
		Open:       openMemory(&memoryRepository{describe: "v2.4", branch: "master"}),
	})
	require.NoError(t, err)
	require.Equal(t, "1.11-2.4.0.0-beta", res.Version)

	stored, err := state.NewFileRepository(filepath.Join(project, "VERSION")).Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, res.Version, stored)
}
