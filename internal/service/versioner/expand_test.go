package versioner

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/mod-version/internal/domain/version"
)

const mcmodInfo = `[{
  "modid": "cubicchunks",
  "version": "${version}",
  "mcversion": "${mcversion}"
}]`

// TestExpand_InPlace rewrites resource and source placeholders.
func TestExpand_InPlace(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	info := filepath.Join(dir, "mcmod.info")
	source := filepath.Join(dir, "CubicChunks.java")

	require.NoError(t, os.WriteFile(info, []byte(mcmodInfo), 0o600))
	require.NoError(t, os.WriteFile(source, []byte(`String VERSION = "@@VERSION@@";`), 0o600))

	res := version.Derive(context.Background(), "v2.4-17-gabc123", "master",
		version.Config{MinorFreeze: version.NoFreeze, MCVersion: "1.11"})

	require.NoError(t, Expand(context.Background(), res, &ExpandOptions{Files: []string{info, source}}))

	got, err := os.ReadFile(info)
	require.NoError(t, err)
	require.Contains(t, string(got), `"version": "1.11-2.4.17.0"`)
	require.Contains(t, string(got), `"mcversion": "1.11"`)

	got, err = os.ReadFile(source)
	require.NoError(t, err)
	require.Equal(t, `String VERSION = "1.11-2.4.17.0";`, string(got))
}

// TestExpand_OutDir leaves the sources untouched.
func TestExpand_OutDir(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	info := filepath.Join(dir, "mcmod.info")
	outDir := filepath.Join(dir, "build", "resources")

	require.NoError(t, os.WriteFile(info, []byte(mcmodInfo), 0o600))

	res := version.Derive(context.Background(), "v1.0", "master",
		version.Config{MinorFreeze: version.NoFreeze, MCVersion: "1.12"})

	require.NoError(t, Expand(context.Background(), res, &ExpandOptions{Files: []string{info}, OutDir: outDir}))

	original, err := os.ReadFile(info)
	require.NoError(t, err)
	require.Equal(t, mcmodInfo, string(original))

	expanded, err := os.ReadFile(filepath.Join(outDir, "mcmod.info"))
	require.NoError(t, err)
	require.Contains(t, string(expanded), `"version": "1.12-1.0.0.0"`)
}

// TestExpand_Errors reports missing input.
func TestExpand_Errors(t *testing.T) {
	t.Parallel()

	require.ErrorIs(t, Expand(context.Background(), version.Result{}, &ExpandOptions{}), errNoFiles)

	err := Expand(context.Background(), version.Result{Version: "x"},
		&ExpandOptions{Files: []string{filepath.Join(t.TempDir(), "missing.info")}})
	require.ErrorIs(t, err, os.ErrNotExist)
}

// TestExpand_DuplicateTarget refuses inputs sharing a base name in one output directory.
func TestExpand_DuplicateTarget(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	first := filepath.Join(dir, "client", "mcmod.info")
	second := filepath.Join(dir, "server", "mcmod.info")
	outDir := filepath.Join(dir, "out")

	for _, name := range []string{first, second} {
		require.NoError(t, os.MkdirAll(filepath.Dir(name), 0o755))
		require.NoError(t, os.WriteFile(name, []byte(mcmodInfo), 0o600))
	}

	res := version.Derive(context.Background(), "v1.0", "master",
		version.Config{MinorFreeze: version.NoFreeze, MCVersion: "1.12"})

	err := Expand(context.Background(), res, &ExpandOptions{Files: []string{first, second}, OutDir: outDir})
	require.ErrorIs(t, err, errDuplicateTarget)

	// Nothing was written.
	_, err = os.Stat(filepath.Join(outDir, "mcmod.info"))
	require.ErrorIs(t, err, os.ErrNotExist)

	// The same file listed twice in place is rejected too.
	err = Expand(context.Background(), res, &ExpandOptions{Files: []string{first, first}})
	require.ErrorIs(t, err, errDuplicateTarget)
}
