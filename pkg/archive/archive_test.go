package archive

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ChaoticTrials/Caelum/pkg/errors"
)

func TestZipDir(t *testing.T) {
	t.Run("archives files and directories", func(t *testing.T) {
		src := t.TempDir()
		require.NoError(t, os.MkdirAll(filepath.Join(src, "overrides", "config"), 0755))
		require.NoError(t, os.WriteFile(filepath.Join(src, "manifest.json"), []byte("{}"), 0644))
		require.NoError(t, os.WriteFile(filepath.Join(src, "overrides", "config", "mod.toml"), []byte("x = 1"), 0644))

		zipPath := filepath.Join(t.TempDir(), "curseforge.zip")
		require.NoError(t, ZipDir(src, zipPath))

		names, err := List(zipPath)
		require.NoError(t, err)
		assert.Contains(t, names, "manifest.json")
		assert.Contains(t, names, "overrides/")
		assert.Contains(t, names, "overrides/config/mod.toml")
	})

	t.Run("keeps empty directories", func(t *testing.T) {
		src := t.TempDir()
		require.NoError(t, os.MkdirAll(filepath.Join(src, "mods"), 0755))

		zipPath := filepath.Join(t.TempDir(), "server.zip")
		require.NoError(t, ZipDir(src, zipPath))

		names, err := List(zipPath)
		require.NoError(t, err)
		assert.Equal(t, []string{"mods/"}, names)
	})

	t.Run("round trips file contents", func(t *testing.T) {
		src := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(src, "server.txt"), []byte("1.19.2/43.2.0\n"), 0644))

		zipPath := filepath.Join(t.TempDir(), "server.zip")
		require.NoError(t, ZipDir(src, zipPath))

		r, err := zip.OpenReader(zipPath)
		require.NoError(t, err)
		defer func() { _ = r.Close() }()

		require.Len(t, r.File, 1)
		rc, err := r.File[0].Open()
		require.NoError(t, err)
		defer func() { _ = rc.Close() }()

		content, err := io.ReadAll(rc)
		require.NoError(t, err)
		assert.Equal(t, "1.19.2/43.2.0\n", string(content))
	})

	t.Run("missing source is a not found error", func(t *testing.T) {
		err := ZipDir(filepath.Join(t.TempDir(), "nope"), filepath.Join(t.TempDir(), "out.zip"))
		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrNotFound))
	})
}
