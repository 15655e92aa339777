package changelog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ChaoticTrials/Caelum/pkg/errors"
)

const currentManifest = `{
  "minecraft": {
    "version": "1.19.2",
    "modLoaders": [{"id": "forge-43.2.0", "primary": true}]
  },
  "name": "Caelum",
  "version": "1.2.0",
  "files": [
    {"projectID": 100, "fileID": 12, "required": true},
    {"projectID": 300, "fileID": 30, "required": true}
  ]
}`

const previousManifest = `{
  "minecraft": {
    "version": "1.19.2",
    "modLoaders": [{"id": "forge-43.2.0", "primary": true}]
  },
  "name": "Caelum",
  "version": "1.1.0",
  "files": [
    {"projectID": 100, "fileID": 11, "required": true},
    {"projectID": 200, "fileID": 22, "required": true}
  ]
}`

type fakeRunner struct {
	tag      string
	manifest string
}

func (f *fakeRunner) Run(dir string, name string, args ...string) ([]byte, error) {
	if name == "git" && args[0] == "describe" {
		if f.tag == "" {
			return nil, errors.New(errors.ErrExternalTool, "no tags")
		}
		return []byte(f.tag + "\n"), nil
	}
	if name == "git" && args[0] == "show" {
		return []byte(f.manifest), nil
	}
	return nil, errors.Newf(errors.ErrExternalTool, "unexpected command %s", name)
}

func TestGenerate(t *testing.T) {
	t.Run("diffs against the previous release tag", func(t *testing.T) {
		root := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(root, "manifest.json"), []byte(currentManifest), 0644))

		result, err := Generate(Options{
			Root:   root,
			Runner: &fakeRunner{tag: "v1.1.0", manifest: previousManifest},
		})
		require.NoError(t, err)

		assert.Equal(t, "1.2.0", result.Version)
		assert.Equal(t, filepath.Join(root, "changelogs", "changelog-1.2.0.md"), result.Path)
		assert.Contains(t, result.Content, "## Added")
		assert.Contains(t, result.Content, "Project 300")
		assert.Contains(t, result.Content, "## Updated")
		assert.Contains(t, result.Content, "Project 100")
		assert.Contains(t, result.Content, "## Removed")
		assert.Contains(t, result.Content, "Project 200")
	})

	t.Run("falls back to pack.json", func(t *testing.T) {
		root := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(root, "pack.json"), []byte(currentManifest), 0644))

		result, err := Generate(Options{
			Root:   root,
			Runner: &fakeRunner{},
		})
		require.NoError(t, err)
		assert.Contains(t, result.Content, "Initial release.")
	})

	t.Run("unreadable previous manifest falls back to initial release", func(t *testing.T) {
		root := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(root, "manifest.json"), []byte(currentManifest), 0644))

		result, err := Generate(Options{
			Root:   root,
			Runner: &fakeRunner{tag: "v1.1.0", manifest: "not json"},
		})
		require.NoError(t, err)
		assert.Contains(t, result.Content, "Initial release.")
	})

	t.Run("missing manifest and pack definition is an error", func(t *testing.T) {
		_, err := Generate(Options{
			Root:   t.TempDir(),
			Runner: &fakeRunner{},
		})
		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrNotFound))
	})
}
