package build

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ChaoticTrials/Caelum/pkg/archive"
	"github.com/ChaoticTrials/Caelum/pkg/config"
	"github.com/ChaoticTrials/Caelum/pkg/errors"
)

const packJSON = `{
  "minecraft": {
    "version": "1.19.2",
    "modLoaders": [{"id": "forge-43.2.0", "primary": true}]
  },
  "name": "Caelum",
  "version": "1.2.0",
  "author": "ChaoticTrials",
  "files": [
    {"projectID": 100, "fileID": 11, "required": true},
    {"projectID": 200, "fileID": 22, "required": true}
  ]
}`

// fakeRunner satisfies executor.Runner: java invocations succeed, git
// invocations fail as they would in a tag-less repository.
type fakeRunner struct {
	calls [][]string
}

func (f *fakeRunner) Run(dir string, name string, args ...string) ([]byte, error) {
	f.calls = append(f.calls, append([]string{name}, args...))
	if name == "git" {
		return nil, errors.Newf(errors.ErrExternalTool, "git %s failed", args[0])
	}
	return nil, nil
}

func setupRepo(t *testing.T) string {
	t.Helper()
	root := t.TempDir()

	require.NoError(t, os.WriteFile(filepath.Join(root, "pack.json"), []byte(packJSON), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, ".gitignore"), []byte("*.log\nbuild/\n"), 0644))

	require.NoError(t, os.MkdirAll(filepath.Join(root, "config"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "config", "mod.toml"), []byte("x = 1"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "config", "debug.log"), []byte("noise"), 0644))

	require.NoError(t, os.MkdirAll(filepath.Join(root, "kubejs"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "kubejs", "script.js"), []byte("// js"), 0644))

	require.NoError(t, os.MkdirAll(filepath.Join(root, "serverdata"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "serverdata", "eula.txt"), []byte("eula=true"), 0644))

	return root
}

func testConfig(jarServer string) *config.Config {
	return &config.Config{
		Name:       "Caelum",
		BuildDir:   "build",
		Overrides:  []string{"config", "kubejs"},
		ClientMods: []int{200},
		GitHub:     config.GitHub{Owner: "ChaoticTrials", Repo: "Caelum"},
		ModListCreator: config.ModListCreator{
			Version: "1.1.5",
			BaseURL: jarServer,
		},
	}
}

func newJarServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("fake-jar"))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestBuild(t *testing.T) {
	root := setupRepo(t)
	srv := newJarServer(t)
	runner := &fakeRunner{}

	result, err := Build(Options{
		Root:       root,
		Config:     testConfig(srv.URL),
		Runner:     runner,
		HTTPClient: srv.Client(),
	})
	require.NoError(t, err)

	t.Run("manifest is generated", func(t *testing.T) {
		assert.FileExists(t, result.ManifestPath)
		assert.Equal(t, "1.2.0", result.Manifest.Version)
		assert.Equal(t, "overrides", result.Manifest.Overrides)
	})

	t.Run("changelog is written for the first release", func(t *testing.T) {
		assert.Equal(t, filepath.Join(root, "changelogs", "changelog-1.2.0.md"), result.ChangelogPath)
		content, err := os.ReadFile(result.ChangelogPath)
		require.NoError(t, err)
		assert.Contains(t, string(content), "Initial release.")
	})

	t.Run("jar is downloaded and invoked", func(t *testing.T) {
		assert.FileExists(t, filepath.Join(root, "build", "ModListCreator.jar"))

		var javaCalls int
		for _, call := range runner.calls {
			if call[0] == "java" {
				javaCalls++
			}
		}
		// One markdown run for the repo root, one HTML run for the client pack
		assert.Equal(t, 2, javaCalls)
	})

	t.Run("client archive has overrides filtered through ignore rules", func(t *testing.T) {
		names, err := archive.List(result.ClientZip)
		require.NoError(t, err)

		assert.Contains(t, names, "manifest.json")
		assert.Contains(t, names, "overrides/config/mod.toml")
		assert.Contains(t, names, "overrides/kubejs/script.js")
		assert.NotContains(t, names, "overrides/config/debug.log")
	})

	t.Run("server archive has mod list, server files and overrides at the root", func(t *testing.T) {
		names, err := archive.List(result.ServerZip)
		require.NoError(t, err)

		assert.Contains(t, names, "server.txt")
		assert.Contains(t, names, "server.properties")
		assert.Contains(t, names, "eula.txt")
		assert.Contains(t, names, "config/mod.toml")
		assert.NotContains(t, names, "config/debug.log")
	})

	t.Run("server mod list omits client-only mods", func(t *testing.T) {
		content, err := os.ReadFile(filepath.Join(root, "build", "server", "server.txt"))
		require.NoError(t, err)
		assert.Equal(t, "1.19.2/43.2.0\n100/11\n", string(content))
	})
}

func TestBuildRequiresConfig(t *testing.T) {
	_, err := Build(Options{Root: t.TempDir()})
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
}

func TestBuildMissingPackDefinition(t *testing.T) {
	root := t.TempDir()
	srv := newJarServer(t)

	_, err := Build(Options{
		Root:       root,
		Config:     testConfig(srv.URL),
		Runner:     &fakeRunner{},
		HTTPClient: srv.Client(),
	})
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrNotFound))
}

func TestBuildKeepBuild(t *testing.T) {
	root := setupRepo(t)
	srv := newJarServer(t)

	marker := filepath.Join(root, "build", "marker.txt")
	require.NoError(t, os.MkdirAll(filepath.Dir(marker), 0755))
	require.NoError(t, os.WriteFile(marker, []byte("keep me"), 0644))

	_, err := Build(Options{
		Root:       root,
		Config:     testConfig(srv.URL),
		Runner:     &fakeRunner{},
		HTTPClient: srv.Client(),
		KeepBuild:  true,
	})
	require.NoError(t, err)
	assert.FileExists(t, marker)
}
