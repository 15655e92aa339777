package modlist

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ChaoticTrials/Caelum/pkg/errors"
)

type recordingRunner struct {
	calls [][]string
}

func (r *recordingRunner) Run(dir string, name string, args ...string) ([]byte, error) {
	r.calls = append(r.calls, append([]string{name}, args...))
	return nil, nil
}

func TestJarURL(t *testing.T) {
	url := JarURL(DefaultBaseURL, "1.1.5")
	assert.Equal(t, "https://github.com/MelanX/ModListCreator/releases/download/v1.1.5/ModListCreator-1.1.5.jar", url)
}

func TestDownload(t *testing.T) {
	t.Run("writes the jar to disk", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("jar-bytes"))
		}))
		defer srv.Close()

		dest := filepath.Join(t.TempDir(), "ModListCreator.jar")
		require.NoError(t, Download(srv.Client(), srv.URL+"/tool.jar", dest))

		content, err := os.ReadFile(dest)
		require.NoError(t, err)
		assert.Equal(t, "jar-bytes", string(content))
	})

	t.Run("non-2xx response is a network error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer srv.Close()

		err := Download(srv.Client(), srv.URL+"/tool.jar", filepath.Join(t.TempDir(), "x.jar"))
		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrNetwork))
	})
}

func TestToolInvocation(t *testing.T) {
	t.Run("markdown with detail flag", func(t *testing.T) {
		runner := &recordingRunner{}
		tool := New(runner, "build/ModListCreator.jar")

		require.NoError(t, tool.Markdown("manifest.json", ".", true))
		require.Len(t, runner.calls, 1)
		assert.Equal(t, []string{
			"java", "-jar", "build/ModListCreator.jar",
			"--md", "--manifest", "manifest.json", "--output", ".", "--detailed",
		}, runner.calls[0])
	})

	t.Run("html", func(t *testing.T) {
		runner := &recordingRunner{}
		tool := New(runner, "build/ModListCreator.jar")

		require.NoError(t, tool.HTML("build/curseforge/manifest.json", "build/curseforge"))
		require.Len(t, runner.calls, 1)
		assert.Equal(t, []string{
			"java", "-jar", "build/ModListCreator.jar",
			"--html", "--manifest", "build/curseforge/manifest.json", "--output", "build/curseforge",
		}, runner.calls[0])
	})
}
