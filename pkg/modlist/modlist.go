// Package modlist drives the ModListCreator tool: it fetches the pinned
// jar from its release page and invokes it to render markdown and HTML mod
// lists from a manifest.
package modlist

import (
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/rs/zerolog"

	"github.com/ChaoticTrials/Caelum/pkg/errors"
	"github.com/ChaoticTrials/Caelum/pkg/executor"
	"github.com/ChaoticTrials/Caelum/pkg/logging"
)

// DefaultBaseURL is where ModListCreator releases are hosted.
const DefaultBaseURL = "https://github.com/MelanX/ModListCreator/releases/download"

// JarURL builds the download URL for the given tool version.
func JarURL(baseURL, version string) string {
	return fmt.Sprintf("%s/v%s/ModListCreator-%s.jar", baseURL, version, version)
}

// Download fetches the tool jar to destPath. A non-2xx response is a
// NETWORK error.
func Download(client *http.Client, url, destPath string) error {
	logger := logging.GetLogger("modlist")
	logger.Info().Str("url", url).Msg("Downloading ModListCreator")

	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Get(url)
	if err != nil {
		return errors.Wrapf(err, errors.ErrNetwork, "cannot download %s", url)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errors.Newf(errors.ErrNetwork, "download of %s returned %s", url, resp.Status)
	}

	out, err := os.Create(destPath)
	if err != nil {
		return errors.Wrapf(err, errors.ErrIOFailure, "cannot create %s", destPath)
	}
	defer func() { _ = out.Close() }()

	if _, err := io.Copy(out, resp.Body); err != nil {
		return errors.Wrapf(err, errors.ErrIOFailure, "cannot write %s", destPath)
	}
	return out.Close()
}

// Tool invokes a downloaded ModListCreator jar.
type Tool struct {
	runner  executor.Runner
	jarPath string
	logger  zerolog.Logger
}

// New creates a Tool for the jar at jarPath
func New(runner executor.Runner, jarPath string) *Tool {
	return &Tool{
		runner:  runner,
		jarPath: jarPath,
		logger:  logging.GetLogger("modlist"),
	}
}

// Markdown renders a markdown mod list next to outputDir. The detailed flag
// adds version columns.
func (t *Tool) Markdown(manifestPath, outputDir string, detailed bool) error {
	args := []string{"-jar", t.jarPath, "--md", "--manifest", manifestPath, "--output", outputDir}
	if detailed {
		args = append(args, "--detailed")
	}
	_, err := t.runner.Run("", "java", args...)
	return err
}

// HTML renders an HTML mod list into outputDir
func (t *Tool) HTML(manifestPath, outputDir string) error {
	_, err := t.runner.Run("", "java", "-jar", t.jarPath, "--html", "--manifest", manifestPath, "--output", outputDir)
	return err
}
