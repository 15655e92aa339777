// Package vcs wraps the git porcelain commands the release pipeline needs.
package vcs

import (
	"strings"

	"github.com/rs/zerolog"

	"github.com/ChaoticTrials/Caelum/pkg/executor"
	"github.com/ChaoticTrials/Caelum/pkg/logging"
)

// Git runs git commands in a fixed working directory.
type Git struct {
	runner executor.Runner
	dir    string
	logger zerolog.Logger
}

// NewGit creates a Git wrapper rooted at dir
func NewGit(runner executor.Runner, dir string) *Git {
	return &Git{
		runner: runner,
		dir:    dir,
		logger: logging.GetLogger("vcs"),
	}
}

// Head returns the current commit id
func (g *Git) Head() (string, error) {
	out, err := g.runner.Run(g.dir, "git", "rev-parse", "HEAD")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

// AddAll stages every change in the working tree
func (g *Git) AddAll() error {
	_, err := g.runner.Run(g.dir, "git", "add", ".")
	return err
}

// Commit records the staged changes
func (g *Git) Commit(message string) error {
	g.logger.Info().Str("message", message).Msg("Committing staged changes")
	_, err := g.runner.Run(g.dir, "git", "commit", "-m", message)
	return err
}

// Push publishes the current branch to its upstream
func (g *Git) Push() error {
	_, err := g.runner.Run(g.dir, "git", "push")
	return err
}

// LatestTag returns the most recent reachable tag, or an error when the
// repository has none.
func (g *Git) LatestTag() (string, error) {
	out, err := g.runner.Run(g.dir, "git", "describe", "--tags", "--abbrev=0")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

// ShowFile returns the contents of path as of the given revision
func (g *Git) ShowFile(rev, path string) ([]byte, error) {
	return g.runner.Run(g.dir, "git", "show", rev+":"+path)
}
