// Package changelog generates the release notes for the current manifest
// without building any archives.
package changelog

import (
	"os"
	"path/filepath"

	"github.com/ChaoticTrials/Caelum/pkg/changelog"
	"github.com/ChaoticTrials/Caelum/pkg/errors"
	"github.com/ChaoticTrials/Caelum/pkg/executor"
	"github.com/ChaoticTrials/Caelum/pkg/filesystem"
	"github.com/ChaoticTrials/Caelum/pkg/logging"
	"github.com/ChaoticTrials/Caelum/pkg/manifest"
	"github.com/ChaoticTrials/Caelum/pkg/types"
	"github.com/ChaoticTrials/Caelum/pkg/vcs"
)

// Options configures changelog generation.
type Options struct {
	Root   string
	FS     types.FS
	Runner executor.Runner
}

// Result carries the generated changelog.
type Result struct {
	Path    string
	Content string
	Version string
}

// Generate produces changelogs/changelog-<version>.md from manifest.json
// (falling back to pack.json when no manifest has been generated yet),
// diffed against the manifest at the latest release tag.
func Generate(opts Options) (*Result, error) {
	logger := logging.GetLogger("commands.changelog")

	fsys := opts.FS
	if fsys == nil {
		fsys = filesystem.NewOS()
	}
	runner := opts.Runner
	if runner == nil {
		runner = executor.NewOS()
	}

	current, err := manifest.Load(fsys, filepath.Join(opts.Root, "manifest.json"))
	if errors.IsErrorCode(err, errors.ErrNotFound) {
		current, err = manifest.Load(fsys, filepath.Join(opts.Root, "pack.json"))
	}
	if err != nil {
		return nil, err
	}

	var previous *manifest.Manifest
	git := vcs.NewGit(runner, opts.Root)
	if tag, tagErr := git.LatestTag(); tagErr == nil {
		if data, showErr := git.ShowFile(tag, "manifest.json"); showErr == nil {
			if prev, parseErr := manifest.Parse(data); parseErr == nil {
				previous = prev
			} else {
				logger.Warn().Str("tag", tag).Err(parseErr).Msg("Previous manifest is unreadable, diffing skipped")
			}
		} else {
			logger.Warn().Str("tag", tag).Err(showErr).Msg("No manifest at previous tag, diffing skipped")
		}
	} else {
		logger.Debug().Err(tagErr).Msg("No previous tag, treating as initial release")
	}

	path, err := changelog.Generate(changelog.Options{
		FS:       fsys,
		Dir:      filepath.Join(opts.Root, "changelogs"),
		Current:  current,
		Previous: previous,
	})
	if err != nil {
		return nil, err
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrIOFailure, "cannot read back changelog %s", path)
	}

	return &Result{
		Path:    path,
		Content: string(content),
		Version: current.Version,
	}, nil
}
