// Package release runs the full pipeline: build both archives, push the
// release commit and publish everything as a GitHub release.
package release

import (
	"fmt"
	"os"

	"github.com/pterm/pterm"

	"github.com/ChaoticTrials/Caelum/pkg/commands/build"
	"github.com/ChaoticTrials/Caelum/pkg/errors"
	"github.com/ChaoticTrials/Caelum/pkg/executor"
	"github.com/ChaoticTrials/Caelum/pkg/githubapi"
	"github.com/ChaoticTrials/Caelum/pkg/logging"
	"github.com/ChaoticTrials/Caelum/pkg/vcs"
)

// Options extends the build options with publishing settings.
type Options struct {
	Build       build.Options
	Token       string
	Prerelease  bool
	SkipPublish bool
	// GitHubClient overrides the API client, used by tests.
	GitHubClient *githubapi.Client
}

// Result reports the published release.
type Result struct {
	Build     *build.Result
	Tag       string
	ReleaseID int64
	Assets    []string
	Published bool
}

// Release builds the archives and, unless publishing is skipped, commits
// and pushes the staged changes, creates the GitHub release on the pushed
// commit and uploads both archives. There is no partial-success path: any
// failure aborts the run so a half-assembled release is never published.
func Release(opts Options) (*Result, error) {
	logger := logging.GetLogger("commands.release")
	defer logging.LogOperationStart(logger, "release")()

	runner := opts.Build.Runner
	if runner == nil {
		runner = executor.NewOS()
		opts.Build.Runner = runner
	}
	git := vcs.NewGit(runner, opts.Build.Root)

	if head, err := git.Head(); err == nil {
		pterm.Info.Printfln("Prepare release on commit %s", head)
	}

	buildResult, err := build.Build(opts.Build)
	if err != nil {
		return nil, err
	}

	version := buildResult.Manifest.Version
	tag := "v" + version
	result := &Result{Build: buildResult, Tag: tag}

	if opts.SkipPublish {
		logger.Info().Str("tag", tag).Msg("Publishing skipped")
		return result, nil
	}
	if opts.Token == "" {
		return nil, errors.New(errors.ErrConfigValid, "publishing requires a GitHub token")
	}

	pterm.Info.Println("Push release commit")
	if err := git.AddAll(); err != nil {
		return nil, err
	}
	if err := git.Commit(tag + " release"); err != nil {
		return nil, err
	}
	if err := git.Push(); err != nil {
		return nil, err
	}

	head, err := git.Head()
	if err != nil {
		return nil, err
	}

	body, err := os.ReadFile(buildResult.ChangelogPath)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrIOFailure, "cannot read changelog %s", buildResult.ChangelogPath)
	}

	client := opts.GitHubClient
	if client == nil {
		cfg := opts.Build.Config
		client = githubapi.New(opts.Token, cfg.GitHub.Owner, cfg.GitHub.Repo)
	}

	pterm.Info.Printfln("Create release %s on commit %s", tag, head)
	releaseID, err := client.CreateRelease(githubapi.Release{
		TagName:         tag,
		TargetCommitish: head,
		Name:            tag,
		Body:            string(body),
		Prerelease:      opts.Prerelease,
	})
	if err != nil {
		return nil, err
	}
	result.ReleaseID = releaseID

	packName := opts.Build.Config.Name
	uploads := []struct {
		label string
		path  string
	}{
		{"Client", buildResult.ClientZip},
		{"Server", buildResult.ServerZip},
	}
	for _, upload := range uploads {
		assetName := fmt.Sprintf("[%s] %s-v%s.zip", upload.label, packName, version)
		pterm.Info.Printfln("Upload %s", assetName)
		if err := client.UploadAsset(releaseID, assetName, "application/zip", upload.path); err != nil {
			return nil, err
		}
		result.Assets = append(result.Assets, assetName)
	}

	result.Published = true
	logger.Info().
		Str("tag", tag).
		Int64("releaseID", releaseID).
		Strs("assets", result.Assets).
		Msg("Release published")

	return result, nil
}
