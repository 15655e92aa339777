// Package build assembles the CurseForge client archive and the server
// archive from the working tree into the build directory.
package build

import (
	"net/http"
	"path/filepath"

	"github.com/pterm/pterm"

	"github.com/ChaoticTrials/Caelum/pkg/archive"
	"github.com/ChaoticTrials/Caelum/pkg/changelog"
	"github.com/ChaoticTrials/Caelum/pkg/config"
	"github.com/ChaoticTrials/Caelum/pkg/copytree"
	"github.com/ChaoticTrials/Caelum/pkg/errors"
	"github.com/ChaoticTrials/Caelum/pkg/executor"
	"github.com/ChaoticTrials/Caelum/pkg/filesystem"
	"github.com/ChaoticTrials/Caelum/pkg/ignore"
	"github.com/ChaoticTrials/Caelum/pkg/logging"
	"github.com/ChaoticTrials/Caelum/pkg/manifest"
	"github.com/ChaoticTrials/Caelum/pkg/modlist"
	"github.com/ChaoticTrials/Caelum/pkg/server"
	"github.com/ChaoticTrials/Caelum/pkg/types"
	"github.com/ChaoticTrials/Caelum/pkg/vcs"
)

// Options holds everything the build needs. Root is the repository root;
// FS, Runner and HTTPClient default to their OS/production implementations
// and exist as seams for tests.
type Options struct {
	Root       string
	Config     *config.Config
	FS         types.FS
	Runner     executor.Runner
	HTTPClient *http.Client
	KeepBuild  bool
}

// Result reports what the build produced.
type Result struct {
	Manifest      *manifest.Manifest
	ManifestPath  string
	ChangelogPath string
	ClientZip     string
	ServerZip     string
}

// Build runs the full archive assembly: manifest, changelog, mod lists,
// client archive, server archive. The two archive passes run strictly
// sequentially; any failure aborts the build.
func Build(opts Options) (*Result, error) {
	logger := logging.GetLogger("commands.build")
	defer logging.LogOperationStart(logger, "build")()

	if opts.Config == nil {
		return nil, errors.New(errors.ErrInvalidInput, "build requires a config")
	}
	fsys := opts.FS
	if fsys == nil {
		fsys = filesystem.NewOS()
	}
	runner := opts.Runner
	if runner == nil {
		runner = executor.NewOS()
	}

	cfg := opts.Config
	buildDir := filepath.Join(opts.Root, cfg.BuildDir)

	if !opts.KeepBuild {
		pterm.Info.Println("Delete old build data")
		if err := fsys.RemoveAll(buildDir); err != nil {
			return nil, errors.Wrapf(err, errors.ErrIOFailure, "cannot remove %s", buildDir)
		}
	}
	if err := fsys.MkdirAll(buildDir, 0755); err != nil {
		return nil, errors.Wrapf(err, errors.ErrDirCreate, "cannot create %s", buildDir)
	}

	pterm.Info.Println("Read ignore rules")
	// Build output, tool config and the token file never belong in an
	// archive, whatever the repository's .gitignore says.
	rules, err := ignore.FromFile(filepath.Join(opts.Root, ".gitignore"),
		cfg.BuildDir+"/", "caelum.toml", ".caelum.toml", ".caelum.yaml", "tokens.json")
	if err != nil {
		return nil, err
	}

	pterm.Info.Println("Generate manifest")
	manifestPath := filepath.Join(opts.Root, "manifest.json")
	m, err := manifest.Generate(fsys, filepath.Join(opts.Root, "pack.json"), manifestPath)
	if err != nil {
		return nil, err
	}

	pterm.Info.Println("Create changelog")
	changelogPath, err := writeChangelog(fsys, runner, opts.Root, m)
	if err != nil {
		return nil, err
	}

	pterm.Info.Println("Download ModListCreator")
	jarPath := filepath.Join(buildDir, "ModListCreator.jar")
	jarURL := modlist.JarURL(cfg.ModListCreator.BaseURL, cfg.ModListCreator.Version)
	if err := modlist.Download(opts.HTTPClient, jarURL, jarPath); err != nil {
		return nil, err
	}
	tool := modlist.New(runner, jarPath)

	pterm.Info.Println("Update root directory mod list")
	if err := tool.Markdown(manifestPath, opts.Root, true); err != nil {
		return nil, err
	}

	// Fresh, empty overrides staging directory shared by both passes.
	stagingDir := filepath.Join(buildDir, "overrides")
	if err := fsys.RemoveAll(stagingDir); err != nil {
		return nil, errors.Wrapf(err, errors.ErrIOFailure, "cannot clear staging directory %s", stagingDir)
	}
	if err := fsys.MkdirAll(stagingDir, 0755); err != nil {
		return nil, errors.Wrapf(err, errors.ErrDirCreate, "cannot create staging directory %s", stagingDir)
	}

	pterm.Info.Println("Prepare CurseForge pack")
	clientZip, err := buildClient(fsys, tool, opts.Root, buildDir, stagingDir, cfg, m, rules)
	if err != nil {
		return nil, err
	}

	pterm.Info.Println("Prepare server pack")
	serverZip, err := buildServer(fsys, opts.Root, buildDir, stagingDir, cfg, m, rules)
	if err != nil {
		return nil, err
	}

	return &Result{
		Manifest:      m,
		ManifestPath:  manifestPath,
		ChangelogPath: changelogPath,
		ClientZip:     clientZip,
		ServerZip:     serverZip,
	}, nil
}

// writeChangelog diffs the current manifest against the one at the latest
// release tag. A repository without tags produces an initial-release
// changelog.
func writeChangelog(fsys types.FS, runner executor.Runner, root string, m *manifest.Manifest) (string, error) {
	logger := logging.GetLogger("commands.build")

	var previous *manifest.Manifest
	git := vcs.NewGit(runner, root)
	if tag, err := git.LatestTag(); err == nil {
		data, err := git.ShowFile(tag, "manifest.json")
		if err == nil {
			if prev, err := manifest.Parse(data); err == nil {
				previous = prev
			} else {
				logger.Warn().Str("tag", tag).Err(err).Msg("Previous manifest is unreadable, diffing skipped")
			}
		} else {
			logger.Warn().Str("tag", tag).Err(err).Msg("No manifest at previous tag, diffing skipped")
		}
	} else {
		logger.Debug().Err(err).Msg("No previous tag, treating as initial release")
	}

	return changelog.Generate(changelog.Options{
		FS:       fsys,
		Dir:      filepath.Join(root, "changelogs"),
		Current:  m,
		Previous: previous,
	})
}

// buildClient assembles build/curseforge and zips it.
func buildClient(fsys types.FS, tool *modlist.Tool, root, buildDir, stagingDir string, cfg *config.Config, m *manifest.Manifest, rules *ignore.Rules) (string, error) {
	targetDir := filepath.Join(buildDir, "curseforge")
	if err := fsys.MkdirAll(targetDir, 0755); err != nil {
		return "", errors.Wrapf(err, errors.ErrDirCreate, "cannot create %s", targetDir)
	}

	if err := m.Save(fsys, filepath.Join(targetDir, "manifest.json")); err != nil {
		return "", err
	}

	if err := tool.HTML(filepath.Join(targetDir, "manifest.json"), targetDir); err != nil {
		return "", err
	}

	overridesDir := filepath.Join(targetDir, m.Overrides)
	if err := copyStaged(fsys, stagingDir, overridesDir); err != nil {
		return "", err
	}
	for _, entry := range cfg.Overrides {
		if err := copytree.Copy(fsys, root, overridesDir, entry, rules.Excluded); err != nil {
			return "", err
		}
	}

	zipPath := filepath.Join(buildDir, "curseforge.zip")
	if err := archive.ZipDir(targetDir, zipPath); err != nil {
		return "", err
	}
	return zipPath, nil
}

// buildServer assembles build/server and zips it.
func buildServer(fsys types.FS, root, buildDir, stagingDir string, cfg *config.Config, m *manifest.Manifest, rules *ignore.Rules) (string, error) {
	targetDir := filepath.Join(buildDir, "server")
	if err := fsys.MkdirAll(targetDir, 0755); err != nil {
		return "", errors.Wrapf(err, errors.ErrDirCreate, "cannot create %s", targetDir)
	}

	if err := server.WriteModList(fsys, filepath.Join(targetDir, "server.txt"), m, cfg.ClientMods); err != nil {
		return "", err
	}

	// Server base files go straight into the archive root, not under an
	// overrides folder.
	serverData := filepath.Join(root, "serverdata")
	if _, err := fsys.Stat(serverData); err == nil {
		if err := copyStaged(fsys, serverData, targetDir); err != nil {
			return "", err
		}
	}

	if err := copyStaged(fsys, stagingDir, targetDir); err != nil {
		return "", err
	}
	for _, entry := range cfg.Overrides {
		if err := copytree.Copy(fsys, root, targetDir, entry, rules.Excluded); err != nil {
			return "", err
		}
	}

	if err := server.WriteProperties(fsys, filepath.Join(targetDir, "server.properties"), cfg.Server, cfg.Name, m.Version); err != nil {
		return "", err
	}

	zipPath := filepath.Join(buildDir, "server.zip")
	if err := archive.ZipDir(targetDir, zipPath); err != nil {
		return "", err
	}
	return zipPath, nil
}

// copyStaged mirrors every child of from into to without exclusion.
func copyStaged(fsys types.FS, from, to string) error {
	children, err := fsys.ReadDir(from)
	if err != nil {
		return errors.Wrapf(err, errors.ErrIOFailure, "cannot list %s", from)
	}
	if err := fsys.MkdirAll(to, 0755); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "cannot create %s", to)
	}
	for _, child := range children {
		if err := copytree.Copy(fsys, from, to, child.Name(), nil); err != nil {
			return err
		}
	}
	return nil
}
