// Package changelog renders the per-version release notes by diffing the
// current manifest against the one shipped with the previous release.
package changelog

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/ChaoticTrials/Caelum/pkg/errors"
	"github.com/ChaoticTrials/Caelum/pkg/logging"
	"github.com/ChaoticTrials/Caelum/pkg/manifest"
	"github.com/ChaoticTrials/Caelum/pkg/types"
)

// Options configures changelog generation. Previous may be nil for the
// first release. Now defaults to time.Now and exists so tests get stable
// output.
type Options struct {
	FS       types.FS
	Dir      string
	Current  *manifest.Manifest
	Previous *manifest.Manifest
	Now      func() time.Time
}

// Generate writes changelogs/changelog-<version>.md and returns its path.
func Generate(opts Options) (string, error) {
	logger := logging.GetLogger("changelog")

	if opts.Current == nil {
		return "", errors.New(errors.ErrInvalidInput, "changelog requires a current manifest")
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	body := Render(opts.Current, opts.Previous, now())

	if err := opts.FS.MkdirAll(opts.Dir, 0755); err != nil {
		return "", errors.Wrapf(err, errors.ErrDirCreate, "cannot create changelog directory %s", opts.Dir)
	}

	path := filepath.Join(opts.Dir, fmt.Sprintf("changelog-%s.md", opts.Current.Version))
	if err := opts.FS.WriteFile(path, []byte(body), 0644); err != nil {
		return "", errors.Wrapf(err, errors.ErrIOFailure, "cannot write changelog %s", path)
	}

	logger.Info().Str("path", path).Msg("Changelog written")
	return path, nil
}

// Render produces the markdown body for a release.
func Render(current, previous *manifest.Manifest, date time.Time) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s v%s\n\n", current.Name, current.Version)
	fmt.Fprintf(&b, "Released %s for Minecraft %s.\n", date.Format("2006-01-02"), current.Minecraft.Version)

	if previous == nil {
		b.WriteString("\nInitial release.\n")
		return b.String()
	}

	if previous.Minecraft.Version != current.Minecraft.Version {
		fmt.Fprintf(&b, "\nMinecraft updated from %s to %s.\n", previous.Minecraft.Version, current.Minecraft.Version)
	}
	if previous.LoaderVersion() != current.LoaderVersion() {
		fmt.Fprintf(&b, "\nMod loader updated from %s to %s.\n", previous.LoaderVersion(), current.LoaderVersion())
	}

	added, removed, updated := diff(previous, current)

	writeSection(&b, "Added", added, func(f manifest.ModFile) string {
		return projectLink(f.ProjectID)
	})
	writeSection(&b, "Updated", updated, func(f manifest.ModFile) string {
		return projectLink(f.ProjectID)
	})
	writeSection(&b, "Removed", removed, func(f manifest.ModFile) string {
		return projectLink(f.ProjectID)
	})

	if len(added)+len(removed)+len(updated) == 0 {
		b.WriteString("\nNo mod changes.\n")
	}

	return b.String()
}

func diff(previous, current *manifest.Manifest) (added, removed, updated []manifest.ModFile) {
	prev := make(map[int]manifest.ModFile, len(previous.Files))
	for _, f := range previous.Files {
		prev[f.ProjectID] = f
	}
	cur := make(map[int]manifest.ModFile, len(current.Files))
	for _, f := range current.Files {
		cur[f.ProjectID] = f
	}

	for id, f := range cur {
		old, ok := prev[id]
		switch {
		case !ok:
			added = append(added, f)
		case old.FileID != f.FileID:
			updated = append(updated, f)
		}
	}
	for id, f := range prev {
		if _, ok := cur[id]; !ok {
			removed = append(removed, f)
		}
	}

	for _, list := range [][]manifest.ModFile{added, removed, updated} {
		sort.Slice(list, func(i, j int) bool { return list[i].ProjectID < list[j].ProjectID })
	}
	return added, removed, updated
}

func writeSection(b *strings.Builder, title string, files []manifest.ModFile, render func(manifest.ModFile) string) {
	if len(files) == 0 {
		return
	}
	fmt.Fprintf(b, "\n## %s\n\n", title)
	for _, f := range files {
		fmt.Fprintf(b, "- %s\n", render(f))
	}
}

func projectLink(projectID int) string {
	return fmt.Sprintf("[Project %d](https://www.curseforge.com/projects/%d)", projectID, projectID)
}
