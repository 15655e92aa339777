// Package copytree assembles archive staging trees by selectively copying
// entries from the working tree while honoring an exclusion predicate.
package copytree

import (
	"io/fs"
	"os"
	"path/filepath"

	"github.com/ChaoticTrials/Caelum/pkg/errors"
	"github.com/ChaoticTrials/Caelum/pkg/logging"
	"github.com/ChaoticTrials/Caelum/pkg/types"
)

// ExcludeFunc decides whether the file at the given slash-separated path,
// relative to the source root, should be skipped.
type ExcludeFunc func(rel string) bool

// Copy mirrors relativeEntry from sourceRoot into destRoot.
//
// Directories are descended into child by child, in lexicographic order for
// reproducible output. Exclusion applies to files only: a directory whose
// name matches a rule is still descended, and each file inside is tested
// individually against its own relative path. Excluded files are skipped
// silently. Non-excluded files are copied with contents, permission bits
// and modification time, creating missing destination directories on the
// way; nothing already present under destRoot is deleted, and sourceRoot is
// never modified.
//
// A nil excluded predicate copies everything. A missing source entry is a
// NOT_FOUND error; any mkdir or copy failure aborts the whole copy.
func Copy(fsys types.FS, sourceRoot, destRoot, relativeEntry string, excluded ExcludeFunc) error {
	logger := logging.GetLogger("copytree")

	sourcePath := filepath.Join(sourceRoot, relativeEntry)
	destPath := filepath.Join(destRoot, relativeEntry)

	info, err := fsys.Stat(sourcePath)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.Wrapf(err, errors.ErrNotFound, "copy source %s does not exist", sourcePath)
		}
		if os.IsPermission(err) {
			return errors.Wrapf(err, errors.ErrPermission, "cannot access copy source %s", sourcePath)
		}
		return errors.Wrapf(err, errors.ErrIOFailure, "cannot stat copy source %s", sourcePath)
	}

	if info.IsDir() {
		// ReadDir returns entries sorted by name.
		children, err := fsys.ReadDir(sourcePath)
		if err != nil {
			return errors.Wrapf(err, errors.ErrIOFailure, "cannot list directory %s", sourcePath)
		}
		for _, child := range children {
			if err := Copy(fsys, sourceRoot, destRoot, filepath.Join(relativeEntry, child.Name()), excluded); err != nil {
				return err
			}
		}
		return nil
	}

	rel := filepath.ToSlash(relativeEntry)
	if excluded != nil && excluded(rel) {
		logger.Debug().Str("path", rel).Msg("Skipping excluded file")
		return nil
	}

	if err := fsys.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		if os.IsPermission(err) {
			return errors.Wrapf(err, errors.ErrPermission, "cannot create directory for %s", destPath)
		}
		return errors.Wrapf(err, errors.ErrDirCreate, "cannot create directory for %s", destPath)
	}

	if err := copyFile(fsys, sourcePath, destPath, info); err != nil {
		return err
	}

	logger.Trace().Str("from", sourcePath).Str("to", destPath).Msg("Copied file")
	return nil
}

// copyFile copies contents plus permission bits and modification time
func copyFile(fsys types.FS, sourcePath, destPath string, info fs.FileInfo) error {
	data, err := fsys.ReadFile(sourcePath)
	if err != nil {
		if os.IsPermission(err) {
			return errors.Wrapf(err, errors.ErrPermission, "cannot read %s", sourcePath)
		}
		return errors.Wrapf(err, errors.ErrIOFailure, "cannot read %s", sourcePath)
	}

	if err := fsys.WriteFile(destPath, data, info.Mode().Perm()); err != nil {
		if os.IsPermission(err) {
			return errors.Wrapf(err, errors.ErrPermission, "cannot write %s", destPath)
		}
		return errors.Wrapf(err, errors.ErrFileCopy, "cannot write %s", destPath)
	}

	// WriteFile applies the mode only when it creates the file; an existing
	// destination keeps its old bits without this.
	if err := fsys.Chmod(destPath, info.Mode().Perm()); err != nil {
		return errors.Wrapf(err, errors.ErrFileCopy, "cannot set mode on %s", destPath)
	}

	if err := fsys.Chtimes(destPath, info.ModTime(), info.ModTime()); err != nil {
		return errors.Wrapf(err, errors.ErrFileCopy, "cannot set times on %s", destPath)
	}

	return nil
}
