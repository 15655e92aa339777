// Package archive zips staging directories into release artifacts.
package archive

import (
	"archive/zip"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/ChaoticTrials/Caelum/pkg/errors"
	"github.com/ChaoticTrials/Caelum/pkg/logging"
)

// ZipDir writes the contents of sourceDir into a zip archive at zipPath.
// Entry names are slash-separated paths relative to sourceDir; directories
// are included so empty ones survive. The walk order is sorted, so the same
// tree always produces the same entry order.
func ZipDir(sourceDir, zipPath string) error {
	logger := logging.GetLogger("archive")
	defer logging.LogOperationStart(logger, "zip "+filepath.Base(zipPath))()

	if _, err := os.Stat(sourceDir); err != nil {
		if os.IsNotExist(err) {
			return errors.Wrapf(err, errors.ErrNotFound, "archive source %s does not exist", sourceDir)
		}
		return errors.Wrapf(err, errors.ErrIOFailure, "cannot stat archive source %s", sourceDir)
	}

	out, err := os.Create(zipPath)
	if err != nil {
		return errors.Wrapf(err, errors.ErrIOFailure, "cannot create archive %s", zipPath)
	}
	defer func() { _ = out.Close() }()

	w := zip.NewWriter(out)

	err = filepath.WalkDir(sourceDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == sourceDir {
			return nil
		}

		rel, err := filepath.Rel(sourceDir, path)
		if err != nil {
			return err
		}
		name := filepath.ToSlash(rel)

		info, err := d.Info()
		if err != nil {
			return err
		}

		header, err := zip.FileInfoHeader(info)
		if err != nil {
			return err
		}
		header.Name = name
		if d.IsDir() {
			header.Name += "/"
		} else {
			header.Method = zip.Deflate
		}

		entry, err := w.CreateHeader(header)
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		file, err := os.Open(path)
		if err != nil {
			return err
		}
		defer func() { _ = file.Close() }()

		_, err = io.Copy(entry, file)
		return err
	})
	if err != nil {
		_ = w.Close()
		return errors.Wrapf(err, errors.ErrIOFailure, "cannot write archive %s", zipPath)
	}

	if err := w.Close(); err != nil {
		return errors.Wrapf(err, errors.ErrIOFailure, "cannot finalize archive %s", zipPath)
	}
	if err := out.Close(); err != nil {
		return errors.Wrapf(err, errors.ErrIOFailure, "cannot close archive %s", zipPath)
	}

	logger.Info().Str("archive", zipPath).Msg("Archive created")
	return nil
}

// List returns the entry names of a zip archive, for verification and tests.
func List(zipPath string) ([]string, error) {
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrIOFailure, "cannot open archive %s", zipPath)
	}
	defer func() { _ = r.Close() }()

	names := make([]string, 0, len(r.File))
	for _, f := range r.File {
		names = append(names, f.Name)
	}
	return names, nil
}
