// SPDX-License-Identifier: MPL-2.0

package extpack

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// WriteStats summarises one WriteArchive call.
type WriteStats struct {
	Files        int
	SelfExcluded []string
}

// WriteArchive walks Root and writes every kept file into a new deflated
// zip at archivePath. The archive is closed before WriteArchive returns,
// on success and on failure; a failed archive is not removed.
func (b *Builder) WriteArchive(ctx context.Context, archivePath string) (stats WriteStats, err error) {
	f, err := os.Create(archivePath)
	if err != nil {
		return stats, &ArchiveError{Archive: archivePath, Err: err}
	}
	zw := zip.NewWriter(f)

	defer func() {
		closeErr := errors.Join(zw.Close(), f.Close())
		if err == nil && closeErr != nil {
			err = &ArchiveError{Archive: archivePath, Err: closeErr}
		}
	}()

	walkErr := filepath.WalkDir(b.opts.Root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return &ArchiveError{Archive: archivePath, Path: path, Err: walkErr}
		}
		if err := ctx.Err(); err != nil {
			return &ArchiveError{Archive: archivePath, Err: err}
		}
		if d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(b.opts.Root, path)
		if err != nil {
			return &ArchiveError{Archive: archivePath, Path: path, Err: err}
		}
		name := filepath.ToSlash(rel)

		if pattern, ok := b.opts.Ruleset.Match(name); ok {
			b.opts.Logger.Debug("skip", "path", name, "pattern", pattern)
			return nil
		}

		if !b.opts.IncludeSelf && d.Name() == b.opts.SelfName {
			b.opts.Logger.Info(fmt.Sprintf("   [Excluded] Builder script (%s)", d.Name()))
			stats.SelfExcluded = append(stats.SelfExcluded, name)
			return nil
		}

		// Stat follows symlinks: linked files are archived by content and
		// linked directories are not descended.
		info, err := os.Stat(path)
		if err != nil {
			return &ArchiveError{Archive: archivePath, Path: path, Err: err}
		}
		if info.IsDir() {
			b.opts.Logger.Debug("skip symlinked directory", "path", name)
			return nil
		}
		if !info.Mode().IsRegular() {
			b.opts.Logger.Debug("skip special file", "path", name, "mode", info.Mode().String())
			return nil
		}

		if err := addFile(zw, path, name, info); err != nil {
			return &ArchiveError{Archive: archivePath, Path: path, Err: err}
		}
		stats.Files++
		return nil
	})

	return stats, walkErr
}

func addFile(zw *zip.Writer, path, name string, info fs.FileInfo) error {
	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return fmt.Errorf("failed to create file header: %w", err)
	}
	header.Name = name
	header.Method = zip.Deflate

	src, err := os.Open(path)
	if err != nil {
		return err
	}
	defer src.Close()

	w, err := zw.CreateHeader(header)
	if err != nil {
		return fmt.Errorf("failed to create zip entry: %w", err)
	}
	if _, err := io.Copy(w, src); err != nil {
		return fmt.Errorf("failed to write file data: %w", err)
	}
	return nil
}
