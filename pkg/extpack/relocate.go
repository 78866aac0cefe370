// SPDX-License-Identifier: MPL-2.0

package extpack

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"syscall"

	"extpack-cli/pkg/fspath"
	"extpack-cli/pkg/types"

	"github.com/charmbracelet/log"
)

// Relocate moves src into targetDir, creating targetDir and its parents when
// missing. A file with the same name in targetDir is replaced. When src and
// targetDir are on different filesystems the file is copied and src removed.
func Relocate(src, targetDir string, logger *log.Logger) (string, error) {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	dest := string(fspath.JoinStr(types.FilesystemPath(targetDir), filepath.Base(src)))

	_, statErr := os.Stat(targetDir)
	if err := os.MkdirAll(targetDir, 0o755); err != nil {
		return "", &RelocationError{Source: src, Destination: dest, Err: err}
	}
	if errors.Is(statErr, fs.ErrNotExist) {
		logger.Info("   Created directory: " + targetDir)
	}

	err := os.Rename(src, dest)
	if err == nil {
		return dest, nil
	}
	if !errors.Is(err, syscall.EXDEV) {
		return "", &RelocationError{Source: src, Destination: dest, Err: err}
	}

	logger.Debug("cross-device move, copying", "from", src, "to", dest)
	if err := fspath.CopyFile(src, dest); err != nil {
		return "", &RelocationError{Source: src, Destination: dest, Err: err}
	}
	if err := os.Remove(src); err != nil {
		return "", &RelocationError{Source: src, Destination: dest, Err: err}
	}
	return dest, nil
}
