// SPDX-License-Identifier: MPL-2.0

package extpack

import (
	"errors"
	"fmt"
)

var (
	// ErrArchive is the sentinel wrapped by every *ArchiveError.
	ErrArchive = errors.New("archive error")
	// ErrRelocation is the sentinel wrapped by every *RelocationError.
	ErrRelocation = errors.New("relocation error")
	// ErrInvalidOptions is returned by New for unusable Options.
	ErrInvalidOptions = errors.New("invalid build options")
)

type (
	// ArchiveError reports an I/O failure while creating the archive. The
	// partially written archive is left on disk.
	ArchiveError struct {
		// Archive is the archive being written.
		Archive string
		// Path is the source file being added, empty when the failure is
		// not tied to one file.
		Path string
		Err  error
	}

	// RelocationError reports a failure to move the archive into the target
	// directory. The archive stays where it was written.
	RelocationError struct {
		Source      string
		Destination string
		Err         error
	}
)

// Error implements the error interface.
func (e *ArchiveError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("error creating zip %s: %s: %v", e.Archive, e.Path, e.Err)
	}
	return fmt.Sprintf("error creating zip %s: %v", e.Archive, e.Err)
}

// Unwrap returns ErrArchive and the underlying cause.
func (e *ArchiveError) Unwrap() []error { return []error{ErrArchive, e.Err} }

// Error implements the error interface.
func (e *RelocationError) Error() string {
	return fmt.Sprintf("error moving %s to %s: %v", e.Source, e.Destination, e.Err)
}

// Unwrap returns ErrRelocation and the underlying cause.
func (e *RelocationError) Unwrap() []error { return []error{ErrRelocation, e.Err} }
