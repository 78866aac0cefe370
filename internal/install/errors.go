// SPDX-License-Identifier: MPL-2.0

package install

import (
	"errors"
	"fmt"
)

// Step names the install phase an InstallError came from.
type Step string

const (
	StepSource  Step = "source"
	StepLink    Step = "link"
	StepSchema  Step = "schema"
	StepCompile Step = "compile"
)

var (
	// ErrInstall is the sentinel wrapped by every InstallError.
	ErrInstall = errors.New("install failed")

	// ErrSourceNotFound is returned when the source directory is missing.
	ErrSourceNotFound = errors.New("extension source not found")

	// ErrDestinationConflict is returned when the link destination exists
	// and is not a symlink.
	ErrDestinationConflict = errors.New("a non-symlink entry exists at destination")
)

// InstallError reports a failed install step.
//
//nolint:revive // install.InstallError reads better at call sites than install.Error
type InstallError struct {
	Step Step
	Path string
	Err  error
}

// Error implements the error interface.
func (e *InstallError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Step, e.Path, e.Err)
}

// Unwrap exposes both ErrInstall and the underlying cause.
func (e *InstallError) Unwrap() []error {
	return []error{ErrInstall, e.Err}
}
