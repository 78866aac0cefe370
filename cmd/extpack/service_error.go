// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"io"

	"extpack-cli/internal/install"
	"extpack-cli/internal/issue"
	"extpack-cli/pkg/extmeta"
	"extpack-cli/pkg/extpack"
	"extpack-cli/pkg/types"
)

// ServiceError is an error that carries rendering information for the CLI
// layer. Always create via newServiceError.
type ServiceError struct {
	// Err is the underlying error (must not be nil).
	Err error
	// IssueID is the optional issue catalog ID for rendering help text.
	IssueID issue.Id
}

// newServiceError creates a ServiceError with a nil-Err panic guard.
func newServiceError(err error, issueID issue.Id) *ServiceError {
	if err == nil {
		panic("ServiceError: Err must not be nil")
	}
	return &ServiceError{Err: err, IssueID: issueID}
}

// Error implements the error interface.
func (e *ServiceError) Error() string { return e.Err.Error() }

// Unwrap returns the underlying error for errors.Is/As chains.
func (e *ServiceError) Unwrap() error { return e.Err }

// classifyError turns domain errors into actionable errors with a catalog
// entry. Errors that are already actionable keep their own context.
func classifyError(err error) *ServiceError {
	var (
		ae      *issue.ActionableError
		cfgErr  *extmeta.ConfigurationError
		archErr *extpack.ArchiveError
		relErr  *extpack.RelocationError
		instErr *install.InstallError
	)

	switch {
	case errors.As(err, &ae):
		return newServiceError(ae, ae.IssueID)

	case errors.As(err, &cfgErr):
		id := issue.MetadataFieldMissingId
		switch cfgErr.Kind {
		case extmeta.KindMissingFile, extmeta.KindUnreadable:
			id = issue.MetadataNotFoundId
		case extmeta.KindMalformed:
			id = issue.MetadataParseErrorId
		}
		return newServiceError(issue.NewErrorContext().
			WithOperation("read extension metadata").
			WithIssue(id).
			WithSuggestion("Run extpack from the extension's source directory").
			Wrap(err).
			Build(), id)

	case errors.As(err, &archErr):
		return newServiceError(issue.NewErrorContext().
			WithOperation("create archive").
			WithIssue(issue.ArchiveFailedId).
			WithSuggestion("Check that every file under the source tree is readable").
			Wrap(err).
			Build(), issue.ArchiveFailedId)

	case errors.As(err, &relErr):
		return newServiceError(issue.NewErrorContext().
			WithOperation("move archive").
			WithResource(relErr.Destination).
			WithIssue(issue.RelocationFailedId).
			WithSuggestion("The archive was kept at "+relErr.Source).
			WithSuggestion("Set build.target_dir to a writable directory").
			Wrap(err).
			Build(), issue.RelocationFailedId)

	case errors.As(err, &instErr):
		var id issue.Id
		switch {
		case instErr.Step == install.StepSource:
			id = issue.InstallSourceNotFoundId
		case errors.Is(err, install.ErrDestinationConflict):
			id = issue.InstallDestinationConflictId
		case instErr.Step == install.StepCompile:
			id = issue.SchemaCompileFailedId
		}
		return newServiceError(issue.NewErrorContext().
			WithOperation("install extension").
			WithIssue(id).
			Wrap(err).
			Build(), id)
	}

	return newServiceError(err, 0)
}

// renderServiceError writes the error line, its suggestions and the catalog
// entry (when one is linked) to stderr.
func renderServiceError(stderr io.Writer, svcErr *ServiceError, verbose bool) {
	if svcErr == nil {
		return
	}

	msg := svcErr.Err.Error()
	var ae *issue.ActionableError
	if errors.As(svcErr.Err, &ae) {
		msg = ae.Format(verbose)
	}
	fmt.Fprintf(stderr, "%s %s\n", ErrorStyle.Render("Error:"), msg)

	if svcErr.IssueID == 0 || !verbose {
		return
	}
	if entry := issue.Get(svcErr.IssueID); entry != nil {
		if rendered, err := entry.Render("auto"); err == nil {
			fmt.Fprint(stderr, rendered)
		}
	}
}

// fail reports err and returns the ExitError that ends the command.
func (a *App) fail(err error, verbose bool) error {
	renderServiceError(a.stderr, classifyError(err), verbose)
	return &ExitError{Code: types.ExitFailure}
}
