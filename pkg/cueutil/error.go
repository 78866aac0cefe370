// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"errors"
	"fmt"
	"strings"

	"cuelang.org/go/cue"
	cueerrors "cuelang.org/go/cue/errors"
)

// ErrSchemaViolation is wrapped by every *SchemaError.
var ErrSchemaViolation = errors.New("schema violation")

type (
	// ValidationError is a single schema violation.
	ValidationError struct {
		// FilePath is the file being validated.
		FilePath string

		// CUEPath is the JSON path to the invalid value (e.g., "uuid").
		CUEPath string

		// Message is the validation error message.
		Message string
	}

	// SchemaError reports that a syntactically valid document does not
	// satisfy its schema.
	SchemaError struct {
		FilePath   string
		Violations []ValidationError

		// Raw is the user document before unification with the schema.
		Raw cue.Value
	}
)

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.CUEPath != "" {
		return fmt.Sprintf("%s: %s: %s", e.FilePath, e.CUEPath, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.FilePath, e.Message)
}

// Error implements the error interface.
func (e *SchemaError) Error() string {
	lines := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		if v.CUEPath != "" {
			lines = append(lines, v.CUEPath+": "+v.Message)
		} else {
			lines = append(lines, v.Message)
		}
	}
	if len(lines) == 1 {
		return fmt.Sprintf("%s: %s", e.FilePath, lines[0])
	}
	return fmt.Sprintf("%s: validation failed:\n  %s", e.FilePath, strings.Join(lines, "\n  "))
}

// Unwrap returns ErrSchemaViolation.
func (e *SchemaError) Unwrap() error { return ErrSchemaViolation }

// HasPath reports whether any violation points at path.
func (e *SchemaError) HasPath(path string) bool {
	for _, v := range e.Violations {
		if v.CUEPath == path {
			return true
		}
	}
	return false
}

func newSchemaError(err error, filePath string, raw cue.Value) *SchemaError {
	return &SchemaError{
		FilePath:   filePath,
		Violations: collectViolations(err, filePath),
		Raw:        raw,
	}
}

// FormatError formats a CUE error with JSON path prefixes.
//
// Error format: <file-path>: <json-path>: <message>
//
// Example:
//   - config.cue: build.include_self: conflicting values true and "yes"
func FormatError(err error, filePath string) error {
	if err == nil {
		return nil
	}
	if len(cueerrors.Errors(err)) == 0 {
		return fmt.Errorf("%s: %w", filePath, err)
	}
	return &SchemaError{FilePath: filePath, Violations: collectViolations(err, filePath)}
}

func collectViolations(err error, filePath string) []ValidationError {
	cueErrs := cueerrors.Errors(err)
	if len(cueErrs) == 0 {
		return []ValidationError{{FilePath: filePath, Message: err.Error()}}
	}

	out := make([]ValidationError, 0, len(cueErrs))
	for _, e := range cueErrs {
		pathStr := formatPath(cueerrors.Path(e))
		msg := e.Error()

		// CUE sometimes repeats the path at the start of the message.
		if pathStr != "" && strings.HasPrefix(msg, pathStr) {
			msg = strings.TrimPrefix(msg, pathStr)
			msg = strings.TrimPrefix(msg, ":")
			msg = strings.TrimSpace(msg)
		}

		out = append(out, ValidationError{FilePath: filePath, CUEPath: pathStr, Message: msg})
	}
	return out
}

// formatPath converts a CUE error path (["items", "0", "name"]) into
// JSON-path notation ("items[0].name").
func formatPath(path []string) string {
	if len(path) == 0 {
		return ""
	}

	var result strings.Builder
	for i, part := range path {
		isIndex := part != ""
		for _, c := range part {
			if c < '0' || c > '9' {
				isIndex = false
				break
			}
		}

		if isIndex && i > 0 {
			result.WriteString("[")
			result.WriteString(part)
			result.WriteString("]")
		} else {
			if i > 0 {
				result.WriteString(".")
			}
			result.WriteString(strings.Trim(part, `"`))
		}
	}

	return result.String()
}

// CheckFileSize verifies that data does not exceed maxSize bytes.
func CheckFileSize(data []byte, maxSize int64, filename string) error {
	if int64(len(data)) > maxSize {
		return fmt.Errorf("%s: file size %d bytes exceeds maximum %d bytes",
			filename, len(data), maxSize)
	}
	return nil
}
