// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"errors"
	"strings"
	"testing"
)

func TestFormatError(t *testing.T) {
	t.Parallel()

	t.Run("nil error returns nil", func(t *testing.T) {
		t.Parallel()

		if err := FormatError(nil, "test.cue"); err != nil {
			t.Errorf("expected nil, got %v", err)
		}
	})

	t.Run("non-CUE error is wrapped with filepath", func(t *testing.T) {
		t.Parallel()

		originalErr := errors.New("some error")
		err := FormatError(originalErr, "test.cue")
		if err == nil {
			t.Fatal("expected error")
		}
		if !strings.Contains(err.Error(), "test.cue") {
			t.Errorf("error should contain filepath, got: %v", err)
		}
		if !errors.Is(err, originalErr) {
			t.Errorf("error should wrap original, got: %v", err)
		}
	})
}

func TestFormatPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		path     []string
		expected string
	}{
		{name: "empty path", path: []string{}, expected: ""},
		{name: "single element", path: []string{"uuid"}, expected: "uuid"},
		{name: "nested path", path: []string{"build", "target_dir"}, expected: "build.target_dir"},
		{name: "array index", path: []string{"build", "exclude", "0"}, expected: "build.exclude[0]"},
		{name: "quoted label", path: []string{`"version-name"`}, expected: "version-name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := formatPath(tt.path); got != tt.expected {
				t.Errorf("formatPath(%v) = %q, want %q", tt.path, got, tt.expected)
			}
		})
	}
}

func TestCheckFileSize(t *testing.T) {
	t.Parallel()

	if err := CheckFileSize(make([]byte, 100), 100, "metadata.json"); err != nil {
		t.Errorf("data at exact limit: expected nil, got %v", err)
	}

	err := CheckFileSize(make([]byte, 101), 100, "metadata.json")
	if err == nil {
		t.Fatal("data exceeding limit: expected error")
	}
	for _, want := range []string{"metadata.json", "101", "100"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error should contain %q, got: %v", want, err)
		}
	}
}

func TestSchemaError(t *testing.T) {
	t.Parallel()

	single := &SchemaError{
		FilePath:   "metadata.json",
		Violations: []ValidationError{{FilePath: "metadata.json", CUEPath: "uuid", Message: "incomplete value string"}},
	}
	if got, want := single.Error(), "metadata.json: uuid: incomplete value string"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !single.HasPath("uuid") || single.HasPath("version") {
		t.Error("HasPath() did not match violation paths")
	}
	if !errors.Is(single, ErrSchemaViolation) {
		t.Error("SchemaError should wrap ErrSchemaViolation")
	}

	multi := &SchemaError{
		FilePath: "config.cue",
		Violations: []ValidationError{
			{CUEPath: "a", Message: "bad"},
			{Message: "worse"},
		},
	}
	if got := multi.Error(); !strings.Contains(got, "validation failed:\n  a: bad\n  worse") {
		t.Errorf("Error() = %q, want multi-line listing", got)
	}
}

func TestValidationError(t *testing.T) {
	t.Parallel()

	withPath := &ValidationError{FilePath: "config.cue", CUEPath: "ui.verbose", Message: "expected bool"}
	if got, want := withPath.Error(), "config.cue: ui.verbose: expected bool"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}

	withoutPath := &ValidationError{FilePath: "config.cue", Message: "syntax error"}
	if got, want := withoutPath.Error(), "config.cue: syntax error"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
