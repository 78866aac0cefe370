// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestActionableError_Error(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      *ActionableError
		expected string
	}{
		{
			name:     "operation only",
			err:      &ActionableError{Operation: "create archive"},
			expected: "failed to create archive",
		},
		{
			name:     "operation with resource",
			err:      &ActionableError{Operation: "read extension metadata", Resource: "./metadata.json"},
			expected: "failed to read extension metadata: ./metadata.json",
		},
		{
			name: "operation with resource and cause",
			err: &ActionableError{
				Operation: "move archive",
				Resource:  "/home/dev/dev/backup",
				Cause:     errors.New("permission denied"),
			},
			expected: "failed to move archive: /home/dev/dev/backup: permission denied",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestActionableError_Format(t *testing.T) {
	t.Parallel()

	root := errors.New("no space left on device")
	err := &ActionableError{
		Operation:   "create archive",
		Suggestions: []string{"Check free disk space"},
		Cause:       fmt.Errorf("write entry: %w", root),
	}

	short := err.Format(false)
	if !strings.Contains(short, "  • Check free disk space") {
		t.Errorf("Format(false) missing suggestion:\n%s", short)
	}
	if strings.Contains(short, "Error chain:") {
		t.Errorf("Format(false) should not include the error chain:\n%s", short)
	}

	long := err.Format(true)
	for _, want := range []string{"Error chain:", "1. write entry: no space left on device", "2. no space left on device"} {
		if !strings.Contains(long, want) {
			t.Errorf("Format(true) missing %q:\n%s", want, long)
		}
	}
}

func TestErrorContext_Build(t *testing.T) {
	t.Parallel()

	cause := errors.New("boom")
	err := NewErrorContext().
		WithOperation("link extension").
		WithResource("~/.local/share/gnome-shell/extensions/a@b").
		WithSuggestion("first").
		WithSuggestion("second").
		WithIssue(InstallDestinationConflictId).
		Wrap(cause).
		Build()

	if err == nil {
		t.Fatal("Build() returned nil")
	}
	if len(err.Suggestions) != 2 {
		t.Errorf("Suggestions = %v, want 2", err.Suggestions)
	}
	if err.IssueID != InstallDestinationConflictId {
		t.Errorf("IssueID = %d, want %d", err.IssueID, InstallDestinationConflictId)
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false")
	}
}

func TestErrorContext_BuildWithoutOperation(t *testing.T) {
	t.Parallel()

	if err := NewErrorContext().WithResource("x").BuildError(); err != nil {
		t.Errorf("BuildError() = %v, want nil", err)
	}
}

func TestErrorContext_BuildReturnsSnapshot(t *testing.T) {
	t.Parallel()

	ctx := NewErrorContext().WithOperation("copy schema").WithResource("schemas/a.gschema.xml")
	first := ctx.Build()
	ctx.WithOperation("compile schemas")

	if got, want := first.Error(), "failed to copy schema: schemas/a.gschema.xml"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}
