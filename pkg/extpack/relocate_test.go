// SPDX-License-Identifier: MPL-2.0

package extpack

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestRelocate_CreatesTarget(t *testing.T) {
	t.Parallel()

	src := filepath.Join(t.TempDir(), "a@b_v1.zip")
	if err := os.WriteFile(src, []byte("zip"), 0o644); err != nil {
		t.Fatal(err)
	}
	target := filepath.Join(t.TempDir(), "dev", "backup")

	var logs bytes.Buffer
	dest, err := Relocate(src, target, log.New(&logs))
	if err != nil {
		t.Fatalf("Relocate() error = %v", err)
	}
	if dest != filepath.Join(target, "a@b_v1.zip") {
		t.Errorf("dest = %q", dest)
	}
	if _, err := os.Stat(src); !errors.Is(err, os.ErrNotExist) {
		t.Error("source should be gone after move")
	}
	if !strings.Contains(logs.String(), "Created directory: "+target) {
		t.Errorf("expected directory creation log, got:\n%s", logs.String())
	}
}

func TestRelocate_OverwritesSilently(t *testing.T) {
	t.Parallel()

	target := t.TempDir()
	if err := os.WriteFile(filepath.Join(target, "a@b_v1.zip"), []byte("old"), 0o644); err != nil {
		t.Fatal(err)
	}
	src := filepath.Join(t.TempDir(), "a@b_v1.zip")
	if err := os.WriteFile(src, []byte("new"), 0o644); err != nil {
		t.Fatal(err)
	}

	var logs bytes.Buffer
	dest, err := Relocate(src, target, log.New(&logs))
	if err != nil {
		t.Fatalf("Relocate() error = %v", err)
	}
	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "new" {
		t.Errorf("dest content = %q, want new", data)
	}
	if strings.Contains(logs.String(), "Created directory") {
		t.Error("existing target directory should not be reported as created")
	}
}

func TestRelocate_MissingSource(t *testing.T) {
	t.Parallel()

	_, err := Relocate(filepath.Join(t.TempDir(), "missing.zip"), t.TempDir(), nil)
	var relErr *RelocationError
	if !errors.As(err, &relErr) {
		t.Fatalf("Relocate() error = %v, want *RelocationError", err)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("error should wrap os.ErrNotExist: %v", err)
	}
}
