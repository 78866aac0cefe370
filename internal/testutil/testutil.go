// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"archive/zip"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
)

// MustWriteFile writes content to path, creating parent directories as needed.
func MustWriteFile(t testing.TB, path, content string) {
	t.Helper()
	MustMkdirAll(t, filepath.Dir(path), 0o755)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

// MustMkdirAll creates a directory along with any necessary parents.
// The test fails immediately if the operation fails.
func MustMkdirAll(t testing.TB, path string, perm os.FileMode) {
	t.Helper()
	if err := os.MkdirAll(path, perm); err != nil {
		t.Fatalf("failed to create directory %s: %v", path, err)
	}
}

// WriteTree writes files keyed by slash-separated paths relative to root.
func WriteTree(t testing.TB, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		MustWriteFile(t, filepath.Join(root, filepath.FromSlash(name)), content)
	}
}

// TempTree is WriteTree into a fresh t.TempDir. It returns the new root.
func TempTree(t testing.TB, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	WriteTree(t, root, files)
	return root
}

// ZipEntry describes one member of an archive.
type ZipEntry struct {
	Name   string
	Method uint16
}

// ZipContents opens the archive at path and returns its members sorted by name.
func ZipContents(t testing.TB, path string) []ZipEntry {
	t.Helper()
	zr, err := zip.OpenReader(path)
	if err != nil {
		t.Fatalf("failed to open archive %s: %v", path, err)
	}
	defer func() {
		if cerr := zr.Close(); cerr != nil {
			t.Logf("warning: close returned error: %v", cerr)
		}
	}()

	entries := make([]ZipEntry, 0, len(zr.File))
	for _, f := range zr.File {
		entries = append(entries, ZipEntry{Name: f.Name, Method: f.Method})
	}
	slices.SortFunc(entries, func(a, b ZipEntry) int {
		return strings.Compare(a.Name, b.Name)
	})
	return entries
}

// ZipNames returns the sorted member names of the archive at path.
func ZipNames(t testing.TB, path string) []string {
	t.Helper()
	entries := ZipContents(t, path)
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name
	}
	return names
}
