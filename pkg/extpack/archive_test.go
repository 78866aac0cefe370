// SPDX-License-Identifier: MPL-2.0

package extpack

import (
	"archive/zip"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"extpack-cli/internal/testutil"

	"github.com/google/go-cmp/cmp"
)

func TestWriteArchive_Contents(t *testing.T) {
	t.Parallel()

	root := testutil.TempTree(t, map[string]string{
		"metadata.json": testMetadata,
		"lib/util.js":   "export const x = 1;",
	})
	b, _ := newTestBuilder(t, root, nil)

	archive := filepath.Join(root, "out.zip")
	stats, err := b.WriteArchive(context.Background(), archive)
	if err != nil {
		t.Fatalf("WriteArchive() error = %v", err)
	}
	if stats.Files != 2 {
		t.Errorf("Files = %d, want 2", stats.Files)
	}

	r, err := zip.OpenReader(archive)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	got := map[string]string{}
	for _, f := range r.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatal(err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatal(err)
		}
		got[f.Name] = string(data)
	}
	want := map[string]string{
		"metadata.json": testMetadata,
		"lib/util.js":   "export const x = 1;",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("archive contents mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteArchive_Symlinks(t *testing.T) {
	t.Parallel()

	root := testutil.TempTree(t, map[string]string{
		"metadata.json":    testMetadata,
		"shared/common.js": "common",
	})
	if err := os.Symlink(filepath.Join(root, "shared", "common.js"), filepath.Join(root, "link.js")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}
	if err := os.Symlink(filepath.Join(root, "shared"), filepath.Join(root, "shared-link")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}
	b, _ := newTestBuilder(t, root, nil)

	archive := filepath.Join(root, "out.zip")
	if _, err := b.WriteArchive(context.Background(), archive); err != nil {
		t.Fatalf("WriteArchive() error = %v", err)
	}

	want := []string{"link.js", "metadata.json", "shared/common.js"}
	if diff := cmp.Diff(want, zipEntries(t, archive)); diff != "" {
		t.Errorf("archive entries mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteArchive_DanglingSymlinkFails(t *testing.T) {
	t.Parallel()

	root := testutil.TempTree(t, map[string]string{"metadata.json": testMetadata})
	if err := os.Symlink(filepath.Join(root, "missing.js"), filepath.Join(root, "broken.js")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}
	b, _ := newTestBuilder(t, root, nil)

	archive := filepath.Join(root, "out.zip")
	_, err := b.WriteArchive(context.Background(), archive)

	var archErr *ArchiveError
	if !errors.As(err, &archErr) {
		t.Fatalf("WriteArchive() error = %v, want *ArchiveError", err)
	}
	if archErr.Path != filepath.Join(root, "broken.js") {
		t.Errorf("Path = %q, want broken.js", archErr.Path)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("error should wrap os.ErrNotExist: %v", err)
	}
	if _, statErr := os.Stat(archive); statErr != nil {
		t.Errorf("partial archive should be left on disk: %v", statErr)
	}
}

func TestWriteArchive_CreateFails(t *testing.T) {
	t.Parallel()

	root := testutil.TempTree(t, map[string]string{"metadata.json": testMetadata})
	b, _ := newTestBuilder(t, root, nil)

	archive := filepath.Join(root, "no-such-dir", "out.zip")
	_, err := b.WriteArchive(context.Background(), archive)
	if !errors.Is(err, ErrArchive) {
		t.Fatalf("WriteArchive() error = %v, want ErrArchive", err)
	}
	if got := err.Error(); got == "" {
		t.Error("error message should not be empty")
	}
}
