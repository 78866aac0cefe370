// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestTempTree(t *testing.T) {
	t.Parallel()

	root := TempTree(t, map[string]string{
		"a.txt":     "a",
		"sub/b.txt": "b",
	})

	got, err := os.ReadFile(filepath.Join(root, "sub", "b.txt"))
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(got) != "b" {
		t.Errorf("sub/b.txt = %q, want %q", got, "b")
	}
}

func TestZipContents(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "x.zip")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	zw := zip.NewWriter(f)
	for _, h := range []*zip.FileHeader{
		{Name: "z.txt", Method: zip.Deflate},
		{Name: "a.txt", Method: zip.Store},
	} {
		if _, err := zw.CreateHeader(h); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	want := []ZipEntry{
		{Name: "a.txt", Method: zip.Store},
		{Name: "z.txt", Method: zip.Deflate},
	}
	if diff := cmp.Diff(want, ZipContents(t, path)); diff != "" {
		t.Errorf("ZipContents() mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"a.txt", "z.txt"}, ZipNames(t, path)); diff != "" {
		t.Errorf("ZipNames() mismatch (-want +got):\n%s", diff)
	}
}
