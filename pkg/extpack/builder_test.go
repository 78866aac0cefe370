// SPDX-License-Identifier: MPL-2.0

package extpack

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"extpack-cli/internal/testutil"
	"extpack-cli/pkg/exclude"
	"extpack-cli/pkg/extmeta"

	"github.com/charmbracelet/log"
	"github.com/google/go-cmp/cmp"
)

const testMetadata = `{"uuid": "lesion@example.com", "version-name": "1.2", "settings-schema": "dev.lethil.lesion"}`

func extensionTree(t *testing.T) string {
	t.Helper()
	return testutil.TempTree(t, map[string]string{
		"metadata.json":                         testMetadata,
		"extension.js":                          "export default class {}",
		"prefs.js":                              "// prefs",
		"build.py":                              "#!/usr/bin/env python3",
		"ui/panel.js":                           "// panel",
		"schemas/dev.lethil.lesion.gschema.xml": "<schemalist/>",
		"schemas/gschemas.compiled":             "binary",
		".git/config":                           "[core]",
		".git/objects/ab/cdef":                  "blob",
		".vscode/settings.json":                 "{}",
		"__pycache__/build.cpython-312.pyc":     "pyc",
		"old_v0.zip":                            "PK",
	})
}

func zipEntries(t *testing.T, path string) []string {
	t.Helper()
	for _, e := range testutil.ZipContents(t, path) {
		if e.Method != zip.Deflate {
			t.Errorf("entry %s method = %d, want Deflate", e.Name, e.Method)
		}
	}
	return testutil.ZipNames(t, path)
}

func newTestBuilder(t *testing.T, root string, mutate func(*Options)) (*Builder, *bytes.Buffer) {
	t.Helper()
	var logs bytes.Buffer
	opts := DefaultOptions(filepath.Join(t.TempDir(), "backup"))
	opts.Root = root
	opts.Logger = log.New(&logs)
	if mutate != nil {
		mutate(&opts)
	}
	b, err := New(opts)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return b, &logs
}

func TestBuild_IncludesSelfByDefault(t *testing.T) {
	t.Parallel()

	root := extensionTree(t)
	b, logs := newTestBuilder(t, root, nil)

	res, err := b.Build(context.Background())
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if res.ArchiveName != "lesion@example.com_v1.2.zip" {
		t.Errorf("ArchiveName = %q", res.ArchiveName)
	}
	wantDest := filepath.Join(b.Options().TargetDir, res.ArchiveName)
	if res.Destination != wantDest {
		t.Errorf("Destination = %q, want %q", res.Destination, wantDest)
	}
	if _, err := os.Stat(res.ArchivePath); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("archive should have been moved out of %s", root)
	}

	want := []string{
		"build.py",
		"extension.js",
		"metadata.json",
		"prefs.js",
		"schemas/dev.lethil.lesion.gschema.xml",
		"ui/panel.js",
	}
	if diff := cmp.Diff(want, zipEntries(t, res.Destination)); diff != "" {
		t.Errorf("archive entries mismatch (-want +got):\n%s", diff)
	}
	if res.Files != len(want) {
		t.Errorf("Files = %d, want %d", res.Files, len(want))
	}
	if len(res.SelfExcluded) != 0 {
		t.Errorf("SelfExcluded = %v, want none", res.SelfExcluded)
	}

	for _, line := range []string{"Packaging: lesion@example.com_v1.2.zip", "Zip created successfully.", "Created directory: "} {
		if !strings.Contains(logs.String(), line) {
			t.Errorf("log output missing %q:\n%s", line, logs.String())
		}
	}
}

func TestBuild_NoSelf(t *testing.T) {
	t.Parallel()

	root := extensionTree(t)
	b, logs := newTestBuilder(t, root, func(o *Options) { o.IncludeSelf = false })

	res, err := b.Build(context.Background())
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if slices.Contains(zipEntries(t, res.Destination), "build.py") {
		t.Error("build.py should not be archived with IncludeSelf=false")
	}
	if diff := cmp.Diff([]string{"build.py"}, res.SelfExcluded); diff != "" {
		t.Errorf("SelfExcluded mismatch (-want +got):\n%s", diff)
	}
	if !strings.Contains(logs.String(), "[Excluded] Builder script (build.py)") {
		t.Errorf("log output missing self-exclusion line:\n%s", logs.String())
	}
}

func TestBuild_CustomSelfName(t *testing.T) {
	t.Parallel()

	root := testutil.TempTree(t, map[string]string{
		"metadata.json": testMetadata,
		"package.sh":    "#!/bin/sh",
		"build.py":      "# not the builder here",
	})
	b, _ := newTestBuilder(t, root, func(o *Options) {
		o.IncludeSelf = false
		o.SelfName = "package.sh"
	})

	res, err := b.Build(context.Background())
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if diff := cmp.Diff([]string{"build.py", "metadata.json"}, zipEntries(t, res.Destination)); diff != "" {
		t.Errorf("archive entries mismatch (-want +got):\n%s", diff)
	}
}

func TestBuild_ExtraExcludes(t *testing.T) {
	t.Parallel()

	root := testutil.TempTree(t, map[string]string{
		"metadata.json":     testMetadata,
		"extension.js":      "",
		"po/de.po":          "",
		"screenshots/a.png": "",
	})
	rs, err := exclude.New("*.po", "screenshots/*")
	if err != nil {
		t.Fatal(err)
	}
	b, _ := newTestBuilder(t, root, func(o *Options) { o.Ruleset = rs })

	res, err := b.Build(context.Background())
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if diff := cmp.Diff([]string{"extension.js", "metadata.json"}, zipEntries(t, res.Destination)); diff != "" {
		t.Errorf("archive entries mismatch (-want +got):\n%s", diff)
	}
}

func TestBuild_SecondRunOverwrites(t *testing.T) {
	t.Parallel()

	root := testutil.TempTree(t, map[string]string{
		"metadata.json": testMetadata,
		"extension.js":  "v1",
	})
	b, _ := newTestBuilder(t, root, nil)

	first, err := b.Build(context.Background())
	if err != nil {
		t.Fatalf("first Build() error = %v", err)
	}

	if err := os.WriteFile(filepath.Join(root, "new.js"), []byte("v2"), 0o644); err != nil {
		t.Fatal(err)
	}
	second, err := b.Build(context.Background())
	if err != nil {
		t.Fatalf("second Build() error = %v", err)
	}

	if first.Destination != second.Destination {
		t.Fatalf("destinations differ: %q vs %q", first.Destination, second.Destination)
	}
	if diff := cmp.Diff([]string{"extension.js", "metadata.json", "new.js"}, zipEntries(t, second.Destination)); diff != "" {
		t.Errorf("second archive should replace the first (-want +got):\n%s", diff)
	}
}

func TestBuild_MissingMetadata(t *testing.T) {
	t.Parallel()

	root := testutil.TempTree(t, map[string]string{"extension.js": ""})
	b, _ := newTestBuilder(t, root, nil)

	res, err := b.Build(context.Background())
	if res != nil {
		t.Errorf("Build() result = %+v, want nil", res)
	}
	var cfgErr *extmeta.ConfigurationError
	if !errors.As(err, &cfgErr) || cfgErr.Kind != extmeta.KindMissingFile {
		t.Fatalf("Build() error = %v, want missing-file ConfigurationError", err)
	}

	matches, _ := filepath.Glob(filepath.Join(root, "*.zip"))
	if len(matches) != 0 {
		t.Errorf("no archive should be created, found %v", matches)
	}
	if _, err := os.Stat(b.Options().TargetDir); !errors.Is(err, os.ErrNotExist) {
		t.Error("target directory should not be created")
	}
}

func TestBuild_RelocationFailureKeepsArchive(t *testing.T) {
	t.Parallel()

	root := testutil.TempTree(t, map[string]string{
		"metadata.json": testMetadata,
		"extension.js":  "",
	})
	blocker := filepath.Join(t.TempDir(), "backup")
	if err := os.WriteFile(blocker, []byte("not a directory"), 0o644); err != nil {
		t.Fatal(err)
	}
	b, _ := newTestBuilder(t, root, func(o *Options) { o.TargetDir = blocker })

	res, err := b.Build(context.Background())
	if !errors.Is(err, ErrRelocation) {
		t.Fatalf("Build() error = %v, want ErrRelocation", err)
	}
	var relErr *RelocationError
	if !errors.As(err, &relErr) || relErr.Source != res.ArchivePath {
		t.Errorf("RelocationError = %+v, want Source %q", relErr, res.ArchivePath)
	}
	if res.Destination != "" {
		t.Errorf("Destination = %q, want empty", res.Destination)
	}
	if _, err := os.Stat(res.ArchivePath); err != nil {
		t.Errorf("archive should remain in the working directory: %v", err)
	}
}

func TestBuild_Cancelled(t *testing.T) {
	t.Parallel()

	root := extensionTree(t)
	b, _ := newTestBuilder(t, root, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := b.Build(ctx)
	if !errors.Is(err, ErrArchive) || !errors.Is(err, context.Canceled) {
		t.Errorf("Build() error = %v, want ArchiveError wrapping context.Canceled", err)
	}
}

func TestNew_RequiresTargetDir(t *testing.T) {
	t.Parallel()

	if _, err := New(Options{}); !errors.Is(err, ErrInvalidOptions) {
		t.Errorf("New(Options{}) error = %v, want ErrInvalidOptions", err)
	}

	b, err := New(Options{TargetDir: "/tmp/x"})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	opts := b.Options()
	if opts.Root != "." || opts.SelfName != DefaultSelfName || opts.MetadataFile != extmeta.DefaultFileName || opts.Ruleset == nil {
		t.Errorf("defaults not applied: %+v", opts)
	}
}
