// SPDX-License-Identifier: MPL-2.0

package watch

import (
	"testing"

	"extpack-cli/pkg/exclude"
)

func TestFilterSkip(t *testing.T) {
	t.Parallel()

	rs, err := exclude.New("*.po")
	if err != nil {
		t.Fatalf("exclude.New() returned error: %v", err)
	}
	f, err := newFilter(rs, []string{"docs/**"})
	if err != nil {
		t.Fatalf("newFilter() returned error: %v", err)
	}

	tests := []struct {
		rel  string
		want bool
	}{
		{".", false},
		{"extension.js", false},
		{"schemas/org.example.gschema.xml", false},
		{".git", true},
		{".git/HEAD", true},
		{"demo@example.com_v3.zip", true},
		{"schemas/gschemas.compiled", true},
		{"tmp", true},
		{"locale/de.po", true},
		{"docs/readme.md", true},
		{"prefs.js~", true},
		{"ui/.panel.js.swp", true},
	}

	for _, tt := range tests {
		if got := f.skip(tt.rel); got != tt.want {
			t.Errorf("skip(%q) = %v, want %v", tt.rel, got, tt.want)
		}
	}
}

func TestFilterSkipDir(t *testing.T) {
	t.Parallel()

	f, err := newFilter(nil, []string{"docs/**"})
	if err != nil {
		t.Fatalf("newFilter() returned error: %v", err)
	}

	tests := []struct {
		rel  string
		want bool
	}{
		{".", false},
		{"ui", false},
		{"schemas", false},
		// tmp/nested/deep.txt is archived, so tmp and its children stay watched.
		{"tmp", false},
		{"tmp/nested", false},
		{".git", true},
		{"vendor/lib/.git", true},
		{".vscode", true},
		{".idea", true},
		{"__pycache__", true},
		{"docs/api", true},
	}

	for _, tt := range tests {
		if got := f.skipDir(tt.rel); got != tt.want {
			t.Errorf("skipDir(%q) = %v, want %v", tt.rel, got, tt.want)
		}
	}
}

func TestPrunedDirs_AreFullyExcluded(t *testing.T) {
	t.Parallel()

	rs := exclude.Default()
	for _, dir := range []string{".git", "vendor/.git", ".vscode", "lib/.vscode", ".idea", "__pycache__"} {
		for _, child := range []string{"a", "deep/nested/b.js"} {
			rel := dir + "/" + child
			if !rs.Excluded(rel) {
				t.Errorf("%s is archived but its directory is pruned from watching", rel)
			}
		}
	}
}

func TestFilter_NilRulesetUsesDefaults(t *testing.T) {
	t.Parallel()

	f, err := newFilter(nil, nil)
	if err != nil {
		t.Fatalf("newFilter() returned error: %v", err)
	}
	if !f.skip(".vscode/settings.json") {
		t.Error("expected built-in exclusions to apply")
	}
}

func TestEditorNoise_ReturnsCopy(t *testing.T) {
	t.Parallel()

	got := EditorNoise()
	got[0] = "mutated"
	if editorNoise[0] == "mutated" {
		t.Error("EditorNoise must return a copy")
	}
}
