// SPDX-License-Identifier: MPL-2.0

package watch

import (
	"fmt"
	"path/filepath"

	"extpack-cli/pkg/exclude"

	"github.com/bmatcuk/doublestar/v4"
)

// editorNoise matches swap and backup files written by editors while saving.
var editorNoise = []string{
	"**/*.swp",
	"**/*.swo",
	"**/*~",
	"**/.#*",
	"**/4913",
}

// prunedDirs name directories whose whole subtree the built-in exclusions
// drop, so registering them with fsnotify would only produce noise.
var prunedDirs = []string{
	"**/.git",
	"**/.vscode",
	".idea",
	"__pycache__",
}

// filter decides which paths are worth a rebuild. A file is dropped when the
// archive would exclude it or when it matches an ignore pattern. Directories
// are pruned only by prunedDirs and the ignore patterns: the exclusion
// ruleset tests a path's parent, so an excluded directory such as "tmp" can
// still hold archived files one level further down.
type filter struct {
	ruleset *exclude.Ruleset
	ignore  []string
}

func newFilter(rs *exclude.Ruleset, ignore []string) (*filter, error) {
	for _, pat := range ignore {
		if !doublestar.ValidatePattern(pat) {
			return nil, fmt.Errorf("watch: invalid ignore pattern %q: %w", pat, doublestar.ErrBadPattern)
		}
	}
	if rs == nil {
		rs = exclude.Default()
	}

	patterns := make([]string, 0, len(editorNoise)+len(ignore))
	patterns = append(patterns, editorNoise...)
	patterns = append(patterns, ignore...)

	return &filter{ruleset: rs, ignore: patterns}, nil
}

// skip reports whether a change to rel (relative to the root) is ignored.
func (f *filter) skip(rel string) bool {
	if rel == "." {
		return false
	}
	slashed := filepath.ToSlash(rel)
	return f.ruleset.Excluded(slashed) || matchAny(f.ignore, slashed)
}

// skipDir reports whether the directory rel should not be watched at all.
func (f *filter) skipDir(rel string) bool {
	if rel == "." {
		return false
	}
	slashed := filepath.ToSlash(rel)
	return matchAny(prunedDirs, slashed) || matchAny(f.ignore, slashed)
}

func matchAny(patterns []string, rel string) bool {
	for _, pat := range patterns {
		if doublestar.MatchUnvalidated(pat, rel) {
			return true
		}
	}
	return false
}

// EditorNoise returns a copy of the patterns that are always ignored.
func EditorNoise() []string {
	out := make([]string, len(editorNoise))
	copy(out, editorNoise)
	return out
}
