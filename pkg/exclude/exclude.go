// SPDX-License-Identifier: MPL-2.0

// Package exclude decides which files stay out of an extension archive.
//
// Patterns use shell-glob syntax ("*", "?", "[a-z]", "[!a-z]") where "*" also
// matches "/", so "*.git*" excludes ".git/objects/ab/cdef". Each pattern is
// tested against the slash-separated relative path and against its parent
// directory; any match excludes. As with fnmatch, "{", "}" and "\" are
// ordinary characters, a "[" without a closing "]" matches itself and a
// class may hold several ranges ("[a-zA-Z0-9]").
package exclude

import (
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// builtinPatterns always apply and cannot be removed.
var builtinPatterns = []string{
	"*.git*",
	"*.vscode*",
	".idea/*",
	"__pycache__*",
	"tmp",
	"*.zip",
	"schemas/gschemas.compiled",
}

type (
	// Ruleset is an ordered, immutable list of compiled exclusion patterns.
	Ruleset struct {
		rules []rule
	}

	rule struct {
		pattern string
		g       glob.Glob // nil for a pattern that can never match
	}

	// InvalidPatternError is returned by New for a pattern that does not compile.
	InvalidPatternError struct {
		Pattern string
		Err     error
	}
)

// Error implements the error interface.
func (e *InvalidPatternError) Error() string {
	return fmt.Sprintf("invalid exclude pattern %q: %v", e.Pattern, e.Err)
}

// Unwrap returns the compile error.
func (e *InvalidPatternError) Unwrap() error { return e.Err }

// BuiltinPatterns returns a copy of the patterns every Ruleset carries.
func BuiltinPatterns() []string {
	out := make([]string, len(builtinPatterns))
	copy(out, builtinPatterns)
	return out
}

// Default returns a Ruleset with only the built-in patterns.
func Default() *Ruleset {
	rs, err := New()
	if err != nil {
		panic(err) // built-ins are constants
	}
	return rs
}

// New compiles the built-in patterns followed by extra. Extra patterns can
// only add exclusions.
func New(extra ...string) (*Ruleset, error) {
	rs := &Ruleset{rules: make([]rule, 0, len(builtinPatterns)+len(extra))}
	for _, p := range append(BuiltinPatterns(), extra...) {
		translated, matchable, err := translate(p)
		if err != nil {
			return nil, &InvalidPatternError{Pattern: p, Err: err}
		}
		r := rule{pattern: p}
		if matchable {
			if r.g, err = glob.Compile(translated); err != nil {
				return nil, &InvalidPatternError{Pattern: p, Err: err}
			}
		}
		rs.rules = append(rs.rules, r)
	}
	return rs, nil
}

// Literal returns a pattern matching exactly name (slash separated), with
// "*", "?" and "[" wrapped in character classes.
func Literal(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch r {
		case '*', '?', '[':
			b.WriteByte('[')
			b.WriteRune(r)
			b.WriteByte(']')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Patterns returns the patterns in evaluation order.
func (rs *Ruleset) Patterns() []string {
	out := make([]string, len(rs.rules))
	for i, r := range rs.rules {
		out[i] = r.pattern
	}
	return out
}

// Excluded reports whether rel (a path relative to the archive root, in
// either OS or slash form) must be left out.
func (rs *Ruleset) Excluded(rel string) bool {
	_, ok := rs.Match(rel)
	return ok
}

// Match returns the first pattern that excludes rel.
func (rs *Ruleset) Match(rel string) (string, bool) {
	name := filepath.ToSlash(rel)
	parent := parentDir(name)
	for _, r := range rs.rules {
		if r.g != nil && (r.g.Match(name) || r.g.Match(parent)) {
			return r.pattern, true
		}
	}
	return "", false
}

// parentDir returns the directory part of name, or "" for top-level entries.
func parentDir(name string) string {
	dir := path.Dir(name)
	if dir == "." || dir == "/" {
		return ""
	}
	return dir
}

// maxClassRunes bounds the expansion of one character class.
const maxClassRunes = 4096

var (
	errEmptyPattern = errors.New("empty pattern")
	errClassTooWide = fmt.Errorf("character class spans more than %d characters", maxClassRunes)
)

// translate rewrites a shell glob into gobwas/glob syntax. Braces and
// backslashes become literals, an unterminated "[" matches itself, and each
// character class is expanded into an explicit list, since gobwas accepts at
// most one range per class. matchable is false when a class can match no
// character at all (every range in it is reversed).
func translate(p string) (out string, matchable bool, err error) {
	if p == "" {
		return "", false, errEmptyPattern
	}
	rs := []rune(p)
	var b strings.Builder
	for i := 0; i < len(rs); i++ {
		switch c := rs[i]; c {
		case '{', '}', '\\':
			b.WriteRune('\\')
			b.WriteRune(c)
		case '[':
			end := classEnd(rs, i)
			if end < 0 {
				b.WriteString(`\[`)
				continue
			}
			ok, err := writeClass(&b, rs[i+1:end])
			if err != nil {
				return "", false, err
			}
			if !ok {
				return "", false, nil
			}
			i = end
		default:
			b.WriteRune(c)
		}
	}
	return b.String(), true, nil
}

// classEnd returns the index of the "]" closing the class opened at rs[start],
// or -1. A "]" directly after "[" or "[!" belongs to the class.
func classEnd(rs []rune, start int) int {
	j := start + 1
	if j < len(rs) && rs[j] == '!' {
		j++
	}
	if j < len(rs) && rs[j] == ']' {
		j++
	}
	for ; j < len(rs); j++ {
		if rs[j] == ']' {
			return j
		}
	}
	return -1
}

// writeClass emits body (the text between the brackets) as a gobwas list.
// "-" goes first so it is never read as a range; "\", "]" and "!" are
// escaped. It reports false for a non-negated class with no members.
func writeClass(b *strings.Builder, body []rune) (bool, error) {
	negate := len(body) > 0 && body[0] == '!'
	if negate {
		body = body[1:]
	}

	set := make(map[rune]struct{})
	for k := 0; k < len(body); k++ {
		lo, hi := body[k], body[k]
		if k+2 < len(body) && body[k+1] == '-' {
			hi = body[k+2]
			k += 2
		}
		for r := lo; r <= hi; r++ {
			set[r] = struct{}{}
			if len(set) > maxClassRunes {
				return false, errClassTooWide
			}
		}
	}

	if len(set) == 0 {
		if negate {
			b.WriteByte('?')
			return true, nil
		}
		return false, nil
	}

	members := maps.Keys(set)
	slices.Sort(members)
	b.WriteByte('[')
	if negate {
		b.WriteByte('!')
	}
	if _, ok := set['-']; ok {
		b.WriteByte('-')
	}
	for _, r := range members {
		switch r {
		case '-':
		case '\\', ']', '!':
			b.WriteRune('\\')
			b.WriteRune(r)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte(']')
	return true, nil
}
