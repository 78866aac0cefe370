// SPDX-License-Identifier: MPL-2.0

// Package fspath resolves user-supplied filesystem paths from configuration
// and flags. Paths may start with "~" and may reference environment
// variables ("$HOME/dev/backup", "${XDG_DATA_HOME}/gnome-shell").
package fspath

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"extpack-cli/pkg/types"

	"mvdan.cc/sh/v3/shell"
)

// Env looks up environment variables. A nil Env means os.Getenv.
type Env func(name string) string

// Expand resolves a leading "~" against the HOME variable and expands
// "$VAR" and "${VAR}" references. Command substitution is not supported.
// The result is cleaned but not made absolute.
func Expand(p types.FilesystemPath, env Env) (types.FilesystemPath, error) {
	if err := p.Validate(); err != nil {
		return "", err
	}
	if env == nil {
		env = os.Getenv
	}

	raw := string(p)
	if raw == "~" || strings.HasPrefix(raw, "~/") {
		home := env("HOME")
		if home == "" {
			var err error
			if home, err = os.UserHomeDir(); err != nil {
				return "", fmt.Errorf("expand %q: resolve home directory: %w", raw, err)
			}
		}
		raw = home + raw[1:]
	}

	expanded, err := shell.Expand(raw, env)
	if err != nil {
		return "", fmt.Errorf("expand %q: %w", p, err)
	}
	if strings.TrimSpace(expanded) == "" {
		return "", fmt.Errorf("expand %q: %w", p, &types.InvalidFilesystemPathError{Value: types.FilesystemPath(expanded)})
	}
	return types.FilesystemPath(filepath.Clean(expanded)), nil
}

// Abs expands p and makes it absolute relative to the current directory.
func Abs(p types.FilesystemPath, env Env) (types.FilesystemPath, error) {
	expanded, err := Expand(p, env)
	if err != nil {
		return "", err
	}
	abs, err := filepath.Abs(string(expanded))
	if err != nil {
		return "", fmt.Errorf("resolving absolute path: %w", err)
	}
	return types.FilesystemPath(abs), nil
}

// JoinStr wraps filepath.Join, accepting a typed base path and raw string
// segments such as file names read from metadata.
func JoinStr(base types.FilesystemPath, elem ...string) types.FilesystemPath {
	parts := make([]string, 1, 1+len(elem))
	parts[0] = string(base)
	parts = append(parts, elem...)
	return types.FilesystemPath(filepath.Join(parts...))
}
