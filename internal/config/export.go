// SPDX-License-Identifier: MPL-2.0

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/ast"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/format"
	"github.com/pelletier/go-toml/v2"
)

// Format names an output format for `extpack config show`.
type Format string

const (
	FormatCUE  Format = "cue"
	FormatJSON Format = "json"
	FormatTOML Format = "toml"
)

const cueHeader = "// extpack configuration file\n// Run 'extpack config show' to print the effective values.\n\n"

// Formats lists the accepted Format values.
func Formats() []Format {
	return []Format{FormatCUE, FormatJSON, FormatTOML}
}

// Marshal renders cfg in the requested format.
func Marshal(cfg *Config, f Format) ([]byte, error) {
	switch f {
	case FormatCUE:
		src, err := GenerateCUE(cfg)
		if err != nil {
			return nil, err
		}
		return []byte(src), nil
	case FormatJSON:
		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to encode config as JSON: %w", err)
		}
		return append(data, '\n'), nil
	case FormatTOML:
		data, err := toml.Marshal(cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to encode config as TOML: %w", err)
		}
		return data, nil
	default:
		return nil, fmt.Errorf("unknown format %q (want one of %v)", f, Formats())
	}
}

// GenerateCUE generates a CUE representation of the configuration that
// validates against #Config.
func GenerateCUE(cfg *Config) (string, error) {
	v := cuecontext.New().Encode(cfg)
	if v.Err() != nil {
		return "", fmt.Errorf("failed to encode config: %w", v.Err())
	}

	node := v.Syntax(cue.Concrete(true))
	// Emit top-level fields rather than a single braced struct.
	if sl, ok := node.(*ast.StructLit); ok {
		node = &ast.File{Decls: sl.Elts}
	}

	src, err := format.Node(node, format.Simplify())
	if err != nil {
		return "", fmt.Errorf("failed to format config: %w", err)
	}

	return cueHeader + string(src) + "\n", nil
}

// CreateDefaultConfig writes the default config file unless one already
// exists. It returns the file path and whether it was created.
func CreateDefaultConfig(cfgDir string) (string, bool, error) {
	if cfgDir == "" {
		dir, err := ConfigDir()
		if err != nil {
			return "", false, err
		}
		cfgDir = dir
	}

	cfgPath := filepath.Join(cfgDir, ConfigFileName+"."+ConfigFileExt)
	if _, err := os.Stat(cfgPath); err == nil {
		return cfgPath, false, nil
	}

	if err := os.MkdirAll(cfgDir, 0o755); err != nil {
		return "", false, fmt.Errorf("failed to create config directory: %w", err)
	}

	src, err := GenerateCUE(DefaultConfig())
	if err != nil {
		return "", false, err
	}

	if err := os.WriteFile(cfgPath, []byte(src), 0o644); err != nil {
		return "", false, fmt.Errorf("failed to write config file: %w", err)
	}

	return cfgPath, true, nil
}
