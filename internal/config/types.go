// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"extpack-cli/pkg/exclude"
	"extpack-cli/pkg/types"
)

// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
var ErrInvalidConfig = errors.New("invalid config")

type (
	// Config is the complete extpack configuration.
	Config struct {
		Build      BuildConfig      `json:"build" toml:"build" mapstructure:"build"`
		Relocation RelocationConfig `json:"relocation" toml:"relocation" mapstructure:"relocation"`
		Install    InstallConfig    `json:"install" toml:"install" mapstructure:"install"`
		Watch      WatchConfig      `json:"watch" toml:"watch" mapstructure:"watch"`
		UI         UIConfig         `json:"ui" toml:"ui" mapstructure:"ui"`
	}

	// BuildConfig configures the archive builder.
	BuildConfig struct {
		// TargetDir receives finished archives. "~" and $VARS are expanded.
		TargetDir types.FilesystemPath `json:"target_dir" toml:"target_dir" mapstructure:"target_dir"`
		// MetadataFile is read from the working directory.
		MetadataFile string `json:"metadata_file" toml:"metadata_file" mapstructure:"metadata_file"`
		// SelfName is the builder script dropped by --no-self.
		SelfName string `json:"self_name" toml:"self_name" mapstructure:"self_name"`
		// IncludeSelf is the default when --no-self is not given.
		IncludeSelf bool `json:"include_self" toml:"include_self" mapstructure:"include_self"`
		// Exclude adds patterns on top of the built-in exclusions.
		Exclude []string `json:"exclude" toml:"exclude" mapstructure:"exclude"`
	}

	// RelocationConfig controls how a failed move is reported.
	RelocationConfig struct {
		// SoftFail reports move failures without a non-zero exit code.
		SoftFail bool `json:"soft_fail" toml:"soft_fail" mapstructure:"soft_fail"`
	}

	// InstallConfig configures `extpack install`.
	InstallConfig struct {
		ExtensionsDir types.FilesystemPath `json:"extensions_dir" toml:"extensions_dir" mapstructure:"extensions_dir"`
		SchemasDir    types.FilesystemPath `json:"schemas_dir" toml:"schemas_dir" mapstructure:"schemas_dir"`
		// SchemaID is used when metadata.json has no settings-schema.
		SchemaID       string `json:"schema_id" toml:"schema_id" mapstructure:"schema_id"`
		CompileCommand string `json:"compile_command" toml:"compile_command" mapstructure:"compile_command"`
	}

	// WatchConfig configures `extpack --watch`.
	WatchConfig struct {
		// Debounce is a Go duration string ("500ms").
		Debounce string `json:"debounce" toml:"debounce" mapstructure:"debounce"`
		// Ignore holds doublestar patterns that never trigger a rebuild.
		Ignore []string `json:"ignore" toml:"ignore" mapstructure:"ignore"`
	}

	// UIConfig configures terminal output.
	UIConfig struct {
		Verbose bool `json:"verbose" toml:"verbose" mapstructure:"verbose"`
	}

	// InvalidConfigError collects every field-level problem found by Validate.
	InvalidConfigError struct {
		FieldErrors []error
	}
)

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	return &Config{
		Build: BuildConfig{
			TargetDir:    "~/dev/backup",
			MetadataFile: "metadata.json",
			SelfName:     "build.py",
			IncludeSelf:  true,
			Exclude:      []string{},
		},
		Install: InstallConfig{
			ExtensionsDir:  "~/.local/share/gnome-shell/extensions",
			SchemasDir:     "~/.local/share/glib-2.0/schemas",
			CompileCommand: "glib-compile-schemas",
		},
		Watch: WatchConfig{
			Debounce: "500ms",
			Ignore:   []string{},
		},
	}
}

// DebounceDuration parses Watch.Debounce.
func (c WatchConfig) DebounceDuration() (time.Duration, error) {
	d, err := time.ParseDuration(c.Debounce)
	if err != nil {
		return 0, fmt.Errorf("watch.debounce: %w", err)
	}
	if d < 0 {
		return 0, fmt.Errorf("watch.debounce: must not be negative, got %s", c.Debounce)
	}
	return d, nil
}

// Validate checks constraints the CUE schema cannot express.
func (c Config) Validate() error {
	var errs []error
	paths := []struct {
		key  string
		path types.FilesystemPath
	}{
		{"build.target_dir", c.Build.TargetDir},
		{"install.extensions_dir", c.Install.ExtensionsDir},
		{"install.schemas_dir", c.Install.SchemasDir},
	}
	for _, p := range paths {
		if err := p.path.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", p.key, err))
		}
	}
	if strings.TrimSpace(c.Build.MetadataFile) == "" {
		errs = append(errs, errors.New("build.metadata_file: must be non-empty"))
	}
	if _, err := exclude.New(c.Build.Exclude...); err != nil {
		errs = append(errs, fmt.Errorf("build.exclude: %w", err))
	}
	if _, err := c.Watch.DebounceDuration(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return &InvalidConfigError{FieldErrors: errs}
	}
	return nil
}

// Error implements the error interface.
func (e *InvalidConfigError) Error() string {
	msgs := make([]string, len(e.FieldErrors))
	for i, err := range e.FieldErrors {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("invalid config (%d errors): %s", len(e.FieldErrors), strings.Join(msgs, "; "))
}

// Unwrap returns ErrInvalidConfig for errors.Is() compatibility.
func (e *InvalidConfigError) Unwrap() error { return ErrInvalidConfig }
