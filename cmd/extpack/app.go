// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"extpack-cli/internal/config"
	"extpack-cli/internal/install"
	"extpack-cli/pkg/fspath"
	"extpack-cli/pkg/types"

	"github.com/charmbracelet/log"
)

type (
	// App wires CLI services and shared dependencies. All command handlers
	// receive an App reference.
	App struct {
		Config ConfigProvider
		Runner install.CommandRunner
		stdout io.Writer
		stderr io.Writer
		// workDir is the extension source tree builds operate on.
		workDir string
	}

	// Dependencies defines the injection points for building an App. Nil
	// fields are replaced with production defaults by NewApp.
	Dependencies struct {
		Config  ConfigProvider
		Runner  install.CommandRunner
		Stdout  io.Writer
		Stderr  io.Writer
		WorkDir string
	}

	// ConfigProvider loads configuration using explicit options.
	ConfigProvider interface {
		Load(ctx context.Context, opts config.LoadOptions) (*config.Config, string, error)
	}

	// rootFlagValues holds the persistent flags shared by every command.
	rootFlagValues struct {
		configPath string
		verbose    bool
	}
)

// NewApp creates an App with defaults for omitted dependencies.
func NewApp(deps Dependencies) (*App, error) {
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}
	if deps.Config == nil {
		deps.Config = config.NewProvider()
	}
	if deps.Runner == nil {
		deps.Runner = install.ExecRunner{}
	}
	if deps.WorkDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("determine working directory: %w", err)
		}
		deps.WorkDir = wd
	}

	return &App{
		Config:  deps.Config,
		Runner:  deps.Runner,
		stdout:  deps.Stdout,
		stderr:  deps.Stderr,
		workDir: deps.WorkDir,
	}, nil
}

// loadConfig loads configuration for a command invocation. The verbose flag
// wins over ui.verbose only when it is set.
func (a *App) loadConfig(ctx context.Context, flags *rootFlagValues) (*config.Config, string, error) {
	cfg, path, err := a.Config.Load(ctx, config.LoadOptions{
		ConfigFilePath: flags.configPath,
		WorkDir:        a.workDir,
	})
	if err != nil {
		return nil, "", err
	}
	if flags.verbose {
		cfg.UI.Verbose = true
	}
	return cfg, path, nil
}

// newLogger returns the progress logger handed to builders, installers and
// watchers.
func (a *App) newLogger(verbose bool) *log.Logger {
	level := log.InfoLevel
	if verbose {
		level = log.DebugLevel
	}
	return log.NewWithOptions(a.stderr, log.Options{
		Prefix: "extpack",
		Level:  level,
	})
}

// resolvePath expands "~" and variables in a configured path and anchors
// relative results at the working directory.
func (a *App) resolvePath(p types.FilesystemPath) (string, error) {
	expanded, err := fspath.Expand(p, nil)
	if err != nil {
		return "", err
	}
	s := string(expanded)
	if !filepath.IsAbs(s) {
		s = filepath.Join(a.workDir, s)
	}
	return s, nil
}
