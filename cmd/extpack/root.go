// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"extpack-cli/pkg/types"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// NewRootCommand builds the extpack command tree. Running extpack without a
// subcommand builds the extension in the working directory.
func NewRootCommand(app *App) *cobra.Command {
	rootFlags := &rootFlagValues{}
	buildFlags := &buildFlagValues{}

	rootCmd := &cobra.Command{
		Use:   "extpack",
		Short: "Package a GNOME Shell extension into a deployable zip file",
		Long: TitleStyle.Render("extpack") + SubtitleStyle.Render(" - GNOME Shell extension packager") + `

extpack reads metadata.json in the current directory, zips the extension
as {uuid}_v{version}.zip (skipping VCS folders, editor settings, compiled
schemas and older archives) and moves the archive to ~/dev/backup.

` + SubtitleStyle.Render("Examples:") + `
  extpack                  Build, keeping build.py in the archive
  extpack --no-self        Build without the builder script
  extpack --watch          Rebuild whenever a source file changes
  extpack install          Symlink the extension for local development
  extpack config show      Show the effective configuration`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBuild(cmd, app, rootFlags, buildFlags)
		},
	}

	rootCmd.SetOut(app.stdout)
	rootCmd.SetErr(app.stderr)

	rootCmd.PersistentFlags().BoolVarP(&rootFlags.verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&rootFlags.configPath, "config", "", "config file (default is $XDG_CONFIG_HOME/extpack/config.cue)")
	addBuildFlags(rootCmd, buildFlags)

	rootCmd.AddCommand(newBuildCommand(app, rootFlags))
	rootCmd.AddCommand(newInstallCommand(app, rootFlags))
	rootCmd.AddCommand(newConfigCommand(app, rootFlags))

	return rootCmd
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// errorHandler skips errors that were already rendered by the failing
// command and defers to fang for everything else (flag errors, unknown
// commands).
func errorHandler(w io.Writer, styles fang.Styles, err error) {
	var exitErr *ExitError
	if errors.As(err, &exitErr) && exitErr.Err == nil {
		return
	}
	fang.DefaultErrorHandler(w, styles, err)
}

// Main runs the CLI and returns the process exit code.
func Main() int {
	app, err := NewApp(Dependencies{})
	if err != nil {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("Error:"), err)
		return int(types.ExitFailure)
	}
	return run(context.Background(), app, os.Args[1:])
}

// run executes the command tree with args. Split from Main for tests.
func run(ctx context.Context, app *App, args []string) int {
	rootCmd := NewRootCommand(app)
	rootCmd.SetArgs(args)

	if err := fang.Execute(
		ctx,
		rootCmd,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
		fang.WithErrorHandler(errorHandler),
		fang.WithoutManpage(),
	); err != nil {
		return exitCode(app.stderr, err)
	}
	return int(types.ExitSuccess)
}

// exitCode maps a command error onto the process exit status. Codes outside
// the 0-255 range a process can report are replaced by ExitFailure.
func exitCode(stderr io.Writer, err error) int {
	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		return int(types.ExitFailure)
	}
	if verr := exitErr.Code.Validate(); verr != nil {
		fmt.Fprintln(stderr, ErrorStyle.Render("Error:"), verr)
		return int(types.ExitFailure)
	}
	return int(exitErr.Code)
}

// Execute runs the CLI and exits the process. It is called by main.main().
func Execute() {
	os.Exit(Main())
}
