// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"slices"
	"strings"

	"extpack-cli/internal/config"

	"github.com/spf13/cobra"
)

// newConfigCommand creates the `extpack config` command tree.
func newConfigCommand(app *App, rootFlags *rootFlagValues) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage extpack configuration",
		Long: `Manage extpack configuration.

Configuration is stored in:
  - Linux: ~/.config/extpack/config.cue
  - macOS: ~/Library/Application Support/extpack/config.cue
  - Windows: %APPDATA%\extpack\config.cue

An extpack.cue in the working directory is used when the user file is
absent. Every key can be overridden with an EXTPACK_ environment variable,
for example EXTPACK_BUILD_TARGET_DIR.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	var format string
	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return showConfig(cmd, app, rootFlags, config.Format(format))
		},
	}
	showCmd.Flags().StringVarP(&format, "format", "f", string(config.FormatCUE), "output format: "+formatList())
	_ = showCmd.RegisterFlagCompletionFunc("format", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return strings.Split(formatList(), "|"), cobra.ShellCompDirectiveNoFileComp
	})
	cfgCmd.AddCommand(showCmd)

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show the configuration file in use",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return showConfigPath(cmd, app, rootFlags)
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create the default configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return initConfig(app, rootFlags)
		},
	})

	return cfgCmd
}

func formatList() string {
	formats := config.Formats()
	names := make([]string, len(formats))
	for i, f := range formats {
		names[i] = string(f)
	}
	return strings.Join(names, "|")
}

func showConfig(cmd *cobra.Command, app *App, rootFlags *rootFlagValues, format config.Format) error {
	if !slices.Contains(config.Formats(), format) {
		return fmt.Errorf("invalid --format %q (want %s)", format, formatList())
	}

	cfg, _, err := app.loadConfig(cmd.Context(), rootFlags)
	if err != nil {
		return app.fail(err, rootFlags.verbose)
	}

	out, err := config.Marshal(cfg, format)
	if err != nil {
		return app.fail(err, rootFlags.verbose)
	}
	_, err = app.stdout.Write(out)
	return err
}

func showConfigPath(cmd *cobra.Command, app *App, rootFlags *rootFlagValues) error {
	_, path, err := app.loadConfig(cmd.Context(), rootFlags)
	if err != nil {
		return app.fail(err, rootFlags.verbose)
	}

	if path == "" {
		defaultPath, err := config.DefaultConfigPath()
		if err != nil {
			return app.fail(err, rootFlags.verbose)
		}
		fmt.Fprintf(app.stdout, "%s %s\n", KeyStyle.Render("Config file:"), defaultPath)
		fmt.Fprintln(app.stdout, SubtitleStyle.Render("(not present, using defaults)"))
		return nil
	}

	fmt.Fprintf(app.stdout, "%s %s\n", KeyStyle.Render("Config file:"), path)
	return nil
}

func initConfig(app *App, rootFlags *rootFlagValues) error {
	path, created, err := config.CreateDefaultConfig("")
	if err != nil {
		return app.fail(err, rootFlags.verbose)
	}
	if !created {
		fmt.Fprintf(app.stdout, "%s %s\n", WarningStyle.Render("Config file already exists:"), path)
		return nil
	}
	fmt.Fprintf(app.stdout, "%s Created default configuration at %s\n", SuccessStyle.Render("✓"), path)
	return nil
}
