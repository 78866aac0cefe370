// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"path/filepath"

	"extpack-cli/internal/install"
	"extpack-cli/pkg/types"

	"github.com/spf13/cobra"
)

type installFlagValues struct {
	source      string
	skipCompile bool
}

func newInstallCommand(app *App, rootFlags *rootFlagValues) *cobra.Command {
	flags := &installFlagValues{}
	installCmd := &cobra.Command{
		Use:   "install",
		Short: "Link the extension into GNOME Shell for development",
		Long: `Link the extension into GNOME Shell for development.

Creates install.extensions_dir/{uuid} as a symlink to the source tree,
copies schemas/{settings-schema}.gschema.xml into install.schemas_dir and
runs glib-compile-schemas there. An existing symlink is left in place; any
other file at the destination aborts the install.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInstall(cmd, app, rootFlags, flags)
		},
	}

	installCmd.Flags().StringVar(&flags.source, "source", "", "extension source directory (default is the working directory)")
	installCmd.Flags().BoolVar(&flags.skipCompile, "skip-compile", false, "do not run the schema compiler")

	return installCmd
}

func runInstall(cmd *cobra.Command, app *App, rootFlags *rootFlagValues, flags *installFlagValues) error {
	ctx := cmd.Context()

	cfg, _, err := app.loadConfig(ctx, rootFlags)
	if err != nil {
		return app.fail(err, rootFlags.verbose)
	}
	verbose := cfg.UI.Verbose

	source := app.workDir
	if flags.source != "" {
		if source, err = app.resolvePath(types.FilesystemPath(flags.source)); err != nil {
			return app.fail(fmt.Errorf("--source: %w", err), verbose)
		}
	}
	extensionsDir, err := app.resolvePath(cfg.Install.ExtensionsDir)
	if err != nil {
		return app.fail(fmt.Errorf("install.extensions_dir: %w", err), verbose)
	}
	schemasDir, err := app.resolvePath(cfg.Install.SchemasDir)
	if err != nil {
		return app.fail(fmt.Errorf("install.schemas_dir: %w", err), verbose)
	}

	installer, err := install.New(install.Options{
		Source:         source,
		MetadataFile:   cfg.Build.MetadataFile,
		ExtensionsDir:  extensionsDir,
		SchemasDir:     schemasDir,
		SchemaID:       cfg.Install.SchemaID,
		CompileCommand: cfg.Install.CompileCommand,
		SkipCompile:    flags.skipCompile,
		Runner:         app.Runner,
		Logger:         app.newLogger(verbose),
	})
	if err != nil {
		return app.fail(err, verbose)
	}

	res, err := installer.Install(ctx)
	if err != nil {
		return app.fail(err, verbose)
	}

	fmt.Fprintf(app.stdout, "%s %s\n", SuccessStyle.Render("✓"), "Installed "+res.Metadata.UUID)
	fmt.Fprintf(app.stdout, "%s %s\n", KeyStyle.Render("Extension:"), res.LinkPath)
	if res.SchemaPath != "" {
		fmt.Fprintf(app.stdout, "%s %s\n", KeyStyle.Render("Schema:"), filepath.Base(res.SchemaPath))
	}
	if res.LinkCreated {
		fmt.Fprintln(app.stdout, SubtitleStyle.Render("Log out and back in (or restart GNOME Shell on X11) to load the extension."))
	}
	return nil
}
