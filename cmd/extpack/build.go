// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"extpack-cli/internal/config"
	"extpack-cli/internal/watch"
	"extpack-cli/pkg/exclude"
	"extpack-cli/pkg/extpack"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

// buildFlagValues holds the flags accepted by both `extpack` and `extpack build`.
type buildFlagValues struct {
	noSelf bool
	watch  bool
}

func addBuildFlags(cmd *cobra.Command, flags *buildFlagValues) {
	cmd.Flags().BoolVar(&flags.noSelf, "no-self", false, "do NOT include the builder script in the final zip file")
	cmd.Flags().BoolVarP(&flags.watch, "watch", "w", false, "rebuild whenever a source file changes")
}

func newBuildCommand(app *App, rootFlags *rootFlagValues) *cobra.Command {
	flags := &buildFlagValues{}
	buildCmd := &cobra.Command{
		Use:   "build",
		Short: "Package the extension in the current directory",
		Long: `Package the extension in the current directory.

The archive is named {uuid}_v{version}.zip, where version is "version-name"
from metadata.json, falling back to "version" and then to 0. It is written
next to metadata.json and then moved to build.target_dir (~/dev/backup).`,
		Example: "  extpack build --no-self",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBuild(cmd, app, rootFlags, flags)
		},
	}
	addBuildFlags(buildCmd, flags)
	return buildCmd
}

func runBuild(cmd *cobra.Command, app *App, rootFlags *rootFlagValues, flags *buildFlagValues) error {
	ctx := cmd.Context()

	cfg, cfgPath, err := app.loadConfig(ctx, rootFlags)
	if err != nil {
		return app.fail(err, rootFlags.verbose)
	}
	logger := app.newLogger(cfg.UI.Verbose)

	opts, err := app.builderOptions(cfg, cfgPath, flags, logger)
	if err != nil {
		return app.fail(err, cfg.UI.Verbose)
	}
	builder, err := extpack.New(opts)
	if err != nil {
		return app.fail(err, cfg.UI.Verbose)
	}

	if flags.watch {
		return runBuildWatch(ctx, app, cfg, builder, logger)
	}

	if err := app.buildOnce(ctx, cfg, builder); err != nil {
		return app.fail(err, cfg.UI.Verbose)
	}
	return nil
}

// builderOptions maps configuration and flags onto extpack.Options. A config
// file inside the work directory is excluded from the archive.
func (a *App) builderOptions(cfg *config.Config, cfgPath string, flags *buildFlagValues, logger *log.Logger) (extpack.Options, error) {
	targetDir, err := a.resolvePath(cfg.Build.TargetDir)
	if err != nil {
		return extpack.Options{}, fmt.Errorf("build.target_dir: %w", err)
	}
	patterns := cfg.Build.Exclude
	if rel, ok := a.relToWorkDir(cfgPath); ok {
		patterns = append(slices.Clone(patterns), exclude.Literal(rel))
	}
	ruleset, err := exclude.New(patterns...)
	if err != nil {
		return extpack.Options{}, fmt.Errorf("build.exclude: %w", err)
	}

	return extpack.Options{
		Root:         a.workDir,
		MetadataFile: cfg.Build.MetadataFile,
		TargetDir:    targetDir,
		IncludeSelf:  cfg.Build.IncludeSelf && !flags.noSelf,
		SelfName:     cfg.Build.SelfName,
		Ruleset:      ruleset,
		Logger:       logger,
	}, nil
}

// relToWorkDir returns path relative to the work directory in slash form,
// or false when path is empty or lies outside it.
func (a *App) relToWorkDir(path string) (string, bool) {
	if path == "" {
		return "", false
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(a.workDir, path)
	}
	rel, err := filepath.Rel(a.workDir, path)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

// buildOnce runs one build and prints the summary. A relocation failure is
// downgraded to a warning when relocation.soft_fail is set.
func (a *App) buildOnce(ctx context.Context, cfg *config.Config, builder *extpack.Builder) error {
	res, err := builder.Build(ctx)
	if err != nil {
		var relErr *extpack.RelocationError
		if cfg.Relocation.SoftFail && errors.As(err, &relErr) {
			fmt.Fprintf(a.stderr, "%s %v\n", WarningStyle.Render("Error moving file:"), relErr.Err)
			fmt.Fprintf(a.stderr, "%s %s\n", KeyStyle.Render("Archive kept at:"), res.ArchivePath)
			return nil
		}
		return err
	}

	fmt.Fprintln(a.stdout, SubtitleStyle.Render(separator))
	fmt.Fprintln(a.stdout, SuccessStyle.Render("Build Complete."))
	fmt.Fprintf(a.stdout, "%s %s\n", KeyStyle.Render("File moved to:"), res.Destination)
	fmt.Fprintln(a.stdout, SubtitleStyle.Render(separator))
	return nil
}

// runBuildWatch builds once, then rebuilds after every settled change until
// the context is cancelled. Build failures are reported and the loop goes on.
func runBuildWatch(ctx context.Context, app *App, cfg *config.Config, builder *extpack.Builder, logger *log.Logger) error {
	rebuild := func(ctx context.Context) {
		if err := app.buildOnce(ctx, cfg, builder); err != nil {
			renderServiceError(app.stderr, classifyError(err), cfg.UI.Verbose)
		}
	}

	rebuild(ctx)

	debounce, err := cfg.Watch.DebounceDuration()
	if err != nil {
		return app.fail(err, cfg.UI.Verbose)
	}

	w, err := watch.New(watch.Config{
		Root:     builder.Options().Root,
		Ruleset:  builder.Options().Ruleset,
		Ignore:   cfg.Watch.Ignore,
		Debounce: debounce,
		Logger:   logger,
		OnChange: func(ctx context.Context, changed []string) error {
			logger.Info(fmt.Sprintf("Detected %d change(s), rebuilding...", len(changed)))
			logger.Debug("changed", "paths", changed)
			rebuild(ctx)
			return nil
		},
	})
	if err != nil {
		return app.fail(err, cfg.UI.Verbose)
	}

	if err := w.Run(ctx); err != nil {
		return app.fail(err, cfg.UI.Verbose)
	}
	return nil
}
