// SPDX-License-Identifier: MPL-2.0

package extpack

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"extpack-cli/pkg/exclude"
	"extpack-cli/pkg/extmeta"

	"github.com/charmbracelet/log"
)

// DefaultSelfName is the builder script name dropped when IncludeSelf is false.
const DefaultSelfName = "build.py"

type (
	// Options configures a Builder. Use DefaultOptions as a starting point;
	// the zero value excludes the builder script.
	Options struct {
		// Root is the extension source directory. Defaults to ".".
		Root string
		// MetadataFile is looked up in Root. Defaults to metadata.json.
		MetadataFile string
		// TargetDir receives the finished archive. Required.
		TargetDir string
		// IncludeSelf keeps the builder script in the archive.
		IncludeSelf bool
		// SelfName identifies the builder script by base name.
		SelfName string
		// Ruleset decides which paths are skipped. Defaults to exclude.Default().
		Ruleset *exclude.Ruleset
		// Logger receives progress lines. Defaults to a discarding logger.
		Logger *log.Logger
	}

	// Builder runs the packaging pipeline.
	Builder struct {
		opts Options
	}

	// Result describes a completed (or partially completed) build.
	Result struct {
		Metadata *extmeta.Metadata
		// ArchiveName is "{uuid}_v{version}.zip".
		ArchiveName string
		// ArchivePath is where the archive was written inside Root.
		ArchivePath string
		// Destination is the final location, empty if relocation failed.
		Destination string
		// Files is the number of files stored in the archive.
		Files int
		// SelfExcluded lists builder-script paths left out of the archive.
		SelfExcluded []string
	}
)

// DefaultOptions returns options that build "." into targetDir and keep the
// builder script.
func DefaultOptions(targetDir string) Options {
	return Options{
		Root:         ".",
		MetadataFile: extmeta.DefaultFileName,
		TargetDir:    targetDir,
		IncludeSelf:  true,
		SelfName:     DefaultSelfName,
	}
}

// New validates opts and fills in defaults.
func New(opts Options) (*Builder, error) {
	if opts.TargetDir == "" {
		return nil, fmt.Errorf("%w: target directory is required", ErrInvalidOptions)
	}
	if opts.Root == "" {
		opts.Root = "."
	}
	if opts.MetadataFile == "" {
		opts.MetadataFile = extmeta.DefaultFileName
	}
	if opts.SelfName == "" {
		opts.SelfName = DefaultSelfName
	}
	if opts.Ruleset == nil {
		opts.Ruleset = exclude.Default()
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	return &Builder{opts: opts}, nil
}

// Options returns the effective options.
func (b *Builder) Options() Options { return b.opts }

// Build runs the whole pipeline. On ArchiveError or RelocationError the
// returned Result is still populated with whatever was completed.
func (b *Builder) Build(ctx context.Context) (*Result, error) {
	meta, err := extmeta.Load(b.opts.Root, b.opts.MetadataFile)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Metadata:    meta,
		ArchiveName: meta.ArchiveName(),
		ArchivePath: filepath.Join(b.opts.Root, meta.ArchiveName()),
	}
	b.opts.Logger.Info("Packaging: " + res.ArchiveName)

	stats, err := b.WriteArchive(ctx, res.ArchivePath)
	res.Files = stats.Files
	res.SelfExcluded = stats.SelfExcluded
	if err != nil {
		return res, err
	}
	b.opts.Logger.Info("Zip created successfully.", "files", res.Files)

	dest, err := Relocate(res.ArchivePath, b.opts.TargetDir, b.opts.Logger)
	if err != nil {
		return res, err
	}
	res.Destination = dest
	return res, nil
}
