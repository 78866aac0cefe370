// SPDX-License-Identifier: MPL-2.0

package install

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"extpack-cli/pkg/extmeta"
	"extpack-cli/pkg/fspath"
	"extpack-cli/pkg/types"

	"github.com/charmbracelet/log"
	"mvdan.cc/sh/v3/shell"
)

// DefaultCompileCommand compiles the user schema directory.
const DefaultCompileCommand = "glib-compile-schemas"

type (
	// Options configures an Installer. Directory paths other than Source must
	// already be expanded.
	Options struct {
		// Source is the extension source tree. It must contain the metadata
		// file. A leading "~" and relative paths are resolved by Install.
		Source string
		// MetadataFile defaults to metadata.json.
		MetadataFile string
		// ExtensionsDir receives the {uuid} symlink.
		ExtensionsDir string
		// SchemasDir receives the copied .gschema.xml file.
		SchemasDir string
		// SchemaID is used when metadata has no settings-schema.
		SchemaID string
		// CompileCommand is split with shell quoting rules; SchemasDir is
		// appended as the last argument.
		CompileCommand string
		SkipCompile    bool
		Runner         CommandRunner
		Logger         *log.Logger
	}

	// Installer performs a development install of one extension.
	Installer struct {
		opts Options
	}

	// Result describes what Install did.
	Result struct {
		Metadata *extmeta.Metadata
		// LinkPath is ExtensionsDir/{uuid}.
		LinkPath    string
		LinkCreated bool
		// SchemaPath is the copied schema, empty when none was copied.
		SchemaPath string
		Compiled   bool
	}
)

// New validates opts and returns an Installer.
func New(opts Options) (*Installer, error) {
	if opts.Source == "" {
		return nil, errors.New("install: source directory is required")
	}
	if opts.ExtensionsDir == "" || opts.SchemasDir == "" {
		return nil, errors.New("install: extensions and schemas directories are required")
	}
	if opts.MetadataFile == "" {
		opts.MetadataFile = extmeta.DefaultFileName
	}
	if opts.CompileCommand == "" {
		opts.CompileCommand = DefaultCompileCommand
	}
	if opts.Runner == nil {
		opts.Runner = ExecRunner{}
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	return &Installer{opts: opts}, nil
}

// Install links the source tree, copies the schema and compiles schemas.
// An existing symlink at the destination is kept as is.
func (in *Installer) Install(ctx context.Context) (*Result, error) {
	o := in.opts

	abs, err := fspath.Abs(types.FilesystemPath(o.Source), nil)
	if err != nil {
		return nil, &InstallError{Step: StepSource, Path: o.Source, Err: err}
	}
	source := string(abs)
	if info, err := os.Stat(source); err != nil || !info.IsDir() {
		return nil, &InstallError{Step: StepSource, Path: source, Err: ErrSourceNotFound}
	}

	meta, err := extmeta.Load(source, o.MetadataFile)
	if err != nil {
		return nil, err
	}
	res := &Result{Metadata: meta}

	if err := os.MkdirAll(o.SchemasDir, 0o755); err != nil {
		return nil, &InstallError{Step: StepSchema, Path: o.SchemasDir, Err: err}
	}

	res.LinkPath = string(fspath.JoinStr(types.FilesystemPath(o.ExtensionsDir), meta.UUID))
	if res.LinkCreated, err = in.link(source, res.LinkPath); err != nil {
		return nil, err
	}

	schemaID := meta.SettingsSchema
	if schemaID == "" {
		schemaID = o.SchemaID
	}
	if schemaID == "" {
		o.Logger.Info("No settings schema declared, skipping schema install.")
		return res, nil
	}

	if res.SchemaPath, err = in.copySchema(res.LinkPath, schemaID); err != nil {
		return nil, err
	}

	if o.SkipCompile {
		o.Logger.Debug("schema compilation skipped")
		return res, nil
	}
	if err := in.compile(ctx); err != nil {
		return nil, err
	}
	res.Compiled = true
	o.Logger.Info("Schemas compiled!")

	return res, nil
}

// link reports whether a new symlink was created.
func (in *Installer) link(source, dest string) (bool, error) {
	info, err := os.Lstat(dest)
	switch {
	case err == nil && info.Mode()&fs.ModeSymlink != 0:
		in.opts.Logger.Info("Symlink already exists: " + dest)
		return false, nil
	case err == nil:
		return false, &InstallError{Step: StepLink, Path: dest, Err: ErrDestinationConflict}
	case !errors.Is(err, fs.ErrNotExist):
		return false, &InstallError{Step: StepLink, Path: dest, Err: err}
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return false, &InstallError{Step: StepLink, Path: dest, Err: err}
	}
	if err := os.Symlink(source, dest); err != nil {
		return false, &InstallError{Step: StepLink, Path: dest, Err: err}
	}
	in.opts.Logger.Info("Created symlink → " + dest)
	return true, nil
}

// copySchema returns the copied file path, or "" when the extension ships
// no schema file.
func (in *Installer) copySchema(linkPath, schemaID string) (string, error) {
	name := schemaID + ".gschema.xml"
	src := string(fspath.JoinStr(types.FilesystemPath(linkPath), "schemas", name))

	info, err := os.Stat(src)
	if err != nil || !info.Mode().IsRegular() {
		in.opts.Logger.Warn("Schema not found: " + src)
		return "", nil
	}

	dest := string(fspath.JoinStr(types.FilesystemPath(in.opts.SchemasDir), name))
	if err := fspath.CopyFile(src, dest); err != nil {
		return "", &InstallError{Step: StepSchema, Path: dest, Err: err}
	}
	in.opts.Logger.Info("Copied schema to: " + in.opts.SchemasDir)
	return dest, nil
}

func (in *Installer) compile(ctx context.Context) error {
	argv, err := shell.Fields(in.opts.CompileCommand, os.Getenv)
	if err != nil {
		return &InstallError{Step: StepCompile, Path: in.opts.SchemasDir, Err: fmt.Errorf("parse compile command: %w", err)}
	}
	if len(argv) == 0 {
		return &InstallError{Step: StepCompile, Path: in.opts.SchemasDir, Err: errors.New("empty compile command")}
	}
	argv = append(argv, in.opts.SchemasDir)

	in.opts.Logger.Debug("compiling schemas", "command", argv)
	if _, err := in.opts.Runner.Run(ctx, argv[0], argv[1:]...); err != nil {
		return &InstallError{Step: StepCompile, Path: in.opts.SchemasDir, Err: err}
	}
	return nil
}
