// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

type Id int

const (
	MetadataNotFoundId Id = iota + 1
	MetadataParseErrorId
	MetadataFieldMissingId
	ArchiveFailedId
	RelocationFailedId
	ConfigLoadFailedId
	InstallSourceNotFoundId
	InstallDestinationConflictId
	SchemaCompileFailedId
)

type MarkdownMsg string

type HttpLink string

type Issue struct {
	id       Id          // ID used to lookup the issue
	mdMsg    MarkdownMsg // Markdown text that will be rendered
	docLinks []HttpLink  // documentation for the failing area
	extLinks []HttpLink  // external links that might be useful for the user
}

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

func (i *Issue) Render(stylePath string) (string, error) {
	extraMd := ""
	if links := append(i.DocLinks(), i.ExtLinks()...); len(links) > 0 {
		extraMd += "\n\n## See also:\n"
		for _, link := range links {
			extraMd += "- <" + string(link) + ">\n"
		}
	}
	return render(string(i.mdMsg)+extraMd, stylePath)
}

var (
	render = glamour.Render

	metadataNotFoundIssue = &Issue{
		id: MetadataNotFoundId,
		mdMsg: `
# No metadata.json found!

extpack packages the extension in the **current directory** and reads its
identity from ` + "`metadata.json`" + ` there.

## Things you can try:
- Change into the extension source directory and retry:
~~~
$ cd ~/dev/my-extension
$ extpack
~~~
- Point extpack at a differently named file in your config:
~~~cue
build: metadata_file: "metadata.dev.json"
~~~`,
		docLinks: []HttpLink{"https://gjs.guide/extensions/overview/anatomy.html#metadata-json-required"},
	}

	metadataParseErrorIssue = &Issue{
		id: MetadataParseErrorId,
		mdMsg: `
# metadata.json is not valid JSON!

The file must be plain JSON: no comments, no trailing commas, every key quoted.

## Minimal valid example:
~~~json
{
  "uuid": "my-extension@example.com",
  "name": "My Extension",
  "shell-version": ["47"],
  "version-name": "1.0"
}
~~~`,
		docLinks: []HttpLink{"https://gjs.guide/extensions/overview/anatomy.html#metadata-json-required"},
	}

	metadataFieldMissingIssue = &Issue{
		id: MetadataFieldMissingId,
		mdMsg: `
# metadata.json is missing its uuid!

The ` + "`uuid`" + ` names both the archive (` + "`{uuid}_v{version}.zip`" + `) and the
install directory, so it must be a non-empty string.

## Things you can try:
- Add a uuid in the form ` + "`name@namespace`" + `:
~~~json
"uuid": "my-extension@example.com"
~~~
- Check that ` + "`version-name`" + ` is a string and ` + "`version`" + ` a number or string.`,
	}

	archiveFailedIssue = &Issue{
		id: ArchiveFailedId,
		mdMsg: `
# Failed to create the archive!

A file could not be read or the archive could not be written. The partial
archive is left in the working directory.

## Things you can try:
- Check free disk space in the extension directory
- Look for broken symlinks or unreadable files in the tree
- Re-run with ` + "`--verbose`" + ` to see every file as it is processed`,
	}

	relocationFailedIssue = &Issue{
		id: RelocationFailedId,
		mdMsg: `
# Failed to move the archive!

The archive was built but could not be moved into the target directory.
It is still in the working directory.

## Things you can try:
- Check that the target directory is writable
- Make sure no directory exists with the archive's name
- Choose another target:
~~~cue
build: target_dir: "~/Backups/extensions"
~~~`,
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

## Things you can try:
- Show where extpack looks for its config:
~~~
$ extpack config path
~~~
- Check the file for CUE syntax errors
- Print the effective configuration:
~~~
$ extpack config show
~~~`,
		extLinks: []HttpLink{"https://cuelang.org/docs/tour/"},
	}

	installSourceNotFoundIssue = &Issue{
		id: InstallSourceNotFoundId,
		mdMsg: `
# Extension source not found!

The directory to link into GNOME Shell does not exist.

## Things you can try:
- Run ` + "`extpack install`" + ` from the extension source directory
- Or pass it explicitly:
~~~
$ extpack install --source ~/dev/my-extension
~~~`,
	}

	installDestinationConflictIssue = &Issue{
		id: InstallDestinationConflictId,
		mdMsg: `
# A non-symlink directory exists at the install destination!

extpack only manages symlinked development installs and will not replace a
regular directory (for example one installed from extensions.gnome.org).

## Things you can try:
- Uninstall the extension first:
~~~
$ gnome-extensions uninstall my-extension@example.com
~~~
- Or move the directory out of the way and retry`,
		docLinks: []HttpLink{"https://gjs.guide/extensions/development/creating.html"},
	}

	schemaCompileFailedIssue = &Issue{
		id: SchemaCompileFailedId,
		mdMsg: `
# glib-compile-schemas failed!

## Things you can try:
- Install the GLib development tools (` + "`libglib2.0-bin`" + ` on Debian/Ubuntu,
  ` + "`glib2`" + ` on Fedora/Arch)
- Validate the schema XML:
~~~
$ glib-compile-schemas --strict --dry-run schemas/
~~~
- Skip compilation with ` + "`extpack install --skip-compile`" + ``,
		extLinks: []HttpLink{"https://docs.gtk.org/gio/class.Settings.html"},
	}

	issues = map[Id]*Issue{
		metadataNotFoundIssue.Id():           metadataNotFoundIssue,
		metadataParseErrorIssue.Id():         metadataParseErrorIssue,
		metadataFieldMissingIssue.Id():       metadataFieldMissingIssue,
		archiveFailedIssue.Id():              archiveFailedIssue,
		relocationFailedIssue.Id():           relocationFailedIssue,
		configLoadFailedIssue.Id():           configLoadFailedIssue,
		installSourceNotFoundIssue.Id():      installSourceNotFoundIssue,
		installDestinationConflictIssue.Id(): installDestinationConflictIssue,
		schemaCompileFailedIssue.Id():        schemaCompileFailedIssue,
	}
)

// Values returns every catalog entry ordered by Id.
func Values() []*Issue {
	ids := maps.Keys(issues)
	slices.Sort(ids)
	out := make([]*Issue, 0, len(ids))
	for _, id := range ids {
		out = append(out, issues[id])
	}
	return out
}

func Get(id Id) *Issue {
	return issues[id]
}
