// SPDX-License-Identifier: MPL-2.0

// Package extpack packages a GNOME Shell extension source tree.
//
// A build is one linear pipeline: read metadata.json, name the archive
// "{uuid}_v{version}.zip", walk the tree skipping excluded paths (and,
// optionally, the builder script), write a deflated zip next to the sources,
// then move it into the target directory. Nothing is shared between runs.
package extpack
