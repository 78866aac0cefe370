// SPDX-License-Identifier: MPL-2.0

// Package extmeta loads GNOME Shell extension metadata.json files.
//
// Only the identity of the package matters to extpack: the uuid, which names
// the archive and the install directory, and the version, which is resolved
// from "version-name" first, then "version", then "0".
package extmeta
