// SPDX-License-Identifier: MPL-2.0

// Package install links an extension source tree into the GNOME Shell
// extensions directory for development, copies its GSettings schema into the
// user schema directory and compiles the schemas.
package install
