// SPDX-License-Identifier: MPL-2.0

// Package cmd contains the extpack command tree.
//
// Commands are built by factory functions that take an *App, the composition
// root holding the config provider, the command runner used by install and
// the output streams. Handlers never call os.Exit; a failed command renders
// its error and returns an *ExitError that Main turns into the process exit
// code.
package cmd
