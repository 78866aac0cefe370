// SPDX-License-Identifier: MPL-2.0

// Package config handles extpack configuration using Viper with CUE as the file format.
//
// Configuration is loaded from $XDG_CONFIG_HOME/extpack/config.cue on Linux
// (~/.config/extpack/config.cue by default), ~/Library/Application Support/extpack/config.cue
// on macOS and %APPDATA%\extpack\config.cue on Windows, then from ./extpack.cue in the
// working directory. Every key can be overridden from the environment with the
// EXTPACK_ prefix (EXTPACK_BUILD_TARGET_DIR, EXTPACK_UI_VERBOSE, ...).
//
// Files are validated against config_schema.cue before they are merged into Viper.
package config
