// SPDX-License-Identifier: MPL-2.0

// Package config handles application configuration using Viper with CUE as the file format.
//
// Configuration is loaded from ~/.config/cobdeps/config.cue (or XDG equivalent on Linux,
// ~/Library/Application Support/cobdeps/config.cue on macOS, %APPDATA%\cobdeps\config.cue
// on Windows), falling back to ./config.cue. Values are validated against the embedded
// CUE schema (config_schema.cue) and may be overridden through COBDEPS_* environment
// variables, optionally sourced from a .env file in the workspace root.
package config
