// SPDX-License-Identifier: MPL-2.0

// Package profile models connection profiles for remote dataset stores and
// decides which profile a resolution run uses.
//
// Profiles are read from a TOML file (see FileProvider). When more than one
// profile is known, the Selector asks the user through an interact.Surface,
// pre-highlighting the profile flagged as default.
package profile
