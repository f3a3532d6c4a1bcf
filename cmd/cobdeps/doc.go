// SPDX-License-Identifier: MPL-2.0

// Package cmd contains the cobdeps CLI commands.
//
// Commands are built by constructor functions that receive the App
// composition root, so tests can replace configuration, transports and the
// interaction surface.
package cmd
