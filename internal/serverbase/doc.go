// SPDX-License-Identifier: MPL-2.0

// Package serverbase holds the lifecycle state machine shared by the
// long-running servers of cobdeps.
//
// A server embeds Base and moves through
// created -> starting -> running -> stopping -> stopped, or into failed from
// starting or running. State reads are lock-free; transitions are atomic.
package serverbase
