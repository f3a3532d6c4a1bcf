// SPDX-License-Identifier: MPL-2.0

// Package dataset describes remote dataset locations and the remote
// capabilities used to inspect them: listing members and fetching content.
//
// Transports live under internal/remote; this package only holds the
// contracts, the configured search order and a listing memo.
package dataset
