// SPDX-License-Identifier: MPL-2.0

// Package copybook resolves copybook names against an ordered list of remote
// datasets and downloads each one once into a deterministic local layout.
//
// A resolution run selects a connection profile, walks the configured
// datasets in order, lists each dataset's members, and caches the members
// that match still-pending names. The walk stops as soon as nothing is
// pending, so no remote call is issued after the last name is found.
package copybook
