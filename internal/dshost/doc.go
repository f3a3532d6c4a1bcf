// SPDX-License-Identifier: MPL-2.0

// Package dshost serves a local directory tree as datasets over SSH.
//
// Clients authenticate with a short-lived token as the password and run one
// exec request per operation:
//
//	members <dataset>          one member name per line
//	fetch <dataset> <member>   the member content
//
// A missing dataset or member ends the session with ExitNotFound. Interactive
// shells are refused.
package dshost
