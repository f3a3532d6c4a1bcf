// SPDX-License-Identifier: MPL-2.0

// Package testutil provides fakes of the resolution engine's collaborators
// and small helpers that fail the test on error.
//
// RecordingRemote and FakeSurface record every call so tests can assert on
// the exact sequence of remote traffic and prompts; FakeClock drives
// time-dependent code such as token expiry.
package testutil
