// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"strconv"
)

// Process exit codes.
const (
	// ExitSuccess means every requested copybook was resolved.
	ExitSuccess ExitCode = 0
	// ExitFailure is a generic failure.
	ExitFailure ExitCode = 1
	// ExitAborted means the user dismissed a prompt.
	ExitAborted ExitCode = 2
	// ExitPartial means some copybooks could not be resolved.
	ExitPartial ExitCode = 3
)

type (
	// ExitCode is a process exit status.
	ExitCode int

	// ExitError signals a non-zero exit code without forcing os.Exit in RunE handlers.
	// A nil Err exits silently.
	ExitError struct {
		Code ExitCode
		Err  error
	}
)

// String returns the decimal form of the code.
func (c ExitCode) String() string { return strconv.Itoa(int(c)) }

// Error returns the error message for ExitError.
func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("exit status %s", e.Code)
}

// Unwrap returns the underlying error, if any.
func (e *ExitError) Unwrap() error {
	return e.Err
}
