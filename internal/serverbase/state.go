// SPDX-License-Identifier: MPL-2.0

package serverbase

import (
	"errors"
	"fmt"
)

// Lifecycle states, in the order a healthy server passes through them.
// Stopped and Failed are terminal.
const (
	StateCreated State = iota
	StateStarting
	StateRunning
	StateStopping
	StateStopped
	StateFailed
)

// ErrInvalidState is the sentinel error wrapped by InvalidStateError.
var ErrInvalidState = errors.New("invalid state")

var stateNames = [...]string{
	StateCreated:  "created",
	StateStarting: "starting",
	StateRunning:  "running",
	StateStopping: "stopping",
	StateStopped:  "stopped",
	StateFailed:   "failed",
}

type (
	// State is a server lifecycle state. It is stored atomically by Base.
	State int32

	// InvalidStateError is returned for State values outside the lifecycle.
	InvalidStateError struct {
		Value State
	}
)

// String returns the lower-case state name, or "unknown".
func (s State) String() string {
	if s.Validate() != nil {
		return "unknown"
	}
	return stateNames[s]
}

// Validate returns an InvalidStateError for values outside the lifecycle.
func (s State) Validate() error {
	if s < 0 || int(s) >= len(stateNames) {
		return &InvalidStateError{Value: s}
	}
	return nil
}

// IsTerminal reports whether the server can no longer change state.
func (s State) IsTerminal() bool {
	return s == StateStopped || s == StateFailed
}

// Error implements the error interface for InvalidStateError.
func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("server state %d is outside the lifecycle", int32(e.Value))
}

// Unwrap returns ErrInvalidState for errors.Is() compatibility.
func (e *InvalidStateError) Unwrap() error { return ErrInvalidState }
