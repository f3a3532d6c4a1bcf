// SPDX-License-Identifier: MPL-2.0

package copybook

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/cobdeps/cobdeps/internal/cache"
	"github.com/cobdeps/cobdeps/internal/dataset"
	"github.com/cobdeps/cobdeps/internal/profile"
)

const (
	// AllResolved means every requested name was found.
	AllResolved State = iota + 1
	// PartiallyResolved means the datasets were exhausted with names still
	// pending. It is a normal outcome, not an error.
	PartiallyResolved
	// Aborted means the run stopped before or during the dataset walk.
	Aborted
)

var (
	// ErrNoWorkspaceOpen is returned when neither a cache root nor a
	// workspace root is available to download into.
	ErrNoWorkspaceOpen = errors.New("no workspace folder open")
	// ErrInvalidName is the sentinel error wrapped by InvalidNameError.
	ErrInvalidName = errors.New("invalid copybook name")
)

type (
	// Name is a copybook name requested for resolution.
	Name string

	// State is the terminal state of a resolution run.
	State int

	// InvalidNameError is returned for names that cannot be resolved.
	// It wraps ErrInvalidName for errors.Is() compatibility.
	InvalidNameError struct {
		Value  Name
		Reason string
	}

	// Workspace is the folder context a resolution run downloads into when no
	// explicit cache root is configured.
	Workspace struct {
		RootPath string
	}

	// Settings is the typed configuration consumed by a resolution run.
	Settings struct {
		// DatasetLocations is the ordered search list; earlier wins.
		DatasetLocations []dataset.Location
		// CacheRoot is the absolute root folder of downloaded copybooks.
		// Empty means the workspace root.
		CacheRoot string
	}

	// Resolution describes where one resolved copybook lives.
	Resolution struct {
		Path    string
		Dataset dataset.Location
		Outcome cache.Outcome
	}

	// Result is the output of one resolution run.
	Result struct {
		Profile    profile.Name
		Resolved   map[Name]Resolution
		Unresolved []Name
		// Failures holds per-dataset listing errors, per-member fetch errors
		// and invalid names, in the order they happened.
		Failures []error
		State    State
	}
)

// String returns the string representation of the Name.
func (n Name) String() string { return string(n) }

// Validate checks the name against the copybook naming rules: non-blank,
// no path separators, no underscore, no leading or trailing hyphen, and at
// most maxLen characters when maxLen is positive.
func (n Name) Validate(maxLen int) error {
	s := string(n)
	switch {
	case strings.TrimSpace(s) == "":
		return &InvalidNameError{Value: n, Reason: "must not be blank"}
	case strings.ContainsAny(s, "/\\\x00") || s == "." || s == "..":
		return &InvalidNameError{Value: n, Reason: "must not contain path separators"}
	case strings.HasPrefix(s, "-") || strings.HasSuffix(s, "-"):
		return &InvalidNameError{Value: n, Reason: "must not start or end with a hyphen"}
	case strings.Contains(s, "_"):
		return &InvalidNameError{Value: n, Reason: "must not contain an underscore"}
	case maxLen > 0 && len(s) > maxLen:
		return &InvalidNameError{Value: n, Reason: fmt.Sprintf("must not exceed %d characters", maxLen)}
	}
	return nil
}

// Error implements the error interface for InvalidNameError.
func (e *InvalidNameError) Error() string {
	return fmt.Sprintf("invalid copybook name %q: %s", e.Value, e.Reason)
}

// Unwrap returns ErrInvalidName for errors.Is() compatibility.
func (e *InvalidNameError) Unwrap() error { return ErrInvalidName }

// String returns a human-readable representation of the state.
func (s State) String() string {
	switch s {
	case AllResolved:
		return "all resolved"
	case PartiallyResolved:
		return "partially resolved"
	case Aborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// Paths returns the local path of every resolved name.
func (r Result) Paths() map[Name]string {
	out := make(map[Name]string, len(r.Resolved))
	for name, res := range r.Resolved {
		out[name] = res.Path
	}
	return out
}

// ResolvedNames returns the resolved names in sorted order.
func (r Result) ResolvedNames() []Name {
	names := make([]Name, 0, len(r.Resolved))
	for name := range r.Resolved {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Complete reports whether nothing is left unresolved.
func (r Result) Complete() bool {
	return len(r.Unresolved) == 0
}

// NamesOf converts plain strings into copybook names.
func NamesOf(names ...string) []Name {
	out := make([]Name, len(names))
	for i, n := range names {
		out[i] = Name(n)
	}
	return out
}
