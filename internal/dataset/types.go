// SPDX-License-Identifier: MPL-2.0

package dataset

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cobdeps/cobdeps/internal/profile"
)

var (
	// ErrInvalidLocation is the sentinel error wrapped by InvalidLocationError.
	ErrInvalidLocation = errors.New("invalid dataset location")
	// ErrRemoteListingFailed is wrapped by ListingError.
	ErrRemoteListingFailed = errors.New("remote member listing failed")
	// ErrRemoteFetchFailed is wrapped by FetchError.
	ErrRemoteFetchFailed = errors.New("remote content fetch failed")
	// ErrNotFound is returned by transports when a dataset or member does not exist.
	ErrNotFound = errors.New("not found")
)

type (
	// Location is an opaque identifier naming a remote dataset, e.g. "HLQ.COPYLIB".
	Location string

	// MemberName names one member of a dataset.
	MemberName string

	// InvalidLocationError is returned when a Location is blank or would
	// escape its directory when used as a path segment.
	InvalidLocationError struct {
		Value Location
	}

	// MemberLister lists the members physically present in a dataset.
	MemberLister interface {
		ListMembers(ctx context.Context, loc Location, p profile.Profile) ([]MemberName, error)
	}

	// ContentFetcher retrieves the content of one member.
	ContentFetcher interface {
		FetchContent(ctx context.Context, loc Location, member MemberName, p profile.Profile) ([]byte, error)
	}

	// Remote combines both remote capabilities.
	Remote interface {
		MemberLister
		ContentFetcher
	}

	// ListingError reports a failed member listing for one dataset.
	ListingError struct {
		Location Location
		Profile  profile.Name
		Err      error
	}

	// FetchError reports a failed content fetch for one member.
	FetchError struct {
		Location Location
		Member   MemberName
		Profile  profile.Name
		Err      error
	}
)

// String returns the string representation of the Location.
func (l Location) String() string { return string(l) }

// Validate returns nil if the Location is non-blank and safe as a path segment.
func (l Location) Validate() error {
	if !safeSegment(string(l)) {
		return &InvalidLocationError{Value: l}
	}
	return nil
}

// String returns the string representation of the MemberName.
func (m MemberName) String() string { return string(m) }

// Safe reports whether the member name can be used as a single path segment.
func (m MemberName) Safe() bool { return safeSegment(string(m)) }

func safeSegment(s string) bool {
	if strings.TrimSpace(s) == "" || s == "." || s == ".." {
		return false
	}
	return !strings.ContainsAny(s, "/\\\x00")
}

// Error implements the error interface for InvalidLocationError.
func (e *InvalidLocationError) Error() string {
	return fmt.Sprintf("invalid dataset location %q: must be non-empty and contain no path separators", e.Value)
}

// Unwrap returns ErrInvalidLocation for errors.Is() compatibility.
func (e *InvalidLocationError) Unwrap() error { return ErrInvalidLocation }

func (e *ListingError) Error() string {
	return fmt.Sprintf("list members of %s (profile %s): %v", e.Location, e.Profile, e.Err)
}

// Is matches ErrRemoteListingFailed.
func (e *ListingError) Is(target error) bool { return target == ErrRemoteListingFailed }

// Unwrap returns the transport error.
func (e *ListingError) Unwrap() error { return e.Err }

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s(%s) (profile %s): %v", e.Location, e.Member, e.Profile, e.Err)
}

// Is matches ErrRemoteFetchFailed.
func (e *FetchError) Is(target error) bool { return target == ErrRemoteFetchFailed }

// Unwrap returns the transport error.
func (e *FetchError) Unwrap() error { return e.Err }
