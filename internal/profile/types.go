// SPDX-License-Identifier: MPL-2.0

package profile

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const (
	// TypeZOSMF talks to the z/OSMF REST files API.
	TypeZOSMF Type = "zosmf"
	// TypeSSH talks to a dataset host over SSH exec requests.
	TypeSSH Type = "ssh"
	// TypeLocal reads a directory tree laid out as <dataset>/<member>.
	TypeLocal Type = "local"
	// TypeS3 reads an object-store bucket keyed by <dataset>/<member>.
	TypeS3 Type = "s3"
)

var (
	// ErrInvalidName is the sentinel error wrapped by InvalidNameError.
	ErrInvalidName = errors.New("invalid profile name")
	// ErrInvalidType is the sentinel error wrapped by InvalidTypeError.
	ErrInvalidType = errors.New("invalid profile type")
	// ErrInvalidProfile is the sentinel error wrapped by InvalidProfileError.
	ErrInvalidProfile = errors.New("invalid profile")
)

type (
	// Name uniquely identifies a profile. It is also a path segment of the
	// local copybook layout, so it must not contain path separators.
	Name string

	// Type selects the transport used to reach the profile's endpoint.
	Type string

	// Profile identifies a remote endpoint and the credentials used to reach it.
	Profile struct {
		Name     Name   `toml:"name"`
		Type     Type   `toml:"type"`
		Host     string `toml:"host"`
		Port     int    `toml:"port"`
		User     string `toml:"user"`
		Password string `toml:"password"`
		// Default marks the suggested choice when prompting. It is
		// informational: more than one profile may carry it.
		Default bool `toml:"default"`
		// BasePath is the mirror root for local profiles and the URL prefix
		// for zosmf profiles.
		BasePath string `toml:"base_path"`
		// Bucket names the bucket of s3 profiles.
		Bucket string `toml:"bucket"`
		// Secure enables TLS for zosmf and s3 profiles.
		Secure bool `toml:"secure"`
		// InsecureSkipHostKey disables known_hosts verification for ssh profiles.
		InsecureSkipHostKey bool `toml:"insecure_skip_host_key"`
	}

	// InvalidNameError is returned when a Name is blank or contains a path
	// separator. It wraps ErrInvalidName for errors.Is() compatibility.
	InvalidNameError struct {
		Value Name
	}

	// InvalidTypeError is returned when a Type value is not recognized.
	InvalidTypeError struct {
		Value Type
	}

	// InvalidProfileError collects field-level validation errors of a Profile.
	// It wraps ErrInvalidProfile for errors.Is() compatibility.
	InvalidProfileError struct {
		Name        Name
		FieldErrors []error
	}
)

// String returns the string representation of the Name.
func (n Name) String() string { return string(n) }

// Validate returns nil if the Name is usable as a profile key and path segment.
func (n Name) Validate() error {
	s := string(n)
	if strings.TrimSpace(s) == "" || strings.ContainsAny(s, `/\`) || s == "." || s == ".." {
		return &InvalidNameError{Value: n}
	}
	return nil
}

// String returns the string representation of the Type.
func (t Type) String() string { return string(t) }

// Validate returns nil if the Type is one of the supported transports.
func (t Type) Validate() error {
	switch t {
	case TypeZOSMF, TypeSSH, TypeLocal, TypeS3:
		return nil
	default:
		return &InvalidTypeError{Value: t}
	}
}

// Networked reports whether the transport needs a host to connect to.
func (t Type) Networked() bool {
	return t == TypeZOSMF || t == TypeSSH || t == TypeS3
}

// Description renders the profile endpoint as user@host:port, the form shown
// next to the profile name in the selection prompt.
func (p Profile) Description() string {
	return p.User + "@" + p.Host + ":" + strconv.Itoa(p.Port)
}

// Address returns host:port for networked profiles.
func (p Profile) Address() string {
	return p.Host + ":" + strconv.Itoa(p.Port)
}

// Validate checks every field and returns an InvalidProfileError listing all
// problems, or nil.
func (p Profile) Validate() error {
	var errs []error
	if err := p.Name.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := p.Type.Validate(); err != nil {
		errs = append(errs, err)
	}
	if p.Port < 0 || p.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d out of range 0..65535", p.Port))
	}
	if p.Type.Networked() && strings.TrimSpace(p.Host) == "" {
		errs = append(errs, fmt.Errorf("host is required for %s profiles", p.Type))
	}
	if p.Type == TypeLocal && strings.TrimSpace(p.BasePath) == "" {
		errs = append(errs, errors.New("base_path is required for local profiles"))
	}
	if p.Type == TypeS3 && strings.TrimSpace(p.Bucket) == "" {
		errs = append(errs, errors.New("bucket is required for s3 profiles"))
	}
	if len(errs) > 0 {
		return &InvalidProfileError{Name: p.Name, FieldErrors: errs}
	}
	return nil
}

// Error implements the error interface for InvalidNameError.
func (e *InvalidNameError) Error() string {
	return fmt.Sprintf("invalid profile name %q: must be non-empty and contain no path separators", e.Value)
}

// Unwrap returns ErrInvalidName for errors.Is() compatibility.
func (e *InvalidNameError) Unwrap() error { return ErrInvalidName }

// Error implements the error interface for InvalidTypeError.
func (e *InvalidTypeError) Error() string {
	return fmt.Sprintf("invalid profile type %q (valid: zosmf, ssh, local, s3)", e.Value)
}

// Unwrap returns ErrInvalidType for errors.Is() compatibility.
func (e *InvalidTypeError) Unwrap() error { return ErrInvalidType }

// Error implements the error interface for InvalidProfileError.
func (e *InvalidProfileError) Error() string {
	msgs := make([]string, len(e.FieldErrors))
	for i, err := range e.FieldErrors {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("invalid profile %q: %s", e.Name, strings.Join(msgs, "; "))
}

// Unwrap returns ErrInvalidProfile for errors.Is() compatibility.
func (e *InvalidProfileError) Unwrap() error { return ErrInvalidProfile }
