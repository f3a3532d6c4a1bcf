// SPDX-License-Identifier: MPL-2.0

package dshost

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// Exec commands understood by the host.
const (
	CmdMembers = "members"
	CmdFetch   = "fetch"
)

// Exit statuses of exec requests.
const (
	ExitOK       = 0
	ExitFailure  = 1
	ExitUsage    = 2
	ExitNotFound = 4
)

// DefaultUser is the user name advertised in connection info.
const DefaultUser = "cobdeps"

var (
	// ErrInvalidToken is the sentinel error wrapped by InvalidTokenError.
	ErrInvalidToken = errors.New("invalid token value")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid dataset host config")
)

type (
	// TokenValue is the secret a client presents as its SSH password.
	TokenValue string

	// Token grants access until ExpiresAt.
	Token struct {
		Value     TokenValue
		CreatedAt time.Time
		ExpiresAt time.Time
		// Client names the holder, for logging and bulk revocation.
		Client string
	}

	// Clock supplies the time used for token expiry.
	Clock interface {
		Now() time.Time
	}

	// Config holds the host configuration. It is immutable once the server
	// is created.
	Config struct {
		// Host is the bind address (default 127.0.0.1).
		Host string
		// Port is the listen port; 0 picks a free one.
		Port int
		// Root is the directory holding one subdirectory per dataset.
		Root string
		// TokenTTL is how long generated tokens stay valid (default 1h).
		TokenTTL time.Duration
		// ShutdownTimeout bounds graceful shutdown (default 10s).
		ShutdownTimeout time.Duration
		// StartupTimeout bounds Start (default 5s).
		StartupTimeout time.Duration
		// Clock defaults to the system clock.
		Clock Clock
		// Logger defaults to a stderr logger prefixed "dshost".
		Logger *log.Logger
	}

	// ConnectionInfo is what a client needs to reach the host.
	ConnectionInfo struct {
		Host     string
		Port     int
		User     string
		Token    TokenValue
		ExpireAt time.Time
	}

	// InvalidTokenError is returned for blank token values.
	InvalidTokenError struct {
		Value TokenValue
	}

	// InvalidConfigError lists every invalid Config field.
	InvalidConfigError struct {
		FieldErrors []error
	}

	systemClock struct{}
)

func (systemClock) Now() time.Time { return time.Now() }

// String returns the string representation of the TokenValue.
func (t TokenValue) String() string { return string(t) }

// Validate returns nil for a non-blank token.
func (t TokenValue) Validate() error {
	if strings.TrimSpace(string(t)) == "" {
		return &InvalidTokenError{Value: t}
	}
	return nil
}

// DefaultConfig returns the default configuration serving root.
func DefaultConfig(root string) Config {
	return Config{
		Host:            "127.0.0.1",
		Root:            root,
		TokenTTL:        time.Hour,
		ShutdownTimeout: 10 * time.Second,
		StartupTimeout:  5 * time.Second,
	}
}

// Validate checks the fields that have no default.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Root) == "" {
		errs = append(errs, errors.New("root directory is required"))
	}
	if c.Port < 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d out of range 0..65535", c.Port))
	}
	if c.TokenTTL < 0 {
		errs = append(errs, fmt.Errorf("token TTL %s must not be negative", c.TokenTTL))
	}
	if len(errs) > 0 {
		return &InvalidConfigError{FieldErrors: errs}
	}
	return nil
}

// Error implements the error interface for InvalidTokenError.
func (e *InvalidTokenError) Error() string {
	return fmt.Sprintf("invalid token value %q: must be non-empty", e.Value)
}

// Unwrap returns ErrInvalidToken for errors.Is() compatibility.
func (e *InvalidTokenError) Unwrap() error { return ErrInvalidToken }

// Error implements the error interface for InvalidConfigError.
func (e *InvalidConfigError) Error() string {
	msgs := make([]string, len(e.FieldErrors))
	for i, err := range e.FieldErrors {
		msgs[i] = err.Error()
	}
	return "invalid dataset host config: " + strings.Join(msgs, "; ")
}

// Unwrap returns ErrInvalidConfig for errors.Is() compatibility.
func (e *InvalidConfigError) Unwrap() error { return ErrInvalidConfig }
