// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/cobdeps/cobdeps/internal/copybook"
	"github.com/cobdeps/cobdeps/internal/dataset"
	"github.com/cobdeps/cobdeps/internal/profile"
)

const (
	// ThemeAuto detects the terminal background automatically.
	ThemeAuto Theme = "auto"
	// ThemeDark forces the dark palette.
	ThemeDark Theme = "dark"
	// ThemeLight forces the light palette.
	ThemeLight Theme = "light"

	// MaxFetchConcurrency is the upper bound for fetch_concurrency.
	MaxFetchConcurrency = 32

	// ProfilesFileName is the default profiles file inside the config directory.
	ProfilesFileName = "profiles.toml"
)

var (
	// ErrInvalidTheme is the sentinel error wrapped by InvalidThemeError.
	ErrInvalidTheme = errors.New("invalid theme")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// Theme selects the palette used for styled output.
	Theme string

	// InvalidThemeError is returned when a Theme value is not recognized.
	// It wraps ErrInvalidTheme for errors.Is() compatibility.
	InvalidThemeError struct {
		Value Theme
	}

	// InvalidConfigError is returned when a Config has invalid fields.
	// It wraps ErrInvalidConfig for errors.Is() compatibility and collects
	// field-level validation errors.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// Config holds the application configuration.
	Config struct {
		// DatasetPaths is the ordered dataset search list.
		DatasetPaths []string `json:"dataset_paths" mapstructure:"dataset_paths"`
		// CacheRoot is the absolute download root. Empty means the workspace root.
		CacheRoot string `json:"cache_root" mapstructure:"cache_root"`
		// ProfilesFile locates the connection profiles. Empty means
		// <config dir>/profiles.toml.
		ProfilesFile string `json:"profiles_file" mapstructure:"profiles_file"`
		// DefaultProfile bypasses the profile prompt when set.
		DefaultProfile profile.Name `json:"default_profile" mapstructure:"default_profile"`
		// FetchConcurrency bounds parallel member fetches per dataset.
		FetchConcurrency int `json:"fetch_concurrency" mapstructure:"fetch_concurrency"`
		// ListingCache configures member listing memoization.
		ListingCache ListingCacheConfig `json:"listing_cache" mapstructure:"listing_cache"`
		// ZOSMF tunes the z/OSMF REST transport.
		ZOSMF ZOSMFConfig `json:"zosmf" mapstructure:"zosmf"`
		// UI configures the user interface.
		UI UIConfig `json:"ui" mapstructure:"ui"`
	}

	// ListingCacheConfig configures the in-memory member listing cache.
	ListingCacheConfig struct {
		// Size is the maximum number of cached listings. Zero disables caching.
		Size int `json:"size" mapstructure:"size"`
		// TTL is how long a listing stays fresh.
		TTL time.Duration `json:"ttl" mapstructure:"ttl"`
	}

	// ZOSMFConfig tunes the z/OSMF REST transport.
	ZOSMFConfig struct {
		RateLimit  float64       `json:"rate_limit" mapstructure:"rate_limit"`
		RateBurst  int           `json:"rate_burst" mapstructure:"rate_burst"`
		MaxRetries int           `json:"max_retries" mapstructure:"max_retries"`
		Timeout    time.Duration `json:"timeout" mapstructure:"timeout"`
	}

	// UIConfig configures the user interface.
	UIConfig struct {
		// Verbose enables debug logging and full error chains.
		Verbose bool `json:"verbose" mapstructure:"verbose"`
		// Accessible renders prompts in screen-reader friendly mode.
		Accessible bool `json:"accessible" mapstructure:"accessible"`
		// Theme sets the output palette.
		Theme Theme `json:"theme" mapstructure:"theme"`
	}
)

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		DatasetPaths:     []string{},
		FetchConcurrency: copybook.DefaultFetchConcurrency,
		ListingCache: ListingCacheConfig{
			Size: 128,
			TTL:  5 * time.Minute,
		},
		ZOSMF: ZOSMFConfig{
			RateLimit:  10,
			RateBurst:  5,
			MaxRetries: 3,
			Timeout:    30 * time.Second,
		},
		UI: UIConfig{
			Theme: ThemeAuto,
		},
	}
}

// Validate returns nil if the Config has valid fields, or an
// *InvalidConfigError collecting every field error.
func (c Config) Validate() error {
	var errs []error
	for _, p := range c.DatasetPaths {
		if err := dataset.Location(p).Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	if c.CacheRoot != "" && !filepath.IsAbs(c.CacheRoot) {
		errs = append(errs, fmt.Errorf("cache_root %q must be an absolute path", c.CacheRoot))
	}
	if c.DefaultProfile != "" {
		if err := c.DefaultProfile.Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	if c.FetchConcurrency < 1 || c.FetchConcurrency > MaxFetchConcurrency {
		errs = append(errs, fmt.Errorf("fetch_concurrency %d out of range [1, %d]", c.FetchConcurrency, MaxFetchConcurrency))
	}
	if c.ListingCache.Size < 0 {
		errs = append(errs, fmt.Errorf("listing_cache.size %d must not be negative", c.ListingCache.Size))
	}
	if c.ListingCache.TTL < 0 {
		errs = append(errs, fmt.Errorf("listing_cache.ttl %s must not be negative", c.ListingCache.TTL))
	}
	if err := c.UI.Theme.Validate(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return &InvalidConfigError{FieldErrors: errs}
	}
	return nil
}

// Settings returns the typed values consumed by a resolution run.
func (c Config) Settings() copybook.Settings {
	locs := make([]dataset.Location, 0, len(c.DatasetPaths))
	for _, p := range c.DatasetPaths {
		locs = append(locs, dataset.Location(p))
	}
	return copybook.Settings{
		DatasetLocations: locs,
		CacheRoot:        c.CacheRoot,
	}
}

// ProfilesPath returns the profiles file location, defaulting to
// profiles.toml inside cfgDir.
func (c Config) ProfilesPath(cfgDir string) string {
	if c.ProfilesFile != "" {
		return c.ProfilesFile
	}
	return filepath.Join(cfgDir, ProfilesFileName)
}

// String returns the string representation of the Theme.
func (t Theme) String() string { return string(t) }

// Validate returns nil for the known themes. The empty value means auto.
func (t Theme) Validate() error {
	switch t {
	case "", ThemeAuto, ThemeDark, ThemeLight:
		return nil
	default:
		return &InvalidThemeError{Value: t}
	}
}

// Error implements the error interface for InvalidThemeError.
func (e *InvalidThemeError) Error() string {
	return fmt.Sprintf("invalid theme %q (valid: auto, dark, light)", e.Value)
}

// Unwrap returns ErrInvalidTheme for errors.Is() compatibility.
func (e *InvalidThemeError) Unwrap() error { return ErrInvalidTheme }

// Error implements the error interface for InvalidConfigError.
func (e *InvalidConfigError) Error() string {
	if len(e.FieldErrors) == 1 {
		return fmt.Sprintf("invalid config: %v", e.FieldErrors[0])
	}
	return fmt.Sprintf("invalid config: %d field error(s)", len(e.FieldErrors))
}

// Unwrap returns ErrInvalidConfig for errors.Is() compatibility.
func (e *InvalidConfigError) Unwrap() error { return ErrInvalidConfig }
