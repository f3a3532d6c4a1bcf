// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"testing"

	"github.com/cobdeps/cobdeps/internal/dataset"
	"github.com/cobdeps/cobdeps/internal/profile"
)

func TestTheme_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		theme Theme
		valid bool
	}{
		{"", true},
		{ThemeAuto, true},
		{ThemeDark, true},
		{ThemeLight, true},
		{"neon", false},
		{"Dark", false},
	}
	for _, tt := range tests {
		err := tt.theme.Validate()
		if (err == nil) != tt.valid {
			t.Errorf("Theme(%q).Validate() = %v, want valid=%v", tt.theme, err, tt.valid)
		}
		if err != nil && !errors.Is(err, ErrInvalidTheme) {
			t.Errorf("Theme(%q) error does not wrap ErrInvalidTheme", tt.theme)
		}
	}
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		mutate     func(*Config)
		wantErrors int
	}{
		{"defaults", func(*Config) {}, 0},
		{"datasets", func(c *Config) { c.DatasetPaths = []string{"HLQ.A", "HLQ.B"} }, 0},
		{"blank dataset", func(c *Config) { c.DatasetPaths = []string{" "} }, 1},
		{"relative cache root", func(c *Config) { c.CacheRoot = "cache" }, 1},
		{"zero concurrency", func(c *Config) { c.FetchConcurrency = 0 }, 1},
		{"too much concurrency", func(c *Config) { c.FetchConcurrency = MaxFetchConcurrency + 1 }, 1},
		{"bad default profile", func(c *Config) { c.DefaultProfile = "team/dev" }, 1},
		{"everything wrong", func(c *Config) {
			c.DatasetPaths = []string{".."}
			c.CacheRoot = "rel"
			c.FetchConcurrency = -1
			c.ListingCache.Size = -1
			c.ListingCache.TTL = -1
			c.UI.Theme = "neon"
		}, 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErrors == 0 {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			var ic *InvalidConfigError
			if !errors.As(err, &ic) {
				t.Fatalf("Validate() = %v, want *InvalidConfigError", err)
			}
			if !errors.Is(err, ErrInvalidConfig) {
				t.Error("error does not wrap ErrInvalidConfig")
			}
			if len(ic.FieldErrors) != tt.wantErrors {
				t.Errorf("got %d field errors, want %d: %v", len(ic.FieldErrors), tt.wantErrors, ic.FieldErrors)
			}
		})
	}
}

func TestConfig_Settings(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.DatasetPaths = []string{"HLQ.A", "HLQ.B"}
	cfg.CacheRoot = "/cache"

	s := cfg.Settings()
	want := []dataset.Location{"HLQ.A", "HLQ.B"}
	if len(s.DatasetLocations) != len(want) {
		t.Fatalf("DatasetLocations = %v, want %v", s.DatasetLocations, want)
	}
	for i := range want {
		if s.DatasetLocations[i] != want[i] {
			t.Errorf("DatasetLocations[%d] = %q, want %q", i, s.DatasetLocations[i], want[i])
		}
	}
	if s.CacheRoot != "/cache" {
		t.Errorf("CacheRoot = %q", s.CacheRoot)
	}
}

func TestConfig_ProfilesPath(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	if got := cfg.ProfilesPath("/cfg"); got != "/cfg/"+ProfilesFileName {
		t.Errorf("ProfilesPath = %q", got)
	}
	cfg.ProfilesFile = "/elsewhere/p.toml"
	if got := cfg.ProfilesPath("/cfg"); got != "/elsewhere/p.toml" {
		t.Errorf("ProfilesPath = %q", got)
	}
}

func TestInvalidConfigError_Message(t *testing.T) {
	t.Parallel()

	single := &InvalidConfigError{FieldErrors: []error{&profile.InvalidNameError{Value: "x y"}}}
	if got := single.Error(); got == "" || got == "invalid config: 1 field error(s)" {
		t.Errorf("single error message = %q, want the field error inline", got)
	}
	multi := &InvalidConfigError{FieldErrors: []error{errors.New("a"), errors.New("b")}}
	if got := multi.Error(); got != "invalid config: 2 field error(s)" {
		t.Errorf("multi error message = %q", got)
	}
}
