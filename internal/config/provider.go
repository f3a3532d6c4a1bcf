// SPDX-License-Identifier: MPL-2.0

package config

import "context"

type (
	// LoadOptions selects where configuration is read from.
	LoadOptions struct {
		// ConfigFilePath names the config file to read; it must exist.
		ConfigFilePath string
		// ConfigDirPath replaces the config directory lookup.
		ConfigDirPath string
		// WorkspaceDir holds the fallback config.cue and the .env file.
		// Empty means the current directory.
		WorkspaceDir string
	}

	// Provider loads configuration. The CLI depends on it so tests can hand
	// in a fixed Config.
	Provider interface {
		Load(ctx context.Context, opts LoadOptions) (*Config, error)
	}

	fileProvider struct{}
)

// NewProvider returns the Provider reading CUE files, .env and COBDEPS_*
// variables.
func NewProvider() Provider {
	return fileProvider{}
}

func (fileProvider) Load(ctx context.Context, opts LoadOptions) (*Config, error) {
	cfg, _, err := loadWithOptions(ctx, opts)
	return cfg, err
}

// LoadWithPath loads like Provider.Load and also returns the config file
// that was read, or "" when only defaults and the environment applied.
func LoadWithPath(ctx context.Context, opts LoadOptions) (*Config, string, error) {
	return loadWithOptions(ctx, opts)
}
