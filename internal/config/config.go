// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/cobdeps/cobdeps/internal/issue"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	// AppName is the application name.
	AppName = "cobdeps"
	// ConfigFileName is the name of the config file (without extension).
	ConfigFileName = "config"
	// ConfigFileExt is the config file extension.
	ConfigFileExt = "cue"
	// EnvPrefix prefixes environment overrides, e.g. COBDEPS_CACHE_ROOT.
	EnvPrefix = "COBDEPS"
	// ConfigDirEnv overrides the platform config directory.
	ConfigDirEnv = EnvPrefix + "_CONFIG_DIR"
	// DotEnvFileName is loaded from the workspace before reading the environment.
	DotEnvFileName = ".env"

	// maxConfigFileSize rejects pathological config files before parsing.
	maxConfigFileSize = 1 << 20
)

//go:embed config_schema.cue
var configSchema string

// ConfigDir returns the cobdeps configuration directory. COBDEPS_CONFIG_DIR
// wins when set; otherwise platform conventions apply: Windows uses %APPDATA%, macOS uses ~/Library/Application Support,
// and Linux/others use $XDG_CONFIG_HOME (defaulting to ~/.config).
//
//nolint:revive // ConfigDir is more descriptive than Dir for external callers
func ConfigDir() (string, error) {
	if configDirOverride != "" {
		return configDirOverride, nil
	}
	if dir := os.Getenv(ConfigDirEnv); dir != "" {
		return dir, nil
	}

	var configDir string

	switch runtime.GOOS {
	case "windows":
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(home, "Library", "Application Support")
	default:
		configDir = os.Getenv("XDG_CONFIG_HOME")
		if configDir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("failed to get home directory: %w", err)
			}
			configDir = filepath.Join(home, ".config")
		}
	}

	return filepath.Join(configDir, AppName), nil
}

// loadWithOptions layers, from lowest to highest precedence: defaults, the
// first config.cue found, then COBDEPS_* variables including those from the
// workspace .env file.
func loadWithOptions(ctx context.Context, opts LoadOptions) (*Config, string, error) {
	select {
	case <-ctx.Done():
		return nil, "", fmt.Errorf("load config canceled: %w", ctx.Err())
	default:
	}

	if err := loadDotEnv(opts.WorkspaceDir); err != nil {
		return nil, "", issue.NewErrorContext().
			WithOperation("load environment file").
			WithResource(filepath.Join(opts.WorkspaceDir, DotEnvFileName)).
			WithSuggestion("Check that each line has the form KEY=value").
			Wrap(err).
			BuildError()
	}

	v := newViper()

	resolvedPath := ""

	if opts.ConfigFilePath != "" {
		if !fileExists(opts.ConfigFilePath) {
			return nil, "", issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(opts.ConfigFilePath).
				WithSuggestion("Verify the file path is correct").
				WithSuggestion("Use 'cobdeps config init' to create a default configuration").
				Wrap(fmt.Errorf("config file not found: %s", opts.ConfigFilePath)).
				BuildError()
		}
		resolvedPath = opts.ConfigFilePath
	} else {
		cfgDir, err := configDirWithOverride(opts.ConfigDirPath)
		if err != nil {
			return nil, "", err
		}
		for _, candidate := range []string{
			filepath.Join(cfgDir, ConfigFileName+"."+ConfigFileExt),
			filepath.Join(opts.WorkspaceDir, ConfigFileName+"."+ConfigFileExt),
		} {
			if fileExists(candidate) {
				resolvedPath = candidate
				break
			}
		}
	}

	if resolvedPath != "" {
		if err := loadCUEIntoViper(v, resolvedPath); err != nil {
			return nil, "", issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(resolvedPath).
				WithSuggestion("Check that the file contains valid CUE syntax").
				WithSuggestion("Verify the configuration values match the expected schema").
				WithSuggestion("Run 'cobdeps config show' to see the effective configuration").
				Wrap(err).
				BuildError()
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, "", fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", issue.NewErrorContext().
			WithOperation("validate configuration").
			WithResource(resolvedPath).
			WithSuggestion("dataset_paths entries must be plain dataset names such as HLQ.COPYLIB").
			WithSuggestion("cache_root must be an absolute path").
			Wrap(err).
			BuildError()
	}

	return &cfg, resolvedPath, nil
}

// newViper returns a Viper instance carrying the defaults and the
// COBDEPS_* environment binding.
func newViper() *viper.Viper {
	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault("dataset_paths", defaults.DatasetPaths)
	v.SetDefault("cache_root", defaults.CacheRoot)
	v.SetDefault("profiles_file", defaults.ProfilesFile)
	v.SetDefault("default_profile", string(defaults.DefaultProfile))
	v.SetDefault("fetch_concurrency", defaults.FetchConcurrency)
	v.SetDefault("listing_cache.size", defaults.ListingCache.Size)
	v.SetDefault("listing_cache.ttl", defaults.ListingCache.TTL)
	v.SetDefault("zosmf.rate_limit", defaults.ZOSMF.RateLimit)
	v.SetDefault("zosmf.rate_burst", defaults.ZOSMF.RateBurst)
	v.SetDefault("zosmf.max_retries", defaults.ZOSMF.MaxRetries)
	v.SetDefault("zosmf.timeout", defaults.ZOSMF.Timeout)
	v.SetDefault("ui.verbose", defaults.UI.Verbose)
	v.SetDefault("ui.accessible", defaults.UI.Accessible)
	v.SetDefault("ui.theme", string(defaults.UI.Theme))

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

// loadDotEnv sources the workspace .env file without overriding variables
// that are already set. A missing file is not an error.
func loadDotEnv(workspaceDir string) error {
	path := filepath.Join(workspaceDir, DotEnvFileName)
	if !fileExists(path) {
		return nil
	}
	return godotenv.Load(path)
}

func configDirWithOverride(configDirPath string) (string, error) {
	if configDirPath != "" {
		return configDirPath, nil
	}
	return ConfigDir()
}

// loadCUEIntoViper parses a CUE file, validates it against the #Config schema,
// and merges its contents into Viper.
//
// Fields are optional, so validation uses Concrete(false), and the result is
// decoded into a map so Viper keeps its defaults and environment overrides.
func loadCUEIntoViper(v *viper.Viper, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if len(data) > maxConfigFileSize {
		return fmt.Errorf("%s: config file exceeds %d bytes", path, maxConfigFileSize)
	}

	ctx := cuecontext.New()

	schemaValue := ctx.CompileString(configSchema)
	if schemaValue.Err() != nil {
		return fmt.Errorf("internal error: failed to compile config schema: %w", schemaValue.Err())
	}

	userValue := ctx.CompileBytes(data, cue.Filename(path))
	if userValue.Err() != nil {
		return formatCUEError(userValue.Err(), path)
	}

	schema := schemaValue.LookupPath(cue.ParsePath("#Config"))
	unified := schema.Unify(userValue)
	if err := unified.Validate(cue.Concrete(false)); err != nil {
		return formatCUEError(err, path)
	}

	var configMap map[string]any
	if err := unified.Decode(&configMap); err != nil {
		return formatCUEError(err, path)
	}

	if err := v.MergeConfigMap(configMap); err != nil {
		return fmt.Errorf("failed to merge config: %w", err)
	}

	return nil
}

// formatCUEError flattens a CUE error list into one message per line, each
// prefixed with the file and field path.
func formatCUEError(err error, path string) error {
	list := cueerrors.Errors(err)
	if len(list) == 0 {
		return fmt.Errorf("%s: %w", path, err)
	}
	lines := make([]string, 0, len(list))
	for _, e := range list {
		format, args := e.Msg()
		msg := fmt.Sprintf(format, args...)
		if p := strings.Join(e.Path(), "."); p != "" {
			msg = p + ": " + msg
		}
		lines = append(lines, path+": "+msg)
	}
	return errors.New(strings.Join(lines, "\n"))
}

// fileExists reports whether path is a regular file or a symlink to one.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// CreateDefaultConfig creates a default config file in cfgDir if it doesn't
// exist and returns its path. An empty cfgDir means ConfigDir().
func CreateDefaultConfig(cfgDir string) (string, error) {
	cfgDir, err := configDirWithOverride(cfgDir)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(cfgDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	cfgPath := filepath.Join(cfgDir, ConfigFileName+"."+ConfigFileExt)

	if _, err := os.Stat(cfgPath); err == nil {
		return cfgPath, nil
	}

	if err := os.WriteFile(cfgPath, []byte(GenerateCUE(DefaultConfig())), 0o644); err != nil {
		return "", fmt.Errorf("failed to write config file: %w", err)
	}

	return cfgPath, nil
}

// GenerateCUE generates a CUE representation of the configuration
func GenerateCUE(cfg *Config) string {
	var sb strings.Builder

	sb.WriteString("// cobdeps configuration file\n\n")

	sb.WriteString("dataset_paths: [")
	for i, p := range cfg.DatasetPaths {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%q", p)
	}
	sb.WriteString("]\n")

	if cfg.CacheRoot != "" {
		fmt.Fprintf(&sb, "cache_root: %q\n", cfg.CacheRoot)
	}
	if cfg.ProfilesFile != "" {
		fmt.Fprintf(&sb, "profiles_file: %q\n", cfg.ProfilesFile)
	}
	if cfg.DefaultProfile != "" {
		fmt.Fprintf(&sb, "default_profile: %q\n", cfg.DefaultProfile)
	}
	fmt.Fprintf(&sb, "fetch_concurrency: %d\n", cfg.FetchConcurrency)

	sb.WriteString("\nlisting_cache: {\n")
	fmt.Fprintf(&sb, "\tsize: %d\n", cfg.ListingCache.Size)
	fmt.Fprintf(&sb, "\tttl:  %q\n", cfg.ListingCache.TTL.String())
	sb.WriteString("}\n")

	sb.WriteString("\nzosmf: {\n")
	fmt.Fprintf(&sb, "\trate_limit:  %v\n", cfg.ZOSMF.RateLimit)
	fmt.Fprintf(&sb, "\trate_burst:  %d\n", cfg.ZOSMF.RateBurst)
	fmt.Fprintf(&sb, "\tmax_retries: %d\n", cfg.ZOSMF.MaxRetries)
	fmt.Fprintf(&sb, "\ttimeout:     %q\n", cfg.ZOSMF.Timeout.String())
	sb.WriteString("}\n")

	theme := cfg.UI.Theme
	if theme == "" {
		theme = ThemeAuto
	}
	sb.WriteString("\nui: {\n")
	fmt.Fprintf(&sb, "\tverbose:    %v\n", cfg.UI.Verbose)
	fmt.Fprintf(&sb, "\taccessible: %v\n", cfg.UI.Accessible)
	fmt.Fprintf(&sb, "\ttheme:      %q\n", theme)
	sb.WriteString("}\n")

	return sb.String()
}
