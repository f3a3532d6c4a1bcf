// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cobdeps/cobdeps/internal/config"
	"github.com/cobdeps/cobdeps/internal/issue"

	"github.com/spf13/cobra"
)

// newConfigCommand creates the `cobdeps config` command tree.
func newConfigCommand(app *App) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage cobdeps configuration",
		Long: `Manage cobdeps configuration.

Configuration is stored in:
  - Linux: ~/.config/cobdeps/config.cue
  - macOS: ~/Library/Application Support/cobdeps/config.cue
  - Windows: %APPDATA%\cobdeps\config.cue

A config.cue in the workspace is used when the config directory has none.
COBDEPS_* environment variables, also read from the workspace .env file,
override file values.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.showConfig(cmd.Context())
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create the default configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.CreateDefaultConfig("")
			if err != nil {
				return issue.NewErrorContext().
					WithOperation("create configuration").
					WithIssue(issue.ConfigLoadFailedId).
					WithSuggestion("Check that the config directory is writable").
					Wrap(err).
					BuildError()
			}
			_, err = fmt.Fprintln(app.stdout, SuccessStyle.Render("Configuration file: ")+path)
			return err
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show the configuration file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.flags.configPath != "" {
				_, err := fmt.Fprintln(app.stdout, app.flags.configPath)
				return err
			}
			dir, err := config.ConfigDir()
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(app.stdout, filepath.Join(dir, config.ConfigFileName+"."+config.ConfigFileExt))
			return err
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "dump",
		Short: "Output the effective configuration as CUE",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.loadConfig(cmd.Context())
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(app.stdout, config.GenerateCUE(cfg))
			return err
		},
	})

	return cfgCmd
}

func (a *App) showConfig(ctx context.Context) error {
	cfg, err := a.loadConfig(ctx)
	if err != nil {
		return err
	}
	profilesPath, err := a.profilesPath(cfg)
	if err != nil {
		return err
	}

	cacheRoot := cfg.CacheRoot
	if cacheRoot == "" {
		cacheRoot = SubtitleStyle.Render("(workspace folder)")
	}
	datasets := strings.Join(cfg.DatasetPaths, ", ")
	if datasets == "" {
		datasets = WarningStyle.Render("(none configured)")
	}
	defaultProfile := string(cfg.DefaultProfile)
	if defaultProfile == "" {
		defaultProfile = SubtitleStyle.Render("(prompt)")
	}

	rows := [][2]string{
		{"dataset_paths", datasets},
		{"cache_root", cacheRoot},
		{"profiles_file", profilesPath},
		{"default_profile", defaultProfile},
		{"fetch_concurrency", strconv.Itoa(cfg.FetchConcurrency)},
		{"listing_cache", fmt.Sprintf("size %d, ttl %s", cfg.ListingCache.Size, cfg.ListingCache.TTL)},
		{"zosmf", fmt.Sprintf("%g req/s, burst %d, %d retries, timeout %s",
			cfg.ZOSMF.RateLimit, cfg.ZOSMF.RateBurst, cfg.ZOSMF.MaxRetries, cfg.ZOSMF.Timeout)},
		{"ui", fmt.Sprintf("verbose %t, accessible %t, theme %s", cfg.UI.Verbose, cfg.UI.Accessible, cfg.UI.Theme)},
	}

	_, _ = fmt.Fprintln(a.stdout, TitleStyle.Render("Configuration"))
	for _, r := range rows {
		_, _ = fmt.Fprintln(a.stdout, labelStyle.Render(r[0])+r[1])
	}
	return nil
}
