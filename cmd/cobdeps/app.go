// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/cobdeps/cobdeps/internal/config"
	"github.com/cobdeps/cobdeps/internal/dataset"
	"github.com/cobdeps/cobdeps/internal/interact"
	"github.com/cobdeps/cobdeps/internal/profile"
	"github.com/cobdeps/cobdeps/internal/remote"
	"github.com/cobdeps/cobdeps/internal/remote/localfs"
	"github.com/cobdeps/cobdeps/internal/remote/objstore"
	"github.com/cobdeps/cobdeps/internal/remote/sshremote"
	"github.com/cobdeps/cobdeps/internal/remote/zosmf"
	"github.com/cobdeps/cobdeps/internal/tui"

	"github.com/charmbracelet/log"
)

type (
	// App wires CLI services and shared dependencies. It is the composition
	// root for the CLI layer: every Cobra handler receives an App and
	// delegates through its injection points.
	App struct {
		Config    ConfigProvider
		Transport TransportFactory
		Surface   SurfaceFactory
		stdout    io.Writer
		stderr    io.Writer
		flags     rootFlags
		theme     config.Theme
	}

	// Dependencies defines the injection points for building an App. Nil
	// fields are replaced with production defaults by NewApp.
	Dependencies struct {
		Config    ConfigProvider
		Transport TransportFactory
		Surface   SurfaceFactory
		Stdout    io.Writer
		Stderr    io.Writer
	}

	// ConfigProvider loads configuration using explicit options.
	ConfigProvider interface {
		Load(ctx context.Context, opts config.LoadOptions) (*config.Config, error)
	}

	// TransportFactory builds the remote used for one command invocation.
	TransportFactory func(cfg *config.Config, logger *log.Logger) dataset.Remote

	// SurfaceFactory builds the interaction surface for one command invocation.
	SurfaceFactory func(cfg tui.Config) interact.Surface
)

// NewApp creates an App, filling nil dependencies with production defaults.
func NewApp(deps Dependencies) *App {
	app := &App{
		Config:    deps.Config,
		Transport: deps.Transport,
		Surface:   deps.Surface,
		stdout:    deps.Stdout,
		stderr:    deps.Stderr,
	}
	if app.Config == nil {
		app.Config = config.NewProvider()
	}
	if app.Transport == nil {
		app.Transport = defaultTransport
	}
	if app.Surface == nil {
		app.Surface = func(cfg tui.Config) interact.Surface { return tui.NewSurface(cfg) }
	}
	if app.stdout == nil {
		app.stdout = os.Stdout
	}
	if app.stderr == nil {
		app.stderr = os.Stderr
	}
	return app
}

// defaultTransport routes each profile type to its transport.
func defaultTransport(cfg *config.Config, logger *log.Logger) dataset.Remote {
	return remote.NewRouter().
		Register(profile.TypeZOSMF, zosmf.New(zosmf.Config{
			RateLimit:  cfg.ZOSMF.RateLimit,
			RateBurst:  cfg.ZOSMF.RateBurst,
			MaxRetries: cfg.ZOSMF.MaxRetries,
			Timeout:    cfg.ZOSMF.Timeout,
			Logger:     logger,
		})).
		Register(profile.TypeSSH, &sshremote.Client{Logger: logger}).
		Register(profile.TypeLocal, &localfs.Client{}).
		Register(profile.TypeS3, &objstore.Client{})
}

// loadConfig loads configuration honoring the persistent flags. Verbose
// and accessible settings from the file apply unless set by flag.
func (a *App) loadConfig(ctx context.Context) (*config.Config, error) {
	ws, err := a.workspaceDir()
	if err != nil {
		return nil, err
	}
	cfg, err := a.Config.Load(ctx, config.LoadOptions{
		ConfigFilePath: a.flags.configPath,
		WorkspaceDir:   ws,
	})
	if err != nil {
		return nil, err
	}
	if cfg.UI.Verbose {
		a.flags.verbose = true
	}
	if cfg.UI.Accessible {
		a.flags.accessible = true
	}
	a.theme = cfg.UI.Theme
	return cfg, nil
}

// workspaceDir returns the absolute workspace folder.
func (a *App) workspaceDir() (string, error) {
	if a.flags.workspace != "" {
		abs, err := filepath.Abs(a.flags.workspace)
		if err != nil {
			return "", fmt.Errorf("resolve workspace: %w", err)
		}
		return abs, nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get working directory: %w", err)
	}
	return wd, nil
}

// profilesPath returns the profiles file for cfg.
func (a *App) profilesPath(cfg *config.Config) (string, error) {
	if cfg.ProfilesFile != "" {
		return cfg.ProfilesFile, nil
	}
	dir, err := config.ConfigDir()
	if err != nil {
		return "", err
	}
	return cfg.ProfilesPath(dir), nil
}

// newLogger returns the structured logger for one invocation.
func (a *App) newLogger() *log.Logger {
	level := log.WarnLevel
	if a.flags.verbose {
		level = log.DebugLevel
	}
	return log.NewWithOptions(a.stderr, log.Options{
		Prefix: "cobdeps",
		Level:  level,
	})
}

// newSurface returns the interaction surface for one invocation.
func (a *App) newSurface() interact.Surface {
	cfg := tui.DefaultConfig()
	cfg.Accessible = cfg.Accessible || a.flags.accessible
	cfg.Theme = tui.Theme(a.theme)
	cfg.Output = a.stderr
	return a.Surface(cfg)
}
