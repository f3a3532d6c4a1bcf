// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/cobdeps/cobdeps/internal/config"
	"github.com/cobdeps/cobdeps/internal/issue"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// rootFlags holds the persistent flags shared by every subcommand.
type rootFlags struct {
	verbose    bool
	configPath string
	workspace  string
	profile    string
	accessible bool
}

// NewRootCommand builds the command tree around app.
func NewRootCommand(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:   "cobdeps",
		Short: "Download the copybooks COBOL programs depend on",
		Long: TitleStyle.Render("cobdeps") + SubtitleStyle.Render(" - copybook resolution and download") + `

cobdeps reads the COPY statements of COBOL programs, searches the configured
datasets in order on a remote host, and downloads every copybook it finds into
a local folder laid out by profile and dataset.

` + SubtitleStyle.Render("Examples:") + `
  cobdeps resolve src/PAYROLL.cbl       Download what PAYROLL copies
  cobdeps resolve -n CUSTREC -n ORDREC  Download named copybooks
  cobdeps profiles list                 Show connection profiles
  cobdeps config show                   Show the effective configuration
  cobdeps serve --root ./mirror         Serve a directory as a dataset host`,
		SilenceUsage: true,
	}

	pf := root.PersistentFlags()
	pf.BoolVarP(&app.flags.verbose, "verbose", "v", false, "enable debug logging and full error chains")
	pf.StringVar(&app.flags.configPath, "config", "", "config file (default is $XDG_CONFIG_HOME/cobdeps/config.cue)")
	pf.StringVarP(&app.flags.workspace, "workspace", "w", "", "workspace folder copybooks are downloaded into (default is the current directory)")
	pf.StringVarP(&app.flags.profile, "profile", "p", "", "connection profile to use without prompting")
	pf.BoolVar(&app.flags.accessible, "accessible", false, "render prompts in accessible mode")

	root.AddCommand(
		newResolveCommand(app),
		newPathCommand(app),
		newProfilesCommand(app),
		newConfigCommand(app),
		newServeCommand(app),
	)
	return root
}

// versionString returns a formatted version string for display.
func versionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Main runs the CLI with os.Args and returns the process exit code.
func Main() int {
	app := NewApp(Dependencies{})
	return app.Run(context.Background(), os.Args[1:])
}

// Execute runs the CLI and exits. It is called by main.main().
func Execute() {
	os.Exit(Main())
}

// Run executes the command tree with args and returns the exit code.
func (a *App) Run(ctx context.Context, args []string) int {
	root := NewRootCommand(a)
	root.SetArgs(args)
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)

	err := fang.Execute(
		ctx,
		root,
		fang.WithVersion(versionString()),
		fang.WithNotifySignal(os.Interrupt),
		fang.WithErrorHandler(a.handleError),
	)
	return int(exitCode(err))
}

// handleError renders command errors. Silent exit errors print nothing and
// actionable errors print their suggestions, plus the catalog entry in
// verbose mode.
func (a *App) handleError(w io.Writer, styles fang.Styles, err error) {
	var exitErr *ExitError
	if errors.As(err, &exitErr) && exitErr.Err == nil {
		return
	}

	var ae *issue.ActionableError
	if !errors.As(err, &ae) {
		fang.DefaultErrorHandler(w, styles, err)
		return
	}

	_, _ = fmt.Fprintln(w, ErrorStyle.Render("Error: ")+ae.Format(a.flags.verbose))
	if !a.flags.verbose {
		return
	}
	id, ok := issue.IdOf(err)
	if !ok {
		return
	}
	if rendered, rerr := issue.Get(id).Render(a.markdownStyle(w)); rerr == nil {
		_, _ = fmt.Fprint(w, rendered)
	}
}

// markdownStyle picks the glamour style for w.
func (a *App) markdownStyle(w io.Writer) string {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) || a.flags.accessible {
		return "notty"
	}
	if a.theme == config.ThemeLight {
		return "light"
	}
	return "dark"
}

// exitCode maps a command error to a process exit code.
func exitCode(err error) ExitCode {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}
