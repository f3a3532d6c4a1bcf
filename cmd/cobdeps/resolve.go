// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/cobdeps/cobdeps/internal/config"
	"github.com/cobdeps/cobdeps/internal/copybook"
	"github.com/cobdeps/cobdeps/internal/dataset"
	"github.com/cobdeps/cobdeps/internal/interact"
	"github.com/cobdeps/cobdeps/internal/issue"
	"github.com/cobdeps/cobdeps/internal/profile"
	"github.com/cobdeps/cobdeps/internal/program"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// maxParallelPrograms bounds how many programs resolve at once.
const maxParallelPrograms = 4

type (
	// resolveJob is one resolution run: the COPY statements of one program,
	// or the names given with --name.
	resolveJob struct {
		source string
		stmts  []program.CopyStatement
		names  []copybook.Name
		result copybook.Result
		err    error
	}
)

func newResolveCommand(app *App) *cobra.Command {
	var names []string
	cmd := &cobra.Command{
		Use:   "resolve [program...]",
		Short: "Download the copybooks referenced by COBOL programs",
		Long: `Download the copybooks referenced by COBOL programs.

Each program is scanned for COPY statements. Every copybook is searched in the
configured dataset_paths, in order, and downloaded from the first dataset that
contains it. Copybooks already present locally are not downloaded again.

Exit status is 3 when some copybooks were not found and 2 when the profile
prompt was dismissed.`,
		Example: `  cobdeps resolve src/PAYROLL.cbl src/BILLING.cbl
  cobdeps resolve --name CUSTREC --name ORDREC
  cobdeps -p prod resolve src/*.cbl`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 && len(names) == 0 {
				return errors.New("nothing to resolve: pass program files or --name")
			}
			return app.resolve(cmd.Context(), args, names)
		},
	}
	cmd.Flags().StringSliceVarP(&names, "name", "n", nil, "copybook name to resolve, case-insensitive (repeatable)")
	return cmd
}

// resolve runs one resolution per program, concurrently, with a shared
// listing cache and a shared profile answer.
func (a *App) resolve(ctx context.Context, programs, names []string) error {
	cfg, err := a.loadConfig(ctx)
	if err != nil {
		return err
	}
	ws, err := a.workspaceDir()
	if err != nil {
		return err
	}

	jobs, err := scanPrograms(programs)
	if err != nil {
		return err
	}
	if len(names) > 0 {
		upper := make([]string, len(names))
		for i, n := range names {
			upper[i] = strings.ToUpper(strings.TrimSpace(n))
		}
		jobs = append(jobs, &resolveJob{source: "--name", names: copybook.NamesOf(upper...)})
	}

	resolver, err := a.newResolver(cfg)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelPrograms)
	for _, job := range jobs {
		if len(job.names) == 0 {
			continue
		}
		g.Go(func() error {
			job.result, job.err = resolver.ResolveAndDownload(gctx, copybook.Workspace{RootPath: ws}, job.names)
			return nil
		})
	}
	_ = g.Wait()

	return a.report(jobs)
}

// newResolver assembles the engine for one invocation.
func (a *App) newResolver(cfg *config.Config) (*copybook.Resolver, error) {
	logger := a.newLogger()
	surface := interact.NewSticky(a.newSurface())

	profilesPath, err := a.profilesPath(cfg)
	if err != nil {
		return nil, err
	}
	preferred := profile.Name(a.flags.profile)
	if preferred == "" {
		preferred = cfg.DefaultProfile
	}

	rem := a.Transport(cfg, logger)
	if cfg.ListingCache.Size > 0 {
		rem = dataset.WithListing(rem, dataset.NewCachingLister(rem, cfg.ListingCache.Size, cfg.ListingCache.TTL))
	}

	return &copybook.Resolver{
		Profiles: &profile.Selector{
			Provider:  profile.NewFileProvider(profilesPath),
			Surface:   surface,
			Preferred: preferred,
		},
		Remote:           rem,
		Surface:          surface,
		Settings:         cfg.Settings(),
		Logger:           logger,
		FetchConcurrency: cfg.FetchConcurrency,
	}, nil
}

// scanPrograms reads the COPY statements of each program.
func scanPrograms(paths []string) ([]*resolveJob, error) {
	jobs := make([]*resolveJob, 0, len(paths))
	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			return nil, issue.NewErrorContext().
				WithOperation("read program").
				WithResource(path).
				WithIssue(issue.ProgramNotFoundId).
				WithSuggestion("Check the path, or pass copybook names with --name").
				Wrap(err).
				BuildError()
		}
		stmts, err := program.Scan(f)
		_ = f.Close()
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", path, err)
		}
		jobs = append(jobs, &resolveJob{
			source: path,
			stmts:  stmts,
			names:  copybook.NamesOf(program.Names(stmts)...),
		})
	}
	return jobs, nil
}

// report prints every job outcome and returns the error deciding the exit
// status: the first abort wins over partial results.
func (a *App) report(jobs []*resolveJob) error {
	var unresolved int
	var aborted error
	for _, job := range jobs {
		if len(job.names) == 0 {
			_, _ = fmt.Fprintln(a.stdout, SubtitleStyle.Render(job.source+": no COPY statements"))
			continue
		}
		a.printResult(job)
		if job.err != nil && aborted == nil {
			aborted = job.err
		}
		unresolved += len(job.result.Unresolved)
	}

	if aborted != nil {
		return classifyAbort(aborted)
	}
	if unresolved > 0 {
		return &ExitError{
			Code: ExitPartial,
			Err: issue.NewErrorContext().
				WithOperation("resolve copybooks").
				WithIssue(issue.PartialResolutionId).
				WithSuggestion("Add the datasets holding them to dataset_paths").
				Wrap(fmt.Errorf("%d copybook(s) not found in any configured dataset", unresolved)).
				BuildError(),
		}
	}
	return nil
}

// printResult writes resolved copybooks to stdout and diagnostics to
// stderr, in file:line:column form when the name came from a program.
func (a *App) printResult(job *resolveJob) {
	res := job.result
	for _, name := range res.ResolvedNames() {
		r := res.Resolved[name]
		_, _ = fmt.Fprintf(a.stdout, "%s (%s, %s): %s\n",
			CmdStyle.Render(string(name)),
			r.Dataset,
			SuccessStyle.Render(r.Outcome.String()),
			r.Path)
	}
	for _, ferr := range res.Failures {
		_, _ = fmt.Fprintln(a.stderr, WarningStyle.Render("warning: ")+ferr.Error())
	}
	if res.State == copybook.Aborted {
		return
	}
	for _, name := range res.Unresolved {
		a.printUnresolved(a.stderr, job, name)
	}
}

func (a *App) printUnresolved(w io.Writer, job *resolveJob, name copybook.Name) {
	msg := fmt.Sprintf("copybook %s not found in any configured dataset", name)
	for _, s := range job.stmts {
		if s.Name == string(name) {
			_, _ = fmt.Fprintf(w, "%s:%d:%d: %s\n", job.source, s.Line, s.Column, ErrorStyle.Render(msg))
			return
		}
	}
	_, _ = fmt.Fprintln(w, ErrorStyle.Render(msg))
}

// classifyAbort maps an aborted run to its exit status. The resolver has
// already shown the user-facing message through the surface.
func classifyAbort(err error) error {
	switch {
	case errors.Is(err, profile.ErrProfileSelectionCancelled):
		return &ExitError{Code: ExitAborted}
	case errors.Is(err, profile.ErrNoProfileAvailable):
		return withIssue(err, "select connection profile", issue.NoProfileId, "Run 'cobdeps profiles add' to create one")
	case errors.Is(err, profile.ErrProfileNotFound):
		return withIssue(err, "select connection profile", issue.NoProfileId, "Run 'cobdeps profiles list' to see the configured names")
	case errors.Is(err, dataset.ErrNoDatasetPathsConfigured):
		return withIssue(err, "list dataset locations", issue.NoDatasetPathsId, "Set dataset_paths in config.cue or COBDEPS_DATASET_PATHS")
	case errors.Is(err, copybook.ErrNoWorkspaceOpen):
		return withIssue(err, "choose download folder", issue.NoWorkspaceId, "Pass --workspace or set cache_root")
	case errors.Is(err, profile.ErrInvalidProfile), errors.Is(err, profile.ErrDuplicateName):
		return withIssue(err, "load connection profiles", issue.ProfilesInvalidId, "Fix the profiles file, then run again")
	case errors.Is(err, context.Canceled):
		return &ExitError{Code: ExitAborted, Err: err}
	default:
		return err
	}
}

func withIssue(err error, op string, id issue.Id, suggestion string) error {
	return issue.NewErrorContext().
		WithOperation(op).
		WithIssue(id).
		WithSuggestion(suggestion).
		Wrap(err).
		BuildError()
}
