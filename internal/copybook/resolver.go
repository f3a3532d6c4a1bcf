// SPDX-License-Identifier: MPL-2.0

package copybook

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"slices"

	"github.com/cobdeps/cobdeps/internal/cache"
	"github.com/cobdeps/cobdeps/internal/dataset"
	"github.com/cobdeps/cobdeps/internal/interact"
	"github.com/cobdeps/cobdeps/internal/profile"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"
)

// DefaultFetchConcurrency bounds parallel fetches within one dataset.
const DefaultFetchConcurrency = 4

// User-facing messages shown through the interaction surface.
const (
	MsgNoDatasetPaths = "Please specify dataset paths for copybooks in the cobdeps configuration."
	MsgNoProfile      = "No connection profile is configured."
	MsgNoWorkspace    = "Open a workspace folder or configure a cache root to download copybooks into."
)

type (
	// ProfileSelector decides which connection profile a run uses.
	ProfileSelector interface {
		SelectProfile(ctx context.Context) (profile.Profile, error)
	}

	// DatasetLister returns the ordered dataset search locations.
	DatasetLister interface {
		ListDatasetLocations(ctx context.Context) ([]dataset.Location, error)
	}

	// Cache stores fetched content at a path, skipping the supplier when the
	// file is already there.
	Cache interface {
		EnsureCached(ctx context.Context, path string, supply cache.Supplier) (cache.Outcome, error)
	}

	// Resolver runs copybook resolutions. A Resolver holds no per-run state,
	// so one value may serve concurrent runs.
	Resolver struct {
		Profiles ProfileSelector
		// Datasets overrides Settings.DatasetLocations when set.
		Datasets DatasetLister
		Remote   dataset.Remote
		Surface  interact.Surface
		Settings Settings
		// OpenCache returns the cache for a root folder. Nil means cache.New.
		OpenCache func(root string) Cache
		Logger    *log.Logger
		// FetchConcurrency bounds parallel fetches of matches found in one
		// dataset. Non-positive means DefaultFetchConcurrency.
		FetchConcurrency int
		// MaxNameLength rejects longer names when positive.
		MaxNameLength int
	}

	// fetchResult is the outcome of caching one matched member.
	fetchResult struct {
		name    Name
		path    string
		outcome cache.Outcome
		err     error
	}
)

// ResolveAndDownload resolves the requested names. Each name is fetched from
// the first dataset, in configured order, whose listing contains it, and is
// cached at CopybookPath(profile, dataset, name, root). Names already cached
// are not fetched again.
//
// Configuration and profile failures abort the run before any remote call
// and are returned as errors along with a result listing every requested
// name as unresolved. Remote failures are recorded in Result.Failures and do
// not stop the walk.
func (r *Resolver) ResolveAndDownload(ctx context.Context, ws Workspace, requested []Name) (Result, error) {
	logger := r.logger()

	pending, invalid, invalidErrs := r.pendingSet(requested)
	res := Result{Resolved: make(map[Name]Resolution), Failures: invalidErrs}

	abort := func(err error) (Result, error) {
		res.Unresolved = sortedUnion(pending, invalid)
		res.State = Aborted
		return res, err
	}

	root := r.Settings.CacheRoot
	if root == "" {
		root = ws.RootPath
	}
	if root == "" {
		r.showError(ctx, MsgNoWorkspace)
		return abort(ErrNoWorkspaceOpen)
	}
	if !filepath.IsAbs(root) {
		abs, err := filepath.Abs(root)
		if err != nil {
			return abort(fmt.Errorf("resolve root folder %s: %w", root, err))
		}
		root = abs
	}

	prof, err := r.Profiles.SelectProfile(ctx)
	if err != nil {
		switch {
		case errors.Is(err, profile.ErrProfileSelectionCancelled):
			// The user chose to cancel; nothing more to say.
		case errors.Is(err, profile.ErrNoProfileAvailable):
			r.showError(ctx, MsgNoProfile)
		default:
			r.showError(ctx, err.Error())
		}
		return abort(fmt.Errorf("select profile: %w", err))
	}
	res.Profile = prof.Name

	locations, err := r.datasets().ListDatasetLocations(ctx)
	if err != nil {
		if errors.Is(err, dataset.ErrNoDatasetPathsConfigured) {
			r.showError(ctx, MsgNoDatasetPaths)
		} else {
			r.showError(ctx, err.Error())
		}
		return abort(fmt.Errorf("list dataset locations: %w", err))
	}

	store := r.openCache(root)
	logger.Debug("Resolving copybooks", "requested", len(pending), "profile", prof.Name, "datasets", len(locations))

	for _, loc := range locations {
		if len(pending) == 0 {
			logger.Debug("All copybooks resolved, skipping remaining datasets", "next", loc)
			break
		}
		if err := ctx.Err(); err != nil {
			return abort(fmt.Errorf("resolution cancelled: %w", err))
		}

		members, err := r.Remote.ListMembers(ctx, loc, prof)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return abort(fmt.Errorf("resolution cancelled: %w", ctxErr))
			}
			lerr := &dataset.ListingError{Location: loc, Profile: prof.Name, Err: err}
			logger.Warn("Listing dataset failed", "dataset", loc, "error", err)
			res.Failures = append(res.Failures, lerr)
			continue
		}

		matches := intersect(members, pending)
		logger.Debug("Listed dataset", "dataset", loc, "members", len(members), "matches", len(matches))
		if len(matches) == 0 {
			continue
		}

		found := make(map[Name]struct{}, len(matches))
		for _, fr := range r.fetchAll(ctx, store, prof, loc, root, matches) {
			if fr.err != nil {
				logger.Warn("Caching copybook failed", "dataset", loc, "copybook", fr.name, "error", fr.err)
				res.Failures = append(res.Failures, fr.err)
				continue
			}
			logger.Debug("Cached copybook", "dataset", loc, "copybook", fr.name, "outcome", fr.outcome)
			res.Resolved[fr.name] = Resolution{Path: fr.path, Dataset: loc, Outcome: fr.outcome}
			found[fr.name] = struct{}{}
		}
		pending = without(pending, found)
	}

	if err := ctx.Err(); err != nil {
		return abort(fmt.Errorf("resolution cancelled: %w", err))
	}

	res.Unresolved = sortedUnion(pending, invalid)
	if len(res.Unresolved) == 0 {
		res.State = AllResolved
	} else {
		res.State = PartiallyResolved
	}
	return res, nil
}

// fetchAll caches every match concurrently. Matches are disjoint members
// with disjoint target paths, so the only shared state is the result slice,
// which each goroutine writes at its own index.
func (r *Resolver) fetchAll(ctx context.Context, store Cache, prof profile.Profile, loc dataset.Location, root string, matches []Name) []fetchResult {
	results := make([]fetchResult, len(matches))

	var g errgroup.Group
	g.SetLimit(r.fetchConcurrency())
	for i, name := range matches {
		g.Go(func() error {
			path := CopybookPath(prof.Name.String(), loc.String(), name.String(), root)
			outcome, err := store.EnsureCached(ctx, path, func(ctx context.Context) ([]byte, error) {
				data, err := r.Remote.FetchContent(ctx, loc, dataset.MemberName(name), prof)
				if err != nil {
					return nil, &dataset.FetchError{Location: loc, Member: dataset.MemberName(name), Profile: prof.Name, Err: err}
				}
				return data, nil
			})
			results[i] = fetchResult{name: name, path: path, outcome: outcome, err: err}
			return nil
		})
	}
	_ = g.Wait() // Goroutines report through results and never return errors

	return results
}

// pendingSet deduplicates the requested names and separates out the ones
// that fail validation, keeping their errors in request order.
func (r *Resolver) pendingSet(requested []Name) (pending, invalid map[Name]struct{}, errs []error) {
	pending = make(map[Name]struct{}, len(requested))
	invalid = make(map[Name]struct{})
	for _, name := range requested {
		if err := name.Validate(r.MaxNameLength); err != nil {
			if _, seen := invalid[name]; !seen {
				invalid[name] = struct{}{}
				errs = append(errs, err)
			}
			continue
		}
		pending[name] = struct{}{}
	}
	return pending, invalid, errs
}

func (r *Resolver) datasets() DatasetLister {
	if r.Datasets != nil {
		return r.Datasets
	}
	return &dataset.ConfigLister{Locations: r.Settings.DatasetLocations}
}

func (r *Resolver) openCache(root string) Cache {
	if r.OpenCache != nil {
		return r.OpenCache(root)
	}
	return cache.New(root)
}

func (r *Resolver) fetchConcurrency() int {
	if r.FetchConcurrency > 0 {
		return r.FetchConcurrency
	}
	return DefaultFetchConcurrency
}

func (r *Resolver) logger() *log.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return log.New(io.Discard)
}

func (r *Resolver) showError(ctx context.Context, msg string) {
	if r.Surface != nil {
		r.Surface.ShowError(ctx, msg)
	}
}

// intersect returns the pending names present in members, sorted.
func intersect(members []dataset.MemberName, pending map[Name]struct{}) []Name {
	var matches []Name
	seen := make(map[Name]struct{}, len(members))
	for _, m := range members {
		name := Name(m)
		if _, ok := pending[name]; !ok {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		matches = append(matches, name)
	}
	slices.Sort(matches)
	return matches
}

// without returns pending minus found as a new set.
func without(pending, found map[Name]struct{}) map[Name]struct{} {
	if len(found) == 0 {
		return pending
	}
	next := make(map[Name]struct{}, len(pending))
	for name := range pending {
		if _, ok := found[name]; !ok {
			next[name] = struct{}{}
		}
	}
	return next
}

func sortedUnion(pending, invalid map[Name]struct{}) []Name {
	out := make([]Name, 0, len(pending)+len(invalid))
	for name := range pending {
		out = append(out, name)
	}
	for name := range invalid {
		out = append(out, name)
	}
	slices.Sort(out)
	return out
}
