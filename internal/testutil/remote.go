// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/cobdeps/cobdeps/internal/dataset"
	"github.com/cobdeps/cobdeps/internal/profile"
)

const (
	// CallList marks a ListMembers call.
	CallList CallKind = "list"
	// CallFetch marks a FetchContent call.
	CallFetch CallKind = "fetch"
)

type (
	// CallKind distinguishes recorded remote calls.
	CallKind string

	// Call is one recorded remote call.
	Call struct {
		Kind    CallKind
		Dataset dataset.Location
		Member  dataset.MemberName
		Profile profile.Name
	}

	// RecordingRemote is an in-memory dataset store that records calls.
	RecordingRemote struct {
		mu       sync.Mutex
		datasets map[dataset.Location]map[dataset.MemberName][]byte
		listErr  map[dataset.Location]error
		fetchErr map[string]error
		calls    []Call

		fetchDelay time.Duration
		inFlight   int
		peak       int
		onCall     func(Call)
	}
)

// NewRecordingRemote creates an empty store.
func NewRecordingRemote() *RecordingRemote {
	return &RecordingRemote{
		datasets: make(map[dataset.Location]map[dataset.MemberName][]byte),
		listErr:  make(map[dataset.Location]error),
		fetchErr: make(map[string]error),
	}
}

// AddMember stores content under loc(member). The content defaults to a
// line naming the member and dataset when nil.
func (r *RecordingRemote) AddMember(loc dataset.Location, member string, content []byte) *RecordingRemote {
	r.mu.Lock()
	defer r.mu.Unlock()
	if content == nil {
		content = fmt.Appendf(nil, "%s FROM %s\n", member, loc)
	}
	if r.datasets[loc] == nil {
		r.datasets[loc] = make(map[dataset.MemberName][]byte)
	}
	r.datasets[loc][dataset.MemberName(member)] = content
	return r
}

// FailListing makes ListMembers of loc fail with err.
func (r *RecordingRemote) FailListing(loc dataset.Location, err error) *RecordingRemote {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listErr[loc] = err
	return r
}

// FailFetch makes FetchContent of loc(member) fail with err.
func (r *RecordingRemote) FailFetch(loc dataset.Location, member string, err error) *RecordingRemote {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fetchErr[string(loc)+"("+member+")"] = err
	return r
}

// DelayFetches makes every FetchContent take at least d, so concurrent
// fetches overlap.
func (r *RecordingRemote) DelayFetches(d time.Duration) *RecordingRemote {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fetchDelay = d
	return r
}

// OnCall registers fn to run after each call completes, outside the lock.
func (r *RecordingRemote) OnCall(fn func(Call)) *RecordingRemote {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onCall = fn
	return r
}

// PeakFetches returns the largest number of FetchContent calls that were
// running at the same time.
func (r *RecordingRemote) PeakFetches() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.peak
}

// ListMembers returns the sorted member names of loc.
func (r *RecordingRemote) ListMembers(ctx context.Context, loc dataset.Location, p profile.Profile) ([]dataset.MemberName, error) {
	call := Call{Kind: CallList, Dataset: loc, Profile: p.Name}
	defer r.notify(call)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, call)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := r.listErr[loc]; err != nil {
		return nil, err
	}
	members := make([]dataset.MemberName, 0, len(r.datasets[loc]))
	for m := range r.datasets[loc] {
		members = append(members, m)
	}
	slices.Sort(members)
	return members, nil
}

// FetchContent returns the stored content of loc(member).
func (r *RecordingRemote) FetchContent(ctx context.Context, loc dataset.Location, member dataset.MemberName, p profile.Profile) ([]byte, error) {
	call := Call{Kind: CallFetch, Dataset: loc, Member: member, Profile: p.Name}
	defer r.notify(call)

	r.mu.Lock()
	r.calls = append(r.calls, call)
	r.inFlight++
	r.peak = max(r.peak, r.inFlight)
	delay := r.fetchDelay
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		r.inFlight--
		r.mu.Unlock()
	}()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := r.fetchErr[string(loc)+"("+string(member)+")"]; err != nil {
		return nil, err
	}
	data, ok := r.datasets[loc][member]
	if !ok {
		return nil, fmt.Errorf("%s(%s): %w", loc, member, dataset.ErrNotFound)
	}
	return slices.Clone(data), nil
}

func (r *RecordingRemote) notify(c Call) {
	r.mu.Lock()
	fn := r.onCall
	r.mu.Unlock()
	if fn != nil {
		fn(c)
	}
}

// Calls returns a copy of the recorded calls.
func (r *RecordingRemote) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.calls)
}

// CallsOf returns the recorded calls of one kind, in order.
func (r *RecordingRemote) CallsOf(kind CallKind) []Call {
	var out []Call
	for _, c := range r.Calls() {
		if c.Kind == kind {
			out = append(out, c)
		}
	}
	return out
}

// ListedDatasets returns the datasets listed, in call order.
func (r *RecordingRemote) ListedDatasets() []dataset.Location {
	var out []dataset.Location
	for _, c := range r.CallsOf(CallList) {
		out = append(out, c.Dataset)
	}
	return out
}
