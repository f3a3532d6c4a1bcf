// SPDX-License-Identifier: MPL-2.0

// Package remote routes dataset operations to the transport selected by a
// connection profile's type. The transports live in the subpackages.
package remote

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/cobdeps/cobdeps/internal/dataset"
	"github.com/cobdeps/cobdeps/internal/profile"
)

// ErrUnsupportedType is returned for profiles whose type has no transport.
var ErrUnsupportedType = errors.New("no transport registered for profile type")

// Router implements dataset.Remote by dispatching on Profile.Type.
type Router struct {
	mu         sync.RWMutex
	transports map[profile.Type]dataset.Remote
}

// NewRouter creates an empty router.
func NewRouter() *Router {
	return &Router{transports: make(map[profile.Type]dataset.Remote)}
}

// Register installs r for profiles of type t, replacing any earlier one.
func (r *Router) Register(t profile.Type, transport dataset.Remote) *Router {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transports[t] = transport
	return r
}

// ListMembers lists loc through the profile's transport.
func (r *Router) ListMembers(ctx context.Context, loc dataset.Location, p profile.Profile) ([]dataset.MemberName, error) {
	t, err := r.transport(p)
	if err != nil {
		return nil, err
	}
	return t.ListMembers(ctx, loc, p)
}

// FetchContent fetches loc(member) through the profile's transport.
func (r *Router) FetchContent(ctx context.Context, loc dataset.Location, member dataset.MemberName, p profile.Profile) ([]byte, error) {
	t, err := r.transport(p)
	if err != nil {
		return nil, err
	}
	return t.FetchContent(ctx, loc, member, p)
}

func (r *Router) transport(p profile.Profile) (dataset.Remote, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.transports[p.Type]
	if !ok {
		return nil, fmt.Errorf("%w: %q (profile %s)", ErrUnsupportedType, p.Type, p.Name)
	}
	return t, nil
}
