// SPDX-License-Identifier: MPL-2.0

package dataset

import (
	"context"
	"slices"
	"time"

	"github.com/cobdeps/cobdeps/internal/profile"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

const (
	// DefaultListingCacheSize bounds the number of memoized listings.
	DefaultListingCacheSize = 256
	// DefaultListingCacheTTL is how long a listing is trusted.
	DefaultListingCacheTTL = 5 * time.Minute
)

type (
	// CachingLister memoizes member listings per (profile, dataset) so that
	// several resolution runs in one process list each dataset once.
	// Failed listings are never cached.
	CachingLister struct {
		next  MemberLister
		cache *expirable.LRU[listingKey, []MemberName]
	}

	listingKey struct {
		profile  profile.Name
		location Location
	}
)

// NewCachingLister wraps next. Non-positive size or ttl select the defaults.
func NewCachingLister(next MemberLister, size int, ttl time.Duration) *CachingLister {
	if size <= 0 {
		size = DefaultListingCacheSize
	}
	if ttl <= 0 {
		ttl = DefaultListingCacheTTL
	}
	return &CachingLister{
		next:  next,
		cache: expirable.NewLRU[listingKey, []MemberName](size, nil, ttl),
	}
}

// ListMembers returns a memoized listing or asks the wrapped lister.
func (c *CachingLister) ListMembers(ctx context.Context, loc Location, p profile.Profile) ([]MemberName, error) {
	key := listingKey{profile: p.Name, location: loc}
	if members, ok := c.cache.Get(key); ok {
		return slices.Clone(members), nil
	}

	members, err := c.next.ListMembers(ctx, loc, p)
	if err != nil {
		return nil, err
	}
	c.cache.Add(key, slices.Clone(members))
	return members, nil
}

// Purge drops every memoized listing.
func (c *CachingLister) Purge() {
	c.cache.Purge()
}

// WithListing returns a Remote whose listings come from lister and whose
// fetches go to r.
func WithListing(r Remote, lister MemberLister) Remote {
	return remoteParts{MemberLister: lister, ContentFetcher: r}
}

type remoteParts struct {
	MemberLister
	ContentFetcher
}
