// SPDX-License-Identifier: MPL-2.0

package dataset

import (
	"context"
	"errors"
)

// ErrNoDatasetPathsConfigured is returned when no search location is configured.
var ErrNoDatasetPathsConfigured = errors.New("no dataset paths configured")

// ConfigLister exposes the configured dataset search order.
type ConfigLister struct {
	Locations []Location
}

// NewConfigLister builds a lister from raw configuration strings.
func NewConfigLister(paths []string) *ConfigLister {
	locs := make([]Location, len(paths))
	for i, p := range paths {
		locs[i] = Location(p)
	}
	return &ConfigLister{Locations: locs}
}

// ListDatasetLocations returns the locations in configured order. Blank
// entries and repeats are dropped; the first occurrence keeps its position.
// It fails with ErrNoDatasetPathsConfigured when nothing usable is left, and
// with an InvalidLocationError for an entry that is not a safe path segment.
func (c *ConfigLister) ListDatasetLocations(context.Context) ([]Location, error) {
	out := make([]Location, 0, len(c.Locations))
	seen := make(map[Location]struct{}, len(c.Locations))
	for _, loc := range c.Locations {
		if loc == "" {
			continue
		}
		if err := loc.Validate(); err != nil {
			return nil, err
		}
		if _, dup := seen[loc]; dup {
			continue
		}
		seen[loc] = struct{}{}
		out = append(out, loc)
	}
	if len(out) == 0 {
		return nil, ErrNoDatasetPathsConfigured
	}
	return out, nil
}
