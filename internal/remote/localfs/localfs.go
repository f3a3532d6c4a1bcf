// SPDX-License-Identifier: MPL-2.0

// Package localfs serves datasets from a directory tree laid out as
// <base>/<dataset>/<member>, such as a mounted export or an offline mirror.
package localfs

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"slices"

	"github.com/cobdeps/cobdeps/internal/dataset"
	"github.com/cobdeps/cobdeps/internal/profile"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
)

type (
	// Dir reads datasets from a filesystem whose root holds one directory
	// per dataset.
	Dir struct {
		fs billy.Filesystem
	}

	// Client is the dataset.Remote for local profiles. Every profile is
	// served from its BasePath.
	Client struct {
		// Open returns the filesystem rooted at a base path. Nil means osfs.
		Open func(basePath string) billy.Filesystem
	}
)

// NewDir wraps fsys.
func NewDir(fsys billy.Filesystem) *Dir {
	return &Dir{fs: fsys}
}

// Members returns the sorted file names in the dataset directory.
// Subdirectories and dot files are not members.
func (d *Dir) Members(loc dataset.Location) ([]dataset.MemberName, error) {
	if err := loc.Validate(); err != nil {
		return nil, err
	}
	entries, err := d.fs.ReadDir(loc.String())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("dataset %s: %w", loc, dataset.ErrNotFound)
		}
		return nil, fmt.Errorf("read dataset %s: %w", loc, err)
	}

	members := make([]dataset.MemberName, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || e.Name() == "" || e.Name()[0] == '.' {
			continue
		}
		members = append(members, dataset.MemberName(e.Name()))
	}
	slices.Sort(members)
	return members, nil
}

// Content returns the bytes of loc(member).
func (d *Dir) Content(loc dataset.Location, member dataset.MemberName) ([]byte, error) {
	if err := loc.Validate(); err != nil {
		return nil, err
	}
	if !member.Safe() {
		return nil, fmt.Errorf("invalid member name %q", member)
	}
	data, err := util.ReadFile(d.fs, d.fs.Join(loc.String(), member.String()))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s(%s): %w", loc, member, dataset.ErrNotFound)
		}
		return nil, fmt.Errorf("read %s(%s): %w", loc, member, err)
	}
	return data, nil
}

// ListMembers lists loc below the profile's base path.
func (c *Client) ListMembers(ctx context.Context, loc dataset.Location, p profile.Profile) ([]dataset.MemberName, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return c.dir(p).Members(loc)
}

// FetchContent reads loc(member) below the profile's base path.
func (c *Client) FetchContent(ctx context.Context, loc dataset.Location, member dataset.MemberName, p profile.Profile) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return c.dir(p).Content(loc, member)
}

func (c *Client) dir(p profile.Profile) *Dir {
	if c.Open != nil {
		return NewDir(c.Open(p.BasePath))
	}
	return NewDir(osfs.New(p.BasePath))
}
