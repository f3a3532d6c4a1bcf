// SPDX-License-Identifier: MPL-2.0

// Package cache keeps downloaded copybooks on the local filesystem.
//
// The cache is append-only: a file present at its path proves an earlier
// successful fetch and is never refreshed. Writes go to a temporary file in
// the target directory which is then renamed into place, so readers never
// observe partial content, even when two runs race on the same file.
package cache

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
)

const (
	// AlreadyPresent means the file existed and the supplier was not called.
	AlreadyPresent Outcome = iota + 1
	// Written means the supplier's content was written to the file.
	Written

	dirPerm  fs.FileMode = 0o755
	filePerm fs.FileMode = 0o644

	tempPrefix = ".cobdeps-"
)

// ErrOutsideRoot is returned for paths that are not inside the cache root.
var ErrOutsideRoot = errors.New("path is outside of the cache root")

type (
	// Outcome reports what EnsureCached did.
	Outcome int

	// Supplier produces the content to cache. It is only invoked on a miss.
	Supplier func(ctx context.Context) ([]byte, error)

	// Store writes files below a root directory.
	Store struct {
		fs   billy.Filesystem
		root string
	}
)

// String returns a human-readable representation of the outcome.
func (o Outcome) String() string {
	switch o {
	case AlreadyPresent:
		return "already present"
	case Written:
		return "written"
	default:
		return "unknown"
	}
}

// New creates a Store on the operating system filesystem rooted at root.
// A relative root is taken from the working directory.
func New(root string) *Store {
	root = absPath(root)
	return &Store{fs: osfs.New(root), root: root}
}

// NewWithFS creates a Store over fsys, whose root directory corresponds to
// the local path root.
func NewWithFS(fsys billy.Filesystem, root string) *Store {
	return &Store{fs: fsys, root: absPath(root)}
}

// Root returns the absolute local path of the cache root.
func (s *Store) Root() string {
	return s.root
}

// Exists reports whether a file is cached at path.
func (s *Store) Exists(path string) (bool, error) {
	rel, err := s.rel(path)
	if err != nil {
		return false, err
	}
	return s.exists(rel)
}

// EnsureCached makes sure a file exists at path. Parent directories are
// created as needed. When the file already exists the supplier is never
// invoked; otherwise its content is written through a temporary file and an
// atomic rename.
func (s *Store) EnsureCached(ctx context.Context, path string, supply Supplier) (Outcome, error) {
	rel, err := s.rel(path)
	if err != nil {
		return 0, err
	}

	dir := filepath.Dir(rel)
	if err := s.fs.MkdirAll(dir, dirPerm); err != nil {
		return 0, fmt.Errorf("create directory %s: %w", filepath.Join(s.root, dir), err)
	}

	present, err := s.exists(rel)
	if err != nil {
		return 0, err
	}
	if present {
		return AlreadyPresent, nil
	}

	if err := ctx.Err(); err != nil {
		return 0, err
	}

	data, err := supply(ctx)
	if err != nil {
		return 0, err
	}

	if err := s.writeAtomic(dir, rel, data); err != nil {
		// Another writer may have won the race; its file is as good as ours.
		if ok, _ := s.exists(rel); ok {
			return AlreadyPresent, nil
		}
		return 0, err
	}
	return Written, nil
}

func (s *Store) writeAtomic(dir, rel string, data []byte) (err error) {
	tmp, err := s.fs.TempFile(dir, tempPrefix)
	if err != nil {
		return fmt.Errorf("create temporary file in %s: %w", filepath.Join(s.root, dir), err)
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			_ = s.fs.Remove(tmpName) // Best-effort cleanup of the partial file
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write %s: %w", tmpName, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmpName, err)
	}
	if ch, ok := s.fs.(billy.Change); ok {
		if chErr := ch.Chmod(tmpName, filePerm); chErr != nil && !errors.Is(chErr, billy.ErrNotSupported) {
			return fmt.Errorf("chmod %s: %w", tmpName, chErr)
		}
	}
	if err = s.fs.Rename(tmpName, rel); err != nil {
		return fmt.Errorf("rename into %s: %w", filepath.Join(s.root, rel), err)
	}
	return nil
}

func (s *Store) exists(rel string) (bool, error) {
	info, err := s.fs.Stat(rel)
	if err == nil {
		if info.IsDir() {
			return false, fmt.Errorf("%s is a directory", filepath.Join(s.root, rel))
		}
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("stat %s: %w", filepath.Join(s.root, rel), err)
}

// rel converts a local path into a path relative to the cache root.
// Relative paths, like a relative root, are taken from the working
// directory, so a path built by joining the root stays inside it.
func (s *Store) rel(path string) (string, error) {
	path = absPath(path)
	rel, err := filepath.Rel(s.root, path)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrOutsideRoot, path)
	}
	if rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrOutsideRoot, path)
	}
	return rel, nil
}

func absPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return filepath.Clean(p)
}
