// SPDX-License-Identifier: MPL-2.0

package profile

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// ErrDuplicateName is returned when a profiles file defines a name twice.
var ErrDuplicateName = errors.New("duplicate profile name")

type (
	// Provider returns the connection profiles known to the environment.
	Provider interface {
		Profiles(ctx context.Context) ([]Profile, error)
	}

	// FileProvider reads profiles from a TOML file of the form:
	//
	//	[[profile]]
	//	name = "prod"
	//	type = "zosmf"
	//	host = "mvs.example.com"
	//	port = 443
	//	user = "IBMUSER"
	//	default = true
	//
	// A missing file means no profiles are configured.
	FileProvider struct {
		Path string
	}

	// StaticProvider serves a fixed profile list.
	StaticProvider []Profile

	profilesFile struct {
		Profiles []Profile `toml:"profile"`
	}
)

// NewFileProvider creates a provider reading path.
func NewFileProvider(path string) *FileProvider {
	return &FileProvider{Path: path}
}

// Profiles reads, decodes and validates the profiles file.
func (p *FileProvider) Profiles(ctx context.Context) ([]Profile, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("load profiles canceled: %w", ctx.Err())
	default:
	}

	data, err := os.ReadFile(p.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read profiles file: %w", err)
	}

	return Decode(data)
}

// Decode parses TOML profile definitions, rejecting unknown keys, invalid
// profiles and duplicate names.
func Decode(data []byte) ([]Profile, error) {
	var pf profilesFile
	dec := toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields()
	if err := dec.Decode(&pf); err != nil {
		return nil, fmt.Errorf("failed to parse profiles: %w", err)
	}

	seen := make(map[Name]struct{}, len(pf.Profiles))
	for _, prof := range pf.Profiles {
		if err := prof.Validate(); err != nil {
			return nil, err
		}
		if _, dup := seen[prof.Name]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateName, prof.Name)
		}
		seen[prof.Name] = struct{}{}
	}
	return pf.Profiles, nil
}

// Encode renders profiles in the format read by Decode.
func Encode(profiles []Profile) ([]byte, error) {
	return toml.Marshal(profilesFile{Profiles: profiles})
}

// Profiles returns a copy of the static list.
func (s StaticProvider) Profiles(context.Context) ([]Profile, error) {
	out := make([]Profile, len(s))
	copy(out, s)
	return out, nil
}
