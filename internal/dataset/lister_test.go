// SPDX-License-Identifier: MPL-2.0

package dataset

import (
	"context"
	"errors"
	"slices"
	"testing"
)

func TestConfigLister(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		paths   []string
		want    []Location
		wantErr error
	}{
		{"ordered", []string{"HLQ.A", "HLQ.B"}, []Location{"HLQ.A", "HLQ.B"}, nil},
		{"duplicates keep first", []string{"HLQ.B", "HLQ.A", "HLQ.B"}, []Location{"HLQ.B", "HLQ.A"}, nil},
		{"blank entries skipped", []string{"", "HLQ.A", ""}, []Location{"HLQ.A"}, nil},
		{"empty", nil, nil, ErrNoDatasetPathsConfigured},
		{"only blanks", []string{"", ""}, nil, ErrNoDatasetPathsConfigured},
		{"traversal", []string{"HLQ.A", "../etc"}, nil, ErrInvalidLocation},
		{"dotdot", []string{".."}, nil, ErrInvalidLocation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := NewConfigLister(tt.paths).ListDatasetLocations(context.Background())
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ListDatasetLocations() error = %v", err)
			}
			if !slices.Equal(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMemberName_Safe(t *testing.T) {
	t.Parallel()

	for name, want := range map[MemberName]bool{
		"CUSTREC": true,
		"":        false,
		"..":      false,
		"A/B":     false,
		"A\\B":    false,
	} {
		if got := name.Safe(); got != want {
			t.Errorf("MemberName(%q).Safe() = %v, want %v", name, got, want)
		}
	}
}

func TestRemoteErrors(t *testing.T) {
	t.Parallel()

	cause := errors.New("timeout")

	lerr := &ListingError{Location: "HLQ.A", Profile: "dev", Err: cause}
	if !errors.Is(lerr, ErrRemoteListingFailed) || !errors.Is(lerr, cause) {
		t.Errorf("ListingError should match its sentinel and cause")
	}
	if errors.Is(lerr, ErrRemoteFetchFailed) {
		t.Error("ListingError must not match ErrRemoteFetchFailed")
	}

	ferr := &FetchError{Location: "HLQ.A", Member: "X", Profile: "dev", Err: cause}
	if !errors.Is(ferr, ErrRemoteFetchFailed) || !errors.Is(ferr, cause) {
		t.Errorf("FetchError should match its sentinel and cause")
	}
	if got, want := ferr.Error(), "fetch HLQ.A(X) (profile dev): timeout"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}
