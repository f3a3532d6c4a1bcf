// SPDX-License-Identifier: MPL-2.0

package copybook

import (
	"errors"
	"testing"
)

func TestName_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    Name
		maxLen  int
		wantErr bool
	}{
		{"CUSTREC", 0, false},
		{"CUST-REC", 0, false},
		{"", 0, true},
		{"   ", 0, true},
		{"-CUST", 0, true},
		{"CUST-", 0, true},
		{"CUST_REC", 0, true},
		{"A/B", 0, true},
		{"..", 0, true},
		{"LONGNAME1", 8, true},
		{"LONGNAM", 8, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.name), func(t *testing.T) {
			t.Parallel()

			err := tt.name.Validate(tt.maxLen)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate(%q) error = %v, wantErr %v", tt.name, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidName) {
				t.Errorf("error should wrap ErrInvalidName, got %v", err)
			}
		})
	}
}

func TestResult_Helpers(t *testing.T) {
	t.Parallel()

	r := Result{
		Resolved: map[Name]Resolution{
			"B": {Path: "/b"},
			"A": {Path: "/a"},
		},
	}

	names := r.ResolvedNames()
	if len(names) != 2 || names[0] != "A" || names[1] != "B" {
		t.Errorf("ResolvedNames() = %v, want [A B]", names)
	}
	if got := r.Paths()["A"]; got != "/a" {
		t.Errorf("Paths()[A] = %q, want /a", got)
	}
	if !r.Complete() {
		t.Error("Complete() should be true without unresolved names")
	}
}

func TestState_String(t *testing.T) {
	t.Parallel()

	for state, want := range map[State]string{
		AllResolved:       "all resolved",
		PartiallyResolved: "partially resolved",
		Aborted:           "aborted",
		State(0):          "unknown",
	} {
		if got := state.String(); got != want {
			t.Errorf("State(%d).String() = %q, want %q", state, got, want)
		}
	}
}
