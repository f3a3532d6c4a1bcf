// SPDX-License-Identifier: MPL-2.0

package profile_test

import (
	"context"
	"errors"
	"testing"

	"github.com/cobdeps/cobdeps/internal/interact"
	"github.com/cobdeps/cobdeps/internal/profile"
	"github.com/cobdeps/cobdeps/internal/testutil"
)

var (
	devProfile  = profile.Profile{Name: "dev", Type: profile.TypeLocal, BasePath: "/m", Host: "h1", Port: 22, User: "u1"}
	prodProfile = profile.Profile{Name: "prod", Type: profile.TypeZOSMF, Host: "h2", Port: 443, User: "u2", Default: true}
	testProfile = profile.Profile{Name: "test", Type: profile.TypeSSH, Host: "h3", Port: 22, User: "u3"}
)

func TestSelect_NoProfiles(t *testing.T) {
	t.Parallel()

	surface := &testutil.FakeSurface{}
	_, err := profile.Select(context.Background(), nil, "", surface)
	if !errors.Is(err, profile.ErrNoProfileAvailable) {
		t.Fatalf("error = %v, want ErrNoProfileAvailable", err)
	}
	if len(surface.Prompts()) != 0 {
		t.Error("no prompt expected")
	}
}

func TestSelect_SingleProfileNoPrompt(t *testing.T) {
	t.Parallel()

	surface := &testutil.FakeSurface{}
	got, err := profile.Select(context.Background(), []profile.Profile{devProfile}, "", surface)
	if err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	if got.Name != "dev" {
		t.Errorf("got %q, want dev", got.Name)
	}
	if len(surface.Prompts()) != 0 {
		t.Error("a single profile must not prompt")
	}
}

func TestSelect_PromptListsAllWithDefault(t *testing.T) {
	t.Parallel()

	surface := &testutil.FakeSurface{}
	profiles := []profile.Profile{devProfile, prodProfile, testProfile}

	got, err := profile.Select(context.Background(), profiles, "", surface)
	if err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	if got.Name != "prod" {
		t.Errorf("got %q, want the default prod", got.Name)
	}

	prompts := surface.Prompts()
	if len(prompts) != 1 {
		t.Fatalf("prompts = %d, want 1", len(prompts))
	}
	p := prompts[0]
	if p.Title != profile.PromptTitle {
		t.Errorf("title = %q", p.Title)
	}
	if p.DefaultIndex != 1 {
		t.Errorf("DefaultIndex = %d, want 1", p.DefaultIndex)
	}
	want := []interact.Item{
		{Label: "dev", Description: "u1@h1:22"},
		{Label: "prod", Description: "u2@h2:443"},
		{Label: "test", Description: "u3@h3:22"},
	}
	if len(p.Items) != len(want) {
		t.Fatalf("items = %v", p.Items)
	}
	for i := range want {
		if p.Items[i] != want[i] {
			t.Errorf("item %d = %+v, want %+v", i, p.Items[i], want[i])
		}
	}
}

func TestSelect_NoDefaultHighlightsNothing(t *testing.T) {
	t.Parallel()

	surface := &testutil.FakeSurface{
		Choose: func(p testutil.Prompt) (int, bool, error) { return 2, true, nil },
	}
	got, err := profile.Select(context.Background(), []profile.Profile{devProfile, testProfile, {Name: "x", Type: profile.TypeSSH, Host: "h"}}, "", surface)
	if err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	if got.Name != "x" {
		t.Errorf("got %q, want x", got.Name)
	}
	if d := surface.Prompts()[0].DefaultIndex; d != -1 {
		t.Errorf("DefaultIndex = %d, want -1", d)
	}
}

func TestSelect_Dismissed(t *testing.T) {
	t.Parallel()

	surface := &testutil.FakeSurface{Choose: testutil.Dismiss}
	_, err := profile.Select(context.Background(), []profile.Profile{devProfile, prodProfile}, "", surface)
	if !errors.Is(err, profile.ErrProfileSelectionCancelled) {
		t.Fatalf("error = %v, want ErrProfileSelectionCancelled", err)
	}
	if len(surface.Errors()) != 0 {
		t.Error("cancellation must not show an error")
	}
}

func TestSelect_OutOfRangeAnswer(t *testing.T) {
	t.Parallel()

	surface := &testutil.FakeSurface{
		Choose: func(testutil.Prompt) (int, bool, error) { return 7, true, nil },
	}
	if _, err := profile.Select(context.Background(), []profile.Profile{devProfile, prodProfile}, "", surface); err == nil {
		t.Error("expected error for an out-of-range answer")
	}
}

func TestSelect_Preferred(t *testing.T) {
	t.Parallel()

	surface := &testutil.FakeSurface{}
	profiles := []profile.Profile{devProfile, prodProfile}

	got, err := profile.Select(context.Background(), profiles, "dev", surface)
	if err != nil || got.Name != "dev" {
		t.Fatalf("Select() = %v, %v; want dev", got.Name, err)
	}
	if len(surface.Prompts()) != 0 {
		t.Error("a preferred profile must not prompt")
	}

	if _, err := profile.Select(context.Background(), profiles, "qa", surface); !errors.Is(err, profile.ErrProfileNotFound) {
		t.Errorf("error = %v, want ErrProfileNotFound", err)
	}
}

func TestSelector_UsesProvider(t *testing.T) {
	t.Parallel()

	sel := &profile.Selector{
		Provider: profile.StaticProvider{devProfile, prodProfile},
		Surface:  &testutil.FakeSurface{},
	}
	got, err := sel.SelectProfile(context.Background())
	if err != nil {
		t.Fatalf("SelectProfile() error = %v", err)
	}
	if got.Name != "prod" {
		t.Errorf("got %q, want prod", got.Name)
	}
}
