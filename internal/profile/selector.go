// SPDX-License-Identifier: MPL-2.0

package profile

import (
	"context"
	"errors"
	"fmt"

	"github.com/cobdeps/cobdeps/internal/interact"
)

// PromptTitle is the title of the profile selection prompt.
const PromptTitle = "Select the connection profile to download copybooks with"

var (
	// ErrNoProfileAvailable is returned when no profile is configured.
	ErrNoProfileAvailable = errors.New("no connection profile available")
	// ErrProfileSelectionCancelled is returned when the user dismisses the
	// profile prompt without choosing.
	ErrProfileSelectionCancelled = errors.New("profile selection cancelled")
	// ErrProfileNotFound is returned when an explicitly requested profile is
	// not among the configured ones.
	ErrProfileNotFound = errors.New("profile not found")
)

// Selector resolves which profile a resolution run uses.
type Selector struct {
	Provider Provider
	Surface  interact.Surface
	// Preferred names a profile to use without prompting. Empty means ask.
	Preferred Name
}

// SelectProfile picks a profile from the provider's list:
//   - none configured: ErrNoProfileAvailable
//   - Preferred set: that profile, or ErrProfileNotFound
//   - exactly one: that profile, without prompting
//   - several: one prompt listing all of them, the default-flagged profile
//     pre-highlighted; a dismissed prompt yields ErrProfileSelectionCancelled
func (s *Selector) SelectProfile(ctx context.Context) (Profile, error) {
	profiles, err := s.Provider.Profiles(ctx)
	if err != nil {
		return Profile{}, fmt.Errorf("list profiles: %w", err)
	}
	return Select(ctx, profiles, s.Preferred, s.Surface)
}

// Select applies the selection rules of Selector.SelectProfile to an explicit
// profile list.
func Select(ctx context.Context, profiles []Profile, preferred Name, surface interact.Surface) (Profile, error) {
	if len(profiles) == 0 {
		return Profile{}, ErrNoProfileAvailable
	}

	if preferred != "" {
		for _, p := range profiles {
			if p.Name == preferred {
				return p, nil
			}
		}
		return Profile{}, fmt.Errorf("%w: %q", ErrProfileNotFound, preferred)
	}

	if len(profiles) == 1 {
		return profiles[0], nil
	}

	if surface == nil {
		return Profile{}, errors.New("several profiles configured but no interaction surface to choose with")
	}

	items := make([]interact.Item, len(profiles))
	defaultIndex := -1
	for i, p := range profiles {
		items[i] = interact.Item{Label: p.Name.String(), Description: p.Description()}
		if p.Default && defaultIndex < 0 {
			defaultIndex = i
		}
	}

	index, ok, err := surface.ShowSingleChoicePrompt(ctx, PromptTitle, items, defaultIndex)
	if err != nil {
		return Profile{}, fmt.Errorf("prompt for profile: %w", err)
	}
	if !ok {
		return Profile{}, ErrProfileSelectionCancelled
	}
	if index < 0 || index >= len(profiles) {
		return Profile{}, fmt.Errorf("prompt returned index %d outside of %d profiles", index, len(profiles))
	}
	return profiles[index], nil
}
