// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"context"
	"slices"
	"sync"

	"github.com/cobdeps/cobdeps/internal/interact"
)

type (
	// Prompt is one recorded single-choice prompt.
	Prompt struct {
		Title        string
		Items        []interact.Item
		DefaultIndex int
	}

	// FakeSurface records errors and prompts and answers prompts from a script.
	FakeSurface struct {
		mu      sync.Mutex
		errors  []string
		prompts []Prompt

		// Choose picks the answer; nil accepts the default (or the first
		// item when there is no default).
		Choose func(p Prompt) (index int, ok bool, err error)
	}
)

// ShowError records message.
func (s *FakeSurface) ShowError(_ context.Context, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errors = append(s.errors, message)
}

// ShowSingleChoicePrompt records the prompt and returns the scripted answer.
func (s *FakeSurface) ShowSingleChoicePrompt(_ context.Context, title string, items []interact.Item, defaultIndex int) (int, bool, error) {
	p := Prompt{Title: title, Items: slices.Clone(items), DefaultIndex: defaultIndex}

	s.mu.Lock()
	s.prompts = append(s.prompts, p)
	choose := s.Choose
	s.mu.Unlock()

	if choose != nil {
		return choose(p)
	}
	if defaultIndex >= 0 {
		return defaultIndex, true, nil
	}
	return 0, true, nil
}

// Errors returns the recorded error messages.
func (s *FakeSurface) Errors() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.errors)
}

// Prompts returns the recorded prompts.
func (s *FakeSurface) Prompts() []Prompt {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.prompts)
}

// Dismiss is a Choose function that cancels every prompt.
func Dismiss(Prompt) (int, bool, error) {
	return 0, false, nil
}
