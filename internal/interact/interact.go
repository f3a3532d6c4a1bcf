// SPDX-License-Identifier: MPL-2.0

// Package interact defines the user interaction surface consumed by the
// resolution engine: one error display and one single-choice prompt.
package interact

import (
	"context"
	"sync"
)

type (
	// Item is one entry of a single-choice prompt.
	Item struct {
		Label       string
		Description string
	}

	// Surface shows messages to the user and asks single-choice questions.
	Surface interface {
		// ShowError displays an error message.
		ShowError(ctx context.Context, message string)
		// ShowSingleChoicePrompt asks the user to pick one item, with
		// items[defaultIndex] pre-highlighted (-1 for none). It returns the
		// chosen index and ok=false when the user dismissed the prompt.
		ShowSingleChoicePrompt(ctx context.Context, title string, items []Item, defaultIndex int) (index int, ok bool, err error)
	}

	// Sticky wraps a Surface so that the first answered prompt is reused by
	// later prompts with the same items. Concurrent resolution runs started
	// from one command share a single question this way.
	Sticky struct {
		Surface Surface

		mu       sync.Mutex
		answered bool
		key      string
		index    int
		ok       bool
	}
)

// NewSticky wraps s.
func NewSticky(s Surface) *Sticky {
	return &Sticky{Surface: s}
}

// ShowError forwards to the wrapped surface.
func (s *Sticky) ShowError(ctx context.Context, message string) {
	s.Surface.ShowError(ctx, message)
}

// ShowSingleChoicePrompt prompts once per distinct item list and replays the
// answer afterwards. Errors are not remembered.
func (s *Sticky) ShowSingleChoicePrompt(ctx context.Context, title string, items []Item, defaultIndex int) (int, bool, error) {
	key := itemsKey(items)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.answered && s.key == key {
		return s.index, s.ok, nil
	}

	index, ok, err := s.Surface.ShowSingleChoicePrompt(ctx, title, items, defaultIndex)
	if err != nil {
		return 0, false, err
	}
	s.answered, s.key, s.index, s.ok = true, key, index, ok
	return index, ok, nil
}

func itemsKey(items []Item) string {
	var n int
	for _, it := range items {
		n += len(it.Label) + len(it.Description) + 2
	}
	b := make([]byte, 0, n)
	for _, it := range items {
		b = append(b, it.Label...)
		b = append(b, 0)
		b = append(b, it.Description...)
		b = append(b, 0)
	}
	return string(b)
}
