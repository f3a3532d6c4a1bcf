// SPDX-License-Identifier: MPL-2.0

package interact

import (
	"context"
	"errors"
	"sync"
	"testing"
)

type countingSurface struct {
	mu      sync.Mutex
	prompts int
	errors  []string
	answer  int
	ok      bool
	err     error
}

func (s *countingSurface) ShowError(_ context.Context, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errors = append(s.errors, message)
}

func (s *countingSurface) ShowSingleChoicePrompt(context.Context, string, []Item, int) (int, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prompts++
	return s.answer, s.ok, s.err
}

func TestSticky_ReplaysAnswerForSameItems(t *testing.T) {
	t.Parallel()

	inner := &countingSurface{answer: 1, ok: true}
	sticky := NewSticky(inner)
	items := []Item{{Label: "dev"}, {Label: "prod"}}

	var wg sync.WaitGroup
	for range 5 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			idx, ok, err := sticky.ShowSingleChoicePrompt(context.Background(), "pick", items, -1)
			if err != nil || !ok || idx != 1 {
				t.Errorf("got (%d, %v, %v), want (1, true, nil)", idx, ok, err)
			}
		}()
	}
	wg.Wait()

	if inner.prompts != 1 {
		t.Errorf("prompts = %d, want 1", inner.prompts)
	}
}

func TestSticky_ReplaysDismissal(t *testing.T) {
	t.Parallel()

	inner := &countingSurface{ok: false}
	sticky := NewSticky(inner)
	items := []Item{{Label: "dev"}, {Label: "prod"}}

	for range 2 {
		if _, ok, _ := sticky.ShowSingleChoicePrompt(context.Background(), "pick", items, 0); ok {
			t.Error("expected dismissal")
		}
	}
	if inner.prompts != 1 {
		t.Errorf("prompts = %d, want 1", inner.prompts)
	}
}

func TestSticky_DifferentItemsPromptAgain(t *testing.T) {
	t.Parallel()

	inner := &countingSurface{ok: true}
	sticky := NewSticky(inner)

	_, _, _ = sticky.ShowSingleChoicePrompt(context.Background(), "pick", []Item{{Label: "a"}, {Label: "b"}}, -1)
	_, _, _ = sticky.ShowSingleChoicePrompt(context.Background(), "pick", []Item{{Label: "a"}, {Label: "c"}}, -1)

	if inner.prompts != 2 {
		t.Errorf("prompts = %d, want 2", inner.prompts)
	}
}

func TestSticky_ErrorsAreNotRemembered(t *testing.T) {
	t.Parallel()

	inner := &countingSurface{err: errors.New("terminal gone")}
	sticky := NewSticky(inner)
	items := []Item{{Label: "a"}, {Label: "b"}}

	for range 2 {
		if _, _, err := sticky.ShowSingleChoicePrompt(context.Background(), "pick", items, -1); err == nil {
			t.Error("expected error")
		}
	}
	if inner.prompts != 2 {
		t.Errorf("prompts = %d, want 2", inner.prompts)
	}
}

func TestSticky_ForwardsErrors(t *testing.T) {
	t.Parallel()

	inner := &countingSurface{}
	NewSticky(inner).ShowError(context.Background(), "boom")

	if len(inner.errors) != 1 || inner.errors[0] != "boom" {
		t.Errorf("errors = %v", inner.errors)
	}
}
