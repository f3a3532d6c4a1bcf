// SPDX-License-Identifier: MPL-2.0

package tui

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/cobdeps/cobdeps/internal/interact"

	"github.com/charmbracelet/huh"
)

// Surface is an interact.Surface backed by the terminal.
type Surface struct {
	Config Config
	// run executes the form. Tests replace it to avoid a terminal.
	run func(ctx context.Context, form *huh.Form) error
}

var _ interact.Surface = (*Surface)(nil)

// NewSurface creates a terminal surface.
func NewSurface(cfg Config) *Surface {
	return &Surface{Config: cfg}
}

// ShowError writes message as one styled line.
func (s *Surface) ShowError(_ context.Context, message string) {
	line := message
	if !s.Config.Accessible {
		line = errorStyle(s.Config.Theme).Render(message)
	}
	_, _ = fmt.Fprintln(s.Config.output(), line)
}

// ShowSingleChoicePrompt asks the user to pick one item. A user abort
// (ctrl+c or esc) is reported as ok=false, not as an error.
func (s *Surface) ShowSingleChoicePrompt(ctx context.Context, title string, items []interact.Item, defaultIndex int) (int, bool, error) {
	if len(items) == 0 {
		return -1, false, nil
	}

	choice := -1
	sel := huh.NewSelect[int]().
		Title(title).
		Options(buildOptions(items, defaultIndex)...).
		Value(&choice)

	form := huh.NewForm(huh.NewGroup(sel)).
		WithTheme(huhTheme(s.Config.Theme)).
		WithAccessible(s.Config.Accessible).
		WithInput(s.Config.input()).
		WithOutput(s.Config.output()).
		WithShowHelp(!s.Config.Accessible)

	run := s.run
	if run == nil {
		run = runForm
	}
	if err := run(ctx, form); err != nil {
		if isAbort(err) {
			return -1, false, nil
		}
		return -1, false, fmt.Errorf("profile prompt: %w", err)
	}
	if choice < 0 || choice >= len(items) {
		return -1, false, nil
	}
	return choice, true, nil
}

func runForm(ctx context.Context, form *huh.Form) error {
	return form.RunWithContext(ctx)
}

// isAbort reports whether err means the user left the prompt without
// choosing. Accessible mode reads from a line reader and ends with EOF.
func isAbort(err error) bool {
	return errors.Is(err, huh.ErrUserAborted) || errors.Is(err, io.EOF)
}

// buildOptions turns items into select options whose values are the item
// indexes. The option at defaultIndex starts selected.
func buildOptions(items []interact.Item, defaultIndex int) []huh.Option[int] {
	opts := make([]huh.Option[int], len(items))
	for i, it := range items {
		label := it.Label
		if it.Description != "" {
			label = fmt.Sprintf("%s (%s)", it.Label, it.Description)
		}
		opts[i] = huh.NewOption(label, i).Selected(i == defaultIndex)
	}
	return opts
}
