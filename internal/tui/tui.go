// SPDX-License-Identifier: MPL-2.0

// Package tui renders the terminal side of the interaction surface: the
// profile chooser built on charmbracelet/huh and styled error lines.
package tui

import (
	"io"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// Theme selects the palette for prompts and messages.
type Theme string

const (
	// ThemeAuto picks a palette that works on dark and light terminals.
	ThemeAuto Theme = "auto"
	// ThemeDark uses the Dracula palette.
	ThemeDark Theme = "dark"
	// ThemeLight uses the Base16 palette.
	ThemeLight Theme = "light"
)

// Config holds common configuration for TUI components.
type Config struct {
	// Theme specifies the visual theme to use.
	Theme Theme
	// Accessible enables accessible mode for screen readers.
	Accessible bool
	// Input is where prompts read answers. Nil means os.Stdin.
	Input io.Reader
	// Output is where prompts and messages are written. Nil means stderr.
	Output io.Writer
}

// DefaultConfig returns the default configuration for TUI components.
// Accessible mode is enabled when stdin is not a terminal or the
// ACCESSIBLE environment variable is set.
func DefaultConfig() Config {
	return Config{
		Theme:      ThemeAuto,
		Accessible: !isInputTerminal() || os.Getenv("ACCESSIBLE") != "",
	}
}

// isInputTerminal returns true if stdin is connected to a terminal.
func isInputTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// input returns the configured reader, defaulting to stdin.
func (c Config) input() io.Reader {
	if c.Input != nil {
		return c.Input
	}
	return os.Stdin
}

// output returns the configured writer. Prompts go to stderr so that
// command output on stdout stays machine readable.
func (c Config) output() io.Writer {
	if c.Output != nil {
		return c.Output
	}
	return os.Stderr
}

// huhTheme converts a Theme to a huh.Theme.
func huhTheme(t Theme) *huh.Theme {
	switch t {
	case ThemeDark:
		return huh.ThemeDracula()
	case ThemeLight:
		return huh.ThemeBase16()
	default:
		return huh.ThemeCharm()
	}
}

// errorStyle renders ShowError messages.
func errorStyle(t Theme) lipgloss.Style {
	color := lipgloss.AdaptiveColor{Light: "#D70000", Dark: "#FF5F87"}
	switch t {
	case ThemeDark:
		color = lipgloss.AdaptiveColor{Light: "#FF5F87", Dark: "#FF5F87"}
	case ThemeLight:
		color = lipgloss.AdaptiveColor{Light: "#D70000", Dark: "#D70000"}
	}
	return lipgloss.NewStyle().Foreground(color).Bold(true)
}
