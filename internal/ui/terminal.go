// Package ui provides terminal styling and output helpers for the bruin
// CLI: color/TTY detection and a handful of semantic text styles used
// to highlight note state, tags, and sync results.
package ui

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// IsTerminal returns true if stdout is connected to a terminal (TTY).
func IsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// ShouldUseColor determines if ANSI color codes should be used.
// Respects standard conventions:
//   - NO_COLOR: https://no-color.org/ - disables color if set
//   - CLICOLOR=0: disables color
//   - CLICOLOR_FORCE: forces color even in non-TTY
//   - Falls back to TTY detection
func ShouldUseColor() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if os.Getenv("CLICOLOR") == "0" {
		return false
	}
	if os.Getenv("CLICOLOR_FORCE") != "" {
		return true
	}
	return IsTerminal()
}

// GetWidth returns the width of the terminal or a default value.
func GetWidth() int {
	w, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || w <= 0 {
		return 80
	}
	return w
}

var (
	colorAccent = lipgloss.Color("6")
	colorPass   = lipgloss.Color("2")
	colorWarn   = lipgloss.Color("3")
	colorMuted  = lipgloss.Color("8")

	accentStyle = lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
	passStyle   = lipgloss.NewStyle().Foreground(colorPass)
	warnStyle   = lipgloss.NewStyle().Foreground(colorWarn)
	mutedStyle  = lipgloss.NewStyle().Foreground(colorMuted)
)

// styled renders s with the given style, or returns s verbatim when
// color is disabled so piped/JSON-adjacent output stays clean.
func styled(style lipgloss.Style, s string) string {
	if !ShouldUseColor() {
		return s
	}
	return style.Render(s)
}

// RenderAccent highlights a heading or a note/tag identifier.
func RenderAccent(s string) string { return styled(accentStyle, s) }

// RenderPass marks a successful operation (a completed sync, a create).
func RenderPass(s string) string { return styled(passStyle, s) }

// RenderWarn marks a recoverable problem (a retry-queue entry, a stale
// sync) that isn't fatal but is worth the reader's attention.
func RenderWarn(s string) string { return styled(warnStyle, s) }

// RenderMuted de-emphasizes secondary detail (a timestamp, a snippet).
func RenderMuted(s string) string { return styled(mutedStyle, s) }
