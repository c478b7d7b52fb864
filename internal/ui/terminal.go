// Package ui renders flow's terminal output: adaptive styles, list tables,
// the kanban board, and markdown ticket views.
package ui

import (
	"os"

	"golang.org/x/term"
)

// defaultWidth is used when stdout is not a terminal (pipes, CI).
const defaultWidth = 80

// IsTerminal reports whether stdout is a TTY. Interactive forms and prompts
// are skipped when it is false.
func IsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// ShouldUseColor reports whether output should carry ANSI color. NO_COLOR
// and CLICOLOR=0 disable it, CLICOLOR_FORCE enables it even off-TTY.
func ShouldUseColor() bool {
	switch {
	case os.Getenv("NO_COLOR") != "":
		return false
	case os.Getenv("CLICOLOR") == "0":
		return false
	case os.Getenv("CLICOLOR_FORCE") != "":
		return true
	}
	return IsTerminal()
}

// ShouldUseEmoji reports whether glyph decorations are wanted. FLOW_NO_EMOJI
// disables them; piped output never gets them.
func ShouldUseEmoji() bool {
	return os.Getenv("FLOW_NO_EMOJI") == "" && IsTerminal()
}

// CheckMark is the success marker prefixed to mutation output.
func CheckMark() string {
	if ShouldUseEmoji() {
		return RenderPass("✓")
	}
	return RenderPass("ok")
}

// Width returns the terminal width, or defaultWidth when it cannot be
// determined.
func Width() int {
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		return w
	}
	return defaultWidth
}
