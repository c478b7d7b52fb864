package ui

import (
	"strings"
	"testing"
)

// Test binaries run with stdout piped, so the off-TTY paths are what these
// cover.

func TestWidthFallsBackOffTTY(t *testing.T) {
	if w := Width(); w != defaultWidth {
		t.Errorf("Width() = %d off-TTY, want %d", w, defaultWidth)
	}
}

func TestCheckMarkPlainOffTTY(t *testing.T) {
	mark := CheckMark()
	if strings.Contains(mark, "✓") {
		t.Errorf("CheckMark() = %q off-TTY, want no glyph", mark)
	}
	if !strings.Contains(mark, "ok") {
		t.Errorf("CheckMark() = %q off-TTY, want %q text", mark, "ok")
	}
}

func TestPromptsReturnDefaultsOffTTY(t *testing.T) {
	if got := PromptYesNo("delete everything?", false); got {
		t.Error("PromptYesNo should return the default off-TTY")
	}
	if got := Prompt("name?", "fallback"); got != "fallback" {
		t.Errorf("Prompt() = %q off-TTY, want %q", got, "fallback")
	}
}
