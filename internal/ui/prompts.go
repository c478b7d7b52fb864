package ui

import (
	"strings"

	"github.com/charmbracelet/huh"
)

// PromptYesNo asks a yes/no question with a huh confirm field. Off-TTY it
// returns defaultYes so scripted runs never block.
func PromptYesNo(question string, defaultYes bool) bool {
	if !IsTerminal() {
		return defaultYes
	}
	answer := defaultYes
	form := huh.NewForm(huh.NewGroup(
		huh.NewConfirm().
			Title(question).
			Affirmative("Yes").
			Negative("No").
			Value(&answer),
	))
	if err := form.Run(); err != nil {
		// Treat cancellation (ctrl-c, EOF) as declining the default.
		return defaultYes
	}
	return answer
}

// Prompt asks for a single line of input, returning defaultValue off-TTY or
// when the user submits nothing.
func Prompt(question, defaultValue string) string {
	if !IsTerminal() {
		return defaultValue
	}
	value := ""
	form := huh.NewForm(huh.NewGroup(
		huh.NewInput().
			Title(question).
			Placeholder(defaultValue).
			Value(&value),
	))
	if err := form.Run(); err != nil {
		return defaultValue
	}
	if value = strings.TrimSpace(value); value == "" {
		return defaultValue
	}
	return value
}
