package ui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/untoldecay/flowai/internal/types"
)

// Semantic colors, adaptive to terminal background.
var (
	ColorAccent = lipgloss.AdaptiveColor{Light: "#7C3AED", Dark: "#A78BFA"}
	ColorPass   = lipgloss.AdaptiveColor{Light: "#059669", Dark: "#34D399"}
	ColorWarn   = lipgloss.AdaptiveColor{Light: "#D97706", Dark: "#FBBF24"}
	ColorFail   = lipgloss.AdaptiveColor{Light: "#DC2626", Dark: "#F87171"}
	ColorMuted  = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#9CA3AF"}
)

var (
	passStyle  = lipgloss.NewStyle().Foreground(ColorPass)
	warnStyle  = lipgloss.NewStyle().Foreground(ColorWarn)
	failStyle  = lipgloss.NewStyle().Foreground(ColorFail)
	mutedStyle = lipgloss.NewStyle().Foreground(ColorMuted)
	boldStyle  = lipgloss.NewStyle().Bold(true)
)

// RenderPass renders text in the success color.
func RenderPass(s string) string { return passStyle.Render(s) }

// RenderWarn renders text in the warning color.
func RenderWarn(s string) string { return warnStyle.Render(s) }

// RenderFail renders text in the failure color.
func RenderFail(s string) string { return failStyle.Render(s) }

// RenderMuted renders text in the muted color.
func RenderMuted(s string) string { return mutedStyle.Render(s) }

// RenderBold renders text bold.
func RenderBold(s string) string { return boldStyle.Render(s) }

// priorityColors maps task/ticket priorities to display colors.
// Hex values match the catalog priority taxonomy.
var priorityColors = map[types.Priority]lipgloss.Color{
	types.PriorityLow:    lipgloss.Color("#34C759"),
	types.PriorityMedium: lipgloss.Color("#FF9500"),
	types.PriorityHigh:   lipgloss.Color("#FF3B30"),
	types.PriorityUrgent: lipgloss.Color("#FF3B30"),
}

// RenderPriority renders a priority label in its taxonomy color.
func RenderPriority(p types.Priority) string {
	c, ok := priorityColors[p]
	if !ok {
		return string(p)
	}
	return lipgloss.NewStyle().Foreground(c).Render(string(p))
}

var taskStatusColors = map[types.TaskStatus]lipgloss.Color{
	types.StatusTodo:       lipgloss.Color("#6B7280"),
	types.StatusInProgress: lipgloss.Color("#3B82F6"),
	types.StatusInReview:   lipgloss.Color("#8B5CF6"),
	types.StatusDone:       lipgloss.Color("#10B981"),
}

// RenderTaskStatus renders a task status in its column color.
func RenderTaskStatus(s types.TaskStatus) string {
	c, ok := taskStatusColors[s]
	if !ok {
		return string(s)
	}
	return lipgloss.NewStyle().Foreground(c).Render(string(s))
}

var ticketStatusColors = map[types.TicketStatus]lipgloss.Color{
	types.TicketOpen:       lipgloss.Color("#007AFF"),
	types.TicketInProgress: lipgloss.Color("#FF9500"),
	types.TicketWaiting:    lipgloss.Color("#8E8E93"),
	types.TicketResolved:   lipgloss.Color("#34C759"),
	types.TicketClosed:     lipgloss.Color("#6E6E73"),
}

// RenderTicketStatus renders a ticket status in its taxonomy color.
func RenderTicketStatus(s types.TicketStatus) string {
	c, ok := ticketStatusColors[s]
	if !ok {
		return string(s)
	}
	return lipgloss.NewStyle().Foreground(c).Render(string(s))
}

// ColorProfile reports the detected terminal color capability.
// Returns termenv.Ascii when color output is disabled.
func ColorProfile() termenv.Profile {
	if !ShouldUseColor() {
		return termenv.Ascii
	}
	return termenv.ColorProfile()
}
