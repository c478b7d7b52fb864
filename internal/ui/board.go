package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/untoldecay/flowai/internal/types"
)

// boardColumns is the kanban column order.
var boardColumns = []struct {
	status types.TaskStatus
	title  string
}{
	{types.StatusTodo, "To Do"},
	{types.StatusInProgress, "In Progress"},
	{types.StatusInReview, "In Review"},
	{types.StatusDone, "Done"},
}

// RenderBoard renders tasks as kanban columns side by side.
func RenderBoard(tasks []types.Task, width int) string {
	colWidth := width/len(boardColumns) - 2
	if colWidth < 18 {
		colWidth = 18
	}

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorMuted).
		Padding(0, 1).
		Width(colWidth - 2)

	byStatus := make(map[types.TaskStatus][]types.Task)
	for _, t := range tasks {
		byStatus[t.Status] = append(byStatus[t.Status], t)
	}

	var columns []string
	for _, col := range boardColumns {
		items := byStatus[col.status]
		header := lipgloss.NewStyle().
			Bold(true).
			Width(colWidth).
			Align(lipgloss.Center).
			Render(fmt.Sprintf("%s (%d)", col.title, len(items)))

		parts := []string{header}
		for _, t := range items {
			parts = append(parts, cardStyle.Render(renderCard(t, colWidth-4)))
		}
		columns = append(columns, lipgloss.JoinVertical(lipgloss.Left, parts...))
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, columns...)
}

func renderCard(t types.Task, width int) string {
	title := t.Title
	if len(title) > width && width > 3 {
		title = title[:width-3] + "..."
	}

	var lines []string
	lines = append(lines, RenderBold(title))
	meta := string(t.Priority)
	if t.Assignee != "" {
		meta += " · " + t.Assignee
	}
	lines = append(lines, RenderMuted(meta))
	if len(t.Steps) > 0 {
		done := 0
		for _, s := range t.Steps {
			if s.Completed {
				done++
			}
		}
		lines = append(lines, RenderMuted(fmt.Sprintf("steps %d/%d", done, len(t.Steps))))
	}
	return strings.Join(lines, "\n")
}
