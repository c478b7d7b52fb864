package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"

	"github.com/untoldecay/flowai/internal/types"
)

// RenderMarkdown renders markdown for terminal display. Falls back to the
// raw text when rendering fails or color output is disabled.
func RenderMarkdown(text string, width int) string {
	if !ShouldUseColor() {
		return text
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return text
	}
	out, err := r.Render(text)
	if err != nil {
		return text
	}
	return strings.TrimRight(out, "\n")
}

// RenderTicketDetail renders a full ticket view with markdown description
// and the comment thread.
func RenderTicketDetail(t types.Ticket, memberName func(string) string, width int) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s %s\n", RenderBold(t.Title), RenderMuted("["+t.ID+"]"))
	fmt.Fprintf(&b, "%s · %s · %s\n",
		RenderTicketStatus(t.Status), RenderPriority(t.Priority), string(t.Category))
	fmt.Fprintf(&b, "%s", RenderMuted(fmt.Sprintf("from %s <%s>", t.Customer.Name, t.Customer.Email)))
	if t.Customer.Company != "" {
		fmt.Fprintf(&b, "%s", RenderMuted(" ("+t.Customer.Company+")"))
	}
	b.WriteString("\n")
	if t.Assignee != "" {
		fmt.Fprintf(&b, "assigned to %s\n", memberName(t.Assignee))
	}
	if len(t.Tags) > 0 {
		fmt.Fprintf(&b, "tags: %s\n", strings.Join(t.Tags, ", "))
	}
	fmt.Fprintf(&b, "%s\n", RenderMuted("opened "+t.CreatedAt.Format(time.RFC822)+" · updated "+t.UpdatedAt.Format(time.RFC822)))

	if t.Description != "" {
		b.WriteString("\n")
		b.WriteString(RenderMarkdown(t.Description, width))
		b.WriteString("\n")
	}

	if len(t.Comments) > 0 {
		fmt.Fprintf(&b, "\n%s\n", RenderBold(fmt.Sprintf("Comments (%d)", len(t.Comments))))
		for _, c := range t.Comments {
			label := memberName(c.Author)
			if c.Kind == types.CommentCustomer {
				label += " (customer reply)"
			}
			fmt.Fprintf(&b, "  %s %s\n", RenderBold(label), RenderMuted(c.CreatedAt.Format(time.RFC822)))
			for _, line := range strings.Split(c.Content, "\n") {
				fmt.Fprintf(&b, "    %s\n", line)
			}
		}
	}

	return b.String()
}
