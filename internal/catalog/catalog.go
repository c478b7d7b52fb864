// Package catalog holds the static reference data loaded at store
// initialization: the team roster, SOP template library, ticket
// taxonomies, and chat seed data. None of it is persisted; it is recreated
// each run.
package catalog

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/untoldecay/flowai/internal/types"
)

// TeamMembers returns the fixed roster. IDs are referenced by tasks,
// tickets, and chat messages.
func TeamMembers() []types.TeamMember {
	return []types.TeamMember{
		{ID: "1", Name: "Alice Johnson", Email: "alice@company.com", Role: "Developer"},
		{ID: "2", Name: "Bob Smith", Email: "bob@company.com", Role: "Designer"},
		{ID: "3", Name: "Carol Wilson", Email: "carol@company.com", Role: "Project Manager"},
		{ID: "4", Name: "David Brown", Email: "david@company.com", Role: "QA Engineer"},
	}
}

// MemberByID looks up a roster entry. ok is false for unknown ids.
func MemberByID(id string) (types.TeamMember, bool) {
	for _, m := range TeamMembers() {
		if m.ID == id {
			return m, true
		}
	}
	return types.TeamMember{}, false
}

// SOPTemplates returns the built-in template library.
func SOPTemplates() []types.SOPTemplate {
	return []types.SOPTemplate{
		{
			ID:   "1",
			Name: "Bug Fix Process",
			Steps: []string{
				"Reproduce the bug",
				"Identify root cause",
				"Create fix",
				"Test fix",
				"Code review",
				"Deploy to staging",
				"QA verification",
				"Deploy to production",
			},
		},
		{
			ID:   "2",
			Name: "Feature Development",
			Steps: []string{
				"Requirements analysis",
				"Design mockups",
				"Technical specification",
				"Development",
				"Unit testing",
				"Integration testing",
				"Code review",
				"Documentation",
				"Release",
			},
		},
		{
			ID:   "3",
			Name: "Customer Support Escalation",
			Steps: []string{
				"Gather customer information",
				"Reproduce issue",
				"Check known issues",
				"Escalate to appropriate team",
				"Monitor progress",
				"Update customer",
				"Verify resolution",
				"Close ticket",
			},
		},
	}
}

// templateFile is the on-disk shape of a custom template catalog.
type templateFile struct {
	Templates []struct {
		ID    string   `toml:"id"`
		Name  string   `toml:"name"`
		Steps []string `toml:"steps"`
	} `toml:"templates"`
}

// LoadSOPTemplates returns the template library, with entries from the
// given templates.toml (if it exists) replacing or extending the built-in
// set. A missing file is not an error; a malformed one is.
func LoadSOPTemplates(path string) ([]types.SOPTemplate, error) {
	templates := SOPTemplates()
	if path == "" {
		return templates, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return templates, nil
	}

	var file templateFile
	if _, err := toml.DecodeFile(path, &file); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	for _, t := range file.Templates {
		custom := types.SOPTemplate{ID: t.ID, Name: t.Name, Steps: t.Steps}
		replaced := false
		for i, existing := range templates {
			if existing.ID == custom.ID || existing.Name == custom.Name {
				templates[i] = custom
				replaced = true
				break
			}
		}
		if !replaced {
			templates = append(templates, custom)
		}
	}
	return templates, nil
}

// TemplateByName finds a template by display name.
func TemplateByName(templates []types.SOPTemplate, name string) (types.SOPTemplate, bool) {
	for _, t := range templates {
		if t.Name == name {
			return t, true
		}
	}
	return types.SOPTemplate{}, false
}

// Categories returns the ticket category taxonomy with display colors.
func Categories() []types.CategoryInfo {
	return []types.CategoryInfo{
		{ID: types.CategoryBug, Name: "Bug Report", Color: "#FF3B30"},
		{ID: types.CategoryFeature, Name: "Feature Request", Color: "#007AFF"},
		{ID: types.CategorySupport, Name: "Technical Support", Color: "#34C759"},
		{ID: types.CategoryBilling, Name: "Billing Issue", Color: "#FF9500"},
		{ID: types.CategoryOther, Name: "Other", Color: "#8E8E93"},
	}
}

// Priorities returns the ticket priority taxonomy with display colors.
func Priorities() []types.PriorityInfo {
	return []types.PriorityInfo{
		{ID: types.PriorityLow, Name: "Low", Color: "#34C759"},
		{ID: types.PriorityMedium, Name: "Medium", Color: "#FF9500"},
		{ID: types.PriorityHigh, Name: "High", Color: "#FF3B30"},
		{ID: types.PriorityUrgent, Name: "Urgent", Color: "#FF3B30"},
	}
}

// Statuses returns the ticket status taxonomy with display colors.
func Statuses() []types.StatusInfo {
	return []types.StatusInfo{
		{ID: types.TicketOpen, Name: "Open", Color: "#007AFF"},
		{ID: types.TicketInProgress, Name: "In Progress", Color: "#FF9500"},
		{ID: types.TicketWaiting, Name: "Waiting for Customer", Color: "#8E8E93"},
		{ID: types.TicketResolved, Name: "Resolved", Color: "#34C759"},
		{ID: types.TicketClosed, Name: "Closed", Color: "#6E6E73"},
	}
}

// SeedTickets returns the demo tickets installed on first run, when no
// ticket snapshot exists yet.
func SeedTickets(now time.Time) []types.Ticket {
	return []types.Ticket{
		{
			ID:          "1",
			Title:       "Login button not working on mobile",
			Description: "When I try to log in on my iPhone, the login button doesn't respond to taps.",
			Category:    types.CategoryBug,
			Priority:    types.PriorityHigh,
			Status:      types.TicketOpen,
			Customer:    types.Customer{Name: "John Smith", Email: "john.smith@email.com", Company: "Acme Corp"},
			Assignee:    "1",
			CreatedAt:   now.Add(-24 * time.Hour),
			UpdatedAt:   now.Add(-1 * time.Hour),
			Comments: []types.Comment{
				{
					ID:        "1",
					Content:   "Thank you for reporting this issue. We're looking into it.",
					Author:    "1",
					Kind:      types.CommentInternal,
					CreatedAt: now.Add(-1 * time.Hour),
				},
			},
			Tags: []string{"mobile", "login", "ui"},
		},
		{
			ID:          "2",
			Title:       "Request for dark mode feature",
			Description: "It would be great to have a dark mode option for better usability in low-light environments.",
			Category:    types.CategoryFeature,
			Priority:    types.PriorityMedium,
			Status:      types.TicketInProgress,
			Customer:    types.Customer{Name: "Sarah Johnson", Email: "sarah.j@company.com", Company: "Tech Solutions"},
			Assignee:    "2",
			CreatedAt:   now.Add(-48 * time.Hour),
			UpdatedAt:   now.Add(-30 * time.Minute),
			Comments: []types.Comment{
				{
					ID:        "2",
					Content:   "Great suggestion! We're currently working on this feature.",
					Author:    "2",
					Kind:      types.CommentCustomer,
					CreatedAt: now.Add(-30 * time.Minute),
				},
			},
			Tags: []string{"feature", "ui", "accessibility"},
		},
		{
			ID:          "3",
			Title:       "Billing discrepancy in last invoice",
			Description: "The amount charged doesn't match our agreed pricing plan. Please review.",
			Category:    types.CategoryBilling,
			Priority:    types.PriorityHigh,
			Status:      types.TicketWaiting,
			Customer:    types.Customer{Name: "Mike Wilson", Email: "mike.wilson@business.com", Company: "Business Inc"},
			Assignee:    "3",
			CreatedAt:   now.Add(-72 * time.Hour),
			UpdatedAt:   now.Add(-2 * time.Hour),
			Comments: []types.Comment{
				{
					ID:        "3",
					Content:   "We've reviewed your account and sent the corrected invoice. Please confirm receipt.",
					Author:    "3",
					Kind:      types.CommentCustomer,
					CreatedAt: now.Add(-2 * time.Hour),
				},
			},
			Tags: []string{"billing", "invoice", "pricing"},
		},
	}
}

// SeedChannels returns the chat channels present on startup.
func SeedChannels() []types.Channel {
	return []types.Channel{
		{ID: "general", Name: "General", Type: types.ChannelShared, Members: []string{"1", "2", "3", "4"}},
		{ID: "dev-team", Name: "Development Team", Type: types.ChannelShared, Members: []string{"1", "4"}},
		{ID: "design", Name: "Design Team", Type: types.ChannelShared, Members: []string{"2", "3"}},
	}
}

// SeedMessages returns the starter message history per channel.
func SeedMessages(now time.Time) map[string][]types.Message {
	return map[string][]types.Message{
		"general": {
			{ID: "1", Content: "Welcome to the team chat! 👋", Sender: "1", Kind: types.MessageText, Timestamp: now.Add(-60 * time.Minute)},
			{ID: "2", Content: "Thanks Alice! Excited to be here.", Sender: "2", Kind: types.MessageText, Timestamp: now.Add(-55 * time.Minute)},
			{ID: "3", Content: "Don't forget about the standup meeting at 10 AM", Sender: "3", Kind: types.MessageText, Timestamp: now.Add(-30 * time.Minute)},
		},
		"dev-team": {
			{ID: "4", Content: "The new API endpoints are ready for testing", Sender: "1", Kind: types.MessageText, Timestamp: now.Add(-15 * time.Minute)},
			{ID: "5", Content: "Great! I'll start QA testing this afternoon", Sender: "4", Kind: types.MessageText, Timestamp: now.Add(-10 * time.Minute)},
		},
		"design": {
			{ID: "6", Content: "Updated the mockups with the new color scheme", Sender: "2", Kind: types.MessageText, Timestamp: now.Add(-120 * time.Minute)},
			{ID: "7", Content: "Looks perfect! The contrast is much better now.", Sender: "3", Kind: types.MessageText, Timestamp: now.Add(-117 * time.Minute)},
		},
	}
}
