package classify

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/untoldecay/flowai/internal/types"
)

// suggestedDueOffset is the constant due-date offset for task suggestions,
// independent of content.
const suggestedDueOffset = 7 * 24 * time.Hour

// Task-side keyword tables. Order matters: the first matching row wins.
var (
	taskPriorityRules = []rule{
		{keywords: []string{"urgent", "critical"}, label: string(types.PriorityHigh)},
		{keywords: []string{"minor", "low"}, label: string(types.PriorityLow)},
	}

	taskSOPRules = []rule{
		{keywords: []string{"bug", "error", "issue"}, label: "Bug Fix Process"},
		{keywords: []string{"feature", "new", "develop"}, label: "Feature Development"},
		{keywords: []string{"customer", "support"}, label: "Customer Support Escalation"},
	}
)

// Ticket-side keyword tables, defined independently of the task tables.
var (
	ticketCategoryRules = []rule{
		{keywords: []string{"bug", "error", "broken", "not working"}, label: string(types.CategoryBug)},
		{keywords: []string{"feature", "request", "enhancement"}, label: string(types.CategoryFeature)},
		{keywords: []string{"billing", "payment", "invoice"}, label: string(types.CategoryBilling)},
		{keywords: []string{"help", "support", "how to"}, label: string(types.CategorySupport)},
	}

	ticketPriorityRules = []rule{
		{keywords: []string{"urgent", "critical", "down", "broken"}, label: string(types.PriorityUrgent)},
		{keywords: []string{"important", "high", "asap"}, label: string(types.PriorityHigh)},
		{keywords: []string{"minor", "low", "when possible"}, label: string(types.PriorityLow)},
	}

	// Tag rules are additive: every matching row contributes its tag.
	ticketTagRules = []rule{
		{keywords: []string{"mobile", "phone", "android", "ios"}, label: "mobile"},
		{keywords: []string{"login", "log in", "sign in", "authentication", "password"}, label: "authentication"},
		{keywords: []string{"ui", "interface", "design"}, label: "ui"},
		{keywords: []string{"performance", "slow", "speed"}, label: "performance"},
	}
)

// RuleAnalyzer classifies with the keyword tables above. It is pure and
// deterministic apart from step id generation and the clock, both of which
// are injectable for tests.
type RuleAnalyzer struct {
	Templates []types.SOPTemplate
	Now       func() time.Time
	NewID     func() string
}

// NewRuleAnalyzer returns a RuleAnalyzer over the given template catalog.
func NewRuleAnalyzer(templates []types.SOPTemplate) *RuleAnalyzer {
	return &RuleAnalyzer{
		Templates: templates,
		Now:       time.Now,
		NewID:     uuid.NewString,
	}
}

// SuggestTask infers priority and an SOP template from a free-text
// description. The suggested due date is always now+7d.
func (a *RuleAnalyzer) SuggestTask(_ context.Context, description string) (TaskSuggestion, error) {
	text := strings.ToLower(description)

	s := TaskSuggestion{
		Priority:         types.Priority(firstMatch(text, taskPriorityRules, string(types.PriorityMedium))),
		SuggestedDueDate: a.Now().Add(suggestedDueOffset),
	}

	if name := firstMatch(text, taskSOPRules, ""); name != "" {
		for i := range a.Templates {
			if a.Templates[i].Name == name {
				tmpl := a.Templates[i]
				s.SuggestedSOP = &tmpl
				for _, step := range tmpl.Steps {
					s.EstimatedSteps = append(s.EstimatedSteps, types.TaskStep{
						ID:    a.NewID(),
						Title: step,
					})
				}
				break
			}
		}
	}

	return s, nil
}

// AnalyzeTicket infers category, priority, and tags from the concatenated
// title and description.
func (a *RuleAnalyzer) AnalyzeTicket(_ context.Context, title, description string) (TicketAnalysis, error) {
	text := strings.ToLower(title + " " + description)

	return TicketAnalysis{
		Category: types.Category(firstMatch(text, ticketCategoryRules, string(types.CategoryOther))),
		Priority: types.Priority(firstMatch(text, ticketPriorityRules, string(types.PriorityMedium))),
		Tags:     allMatches(text, ticketTagRules),
	}, nil
}
