// Package classify infers priority, category, tags, and SOP templates from
// free text. The default engine is an ordered keyword rule table: rules are
// tested in order and the first match wins, with no scoring. An optional
// Claude-backed analyzer implements the same interface for real inference.
package classify

import (
	"context"
	"strings"
	"time"

	"github.com/untoldecay/flowai/internal/types"
)

// TaskSuggestion is the classifier's proposal for a captured description.
// The caller must explicitly apply it; nothing is mutated here.
type TaskSuggestion struct {
	Priority         types.Priority     `json:"priority"`
	SuggestedSOP     *types.SOPTemplate `json:"suggested_sop,omitempty"`
	EstimatedSteps   []types.TaskStep   `json:"estimated_steps,omitempty"`
	SuggestedDueDate time.Time          `json:"suggested_due_date"`
}

// TicketAnalysis is the classifier's proposal for an incoming ticket.
type TicketAnalysis struct {
	Category types.Category `json:"category"`
	Priority types.Priority `json:"priority"`
	Tags     []string       `json:"tags"`
}

// Analyzer produces classification proposals. Implementations must be
// side-effect free with respect to store state.
type Analyzer interface {
	SuggestTask(ctx context.Context, description string) (TaskSuggestion, error)
	AnalyzeTicket(ctx context.Context, title, description string) (TicketAnalysis, error)
}

// rule maps a keyword set to a label. A rule matches when any of its
// keywords appears as a substring of the lower-cased input.
type rule struct {
	keywords []string
	label    string
}

// firstMatch returns the label of the first matching rule, or fallback when
// none match. text must already be lower-cased.
func firstMatch(text string, rules []rule, fallback string) string {
	for _, r := range rules {
		if containsAny(text, r.keywords) {
			return r.label
		}
	}
	return fallback
}

// allMatches returns the labels of every matching rule, in table order.
func allMatches(text string, rules []rule) []string {
	var labels []string
	for _, r := range rules {
		if containsAny(text, r.keywords) {
			labels = append(labels, r.label)
		}
	}
	return labels
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
