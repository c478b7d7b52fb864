package classify

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/untoldecay/flowai/internal/catalog"
	"github.com/untoldecay/flowai/internal/types"
)

func testAnalyzer() *RuleAnalyzer {
	a := NewRuleAnalyzer(catalog.SOPTemplates())
	fixed := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	a.Now = func() time.Time { return fixed }
	n := 0
	a.NewID = func() string {
		n++
		return fmt.Sprintf("step-%d", n)
	}
	return a
}

func TestSuggestTaskUrgentBug(t *testing.T) {
	a := testAnalyzer()

	s, err := a.SuggestTask(context.Background(), "Urgent bug: login crashes")
	if err != nil {
		t.Fatalf("SuggestTask failed: %v", err)
	}

	if s.Priority != types.PriorityHigh {
		t.Errorf("Expected priority high, got %s", s.Priority)
	}
	if s.SuggestedSOP == nil {
		t.Fatal("Expected an SOP suggestion")
	}
	if s.SuggestedSOP.Name != "Bug Fix Process" {
		t.Errorf("Expected 'Bug Fix Process', got %q", s.SuggestedSOP.Name)
	}
	if len(s.EstimatedSteps) != len(s.SuggestedSOP.Steps) {
		t.Errorf("Expected %d estimated steps, got %d", len(s.SuggestedSOP.Steps), len(s.EstimatedSteps))
	}
	for i, step := range s.EstimatedSteps {
		if step.Completed {
			t.Errorf("Step %d should start incomplete", i)
		}
		if step.Title != s.SuggestedSOP.Steps[i] {
			t.Errorf("Step %d title mismatch: got %q, want %q", i, step.Title, s.SuggestedSOP.Steps[i])
		}
		if step.ID == "" {
			t.Errorf("Step %d missing id", i)
		}
	}
}

func TestSuggestTaskDueDateIsConstantOffset(t *testing.T) {
	a := testAnalyzer()

	s, err := a.SuggestTask(context.Background(), "anything at all")
	if err != nil {
		t.Fatalf("SuggestTask failed: %v", err)
	}

	want := a.Now().Add(7 * 24 * time.Hour)
	if !s.SuggestedDueDate.Equal(want) {
		t.Errorf("Expected due date %v, got %v", want, s.SuggestedDueDate)
	}
}

func TestSuggestTaskPriorityTable(t *testing.T) {
	tests := []struct {
		description string
		want        types.Priority
	}{
		{"this is urgent, please", types.PriorityHigh},
		{"critical production outage", types.PriorityHigh},
		{"minor cosmetic tweak", types.PriorityLow},
		{"low impact cleanup", types.PriorityLow},
		{"refactor the parser", types.PriorityMedium},
		// "urgent" row precedes "minor"/"low" in the table
		{"urgent but low risk", types.PriorityHigh},
	}

	a := testAnalyzer()
	for _, tt := range tests {
		s, err := a.SuggestTask(context.Background(), tt.description)
		if err != nil {
			t.Fatalf("SuggestTask(%q) failed: %v", tt.description, err)
		}
		if s.Priority != tt.want {
			t.Errorf("SuggestTask(%q) priority = %s, want %s", tt.description, s.Priority, tt.want)
		}
	}
}

func TestSuggestTaskSOPTable(t *testing.T) {
	tests := []struct {
		description string
		want        string // template name, "" for none
	}{
		{"fix the error in checkout", "Bug Fix Process"},
		{"develop a new dashboard", "Feature Development"},
		{"customer cannot export data", "Customer Support Escalation"},
		{"write meeting minutes", ""},
	}

	a := testAnalyzer()
	for _, tt := range tests {
		s, err := a.SuggestTask(context.Background(), tt.description)
		if err != nil {
			t.Fatalf("SuggestTask(%q) failed: %v", tt.description, err)
		}
		if tt.want == "" {
			if s.SuggestedSOP != nil {
				t.Errorf("SuggestTask(%q) suggested %q, want none", tt.description, s.SuggestedSOP.Name)
			}
			if len(s.EstimatedSteps) != 0 {
				t.Errorf("SuggestTask(%q) produced steps without a template", tt.description)
			}
			continue
		}
		if s.SuggestedSOP == nil || s.SuggestedSOP.Name != tt.want {
			t.Errorf("SuggestTask(%q) SOP = %v, want %q", tt.description, s.SuggestedSOP, tt.want)
		}
	}
}

func TestAnalyzeTicketAppDown(t *testing.T) {
	a := testAnalyzer()

	got, err := a.AnalyzeTicket(context.Background(), "App down", "site is broken and customers can't log in")
	if err != nil {
		t.Fatalf("AnalyzeTicket failed: %v", err)
	}

	if got.Category != types.CategoryBug {
		t.Errorf("Expected category bug, got %s", got.Category)
	}
	if got.Priority != types.PriorityUrgent {
		t.Errorf("Expected priority urgent, got %s", got.Priority)
	}
	found := false
	for _, tag := range got.Tags {
		if tag == "authentication" {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected tags to include 'authentication', got %v", got.Tags)
	}
}

func TestAnalyzeTicketCategoryTable(t *testing.T) {
	tests := []struct {
		title, description string
		want               types.Category
	}{
		{"Broken export", "the CSV export is not working", types.CategoryBug},
		{"Enhancement", "request for bulk edit", types.CategoryFeature},
		{"Invoice question", "last payment was double charged", types.CategoryBilling},
		{"How to add users", "need help with team setup", types.CategorySupport},
		{"Misc", "just saying hello", types.CategoryOther},
	}

	a := testAnalyzer()
	for _, tt := range tests {
		got, err := a.AnalyzeTicket(context.Background(), tt.title, tt.description)
		if err != nil {
			t.Fatalf("AnalyzeTicket(%q) failed: %v", tt.title, err)
		}
		if got.Category != tt.want {
			t.Errorf("AnalyzeTicket(%q) category = %s, want %s", tt.title, got.Category, tt.want)
		}
	}
}

func TestAnalyzeTicketAuthTagSpellings(t *testing.T) {
	tests := []string{
		"users can't log in after the update",
		"sign in button does nothing",
		"login page is blank",
		"password reset email never arrives",
	}

	a := testAnalyzer()
	for _, description := range tests {
		got, err := a.AnalyzeTicket(context.Background(), "Access problem", description)
		if err != nil {
			t.Fatalf("AnalyzeTicket(%q) failed: %v", description, err)
		}
		found := false
		for _, tag := range got.Tags {
			if tag == "authentication" {
				found = true
			}
		}
		if !found {
			t.Errorf("AnalyzeTicket(%q) tags = %v, want to include 'authentication'", description, got.Tags)
		}
	}
}

func TestAnalyzeTicketTagsAreAdditive(t *testing.T) {
	a := testAnalyzer()

	got, err := a.AnalyzeTicket(context.Background(), "Slow login on mobile", "the app interface lags on android during password entry")
	if err != nil {
		t.Fatalf("AnalyzeTicket failed: %v", err)
	}

	want := []string{"mobile", "authentication", "ui", "performance"}
	if len(got.Tags) != len(want) {
		t.Fatalf("Expected tags %v, got %v", want, got.Tags)
	}
	for i, tag := range want {
		if got.Tags[i] != tag {
			t.Errorf("Tag %d = %q, want %q (table order)", i, got.Tags[i], tag)
		}
	}
}

func TestAnalyzeTicketDeterministic(t *testing.T) {
	a := testAnalyzer()

	first, err := a.AnalyzeTicket(context.Background(), "Slow dashboard", "performance is bad")
	if err != nil {
		t.Fatalf("AnalyzeTicket failed: %v", err)
	}
	second, err := a.AnalyzeTicket(context.Background(), "Slow dashboard", "performance is bad")
	if err != nil {
		t.Fatalf("AnalyzeTicket failed: %v", err)
	}

	if first.Category != second.Category || first.Priority != second.Priority || len(first.Tags) != len(second.Tags) {
		t.Errorf("Classifier not deterministic: %+v vs %+v", first, second)
	}
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{`{"a":1}`, `{"a":1}`},
		{"```json\n{\"a\":1}\n```", `{"a":1}`},
		{"Here you go: {\"a\":1} hope that helps", `{"a":1}`},
	}
	for _, tt := range tests {
		if got := extractJSON(tt.in); got != tt.want {
			t.Errorf("extractJSON(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
