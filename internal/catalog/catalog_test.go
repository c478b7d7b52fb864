package catalog

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestSOPTemplatesDefaults(t *testing.T) {
	templates := SOPTemplates()
	if len(templates) != 3 {
		t.Fatalf("expected 3 built-in templates, got %d", len(templates))
	}

	bugFix, ok := TemplateByName(templates, "Bug Fix Process")
	if !ok {
		t.Fatal("missing Bug Fix Process template")
	}
	if len(bugFix.Steps) == 0 {
		t.Error("Bug Fix Process has no steps")
	}
	if bugFix.Steps[0] != "Reproduce the bug" {
		t.Errorf("first step = %q", bugFix.Steps[0])
	}
}

func TestLoadSOPTemplatesMissingFile(t *testing.T) {
	templates, err := LoadSOPTemplates(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("missing file should not error: %v", err)
	}
	if len(templates) != len(SOPTemplates()) {
		t.Errorf("expected built-in set, got %d templates", len(templates))
	}
}

func TestLoadSOPTemplatesOverrideAndExtend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "templates.toml")
	content := `
[[templates]]
id = "sop-1"
name = "Bug Fix Process"
steps = ["Triage", "Fix", "Ship"]

[[templates]]
id = "sop-deploy"
name = "Deployment Checklist"
steps = ["Tag release", "Deploy to staging", "Deploy to production"]
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	templates, err := LoadSOPTemplates(path)
	if err != nil {
		t.Fatalf("LoadSOPTemplates failed: %v", err)
	}
	if len(templates) != 4 {
		t.Fatalf("expected 3 built-ins with one replaced plus one new, got %d", len(templates))
	}

	bugFix, ok := TemplateByName(templates, "Bug Fix Process")
	if !ok {
		t.Fatal("replaced template missing")
	}
	if len(bugFix.Steps) != 3 || bugFix.Steps[0] != "Triage" {
		t.Errorf("override not applied: %+v", bugFix.Steps)
	}

	if _, ok := TemplateByName(templates, "Deployment Checklist"); !ok {
		t.Error("extension template missing")
	}
}

func TestLoadSOPTemplatesMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "templates.toml")
	if err := os.WriteFile(path, []byte("[[templates]\nbroken"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadSOPTemplates(path); err == nil {
		t.Error("expected parse error for malformed toml")
	}
}

func TestRosterAndTaxonomies(t *testing.T) {
	if len(TeamMembers()) != 4 {
		t.Errorf("expected 4 team members, got %d", len(TeamMembers()))
	}
	if _, ok := MemberByID("1"); !ok {
		t.Error("member 1 missing")
	}
	if _, ok := MemberByID("99"); ok {
		t.Error("unknown member resolved")
	}
	if len(Categories()) != 5 {
		t.Errorf("expected 5 categories, got %d", len(Categories()))
	}
	if len(Priorities()) != 4 {
		t.Errorf("expected 4 priorities, got %d", len(Priorities()))
	}
	if len(Statuses()) != 5 {
		t.Errorf("expected 5 statuses, got %d", len(Statuses()))
	}
}

func TestSeedData(t *testing.T) {
	now := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

	tickets := SeedTickets(now)
	if len(tickets) != 3 {
		t.Fatalf("expected 3 seed tickets, got %d", len(tickets))
	}
	for _, tk := range tickets {
		if tk.CreatedAt.After(now) {
			t.Errorf("seed ticket %s created in the future", tk.ID)
		}
		if tk.UpdatedAt.Before(tk.CreatedAt) {
			t.Errorf("seed ticket %s updated before created", tk.ID)
		}
	}

	channels := SeedChannels()
	if len(channels) != 3 {
		t.Fatalf("expected 3 seed channels, got %d", len(channels))
	}
	messages := SeedMessages(now)
	for _, ch := range channels {
		if len(messages[ch.ID]) == 0 {
			t.Errorf("channel %s has no seed messages", ch.Name)
		}
	}
}
