package ticketstore

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/untoldecay/flowai/internal/types"
)

// newTestStore returns an empty in-memory store with deterministic ids.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open("")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	n := 0
	s.newID = func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
	return s
}

func mustCreate(t *testing.T, s *Store, draft TicketDraft) types.Ticket {
	t.Helper()
	ticket, err := s.CreateTicket(draft)
	if err != nil {
		t.Fatalf("CreateTicket failed: %v", err)
	}
	return ticket
}

func TestCreateTicketDefaults(t *testing.T) {
	s := newTestStore(t)

	ticket := mustCreate(t, s, TicketDraft{
		Title:    "Printer on fire",
		Customer: types.Customer{Name: "Jo", Email: "jo@x.com"},
	})

	if ticket.Status != types.TicketOpen {
		t.Errorf("Default status = %s, want open", ticket.Status)
	}
	if ticket.Priority != types.PriorityMedium {
		t.Errorf("Default priority = %s, want medium", ticket.Priority)
	}
	if ticket.Category != types.CategoryOther {
		t.Errorf("Default category = %s, want other", ticket.Category)
	}
	if len(ticket.Comments) != 0 {
		t.Error("Comments must start empty")
	}
	if ticket.CreatedAt.IsZero() || !ticket.UpdatedAt.Equal(ticket.CreatedAt) {
		t.Errorf("Timestamps wrong: created=%v updated=%v", ticket.CreatedAt, ticket.UpdatedAt)
	}
}

func TestCreateTicketWithClassification(t *testing.T) {
	s := newTestStore(t)

	ticket := mustCreate(t, s, TicketDraft{
		Title:    "App down",
		Category: types.CategoryBug,
		Priority: types.PriorityUrgent,
		Tags:     []string{"authentication"},
	})

	if ticket.Category != types.CategoryBug || ticket.Priority != types.PriorityUrgent {
		t.Errorf("Classification fields lost: %+v", ticket)
	}
	if len(ticket.Tags) != 1 || ticket.Tags[0] != "authentication" {
		t.Errorf("Tags = %v, want [authentication]", ticket.Tags)
	}
}

func TestUpdateTicketPartialMerge(t *testing.T) {
	s := newTestStore(t)

	ticket := mustCreate(t, s, TicketDraft{
		Title:    "Slow search",
		Category: types.CategoryBug,
		Priority: types.PriorityLow,
		Assignee: "4",
	})

	status := types.TicketResolved
	found, err := s.UpdateTicket(ticket.ID, types.TicketPatch{Status: &status})
	if err != nil {
		t.Fatalf("UpdateTicket failed: %v", err)
	}
	if !found {
		t.Fatal("Expected ticket found")
	}

	got, ok := s.Ticket(ticket.ID)
	if !ok {
		t.Fatal("Ticket disappeared")
	}
	if got.Status != types.TicketResolved {
		t.Errorf("Status = %s, want resolved", got.Status)
	}
	if got.Title != ticket.Title || got.Category != ticket.Category ||
		got.Priority != ticket.Priority || got.Assignee != ticket.Assignee {
		t.Errorf("Partial update touched unspecified fields: %+v", got)
	}
	if got.UpdatedAt.Before(ticket.UpdatedAt) {
		t.Errorf("UpdatedAt regressed: %v -> %v", ticket.UpdatedAt, got.UpdatedAt)
	}
}

func TestUpdateTicketAbsentIsNoop(t *testing.T) {
	s := newTestStore(t)

	title := "x"
	found, err := s.UpdateTicket("missing", types.TicketPatch{Title: &title})
	if err != nil {
		t.Fatalf("UpdateTicket failed: %v", err)
	}
	if found {
		t.Error("Expected no-op for unknown id")
	}
}

func TestDeleteTicket(t *testing.T) {
	s := newTestStore(t)

	ticket := mustCreate(t, s, TicketDraft{Title: "ephemeral"})

	deleted, err := s.DeleteTicket(ticket.ID)
	if err != nil {
		t.Fatalf("DeleteTicket failed: %v", err)
	}
	if !deleted {
		t.Error("Expected delete to report true")
	}
	if len(s.Tickets()) != 0 {
		t.Error("Ticket should be gone")
	}
	if deleted, _ := s.DeleteTicket(ticket.ID); deleted {
		t.Error("Second delete should be a no-op")
	}
}

func TestAddComment(t *testing.T) {
	s := newTestStore(t)

	ticket := mustCreate(t, s, TicketDraft{Title: "needs discussion"})

	comment, found, err := s.AddComment(ticket.ID, "Looking into it.", "1", types.CommentInternal)
	if err != nil {
		t.Fatalf("AddComment failed: %v", err)
	}
	if !found {
		t.Fatal("Expected ticket found")
	}
	if comment.ID == "" || comment.CreatedAt.IsZero() {
		t.Errorf("Comment missing id or timestamp: %+v", comment)
	}
	if comment.Kind != types.CommentInternal {
		t.Errorf("Kind = %s, want internal", comment.Kind)
	}

	got, _ := s.Ticket(ticket.ID)
	if len(got.Comments) != 1 {
		t.Fatalf("Expected 1 comment, got %d", len(got.Comments))
	}
	if got.UpdatedAt.Before(comment.CreatedAt) {
		t.Error("Comment must refresh the ticket's UpdatedAt")
	}

	// Append-only ordering.
	if _, _, err := s.AddComment(ticket.ID, "Fixed.", "2", types.CommentCustomer); err != nil {
		t.Fatalf("AddComment failed: %v", err)
	}
	got, _ = s.Ticket(ticket.ID)
	if len(got.Comments) != 2 || got.Comments[1].Content != "Fixed." {
		t.Errorf("Comments out of order: %+v", got.Comments)
	}
}

func TestAddCommentAbsentTicketIsNoop(t *testing.T) {
	s := newTestStore(t)

	_, found, err := s.AddComment("missing", "hello", "1", types.CommentInternal)
	if err != nil {
		t.Fatalf("AddComment failed: %v", err)
	}
	if found {
		t.Error("Expected no-op for unknown ticket")
	}
}

func TestAddTagIsIdempotent(t *testing.T) {
	s := newTestStore(t)

	ticket := mustCreate(t, s, TicketDraft{Title: "taggable"})

	for i := 0; i < 2; i++ {
		if _, err := s.AddTag(ticket.ID, "mobile"); err != nil {
			t.Fatalf("AddTag failed: %v", err)
		}
	}

	got, _ := s.Ticket(ticket.ID)
	if len(got.Tags) != 1 || got.Tags[0] != "mobile" {
		t.Errorf("Tags = %v, want exactly [mobile]", got.Tags)
	}
}

func TestRemoveTagAbsentIsNoop(t *testing.T) {
	s := newTestStore(t)

	ticket := mustCreate(t, s, TicketDraft{Title: "taggable", Tags: []string{"ui"}})

	if _, err := s.RemoveTag(ticket.ID, "not-there"); err != nil {
		t.Fatalf("RemoveTag failed: %v", err)
	}
	got, _ := s.Ticket(ticket.ID)
	if len(got.Tags) != 1 || got.Tags[0] != "ui" {
		t.Errorf("Tag set changed by no-op removal: %v", got.Tags)
	}

	if _, err := s.RemoveTag(ticket.ID, "ui"); err != nil {
		t.Fatalf("RemoveTag failed: %v", err)
	}
	got, _ = s.Ticket(ticket.ID)
	if len(got.Tags) != 0 {
		t.Errorf("Tag not removed: %v", got.Tags)
	}
}

func TestStatsFixture(t *testing.T) {
	s := newTestStore(t)

	fixtures := []struct {
		status   types.TicketStatus
		priority types.Priority
	}{
		{types.TicketOpen, types.PriorityHigh},
		{types.TicketInProgress, types.PriorityMedium},
		{types.TicketResolved, types.PriorityUrgent},
		{types.TicketWaiting, types.PriorityLow},
	}
	for i, f := range fixtures {
		mustCreate(t, s, TicketDraft{
			Title:    fmt.Sprintf("t%d", i),
			Status:   f.status,
			Priority: f.priority,
		})
	}

	stats := s.Stats()
	if stats.Total != 4 {
		t.Errorf("Total = %d, want 4", stats.Total)
	}
	if stats.Open != 2 {
		t.Errorf("Open = %d, want 2 (open + in_progress)", stats.Open)
	}
	if stats.Resolved != 1 {
		t.Errorf("Resolved = %d, want 1", stats.Resolved)
	}
	if stats.HighPriority != 2 {
		t.Errorf("HighPriority = %d, want 2 (high + urgent)", stats.HighPriority)
	}
}

func TestFindFilters(t *testing.T) {
	s := newTestStore(t)

	mustCreate(t, s, TicketDraft{Title: "Login broken on mobile", Status: types.TicketOpen, Assignee: "1"})
	mustCreate(t, s, TicketDraft{Title: "Dark mode request", Status: types.TicketInProgress, Assignee: "2"})
	mustCreate(t, s, TicketDraft{Title: "Invoice wrong", Description: "billing mismatch", Status: types.TicketOpen, Assignee: "1"})

	if got := s.Find(Filter{Status: types.TicketOpen}); len(got) != 2 {
		t.Errorf("Status filter: got %d, want 2", len(got))
	}
	if got := s.Find(Filter{Assignee: "2"}); len(got) != 1 {
		t.Errorf("Assignee filter: got %d, want 1", len(got))
	}
	if got := s.Find(Filter{Query: "BILLING"}); len(got) != 1 {
		t.Errorf("Query filter should match description case-insensitively: got %d", len(got))
	}
	if got := s.Find(Filter{Status: types.TicketOpen, Assignee: "1", Query: "login"}); len(got) != 1 {
		t.Errorf("Combined filter: got %d, want 1", len(got))
	}
}

func TestSeedTicketsOnFirstRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tickets.json")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if got := len(s.Tickets()); got != 3 {
		t.Fatalf("Expected 3 seed tickets on first run, got %d", got)
	}

	// Deleting a seed ticket must survive reopen: the snapshot, not the
	// seed set, is authoritative once it exists.
	if _, err := s.DeleteTicket("1"); err != nil {
		t.Fatalf("DeleteTicket failed: %v", err)
	}
	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("Reopen failed: %v", err)
	}
	if got := len(reopened.Tickets()); got != 2 {
		t.Errorf("Expected 2 tickets after reopen, got %d", got)
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tickets.json")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	ticket, err := s.CreateTicket(TicketDraft{
		Title:    "Persisted ticket",
		Category: types.CategoryBilling,
		Priority: types.PriorityHigh,
		Customer: types.Customer{Name: "Ann", Email: "ann@co.com", Company: "Co"},
		Tags:     []string{"invoice"},
	})
	if err != nil {
		t.Fatalf("CreateTicket failed: %v", err)
	}
	if _, _, err := s.AddComment(ticket.ID, "first", "1", types.CommentCustomer); err != nil {
		t.Fatalf("AddComment failed: %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("Reopen failed: %v", err)
	}
	got, ok := reopened.Ticket(ticket.ID)
	if !ok {
		t.Fatal("Ticket missing after reopen")
	}
	if got.Customer.Company != "Co" || got.Category != types.CategoryBilling {
		t.Errorf("Fields lost across reopen: %+v", got)
	}
	if len(got.Comments) != 1 || got.Comments[0].Kind != types.CommentCustomer {
		t.Errorf("Comments lost across reopen: %+v", got.Comments)
	}
	if len(got.Tags) != 1 || got.Tags[0] != "invoice" {
		t.Errorf("Tags lost across reopen: %v", got.Tags)
	}
}

func TestUpdatedAtNeverRegresses(t *testing.T) {
	s := newTestStore(t)

	base := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return base }
	ticket := mustCreate(t, s, TicketDraft{Title: "clock test"})

	s.now = func() time.Time { return base.Add(-time.Hour) }
	title := "renamed"
	if _, err := s.UpdateTicket(ticket.ID, types.TicketPatch{Title: &title}); err != nil {
		t.Fatalf("UpdateTicket failed: %v", err)
	}

	got, _ := s.Ticket(ticket.ID)
	if got.UpdatedAt.Before(ticket.UpdatedAt) {
		t.Errorf("UpdatedAt regressed: %v -> %v", ticket.UpdatedAt, got.UpdatedAt)
	}
}
