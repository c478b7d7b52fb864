package index

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/untoldecay/flowai/internal/types"
)

func openTestIndex(t *testing.T) *Index {
	t.Helper()
	ix, err := Open(context.Background(), filepath.Join(t.TempDir(), "index.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { ix.Close() })
	return ix
}

func testDocs() ([]types.Task, []types.Ticket) {
	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	tasks := []types.Task{
		{ID: "t1", Title: "Fix login crash", Description: "Server returns 500 on login", Status: types.StatusTodo, Priority: types.PriorityHigh, UpdatedAt: base},
		{ID: "t2", Title: "Write onboarding docs", Status: types.StatusDone, Priority: types.PriorityLow, UpdatedAt: base.Add(time.Hour)},
	}
	tickets := []types.Ticket{
		{ID: "k1", Title: "Billing page broken", Description: "Invoice totals wrong", Status: types.TicketOpen, Priority: types.PriorityUrgent, Tags: []string{"billing"}, Customer: types.Customer{Name: "Acme Corp"}, UpdatedAt: base.Add(2 * time.Hour)},
	}
	return tasks, tickets
}

func TestSearchMatchesTitleAndBody(t *testing.T) {
	ix := openTestIndex(t)
	tasks, tickets := testDocs()
	if err := ix.Rebuild(context.Background(), tasks, tickets); err != nil {
		t.Fatalf("Rebuild failed: %v", err)
	}

	results, err := ix.Search(context.Background(), "login", "", 0)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].ID != "t1" || results[0].Kind != "task" {
		t.Errorf("wrong result: %+v", results[0])
	}

	// Body-only match.
	results, err = ix.Search(context.Background(), "invoice", "", 0)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != 1 || results[0].ID != "k1" {
		t.Fatalf("expected ticket k1, got %+v", results)
	}
	if results[0].Snippet == "" {
		t.Error("expected a snippet for body match")
	}
}

func TestSearchIsCaseInsensitive(t *testing.T) {
	ix := openTestIndex(t)
	tasks, tickets := testDocs()
	if err := ix.Rebuild(context.Background(), tasks, tickets); err != nil {
		t.Fatalf("Rebuild failed: %v", err)
	}

	results, err := ix.Search(context.Background(), "BILLING", "", 0)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != 1 || results[0].ID != "k1" {
		t.Fatalf("case-insensitive search failed: %+v", results)
	}
}

func TestSearchKindFilter(t *testing.T) {
	ix := openTestIndex(t)
	tasks, tickets := testDocs()
	if err := ix.Rebuild(context.Background(), tasks, tickets); err != nil {
		t.Fatalf("Rebuild failed: %v", err)
	}

	// "o" appears in every document; the filter should cut it to tasks.
	results, err := ix.Search(context.Background(), "o", "task", 0)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	for _, r := range results {
		if r.Kind != "task" {
			t.Errorf("kind filter leaked %s result %s", r.Kind, r.ID)
		}
	}
	if len(results) != 2 {
		t.Errorf("expected 2 task results, got %d", len(results))
	}
}

func TestSearchTreatsMetacharactersLiterally(t *testing.T) {
	ix := openTestIndex(t)
	tasks := []types.Task{
		{ID: "t1", Title: "100% done", Status: types.StatusDone, Priority: types.PriorityLow, UpdatedAt: time.Now()},
		{ID: "t2", Title: "unrelated", Status: types.StatusTodo, Priority: types.PriorityLow, UpdatedAt: time.Now()},
	}
	if err := ix.Rebuild(context.Background(), tasks, nil); err != nil {
		t.Fatalf("Rebuild failed: %v", err)
	}

	results, err := ix.Search(context.Background(), "100%", "", 0)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != 1 || results[0].ID != "t1" {
		t.Fatalf("expected literal %% match only, got %+v", results)
	}
}

func TestRebuildReplacesContents(t *testing.T) {
	ix := openTestIndex(t)
	tasks, tickets := testDocs()
	if err := ix.Rebuild(context.Background(), tasks, tickets); err != nil {
		t.Fatalf("Rebuild failed: %v", err)
	}

	// Second rebuild with a subset must drop the removed documents.
	if err := ix.Rebuild(context.Background(), tasks[:1], nil); err != nil {
		t.Fatalf("second Rebuild failed: %v", err)
	}
	results, err := ix.Search(context.Background(), "billing", "", 0)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("stale documents survived rebuild: %+v", results)
	}
}

func TestSearchOrdersByRecency(t *testing.T) {
	ix := openTestIndex(t)
	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	tasks := []types.Task{
		{ID: "old", Title: "deploy checklist", Status: types.StatusTodo, Priority: types.PriorityLow, UpdatedAt: base},
		{ID: "new", Title: "deploy runbook", Status: types.StatusTodo, Priority: types.PriorityLow, UpdatedAt: base.Add(time.Hour)},
	}
	if err := ix.Rebuild(context.Background(), tasks, nil); err != nil {
		t.Fatalf("Rebuild failed: %v", err)
	}

	results, err := ix.Search(context.Background(), "deploy", "", 0)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].ID != "new" {
		t.Errorf("expected most recently updated first, got %s", results[0].ID)
	}
}
