package persist

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gofrs/flock"

	"github.com/untoldecay/flowai/internal/types"
)

func TestLoadTasksMissingFileIsFirstRun(t *testing.T) {
	snap, err := LoadTasks(filepath.Join(t.TempDir(), "tasks.json"))
	if err != nil {
		t.Fatalf("LoadTasks failed: %v", err)
	}
	if snap != nil {
		t.Errorf("Expected nil snapshot for missing file, got %+v", snap)
	}
}

func TestTaskSnapshotRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.json")

	due := time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)
	in := &TaskSnapshot{
		Tasks: []types.Task{{
			ID:       "t1",
			Title:    "persist me",
			Priority: types.PriorityHigh,
			Status:   types.StatusInReview,
			DueDate:  &due,
			Steps:    []types.TaskStep{{ID: "s1", Title: "one", Completed: true}},
		}},
		InboxItems: []types.InboxItem{{ID: "i1", Content: "capture"}},
		ViewMode:   types.ViewList,
	}
	if err := SaveTasks(path, in); err != nil {
		t.Fatalf("SaveTasks failed: %v", err)
	}

	out, err := LoadTasks(path)
	if err != nil {
		t.Fatalf("LoadTasks failed: %v", err)
	}
	if out == nil {
		t.Fatal("Expected snapshot to load")
	}
	if out.Version != SchemaVersion {
		t.Errorf("Version = %d, want %d", out.Version, SchemaVersion)
	}
	if len(out.Tasks) != 1 || out.Tasks[0].Title != "persist me" {
		t.Errorf("Tasks lost: %+v", out.Tasks)
	}
	if out.Tasks[0].DueDate == nil || !out.Tasks[0].DueDate.Equal(due) {
		t.Errorf("DueDate lost: %v", out.Tasks[0].DueDate)
	}
	if out.ViewMode != types.ViewList {
		t.Errorf("ViewMode = %s, want list", out.ViewMode)
	}
}

func TestLoadRejectsUnknownVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tickets.json")
	if err := os.WriteFile(path, []byte(`{"version": 99, "tickets": []}`), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	_, err := LoadTickets(path)
	if err == nil {
		t.Fatal("Expected error for unknown schema version")
	}
	if !errors.Is(err, ErrUnknownVersion) {
		t.Errorf("Expected ErrUnknownVersion, got %v", err)
	}
}

func TestLoadRejectsCorruptJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	if _, err := LoadTasks(path); err == nil {
		t.Fatal("Expected parse error for corrupt snapshot")
	}
}

func TestSaveRewritesWholesale(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tickets.json")

	if err := SaveTickets(path, &TicketSnapshot{Tickets: []types.Ticket{{ID: "a"}, {ID: "b"}}}); err != nil {
		t.Fatalf("SaveTickets failed: %v", err)
	}
	if err := SaveTickets(path, &TicketSnapshot{Tickets: []types.Ticket{{ID: "c"}}}); err != nil {
		t.Fatalf("SaveTickets failed: %v", err)
	}

	out, err := LoadTickets(path)
	if err != nil {
		t.Fatalf("LoadTickets failed: %v", err)
	}
	if len(out.Tickets) != 1 || out.Tickets[0].ID != "c" {
		t.Errorf("Snapshot not rewritten wholesale: %+v", out.Tickets)
	}
}

func TestSaveLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tasks.json")

	if err := SaveTasks(path, &TaskSnapshot{}); err != nil {
		t.Fatalf("SaveTasks failed: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	for _, e := range entries {
		if strings.Contains(e.Name(), ".tmp-") {
			t.Errorf("Temp file left behind: %s", e.Name())
		}
	}
}

func TestSaveRespectsLockTimeout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.json")

	lock := flock.New(path + ".lock")
	locked, err := lock.TryLock()
	if err != nil || !locked {
		t.Fatalf("Could not take snapshot lock: locked=%v err=%v", locked, err)
	}
	defer func() { _ = lock.Unlock() }()

	old := LockTimeout
	LockTimeout = 200 * time.Millisecond
	defer func() { LockTimeout = old }()

	start := time.Now()
	err = SaveTasks(path, &TaskSnapshot{})
	if err == nil {
		t.Fatal("SaveTasks should fail while the lock is held")
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("SaveTasks waited %v, should give up near the %v timeout", elapsed, LockTimeout)
	}
}

func TestWatcherSeesSnapshotRewrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tasks.json")
	if err := SaveTasks(path, &TaskSnapshot{}); err != nil {
		t.Fatalf("SaveTasks failed: %v", err)
	}

	changed := make(chan struct{}, 1)
	w, err := NewWatcher(path, func() {
		select {
		case changed <- struct{}{}:
		default:
		}
	})
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w.Start(ctx)

	if err := SaveTasks(path, &TaskSnapshot{ViewMode: types.ViewList}); err != nil {
		t.Fatalf("SaveTasks failed: %v", err)
	}

	select {
	case <-changed:
	case <-time.After(10 * time.Second):
		t.Fatal("Watcher never reported the rewrite")
	}
}
