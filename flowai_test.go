package flowai

import (
	"context"
	"path/filepath"
	"testing"
)

func TestPublicAPIRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.json")

	store, err := OpenTaskStore(path)
	if err != nil {
		t.Fatalf("OpenTaskStore failed: %v", err)
	}

	item, err := store.AddInboxItem("urgent: payment webhook failing")
	if err != nil {
		t.Fatalf("AddInboxItem failed: %v", err)
	}

	suggestion, err := NewRuleAnalyzer().SuggestTask(context.Background(), item.Content)
	if err != nil {
		t.Fatalf("SuggestTask failed: %v", err)
	}
	if suggestion.Priority != PriorityHigh {
		t.Errorf("expected high priority suggestion, got %s", suggestion.Priority)
	}

	task, err := store.CreateTaskFromInbox(TaskDraft{
		InboxID:  item.ID,
		Title:    item.Content,
		Priority: suggestion.Priority,
	})
	if err != nil {
		t.Fatalf("CreateTaskFromInbox failed: %v", err)
	}
	if task.Status != StatusTodo {
		t.Errorf("new task status = %s, want %s", task.Status, StatusTodo)
	}

	// Reopen from disk: the snapshot carries everything.
	reopened, err := OpenTaskStore(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	if _, ok := reopened.Task(task.ID); !ok {
		t.Error("task missing after reopen")
	}
	if len(reopened.InboxItems()) != 0 {
		t.Error("promoted inbox item survived reopen")
	}
}

func TestNewChatStoreSeeded(t *testing.T) {
	store := NewChatStore("You")
	if len(store.Channels()) == 0 {
		t.Fatal("expected seeded channels")
	}
	if store.ActiveChannel() == "" {
		t.Error("expected an active channel")
	}
}
