// Package taskstore owns the inbox and task board state: captured inbox
// items, tasks, and the board view preference.
//
// The store is a single-writer aggregate behind a mutex. Every mutation
// produces a settled in-memory state and then mirrors it wholesale to the
// snapshot file before returning, so the durable record never lags by more
// than the call in flight.
package taskstore

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/untoldecay/flowai/internal/persist"
	"github.com/untoldecay/flowai/internal/types"
)

// Store holds task state plus the read-only catalogs resolved at open.
type Store struct {
	mu       sync.Mutex
	tasks    []types.Task
	inbox    []types.InboxItem
	viewMode types.ViewMode

	members   []types.TeamMember
	templates []types.SOPTemplate

	path string // snapshot file; empty disables persistence

	now   func() time.Time
	newID func() string
}

// Open loads the task snapshot at path (empty path keeps the store purely
// in-memory, used by tests) and attaches the static catalogs.
func Open(path string, members []types.TeamMember, templates []types.SOPTemplate) (*Store, error) {
	s := &Store{
		viewMode:  types.ViewKanban,
		members:   members,
		templates: templates,
		path:      path,
		now:       time.Now,
		newID:     uuid.NewString,
	}

	if path != "" {
		snap, err := persist.LoadTasks(path)
		if err != nil {
			return nil, fmt.Errorf("opening task store: %w", err)
		}
		if snap != nil {
			s.tasks = snap.Tasks
			s.inbox = snap.InboxItems
			if snap.ViewMode != "" {
				s.viewMode = snap.ViewMode
			}
		}
	}
	return s, nil
}

// TaskDraft carries the fields for promoting an inbox item into a task.
type TaskDraft struct {
	InboxID       string
	Title         string
	Description   string
	Priority      types.Priority
	Assignee      string
	DueDate       *time.Time
	SOPTemplateID string
	Steps         []types.TaskStep
}

// AddInboxItem captures free text into the inbox. Content validation is a
// caller concern; the store records what it is given.
func (s *Store) AddInboxItem(content string) (types.InboxItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item := types.InboxItem{
		ID:        s.newID(),
		Content:   content,
		CreatedAt: s.now(),
	}
	s.inbox = append(s.inbox, item)
	return item, s.flush()
}

// RemoveInboxItem deletes a capture. Unknown ids are a no-op, not an error.
func (s *Store) RemoveInboxItem(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, item := range s.inbox {
		if item.ID == id {
			s.inbox = append(s.inbox[:i], s.inbox[i+1:]...)
			return true, s.flush()
		}
	}
	return false, nil
}

// CreateTaskFromInbox promotes a capture into a task in one state
// transition: the task appears and the source item disappears together, in
// the same snapshot. The source capture is preserved on the task for audit
// display. A draft whose InboxID matches nothing still creates the task,
// with no source reference.
func (s *Store) CreateTaskFromInbox(draft TaskDraft) (types.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	task := types.Task{
		ID:            s.newID(),
		Title:         draft.Title,
		Description:   draft.Description,
		Priority:      draft.Priority,
		Status:        types.StatusTodo,
		Assignee:      draft.Assignee,
		DueDate:       draft.DueDate,
		SOPTemplateID: draft.SOPTemplateID,
		Steps:         draft.Steps,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if task.Priority == "" {
		task.Priority = types.PriorityMedium
	}

	for i, item := range s.inbox {
		if item.ID == draft.InboxID {
			source := item
			task.SourceInbox = &source
			s.inbox = append(s.inbox[:i], s.inbox[i+1:]...)
			break
		}
	}

	s.tasks = append(s.tasks, task)
	return copyTask(task), s.flush()
}

// UpdateTask merges the set fields of patch into the task and refreshes
// UpdatedAt. Unknown ids are a no-op.
func (s *Store) UpdateTask(id string, patch types.TaskPatch) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.tasks {
		if s.tasks[i].ID != id {
			continue
		}
		t := &s.tasks[i]
		if patch.Title != nil {
			t.Title = *patch.Title
		}
		if patch.Description != nil {
			t.Description = *patch.Description
		}
		if patch.Priority != nil {
			t.Priority = *patch.Priority
		}
		if patch.Status != nil {
			t.Status = *patch.Status
		}
		if patch.Assignee != nil {
			t.Assignee = *patch.Assignee
		}
		if patch.DueDate != nil {
			if patch.DueDate.IsZero() {
				t.DueDate = nil
			} else {
				due := *patch.DueDate
				t.DueDate = &due
			}
		}
		if patch.Steps != nil {
			t.Steps = append([]types.TaskStep(nil), (*patch.Steps)...)
		}
		// UpdatedAt never regresses, even under clock skew.
		if now := s.now(); now.After(t.UpdatedAt) {
			t.UpdatedAt = now
		}
		return true, s.flush()
	}
	return false, nil
}

// DeleteTask removes a task. Unknown ids are a no-op.
func (s *Store) DeleteTask(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.tasks {
		if s.tasks[i].ID == id {
			s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
			return true, s.flush()
		}
	}
	return false, nil
}

// SetViewMode stores the board presentation preference.
func (s *Store) SetViewMode(mode types.ViewMode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.viewMode = mode
	return s.flush()
}

// ViewMode returns the stored presentation preference.
func (s *Store) ViewMode() types.ViewMode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewMode
}

// Tasks returns a snapshot copy of all tasks. Callers never alias store
// state.
func (s *Store) Tasks() []types.Task {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]types.Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		out = append(out, copyTask(t))
	}
	return out
}

// Task returns one task by id.
func (s *Store) Task(id string) (types.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, t := range s.tasks {
		if t.ID == id {
			return copyTask(t), true
		}
	}
	return types.Task{}, false
}

// InboxItems returns a snapshot copy of the inbox, in capture order.
func (s *Store) InboxItems() []types.InboxItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]types.InboxItem(nil), s.inbox...)
}

// Members returns the read-only roster the store was opened with.
func (s *Store) Members() []types.TeamMember {
	return append([]types.TeamMember(nil), s.members...)
}

// Templates returns the SOP template catalog the store was opened with.
func (s *Store) Templates() []types.SOPTemplate {
	return append([]types.SOPTemplate(nil), s.templates...)
}

// StatusCounts reports how many tasks sit in each board column.
func (s *Store) StatusCounts() map[types.TaskStatus]int {
	s.mu.Lock()
	defer s.mu.Unlock()

	counts := make(map[types.TaskStatus]int)
	for _, t := range s.tasks {
		counts[t.Status]++
	}
	return counts
}

// flush mirrors state to the snapshot file. Caller holds s.mu.
func (s *Store) flush() error {
	if s.path == "" {
		return nil
	}
	snap := &persist.TaskSnapshot{
		Tasks:      s.tasks,
		InboxItems: s.inbox,
		ViewMode:   s.viewMode,
	}
	if err := persist.SaveTasks(s.path, snap); err != nil {
		return fmt.Errorf("persisting task store: %w", err)
	}
	return nil
}

func copyTask(t types.Task) types.Task {
	out := t
	out.Steps = append([]types.TaskStep(nil), t.Steps...)
	if t.DueDate != nil {
		due := *t.DueDate
		out.DueDate = &due
	}
	if t.SourceInbox != nil {
		src := *t.SourceInbox
		out.SourceInbox = &src
	}
	return out
}
