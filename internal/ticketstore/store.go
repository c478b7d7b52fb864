// Package ticketstore owns support tickets: their taxonomy, comments, and
// tags. Same single-writer shape as taskstore; every mutation settles in
// memory and is then mirrored wholesale to the ticket snapshot.
package ticketstore

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/untoldecay/flowai/internal/catalog"
	"github.com/untoldecay/flowai/internal/persist"
	"github.com/untoldecay/flowai/internal/types"
)

// Store holds ticket state.
type Store struct {
	mu      sync.Mutex
	tickets []types.Ticket

	path string // snapshot file; empty disables persistence

	now   func() time.Time
	newID func() string
}

// Open loads the ticket snapshot at path. On first run (no snapshot) the
// demo seed tickets are installed, matching what a fresh workspace shows.
func Open(path string) (*Store, error) {
	s := &Store{
		path:  path,
		now:   time.Now,
		newID: uuid.NewString,
	}

	if path == "" {
		return s, nil
	}

	snap, err := persist.LoadTickets(path)
	if err != nil {
		return nil, fmt.Errorf("opening ticket store: %w", err)
	}
	if snap != nil {
		s.tickets = snap.Tickets
		return s, nil
	}

	s.tickets = catalog.SeedTickets(s.now())
	if err := s.flush(); err != nil {
		return nil, err
	}
	return s, nil
}

// TicketDraft carries the fields for creating a ticket, optionally
// prefilled from a classifier analysis.
type TicketDraft struct {
	Title       string
	Description string
	Category    types.Category
	Priority    types.Priority
	Status      types.TicketStatus
	Customer    types.Customer
	Assignee    string
	Tags        []string
}

// CreateTicket appends a new ticket. Comments start empty; tags start
// empty unless the draft carries classification results.
func (s *Store) CreateTicket(draft TicketDraft) (types.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	t := types.Ticket{
		ID:          s.newID(),
		Title:       draft.Title,
		Description: draft.Description,
		Category:    draft.Category,
		Priority:    draft.Priority,
		Status:      draft.Status,
		Customer:    draft.Customer,
		Assignee:    draft.Assignee,
		Tags:        append([]string(nil), draft.Tags...),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if t.Category == "" {
		t.Category = types.CategoryOther
	}
	if t.Priority == "" {
		t.Priority = types.PriorityMedium
	}
	if t.Status == "" {
		t.Status = types.TicketOpen
	}

	s.tickets = append(s.tickets, t)
	return copyTicket(t), s.flush()
}

// UpdateTicket merges the set fields of patch and refreshes UpdatedAt.
// Unknown ids are a no-op, not an error.
func (s *Store) UpdateTicket(id string, patch types.TicketPatch) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := s.find(id)
	if t == nil {
		return false, nil
	}

	if patch.Title != nil {
		t.Title = *patch.Title
	}
	if patch.Description != nil {
		t.Description = *patch.Description
	}
	if patch.Category != nil {
		t.Category = *patch.Category
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
	if patch.Customer != nil {
		t.Customer = *patch.Customer
	}
	s.touch(t)
	return true, s.flush()
}

// DeleteTicket removes a ticket. Unknown ids are a no-op.
func (s *Store) DeleteTicket(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.tickets {
		if s.tickets[i].ID == id {
			s.tickets = append(s.tickets[:i], s.tickets[i+1:]...)
			return true, s.flush()
		}
	}
	return false, nil
}

// AddComment appends a comment to the ticket and refreshes its UpdatedAt.
// Comments are append-only: there is no edit or remove. No-op if the
// ticket is absent.
func (s *Store) AddComment(ticketID, content, author string, kind types.CommentKind) (types.Comment, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := s.find(ticketID)
	if t == nil {
		return types.Comment{}, false, nil
	}
	if kind == "" {
		kind = types.CommentInternal
	}

	c := types.Comment{
		ID:        s.newID(),
		Content:   content,
		Author:    author,
		Kind:      kind,
		CreatedAt: s.now(),
	}
	t.Comments = append(t.Comments, c)
	s.touch(t)
	return c, true, s.flush()
}

// AddTag adds a tag to the ticket's tag set. Idempotent: adding a tag the
// ticket already carries changes nothing.
func (s *Store) AddTag(ticketID, tag string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := s.find(ticketID)
	if t == nil {
		return false, nil
	}
	if t.HasTag(tag) {
		return true, nil
	}
	t.Tags = append(t.Tags, tag)
	return true, s.flush()
}

// RemoveTag removes a tag. Absent tags and absent tickets are no-ops.
func (s *Store) RemoveTag(ticketID, tag string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := s.find(ticketID)
	if t == nil {
		return false, nil
	}
	for i, have := range t.Tags {
		if have == tag {
			t.Tags = append(t.Tags[:i], t.Tags[i+1:]...)
			return true, s.flush()
		}
	}
	return true, nil
}

// Tickets returns a snapshot copy of all tickets.
func (s *Store) Tickets() []types.Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]types.Ticket, 0, len(s.tickets))
	for _, t := range s.tickets {
		out = append(out, copyTicket(t))
	}
	return out
}

// Ticket returns one ticket by id.
func (s *Store) Ticket(id string) (types.Ticket, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t := s.find(id); t != nil {
		return copyTicket(*t), true
	}
	return types.Ticket{}, false
}

// Filter selects tickets; zero-valued fields match everything.
type Filter struct {
	Status   types.TicketStatus
	Priority types.Priority
	Category types.Category
	Assignee string
	Query    string // case-insensitive substring over title and description
}

// Find returns tickets matching the filter, in creation order.
func (s *Store) Find(f Filter) []types.Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := strings.ToLower(f.Query)
	var out []types.Ticket
	for _, t := range s.tickets {
		if f.Status != "" && t.Status != f.Status {
			continue
		}
		if f.Priority != "" && t.Priority != f.Priority {
			continue
		}
		if f.Category != "" && t.Category != f.Category {
			continue
		}
		if f.Assignee != "" && t.Assignee != f.Assignee {
			continue
		}
		if query != "" &&
			!strings.Contains(strings.ToLower(t.Title), query) &&
			!strings.Contains(strings.ToLower(t.Description), query) {
			continue
		}
		out = append(out, copyTicket(t))
	}
	return out
}

// Stats reports the derived aggregate: open counts {open, in_progress},
// high-priority counts {high, urgent}.
func (s *Store) Stats() types.TicketStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	var stats types.TicketStats
	stats.Total = len(s.tickets)
	for _, t := range s.tickets {
		switch t.Status {
		case types.TicketOpen, types.TicketInProgress:
			stats.Open++
		case types.TicketResolved:
			stats.Resolved++
		}
		if t.Priority == types.PriorityHigh || t.Priority == types.PriorityUrgent {
			stats.HighPriority++
		}
	}
	return stats
}

// find returns a pointer into s.tickets. Caller holds s.mu.
func (s *Store) find(id string) *types.Ticket {
	for i := range s.tickets {
		if s.tickets[i].ID == id {
			return &s.tickets[i]
		}
	}
	return nil
}

// touch refreshes UpdatedAt without letting it regress. Caller holds s.mu.
func (s *Store) touch(t *types.Ticket) {
	if now := s.now(); now.After(t.UpdatedAt) {
		t.UpdatedAt = now
	}
}

// flush mirrors state to the snapshot file. Caller holds s.mu.
func (s *Store) flush() error {
	if s.path == "" {
		return nil
	}
	if err := persist.SaveTickets(s.path, &persist.TicketSnapshot{Tickets: s.tickets}); err != nil {
		return fmt.Errorf("persisting ticket store: %w", err)
	}
	return nil
}

func copyTicket(t types.Ticket) types.Ticket {
	out := t
	out.Tags = append([]string(nil), t.Tags...)
	out.Comments = append([]types.Comment(nil), t.Comments...)
	return out
}
