// Package types defines the core entities shared by the flowai stores.
package types

import "time"

// Priority is a ticket/task priority level.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	// PriorityUrgent is only produced by the ticket taxonomy; tasks use
	// low/medium/high.
	PriorityUrgent Priority = "urgent"
)

// TaskStatus is the workflow column a task sits in. Transitions are
// unconstrained assignments: status is advisory categorization, not a
// guarded state machine.
type TaskStatus string

const (
	StatusTodo       TaskStatus = "todo"
	StatusInProgress TaskStatus = "in_progress"
	StatusInReview   TaskStatus = "in_review"
	StatusDone       TaskStatus = "done"
)

// TicketStatus is a support ticket lifecycle state.
type TicketStatus string

const (
	TicketOpen       TicketStatus = "open"
	TicketInProgress TicketStatus = "in_progress"
	TicketWaiting    TicketStatus = "waiting"
	TicketResolved   TicketStatus = "resolved"
	TicketClosed     TicketStatus = "closed"
)

// Category is a support ticket category.
type Category string

const (
	CategoryBug     Category = "bug"
	CategoryFeature Category = "feature"
	CategorySupport Category = "support"
	CategoryBilling Category = "billing"
	CategoryOther   Category = "other"
)

// ViewMode selects how the task board is presented.
type ViewMode string

const (
	ViewKanban   ViewMode = "kanban"
	ViewList     ViewMode = "list"
	ViewCalendar ViewMode = "calendar"
)

// CommentKind distinguishes internal notes from customer-visible replies.
type CommentKind string

const (
	CommentInternal CommentKind = "internal"
	CommentCustomer CommentKind = "customer"
)

// TeamMember is one entry in the static roster. The roster is read-only:
// no CRUD is exposed by any store.
type TeamMember struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// SOPTemplate is a standard-operating-procedure checklist referenced by
// tasks and suggested by the classifier.
type SOPTemplate struct {
	ID    string   `json:"id"`
	Name  string   `json:"name"`
	Steps []string `json:"steps"`
}

// InboxItem is a free-text capture awaiting triage. Its only mutations are
// deletion and promotion into a task.
type InboxItem struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// TaskStep is one checklist entry on a task, usually instantiated from an
// SOP template.
type TaskStep struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
}

// Task is a unit of work on the board.
type Task struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	Description   string     `json:"description,omitempty"`
	Priority      Priority   `json:"priority"`
	Status        TaskStatus `json:"status"`
	Assignee      string     `json:"assignee,omitempty"` // TeamMember.ID
	DueDate       *time.Time `json:"due_date,omitempty"`
	SOPTemplateID string     `json:"sop_template_id,omitempty"`
	Steps         []TaskStep `json:"steps,omitempty"`
	// SourceInbox preserves the inbox capture this task was promoted from,
	// for audit display. Nil for tasks created directly.
	SourceInbox *InboxItem `json:"source_inbox,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// TaskPatch is a partial update to a task. Nil fields are left unchanged,
// so every updatable field is enumerated at compile time.
type TaskPatch struct {
	Title       *string
	Description *string
	Priority    *Priority
	Status      *TaskStatus
	Assignee    *string // set to "" to unassign
	DueDate     *time.Time
	Steps       *[]TaskStep // replaces the step list wholesale
}

// Customer identifies who filed a support ticket.
type Customer struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Company string `json:"company,omitempty"`
}

// Comment is an append-only note on a ticket. Comments are never edited or
// removed.
type Comment struct {
	ID        string      `json:"id"`
	Content   string      `json:"content"`
	Author    string      `json:"author"` // TeamMember.ID
	Kind      CommentKind `json:"kind"`
	CreatedAt time.Time   `json:"created_at"`
}

// Ticket is a customer support request.
type Ticket struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	Category    Category     `json:"category"`
	Priority    Priority     `json:"priority"`
	Status      TicketStatus `json:"status"`
	Customer    Customer     `json:"customer"`
	Assignee    string       `json:"assignee,omitempty"` // TeamMember.ID
	Tags        []string     `json:"tags,omitempty"`
	Comments    []Comment    `json:"comments,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// HasTag reports whether the ticket carries the given tag.
func (t *Ticket) HasTag(tag string) bool {
	for _, have := range t.Tags {
		if have == tag {
			return true
		}
	}
	return false
}

// TicketPatch is a partial update to a ticket. Nil fields are left
// unchanged.
type TicketPatch struct {
	Title       *string
	Description *string
	Category    *Category
	Priority    *Priority
	Status      *TicketStatus
	Assignee    *string // set to "" to unassign
	Customer    *Customer
}

// TicketStats is the derived aggregate reported by the ticket store.
// Open counts tickets in {open, in_progress}; HighPriority counts
// priorities in {high, urgent}.
type TicketStats struct {
	Total        int `json:"total"`
	Open         int `json:"open"`
	Resolved     int `json:"resolved"`
	HighPriority int `json:"high_priority"`
}

// ChannelType distinguishes shared channels from direct conversations.
type ChannelType string

const (
	ChannelShared ChannelType = "channel"
	ChannelDirect ChannelType = "direct"
)

// Channel is a chat room. Channels are never deleted.
type Channel struct {
	ID      string      `json:"id"`
	Name    string      `json:"name"`
	Type    ChannelType `json:"type"`
	Members []string    `json:"members"` // TeamMember.ID
}

// MessageKind is the payload type of a chat message.
type MessageKind string

const MessageText MessageKind = "text"

// Message is one chat message. Messages are append-only; the read flag is
// the only mutation, set wholesale when a channel becomes active.
type Message struct {
	ID        string      `json:"id"`
	Content   string      `json:"content"`
	Sender    string      `json:"sender"` // TeamMember.ID
	Kind      MessageKind `json:"kind"`
	Read      bool        `json:"read,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// CategoryInfo, PriorityInfo and StatusInfo carry the display taxonomy for
// tickets: stable id, human name, and the hex color the UI renders with.
type CategoryInfo struct {
	ID    Category `json:"id"`
	Name  string   `json:"name"`
	Color string   `json:"color"`
}

type PriorityInfo struct {
	ID    Priority `json:"id"`
	Name  string   `json:"name"`
	Color string   `json:"color"`
}

type StatusInfo struct {
	ID    TicketStatus `json:"id"`
	Name  string       `json:"name"`
	Color string       `json:"color"`
}
