// Package flowai provides a minimal public API for building on flow's
// stores programmatically.
//
// Most automation should drive the flow CLI with --json. This package
// exports only the essential types and constructors for Go programs that
// want to use the stores directly, e.g. bots that file tickets or custom
// board frontends.
package flowai

import (
	"github.com/untoldecay/flowai/internal/catalog"
	"github.com/untoldecay/flowai/internal/chatstore"
	"github.com/untoldecay/flowai/internal/classify"
	"github.com/untoldecay/flowai/internal/taskstore"
	"github.com/untoldecay/flowai/internal/ticketstore"
	"github.com/untoldecay/flowai/internal/types"
)

// TaskStore owns tasks, inbox items, and the board view mode.
type TaskStore = taskstore.Store

// TaskDraft carries the fields for promoting an inbox item into a task.
type TaskDraft = taskstore.TaskDraft

// TicketStore owns support tickets and their taxonomies.
type TicketStore = ticketstore.Store

// TicketDraft carries the fields for creating a ticket.
type TicketDraft = ticketstore.TicketDraft

// TicketFilter selects tickets by status, priority, category, assignee,
// or substring query.
type TicketFilter = ticketstore.Filter

// ChatStore owns channels, messages, presence, and typing state.
type ChatStore = chatstore.Store

// Analyzer classifies free text into task and ticket proposals.
type Analyzer = classify.Analyzer

// OpenTaskStore opens (creating on first run) the task snapshot at path
// with the default roster and SOP templates.
func OpenTaskStore(path string) (*TaskStore, error) {
	return taskstore.Open(path, catalog.TeamMembers(), catalog.SOPTemplates())
}

// OpenTicketStore opens (seeding on first run) the ticket snapshot at path.
func OpenTicketStore(path string) (*TicketStore, error) {
	return ticketstore.Open(path)
}

// NewChatStore creates an in-memory chat store seeded with the default
// channels. currentUser is the sender for outgoing messages.
func NewChatStore(currentUser string) *ChatStore {
	return chatstore.New(currentUser)
}

// NewRuleAnalyzer returns the keyword-heuristic classifier with the
// default SOP templates.
func NewRuleAnalyzer() Analyzer {
	return classify.NewRuleAnalyzer(catalog.SOPTemplates())
}

// Core types from internal/types
type (
	Task        = types.Task
	TaskPatch   = types.TaskPatch
	TaskStep    = types.TaskStep
	InboxItem   = types.InboxItem
	Ticket      = types.Ticket
	TicketPatch = types.TicketPatch
	TicketStats = types.TicketStats
	Comment     = types.Comment
	Customer    = types.Customer
	Channel     = types.Channel
	Message     = types.Message
	TeamMember  = types.TeamMember
	SOPTemplate = types.SOPTemplate
	Priority    = types.Priority
	TaskStatus  = types.TaskStatus
	ViewMode    = types.ViewMode
)

// Priority constants
const (
	PriorityLow    = types.PriorityLow
	PriorityMedium = types.PriorityMedium
	PriorityHigh   = types.PriorityHigh
	PriorityUrgent = types.PriorityUrgent
)

// TaskStatus constants
const (
	StatusTodo       = types.StatusTodo
	StatusInProgress = types.StatusInProgress
	StatusInReview   = types.StatusInReview
	StatusDone       = types.StatusDone
)

// TicketStatus constants
const (
	TicketOpen       = types.TicketOpen
	TicketInProgress = types.TicketInProgress
	TicketWaiting    = types.TicketWaiting
	TicketResolved   = types.TicketResolved
	TicketClosed     = types.TicketClosed
)

// ViewMode constants
const (
	ViewKanban   = types.ViewKanban
	ViewList     = types.ViewList
	ViewCalendar = types.ViewCalendar
)
