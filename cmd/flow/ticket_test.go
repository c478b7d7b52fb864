package main

import (
	"testing"

	"github.com/spf13/cobra"

	"github.com/untoldecay/flowai/internal/ticketstore"
	"github.com/untoldecay/flowai/internal/types"
)

func newListFlagsCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "list"}
	cmd.Flags().String("status", "", "")
	cmd.Flags().String("priority", "", "")
	cmd.Flags().String("category", "", "")
	cmd.Flags().String("assignee", "", "")
	cmd.Flags().StringP("query", "q", "", "")
	return cmd
}

func TestTicketFilterFromFlags(t *testing.T) {
	cmd := newListFlagsCmd()
	if err := cmd.Flags().Set("status", "open"); err != nil {
		t.Fatalf("Set(status) failed: %v", err)
	}
	if err := cmd.Flags().Set("priority", "high"); err != nil {
		t.Fatalf("Set(priority) failed: %v", err)
	}
	if err := cmd.Flags().Set("category", "bug"); err != nil {
		t.Fatalf("Set(category) failed: %v", err)
	}
	if err := cmd.Flags().Set("assignee", "2"); err != nil {
		t.Fatalf("Set(assignee) failed: %v", err)
	}
	if err := cmd.Flags().Set("query", "crash"); err != nil {
		t.Fatalf("Set(query) failed: %v", err)
	}

	f := ticketFilterFromFlags(cmd)
	if f.Status != types.TicketOpen {
		t.Errorf("Status = %q, want %q", f.Status, types.TicketOpen)
	}
	if f.Priority != types.PriorityHigh {
		t.Errorf("Priority = %q, want %q", f.Priority, types.PriorityHigh)
	}
	if f.Category != types.CategoryBug {
		t.Errorf("Category = %q, want %q", f.Category, types.CategoryBug)
	}
	if f.Assignee != "2" {
		t.Errorf("Assignee = %q, want %q", f.Assignee, "2")
	}
	if f.Query != "crash" {
		t.Errorf("Query = %q, want %q", f.Query, "crash")
	}
}

func TestTicketFilterFromFlagsDefaultsMatchAll(t *testing.T) {
	f := ticketFilterFromFlags(newListFlagsCmd())
	if f != (ticketstore.Filter{}) {
		t.Errorf("unset flags should produce the zero filter, got %+v", f)
	}
}
