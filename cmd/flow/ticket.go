package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/untoldecay/flowai/internal/catalog"
	"github.com/untoldecay/flowai/internal/ticketstore"
	"github.com/untoldecay/flowai/internal/types"
	"github.com/untoldecay/flowai/internal/ui"
)

var ticketCmd = &cobra.Command{
	Use:     "ticket",
	GroupID: "tickets",
	Short:   "Manage support tickets",
}

var ticketNewCmd = &cobra.Command{
	Use:   "new",
	Short: "File a new support ticket",
	Long: `File a support ticket. The classifier proposes category, priority,
and tags from the title and description; override them with flags.

  flow ticket new --title "App crashes on login" --description "..." --customer "Jane Doe" --email jane@example.com
  flow ticket new    # interactive form`,
	Run: func(cmd *cobra.Command, args []string) {
		useAI, _ := cmd.Flags().GetBool("ai")
		title, _ := cmd.Flags().GetString("title")
		description, _ := cmd.Flags().GetString("description")
		customerName, _ := cmd.Flags().GetString("customer")
		customerEmail, _ := cmd.Flags().GetString("email")
		company, _ := cmd.Flags().GetString("company")
		categoryFlag, _ := cmd.Flags().GetString("category")
		priorityFlag, _ := cmd.Flags().GetString("priority")
		assignee, _ := cmd.Flags().GetString("assignee")

		if title == "" {
			if !ui.IsTerminal() {
				FatalErrorRespectJSON("--title is required in non-interactive mode")
			}
			if err := runTicketForm(&title, &description, &customerName, &customerEmail, &company); err != nil {
				FatalErrorRespectJSON("%v", err)
			}
		}

		store, dataDir := openTicketStore()

		analysis, err := newAnalyzer(useAI, catalog.SOPTemplates()).AnalyzeTicket(context.Background(), title, description)
		if err != nil {
			FatalErrorRespectJSON("classifying ticket: %v", err)
		}

		draft := ticketstore.TicketDraft{
			Title:       title,
			Description: description,
			Category:    analysis.Category,
			Priority:    analysis.Priority,
			Customer:    types.Customer{Name: customerName, Email: customerEmail, Company: company},
			Assignee:    assignee,
			Tags:        analysis.Tags,
		}
		if categoryFlag != "" {
			draft.Category = types.Category(categoryFlag)
		}
		if priorityFlag != "" {
			draft.Priority = types.Priority(priorityFlag)
		}

		ticket, err := store.CreateTicket(draft)
		if err != nil {
			FatalErrorRespectJSON("creating ticket: %v", err)
		}
		refreshIndex(context.Background(), dataDir)

		if jsonOutput {
			outputJSON(ticket)
			return
		}
		fmt.Printf("%s Filed ticket %s: %s\n", ui.CheckMark(), ui.RenderMuted("["+ticket.ID+"]"), ticket.Title)
		fmt.Printf("  %s / %s", string(ticket.Category), ui.RenderPriority(ticket.Priority))
		if len(ticket.Tags) > 0 {
			fmt.Printf(" · tags: %s", strings.Join(ticket.Tags, ", "))
		}
		fmt.Println()
	},
}

var ticketListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tickets",
	Run: func(cmd *cobra.Command, args []string) {
		f := ticketFilterFromFlags(cmd)

		store, _ := openTicketStore()
		tickets := store.Find(f)

		if jsonOutput {
			outputJSON(tickets)
			return
		}
		if len(tickets) == 0 {
			fmt.Println("No tickets match.")
			return
		}

		tbl := ui.NewListTable(ui.Width(), "ID", "Title", "Status", "Priority", "Category", "Customer")
		for _, t := range tickets {
			tbl.Row(shortID(t.ID), t.Title, string(t.Status), string(t.Priority), string(t.Category), t.Customer.Name)
		}
		fmt.Println(tbl.String())
	},
}

var ticketShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a ticket with its comment thread",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		store, _ := openTicketStore()
		ticket, found := findTicket(store, args[0])
		if !found {
			FatalErrorRespectJSON("no ticket %s", args[0])
		}

		if jsonOutput {
			outputJSON(ticket)
			return
		}
		fmt.Print(ui.RenderTicketDetail(ticket, memberName, ui.Width()))
	},
}

var ticketUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update ticket fields",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		store, dataDir := openTicketStore()
		ticket, found := findTicket(store, args[0])
		if !found {
			FatalErrorRespectJSON("no ticket %s", args[0])
		}

		var patch types.TicketPatch
		if cmd.Flags().Changed("title") {
			v, _ := cmd.Flags().GetString("title")
			patch.Title = &v
		}
		if cmd.Flags().Changed("description") {
			v, _ := cmd.Flags().GetString("description")
			patch.Description = &v
		}
		if cmd.Flags().Changed("category") {
			v, _ := cmd.Flags().GetString("category")
			c := types.Category(v)
			patch.Category = &c
		}
		if cmd.Flags().Changed("priority") {
			v, _ := cmd.Flags().GetString("priority")
			p := types.Priority(v)
			patch.Priority = &p
		}
		if cmd.Flags().Changed("status") {
			v, _ := cmd.Flags().GetString("status")
			s := types.TicketStatus(v)
			patch.Status = &s
		}
		if cmd.Flags().Changed("assignee") {
			v, _ := cmd.Flags().GetString("assignee")
			patch.Assignee = &v
		}

		updated, err := store.UpdateTicket(ticket.ID, patch)
		if err != nil {
			FatalErrorRespectJSON("updating ticket: %v", err)
		}
		refreshIndex(context.Background(), dataDir)

		if jsonOutput {
			result, _ := store.Ticket(ticket.ID)
			outputJSON(map[string]interface{}{"updated": updated, "ticket": result})
			return
		}
		fmt.Printf("%s Updated %s\n", ui.CheckMark(), shortID(ticket.ID))
	},
}

var ticketDeleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Aliases: []string{"rm"},
	Short:   "Delete a ticket",
	Args:    cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		force, _ := cmd.Flags().GetBool("force")
		store, dataDir := openTicketStore()
		ticket, found := findTicket(store, args[0])
		if !found {
			FatalErrorRespectJSON("no ticket %s", args[0])
		}

		if !force && !jsonOutput {
			if !ui.PromptYesNo(fmt.Sprintf("Delete ticket %q?", ticket.Title), false) {
				fmt.Println("Cancelled.")
				return
			}
		}

		deleted, err := store.DeleteTicket(ticket.ID)
		if err != nil {
			FatalErrorRespectJSON("deleting ticket: %v", err)
		}
		refreshIndex(context.Background(), dataDir)

		if jsonOutput {
			outputJSON(map[string]interface{}{"id": ticket.ID, "deleted": deleted})
			return
		}
		fmt.Printf("%s Deleted %s\n", ui.CheckMark(), shortID(ticket.ID))
	},
}

var ticketCommentCmd = &cobra.Command{
	Use:   "comment <id> <text>...",
	Short: "Add a comment to a ticket",
	Long: `Append a comment. Comments default to internal notes; --customer
marks a customer-visible reply.`,
	Args: cobra.MinimumNArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		customer, _ := cmd.Flags().GetBool("customer")

		store, _ := openTicketStore()
		ticket, found := findTicket(store, args[0])
		if !found {
			FatalErrorRespectJSON("no ticket %s", args[0])
		}

		kind := types.CommentInternal
		if customer {
			kind = types.CommentCustomer
		}
		content := strings.Join(args[1:], " ")

		comment, ok, err := store.AddComment(ticket.ID, content, actor, kind)
		if err != nil {
			FatalErrorRespectJSON("adding comment: %v", err)
		}
		if !ok {
			FatalErrorRespectJSON("no ticket %s", args[0])
		}

		if jsonOutput {
			outputJSON(comment)
			return
		}
		fmt.Printf("%s Commented on %s\n", ui.CheckMark(), shortID(ticket.ID))
	},
}

var ticketTagCmd = &cobra.Command{
	Use:   "tag <id> <tag>",
	Short: "Add a tag to a ticket",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		store, dataDir := openTicketStore()
		ticket, found := findTicket(store, args[0])
		if !found {
			FatalErrorRespectJSON("no ticket %s", args[0])
		}

		if _, err := store.AddTag(ticket.ID, args[1]); err != nil {
			FatalErrorRespectJSON("tagging ticket: %v", err)
		}
		refreshIndex(context.Background(), dataDir)

		if jsonOutput {
			result, _ := store.Ticket(ticket.ID)
			outputJSON(result)
			return
		}
		fmt.Printf("%s Tagged %s with %q\n", ui.CheckMark(), shortID(ticket.ID), args[1])
	},
}

var ticketUntagCmd = &cobra.Command{
	Use:   "untag <id> <tag>",
	Short: "Remove a tag from a ticket",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		store, dataDir := openTicketStore()
		ticket, found := findTicket(store, args[0])
		if !found {
			FatalErrorRespectJSON("no ticket %s", args[0])
		}

		removed, err := store.RemoveTag(ticket.ID, args[1])
		if err != nil {
			FatalErrorRespectJSON("untagging ticket: %v", err)
		}
		refreshIndex(context.Background(), dataDir)

		if jsonOutput {
			result, _ := store.Ticket(ticket.ID)
			outputJSON(map[string]interface{}{"removed": removed, "ticket": result})
			return
		}
		if !removed {
			fmt.Printf("Ticket %s has no tag %q\n", shortID(ticket.ID), args[1])
			return
		}
		fmt.Printf("%s Untagged %q from %s\n", ui.CheckMark(), args[1], shortID(ticket.ID))
	},
}

var ticketStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show ticket queue statistics",
	Run: func(cmd *cobra.Command, args []string) {
		store, _ := openTicketStore()
		stats := store.Stats()

		if jsonOutput {
			outputJSON(stats)
			return
		}
		fmt.Printf("Total:         %d\n", stats.Total)
		fmt.Printf("Open:          %d\n", stats.Open)
		fmt.Printf("Resolved:      %d\n", stats.Resolved)
		fmt.Printf("High priority: %d\n", stats.HighPriority)
	},
}

var ticketAnalyzeCmd = &cobra.Command{
	Use:   "analyze <id>",
	Short: "Re-run classification on a ticket",
	Long: `Re-run the classifier against a ticket's current title and
description. Prints the proposal; --apply writes category and priority
back and adds any new tags.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		useAI, _ := cmd.Flags().GetBool("ai")
		apply, _ := cmd.Flags().GetBool("apply")

		store, dataDir := openTicketStore()
		ticket, found := findTicket(store, args[0])
		if !found {
			FatalErrorRespectJSON("no ticket %s", args[0])
		}

		analysis, err := newAnalyzer(useAI, catalog.SOPTemplates()).AnalyzeTicket(
			context.Background(), ticket.Title, ticket.Description)
		if err != nil {
			FatalErrorRespectJSON("classifying ticket: %v", err)
		}

		if apply {
			patch := types.TicketPatch{Category: &analysis.Category, Priority: &analysis.Priority}
			if _, err := store.UpdateTicket(ticket.ID, patch); err != nil {
				FatalErrorRespectJSON("applying analysis: %v", err)
			}
			for _, tag := range analysis.Tags {
				if _, err := store.AddTag(ticket.ID, tag); err != nil {
					FatalErrorRespectJSON("applying tag %q: %v", tag, err)
				}
			}
			refreshIndex(context.Background(), dataDir)
		}

		if jsonOutput {
			outputJSON(map[string]interface{}{"analysis": analysis, "applied": apply})
			return
		}
		fmt.Printf("Category: %s\nPriority: %s\n", analysis.Category, ui.RenderPriority(analysis.Priority))
		if len(analysis.Tags) > 0 {
			fmt.Printf("Tags:     %s\n", strings.Join(analysis.Tags, ", "))
		}
		if apply {
			fmt.Printf("%s Applied to %s\n", ui.CheckMark(), shortID(ticket.ID))
		}
	},
}

// ticketFilterFromFlags builds a store filter from the list flags. Unset
// flags leave the zero value, which the store treats as match-all.
func ticketFilterFromFlags(cmd *cobra.Command) ticketstore.Filter {
	var f ticketstore.Filter
	if v, _ := cmd.Flags().GetString("status"); v != "" {
		f.Status = types.TicketStatus(v)
	}
	if v, _ := cmd.Flags().GetString("priority"); v != "" {
		f.Priority = types.Priority(v)
	}
	if v, _ := cmd.Flags().GetString("category"); v != "" {
		f.Category = types.Category(v)
	}
	f.Assignee, _ = cmd.Flags().GetString("assignee")
	f.Query, _ = cmd.Flags().GetString("query")
	return f
}

// findTicket resolves a ticket id, accepting unambiguous prefixes.
func findTicket(store *ticketstore.Store, id string) (types.Ticket, bool) {
	if t, ok := store.Ticket(id); ok {
		return t, true
	}
	var match types.Ticket
	count := 0
	for _, t := range store.Tickets() {
		if strings.HasPrefix(t.ID, id) {
			match = t
			count++
		}
	}
	if count == 1 {
		return match, true
	}
	return types.Ticket{}, false
}

func runTicketForm(title, description, customerName, customerEmail, company *string) error {
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Title").
				Description("One line describing the problem (required)").
				Value(title).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("title is required")
					}
					return nil
				}),

			huh.NewText().
				Title("Description").
				Description("What happened, steps to reproduce, error messages").
				CharLimit(5000).
				Value(description),

			huh.NewInput().
				Title("Customer name").
				Value(customerName),

			huh.NewInput().
				Title("Customer email").
				Value(customerEmail),

			huh.NewInput().
				Title("Company").
				Description("Optional").
				Value(company),
		),
	)
	if err := form.Run(); err != nil {
		return fmt.Errorf("ticket creation cancelled: %w", err)
	}
	return nil
}

func init() {
	ticketNewCmd.Flags().Bool("ai", false, "Use Claude for classification (needs ANTHROPIC_API_KEY)")
	ticketNewCmd.Flags().String("title", "", "Ticket title")
	ticketNewCmd.Flags().String("description", "", "Ticket description")
	ticketNewCmd.Flags().String("customer", "", "Customer name")
	ticketNewCmd.Flags().String("email", "", "Customer email")
	ticketNewCmd.Flags().String("company", "", "Customer company")
	ticketNewCmd.Flags().String("category", "", "Override category: bug, feature, support, billing, other")
	ticketNewCmd.Flags().String("priority", "", "Override priority: low, medium, high, urgent")
	ticketNewCmd.Flags().String("assignee", "", "Team member id")

	ticketListCmd.Flags().String("status", "", "Filter by status")
	ticketListCmd.Flags().String("priority", "", "Filter by priority")
	ticketListCmd.Flags().String("category", "", "Filter by category")
	ticketListCmd.Flags().String("assignee", "", "Filter by team member id")
	ticketListCmd.Flags().StringP("query", "q", "", "Substring search over title and description")

	ticketUpdateCmd.Flags().String("title", "", "New title")
	ticketUpdateCmd.Flags().String("description", "", "New description")
	ticketUpdateCmd.Flags().String("category", "", "New category")
	ticketUpdateCmd.Flags().String("priority", "", "New priority")
	ticketUpdateCmd.Flags().String("status", "", "New status: open, in_progress, waiting, resolved, closed")
	ticketUpdateCmd.Flags().String("assignee", "", "Team member id, empty string to unassign")

	ticketDeleteCmd.Flags().BoolP("force", "f", false, "Skip confirmation")
	ticketCommentCmd.Flags().Bool("customer", false, "Mark as a customer-visible reply")
	ticketAnalyzeCmd.Flags().Bool("ai", false, "Use Claude for classification (needs ANTHROPIC_API_KEY)")
	ticketAnalyzeCmd.Flags().Bool("apply", false, "Write the proposal back to the ticket")

	ticketCmd.AddCommand(ticketNewCmd)
	ticketCmd.AddCommand(ticketListCmd)
	ticketCmd.AddCommand(ticketShowCmd)
	ticketCmd.AddCommand(ticketUpdateCmd)
	ticketCmd.AddCommand(ticketDeleteCmd)
	ticketCmd.AddCommand(ticketCommentCmd)
	ticketCmd.AddCommand(ticketTagCmd)
	ticketCmd.AddCommand(ticketUntagCmd)
	ticketCmd.AddCommand(ticketStatsCmd)
	ticketCmd.AddCommand(ticketAnalyzeCmd)
	rootCmd.AddCommand(ticketCmd)
}
