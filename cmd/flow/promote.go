package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
	"github.com/spf13/cobra"

	"github.com/untoldecay/flowai/internal/catalog"
	"github.com/untoldecay/flowai/internal/taskstore"
	"github.com/untoldecay/flowai/internal/types"
	"github.com/untoldecay/flowai/internal/ui"
)

var inboxPromoteCmd = &cobra.Command{
	Use:   "promote <id>",
	Short: "Promote an inbox item into a task",
	Long: `Turn a captured inbox item into a task on the board.

The classifier pre-fills priority, SOP checklist, and a due date from the
item's text; an interactive form lets you adjust them. Pass --yes to accept
the suggestion as-is, or override individual fields with flags:

  flow inbox promote a1b2 --yes
  flow inbox promote a1b2 --title "Fix login" --priority high --due "next friday"
  flow inbox promote a1b2 --ai --yes`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		useAI, _ := cmd.Flags().GetBool("ai")
		yes, _ := cmd.Flags().GetBool("yes")
		titleFlag, _ := cmd.Flags().GetString("title")
		priorityFlag, _ := cmd.Flags().GetString("priority")
		dueFlag, _ := cmd.Flags().GetString("due")
		sopFlag, _ := cmd.Flags().GetString("sop")
		assigneeFlag, _ := cmd.Flags().GetString("assignee")

		store, dataDir := openTaskStore()

		item, found := findInboxItem(store, args[0])
		if !found {
			FatalErrorRespectJSON("no inbox item %s", args[0])
		}

		suggestion, err := newAnalyzer(useAI, store.Templates()).SuggestTask(context.Background(), item.Content)
		if err != nil {
			FatalErrorRespectJSON("classifying item: %v", err)
		}

		draft := taskstore.TaskDraft{
			InboxID:     item.ID,
			Title:       item.Content,
			Description: item.Content,
			Priority:    suggestion.Priority,
			DueDate:     &suggestion.SuggestedDueDate,
			Steps:       suggestion.EstimatedSteps,
		}
		if suggestion.SuggestedSOP != nil {
			draft.SOPTemplateID = suggestion.SuggestedSOP.ID
		}

		// Flag overrides beat both the suggestion and the form.
		if titleFlag != "" {
			draft.Title = titleFlag
		}
		if priorityFlag != "" {
			draft.Priority = types.Priority(priorityFlag)
		}
		if assigneeFlag != "" {
			draft.Assignee = assigneeFlag
		}
		if dueFlag != "" {
			due, err := parseDue(dueFlag)
			if err != nil {
				FatalErrorRespectJSON("%v", err)
			}
			draft.DueDate = &due
		}
		if sopFlag != "" {
			tpl, ok := catalog.TemplateByName(store.Templates(), sopFlag)
			if !ok {
				FatalErrorRespectJSON("no SOP template named %q", sopFlag)
			}
			applyTemplate(&draft, tpl)
		}

		interactive := !yes && titleFlag == "" && priorityFlag == "" && dueFlag == "" &&
			sopFlag == "" && assigneeFlag == "" && ui.IsTerminal()
		if interactive {
			if err := runPromoteForm(store, &draft); err != nil {
				FatalErrorRespectJSON("%v", err)
			}
		}

		task, err := store.CreateTaskFromInbox(draft)
		if err != nil {
			FatalErrorRespectJSON("creating task: %v", err)
		}
		refreshIndex(context.Background(), dataDir)

		if jsonOutput {
			outputJSON(task)
			return
		}
		fmt.Printf("%s Created task %s: %s\n", ui.CheckMark(), ui.RenderMuted("["+task.ID+"]"), task.Title)
		if len(task.Steps) > 0 {
			fmt.Printf("  %d checklist steps from %s\n", len(task.Steps), sopNameByID(store, task.SOPTemplateID))
		}
		if task.DueDate != nil {
			fmt.Printf("  due %s\n", task.DueDate.Format("Mon Jan 2"))
		}
	},
}

// findInboxItem resolves an inbox id, accepting unambiguous prefixes.
func findInboxItem(store *taskstore.Store, id string) (types.InboxItem, bool) {
	items := store.InboxItems()
	for _, item := range items {
		if item.ID == id {
			return item, true
		}
	}
	var match types.InboxItem
	count := 0
	for _, item := range items {
		if strings.HasPrefix(item.ID, id) {
			match = item
			count++
		}
	}
	if count == 1 {
		return match, true
	}
	return types.InboxItem{}, false
}

// parseDue parses a due date: RFC3339, YYYY-MM-DD, or natural language
// ("next friday", "in 3 days").
func parseDue(text string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, text); err == nil {
		return t, nil
	}
	if t, err := time.Parse("2006-01-02", text); err == nil {
		return t, nil
	}
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	r, err := w.Parse(text, time.Now())
	if err != nil || r == nil {
		return time.Time{}, fmt.Errorf("could not parse due date %q", text)
	}
	return r.Time, nil
}

// applyTemplate instantiates a template's checklist onto the draft,
// preserving step ids already assigned by the classifier when the template
// is unchanged.
func applyTemplate(draft *taskstore.TaskDraft, tpl types.SOPTemplate) {
	if draft.SOPTemplateID == tpl.ID && len(draft.Steps) == len(tpl.Steps) {
		return
	}
	draft.SOPTemplateID = tpl.ID
	draft.Steps = nil
	for i, step := range tpl.Steps {
		draft.Steps = append(draft.Steps, types.TaskStep{
			ID:    fmt.Sprintf("%s-%d", tpl.ID, i+1),
			Title: step,
		})
	}
}

func sopNameByID(store *taskstore.Store, id string) string {
	for _, tpl := range store.Templates() {
		if tpl.ID == id {
			return tpl.Name
		}
	}
	return id
}

func runPromoteForm(store *taskstore.Store, draft *taskstore.TaskDraft) error {
	priorityOptions := []huh.Option[string]{
		huh.NewOption("Low", "low"),
		huh.NewOption("Medium", "medium"),
		huh.NewOption("High", "high"),
	}

	assigneeOptions := []huh.Option[string]{huh.NewOption("Unassigned", "")}
	for _, m := range store.Members() {
		assigneeOptions = append(assigneeOptions, huh.NewOption(m.Name+" ("+m.Role+")", m.ID))
	}

	sopOptions := []huh.Option[string]{huh.NewOption("None", "")}
	for _, tpl := range store.Templates() {
		sopOptions = append(sopOptions, huh.NewOption(tpl.Name, tpl.ID))
	}

	priority := string(draft.Priority)
	sopID := draft.SOPTemplateID
	due := ""
	if draft.DueDate != nil {
		due = draft.DueDate.Format("2006-01-02")
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Title").
				Description("Short summary for the board card").
				Value(&draft.Title).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("title is required")
					}
					return nil
				}),

			huh.NewText().
				Title("Description").
				CharLimit(5000).
				Value(&draft.Description),

			huh.NewSelect[string]().
				Title("Priority").
				Description("Pre-filled from the item's text").
				Options(priorityOptions...).
				Value(&priority),

			huh.NewSelect[string]().
				Title("Assignee").
				Options(assigneeOptions...).
				Value(&draft.Assignee),

			huh.NewSelect[string]().
				Title("SOP checklist").
				Options(sopOptions...).
				Value(&sopID),

			huh.NewInput().
				Title("Due date").
				Description("YYYY-MM-DD or natural language, empty for none").
				Value(&due),
		),
	)

	if err := form.Run(); err != nil {
		return fmt.Errorf("promotion cancelled: %w", err)
	}

	draft.Priority = types.Priority(priority)
	if sopID != draft.SOPTemplateID {
		if sopID == "" {
			draft.SOPTemplateID = ""
			draft.Steps = nil
		} else if tpl, ok := templateByID(store, sopID); ok {
			applyTemplate(draft, tpl)
		}
	}
	if strings.TrimSpace(due) == "" {
		draft.DueDate = nil
	} else {
		parsed, err := parseDue(due)
		if err != nil {
			return err
		}
		draft.DueDate = &parsed
	}
	return nil
}

func templateByID(store *taskstore.Store, id string) (types.SOPTemplate, bool) {
	for _, tpl := range store.Templates() {
		if tpl.ID == id {
			return tpl, true
		}
	}
	return types.SOPTemplate{}, false
}

func init() {
	inboxPromoteCmd.Flags().Bool("ai", false, "Use Claude for classification (needs ANTHROPIC_API_KEY)")
	inboxPromoteCmd.Flags().BoolP("yes", "y", false, "Accept the classifier suggestion without the form")
	inboxPromoteCmd.Flags().String("title", "", "Task title (skips the form)")
	inboxPromoteCmd.Flags().String("priority", "", "Task priority: low, medium, high (skips the form)")
	inboxPromoteCmd.Flags().String("due", "", "Due date, e.g. 2025-06-01 or 'next friday' (skips the form)")
	inboxPromoteCmd.Flags().String("sop", "", "SOP template name (skips the form)")
	inboxPromoteCmd.Flags().String("assignee", "", "Team member id (skips the form)")
	inboxCmd.AddCommand(inboxPromoteCmd)
}
