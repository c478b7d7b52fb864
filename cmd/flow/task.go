package main

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/untoldecay/flowai/internal/taskstore"
	"github.com/untoldecay/flowai/internal/types"
	"github.com/untoldecay/flowai/internal/ui"
)

var taskCmd = &cobra.Command{
	Use:     "task",
	GroupID: "tasks",
	Short:   "Manage tasks on the board",
}

var taskListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tasks",
	Run: func(cmd *cobra.Command, args []string) {
		statusFilter, _ := cmd.Flags().GetString("status")
		assigneeFilter, _ := cmd.Flags().GetString("assignee")

		store, _ := openTaskStore()
		tasks := store.Tasks()

		var filtered []types.Task
		for _, t := range tasks {
			if statusFilter != "" && string(t.Status) != statusFilter {
				continue
			}
			if assigneeFilter != "" && t.Assignee != assigneeFilter {
				continue
			}
			filtered = append(filtered, t)
		}
		sort.SliceStable(filtered, func(i, j int) bool {
			return filtered[i].CreatedAt.Before(filtered[j].CreatedAt)
		})

		if jsonOutput {
			outputJSON(filtered)
			return
		}
		if len(filtered) == 0 {
			fmt.Println("No tasks.")
			return
		}

		tbl := ui.NewListTable(ui.Width(), "ID", "Title", "Status", "Priority", "Assignee", "Due")
		for _, t := range filtered {
			due := ""
			if t.DueDate != nil {
				due = t.DueDate.Format("Jan 2")
			}
			assignee := ""
			if t.Assignee != "" {
				assignee = memberName(t.Assignee)
			}
			tbl.Row(shortID(t.ID), t.Title, string(t.Status), string(t.Priority), assignee, due)
		}
		fmt.Println(tbl.String())
	},
}

var taskShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show task details",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		store, _ := openTaskStore()
		task, found := findTask(store, args[0])
		if !found {
			FatalErrorRespectJSON("no task %s", args[0])
		}

		if jsonOutput {
			outputJSON(task)
			return
		}

		fmt.Printf("%s %s\n", ui.RenderBold(task.Title), ui.RenderMuted("["+task.ID+"]"))
		fmt.Printf("%s · %s", ui.RenderTaskStatus(task.Status), ui.RenderPriority(task.Priority))
		if task.Assignee != "" {
			fmt.Printf(" · %s", memberName(task.Assignee))
		}
		fmt.Println()
		if task.DueDate != nil {
			fmt.Printf("due %s\n", task.DueDate.Format("Mon Jan 2 2006"))
		}
		if task.Description != "" && task.Description != task.Title {
			fmt.Printf("\n%s\n", task.Description)
		}
		if len(task.Steps) > 0 {
			fmt.Printf("\nChecklist (%s):\n", sopNameByID(store, task.SOPTemplateID))
			for _, step := range task.Steps {
				mark := "[ ]"
				if step.Completed {
					mark = ui.RenderPass("[x]")
				}
				fmt.Printf("  %s %s\n", mark, step.Title)
			}
		}
		if task.SourceInbox != nil {
			fmt.Printf("\n%s\n", ui.RenderMuted(fmt.Sprintf("promoted from inbox capture %q (%s)",
				task.SourceInbox.Content, task.SourceInbox.CreatedAt.Format(time.RFC822))))
		}
	},
}

var taskUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update task fields",
	Long: `Update one or more task fields. Only the flags you pass change.

  flow task update a1b2 --priority high --assignee 2
  flow task update a1b2 --due "next monday"
  flow task update a1b2 --due none            # clear the due date
  flow task update a1b2 --check 1 --check 2   # tick checklist steps`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		store, dataDir := openTaskStore()
		task, found := findTask(store, args[0])
		if !found {
			FatalErrorRespectJSON("no task %s", args[0])
		}

		var patch types.TaskPatch
		if cmd.Flags().Changed("title") {
			v, _ := cmd.Flags().GetString("title")
			patch.Title = &v
		}
		if cmd.Flags().Changed("description") {
			v, _ := cmd.Flags().GetString("description")
			patch.Description = &v
		}
		if cmd.Flags().Changed("priority") {
			v, _ := cmd.Flags().GetString("priority")
			p := types.Priority(v)
			patch.Priority = &p
		}
		if cmd.Flags().Changed("status") {
			v, _ := cmd.Flags().GetString("status")
			s := types.TaskStatus(v)
			patch.Status = &s
		}
		if cmd.Flags().Changed("assignee") {
			v, _ := cmd.Flags().GetString("assignee")
			patch.Assignee = &v
		}
		if cmd.Flags().Changed("due") {
			v, _ := cmd.Flags().GetString("due")
			if v == "none" {
				var zero time.Time
				patch.DueDate = &zero
			} else {
				due, err := parseDue(v)
				if err != nil {
					FatalErrorRespectJSON("%v", err)
				}
				patch.DueDate = &due
			}
		}
		if checks, _ := cmd.Flags().GetStringSlice("check"); len(checks) > 0 {
			steps := toggleSteps(task.Steps, checks, true)
			patch.Steps = &steps
		}
		if unchecks, _ := cmd.Flags().GetStringSlice("uncheck"); len(unchecks) > 0 {
			base := task.Steps
			if patch.Steps != nil {
				base = *patch.Steps
			}
			steps := toggleSteps(base, unchecks, false)
			patch.Steps = &steps
		}

		updated, err := store.UpdateTask(task.ID, patch)
		if err != nil {
			FatalErrorRespectJSON("updating task: %v", err)
		}
		refreshIndex(context.Background(), dataDir)

		result, _ := store.Task(task.ID)
		if jsonOutput {
			outputJSON(map[string]interface{}{"updated": updated, "task": result})
			return
		}
		fmt.Printf("%s Updated %s\n", ui.CheckMark(), shortID(task.ID))
	},
}

var taskMoveCmd = &cobra.Command{
	Use:   "move <id> <status>",
	Short: "Move a task to another board column",
	Long: `Move a task between columns: todo, in_progress, in_review, done.

Any move is allowed; the board does not enforce a workflow.`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		store, dataDir := openTaskStore()
		task, found := findTask(store, args[0])
		if !found {
			FatalErrorRespectJSON("no task %s", args[0])
		}

		status := types.TaskStatus(args[1])
		switch status {
		case types.StatusTodo, types.StatusInProgress, types.StatusInReview, types.StatusDone:
		default:
			FatalErrorRespectJSON("unknown status %q (todo, in_progress, in_review, done)", args[1])
		}

		if _, err := store.UpdateTask(task.ID, types.TaskPatch{Status: &status}); err != nil {
			FatalErrorRespectJSON("moving task: %v", err)
		}
		refreshIndex(context.Background(), dataDir)

		if jsonOutput {
			result, _ := store.Task(task.ID)
			outputJSON(result)
			return
		}
		fmt.Printf("%s %s → %s\n", ui.CheckMark(), shortID(task.ID), ui.RenderTaskStatus(status))
	},
}

var taskDeleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Aliases: []string{"rm"},
	Short:   "Delete a task",
	Args:    cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		force, _ := cmd.Flags().GetBool("force")
		store, dataDir := openTaskStore()
		task, found := findTask(store, args[0])
		if !found {
			FatalErrorRespectJSON("no task %s", args[0])
		}

		if !force && !jsonOutput {
			if !ui.PromptYesNo(fmt.Sprintf("Delete task %q?", task.Title), false) {
				fmt.Println("Cancelled.")
				return
			}
		}

		deleted, err := store.DeleteTask(task.ID)
		if err != nil {
			FatalErrorRespectJSON("deleting task: %v", err)
		}
		refreshIndex(context.Background(), dataDir)

		if jsonOutput {
			outputJSON(map[string]interface{}{"id": task.ID, "deleted": deleted})
			return
		}
		fmt.Printf("%s Deleted %s\n", ui.CheckMark(), shortID(task.ID))
	},
}

// findTask resolves a task id, accepting unambiguous prefixes.
func findTask(store *taskstore.Store, id string) (types.Task, bool) {
	if task, ok := store.Task(id); ok {
		return task, true
	}
	var match types.Task
	count := 0
	for _, t := range store.Tasks() {
		if strings.HasPrefix(t.ID, id) {
			match = t
			count++
		}
	}
	if count == 1 {
		return match, true
	}
	return types.Task{}, false
}

// toggleSteps sets Completed on the steps named by refs, which may be
// 1-based positions or step ids.
func toggleSteps(steps []types.TaskStep, refs []string, completed bool) []types.TaskStep {
	out := make([]types.TaskStep, len(steps))
	copy(out, steps)
	for _, ref := range refs {
		for i := range out {
			if out[i].ID == ref || fmt.Sprintf("%d", i+1) == ref {
				out[i].Completed = completed
			}
		}
	}
	return out
}

// shortID truncates a uuid for table display.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func init() {
	taskListCmd.Flags().String("status", "", "Filter by status (todo, in_progress, in_review, done)")
	taskListCmd.Flags().String("assignee", "", "Filter by team member id")

	taskUpdateCmd.Flags().String("title", "", "New title")
	taskUpdateCmd.Flags().String("description", "", "New description")
	taskUpdateCmd.Flags().String("priority", "", "New priority: low, medium, high")
	taskUpdateCmd.Flags().String("status", "", "New status: todo, in_progress, in_review, done")
	taskUpdateCmd.Flags().String("assignee", "", "Team member id, empty string to unassign")
	taskUpdateCmd.Flags().String("due", "", "Due date, or 'none' to clear")
	taskUpdateCmd.Flags().StringSlice("check", nil, "Checklist step to mark done (position or id)")
	taskUpdateCmd.Flags().StringSlice("uncheck", nil, "Checklist step to mark not done")

	taskDeleteCmd.Flags().BoolP("force", "f", false, "Skip confirmation")

	taskCmd.AddCommand(taskListCmd)
	taskCmd.AddCommand(taskShowCmd)
	taskCmd.AddCommand(taskUpdateCmd)
	taskCmd.AddCommand(taskMoveCmd)
	taskCmd.AddCommand(taskDeleteCmd)
	rootCmd.AddCommand(taskCmd)
}
