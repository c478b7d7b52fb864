package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/untoldecay/flowai/internal/catalog"
	"github.com/untoldecay/flowai/internal/persist"
	"github.com/untoldecay/flowai/internal/taskstore"
	"github.com/untoldecay/flowai/internal/types"
	"github.com/untoldecay/flowai/internal/ui"
)

var boardCmd = &cobra.Command{
	Use:     "board",
	GroupID: "tasks",
	Short:   "Show the task board",
	Long: `Render tasks in the saved view mode: kanban columns, a flat list,
or tasks grouped by due date.

With --watch the board re-renders whenever another flow process changes
the snapshot.`,
	Run: func(cmd *cobra.Command, args []string) {
		watch, _ := cmd.Flags().GetBool("watch")

		store, dataDir := openTaskStore()

		if jsonOutput {
			outputJSON(map[string]interface{}{
				"view_mode": store.ViewMode(),
				"tasks":     store.Tasks(),
			})
			return
		}

		renderBoard(store)

		if !watch {
			return
		}

		// Re-open on each change: the snapshot on disk is the source of
		// truth and another process owns the write.
		path := filepath.Join(dataDir, persist.TasksFile)
		w, err := persist.NewWatcher(path, func() {
			fresh, err := taskstore.Open(path, catalog.TeamMembers(), loadTemplates(dataDir))
			if err != nil {
				return
			}
			fmt.Print("\033[H\033[2J") // clear screen
			renderBoard(fresh)
		})
		if err != nil {
			FatalError("watching snapshot: %v", err)
		}
		defer w.Close()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		w.Start(ctx)

		fmt.Println(ui.RenderMuted("\nWatching for changes. Ctrl+C to stop."))
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig
	},
}

var viewCmd = &cobra.Command{
	Use:     "view <mode>",
	GroupID: "tasks",
	Short:   "Set the board view mode (kanban, list, calendar)",
	Args:    cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		mode := types.ViewMode(args[0])
		switch mode {
		case types.ViewKanban, types.ViewList, types.ViewCalendar:
		default:
			FatalErrorRespectJSON("unknown view mode %q (kanban, list, calendar)", args[0])
		}

		store, _ := openTaskStore()
		if err := store.SetViewMode(mode); err != nil {
			FatalErrorRespectJSON("setting view mode: %v", err)
		}

		if jsonOutput {
			outputJSON(map[string]interface{}{"view_mode": mode})
			return
		}
		fmt.Printf("%s View mode set to %s\n", ui.CheckMark(), mode)
	},
}

func renderBoard(store *taskstore.Store) {
	tasks := store.Tasks()
	switch store.ViewMode() {
	case types.ViewList:
		renderListView(tasks)
	case types.ViewCalendar:
		renderCalendarView(tasks)
	default:
		fmt.Println(ui.RenderBoard(tasks, ui.Width()))
	}
}

func renderListView(tasks []types.Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		return tasks[i].CreatedAt.Before(tasks[j].CreatedAt)
	})
	tbl := ui.NewListTable(ui.Width(), "ID", "Title", "Status", "Priority")
	for _, t := range tasks {
		tbl.Row(shortID(t.ID), t.Title, string(t.Status), string(t.Priority))
	}
	fmt.Println(tbl.String())
}

// renderCalendarView groups tasks by due date. Tasks without one come
// last.
func renderCalendarView(tasks []types.Task) {
	byDay := make(map[string][]types.Task)
	var days []string
	var undated []types.Task
	for _, t := range tasks {
		if t.DueDate == nil {
			undated = append(undated, t)
			continue
		}
		day := t.DueDate.Format("2006-01-02")
		if _, seen := byDay[day]; !seen {
			days = append(days, day)
		}
		byDay[day] = append(byDay[day], t)
	}
	sort.Strings(days)

	for _, day := range days {
		fmt.Println(ui.RenderBold(day))
		for _, t := range byDay[day] {
			fmt.Printf("  %s %s %s\n", ui.RenderMuted(shortID(t.ID)), t.Title, ui.RenderPriority(t.Priority))
		}
	}
	if len(undated) > 0 {
		fmt.Println(ui.RenderBold("No due date"))
		for _, t := range undated {
			fmt.Printf("  %s %s %s\n", ui.RenderMuted(shortID(t.ID)), t.Title, ui.RenderPriority(t.Priority))
		}
	}
}

func init() {
	boardCmd.Flags().BoolP("watch", "w", false, "Re-render when the snapshot changes")
	rootCmd.AddCommand(boardCmd)
	rootCmd.AddCommand(viewCmd)
}
