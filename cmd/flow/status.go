package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/untoldecay/flowai/internal/types"
	"github.com/untoldecay/flowai/internal/ui"
)

var statusCmd = &cobra.Command{
	Use:     "status",
	GroupID: "workspace",
	Short:   "Workspace dashboard",
	Long:    `One-screen summary: board counts per column, inbox backlog, ticket queue statistics, and unread chat.`,
	Run: func(cmd *cobra.Command, args []string) {
		taskStore, _ := openTaskStore()
		ticketStore, _ := openTicketStore()
		chatStore := openChatStore()

		taskCounts := taskStore.StatusCounts()
		inboxCount := len(taskStore.InboxItems())
		ticketStats := ticketStore.Stats()

		unread := 0
		for _, ch := range chatStore.Channels() {
			unread += chatStore.UnreadCount(ch.ID)
		}

		if jsonOutput {
			outputJSON(map[string]interface{}{
				"tasks":        taskCounts,
				"inbox":        inboxCount,
				"tickets":      ticketStats,
				"chat_unread":  unread,
				"view_mode":    taskStore.ViewMode(),
				"team_members": len(taskStore.Members()),
			})
			return
		}

		fmt.Println(ui.RenderBold("Tasks"))
		for _, s := range []types.TaskStatus{types.StatusTodo, types.StatusInProgress, types.StatusInReview, types.StatusDone} {
			fmt.Printf("  %-12s %d\n", string(s), taskCounts[s])
		}
		if inboxCount > 0 {
			fmt.Printf("  %s\n", ui.RenderWarn(fmt.Sprintf("%d inbox items awaiting triage", inboxCount)))
		}

		fmt.Println(ui.RenderBold("Tickets"))
		fmt.Printf("  open %d · resolved %d · high priority %d · total %d\n",
			ticketStats.Open, ticketStats.Resolved, ticketStats.HighPriority, ticketStats.Total)

		fmt.Println(ui.RenderBold("Chat"))
		fmt.Printf("  %d unread messages\n", unread)
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
