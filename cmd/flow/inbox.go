package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/untoldecay/flowai/internal/ui"
)

var captureCmd = &cobra.Command{
	Use:     "capture <text>...",
	GroupID: "tasks",
	Short:   "Capture free text into the inbox",
	Long: `Capture a thought, request, or todo into the inbox for later triage.

Examples:
  flow capture "urgent: login page crashes on submit"
  flow capture follow up with the design team`,
	Args: cobra.ArbitraryArgs,
	Run: func(cmd *cobra.Command, args []string) {
		content := strings.TrimSpace(strings.Join(args, " "))
		if content == "" && ui.IsTerminal() {
			content = strings.TrimSpace(ui.Prompt("What's on your mind?", ""))
		}
		if content == "" {
			FatalErrorRespectJSON("nothing to capture")
		}

		store, _ := openTaskStore()
		item, err := store.AddInboxItem(content)
		if err != nil {
			FatalErrorRespectJSON("capturing item: %v", err)
		}

		if jsonOutput {
			outputJSON(item)
			return
		}
		fmt.Printf("%s Captured %s\n", ui.CheckMark(), ui.RenderMuted("["+item.ID+"]"))

		// A quick triage hint, from the rule tables only: capture must stay
		// fast and offline.
		suggestion, err := newAnalyzer(false, store.Templates()).SuggestTask(context.Background(), content)
		if err == nil {
			hint := "suggested priority: " + string(suggestion.Priority)
			if suggestion.SuggestedSOP != nil {
				hint += ", SOP: " + suggestion.SuggestedSOP.Name
			}
			fmt.Println(ui.RenderMuted("  " + hint))
		}
	},
}

var inboxCmd = &cobra.Command{
	Use:     "inbox",
	GroupID: "tasks",
	Short:   "List inbox items awaiting triage",
	Run: func(cmd *cobra.Command, args []string) {
		store, _ := openTaskStore()
		items := store.InboxItems()

		if jsonOutput {
			outputJSON(items)
			return
		}
		if len(items) == 0 {
			fmt.Println("Inbox empty. Capture something with 'flow capture'.")
			return
		}
		for _, item := range items {
			age := time.Since(item.CreatedAt).Round(time.Minute)
			fmt.Printf("%s %s %s\n",
				ui.RenderMuted("["+item.ID+"]"),
				item.Content,
				ui.RenderMuted(fmt.Sprintf("(%s ago)", age)))
		}
	},
}

var inboxRmCmd = &cobra.Command{
	Use:     "rm <id>",
	Aliases: []string{"remove", "delete"},
	Short:   "Discard an inbox item",
	Args:    cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		store, _ := openTaskStore()
		removed, err := store.RemoveInboxItem(args[0])
		if err != nil {
			FatalErrorRespectJSON("removing item: %v", err)
		}

		if jsonOutput {
			outputJSON(map[string]interface{}{"id": args[0], "removed": removed})
			return
		}
		if !removed {
			fmt.Printf("No inbox item %s\n", args[0])
			return
		}
		fmt.Printf("%s Removed %s\n", ui.CheckMark(), args[0])
	},
}

func init() {
	inboxCmd.AddCommand(inboxRmCmd)
	rootCmd.AddCommand(captureCmd)
	rootCmd.AddCommand(inboxCmd)
}
