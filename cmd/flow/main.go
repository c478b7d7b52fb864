// Command flow is a local-first team productivity CLI: a task board fed by
// a capture inbox, a support ticket queue, and team chat, with keyword
// heuristics (or Claude) triaging incoming text.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/untoldecay/flowai/internal/config"
	"github.com/untoldecay/flowai/internal/debug"
	"github.com/untoldecay/flowai/internal/persist"
	"github.com/untoldecay/flowai/internal/workspace"
)

// Global flag state, resolved in PersistentPreRun with precedence
// flag > env var > config file > default.
var (
	jsonOutput bool
	dataDirArg string
	actor      string
)

var rootCmd = &cobra.Command{
	Use:   "flow",
	Short: "Local-first task board, ticket queue, and team chat",
	Long: `flow keeps your team's work in plain JSON files next to your project:
captured inbox items, a kanban task board, customer support tickets, and
chat channels. Incoming text is triaged by keyword heuristics, or by
Claude with --ai.

Run 'flow init' once per project, then 'flow capture' anything.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if err := config.Initialize(); err != nil {
			FatalError("initializing config: %v", err)
		}

		// Flags win over config/env; viper covers the rest of the chain.
		if !cmd.Flags().Changed("json") {
			jsonOutput = config.GetBool("json")
		}
		actor = config.GetActor(actor)

		if d := config.GetDuration("lock-timeout"); d > 0 {
			persist.LockTimeout = d
		}

		if debug.Enabled() {
			if dir := workspace.Find(); dir != "" {
				debug.SetFile(filepath.Join(dir, "debug.log"))
			}
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().StringVar(&dataDirArg, "data-dir", "", "Workspace data directory (default: discovered .flowai)")
	rootCmd.PersistentFlags().StringVar(&actor, "actor", "", "Acting user for comments and chat (default: config, git user.name, hostname)")

	rootCmd.AddGroup(
		&cobra.Group{ID: "tasks", Title: "Tasks & Inbox:"},
		&cobra.Group{ID: "tickets", Title: "Support Tickets:"},
		&cobra.Group{ID: "chat", Title: "Chat:"},
		&cobra.Group{ID: "workspace", Title: "Workspace:"},
	)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		FatalErrorRespectJSON("%v", err)
	}
}

// outputJSON marshals v indented to stdout. Used by every command when
// --json is set.
func outputJSON(v interface{}) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		FatalError("marshaling JSON output: %v", err)
	}
	fmt.Println(string(data))
}

// FatalError prints an error to stderr and exits 1.
func FatalError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}

// FatalErrorRespectJSON emits the error as a JSON object when --json is
// set, so scripted callers never have to parse prose off stderr.
func FatalErrorRespectJSON(format string, args ...interface{}) {
	if jsonOutput {
		payload := map[string]string{"error": fmt.Sprintf(format, args...)}
		data, err := json.Marshal(payload)
		if err == nil {
			fmt.Fprintln(os.Stderr, string(data))
			os.Exit(1)
		}
	}
	FatalError(format, args...)
}
