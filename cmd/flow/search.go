package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/untoldecay/flowai/internal/config"
	"github.com/untoldecay/flowai/internal/index"
	"github.com/untoldecay/flowai/internal/ui"
)

var searchCmd = &cobra.Command{
	Use:     "search <query>...",
	GroupID: "workspace",
	Short:   "Search tasks and tickets",
	Long: `Full-text search across task and ticket titles and descriptions,
backed by a derived SQLite index that is rebuilt from the JSON snapshots.

  flow search login crash
  flow search --kind ticket billing`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		kind, _ := cmd.Flags().GetString("kind")
		limit, _ := cmd.Flags().GetInt("limit")
		if !cmd.Flags().Changed("limit") {
			if n := config.GetInt("search.limit"); n > 0 {
				limit = n
			}
		}

		if kind != "" && kind != "task" && kind != "ticket" {
			FatalErrorRespectJSON("--kind must be task or ticket")
		}

		dataDir := resolveDataDir()
		ctx := context.Background()

		// Rebuild before querying so results always reflect the snapshots.
		refreshIndex(ctx, dataDir)

		ix, err := index.Open(ctx, filepath.Join(dataDir, indexFile))
		if err != nil {
			FatalErrorRespectJSON("opening search index: %v", err)
		}
		defer ix.Close()

		query := strings.Join(args, " ")
		results, err := ix.Search(ctx, query, kind, limit)
		if err != nil {
			FatalErrorRespectJSON("searching: %v", err)
		}

		if jsonOutput {
			if results == nil {
				results = []index.Result{}
			}
			outputJSON(results)
			return
		}
		if len(results) == 0 {
			fmt.Printf("No matches for %q.\n", query)
			return
		}
		for _, r := range results {
			fmt.Printf("%s %s %s\n",
				ui.RenderMuted(fmt.Sprintf("[%s %s]", r.Kind, shortID(r.ID))),
				ui.RenderBold(r.Title),
				ui.RenderMuted(fmt.Sprintf("(%s, %s)", r.Status, r.Priority)))
			if r.Snippet != "" {
				fmt.Printf("    %s\n", r.Snippet)
			}
		}
	},
}

func init() {
	searchCmd.Flags().String("kind", "", "Restrict to task or ticket")
	searchCmd.Flags().Int("limit", 25, "Maximum results")
	rootCmd.AddCommand(searchCmd)
}
