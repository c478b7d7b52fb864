package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/untoldecay/flowai/internal/ui"
	"github.com/untoldecay/flowai/internal/workspace"
)

var initCmd = &cobra.Command{
	Use:     "init",
	GroupID: "workspace",
	Short:   "Initialize a flow workspace in the current directory",
	Long: `Create a .flowai directory with a default config.yaml.

The workspace holds the task and ticket snapshots, the search index, and
optional templates.toml overrides. Commands find it by walking up from the
current directory, so they work from any subdirectory.

Safe to re-run: an existing workspace is left untouched.`,
	Run: func(cmd *cobra.Command, args []string) {
		cwd, err := os.Getwd()
		if err != nil {
			FatalErrorRespectJSON("getting working directory: %v", err)
		}

		existing := filepath.Join(cwd, workspace.DirName)
		_, statErr := os.Stat(filepath.Join(existing, "config.yaml"))
		already := statErr == nil

		dir, err := workspace.Init(cwd, actor)
		if err != nil {
			FatalErrorRespectJSON("%v", err)
		}

		if jsonOutput {
			outputJSON(map[string]interface{}{
				"workspace": dir,
				"created":   !already,
			})
			return
		}

		if already {
			fmt.Printf("Workspace already initialized at %s\n", dir)
			return
		}
		fmt.Printf("%s Initialized workspace at %s\n", ui.CheckMark(), dir)
		fmt.Println("\nNext steps:")
		fmt.Println("  • flow capture \"something on your mind\"")
		fmt.Println("  • flow inbox")
		fmt.Println("  • flow board")
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
