package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/untoldecay/flowai/internal/config"
	"github.com/untoldecay/flowai/internal/workspace"
)

var configCmd = &cobra.Command{
	Use:     "config",
	GroupID: "workspace",
	Short:   "Manage configuration settings",
	Long: `Read and write flow configuration. Values come from the discovered
config.yaml, FLOW_* environment variables, or built-in defaults; 'set'
writes to the config file.

Common keys:
  actor                  Acting user for comments and chat
  ai.mode                "rules" or "claude"
  ai.model               Anthropic model for --ai classification
  lock-timeout           Snapshot lock wait, e.g. "30s"
  chat.current-user      Display name for your chat messages
  search.limit           Default result cap for 'flow search'

Examples:
  flow config set ai.mode claude
  flow config get actor
  flow config list`,
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a configuration value",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		key := args[0]
		value := config.GetString(key)
		source := config.GetValueSource(key)

		if jsonOutput {
			outputJSON(map[string]interface{}{
				"key":    key,
				"value":  value,
				"source": source,
			})
			return
		}
		if value == "" {
			fmt.Printf("%s (not set)\n", key)
			return
		}
		fmt.Printf("%s (%s)\n", value, source)
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value in config.yaml",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		key, value := args[0], args[1]

		path, err := config.WriteKey(workspace.Find(), key, value)
		if err != nil {
			FatalErrorRespectJSON("setting config: %v", err)
		}

		if jsonOutput {
			outputJSON(map[string]string{
				"key":      key,
				"value":    value,
				"location": path,
			})
			return
		}
		fmt.Printf("Set %s = %s (in %s)\n", key, value, path)
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all configuration with sources",
	Run: func(cmd *cobra.Command, args []string) {
		settings := flattenSettings("", config.AllSettings())

		if jsonOutput {
			outputJSON(map[string]interface{}{
				"settings":    settings,
				"config_file": config.ConfigFileUsed(),
			})
			return
		}

		if file := config.ConfigFileUsed(); file != "" {
			fmt.Printf("Config file: %s\n\n", file)
		} else {
			fmt.Print("Config file: none (defaults and environment only)\n\n")
		}

		keys := make([]string, 0, len(settings))
		for k := range settings {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Printf("  %s = %v (%s)\n", k, settings[k], config.GetValueSource(k))
		}
	},
}

// flattenSettings turns viper's nested settings map into dotted keys, the
// form get/set accept.
func flattenSettings(prefix string, in map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{})
	for k, val := range in {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if child, ok := val.(map[string]interface{}); ok {
			for ck, cv := range flattenSettings(key, child) {
				out[ck] = cv
			}
			continue
		}
		out[key] = val
	}
	return out
}

func init() {
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configListCmd)
	rootCmd.AddCommand(configCmd)
}
