package config

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/untoldecay/flowai/internal/debug"
)

var v *viper.Viper

// Initialize sets up the viper configuration singleton
// Should be called once at application startup
func Initialize() error {
	v = viper.New()

	// Set config type to yaml (we only load config.yaml, not config.json)
	v.SetConfigType("yaml")

	// Explicitly locate config.yaml and use SetConfigFile to avoid picking up
	// stray config files with other extensions
	// Precedence: project .flowai/config.yaml > ~/.config/flow/config.yaml > ~/.flowai/config.yaml
	configFileSet := false

	// 1. Walk up from CWD to find project .flowai/config.yaml
	//    This allows commands to work from subdirectories
	cwd, err := os.Getwd()
	if err == nil && !configFileSet {
		for dir := cwd; dir != filepath.Dir(dir); dir = filepath.Dir(dir) {
			flowDir := filepath.Join(dir, ".flowai")
			configPath := filepath.Join(flowDir, "config.yaml")
			if _, err := os.Stat(configPath); err == nil {
				v.SetConfigFile(configPath)
				configFileSet = true
				break
			}
		}
	}

	// 2. User config directory (~/.config/flow/config.yaml)
	if !configFileSet {
		if configDir, err := os.UserConfigDir(); err == nil {
			configPath := filepath.Join(configDir, "flow", "config.yaml")
			if _, err := os.Stat(configPath); err == nil {
				v.SetConfigFile(configPath)
				configFileSet = true
			}
		}
	}

	// 3. Home directory (~/.flowai/config.yaml)
	if !configFileSet {
		if homeDir, err := os.UserHomeDir(); err == nil {
			configPath := filepath.Join(homeDir, ".flowai", "config.yaml")
			if _, err := os.Stat(configPath); err == nil {
				v.SetConfigFile(configPath)
				configFileSet = true
			}
		}
	}

	// Automatic environment variable binding
	// Environment variables take precedence over config file
	// E.g., FLOW_JSON, FLOW_ACTOR, FLOW_DATA_DIR, FLOW_AI
	v.SetEnvPrefix("FLOW")

	// Replace hyphens and dots with underscores for env var mapping
	// This allows FLOW_DATA_DIR to map to "data-dir" config key
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	// Set defaults for all flags
	v.SetDefault("json", false)
	v.SetDefault("actor", "")
	v.SetDefault("data-dir", "")
	v.SetDefault("lock-timeout", "30s")

	// AI analysis defaults. "rules" uses the built-in keyword heuristics,
	// "claude" calls the Anthropic API and needs ANTHROPIC_API_KEY.
	v.SetDefault("ai.mode", "rules")
	v.SetDefault("ai.model", "")

	// Chat defaults
	v.SetDefault("chat.current-user", "You")
	v.SetDefault("chat.presence-interval", "30s")

	// Task defaults
	v.SetDefault("task.default-priority", "medium")
	v.SetDefault("task.templates-file", "")

	// Search index defaults
	v.SetDefault("index.enabled", true)
	v.SetDefault("search.limit", 25)

	// Read config file if it was found
	if configFileSet {
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("error reading config file: %w", err)
		}
		debug.Logf("Debug: loaded config from %s\n", v.ConfigFileUsed())
	} else {
		// No config.yaml found - use defaults and environment variables
		debug.Logf("Debug: no config.yaml found; using defaults and environment variables\n")
	}

	return nil
}

// ConfigSource represents where a configuration value came from
type ConfigSource string

const (
	SourceDefault    ConfigSource = "default"
	SourceConfigFile ConfigSource = "config_file"
	SourceEnvVar     ConfigSource = "env_var"
	SourceFlag       ConfigSource = "flag"
)

// GetValueSource returns the source of a configuration value.
// Priority (highest to lowest): env var > config file > default
// Note: Flag overrides are handled separately in main.go since viper doesn't know about cobra flags.
func GetValueSource(key string) ConfigSource {
	if v == nil {
		return SourceDefault
	}

	envKey := "FLOW_" + strings.ToUpper(strings.ReplaceAll(strings.ReplaceAll(key, "-", "_"), ".", "_"))
	if os.Getenv(envKey) != "" {
		return SourceEnvVar
	}

	if v.InConfig(key) {
		return SourceConfigFile
	}

	return SourceDefault
}

// GetString retrieves a string configuration value
func GetString(key string) string {
	if v == nil {
		return ""
	}
	return v.GetString(key)
}

// GetBool retrieves a boolean configuration value
func GetBool(key string) bool {
	if v == nil {
		return false
	}
	return v.GetBool(key)
}

// GetInt retrieves an integer configuration value
func GetInt(key string) int {
	if v == nil {
		return 0
	}
	return v.GetInt(key)
}

// GetDuration retrieves a duration configuration value
func GetDuration(key string) time.Duration {
	if v == nil {
		return 0
	}
	return v.GetDuration(key)
}

// Set sets a configuration value
func Set(key string, value interface{}) {
	if v != nil {
		v.Set(key, value)
	}
}

// AllSettings returns all configuration settings as a map
func AllSettings() map[string]interface{} {
	if v == nil {
		return map[string]interface{}{}
	}
	return v.AllSettings()
}

// ConfigFileUsed returns the path of the loaded config file, if any
func ConfigFileUsed() string {
	if v == nil {
		return ""
	}
	return v.ConfigFileUsed()
}

// WriteKey persists a key to the loaded config.yaml and updates the live
// configuration. When no config file was discovered it falls back to the
// workspace file at dir (the caller resolves the workspace).
func WriteKey(dir, key string, value interface{}) (string, error) {
	path := ConfigFileUsed()
	if path == "" {
		if dir == "" {
			return "", fmt.Errorf("no config file found; run 'flow init' first")
		}
		path = filepath.Join(dir, "config.yaml")
	}

	settings := map[string]interface{}{}
	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, &settings); err != nil {
			return "", fmt.Errorf("parsing %s: %w", path, err)
		}
	}

	// Dotted keys nest: "ai.model" lands under the "ai" mapping.
	node := settings
	parts := strings.Split(key, ".")
	for _, part := range parts[:len(parts)-1] {
		child, ok := node[part].(map[string]interface{})
		if !ok {
			child = map[string]interface{}{}
			node[part] = child
		}
		node = child
	}
	node[parts[len(parts)-1]] = value

	data, err := yaml.Marshal(settings)
	if err != nil {
		return "", fmt.Errorf("encoding config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}

	Set(key, value)
	return path, nil
}

// GetActor resolves the acting user for audit fields and chat messages.
// Priority chain:
//  1. flagValue (if non-empty, from --actor flag)
//  2. FLOW_ACTOR env var / config.yaml actor field (via viper)
//  3. git config user.name
//  4. hostname
func GetActor(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}

	if actor := GetString("actor"); actor != "" {
		return actor
	}

	cmd := exec.Command("git", "config", "user.name")
	if output, err := cmd.Output(); err == nil {
		if gitUser := strings.TrimSpace(string(output)); gitUser != "" {
			return gitUser
		}
	}

	if hostname, err := os.Hostname(); err == nil && hostname != "" {
		return hostname
	}

	return "unknown"
}
