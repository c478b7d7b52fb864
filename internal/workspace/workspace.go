// Package workspace locates and initializes the .flowai data directory.
package workspace

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/untoldecay/flowai/internal/config"
)

// DirName is the workspace directory created by `flow init`.
const DirName = ".flowai"

// ErrNotFound is returned when no workspace exists in the directory tree.
var ErrNotFound = fmt.Errorf("no %s directory found (run 'flow init' first)", DirName)

// Find walks up from the current directory looking for a .flowai directory.
// Returns empty string if not found.
func Find() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}
	for dir := cwd; ; dir = filepath.Dir(dir) {
		candidate := filepath.Join(dir, DirName)
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return candidate
		}
		if dir == filepath.Dir(dir) {
			return ""
		}
	}
}

// DataDir resolves the workspace data directory.
// Priority: --data-dir flag > FLOW_DATA_DIR / config data-dir > walk-up discovery.
func DataDir(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	if dir := config.GetString("data-dir"); dir != "" {
		return dir, nil
	}
	if dir := Find(); dir != "" {
		return dir, nil
	}
	return "", ErrNotFound
}

// defaultConfig mirrors the keys config.Initialize registers defaults for.
type defaultConfig struct {
	Actor string `yaml:"actor"`
	AI    struct {
		Mode string `yaml:"mode"`
	} `yaml:"ai"`
	Chat struct {
		CurrentUser string `yaml:"current-user"`
	} `yaml:"chat"`
	Task struct {
		DefaultPriority string `yaml:"default-priority"`
	} `yaml:"task"`
}

// Init creates a .flowai directory under root and writes a default
// config.yaml. Idempotent: an existing workspace is left untouched and
// its path returned.
func Init(root, actor string) (string, error) {
	dir := filepath.Join(root, DirName)
	configPath := filepath.Join(dir, "config.yaml")

	if _, err := os.Stat(configPath); err == nil {
		return dir, nil
	}

	if err := os.MkdirAll(dir, 0750); err != nil {
		return "", fmt.Errorf("failed to create workspace dir: %w", err)
	}

	var cfg defaultConfig
	cfg.Actor = actor
	cfg.AI.Mode = "rules"
	cfg.Chat.CurrentUser = "You"
	cfg.Task.DefaultPriority = "medium"

	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return "", fmt.Errorf("failed to marshal default config: %w", err)
	}
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write config.yaml: %w", err)
	}
	return dir, nil
}
