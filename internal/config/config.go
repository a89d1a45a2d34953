// Package config manages the per-project aiswarm configuration.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	// Dir is the project-relative configuration directory. The same
	// directory name is reused inside each worktree for the task
	// context document.
	Dir = ".aiswarm"

	// FileName is the configuration file name inside Dir.
	FileName = "config.json"
)

// Defaults used when the configuration file is absent or unreadable.
const (
	DefaultBranch = "master"
	DefaultPort   = "63342"
)

// Config is the flat project configuration stored at .aiswarm/config.json.
type Config struct {
	TestCommand        string `json:"test_command"`
	MCPJetBrainsServer string `json:"mcp_jetbrains_server"`
	DefaultBranch      string `json:"default_branch"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		TestCommand:        "",
		MCPJetBrainsServer: ServerURL(DefaultPort),
		DefaultBranch:      DefaultBranch,
	}
}

// ServerURL builds the JetBrains MCP server URL for a local port.
func ServerURL(port string) string {
	return "http://localhost:" + port
}

// Path returns the configuration file path for a project root.
func Path(root string) string {
	return filepath.Join(root, Dir, FileName)
}

// Exists reports whether a configuration file is present for the project.
func Exists(root string) bool {
	_, err := os.Stat(Path(root))
	return err == nil
}

// Load reads the project configuration. A missing or malformed file is
// not an error: the documented defaults are returned instead, so every
// caller always gets a usable config.
func Load(root string) *Config {
	data, err := os.ReadFile(Path(root))
	if err != nil {
		return Default()
	}

	cfg := Default()
	if err := json.Unmarshal(data, cfg); err != nil {
		return Default()
	}

	// The source branch must never be empty; a file edited by hand can
	// leave it blank.
	if strings.TrimSpace(cfg.DefaultBranch) == "" {
		cfg.DefaultBranch = DefaultBranch
	}
	return cfg
}

// Save writes the configuration, creating the directory if needed and
// overwriting any existing file.
func (c *Config) Save(root string) error {
	dir := filepath.Join(root, Dir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "    ")
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	if err := os.WriteFile(filepath.Join(dir, FileName), append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
