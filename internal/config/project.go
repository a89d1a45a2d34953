package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ProjectConfig represents the optional .aiswarm.yml file in a project
// root. It carries options that belong in version control, unlike the
// per-checkout config.json.
type ProjectConfig struct {
	Worktree WorktreeHooks `yaml:"worktree"`
}

// WorktreeHooks configures scripts run around worktree lifecycle events.
type WorktreeHooks struct {
	// InitScript runs after a task worktree is created. Relative paths
	// are resolved against the project root.
	InitScript string `yaml:"init_script"`
	// TeardownScript runs before a completed task's worktree is removed.
	TeardownScript string `yaml:"teardown_script"`
}

// ProjectFileNames are the supported file names, in order of precedence.
var ProjectFileNames = []string{".aiswarm.yml", ".aiswarm.yaml"}

// Conventional hook script locations, used when no .aiswarm.yml exists
// but an executable script is present.
const (
	ConventionalInitScript     = "bin/worktree-setup"
	ConventionalTeardownScript = "bin/worktree-teardown"
)

// LoadProject loads the project options file from root. It returns nil
// with no error when no file exists.
func LoadProject(root string) (*ProjectConfig, error) {
	for _, name := range ProjectFileNames {
		path := filepath.Join(root, name)
		if _, err := os.Stat(path); err == nil {
			data, err := os.ReadFile(path)
			if err != nil {
				return nil, err
			}
			var pc ProjectConfig
			if err := yaml.Unmarshal(data, &pc); err != nil {
				return nil, err
			}
			return &pc, nil
		}
	}
	return nil, nil
}

// InitScript returns the resolved init hook script for root, or "" when
// none is configured or present.
func InitScript(root string) string {
	return hookScript(root, func(pc *ProjectConfig) string { return pc.Worktree.InitScript }, ConventionalInitScript)
}

// TeardownScript returns the resolved teardown hook script for root, or
// "" when none is configured or present.
func TeardownScript(root string) string {
	return hookScript(root, func(pc *ProjectConfig) string { return pc.Worktree.TeardownScript }, ConventionalTeardownScript)
}

func hookScript(root string, pick func(*ProjectConfig) string, conventional string) string {
	if pc, err := LoadProject(root); err == nil && pc != nil {
		if script := pick(pc); script != "" {
			if !filepath.IsAbs(script) {
				script = filepath.Join(root, script)
			}
			if _, err := os.Stat(script); err == nil {
				return script
			}
		}
	}

	// Fall back to the conventional location when it is executable.
	path := filepath.Join(root, conventional)
	if info, err := os.Stat(path); err == nil && info.Mode()&0111 != 0 {
		return path
	}
	return ""
}
