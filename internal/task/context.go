package task

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/aiswarm/aiswarm/internal/config"
)

// ContextFileName is the status document written into each worktree.
const ContextFileName = "context.md"

// ContextPath returns the context document path for a worktree.
func ContextPath(worktreePath string) string {
	return filepath.Join(worktreePath, config.Dir, ContextFileName)
}

// writeContext writes the per-task status document into the new
// worktree. The document is informational; nothing reads it back except
// the show command.
func (l *Lifecycle) writeContext(res *StartResult, opts StartOptions) error {
	dir := filepath.Join(res.Path, config.Dir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create context directory: %w", err)
	}

	abs, err := filepath.Abs(res.Path)
	if err != nil {
		abs = res.Path
	}

	content := fmt.Sprintf(`# AI Swarm: Active Task

**Task:** %s

**Status:** Awaiting implementation.

**Worktree:** %s

**➡️ Next Action:** %s
`, res.Description, abs, nextAction(opts))

	if err := os.WriteFile(filepath.Join(dir, ContextFileName), []byte(content), 0644); err != nil {
		return fmt.Errorf("write context document: %w", err)
	}
	return nil
}

// nextAction picks one of the three fixed next-action phrasings.
func nextAction(opts StartOptions) string {
	if opts.TestFile == "" {
		return "Your turn, Gemini. Please implement the requested feature."
	}
	if opts.TestAction == TestActionModify {
		return fmt.Sprintf("Your turn, Gemini. Please modify the test in `%s` to add a new assertion that satisfies the user's request.", opts.TestFile)
	}
	return fmt.Sprintf("Your turn, Gemini. Please create a failing test in `%s` that satisfies the user's request.", opts.TestFile)
}
