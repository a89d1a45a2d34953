// Package task composes worktree operations into the user-facing task
// lifecycle: start, complete, and status.
package task

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/aiswarm/aiswarm/internal/branch"
	"github.com/aiswarm/aiswarm/internal/config"
	"github.com/aiswarm/aiswarm/internal/worktree"
	"github.com/charmbracelet/log"
)

// ErrNotFound reports that no worktree directory exists for a task name.
var ErrNotFound = errors.New("task not found")

// TestAction selects the phrasing of the next-action hint when a test
// file is named at task start.
const (
	TestActionCreate = "create"
	TestActionModify = "modify"
)

// Git is the subset of git operations Complete needs beyond what the
// worktree manager already covers.
type Git interface {
	StageAll(dir string) error
	Commit(dir, message string) error
	CurrentBranch() (string, error)
	Merge(branch string) error
}

// StartOptions tune how a task is started.
type StartOptions struct {
	// FromBranch overrides the configured default source branch.
	FromBranch string
	// TestFile is the test file the agent should create or modify.
	TestFile string
	// TestAction is TestActionCreate or TestActionModify.
	TestAction string
}

// StartResult describes the outcome of Start.
type StartResult struct {
	Name          string
	Path          string
	Description   string
	SourceBranch  string
	FromFile      bool
	AlreadyExists bool
}

// Lifecycle drives tasks through their states. There is no persisted
// state machine: a task is active exactly while its worktree directory
// exists.
type Lifecycle struct {
	root      string
	git       Git
	worktrees *worktree.Manager
	config    *config.Config
	logger    *log.Logger
}

// NewLifecycle creates a lifecycle for the project at root.
func NewLifecycle(root string, g Git, m *worktree.Manager, cfg *config.Config) *Lifecycle {
	return &Lifecycle{
		root:      root,
		git:       g,
		worktrees: m,
		config:    cfg,
		logger:    log.NewWithOptions(io.Discard, log.Options{Prefix: "task"}),
	}
}

// SetLogger routes lifecycle logging to w (used by --verbose).
func (l *Lifecycle) SetLogger(w io.Writer) {
	l.logger = log.NewWithOptions(w, log.Options{Prefix: "task", Level: log.DebugLevel})
}

// Start begins a task. When input names an existing file, the file's
// contents become the description and its base name seeds the branch
// name; otherwise input is both. An already active task is reported via
// AlreadyExists, not an error, and nothing is mutated on that path.
func (l *Lifecycle) Start(input string, opts StartOptions) (*StartResult, error) {
	res := &StartResult{Description: input}

	if info, err := os.Stat(input); err == nil && !info.IsDir() {
		data, err := os.ReadFile(input)
		if err != nil {
			return nil, fmt.Errorf("read task file: %w", err)
		}
		res.Description = string(data)
		res.Name = branch.Slug(filepath.Base(input))
		res.FromFile = true
	} else {
		res.Name = branch.Slug(input)
	}
	if res.Name == "" {
		return nil, fmt.Errorf("task description %q yields an empty branch name", input)
	}

	res.SourceBranch = opts.FromBranch
	if res.SourceBranch == "" {
		res.SourceBranch = l.config.DefaultBranch
	}
	if res.SourceBranch == "" {
		res.SourceBranch = config.DefaultBranch
	}

	path, err := l.worktrees.Create(res.Name, res.SourceBranch)
	if errors.Is(err, worktree.ErrExists) {
		res.Path = path
		res.AlreadyExists = true
		return res, nil
	}
	if err != nil {
		return nil, err
	}
	res.Path = path

	if err := l.writeContext(res, opts); err != nil {
		return nil, err
	}

	l.runHook(config.InitScript(l.root), res.Name, path)
	return res, nil
}

// Complete commits, merges, and cleans up a task. Steps run in a fixed
// order and the first failure aborts the rest; earlier steps are not
// rolled back. It returns the branch the task was merged into.
func (l *Lifecycle) Complete(name string) (string, error) {
	path := l.worktrees.Path(name)
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("%w: %s", ErrNotFound, name)
	}

	l.runHook(config.TeardownScript(l.root), name, path)

	l.logger.Debug("committing final changes", "task", name)
	if err := l.git.StageAll(path); err != nil {
		return "", err
	}
	if err := l.git.Commit(path, fmt.Sprintf("feat: Complete task %s", name)); err != nil {
		return "", err
	}

	// The merge target is whatever branch is checked out in the outer
	// repository, not the task's worktree.
	target, err := l.git.CurrentBranch()
	if err != nil {
		return "", err
	}

	l.logger.Debug("merging", "branch", name, "into", target)
	if err := l.git.Merge(name); err != nil {
		return target, err
	}

	if err := l.worktrees.Remove(name); err != nil {
		return target, err
	}
	if err := l.worktrees.DeleteBranch(name); err != nil {
		return target, err
	}
	return target, nil
}

// Status lists the names of all active tasks. Absent or empty base
// directory means no tasks, never an error.
func (l *Lifecycle) Status() ([]string, error) {
	return l.worktrees.List()
}

// Context returns the task's context document.
func (l *Lifecycle) Context(name string) (string, error) {
	path := l.worktrees.Path(name)
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	data, err := os.ReadFile(ContextPath(path))
	if err != nil {
		return "", fmt.Errorf("read context document: %w", err)
	}
	return string(data), nil
}

// runHook runs a project hook script with the task identity in the
// environment. Hook failures are logged and swallowed; hooks never
// block the lifecycle.
func (l *Lifecycle) runHook(script, name, path string) {
	if script == "" {
		return
	}
	cmd := exec.Command(script)
	cmd.Dir = l.root
	cmd.Env = append(os.Environ(),
		"AISWARM_TASK="+name,
		"AISWARM_WORKTREE="+path,
	)
	if out, err := cmd.CombinedOutput(); err != nil {
		l.logger.Error("hook failed", "script", script, "error", err, "output", strings.TrimSpace(string(out)))
	} else {
		l.logger.Debug("hook executed", "script", script)
	}
}
