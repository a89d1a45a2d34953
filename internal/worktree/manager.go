// Package worktree manages the isolated working directories bound to
// task branches under the project's .worktrees directory.
package worktree

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// BaseDir is the project-relative directory holding one subdirectory
// per active task.
const BaseDir = ".worktrees"

// ErrExists reports that a worktree directory is already present for a
// branch name. It is informational: starting the same task twice is a
// no-op, not a failure.
var ErrExists = errors.New("worktree already exists")

// Git is the subset of git operations the manager needs.
type Git interface {
	AddWorktree(branch, path, source string) error
	RemoveWorktree(path string) error
	PruneWorktrees() error
	ListWorktrees() ([]string, error)
	DeleteBranch(name string) error
}

// Manager creates, lists, and removes task worktrees for one project.
type Manager struct {
	root string
	git  Git
}

// NewManager creates a manager rooted at the project directory.
func NewManager(root string, g Git) *Manager {
	return &Manager{root: root, git: g}
}

// Base returns the worktrees base directory.
func (m *Manager) Base() string {
	return filepath.Join(m.root, BaseDir)
}

// Path returns the deterministic worktree path for a branch name. Two
// tasks can never share a directory because the path is a pure function
// of the name.
func (m *Manager) Path(name string) string {
	return filepath.Join(m.Base(), name)
}

// Exists reports whether a worktree directory is present for name. The
// filesystem, not git's view of branches, is the source of truth here.
func (m *Manager) Exists(name string) bool {
	_, err := os.Stat(m.Path(name))
	return err == nil
}

// Create makes a new worktree for branch forked from source. It returns
// the worktree path, or ErrExists (with the path) when the directory is
// already present. A git failure leaves whatever git did in place; the
// single worktree-add invocation is relied on to be atomic.
func (m *Manager) Create(branch, source string) (string, error) {
	path := m.Path(branch)
	if _, err := os.Stat(path); err == nil {
		return path, ErrExists
	}

	if err := m.git.AddWorktree(branch, path, source); err != nil {
		return "", err
	}
	return path, nil
}

// Remove detaches the worktree for name.
func (m *Manager) Remove(name string) error {
	return m.git.RemoveWorktree(m.Path(name))
}

// DeleteBranch deletes the branch for name. Only safe after Remove.
func (m *Manager) DeleteBranch(name string) error {
	return m.git.DeleteBranch(name)
}

// List returns the names of all active worktrees, sorted. An absent
// base directory is an empty listing, not an error.
func (m *Manager) List() ([]string, error) {
	entries, err := os.ReadDir(m.Base())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("list worktrees: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// CleanupStale prunes git's records of deleted worktrees and removes
// leftover directories git no longer tracks, such as the debris of an
// interrupted start. It returns the names of the removed (or, with
// dryRun, removable) entries.
func (m *Manager) CleanupStale(dryRun bool) ([]string, error) {
	if err := m.git.PruneWorktrees(); err != nil {
		return nil, err
	}

	tracked, err := m.git.ListWorktrees()
	if err != nil {
		return nil, err
	}
	trackedSet := make(map[string]bool, len(tracked))
	for _, p := range tracked {
		if abs, err := filepath.Abs(p); err == nil {
			trackedSet[abs] = true
		}
	}

	names, err := m.List()
	if err != nil {
		return nil, err
	}

	var stale []string
	for _, name := range names {
		abs, err := filepath.Abs(m.Path(name))
		if err != nil || trackedSet[abs] {
			continue
		}
		if !dryRun {
			if err := os.RemoveAll(m.Path(name)); err != nil {
				return stale, fmt.Errorf("remove stale worktree %s: %w", name, err)
			}
		}
		stale = append(stale, name)
	}
	return stale, nil
}
