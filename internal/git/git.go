// Package git wraps the git command line for the worktree and branch
// operations aiswarm needs. Every call blocks until git exits; there is
// no retry and no rollback of partially applied work.
package git

import (
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"

	"github.com/charmbracelet/log"
)

// ErrGitNotFound is returned when the git binary is not on PATH.
var ErrGitNotFound = errors.New("git command not found; is git installed and in your PATH?")

// CommandError is a failed git invocation. It carries the combined
// output so callers can show git's own diagnostic instead of a bare
// exit status.
type CommandError struct {
	Args   []string
	Output string
	Err    error
}

func (e *CommandError) Error() string {
	if e.Output == "" {
		return fmt.Sprintf("git %s: %v", strings.Join(e.Args, " "), e.Err)
	}
	return fmt.Sprintf("git %s: %v\n%s", strings.Join(e.Args, " "), e.Err, e.Output)
}

func (e *CommandError) Unwrap() error { return e.Err }

// Runner executes a git command in a directory and returns its combined
// output. The process-spawning runner is the only one used outside of
// tests.
type Runner interface {
	Run(dir string, args ...string) (string, error)
}

// ExecRunner runs git as a subprocess.
type ExecRunner struct{}

// Run implements Runner.
func (ExecRunner) Run(dir string, args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	if err != nil {
		var execErr *exec.Error
		if errors.As(err, &execErr) && errors.Is(execErr.Err, exec.ErrNotFound) {
			return "", ErrGitNotFound
		}
		return "", &CommandError{Args: args, Output: strings.TrimSpace(string(out)), Err: err}
	}
	return string(out), nil
}

// Client issues git operations for one repository.
type Client struct {
	root   string
	runner Runner
	logger *log.Logger
}

// New creates a client for the repository at root.
func New(root string) *Client {
	return &Client{
		root:   root,
		runner: ExecRunner{},
		logger: log.NewWithOptions(io.Discard, log.Options{Prefix: "git"}),
	}
}

// NewWithLogging creates a client that traces every invocation to w.
func NewWithLogging(root string, w io.Writer) *Client {
	c := New(root)
	c.logger = log.NewWithOptions(w, log.Options{Prefix: "git", Level: log.DebugLevel})
	return c
}

// NewWithRunner creates a client with a custom runner, for tests.
func NewWithRunner(root string, r Runner) *Client {
	c := New(root)
	c.runner = r
	return c
}

func (c *Client) run(dir string, args ...string) (string, error) {
	c.logger.Debug("run", "dir", dir, "args", strings.Join(args, " "))
	return c.runner.Run(dir, args...)
}

// AddWorktree creates branch from source and checks it out at path.
func (c *Client) AddWorktree(branch, path, source string) error {
	_, err := c.run(c.root, "worktree", "add", "-b", branch, path, source)
	return err
}

// RemoveWorktree detaches the worktree at path.
func (c *Client) RemoveWorktree(path string) error {
	_, err := c.run(c.root, "worktree", "remove", path)
	return err
}

// PruneWorktrees drops administrative entries for worktrees whose
// directories no longer exist.
func (c *Client) PruneWorktrees() error {
	_, err := c.run(c.root, "worktree", "prune")
	return err
}

// ListWorktrees returns the paths of all worktrees git tracks for the
// repository, including the main checkout.
func (c *Client) ListWorktrees() ([]string, error) {
	out, err := c.run(c.root, "worktree", "list", "--porcelain")
	if err != nil {
		return nil, err
	}
	var paths []string
	for _, line := range strings.Split(out, "\n") {
		if rest, ok := strings.CutPrefix(line, "worktree "); ok {
			paths = append(paths, strings.TrimSpace(rest))
		}
	}
	return paths, nil
}

// DeleteBranch deletes a fully merged branch. Callers must detach the
// associated worktree first.
func (c *Client) DeleteBranch(name string) error {
	_, err := c.run(c.root, "branch", "-d", name)
	return err
}

// StageAll stages every pending change in dir.
func (c *Client) StageAll(dir string) error {
	_, err := c.run(dir, "add", ".")
	return err
}

// Commit records staged changes in dir. An empty commit is allowed so a
// task branch always has a mergeable commit.
func (c *Client) Commit(dir, message string) error {
	_, err := c.run(dir, "commit", "--allow-empty", "-m", message)
	return err
}

// CurrentBranch returns the branch checked out in the main repository.
func (c *Client) CurrentBranch() (string, error) {
	out, err := c.run(c.root, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// Merge merges branch into the current branch with a merge commit,
// never fast-forwarding, so each task leaves a visible merge point.
func (c *Client) Merge(branch string) error {
	_, err := c.run(c.root, "merge", "--no-ff", branch)
	return err
}
