package git

import (
	"errors"
	"strings"
	"testing"
)

// fakeRunner records invocations and replies from a canned script.
type fakeRunner struct {
	calls   [][]string
	dirs    []string
	outputs map[string]string
	errs    map[string]error
}

func newFakeRunner() *fakeRunner {
	return &fakeRunner{outputs: map[string]string{}, errs: map[string]error{}}
}

func (f *fakeRunner) Run(dir string, args ...string) (string, error) {
	f.calls = append(f.calls, args)
	f.dirs = append(f.dirs, dir)
	key := strings.Join(args, " ")
	if err, ok := f.errs[key]; ok {
		return "", err
	}
	return f.outputs[key], nil
}

func TestClientCommands(t *testing.T) {
	tests := []struct {
		name     string
		invoke   func(c *Client) error
		wantArgs string
		wantDir  string
	}{
		{
			name:     "AddWorktree",
			invoke:   func(c *Client) error { return c.AddWorktree("fix-bug", ".worktrees/fix-bug", "master") },
			wantArgs: "worktree add -b fix-bug .worktrees/fix-bug master",
			wantDir:  "/repo",
		},
		{
			name:     "RemoveWorktree",
			invoke:   func(c *Client) error { return c.RemoveWorktree(".worktrees/fix-bug") },
			wantArgs: "worktree remove .worktrees/fix-bug",
			wantDir:  "/repo",
		},
		{
			name:     "PruneWorktrees",
			invoke:   func(c *Client) error { return c.PruneWorktrees() },
			wantArgs: "worktree prune",
			wantDir:  "/repo",
		},
		{
			name:     "DeleteBranch",
			invoke:   func(c *Client) error { return c.DeleteBranch("fix-bug") },
			wantArgs: "branch -d fix-bug",
			wantDir:  "/repo",
		},
		{
			name:     "StageAll runs in the worktree",
			invoke:   func(c *Client) error { return c.StageAll("/repo/.worktrees/fix-bug") },
			wantArgs: "add .",
			wantDir:  "/repo/.worktrees/fix-bug",
		},
		{
			name:     "Commit allows empty",
			invoke:   func(c *Client) error { return c.Commit("/repo/.worktrees/fix-bug", "feat: Complete task fix-bug") },
			wantArgs: "commit --allow-empty -m feat: Complete task fix-bug",
			wantDir:  "/repo/.worktrees/fix-bug",
		},
		{
			name:     "Merge never fast-forwards",
			invoke:   func(c *Client) error { return c.Merge("fix-bug") },
			wantArgs: "merge --no-ff fix-bug",
			wantDir:  "/repo",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := newFakeRunner()
			c := NewWithRunner("/repo", runner)

			if err := tt.invoke(c); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(runner.calls) != 1 {
				t.Fatalf("got %d git calls, want 1", len(runner.calls))
			}
			if got := strings.Join(runner.calls[0], " "); got != tt.wantArgs {
				t.Errorf("args = %q, want %q", got, tt.wantArgs)
			}
			if runner.dirs[0] != tt.wantDir {
				t.Errorf("dir = %q, want %q", runner.dirs[0], tt.wantDir)
			}
		})
	}
}

func TestCurrentBranch(t *testing.T) {
	runner := newFakeRunner()
	runner.outputs["rev-parse --abbrev-ref HEAD"] = "main\n"
	c := NewWithRunner("/repo", runner)

	got, err := c.CurrentBranch()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "main" {
		t.Errorf("CurrentBranch() = %q, want %q", got, "main")
	}
}

func TestListWorktrees(t *testing.T) {
	runner := newFakeRunner()
	runner.outputs["worktree list --porcelain"] = `worktree /repo
HEAD 0123456789abcdef
branch refs/heads/main

worktree /repo/.worktrees/fix-bug
HEAD fedcba9876543210
branch refs/heads/fix-bug

`
	c := NewWithRunner("/repo", runner)

	got, err := c.ListWorktrees()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"/repo", "/repo/.worktrees/fix-bug"}
	if len(got) != len(want) {
		t.Fatalf("ListWorktrees() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("ListWorktrees()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestErrorsPropagate(t *testing.T) {
	cmdErr := &CommandError{
		Args:   []string{"merge", "--no-ff", "fix-bug"},
		Output: "CONFLICT (content): Merge conflict in main.go",
		Err:    errors.New("exit status 1"),
	}

	runner := newFakeRunner()
	runner.errs["merge --no-ff fix-bug"] = cmdErr
	c := NewWithRunner("/repo", runner)

	err := c.Merge("fix-bug")
	var got *CommandError
	if !errors.As(err, &got) {
		t.Fatalf("error = %v, want *CommandError", err)
	}
	if !strings.Contains(got.Error(), "Merge conflict") {
		t.Errorf("error %q does not carry git's diagnostic output", got.Error())
	}
}

func TestGitNotFound(t *testing.T) {
	runner := newFakeRunner()
	runner.errs["rev-parse --abbrev-ref HEAD"] = ErrGitNotFound
	c := NewWithRunner("/repo", runner)

	_, err := c.CurrentBranch()
	if !errors.Is(err, ErrGitNotFound) {
		t.Errorf("error = %v, want ErrGitNotFound", err)
	}
}

func TestCommandErrorMessage(t *testing.T) {
	withOutput := &CommandError{Args: []string{"branch", "-d", "x"}, Output: "error: branch 'x' not found", Err: errors.New("exit status 1")}
	if !strings.Contains(withOutput.Error(), "branch 'x' not found") {
		t.Errorf("Error() = %q, want output included", withOutput.Error())
	}

	withoutOutput := &CommandError{Args: []string{"worktree", "prune"}, Err: errors.New("exit status 128")}
	if got := withoutOutput.Error(); got != "git worktree prune: exit status 128" {
		t.Errorf("Error() = %q", got)
	}
}
