// aiswarm is the CLI for managing parallel agent development tasks in
// git worktrees.
package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/aiswarm/aiswarm/internal/config"
	"github.com/aiswarm/aiswarm/internal/git"
	"github.com/aiswarm/aiswarm/internal/task"
	"github.com/aiswarm/aiswarm/internal/templates"
	"github.com/aiswarm/aiswarm/internal/worktree"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var (
	version = "dev"

	// Styles for CLI output
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	boldStyle    = lipgloss.NewStyle().Bold(true)
)

// fail prints a styled error and exits.
func fail(msg string) {
	fmt.Fprintln(os.Stderr, errorStyle.Render("Error: "+msg))
	os.Exit(1)
}

// newLifecycle wires up the lifecycle for the current directory.
func newLifecycle(verbose bool) *task.Lifecycle {
	root, err := os.Getwd()
	if err != nil {
		fail(err.Error())
	}

	gitClient := git.New(root)
	if verbose {
		gitClient = git.NewWithLogging(root, os.Stderr)
	}

	manager := worktree.NewManager(root, gitClient)
	lifecycle := task.NewLifecycle(root, gitClient, manager, config.Load(root))
	if verbose {
		lifecycle.SetLogger(os.Stderr)
	}
	return lifecycle
}

func main() {
	var verbose bool

	rootCmd := &cobra.Command{
		Use:     "aiswarm",
		Short:   "Manage parallel agent development tasks",
		Long:    "aiswarm runs each development task in its own git worktree so multiple agents can work in parallel without stepping on each other.",
		Version: version,
	}

	rootCmd.SetVersionTemplate(`{{.Version}}
`)
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Trace git invocations and lifecycle steps to stderr")

	// Init subcommand - write project configuration
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize the aiswarm project configuration",
		Long: `Creates .aiswarm/config.json for the current project.

Values not supplied as flags are collected interactively.

Examples:
  aiswarm init
  aiswarm init --test-command "npm test" --port 63342 --default-branch main`,
		Run: func(cmd *cobra.Command, args []string) {
			root, err := os.Getwd()
			if err != nil {
				fail(err.Error())
			}

			fmt.Println("Initializing project...")

			if config.Exists(root) {
				fmt.Println(dimStyle.Render("Configuration file already exists."))
				return
			}

			testCommand, _ := cmd.Flags().GetString("test-command")
			port, _ := cmd.Flags().GetString("port")
			defaultBranch, _ := cmd.Flags().GetString("default-branch")

			if !cmd.Flags().Changed("test-command") {
				err := huh.NewInput().
					Title("Test command").
					Description("Command to run your project's tests (e.g. 'pytest', 'npm test')").
					Value(&testCommand).
					Run()
				if err != nil {
					fail(err.Error())
				}
			}
			if !cmd.Flags().Changed("port") {
				port = config.DefaultPort
				err := huh.NewInput().
					Title("JetBrains MCP server port").
					Value(&port).
					Run()
				if err != nil {
					fail(err.Error())
				}
			}
			if !cmd.Flags().Changed("default-branch") {
				defaultBranch = config.DefaultBranch
				err := huh.NewInput().
					Title("Default source branch for new tasks").
					Description("e.g. 'main' or 'master'").
					Value(&defaultBranch).
					Run()
				if err != nil {
					fail(err.Error())
				}
			}

			cfg := &config.Config{
				TestCommand:        testCommand,
				MCPJetBrainsServer: config.ServerURL(port),
				DefaultBranch:      defaultBranch,
			}
			if err := cfg.Save(root); err != nil {
				fail(err.Error())
			}

			fmt.Println(successStyle.Render("Created configuration file: " + config.Path(root)))
			fmt.Println("Project initialized.")
		},
	}
	initCmd.Flags().String("test-command", "", "The command to run tests")
	initCmd.Flags().String("port", config.DefaultPort, "The port for the JetBrains MCP server")
	initCmd.Flags().String("default-branch", config.DefaultBranch, "The default source branch for new tasks")
	rootCmd.AddCommand(initCmd)

	// Task subcommand - start a task in a new worktree
	taskCmd := &cobra.Command{
		Use:   "task <description|file>...",
		Short: "Start a task in its own worktree",
		Long: `Starts a task in a new git worktree under .worktrees/.

The argument is either free-form task text or the path of a file whose
contents describe the task. Starting the same task twice is a no-op.

Examples:
  aiswarm task "Fix login bug"
  aiswarm task features/user-auth.md --from-branch develop
  aiswarm task "Add rate limiting" --test-file tests/rate_test.go
  aiswarm task "Cover edge case" --test-file tests/auth_test.go --test-action modify`,
		Args: cobra.MinimumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			fromBranch, _ := cmd.Flags().GetString("from-branch")
			testFile, _ := cmd.Flags().GetString("test-file")
			testAction, _ := cmd.Flags().GetString("test-action")

			if testAction != task.TestActionCreate && testAction != task.TestActionModify {
				fail("--test-action must be 'create' or 'modify'")
			}

			lifecycle := newLifecycle(verbose)
			res, err := lifecycle.Start(strings.Join(args, " "), task.StartOptions{
				FromBranch: fromBranch,
				TestFile:   testFile,
				TestAction: testAction,
			})
			if err != nil {
				if errors.Is(err, git.ErrGitNotFound) {
					fail(err.Error())
				}
				fail("creating git worktree: " + err.Error())
			}

			if res.FromFile {
				fmt.Println("Received new task from file: " + strings.Join(args, " "))
			} else {
				fmt.Println("Received new task: " + res.Description)
			}

			if res.AlreadyExists {
				fmt.Println(dimStyle.Render("Worktree for this task already exists."))
				return
			}

			fmt.Println("Created new worktree in: " + res.Path)
			fmt.Println("Created dynamic context file: " + task.ContextPath(res.Path))
			fmt.Println(successStyle.Render(fmt.Sprintf("Task '%s' started.", res.Name)))
		},
	}
	taskCmd.Flags().String("from-branch", "", "The source branch for the new worktree (default: configured default_branch)")
	taskCmd.Flags().String("test-file", "", "The path to the test file to be created or modified")
	taskCmd.Flags().String("test-action", task.TestActionCreate, "Action for the test file: create or modify")
	rootCmd.AddCommand(taskCmd)

	// Complete subcommand - merge and clean up a task
	completeCmd := &cobra.Command{
		Use:   "complete <task-name>",
		Short: "Commit, merge, and clean up a completed task",
		Long: `Commits all pending changes in the task's worktree, merges the task
branch into the currently checked-out branch (always with a merge
commit), then removes the worktree and deletes the branch.

Examples:
  aiswarm complete fix-login-bug`,
		Args: cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			name := args[0]
			fmt.Println("Completing task: " + name)

			lifecycle := newLifecycle(verbose)
			target, err := lifecycle.Complete(name)
			if err != nil {
				if errors.Is(err, task.ErrNotFound) {
					fail(fmt.Sprintf("worktree for task '%s' not found", name))
				}
				fail("during git operation: " + err.Error())
			}

			fmt.Println(successStyle.Render(fmt.Sprintf("Task '%s' completed and merged into %s.", name, target)))
		},
	}
	rootCmd.AddCommand(completeCmd)

	// Status subcommand - list active tasks
	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "List all active tasks",
		Run: func(cmd *cobra.Command, args []string) {
			lifecycle := newLifecycle(verbose)
			names, err := lifecycle.Status()
			if err != nil {
				fail(err.Error())
			}

			if len(names) == 0 {
				fmt.Println(dimStyle.Render("No active tasks."))
				return
			}

			fmt.Println(boldStyle.Render("Active tasks (worktrees):"))
			for _, name := range names {
				fmt.Println("- " + name)
			}
		},
	}
	rootCmd.AddCommand(statusCmd)

	// Show subcommand - render a task's context document
	showCmd := &cobra.Command{
		Use:   "show <task-name>",
		Short: "Show a task's context document",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			lifecycle := newLifecycle(verbose)
			content, err := lifecycle.Context(args[0])
			if err != nil {
				if errors.Is(err, task.ErrNotFound) {
					fail(fmt.Sprintf("worktree for task '%s' not found", args[0]))
				}
				fail(err.Error())
			}

			rendered, err := glamour.Render(content, "dark")
			if err != nil {
				// Fall back to the raw document.
				fmt.Print(content)
				return
			}
			fmt.Print(rendered)
		},
	}
	rootCmd.AddCommand(showCmd)

	// Refactor subcommand - reserved for the JetBrains MCP integration
	refactorCmd := &cobra.Command{
		Use:   "refactor <task-name> <file>",
		Short: "Trigger a refactoring action on a file in a worktree",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			// Talking to the configured MCP server is intentionally not
			// implemented; this tool does no network IO.
			fmt.Printf("Refactoring %s in task %s...\n", args[1], args[0])
			fmt.Println(dimStyle.Render("Refactoring via the JetBrains MCP server is not implemented yet."))
		},
	}
	rootCmd.AddCommand(refactorCmd)

	// ADR subcommand - create a decision record
	adrCmd := &cobra.Command{
		Use:   "adr <decision-summary>",
		Short: "Create a new ADR file from the template",
		Long: `Creates a numbered Architecture Decision Record under docs/adr/.

Examples:
  aiswarm adr "Use SQLite for local persistence"`,
		Args: cobra.MinimumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			summary := strings.Join(args, " ")
			fmt.Println("Creating new ADR: " + summary)

			root, err := os.Getwd()
			if err != nil {
				fail(err.Error())
			}
			path, err := templates.CreateADR(root, summary)
			if err != nil {
				fail(err.Error())
			}
			fmt.Println(successStyle.Render("ADR created: " + path))
		},
	}
	rootCmd.AddCommand(adrCmd)

	// Cleanup subcommand - remove stale worktrees
	cleanupCmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Remove stale worktrees",
		Long: `Prunes git's records of deleted worktrees and removes directories
under .worktrees/ that git no longer tracks, such as the leftovers of
an interrupted task start.

Examples:
  aiswarm cleanup
  aiswarm cleanup --dry-run`,
		Run: func(cmd *cobra.Command, args []string) {
			dryRun, _ := cmd.Flags().GetBool("dry-run")

			root, err := os.Getwd()
			if err != nil {
				fail(err.Error())
			}
			gitClient := git.New(root)
			if verbose {
				gitClient = git.NewWithLogging(root, os.Stderr)
			}

			stale, err := worktree.NewManager(root, gitClient).CleanupStale(dryRun)
			if err != nil {
				fail(err.Error())
			}

			if len(stale) == 0 {
				fmt.Println(dimStyle.Render("No stale worktrees found."))
				return
			}
			if dryRun {
				fmt.Printf("Would remove %d stale worktree(s):\n", len(stale))
			} else {
				fmt.Println(successStyle.Render(fmt.Sprintf("Removed %d stale worktree(s):", len(stale))))
			}
			for _, name := range stale {
				fmt.Println("- " + name)
			}
		},
	}
	cleanupCmd.Flags().Bool("dry-run", false, "Show what would be removed without making changes")
	rootCmd.AddCommand(cleanupCmd)

	// Templates subcommand - install agent prompt files
	templatesCmd := &cobra.Command{
		Use:   "templates",
		Short: "Install the agent prompt templates",
		Long: `Writes the planner, implementer, and reviewer prompt files plus the
Copilot instructions into the target directory.`,
		Run: func(cmd *cobra.Command, args []string) {
			dir, _ := cmd.Flags().GetString("dir")
			written, err := templates.Install(dir)
			if err != nil {
				fail(err.Error())
			}
			for _, path := range written {
				fmt.Println("Installed template: " + path)
			}
		},
	}
	templatesCmd.Flags().String("dir", ".", "Directory to install templates into")
	rootCmd.AddCommand(templatesCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
