// tasks.go implements the tool verbs: install, test, lint, format,
// clean, freeze, and venv.
//
// Each verb maps to exactly one underlying external tool invocation (or
// a fixed two-tool sequence for lint and format). The runner performs
// no branching logic and no error translation: a wrapped tool's exit
// code surfaces to the invoking shell unchanged, and the tool's own
// diagnostic text is the only failure output.
package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/devinda0/runstack/internal/task"
)

// newRunner loads the configuration and wraps it in a task.Runner.
func newRunner() (*task.Runner, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return task.NewRunner(cfg), nil
}

// NewInstallCommand creates the "install" cobra command.
func NewInstallCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "install",
		Short: "Install pinned dependencies from the manifest file",

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := newRunner()
			if err != nil {
				return err
			}
			return r.Install(cmd.Context())
		},
	}
}

// NewTestCommand creates the "test" cobra command. An optional
// positional argument scopes the run to a single test file.
func NewTestCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "test [file]",
		Short: "Run the test suite verbosely, optionally scoped to one file",

		Args: cobra.MaximumNArgs(1),

		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := newRunner()
			if err != nil {
				return err
			}
			file := ""
			if len(args) == 1 {
				file = args[0]
			}
			return r.Test(cmd.Context(), file)
		},
	}
}

// NewLintCommand creates the "lint" cobra command: the two
// static-analysis tools in sequence over the application directory,
// stopping at the first failure.
func NewLintCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "lint",
		Short: "Run the static-analysis tools over the application directory",

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := newRunner()
			if err != nil {
				return err
			}
			return r.Lint(cmd.Context())
		},
	}
}

// NewFormatCommand creates the "format" cobra command: the two
// formatters in sequence over the application directory.
func NewFormatCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "format",
		Short: "Run the source formatters over the application directory",

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := newRunner()
			if err != nil {
				return err
			}
			return r.Format(cmd.Context())
		},
	}
}

// NewCleanCommand creates the "clean" cobra command. Removal is
// best-effort and idempotent: a second run with nothing left to remove
// still succeeds.
func NewCleanCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clean",
		Short: "Remove cache and artifact files from the project tree",

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := newRunner()
			if err != nil {
				return err
			}
			removed := r.Clean(".")
			printCleanResult(removed)
			return nil
		},
	}
}

// printCleanResult outputs the clean command result in text or JSON
// format.
func printCleanResult(removed []string) {
	if IsJSONOutput() {
		result := struct {
			Removed []string `json:"removed"`
		}{Removed: removed}
		if result.Removed == nil {
			result.Removed = []string{}
		}
		data, _ := json.MarshalIndent(result, "", "  ")
		fmt.Println(string(data))
		return
	}

	if len(removed) == 0 {
		fmt.Println("Nothing to clean")
		return
	}
	for _, path := range removed {
		fmt.Printf("removed %s\n", path)
	}
}

// NewFreezeCommand creates the "freeze" cobra command, which captures
// the currently resolved dependency versions into the manifest file.
// freeze followed by install reproduces an equivalent dependency set.
func NewFreezeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "freeze",
		Short: "Capture resolved dependency versions into the manifest file",

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := newRunner()
			if err != nil {
				return err
			}
			return r.Freeze(cmd.Context())
		},
	}
}

// NewVenvCommand creates the "venv" cobra command.
func NewVenvCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "venv",
		Short: "Create the isolated dependency environment directory",

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := newRunner()
			if err != nil {
				return err
			}
			return r.Venv(cmd.Context())
		},
	}
}
