// Package cli implements the cobra-based CLI commands for runstack.
//
// Each verb (install, dev, run, agent, launch, serve, build, test,
// lint, format, clean, freeze, venv) is defined in its own file within
// this package. This file defines the root command that serves as the
// parent for all subcommands and handles global flags and exit code
// translation.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/devinda0/runstack/internal/config"
	"github.com/devinda0/runstack/internal/model"
	"github.com/devinda0/runstack/internal/proc"
)

// Global flag variables shared across all subcommands.
// These are bound to cobra persistent flags on the root command,
// which makes them available to every subcommand automatically.
var (
	// jsonOutput controls whether command output is formatted as JSON.
	// When true, all output uses structured JSON format for machine
	// consumption. When false (default), output is human-readable text.
	jsonOutput bool

	// verbose enables detailed logging output for debugging.
	// When true, additional information about operations is printed
	// to stderr.
	verbose bool

	// configPath overrides the runstack.jsonc location.
	configPath string
)

// version, commit, and date are set at build time via ldflags.
// They are injected from the main package to display version information.
var (
	// Version is the semantic version of the binary (e.g., "1.0.0").
	Version = "dev"

	// Commit is the Git commit hash the binary was built from.
	Commit = "none"

	// Date is the build timestamp.
	Date = "unknown"
)

// NewRootCommand creates and configures the root cobra command.
// This is the entry point for the entire CLI application.
//
// The root command itself does not perform any action — it only
// provides help text and global flags. Actual functionality is
// provided by the subcommands.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "runstack",
		Short: "Process orchestration for the backend's service and agent roles",
		Long: `runstack orchestrates the two runtime roles of the backend — the
request-serving service process and the real-time agent process — and
wraps the project's developer toolchain behind uniform verbs.

Process commands:
  dev, run      start the service process (with/without auto-reload)
  agent         start the agent process in development mode
  launch        start service (background) and agent (foreground) together
  serve         replace this process with the service process (cluster topology)
  build         package the service-only image and deployment manifest

Tool verbs:
  install, test, lint, format, clean, freeze, venv, download-files`,

		// SilenceUsage prevents cobra from printing usage on every error.
		// We handle error output ourselves for cleaner UX.
		SilenceUsage: true,

		// SilenceErrors prevents cobra from printing errors automatically.
		// We format errors ourselves (text or JSON based on --json flag).
		SilenceErrors: true,

		// Version is displayed when --version flag is used.
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, Date),
	}

	// PersistentFlags are inherited by all subcommands. Any flag
	// defined here is automatically available in every subcommand
	// without re-declaration.
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to runstack.jsonc (default: ./runstack.jsonc)")

	// Register subcommands. Each is defined in its own file and
	// returns a *cobra.Command.
	rootCmd.AddCommand(NewDevCommand())
	rootCmd.AddCommand(NewRunCommand())
	rootCmd.AddCommand(NewAgentCommand())
	rootCmd.AddCommand(NewDownloadFilesCommand())
	rootCmd.AddCommand(NewLaunchCommand())
	rootCmd.AddCommand(NewServeCommand())
	rootCmd.AddCommand(NewBuildCommand())
	rootCmd.AddCommand(NewInstallCommand())
	rootCmd.AddCommand(NewTestCommand())
	rootCmd.AddCommand(NewLintCommand())
	rootCmd.AddCommand(NewFormatCommand())
	rootCmd.AddCommand(NewCleanCommand())
	rootCmd.AddCommand(NewFreezeCommand())
	rootCmd.AddCommand(NewVenvCommand())

	return rootCmd
}

// Execute runs the root command and handles exit codes.
// This is the main entry point called from main.go.
//
// Termination signals (SIGINT, SIGTERM) cancel the command context,
// which the launcher translates into SIGTERM for any running child
// processes.
//
// Error translation policy: a CLIError carries its own exit code; a
// child process's non-zero exit propagates unchanged and without any
// synthesized message (the wrapped tool already printed its own
// diagnostics); anything else exits 1.
func Execute(rootCmd *cobra.Command) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		var cliErr *model.CLIError
		if errors.As(err, &cliErr) {
			printError(cliErr.Message, cliErr.Err)
			os.Exit(int(cliErr.Code))
		}

		// A wrapped tool's non-zero exit: the exit code is the tool's
		// own, and its diagnostics already reached the terminal.
		if code, ok := proc.ExitCodeOf(err); ok && code != 0 {
			os.Exit(code)
		}

		printError(err.Error(), nil)
		os.Exit(int(model.ExitGeneralError))
	}
}

// loadConfig resolves the configuration for a subcommand, honoring the
// --config persistent flag.
func loadConfig() (*config.Config, error) {
	return config.Load(configPath)
}

// printError outputs an error message in the appropriate format
// (JSON or text) based on the --json global flag.
func printError(message string, underlying error) {
	if jsonOutput {
		errObj := map[string]interface{}{
			"error": map[string]interface{}{
				"message": message,
			},
		}
		if underlying != nil {
			if errMap, ok := errObj["error"].(map[string]interface{}); ok {
				errMap["detail"] = underlying.Error()
			}
		}
		// Errors go to stderr even in JSON mode, because stdout is
		// reserved for successful command output.
		data, _ := json.MarshalIndent(errObj, "", "  ")
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		if underlying != nil {
			fmt.Fprintf(os.Stderr, "Error: %s: %v\n", message, underlying)
		} else {
			fmt.Fprintf(os.Stderr, "Error: %s\n", message)
		}
	}
}

// VerboseLog prints a message to stderr only when verbose mode is
// enabled. This is used throughout the CLI for debug/trace output that
// helps users understand what operations are being performed.
func VerboseLog(format string, args ...interface{}) {
	if verbose {
		fmt.Fprintf(os.Stderr, "[verbose] "+format+"\n", args...)
	}
}

// IsJSONOutput returns whether the --json flag is set.
// Subcommands use this to decide their output format.
func IsJSONOutput() bool {
	return jsonOutput
}
