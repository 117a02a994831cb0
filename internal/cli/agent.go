// agent.go implements the "runstack agent" and "runstack download-files"
// commands.
//
// The agent program owns its own subcommand surface (dev, start,
// download-files); runstack only composes the command line and runs it
// in the foreground. The agent never binds the service port, so no
// port pre-flight applies here.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/devinda0/runstack/internal/model"
	"github.com/devinda0/runstack/internal/proc"
)

// NewAgentCommand creates the "agent" cobra command: the agent process
// in development mode, running in the foreground.
func NewAgentCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "agent",
		Short: "Start the agent process in development mode",
		Long: `Start the real-time agent process in development mode, in the
foreground of this invocation.

The agent is launched independently of the service process. To run both
together on one host, use "runstack launch" instead.`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runAgent(cmd.Context(), "dev")
		},
	}
}

// NewDownloadFilesCommand creates the "download-files" cobra command,
// which invokes the agent program's asset-fetch subcommand (model
// weights, voices, and similar runtime assets).
func NewDownloadFilesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "download-files",
		Short: "Fetch the agent's runtime assets",
		Long: `Invoke the agent program's asset-fetch subcommand to download the
runtime files it needs (models, voices). Run once before the first
"runstack agent" or "runstack launch".`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runAgent(cmd.Context(), "download-files")
		},
	}
}

// runAgent composes the agent argv for the given subcommand and runs
// it in the foreground. The exit code propagates unchanged.
func runAgent(ctx context.Context, subcommand string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	VerboseLog("Starting agent process (%s)", subcommand)

	launcher := proc.NewLauncher()
	return launcher.Run(ctx, proc.Command{
		Role: model.RoleAgent,
		Argv: cfg.AgentArgs(subcommand),
	})
}
