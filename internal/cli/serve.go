// serve.go implements the "runstack serve" command: the service-only
// topology used as the container image's default command.
//
// serve replaces the runstack process image with the service process
// (execve on Unix), so the orchestrator's termination signals reach the
// service directly rather than an intermediary. No agent process is
// ever spawned by this command: in a cluster-managed deployment the
// agent is scheduled as an independent deployment unit, and
// co-locating it here would duplicate or conflict with that external
// scheduling.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/devinda0/runstack/internal/model"
	"github.com/devinda0/runstack/internal/proc"
)

// NewServeCommand creates the "serve" cobra command.
func NewServeCommand() *cobra.Command {
	var flagPort int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Replace this process with the service process (no agent)",
		Long: `Replace the runstack process with the service process, bound to the
configured port and without auto-reload. The agent process is never
launched: in a cluster deployment it runs as a separate unit.

This is the container image's default command. With the port unset, the
service binds the documented default (8000).

Examples:
  runstack serve
  RUNSTACK_PORT=9000 runstack serve`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(flagPort)
		},
	}

	cmd.Flags().IntVarP(&flagPort, "port", "p", 0, "Service port (default: configured port)")
	return cmd
}

// runServe resolves the port, verifies it is free, and execs the
// service process. On success this function never returns.
func runServe(flagPort int) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	svcPort, err := resolvePort(cfg.Port, flagPort)
	if err != nil {
		return err
	}

	if err := checkPortFree(svcPort); err != nil {
		return err
	}

	VerboseLog("Replacing process image with service process on port %d", svcPort)

	return proc.ExecReplace(proc.Command{
		Role: model.RoleService,
		Argv: cfg.ServiceArgs(svcPort, false),
	})
}
