// launch.go implements the "runstack launch" command: the
// combined-launch topology for hosts that run both roles.
//
// The service process is started as a backgrounded child, a readiness
// handshake waits for it to accept connections, and the agent process
// then runs in the foreground. The service start command is always
// issued first; if it fails, the agent is never issued. When the agent
// exits, the service is terminated before the command returns.
//
// In a cluster-managed deployment this command must NOT be used as the
// container entrypoint — the agent is scheduled there as an independent
// deployment unit. Use "runstack serve" instead.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/devinda0/runstack/internal/model"
	"github.com/devinda0/runstack/internal/port"
	"github.com/devinda0/runstack/internal/proc"
)

// NewLaunchCommand creates the "launch" cobra command.
func NewLaunchCommand() *cobra.Command {
	var flagPort int

	cmd := &cobra.Command{
		Use:   "launch",
		Short: "Start service (background) and agent (foreground) together",
		Long: `Start both runtime roles from one invocation: the service process is
backgrounded, a readiness probe waits for it to accept connections on
its port, and the agent process then runs in the foreground.

Intended for single-host and VM deployments. In a cluster, schedule the
agent separately and use "runstack serve" for the service container.

Examples:
  runstack launch
  runstack launch --port 9000`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runLaunch(cmd.Context(), flagPort)
		},
	}

	cmd.Flags().IntVarP(&flagPort, "port", "p", 0, "Service port (default: configured port)")
	return cmd
}

// runLaunch performs the combined launch and blocks until both
// processes have exited.
func runLaunch(ctx context.Context, flagPort int) error {
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

	service := proc.Command{
		Role: model.RoleService,
		Argv: cfg.ServiceArgs(svcPort, false),
	}
	agent := proc.Command{
		Role: model.RoleAgent,
		Argv: cfg.AgentArgs("dev"),
	}

	prober := port.NewProber()
	ready := func(ctx context.Context) error {
		VerboseLog("Waiting for service to accept connections on port %d...", svcPort)
		return prober.WaitReady(ctx, svcPort, cfg.Readiness.Timeout(), cfg.Readiness.Interval())
	}

	VerboseLog("Combined launch: service on port %d, then agent", svcPort)

	launcher := proc.NewLauncher()
	return launcher.RunCombined(ctx, service, agent, ready)
}
