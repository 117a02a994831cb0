// server.go implements the "runstack dev" and "runstack run" commands.
//
// Both start the service process in the foreground of the invocation;
// they differ only in auto-reload. dev is the edit-compile-refresh
// development loop; run is the production form used when the process is
// supervised externally without going through the serve topology.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/devinda0/runstack/internal/model"
	"github.com/devinda0/runstack/internal/port"
	"github.com/devinda0/runstack/internal/proc"
)

// NewDevCommand creates the "dev" cobra command: the service process
// with auto-reload enabled.
func NewDevCommand() *cobra.Command {
	var flagPort int

	cmd := &cobra.Command{
		Use:   "dev",
		Short: "Start the service process with auto-reload",
		Long: `Start the service process bound to the configured port, restarting it
automatically on source changes.

Examples:
  runstack dev
  runstack dev --port 9000`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runService(cmd.Context(), flagPort, true)
		},
	}

	cmd.Flags().IntVarP(&flagPort, "port", "p", 0, "Service port (default: configured port)")
	return cmd
}

// NewRunCommand creates the "run" cobra command: the service process
// with auto-reload disabled.
func NewRunCommand() *cobra.Command {
	var flagPort int

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start the service process without auto-reload",
		Long: `Start the service process bound to the configured port, without
auto-reload.

Examples:
  runstack run
  runstack run --port 9000`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runService(cmd.Context(), flagPort, false)
		},
	}

	cmd.Flags().IntVarP(&flagPort, "port", "p", 0, "Service port (default: configured port)")
	return cmd
}

// runService is the shared logic for dev and run: resolve the port,
// verify it is still free, and run the service process in the
// foreground until it exits or a termination signal arrives.
func runService(ctx context.Context, flagPort int, reload bool) error {
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

	VerboseLog("Starting service process on port %d (reload=%t)", svcPort, reload)

	launcher := proc.NewLauncher()
	return launcher.Run(ctx, proc.Command{
		Role: model.RoleService,
		Argv: cfg.ServiceArgs(svcPort, reload),
	})
}

// resolvePort applies the flag-over-config precedence and validates the
// result. A zero flag value means "flag not given".
func resolvePort(configured, flagPort int) (int, error) {
	p := configured
	if flagPort != 0 {
		p = flagPort
	}
	if err := model.ValidatePort(p); err != nil {
		return 0, model.WrapCLIError(model.ExitConfigError, "invalid service port", err)
	}
	return p, nil
}

// checkPortFree reports a CLIError with ExitPortInUse when another
// process already holds the service port. The OS's bind exclusivity is
// the real arbiter; this pre-flight check exists so the failure is a
// clear message instead of the service's own bind stack trace.
func checkPortFree(svcPort int) error {
	scanner := port.NewScanner()
	if !scanner.IsPortAvailable(svcPort, "tcp") {
		return model.NewCLIError(model.ExitPortInUse,
			fmt.Sprintf("port %d is already in use", svcPort))
	}
	return nil
}
