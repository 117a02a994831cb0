// combined.go implements the combined-launch topology: the service
// process is started as a backgrounded child, an explicit readiness
// handshake confirms it is accepting connections, and only then is the
// agent process run in the foreground of the same invocation.
//
// Ordering guarantees:
//   - The service start command is always issued before the agent's.
//   - The agent is never issued if the service fails to start or fails
//     its readiness handshake (fail-fast, no partial-failure recovery).
//   - When the foreground agent exits, the backgrounded service is sent
//     SIGTERM and the invocation waits for it before returning, so no
//     orphaned service process outlives a combined launch.
package proc

import (
	"context"
	"syscall"
	"time"

	"github.com/devinda0/runstack/internal/model"
)

// ReadyFunc blocks until the service process is ready to accept work,
// or returns an error. The context is cancelled if the service process
// exits while the handshake is still waiting, so implementations must
// honor ctx to avoid probing a dead service until their own timeout.
type ReadyFunc func(ctx context.Context) error

// RunCombined performs a combined launch and blocks until both
// processes have exited.
//
// The returned error carries the invocation's outcome: the agent's own
// exit error when the agent fails (so the CLI propagates the agent's
// exit code unchanged), a CLIError with ExitLaunchFailed when the
// service dies before or during the run, or ExitReadinessTimeout when
// the handshake gives up.
func (l *Launcher) RunCombined(ctx context.Context, service, agent Command, ready ReadyFunc) error {
	svc, err := l.Start(ctx, service)
	if err != nil {
		return err
	}

	// svcCtx is cancelled as soon as the backgrounded service exits.
	// Both the readiness handshake and the foreground agent run under
	// it: a dead service makes either pointless.
	svcCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		<-svc.Done()
		cancel()
	}()

	if ready != nil {
		if err := ready(svcCtx); err != nil {
			// Distinguish "service died" from "service too slow".
			select {
			case <-svc.Done():
				return model.WrapCLIError(model.ExitLaunchFailed,
					"service process exited during startup", svc.Err())
			default:
			}
			l.shutdown(svc)
			return model.WrapCLIError(model.ExitReadinessTimeout,
				"service process never became ready", err)
		}
	}

	agentErr := l.Run(svcCtx, agent)

	// The agent may have been cancelled because the service died out
	// from under it. Report that as the root cause rather than the
	// agent's induced exit.
	if svcCtx.Err() != nil && ctx.Err() == nil {
		return model.WrapCLIError(model.ExitLaunchFailed,
			"service process exited unexpectedly", svc.Err())
	}

	l.shutdown(svc)
	return agentErr
}

// shutdown terminates a backgrounded child and waits for it to exit.
// SIGTERM first, escalating to SIGKILL after the grace period, so this
// wait cannot block forever on a child that ignores the request.
func (l *Launcher) shutdown(h *Handle) {
	select {
	case <-h.Done():
		return
	default:
	}
	_ = h.Signal(syscall.SIGTERM)

	grace := time.NewTimer(killGracePeriod)
	defer grace.Stop()
	select {
	case <-h.Done():
	case <-grace.C:
		_ = h.Signal(syscall.SIGKILL)
		<-h.Done()
	}
}
