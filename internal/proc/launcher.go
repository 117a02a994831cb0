// Package proc implements process launching for the runstack CLI.
//
// The scheduling model is independent OS processes, not cooperative
// tasks within one runtime: the service and agent roles share no memory
// and exchange no messages. Concurrency in a combined launch is
// achieved purely by backgrounding one child process while a second
// runs in the foreground.
//
// Design decisions:
//   - Children inherit the parent's stdio so tool diagnostics reach the
//     invoking terminal unmodified; runstack synthesizes no output of
//     its own around a child's.
//   - Cancellation is delegated to signals: a cancelled context sends
//     SIGTERM, escalating to SIGKILL after a grace period (WaitDelay).
//   - There are no retries and no recovery. Any launch failure is
//     terminal for the invocation (fail-fast).
package proc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"syscall"
	"time"

	"github.com/devinda0/runstack/internal/model"
)

// killGracePeriod is how long a child gets between SIGTERM and SIGKILL
// when its context is cancelled. Ten seconds matches the default grace
// period of mainstream container orchestrators.
const killGracePeriod = 10 * time.Second

// Command describes a single child process to launch.
type Command struct {
	// Role identifies the process for status reporting and logging.
	Role model.ProcessRole

	// Argv is the complete command line. Argv[0] is resolved via PATH.
	Argv []string

	// Dir is the working directory. Empty means inherit the parent's.
	Dir string

	// Env holds extra KEY=VALUE pairs appended to the parent's
	// environment. The child always inherits the full parent
	// environment as a base.
	Env []string
}

// Launcher starts child processes with inherited stdio. The writer and
// reader fields exist so tests can capture output; production callers
// use NewLauncher which wires the OS streams.
type Launcher struct {
	// Stdin, Stdout, Stderr are handed to every child verbatim.
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// NewLauncher creates a Launcher connected to the parent's OS streams.
func NewLauncher() *Launcher {
	return &Launcher{
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}

// build converts a Command into an exec.Cmd bound to ctx.
// The Cancel hook sends SIGTERM instead of the default SIGKILL so a
// cancelled child can shut down cleanly; WaitDelay escalates to
// SIGKILL if the child ignores the request.
func (l *Launcher) build(ctx context.Context, c Command) (*exec.Cmd, error) {
	if len(c.Argv) == 0 {
		return nil, errors.New("empty command line")
	}

	cmd := exec.CommandContext(ctx, c.Argv[0], c.Argv[1:]...)
	cmd.Dir = c.Dir
	cmd.Stdin = l.Stdin
	cmd.Stdout = l.Stdout
	cmd.Stderr = l.Stderr
	if len(c.Env) > 0 {
		cmd.Env = append(os.Environ(), c.Env...)
	}
	cmd.Cancel = func() error {
		return cmd.Process.Signal(syscall.SIGTERM)
	}
	cmd.WaitDelay = killGracePeriod
	return cmd, nil
}

// Run executes a command in the foreground and blocks until it exits.
//
// The returned error is exactly what exec.Cmd.Wait produced: an
// *exec.ExitError for a non-zero exit (carrying the child's exit code
// for ExitCodeOf), or another error if the process could not be
// started at all. A nil return means the child exited zero.
func (l *Launcher) Run(ctx context.Context, c Command) error {
	cmd, err := l.build(ctx, c)
	if err != nil {
		return model.WrapCLIError(model.ExitLaunchFailed,
			fmt.Sprintf("cannot launch %s process", c.Role), err)
	}
	return cmd.Run()
}

// Start executes a command in the background and returns a Handle for
// observing and signalling it. The returned error is non-nil only if
// the process could not be spawned; a child that starts and then exits
// immediately is reported through the Handle.
func (l *Launcher) Start(ctx context.Context, c Command) (*Handle, error) {
	cmd, err := l.build(ctx, c)
	if err != nil {
		return nil, model.WrapCLIError(model.ExitLaunchFailed,
			fmt.Sprintf("cannot launch %s process", c.Role), err)
	}

	if err := cmd.Start(); err != nil {
		return nil, model.WrapCLIError(model.ExitLaunchFailed,
			fmt.Sprintf("cannot launch %s process", c.Role), err)
	}

	h := &Handle{
		role:      c.Role,
		cmd:       cmd,
		startedAt: time.Now(),
		done:      make(chan struct{}),
	}

	// A single goroutine owns Wait; everything else observes through
	// the done channel and the mutex-guarded fields.
	go func() {
		err := cmd.Wait()
		h.mu.Lock()
		h.waitErr = err
		h.mu.Unlock()
		close(h.done)
	}()

	return h, nil
}

// Handle represents a backgrounded child process.
type Handle struct {
	role      model.ProcessRole
	cmd       *exec.Cmd
	startedAt time.Time

	done chan struct{}

	mu      sync.Mutex
	waitErr error
}

// PID returns the OS process identifier of the child.
func (h *Handle) PID() int {
	return h.cmd.Process.Pid
}

// Done returns a channel closed when the child has exited.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Err returns the child's Wait error. Only meaningful after Done is
// closed; before that it returns nil.
func (h *Handle) Err() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.waitErr
}

// Signal delivers an OS signal to the child. Delivery to an already
// exited process returns the OS error unmodified; callers that signal
// during shutdown typically ignore it.
func (h *Handle) Signal(sig os.Signal) error {
	return h.cmd.Process.Signal(sig)
}

// Status reports the child's current lifecycle state.
func (h *Handle) Status() model.ProcessStatus {
	status := model.ProcessStatus{
		Role:      h.role,
		State:     model.StateRunning,
		PID:       h.cmd.Process.Pid,
		StartedAt: h.startedAt,
	}

	select {
	case <-h.done:
		status.State = model.StateExited
		if code, ok := ExitCodeOf(h.Err()); ok {
			status.ExitCode = code
		} else if h.Err() != nil {
			status.ExitCode = int(model.ExitGeneralError)
		}
	default:
	}

	return status
}

// ExitCodeOf extracts the child's exit code from a Run/Wait error.
// It returns (0, true) for a nil error, (code, true) for an
// *exec.ExitError, and (0, false) for anything else (spawn failures,
// signals without exit status).
func ExitCodeOf(err error) (int, bool) {
	if err == nil {
		return 0, true
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if code := exitErr.ExitCode(); code >= 0 {
			return code, true
		}
	}
	return 0, false
}
