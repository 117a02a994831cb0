package proc

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devinda0/runstack/internal/model"
)

// newTestLauncher returns a Launcher whose output is captured instead
// of hitting the test runner's terminal.
func newTestLauncher() (*Launcher, *bytes.Buffer) {
	var buf bytes.Buffer
	return &Launcher{Stdout: &buf, Stderr: &buf}, &buf
}

// TestRun_Success verifies foreground execution of a command that
// exits zero.
func TestRun_Success(t *testing.T) {
	l, buf := newTestLauncher()

	err := l.Run(context.Background(), Command{
		Role: model.RoleService,
		Argv: []string{"sh", "-c", "echo up"},
	})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "up")
}

// TestRun_ExitCodePropagation verifies that a child's non-zero exit
// surfaces as an *exec.ExitError carrying the child's own code, which
// is how tool exit codes reach the invoking shell unchanged.
func TestRun_ExitCodePropagation(t *testing.T) {
	l, _ := newTestLauncher()

	err := l.Run(context.Background(), Command{Argv: []string{"sh", "-c", "exit 3"}})
	require.Error(t, err)

	code, ok := ExitCodeOf(err)
	require.True(t, ok, "exit error should carry an exit code")
	assert.Equal(t, 3, code)
}

// TestRun_MissingBinary verifies the spawn-failure path: a binary that
// does not exist produces an error with no exit code of its own.
func TestRun_MissingBinary(t *testing.T) {
	l, _ := newTestLauncher()

	err := l.Run(context.Background(), Command{Argv: []string{"definitely-not-a-real-binary-4af1"}})
	require.Error(t, err)

	_, ok := ExitCodeOf(err)
	assert.False(t, ok, "spawn failure has no child exit code")
}

// TestRun_EmptyArgv verifies that an empty command line is rejected
// with ExitLaunchFailed before any spawn is attempted.
func TestRun_EmptyArgv(t *testing.T) {
	l, _ := newTestLauncher()

	err := l.Run(context.Background(), Command{Role: model.RoleAgent})
	require.Error(t, err)

	var cliErr *model.CLIError
	require.True(t, errors.As(err, &cliErr))
	assert.Equal(t, model.ExitLaunchFailed, cliErr.Code)
}

// TestRun_EnvPassthrough verifies that extra KEY=VALUE pairs reach the
// child on top of the inherited environment.
func TestRun_EnvPassthrough(t *testing.T) {
	l, buf := newTestLauncher()

	err := l.Run(context.Background(), Command{
		Argv: []string{"sh", "-c", "echo $RUNSTACK_TEST_MARKER"},
		Env:  []string{"RUNSTACK_TEST_MARKER=present"},
	})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "present")
}

// TestStart_HandleLifecycle verifies the background path: a started
// child reports Running, then Exited with its exit code after Done.
func TestStart_HandleLifecycle(t *testing.T) {
	l, _ := newTestLauncher()

	h, err := l.Start(context.Background(), Command{
		Role: model.RoleService,
		Argv: []string{"sh", "-c", "sleep 0.2; exit 4"},
	})
	require.NoError(t, err)
	assert.Positive(t, h.PID())

	status := h.Status()
	assert.Equal(t, model.RoleService, status.Role)
	assert.Equal(t, model.StateRunning, status.State)
	assert.False(t, status.StartedAt.IsZero())

	select {
	case <-h.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("child did not exit in time")
	}

	status = h.Status()
	assert.Equal(t, model.StateExited, status.State)
	assert.Equal(t, 4, status.ExitCode)
}

// TestStart_ContextCancelTerminates verifies that cancelling the
// context terminates a backgrounded child via SIGTERM.
func TestStart_ContextCancelTerminates(t *testing.T) {
	l, _ := newTestLauncher()
	ctx, cancel := context.WithCancel(context.Background())

	h, err := l.Start(ctx, Command{Argv: []string{"sleep", "30"}})
	require.NoError(t, err)

	cancel()

	select {
	case <-h.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("child survived context cancellation")
	}
	assert.Error(t, h.Err(), "a signalled child reports a wait error")
}

// TestExitCodeOf_Nil verifies that a nil error reads as exit code 0.
func TestExitCodeOf_Nil(t *testing.T) {
	code, ok := ExitCodeOf(nil)
	assert.True(t, ok)
	assert.Equal(t, 0, code)
}

// TestExitCodeOf_OtherError verifies that non-exec errors carry no
// exit code.
func TestExitCodeOf_OtherError(t *testing.T) {
	_, ok := ExitCodeOf(errors.New("connection refused"))
	assert.False(t, ok)
}
