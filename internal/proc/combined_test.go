package proc

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devinda0/runstack/internal/model"
)

// TestRunCombined_OrderAndShutdown verifies the ordering contract of a
// combined launch: the service is issued first, the agent runs after
// the readiness handshake, and the backgrounded service is terminated
// before RunCombined returns (no orphan outlives the invocation).
func TestRunCombined_OrderAndShutdown(t *testing.T) {
	l, _ := newTestLauncher()
	dir := t.TempDir()
	svcMarker := filepath.Join(dir, "service-started")

	service := Command{
		Role: model.RoleService,
		// Record the start, then stay up until terminated.
		Argv: []string{"sh", "-c", "touch " + svcMarker + "; sleep 30"},
	}
	agent := Command{
		Role: model.RoleAgent,
		// The readiness handshake already proved the service marker
		// exists by the time the agent runs.
		Argv: []string{"sh", "-c", "test -f " + svcMarker},
	}

	ready := func(ctx context.Context) error {
		for {
			if _, err := os.Stat(svcMarker); err == nil {
				return nil
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(10 * time.Millisecond):
			}
		}
	}

	done := make(chan error, 1)
	go func() { done <- l.RunCombined(context.Background(), service, agent, ready) }()

	select {
	case err := <-done:
		// The agent's success proves the service had started first;
		// a nil return proves the service was reaped on shutdown.
		require.NoError(t, err)
	case <-time.After(15 * time.Second):
		t.Fatal("combined launch did not return")
	}
}

// TestRunCombined_AgentExitCodePropagates verifies that the foreground
// agent's non-zero exit is the invocation's outcome.
func TestRunCombined_AgentExitCodePropagates(t *testing.T) {
	l, _ := newTestLauncher()

	service := Command{Role: model.RoleService, Argv: []string{"sleep", "30"}}
	agent := Command{Role: model.RoleAgent, Argv: []string{"sh", "-c", "exit 5"}}

	err := l.RunCombined(context.Background(), service, agent, nil)
	require.Error(t, err)

	code, ok := ExitCodeOf(err)
	require.True(t, ok)
	assert.Equal(t, 5, code)
}

// TestRunCombined_ServiceSpawnFailureIsFailFast verifies that when the
// service cannot even be spawned, the agent is never issued and the
// error carries ExitLaunchFailed.
func TestRunCombined_ServiceSpawnFailureIsFailFast(t *testing.T) {
	l, _ := newTestLauncher()
	dir := t.TempDir()
	agentMarker := filepath.Join(dir, "agent-ran")

	service := Command{Role: model.RoleService, Argv: []string{"definitely-not-a-real-binary-4af1"}}
	agent := Command{Role: model.RoleAgent, Argv: []string{"sh", "-c", "touch " + agentMarker}}

	err := l.RunCombined(context.Background(), service, agent, nil)
	require.Error(t, err)

	var cliErr *model.CLIError
	require.True(t, errors.As(err, &cliErr))
	assert.Equal(t, model.ExitLaunchFailed, cliErr.Code)

	_, statErr := os.Stat(agentMarker)
	assert.True(t, os.IsNotExist(statErr), "agent must never be issued after a service launch failure")
}

// TestRunCombined_ServiceDiesDuringHandshake verifies that a service
// exiting while the readiness handshake is still waiting is reported
// as a launch failure, not as a readiness timeout, and the agent is
// never issued.
func TestRunCombined_ServiceDiesDuringHandshake(t *testing.T) {
	l, _ := newTestLauncher()
	dir := t.TempDir()
	agentMarker := filepath.Join(dir, "agent-ran")

	service := Command{Role: model.RoleService, Argv: []string{"sh", "-c", "exit 1"}}
	agent := Command{Role: model.RoleAgent, Argv: []string{"sh", "-c", "touch " + agentMarker}}

	// The handshake only yields when the service's exit cancels ctx.
	ready := func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}

	err := l.RunCombined(context.Background(), service, agent, ready)
	require.Error(t, err)

	var cliErr *model.CLIError
	require.True(t, errors.As(err, &cliErr))
	assert.Equal(t, model.ExitLaunchFailed, cliErr.Code)

	_, statErr := os.Stat(agentMarker)
	assert.True(t, os.IsNotExist(statErr), "agent must never be issued when the service dies during startup")
}

// TestRunCombined_ReadinessTimeout verifies that a handshake giving up
// on a still-running service maps to ExitReadinessTimeout and that the
// service is terminated.
func TestRunCombined_ReadinessTimeout(t *testing.T) {
	l, _ := newTestLauncher()

	service := Command{Role: model.RoleService, Argv: []string{"sleep", "30"}}
	agent := Command{Role: model.RoleAgent, Argv: []string{"true"}}

	ready := func(ctx context.Context) error {
		return errors.New("service on port 8000 not ready after 50ms")
	}

	start := time.Now()
	err := l.RunCombined(context.Background(), service, agent, ready)
	require.Error(t, err)

	var cliErr *model.CLIError
	require.True(t, errors.As(err, &cliErr))
	assert.Equal(t, model.ExitReadinessTimeout, cliErr.Code)

	// Returning at all proves the sleeping service was terminated; it
	// must not have taken anywhere near the child's 30s sleep.
	assert.Less(t, time.Since(start), 15*time.Second)
}
