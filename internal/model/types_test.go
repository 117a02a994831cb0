package model

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestProcessRole_IsValid verifies that only the two defined runtime
// roles are accepted.
func TestProcessRole_IsValid(t *testing.T) {
	assert.True(t, RoleService.IsValid())
	assert.True(t, RoleAgent.IsValid())
	assert.False(t, ProcessRole("worker").IsValid())
	assert.False(t, ProcessRole("").IsValid())
}

// TestParseProcessRole verifies string-to-role conversion, including
// case normalization and rejection of unknown values.
func TestParseProcessRole(t *testing.T) {
	role, err := ParseProcessRole("SERVICE")
	require.NoError(t, err)
	assert.Equal(t, RoleService, role)

	role, err = ParseProcessRole("agent")
	require.NoError(t, err)
	assert.Equal(t, RoleAgent, role)

	_, err = ParseProcessRole("sidecar")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid process role")
}

// TestProcessState_IsValid verifies the four lifecycle states and the
// rejection of anything else.
func TestProcessState_IsValid(t *testing.T) {
	for _, s := range []ProcessState{StateNotStarted, StateLaunching, StateRunning, StateExited} {
		assert.True(t, s.IsValid(), "state %q should be valid", s)
	}
	assert.False(t, ProcessState("paused").IsValid())
}

// TestValidatePort verifies the port range check, including the
// rejection of port 0 (the service contract requires a concrete port,
// not an OS-assigned ephemeral one).
func TestValidatePort(t *testing.T) {
	assert.NoError(t, ValidatePort(1))
	assert.NoError(t, ValidatePort(DefaultServicePort))
	assert.NoError(t, ValidatePort(65535))

	assert.Error(t, ValidatePort(0))
	assert.Error(t, ValidatePort(-1))
	assert.Error(t, ValidatePort(65536))
}

// TestDefaultServicePort pins the documented default port. Changing
// this constant changes the fallback behavior of serve/dev/run and the
// rendered image metadata, so the value is asserted explicitly.
func TestDefaultServicePort(t *testing.T) {
	assert.Equal(t, 8000, DefaultServicePort)
}

// TestCLIError_ErrorAndUnwrap verifies the error message formatting
// with and without an underlying error, and that errors.Is can see
// through the wrapper.
func TestCLIError_ErrorAndUnwrap(t *testing.T) {
	plain := NewCLIError(ExitPortInUse, "port 8000 is already in use")
	assert.Equal(t, "port 8000 is already in use", plain.Error())
	assert.Nil(t, plain.Unwrap())

	underlying := errors.New("bind: address already in use")
	wrapped := WrapCLIError(ExitPortInUse, "port 8000 is already in use", underlying)
	assert.Equal(t, "port 8000 is already in use: bind: address already in use", wrapped.Error())
	assert.True(t, errors.Is(wrapped, underlying))
}

// TestCLIError_As verifies that errors.As extracts a CLIError (and its
// exit code) from a wrapped chain, which is how the CLI layer
// translates domain errors into OS exit codes.
func TestCLIError_As(t *testing.T) {
	var chain error = WrapCLIError(ExitReadinessTimeout, "service process never became ready",
		errors.New("service on port 8000 not ready after 30s"))

	var cliErr *CLIError
	require.True(t, errors.As(chain, &cliErr))
	assert.Equal(t, ExitReadinessTimeout, cliErr.Code)
}

// TestExitCodes pins the numeric exit code contract. Scripts and
// orchestrators branch on these values, so renumbering is a breaking
// change.
func TestExitCodes(t *testing.T) {
	assert.Equal(t, ExitCode(0), ExitSuccess)
	assert.Equal(t, ExitCode(1), ExitGeneralError)
	assert.Equal(t, ExitCode(2), ExitConfigError)
	assert.Equal(t, ExitCode(3), ExitDockerNotRunning)
	assert.Equal(t, ExitCode(4), ExitPortInUse)
	assert.Equal(t, ExitCode(5), ExitToolFailed)
	assert.Equal(t, ExitCode(6), ExitLaunchFailed)
	assert.Equal(t, ExitCode(7), ExitReadinessTimeout)
}
