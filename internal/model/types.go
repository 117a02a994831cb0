// Package model defines the domain types for the runstack CLI.
//
// All entities in this package represent the process-orchestration
// vocabulary used throughout the application: the two runtime roles
// (service and agent), per-process lifecycle state, and the exit code
// taxonomy that maps orchestration failures to OS exit codes.
//
// Key design decision: runstack holds no durable state. Process state
// is owned by the operating system and observed through process handles;
// these types are transient representations only.
package model

import (
	"fmt"
	"strings"
	"time"
)

// ProcessRole identifies which of the two runtime roles a launched
// process plays.
type ProcessRole string

const (
	// RoleService is the request-serving web process. It exclusively
	// owns the configured network port.
	RoleService ProcessRole = "service"

	// RoleAgent is the long-running real-time worker process. It is
	// launched independently of the service: alongside it in a
	// combined launch, or as a separate deployment unit in a cluster.
	RoleAgent ProcessRole = "agent"
)

// String returns the string representation of ProcessRole.
// This method satisfies the fmt.Stringer interface, enabling
// human-readable output in CLI commands and logging.
func (r ProcessRole) String() string {
	return string(r)
}

// IsValid checks whether the ProcessRole value is one of the
// predefined valid roles.
func (r ProcessRole) IsValid() bool {
	switch r {
	case RoleService, RoleAgent:
		return true
	default:
		return false
	}
}

// ParseProcessRole converts a string to a ProcessRole.
// Returns an error if the string does not match any valid role.
func ParseProcessRole(s string) (ProcessRole, error) {
	role := ProcessRole(strings.ToLower(s))
	if !role.IsValid() {
		return "", fmt.Errorf("invalid process role: %q (valid: service, agent)", s)
	}
	return role, nil
}

// ProcessState represents the lifecycle state of a launched process.
// The state transitions are:
//
//	NotStarted → Launching → Running → Exited
//
// Any launch failure moves the process directly from Launching to
// Exited; there are no retries and no intermediate recovery states.
type ProcessState string

const (
	// StateNotStarted indicates the process has not been issued its
	// start command yet.
	StateNotStarted ProcessState = "not-started"

	// StateLaunching indicates the start command has been issued but
	// the process has not been observed running yet.
	StateLaunching ProcessState = "launching"

	// StateRunning indicates the OS reports the process as alive.
	StateRunning ProcessState = "running"

	// StateExited indicates the process has terminated, successfully
	// or otherwise. The exit code lives in ProcessStatus.ExitCode.
	StateExited ProcessState = "exited"
)

// String returns the string representation of ProcessState.
func (s ProcessState) String() string {
	return string(s)
}

// IsValid checks whether the ProcessState value is one of the
// predefined valid states.
func (s ProcessState) IsValid() bool {
	switch s {
	case StateNotStarted, StateLaunching, StateRunning, StateExited:
		return true
	default:
		return false
	}
}

// ProcessStatus holds runtime information about a launched process.
// This data is observed from the OS process handle, not persisted.
type ProcessStatus struct {
	// Role identifies whether this is the service or the agent process.
	Role ProcessRole `json:"role"`

	// State is the current lifecycle state.
	State ProcessState `json:"state"`

	// PID is the OS process identifier. Zero until the process has
	// actually been started.
	PID int `json:"pid,omitempty"`

	// StartedAt is the timestamp when the start command was issued.
	// Zero if the process never started.
	StartedAt time.Time `json:"startedAt,omitempty"`

	// ExitCode is the process exit code once State is Exited.
	// Meaningless for any other state.
	ExitCode int `json:"exitCode,omitempty"`
}

// LaunchTopology selects which startup variant an invocation uses.
// The two variants mirror the two deployment topologies: one host
// running both roles, or a cluster scheduling the agent separately.
type LaunchTopology string

const (
	// TopologyCombined backgrounds the service process and runs the
	// agent process in the foreground of the same invocation.
	TopologyCombined LaunchTopology = "combined"

	// TopologyServiceOnly replaces the invoking process image with the
	// service process. The agent is never launched: in a cluster
	// deployment it is scheduled as an independent unit, and launching
	// it here would duplicate or conflict with that scheduling.
	TopologyServiceOnly LaunchTopology = "service-only"
)

// String returns the string representation of LaunchTopology.
func (t LaunchTopology) String() string {
	return string(t)
}

// DefaultServicePort is the port the service process binds when no
// port is configured via file, environment, or flag.
const DefaultServicePort = 8000

// ValidatePort checks that a port number is inside the valid TCP/UDP
// port range. Port 0 is rejected: the service contract requires a
// concrete, predictable port, not an OS-assigned ephemeral one.
func ValidatePort(port int) error {
	if port < 1 || port > 65535 {
		return fmt.Errorf("invalid port %d: must be in range 1-65535", port)
	}
	return nil
}

// ExitCode defines standard CLI exit codes. These codes allow scripts
// and orchestrators to programmatically determine the outcome of a
// runstack invocation.
//
// When a wrapped tool exits non-zero, runstack propagates the tool's
// own exit code unchanged rather than substituting one of these values
// (the runner adds no error translation). The codes below classify
// failures that originate in runstack itself.
type ExitCode int

const (
	// ExitSuccess indicates the command completed successfully.
	ExitSuccess ExitCode = 0

	// ExitGeneralError indicates an unspecified error occurred.
	ExitGeneralError ExitCode = 1

	// ExitConfigError indicates the runstack config file was missing,
	// unreadable, or invalid.
	ExitConfigError ExitCode = 2

	// ExitDockerNotRunning indicates the Docker daemon is not
	// accessible (build command only).
	ExitDockerNotRunning ExitCode = 3

	// ExitPortInUse indicates the configured service port is already
	// bound by another process.
	ExitPortInUse ExitCode = 4

	// ExitToolFailed indicates a wrapped tool invocation failed in a
	// way that produced no exit code of its own (e.g., the binary was
	// not found on PATH).
	ExitToolFailed ExitCode = 5

	// ExitLaunchFailed indicates the service or agent process could
	// not be started.
	ExitLaunchFailed ExitCode = 6

	// ExitReadinessTimeout indicates the combined launch gave up
	// waiting for the service process to accept connections.
	ExitReadinessTimeout ExitCode = 7
)

// CLIError is a custom error type that carries an exit code.
// This allows the CLI layer to translate domain errors into
// appropriate process exit codes.
type CLIError struct {
	// Code is the exit code to return to the OS.
	Code ExitCode

	// Message is the human-readable error description.
	Message string

	// Err is the underlying error, if any.
	Err error
}

// Error satisfies the error interface. It returns the human-readable
// error message, optionally including the underlying error.
func (e *CLIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for use with errors.Is/errors.As.
// This follows Go's error wrapping convention introduced in Go 1.13.
func (e *CLIError) Unwrap() error {
	return e.Err
}

// NewCLIError creates a new CLIError with the given exit code and message.
func NewCLIError(code ExitCode, message string) *CLIError {
	return &CLIError{Code: code, Message: message}
}

// WrapCLIError creates a new CLIError that wraps an existing error.
func WrapCLIError(code ExitCode, message string, err error) *CLIError {
	return &CLIError{Code: code, Message: message, Err: err}
}
