// Package port implements host port availability scanning and service
// readiness probing for runstack.
//
// The service process exclusively owns the configured network port, so
// runstack checks two complementary conditions against it:
//   - Availability before launch (can the service still bind the port,
//     or is another process already holding it?)
//   - Readiness after launch (is the service accepting connections yet,
//     so the agent can safely be started?)
package port

import (
	"fmt"
	"net"
)

// Scanner checks whether specific ports are available on the host machine.
//
// It uses the operating system's network stack (net.Listen /
// net.ListenPacket) to determine if a port is free. This is the most
// reliable method because it asks the OS directly, rather than parsing
// /proc/net/* or relying on external commands like `lsof` or `ss`
// which may require elevated permissions.
//
// The struct is currently stateless, but is defined as a struct (rather
// than bare functions) so that future options (e.g., bind address) can
// be added without breaking the API. It also makes the Scanner
// injectable as a dependency, which improves testability.
type Scanner struct{}

// NewScanner creates a new Scanner instance.
func NewScanner() *Scanner {
	return &Scanner{}
}

// IsPortAvailable checks whether a single port is free on the host machine.
//
// For TCP, it attempts net.Listen("tcp", ":port"). For UDP, it attempts
// net.ListenPacket("udp", ":port"). If the listen/bind succeeds, the
// port is available — the listener is immediately closed.
//
// We bind to all interfaces (":port" rather than "127.0.0.1:port")
// because the service process binds 0.0.0.0, so we need to check the
// same address space to avoid false positives.
//
// Returns true if the port is free, false if it is already in use or
// the protocol is unknown.
func (s *Scanner) IsPortAvailable(port int, protocol string) bool {
	addr := fmt.Sprintf(":%d", port)

	switch protocol {
	case "tcp":
		listener, err := net.Listen("tcp", addr)
		if err != nil {
			return false
		}
		// Close immediately — we only needed to test availability,
		// not actually accept connections.
		defer func() { _ = listener.Close() }()
		return true

	case "udp":
		conn, err := net.ListenPacket("udp", addr)
		if err != nil {
			return false
		}
		defer func() { _ = conn.Close() }()
		return true

	default:
		// Unknown protocol — treat as unavailable to fail safe.
		return false
	}
}
