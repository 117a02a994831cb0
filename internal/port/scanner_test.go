package port

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// listenerPort extracts the port number a test listener was bound to.
func listenerPort(t *testing.T, l net.Listener) int {
	t.Helper()
	addr, ok := l.Addr().(*net.TCPAddr)
	require.True(t, ok)
	return addr.Port
}

// TestIsPortAvailable_FreePort verifies that a port nothing is bound
// to reads as available. The port is discovered by binding an OS-
// assigned port and releasing it immediately.
func TestIsPortAvailable_FreePort(t *testing.T) {
	l, err := net.Listen("tcp", ":0")
	require.NoError(t, err)
	p := listenerPort(t, l)
	require.NoError(t, l.Close())

	scanner := NewScanner()
	assert.True(t, scanner.IsPortAvailable(p, "tcp"))
}

// TestIsPortAvailable_BoundPort verifies that a port held by a live
// listener reads as unavailable.
func TestIsPortAvailable_BoundPort(t *testing.T) {
	l, err := net.Listen("tcp", ":0")
	require.NoError(t, err)
	defer func() { _ = l.Close() }()

	scanner := NewScanner()
	assert.False(t, scanner.IsPortAvailable(listenerPort(t, l), "tcp"))
}

// TestIsPortAvailable_UDP verifies the UDP path via ListenPacket.
func TestIsPortAvailable_UDP(t *testing.T) {
	conn, err := net.ListenPacket("udp", ":0")
	require.NoError(t, err)
	defer func() { _ = conn.Close() }()

	addr, ok := conn.LocalAddr().(*net.UDPAddr)
	require.True(t, ok)

	scanner := NewScanner()
	assert.False(t, scanner.IsPortAvailable(addr.Port, "udp"))
}

// TestIsPortAvailable_UnknownProtocol verifies the fail-safe: an
// unknown protocol is treated as unavailable.
func TestIsPortAvailable_UnknownProtocol(t *testing.T) {
	scanner := NewScanner()
	assert.False(t, scanner.IsPortAvailable(48123, "sctp"))
}
