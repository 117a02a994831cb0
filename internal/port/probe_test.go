package port

import (
	"context"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// acceptingListener starts a TCP listener that accepts and closes
// connections until the test ends, simulating a ready service.
func acceptingListener(t *testing.T) (net.Listener, int) {
	t.Helper()

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = l.Close() })

	go func() {
		for {
			conn, err := l.Accept()
			if err != nil {
				return
			}
			_ = conn.Close()
		}
	}()

	return l, l.Addr().(*net.TCPAddr).Port
}

// TestIsReady verifies the single-probe primitive against a live
// listener and against a freed port.
func TestIsReady(t *testing.T) {
	l, p := acceptingListener(t)

	prober := NewProber()
	assert.True(t, prober.IsReady(p))

	require.NoError(t, l.Close())
	assert.False(t, prober.IsReady(p))
}

// TestWaitReady_AlreadyListening verifies that a service that is
// already accepting connections passes the handshake without paying a
// full probe interval.
func TestWaitReady_AlreadyListening(t *testing.T) {
	_, p := acceptingListener(t)

	prober := NewProber()
	start := time.Now()
	err := prober.WaitReady(context.Background(), p, 5*time.Second, time.Second)
	require.NoError(t, err)
	assert.Less(t, time.Since(start), time.Second, "up-front probe should short-circuit the wait")
}

// TestWaitReady_BecomesReady verifies the retry loop: the handshake
// succeeds once the listener appears, within the timeout budget.
func TestWaitReady_BecomesReady(t *testing.T) {
	// Reserve a port, free it, and bring the real listener up shortly
	// after the handshake starts probing.
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	p := l.Addr().(*net.TCPAddr).Port
	require.NoError(t, l.Close())

	ready := make(chan net.Listener, 1)
	go func() {
		time.Sleep(150 * time.Millisecond)
		late, err := net.Listen("tcp", net.JoinHostPort("127.0.0.1", strconv.Itoa(p)))
		if err == nil {
			ready <- late
		}
	}()

	prober := NewProber()
	err = prober.WaitReady(context.Background(), p, 5*time.Second, 25*time.Millisecond)
	require.NoError(t, err)

	select {
	case late := <-ready:
		_ = late.Close()
	default:
	}
}

// TestWaitReady_Timeout verifies the timeout path: a port nobody
// listens on exhausts the budget and reports an error naming the port.
func TestWaitReady_Timeout(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	p := l.Addr().(*net.TCPAddr).Port
	require.NoError(t, l.Close())

	prober := NewProber()
	err = prober.WaitReady(context.Background(), p, 200*time.Millisecond, 50*time.Millisecond)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not ready after")
}

// TestWaitReady_ContextCancelled verifies that cancelling the context
// (the service died) aborts the handshake before its own timeout.
func TestWaitReady_ContextCancelled(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	p := l.Addr().(*net.TCPAddr).Port
	require.NoError(t, l.Close())

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(100 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	err = NewProber().WaitReady(ctx, p, 10*time.Second, 50*time.Millisecond)
	require.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), 5*time.Second)
}
