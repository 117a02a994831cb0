// probe.go implements the readiness handshake between the backgrounded
// service process and the foreground agent process in a combined launch.
//
// The original entrypoint relied on a fixed launch order (service
// issued before agent) with no guarantee that the service had finished
// initializing before the agent started. That ordering gap is closed
// here with an explicit readiness signal: a TCP connect probe against
// the service port, retried at a fixed interval until it succeeds or
// the overall timeout elapses.
package port

import (
	"context"
	"fmt"
	"net"
	"time"
)

// dialTimeout bounds a single probe attempt. Connection refused returns
// immediately on a local address; this timeout only matters for hosts
// that silently drop SYN packets.
const dialTimeout = time.Second

// Prober waits for a TCP service to start accepting connections.
//
// The zero value probes 127.0.0.1. A custom host can be set for probing
// a service bound to a specific interface.
type Prober struct {
	// Host is the address probed. Empty means localhost.
	Host string
}

// NewProber creates a Prober targeting localhost.
func NewProber() *Prober {
	return &Prober{}
}

// IsReady performs a single probe: it attempts a TCP connection to the
// target port and reports whether the connection was accepted. The
// probe connection is closed immediately; the service sees one
// accepted-and-closed connection, which every mainstream HTTP server
// tolerates as a health-check idiom.
func (p *Prober) IsReady(port int) bool {
	host := p.Host
	if host == "" {
		host = "127.0.0.1"
	}
	conn, err := net.DialTimeout("tcp", net.JoinHostPort(host, fmt.Sprintf("%d", port)), dialTimeout)
	if err != nil {
		return false
	}
	_ = conn.Close()
	return true
}

// WaitReady blocks until the service on the given port accepts a TCP
// connection, probing every interval, for at most timeout overall.
//
// It returns nil as soon as a probe succeeds. It returns the context's
// error if ctx is cancelled first (e.g., the backgrounded service
// exited, making further waiting pointless), or a timeout error if the
// budget is exhausted.
func (p *Prober) WaitReady(ctx context.Context, port int, timeout, interval time.Duration) error {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()

	tick := time.NewTicker(interval)
	defer tick.Stop()

	// Probe once up front so a service that is already listening does
	// not pay a full interval of latency.
	if p.IsReady(port) {
		return nil
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-deadline.C:
			return fmt.Errorf("service on port %d not ready after %s", port, timeout)
		case <-tick.C:
			if p.IsReady(port) {
				return nil
			}
		}
	}
}
