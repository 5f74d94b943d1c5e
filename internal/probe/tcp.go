package probe

import (
	"context"
	"net"
	"strconv"
	"time"

	"github.com/heybeacon/beacon/internal/domain"
)

// TCPProber checks tcp monitors by opening a connection to hostname:port.
type TCPProber struct {
	dialer *net.Dialer
}

// NewTCPProber constructs a TCP prober.
func NewTCPProber() *TCPProber {
	return &TCPProber{dialer: &net.Dialer{}}
}

// Probe attempts to open a TCP connection before the monitor's timeout.
func (p *TCPProber) Probe(ctx context.Context, monitor domain.Monitor) Result {
	if monitor.Hostname == "" || monitor.Port == 0 {
		return down("Hostname and port are required", 0)
	}

	dialCtx, cancel := context.WithTimeout(ctx, monitor.Timeout())
	defer cancel()

	addr := net.JoinHostPort(monitor.Hostname, strconv.Itoa(monitor.Port))
	start := time.Now()
	conn, err := p.dialer.DialContext(dialCtx, "tcp", addr)
	elapsed := time.Since(start).Milliseconds()
	if err != nil {
		if dialCtx.Err() != nil {
			return down("Connection timeout", elapsed)
		}
		return down(err.Error(), elapsed)
	}
	_ = conn.Close()

	return Result{Status: true, ResponseTimeMS: elapsed, Message: "Connection successful"}
}
