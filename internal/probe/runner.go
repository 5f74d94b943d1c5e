package probe

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/heybeacon/beacon/internal/domain"
)

const retryDelay = time.Second

var errAttemptDown = errors.New("probe: attempt reported down")

// Runner dispatches a monitor to its type-appropriate prober and applies the
// retry policy: a down result is retried up to monitor.Retries extra times
// with a fixed delay, and the last result wins.
type Runner struct {
	http Prober
	tcp  Prober
	dns  Prober

	delay time.Duration
}

// NewRunner constructs a Runner with the standard probers. The DoH endpoint
// may be empty to use the default resolver.
func NewRunner(dohEndpoint string) *Runner {
	return &Runner{
		http:  NewHTTPProber(),
		tcp:   NewTCPProber(),
		dns:   NewDNSProber(dohEndpoint),
		delay: retryDelay,
	}
}

// Check runs the monitor's probe with retries and returns the final result.
// It never returns an error: unknown monitor types and exhausted retries are
// down results.
func (r *Runner) Check(ctx context.Context, monitor domain.Monitor) Result {
	prober := r.proberFor(monitor.Type)
	if prober == nil {
		return down(fmt.Sprintf("Unknown monitor type: %s", monitor.Type), 0)
	}

	retries := monitor.Retries
	if retries < 0 {
		retries = 0
	}

	var last Result
	backoff := retry.WithMaxRetries(uint64(retries), retry.NewConstant(r.delay))
	_ = retry.Do(ctx, backoff, func(ctx context.Context) error {
		last = prober.Probe(ctx, monitor)
		if last.Status {
			return nil
		}
		return retry.RetryableError(errAttemptDown)
	})
	return last
}

func (r *Runner) proberFor(kind domain.MonitorType) Prober {
	switch kind {
	case domain.MonitorHTTP, domain.MonitorHTTPS:
		return r.http
	case domain.MonitorTCP:
		return r.tcp
	case domain.MonitorDNS:
		return r.dns
	default:
		return nil
	}
}
