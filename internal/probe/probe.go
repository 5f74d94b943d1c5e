package probe

import (
	"context"

	"github.com/heybeacon/beacon/internal/domain"
)

// Result is the uniform outcome of one probe attempt. Failures of any kind
// (timeouts, refused connections, bad status codes, resolver errors) are
// down results with a message, never errors.
type Result struct {
	Status         bool
	StatusCode     *int
	ResponseTimeMS int64
	Message        string
}

// Prober performs a single check against a monitor's target.
type Prober interface {
	Probe(ctx context.Context, monitor domain.Monitor) Result
}

func down(message string, elapsedMS int64) Result {
	return Result{Status: false, ResponseTimeMS: elapsedMS, Message: message}
}
