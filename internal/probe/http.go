package probe

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/heybeacon/beacon/internal/domain"
)

const userAgent = "Beacon-Uptime/1.0"

// HTTPProber checks http/https monitors by issuing a request and comparing
// the observed status code to the expected one.
type HTTPProber struct {
	client *http.Client
}

// NewHTTPProber constructs an HTTP prober. Timeouts are enforced per request
// from the monitor's configuration, not on the shared client.
func NewHTTPProber() *HTTPProber {
	return &HTTPProber{client: &http.Client{}}
}

// Probe issues the configured request against the monitor URL.
func (p *HTTPProber) Probe(ctx context.Context, monitor domain.Monitor) Result {
	if monitor.URL == "" {
		return down("URL is required", 0)
	}

	method := monitor.Method
	if method == "" {
		method = http.MethodGet
	}

	reqCtx, cancel := context.WithTimeout(ctx, monitor.Timeout())
	defer cancel()

	start := time.Now()
	req, err := http.NewRequestWithContext(reqCtx, method, monitor.URL, nil)
	if err != nil {
		return down(err.Error(), time.Since(start).Milliseconds())
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := p.client.Do(req)
	elapsed := time.Since(start).Milliseconds()
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return down("Request timeout", elapsed)
		}
		return down(err.Error(), elapsed)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<20))

	expected := monitor.ExpectedStatus
	if expected == 0 {
		expected = domain.DefaultExpectedStatus
	}

	code := resp.StatusCode
	if code != expected {
		result := down(fmt.Sprintf("Expected %d, got %d", expected, code), elapsed)
		result.StatusCode = &code
		return result
	}
	return Result{Status: true, StatusCode: &code, ResponseTimeMS: elapsed, Message: "OK"}
}
