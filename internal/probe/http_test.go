package probe

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/heybeacon/beacon/internal/domain"
)

func TestHTTPProbeSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("User-Agent"); got != userAgent {
			t.Errorf("unexpected user agent %q", got)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	monitor := domain.Monitor{Type: domain.MonitorHTTP, URL: srv.URL, TimeoutSeconds: 5}
	result := NewHTTPProber().Probe(context.Background(), monitor)

	if !result.Status {
		t.Fatalf("expected up result, got down with message %q", result.Message)
	}
	if result.StatusCode == nil || *result.StatusCode != http.StatusOK {
		t.Fatalf("expected status code 200, got %v", result.StatusCode)
	}
	if result.Message != "OK" {
		t.Fatalf("expected OK message, got %q", result.Message)
	}
}

func TestHTTPProbeUnexpectedStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	monitor := domain.Monitor{Type: domain.MonitorHTTP, URL: srv.URL, ExpectedStatus: 200, TimeoutSeconds: 5}
	result := NewHTTPProber().Probe(context.Background(), monitor)

	if result.Status {
		t.Fatalf("expected down result")
	}
	if result.StatusCode == nil || *result.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("expected status code 503, got %v", result.StatusCode)
	}
	if result.Message != "Expected 200, got 503" {
		t.Fatalf("unexpected message %q", result.Message)
	}
}

func TestHTTPProbeMissingURL(t *testing.T) {
	result := NewHTTPProber().Probe(context.Background(), domain.Monitor{Type: domain.MonitorHTTP})
	if result.Status {
		t.Fatalf("expected down result")
	}
	if result.Message != "URL is required" {
		t.Fatalf("unexpected message %q", result.Message)
	}
	if result.ResponseTimeMS != 0 {
		t.Fatalf("expected zero response time, got %d", result.ResponseTimeMS)
	}
}

func TestHTTPProbeTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-time.After(5 * time.Second):
		}
	}))
	defer srv.Close()
	defer close(release)

	monitor := domain.Monitor{Type: domain.MonitorHTTP, URL: srv.URL, TimeoutSeconds: 1}
	result := NewHTTPProber().Probe(context.Background(), monitor)

	if result.Status {
		t.Fatalf("expected down result")
	}
	if result.Message != "Request timeout" {
		t.Fatalf("unexpected message %q", result.Message)
	}
	if result.ResponseTimeMS <= 0 {
		t.Fatalf("expected elapsed time to be measured, got %d", result.ResponseTimeMS)
	}
}

func TestHTTPProbeCustomExpectedStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	monitor := domain.Monitor{Type: domain.MonitorHTTP, URL: srv.URL, ExpectedStatus: 201, TimeoutSeconds: 5}
	result := NewHTTPProber().Probe(context.Background(), monitor)
	if !result.Status {
		t.Fatalf("expected up result for matching custom status, got %q", result.Message)
	}
}
