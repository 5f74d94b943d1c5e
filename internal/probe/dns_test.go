package probe

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/heybeacon/beacon/internal/domain"
)

func dohServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Accept"); got != "application/dns-json" {
			t.Errorf("unexpected accept header %q", got)
		}
		w.Header().Set("Content-Type", "application/dns-json")
		_, _ = w.Write([]byte(body))
	}))
}

func TestDNSProbeRecordsFound(t *testing.T) {
	srv := dohServer(t, `{"Status":0,"Answer":[{"data":"93.184.216.34"},{"data":"93.184.216.35"}]}`)
	defer srv.Close()

	monitor := domain.Monitor{Type: domain.MonitorDNS, Hostname: "example.com", TimeoutSeconds: 5}
	result := NewDNSProber(srv.URL).Probe(context.Background(), monitor)

	if !result.Status {
		t.Fatalf("expected up result, got %q", result.Message)
	}
	want := "Found 2 A record(s): 93.184.216.34, 93.184.216.35"
	if result.Message != want {
		t.Fatalf("message = %q, want %q", result.Message, want)
	}
}

func TestDNSProbeNXDomain(t *testing.T) {
	srv := dohServer(t, `{"Status":3}`)
	defer srv.Close()

	monitor := domain.Monitor{Type: domain.MonitorDNS, Hostname: "nope.invalid", TimeoutSeconds: 5}
	result := NewDNSProber(srv.URL).Probe(context.Background(), monitor)

	if result.Status {
		t.Fatalf("expected down result")
	}
	if result.Message != "Non-existent domain (NXDOMAIN)" {
		t.Fatalf("unexpected message %q", result.Message)
	}
}

func TestDNSProbeNoRecords(t *testing.T) {
	srv := dohServer(t, `{"Status":0,"Answer":[]}`)
	defer srv.Close()

	monitor := domain.Monitor{Type: domain.MonitorDNS, Hostname: "example.com", DNSRecordType: "AAAA", TimeoutSeconds: 5}
	result := NewDNSProber(srv.URL).Probe(context.Background(), monitor)

	if result.Status {
		t.Fatalf("expected down result")
	}
	if result.Message != "No AAAA records found" {
		t.Fatalf("unexpected message %q", result.Message)
	}
}

func TestDNSProbeResolverError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	monitor := domain.Monitor{Type: domain.MonitorDNS, Hostname: "example.com", TimeoutSeconds: 5}
	result := NewDNSProber(srv.URL).Probe(context.Background(), monitor)

	if result.Status {
		t.Fatalf("expected down result")
	}
	if result.Message != "DNS query failed: 502" {
		t.Fatalf("unexpected message %q", result.Message)
	}
}

func TestDNSProbeMissingHostname(t *testing.T) {
	result := NewDNSProber("").Probe(context.Background(), domain.Monitor{Type: domain.MonitorDNS})
	if result.Status {
		t.Fatalf("expected down result")
	}
	if result.Message != "Hostname is required" {
		t.Fatalf("unexpected message %q", result.Message)
	}
}
