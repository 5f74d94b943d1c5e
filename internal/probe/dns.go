package probe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/heybeacon/beacon/internal/domain"
)

// DefaultDoHEndpoint is the DNS-over-HTTPS resolver queried when none is
// configured.
const DefaultDoHEndpoint = "https://cloudflare-dns.com/dns-query"

// dohResponse is the resolver's JSON contract. Status 0 means success.
type dohResponse struct {
	Status int `json:"Status"`
	Answer []struct {
		Data string `json:"data"`
	} `json:"Answer"`
}

var dnsStatusMessages = map[int]string{
	1: "Format error",
	2: "Server failure",
	3: "Non-existent domain (NXDOMAIN)",
	4: "Not implemented",
	5: "Query refused",
}

// DNSProber checks dns monitors through a DNS-over-HTTPS resolver.
type DNSProber struct {
	client   *http.Client
	endpoint string
}

// NewDNSProber constructs a DNS prober against the given resolver endpoint.
func NewDNSProber(endpoint string) *DNSProber {
	if strings.TrimSpace(endpoint) == "" {
		endpoint = DefaultDoHEndpoint
	}
	return &DNSProber{client: &http.Client{}, endpoint: endpoint}
}

// Probe resolves the monitor's hostname via the configured resolver.
func (p *DNSProber) Probe(ctx context.Context, monitor domain.Monitor) Result {
	if monitor.Hostname == "" {
		return down("Hostname is required", 0)
	}

	recordType := monitor.DNSRecordType
	if recordType == "" {
		recordType = domain.DefaultDNSRecordType
	}

	queryURL := fmt.Sprintf("%s?name=%s&type=%s", p.endpoint, url.QueryEscape(monitor.Hostname), url.QueryEscape(recordType))

	reqCtx, cancel := context.WithTimeout(ctx, monitor.Timeout())
	defer cancel()

	start := time.Now()
	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, queryURL, nil)
	if err != nil {
		return down(err.Error(), time.Since(start).Milliseconds())
	}
	req.Header.Set("Accept", "application/dns-json")

	resp, err := p.client.Do(req)
	elapsed := time.Since(start).Milliseconds()
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return down("DNS query timeout", elapsed)
		}
		return down(err.Error(), elapsed)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return down(fmt.Sprintf("DNS query failed: %d", resp.StatusCode), elapsed)
	}

	var payload dohResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return down(fmt.Sprintf("decode resolver response: %v", err), elapsed)
	}

	if payload.Status != 0 {
		message, ok := dnsStatusMessages[payload.Status]
		if !ok {
			message = fmt.Sprintf("DNS error: %d", payload.Status)
		}
		return down(message, elapsed)
	}

	if len(payload.Answer) == 0 {
		return down(fmt.Sprintf("No %s records found", recordType), elapsed)
	}

	values := make([]string, 0, len(payload.Answer))
	for _, answer := range payload.Answer {
		values = append(values, answer.Data)
	}
	message := fmt.Sprintf("Found %d %s record(s): %s", len(payload.Answer), recordType, strings.Join(values, ", "))
	return Result{Status: true, ResponseTimeMS: elapsed, Message: message}
}
