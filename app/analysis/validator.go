package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

// dnsStatusNoError is the DNS RCODE for NOERROR. A NOERROR response with no
// A records still counts as an existing domain (MX-only domains and the like).
const dnsStatusNoError = 0

// Validator checks whether a hostname exists via DNS-over-HTTPS. This is a
// heuristic gate for user input, not an authoritative resolver; occasional
// false results are acceptable.
type Validator struct {
	httpClient *http.Client
	resolvers  []string
}

func NewValidator() *Validator {
	return &Validator{
		httpClient: &http.Client{Timeout: 4 * time.Second},
		resolvers: []string{
			"https://cloudflare-dns.com/dns-query",
			"https://dns.google/resolve",
		},
	}
}

// IsValidHostname reports whether the hostname is syntactically valid and
// resolves. The secondary resolver is only consulted when the primary call
// fails; a definitive NXDOMAIN from the primary is trusted.
func (v *Validator) IsValidHostname(ctx context.Context, hostname string) bool {
	if !IsSyntaxValid(hostname) {
		return false
	}

	for _, resolver := range v.resolvers {
		status, err := v.query(ctx, resolver, hostname)
		if err != nil {
			slog.Debug("DNS resolver query failed", "resolver", resolver, "hostname", hostname, "error", err)
			continue
		}
		return status == dnsStatusNoError
	}

	return false
}

func (v *Validator) query(ctx context.Context, resolver, hostname string) (int, error) {
	endpoint := fmt.Sprintf("%s?name=%s&type=A", resolver, url.QueryEscape(hostname))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/dns-json")

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var parsed struct {
		Status int `json:"Status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return 0, fmt.Errorf("failed to decode response: %w", err)
	}

	return parsed.Status, nil
}
