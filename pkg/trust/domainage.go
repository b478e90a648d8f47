package trust

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/sthamann/AXP/pkg/util/resiliency"
)

// DomainAgeResult is a multi-source attestation of how long a domain has
// existed. AgeScore saturates at 0.6 so domain age alone can never carry
// a trust decision.
type DomainAgeResult struct {
	Domain       string    `json:"domain"`
	EarliestDate time.Time `json:"earliest_date"`
	AgeDays      int       `json:"age_days"`
	AgeScore     float64   `json:"age_score"`
	Confidence   float64   `json:"confidence"`
	Sources      []string  `json:"sources"`
}

// AgeSource reports the earliest date a domain was observed by one
// external system.
type AgeSource interface {
	Name() string
	FirstSeen(ctx context.Context, domain string) (time.Time, error)
}

// WithAgeSources replaces the default domain-age sources. Calling it
// with no arguments disables domain-age lookups entirely.
func WithAgeSources(sources ...AgeSource) Option {
	return func(v *Verifier) {
		if sources == nil {
			sources = []AgeSource{}
		}
		v.ageSources = sources
	}
}

// DefaultAgeSources returns the production source set, queried in order:
// WHOIS, certificate-transparency logs, DNS history, web archive.
// dnsHistoryEndpoint may be empty; that source then reports unavailable.
func DefaultAgeSources(dnsHistoryEndpoint, dnsHistoryAPIKey string) []AgeSource {
	return []AgeSource{
		&WHOISSource{Server: "whois.verisign-grs.com:43"},
		&CTLogSource{client: resiliency.New("crtsh")},
		&DNSHistorySource{
			client:   resiliency.New("dns_history"),
			Endpoint: dnsHistoryEndpoint,
			APIKey:   dnsHistoryAPIKey,
		},
		&WebArchiveSource{client: resiliency.New("web_archive")},
	}
}

// CalculateDomainAge queries every age source, takes the minimum of the
// successful dates, and scores `min(0.6, 1 - exp(-age_days/365))` with
// confidence `min(1, successes/2)`. Individual source failures are
// isolated; the others still count.
func (v *Verifier) CalculateDomainAge(ctx context.Context, domain string) DomainAgeResult {
	var earliest time.Time
	var sources []string

	for _, src := range v.ageSources {
		seen, err := src.FirstSeen(ctx, domain)
		if err != nil || seen.IsZero() {
			if err != nil {
				v.log.Debug("domain age source failed", "source", src.Name(), "domain", domain, "error", err)
			}
			continue
		}
		sources = append(sources, src.Name())
		if earliest.IsZero() || seen.Before(earliest) {
			earliest = seen
		}
	}

	now := v.now()
	if earliest.IsZero() {
		return DomainAgeResult{Domain: domain, EarliestDate: now}
	}

	ageDays := int(now.Sub(earliest).Hours() / 24)
	if ageDays < 0 {
		ageDays = 0
	}

	return DomainAgeResult{
		Domain:       domain,
		EarliestDate: earliest,
		AgeDays:      ageDays,
		AgeScore:     ageScore(ageDays),
		Confidence:   confidenceFromSources(len(sources)),
		Sources:      sources,
	}
}

func ageScore(ageDays int) float64 {
	raw := 1 - math.Exp(-float64(ageDays)/365)
	if raw > 0.6 {
		return 0.6
	}
	return raw
}

func confidenceFromSources(n int) float64 {
	c := float64(n) / 2
	if c > 1 {
		return 1
	}
	return c
}

// WHOISSource reads the registry creation date over the WHOIS protocol.
type WHOISSource struct {
	Server  string
	Timeout time.Duration
}

func (s *WHOISSource) Name() string { return "whois" }

func (s *WHOISSource) FirstSeen(ctx context.Context, domain string) (time.Time, error) {
	timeout := s.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", s.Server)
	if err != nil {
		return time.Time{}, fmt.Errorf("whois dial: %w", err)
	}
	defer conn.Close()
	_ = conn.SetDeadline(time.Now().Add(timeout))

	if _, err := fmt.Fprintf(conn, "%s\r\n", domain); err != nil {
		return time.Time{}, fmt.Errorf("whois query: %w", err)
	}

	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if after, ok := strings.CutPrefix(line, "Creation Date:"); ok {
			raw := strings.TrimSpace(after)
			created, err := time.Parse(time.RFC3339, raw)
			if err != nil {
				return time.Time{}, fmt.Errorf("whois creation date %q: %w", raw, err)
			}
			return created, nil
		}
	}
	return time.Time{}, fmt.Errorf("whois: no creation date for %s", domain)
}

// CTLogSource reads the earliest certificate for a domain from crt.sh.
type CTLogSource struct {
	client *resiliency.Client
	// BaseURL overrides the crt.sh endpoint, for tests.
	BaseURL string
}

func (s *CTLogSource) Name() string { return "certificate_transparency" }

func (s *CTLogSource) FirstSeen(ctx context.Context, domain string) (time.Time, error) {
	base := s.BaseURL
	if base == "" {
		base = "https://crt.sh"
	}
	resp, err := s.client.Get(ctx, fmt.Sprintf("%s/?q=%s&output=json", base, url.QueryEscape(domain)))
	if err != nil {
		return time.Time{}, fmt.Errorf("ct log query: %w", err)
	}
	defer resp.Body.Close()

	var entries []struct {
		NotBefore string `json:"not_before"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return time.Time{}, fmt.Errorf("ct log decode: %w", err)
	}

	var earliest time.Time
	for _, e := range entries {
		t, err := time.Parse("2006-01-02T15:04:05", e.NotBefore)
		if err != nil {
			continue
		}
		if earliest.IsZero() || t.Before(earliest) {
			earliest = t
		}
	}
	if earliest.IsZero() {
		return time.Time{}, fmt.Errorf("ct log: no certificates for %s", domain)
	}
	return earliest, nil
}

// DNSHistorySource reads the first-seen date from a passive DNS provider.
// The provider endpoint and key come from configuration; without them the
// source reports unavailable and is skipped.
type DNSHistorySource struct {
	client   *resiliency.Client
	Endpoint string
	APIKey   string
}

func (s *DNSHistorySource) Name() string { return "dns_history" }

func (s *DNSHistorySource) FirstSeen(ctx context.Context, domain string) (time.Time, error) {
	if s.Endpoint == "" {
		return time.Time{}, fmt.Errorf("dns history: no endpoint configured")
	}
	resp, err := s.client.Get(ctx, fmt.Sprintf("%s/v1/history/%s?apikey=%s",
		strings.TrimSuffix(s.Endpoint, "/"), url.PathEscape(domain), url.QueryEscape(s.APIKey)))
	if err != nil {
		return time.Time{}, fmt.Errorf("dns history query: %w", err)
	}
	defer resp.Body.Close()

	var payload struct {
		FirstSeen string `json:"first_seen"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return time.Time{}, fmt.Errorf("dns history decode: %w", err)
	}
	t, err := time.Parse("2006-01-02", payload.FirstSeen)
	if err != nil {
		return time.Time{}, fmt.Errorf("dns history first_seen %q: %w", payload.FirstSeen, err)
	}
	return t, nil
}

// WebArchiveSource reads the earliest capture from the Wayback Machine
// CDX API.
type WebArchiveSource struct {
	client *resiliency.Client
	// BaseURL overrides the archive endpoint, for tests.
	BaseURL string
}

func (s *WebArchiveSource) Name() string { return "internet_archive" }

func (s *WebArchiveSource) FirstSeen(ctx context.Context, domain string) (time.Time, error) {
	base := s.BaseURL
	if base == "" {
		base = "https://web.archive.org"
	}
	resp, err := s.client.Get(ctx, fmt.Sprintf(
		"%s/cdx/search/cdx?url=%s&limit=1&output=json&fl=timestamp", base, url.QueryEscape(domain)))
	if err != nil {
		return time.Time{}, fmt.Errorf("web archive query: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return time.Time{}, fmt.Errorf("web archive read: %w", err)
	}

	// CDX JSON output is a header row followed by capture rows.
	var rows [][]string
	if err := json.Unmarshal(body, &rows); err != nil {
		return time.Time{}, fmt.Errorf("web archive decode: %w", err)
	}
	if len(rows) < 2 || len(rows[1]) < 1 {
		return time.Time{}, fmt.Errorf("web archive: no captures for %s", domain)
	}
	t, err := time.Parse("20060102150405", rows[1][0])
	if err != nil {
		return time.Time{}, fmt.Errorf("web archive timestamp %q: %w", rows[1][0], err)
	}
	return t, nil
}
