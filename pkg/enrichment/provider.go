// Package enrichment fetches third-party evidence about brands and
// products, caches it under per-source TTLs, flags anomalous payload
// jumps, and packages evidence into W3C Verifiable Credentials. The
// Orchestrator fans out across providers; each provider adapter knows
// one external source.
package enrichment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/sthamann/AXP/pkg/config"
	"github.com/sthamann/AXP/pkg/evidence"
	"github.com/sthamann/AXP/pkg/util/resiliency"
)

// ErrUnsupported is returned by a provider when it has no data for the
// requested scope. The orchestrator skips the provider instead of
// recording a failure.
var ErrUnsupported = errors.New("enrichment: scope not supported by provider")

// Provider is one external evidence source. Adapters return
// ErrUnsupported for scopes they do not cover.
type Provider interface {
	Name() string
	FetchBrand(ctx context.Context, domain string) (*evidence.Evidence, error)
	FetchProduct(ctx context.Context, productID string) (*evidence.Evidence, error)
}

// Provider names as registered with the orchestrator.
const (
	ProviderTrustpilot   = "trustpilot"
	ProviderTrustedShops = "trusted_shops"
	ProviderBuiltWith    = "builtwith"
	ProviderGoogleSeller = "google_seller"
)

// adapter carries the state shared by all provider adapters. With a
// profile endpoint configured the adapter queries the remote API through
// the resiliency client; without one it serves a deterministic baseline
// payload so the pipeline stays runnable offline.
type adapter struct {
	name    string
	ttl     int
	profile *config.ProviderProfile
	client  *resiliency.Client
	now     func() time.Time
}

func newAdapter(name string, ttl int, profile *config.ProviderProfile) adapter {
	a := adapter{name: name, ttl: ttl, profile: profile, now: time.Now}
	if profile != nil && profile.TTLHours > 0 {
		a.ttl = profile.TTLHours
	}
	if profile != nil && profile.Endpoint != "" {
		opts := []resiliency.Option{}
		if profile.RateLimit.RequestsPerSecond > 0 {
			opts = append(opts, resiliency.WithRateLimit(profile.RateLimit.RequestsPerSecond, profile.RateLimit.Burst))
		}
		a.client = resiliency.New(name, opts...)
	}
	return a
}

func (a *adapter) Name() string { return a.name }

func (a *adapter) remote() bool { return a.client != nil }

// fetchRemote queries <endpoint>/<scope>/<id> and decodes the JSON body
// as the evidence payload.
func (a *adapter) fetchRemote(ctx context.Context, scope, id string) (map[string]interface{}, error) {
	u := fmt.Sprintf("%s/%s/%s", a.profile.Endpoint, scope, url.PathEscape(id))
	resp, err := a.client.Get(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("%s fetch: %w", a.name, err)
	}
	defer resp.Body.Close()

	var data map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("%s decode: %w", a.name, err)
	}
	return data, nil
}

func (a *adapter) envelope(entity evidence.Entity, sourceID, evidenceURL string, data map[string]interface{}) *evidence.Evidence {
	return &evidence.Evidence{
		Source:      a.name,
		Entity:      entity,
		SourceID:    sourceID,
		RetrievedAt: a.now().UTC(),
		EvidenceURL: evidenceURL,
		Data:        data,
		TTLHours:    a.ttl,
	}
}
