package enrichment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/sthamann/AXP/pkg/canonicalize"
	"github.com/sthamann/AXP/pkg/config"
	"github.com/sthamann/AXP/pkg/evidence"
	"github.com/sthamann/AXP/pkg/observability"
)

// defaultProductProviders is the provider subset used for product
// enrichment when the caller does not name providers. Trustpilot and
// BuiltWith carry no product-level data.
var defaultProductProviders = []string{ProviderTrustedShops, ProviderGoogleSeller}

// Orchestrator fans enrichment out across providers, serves fresh
// evidence from the cache, coalesces concurrent fetches for the same
// key, and flags anomalous payload jumps.
type Orchestrator struct {
	providers []Provider
	byName    map[string]Provider
	cache     Cache
	sf        singleflight.Group
	sem       chan struct{}
	timeout   time.Duration
	issuer    string
	signer    ProofSigner
	obs       *observability.Provider
	log       *slog.Logger
	now       func() time.Time
}

// OrchestratorOption customizes an Orchestrator.
type OrchestratorOption func(*Orchestrator)

// WithProviders replaces the default provider set.
func WithProviders(providers ...Provider) OrchestratorOption {
	return func(o *Orchestrator) { o.providers = providers }
}

// WithCache replaces the default in-process cache.
func WithCache(c Cache) OrchestratorOption {
	return func(o *Orchestrator) { o.cache = c }
}

// WithTimeout sets the per-provider fetch timeout.
func WithTimeout(d time.Duration) OrchestratorOption {
	return func(o *Orchestrator) { o.timeout = d }
}

// WithConcurrency caps how many providers fetch at once.
func WithConcurrency(n int) OrchestratorOption {
	return func(o *Orchestrator) {
		if n > 0 {
			o.sem = make(chan struct{}, n)
		}
	}
}

// WithIssuer sets the credential issuer DID.
func WithIssuer(issuer string) OrchestratorOption {
	return func(o *Orchestrator) { o.issuer = issuer }
}

// WithSigner sets the proof signer for evidence and credentials.
func WithSigner(s ProofSigner) OrchestratorOption {
	return func(o *Orchestrator) { o.signer = s }
}

// WithObservability attaches metric instruments.
func WithObservability(p *observability.Provider) OrchestratorOption {
	return func(o *Orchestrator) { o.obs = p }
}

// WithClock overrides the clock, for tests.
func WithClock(now func() time.Time) OrchestratorOption {
	return func(o *Orchestrator) { o.now = now }
}

// NewOrchestrator builds an orchestrator with the default provider set,
// an in-process cache, four-way fan-out, and a 10 second per-provider
// timeout.
func NewOrchestrator(opts ...OrchestratorOption) *Orchestrator {
	o := &Orchestrator{
		providers: []Provider{
			NewTrustpilot(nil),
			NewTrustedShops(nil),
			NewBuiltWith(nil),
			NewGoogleSeller(nil),
		},
		cache:   NewMemoryCache(),
		sem:     make(chan struct{}, 4),
		timeout: 10 * time.Second,
		issuer:  "did:web:axp.example.com",
		log:     slog.Default().With("component", "enrichment"),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	o.byName = make(map[string]Provider, len(o.providers))
	for _, p := range o.providers {
		o.byName[p.Name()] = p
	}
	return o
}

// NewOrchestratorFromConfig wires the orchestrator from service
// configuration: provider profiles from the profiles directory, Redis
// cache when a URL is set, and the configured fan-out limits.
func NewOrchestratorFromConfig(ctx context.Context, cfg *config.Config, opts ...OrchestratorOption) (*Orchestrator, error) {
	profiles, err := config.LoadAllProviderProfiles(cfg.ProfilesDir)
	if err != nil {
		return nil, fmt.Errorf("load provider profiles: %w", err)
	}

	base := []OrchestratorOption{
		WithProviders(
			NewTrustpilot(profiles[ProviderTrustpilot]),
			NewTrustedShops(profiles[ProviderTrustedShops]),
			NewBuiltWith(profiles[ProviderBuiltWith]),
			NewGoogleSeller(profiles[ProviderGoogleSeller]),
		),
		WithTimeout(cfg.ProviderTimeout),
		WithConcurrency(cfg.MaxConcurrency),
		WithIssuer(cfg.Issuer),
	}

	if cfg.RedisURL != "" {
		cache, err := NewRedisCache(ctx, cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		base = append(base, WithCache(cache))
	}

	return NewOrchestrator(append(base, opts...)...), nil
}

// Close releases the cache.
func (o *Orchestrator) Close() error {
	return o.cache.Close()
}

// EnrichBrand gathers brand-level evidence for a shop domain. With no
// provider names it asks every registered provider; providers that do
// not cover the brand scope are skipped. Failures are logged and
// omitted, so the result is always the set of providers that answered.
func (o *Orchestrator) EnrichBrand(ctx context.Context, domain string, providerNames ...string) map[string]*evidence.Evidence {
	return o.enrich(ctx, evidence.EntityBrand, domain, o.selectProviders(evidence.EntityBrand, providerNames))
}

// EnrichProduct gathers product-level evidence. With no provider names
// it asks the product-capable default subset.
func (o *Orchestrator) EnrichProduct(ctx context.Context, productID string, providerNames ...string) map[string]*evidence.Evidence {
	return o.enrich(ctx, evidence.EntityProduct, productID, o.selectProviders(evidence.EntityProduct, providerNames))
}

func (o *Orchestrator) selectProviders(entity evidence.Entity, names []string) []Provider {
	if len(names) == 0 {
		if entity == evidence.EntityProduct {
			names = defaultProductProviders
		} else {
			selected := make([]Provider, len(o.providers))
			copy(selected, o.providers)
			return selected
		}
	}
	var selected []Provider
	for _, name := range names {
		if p, ok := o.byName[name]; ok {
			selected = append(selected, p)
		} else {
			o.log.Warn("unknown provider requested", "provider", name)
		}
	}
	return selected
}

func (o *Orchestrator) enrich(ctx context.Context, entity evidence.Entity, id string, selected []Provider) map[string]*evidence.Evidence {
	runID := uuid.NewString()
	results := make(map[string]*evidence.Evidence, len(selected))

	var mu sync.Mutex
	var wg sync.WaitGroup
	for _, p := range selected {
		wg.Add(1)
		go func(p Provider) {
			defer wg.Done()

			select {
			case o.sem <- struct{}{}:
				defer func() { <-o.sem }()
			case <-ctx.Done():
				return
			}

			pctx, cancel := context.WithTimeout(ctx, o.timeout)
			defer cancel()

			ev, err := o.enrichOne(pctx, p, entity, id)
			if err != nil {
				if !errors.Is(err, ErrUnsupported) {
					o.log.Warn("provider enrichment failed",
						"run_id", runID, "provider", p.Name(), "entity", entity, "id", id, "error", err)
					o.obs.RecordError(ctx, err)
				}
				return
			}

			mu.Lock()
			results[p.Name()] = ev
			mu.Unlock()
		}(p)
	}
	wg.Wait()

	o.log.Info("enrichment run complete",
		"run_id", runID, "entity", entity, "id", id,
		"requested", len(selected), "answered", len(results))
	return results
}

// enrichOne serves one (provider, entity, id) key: fresh cache entries
// win, otherwise exactly one fetch runs no matter how many callers ask
// concurrently.
func (o *Orchestrator) enrichOne(ctx context.Context, p Provider, entity evidence.Entity, id string) (*evidence.Evidence, error) {
	key := cacheKey(p.Name(), entity, id)

	v, err, _ := o.sf.Do(key, func() (interface{}, error) {
		if cached, err := o.cache.Get(ctx, key); err == nil && cached.Fresh(o.now()) {
			o.obs.RecordCacheHit(ctx, p.Name(), true)
			return cached, nil
		}
		o.obs.RecordCacheHit(ctx, p.Name(), false)

		start := time.Now()
		var ev *evidence.Evidence
		var err error
		switch entity {
		case evidence.EntityBrand:
			ev, err = p.FetchBrand(ctx, id)
		default:
			ev, err = p.FetchProduct(ctx, id)
		}
		o.obs.RecordFetch(ctx, p.Name())
		o.obs.RecordFetchDuration(ctx, p.Name(), time.Since(start))
		if err != nil {
			return nil, err
		}

		if hist, herr := o.cache.History(ctx, key); herr == nil && len(hist) > 0 {
			if detectAnomaly(ev.Data, hist[0]) {
				ev.Data["anomaly_detected"] = true
				ev.TTLHours = evidence.AnomalyTTLHours
				o.log.Warn("anomalous payload flagged",
					"provider", p.Name(), "source_id", ev.SourceID)
				o.obs.RecordAnomaly(ctx, p.Name())
			}
		}

		if o.signer != nil {
			if err := o.signEvidence(ev); err != nil {
				o.log.Warn("evidence signing failed", "provider", p.Name(), "error", err)
			}
		}

		if err := o.cache.Put(ctx, key, ev); err != nil {
			o.log.Warn("cache write failed", "provider", p.Name(), "key", key, "error", err)
		}
		return ev, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*evidence.Evidence).Clone(), nil
}

func (o *Orchestrator) signEvidence(ev *evidence.Evidence) error {
	payload, err := canonicalize.JCS(ev.Data)
	if err != nil {
		return err
	}
	_, sig, err := o.signer.Sign(payload)
	if err != nil {
		return err
	}
	ev.Signature = sig
	return nil
}

func cacheKey(provider string, entity evidence.Entity, id string) string {
	return fmt.Sprintf("%s:%s:%s", provider, entity, id)
}
