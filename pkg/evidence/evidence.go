// Package evidence defines the evidence envelope shared by the enrichment
// providers, the soft-KPI calculators, and the trust verifier. An Evidence
// value records what a provider returned, when, and for which entity, and
// hashes its payload through canonical JSON so that two fetches of the same
// content always produce the same digest.
package evidence

import (
	"fmt"
	"time"

	"github.com/sthamann/AXP/pkg/canonicalize"
)

// Entity scopes an evidence record to a brand or a product.
type Entity string

const (
	EntityBrand   Entity = "brand"   // brand-level evidence (domain keyed)
	EntityProduct Entity = "product" // product-level evidence (product id keyed)
)

const (
	// DefaultTTLHours applies when a provider does not set a TTL.
	DefaultTTLHours = 168

	// AnomalyTTLHours replaces the provider TTL when the orchestrator
	// flags the payload as anomalous, forcing an early re-fetch.
	AnomalyTTLHours = 1
)

// Evidence is a single provider observation for one entity.
type Evidence struct {
	Source      string                 `json:"source"`
	Entity      Entity                 `json:"entity"`
	SourceID    string                 `json:"source_id"`
	RetrievedAt time.Time              `json:"retrieved_at"`
	EvidenceURL string                 `json:"evidence_url"`
	Data        map[string]interface{} `json:"data"`
	Signature   string                 `json:"signature,omitempty"`
	TTLHours    int                    `json:"ttl_hours"`
}

// Hash returns the SHA-256 hex digest of the canonical JSON form of Data.
func (e *Evidence) Hash() (string, error) {
	h, err := canonicalize.CanonicalHash(e.Data)
	if err != nil {
		return "", fmt.Errorf("evidence %s: %w", e.SourceID, err)
	}
	return h, nil
}

// Fresh reports whether the evidence is still within its TTL at now.
// A zero or negative TTL falls back to DefaultTTLHours.
func (e *Evidence) Fresh(now time.Time) bool {
	ttl := e.TTLHours
	if ttl <= 0 {
		ttl = DefaultTTLHours
	}
	return now.Sub(e.RetrievedAt) < time.Duration(ttl)*time.Hour
}

// Clone returns a deep copy. Cache implementations hand clones to callers
// so a caller mutating Data cannot corrupt the cached entry.
func (e *Evidence) Clone() *Evidence {
	c := *e
	c.Data = cloneMap(e.Data)
	return &c
}

// ToMap renders the evidence as a generic map with retrieved_at in
// RFC 3339 UTC form, the shape used in credential subjects and JSON output.
func (e *Evidence) ToMap() map[string]interface{} {
	m := map[string]interface{}{
		"source":       e.Source,
		"entity":       string(e.Entity),
		"source_id":    e.SourceID,
		"retrieved_at": e.RetrievedAt.UTC().Format(time.RFC3339),
		"evidence_url": e.EvidenceURL,
		"data":         cloneMap(e.Data),
		"ttl_hours":    e.TTLHours,
	}
	if e.Signature != "" {
		m["signature"] = e.Signature
	}
	return m
}

func cloneMap(in map[string]interface{}) map[string]interface{} {
	if in == nil {
		return nil
	}
	out := make(map[string]interface{}, len(in))
	for k, v := range in {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		return cloneMap(t)
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	default:
		return v
	}
}
