// Package trust verifies externally sourced trust signals: review
// statistics, certifications, and W3C Verifiable Credentials. Verification
// never fails outright; anomalies accumulate and push the confidence of
// the result down, so downstream consumers always get an auditable answer.
package trust

import (
	"log/slog"
	"sync"
	"time"
)

// Method identifies how a signal was verified.
type Method string

const (
	MethodAPI        Method = "api"                   // trusted first-party API
	MethodSnapshot   Method = "snapshot"              // hashed public snapshot
	MethodAttested   Method = "attested"              // merchant attestation
	MethodVC         Method = "verifiable_credential" // W3C VC proof chain
	MethodWebhook    Method = "webhook"               // push notification
	MethodSignedFile Method = "signed_file"           // signed export file
)

// Result is the outcome of one verification.
type Result struct {
	Method          Method                 `json:"method"`
	Confidence      float64                `json:"confidence"`
	LastChecked     time.Time              `json:"last_checked"`
	SourceSignature string                 `json:"source_signature,omitempty"`
	SnapshotHash    string                 `json:"snapshot_hash,omitempty"`
	Anomalies       []string               `json:"anomalies"`
	RawData         map[string]interface{} `json:"raw_data,omitempty"`
}

// Stats is a review statistics record, either expected or observed.
type Stats map[string]interface{}

// FetchFunc retrieves review statistics for a business on a platform.
type FetchFunc func(source, businessID string) (Stats, error)

// CertFetchFunc retrieves certification data for a generic snapshot check.
type CertFetchFunc func(certType, certID, issuer string) (map[string]interface{}, error)

// ProofVerifyFunc checks the cryptographic proof of a credential document.
type ProofVerifyFunc func(vc map[string]interface{}) bool

// Registry is the set of credential issuers this verifier trusts.
type Registry struct {
	mu      sync.RWMutex
	issuers map[string]bool
}

// NewRegistry builds a registry seeded with the given issuers.
func NewRegistry(issuers ...string) *Registry {
	r := &Registry{issuers: make(map[string]bool, len(issuers))}
	for _, iss := range issuers {
		r.issuers[iss] = true
	}
	return r
}

// Add registers an issuer as trusted.
func (r *Registry) Add(issuer string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.issuers[issuer] = true
}

// Remove withdraws trust from an issuer.
func (r *Registry) Remove(issuer string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.issuers, issuer)
}

// Trusted reports whether an issuer is in the registry.
func (r *Registry) Trusted(issuer string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.issuers[issuer]
}

// Verifier runs all verification paths. Build with NewVerifier; the
// fetcher and proof hooks are injectable so tests stay hermetic.
type Verifier struct {
	registry      *Registry
	apiFetch      FetchFunc
	snapshotFetch FetchFunc
	certFetch     CertFetchFunc
	verifyProof   ProofVerifyFunc
	revoked       map[string]bool
	trustedAPIs   map[string]bool
	ageSources    []AgeSource
	log           *slog.Logger
	now           func() time.Time
}

// Option customizes a Verifier.
type Option func(*Verifier)

// WithRegistry sets the issuer trust registry.
func WithRegistry(r *Registry) Option {
	return func(v *Verifier) { v.registry = r }
}

// WithAPIFetcher enables the trusted-API verification path.
func WithAPIFetcher(f FetchFunc) Option {
	return func(v *Verifier) { v.apiFetch = f }
}

// WithSnapshotFetcher sets the public-snapshot fetcher.
func WithSnapshotFetcher(f FetchFunc) Option {
	return func(v *Verifier) { v.snapshotFetch = f }
}

// WithCertFetcher sets the generic certification-data fetcher.
func WithCertFetcher(f CertFetchFunc) Option {
	return func(v *Verifier) { v.certFetch = f }
}

// WithProofVerifier sets the credential proof check.
func WithProofVerifier(f ProofVerifyFunc) Option {
	return func(v *Verifier) { v.verifyProof = f }
}

// WithRevocations marks certification ids as revoked.
func WithRevocations(ids ...string) Option {
	return func(v *Verifier) {
		for _, id := range ids {
			v.revoked[id] = true
		}
	}
}

// WithClock overrides the clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(v *Verifier) { v.now = now }
}

// NewVerifier builds a verifier with a default registry and snapshot-based
// fallbacks for every path.
func NewVerifier(opts ...Option) *Verifier {
	v := &Verifier{
		registry: NewRegistry(
			"did:web:example.com",
			"did:key:z6MkhaXgBZD",
			"https://issuer.example.com",
		),
		revoked: map[string]bool{},
		trustedAPIs: map[string]bool{
			"trustpilot":  true,
			"google":      true,
			"tripadvisor": true,
			"bbb":         true,
			"capterra":    true,
		},
		log: slog.Default().With("component", "trust"),
		now: time.Now,
	}
	for _, opt := range opts {
		opt(v)
	}
	if v.ageSources == nil {
		v.ageSources = DefaultAgeSources("", "")
	}
	return v
}

// Registry exposes the issuer registry for credential setup.
func (v *Verifier) Registry() *Registry {
	return v.registry
}
