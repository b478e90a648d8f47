package enrichment

import (
	"context"
	"fmt"

	"github.com/sthamann/AXP/pkg/config"
	"github.com/sthamann/AXP/pkg/evidence"
)

// Trustpilot serves brand-level review aggregates. Review data moves
// quickly, so evidence expires after a day.
type Trustpilot struct {
	adapter
}

// NewTrustpilot builds the Trustpilot adapter. profile may be nil.
func NewTrustpilot(profile *config.ProviderProfile) *Trustpilot {
	return &Trustpilot{adapter: newAdapter(ProviderTrustpilot, 24, profile)}
}

func (p *Trustpilot) FetchBrand(ctx context.Context, domain string) (*evidence.Evidence, error) {
	data, err := p.brandData(ctx, domain)
	if err != nil {
		return nil, err
	}
	return p.envelope(
		evidence.EntityBrand,
		fmt.Sprintf("trustpilot:domain:%s", domain),
		fmt.Sprintf("https://www.trustpilot.com/review/%s", domain),
		data,
	), nil
}

func (p *Trustpilot) FetchProduct(ctx context.Context, productID string) (*evidence.Evidence, error) {
	return nil, ErrUnsupported
}

func (p *Trustpilot) brandData(ctx context.Context, domain string) (map[string]interface{}, error) {
	if p.remote() {
		return p.fetchRemote(ctx, "brand", domain)
	}
	return map[string]interface{}{
		"avg_rating":  4.6,
		"count_total": 12873,
		"breakdown": map[string]interface{}{
			"5_star": 72.0,
			"4_star": 18.0,
			"3_star": 6.0,
			"2_star": 2.0,
			"1_star": 2.0,
		},
		"trust_score":        4.5,
		"categories":         []interface{}{"shoe_store", "sportswear_store"},
		"verification_level": "verified_company",
		"recent_reviews": []interface{}{
			map[string]interface{}{"rating": 5, "verified": true, "days_ago": 2},
			map[string]interface{}{"rating": 4, "verified": true, "days_ago": 5},
		},
	}, nil
}
