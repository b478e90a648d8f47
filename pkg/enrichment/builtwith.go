package enrichment

import (
	"context"
	"fmt"

	"github.com/sthamann/AXP/pkg/config"
	"github.com/sthamann/AXP/pkg/evidence"
)

// BuiltWith serves the technology stack detected on a brand's shop
// domain. Stacks change rarely, so evidence holds for thirty days.
type BuiltWith struct {
	adapter
}

// NewBuiltWith builds the BuiltWith adapter. profile may be nil.
func NewBuiltWith(profile *config.ProviderProfile) *BuiltWith {
	return &BuiltWith{adapter: newAdapter(ProviderBuiltWith, 720, profile)}
}

func (p *BuiltWith) FetchBrand(ctx context.Context, domain string) (*evidence.Evidence, error) {
	data, err := p.brandData(ctx, domain)
	if err != nil {
		return nil, err
	}
	return p.envelope(
		evidence.EntityBrand,
		fmt.Sprintf("builtwith:domain:%s", domain),
		fmt.Sprintf("https://builtwith.com/%s", domain),
		data,
	), nil
}

func (p *BuiltWith) FetchProduct(ctx context.Context, productID string) (*evidence.Evidence, error) {
	return nil, ErrUnsupported
}

func (p *BuiltWith) brandData(ctx context.Context, domain string) (map[string]interface{}, error) {
	if p.remote() {
		return p.fetchRemote(ctx, "brand", domain)
	}
	return map[string]interface{}{
		"detected": []interface{}{
			map[string]interface{}{"name": "Shopware", "category": "ecommerce", "version": "6.5"},
			map[string]interface{}{"name": "Cloudflare", "category": "cdn"},
			map[string]interface{}{"name": "Google Analytics", "category": "analytics"},
			map[string]interface{}{"name": "PayPal", "category": "payments"},
			map[string]interface{}{"name": "Klaviyo", "category": "email_marketing"},
			map[string]interface{}{"name": "MySQL", "category": "database"},
		},
		"capabilities": map[string]interface{}{
			"has_ssl":             true,
			"has_mobile_version":  true,
			"has_structured_data": true,
		},
		"performance": map[string]interface{}{
			"page_load_ms": 1240,
			"uptime_pct":   99.95,
		},
		"security": map[string]interface{}{
			"ssl_grade":        "A+",
			"security_headers": 5,
		},
		"spend_estimate": map[string]interface{}{
			"monthly_usd": 4500,
			"tier":        "mid_market",
		},
	}, nil
}
