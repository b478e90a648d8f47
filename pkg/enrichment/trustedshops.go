package enrichment

import (
	"context"
	"fmt"

	"github.com/sthamann/AXP/pkg/config"
	"github.com/sthamann/AXP/pkg/evidence"
)

// TrustedShops serves certification status at the brand level and
// verified-purchase reviews at the product level.
type TrustedShops struct {
	adapter
}

// NewTrustedShops builds the Trusted Shops adapter. profile may be nil.
func NewTrustedShops(profile *config.ProviderProfile) *TrustedShops {
	return &TrustedShops{adapter: newAdapter(ProviderTrustedShops, 168, profile)}
}

func (p *TrustedShops) FetchBrand(ctx context.Context, shopID string) (*evidence.Evidence, error) {
	data, err := p.brandData(ctx, shopID)
	if err != nil {
		return nil, err
	}
	return p.envelope(
		evidence.EntityBrand,
		fmt.Sprintf("trusted_shops:cert:%s", shopID),
		fmt.Sprintf("https://www.trustedshops.com/shop/%s", shopID),
		data,
	), nil
}

func (p *TrustedShops) FetchProduct(ctx context.Context, productID string) (*evidence.Evidence, error) {
	data, err := p.productData(ctx, productID)
	if err != nil {
		return nil, err
	}
	return p.envelope(
		evidence.EntityProduct,
		fmt.Sprintf("trusted_shops:product:%s", productID),
		fmt.Sprintf("https://www.trustedshops.com/product/%s", productID),
		data,
	), nil
}

func (p *TrustedShops) brandData(ctx context.Context, shopID string) (map[string]interface{}, error) {
	if p.remote() {
		return p.fetchRemote(ctx, "brand", shopID)
	}
	return map[string]interface{}{
		"certification": map[string]interface{}{
			"status":             "valid",
			"cert_id":            "X123456789",
			"valid_until":        "2026-12-31",
			"verification_token": "a7f3b2c1d4e5f6a7b8c9d0e1f2a3b4c5",
			"badge_status":       "active",
		},
		"reviews": map[string]interface{}{
			"avg_rating":          4.8,
			"count":               5432,
			"response_rate":       0.95,
			"recommendation_rate": 0.92,
		},
		"guarantee": map[string]interface{}{
			"active":          true,
			"coverage_amount": 2500,
			"claims_count":    3,
		},
		"quality_criteria": map[string]interface{}{
			"delivery_score": 4.9,
			"service_score":  4.7,
			"product_score":  4.8,
		},
	}, nil
}

func (p *TrustedShops) productData(ctx context.Context, productID string) (map[string]interface{}, error) {
	if p.remote() {
		return p.fetchRemote(ctx, "product", productID)
	}
	return map[string]interface{}{
		"reviews": map[string]interface{}{
			"avg_rating":             4.7,
			"count":                  234,
			"verified_purchase_rate": 0.98,
		},
		"quality_aspects": map[string]interface{}{
			"as_described": 4.8,
			"durability":   4.5,
			"value":        4.9,
		},
	}, nil
}
