package enrichment

import (
	"context"
	"fmt"

	"github.com/sthamann/AXP/pkg/config"
	"github.com/sthamann/AXP/pkg/evidence"
)

// GoogleSeller serves merchant ratings at the brand level and product
// ratings with price history at the product level.
type GoogleSeller struct {
	adapter
}

// NewGoogleSeller builds the Google seller ratings adapter. profile may
// be nil.
func NewGoogleSeller(profile *config.ProviderProfile) *GoogleSeller {
	return &GoogleSeller{adapter: newAdapter(ProviderGoogleSeller, 24, profile)}
}

func (p *GoogleSeller) FetchBrand(ctx context.Context, merchantID string) (*evidence.Evidence, error) {
	data, err := p.brandData(ctx, merchantID)
	if err != nil {
		return nil, err
	}
	return p.envelope(
		evidence.EntityBrand,
		fmt.Sprintf("google:merchant:%s", merchantID),
		fmt.Sprintf("https://www.google.com/maps/search/%s", merchantID),
		data,
	), nil
}

func (p *GoogleSeller) FetchProduct(ctx context.Context, productID string) (*evidence.Evidence, error) {
	data, err := p.productData(ctx, productID)
	if err != nil {
		return nil, err
	}
	return p.envelope(
		evidence.EntityProduct,
		fmt.Sprintf("google:product:%s", productID),
		fmt.Sprintf("https://shopping.google.com/product/%s", productID),
		data,
	), nil
}

func (p *GoogleSeller) brandData(ctx context.Context, merchantID string) (map[string]interface{}, error) {
	if p.remote() {
		return p.fetchRemote(ctx, "brand", merchantID)
	}
	return map[string]interface{}{
		"aggregated_rating": 4.7,
		"review_count":      8932,
		"sources":           []interface{}{"google_customer_reviews", "trustpilot", "bizrate"},
		"aspects": map[string]interface{}{
			"shipping_speed":   4.8,
			"product_quality":  4.6,
			"customer_service": 4.5,
		},
		"badges": []interface{}{"top_quality_store", "fast_shipping"},
	}, nil
}

func (p *GoogleSeller) productData(ctx context.Context, productID string) (map[string]interface{}, error) {
	if p.remote() {
		return p.fetchRemote(ctx, "product", productID)
	}
	return map[string]interface{}{
		"avg_rating":   4.5,
		"review_count": 342,
		"price_history": map[string]interface{}{
			"current": 129.99,
			"avg_90d": 135.99,
			"min_90d": 119.99,
		},
		"merchant_count": 12,
		"in_stock_rate":  0.92,
	}, nil
}
