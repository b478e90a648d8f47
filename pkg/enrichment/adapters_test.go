package enrichment

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sthamann/AXP/pkg/config"
	"github.com/sthamann/AXP/pkg/evidence"
)

func TestTrustpilot_BrandBaseline(t *testing.T) {
	p := NewTrustpilot(nil)

	ev, err := p.FetchBrand(context.Background(), "runfaster.example")
	require.NoError(t, err)

	assert.Equal(t, ProviderTrustpilot, ev.Source)
	assert.Equal(t, evidence.EntityBrand, ev.Entity)
	assert.Equal(t, "trustpilot:domain:runfaster.example", ev.SourceID)
	assert.Equal(t, "https://www.trustpilot.com/review/runfaster.example", ev.EvidenceURL)
	assert.Equal(t, 24, ev.TTLHours)
	assert.Equal(t, 4.6, ev.Data["avg_rating"])
	assert.Equal(t, 12873, ev.Data["count_total"])
}

func TestTrustpilot_ProductUnsupported(t *testing.T) {
	p := NewTrustpilot(nil)

	_, err := p.FetchProduct(context.Background(), "sku_123")
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestBuiltWith_ProductUnsupported(t *testing.T) {
	p := NewBuiltWith(nil)

	_, err := p.FetchProduct(context.Background(), "sku_123")
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestBuiltWith_BrandBaselineTTL(t *testing.T) {
	p := NewBuiltWith(nil)

	ev, err := p.FetchBrand(context.Background(), "runfaster.example")
	require.NoError(t, err)

	assert.Equal(t, "builtwith:domain:runfaster.example", ev.SourceID)
	assert.Equal(t, 720, ev.TTLHours)

	detected, ok := ev.Data["detected"].([]interface{})
	require.True(t, ok)
	assert.Len(t, detected, 6)
}

func TestTrustedShops_BothScopes(t *testing.T) {
	p := NewTrustedShops(nil)

	brand, err := p.FetchBrand(context.Background(), "runfaster-shop")
	require.NoError(t, err)
	assert.Equal(t, "trusted_shops:cert:runfaster-shop", brand.SourceID)
	assert.Equal(t, 168, brand.TTLHours)

	cert, ok := brand.Data["certification"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "valid", cert["status"])

	product, err := p.FetchProduct(context.Background(), "sku_123")
	require.NoError(t, err)
	assert.Equal(t, "trusted_shops:product:sku_123", product.SourceID)
	assert.Equal(t, evidence.EntityProduct, product.Entity)
}

func TestGoogleSeller_BothScopes(t *testing.T) {
	p := NewGoogleSeller(nil)

	brand, err := p.FetchBrand(context.Background(), "merchant-42")
	require.NoError(t, err)
	assert.Equal(t, "google:merchant:merchant-42", brand.SourceID)
	assert.Equal(t, 24, brand.TTLHours)

	product, err := p.FetchProduct(context.Background(), "sku_123")
	require.NoError(t, err)
	assert.Equal(t, "google:product:sku_123", product.SourceID)
	assert.Equal(t, 4.5, product.Data["avg_rating"])
}

func TestAdapter_RemoteEndpoint(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"avg_rating": 4.1, "count_total": 99}`))
	}))
	defer srv.Close()

	p := NewTrustpilot(&config.ProviderProfile{
		Name:     ProviderTrustpilot,
		Endpoint: srv.URL,
	})

	ev, err := p.FetchBrand(context.Background(), "runfaster.example")
	require.NoError(t, err)

	assert.Equal(t, "/brand/runfaster.example", gotPath)
	assert.Equal(t, 4.1, ev.Data["avg_rating"])
	assert.Equal(t, float64(99), ev.Data["count_total"])
}

func TestAdapter_ProfileTTLOverride(t *testing.T) {
	p := NewTrustpilot(&config.ProviderProfile{Name: ProviderTrustpilot, TTLHours: 6})

	ev, err := p.FetchBrand(context.Background(), "runfaster.example")
	require.NoError(t, err)
	assert.Equal(t, 6, ev.TTLHours)
}
