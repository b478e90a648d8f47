package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Disabled(t *testing.T) {
	p, err := New(context.Background(), &Config{Enabled: false})
	require.NoError(t, err)
	require.NotNil(t, p)

	// Recording against a disabled provider must be a no-op, not a panic.
	ctx := context.Background()
	p.RecordFetch(ctx, "trustpilot")
	p.RecordError(ctx, errors.New("boom"))
	p.RecordFetchDuration(ctx, "trustpilot", 10*time.Millisecond)
	p.RecordCacheHit(ctx, "trustpilot", true)
	p.RecordCacheHit(ctx, "trustpilot", false)
	p.RecordVerification(ctx, "api", 0)
	p.RecordAnomaly(ctx, "trustpilot")

	assert.NoError(t, p.Shutdown(ctx))
}

func TestNilProviderIsSafe(t *testing.T) {
	var p *Provider

	ctx := context.Background()
	p.RecordFetch(ctx, "trustpilot")
	p.RecordError(ctx, errors.New("boom"))
	p.RecordFetchDuration(ctx, "trustpilot", time.Millisecond)
	p.RecordCacheHit(ctx, "trustpilot", false)
	p.RecordVerification(ctx, "snapshot", 2)
	p.RecordAnomaly(ctx, "trustpilot")

	assert.NoError(t, p.Shutdown(ctx))
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "axp-signals", cfg.ServiceName)
	assert.Equal(t, "localhost:4317", cfg.OTLPEndpoint)
	assert.True(t, cfg.Enabled)
}
