package enrichment

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sthamann/AXP/pkg/evidence"
)

func cacheFixture(rating float64) *evidence.Evidence {
	return &evidence.Evidence{
		Source:      "trustpilot",
		Entity:      evidence.EntityBrand,
		SourceID:    "trustpilot:domain:runfaster.example",
		RetrievedAt: time.Date(2025, 9, 15, 10, 0, 0, 0, time.UTC),
		EvidenceURL: "https://www.trustpilot.com/review/runfaster.example",
		Data:        map[string]interface{}{"avg_rating": rating, "count_total": 100.0},
		TTLHours:    24,
	}
}

func TestMemoryCache_MissThenHit(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	_, err := c.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrCacheMiss)

	require.NoError(t, c.Put(ctx, "key", cacheFixture(4.5)))

	got, err := c.Get(ctx, "key")
	require.NoError(t, err)
	assert.Equal(t, 4.5, got.Data["avg_rating"])
}

func TestMemoryCache_ReadsAreIsolated(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	require.NoError(t, c.Put(ctx, "key", cacheFixture(4.5)))

	first, err := c.Get(ctx, "key")
	require.NoError(t, err)
	first.Data["avg_rating"] = 1.0

	second, err := c.Get(ctx, "key")
	require.NoError(t, err)
	assert.Equal(t, 4.5, second.Data["avg_rating"])
}

func TestMemoryCache_HistoryNewestFirst(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	require.NoError(t, c.Put(ctx, "key", cacheFixture(4.1)))
	require.NoError(t, c.Put(ctx, "key", cacheFixture(4.2)))
	require.NoError(t, c.Put(ctx, "key", cacheFixture(4.3)))

	hist, err := c.History(ctx, "key")
	require.NoError(t, err)
	require.Len(t, hist, 3)
	assert.Equal(t, 4.3, hist[0]["avg_rating"])
	assert.Equal(t, 4.1, hist[2]["avg_rating"])
}

func TestMemoryCache_HistoryBounded(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	for i := 0; i < historyDepth+10; i++ {
		require.NoError(t, c.Put(ctx, "key", cacheFixture(float64(i))))
	}

	hist, err := c.History(ctx, "key")
	require.NoError(t, err)
	assert.Len(t, hist, historyDepth)
	assert.Equal(t, float64(historyDepth+9), hist[0]["avg_rating"],
		fmt.Sprintf("newest entry should be put %d", historyDepth+9))
}
