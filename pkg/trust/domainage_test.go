package trust

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAgeSource struct {
	name string
	seen time.Time
	err  error
}

func (s stubAgeSource) Name() string { return s.name }

func (s stubAgeSource) FirstSeen(ctx context.Context, domain string) (time.Time, error) {
	return s.seen, s.err
}

func TestCalculateDomainAge_MinimumAcrossSources(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	v := NewVerifier(
		WithClock(func() time.Time { return now }),
		WithAgeSources(
			stubAgeSource{name: "whois", seen: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)},
			stubAgeSource{name: "certificate_transparency", seen: time.Date(2019, 3, 15, 0, 0, 0, 0, time.UTC)},
			stubAgeSource{name: "dns_history", err: errors.New("no endpoint")},
			stubAgeSource{name: "internet_archive", seen: time.Date(2019, 6, 1, 0, 0, 0, 0, time.UTC)},
		),
	)

	res := v.CalculateDomainAge(context.Background(), "example.com")

	assert.Equal(t, "example.com", res.Domain)
	assert.Equal(t, time.Date(2019, 3, 15, 0, 0, 0, 0, time.UTC), res.EarliestDate)
	assert.InDelta(t, 2118, float64(res.AgeDays), 1)
	assert.Equal(t, 0.6, res.AgeScore)
	assert.Equal(t, 1.0, res.Confidence)
	assert.Equal(t, []string{"whois", "certificate_transparency", "internet_archive"}, res.Sources)
}

func TestCalculateDomainAge_SingleSourceHalvesConfidence(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	v := NewVerifier(
		WithClock(func() time.Time { return now }),
		WithAgeSources(
			stubAgeSource{name: "whois", seen: time.Date(2024, 10, 1, 0, 0, 0, 0, time.UTC)},
			stubAgeSource{name: "internet_archive", err: errors.New("timeout")},
		),
	)

	res := v.CalculateDomainAge(context.Background(), "young.example")

	assert.Equal(t, 92, res.AgeDays)
	assert.Equal(t, 0.5, res.Confidence)
	assert.Less(t, res.AgeScore, 0.6)
	assert.Greater(t, res.AgeScore, 0.0)
}

func TestCalculateDomainAge_AllSourcesFail(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	v := NewVerifier(
		WithClock(func() time.Time { return now }),
		WithAgeSources(
			stubAgeSource{name: "whois", err: errors.New("refused")},
			stubAgeSource{name: "dns_history", err: errors.New("no endpoint")},
		),
	)

	res := v.CalculateDomainAge(context.Background(), "nowhere.example")

	assert.Equal(t, 0, res.AgeDays)
	assert.Equal(t, 0.0, res.AgeScore)
	assert.Equal(t, 0.0, res.Confidence)
	assert.Empty(t, res.Sources)
	assert.Equal(t, now, res.EarliestDate)
}

func TestAgeScore_Clamp(t *testing.T) {
	assert.Equal(t, 0.0, ageScore(0))
	assert.Less(t, ageScore(100), 0.6)
	assert.Equal(t, 0.6, ageScore(3650))
}

func TestDefaultAgeSources_OrderAndNames(t *testing.T) {
	sources := DefaultAgeSources("", "")
	require.Len(t, sources, 4)
	assert.Equal(t, "whois", sources[0].Name())
	assert.Equal(t, "certificate_transparency", sources[1].Name())
	assert.Equal(t, "dns_history", sources[2].Name())
	assert.Equal(t, "internet_archive", sources[3].Name())
}
