package intent

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func giftSeasonSources() DataSources {
	return DataSources{
		Orders: []Order{
			{CreatedAt: time.Date(2025, 12, 20, 10, 0, 0, 0, time.UTC), GiftWrap: true},
			{CreatedAt: time.Date(2025, 9, 15, 10, 0, 0, 0, time.UTC), Items: []OrderItem{
				{Category: "running_shoes"},
				{Category: "running_socks"},
			}},
		},
		Returns: []Return{
			{Reason: "size_issue"},
		},
		Events: []Event{
			{Type: "view_size_guide"},
			{Type: "view_3d"},
			{Type: "read_guide", GuideType: "running_tips"},
		},
		Texts: []Text{
			{Text: "Great running shoe for my daily training", VerifiedPurchase: true, Source: "review"},
			{Text: "Bought as a gift for my husband", VerifiedPurchase: true, Source: "review"},
		},
		Acquisitions: []Acquisition{
			{UTMCampaign: "sport_sale", UTMSource: "google", UTMTerm: "running shoes"},
			{UTMCampaign: "holiday_gifts", UTMSource: "email", LandingPage: "/gifts"},
		},
	}
}

func TestComputeSignals_GiftSeasonScenario(t *testing.T) {
	e := NewExtractor()
	signals := e.ComputeSignals("sku_123", giftSeasonSources(), 365)

	require.Len(t, signals, len(Taxonomy))

	sum := 0.0
	for _, s := range signals {
		sum += s.Share
		assert.GreaterOrEqual(t, s.Share, 0.0)
	}
	assert.InDelta(t, 1.0, sum, 1e-6)

	// Sorted descending by share.
	for i := 1; i < len(signals); i++ {
		assert.GreaterOrEqual(t, signals[i-1].Share, signals[i].Share)
	}

	assert.Equal(t, IntentSport, signals[0].Intent)
	assert.Equal(t, IntentGift, signals[1].Intent)
	assert.InDelta(t, 0.1644, signals[0].Share, 0.001)
	assert.InDelta(t, 0.1368, signals[1].Share, 0.001)

	assert.InDelta(t, 0.242, signals[0].Confidence, 0.005)

	assert.Contains(t, signals[1].Evidence, "orders:0.65")
	assert.Contains(t, signals[1].Evidence, "text:0.50")
}

func TestComputeSignals_OrdersOnlyGiftAndRunningBundle(t *testing.T) {
	e := NewExtractor()
	signals := e.ComputeSignals("sku_123", DataSources{
		Orders: []Order{
			{CreatedAt: time.Date(2025, 12, 20, 10, 0, 0, 0, time.UTC), GiftWrap: true},
			{CreatedAt: time.Date(2025, 9, 15, 10, 0, 0, 0, time.UTC), Items: []OrderItem{
				{Category: "running_shoes"},
				{Category: "running_socks"},
			}},
		},
	}, 0)

	require.Len(t, signals, len(Taxonomy))

	// Gift wrap in season (0.65) beats the running bundle (0.4), which
	// beats its sport spillover (0.25).
	assert.Equal(t, IntentGift, signals[0].Intent)
	assert.Equal(t, IntentRunning, signals[1].Intent)
	assert.Equal(t, IntentSport, signals[2].Intent)

	assert.InDelta(t, 0.4351, signals[0].Share, 0.001)
	assert.InDelta(t, 0.2727, signals[1].Share, 0.001)
	assert.InDelta(t, 0.1753, signals[2].Share, 0.001)
}

func TestComputeSignals_UnknownClassifierLabelDropped(t *testing.T) {
	var src DataSources
	raw := `{"texts":[{"text":"","source":"review","intent_probs":{"spaceship":0.9,"gift":0.1}}]}`
	require.NoError(t, json.Unmarshal([]byte(raw), &src))

	e := NewExtractor()
	signals := e.ComputeSignals("sku_123", src, 0)

	require.Len(t, signals, len(Taxonomy))

	sum := 0.0
	for _, s := range signals {
		assert.True(t, InTaxonomy(s.Intent), "unexpected intent %q", s.Intent)
		sum += s.Share
	}
	assert.InDelta(t, 1.0, sum, 1e-6)
	assert.Equal(t, IntentGift, signals[0].Intent)
}

func TestComputeSignals_EmptyInputIsUniform(t *testing.T) {
	e := NewExtractor()
	signals := e.ComputeSignals("sku_empty", DataSources{}, 30)

	require.Len(t, signals, len(Taxonomy))
	for _, s := range signals {
		assert.InDelta(t, 1.0/float64(len(Taxonomy)), s.Share, 1e-9)
		assert.Equal(t, 0.0, s.Confidence)
		assert.Empty(t, s.Evidence)
	}
}

func TestComputeSignals_RecencyDecayShrinksSignal(t *testing.T) {
	e := NewExtractor()
	src := giftSeasonSources()

	recent := e.ComputeSignals("sku_123", src, 0)
	stale := e.ComputeSignals("sku_123", src, 365)

	// Decay pulls the distribution toward uniform but never reorders a
	// single run's shares below zero.
	topRecent := recent[0]
	var topStale Signal
	for _, s := range stale {
		if s.Intent == topRecent.Intent {
			topStale = s
		}
	}
	assert.Greater(t, topRecent.Share, topStale.Share)
}

func TestExtractFromOrders_GiftFlagsAndSeason(t *testing.T) {
	e := NewExtractor()

	scores := e.ExtractFromOrders([]Order{
		{CreatedAt: time.Date(2025, 12, 20, 0, 0, 0, 0, time.UTC), GiftWrap: true},
		{CreatedAt: time.Date(2025, 9, 15, 0, 0, 0, 0, time.UTC)},
	})

	assert.InDelta(t, 0.65, scores[IntentGift], 1e-9)
}

func TestExtractFromOrders_Empty(t *testing.T) {
	e := NewExtractor()
	assert.Empty(t, e.ExtractFromOrders(nil))
}

func TestIsHolidaySeason_Windows(t *testing.T) {
	cases := []struct {
		date time.Time
		want bool
	}{
		{time.Date(2025, 11, 15, 0, 0, 0, 0, time.UTC), true},
		{time.Date(2025, 11, 14, 0, 0, 0, 0, time.UTC), false},
		{time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC), true},
		{time.Date(2025, 2, 14, 0, 0, 0, 0, time.UTC), true},
		{time.Date(2025, 2, 15, 0, 0, 0, 0, time.UTC), false},
		{time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC), true},
		{time.Date(2025, 6, 20, 0, 0, 0, 0, time.UTC), true},
		{time.Date(2025, 6, 21, 0, 0, 0, 0, time.UTC), false},
		{time.Date(2025, 7, 4, 0, 0, 0, 0, time.UTC), false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, isHolidaySeason(tc.date), tc.date.Format("Jan 2"))
	}
}

func TestExtractFromBehavior_SqrtNormalization(t *testing.T) {
	e := NewExtractor()

	scores := e.ExtractFromBehavior([]Event{
		{Type: "view_size_guide"},
		{Type: "view_3d"},
		{Type: "read_guide", GuideType: "Running Tips"},
	})

	norm := math.Sqrt(3)
	assert.InDelta(t, 0.5/norm, scores[IntentFashion], 1e-9)
	assert.InDelta(t, 0.5/norm, scores[IntentRunning], 1e-9)
	assert.InDelta(t, 0.1/norm, scores[IntentLuxury], 1e-9)
}

func TestExtractFromText_SourceWeights(t *testing.T) {
	e := NewExtractor()

	// Verified review weighs 1.5, support ticket 0.8.
	scores := e.ExtractFromText([]Text{
		{Text: "perfect gift", VerifiedPurchase: true, Source: "review"},
		{Text: "no intent words here", Source: "support_ticket"},
	})

	assert.InDelta(t, 1.5/(1.5+0.8), scores[IntentGift], 1e-9)
}

func TestExtractFromText_IntentProbs(t *testing.T) {
	e := NewExtractor()

	scores := e.ExtractFromText([]Text{
		{Text: "", Source: "review", IntentProbs: map[Intent]float64{IntentOutdoor: 0.9}},
	})

	assert.InDelta(t, 0.9, scores[IntentOutdoor], 1e-9)
}

func TestExtractFromText_UnknownIntentProbsIgnored(t *testing.T) {
	e := NewExtractor()

	scores := e.ExtractFromText([]Text{
		{Text: "", Source: "review", IntentProbs: map[Intent]float64{
			"spaceship":   0.9,
			IntentOutdoor: 0.3,
		}},
	})

	require.NotContains(t, scores, Intent("spaceship"))
	assert.InDelta(t, 0.3, scores[IntentOutdoor], 1e-9)
}

func TestExtractFromChannel_TermsAndCampaigns(t *testing.T) {
	e := NewExtractor()

	scores := e.ExtractFromChannel([]Acquisition{
		{UTMCampaign: "holiday_gifts"},
		{UTMTerm: "daily commute shoes"},
	})

	assert.InDelta(t, 0.5, scores[IntentGift], 1e-9)
	assert.InDelta(t, 0.25, scores[IntentDailyCommute], 1e-9)
}

func TestExtractFromReturns_ReasonMapping(t *testing.T) {
	e := NewExtractor()

	scores := e.ExtractFromReturns([]Return{
		{Reason: "size_issue"},
		{Reason: "quality_expectation"},
		{Reason: "changed_mind"},
		{Reason: "unknown"},
	})

	assert.InDelta(t, 0.25, scores[IntentFashion], 1e-9)
	assert.InDelta(t, 0.1, scores[IntentSport], 1e-9)
	assert.InDelta(t, 0.2, scores[IntentProfessionalUse], 1e-9)
}
