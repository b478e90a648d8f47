package intent

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// Signal is one intent with its mixed share of the distribution.
type Signal struct {
	Intent      Intent    `json:"intent"`
	Share       float64   `json:"share"`
	Confidence  float64   `json:"confidence"`
	Method      string    `json:"method"`
	Evidence    []string  `json:"evidence"`
	LastUpdated time.Time `json:"last_updated"`
}

// Extractor mixes per-source intent scores into a smoothed distribution.
type Extractor struct {
	textWeight     float64
	behaviorWeight float64
	cartWeight     float64
	channelWeight  float64
	halfLifeDays   float64
	alpha          float64

	now func() time.Time
}

// Option customizes an Extractor.
type Option func(*Extractor)

// WithWeights overrides the source mixing weights.
func WithWeights(text, behavior, cart, channel float64) Option {
	return func(e *Extractor) {
		e.textWeight = text
		e.behaviorWeight = behavior
		e.cartWeight = cart
		e.channelWeight = channel
	}
}

// WithHalfLife overrides the recency half-life in days.
func WithHalfLife(days float64) Option {
	return func(e *Extractor) { e.halfLifeDays = days }
}

// WithClock overrides the clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(e *Extractor) { e.now = now }
}

// NewExtractor returns an extractor with the default mixing weights
// (text .40, behavior .25, cart .25, channel .10), a 90-day half-life,
// and Dirichlet alpha 0.5.
func NewExtractor(opts ...Option) *Extractor {
	e := &Extractor{
		textWeight:     0.40,
		behaviorWeight: 0.25,
		cartWeight:     0.25,
		channelWeight:  0.10,
		halfLifeDays:   90,
		alpha:          0.5,
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ComputeSignals extracts from every source, mixes with time decay and
// Dirichlet smoothing, and returns one Signal per taxonomy intent sorted
// by share descending. Shares sum to 1. Empty inputs yield the uniform
// distribution with confidence 0.
func (e *Extractor) ComputeSignals(productID string, src DataSources, sinceDays int) []Signal {
	orderIntents := e.ExtractFromOrders(src.Orders)
	returnIntents := e.ExtractFromReturns(src.Returns)
	behaviorIntents := e.ExtractFromBehavior(src.Events)
	textIntents := e.ExtractFromText(src.Texts)
	channelIntents := e.ExtractFromChannel(src.Acquisitions)

	seen := map[Intent]bool{}
	for _, m := range []map[Intent]float64{orderIntents, returnIntents, behaviorIntents, textIntents, channelIntents} {
		for intent := range m {
			seen[intent] = true
		}
	}

	decay := e.timeWeight(sinceDays)
	mixed := map[Intent]float64{}
	for intent := range seen {
		score := e.cartWeight * orderIntents[intent]
		// Returns contribute at half cart weight.
		score += e.cartWeight * returnIntents[intent] * 0.5
		score += e.behaviorWeight * behaviorIntents[intent]
		score += e.textWeight * textIntents[intent]
		score += e.channelWeight * channelIntents[intent]
		mixed[intent] = score * decay
	}

	smoothed := e.dirichletSmooth(mixed)

	confidence := e.computeConfidence(src)
	method := fmt.Sprintf("mixed_weights:text=%.2f,behavior=%.2f,cart=%.2f,channel=%.2f",
		e.textWeight, e.behaviorWeight, e.cartWeight, e.channelWeight)
	now := e.now()

	signals := make([]Signal, 0, len(smoothed))
	for intent, share := range smoothed {
		var ev []string
		if v, ok := orderIntents[intent]; ok {
			ev = append(ev, fmt.Sprintf("orders:%.2f", v))
		}
		if v, ok := textIntents[intent]; ok {
			ev = append(ev, fmt.Sprintf("text:%.2f", v))
		}
		if v, ok := behaviorIntents[intent]; ok {
			ev = append(ev, fmt.Sprintf("behavior:%.2f", v))
		}
		if v, ok := channelIntents[intent]; ok {
			ev = append(ev, fmt.Sprintf("channel:%.2f", v))
		}
		if v, ok := returnIntents[intent]; ok {
			ev = append(ev, fmt.Sprintf("returns:%.2f", v))
		}

		signals = append(signals, Signal{
			Intent:      intent,
			Share:       share,
			Confidence:  confidence,
			Method:      method,
			Evidence:    ev,
			LastUpdated: now,
		})
	}

	sort.Slice(signals, func(i, j int) bool {
		if signals[i].Share != signals[j].Share {
			return signals[i].Share > signals[j].Share
		}
		return signals[i].Intent < signals[j].Intent
	})
	return signals
}

func (e *Extractor) timeWeight(daysAgo int) float64 {
	return math.Exp(-float64(daysAgo) / e.halfLifeDays)
}

// dirichletSmooth converts raw mixed scores into a distribution over the
// full taxonomy. Scores scale to pseudo-counts (x100) before smoothing so
// small samples do not collapse onto a single intent.
func (e *Extractor) dirichletSmooth(scores map[Intent]float64) map[Intent]float64 {
	total := 0.0
	for _, v := range scores {
		total += v
	}

	k := float64(len(Taxonomy))
	denom := total*100 + k*e.alpha

	smoothed := map[Intent]float64{}
	for intent, v := range scores {
		smoothed[intent] = (v*100 + e.alpha) / denom
	}
	for _, intent := range Taxonomy {
		if _, ok := smoothed[intent]; !ok {
			smoothed[intent] = e.alpha / denom
		}
	}

	sum := 0.0
	for _, v := range smoothed {
		sum += v
	}
	for intent := range smoothed {
		smoothed[intent] /= sum
	}
	return smoothed
}

// computeConfidence scores data availability with diminishing returns per
// source. Source weights: orders .3, texts .3, events .2, returns .1,
// acquisitions .1.
func (e *Extractor) computeConfidence(src DataSources) float64 {
	confidence := 0.0
	add := func(n int, weight float64) {
		if n > 0 {
			confidence += weight * math.Min(1.0, math.Log(float64(n)+1)/math.Log(100))
		}
	}
	add(len(src.Orders), 0.3)
	add(len(src.Events), 0.2)
	add(len(src.Texts), 0.3)
	add(len(src.Returns), 0.1)
	add(len(src.Acquisitions), 0.1)

	return math.Min(1.0, confidence)
}
