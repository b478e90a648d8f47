// Package kpi computes the eight soft signals for a product from
// measurable sub-factors. Every score is the sigmoid (or a min-clamp) of a
// bounded weighted sum, so calculators are total: any input map, however
// sparse, produces a deterministic score in [0,1].
package kpi

import (
	"math"
	"time"
)

// Evidence records one principal factor that fed a score.
type Evidence struct {
	Factor     string    `json:"factor"`
	Value      float64   `json:"value"`
	Source     string    `json:"source"`
	Confidence float64   `json:"confidence"`
	Timestamp  time.Time `json:"timestamp"`
}

// SoftSignals is the complete per-product signal vector with its evidence.
type SoftSignals struct {
	FitHintScore           float64    `json:"fit_hint_score"`
	ReliabilityScore       float64    `json:"reliability_score"`
	PerformanceScore       float64    `json:"performance_score"`
	OwnerSatisfactionScore float64    `json:"owner_satisfaction_score"`
	UniquenessScore        float64    `json:"uniqueness_score"`
	CraftsmanshipScore     float64    `json:"craftsmanship_score"`
	SustainabilityScore    float64    `json:"sustainability_score"`
	InnovationScore        float64    `json:"innovation_score"`
	Evidence               []Evidence `json:"evidence"`
	CalculationMethod      string     `json:"calculation_method"`
	LastUpdated            time.Time  `json:"last_updated"`
}

// ProductData is the per-product input record. Fields missing from the map
// default per factor (rates to 0, category baselines to their documented
// defaults), so callers can pass whatever subset their store has.
type ProductData map[string]interface{}

// Float reads a numeric field, accepting int or float64, with a default.
func (d ProductData) Float(key string, def float64) float64 {
	switch v := d[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	default:
		return def
	}
}

// Bool reads a boolean field with a default.
func (d ProductData) Bool(key string, def bool) bool {
	if v, ok := d[key].(bool); ok {
		return v
	}
	return def
}

// String reads a string field with a default.
func (d ProductData) String(key, def string) string {
	if v, ok := d[key].(string); ok {
		return v
	}
	return def
}

// Strings reads a string-list field; missing yields nil.
func (d ProductData) Strings(key string) []string {
	switch v := d[key].(type) {
	case []string:
		return v
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, e := range v {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

// Calculator computes soft signals. The zero value is not usable; build
// with NewCalculator.
type Calculator struct {
	now func() time.Time
}

// Option customizes a Calculator.
type Option func(*Calculator)

// WithClock overrides the clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Calculator) { c.now = now }
}

// NewCalculator returns a ready calculator.
func NewCalculator(opts ...Option) *Calculator {
	c := &Calculator{now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CalculateAll computes every soft signal for a product, rounding scores
// to three decimals and concatenating the per-factor evidence.
func (c *Calculator) CalculateAll(data ProductData, category string) SoftSignals {
	var all []Evidence

	fit, ev := c.FitHint(data)
	all = append(all, ev...)

	reliability, ev := c.Reliability(data)
	all = append(all, ev...)

	performance, ev := c.Performance(data, category)
	all = append(all, ev...)

	satisfaction, ev := c.OwnerSatisfaction(data)
	all = append(all, ev...)

	uniqueness, ev := c.Uniqueness(data)
	all = append(all, ev...)

	craftsmanship, ev := c.Craftsmanship(data)
	all = append(all, ev...)

	sustainability, ev := c.Sustainability(data)
	all = append(all, ev...)

	innovation, ev := c.Innovation(data)
	all = append(all, ev...)

	return SoftSignals{
		FitHintScore:           round3(fit),
		ReliabilityScore:       round3(reliability),
		PerformanceScore:       round3(performance),
		OwnerSatisfactionScore: round3(satisfaction),
		UniquenessScore:        round3(uniqueness),
		CraftsmanshipScore:     round3(craftsmanship),
		SustainabilityScore:    round3(sustainability),
		InnovationScore:        round3(innovation),
		Evidence:               all,
		CalculationMethod:      "weighted_factors_sigmoid_normalized",
		LastUpdated:            c.now(),
	}
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

func round3(x float64) float64 {
	return math.Round(x*1000) / 1000
}
