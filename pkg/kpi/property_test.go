//go:build property
// +build property

// Property-based tests for score range and determinism.
package kpi_test

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/sthamann/AXP/pkg/kpi"
)

func inRange(scores ...float64) bool {
	for _, s := range scores {
		if s < 0 || s > 1 {
			return false
		}
	}
	return true
}

// Every score stays in [0,1] no matter how hostile the input record is.
func TestCalculateAll_ScoresBounded(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("all scores in [0,1]", prop.ForAll(
		func(rating, rma, energy, recycled float64, ratingCount int, sizeChart bool, category string) bool {
			data := kpi.ProductData{
				"avg_rating":           rating,
				"rma_rate_per_1000":    rma,
				"energy_return_pct":    energy,
				"recycled_pct":         recycled,
				"rating_count":         ratingCount,
				"size_chart_available": sizeChart,
			}

			s := kpi.NewCalculator().CalculateAll(data, category)
			return inRange(
				s.FitHintScore, s.ReliabilityScore, s.PerformanceScore,
				s.OwnerSatisfactionScore, s.UniquenessScore, s.CraftsmanshipScore,
				s.SustainabilityScore, s.InnovationScore,
			)
		},
		gen.Float64Range(-10, 10),
		gen.Float64Range(-100, 1000),
		gen.Float64Range(-50, 500),
		gen.Float64Range(-1, 200),
		gen.IntRange(0, 100000),
		gen.Bool(),
		gen.OneConstOf("footwear", "electronics", "fashion", ""),
	))

	properties.TestingRun(t)
}

// The same record always scores identically.
func TestCalculateAll_Deterministic(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("scoring is deterministic", prop.ForAll(
		func(rating float64, ratingCount int, sizeChart bool) bool {
			data := kpi.ProductData{
				"avg_rating":           rating,
				"rating_count":         ratingCount,
				"size_chart_available": sizeChart,
			}

			c := kpi.NewCalculator()
			a := c.CalculateAll(data, "footwear")
			b := c.CalculateAll(data, "footwear")

			return a.FitHintScore == b.FitHintScore &&
				a.ReliabilityScore == b.ReliabilityScore &&
				a.PerformanceScore == b.PerformanceScore &&
				a.OwnerSatisfactionScore == b.OwnerSatisfactionScore
		},
		gen.Float64Range(1, 5),
		gen.IntRange(0, 10000),
		gen.Bool(),
	))

	properties.TestingRun(t)
}
