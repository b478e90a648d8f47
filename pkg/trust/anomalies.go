package trust

import (
	"fmt"
	"math"
	"sort"
	"strconv"
)

// Detector thresholds. Fixed for now; a per-category layer can wrap them.
const (
	// RatingDeltaThreshold flags a reported average rating that moved more
	// than this from the expected value.
	RatingDeltaThreshold = 0.3

	// CountGrowthFactor flags a review count more than this multiple of
	// the expected count.
	CountGrowthFactor = 1.5

	// MinVerifiedRatio flags sources where too few reviews come from
	// verified purchases.
	MinVerifiedRatio = 0.3

	// SpikeZScore flags daily counts this many standard deviations above
	// the series mean.
	SpikeZScore = 3.0

	// ClusterFactor and ClusterShare flag series where days above
	// ClusterFactor x mean make up more than ClusterShare of the series.
	ClusterFactor = 3.0
	ClusterShare  = 0.1

	// UniformityStdev flags rating distributions flatter than a real
	// population produces.
	UniformityStdev = 0.05

	// FiveStarShare flags distributions dominated by 5-star ratings.
	FiveStarShare = 0.7
)

// DetectReviewAnomalies compares observed review statistics against the
// expected baseline.
func DetectReviewAnomalies(actual, expected Stats) []string {
	var anomalies []string

	if a, aok := statFloat(actual, "avg_rating"); aok {
		if e, eok := statFloat(expected, "avg_rating"); eok {
			if diff := math.Abs(a - e); diff > RatingDeltaThreshold {
				anomalies = append(anomalies, fmt.Sprintf("Rating discrepancy: %.1f", diff))
			}
		}
	}

	if a, aok := statFloat(actual, "total_reviews"); aok {
		if e, eok := statFloat(expected, "total_reviews"); eok {
			if a > e*CountGrowthFactor {
				anomalies = append(anomalies,
					fmt.Sprintf("Suspicious review count increase: %d", int(a-e)))
			}
		}
	}

	if vr, ok := statFloat(actual, "verified_ratio"); ok && vr < MinVerifiedRatio {
		anomalies = append(anomalies,
			fmt.Sprintf("Low verified review ratio: %.1f%%", vr*100))
	}

	return anomalies
}

// HistoryPoint is one day of review activity.
type HistoryPoint struct {
	Date  string  `json:"date"`
	Count float64 `json:"count"`
}

// DetectTimeAnomalies flags spikes and clustering in a daily review
// series. Series shorter than three days carry no signal.
func DetectTimeAnomalies(history []HistoryPoint) []string {
	var anomalies []string
	if len(history) < 3 {
		return anomalies
	}

	counts := make([]float64, len(history))
	for i, h := range history {
		counts[i] = h.Count
	}

	mean := meanOf(counts)
	std := stdevOf(counts)

	for i, count := range counts {
		if std > 0 && count > mean+SpikeZScore*std {
			anomalies = append(anomalies,
				fmt.Sprintf("Review spike on day %d: %d reviews (mean: %.1f)", i, int(count), mean))
		}
	}

	clusterDays := 0
	for _, count := range counts {
		if count > mean*ClusterFactor {
			clusterDays++
		}
	}
	if float64(clusterDays) > float64(len(counts))*ClusterShare {
		anomalies = append(anomalies,
			fmt.Sprintf("Review clustering detected: %d high-activity days", clusterDays))
	}

	return anomalies
}

// DetectDistributionAnomalies flags unnatural 5-bin rating distributions:
// too uniform, bimodal with a collapsed middle, or 5-star dominated.
// Keys are the rating bins "1".."5".
func DetectDistributionAnomalies(distribution map[string]float64) []string {
	var anomalies []string

	bins := make([]string, 0, len(distribution))
	for k := range distribution {
		bins = append(bins, k)
	}
	sort.Slice(bins, func(i, j int) bool {
		a, _ := strconv.Atoi(bins[i])
		b, _ := strconv.Atoi(bins[j])
		return a < b
	})

	counts := make([]float64, len(bins))
	total := 0.0
	for i, k := range bins {
		counts[i] = distribution[k]
		total += counts[i]
	}
	if total == 0 {
		return anomalies
	}

	proportions := make([]float64, len(counts))
	for i, c := range counts {
		proportions[i] = c / total
	}
	if stdevOf(proportions) < UniformityStdev {
		anomalies = append(anomalies, "Unnaturally uniform rating distribution")
	}

	if len(counts) >= 5 {
		if counts[2] < counts[0]*0.5 && counts[2] < counts[4]*0.5 {
			anomalies = append(anomalies, "Bimodal distribution suggests manipulation")
		}
		if counts[4] > total*FiveStarShare {
			anomalies = append(anomalies,
				fmt.Sprintf("Excessive 5-star ratings: %.1f%%", counts[4]/total*100))
		}
	}

	return anomalies
}

// calculateConfidence combines the anomaly count with data-quality boosts:
// verified ratio and sample size. Result is clamped to [0.1, 1.0] and is
// non-increasing in the anomaly count.
func calculateConfidence(anomalies []string, data Stats) float64 {
	confidence := 0.8 * math.Pow(0.9, float64(len(anomalies)))

	if vr, ok := statFloat(data, "verified_ratio"); ok {
		confidence *= 0.7 + 0.3*vr
	}
	if n, ok := statFloat(data, "total_reviews"); ok {
		sampleFactor := math.Min(1, math.Log(n+1)/math.Log(1000))
		confidence *= 0.8 + 0.2*sampleFactor
	}

	return math.Min(1.0, math.Max(0.1, confidence))
}

func statFloat(s Stats, key string) (float64, bool) {
	switch v := s[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}

func meanOf(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// stdevOf is the sample standard deviation.
func stdevOf(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	m := meanOf(xs)
	sum := 0.0
	for _, x := range xs {
		d := x - m
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(xs)-1))
}
