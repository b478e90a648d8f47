package enrichment

import "encoding/json"

// Anomaly thresholds for freshly fetched payloads compared against the
// most recent cached payload for the same source id.
const (
	// RatingJumpThreshold flags an absolute average-rating move that no
	// organic review stream produces between two fetches.
	RatingJumpThreshold = 1.5

	// CountGrowthFactor flags a review-count multiple that points at
	// bought or scripted reviews.
	CountGrowthFactor = 10.0
)

// detectAnomaly compares a new payload against the last cached payload.
// Only top-level avg_rating and count_total are inspected; providers
// that nest their review block are covered by the trust verifier
// instead.
func detectAnomaly(data, last map[string]interface{}) bool {
	if last == nil {
		return false
	}

	if cur, ok := numField(data, "avg_rating"); ok {
		if prev, ok := numField(last, "avg_rating"); ok {
			delta := cur - prev
			if delta < 0 {
				delta = -delta
			}
			if delta > RatingJumpThreshold {
				return true
			}
		}
	}

	if cur, ok := numField(data, "count_total"); ok {
		if prev, ok := numField(last, "count_total"); ok && prev > 0 {
			if cur/prev > CountGrowthFactor {
				return true
			}
		}
	}

	return false
}

func numField(m map[string]interface{}, key string) (float64, bool) {
	switch t := m[key].(type) {
	case float64:
		return t, true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}
