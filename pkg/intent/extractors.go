package intent

import (
	"math"
	"strings"
	"time"
)

// Order is one completed order containing the product.
type Order struct {
	CreatedAt   time.Time   `json:"created_at"`
	GiftWrap    bool        `json:"gift_wrap"`
	GiftMessage string      `json:"gift_message"`
	Items       []OrderItem `json:"items"`
}

// OrderItem is a line item in an order, used for bundle analysis.
type OrderItem struct {
	Category string `json:"category"`
}

// Return is one return of the product with a structured reason.
type Return struct {
	Reason    string    `json:"reason"`
	CreatedAt time.Time `json:"created_at"`
}

// Event is one onsite behavior event for the product.
type Event struct {
	Type      string    `json:"type"`
	GuideType string    `json:"guide_type,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Text is a review, Q&A entry, or support ticket mentioning the product.
// IntentProbs optionally carries zero-shot classifier output.
type Text struct {
	Text             string             `json:"text"`
	VerifiedPurchase bool               `json:"verified_purchase"`
	Source           string             `json:"source"` // "review", "q_and_a", "support_ticket"
	IntentProbs      map[Intent]float64 `json:"intent_probs,omitempty"`
}

// Acquisition is one attributed acquisition session.
type Acquisition struct {
	UTMCampaign string `json:"utm_campaign"`
	UTMSource   string `json:"utm_source"`
	UTMTerm     string `json:"utm_term"`
	LandingPage string `json:"landing_page"`
}

// DataSources bundles the per-source inputs for one product.
type DataSources struct {
	Orders       []Order       `json:"orders"`
	Returns      []Return      `json:"returns"`
	Events       []Event       `json:"events"`
	Texts        []Text        `json:"texts"`
	Acquisitions []Acquisition `json:"acquisitions"`
}

// ExtractFromOrders scores gift and bundle signals from order context,
// normalized by order count.
func (e *Extractor) ExtractFromOrders(orders []Order) map[Intent]float64 {
	scores := map[Intent]float64{}
	total := len(orders)
	if total == 0 {
		return scores
	}

	for _, order := range orders {
		if order.GiftWrap || order.GiftMessage != "" {
			scores[IntentGift] += 1
		}
		if isHolidaySeason(order.CreatedAt) {
			scores[IntentGift] += 0.3
		}
		for intent, score := range analyzeBundle(order.Items) {
			scores[intent] += score
		}
	}

	for intent := range scores {
		scores[intent] /= float64(total)
	}
	return scores
}

// ExtractFromReturns maps structured return reasons onto intents. Returns
// contribute at reduced weight in the mixer.
func (e *Extractor) ExtractFromReturns(returns []Return) map[Intent]float64 {
	adjustments := map[Intent]float64{}

	for _, r := range returns {
		switch r.Reason {
		case "size_issue":
			// Fit-sensitive purchase
			adjustments[IntentFashion] += 0.1
			adjustments[IntentSport] += 0.1
		case "quality_expectation":
			adjustments[IntentProfessionalUse] += 0.2
		case "changed_mind":
			adjustments[IntentFashion] += 0.15
		}
	}
	return adjustments
}

// ExtractFromBehavior scores tool-usage events, normalized by the square
// root of the total event count.
func (e *Extractor) ExtractFromBehavior(events []Event) map[Intent]float64 {
	scores := map[Intent]float64{}
	totalEvents := 0

	for _, ev := range events {
		totalEvents++

		switch ev.Type {
		case "view_size_guide":
			scores[IntentFashion] += 0.3
			scores[IntentSport] += 0.2
		case "view_3d":
			scores[IntentFashion] += 0.2
			scores[IntentLuxury] += 0.1
		case "use_configurator":
			scores[IntentProfessionalUse] += 0.3
			scores[IntentHobby] += 0.2
		case "compare_products":
			scores[IntentValue] += 0.2
		case "read_guide":
			guide := strings.ToLower(ev.GuideType)
			if strings.Contains(guide, "running") {
				scores[IntentRunning] += 0.5
			} else if strings.Contains(guide, "basketball") {
				scores[IntentBasketball] += 0.5
			}
		}
	}

	if totalEvents > 0 {
		norm := math.Sqrt(float64(totalEvents))
		for intent := range scores {
			scores[intent] /= norm
		}
	}
	return scores
}

// intentKeywords is a keyword-based stand-in for a text classifier.
var intentKeywords = map[Intent][]string{
	IntentGift:            {"gift", "present", "birthday", "christmas", "anniversary"},
	IntentSport:           {"running", "training", "workout", "gym", "athletic"},
	IntentProfessionalUse: {"work", "professional", "office", "business", "daily"},
	IntentTravel:          {"travel", "trip", "vacation", "flight", "luggage"},
	IntentFashion:         {"style", "look", "outfit", "trendy", "fashion"},
	IntentDailyCommute:    {"commute", "daily", "everyday", "walking", "comfortable"},
}

// ExtractFromText scores keyword matches in reviews, Q&A and support
// tickets, weighted by source and verification status. Zero-shot
// classifier probabilities are folded in when present.
func (e *Extractor) ExtractFromText(texts []Text) map[Intent]float64 {
	scores := map[Intent]float64{}

	for _, item := range texts {
		content := strings.ToLower(item.Text)
		weight := textWeight(item)

		for intent, keywords := range intentKeywords {
			matches := 0
			for _, kw := range keywords {
				if strings.Contains(content, kw) {
					matches++
				}
			}
			if matches > 0 {
				scores[intent] += float64(matches) * weight
			}
		}

		// Classifier output can carry labels outside the closed
		// taxonomy; those are dropped, never scored.
		for intent, prob := range item.IntentProbs {
			if !InTaxonomy(intent) {
				continue
			}
			scores[intent] += prob * weight
		}
	}

	totalWeight := 0.0
	for _, item := range texts {
		totalWeight += textWeight(item)
	}
	if totalWeight > 0 {
		for intent := range scores {
			scores[intent] /= totalWeight
		}
	}
	return scores
}

// ExtractFromChannel scores utm attribution, normalized by acquisition
// count. Campaign matches are worth a full point, search-term matches half.
func (e *Extractor) ExtractFromChannel(acquisitions []Acquisition) map[Intent]float64 {
	scores := map[Intent]float64{}

	for _, acq := range acquisitions {
		campaign := strings.ToLower(acq.UTMCampaign)
		term := strings.ToLower(acq.UTMTerm)

		switch {
		case strings.Contains(campaign, "gift") || strings.Contains(campaign, "holiday"):
			scores[IntentGift] += 1
		case strings.Contains(campaign, "sport") || strings.Contains(campaign, "athletic"):
			scores[IntentSport] += 1
		case strings.Contains(campaign, "professional") || strings.Contains(campaign, "business"):
			scores[IntentProfessionalUse] += 1
		}

		if term != "" {
			for _, intent := range Taxonomy {
				phrase := strings.ReplaceAll(string(intent), "_", " ")
				if strings.Contains(term, phrase) {
					scores[intent] += 0.5
				}
			}
		}
	}

	if total := len(acquisitions); total > 0 {
		for intent := range scores {
			scores[intent] /= float64(total)
		}
	}
	return scores
}

func analyzeBundle(items []OrderItem) map[Intent]float64 {
	bundle := map[Intent]float64{}

	categories := map[string]bool{}
	for _, item := range items {
		categories[item.Category] = true
	}

	if categories["running_shoes"] && categories["running_socks"] {
		bundle[IntentRunning] += 0.8
		bundle[IntentSport] += 0.5
	}
	if categories["dress_shoes"] && categories["dress_shirt"] {
		bundle[IntentProfessionalUse] += 0.7
	}
	return bundle
}

// isHolidaySeason reports whether a date falls in a gift-giving window:
// Nov 15 through Dec 31, Feb 1 through Feb 14, May 1 through Jun 20.
func isHolidaySeason(date time.Time) bool {
	m, d := int(date.Month()), date.Day()

	if (m == 11 && d >= 15) || m == 12 {
		return true
	}
	if m == 2 && d <= 14 {
		return true
	}
	if m == 5 || (m == 6 && d <= 20) {
		return true
	}
	return false
}

// textWeight weights a text item by source and verification status.
func textWeight(item Text) float64 {
	weight := 1.0
	if item.VerifiedPurchase {
		weight *= 1.5
	}
	switch item.Source {
	case "support_ticket":
		weight *= 0.8
	case "q_and_a":
		weight *= 1.1
	}
	return weight
}
