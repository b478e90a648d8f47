// Package intent extracts purchase-intent distributions for a product from
// shop data sources (orders, returns, onsite behavior, review text, and
// acquisition channels) and mixes them into a single smoothed distribution
// over a closed taxonomy.
package intent

// Intent is a canonical taxonomy value.
type Intent string

const (
	IntentGift            Intent = "gift"
	IntentDailyCommute    Intent = "daily_commute"
	IntentHobby           Intent = "hobby"
	IntentProfessionalUse Intent = "professional_use"
	IntentTravel          Intent = "travel"
	IntentFashion         Intent = "fashion"
	IntentSport           Intent = "sport"
	IntentBasketball      Intent = "basketball"
	IntentRunning         Intent = "running"
	IntentOutdoor         Intent = "outdoor"
	IntentLuxury          Intent = "luxury"
	IntentValue           Intent = "value"
)

// Taxonomy lists every intent in canonical order. The mixer smooths over
// the full taxonomy, so unseen intents still receive mass.
var Taxonomy = []Intent{
	IntentGift,
	IntentDailyCommute,
	IntentHobby,
	IntentProfessionalUse,
	IntentTravel,
	IntentFashion,
	IntentSport,
	IntentBasketball,
	IntentRunning,
	IntentOutdoor,
	IntentLuxury,
	IntentValue,
}

var taxonomySet = func() map[Intent]bool {
	s := make(map[Intent]bool, len(Taxonomy))
	for _, i := range Taxonomy {
		s[i] = true
	}
	return s
}()

// InTaxonomy reports whether an intent belongs to the closed taxonomy.
func InTaxonomy(i Intent) bool { return taxonomySet[i] }
