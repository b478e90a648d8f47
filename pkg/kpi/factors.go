package kpi

import "math"

// FitHint scores sizing accuracy from return and advisor data.
//
// Factors: return-due-to-size rate (-0.4), size-exchange rate (-0.2),
// size-advisor usage (+0.2), positive fit mentions (+0.2). The raw sum is
// shifted by +0.5 before the sigmoid to center sparse inputs near 0.62.
func (c *Calculator) FitHint(data ProductData) (float64, []Evidence) {
	returnsTotal := data.Float("returns_total", 0)
	returnsSize := data.Float("returns_size", 0)
	exchangesSize := data.Float("exchanges_size", 0)
	purchasesWithAdvisor := data.Float("purchases_with_advisor", 0)
	purchasesTotal := math.Max(data.Float("purchases_total", 1), 1)
	reviewsFitPositive := data.Float("reviews_fit_positive", 0)
	reviewsWithFit := math.Max(data.Float("reviews_with_fit", 1), 1)

	returnSizeRate := returnsSize / math.Max(returnsTotal, 1)
	exchangeSizeRate := exchangesSize / purchasesTotal
	advisorUsageRate := purchasesWithAdvisor / purchasesTotal
	fitPositiveRate := reviewsFitPositive / reviewsWithFit

	now := c.now()
	evidence := []Evidence{
		{Factor: "return_size_rate", Value: returnSizeRate, Source: "returns_data",
			Confidence: math.Min(1, returnsTotal/10), Timestamp: now},
		{Factor: "advisor_usage_rate", Value: advisorUsageRate, Source: "purchase_behavior",
			Confidence: math.Min(1, purchasesTotal/50), Timestamp: now},
		{Factor: "fit_positive_rate", Value: fitPositiveRate, Source: "review_analysis",
			Confidence: math.Min(1, reviewsWithFit/20), Timestamp: now},
	}

	raw := -0.4*returnSizeRate +
		-0.2*exchangeSizeRate +
		0.2*advisorUsageRate +
		0.2*fitPositiveRate

	return sigmoid(raw + 0.5), evidence
}

// Reliability scores defect behavior from warranty data. RMA and claim
// rates per 1000 units normalize against the category average and enter
// as goodness terms; warranty claims enter as a penalty.
//
// raw = 0.3·rma_norm + 0.3·claim_norm + 0.2·mtbf − 0.1·warranty_rate_norm
//     + 0.1·durability_reviews, with mtbf = min(1, avg_days_to_claim/730).
func (c *Calculator) Reliability(data ProductData) (float64, []Evidence) {
	rmaCount := data.Float("rma_count", 0)
	claimCount := data.Float("claim_count", 0)
	unitsSold := math.Max(data.Float("units_sold", 1000), 1)
	avgDaysToClaim := data.Float("avg_days_to_claim", 365)
	warrantyClaims := data.Float("warranty_claims", 0)
	durabilityAvg := data.Float("reviews_durability_avg", 0.5)
	categoryRMAAvg := data.Float("category_rma_avg", 5.0)

	rmaRate := rmaCount / unitsSold * 1000
	claimRate := claimCount / unitsSold * 1000
	warrantyRate := warrantyClaims / unitsSold * 1000

	mtbfNorm := math.Min(1, avgDaysToClaim/730)
	rmaNorm := 1 - math.Min(1, rmaRate/categoryRMAAvg)
	claimNorm := 1 - math.Min(1, claimRate/(categoryRMAAvg*2))

	now := c.now()
	mtbfConfidence := 0.1
	if claimCount > 0 {
		mtbfConfidence = math.Min(1, claimCount/10)
	}
	evidence := []Evidence{
		{Factor: "rma_per_1000", Value: rmaRate, Source: "warranty_system",
			Confidence: math.Min(1, unitsSold/1000), Timestamp: now},
		{Factor: "mtbf_days", Value: avgDaysToClaim, Source: "warranty_system",
			Confidence: mtbfConfidence, Timestamp: now},
	}

	raw := 0.3*rmaNorm +
		0.3*claimNorm +
		0.2*mtbfNorm -
		0.1*math.Min(1, warrantyRate/10) +
		0.1*durabilityAvg

	return sigmoid(raw), evidence
}

// Performance scores category-specific metrics: lab data for footwear,
// benchmarks for electronics, review ratio against the category average
// for everything else.
func (c *Calculator) Performance(data ProductData, category string) (float64, []Evidence) {
	var evidence []Evidence
	var raw float64
	now := c.now()

	switch category {
	case "footwear":
		energyReturn := data.Float("energy_return_percent", 50) / 100
		weightGrams := data.Float("weight_grams", 300)
		cushioningIndex := data.Float("cushioning_index", 5) / 10

		// Lighter is better, up to a point.
		weightScore := 1 - math.Min(1, math.Max(0, weightGrams-200)/300)
		// Stack height preference is use-case dependent; neutral here.
		stackScore := 0.5

		evidence = append(evidence,
			Evidence{Factor: "energy_return", Value: energyReturn, Source: "lab_test",
				Confidence: 0.95, Timestamp: now},
			Evidence{Factor: "weight_score", Value: weightScore, Source: "product_specs",
				Confidence: 1.0, Timestamp: now},
		)

		raw = 0.4*energyReturn + 0.2*weightScore + 0.2*cushioningIndex + 0.2*stackScore

	case "electronics":
		benchmark := data.Float("benchmark_percentile", 50) / 100
		efficiency := data.Float("efficiency_rating", 3) / 5
		latencyMS := data.Float("latency_ms", 100)

		latencyScore := 1 - math.Min(1, latencyMS/200)

		evidence = append(evidence,
			Evidence{Factor: "benchmark_percentile", Value: benchmark, Source: "benchmark_suite",
				Confidence: 0.9, Timestamp: now},
		)

		raw = 0.5*benchmark + 0.3*efficiency + 0.2*latencyScore

	default:
		mentions := data.Float("reviews_performance_avg", 0.5)
		categoryAvg := data.Float("category_performance_avg", 0.5)
		raw = mentions / math.Max(categoryAvg, 0.1)
	}

	return math.Min(1, sigmoid(raw)), evidence
}

// OwnerSatisfaction combines verified-weighted review ratings, CSAT,
// recent sentiment plus trend, and the repeat purchase rate with weights
// {0.4, 0.3, 0.2, 0.1}.
func (c *Calculator) OwnerSatisfaction(data ProductData) (float64, []Evidence) {
	avgRatingAll := data.Float("avg_rating", 3.0)
	avgRatingVerified := data.Float("avg_rating_verified", avgRatingAll)
	reviewCountVerified := data.Float("review_count_verified", 0)
	reviewCountTotal := math.Max(data.Float("review_count_total", 1), 1)

	csatScore := data.Float("csat_product", 0.7)
	csatResponses := data.Float("csat_responses", 0)

	sentimentRecent := data.Float("sentiment_90d", 0.5)
	sentimentPrev := data.Float("sentiment_prev_90d", 0.5)
	sentimentTrend := sentimentRecent - sentimentPrev

	repeatRate := data.Float("repeat_purchase_rate", 0.1)

	// Verified reviews weigh 1.5x in the blended rating.
	unverified := reviewCountTotal - reviewCountVerified
	weightedRating := (avgRatingVerified*reviewCountVerified*1.5 + avgRatingAll*unverified) /
		(reviewCountVerified*1.5 + unverified)

	ratingNorm := (weightedRating - 1) / 4 // 1-5 scale to 0-1

	now := c.now()
	evidence := []Evidence{
		{Factor: "weighted_rating", Value: weightedRating, Source: "review_system",
			Confidence: math.Min(1, reviewCountTotal/100), Timestamp: now},
		{Factor: "csat_score", Value: csatScore, Source: "survey_system",
			Confidence: math.Min(1, csatResponses/50), Timestamp: now},
		{Factor: "sentiment_trend", Value: sentimentTrend, Source: "sentiment_analysis",
			Confidence: 0.8, Timestamp: now},
	}

	raw := 0.4*ratingNorm +
		0.3*csatScore +
		0.2*(sentimentRecent+sentimentTrend) +
		0.1*repeatRate

	return math.Min(1, sigmoid(raw)), evidence
}

// Uniqueness scores market differentiation from feature rarity, limited
// availability and price positioning.
func (c *Calculator) Uniqueness(data ProductData) (float64, []Evidence) {
	rareFeatures := data.Float("rare_feature_count", 0)
	totalFeatures := math.Max(data.Float("total_feature_count", 10), 1)
	featureRarity := rareFeatures / totalFeatures

	isLimited := data.Bool("is_limited_edition", false)
	stockScarcity := data.Float("stock_scarcity_score", 0)
	pricePercentile := data.Float("price_percentile_category", 50) / 100

	evidence := []Evidence{
		{Factor: "feature_rarity", Value: featureRarity, Source: "market_analysis",
			Confidence: 0.7, Timestamp: c.now()},
	}

	limited := 0.0
	if isLimited {
		limited = 1.0
	}

	score := sigmoid(0.4*featureRarity + 0.2*limited + 0.2*stockScarcity + 0.2*pricePercentile)
	return score, evidence
}

var materialScores = map[string]float64{
	"premium":  0.9,
	"high":     0.7,
	"standard": 0.5,
	"basic":    0.3,
}

// Craftsmanship scores build quality from material grade, origin
// reputation, warranty length and review aspects.
func (c *Calculator) Craftsmanship(data ProductData) (float64, []Evidence) {
	materialGrade := data.String("material_grade", "standard")
	materialScore, ok := materialScores[materialGrade]
	if !ok {
		materialScore = 0.5
	}

	originScore := data.Float("origin_reputation_score", 0.5)
	warrantyDays := data.Float("warranty_days", 90)
	warrantyScore := math.Min(1, warrantyDays/730)
	qualityAspect := data.Float("review_aspect_quality", 0.5)
	mentionRate := data.Float("craftsmanship_mention_rate", 0)

	evidence := []Evidence{
		{Factor: "material_grade", Value: materialScore, Source: "product_specs",
			Confidence: 0.9, Timestamp: c.now()},
	}

	score := sigmoid(0.3*materialScore + 0.2*originScore + 0.2*warrantyScore +
		0.2*qualityAspect + 0.1*mentionRate)
	return score, evidence
}

// Sustainability scores certifications, recycled content, relative carbon
// footprint, packaging and supply-chain transparency. This is the one
// linear score: a min-clamp instead of a sigmoid, so an uncertified
// product with no data scores 0.
func (c *Calculator) Sustainability(data ProductData) (float64, []Evidence) {
	certCount := float64(len(data.Strings("sustainability_certifications")))
	certScore := math.Min(1, certCount/3)

	recycled := data.Float("recycled_content_percent", 0) / 100

	carbonKG := data.Float("carbon_footprint_kg", 10)
	categoryAvgCarbon := data.Float("category_avg_carbon_kg", 10)
	carbonScore := math.Max(0, 1-carbonKG/categoryAvgCarbon)

	packaging := 0.0
	if data.Bool("sustainable_packaging", false) {
		packaging = 1.0
	}
	supplyChain := data.Float("supply_chain_transparency", 0)

	now := c.now()
	evidence := []Evidence{
		{Factor: "recycled_content", Value: recycled, Source: "product_specs",
			Confidence: 0.95, Timestamp: now},
		{Factor: "carbon_footprint_relative", Value: carbonScore, Source: "lca_analysis",
			Confidence: 0.8, Timestamp: now},
	}

	score := math.Min(1, 0.3*certScore+0.25*recycled+0.2*carbonScore+
		0.1*packaging+0.15*supplyChain)
	return score, evidence
}

// Innovation scores novelty from features, patents, recognition and
// technology generation.
func (c *Calculator) Innovation(data ProductData) (float64, []Evidence) {
	newFeatures := data.Float("new_feature_count", 0)
	patents := data.Float("patent_count", 0)
	awards := data.Float("award_count", 0)
	pressMentions := data.Float("press_mention_count", 0)
	techGeneration := data.Float("tech_generation", 1)

	newTech := 0.0
	if data.Bool("uses_cutting_edge_tech", false) {
		newTech = 1.0
	}
	firstMover := 0.0
	if data.Bool("is_first_in_category", false) {
		firstMover = 1.0
	}

	evidence := []Evidence{
		{Factor: "patent_count", Value: patents, Source: "patent_database",
			Confidence: 1.0, Timestamp: c.now()},
	}

	score := sigmoid(
		math.Min(1, newFeatures/3)*0.25 +
			math.Min(1, patents/2)*0.2 +
			math.Min(1, awards/2)*0.15 +
			math.Min(1, pressMentions/10)*0.1 +
			newTech*0.15 +
			(techGeneration-1)*0.1 +
			firstMover*0.05)
	return score, evidence
}
