// Package report turns an analysis result into the flat field set and the
// text documents consumed by the presentation layer.
package report

import (
	"asset_analyst/pkg/core/analyst"
	"asset_analyst/pkg/core/num"
	"asset_analyst/pkg/core/rating"
)

// Report is the flat view of one analysis, sufficient to populate a
// document without walking the nested result.
type Report struct {
	Ticker string `json:"ticker"`

	// Investment snapshot
	CurrentPrice num.Value    `json:"current_price"`
	FairValue    num.Value    `json:"fair_value"`
	Upside       num.Value    `json:"upside"`
	Rating       rating.Label `json:"rating"`

	// Valuation summary
	DCFValue            num.Value `json:"dcf_value"`
	BuffettValue        num.Value `json:"buffett_value"`
	MultiplesValue      num.Value `json:"multiples_value"`
	ValuationConfidence float64   `json:"valuation_confidence"`

	// Quality scores
	QualityScore           num.Value `json:"quality_score"`
	ProfitabilityScore     num.Value `json:"profitability_score"`
	GrowthScore            num.Value `json:"growth_score"`
	FinancialStrengthScore num.Value `json:"financial_strength_score"`
	StabilityScore         num.Value `json:"stability_score"`
	QualityConfidence      float64   `json:"quality_confidence"`

	// Rating scores
	ValueScore       float64 `json:"value_score"`
	MarketScore      float64 `json:"market_score"`
	RiskScore        float64 `json:"risk_score"`
	TotalScore       float64 `json:"total_score"`
	RatingConfidence float64 `json:"rating_confidence"`
}

// Upside is fair/price − 1, defined only for a present fair value and a
// positive price.
func Upside(fair, price num.Value) num.Value {
	if !fair.Valid || !price.Positive() {
		return num.None()
	}
	return num.Some(fair.V/price.V - 1)
}

// Build flattens a result. A present quote (e.g. from the provider's
// metadata) replaces the market price as the current price.
func Build(res *analyst.Result, quote num.Value) Report {
	s := res.Summary
	price := s.MarketPrice
	if quote.Valid {
		price = quote
	}
	return Report{
		Ticker: res.Ticker,

		CurrentPrice: price,
		FairValue:    s.FairValue,
		Upside:       Upside(s.FairValue, price),
		Rating:       s.RatingLabel,

		DCFValue:            s.DCFValue,
		BuffettValue:        s.BuffettValue,
		MultiplesValue:      s.MultiplesValue,
		ValuationConfidence: s.ValuationConfidence,

		QualityScore:           s.QualityScore,
		ProfitabilityScore:     s.ProfitabilityScore,
		GrowthScore:            s.GrowthScore,
		FinancialStrengthScore: s.FinancialStrengthScore,
		StabilityScore:         s.StabilityScore,
		QualityConfidence:      s.QualityConfidence,

		ValueScore:       s.ValueScore,
		MarketScore:      s.MarketScore,
		RiskScore:        s.RiskScore,
		TotalScore:       s.TotalScore,
		RatingConfidence: res.Rating.ScoreConfidence,
	}
}
