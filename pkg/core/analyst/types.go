package analyst

import (
	"asset_analyst/pkg/core/feature"
	"asset_analyst/pkg/core/market"
	"asset_analyst/pkg/core/num"
	"asset_analyst/pkg/core/quality"
	"asset_analyst/pkg/core/rating"
	"asset_analyst/pkg/core/valuation"
)

// Input is one analysis request. Prices and MarketPrice are optional; a
// present MarketPrice (e.g. a live quote) overrides any series-derived price.
type Input struct {
	Ticker      string
	Features    *feature.Table
	Prices      feature.PriceSeries
	MarketPrice num.Value
}

// Result is the complete output of one run. It is built once and not
// modified afterwards.
type Result struct {
	Ticker    string           `json:"ticker"`
	Quality   quality.Result   `json:"quality"`
	Valuation valuation.Result `json:"valuation"`
	Market    market.Result    `json:"market"`
	Rating    rating.Result    `json:"rating"`
	Summary   Summary          `json:"summary"`
}

// Summary is the flattened view used by report rendering.
type Summary struct {
	QualityScore           num.Value `json:"quality_score"`
	GrowthScore            num.Value `json:"growth_score"`
	ProfitabilityScore     num.Value `json:"profitability_score"`
	FinancialStrengthScore num.Value `json:"financial_strength_score"`
	StabilityScore         num.Value `json:"stability_score"`
	QualityConfidence      float64   `json:"quality_confidence"`

	FairValue           num.Value `json:"fair_value"`
	ValuationConfidence float64   `json:"valuation_confidence"`
	DCFValue            num.Value `json:"dcf_value"`
	BuffettValue        num.Value `json:"buffett_value"`
	MultiplesValue      num.Value `json:"multiples_value"`

	MarketPrice num.Value `json:"market_price"`

	ValueScore  float64      `json:"value_score"`
	RiskScore   float64      `json:"risk_score"`
	MarketScore float64      `json:"market_score"`
	TotalScore  float64      `json:"total_score"`
	RatingLabel rating.Label `json:"rating_label"`
}

func summarize(q quality.Result, v valuation.Result, m market.Result, r rating.Result) Summary {
	return Summary{
		QualityScore:           q.Score,
		GrowthScore:            q.Growth.Score,
		ProfitabilityScore:     q.Profitability.Score,
		FinancialStrengthScore: q.Strength.Score,
		StabilityScore:         q.Stability.Score,
		QualityConfidence:      q.Confidence,

		FairValue:           v.FairValue,
		ValuationConfidence: v.Conf,
		DCFValue:            v.DCF,
		BuffettValue:        v.OwnerEarnings,
		MultiplesValue:      v.Multiples,

		MarketPrice: m.Price,

		ValueScore:  r.Value,
		RiskScore:   r.Risk,
		MarketScore: r.Market,
		TotalScore:  r.Total,
		RatingLabel: r.Rating,
	}
}
