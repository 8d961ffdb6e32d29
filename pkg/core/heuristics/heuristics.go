// Package heuristics centralises the fixed domain constants of the scoring
// engine: score bands, evidence windows, valuation assumptions and rating
// thresholds. They are heuristics, not calibrated parameters.
package heuristics

import "asset_analyst/pkg/core/num"

// Band linearly maps a raw ratio onto a 0–100 score.
type Band struct {
	Low  float64
	High float64
}

// Score maps v onto [0,100]: Low → 0, High → 100, clipped outside.
// Absent input, or a degenerate band, yields an absent score.
func (b Band) Score(v num.Value) num.Value {
	x, ok := v.Get()
	if !ok || b.High == b.Low {
		return num.None()
	}
	return num.Some(num.Clip(100*(x-b.Low)/(b.High-b.Low), 0, 100))
}

// Window describes the evidence a dimension needs.
type Window struct {
	Preferred int // years looked back, and the confidence denominator
	Minimum   int // non-missing years needed to compute at all
}

// Profitability bands.
type Profitability struct {
	Window          Window
	OperatingMargin Band
	NetMargin       Band
}

// Growth bands and the cash-conversion penalty.
type Growth struct {
	Window         Window
	CAGRPeriods    int
	Band           Band
	PenaltyRevenue float64 // revenue growth above this...
	PenaltyFCF     float64 // ...with FCF growth below this...
	PenaltyScore   float64 // ...injects this sub-score
}

// Strength bands. Leverage bands apply to the negated ratio.
type Strength struct {
	YearsRequired int
	DebtToEquity  Band
	DebtToAssets  Band
	CurrentRatio  Band
	QuickRatio    Band
}

// Stability bands, applied to negated volatilities.
type Stability struct {
	Window          Window
	EarningsCV      Band
	CashFlowCV      Band
	OperatingMargin Band
}

// Quality groups the four dimension settings.
type Quality struct {
	Profitability Profitability
	Growth        Growth
	Strength      Strength
	Stability     Stability
	MinDimensions int
}

// Scenario is one named set of valuation assumptions.
type Scenario struct {
	GrowthShift   float64
	GrowthClip    Band
	DiscountShift float64
	DiscountClip  Band
	TerminalG     float64
	FairPE        float64
}

// Valuation assumptions.
type Valuation struct {
	FCFWindow       int
	GrowthClip      Band
	BaseRate        float64 // r = BaseRate + LeverageLoad × debt_to_assets
	LeverageLoad    float64
	DiscountClip    Band
	FallbackRate    float64
	ProjectionYears int
	TerminalG       float64
	FairPE          float64
	Bull            Scenario
	Bear            Scenario
}

// Market evidence requirements, in daily observations.
type Market struct {
	TradingDays int
	OneYear     int
	ThreeYear   int
	FiveYear    int
}

// Rating weights.
type Rating struct {
	Neutral             float64
	UpsideWeight        float64
	VolatilityWeight    float64
	DrawdownWeight      float64
	RiskVolatility      float64
	OvervaluationCharge float64
}

// Set is the complete heuristic configuration.
type Set struct {
	Quality   Quality
	Valuation Valuation
	Market    Market
	Rating    Rating
}

// Rating thresholds. Fixed, never configurable at runtime.
const (
	BuyThreshold  = 75.0
	HoldThreshold = 55.0
)

// Default returns the engine's heuristics.
func Default() Set {
	return Set{
		Quality: Quality{
			Profitability: Profitability{
				Window:          Window{Preferred: 5, Minimum: 3},
				OperatingMargin: Band{0.05, 0.30},
				NetMargin:       Band{0.03, 0.20},
			},
			Growth: Growth{
				Window:         Window{Preferred: 5, Minimum: 3},
				CAGRPeriods:    2,
				Band:           Band{0.00, 0.15},
				PenaltyRevenue: 0.05,
				PenaltyFCF:     0.02,
				PenaltyScore:   20,
			},
			Strength: Strength{
				YearsRequired: 3,
				DebtToEquity:  Band{-2.5, 0},
				DebtToAssets:  Band{-1.0, 0},
				CurrentRatio:  Band{1.0, 3.0},
				QuickRatio:    Band{0.7, 2.0},
			},
			Stability: Stability{
				Window:          Window{Preferred: 5, Minimum: 3},
				EarningsCV:      Band{-1.0, 0},
				CashFlowCV:      Band{-1.0, 0},
				OperatingMargin: Band{-0.15, 0},
			},
			MinDimensions: 2,
		},
		Valuation: Valuation{
			FCFWindow:       5,
			GrowthClip:      Band{0.02, 0.10},
			BaseRate:        0.08,
			LeverageLoad:    0.04,
			DiscountClip:    Band{0.07, 0.12},
			FallbackRate:    0.10,
			ProjectionYears: 5,
			TerminalG:       0.02,
			FairPE:          15,
			Bull: Scenario{
				GrowthShift:   0.02,
				GrowthClip:    Band{0.02, 0.12},
				DiscountShift: -0.01,
				DiscountClip:  Band{0.07, 0.12},
				TerminalG:     0.03,
				FairPE:        18,
			},
			Bear: Scenario{
				GrowthShift:   -0.01,
				GrowthClip:    Band{0.00, 0.08},
				DiscountShift: 0.01,
				DiscountClip:  Band{0.07, 0.13},
				TerminalG:     0.015,
				FairPE:        12,
			},
		},
		Market: Market{
			TradingDays: 252,
			OneYear:     252,
			ThreeYear:   756,
			FiveYear:    1260,
		},
		Rating: Rating{
			Neutral:             50,
			UpsideWeight:        100,
			VolatilityWeight:    100,
			DrawdownWeight:      50,
			RiskVolatility:      80,
			OvervaluationCharge: 20,
		},
	}
}

// Clip bounds x to the band.
func (b Band) Clip(x float64) float64 { return num.Clip(x, b.Low, b.High) }
