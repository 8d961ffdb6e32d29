// Package quality scores the intrinsic quality of a business, independently
// of its price, along four dimensions: profitability, growth quality,
// financial strength and stability.
package quality

import (
	"math"

	"asset_analyst/pkg/core/coverage"
	"asset_analyst/pkg/core/feature"
	"asset_analyst/pkg/core/heuristics"
	"asset_analyst/pkg/core/num"
)

// Metric names reported in Dimension.Metrics.
const (
	MetricOperatingMarginAvg = "operating_margin_avg"
	MetricNetMarginAvg       = "net_margin_avg"
	MetricRevenueGrowth      = "revenue_growth"
	MetricFCFGrowth          = "fcf_growth"
	MetricNetIncomeGrowth    = "net_income_growth"
	MetricDebtToEquity       = "debt_to_equity"
	MetricDebtToAssets       = "debt_to_assets"
	MetricCurrentRatio       = "current_ratio"
	MetricQuickRatio         = "quick_ratio"
	MetricNetIncomeCV        = "net_income_volatility"
	MetricFCFCV              = "fcf_volatility"
	MetricOpMarginStd        = "operating_margin_volatility"
)

// Dimension is one scored quality dimension.
type Dimension struct {
	Score   num.Value            `json:"score"`
	Conf    float64              `json:"confidence"`
	Metrics map[string]num.Value `json:"metrics"`
}

func (d Dimension) Estimate() num.Value { return d.Score }
func (d Dimension) Confidence() float64 { return d.Conf }

// Result is the Quality Analyzer output.
type Result struct {
	Score         num.Value `json:"quality_score"`
	Confidence    float64   `json:"quality_confidence"`
	Profitability Dimension `json:"profitability"`
	Growth        Dimension `json:"growth_quality"`
	Strength      Dimension `json:"financial_strength"`
	Stability     Dimension `json:"stability"`
}

// Dimensions returns the four dimensions in fixed order.
func (r Result) Dimensions() []Dimension {
	return []Dimension{r.Profitability, r.Growth, r.Strength, r.Stability}
}

// Analyzer computes the quality profile of a feature table.
type Analyzer struct {
	cfg heuristics.Quality
}

// NewAnalyzer creates an analyzer with the given heuristics.
func NewAnalyzer(cfg heuristics.Quality) *Analyzer {
	return &Analyzer{cfg: cfg}
}

// Analyze scores all four dimensions. The overall score is the mean of the
// present dimension scores, but only when at least MinDimensions of them are
// present; a single dimension is not a quality assessment.
func (a *Analyzer) Analyze(t *feature.Table) Result {
	res := Result{
		Profitability: a.profitability(t),
		Growth:        a.growth(t),
		Strength:      a.strength(t),
		Stability:     a.stability(t),
	}

	dims := res.Dimensions()
	scores := make([]num.Value, len(dims))
	for i, d := range dims {
		scores[i] = d.Score
	}
	if num.CountValid(scores...) < a.cfg.MinDimensions {
		return res
	}

	res.Score = num.Mean(scores...)
	var sum float64
	n := 0
	for _, d := range dims {
		if d.Conf > 0 {
			sum += d.Conf
			n++
		}
	}
	if n > 0 {
		res.Confidence = sum / float64(n)
	}
	return res
}

// dimension accumulates sub-scores and the widest evidence window used.
type dimension struct {
	scores    []num.Value
	metrics   map[string]num.Value
	yearsUsed int
}

func newDimension() *dimension {
	return &dimension{metrics: make(map[string]num.Value)}
}

func (d *dimension) add(name string, raw, score num.Value, years int) {
	d.metrics[name] = raw
	d.scores = append(d.scores, score)
	if years > d.yearsUsed {
		d.yearsUsed = years
	}
}

func (d *dimension) result(yearsRequired int) Dimension {
	return Dimension{
		Score:   num.Mean(d.scores...),
		Conf:    coverage.Ratio(d.yearsUsed, yearsRequired),
		Metrics: d.metrics,
	}
}

// =============================================================================
// PROFITABILITY
// =============================================================================

func (a *Analyzer) profitability(t *feature.Table) Dimension {
	cfg := a.cfg.Profitability
	d := newDimension()

	if s, ok := t.Lookup(feature.OperatingMargin); ok {
		m := coverage.ComputeWithFallback(s, cfg.Window.Preferred, cfg.Window.Minimum, coverage.Mean)
		if m.Value.Valid {
			d.add(MetricOperatingMarginAvg, m.Value, cfg.OperatingMargin.Score(m.Value), m.YearsUsed)
		}
	}
	if s, ok := t.Lookup(feature.NetMargin); ok {
		m := coverage.ComputeWithFallback(s, cfg.Window.Preferred, cfg.Window.Minimum, coverage.Mean)
		if m.Value.Valid {
			d.add(MetricNetMarginAvg, m.Value, cfg.NetMargin.Score(m.Value), m.YearsUsed)
		}
	}
	return d.result(cfg.Window.Preferred)
}

// =============================================================================
// GROWTH QUALITY
// =============================================================================

func (a *Analyzer) growth(t *feature.Table) Dimension {
	cfg := a.cfg.Growth
	d := newDimension()

	revGrowth := num.None()
	if s, ok := t.Field(feature.Revenue); ok {
		if n := s.CountValid(); n >= cfg.Window.Minimum {
			revGrowth = s.CAGR(cfg.CAGRPeriods)
			d.add(MetricRevenueGrowth, revGrowth, cfg.Band.Score(revGrowth), min(n, cfg.Window.Preferred))
		}
	}

	// Cash growth prefers free cash flow and falls back to net income.
	fcfBased := false
	fcfGrowth := num.None()
	if s, ok := t.Field(feature.FreeCashFlow); ok && s.CountValid() >= cfg.Window.Minimum {
		fcfBased = true
		fcfGrowth = s.CAGR(cfg.CAGRPeriods)
		d.add(MetricFCFGrowth, fcfGrowth, cfg.Band.Score(fcfGrowth), min(s.CountValid(), cfg.Window.Preferred))
	} else if s, ok := t.Field(feature.NetIncome); ok && s.CountValid() >= cfg.Window.Minimum {
		g := s.CAGR(cfg.CAGRPeriods)
		d.add(MetricNetIncomeGrowth, g, cfg.Band.Score(g), min(s.CountValid(), cfg.Window.Preferred))
	}

	// Revenue growth that does not convert into free cash flow.
	if fcfBased && revGrowth.Valid && fcfGrowth.Valid &&
		revGrowth.V > cfg.PenaltyRevenue && fcfGrowth.V < cfg.PenaltyFCF {
		d.scores = append(d.scores, num.Some(cfg.PenaltyScore))
	}

	return d.result(cfg.Window.Preferred)
}

// =============================================================================
// FINANCIAL STRENGTH
// =============================================================================

func (a *Analyzer) strength(t *feature.Table) Dimension {
	cfg := a.cfg.Strength
	d := newDimension()

	latest := func(name string) num.Value {
		s, ok := t.Lookup(name)
		if !ok {
			return num.None()
		}
		return s.LastValid()
	}
	negate := func(v num.Value) num.Value {
		if !v.Valid {
			return v
		}
		return num.Some(-v.V)
	}

	// Debt-to-assets is only a fallback for a wholly absent debt-to-equity.
	if dte := latest(feature.DebtToEquity); dte.Valid {
		d.add(MetricDebtToEquity, dte, cfg.DebtToEquity.Score(negate(dte)), 1)
	} else if dta := latest(feature.DebtToAssets); dta.Valid {
		d.add(MetricDebtToAssets, dta, cfg.DebtToAssets.Score(negate(dta)), 1)
	}
	if cr := latest(feature.CurrentRatio); cr.Valid {
		d.add(MetricCurrentRatio, cr, cfg.CurrentRatio.Score(cr), 1)
	}
	if qr := latest(feature.QuickRatio); qr.Valid {
		d.add(MetricQuickRatio, qr, cfg.QuickRatio.Score(qr), 1)
	}

	return d.result(cfg.YearsRequired)
}

// =============================================================================
// STABILITY & PREDICTABILITY
// =============================================================================

// variation is std / (|mean| + eps) over the window.
func variation(xs []float64) float64 {
	return coverage.StdDev(xs) / (math.Abs(coverage.Mean(xs)) + num.Eps)
}

func (a *Analyzer) stability(t *feature.Table) Dimension {
	cfg := a.cfg.Stability
	d := newDimension()

	measure := func(s feature.Series, name string, reducer coverage.Reducer, band heuristics.Band) {
		m := coverage.ComputeWithFallback(s, cfg.Window.Preferred, cfg.Window.Minimum, reducer)
		if !m.Value.Valid {
			return
		}
		d.add(name, m.Value, band.Score(num.Some(-m.Value.V)), m.YearsUsed)
	}

	if s, ok := t.Field(feature.NetIncome); ok {
		measure(s, MetricNetIncomeCV, variation, cfg.EarningsCV)
	}
	if s, ok := t.Field(feature.FreeCashFlow); ok {
		measure(s, MetricFCFCV, variation, cfg.CashFlowCV)
	}
	if s, ok := t.Lookup(feature.OperatingMargin); ok {
		measure(s, MetricOpMarginStd, coverage.StdDev, cfg.OperatingMargin)
	}

	return d.result(cfg.Window.Preferred)
}
