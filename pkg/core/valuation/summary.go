// Package valuation estimates per-share intrinsic value with three
// independent models (DCF, owner earnings, earnings multiple) under base,
// bull and bear assumptions. Individual models may be undefined; the fair
// value always carries a well-defined confidence.
package valuation

import (
	"asset_analyst/pkg/core/coverage"
	"asset_analyst/pkg/core/feature"
	"asset_analyst/pkg/core/heuristics"
	"asset_analyst/pkg/core/num"
)

// Scenario names.
const (
	ScenarioBase = "base"
	ScenarioBull = "bull"
	ScenarioBear = "bear"
)

// Assumptions is one parameter set fed to the three models.
type Assumptions struct {
	Growth         num.Value `json:"g"`
	Discount       num.Value `json:"r"`
	TerminalGrowth float64   `json:"terminal_g"`
	FairPE         float64   `json:"pe"`
}

// ModelValues are the per-share outputs of the three models.
type ModelValues struct {
	DCF           num.Value `json:"dcf_value"`
	OwnerEarnings num.Value `json:"buffett_value"`
	Multiples     num.Value `json:"multiples_value"`
}

func (m ModelValues) all() []num.Value {
	return []num.Value{m.DCF, m.OwnerEarnings, m.Multiples}
}

// ScenarioResult is the blended value of one scenario.
type ScenarioResult struct {
	FairValue   num.Value   `json:"fair_value"`
	Conf        float64     `json:"confidence"`
	Models      ModelValues `json:"models"`
	Assumptions Assumptions `json:"assumptions"`
}

// Result is the Valuation Engine output.
type Result struct {
	ModelValues
	FairValue     num.Value                 `json:"fair_value"`
	Conf          float64                   `json:"valuation_confidence"`
	NormalizedFCF num.Value                 `json:"normalized_fcf"`
	Assumptions   Assumptions               `json:"assumptions"`
	Scenarios     map[string]ScenarioResult `json:"scenarios"`
}

func (r Result) Estimate() num.Value { return r.FairValue }
func (r Result) Confidence() float64 { return r.Conf }

// Engine runs the valuation models on a feature table.
type Engine struct {
	cfg heuristics.Valuation
}

// NewEngine creates an engine with the given assumptions.
func NewEngine(cfg heuristics.Valuation) *Engine {
	return &Engine{cfg: cfg}
}

// inputs are resolved once per table and shared by every scenario.
type inputs struct {
	fcf0      num.Value
	netDebt   num.Value
	shares    num.Value
	multiples MultiplesInput
}

func (e *Engine) resolve(t *feature.Table) inputs {
	in := inputs{fcf0: e.NormalizedFCF(t)}
	if s, ok := t.Field(feature.NetDebt); ok {
		in.netDebt = s.LastValid()
	}
	shares, hasShares := t.Field(feature.SharesOutstanding)
	if hasShares {
		in.shares = shares.LastValid()
		in.multiples.Shares = shares.Last()
	}
	if ni, ok := t.Field(feature.NetIncome); ok {
		in.multiples.NetIncome = ni.Last()
	}
	return in
}

// =============================================================================
// 1. NORMALIZED FCF
// =============================================================================

// NormalizedFCF is the mean of the non-missing free cash flow over the last
// FCFWindow periods; absent when they are all missing.
func (e *Engine) NormalizedFCF(t *feature.Table) num.Value {
	s, ok := t.Field(feature.FreeCashFlow)
	if !ok {
		return num.None()
	}
	recent := s.Tail(e.cfg.FCFWindow).Clean()
	if len(recent) == 0 {
		return num.None()
	}
	return num.Some(coverage.Mean(recent))
}

// =============================================================================
// 2. GROWTH RATE
// =============================================================================

// cagr3 reads the latest 3-year CAGR column, or derives it from the
// underlying series when the column is wholly absent.
func cagr3(t *feature.Table, column, base string) num.Value {
	if s, ok := t.Lookup(column); ok {
		return s.Last()
	}
	if s, ok := t.Field(base); ok {
		return s.CAGR(3)
	}
	return num.None()
}

// GrowthRate is the mean of the latest revenue and FCF 3-year CAGRs that are
// present, clipped to GrowthClip.
func (e *Engine) GrowthRate(t *feature.Table) num.Value {
	g := num.Mean(
		cagr3(t, feature.RevenueCAGR3Y, feature.Revenue),
		cagr3(t, feature.FCFCAGR3Y, feature.FreeCashFlow),
	)
	if !g.Valid {
		return g
	}
	return num.Some(e.cfg.GrowthClip.Clip(g.V))
}

// =============================================================================
// 3. DISCOUNT RATE
// =============================================================================

// DiscountRate is BaseRate + LeverageLoad × latest debt-to-assets, clipped
// to DiscountClip, or FallbackRate when leverage is unknown. Always present.
func (e *Engine) DiscountRate(t *feature.Table) num.Value {
	s, ok := t.Lookup(feature.DebtToAssets)
	if !ok {
		return num.Some(e.cfg.FallbackRate)
	}
	dta, ok := s.Last().Get()
	if !ok {
		return num.Some(e.cfg.FallbackRate)
	}
	return num.Some(e.cfg.DiscountClip.Clip(e.cfg.BaseRate + e.cfg.LeverageLoad*dta))
}

// =============================================================================
// 4. SCENARIOS
// =============================================================================

func shift(v num.Value, by float64, clip heuristics.Band) num.Value {
	if !v.Valid {
		return v
	}
	return num.Some(clip.Clip(v.V + by))
}

// Scenarios returns the base, bull and bear assumption sets.
func (e *Engine) Scenarios(t *feature.Table) map[string]Assumptions {
	g := e.GrowthRate(t)
	r := e.DiscountRate(t)
	scenario := func(s heuristics.Scenario) Assumptions {
		return Assumptions{
			Growth:         shift(g, s.GrowthShift, s.GrowthClip),
			Discount:       shift(r, s.DiscountShift, s.DiscountClip),
			TerminalGrowth: s.TerminalG,
			FairPE:         s.FairPE,
		}
	}
	return map[string]Assumptions{
		ScenarioBase: {Growth: g, Discount: r, TerminalGrowth: e.cfg.TerminalG, FairPE: e.cfg.FairPE},
		ScenarioBull: scenario(e.cfg.Bull),
		ScenarioBear: scenario(e.cfg.Bear),
	}
}

// models runs the three models under one assumption set, converting the
// cash-flow totals to per-share equity values.
func (e *Engine) models(in inputs, a Assumptions) ModelValues {
	dcf := CalculateDCF(DCFInput{
		FCF0:            in.fcf0,
		Growth:          a.Growth,
		Discount:        a.Discount,
		TerminalGrowth:  a.TerminalGrowth,
		ProjectionYears: e.cfg.ProjectionYears,
	})
	owner := OwnerEarnings(in.fcf0, a.Growth, a.Discount)

	return ModelValues{
		DCF:           PerShare(EquityValue(dcf.EnterpriseValue, in.netDebt), in.shares),
		OwnerEarnings: PerShare(EquityValue(owner, in.netDebt), in.shares),
		Multiples:     CalculateMultiples(in.multiples, a.FairPE),
	}
}

// =============================================================================
// 5. SYNTHESIS
// =============================================================================

// Analyze values the company under every scenario. The top-level fair value
// is the base scenario: mean of the defined models, confidence = defined/3.
func (e *Engine) Analyze(t *feature.Table) Result {
	in := e.resolve(t)
	params := e.Scenarios(t)

	res := Result{
		NormalizedFCF: in.fcf0,
		Assumptions:   params[ScenarioBase],
		Scenarios:     make(map[string]ScenarioResult, len(params)),
	}

	for name, a := range params {
		mv := e.models(in, a)
		blend := coverage.Blend(mv.all()...)
		res.Scenarios[name] = ScenarioResult{
			FairValue:   blend.Value,
			Conf:        blend.Conf,
			Models:      mv,
			Assumptions: a,
		}
		if name == ScenarioBase {
			res.ModelValues = mv
			res.FairValue = blend.Value.Round(2)
			res.Conf = blend.Conf
		}
	}
	return res
}
