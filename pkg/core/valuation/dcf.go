package valuation

import (
	"math"

	"asset_analyst/pkg/core/num"
)

// =============================================================================
// CASH-FLOW MODELS
// Both models return enterprise-level totals; see EquityValue and PerShare.
// =============================================================================

// DCFInput holds the inputs of the explicit-projection DCF.
type DCFInput struct {
	FCF0            num.Value // normalized free cash flow
	Growth          num.Value // g, projection growth
	Discount        num.Value // r
	TerminalGrowth  float64   // g_T
	ProjectionYears int
}

// DCFResult breaks the DCF total into its two stages.
type DCFResult struct {
	EnterpriseValue num.Value `json:"enterprise_value"`
	PVProjection    num.Value `json:"pv_projection"`
	PVTerminal      num.Value `json:"pv_terminal"`
	TerminalValue   num.Value `json:"terminal_value"`
}

// CalculateDCF projects FCF0 for ProjectionYears at g, discounts at r, and
// adds a Gordon-growth terminal value discounted from the final year.
//
// FORMULA:
//
//	EV = Σ_{t=1..N} FCF0(1+g)^t / (1+r)^t + [FCF_N(1+g_T) / (r - g_T)] / (1+r)^N
//
// Undefined unless r exceeds both g and g_T.
func CalculateDCF(input DCFInput) DCFResult {
	fcf0, ok := input.FCF0.Get()
	if !ok || !input.Growth.Valid || !input.Discount.Valid || input.ProjectionYears <= 0 {
		return DCFResult{}
	}
	g, r, gT := input.Growth.V, input.Discount.V, input.TerminalGrowth
	if r <= g || r <= gT {
		return DCFResult{}
	}

	var pv float64
	fcf := fcf0
	for t := 1; t <= input.ProjectionYears; t++ {
		fcf *= 1 + g
		pv += fcf / math.Pow(1+r, float64(t))
	}

	tv := fcf * (1 + gT) / (r - gT)
	pvTerminal := tv / math.Pow(1+r, float64(input.ProjectionYears))

	return DCFResult{
		EnterpriseValue: num.Some(pv + pvTerminal),
		PVProjection:    num.Some(pv),
		PVTerminal:      num.Some(pvTerminal),
		TerminalValue:   num.Some(tv),
	}
}

// OwnerEarnings is the single-stage perpetuity on normalized free cash flow.
//
// FORMULA: V = FCF0 × (1+g) / (r - g)
//
// Undefined unless r > g.
func OwnerEarnings(fcf0, g, r num.Value) num.Value {
	if !fcf0.Valid || !g.Valid || !r.Valid || r.V <= g.V {
		return num.None()
	}
	return num.Some(fcf0.V * (1 + g.V) / (r.V - g.V))
}

// EquityValue subtracts net debt from an enterprise value. Without a net-debt
// figure the total is taken to be equity already.
func EquityValue(enterprise, netDebt num.Value) num.Value {
	if !enterprise.Valid {
		return num.None()
	}
	if netDebt.Valid {
		return num.Some(enterprise.V - netDebt.V)
	}
	return enterprise
}

// PerShare divides a total by a positive share count.
func PerShare(total, shares num.Value) num.Value {
	if !total.Valid || !shares.Positive() {
		return num.None()
	}
	return num.Some(total.V / shares.V)
}
