package valuation

import "asset_analyst/pkg/core/num"

// MultiplesInput holds the latest-period earnings data.
type MultiplesInput struct {
	NetIncome num.Value
	Shares    num.Value
}

// EPS returns earnings per share, absent for a non-positive share count.
func (m MultiplesInput) EPS() num.Value {
	if !m.Shares.Positive() {
		return num.None()
	}
	return num.Div(m.NetIncome, m.Shares)
}

// CalculateMultiples values a share at a target fair P/E.
//
// FORMULA: V = EPS × PE_fair
//
// Undefined for non-positive EPS.
func CalculateMultiples(input MultiplesInput, fairPE float64) num.Value {
	eps := input.EPS()
	if !eps.Positive() {
		return num.None()
	}
	return num.Some(eps.V * fairPE)
}
