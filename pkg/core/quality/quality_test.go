package quality

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"asset_analyst/pkg/core/feature"
	"asset_analyst/pkg/core/heuristics"
)

func newAnalyzer() *Analyzer {
	return NewAnalyzer(heuristics.Default().Quality)
}

func mustTable(t *testing.T, years int, cols map[string][]float64) *feature.Table {
	t.Helper()
	table, err := feature.FromColumns(feature.YearEnds(2020, years), cols)
	require.NoError(t, err)
	return table
}

func TestProfitability(t *testing.T) {
	table := mustTable(t, 5, map[string][]float64{
		feature.OperatingMargin: {0.25, 0.25, 0.25, 0.25, 0.25},
		feature.NetMargin:       {0.10, 0.10, 0.10, 0.10, 0.10},
	})
	res := newAnalyzer().Analyze(table)

	p := res.Profitability
	require.True(t, p.Score.Valid)
	// operating 80, net 41.18
	assert.InDelta(t, 60.588, p.Score.V, 1e-3)
	assert.Equal(t, 1.0, p.Conf)
	assert.InDelta(t, 0.25, p.Metrics[MetricOperatingMarginAvg].V, 1e-12)
}

func TestProfitability_FallbackWindow(t *testing.T) {
	nan := math.NaN()
	table := mustTable(t, 5, map[string][]float64{
		feature.OperatingMargin: {nan, nan, 0.30, 0.30, 0.30},
	})
	p := newAnalyzer().Analyze(table).Profitability
	require.True(t, p.Score.Valid)
	assert.Equal(t, 100.0, p.Score.V)
	assert.InDelta(t, 0.6, p.Conf, 1e-12, "three of five preferred years")

	short := mustTable(t, 2, map[string][]float64{feature.OperatingMargin: {0.3, 0.3}})
	p = newAnalyzer().Analyze(short).Profitability
	assert.False(t, p.Score.Valid)
	assert.Equal(t, 0.0, p.Conf)
}

func TestGrowth_CashConversionPenalty(t *testing.T) {
	table := mustTable(t, 3, map[string][]float64{
		feature.Revenue:      {100, 110, 121},
		feature.FreeCashFlow: {50, 50, 50},
	})
	g := newAnalyzer().Analyze(table).Growth
	require.True(t, g.Score.Valid)
	// revenue 66.67, fcf 0, penalty 20
	assert.InDelta(t, (200.0/3.0+0+20)/3, g.Score.V, 1e-6)
	assert.InDelta(t, 0.6, g.Conf, 1e-12)
	assert.InDelta(t, 0.10, g.Metrics[MetricRevenueGrowth].V, 1e-12)
}

func TestGrowth_NoPenaltyWhenCashKeepsUp(t *testing.T) {
	table := mustTable(t, 3, map[string][]float64{
		feature.Revenue:      {100, 110, 121},
		feature.FreeCashFlow: {50, 55, 60.5},
	})
	g := newAnalyzer().Analyze(table).Growth
	assert.InDelta(t, 200.0/3.0, g.Score.V, 1e-6)
}

func TestGrowth_NetIncomeFallback(t *testing.T) {
	table := mustTable(t, 3, map[string][]float64{
		feature.NetIncome: {10, 10, 10},
	})
	g := newAnalyzer().Analyze(table).Growth
	require.True(t, g.Score.Valid)
	assert.Equal(t, 0.0, g.Score.V)
	_, ok := g.Metrics[MetricNetIncomeGrowth]
	assert.True(t, ok)
}

func TestGrowth_NonPositiveEndpointsAreAbsent(t *testing.T) {
	table := mustTable(t, 3, map[string][]float64{
		feature.Revenue: {-100, 50, 100},
	})
	g := newAnalyzer().Analyze(table).Growth
	assert.False(t, g.Score.Valid, "negative start has no defined CAGR")
}

func TestStrength(t *testing.T) {
	table := mustTable(t, 2, map[string][]float64{
		feature.DebtToEquity: {0.5, 0.3},
		feature.DebtToAssets: {0.4, 0.4},
		feature.CurrentRatio: {2.0, math.NaN()},
	})
	s := newAnalyzer().Analyze(table).Strength
	require.True(t, s.Score.Valid)
	// debt-to-equity 88, current ratio 50 (latest valid)
	assert.InDelta(t, 69, s.Score.V, 1e-9)
	assert.InDelta(t, 1.0/3.0, s.Conf, 1e-12)
	_, usedAssets := s.Metrics[MetricDebtToAssets]
	assert.False(t, usedAssets, "debt-to-assets only stands in for debt-to-equity")

	fallback := mustTable(t, 1, map[string][]float64{feature.DebtToAssets: {0.4}})
	s = newAnalyzer().Analyze(fallback).Strength
	assert.InDelta(t, 60, s.Score.V, 1e-9)
}

func TestStability(t *testing.T) {
	table := mustTable(t, 4, map[string][]float64{
		feature.NetIncome:       {10, 10, 10, 10},
		feature.OperatingMargin: {0.20, 0.20, 0.20, 0.20},
	})
	s := newAnalyzer().Analyze(table).Stability
	require.True(t, s.Score.Valid)
	assert.InDelta(t, 100, s.Score.V, 1e-9)
	assert.InDelta(t, 0.8, s.Conf, 1e-12)
}

func TestAnalyze_RequiresTwoDimensions(t *testing.T) {
	one := mustTable(t, 5, map[string][]float64{
		feature.OperatingMargin: {0.3, 0.3, 0.3, 0.3, 0.3},
	})
	// operating margin feeds both profitability and stability
	res := newAnalyzer().Analyze(one)
	assert.True(t, res.Score.Valid)

	single := mustTable(t, 1, map[string][]float64{feature.CurrentRatio: {2}})
	res = newAnalyzer().Analyze(single)
	assert.True(t, res.Strength.Score.Valid)
	assert.False(t, res.Score.Valid, "a single dimension is not a quality score")
	assert.Equal(t, 0.0, res.Confidence)
}

func TestAnalyze_EmptyTable(t *testing.T) {
	res := newAnalyzer().Analyze(mustTable(t, 0, nil))
	assert.False(t, res.Score.Valid)
	for _, d := range res.Dimensions() {
		assert.False(t, d.Score.Valid)
		assert.Equal(t, 0.0, d.Conf)
	}
}

func TestAnalyze_ConfidenceAveragesPositiveDimensions(t *testing.T) {
	table := mustTable(t, 5, map[string][]float64{
		feature.OperatingMargin: {0.25, 0.25, 0.25, 0.25, 0.25},
		feature.CurrentRatio:    {2, 2, 2, 2, 2},
	})
	res := newAnalyzer().Analyze(table)
	require.True(t, res.Score.Valid)
	// profitability 1, strength 1/3, stability 1; growth has no evidence
	assert.InDelta(t, (1+1.0/3.0+1)/3, res.Confidence, 1e-12)
}
