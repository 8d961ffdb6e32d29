package report

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"asset_analyst/pkg/core/analyst"
	"asset_analyst/pkg/core/feature"
	"asset_analyst/pkg/core/num"
)

func analyze(t *testing.T, price num.Value) *analyst.Result {
	t.Helper()
	table, err := feature.FromColumns(feature.YearEnds(2021, 3), map[string][]float64{
		feature.NetIncome:         {40, 45, 50},
		feature.SharesOutstanding: {10, 10, 10},
		feature.OperatingMargin:   {0.2, 0.2, 0.2},
		feature.CurrentRatio:      {2, 2, 2},
	})
	require.NoError(t, err)
	res, err := analyst.NewEngine().Analyze(analyst.Input{Ticker: "ACME", Features: table, MarketPrice: price})
	require.NoError(t, err)
	return res
}

func TestUpside(t *testing.T) {
	assert.InDelta(t, 0.2, Upside(num.Some(120), num.Some(100)).V, 1e-12)
	assert.False(t, Upside(num.None(), num.Some(100)).Valid)
	assert.False(t, Upside(num.Some(120), num.Some(0)).Valid)
}

func TestBuild(t *testing.T) {
	res := analyze(t, num.Some(60))
	rep := Build(res, num.None())

	assert.Equal(t, "ACME", rep.Ticker)
	assert.Equal(t, 60.0, rep.CurrentPrice.V)
	assert.Equal(t, 75.0, rep.FairValue.V)
	assert.InDelta(t, 0.25, rep.Upside.V, 1e-12)
	assert.Equal(t, res.Rating.Rating, rep.Rating)
	assert.Equal(t, res.Rating.ScoreConfidence, rep.RatingConfidence)
	assert.False(t, rep.DCFValue.Valid)

	quoted := Build(res, num.Some(75))
	assert.Equal(t, 75.0, quoted.CurrentPrice.V, "a live quote replaces the market price")
	assert.InDelta(t, 0, quoted.Upside.V, 1e-12)
}

func TestMoney(t *testing.T) {
	assert.Equal(t, "$84.10", Money(num.Some(84.1), "USD"))
	assert.Equal(t, Missing, Money(num.None(), "USD"))
	assert.Equal(t, "12.50 XYZ", Money(num.Some(12.5), "XYZ"))
}

func TestMarkdown(t *testing.T) {
	res := analyze(t, num.None())
	md := Markdown(res, Build(res, num.None()), "USD")

	assert.True(t, strings.HasPrefix(md, "# ACME Analyst Report"))
	assert.Contains(t, md, "| Fair value | $75.00 |")
	assert.Contains(t, md, "| Current price | N/D |")
	assert.Contains(t, md, "| DCF | N/D |")
	assert.Contains(t, md, "(low confidence)")
	assert.Contains(t, md, "| bear |")
	assert.Contains(t, md, "| bull |")
	assert.Contains(t, md, "- Returns: N/D")
}

func TestHTML(t *testing.T) {
	res := analyze(t, num.Some(60))
	out, err := HTML(Markdown(res, Build(res, num.None()), "USD"))
	require.NoError(t, err)

	assert.Contains(t, out, "<h1>ACME Analyst Report</h1>")
	assert.Contains(t, out, "<table>")
	assert.Contains(t, out, "<strong>")
}
