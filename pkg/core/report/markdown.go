package report

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"asset_analyst/pkg/core/analyst"
	"asset_analyst/pkg/core/num"
)

// Missing is rendered for absent values.
const Missing = "N/D"

// lowConfidence marks figures built on less than half the evidence.
const lowConfidence = 0.5

// Money formats a per-share amount in the given ISO currency.
func Money(v num.Value, currency string) string {
	if !v.Valid {
		return Missing
	}
	cur := money.GetCurrency(currency)
	if cur == nil {
		return fmt.Sprintf("%.2f %s", v.V, currency)
	}
	factor, _ := decimal.NewFromInt(10).PowInt32(int32(cur.Fraction))
	minor := decimal.NewFromFloat(v.V).Mul(factor).Round(0)
	return money.New(minor.IntPart(), currency).Display()
}

func percent(v num.Value) string {
	if !v.Valid {
		return Missing
	}
	return fmt.Sprintf("%.1f%%", v.V*100)
}

func score(v num.Value) string {
	if !v.Valid {
		return Missing
	}
	return fmt.Sprintf("%.1f", v.V)
}

func confidence(c float64) string {
	s := fmt.Sprintf("%.0f%%", c*100)
	if c < lowConfidence {
		s += " (low confidence)"
	}
	return s
}

// Markdown renders a one-page summary of a run.
func Markdown(res *analyst.Result, rep Report, currency string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s Analyst Report\n\n", rep.Ticker)

	b.WriteString("## Investment Snapshot\n\n")
	b.WriteString("| Field | Value |\n|---|---|\n")
	fmt.Fprintf(&b, "| Current price | %s |\n", Money(rep.CurrentPrice, currency))
	fmt.Fprintf(&b, "| Fair value | %s |\n", Money(rep.FairValue, currency))
	fmt.Fprintf(&b, "| Upside | %s |\n", percent(rep.Upside))
	fmt.Fprintf(&b, "| Rating | **%s** |\n", rep.Rating)
	fmt.Fprintf(&b, "| Total score | %.1f (confidence %s) |\n\n", rep.TotalScore, confidence(rep.RatingConfidence))

	b.WriteString("## Valuation\n\n")
	b.WriteString("| Model | Per share |\n|---|---|\n")
	fmt.Fprintf(&b, "| DCF | %s |\n", Money(rep.DCFValue, currency))
	fmt.Fprintf(&b, "| Owner earnings | %s |\n", Money(rep.BuffettValue, currency))
	fmt.Fprintf(&b, "| Multiples | %s |\n", Money(rep.MultiplesValue, currency))
	fmt.Fprintf(&b, "\nConfidence: %s\n\n", confidence(rep.ValuationConfidence))

	names := make([]string, 0, len(res.Valuation.Scenarios))
	for name := range res.Valuation.Scenarios {
		names = append(names, name)
	}
	sort.Strings(names)
	b.WriteString("| Scenario | g | r | Terminal g | P/E | Fair value |\n|---|---|---|---|---|---|\n")
	for _, name := range names {
		sc := res.Valuation.Scenarios[name]
		a := sc.Assumptions
		fmt.Fprintf(&b, "| %s | %s | %s | %.1f%% | %.0f | %s |\n",
			name, percent(a.Growth), percent(a.Discount), a.TerminalGrowth*100, a.FairPE, Money(sc.FairValue, currency))
	}
	b.WriteString("\n")

	b.WriteString("## Business Quality\n\n")
	b.WriteString("| Dimension | Score | Confidence |\n|---|---|---|\n")
	q := res.Quality
	fmt.Fprintf(&b, "| Profitability | %s | %s |\n", score(q.Profitability.Score), confidence(q.Profitability.Conf))
	fmt.Fprintf(&b, "| Growth quality | %s | %s |\n", score(q.Growth.Score), confidence(q.Growth.Conf))
	fmt.Fprintf(&b, "| Financial strength | %s | %s |\n", score(q.Strength.Score), confidence(q.Strength.Conf))
	fmt.Fprintf(&b, "| Stability | %s | %s |\n", score(q.Stability.Score), confidence(q.Stability.Conf))
	fmt.Fprintf(&b, "| **Overall** | %s | %s |\n\n", score(q.Score), confidence(q.Confidence))

	b.WriteString("## Market\n\n")
	m := res.Market
	fmt.Fprintf(&b, "- Volatility (annualized): %s\n", percent(m.Volatility))
	fmt.Fprintf(&b, "- Max drawdown: %s\n", percent(m.MaxDrawdown))
	if m.Returns != nil {
		fmt.Fprintf(&b, "- Returns: 1Y %s, 3Y %s, 5Y %s\n", percent(m.Returns.OneYear), percent(m.Returns.ThreeYear), percent(m.Returns.FiveYear))
	} else {
		fmt.Fprintf(&b, "- Returns: %s\n", Missing)
	}
	fmt.Fprintf(&b, "- P/E: %s, P/FCF: %s\n\n", score(m.Multiples.PE), score(m.Multiples.PFCF))

	b.WriteString("## Rating\n\n")
	b.WriteString("| Component | Score |\n|---|---|\n")
	fmt.Fprintf(&b, "| Value | %.1f |\n", rep.ValueScore)
	fmt.Fprintf(&b, "| Quality | %.1f |\n", res.Rating.Quality)
	fmt.Fprintf(&b, "| Market | %.1f |\n", rep.MarketScore)
	fmt.Fprintf(&b, "| Risk | %.1f |\n", rep.RiskScore)

	return b.String()
}

// HTML converts Markdown to an HTML fragment (GFM tables enabled).
func HTML(markdown string) (string, error) {
	md := goldmark.New(goldmark.WithExtensions(extension.Table))
	var buf bytes.Buffer
	if err := md.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("failed to render report: %w", err)
	}
	return buf.String(), nil
}
