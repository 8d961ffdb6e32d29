// Package market reads a price history: current price, trailing returns,
// annualized volatility, maximum drawdown and simple market multiples.
package market

import (
	"math"

	"asset_analyst/pkg/core/coverage"
	"asset_analyst/pkg/core/feature"
	"asset_analyst/pkg/core/heuristics"
	"asset_analyst/pkg/core/num"
)

// Returns are trailing total price returns.
type Returns struct {
	OneYear   num.Value `json:"1Y"`
	ThreeYear num.Value `json:"3Y"`
	FiveYear  num.Value `json:"5Y"`
}

// Multiples are price ratios against the latest fundamentals.
type Multiples struct {
	PE   num.Value `json:"PE"`
	PFCF num.Value `json:"P_FCF"`
}

// Result is the Market Analyzer output.
type Result struct {
	Price        num.Value `json:"market_price"`
	Returns      *Returns  `json:"returns"` // nil below one year of history
	Volatility   num.Value `json:"volatility"`
	MaxDrawdown  num.Value `json:"max_drawdown"`
	Multiples    Multiples `json:"multiples"`
	Observations int       `json:"observations"`
}

// Input bundles what the analyzer reads. Prices and Override are optional.
type Input struct {
	Features *feature.Table
	Prices   feature.PriceSeries
	Override num.Value
}

// Analyzer computes the market block.
type Analyzer struct {
	cfg heuristics.Market
}

// NewAnalyzer creates an analyzer.
func NewAnalyzer(cfg heuristics.Market) *Analyzer {
	return &Analyzer{cfg: cfg}
}

// closes resolves the close series: the explicit price history when given,
// else price-like columns of the feature table.
func closes(in Input, fields []string) (feature.Series, bool) {
	if len(in.Prices) > 0 {
		return in.Prices.Closes(), true
	}
	return in.Features.Lookup(fields...)
}

// Price resolves the current price. An override wins over any series.
func (a *Analyzer) Price(in Input) num.Value {
	if in.Override.Valid {
		return in.Override
	}
	s, ok := closes(in, feature.PriceFields)
	if !ok {
		return num.None()
	}
	return s.LastValid()
}

// Returns computes trailing returns. Nil when fewer than one year of
// observations exist; longer horizons are absent until their history exists.
func (a *Analyzer) Returns(in Input) *Returns {
	s, ok := closes(in, feature.ReturnFields)
	if !ok {
		return nil
	}
	p := s.Clean()
	if len(p) < a.cfg.OneYear {
		return nil
	}
	horizon := func(days int) num.Value {
		if len(p) < days {
			return num.None()
		}
		return num.Sub(num.Div(p.At(1), p.At(days)), num.Some(1))
	}
	return &Returns{
		OneYear:   horizon(a.cfg.OneYear),
		ThreeYear: horizon(a.cfg.ThreeYear),
		FiveYear:  horizon(a.cfg.FiveYear),
	}
}

// Volatility is the sample std-dev of daily percentage changes × √TradingDays.
func (a *Analyzer) Volatility(in Input) num.Value {
	s, ok := closes(in, feature.ReturnFields)
	if !ok {
		return num.None()
	}
	p := s.Clean()
	changes := make([]float64, 0, len(p))
	for i := 1; i < len(p); i++ {
		if math.Abs(p[i-1]) < num.Eps {
			continue
		}
		changes = append(changes, p[i]/p[i-1]-1)
	}
	if len(changes) < 2 {
		return num.None()
	}
	return num.Some(coverage.StdDev(changes) * math.Sqrt(float64(a.cfg.TradingDays)))
}

// MaxDrawdown is the minimum of cumulative/running-peak − 1 over the series.
func (a *Analyzer) MaxDrawdown(in Input) num.Value {
	s, ok := closes(in, feature.ReturnFields)
	if !ok {
		return num.None()
	}
	p := s.Clean()
	if len(p) == 0 || p[0] <= 0 {
		return num.None()
	}
	peak := math.Inf(-1)
	worst := 0.0
	for _, price := range p {
		cum := price / p[0]
		if cum > peak {
			peak = cum
		}
		if dd := cum/peak - 1; dd < worst {
			worst = dd
		}
	}
	return num.Some(worst)
}

// Multiples prices the latest net income and free cash flow per share.
func (a *Analyzer) Multiples(in Input, price num.Value) Multiples {
	var m Multiples
	shares, ok := in.Features.Field(feature.SharesOutstanding)
	if !ok {
		return m
	}
	sh := shares.Last()
	ratio := func(concept string) num.Value {
		s, ok := in.Features.Field(concept)
		if !ok {
			return num.None()
		}
		v := s.Last()
		if !v.Positive() || !sh.Positive() {
			return num.None()
		}
		return num.Div(price, num.Div(v, sh))
	}
	m.PE = ratio(feature.NetIncome)
	m.PFCF = ratio(feature.FreeCashFlow)
	return m
}

// Analyze builds the full market block.
func (a *Analyzer) Analyze(in Input) Result {
	price := a.Price(in)
	obs := 0
	if s, ok := closes(in, feature.ReturnFields); ok {
		obs = s.CountValid()
	}
	return Result{
		Price:        price,
		Returns:      a.Returns(in),
		Volatility:   a.Volatility(in),
		MaxDrawdown:  a.MaxDrawdown(in),
		Multiples:    a.Multiples(in, price),
		Observations: obs,
	}
}
