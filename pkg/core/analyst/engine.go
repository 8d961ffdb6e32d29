// Package analyst orchestrates the scoring components. Quality, Valuation and
// Market are independent reads of the same immutable input and run
// concurrently; Rating runs after all three.
package analyst

import (
	"errors"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"asset_analyst/pkg/core/heuristics"
	"asset_analyst/pkg/core/market"
	"asset_analyst/pkg/core/quality"
	"asset_analyst/pkg/core/rating"
	"asset_analyst/pkg/core/valuation"
)

// ErrNoFeatures is returned when Analyze is called without a feature table.
var ErrNoFeatures = errors.New("analyst: feature table is nil")

// Engine runs Quality → Valuation → Market → Rating.
type Engine struct {
	quality   *quality.Analyzer
	valuation *valuation.Engine
	market    *market.Analyzer
	rating    *rating.Engine
	logger    zerolog.Logger
}

// Option configures an Engine.
type Option func(*engineOptions)

type engineOptions struct {
	heuristics heuristics.Set
	logger     zerolog.Logger
}

// WithLogger attaches a logger. The default discards everything.
func WithLogger(l zerolog.Logger) Option {
	return func(o *engineOptions) { o.logger = l }
}

// WithHeuristics replaces the default heuristics (used by tests that probe
// individual bounds).
func WithHeuristics(h heuristics.Set) Option {
	return func(o *engineOptions) { o.heuristics = h }
}

// NewEngine creates a new instance of the engine.
func NewEngine(opts ...Option) *Engine {
	o := engineOptions{heuristics: heuristics.Default(), logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(&o)
	}
	return &Engine{
		quality:   quality.NewAnalyzer(o.heuristics.Quality),
		valuation: valuation.NewEngine(o.heuristics.Valuation),
		market:    market.NewAnalyzer(o.heuristics.Market),
		rating:    rating.NewEngine(o.heuristics.Rating),
		logger:    o.logger.With().Str("component", "analyst").Logger(),
	}
}

// Analyze performs the full analysis. Data sparsity never produces an error;
// the only failure is a missing feature table.
func (e *Engine) Analyze(in Input) (*Result, error) {
	if in.Features == nil {
		return nil, ErrNoFeatures
	}
	start := time.Now()
	log := e.logger.With().Str("ticker", in.Ticker).Logger()

	var (
		q quality.Result
		v valuation.Result
		m market.Result
		g errgroup.Group
	)

	// 1. Independent fan-out
	g.Go(func() error {
		q = e.quality.Analyze(in.Features)
		log.Debug().Str("stage", "quality").Bool("scored", q.Score.Valid).Float64("confidence", q.Confidence).Msg("stage complete")
		return nil
	})
	g.Go(func() error {
		v = e.valuation.Analyze(in.Features)
		log.Debug().Str("stage", "valuation").Bool("scored", v.FairValue.Valid).Float64("confidence", v.Conf).Msg("stage complete")
		return nil
	})
	g.Go(func() error {
		m = e.market.Analyze(market.Input{Features: in.Features, Prices: in.Prices, Override: in.MarketPrice})
		log.Debug().Str("stage", "market").Int("observations", m.Observations).Msg("stage complete")
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// 2. Fan-in
	r := e.rating.Analyze(rating.Input{
		QualityScore:      q.Score,
		QualityConfidence: q.Confidence,
		FairValue:         v.FairValue,
		FairConfidence:    v.Conf,
		Price:             m.Price,
		Volatility:        m.Volatility,
		MaxDrawdown:       m.MaxDrawdown,
	})

	log.Info().
		Str("rating", string(r.Rating)).
		Float64("total_score", r.Total).
		Float64("fair_value", v.FairValue.Or(0)).
		Dur("elapsed", time.Since(start)).
		Msg("analysis complete")

	return &Result{
		Ticker:    in.Ticker,
		Quality:   q,
		Valuation: v,
		Market:    m,
		Rating:    r,
		Summary:   summarize(q, v, m, r),
	}, nil
}
