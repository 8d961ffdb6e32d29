// Package rating blends quality, valuation and market outputs into four
// 0–100 sub-scores, a confidence-weighted total and a BUY/HOLD/SELL label.
// Every sub-score falls back to a neutral value, so a rating is always produced.
package rating

import (
	"asset_analyst/pkg/core/heuristics"
	"asset_analyst/pkg/core/num"
)

// Label is the discrete investment rating.
type Label string

const (
	Buy  Label = "BUY"
	Hold Label = "HOLD"
	Sell Label = "SELL"
)

// LabelFor maps a total score onto the fixed thresholds.
func LabelFor(total float64) Label {
	switch {
	case total >= heuristics.BuyThreshold:
		return Buy
	case total >= heuristics.HoldThreshold:
		return Hold
	default:
		return Sell
	}
}

// Input is the slice of upstream results the rating reads.
type Input struct {
	QualityScore      num.Value
	QualityConfidence float64
	FairValue         num.Value
	FairConfidence    float64
	Price             num.Value
	Volatility        num.Value
	MaxDrawdown       num.Value
}

// SubScore is one weighted component of the total.
type SubScore struct {
	Score  float64 `json:"score"`
	Weight float64 `json:"confidence"`
}

// Result is the Rating Engine output.
type Result struct {
	Value           float64 `json:"value_score"`
	Quality         float64 `json:"quality_score"`
	Market          float64 `json:"market_score"`
	Risk            float64 `json:"risk_score"`
	Total           float64 `json:"total_score"`
	ScoreConfidence float64 `json:"score_confidence"`
	Rating          Label   `json:"rating"`
}

// Engine computes ratings.
type Engine struct {
	cfg heuristics.Rating
}

// NewEngine creates a rating engine.
func NewEngine(cfg heuristics.Rating) *Engine {
	return &Engine{cfg: cfg}
}

func clamp(x float64) float64 { return num.Clip(x, 0, 100) }

// ValueScore rewards upside of fair value over price.
// Confidence comes from the valuation.
func (e *Engine) ValueScore(in Input) SubScore {
	if !in.FairValue.Valid || !in.Price.Positive() {
		return SubScore{Score: e.cfg.Neutral, Weight: in.FairConfidence}
	}
	upside := in.FairValue.V/in.Price.V - 1
	return SubScore{Score: clamp(e.cfg.Neutral + upside*e.cfg.UpsideWeight), Weight: in.FairConfidence}
}

// QualityScore passes the quality score through.
func (e *Engine) QualityScore(in Input) SubScore {
	if !in.QualityScore.Valid {
		return SubScore{Score: e.cfg.Neutral, Weight: in.QualityConfidence}
	}
	return SubScore{Score: clamp(in.QualityScore.V), Weight: in.QualityConfidence}
}

// MarketScore penalises volatility and drawdown (drawdown is negative).
func (e *Engine) MarketScore(in Input) SubScore {
	if !in.Volatility.Valid && !in.MaxDrawdown.Valid {
		return SubScore{Score: e.cfg.Neutral}
	}
	score := 100.0
	if in.Volatility.Valid {
		score -= in.Volatility.V * e.cfg.VolatilityWeight
	}
	if in.MaxDrawdown.Valid {
		score += in.MaxDrawdown.V * e.cfg.DrawdownWeight
	}
	return SubScore{Score: clamp(score), Weight: 1}
}

// RiskScore penalises volatility and a price above fair value.
func (e *Engine) RiskScore(in Input) SubScore {
	priced := in.FairValue.Valid && in.Price.Valid
	if !in.Volatility.Valid && !priced {
		return SubScore{Score: e.cfg.Neutral}
	}
	score := 100.0
	if in.Volatility.Valid {
		score -= in.Volatility.V * e.cfg.RiskVolatility
	}
	if priced && in.Price.V > in.FairValue.V {
		score -= e.cfg.OvervaluationCharge
	}
	return SubScore{Score: clamp(score), Weight: 1}
}

// Analyze computes the four sub-scores and the confidence-weighted total.
// With no evidence at all the total is the unweighted mean and the label is
// the neutral HOLD.
func (e *Engine) Analyze(in Input) Result {
	subs := []SubScore{e.ValueScore(in), e.QualityScore(in), e.MarketScore(in), e.RiskScore(in)}

	var weighted, weights, plain float64
	for _, s := range subs {
		weighted += s.Score * s.Weight
		weights += s.Weight
		plain += s.Score
	}
	n := float64(len(subs))

	// The label reads the reported (rounded) total so the two never disagree.
	total := num.Round(plain/n, 1)
	label := Hold
	if weights > 0 {
		total = num.Round(weighted/weights, 1)
		label = LabelFor(total)
	}

	return Result{
		Value:           num.Round(subs[0].Score, 1),
		Quality:         num.Round(subs[1].Score, 1),
		Market:          num.Round(subs[2].Score, 1),
		Risk:            num.Round(subs[3].Score, 1),
		Total:           total,
		ScoreConfidence: num.Round(weights/n, 2),
		Rating:          label,
	}
}
