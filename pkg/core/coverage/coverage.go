// Package coverage turns short, gappy time series into confidence-bearing
// results. Confidence is always derived from how much evidence was usable:
// years_used / years_required, capped at 1, and 0 when nothing could be computed.
package coverage

import (
	"gonum.org/v1/gonum/stat"

	"asset_analyst/pkg/core/feature"
	"asset_analyst/pkg/core/num"
)

// Default trailing windows.
const (
	PreferredYears = 5
	MinimumYears   = 3
)

// Estimate is anything carrying a possibly-absent value and a confidence.
// Both MetricResult and Point satisfy it, so aggregation needs no type switch.
type Estimate interface {
	Estimate() num.Value
	Confidence() float64
}

// Reducer collapses a window of non-missing values into one number.
type Reducer func([]float64) float64

// Mean is the arithmetic mean.
func Mean(xs []float64) float64 { return stat.Mean(xs, nil) }

// StdDev is the sample standard deviation (n-1 denominator).
func StdDev(xs []float64) float64 { return stat.StdDev(xs, nil) }

// Last returns the most recent value of the window.
func Last(xs []float64) float64 { return xs[len(xs)-1] }

// MetricResult is the atomic confidence-bearing computation.
// It is created once and never mutated.
type MetricResult struct {
	Value         num.Value `json:"value"`
	YearsUsed     int       `json:"years_used"`
	YearsRequired int       `json:"years_required"`
	Conf          float64   `json:"confidence"`
}

func (m MetricResult) Estimate() num.Value { return m.Value }
func (m MetricResult) Confidence() float64 { return m.Conf }

// Point is a plain {value, confidence} record.
type Point struct {
	Value num.Value `json:"value"`
	Conf  float64   `json:"confidence"`
}

func (p Point) Estimate() num.Value { return p.Value }
func (p Point) Confidence() float64 { return p.Conf }

// Ratio returns used/required capped at 1; 0 when required is not positive.
func Ratio(used, required int) float64 {
	if required <= 0 || used <= 0 {
		return 0
	}
	c := float64(used) / float64(required)
	if c > 1 {
		return 1
	}
	return c
}

// ComputeWithFallback drops gaps from series and, when at least minimumYears
// points remain, reduces the most recent min(count, preferredYears) of them.
// A nil reducer means Mean.
func ComputeWithFallback(series feature.Series, preferredYears, minimumYears int, reducer Reducer) MetricResult {
	if reducer == nil {
		reducer = Mean
	}
	clean := series.Clean()
	if len(clean) == 0 || len(clean) < minimumYears {
		return MetricResult{YearsUsed: len(clean), YearsRequired: preferredYears}
	}

	window := clean.Tail(preferredYears)
	used := len(window)
	return MetricResult{
		Value:         num.Some(reducer(window)),
		YearsUsed:     used,
		YearsRequired: preferredYears,
		Conf:          Ratio(used, preferredYears),
	}
}

// Aggregate is the combination of several estimates.
type Aggregate struct {
	Value num.Value `json:"value"`
	Used  int       `json:"used"`
	Total int       `json:"total"`
	Conf  float64   `json:"confidence"`
}

func (a Aggregate) Estimate() num.Value { return a.Value }
func (a Aggregate) Confidence() float64 { return a.Conf }

// AggregateMetricResults averages the present estimates and their confidences.
// Nil entries are skipped but still count toward Total. With fewer than
// minValid present values the aggregate is absent with confidence 0.
func AggregateMetricResults(results []Estimate, minValid int) Aggregate {
	var values, confs []float64
	for _, r := range results {
		if r == nil {
			continue
		}
		if v, ok := r.Estimate().Get(); ok {
			values = append(values, v)
			confs = append(confs, r.Confidence())
		}
	}

	agg := Aggregate{Used: len(values), Total: len(results)}
	if len(values) == 0 || len(values) < minValid {
		return agg
	}
	agg.Value = num.Some(stat.Mean(values, nil))
	agg.Conf = stat.Mean(confs, nil)
	return agg
}

// Blend averages the present values and sets confidence to present/total.
// A single present value is enough; no minimum floor applies.
func Blend(values ...num.Value) Aggregate {
	agg := Aggregate{Total: len(values)}
	var present []float64
	for _, v := range values {
		if x, ok := v.Get(); ok {
			present = append(present, x)
		}
	}
	agg.Used = len(present)
	if len(present) == 0 {
		return agg
	}
	agg.Value = num.Some(stat.Mean(present, nil))
	agg.Conf = float64(len(present)) / float64(len(values))
	return agg
}
