package feature

import (
	"math"

	"asset_analyst/pkg/core/num"
)

// Series is one column of a Table ordered by date. Gaps are NaN.
type Series []float64

// Clean returns the non-missing values, preserving order.
func (s Series) Clean() Series {
	out := make(Series, 0, len(s))
	for _, v := range s {
		if num.Finite(v) {
			out = append(out, v)
		}
	}
	return out
}

// Tail returns the last n entries (all of them when n >= len).
func (s Series) Tail(n int) Series {
	if n <= 0 {
		return Series{}
	}
	if n >= len(s) {
		return s
	}
	return s[len(s)-n:]
}

// CountValid returns the number of non-missing entries.
func (s Series) CountValid() int {
	n := 0
	for _, v := range s {
		if num.Finite(v) {
			n++
		}
	}
	return n
}

// Last returns the entry of the latest period, absent when that entry is a gap.
func (s Series) Last() num.Value {
	if len(s) == 0 {
		return num.None()
	}
	return num.Some(s[len(s)-1])
}

// LastValid returns the most recent non-missing entry.
func (s Series) LastValid() num.Value {
	for i := len(s) - 1; i >= 0; i-- {
		if num.Finite(s[i]) {
			return num.Some(s[i])
		}
	}
	return num.None()
}

// At returns the entry at index i counted from the end (1 = latest).
func (s Series) At(fromEnd int) num.Value {
	if fromEnd < 1 || fromEnd > len(s) {
		return num.None()
	}
	return num.Some(s[len(s)-fromEnd])
}

// CAGR returns the compound growth rate over the last `periods` steps of the
// non-missing values: (end/start)^(1/periods) - 1. Absent when there are
// fewer than periods+1 points or either endpoint is not positive.
func (s Series) CAGR(periods int) num.Value {
	clean := s.Clean()
	if periods <= 0 || len(clean) < periods+1 {
		return num.None()
	}
	start := clean[len(clean)-periods-1]
	end := clean[len(clean)-1]
	if start <= 0 || end <= 0 {
		return num.None()
	}
	return num.Some(math.Pow(end/start, 1/float64(periods)) - 1)
}
