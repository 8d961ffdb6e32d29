// Package num provides the optional float used across the scoring core.
// An absent Value is never used in arithmetic: every helper checks Valid first.
package num

import (
	"encoding/json"
	"math"

	"github.com/shopspring/decimal"
)

// Eps guards divisions by near-zero denominators.
const Eps = 1e-6

// Value is a float64 that may be absent ("N/D").
type Value struct {
	V     float64
	Valid bool
}

// Some wraps x. Non-finite inputs (NaN, ±Inf) produce an absent Value.
func Some(x float64) Value {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return Value{}
	}
	return Value{V: x, Valid: true}
}

// None returns an absent Value.
func None() Value { return Value{} }

// Get returns the wrapped float and whether it is present.
func (v Value) Get() (float64, bool) { return v.V, v.Valid }

// Or returns the wrapped float, or def when absent.
func (v Value) Or(def float64) float64 {
	if !v.Valid {
		return def
	}
	return v.V
}

// Float returns the wrapped float, or NaN when absent.
func (v Value) Float() float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.V
}

// Positive reports whether the value is present and strictly greater than zero.
func (v Value) Positive() bool { return v.Valid && v.V > 0 }

// Round rounds a present value to the given number of decimal places.
func (v Value) Round(places int32) Value {
	if !v.Valid {
		return v
	}
	return Value{V: Round(v.V, places), Valid: true}
}

// MarshalJSON encodes absent values as null.
func (v Value) MarshalJSON() ([]byte, error) {
	if !v.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(v.V)
}

// UnmarshalJSON accepts a number or null.
func (v *Value) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*v = Value{}
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*v = Some(f)
	return nil
}

// Round rounds x half away from zero to the given number of decimal places.
func Round(x float64, places int32) float64 {
	if !Finite(x) {
		return x
	}
	return decimal.NewFromFloat(x).Round(places).InexactFloat64()
}

// Clip bounds x to [lo, hi].
func Clip(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, x))
}

// Finite reports whether x is neither NaN nor infinite.
func Finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

// Div divides a by b. The result is absent when either operand is absent
// or |b| is below Eps.
func Div(a, b Value) Value {
	if !a.Valid || !b.Valid || math.Abs(b.V) < Eps {
		return Value{}
	}
	return Some(a.V / b.V)
}

// Sub returns a-b, absent unless both are present.
func Sub(a, b Value) Value {
	if !a.Valid || !b.Valid {
		return Value{}
	}
	return Some(a.V - b.V)
}

// Mean averages the present values. The result is absent when none are present.
func Mean(values ...Value) Value {
	var sum float64
	n := 0
	for _, v := range values {
		if v.Valid {
			sum += v.V
			n++
		}
	}
	if n == 0 {
		return Value{}
	}
	return Some(sum / float64(n))
}

// CountValid returns the number of present values.
func CountValid(values ...Value) int {
	n := 0
	for _, v := range values {
		if v.Valid {
			n++
		}
	}
	return n
}
