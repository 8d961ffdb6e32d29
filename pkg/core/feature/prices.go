package feature

import (
	"fmt"
	"sort"
	"time"
)

// PricePoint is one daily close (or adjusted close).
type PricePoint struct {
	Date  time.Time `json:"date"`
	Close float64   `json:"close"`
}

// PriceSeries is a daily price history ordered by date.
type PriceSeries []PricePoint

// NewPriceSeries sorts points by date and rejects duplicate days.
func NewPriceSeries(points []PricePoint) (PriceSeries, error) {
	out := make(PriceSeries, len(points))
	copy(out, points)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	for i := 1; i < len(out); i++ {
		if !out[i].Date.After(out[i-1].Date) {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateDate, out[i].Date.Format(time.DateOnly))
		}
	}
	return out, nil
}

// Closes returns the close prices as a Series.
func (p PriceSeries) Closes() Series {
	s := make(Series, len(p))
	for i, pt := range p {
		s[i] = pt.Close
	}
	return s
}
