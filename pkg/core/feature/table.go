// Package feature holds the engine's input: a Feature Table of fiscal periods
// and an optional daily Price Series. Both are read-only once built.
package feature

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"
)

// ErrDuplicateDate is returned when two rows share a period date.
var ErrDuplicateDate = errors.New("duplicate period date")

// Row is one fiscal period. Missing fields are simply not present in Fields.
type Row struct {
	Date   time.Time
	Fields map[string]float64
}

// Table is an ordered, immutable set of fiscal-period rows.
// Columns are stored densely with NaN marking gaps.
type Table struct {
	dates   []time.Time
	columns map[string][]float64
}

// NewTable sorts rows by date and builds the column store.
// Rows sharing a date are rejected.
func NewTable(rows []Row) (*Table, error) {
	sorted := make([]Row, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })

	t := &Table{
		dates:   make([]time.Time, len(sorted)),
		columns: make(map[string][]float64),
	}
	for i, r := range sorted {
		if i > 0 && !r.Date.After(sorted[i-1].Date) {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateDate, r.Date.Format(time.DateOnly))
		}
		t.dates[i] = r.Date
		for name := range r.Fields {
			if _, ok := t.columns[name]; !ok {
				col := make([]float64, len(sorted))
				for k := range col {
					col[k] = math.NaN()
				}
				t.columns[name] = col
			}
		}
	}
	for i, r := range sorted {
		for name, v := range r.Fields {
			t.columns[name][i] = v
		}
	}
	return t, nil
}

// Len returns the number of periods.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.dates)
}

// Dates returns a copy of the period dates.
func (t *Table) Dates() []time.Time {
	if t == nil {
		return nil
	}
	out := make([]time.Time, len(t.dates))
	copy(out, t.dates)
	return out
}

// Has reports whether the column exists (possibly all gaps).
func (t *Table) Has(name string) bool {
	if t == nil {
		return false
	}
	_, ok := t.columns[name]
	return ok
}

// Column returns a copy of the named column.
func (t *Table) Column(name string) (Series, bool) {
	if t == nil {
		return nil, false
	}
	col, ok := t.columns[name]
	if !ok {
		return nil, false
	}
	out := make(Series, len(col))
	copy(out, col)
	return out, true
}

// Lookup returns the first column present among names. The boolean is false
// when none exist; callers must treat that as "not found", never as zeros.
func (t *Table) Lookup(names ...string) (Series, bool) {
	for _, name := range names {
		if s, ok := t.Column(name); ok {
			return s, true
		}
	}
	return nil, false
}

// Field resolves a concept through its alias list.
func (t *Table) Field(concept string) (Series, bool) {
	return t.Lookup(Names(concept)...)
}

// Columns returns the column names in sorted order.
func (t *Table) Columns() []string {
	if t == nil {
		return nil
	}
	names := make([]string, 0, len(t.columns))
	for name := range t.columns {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Rows reconstructs the rows, omitting gaps.
func (t *Table) Rows() []Row {
	if t == nil {
		return nil
	}
	rows := make([]Row, len(t.dates))
	for i, d := range t.dates {
		rows[i] = Row{Date: d, Fields: make(map[string]float64)}
		for name, col := range t.columns {
			if !math.IsNaN(col[i]) {
				rows[i].Fields[name] = col[i]
			}
		}
	}
	return rows
}

// FromColumns builds a table from parallel columns. Every column must have
// one entry per date; NaN marks a gap.
func FromColumns(dates []time.Time, columns map[string][]float64) (*Table, error) {
	rows := make([]Row, len(dates))
	for i, d := range dates {
		rows[i] = Row{Date: d, Fields: make(map[string]float64, len(columns))}
	}
	for name, col := range columns {
		if len(col) != len(dates) {
			return nil, fmt.Errorf("column %s: %d values for %d dates", name, len(col), len(dates))
		}
		for i, v := range col {
			rows[i].Fields[name] = v
		}
	}
	return NewTable(rows)
}

// YearEnds returns n consecutive fiscal year-end dates starting at firstYear.
func YearEnds(firstYear, n int) []time.Time {
	out := make([]time.Time, n)
	for i := range out {
		out[i] = time.Date(firstYear+i, time.December, 31, 0, 0, 0, 0, time.UTC)
	}
	return out
}
