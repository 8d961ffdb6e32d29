package feature

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"
)

// ErrNoDateColumn is returned when a CSV header has no date column.
var ErrNoDateColumn = errors.New("missing date column")

var dateLayouts = []string{time.DateOnly, time.RFC3339, "2006-01-02 15:04:05"}

// ParseDate accepts the date layouts written by the feature store.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", s)
}

// parseCell maps empty and "nan"-like cells to NaN.
func parseCell(s string) (float64, error) {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "", "nan", "null", "none", "n/a", "n/d":
		return math.NaN(), nil
	}
	return strconv.ParseFloat(s, 64)
}

func readHeader(r *csv.Reader) ([]string, int, error) {
	header, err := r.Read()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read header: %w", err)
	}
	dateIdx := -1
	for i, h := range header {
		header[i] = strings.ToLower(strings.TrimSpace(h))
		if header[i] == Date {
			dateIdx = i
		}
	}
	if dateIdx < 0 {
		return nil, 0, ErrNoDateColumn
	}
	return header, dateIdx, nil
}

// ReadTableCSV decodes a feature table with a "date" column and one
// numeric column per feature.
func ReadTableCSV(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	header, dateIdx, err := readHeader(cr)
	if err != nil {
		return nil, err
	}

	var rows []Row
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		date, err := ParseDate(rec[dateIdx])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		row := Row{Date: date, Fields: make(map[string]float64, len(rec)-1)}
		for i, cell := range rec {
			if i == dateIdx {
				continue
			}
			v, err := parseCell(cell)
			if err != nil {
				return nil, fmt.Errorf("line %d column %s: %w", line, header[i], err)
			}
			row.Fields[header[i]] = v
		}
		rows = append(rows, row)
	}
	return NewTable(rows)
}

// ReadPricesCSV decodes a daily price file. The price column is the first
// of close, adj_close, price present in the header.
func ReadPricesCSV(r io.Reader) (PriceSeries, error) {
	cr := csv.NewReader(r)
	header, dateIdx, err := readHeader(cr)
	if err != nil {
		return nil, err
	}
	priceIdx := -1
	for _, name := range PriceFields {
		for i, h := range header {
			if h == name {
				priceIdx = i
				break
			}
		}
		if priceIdx >= 0 {
			break
		}
	}
	if priceIdx < 0 {
		return nil, fmt.Errorf("no price column among %v", PriceFields)
	}

	var points []PricePoint
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		date, err := ParseDate(rec[dateIdx])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		v, err := parseCell(rec[priceIdx])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		points = append(points, PricePoint{Date: date, Close: v})
	}
	return NewPriceSeries(points)
}

// MarshalJSON writes the row as a flat object: {"date": "...", field: value}.
// Gaps are omitted.
func (r Row) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, len(r.Fields)+1)
	for k, v := range r.Fields {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			m[k] = v
		}
	}
	m[Date] = r.Date.Format(time.DateOnly)
	return json.Marshal(m)
}

// UnmarshalJSON reads a flat object. Null fields are treated as gaps.
func (r *Row) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	rawDate, ok := raw[Date]
	if !ok {
		return ErrNoDateColumn
	}
	var ds string
	if err := json.Unmarshal(rawDate, &ds); err != nil {
		return fmt.Errorf("date: %w", err)
	}
	date, err := ParseDate(ds)
	if err != nil {
		return err
	}
	r.Date = date
	r.Fields = make(map[string]float64, len(raw)-1)
	for k, v := range raw {
		if k == Date {
			continue
		}
		var f *float64
		if err := json.Unmarshal(v, &f); err != nil {
			return fmt.Errorf("field %s: %w", k, err)
		}
		if f == nil {
			r.Fields[k] = math.NaN()
			continue
		}
		r.Fields[k] = *f
	}
	return nil
}

// UnmarshalJSON accepts {"date": "2024-01-02", "close": 10.5}.
func (p *PricePoint) UnmarshalJSON(data []byte) error {
	var raw struct {
		Date  string   `json:"date"`
		Close *float64 `json:"close"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	date, err := ParseDate(raw.Date)
	if err != nil {
		return err
	}
	p.Date = date
	p.Close = math.NaN()
	if raw.Close != nil {
		p.Close = *raw.Close
	}
	return nil
}

// MarshalJSON writes the date in DateOnly layout.
func (p PricePoint) MarshalJSON() ([]byte, error) {
	var c any
	if !math.IsNaN(p.Close) && !math.IsInf(p.Close, 0) {
		c = p.Close
	}
	return json.Marshal(struct {
		Date  string `json:"date"`
		Close any    `json:"close"`
	}{p.Date.Format(time.DateOnly), c})
}
