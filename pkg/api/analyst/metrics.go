package analyst

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus instruments of the HTTP surface.
type Metrics struct {
	Runs     *prometheus.CounterVec
	Errors   *prometheus.CounterVec
	Duration prometheus.Histogram
}

// NewMetrics creates and registers the instruments on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "analyst_runs_total",
				Help: "Completed analysis runs by rating",
			},
			[]string{"rating"},
		),
		Errors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "analyst_request_errors_total",
				Help: "Rejected or failed requests by reason",
			},
			[]string{"reason"},
		),
		Duration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "analyst_run_duration_seconds",
				Help:    "Duration of one analysis run in seconds",
				Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
			},
		),
	}
	reg.MustRegister(m.Runs, m.Errors, m.Duration)
	return m
}
