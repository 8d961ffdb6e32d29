// Package analyst exposes the Analyst Engine over HTTP.
package analyst

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	coreAnalyst "asset_analyst/pkg/core/analyst"
	"asset_analyst/pkg/core/feature"
	"asset_analyst/pkg/core/num"
	"asset_analyst/pkg/core/report"
	"asset_analyst/pkg/core/store"
	"asset_analyst/pkg/core/utils"
)

const maxBody = 4 << 20

var tickerPattern = regexp.MustCompile(`^[A-Z0-9.\-]{1,10}$`)

// Repository persists runs. A nil Repository disables persistence.
type Repository interface {
	Save(ctx context.Context, res *coreAnalyst.Result) (*store.Run, error)
	Load(ctx context.Context, ticker string) (*store.Run, error)
}

// AnalyzeRequest is the body of POST /api/analyze.
type AnalyzeRequest struct {
	Ticker       string               `json:"ticker"`
	Features     []feature.Row        `json:"features"`
	Prices       []feature.PricePoint `json:"prices,omitempty"`
	CurrentPrice *float64             `json:"current_price,omitempty"`
}

// AnalyzeResponse carries the nested result and the flat report.
type AnalyzeResponse struct {
	RunID  string              `json:"run_id,omitempty"`
	Result *coreAnalyst.Result `json:"result"`
	Report report.Report       `json:"report"`
}

// Handler serves the analysis endpoints.
type Handler struct {
	engine   *coreAnalyst.Engine
	repo     Repository
	metrics  *Metrics
	registry *prometheus.Registry
	logger   zerolog.Logger
}

// NewHandler wires the engine and an optional repository. Metrics are
// registered on a private registry served at /metrics.
func NewHandler(engine *coreAnalyst.Engine, repo Repository, logger zerolog.Logger) *Handler {
	reg := prometheus.NewRegistry()
	return &Handler{
		engine:   engine,
		repo:     repo,
		metrics:  NewMetrics(reg),
		registry: reg,
		logger:   logger.With().Str("component", "api").Logger(),
	}
}

// Routes registers the endpoints on mux.
func (h *Handler) Routes(mux *http.ServeMux) {
	mux.HandleFunc("/api/analyze", h.HandleAnalyze)
	mux.HandleFunc("/api/analysis", h.HandleLatest)
	mux.Handle("/metrics", promhttp.HandlerFor(h.registry, promhttp.HandlerOpts{}))
}

func cors(w http.ResponseWriter, methods string) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", methods)
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// fail records the error and answers the client. Server-side failures get a
// fixed message; their detail only goes to the log.
func (h *Handler) fail(w http.ResponseWriter, status int, reason string, err error) {
	h.metrics.Errors.WithLabelValues(reason).Inc()
	if status >= http.StatusInternalServerError {
		h.logger.Error().Err(err).Str("reason", reason).Int("status", status).Msg("request failed")
		http.Error(w, http.StatusText(status), status)
		return
	}
	h.logger.Warn().Err(err).Str("reason", reason).Int("status", status).Msg("request rejected")
	http.Error(w, err.Error(), status)
}

// NormalizeTicker upper-cases and validates a ticker symbol.
func NormalizeTicker(raw string) (string, error) {
	t := strings.ToUpper(strings.TrimSpace(raw))
	if !tickerPattern.MatchString(t) {
		return "", fmt.Errorf("invalid ticker %q", raw)
	}
	return t, nil
}

// HandleAnalyze runs one analysis from an inline feature table.
func (h *Handler) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	cors(w, "POST, OPTIONS")
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != http.MethodPost {
		h.fail(w, http.StatusMethodNotAllowed, "method", fmt.Errorf("method %s not allowed", r.Method))
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBody))
	if err != nil {
		h.fail(w, http.StatusBadRequest, "read", err)
		return
	}
	var req AnalyzeRequest
	if _, err := utils.SmartParse(string(body), &req); err != nil {
		h.fail(w, http.StatusBadRequest, "decode", err)
		return
	}

	ticker, err := NormalizeTicker(req.Ticker)
	if err != nil {
		h.fail(w, http.StatusBadRequest, "ticker", err)
		return
	}
	table, err := feature.NewTable(req.Features)
	if err != nil {
		h.fail(w, http.StatusBadRequest, "features", err)
		return
	}
	prices, err := feature.NewPriceSeries(req.Prices)
	if err != nil {
		h.fail(w, http.StatusBadRequest, "prices", err)
		return
	}
	quote := num.None()
	if req.CurrentPrice != nil {
		quote = num.Some(*req.CurrentPrice)
	}

	start := time.Now()
	res, err := h.engine.Analyze(coreAnalyst.Input{
		Ticker:      ticker,
		Features:    table,
		Prices:      prices,
		MarketPrice: quote,
	})
	if err != nil {
		h.fail(w, http.StatusInternalServerError, "analyze", err)
		return
	}
	h.metrics.Duration.Observe(time.Since(start).Seconds())
	h.metrics.Runs.WithLabelValues(string(res.Rating.Rating)).Inc()

	resp := AnalyzeResponse{Result: res, Report: report.Build(res, quote)}
	if h.repo != nil {
		run, err := h.repo.Save(r.Context(), res)
		if err != nil {
			h.fail(w, http.StatusInternalServerError, "store", err)
			return
		}
		resp.RunID = run.ID.String()
	}

	writeJSON(w, http.StatusOK, resp)
}

// HandleLatest returns the most recent stored run for ?ticker=.
func (h *Handler) HandleLatest(w http.ResponseWriter, r *http.Request) {
	cors(w, "GET, OPTIONS")
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != http.MethodGet {
		h.fail(w, http.StatusMethodNotAllowed, "method", fmt.Errorf("method %s not allowed", r.Method))
		return
	}
	if h.repo == nil {
		h.fail(w, http.StatusNotFound, "store", errors.New("persistence disabled"))
		return
	}

	ticker, err := NormalizeTicker(r.URL.Query().Get("ticker"))
	if err != nil {
		h.fail(w, http.StatusBadRequest, "ticker", err)
		return
	}

	run, err := h.repo.Load(r.Context(), ticker)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			h.fail(w, http.StatusNotFound, "not_found", err)
			return
		}
		h.fail(w, http.StatusInternalServerError, "store", err)
		return
	}
	writeJSON(w, http.StatusOK, AnalyzeResponse{
		RunID:  run.ID.String(),
		Result: run.Result,
		Report: report.Build(run.Result, num.None()),
	})
}
