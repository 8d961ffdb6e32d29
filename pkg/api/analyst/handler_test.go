package analyst

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coreAnalyst "asset_analyst/pkg/core/analyst"
	"asset_analyst/pkg/core/store"
)

type memoryRepo struct {
	runs    map[string]*store.Run
	saveErr error
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{runs: make(map[string]*store.Run)}
}

func (m *memoryRepo) Save(_ context.Context, res *coreAnalyst.Result) (*store.Run, error) {
	if m.saveErr != nil {
		return nil, m.saveErr
	}
	run := &store.Run{ID: uuid.New(), Ticker: res.Ticker, CreatedAt: time.Now(), Result: res}
	m.runs[res.Ticker] = run
	return run, nil
}

func (m *memoryRepo) Load(_ context.Context, ticker string) (*store.Run, error) {
	run, ok := m.runs[ticker]
	if !ok {
		return nil, fmt.Errorf("%w for ticker %s", store.ErrNotFound, ticker)
	}
	return run, nil
}

func newServer(t *testing.T, repo Repository) *httptest.Server {
	t.Helper()
	h := NewHandler(coreAnalyst.NewEngine(), repo, zerolog.Nop())
	mux := http.NewServeMux()
	h.Routes(mux)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

const analyzeBody = `{
	"ticker": "acme",
	"features": [
		{"date": "2021-12-31", "net_income": 40, "ordinary_shares_number": 10, "operating_margin": 0.2},
		{"date": "2022-12-31", "net_income": 45, "ordinary_shares_number": 10, "operating_margin": 0.2},
		{"date": "2023-12-31", "net_income": 50, "ordinary_shares_number": 10, "operating_margin": 0.2}
	],
	"current_price": 60
}`

func post(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestHandleAnalyze(t *testing.T) {
	repo := newMemoryRepo()
	srv := newServer(t, repo)

	resp := post(t, srv.URL+"/api/analyze", analyzeBody)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out AnalyzeResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.NotEmpty(t, out.RunID)
	assert.Equal(t, "ACME", out.Result.Ticker)
	assert.Equal(t, 75.0, out.Report.FairValue.V)
	assert.Equal(t, 60.0, out.Report.CurrentPrice.V)
	assert.InDelta(t, 0.25, out.Report.Upside.V, 1e-12)
	assert.Contains(t, repo.runs, "ACME")
}

func TestHandleAnalyze_LenientJSON(t *testing.T) {
	srv := newServer(t, nil)
	body := `{"ticker": "ACME", "features": [{"date": "2023-12-31", "net_income": 50, "ordinary_shares_number": 10,},],}`

	resp := post(t, srv.URL+"/api/analyze", body)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out AnalyzeResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Empty(t, out.RunID, "no repository, no run id")
	assert.Equal(t, 75.0, out.Result.Valuation.FairValue.V)
}

func TestHandleAnalyze_BadRequests(t *testing.T) {
	srv := newServer(t, nil)
	tests := []struct {
		name string
		body string
	}{
		{"invalid ticker", `{"ticker": "NOT A TICKER", "features": []}`},
		{"duplicate dates", `{"ticker": "ACME", "features": [{"date": "2023-12-31"}, {"date": "2023-12-31"}]}`},
		{"missing date", `{"ticker": "ACME", "features": [{"net_income": 5}]}`},
		{"duplicate price days", `{"ticker": "ACME", "features": [], "prices": [{"date": "2024-01-02", "close": 1}, {"date": "2024-01-02", "close": 2}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := post(t, srv.URL+"/api/analyze", tt.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestHandleAnalyze_MethodAndStoreErrors(t *testing.T) {
	srv := newServer(t, &memoryRepo{saveErr: errors.New(`pq: password authentication failed for user "analyst"`)})

	resp, err := http.Get(srv.URL + "/api/analyze")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)

	resp = post(t, srv.URL+"/api/analyze", analyzeBody)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "Internal Server Error\n", string(body))
	assert.NotContains(t, string(body), "password", "database detail stays in the log")
}

func TestHandleAnalyze_ReportsDecodeCause(t *testing.T) {
	srv := newServer(t, nil)

	resp := post(t, srv.URL+"/api/analyze", `{"ticker": "ACME", "features": [{"net_income": 5}]}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "missing date column")
}

func TestHandleLatest(t *testing.T) {
	srv := newServer(t, newMemoryRepo())

	resp, err := http.Get(srv.URL + "/api/analysis?ticker=ACME")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	created := post(t, srv.URL+"/api/analyze", analyzeBody)
	require.Equal(t, http.StatusOK, created.StatusCode)
	var first AnalyzeResponse
	require.NoError(t, json.NewDecoder(created.Body).Decode(&first))

	resp, err = http.Get(srv.URL + "/api/analysis?ticker=acme")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var latest AnalyzeResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&latest))
	assert.Equal(t, first.RunID, latest.RunID)
	assert.Equal(t, first.Result.Rating, latest.Result.Rating)
}

func TestHandleLatest_PersistenceDisabled(t *testing.T) {
	srv := newServer(t, nil)
	resp, err := http.Get(srv.URL + "/api/analysis?ticker=ACME")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newServer(t, nil)
	post(t, srv.URL+"/api/analyze", analyzeBody)
	post(t, srv.URL+"/api/analyze", `{"ticker": "", "features": []}`)

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	text := string(body)
	assert.Contains(t, text, "analyst_runs_total")
	assert.Contains(t, text, `analyst_request_errors_total{reason="ticker"} 1`)
	assert.Contains(t, text, "analyst_run_duration_seconds_count 1")
}

func TestNormalizeTicker(t *testing.T) {
	got, err := NormalizeTicker("  brk.b ")
	require.NoError(t, err)
	assert.Equal(t, "BRK.B", got)

	for _, bad := range []string{"", "TOOLONGTICKER", "AC ME", "AC/ME"} {
		_, err := NormalizeTicker(bad)
		assert.Error(t, err, bad)
	}
}
