// Package store persists analysis runs in PostgreSQL.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"asset_analyst/pkg/core/analyst"
)

// ErrNotFound is returned when no run exists for a ticker.
var ErrNotFound = errors.New("no analysis found")

// DB is the subset of pgxpool.Pool used by the repository.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Schema creates the runs table.
const Schema = `
CREATE TABLE IF NOT EXISTS analysis_runs (
	id          UUID PRIMARY KEY,
	ticker      TEXT NOT NULL,
	rating      TEXT NOT NULL,
	total_score DOUBLE PRECISION NOT NULL,
	result_json JSONB NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS analysis_runs_ticker_created ON analysis_runs (ticker, created_at DESC);
`

// Run is one stored analysis.
type Run struct {
	ID        uuid.UUID       `json:"id"`
	Ticker    string          `json:"ticker"`
	CreatedAt time.Time       `json:"created_at"`
	Result    *analyst.Result `json:"result"`
}

// AnalysisRepo handles the storage of analysis runs.
type AnalysisRepo struct {
	db  DB
	now func() time.Time
}

// NewAnalysisRepo creates a new repository instance.
func NewAnalysisRepo(db DB) *AnalysisRepo {
	return &AnalysisRepo{db: db, now: time.Now}
}

// EnsureSchema creates the table when missing.
func (r *AnalysisRepo) EnsureSchema(ctx context.Context) error {
	if r.db == nil {
		return fmt.Errorf("database pool not initialized")
	}
	if _, err := r.db.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Save stores a result under a fresh run id. Runs are append-only; the
// latest per ticker is what Load returns.
func (r *AnalysisRepo) Save(ctx context.Context, res *analyst.Result) (*Run, error) {
	if r.db == nil {
		return nil, fmt.Errorf("database pool not initialized")
	}
	if res == nil {
		return nil, fmt.Errorf("nil analysis result")
	}

	jsonData, err := json.Marshal(res)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal analysis: %w", err)
	}

	run := &Run{ID: uuid.New(), Ticker: res.Ticker, CreatedAt: r.now().UTC(), Result: res}

	query := `
		INSERT INTO analysis_runs (id, ticker, rating, total_score, result_json, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err = r.db.Exec(ctx, query, run.ID, run.Ticker, string(res.Rating.Rating), res.Rating.Total, jsonData, run.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to save analysis: %w", err)
	}
	return run, nil
}

// Load retrieves the most recent run for a ticker.
func (r *AnalysisRepo) Load(ctx context.Context, ticker string) (*Run, error) {
	if r.db == nil {
		return nil, fmt.Errorf("database pool not initialized")
	}

	query := `
		SELECT id, ticker, result_json, created_at
		FROM analysis_runs
		WHERE ticker = $1
		ORDER BY created_at DESC
		LIMIT 1
	`

	run := &Run{}
	var jsonData []byte
	err := r.db.QueryRow(ctx, query, ticker).Scan(&run.ID, &run.Ticker, &jsonData, &run.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w for ticker %s", ErrNotFound, ticker)
		}
		return nil, fmt.Errorf("failed to load analysis: %w", err)
	}

	run.Result = &analyst.Result{}
	if err := json.Unmarshal(jsonData, run.Result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal analysis data: %w", err)
	}
	return run, nil
}
