package store

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
)

// maxConns bounds the pool; runs are small single-row writes.
const maxConns = 4

var (
	pool *pgxpool.Pool
	once sync.Once
)

// InitDB opens the shared pool and verifies the server is reachable.
// Later calls are no-ops and return the first call's error.
func InitDB(ctx context.Context, dbURL string) error {
	var err error
	once.Do(func() {
		if dbURL == "" {
			err = errors.New("database URL not set")
			return
		}

		cfg, parseErr := pgxpool.ParseConfig(dbURL)
		if parseErr != nil {
			err = fmt.Errorf("failed to parse database config: %w", parseErr)
			return
		}
		cfg.MaxConns = maxConns
		cfg.ConnConfig.RuntimeParams["application_name"] = "asset_analyst"

		p, openErr := pgxpool.NewWithConfig(ctx, cfg)
		if openErr != nil {
			err = fmt.Errorf("failed to open pool: %w", openErr)
			return
		}
		if pingErr := p.Ping(ctx); pingErr != nil {
			p.Close()
			err = fmt.Errorf("failed to reach database: %w", pingErr)
			return
		}
		pool = p
	})
	return err
}

// GetPool returns the shared pool, nil before a successful InitDB.
func GetPool() *pgxpool.Pool {
	return pool
}

// Close releases the pool.
func Close() {
	if pool != nil {
		pool.Close()
	}
}
