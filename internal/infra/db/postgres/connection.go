package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"

	"payment-relay/internal/config"
	"payment-relay/internal/domain"
)

// NewPgxPool connects to the configured database. The service key is used as
// the password when the URL does not carry one.
func NewPgxPool(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	if !cfg.Enabled() {
		return nil, domain.ErrStoreUnavailable
	}
	pcfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("%w: parse database url: %v", domain.ErrConfiguration, err)
	}
	if pcfg.ConnConfig.Password == "" && cfg.ServiceKey != "" {
		pcfg.ConnConfig.Password = cfg.ServiceKey
	}
	if cfg.MaxConns > 0 {
		pcfg.MaxConns = cfg.MaxConns
	}

	cctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()
	pool, err := pgxpool.ConnectConfig(cctx, pcfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(cctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return pool, nil
}

// PoolStats returns a reader of the pool's connection counts for the metrics gauge.
func PoolStats(pool *pgxpool.Pool) func() (total, idle, inUse int32) {
	return func() (int32, int32, int32) {
		s := pool.Stat()
		return s.TotalConns(), s.IdleConns(), s.AcquiredConns()
	}
}
