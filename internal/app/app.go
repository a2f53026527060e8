// Package app wires the shared application runtime: configuration, the
// PostgreSQL pool, the store, and the current-chat state file. Every entry
// point (TUI, one-shot CLI commands) initializes through NewRuntime so
// migrations and pool settings stay in one place.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/koopa0/kelp/db"
	"github.com/koopa0/kelp/internal/chatfile"
	"github.com/koopa0/kelp/internal/config"
	"github.com/koopa0/kelp/internal/log"
	"github.com/koopa0/kelp/internal/postgres"
)

// Runtime holds the initialized application components.
type Runtime struct {
	Config *config.Config
	Pool   *pgxpool.Pool
	Store  *postgres.Store
	State  *chatfile.State
	Logger log.Logger
}

// NewRuntime runs migrations, opens the connection pool, and builds the
// store. Callers must Close the runtime when done.
func NewRuntime(ctx context.Context, cfg *config.Config, logger log.Logger) (*Runtime, error) {
	if cfg == nil {
		return nil, config.ErrConfigNil
	}
	if logger == nil {
		logger = log.NewNop()
	}

	if err := db.Migrate(cfg.PostgresURL(), logger); err != nil {
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.PostgresURL())
	if err != nil {
		return nil, fmt.Errorf("parsing connection config: %w", err)
	}
	poolCfg.MaxConns = 10
	poolCfg.MinConns = 2
	poolCfg.MaxConnLifetime = 30 * time.Minute
	poolCfg.MaxConnIdleTime = 5 * time.Minute
	poolCfg.HealthCheckPeriod = 1 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	pingCtx, pingCancel := context.WithTimeout(ctx, 5*time.Second)
	defer pingCancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	state, err := chatfile.Default()
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("preparing state directory: %w", err)
	}

	return &Runtime{
		Config: cfg,
		Pool:   pool,
		Store:  postgres.New(pool, logger),
		State:  state,
		Logger: logger,
	}, nil
}

// Close releases the connection pool.
func (r *Runtime) Close() {
	if r.Pool != nil {
		r.Pool.Close()
	}
}
