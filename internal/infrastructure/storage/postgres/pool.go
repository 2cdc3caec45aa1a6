// Package postgres provides PostgreSQL infrastructure components.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"procura/pkg/logger"
)

// PoolConfig configures the pgx pool shared by the server and the worker.
type PoolConfig struct {
	DSN             string
	MaxConns        int32
	MinConns        int32
	ConnLifetime    time.Duration
	ConnIdle        time.Duration
	ApplicationName string
}

// DefaultPoolConfig returns the settings used when the environment sets nothing.
func DefaultPoolConfig(dsn string) PoolConfig {
	return PoolConfig{
		DSN:             dsn,
		MaxConns:        25,
		MinConns:        5,
		ConnLifetime:    time.Hour,
		ConnIdle:        30 * time.Minute,
		ApplicationName: "procura",
	}
}

// Pool is the process-wide connection pool.
type Pool struct {
	*pgxpool.Pool
}

// Close is safe on a zero Pool.
func (p *Pool) Close() {
	if p.Pool != nil {
		p.Pool.Close()
	}
}

// NewPool opens the pool and fails fast when the database is unreachable.
func NewPool(ctx context.Context, cfg PoolConfig) (*Pool, error) {
	pc, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	pc.MaxConns, pc.MinConns = cfg.MaxConns, cfg.MinConns
	pc.MaxConnLifetime, pc.MaxConnIdleTime = cfg.ConnLifetime, cfg.ConnIdle
	pc.HealthCheckPeriod = time.Minute
	if cfg.ApplicationName != "" {
		pc.ConnConfig.RuntimeParams["application_name"] = cfg.ApplicationName
	}

	inner, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		return nil, fmt.Errorf("open pool: %w", err)
	}
	if err := inner.Ping(ctx); err != nil {
		inner.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	logger.Info(ctx, "database pool ready",
		"app", cfg.ApplicationName,
		"max_conns", pc.MaxConns)

	return &Pool{Pool: inner}, nil
}
