package db

import (
	"context"
	"time"

	"github.com/mohitdudhat22/Task-Management-App/internal/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Connect opens a pool against dsn and waits for the first ping.
func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	cfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, err
	}

	logger.Info("database connected", "max_conns", cfg.MaxConns)
	return pool, nil
}

// MustConnect is Connect for process startup.
func MustConnect(ctx context.Context, dsn string) *pgxpool.Pool {
	pool, err := Connect(ctx, dsn)
	if err != nil {
		logger.Fatal("failed to connect database", "error", err)
	}
	return pool
}
