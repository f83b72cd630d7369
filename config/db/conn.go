package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joy095/hotelbooking/logger"
)

var DB *pgxpool.Pool

// Connect opens the PostgreSQL pool and stores it in DB.
func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	if dsn == "" {
		return nil, fmt.Errorf("DATABASE_URL not set")
	}

	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("unable to parse DATABASE_URL: %w", err)
	}

	cfg.MaxConns = 10
	cfg.MinConns = 2
	cfg.MaxConnLifetime = time.Hour
	cfg.MaxConnIdleTime = 30 * time.Minute

	start := time.Now()

	// Don't block startup for long on a cold database.
	connectCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(connectCtx, cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection error: %w", err)
	}

	if err := pool.Ping(connectCtx); err != nil {
		logger.WarnLogger.Warnf("Database cold start or unreachable: %v", err)
	} else {
		logger.InfoLogger.Infof("Database ready (ping ok in %v)", time.Since(start))
	}

	DB = pool
	logger.InfoLogger.Info("Connected to PostgreSQL pool.")
	return pool, nil
}

func Close() {
	if DB != nil {
		DB.Close()
		logger.InfoLogger.Info("Disconnected from PostgreSQL.")
	}
}
