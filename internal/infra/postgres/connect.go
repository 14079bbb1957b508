package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vogiaan1904/ticketbottle-waitlist/config"
	"github.com/vogiaan1904/ticketbottle-waitlist/pkg/logger"
	pkgPostgres "github.com/vogiaan1904/ticketbottle-waitlist/pkg/postgres"
)

func Connect(ctx context.Context, cfg config.PostgresConfig, l logger.Logger) (*pgxpool.Pool, error) {
	pool, err := pkgPostgres.NewPool(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Postgres: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping Postgres: %w", err)
	}

	l.Info(ctx, "Connected to Postgres.")

	return pool, nil
}

func Disconnect(pool *pgxpool.Pool, l logger.Logger) {
	if pool == nil {
		return
	}

	pool.Close()

	l.Info(context.Background(), "Connection to Postgres closed.")
}
