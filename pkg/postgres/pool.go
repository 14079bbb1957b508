package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vogiaan1904/ticketbottle-waitlist/config"
)

func NewPool(ctx context.Context, cfg config.PostgresConfig) (*pgxpool.Pool, error) {
	pCfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, err
	}
	if cfg.MaxConns > 0 {
		pCfg.MaxConns = int32(cfg.MaxConns)
	}
	pCfg.MaxConnLifetime = cfg.MaxConnLifetime
	pCfg.MaxConnIdleTime = cfg.MaxConnIdleTime

	return pgxpool.NewWithConfig(ctx, pCfg)
}
