package main

import (
	"context"
	"fmt"

	"github.com/vogiaan1904/ticketbottle-waitlist/config"
	pgInfra "github.com/vogiaan1904/ticketbottle-waitlist/internal/infra/postgres"
	redisInfra "github.com/vogiaan1904/ticketbottle-waitlist/internal/infra/redis"
	"github.com/vogiaan1904/ticketbottle-waitlist/internal/repository"
	"github.com/vogiaan1904/ticketbottle-waitlist/internal/repository/memory"
	pgRepo "github.com/vogiaan1904/ticketbottle-waitlist/internal/repository/postgres"
	redisRepo "github.com/vogiaan1904/ticketbottle-waitlist/internal/repository/redis"
	pkgLog "github.com/vogiaan1904/ticketbottle-waitlist/pkg/logger"
)

type stores struct {
	waitlist    repository.WaitlistRepository
	credentials repository.CredentialRepository
	close       func()
}

func loadConfig() (*config.Config, pkgLog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	l := pkgLog.InitializeZapLogger(pkgLog.ZapConfig{
		Level:    cfg.Log.Level,
		Mode:     cfg.Log.Mode,
		Encoding: cfg.Log.Encoding,
	})
	return cfg, l, nil
}

// openStores connects the backend selected by WAITLIST_STORE.
func openStores(ctx context.Context, cfg *config.Config, l pkgLog.Logger, migrate bool) (*stores, error) {
	switch cfg.Waitlist.Store {
	case config.StorePostgres:
		pool, err := pgInfra.Connect(ctx, cfg.Postgres, l)
		if err != nil {
			return nil, err
		}
		if migrate {
			if err := pgRepo.Migrate(ctx, pool); err != nil {
				pgInfra.Disconnect(pool, l)
				return nil, fmt.Errorf("failed to migrate: %w", err)
			}
		}
		return &stores{
			waitlist:    pgRepo.NewWaitlistRepo(pool, l),
			credentials: pgRepo.NewCredentialRepo(pool),
			close:       func() { pgInfra.Disconnect(pool, l) },
		}, nil

	case config.StoreRedis:
		cli, err := redisInfra.Connect(ctx, cfg.Redis, l)
		if err != nil {
			return nil, err
		}
		return &stores{
			waitlist:    redisRepo.NewWaitlistRepository(cli, l),
			credentials: redisRepo.NewCredentialRepository(cli, l),
			close:       func() { redisInfra.Disconnect(cli, l) },
		}, nil

	default:
		l.Warn(ctx, "Using in-memory store; waitlists are lost on restart")
		return &stores{
			waitlist:    memory.NewWaitlistRepository(),
			credentials: memory.NewCredentialRepository(),
			close:       func() {},
		}, nil
	}
}
