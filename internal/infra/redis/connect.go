package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/vogiaan1904/ticketbottle-waitlist/config"
	"github.com/vogiaan1904/ticketbottle-waitlist/pkg/logger"
	pkgRedis "github.com/vogiaan1904/ticketbottle-waitlist/pkg/redis"
)

func Connect(ctx context.Context, cfg config.RedisConfig, l logger.Logger) (*redis.Client, error) {
	cli := pkgRedis.NewClient(cfg)

	if err := cli.Ping(ctx).Err(); err != nil {
		cli.Close()
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	l.Info(ctx, "Connected to Redis.")

	return cli, nil
}

func Disconnect(cli *redis.Client, l logger.Logger) {
	if cli == nil {
		return
	}

	if err := cli.Close(); err != nil {
		l.Warnf(context.Background(), "Closing Redis connection: %v", err)
		return
	}

	l.Info(context.Background(), "Connection to Redis closed.")
}
