package redis

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
	"github.com/vogiaan1904/ticketbottle-waitlist/internal/repository"
	"github.com/vogiaan1904/ticketbottle-waitlist/pkg/logger"
)

const credentialsKey = "waitlist:credentials"

type redisCredentialRepository struct {
	cli *redis.Client
	l   logger.Logger
}

// NewCredentialRepository keeps every user's cookie in a single hash.
func NewCredentialRepository(cli *redis.Client, l logger.Logger) repository.CredentialRepository {
	return &redisCredentialRepository{
		cli: cli,
		l:   l,
	}
}

func (r *redisCredentialRepository) Get(ctx context.Context, userID string) (string, error) {
	c, err := r.cli.HGet(ctx, credentialsKey, userID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", repository.ErrNotFound
		}
		r.l.Errorf(ctx, "redisCredentialRepository.Get: %v", err)
		return "", err
	}
	if c == "" {
		return "", repository.ErrNotFound
	}
	return c, nil
}

func (r *redisCredentialRepository) Put(ctx context.Context, userID, credential string) error {
	if err := r.cli.HSet(ctx, credentialsKey, userID, credential).Err(); err != nil {
		r.l.Errorf(ctx, "redisCredentialRepository.Put: %v", err)
		return err
	}
	return nil
}

func (r *redisCredentialRepository) Delete(ctx context.Context, userID string) error {
	n, err := r.cli.HDel(ctx, credentialsKey, userID).Result()
	if err != nil {
		r.l.Errorf(ctx, "redisCredentialRepository.Delete: %v", err)
		return err
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}
