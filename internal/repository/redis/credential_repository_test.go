package redis

import (
	"context"
	"testing"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/vogiaan1904/ticketbottle-waitlist/internal/repository"
	"github.com/vogiaan1904/ticketbottle-waitlist/pkg/logger"
)

func TestRedisCredentialRepository(t *testing.T) {
	db, mock := redismock.NewClientMock()
	repo := NewCredentialRepository(db, logger.InitializeTestZapLogger())
	ctx := context.Background()

	mock.ExpectHSet(credentialsKey, "alice", "session=1").SetVal(1)
	mock.ExpectHGet(credentialsKey, "alice").SetVal("session=1")
	mock.ExpectHGet(credentialsKey, "bob").RedisNil()
	mock.ExpectHDel(credentialsKey, "bob").SetVal(0)

	assert.NoError(t, repo.Put(ctx, "alice", "session=1"))

	c, err := repo.Get(ctx, "alice")
	assert.NoError(t, err)
	assert.Equal(t, "session=1", c)

	_, err = repo.Get(ctx, "bob")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	assert.ErrorIs(t, repo.Delete(ctx, "bob"), repository.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
