package redis

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vogiaan1904/ticketbottle-waitlist/internal/models"
	"github.com/vogiaan1904/ticketbottle-waitlist/internal/repository"
	"github.com/vogiaan1904/ticketbottle-waitlist/pkg/logger"
)

func setupTestRepository() (repository.WaitlistRepository, redismock.ClientMock) {
	db, mock := redismock.NewClientMock()
	return NewWaitlistRepository(db, logger.InitializeTestZapLogger()), mock
}

func testEntry(userID string, pos int) models.WaitlistEntry {
	return models.WaitlistEntry{
		EventID:    "evt-1",
		UserID:     userID,
		ChatID:     "chat-" + userID,
		EventTitle: "Team offsite",
		Position:   pos,
		JoinedAt:   time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
	}
}

func queueKeys() []string {
	return []string{"waitlist:evt-1:queue", "waitlist:evt-1:entries", eventsKey}
}

func TestRedisWaitlistRepository_Insert(t *testing.T) {
	repo, mock := setupTestRepository()
	defer mock.ClearExpect()

	e := testEntry("alice", 1)
	data, err := json.Marshal(e)
	require.NoError(t, err)

	mock.ExpectEval(insertScript, queueKeys(), "alice", 1, string(data), "evt-1").SetVal(int64(1))

	err = repo.Insert(context.Background(), e)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisWaitlistRepository_Insert_Duplicate(t *testing.T) {
	repo, mock := setupTestRepository()
	defer mock.ClearExpect()

	e := testEntry("alice", 1)
	data, err := json.Marshal(e)
	require.NoError(t, err)

	mock.ExpectEval(insertScript, queueKeys(), "alice", 1, string(data), "evt-1").SetVal(int64(0))

	err = repo.Insert(context.Background(), e)

	assert.ErrorIs(t, err, repository.ErrDuplicate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisWaitlistRepository_Delete_AppliesReorder(t *testing.T) {
	repo, mock := setupTestRepository()
	defer mock.ClearExpect()

	mock.ExpectEval(deleteScript, queueKeys(), "alice", "evt-1", "bob", 1, "carol", 2).SetVal(int64(1))

	err := repo.Delete(context.Background(), "evt-1", "alice", map[string]int{"carol": 2, "bob": 1})

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisWaitlistRepository_Delete_NotFound(t *testing.T) {
	repo, mock := setupTestRepository()
	defer mock.ClearExpect()

	mock.ExpectEval(deleteScript, queueKeys(), "ghost", "evt-1").SetVal(int64(0))

	err := repo.Delete(context.Background(), "evt-1", "ghost", nil)

	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisWaitlistRepository_List_UsesScoreAsPosition(t *testing.T) {
	repo, mock := setupTestRepository()
	defer mock.ClearExpect()

	// bob's stored JSON still says position 2 after alice left.
	bob, err := json.Marshal(testEntry("bob", 2))
	require.NoError(t, err)
	carol, err := json.Marshal(testEntry("carol", 3))
	require.NoError(t, err)

	mock.ExpectZRangeWithScores("waitlist:evt-1:queue", 0, -1).SetVal([]redis.Z{
		{Score: 1, Member: "bob"},
		{Score: 2, Member: "carol"},
	})
	mock.ExpectHMGet("waitlist:evt-1:entries", "bob", "carol").SetVal([]interface{}{string(bob), string(carol)})

	entries, err := repo.List(context.Background(), "evt-1")

	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "bob", entries[0].UserID)
	assert.Equal(t, 1, entries[0].Position)
	assert.Equal(t, "carol", entries[1].UserID)
	assert.Equal(t, 2, entries[1].Position)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisWaitlistRepository_Get_NotFound(t *testing.T) {
	repo, mock := setupTestRepository()
	defer mock.ClearExpect()

	mock.ExpectHGet("waitlist:evt-1:entries", "ghost").RedisNil()

	_, err := repo.Get(context.Background(), "evt-1", "ghost")

	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisWaitlistRepository_CountAndEventIDs(t *testing.T) {
	repo, mock := setupTestRepository()
	defer mock.ClearExpect()

	mock.ExpectZCard("waitlist:evt-1:queue").SetVal(3)
	mock.ExpectSMembers(eventsKey).SetVal([]string{"evt-2", "evt-1"})

	n, err := repo.Count(context.Background(), "evt-1")
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	ids, err := repo.EventIDs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"evt-1", "evt-2"}, ids)

	assert.NoError(t, mock.ExpectationsWereMet())
}
