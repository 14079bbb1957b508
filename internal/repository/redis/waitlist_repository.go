package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/redis/go-redis/v9"
	"github.com/vogiaan1904/ticketbottle-waitlist/internal/models"
	"github.com/vogiaan1904/ticketbottle-waitlist/internal/repository"
	"github.com/vogiaan1904/ticketbottle-waitlist/pkg/logger"
)

const eventsKey = "waitlist:events"

// KEYS: queue, entries, events. ARGV: user, position, entry json, event.
const insertScript = `
if redis.call('HEXISTS', KEYS[2], ARGV[1]) == 1 then
	return 0
end
redis.call('ZADD', KEYS[1], ARGV[2], ARGV[1])
redis.call('HSET', KEYS[2], ARGV[1], ARGV[3])
redis.call('SADD', KEYS[3], ARGV[4])
return 1
`

// KEYS: queue, entries, events. ARGV: user, event, then user/position pairs.
const deleteScript = `
if redis.call('ZREM', KEYS[1], ARGV[1]) == 0 then
	return 0
end
redis.call('HDEL', KEYS[2], ARGV[1])
for i = 3, #ARGV, 2 do
	redis.call('ZADD', KEYS[1], 'XX', ARGV[i + 1], ARGV[i])
end
if redis.call('ZCARD', KEYS[1]) == 0 then
	redis.call('SREM', KEYS[3], ARGV[2])
end
return 1
`

type redisWaitlistRepository struct {
	cli *redis.Client
	l   logger.Logger
}

func NewWaitlistRepository(cli *redis.Client, l logger.Logger) repository.WaitlistRepository {
	return &redisWaitlistRepository{
		cli: cli,
		l:   l,
	}
}

func (r *redisWaitlistRepository) List(ctx context.Context, eventID string) ([]models.WaitlistEntry, error) {
	members, err := r.cli.ZRangeWithScores(ctx, r.queueKey(eventID), 0, -1).Result()
	if err != nil {
		r.l.Errorf(ctx, "redisWaitlistRepository.List: %v", err)
		return nil, err
	}
	if len(members) == 0 {
		return []models.WaitlistEntry{}, nil
	}

	userIDs := make([]string, len(members))
	for i, m := range members {
		userIDs[i] = m.Member.(string)
	}

	raw, err := r.cli.HMGet(ctx, r.entriesKey(eventID), userIDs...).Result()
	if err != nil {
		r.l.Errorf(ctx, "redisWaitlistRepository.List: %v", err)
		return nil, err
	}

	entries := make([]models.WaitlistEntry, 0, len(members))
	for i, v := range raw {
		s, ok := v.(string)
		if !ok {
			r.l.Warn(ctx, "Queue member without entry data",
				"event_id", eventID,
				"user_id", userIDs[i],
			)
			continue
		}

		e, err := decodeEntry(s, int(members[i].Score))
		if err != nil {
			r.l.Errorf(ctx, "redisWaitlistRepository.List: %v", err)
			return nil, err
		}
		entries = append(entries, e)
	}

	return entries, nil
}

func (r *redisWaitlistRepository) Get(ctx context.Context, eventID, userID string) (models.WaitlistEntry, error) {
	raw, err := r.cli.HGet(ctx, r.entriesKey(eventID), userID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return models.WaitlistEntry{}, repository.ErrNotFound
		}
		r.l.Errorf(ctx, "redisWaitlistRepository.Get: %v", err)
		return models.WaitlistEntry{}, err
	}

	score, err := r.cli.ZScore(ctx, r.queueKey(eventID), userID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return models.WaitlistEntry{}, repository.ErrNotFound
		}
		r.l.Errorf(ctx, "redisWaitlistRepository.Get: %v", err)
		return models.WaitlistEntry{}, err
	}

	return decodeEntry(raw, int(score))
}

func (r *redisWaitlistRepository) Count(ctx context.Context, eventID string) (int64, error) {
	count, err := r.cli.ZCard(ctx, r.queueKey(eventID)).Result()
	if err != nil {
		r.l.Errorf(ctx, "redisWaitlistRepository.Count: %v", err)
		return 0, err
	}

	return count, nil
}

func (r *redisWaitlistRepository) Insert(ctx context.Context, entry models.WaitlistEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal entry: %w", err)
	}

	keys := []string{r.queueKey(entry.EventID), r.entriesKey(entry.EventID), eventsKey}
	res, err := r.cli.Eval(ctx, insertScript, keys, entry.UserID, entry.Position, string(data), entry.EventID).Int()
	if err != nil {
		r.l.Errorf(ctx, "redisWaitlistRepository.Insert: %v", err)
		return err
	}
	if res == 0 {
		return repository.ErrDuplicate
	}

	r.l.Debug(ctx, "Added to waitlist",
		"event_id", entry.EventID,
		"user_id", entry.UserID,
		"position", entry.Position,
	)

	return nil
}

func (r *redisWaitlistRepository) Delete(ctx context.Context, eventID, userID string, reorder map[string]int) error {
	userIDs := make([]string, 0, len(reorder))
	for uID := range reorder {
		userIDs = append(userIDs, uID)
	}
	sort.Strings(userIDs)

	args := make([]interface{}, 0, 2+2*len(userIDs))
	args = append(args, userID, eventID)
	for _, uID := range userIDs {
		args = append(args, uID, reorder[uID])
	}

	keys := []string{r.queueKey(eventID), r.entriesKey(eventID), eventsKey}
	res, err := r.cli.Eval(ctx, deleteScript, keys, args...).Int()
	if err != nil {
		r.l.Errorf(ctx, "redisWaitlistRepository.Delete: %v", err)
		return err
	}
	if res == 0 {
		return repository.ErrNotFound
	}

	r.l.Debug(ctx, "Removed from waitlist",
		"event_id", eventID,
		"user_id", userID,
		"reordered", len(reorder),
	)

	return nil
}

func (r *redisWaitlistRepository) EventIDs(ctx context.Context) ([]string, error) {
	ids, err := r.cli.SMembers(ctx, eventsKey).Result()
	if err != nil {
		r.l.Errorf(ctx, "redisWaitlistRepository.EventIDs: %v", err)
		return nil, err
	}
	sort.Strings(ids)

	return ids, nil
}

func (r *redisWaitlistRepository) queueKey(eventID string) string {
	return fmt.Sprintf("waitlist:%s:queue", eventID)
}

func (r *redisWaitlistRepository) entriesKey(eventID string) string {
	return fmt.Sprintf("waitlist:%s:entries", eventID)
}

// decodeEntry takes the position from the sorted set score since the stored
// JSON is not rewritten when positions shift.
func decodeEntry(raw string, position int) (models.WaitlistEntry, error) {
	var e models.WaitlistEntry
	if err := json.Unmarshal([]byte(raw), &e); err != nil {
		return models.WaitlistEntry{}, fmt.Errorf("failed to unmarshal entry: %w", err)
	}
	e.Position = position
	return e, nil
}
