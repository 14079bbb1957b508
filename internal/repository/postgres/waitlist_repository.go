// Package postgres implements the repositories on PostgreSQL through pgx.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/vogiaan1904/ticketbottle-waitlist/internal/models"
	"github.com/vogiaan1904/ticketbottle-waitlist/internal/repository"
	"github.com/vogiaan1904/ticketbottle-waitlist/pkg/logger"
)

const uniqueViolation = "23505"

// DB is the part of *pgxpool.Pool the repositories use.
type DB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type WaitlistRepo struct {
	pool DB
	l    logger.Logger
}

func NewWaitlistRepo(pool DB, l logger.Logger) *WaitlistRepo {
	return &WaitlistRepo{pool: pool, l: l}
}

func (r *WaitlistRepo) List(ctx context.Context, eventID string) ([]models.WaitlistEntry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT event_id, user_id, chat_id, event_title, position, joined_at
		FROM waitlist_entries WHERE event_id=$1
		ORDER BY position ASC
	`, eventID)
	if err != nil {
		r.l.Errorf(ctx, "postgres.WaitlistRepo.List: %v", err)
		return nil, err
	}
	defer rows.Close()

	entries := make([]models.WaitlistEntry, 0)
	for rows.Next() {
		var e models.WaitlistEntry
		if err := rows.Scan(&e.EventID, &e.UserID, &e.ChatID, &e.EventTitle, &e.Position, &e.JoinedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

func (r *WaitlistRepo) Get(ctx context.Context, eventID, userID string) (models.WaitlistEntry, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT event_id, user_id, chat_id, event_title, position, joined_at
		FROM waitlist_entries WHERE event_id=$1 AND user_id=$2
	`, eventID, userID)

	var e models.WaitlistEntry
	if err := row.Scan(&e.EventID, &e.UserID, &e.ChatID, &e.EventTitle, &e.Position, &e.JoinedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.WaitlistEntry{}, repository.ErrNotFound
		}
		r.l.Errorf(ctx, "postgres.WaitlistRepo.Get: %v", err)
		return models.WaitlistEntry{}, err
	}

	return e, nil
}

func (r *WaitlistRepo) Count(ctx context.Context, eventID string) (int64, error) {
	var n int64
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM waitlist_entries WHERE event_id=$1`, eventID).Scan(&n); err != nil {
		r.l.Errorf(ctx, "postgres.WaitlistRepo.Count: %v", err)
		return 0, err
	}
	return n, nil
}

func (r *WaitlistRepo) Insert(ctx context.Context, e models.WaitlistEntry) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO waitlist_entries (event_id, user_id, chat_id, event_title, position, joined_at)
		VALUES ($1,$2,$3,$4,$5,$6)
	`, e.EventID, e.UserID, e.ChatID, e.EventTitle, e.Position, e.JoinedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return repository.ErrDuplicate
		}
		r.l.Errorf(ctx, "postgres.WaitlistRepo.Insert: %v", err)
		return err
	}
	return nil
}

func (r *WaitlistRepo) Delete(ctx context.Context, eventID, userID string, reorder map[string]int) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.l.Errorf(ctx, "postgres.WaitlistRepo.Delete: %v", err)
		return err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `DELETE FROM waitlist_entries WHERE event_id=$1 AND user_id=$2`, eventID, userID)
	if err != nil {
		r.l.Errorf(ctx, "postgres.WaitlistRepo.Delete: %v", err)
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	if len(reorder) > 0 {
		users, positions := reorderArgs(reorder)
		if _, err := tx.Exec(ctx, `
			UPDATE waitlist_entries w SET position = r.position
			FROM unnest($2::text[], $3::int[]) AS r(user_id, position)
			WHERE w.event_id=$1 AND w.user_id=r.user_id
		`, eventID, users, positions); err != nil {
			r.l.Errorf(ctx, "postgres.WaitlistRepo.Delete: %v", err)
			return fmt.Errorf("failed to reorder waitlist: %w", err)
		}
	}

	return tx.Commit(ctx)
}

// reorderArgs flattens reorder into parallel slices ordered by position.
func reorderArgs(reorder map[string]int) ([]string, []int) {
	users := make([]string, 0, len(reorder))
	for u := range reorder {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return reorder[users[i]] < reorder[users[j]] })

	positions := make([]int, len(users))
	for i, u := range users {
		positions[i] = reorder[u]
	}
	return users, positions
}

func (r *WaitlistRepo) EventIDs(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT DISTINCT event_id FROM waitlist_entries ORDER BY event_id`)
	if err != nil {
		r.l.Errorf(ctx, "postgres.WaitlistRepo.EventIDs: %v", err)
		return nil, err
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}
