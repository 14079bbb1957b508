package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/vogiaan1904/ticketbottle-waitlist/internal/repository"
)

type CredentialRepo struct{ pool DB }

func NewCredentialRepo(pool DB) *CredentialRepo { return &CredentialRepo{pool: pool} }

// Get returns ErrNotFound for unknown users and for users with an empty cookie.
func (r *CredentialRepo) Get(ctx context.Context, userID string) (string, error) {
	var cookie string
	err := r.pool.QueryRow(ctx, `SELECT cookie FROM user_credentials WHERE user_id=$1`, userID).Scan(&cookie)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", repository.ErrNotFound
		}
		return "", err
	}
	if cookie == "" {
		return "", repository.ErrNotFound
	}
	return cookie, nil
}

func (r *CredentialRepo) Put(ctx context.Context, userID, credential string) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO user_credentials (user_id, cookie, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (user_id) DO UPDATE SET cookie = EXCLUDED.cookie, updated_at = now()`,
		userID, credential)
	return err
}

func (r *CredentialRepo) Delete(ctx context.Context, userID string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM user_credentials WHERE user_id=$1`, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}
