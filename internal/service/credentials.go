package service

import (
	"context"
	"errors"
	"strings"

	"github.com/vogiaan1904/ticketbottle-waitlist/internal/repository"
)

type fallbackCredentials struct {
	repository.CredentialRepository
	fallback string
}

// WithDefaultCredential serves fallback to users that have no credential of
// their own. An empty fallback returns repo unchanged.
func WithDefaultCredential(repo repository.CredentialRepository, fallback string) repository.CredentialRepository {
	fallback = strings.TrimSpace(fallback)
	if fallback == "" {
		return repo
	}
	return &fallbackCredentials{CredentialRepository: repo, fallback: fallback}
}

func (f *fallbackCredentials) Get(ctx context.Context, userID string) (string, error) {
	c, err := f.CredentialRepository.Get(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return f.fallback, nil
	}
	return c, err
}
