package memory

import (
	"context"
	"sync"

	"github.com/vogiaan1904/ticketbottle-waitlist/internal/repository"
)

// CredentialRepository is a map-backed credential store.
type CredentialRepository struct {
	mu    sync.RWMutex
	creds map[string]string
}

func NewCredentialRepository() *CredentialRepository {
	return &CredentialRepository{creds: make(map[string]string)}
}

func (r *CredentialRepository) Get(ctx context.Context, userID string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.creds[userID]
	if !ok || c == "" {
		return "", repository.ErrNotFound
	}
	return c, nil
}

func (r *CredentialRepository) Put(ctx context.Context, userID, credential string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.creds[userID] = credential
	return nil
}

func (r *CredentialRepository) Delete(ctx context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.creds[userID]; !ok {
		return repository.ErrNotFound
	}
	delete(r.creds, userID)
	return nil
}
