// Package repository declares the storage contracts of the waitlist service.
package repository

import (
	"context"
	"errors"

	"github.com/vogiaan1904/ticketbottle-waitlist/internal/models"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("duplicate entry")
)

// WaitlistRepository stores the ordered entries of every event.
// Callers serialize writes per event; implementations only guarantee that a
// single call is applied atomically.
type WaitlistRepository interface {
	// List returns the entries of an event ordered by position.
	List(ctx context.Context, eventID string) ([]models.WaitlistEntry, error)
	Get(ctx context.Context, eventID, userID string) (models.WaitlistEntry, error)
	Count(ctx context.Context, eventID string) (int64, error)
	Insert(ctx context.Context, entry models.WaitlistEntry) error
	// Delete removes one entry and applies the new positions of the
	// remaining entries (user id -> position) in the same write.
	Delete(ctx context.Context, eventID, userID string, reorder map[string]int) error
	// EventIDs returns every event that has at least one entry.
	EventIDs(ctx context.Context) ([]string, error)
}

// CredentialRepository stores the booking credential (session cookie) of
// each user. Get returns ErrNotFound when none is stored.
type CredentialRepository interface {
	Get(ctx context.Context, userID string) (string, error)
	Put(ctx context.Context, userID, credential string) error
	Delete(ctx context.Context, userID string) error
}
