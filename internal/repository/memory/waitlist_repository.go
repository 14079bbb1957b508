// Package memory keeps waitlists and credentials in process memory.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/vogiaan1904/ticketbottle-waitlist/internal/models"
	"github.com/vogiaan1904/ticketbottle-waitlist/internal/repository"
)

type waitlistRepository struct {
	mu     sync.RWMutex
	events map[string]map[string]models.WaitlistEntry
}

func NewWaitlistRepository() repository.WaitlistRepository {
	return &waitlistRepository{
		events: make(map[string]map[string]models.WaitlistEntry),
	}
}

func (r *waitlistRepository) List(ctx context.Context, eventID string) ([]models.WaitlistEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := make([]models.WaitlistEntry, 0, len(r.events[eventID]))
	for _, e := range r.events[eventID] {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Position < entries[j].Position
	})

	return entries, nil
}

func (r *waitlistRepository) Get(ctx context.Context, eventID, userID string) (models.WaitlistEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.events[eventID][userID]
	if !ok {
		return models.WaitlistEntry{}, repository.ErrNotFound
	}
	return e, nil
}

func (r *waitlistRepository) Count(ctx context.Context, eventID string) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return int64(len(r.events[eventID])), nil
}

func (r *waitlistRepository) Insert(ctx context.Context, entry models.WaitlistEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries, ok := r.events[entry.EventID]
	if !ok {
		entries = make(map[string]models.WaitlistEntry)
		r.events[entry.EventID] = entries
	}
	if _, exists := entries[entry.UserID]; exists {
		return repository.ErrDuplicate
	}
	entries[entry.UserID] = entry

	return nil
}

func (r *waitlistRepository) Delete(ctx context.Context, eventID, userID string, reorder map[string]int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries := r.events[eventID]
	if _, ok := entries[userID]; !ok {
		return repository.ErrNotFound
	}
	delete(entries, userID)

	for uID, pos := range reorder {
		if e, ok := entries[uID]; ok {
			e.Position = pos
			entries[uID] = e
		}
	}

	if len(entries) == 0 {
		delete(r.events, eventID)
	}

	return nil
}

func (r *waitlistRepository) EventIDs(ctx context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.events))
	for id := range r.events {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	return ids, nil
}
