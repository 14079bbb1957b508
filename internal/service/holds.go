package service

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
	"sync"
)

// HoldRegistry tracks events whose availability sweep is paused.
type HoldRegistry struct {
	mu   sync.RWMutex
	held map[string]struct{}
}

// NewHoldRegistry seeds the registry from event ids or event URLs.
// Entries that cannot be parsed are returned as an error after the valid
// ones are applied.
func NewHoldRegistry(refs []string) (*HoldRegistry, error) {
	h := &HoldRegistry{held: make(map[string]struct{})}

	var bad []string
	for _, ref := range refs {
		if _, err := h.Hold(ref); err != nil {
			bad = append(bad, ref)
		}
	}
	if len(bad) > 0 {
		return h, fmt.Errorf("%w: unparseable held events %v", ErrInvalidInput, bad)
	}

	return h, nil
}

func (h *HoldRegistry) Hold(ref string) (string, error) {
	id, err := ParseEventRef(ref)
	if err != nil {
		return "", err
	}

	h.mu.Lock()
	h.held[id] = struct{}{}
	h.mu.Unlock()

	return id, nil
}

func (h *HoldRegistry) Release(ref string) (string, error) {
	id, err := ParseEventRef(ref)
	if err != nil {
		return "", err
	}

	h.mu.Lock()
	delete(h.held, id)
	h.mu.Unlock()

	return id, nil
}

func (h *HoldRegistry) IsHeld(eventID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.held[eventID]
	return ok
}

func (h *HoldRegistry) List() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	ids := make([]string, 0, len(h.held))
	for id := range h.held {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// ParseEventRef accepts a bare event id or an event page URL carrying the
// id either as an eventId query parameter or as /events/{id} in the path.
func ParseEventRef(ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", fmt.Errorf("%w: empty event reference", ErrInvalidInput)
	}

	if !strings.Contains(ref, "/") && !strings.Contains(ref, "?") {
		return ref, nil
	}

	u, err := url.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if id := u.Query().Get("eventId"); id != "" {
		return id, nil
	}

	segs := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i := 0; i < len(segs)-1; i++ {
		if segs[i] == "events" && segs[i+1] != "" {
			return segs[i+1], nil
		}
	}

	return "", fmt.Errorf("%w: no event id in %q", ErrInvalidInput, ref)
}
