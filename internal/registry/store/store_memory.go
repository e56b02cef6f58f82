package store

import (
	"context"
	"fmt"
	"sync"

	"emargement/internal/registry/models"
	"emargement/pkg/platform/sentinel"
)

// Error Contract:
// All store methods follow this error pattern:
// - Return ErrNotFound when the requested event does not exist
// - Return ErrConflict when creating an event whose id is taken
// - Return ErrInvalidState when a mutation would break attendee invariants
// Events returned by the store are clones; callers may keep them.
type InMemory struct {
	mu       sync.RWMutex
	events   []*models.Event // newest first
	activeID string
}

// NewInMemory constructs an empty event store.
func NewInMemory() *InMemory {
	return &InMemory{}
}

// Create prepends the event so List returns the newest first.
func (s *InMemory) Create(_ context.Context, event *models.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.indexOf(event.ID) >= 0 {
		return fmt.Errorf("event %s: %w", event.ID, sentinel.ErrConflict)
	}
	s.events = append([]*models.Event{event.Clone()}, s.events...)
	return nil
}

func (s *InMemory) FindByID(_ context.Context, eventID string) (*models.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.indexOf(eventID)
	if i < 0 {
		return nil, fmt.Errorf("event %s: %w", eventID, sentinel.ErrNotFound)
	}
	return s.events[i].Clone(), nil
}

func (s *InMemory) List(_ context.Context) ([]*models.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Event, 0, len(s.events))
	for _, ev := range s.events {
		out = append(out, ev.Clone())
	}
	return out, nil
}

// SetActive selects the event scans reconcile against.
func (s *InMemory) SetActive(_ context.Context, eventID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.indexOf(eventID) < 0 {
		return fmt.Errorf("event %s: %w", eventID, sentinel.ErrNotFound)
	}
	s.activeID = eventID
	return nil
}

// Active returns the selected event, or ErrNotFound when none is selected.
func (s *InMemory) Active(_ context.Context) (*models.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.activeID == "" {
		return nil, fmt.Errorf("no active event: %w", sentinel.ErrNotFound)
	}
	i := s.indexOf(s.activeID)
	if i < 0 {
		return nil, fmt.Errorf("active event %s: %w", s.activeID, sentinel.ErrNotFound)
	}
	return s.events[i].Clone(), nil
}

// Execute runs fn on a copy of the event's attendees under the write lock and
// stores the result in place of the old slice. The store keeps the old list
// when fn fails, or when the new list drops an attendee or repeats a key.
func (s *InMemory) Execute(_ context.Context, eventID string, fn func([]models.Guest) ([]models.Guest, error)) (*models.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(eventID)
	if i < 0 {
		return nil, fmt.Errorf("event %s: %w", eventID, sentinel.ErrNotFound)
	}
	current := s.events[i]

	next, err := fn(append([]models.Guest(nil), current.Attendees...))
	if err != nil {
		return nil, err
	}
	if len(next) < len(current.Attendees) {
		return nil, fmt.Errorf("event %s lost attendees: %w", eventID, sentinel.ErrInvalidState)
	}
	if key, dup := firstDuplicateKey(next); dup {
		return nil, fmt.Errorf("event %s: duplicate registration id %q: %w", eventID, key, sentinel.ErrInvalidState)
	}

	updated := *current
	updated.Attendees = next
	s.events[i] = &updated
	return updated.Clone(), nil
}

func (s *InMemory) indexOf(eventID string) int {
	for i, ev := range s.events {
		if ev.ID == eventID {
			return i
		}
	}
	return -1
}

func firstDuplicateKey(guests []models.Guest) (string, bool) {
	seen := make(map[string]struct{}, len(guests))
	for _, g := range guests {
		key := g.Key()
		if _, ok := seen[key]; ok {
			return key, true
		}
		seen[key] = struct{}{}
	}
	return "", false
}
