// Package history keeps the rolling log of recent scan outcomes shown at the
// door. It is a diagnostic view: evicted entries are gone for good.
package history

import (
	"context"
	"sync"

	"emargement/internal/checkin/models"
	"emargement/pkg/requestcontext"
)

// DefaultCapacity is the number of outcomes kept when none is configured.
const DefaultCapacity = 15

// InMemory is a fixed-capacity ring of outcomes, newest first.
type InMemory struct {
	mu     sync.RWMutex
	buf    []models.ScanOutcome
	next   int // slot the next Append writes
	size   int
	lastID int64
}

// NewInMemory constructs a log holding at most capacity outcomes.
// A non-positive capacity selects DefaultCapacity.
func NewInMemory(capacity int) *InMemory {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &InMemory{buf: make([]models.ScanOutcome, capacity)}
}

// Append stamps the outcome with an id and records it, evicting the oldest
// entry when full. Ids derive from the clock in milliseconds but never repeat
// or go backwards, even for scans within the same millisecond.
func (s *InMemory) Append(ctx context.Context, outcome models.ScanOutcome) models.ScanOutcome {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := requestcontext.Now(ctx).UnixMilli()
	if id <= s.lastID {
		id = s.lastID + 1
	}
	s.lastID = id
	outcome.ID = id

	s.buf[s.next] = outcome
	s.next = (s.next + 1) % len(s.buf)
	if s.size < len(s.buf) {
		s.size++
	}
	return outcome
}

// List returns a copy of the log, most recent first.
func (s *InMemory) List(_ context.Context) []models.ScanOutcome {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.ScanOutcome, 0, s.size)
	for i := 1; i <= s.size; i++ {
		out = append(out, s.buf[(s.next-i+len(s.buf))%len(s.buf)])
	}
	return out
}

func (s *InMemory) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.size
}

func (s *InMemory) Capacity() int {
	return len(s.buf)
}

// Clear empties the log. Ids keep increasing afterwards.
func (s *InMemory) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.buf)
	s.next = 0
	s.size = 0
}
