package models

import (
	"fmt"
	"strings"
	"time"

	dErrors "emargement/pkg/domain-errors"
	keys "emargement/pkg/platform/strings"
)

// EventIDPrefix prefixes generated event ids.
const EventIDPrefix = "evt"

// Event is the aggregate root for one check-in session's guest list.
//
// Invariants:
//   - Name and Date are non-empty
//   - Attendees is non-empty at creation and only grows afterwards
//   - Attendee registration ids are unique after NormalizeKey (first wins)
//
// Attendees is replaced wholesale on every mutation; a slice obtained from
// an Event is never written to afterwards.
type Event struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Date      string    `json:"date"`
	Attendees []Guest   `json:"attendees"`
	CreatedAt time.Time `json:"created_at"`
}

// Stats is the aggregate attendance projection of an Event.
type Stats struct {
	Total   int `json:"total"`
	Present int `json:"present"`
	Pending int `json:"pending"`
}

// EventID derives an event id from the creation time.
func EventID(now time.Time) string {
	return fmt.Sprintf("%s-%d", EventIDPrefix, now.UnixMilli())
}

// NewEvent validates the creation inputs and builds the Event. Guests whose
// normalized registration id repeats an earlier one are dropped and returned
// separately so callers can report them.
func NewEvent(id, name, date string, guests []Guest, now time.Time) (*Event, []Guest, error) {
	name = strings.TrimSpace(name)
	date = strings.TrimSpace(date)
	if name == "" {
		return nil, nil, dErrors.New(dErrors.CodeValidation, "event name is required")
	}
	if date == "" {
		return nil, nil, dErrors.New(dErrors.CodeValidation, "event date is required")
	}
	if len(guests) == 0 {
		return nil, nil, dErrors.New(dErrors.CodeValidation, "guest list is required")
	}
	if id == "" {
		return nil, nil, dErrors.New(dErrors.CodeInvariantViolation, "event id cannot be empty")
	}

	attendees, dropped := dedupeGuests(guests)
	if len(attendees) == 0 {
		return nil, nil, dErrors.New(dErrors.CodeValidation, "guest list has no usable registration ids")
	}
	return &Event{
		ID:        id,
		Name:      name,
		Date:      date,
		Attendees: attendees,
		CreatedAt: now,
	}, dropped, nil
}

// FindByKey returns the first attendee whose normalized registration id
// equals the normalized code.
func (e *Event) FindByKey(code string) (int, Guest, bool) {
	key := keys.NormalizeKey(code)
	if key == "" {
		return -1, Guest{}, false
	}
	for i, g := range e.Attendees {
		if g.Key() == key {
			return i, g, true
		}
	}
	return -1, Guest{}, false
}

// HasKey reports whether code already identifies an attendee.
func (e *Event) HasKey(code string) bool {
	_, _, ok := e.FindByKey(code)
	return ok
}

// Stats counts total, present and pending attendees.
func (e *Event) Stats() Stats {
	s := Stats{Total: len(e.Attendees)}
	for _, g := range e.Attendees {
		if g.Present {
			s.Present++
		}
	}
	s.Pending = s.Total - s.Present
	return s
}

// Filter returns the attendees whose search text contains the normalized
// query, in list order. An empty query returns every attendee.
func (e *Event) Filter(query string) []Guest {
	q := keys.NormalizeKey(query)
	out := make([]Guest, 0, len(e.Attendees))
	for _, g := range e.Attendees {
		if q == "" || strings.Contains(g.SearchText(), q) {
			out = append(out, g)
		}
	}
	return out
}

// Clone returns a copy whose attendee slice can be handed out freely.
func (e *Event) Clone() *Event {
	c := *e
	c.Attendees = append([]Guest(nil), e.Attendees...)
	return &c
}

func dedupeGuests(guests []Guest) (kept, dropped []Guest) {
	seen := make(map[string]struct{}, len(guests))
	kept = make([]Guest, 0, len(guests))
	for _, g := range guests {
		key := g.Key()
		if key == "" {
			dropped = append(dropped, g)
			continue
		}
		if _, ok := seen[key]; ok {
			dropped = append(dropped, g)
			continue
		}
		seen[key] = struct{}{}
		kept = append(kept, g)
	}
	return kept, dropped
}
