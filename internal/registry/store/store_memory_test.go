package store

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"emargement/internal/registry/models"
	"emargement/pkg/platform/sentinel"
)

type EventStoreSuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
}

func (s *EventStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
}

func TestEventStoreSuite(t *testing.T) {
	suite.Run(t, new(EventStoreSuite))
}

func (s *EventStoreSuite) newEvent(id string, regIDs ...string) *models.Event {
	guests := make([]models.Guest, 0, len(regIDs))
	for _, r := range regIDs {
		guests = append(guests, models.Guest{RegistrationID: r, Contact: "Guest " + r})
	}
	ev, _, err := models.NewEvent(id, "Gala "+id, "2025-06-12", guests, time.Now())
	s.Require().NoError(err)
	return ev
}

// TestCreationAndLookups verifies events are stored newest first and found by id.
func (s *EventStoreSuite) TestCreationAndLookups() {
	s.Run("lists newest first", func() {
		s.Require().NoError(s.store.Create(s.ctx, s.newEvent("evt-1", "Q1")))
		s.Require().NoError(s.store.Create(s.ctx, s.newEvent("evt-2", "Q1")))

		events, err := s.store.List(s.ctx)
		s.Require().NoError(err)
		s.Require().Len(events, 2)
		s.Equal("evt-2", events[0].ID)
		s.Equal("evt-1", events[1].ID)
	})

	s.Run("rejects duplicate id", func() {
		err := s.store.Create(s.ctx, s.newEvent("evt-1", "Q9"))
		s.ErrorIs(err, sentinel.ErrConflict)
	})

	s.Run("returns ErrNotFound for unknown id", func() {
		_, err := s.store.FindByID(s.ctx, "evt-404")
		s.ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("returned events are copies", func() {
		found, err := s.store.FindByID(s.ctx, "evt-1")
		s.Require().NoError(err)
		found.Attendees[0].Contact = "mutated"

		again, err := s.store.FindByID(s.ctx, "evt-1")
		s.Require().NoError(err)
		s.Equal("Guest Q1", again.Attendees[0].Contact)
	})
}

// TestActiveSelection verifies the single active event pointer.
func (s *EventStoreSuite) TestActiveSelection() {
	s.Run("no selection yet", func() {
		_, err := s.store.Active(s.ctx)
		s.ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("selects a known event", func() {
		s.Require().NoError(s.store.Create(s.ctx, s.newEvent("evt-1", "Q1")))
		s.Require().NoError(s.store.SetActive(s.ctx, "evt-1"))

		active, err := s.store.Active(s.ctx)
		s.Require().NoError(err)
		s.Equal("evt-1", active.ID)
	})

	s.Run("unknown event leaves selection unchanged", func() {
		s.ErrorIs(s.store.SetActive(s.ctx, "evt-404"), sentinel.ErrNotFound)
		active, err := s.store.Active(s.ctx)
		s.Require().NoError(err)
		s.Equal("evt-1", active.ID)
	})
}

// TestExecute verifies copy-on-write attendee updates.
func (s *EventStoreSuite) TestExecute() {
	s.Require().NoError(s.store.Create(s.ctx, s.newEvent("evt-1", "Q1", "Q2")))
	before, err := s.store.FindByID(s.ctx, "evt-1")
	s.Require().NoError(err)

	s.Run("replaces the attendee slice", func() {
		updated, err := s.store.Execute(s.ctx, "evt-1", func(gs []models.Guest) ([]models.Guest, error) {
			gs[0] = gs[0].MarkPresent(time.Now())
			return gs, nil
		})
		s.Require().NoError(err)
		s.True(updated.Attendees[0].Present)
		s.False(before.Attendees[0].Present, "earlier snapshot must not change")
	})

	s.Run("keeps the old list when fn fails", func() {
		boom := errors.New("boom")
		_, err := s.store.Execute(s.ctx, "evt-1", func(gs []models.Guest) ([]models.Guest, error) {
			return append(gs, models.Guest{RegistrationID: "Q3"}), boom
		})
		s.ErrorIs(err, boom)
		found, _ := s.store.FindByID(s.ctx, "evt-1")
		s.Len(found.Attendees, 2)
	})

	s.Run("refuses duplicate keys", func() {
		_, err := s.store.Execute(s.ctx, "evt-1", func(gs []models.Guest) ([]models.Guest, error) {
			return append(gs, models.Guest{RegistrationID: " q1 "}), nil
		})
		s.ErrorIs(err, sentinel.ErrInvalidState)
	})

	s.Run("refuses dropping attendees", func() {
		_, err := s.store.Execute(s.ctx, "evt-1", func(gs []models.Guest) ([]models.Guest, error) {
			return gs[:1], nil
		})
		s.ErrorIs(err, sentinel.ErrInvalidState)
	})

	s.Run("unknown event", func() {
		_, err := s.store.Execute(s.ctx, "evt-404", func(gs []models.Guest) ([]models.Guest, error) {
			return gs, nil
		})
		s.ErrorIs(err, sentinel.ErrNotFound)
	})
}

// TestConcurrentAppends verifies writers are serialized.
func (s *EventStoreSuite) TestConcurrentAppends() {
	s.Require().NoError(s.store.Create(s.ctx, s.newEvent("evt-1", "Q0")))
	const writers = 50

	var wg sync.WaitGroup
	for i := range writers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.store.Execute(s.ctx, "evt-1", func(gs []models.Guest) ([]models.Guest, error) {
				return append(gs, models.Guest{RegistrationID: "W" + strconv.Itoa(i)}), nil
			})
			s.NoError(err)
		}()
	}
	wg.Wait()

	found, err := s.store.FindByID(s.ctx, "evt-1")
	s.Require().NoError(err)
	s.Len(found.Attendees, writers+1)
}
