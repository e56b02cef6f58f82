package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"emargement/internal/platform/metrics"
	"emargement/internal/registry/importer"
	"emargement/internal/registry/models"
	dErrors "emargement/pkg/domain-errors"
	"emargement/pkg/platform/sentinel"
	"emargement/pkg/requestcontext"
)

var tracer = otel.Tracer("emargement/internal/registry/service")

// maxIDAttempts bounds the suffixes tried when a time-derived id is taken.
const maxIDAttempts = 100

type EventStore interface {
	Create(ctx context.Context, event *models.Event) error
	FindByID(ctx context.Context, eventID string) (*models.Event, error)
	List(ctx context.Context) ([]*models.Event, error)
	SetActive(ctx context.Context, eventID string) error
	Active(ctx context.Context) (*models.Event, error)
	Execute(ctx context.Context, eventID string, fn func([]models.Guest) ([]models.Guest, error)) (*models.Event, error)
}

// Service owns the lifecycle of events and their guest lists.
type Service struct {
	events  EventStore
	logger  *slog.Logger
	metrics *metrics.Metrics
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// New constructs a Service.
func New(events EventStore, opts ...Option) *Service {
	s := &Service{events: events}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateEvent stores a new event built from guests and makes it the active
// one. Guests repeating an earlier registration id are dropped.
func (s *Service) CreateEvent(ctx context.Context, name, date string, guests []models.Guest) (*models.Event, error) {
	now := requestcontext.Now(ctx)

	var (
		event   *models.Event
		dropped []models.Guest
		err     error
	)
	base := models.EventID(now)
	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		eventID := base
		if attempt > 0 {
			eventID = fmt.Sprintf("%s-%d", base, attempt)
		}
		event, dropped, err = models.NewEvent(eventID, name, date, guests, now)
		if err != nil {
			if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
				return nil, dErrors.New(dErrors.CodeValidation, err.Error())
			}
			return nil, err
		}
		err = s.events.Create(ctx, event)
		if !errors.Is(err, sentinel.ErrConflict) {
			break
		}
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create event")
	}
	if err := s.events.SetActive(ctx, event.ID); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to select new event")
	}

	if len(dropped) > 0 {
		s.logWarn(ctx, "duplicate registration ids dropped",
			"event_id", event.ID,
			"dropped", len(dropped),
			"first_dropped", dropped[0].RegistrationID,
		)
		if s.metrics != nil {
			s.metrics.AddDuplicateGuestsDropped(len(dropped))
		}
	}
	s.logInfo(ctx, "event created",
		"event_id", event.ID,
		"guests", len(event.Attendees),
	)
	if s.metrics != nil {
		s.metrics.IncrementEventsCreated(len(event.Attendees))
	}
	return event, nil
}

// ImportEvent decodes a guest list spreadsheet and creates the event from it.
// Nothing is stored unless every step succeeds.
func (s *Service) ImportEvent(ctx context.Context, name, date, filename string, r io.Reader) (*models.Event, error) {
	ctx, span := tracer.Start(ctx, "registry.ImportEvent")
	defer span.End()
	span.SetAttributes(attribute.String("import.filename", filename))

	event, err := s.importEvent(ctx, name, date, filename, r)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, string(dErrors.CodeOf(err)))
		s.logWarn(ctx, "event import failed",
			"filename", filename,
			"error", err,
		)
		if s.metrics != nil {
			s.metrics.IncrementImportFailures()
		}
		return nil, err
	}
	span.SetAttributes(
		attribute.String("event.id", event.ID),
		attribute.Int("event.guests", len(event.Attendees)),
	)
	return event, nil
}

func (s *Service) importEvent(ctx context.Context, name, date, filename string, r io.Reader) (*models.Event, error) {
	if strings.TrimSpace(name) == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "event name is required")
	}
	if strings.TrimSpace(date) == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "event date is required")
	}
	if r == nil || strings.TrimSpace(filename) == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "guest list file is required")
	}

	rows, err := importer.Decode(r, filename)
	if err != nil {
		return nil, err
	}
	if unknown := importer.UnknownHeaders(rows); len(unknown) > 0 {
		s.logDebug(ctx, "ignored guest list columns", "headers", unknown)
	}
	guests := importer.Build(rows, requestcontext.Now(ctx))
	if len(guests) == 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "guest list is empty")
	}
	return s.CreateEvent(ctx, name, date, guests)
}

// SelectEvent makes eventID the event scans reconcile against.
func (s *Service) SelectEvent(ctx context.Context, eventID string) (*models.Event, error) {
	event, err := s.events.FindByID(ctx, eventID)
	if err != nil {
		return nil, translateStoreError(err, "failed to load event")
	}
	if err := s.events.SetActive(ctx, eventID); err != nil {
		return nil, translateStoreError(err, "failed to select event")
	}
	s.logInfo(ctx, "event selected", "event_id", eventID)
	return event, nil
}

// ActiveEvent returns the selected event, if any.
func (s *Service) ActiveEvent(ctx context.Context) (*models.Event, bool) {
	event, err := s.events.Active(ctx)
	if err != nil {
		if !errors.Is(err, sentinel.ErrNotFound) {
			s.logWarn(ctx, "failed to load active event", "error", err)
		}
		return nil, false
	}
	return event, true
}

func (s *Service) GetEvent(ctx context.Context, eventID string) (*models.Event, error) {
	event, err := s.events.FindByID(ctx, eventID)
	if err != nil {
		return nil, translateStoreError(err, "failed to load event")
	}
	return event, nil
}

// ListEvents returns every event, newest first.
func (s *Service) ListEvents(ctx context.Context) ([]*models.Event, error) {
	events, err := s.events.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list events")
	}
	return events, nil
}

// AddManualGuest prepends an absent guest added at the door. The synthetic
// registration id gets a numeric suffix when it is already taken.
func (s *Service) AddManualGuest(ctx context.Context, eventID, firstName, lastName string) (models.Guest, error) {
	base := models.ManualKey(requestcontext.Now(ctx))
	guest, err := models.NewManualGuest(base, firstName, lastName)
	if err != nil {
		return models.Guest{}, err
	}

	_, err = s.events.Execute(ctx, eventID, func(attendees []models.Guest) ([]models.Guest, error) {
		ev := models.Event{Attendees: attendees}
		for n := 1; ev.HasKey(guest.RegistrationID); n++ {
			guest.RegistrationID = fmt.Sprintf("%s-%d", base, n)
		}
		return append([]models.Guest{guest}, attendees...), nil
	})
	if err != nil {
		return models.Guest{}, translateStoreError(err, "failed to add guest")
	}

	s.logInfo(ctx, "manual guest added",
		"event_id", eventID,
		"registration_id", guest.RegistrationID,
	)
	if s.metrics != nil {
		s.metrics.IncrementManualGuestsAdded()
	}
	return guest, nil
}

var errGuestNotFound = errors.New("guest not found")

// MarkPresent checks in the first attendee whose registration id matches. The
// boolean reports whether this call changed the guest from absent to present;
// a guest already present keeps its first check-in time.
func (s *Service) MarkPresent(ctx context.Context, eventID, registrationID string, at time.Time) (models.Guest, bool, error) {
	var (
		guest   models.Guest
		changed bool
	)
	_, err := s.events.Execute(ctx, eventID, func(attendees []models.Guest) ([]models.Guest, error) {
		ev := models.Event{Attendees: attendees}
		i, g, ok := ev.FindByKey(registrationID)
		if !ok {
			return nil, errGuestNotFound
		}
		changed = !g.Present
		guest = g.MarkPresent(at)
		attendees[i] = guest
		return attendees, nil
	})
	if err != nil {
		if errors.Is(err, errGuestNotFound) {
			return models.Guest{}, false, dErrors.New(dErrors.CodeNotFound, "guest not found")
		}
		return models.Guest{}, false, translateStoreError(err, "failed to record check-in")
	}
	if changed && s.metrics != nil {
		s.metrics.IncrementCheckinsRecorded()
	}
	return guest, changed, nil
}

func (s *Service) Stats(ctx context.Context, eventID string) (models.Stats, error) {
	event, err := s.GetEvent(ctx, eventID)
	if err != nil {
		return models.Stats{}, err
	}
	return event.Stats(), nil
}

// SearchGuests filters the guest list with a case and accent insensitive
// substring query. An empty query returns everyone.
func (s *Service) SearchGuests(ctx context.Context, eventID, query string) ([]models.Guest, error) {
	event, err := s.GetEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	return event.Filter(query), nil
}

func translateStoreError(err error, msg string) error {
	var de *dErrors.Error
	switch {
	case errors.As(err, &de):
		return err
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "event not found")
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.New(dErrors.CodeConflict, "event already exists")
	case errors.Is(err, sentinel.ErrInvalidState):
		return dErrors.Wrap(err, dErrors.CodeInvariantViolation, msg)
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, msg)
	}
}
