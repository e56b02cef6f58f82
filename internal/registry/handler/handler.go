package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"emargement/internal/registry/models"
	dErrors "emargement/pkg/domain-errors"
	"emargement/pkg/platform/httputil"
	"emargement/pkg/requestcontext"
)

// Service defines the registry operations the HTTP layer needs.
type Service interface {
	ImportEvent(ctx context.Context, name, date, filename string, r io.Reader) (*models.Event, error)
	SelectEvent(ctx context.Context, eventID string) (*models.Event, error)
	ActiveEvent(ctx context.Context) (*models.Event, bool)
	GetEvent(ctx context.Context, eventID string) (*models.Event, error)
	ListEvents(ctx context.Context) ([]*models.Event, error)
	AddManualGuest(ctx context.Context, eventID, firstName, lastName string) (models.Guest, error)
	Stats(ctx context.Context, eventID string) (models.Stats, error)
	SearchGuests(ctx context.Context, eventID, query string) ([]models.Guest, error)
}

// Handler serves event and guest list endpoints.
type Handler struct {
	registry       Service
	logger         *slog.Logger
	maxUploadBytes int64
	location       *time.Location
}

// New creates a registry Handler. Check-in times are displayed in loc.
func New(registry Service, logger *slog.Logger, maxUploadBytes int64, loc *time.Location) *Handler {
	if loc == nil {
		loc = time.Local
	}
	return &Handler{
		registry:       registry,
		logger:         logger,
		maxUploadBytes: maxUploadBytes,
		location:       loc,
	}
}

// Register registers the registry routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Route("/events", func(r chi.Router) {
		r.Post("/", h.handleCreateEvent)
		r.Get("/", h.handleListEvents)
		r.Route("/{eventID}", func(r chi.Router) {
			r.Get("/", h.handleGetEvent)
			r.Post("/select", h.handleSelectEvent)
			r.Get("/guests", h.handleSearchGuests)
			r.Post("/guests", h.handleAddGuest)
			r.Get("/stats", h.handleStats)
		})
	})
}

// handleCreateEvent imports a guest list from a multipart upload with the
// fields name, date and file.
func (h *Handler) handleCreateEvent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		h.logger.WarnContext(ctx, "invalid event upload",
			"request_id", requestID,
			"error", err.Error(),
		)
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "guest list file is too large"))
			return
		}
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "expected a multipart form"))
		return
	}

	var (
		file     io.Reader
		filename string
	)
	if f, header, err := r.FormFile("file"); err == nil {
		defer func() { _ = f.Close() }()
		file = f
		filename = header.Filename
	}

	event, err := h.registry.ImportEvent(ctx, r.FormValue("name"), r.FormValue("date"), filename, file)
	if err != nil {
		h.writeServiceError(ctx, w, "failed to import event", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toEventResponse(event, event.ID, h.location))
}

func (h *Handler) handleListEvents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	events, err := h.registry.ListEvents(ctx)
	if err != nil {
		h.writeServiceError(ctx, w, "failed to list events", err)
		return
	}
	activeID := h.activeID(ctx)
	resp := EventListResponse{Events: make([]EventSummary, 0, len(events))}
	for _, ev := range events {
		resp.Events = append(resp.Events, toEventSummary(ev, activeID))
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleGetEvent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	event, err := h.registry.GetEvent(ctx, chi.URLParam(r, "eventID"))
	if err != nil {
		h.writeServiceError(ctx, w, "failed to load event", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toEventResponse(event, h.activeID(ctx), h.location))
}

func (h *Handler) handleSelectEvent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	event, err := h.registry.SelectEvent(ctx, chi.URLParam(r, "eventID"))
	if err != nil {
		h.writeServiceError(ctx, w, "failed to select event", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toEventSummary(event, event.ID))
}

// handleSearchGuests lists the guest list, filtered by the q parameter.
func (h *Handler) handleSearchGuests(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	guests, err := h.registry.SearchGuests(ctx, chi.URLParam(r, "eventID"), r.URL.Query().Get("q"))
	if err != nil {
		h.writeServiceError(ctx, w, "failed to search guests", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, GuestListResponse{
		Guests: toGuestResponses(guests, h.location),
		Total:  len(guests),
	})
}

func (h *Handler) handleAddGuest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req AddGuestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "invalid add guest request",
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	guest, err := h.registry.AddManualGuest(ctx, chi.URLParam(r, "eventID"), req.FirstName, req.LastName)
	if err != nil {
		h.writeServiceError(ctx, w, "failed to add guest", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toGuestResponse(guest, h.location))
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	stats, err := h.registry.Stats(ctx, chi.URLParam(r, "eventID"))
	if err != nil {
		h.writeServiceError(ctx, w, "failed to compute stats", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, stats)
}

func (h *Handler) activeID(ctx context.Context) string {
	if ev, ok := h.registry.ActiveEvent(ctx); ok {
		return ev.ID
	}
	return ""
}

// writeServiceError logs client mistakes at warn and everything else at error.
func (h *Handler) writeServiceError(ctx context.Context, w http.ResponseWriter, msg string, err error) {
	level := slog.LevelError
	if code := dErrors.CodeOf(err); code != dErrors.CodeInternal && code != dErrors.CodeInvariantViolation {
		level = slog.LevelWarn
	}
	h.logger.Log(ctx, level, msg,
		"request_id", requestcontext.RequestID(ctx),
		"error", err.Error(),
	)
	httputil.WriteError(w, err)
}
