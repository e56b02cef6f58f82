package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"emargement/internal/checkin/models"
	"emargement/internal/scanner"
	dErrors "emargement/pkg/domain-errors"
	"emargement/pkg/platform/httputil"
	"emargement/pkg/requestcontext"
)

// Service defines the check-in operations the HTTP layer needs.
type Service interface {
	Scan(ctx context.Context, code string) (models.ScanOutcome, error)
	History(ctx context.Context) []models.ScanOutcome
}

// ScannerControl is the attached scan session, if any.
type ScannerControl interface {
	Start()
	Stop()
	State() scanner.State
}

type ScanRequest struct {
	Code string `json:"code"`
}

type OutcomeResponse struct {
	models.ScanOutcome
	DisplayCode string `json:"display_code"`
	DisplayTime string `json:"display_time"`
}

type HistoryResponse struct {
	Outcomes []OutcomeResponse `json:"outcomes"`
}

type ScannerResponse struct {
	State string `json:"state"`
}

// Handler serves scan submission, history and scanner control endpoints.
type Handler struct {
	checkin  Service
	scanner  ScannerControl
	logger   *slog.Logger
	location *time.Location
}

// New creates a check-in Handler. sc may be nil when no scanner is attached.
func New(checkin Service, sc ScannerControl, logger *slog.Logger, loc *time.Location) *Handler {
	if loc == nil {
		loc = time.Local
	}
	return &Handler{checkin: checkin, scanner: sc, logger: logger, location: loc}
}

// Register registers the check-in routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/scans", h.handleScan)
	r.Get("/scans/history", h.handleHistory)
	r.Get("/scanner", h.handleScannerState)
	r.Post("/scanner/start", h.handleScannerStart)
	r.Post("/scanner/stop", h.handleScannerStop)
}

// handleScan reconciles a submitted code. Unknown codes are a normal 200
// outcome; only a failed attendance update is an error.
func (h *Handler) handleScan(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	var req ScanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "invalid scan request",
			"request_id", requestID,
			"error", err.Error(),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	outcome, err := h.checkin.Scan(ctx, req.Code)
	if err != nil {
		h.logger.ErrorContext(ctx, "scan failed",
			"request_id", requestID,
			"scan_id", outcome.ID,
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, h.toResponse(outcome))
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	outcomes := h.checkin.History(r.Context())
	resp := HistoryResponse{Outcomes: make([]OutcomeResponse, 0, len(outcomes))}
	for _, o := range outcomes {
		resp.Outcomes = append(resp.Outcomes, h.toResponse(o))
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleScannerState(w http.ResponseWriter, _ *http.Request) {
	if !h.requireScanner(w) {
		return
	}
	httputil.WriteJSON(w, http.StatusOK, ScannerResponse{State: h.scanner.State().String()})
}

func (h *Handler) handleScannerStart(w http.ResponseWriter, r *http.Request) {
	if !h.requireScanner(w) {
		return
	}
	h.scanner.Start()
	h.logger.InfoContext(r.Context(), "scanner started", "request_id", requestcontext.RequestID(r.Context()))
	httputil.WriteJSON(w, http.StatusOK, ScannerResponse{State: h.scanner.State().String()})
}

func (h *Handler) handleScannerStop(w http.ResponseWriter, r *http.Request) {
	if !h.requireScanner(w) {
		return
	}
	h.scanner.Stop()
	h.logger.InfoContext(r.Context(), "scanner stopped", "request_id", requestcontext.RequestID(r.Context()))
	httputil.WriteJSON(w, http.StatusOK, ScannerResponse{State: h.scanner.State().String()})
}

func (h *Handler) requireScanner(w http.ResponseWriter) bool {
	if h.scanner == nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "no scanner attached"))
		return false
	}
	return true
}

func (h *Handler) toResponse(o models.ScanOutcome) OutcomeResponse {
	return OutcomeResponse{
		ScanOutcome: o,
		DisplayCode: o.DisplayCode(),
		DisplayTime: o.FormatTimestamp(h.location),
	}
}
