package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"emargement/internal/checkin"
	"emargement/internal/checkin/models"
	"emargement/internal/platform/metrics"
	registrymodels "emargement/internal/registry/models"
	dErrors "emargement/pkg/domain-errors"
	"emargement/pkg/requestcontext"
)

var tracer = otel.Tracer("emargement/internal/checkin/service")

// Registry is the part of the event registry a scan reads and updates.
type Registry interface {
	ActiveEvent(ctx context.Context) (*registrymodels.Event, bool)
	MarkPresent(ctx context.Context, eventID, registrationID string, at time.Time) (registrymodels.Guest, bool, error)
}

// History records every scan outcome.
type History interface {
	Append(ctx context.Context, outcome models.ScanOutcome) models.ScanOutcome
	List(ctx context.Context) []models.ScanOutcome
}

// Service turns scanned codes into recorded check-ins.
type Service struct {
	mu       sync.Mutex
	registry Registry
	history  History
	logger   *slog.Logger
	metrics  *metrics.Metrics
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
func New(registry Registry, history History, opts ...Option) *Service {
	s := &Service{registry: registry, history: history}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Scan reconciles code against the active event, marks a matched guest
// present and appends the outcome to the history. Scans are handled one at a
// time. An unknown code or a missing event is an outcome, not an error; the
// error return is reserved for a failed attendance update, in which case the
// outcome is still recorded.
func (s *Service) Scan(ctx context.Context, code string) (models.ScanOutcome, error) {
	ctx, span := tracer.Start(ctx, "checkin.Scan")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	now := requestcontext.Now(ctx)
	event, _ := s.registry.ActiveEvent(ctx)
	outcome := checkin.Reconcile(code, event, now)

	var markErr error
	if outcome.Matched() {
		guest, changed, err := s.registry.MarkPresent(ctx, outcome.EventID, outcome.RegistrationID, now)
		if err != nil {
			markErr = dErrors.Wrap(err, dErrors.CodeInternal, "failed to record check-in")
		} else if !changed {
			s.logDebug(ctx, "guest already present",
				"event_id", outcome.EventID,
				"registration_id", guest.RegistrationID,
				"present_at", guest.PresentAt,
			)
		}
	}

	outcome = s.history.Append(ctx, outcome)
	span.SetAttributes(
		attribute.Int64("scan.id", outcome.ID),
		attribute.String("scan.status", string(outcome.Status)),
		attribute.String("scan.reason", string(outcome.Reason)),
		attribute.String("event.id", outcome.EventID),
	)
	if s.metrics != nil {
		s.metrics.ObserveScan(string(outcome.Status), string(outcome.Reason), start)
	}

	if markErr != nil {
		span.RecordError(markErr)
		span.SetStatus(codes.Error, "check-in not recorded")
		s.logError(ctx, "check-in not recorded",
			"scan_id", outcome.ID,
			"event_id", outcome.EventID,
			"registration_id", outcome.RegistrationID,
			"error", markErr,
		)
		return outcome, markErr
	}
	s.logInfo(ctx, "scan reconciled",
		"scan_id", outcome.ID,
		"status", outcome.Status,
		"reason", outcome.Reason,
		"event_id", outcome.EventID,
		"registration_id", outcome.RegistrationID,
	)
	return outcome, nil
}

// History returns the recorded outcomes, most recent first.
func (s *Service) History(ctx context.Context) []models.ScanOutcome {
	return s.history.List(ctx)
}

func (s *Service) log(ctx context.Context, level slog.Level, msg string, attributes ...any) {
	if s.logger == nil {
		return
	}
	if requestID := requestcontext.RequestID(ctx); requestID != "" {
		attributes = append(attributes, "request_id", requestID)
	}
	s.logger.Log(ctx, level, msg, attributes...)
}

func (s *Service) logDebug(ctx context.Context, msg string, attributes ...any) {
	s.log(ctx, slog.LevelDebug, msg, attributes...)
}

func (s *Service) logInfo(ctx context.Context, msg string, attributes ...any) {
	s.log(ctx, slog.LevelInfo, msg, attributes...)
}

func (s *Service) logError(ctx context.Context, msg string, attributes ...any) {
	s.log(ctx, slog.LevelError, msg, attributes...)
}
