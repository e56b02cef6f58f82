package registry

import (
	"log/slog"
	"time"

	"emargement/internal/platform/metrics"
	"emargement/internal/registry/handler"
	"emargement/internal/registry/service"
	"emargement/internal/registry/store"
)

// Service exposes event creation, selection and attendance updates.
type Service = service.Service

// Handler wires HTTP endpoints to the registry service.
type Handler = handler.Handler

// NewService constructs the registry service over a fresh in-memory store.
func NewService(logger *slog.Logger, m *metrics.Metrics) *Service {
	return service.New(store.NewInMemory(), service.WithLogger(logger), service.WithMetrics(m))
}

// NewHandler constructs the HTTP handler for event and guest routes.
func NewHandler(s *Service, logger *slog.Logger, maxUploadBytes int64, loc *time.Location) *Handler {
	return handler.New(s, logger, maxUploadBytes, loc)
}
