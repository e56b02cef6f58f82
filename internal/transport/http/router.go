package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"emargement/internal/platform/middleware"
	"emargement/pkg/platform/httputil"
)

// RouteRegistrar is implemented by feature handlers that mount their routes.
type RouteRegistrar interface {
	Register(r chi.Router)
}

// NewRouter wires the shared middleware stack, the operational endpoints and
// every feature handler. gatherer backs /metrics.
func NewRouter(logger *slog.Logger, gatherer prometheus.Gatherer, handlers ...RouteRegistrar) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestTime)
	r.Use(middleware.Logger(logger))
	r.Use(chimw.StripSlashes)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	for _, h := range handlers {
		h.Register(r)
	}
	return r
}
