package testutil

import (
	"net/http"
	"time"

	"emargement/pkg/requestcontext"
)

// WithRequestTime pins the request-scoped clock, the way the request-time
// middleware would, so synthetic ids and check-in times are predictable.
func WithRequestTime(req *http.Request, t time.Time) *http.Request {
	return req.WithContext(requestcontext.WithTime(req.Context(), t))
}
