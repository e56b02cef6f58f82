package httpserver

import (
	"net/http"
	"time"
)

// New builds an HTTP server with the timeouts used by the check-in API.
// Spreadsheet uploads need a longer read window than plain JSON calls.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
