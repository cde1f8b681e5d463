// Package httptransport builds the HTTP server for the public API.
package httptransport

import (
	"net/http"
	"time"
)

// ServerConfig carries the listener address and timeout tunables.
type ServerConfig struct {
	Address      string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// NewServer wraps handler in an *http.Server with the configured timeouts.
// The write timeout bounds slow ledger reads; ingestion requests are small.
func NewServer(cfg ServerConfig, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.Address,
		Handler:           handler,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}
}
