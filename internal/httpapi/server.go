package httpapi

import (
	"log/slog"
	"net/http"
	"time"

	"tempmon-server/internal/config"
)

// Handler wraps mux with request ids, access logging and metrics.
func Handler(mux *http.ServeMux, logger *slog.Logger) http.Handler {
	return requestID(requestLogger(logger, instrument(mux)))
}

func NewServer(cfg config.Config, mux *http.ServeMux, logger *slog.Logger) *http.Server {
	return &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           Handler(mux, logger),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
		ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}
}
