package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/jmoiron/sqlx"
)

// NewMux returns a mux with the operational endpoints; feature modules add
// their own routes to it.
func NewMux(db *sqlx.DB, logger *slog.Logger) *http.ServeMux {
	if logger == nil {
		logger = slog.Default()
	}
	mux := http.NewServeMux()
	registerHealthcheck(mux, db, logger)
	registerMetrics(mux)
	return mux
}
