package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/jmoiron/sqlx"

	"tempmon-server/internal/utils"
)

type healthchecker interface {
	handleHealthz(w http.ResponseWriter, r *http.Request)
}

type healthcheckerImpl struct {
	db     *sqlx.DB
	logger *slog.Logger
}

func NewHealthchecker(db *sqlx.DB, logger *slog.Logger) healthchecker {
	return &healthcheckerImpl{db: db, logger: logger}
}

func (h *healthcheckerImpl) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if err := h.db.PingContext(r.Context()); err != nil {
		h.logger.Error("failed to check database connectivity", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to check database connectivity")
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func registerHealthcheck(mux *http.ServeMux, db *sqlx.DB, logger *slog.Logger) {
	healthchecker := NewHealthchecker(db, logger)
	mux.HandleFunc("GET /healthz", healthchecker.handleHealthz)
}
