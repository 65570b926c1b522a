package controller

import (
	"log/slog"
	"net/http"
	"time"

	"tempmon-server/internal/modules/temperature/repository"
	"tempmon-server/internal/modules/temperature/types"
)

type TemperatureController interface {
	RegisterRoutes(mux *http.ServeMux)
}

type temperatureControllerImpl struct {
	repository repository.TemperatureRepository
	database   types.DatabaseInfo
	logger     *slog.Logger
	now        func() time.Time
}

// NewTemperatureController serves the query API. database carries the host and
// name reported by /api/system_info; the version is read from the server.
func NewTemperatureController(repository repository.TemperatureRepository, database types.DatabaseInfo, logger *slog.Logger) TemperatureController {
	if logger == nil {
		logger = slog.Default()
	}
	return &temperatureControllerImpl{
		repository: repository,
		database:   database,
		logger:     logger,
		now:        time.Now,
	}
}

func (c *temperatureControllerImpl) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", c.handleDashboard)
	mux.HandleFunc("GET /api/current", c.handleCurrent)
	mux.HandleFunc("GET /api/measurements", c.handleMeasurements)
	mux.HandleFunc("GET /api/hourly", c.handleHourly)
	mux.HandleFunc("GET /api/daily", c.handleDaily)
	mux.HandleFunc("GET /api/statistics", c.handleStatistics)
	mux.HandleFunc("GET /api/alerts", c.handleAlerts)
	mux.HandleFunc("GET /api/system_info", c.handleSystemInfo)
}
