package temperature

import (
	"log/slog"
	"net/http"

	"github.com/jmoiron/sqlx"

	"tempmon-server/internal/config"
	"tempmon-server/internal/modules/temperature/controller"
	"tempmon-server/internal/modules/temperature/repository"
	"tempmon-server/internal/modules/temperature/types"
)

func RegisterFeature(mux *http.ServeMux, db *sqlx.DB, cfg config.DBConfig, logger *slog.Logger) error {
	temperatureRepository, err := repository.NewRepository(db)
	if err != nil {
		return err
	}
	temperatureController := controller.NewTemperatureController(temperatureRepository, DatabaseInfo(cfg), logger)
	temperatureController.RegisterRoutes(mux)
	return nil
}

// DatabaseInfo is what /api/system_info reports as host and name. For SQLite
// the file path stands in for the database name.
func DatabaseInfo(cfg config.DBConfig) types.DatabaseInfo {
	if cfg.Driver == config.DriverSQLite {
		return types.DatabaseInfo{Host: "localhost", Name: cfg.SQLitePath}
	}
	return types.DatabaseInfo{Host: cfg.Host, Name: cfg.Name}
}
