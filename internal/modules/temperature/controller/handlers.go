package controller

import (
	"bytes"
	"net/http"

	"tempmon-server/internal/modules/temperature/types"
	"tempmon-server/internal/modules/temperature/views"
	"tempmon-server/internal/utils"
)

const (
	defaultLimit        = 100
	defaultHourlyDays   = 7
	defaultDailyDays    = 30
	defaultPeriod       = string(types.PeriodDay)
	defaultThresholdMin = 10.0
	defaultThresholdMax = 30.0
	defaultAlertHours   = 24
)

func (c *temperatureControllerImpl) handleCurrent(w http.ResponseWriter, r *http.Request) {
	m, err := c.repository.GetLatestMeasurement(r.Context())
	if err != nil {
		c.writeFailure(w, "current", err)
		return
	}
	if m == nil {
		writeSoftFailure(w, http.StatusOK, msgNoData)
		return
	}
	writeData(w, m)
}

func (c *temperatureControllerImpl) handleMeasurements(w http.ResponseWriter, r *http.Request) {
	limit := intParam(r, "limit", defaultLimit)

	rows, err := c.repository.GetMeasurements(r.Context(), limit)
	if err != nil {
		c.writeFailure(w, "measurements", err)
		return
	}
	writeList(w, rows)
}

func (c *temperatureControllerImpl) handleHourly(w http.ResponseWriter, r *http.Request) {
	days := intParam(r, "days", defaultHourlyDays)

	rows, err := c.repository.GetHourlyAverages(r.Context(), daysAgo(c.now(), days))
	if err != nil {
		c.writeFailure(w, "hourly", err)
		return
	}
	writeList(w, rows)
}

func (c *temperatureControllerImpl) handleDaily(w http.ResponseWriter, r *http.Request) {
	days := intParam(r, "days", defaultDailyDays)

	rows, err := c.repository.GetDailyAverages(r.Context(), daysAgo(c.now(), days))
	if err != nil {
		c.writeFailure(w, "daily", err)
		return
	}
	writeList(w, rows)
}

func (c *temperatureControllerImpl) handleStatistics(w http.ResponseWriter, r *http.Request) {
	raw := stringParam(r, "period", defaultPeriod)
	period, err := types.ParsePeriod(raw)
	if err != nil {
		writeSoftFailure(w, http.StatusBadRequest, "Invalid period: "+raw)
		return
	}

	stats, err := c.statistics(r, period)
	if err != nil {
		c.writeFailure(w, "statistics", err)
		return
	}
	if stats == nil {
		writeSoftFailure(w, http.StatusOK, "No data available for period: "+string(period))
		return
	}
	writeData(w, stats)
}

// statistics returns nil when the period has no rows.
func (c *temperatureControllerImpl) statistics(r *http.Request, period types.Period) (*types.Statistics, error) {
	since := c.now().UTC().Add(-period.Window())
	agg, err := c.repository.GetStatistics(r.Context(), period.Source(), since)
	if err != nil {
		return nil, err
	}
	if agg.Average == nil {
		return nil, nil
	}
	return &types.Statistics{
		Period:  period,
		Average: *agg.Average,
		Minimum: agg.Minimum,
		Maximum: agg.Maximum,
	}, nil
}

func (c *temperatureControllerImpl) handleAlerts(w http.ResponseWriter, r *http.Request) {
	minTemp := floatParam(r, "min", defaultThresholdMin)
	maxTemp := floatParam(r, "max", defaultThresholdMax)
	hours := intParam(r, "hours", defaultAlertHours)

	rows, err := c.repository.GetAlerts(r.Context(), minTemp, maxTemp, hoursAgo(c.now(), hours))
	if err != nil {
		c.writeFailure(w, "alerts", err)
		return
	}

	alerts := make([]types.Alert, 0, len(rows))
	for _, m := range rows {
		alerts = append(alerts, types.Alert{
			Timestamp:   m.Timestamp,
			Temperature: m.Temperature,
			Type:        types.ClassifyAlert(m.Temperature, minTemp),
		})
	}
	writeData(w, types.AlertReport{
		ThresholdMin: minTemp,
		ThresholdMax: maxTemp,
		Hours:        hours,
		Alerts:       alerts,
		Count:        len(alerts),
	})
}

func (c *temperatureControllerImpl) handleSystemInfo(w http.ResponseWriter, r *http.Request) {
	version, tables, err := c.repository.GetSystemInfo(r.Context())
	if err != nil {
		c.writeFailure(w, "system_info", err)
		return
	}
	if tables == nil {
		tables = []types.TableInfo{}
	}

	db := c.database
	db.Version = version
	writeData(w, types.SystemInfo{
		Database:  db,
		Tables:    tables,
		Timestamp: c.now(),
	})
}

func (c *temperatureControllerImpl) handleDashboard(w http.ResponseWriter, r *http.Request) {
	data := &views.DashboardData{Endpoints: views.DefaultEndpoints}

	latest, err := c.repository.GetLatestMeasurement(r.Context())
	if err != nil {
		c.logger.Error("dashboard: get latest failed", "error", err)
		data.Unavailable = true
	} else {
		data.Latest = latest
		if data.Stats, err = c.statistics(r, types.PeriodDay); err != nil {
			c.logger.Error("dashboard: get statistics failed", "error", err)
			data.Unavailable = true
		}
	}

	var buf bytes.Buffer
	if err := views.RenderDashboard(&buf, data); err != nil {
		c.logger.Error("dashboard template render failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to render page")
		return
	}
	utils.WriteHTML(w, http.StatusOK, buf.Bytes())
}
