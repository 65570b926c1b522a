package controller

import (
	"errors"
	"net/http"

	"tempmon-server/internal/modules/temperature/repository"
	"tempmon-server/internal/utils"
)

const (
	msgConnectionFailed = "Database connection failed"
	msgNoData           = "No data available"
)

type envelope struct {
	Success bool   `json:"success"`
	Count   *int   `json:"count,omitempty"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func writeData(w http.ResponseWriter, data any) {
	utils.WriteJSON(w, http.StatusOK, envelope{Success: true, Data: data})
}

func writeList[T any](w http.ResponseWriter, items []T) {
	if items == nil {
		items = []T{}
	}
	n := len(items)
	utils.WriteJSON(w, http.StatusOK, envelope{Success: true, Count: &n, Data: items})
}

// writeSoftFailure reports absence of data: the request worked, there was nothing to return.
func writeSoftFailure(w http.ResponseWriter, status int, msg string) {
	utils.WriteJSON(w, status, envelope{Success: false, Error: msg})
}

// writeFailure maps a repository error to the response. Connection failures
// use a bare {"error": ...} body with no success key; anything else reports
// the driver's message.
func (c *temperatureControllerImpl) writeFailure(w http.ResponseWriter, op string, err error) {
	if errors.Is(err, repository.ErrConnectionFailed) {
		c.logger.Error("database connection failed", "op", op, "error", err)
		utils.WriteJSON(w, http.StatusInternalServerError, map[string]string{"error": msgConnectionFailed})
		return
	}
	c.logger.Error("query failed", "op", op, "error", err)
	utils.WriteJSON(w, http.StatusInternalServerError, envelope{Success: false, Error: err.Error()})
}
