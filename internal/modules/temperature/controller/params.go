package controller

import (
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Numeric query params are lenient: a missing or malformed value falls back to
// the default and never produces a 400. Range is not checked.

func intParam(r *http.Request, key string, def int) int {
	s := strings.TrimSpace(r.URL.Query().Get(key))
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

func floatParam(r *http.Request, key string, def float64) float64 {
	s := strings.TrimSpace(r.URL.Query().Get(key))
	if s == "" {
		return def
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return def
	}
	return f
}

// stringParam returns def only when key is absent; an empty value is kept.
func stringParam(r *http.Request, key string, def string) string {
	q := r.URL.Query()
	if !q.Has(key) {
		return def
	}
	return q.Get(key)
}

// daysAgo and hoursAgo go through AddDate so that huge values cannot overflow
// time.Duration. Negative values put the cutoff in the future.
func daysAgo(now time.Time, days int) time.Time {
	return now.UTC().AddDate(0, 0, -days)
}

func hoursAgo(now time.Time, hours int) time.Time {
	return now.UTC().AddDate(0, 0, -(hours / 24)).Add(-time.Duration(hours%24) * time.Hour)
}
