package types

import (
	"errors"
	"fmt"
	"time"
)

// Measurement is one raw sensor reading.
type Measurement struct {
	Timestamp   time.Time `json:"timestamp"`
	Temperature float64   `json:"temperature"`
}

// Average is an hourly rollup row. Temperature is nil when the bucket had no data.
type Average struct {
	Timestamp   time.Time `json:"timestamp"`
	Temperature *float64  `json:"temperature"`
}

// DailyAverage is one calendar date with the mean of that date's rollup rows.
type DailyAverage struct {
	Date        string   `json:"timestamp"`
	Temperature *float64 `json:"temperature"`
}

// Aggregate is the raw AVG/MIN/MAX result of a statistics query.
type Aggregate struct {
	Average *float64
	Minimum *float64
	Maximum *float64
}

type Statistics struct {
	Period  Period   `json:"period"`
	Average float64  `json:"average"`
	Minimum *float64 `json:"minimum"`
	Maximum *float64 `json:"maximum"`
}

type AlertType string

const (
	AlertTooLow  AlertType = "too_low"
	AlertTooHigh AlertType = "too_high"
)

// ClassifyAlert tags an out-of-band temperature. Anything not below min is too_high.
func ClassifyAlert(temperature, min float64) AlertType {
	if temperature < min {
		return AlertTooLow
	}
	return AlertTooHigh
}

type Alert struct {
	Timestamp   time.Time `json:"timestamp"`
	Temperature float64   `json:"temperature"`
	Type        AlertType `json:"type"`
}

type AlertReport struct {
	ThresholdMin float64 `json:"threshold_min"`
	ThresholdMax float64 `json:"threshold_max"`
	Hours        int     `json:"hours"`
	Alerts       []Alert `json:"alerts"`
	Count        int     `json:"count"`
}

type TableInfo struct {
	Name    string     `json:"name"`
	Count   int64      `json:"count"`
	MinDate *time.Time `json:"min_date"`
	MaxDate *time.Time `json:"max_date"`
}

type DatabaseInfo struct {
	Version string `json:"version"`
	Host    string `json:"host"`
	Name    string `json:"name"`
}

type SystemInfo struct {
	Database  DatabaseInfo `json:"database"`
	Tables    []TableInfo  `json:"tables"`
	Timestamp time.Time    `json:"timestamp"`
}

// Source is a table/column pair that statistics are computed over.
type Source struct {
	Table  string
	Column string
}

var (
	SourceMeasurements   = Source{Table: "measurements", Column: "temperature"}
	SourceHourlyAverages = Source{Table: "hourly_averages", Column: "average_temperature"}
	SourceDailyAverages  = Source{Table: "daily_averages", Column: "average_temperature"}
)

type Period string

const (
	PeriodHour  Period = "hour"
	PeriodDay   Period = "day"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
)

type periodSpec struct {
	source Source
	window time.Duration
}

// Raw periods read measurements directly; longer ones read the rollup tables.
var periods = map[Period]periodSpec{
	PeriodHour:  {source: SourceMeasurements, window: time.Hour},
	PeriodDay:   {source: SourceMeasurements, window: 24 * time.Hour},
	PeriodWeek:  {source: SourceHourlyAverages, window: 7 * 24 * time.Hour},
	PeriodMonth: {source: SourceDailyAverages, window: 30 * 24 * time.Hour},
}

var ErrInvalidPeriod = errors.New("invalid period")

func ParsePeriod(s string) (Period, error) {
	p := Period(s)
	if _, ok := periods[p]; !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidPeriod, s)
	}
	return p, nil
}

func (p Period) Source() Source {
	return periods[p].source
}

func (p Period) Window() time.Duration {
	return periods[p].window
}
