package repository

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"time"

	"github.com/jmoiron/sqlx"

	"tempmon-server/internal/config"
	"tempmon-server/internal/modules/temperature/types"
)

//go:embed sql
var sqlFS embed.FS

// ErrConnectionFailed wraps any failure to obtain a live connection from the pool.
var ErrConnectionFailed = errors.New("database connection failed")

type TemperatureRepository interface {
	// GetLatestMeasurement returns nil, nil when there are no measurements.
	GetLatestMeasurement(ctx context.Context) (*types.Measurement, error)
	GetMeasurements(ctx context.Context, limit int) ([]types.Measurement, error)
	GetHourlyAverages(ctx context.Context, since time.Time) ([]types.Average, error)
	GetDailyAverages(ctx context.Context, since time.Time) ([]types.DailyAverage, error)
	GetStatistics(ctx context.Context, source types.Source, since time.Time) (types.Aggregate, error)
	GetAlerts(ctx context.Context, minTemp, maxTemp float64, since time.Time) ([]types.Measurement, error)
	GetSystemInfo(ctx context.Context) (version string, tables []types.TableInfo, err error)
}

type queries struct {
	latestMeasurement string
	measurements      string
	hourlyAverages    string
	dailyAverages     string
	statistics        map[types.Source]string
	alerts            string
	tableStats        string
	version           string
}

type repositoryImpl struct {
	db       *sqlx.DB
	q        queries
	bindTime func(time.Time) any
}

// NewRepository loads the SQL for db's dialect. Queries are written with '?'
// placeholders and rebound once here.
func NewRepository(db *sqlx.DB) (TemperatureRepository, error) {
	driver := db.DriverName()
	dir := path.Join("sql", driver)
	if _, err := fs.Stat(sqlFS, dir); err != nil {
		return nil, fmt.Errorf("temperature repository: unsupported driver %q", driver)
	}

	load := func(name string) (string, error) {
		b, err := fs.ReadFile(sqlFS, path.Join(dir, name+".sql"))
		if err != nil {
			return "", fmt.Errorf("read %s query: %w", name, err)
		}
		return sqlx.Rebind(sqlx.BindType(driver), string(b)), nil
	}

	var q queries
	var err error
	for name, dst := range map[string]*string{
		"get-latest-measurement": &q.latestMeasurement,
		"get-measurements":       &q.measurements,
		"get-hourly-averages":    &q.hourlyAverages,
		"get-daily-averages":     &q.dailyAverages,
		"get-alerts":             &q.alerts,
		"get-table-stats":        &q.tableStats,
		"get-version":            &q.version,
	} {
		if *dst, err = load(name); err != nil {
			return nil, err
		}
	}

	q.statistics = make(map[types.Source]string, 3)
	for _, src := range []types.Source{types.SourceMeasurements, types.SourceHourlyAverages, types.SourceDailyAverages} {
		if q.statistics[src], err = load("get-statistics-" + statsFileSuffix(src)); err != nil {
			return nil, err
		}
	}

	return &repositoryImpl{db: db, q: q, bindTime: timeBinder(driver)}, nil
}

func statsFileSuffix(src types.Source) string {
	switch src {
	case types.SourceHourlyAverages:
		return "hourly-averages"
	case types.SourceDailyAverages:
		return "daily-averages"
	default:
		return "measurements"
	}
}

// timeBinder returns how a cutoff instant is passed for the dialect. SQLite
// compares julianday() values, which need an ISO-8601 string.
func timeBinder(driver string) func(time.Time) any {
	if driver == config.DriverSQLite {
		return func(t time.Time) any { return t.UTC().Format("2006-01-02T15:04:05.000Z") }
	}
	return func(t time.Time) any { return t }
}

// conn borrows one connection for the duration of a call. The caller must Close it.
func (r *repositoryImpl) conn(ctx context.Context) (*sqlx.Conn, error) {
	conn, err := r.db.Connx(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}
	if err := conn.PingContext(ctx); err != nil {
		closeConn(conn)
		return nil, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}
	return conn, nil
}

func closeConn(conn *sqlx.Conn) {
	if err := conn.Close(); err != nil {
		slog.Error("close db connection", "error", err)
	}
}

type measurementRow struct {
	Timestamp   nullTime `db:"timestamp"`
	Temperature float64  `db:"temperature"`
}

func (m measurementRow) toType() types.Measurement {
	return types.Measurement{Timestamp: m.Timestamp.Time, Temperature: m.Temperature}
}

func toMeasurements(rows []measurementRow) []types.Measurement {
	out := make([]types.Measurement, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toType())
	}
	return out
}

func (r *repositoryImpl) GetLatestMeasurement(ctx context.Context) (*types.Measurement, error) {
	conn, err := r.conn(ctx)
	if err != nil {
		return nil, err
	}
	defer closeConn(conn)

	var rows []measurementRow
	if err := conn.SelectContext(ctx, &rows, r.q.latestMeasurement); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	m := rows[0].toType()
	return &m, nil
}

func (r *repositoryImpl) GetMeasurements(ctx context.Context, limit int) ([]types.Measurement, error) {
	conn, err := r.conn(ctx)
	if err != nil {
		return nil, err
	}
	defer closeConn(conn)

	var rows []measurementRow
	if err := conn.SelectContext(ctx, &rows, r.q.measurements, limit); err != nil {
		return nil, err
	}
	return toMeasurements(rows), nil
}

func (r *repositoryImpl) GetHourlyAverages(ctx context.Context, since time.Time) ([]types.Average, error) {
	conn, err := r.conn(ctx)
	if err != nil {
		return nil, err
	}
	defer closeConn(conn)

	var rows []struct {
		Timestamp   nullTime `db:"timestamp"`
		Temperature *float64 `db:"temperature"`
	}
	if err := conn.SelectContext(ctx, &rows, r.q.hourlyAverages, r.bindTime(since)); err != nil {
		return nil, err
	}
	out := make([]types.Average, 0, len(rows))
	for _, row := range rows {
		out = append(out, types.Average{Timestamp: row.Timestamp.Time, Temperature: row.Temperature})
	}
	return out, nil
}

func (r *repositoryImpl) GetDailyAverages(ctx context.Context, since time.Time) ([]types.DailyAverage, error) {
	conn, err := r.conn(ctx)
	if err != nil {
		return nil, err
	}
	defer closeConn(conn)

	var rows []struct {
		Date        string   `db:"date"`
		Temperature *float64 `db:"temperature"`
	}
	if err := conn.SelectContext(ctx, &rows, r.q.dailyAverages, r.bindTime(since)); err != nil {
		return nil, err
	}
	out := make([]types.DailyAverage, 0, len(rows))
	for _, row := range rows {
		out = append(out, types.DailyAverage{Date: row.Date, Temperature: row.Temperature})
	}
	return out, nil
}

func (r *repositoryImpl) GetStatistics(ctx context.Context, source types.Source, since time.Time) (types.Aggregate, error) {
	query, ok := r.q.statistics[source]
	if !ok {
		return types.Aggregate{}, fmt.Errorf("no statistics query for table %q", source.Table)
	}

	conn, err := r.conn(ctx)
	if err != nil {
		return types.Aggregate{}, err
	}
	defer closeConn(conn)

	var row struct {
		Avg *float64 `db:"avg_temp"`
		Min *float64 `db:"min_temp"`
		Max *float64 `db:"max_temp"`
	}
	if err := conn.GetContext(ctx, &row, query, r.bindTime(since)); err != nil {
		return types.Aggregate{}, err
	}
	return types.Aggregate{Average: row.Avg, Minimum: row.Min, Maximum: row.Max}, nil
}

func (r *repositoryImpl) GetAlerts(ctx context.Context, minTemp, maxTemp float64, since time.Time) ([]types.Measurement, error) {
	conn, err := r.conn(ctx)
	if err != nil {
		return nil, err
	}
	defer closeConn(conn)

	var rows []measurementRow
	if err := conn.SelectContext(ctx, &rows, r.q.alerts, r.bindTime(since), minTemp, maxTemp); err != nil {
		return nil, err
	}
	return toMeasurements(rows), nil
}

func (r *repositoryImpl) GetSystemInfo(ctx context.Context) (string, []types.TableInfo, error) {
	conn, err := r.conn(ctx)
	if err != nil {
		return "", nil, err
	}
	defer closeConn(conn)

	var rows []struct {
		Name    string   `db:"table_name"`
		Count   int64    `db:"count"`
		MinDate nullTime `db:"min_date"`
		MaxDate nullTime `db:"max_date"`
	}
	if err := conn.SelectContext(ctx, &rows, r.q.tableStats); err != nil {
		return "", nil, err
	}

	var version string
	if err := conn.GetContext(ctx, &version, r.q.version); err != nil {
		return "", nil, err
	}

	tables := make([]types.TableInfo, 0, len(rows))
	for _, row := range rows {
		tables = append(tables, types.TableInfo{
			Name:    row.Name,
			Count:   row.Count,
			MinDate: row.MinDate.Ptr(),
			MaxDate: row.MaxDate.Ptr(),
		})
	}
	return version, tables, nil
}
