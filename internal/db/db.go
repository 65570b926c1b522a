package db

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"log/slog"
	"math"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"

	"tempmon-server/internal/config"
)

// Open returns a pooled handle for the configured driver. It does not touch the
// network: a database that is down at startup surfaces on the first request.
// With cfg.Debug set every statement is logged through logger.
func Open(cfg config.Config, logger *slog.Logger) (*sqlx.DB, error) {
	dsn, err := BuildDSN(cfg.DB)
	if err != nil {
		return nil, err
	}

	var sqlDB *sql.DB
	if cfg.Debug {
		connector, err := NewLoggingConnector(driverFor(cfg.DB.Driver), dsn, logger)
		if err != nil {
			return nil, fmt.Errorf("db open: %w", err)
		}
		sqlDB = sql.OpenDB(connector)
	} else {
		sqlDB, err = sql.Open(cfg.DB.Driver, dsn)
		if err != nil {
			return nil, fmt.Errorf("db open: %w", err)
		}
	}

	if cfg.DB.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.DB.MaxOpenConns)
	}
	if cfg.DB.MaxIdleConns >= 0 {
		sqlDB.SetMaxIdleConns(cfg.DB.MaxIdleConns)
	}
	if cfg.DB.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.DB.ConnMaxLifetime)
	}

	return sqlx.NewDb(sqlDB, cfg.DB.Driver), nil
}

func Ping(ctx context.Context, db *sqlx.DB) error {
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("db ping: %w", err)
	}
	return nil
}

func Close(db *sqlx.DB) error {
	if db == nil {
		return nil
	}
	return db.Close()
}

// BuildDSN returns cfg.DSN when set, otherwise a connection string for the
// configured driver.
func BuildDSN(cfg config.DBConfig) (string, error) {
	if cfg.DSN != "" {
		return cfg.DSN, nil
	}
	switch cfg.Driver {
	case config.DriverPostgres:
		return postgresDSN(cfg), nil
	case config.DriverSQLite:
		return sqliteDSN(cfg.SQLitePath)
	default:
		return "", fmt.Errorf("unsupported db driver %q", cfg.Driver)
	}
}

func postgresDSN(cfg config.DBConfig) string {
	q := url.Values{}
	if cfg.SSLMode != "" {
		q.Set("sslmode", cfg.SSLMode)
	}
	if cfg.ConnectTimeout > 0 {
		// lib/pq takes whole seconds; round up so sub-second values do not mean "no timeout"
		secs := int(math.Ceil(cfg.ConnectTimeout.Seconds()))
		q.Set("connect_timeout", strconv.Itoa(secs))
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(cfg.User, cfg.Password),
		Host:     net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		Path:     "/" + cfg.Name,
		RawQuery: q.Encode(),
	}
	return u.String()
}

func sqliteDSN(path string) (string, error) {
	params := []string{
		"_foreign_keys=on",
		"_busy_timeout=5000",
		"_journal_mode=WAL",
	}

	if path == ":memory:" {
		return path, nil
	}

	if strings.HasPrefix(path, "file:") {
		sep := "?"
		if strings.Contains(path, "?") {
			sep = "&"
		}
		return path + sep + strings.Join(params, "&"), nil
	}

	dir := filepath.Dir(path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}
	return fmt.Sprintf("file:%s?%s", path, strings.Join(params, "&")), nil
}

func driverFor(name string) driver.Driver {
	switch name {
	case config.DriverSQLite:
		return &sqlite3.SQLiteDriver{}
	case config.DriverPostgres:
		return &pq.Driver{}
	default:
		return nil
	}
}
