package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"
)

// Config is built once at startup and passed to every component; nothing reads
// the environment after LoadFromEnv returns.
type Config struct {
	AppEnv   string
	LogLevel slog.Level
	Debug    bool
	HTTPAddr string

	DB DBConfig
}

type DBConfig struct {
	Driver string
	// DSN, when set, is used verbatim instead of the one built from the fields below.
	DSN string

	Name           string
	User           string
	Password       string
	Host           string
	Port           int
	SSLMode        string
	ConnectTimeout time.Duration

	SQLitePath string

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// LoadDotEnv loads KEY=VALUE pairs from the given files (".env" when none are
// given) without overriding variables that are already set. Missing files are ignored.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

func LoadFromEnv() (Config, error) {
	appEnv := envOr("APP_ENV", "dev")
	switch appEnv {
	case "dev", "prod":
	default:
		return Config{}, fmt.Errorf("invalid APP_ENV %q (allowed: dev, prod)", appEnv)
	}

	level, err := parseLogLevel(envOr("LOG_LEVEL", "info"))
	if err != nil {
		return Config{}, err
	}

	debugStr := envOr("DEBUG", "false")
	debug, err := strconv.ParseBool(debugStr)
	if err != nil {
		return Config{}, fmt.Errorf("invalid DEBUG %q: %w", debugStr, err)
	}
	if debug {
		level = slog.LevelDebug
	}

	driver := envOr("DB_DRIVER", DriverPostgres)
	switch driver {
	case DriverPostgres, DriverSQLite:
	default:
		return Config{}, fmt.Errorf("invalid DB_DRIVER %q (allowed: %s, %s)", driver, DriverPostgres, DriverSQLite)
	}

	portStr := envOr("POSTGRES_PORT", "5432")
	port, err := strconv.Atoi(portStr)
	if err != nil || port <= 0 || port > 65535 {
		return Config{}, fmt.Errorf("invalid POSTGRES_PORT %q (expected 1-65535)", portStr)
	}

	connectTimeout, err := envDuration("DB_CONNECT_TIMEOUT", "0s")
	if err != nil {
		return Config{}, err
	}

	maxOpenConns, err := envInt("DB_MAX_OPEN_CONNS", "10")
	if err != nil {
		return Config{}, err
	}
	maxIdleConns, err := envInt("DB_MAX_IDLE_CONNS", "2")
	if err != nil {
		return Config{}, err
	}
	connMaxLifetime, err := envDuration("DB_CONN_MAX_LIFETIME", "0s")
	if err != nil {
		return Config{}, err
	}

	return Config{
		AppEnv:   appEnv,
		LogLevel: level,
		Debug:    debug,
		HTTPAddr: envOr("HTTP_ADDR", "0.0.0.0:5000"),
		DB: DBConfig{
			Driver:          driver,
			DSN:             strings.TrimSpace(os.Getenv("DB_DSN")),
			Name:            envOr("POSTGRES_DB", "temperature"),
			User:            envOr("POSTGRES_USER", "temperature"),
			Password:        envOr("POSTGRES_PASSWORD", "temperature"),
			Host:            envOr("POSTGRES_HOST", "localhost"),
			Port:            port,
			SSLMode:         envOr("POSTGRES_SSLMODE", "disable"),
			ConnectTimeout:  connectTimeout,
			SQLitePath:      envOr("SQLITE_PATH", "dev/sqlite/temperature.db"),
			MaxOpenConns:    maxOpenConns,
			MaxIdleConns:    maxIdleConns,
			ConnMaxLifetime: connMaxLifetime,
		},
	}, nil
}

func envOr(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func envInt(key, def string) (int, error) {
	s := envOr(key, def)
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, s, err)
	}
	return n, nil
}

func envDuration(key, def string) (time.Duration, error) {
	s := envOr(key, def)
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, s, err)
	}
	return d, nil
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q (allowed: debug, info, warn, error)", s)
	}
}
