package db

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"tempmon-server/internal/config"
)

func TestBuildDSN(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.DBConfig
		want string
	}{
		{
			name: "explicit dsn wins",
			cfg:  config.DBConfig{Driver: config.DriverPostgres, DSN: "postgres://x@y/z", Host: "ignored"},
			want: "postgres://x@y/z",
		},
		{
			name: "postgres from parts",
			cfg: config.DBConfig{
				Driver: config.DriverPostgres, Name: "temperature", User: "temp", Password: "p@ss word",
				Host: "db", Port: 5432, SSLMode: "disable",
			},
			want: "postgres://temp:p%40ss%20word@db:5432/temperature?sslmode=disable",
		},
		{
			name: "postgres connect timeout rounds up",
			cfg: config.DBConfig{
				Driver: config.DriverPostgres, Name: "t", User: "u", Password: "p",
				Host: "localhost", Port: 6543, SSLMode: "require", ConnectTimeout: 1500 * time.Millisecond,
			},
			want: "postgres://u:p@localhost:6543/t?connect_timeout=2&sslmode=require",
		},
		{
			name: "postgres ipv6 host",
			cfg:  config.DBConfig{Driver: config.DriverPostgres, Name: "t", User: "u", Password: "p", Host: "::1", Port: 5432},
			want: "postgres://u:p@[::1]:5432/t",
		},
		{
			name: "sqlite memory",
			cfg:  config.DBConfig{Driver: config.DriverSQLite, SQLitePath: ":memory:"},
			want: ":memory:",
		},
		{
			name: "sqlite file uri keeps params",
			cfg:  config.DBConfig{Driver: config.DriverSQLite, SQLitePath: "file:/data/t.db?mode=ro"},
			want: "file:/data/t.db?mode=ro&_foreign_keys=on&_busy_timeout=5000&_journal_mode=WAL",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := BuildDSN(tt.cfg)
			if err != nil {
				t.Fatalf("BuildDSN() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("BuildDSN() = %q; want %q", got, tt.want)
			}
		})
	}
}

func TestBuildDSN_SQLiteCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "sqlite")
	path := filepath.Join(dir, "temperature.db")

	got, err := BuildDSN(config.DBConfig{Driver: config.DriverSQLite, SQLitePath: path})
	if err != nil {
		t.Fatalf("BuildDSN() error = %v", err)
	}
	want := "file:" + path + "?_foreign_keys=on&_busy_timeout=5000&_journal_mode=WAL"
	if got != want {
		t.Errorf("BuildDSN() = %q; want %q", got, want)
	}
	if fi, err := os.Stat(dir); err != nil || !fi.IsDir() {
		t.Errorf("directory %s not created: %v", dir, err)
	}
}

func TestBuildDSN_UnknownDriver(t *testing.T) {
	if _, err := BuildDSN(config.DBConfig{Driver: "mysql"}); err == nil {
		t.Fatal("BuildDSN(mysql) error = nil; want error")
	}
}

func TestOpen_SQLite(t *testing.T) {
	for _, debug := range []bool{false, true} {
		name := "plain"
		if debug {
			name = "logged"
		}
		t.Run(name, func(t *testing.T) {
			cfg := config.Config{
				Debug: debug,
				DB: config.DBConfig{
					Driver:       config.DriverSQLite,
					SQLitePath:   filepath.Join(t.TempDir(), "t.db"),
					MaxOpenConns: 2,
					MaxIdleConns: 1,
				},
			}
			db, err := Open(cfg, slog.New(&captureHandler{}))
			if err != nil {
				t.Fatalf("Open() error = %v", err)
			}
			defer func() { _ = Close(db) }()

			if db.DriverName() != config.DriverSQLite {
				t.Errorf("DriverName() = %q; want %q", db.DriverName(), config.DriverSQLite)
			}
			if err := Ping(context.Background(), db); err != nil {
				t.Fatalf("Ping() error = %v", err)
			}
			if got := db.Stats().MaxOpenConnections; got != 2 {
				t.Errorf("MaxOpenConnections = %d; want 2", got)
			}
		})
	}
}

func TestOpen_PostgresDoesNotConnect(t *testing.T) {
	cfg := config.Config{DB: config.DBConfig{
		Driver: config.DriverPostgres, Name: "t", User: "u", Password: "p",
		Host: "127.0.0.1", Port: 1, SSLMode: "disable", ConnectTimeout: time.Second,
	}}
	db, err := Open(cfg, slog.Default())
	if err != nil {
		t.Fatalf("Open() error = %v; want lazy open", err)
	}
	defer func() { _ = Close(db) }()

	if err := Ping(context.Background(), db); err == nil {
		t.Error("Ping() against closed port error = nil; want error")
	}
}

func TestClose_Nil(t *testing.T) {
	if err := Close(nil); err != nil {
		t.Errorf("Close(nil) = %v; want nil", err)
	}
}
