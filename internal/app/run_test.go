package app

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"tempmon-server/internal/config"
)

func pickFreeAddr(t *testing.T) string {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen :0: %v", err)
	}
	defer ln.Close()
	return ln.Addr().String()
}

func sqliteConfig(t *testing.T) config.Config {
	t.Helper()
	return config.Config{
		AppEnv:   "dev",
		LogLevel: slog.LevelInfo,
		HTTPAddr: pickFreeAddr(t),
		DB: config.DBConfig{
			Driver:       config.DriverSQLite,
			SQLitePath:   filepath.Join(t.TempDir(), "temperature.db"),
			MaxOpenConns: 4,
			MaxIdleConns: 2,
		},
	}
}

func waitForOK(t *testing.T, client *http.Client, url string, timeout time.Duration) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		resp, err := client.Get(url)
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(50 * time.Millisecond)
	}
	t.Fatalf("server not healthy after %s: %s", timeout, url)
}

func TestRun_servesAndShutsDown(t *testing.T) {
	cfg := sqliteConfig(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 1)
	go func() { errCh <- Run(ctx, cfg, logger, Options{Version: "test", Migrate: true}) }()

	client := &http.Client{Timeout: 2 * time.Second}
	base := "http://" + cfg.HTTPAddr
	waitForOK(t, client, base+"/healthz", 5*time.Second)

	resp, err := client.Get(base + "/api/current")
	if err != nil {
		t.Fatalf("GET /api/current: %v", err)
	}
	var body map[string]any
	err = json.NewDecoder(resp.Body).Decode(&body)
	resp.Body.Close()
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d; want %d", resp.StatusCode, http.StatusOK)
	}
	if body["success"] != false || body["error"] != "No data available" {
		t.Errorf("body = %v; want soft no-data failure", body)
	}

	cancel()
	select {
	case err := <-errCh:
		if err != nil {
			t.Errorf("Run() = %v; want nil after cancel", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestRun_listenError(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()

	cfg := sqliteConfig(t)
	cfg.HTTPAddr = ln.Addr().String()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	if err := Run(context.Background(), cfg, logger, Options{}); err == nil {
		t.Fatal("Run() = nil; want error for address in use")
	}
}

func TestRun_badDriver(t *testing.T) {
	cfg := sqliteConfig(t)
	cfg.DB.Driver = "mysql"
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	if err := Run(context.Background(), cfg, logger, Options{}); err == nil {
		t.Fatal("Run() = nil; want error for unsupported driver")
	}
}
