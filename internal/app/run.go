package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"tempmon-server/internal/config"
	"tempmon-server/internal/db"
	"tempmon-server/internal/httpapi"
	"tempmon-server/internal/migrate"
	"tempmon-server/internal/modules/temperature"
	"tempmon-server/internal/modules/temperature/views"
)

const (
	startupPingTimeout = 5 * time.Second
	shutdownTimeout    = 10 * time.Second
)

type Options struct {
	Version string
	// Migrate applies pending schema migrations before serving.
	Migrate bool
}

// Run serves the HTTP API until ctx is cancelled or the listener fails.
func Run(ctx context.Context, cfg config.Config, logger *slog.Logger, opts Options) error {
	logger.Info("config loaded",
		"appEnv", cfg.AppEnv,
		"logLevel", cfg.LogLevel.String(),
		"debug", cfg.Debug,
		"httpAddr", cfg.HTTPAddr,
		"dbDriver", cfg.DB.Driver,
		"dbHost", cfg.DB.Host,
		"dbName", cfg.DB.Name,
		"sqlitePath", cfg.DB.SQLitePath,
		"dbMaxOpenConns", cfg.DB.MaxOpenConns,
		"dbMaxIdleConns", cfg.DB.MaxIdleConns,
		"dbConnMaxLifetime", cfg.DB.ConnMaxLifetime,
	)

	dbConn, err := db.Open(cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(dbConn); err != nil {
			logger.Error("db close", "error", err)
		}
	}()

	if opts.Migrate {
		if _, err := migrate.Run(ctx, dbConn, logger); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	// The database may come up after us; every request reconnects.
	pingCtx, cancel := context.WithTimeout(ctx, startupPingTimeout)
	if err := db.Ping(pingCtx, dbConn); err != nil {
		logger.Warn("database unreachable at startup (continuing)", "error", err)
	} else {
		logger.Info("database connection successful")
	}
	cancel()

	if err := views.LoadTemplates(); err != nil {
		return err
	}
	mux := httpapi.NewMux(dbConn, logger)
	if err := temperature.RegisterFeature(mux, dbConn, cfg.DB, logger); err != nil {
		return err
	}

	srv := httpapi.NewServer(cfg, mux, logger)
	ln, err := net.Listen("tcp", cfg.HTTPAddr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", cfg.HTTPAddr, err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("http listening", "addr", ln.Addr().String(), "version", opts.Version)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		logger.Info("http shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
