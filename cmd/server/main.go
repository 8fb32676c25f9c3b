/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the incentive reconciliation service. Handles
  configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Parse command-line flags
  2. Load configuration (cleanenv: YAML file plus environment)
  3. Initialize SQLite sheet store
  4. Build the pipeline and API handler
  5. Start server with graceful shutdown (or run once and exit)

COMMAND-LINE FLAGS:
  -config  Path to a YAML config file. Empty means environment only.
  -once    Execute a single reconciliation run and exit. For schedulers
           that do not want a long-lived process.

ENVIRONMENT:
  STORAGE_PATH is required. See config/config.go for the full set.

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close the store
  4. Exit

EXAMPLES:
  # Long-lived service
  STORAGE_PATH=./data/metas.db ./server

  # One reconciliation run, then exit
  STORAGE_PATH=./data/metas.db ./server -once

SEE ALSO:
  - api/server.go: Router configuration
  - calc/pipeline.go: Run stages
*/
package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/metas/incentive-engine/api"
	"github.com/metas/incentive-engine/calc"
	"github.com/metas/incentive-engine/config"
	"github.com/metas/incentive-engine/store/sqlite"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file (empty: environment only)")
	once := flag.Bool("once", false, "run one reconciliation and exit")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	log := setupLogger(cfg.Env)
	log.Info("starting incentive engine", "env", cfg.Env, "storage", cfg.StoragePath)

	store, err := sqlite.New(cfg.StoragePath, sqlite.Options{
		RetryAttempts: cfg.RetryAttempts,
		RetryDelay:    cfg.RetryDelay,
	})
	if err != nil {
		log.Error("failed to open store", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	pipeline := &calc.Pipeline{
		Store:             store,
		Log:               log,
		EnableDailyTarget: cfg.DailyTarget,
	}

	if *once {
		res, err := pipeline.Run(context.Background())
		if err != nil {
			log.Error("run failed", "error", err)
			os.Exit(1)
		}
		log.Info("run complete", "records", res.Records, "locations", res.Locations)
		return
	}

	handler := api.NewHandler(store, pipeline, log)
	router := api.NewRouter(handler)

	server := &http.Server{
		Addr:         cfg.HTTPServer.Address,
		Handler:      router,
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	go func() {
		log.Info("server listening", "address", cfg.HTTPServer.Address)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("forced shutdown", "error", err)
		os.Exit(1)
	}

	log.Info("server stopped")
}

// setupLogger picks handler and level per environment: readable text locally,
// JSON where log aggregation wants structured lines.
func setupLogger(env string) *slog.Logger {
	level := slog.LevelDebug
	if env == envProd {
		level = slog.LevelInfo
	}

	var handler slog.Handler
	switch env {
	case envDev:
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	default:
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	}
	return slog.New(handler)
}
