/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the BrewBalance ledger server. Handles
  configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load .env (optional) and parse command-line flags
  2. Initialize the SQLite store and structured logger
  3. Wire event log, replay engine, calculator and migrator
  4. Run the legacy migration (no-op once migrated)
  5. Start the HTTP server with graceful shutdown

CONFIGURATION:
  Flags override environment variables:
    -port / PORT        HTTP server port (default: 8080)
    -db   / DATABASE    SQLite path (default: brewbalance.db, ":memory:" ok)
    -log  / LOG_LEVEL   debug|info|warn|error (default: info)

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM: stop accepting connections, wait up to 30s for active
  requests, close the database, exit.
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/brewbalance-team/BrewBalance/api"
	"github.com/brewbalance-team/BrewBalance/budget"
	"github.com/brewbalance-team/BrewBalance/ledger"
	"github.com/brewbalance-team/BrewBalance/store/sqlite"
)

func main() {
	// .env is optional; flags win over environment.
	_ = godotenv.Load()

	port := flag.Int("port", envInt("PORT", 8080), "HTTP server port")
	dbPath := flag.String("db", envStr("DATABASE", "brewbalance.db"), "SQLite database path")
	logLevel := flag.String("log", envStr("LOG_LEVEL", "info"), "log level (debug|info|warn|error)")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLevel(*logLevel),
	}))
	slog.SetDefault(logger)

	st, err := sqlite.New(*dbPath)
	if err != nil {
		logger.Error("failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer st.Close()

	clock := ledger.SystemClock{}
	calculator := budget.NewCalculator()
	eventLog := ledger.NewEventLog(st, logger)
	engine := ledger.NewEngine(eventLog, clock, calculator, logger)
	migrator := ledger.NewMigrator(st, eventLog, engine, clock, logger)

	// One-time import of any pre-event-sourced state; reports and moves on.
	report := migrator.MigrateFromLegacyModel(context.Background())
	if !report.AlreadyMigrated {
		logger.Info("legacy migration ran",
			"entries", report.EntriesCreated,
			"budgets", report.BudgetsCreated,
			"warnings", len(report.Warnings))
	}

	handler := api.NewHandler(engine, migrator, clock, calculator, logger)
	router := api.NewRouter(handler)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		var n int
		if _, err := fmt.Sscanf(v, "%d", &n); err == nil {
			return n
		}
	}
	return fallback
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
