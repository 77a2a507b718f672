/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the grandparent care tracker.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load configuration (.env, environment, flags)
  2. Open the storage backend (sqlite or local fallback)
  3. Create API handler with dependencies
  4. Configure HTTP router
  5. Start server with graceful shutdown

  A backend that fails to open does not stop the server: /api/status
  reports the error and every list comes back empty.

COMMAND-LINE FLAGS (override the environment):
  -addr     Listen address (default: 127.0.0.1:8080)
  -db       SQLite database path, ":memory:" for in-memory
  -backend  sqlite | local | auto
  -data     Directory of the local fallback lists

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close the store
  4. Exit

EXAMPLES:
  ./server -db="./data/garde.db"
  ./server -backend=local -data="./data"

SEE ALSO:
  - config/config.go: Environment variables
  - factory/backend.go: Backend selection
  - api/server.go: Router configuration
*/
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-kit/log/level"

	"github.com/bantra/gardeparents/api"
	"github.com/bantra/gardeparents/config"
	"github.com/bantra/gardeparents/factory"
	"github.com/bantra/gardeparents/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	flag.StringVar(&cfg.Addr, "addr", cfg.Addr, "HTTP listen address")
	flag.StringVar(&cfg.DBPath, "db", cfg.DBPath, "SQLite database path")
	flag.StringVar(&cfg.Backend, "backend", cfg.Backend, "storage backend: sqlite, local or auto")
	flag.StringVar(&cfg.DataDir, "data", cfg.DataDir, "directory of the local fallback lists")
	flag.Parse()

	logger := logging.New(cfg.LogLevel)

	repo, closeStore := factory.Open(cfg.Storage(), logging.Component(logger, "storage"))
	defer func() {
		if err := closeStore(); err != nil {
			level.Error(logger).Log("msg", "failed to close store", "err", err)
		}
	}()

	handler := api.NewHandler(repo, logging.Component(logger, "api"))
	router := api.NewRouter(handler, api.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		RateLimit:      cfg.RateLimit,
		StaticDir:      cfg.StaticDir,
		Logger:         logging.Component(logger, "http"),
	})

	server := &http.Server{
		Addr:         cfg.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		level.Info(logger).Log("msg", "server starting", "addr", cfg.Addr, "backend", repo.Backend())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			level.Error(logger).Log("msg", "server failed", "err", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	level.Info(logger).Log("msg", "shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		level.Error(logger).Log("msg", "forced shutdown", "err", err)
	}

	level.Info(logger).Log("msg", "server stopped")
}
