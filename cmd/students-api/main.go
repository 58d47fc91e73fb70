// main is the entry point of the Students API application.
//
// STARTUP SEQUENCE:
//  1. Load configuration from a YAML file
//  2. Initialise the logger
//  3. Build the record store (memory or sqlite)
//  4. Build the summary client and the metrics registry
//  5. Register all HTTP routes
//  6. Start the HTTP server in a separate goroutine
//  7. Block until an OS signal (Ctrl+C / kill) arrives, then shut down
//     gracefully
//
// RUNNING THE SERVER:
//
//	go run ./cmd/students-api --config=config/local.yaml
//
// or (with the environment variable):
//
//	CONFIG_PATH=config/local.yaml go run ./cmd/students-api
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aanand-mishra/students-api/internal/config"
	"github.com/aanand-mishra/students-api/internal/http/handlers/student"
	"github.com/aanand-mishra/students-api/internal/metrics"
	"github.com/aanand-mishra/students-api/internal/storage"
	"github.com/aanand-mishra/students-api/internal/storage/memory"
	"github.com/aanand-mishra/students-api/internal/storage/sqlite"
	"github.com/aanand-mishra/students-api/internal/summary"
)

func main() {
	// ── 1. Load Config ────────────────────────────────────────────────────
	cfg := config.MustLoad()

	// ── 2. Initialise Logger ──────────────────────────────────────────────
	// Handlers log through slog's package-level functions, so the logger
	// is installed as the default.
	log := setupLogger(cfg.Env)
	slog.SetDefault(log)

	log.Info("starting students-api",
		slog.String("env", cfg.Env),
		slog.String("version", "1.1.0"),
	)

	// ── 3. Initialise Storage ─────────────────────────────────────────────
	store, closeStore, err := newStorage(cfg)
	if err != nil {
		log.Error("failed to initialise storage",
			slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer closeStore()

	log.Info("storage initialised",
		slog.String("driver", cfg.Storage.Driver),
		slog.String("path", cfg.Storage.Path))

	// ── 4. Summary client and metrics ─────────────────────────────────────
	summarizer := summary.New(summary.Config{
		URL:     cfg.Ollama.URL,
		Model:   cfg.Ollama.Model,
		Timeout: cfg.Ollama.Timeout,
	})

	m := metrics.New(func() float64 {
		students, err := store.GetStudents()
		if err != nil {
			return 0
		}
		return float64(len(students))
	})

	// ── 5. Register HTTP Routes ───────────────────────────────────────────
	router := http.NewServeMux()
	student.Register(router, store, summarizer, m)
	router.Handle("GET /metrics", m.Handler())

	// ── 6. Create the HTTP Server ─────────────────────────────────────────
	// WriteTimeout must outlast the generation call, which is bounded by
	// the ollama timeout.
	server := &http.Server{
		Addr:         cfg.HTTPServer.Addr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.Ollama.Timeout + 10*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("server started", slog.String("address", cfg.HTTPServer.Addr))

		// ListenAndServe returns http.ErrServerClosed when Shutdown() is
		// called. That's expected — we don't want to log it as an error.
		if err := server.ListenAndServe(); err != nil &&
			!errors.Is(err, http.ErrServerClosed) {
			log.Error("server encountered an error",
				slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	// ── 7. Wait for Shutdown Signal ───────────────────────────────────────
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)
	<-done

	log.Info("shutdown signal received, stopping server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("failed to shutdown server gracefully",
			slog.String("error", err.Error()))
		return
	}

	log.Info("server stopped gracefully")
}

// newStorage builds the backend named by cfg.Storage.Driver. The returned
// func releases it.
func newStorage(cfg *config.Config) (storage.Storage, func(), error) {
	switch cfg.Storage.Driver {
	case config.DriverMemory:
		return memory.New(), func() {}, nil
	case config.DriverSQLite:
		s, err := sqlite.New(cfg)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { s.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

// setupLogger returns a *slog.Logger configured for the given environment.
//
// Development (dev): human-readable text output at DEBUG level.
// Production (prod): machine-readable JSON output at INFO level.
func setupLogger(env string) *slog.Logger {
	switch env {
	case "prod":
		return slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelInfo,
			}),
		)
	case "staging":
		return slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelDebug,
			}),
		)
	default: // "dev" and anything unrecognised
		return slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelDebug,
			}),
		)
	}
}
