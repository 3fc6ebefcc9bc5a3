// Package main is the entry point for the almanac API server.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tabletopkit/almanac/internal/api"
	"github.com/tabletopkit/almanac/internal/calendar"
	"github.com/tabletopkit/almanac/internal/config"
	"github.com/tabletopkit/almanac/internal/database"
	"github.com/tabletopkit/almanac/internal/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	// Setup structured logging
	log := logger.Setup(cfg)

	log.Info("starting almanac API",
		slog.String("env", cfg.Env),
		slog.Int("port", cfg.Port),
		slog.String("log_level", cfg.LogLevel),
	)

	if err := run(cfg, log); err != nil {
		log.Error("server exited with error", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Open database and apply migrations
	db, err := database.Open(database.DefaultConfig(cfg.DatabasePath), log)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	if _, err := db.Migrate(ctx); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	if err := seedPresets(ctx, db, log); err != nil {
		return fmt.Errorf("seed presets: %w", err)
	}

	// Assemble handlers and routes
	handlers := api.NewHandlers(db, cfg, log)
	router := api.SetupRoutes(handlers, cfg, log)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  2 * time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	log.Info("shutdown complete")
	return nil
}

// seedPresets refreshes the bundled preset calendars in the store.
// Presets are upserted by name, so user edits to other calendars are
// untouched and preset definitions track the binary.
func seedPresets(ctx context.Context, db *database.DB, log *slog.Logger) error {
	for _, name := range calendar.PresetNames() {
		def, err := calendar.Preset(name)
		if err != nil {
			return err
		}

		doc, err := json.Marshal(def)
		if err != nil {
			return fmt.Errorf("marshal preset %q: %w", name, err)
		}

		var description *string
		if def.Description != "" {
			description = &def.Description
		}

		if err := db.UpsertPreset(ctx, def.Name, description, doc); err != nil {
			return fmt.Errorf("preset %q: %w", name, err)
		}

		log.Debug("seeded preset", slog.String("preset", name))
	}

	log.Info("presets seeded", slog.Int("count", len(calendar.PresetNames())))
	return nil
}
