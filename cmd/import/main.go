// Command import loads a calendar definition file into the SQLite store.
//
// Usage:
//
//	go run ./cmd/import -file mycalendar.json -db data/almanac.db
//
// This tool:
// 1. Creates/opens the SQLite database
// 2. Runs migrations to ensure schema is current
// 3. Parses and validates the definition (JSON or YAML)
// 4. Inserts it under the definition's declared name
//
// Importing a name that already exists fails; pass -replace to update
// the stored definition in place.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/tabletopkit/almanac/internal/calendar"
	"github.com/tabletopkit/almanac/internal/database"
)

func main() {
	filePath := flag.String("file", "", "Path to a calendar definition (JSON or YAML)")
	dbPath := flag.String("db", "data/almanac.db", "Path to SQLite database")
	replace := flag.Bool("replace", false, "Replace an existing calendar with the same name")
	verbose := flag.Bool("v", false, "Verbose output")
	flag.Parse()

	logLevel := slog.LevelInfo
	if *verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))

	if *filePath == "" {
		logger.Error("missing required -file flag")
		os.Exit(1)
	}

	if err := run(*filePath, *dbPath, *replace, logger); err != nil {
		logger.Error("import failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(filePath, dbPath string, replace bool, logger *slog.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	def, err := loadDefinition(filePath)
	if err != nil {
		return err
	}

	// Compile to catch definitions that parse but do not validate
	if _, err := calendar.New(def); err != nil {
		return err
	}

	doc, err := json.Marshal(def)
	if err != nil {
		return fmt.Errorf("marshal definition: %w", err)
	}

	db, err := database.Open(database.DefaultConfig(dbPath), logger)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	if _, err := db.Migrate(ctx); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	var description *string
	if def.Description != "" {
		description = &def.Description
	}

	if replace {
		existing, err := db.GetCalendarByName(ctx, def.Name)
		if err == nil {
			if _, err := db.UpdateCalendar(ctx, existing.ID, def.Name, description, doc); err != nil {
				return fmt.Errorf("replace calendar: %w", err)
			}
			logger.Info("calendar replaced",
				slog.String("name", def.Name),
				slog.String("id", existing.ID))
			return nil
		}
		if !database.IsNotFound(err) {
			return err
		}
		// Fall through to a plain insert
	}

	cal, err := db.CreateCalendar(ctx, def.Name, description, doc)
	if err != nil {
		if database.IsDuplicate(err) {
			return fmt.Errorf("calendar %q already exists (use -replace to update it)", def.Name)
		}
		return fmt.Errorf("create calendar: %w", err)
	}

	logger.Info("calendar imported",
		slog.String("name", cal.Name),
		slog.String("id", cal.ID))
	return nil
}

// loadDefinition reads a definition document, decoding YAML or JSON by
// file extension.
func loadDefinition(path string) (*calendar.Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		def := new(calendar.Definition)
		if err := yaml.Unmarshal(data, def); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		def.Normalize()
		if err := def.Validate(); err != nil {
			return nil, err
		}
		return def, nil
	default:
		return calendar.ParseDefinition(data)
	}
}
