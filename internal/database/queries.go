package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	sqlite3 "github.com/mattn/go-sqlite3"
)

// =============================================================================
// Helper Functions
// =============================================================================

// parseTimestamp parses a timestamp from SQLite TEXT format.
// Tries multiple formats and returns nil if parsing fails.
func parseTimestamp(ns sql.NullString) *time.Time {
	if !ns.Valid || ns.String == "" {
		return nil
	}

	// Try RFC3339 format first (with timezone)
	t, err := time.Parse(time.RFC3339, ns.String)
	if err == nil {
		return &t
	}

	// Try SQLite datetime format (no timezone)
	t, err = time.Parse("2006-01-02 15:04:05", ns.String)
	if err == nil {
		return &t
	}

	// Try ISO format with microseconds (no timezone)
	t, err = time.Parse("2006-01-02T15:04:05.999999", ns.String)
	if err == nil {
		return &t
	}

	// If all fail, return nil
	return nil
}

// asDuplicate maps a SQLite unique-constraint violation to ErrDuplicate.
// Any other error passes through unchanged.
func asDuplicate(err error) error {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) &&
		sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
		return ErrDuplicate
	}
	return err
}

// scanCalendar scans a calendars row from any row-like source.
func scanCalendar(scan func(...any) error) (*Calendar, error) {
	var cal Calendar
	var description, createdAtStr, updatedAtStr sql.NullString
	var definition string

	err := scan(
		&cal.ID,
		&cal.Name,
		&description,
		&definition,
		&cal.IsPreset,
		&createdAtStr,
		&updatedAtStr,
	)
	if err != nil {
		return nil, err
	}

	cal.Definition = json.RawMessage(definition)
	if description.Valid {
		cal.Description = &description.String
	}
	if t := parseTimestamp(createdAtStr); t != nil {
		cal.CreatedAt = *t
	}
	if t := parseTimestamp(updatedAtStr); t != nil {
		cal.UpdatedAt = *t
	}

	return &cal, nil
}

const calendarColumns = `id, name, description, definition, is_preset, created_at, updated_at`

// =============================================================================
// Calendar Queries
// =============================================================================

// CreateCalendar inserts a new calendar and returns the stored record.
// Returns ErrDuplicate if a calendar with the same name exists.
//
// The definition document must already be validated by the caller; the
// store treats it as opaque JSON.
func (db *DB) CreateCalendar(ctx context.Context, name string, description *string, definition json.RawMessage) (*Calendar, error) {
	id := uuid.NewString()

	query := `
		INSERT INTO calendars (id, name, description, definition)
		VALUES (?, ?, ?, ?)
	`

	if _, err := db.ExecContext(ctx, query, id, name, description, string(definition)); err != nil {
		return nil, fmt.Errorf("create calendar: %w", asDuplicate(err))
	}

	return db.GetCalendar(ctx, id)
}

// GetCalendar retrieves a calendar by ID.
// Returns ErrNotFound if no such calendar exists.
func (db *DB) GetCalendar(ctx context.Context, id string) (*Calendar, error) {
	query := `SELECT ` + calendarColumns + ` FROM calendars WHERE id = ?`

	cal, err := scanCalendar(db.QueryRowContext(ctx, query, id).Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("query calendar by id: %w", err)
	}

	return cal, nil
}

// GetCalendarByName retrieves a calendar by its unique name.
// Returns ErrNotFound if no such calendar exists.
func (db *DB) GetCalendarByName(ctx context.Context, name string) (*Calendar, error) {
	query := `SELECT ` + calendarColumns + ` FROM calendars WHERE name = ?`

	cal, err := scanCalendar(db.QueryRowContext(ctx, query, name).Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("query calendar by name: %w", err)
	}

	return cal, nil
}

// ListCalendars returns summaries of all stored calendars, presets first,
// then by name.
func (db *DB) ListCalendars(ctx context.Context) ([]CalendarSummary, error) {
	query := `
		SELECT id, name, description, is_preset, created_at, updated_at
		FROM calendars
		ORDER BY is_preset DESC, name ASC
	`

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query calendars: %w", err)
	}
	defer rows.Close()

	var summaries []CalendarSummary

	for rows.Next() {
		var s CalendarSummary
		var description, createdAtStr, updatedAtStr sql.NullString

		err := rows.Scan(
			&s.ID,
			&s.Name,
			&description,
			&s.IsPreset,
			&createdAtStr,
			&updatedAtStr,
		)
		if err != nil {
			return nil, fmt.Errorf("scan calendar row: %w", err)
		}

		if description.Valid {
			s.Description = &description.String
		}
		if t := parseTimestamp(createdAtStr); t != nil {
			s.CreatedAt = *t
		}
		if t := parseTimestamp(updatedAtStr); t != nil {
			s.UpdatedAt = *t
		}

		summaries = append(summaries, s)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate calendar rows: %w", err)
	}

	return summaries, nil
}

// UpdateCalendar replaces a calendar's name, description, and definition.
// Returns ErrNotFound if the calendar doesn't exist and ErrDuplicate if
// the new name collides with another calendar.
func (db *DB) UpdateCalendar(ctx context.Context, id, name string, description *string, definition json.RawMessage) (*Calendar, error) {
	query := `
		UPDATE calendars
		SET name = ?, description = ?, definition = ?, updated_at = datetime('now')
		WHERE id = ?
	`

	result, err := db.ExecContext(ctx, query, name, description, string(definition), id)
	if err != nil {
		return nil, fmt.Errorf("update calendar: %w", asDuplicate(err))
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("check rows affected: %w", err)
	}
	if rows == 0 {
		return nil, ErrNotFound
	}

	return db.GetCalendar(ctx, id)
}

// DeleteCalendar removes a calendar by ID.
// Returns ErrNotFound if the calendar doesn't exist.
//
// Preset calendars are deliberately deletable here; the API layer is
// responsible for refusing to delete them.
func (db *DB) DeleteCalendar(ctx context.Context, id string) error {
	result, err := db.ExecContext(ctx, `DELETE FROM calendars WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete calendar: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}

	return nil
}

// UpsertPreset inserts or refreshes a preset calendar by name.
//
// This is IDEMPOTENT - safe to run at every startup.
// If the name exists, the definition and preset flag are refreshed;
// otherwise a new row is created.
func (db *DB) UpsertPreset(ctx context.Context, name string, description *string, definition json.RawMessage) error {
	query := `
		INSERT INTO calendars (id, name, description, definition, is_preset)
		VALUES (?, ?, ?, ?, 1)
		ON CONFLICT(name) DO UPDATE SET
			description = excluded.description,
			definition = excluded.definition,
			is_preset = 1,
			updated_at = datetime('now')
	`

	_, err := db.ExecContext(ctx, query, uuid.NewString(), name, description, string(definition))
	if err != nil {
		return fmt.Errorf("upsert preset: %w", err)
	}

	return nil
}

// GetStoreStats returns statistics about the calendar store.
//
// Useful for:
// - Health check endpoint
// - Verifying preset seeding
func (db *DB) GetStoreStats(ctx context.Context) (*StoreStats, error) {
	query := `
		SELECT
			COUNT(*) AS total,
			COALESCE(SUM(is_preset), 0) AS presets
		FROM calendars
	`

	var stats StoreStats
	if err := db.QueryRowContext(ctx, query).Scan(&stats.TotalCalendars, &stats.PresetCalendars); err != nil {
		return nil, fmt.Errorf("query store stats: %w", err)
	}

	stats.UserCalendars = stats.TotalCalendars - stats.PresetCalendars

	return &stats, nil
}
