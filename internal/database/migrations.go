package database

// migrationsSQL contains all database migrations.
// Migrations are applied in order by version number.
// Each migration should be idempotent (safe to run multiple times).
var migrationsSQL = map[int]string{
	1: migrationV1Calendars,
	2: migrationV2PresetFlag,
}

// migrationV1Calendars creates the calendars table.
//
// Key design decisions:
//
// 1. DEFINITION AS A DOCUMENT
//   - A calendar definition is a deeply nested structure (months, weekdays,
//     leap rule, intercalary days, time subdivisions).
//   - It is validated and interpreted by the calendar engine, never queried
//     field-by-field, so it is stored as a single JSON TEXT column.
//
// 2. UUID PRIMARY KEYS
//   - Calendars are created by clients and referenced across systems;
//     opaque string IDs avoid leaking insertion order.
//
// 3. UNIQUE NAMES
//   - The name is the human handle ("Calendar of Harptos") and the lookup
//     key for the by-name endpoint. One calendar per name.
const migrationV1Calendars = `
-- Migration 001: calendars table

CREATE TABLE IF NOT EXISTS calendars (
    id TEXT PRIMARY KEY,

    -- Human-readable handle, unique across the store
    name TEXT NOT NULL,

    description TEXT,

    -- Full calendar definition document (validated JSON)
    definition TEXT NOT NULL,

    -- Timestamps for auditing
    created_at TEXT NOT NULL DEFAULT (datetime('now')),
    updated_at TEXT NOT NULL DEFAULT (datetime('now')),

    UNIQUE (name)
);

-- By-name lookup is the most common read
CREATE INDEX IF NOT EXISTS idx_calendars_name ON calendars(name);
`

// migrationV2PresetFlag marks rows seeded from the bundled presets.
// Preset rows are re-seeded at startup and protected from deletion
// through the API, so they need to be distinguishable from user rows.
const migrationV2PresetFlag = `
-- Migration 002: preset flag

ALTER TABLE calendars ADD COLUMN is_preset INTEGER NOT NULL DEFAULT 0;

CREATE INDEX IF NOT EXISTS idx_calendars_preset ON calendars(is_preset);
`
