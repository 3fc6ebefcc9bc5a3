package database

import (
	"encoding/json"
	"time"
)

// Calendar is a stored calendar definition.
//
// The Definition column carries the full document the engine consumes;
// the surrounding fields exist for listing, lookup, and auditing.
type Calendar struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description *string         `json:"description,omitempty"` // nullable
	Definition  json.RawMessage `json:"definition"`
	IsPreset    bool            `json:"is_preset"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// CalendarSummary is the listing view of a calendar: everything except
// the definition document itself.
type CalendarSummary struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	IsPreset    bool      `json:"is_preset"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Summary strips the definition document from a calendar.
func (c *Calendar) Summary() CalendarSummary {
	return CalendarSummary{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		IsPreset:    c.IsPreset,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

// StoreStats contains statistics about the calendar store.
// Used by the health endpoint.
type StoreStats struct {
	TotalCalendars  int `json:"total_calendars"`
	PresetCalendars int `json:"preset_calendars"`
	UserCalendars   int `json:"user_calendars"`
}
