package api

import (
	"fmt"
	"sync"
	"time"

	"github.com/tabletopkit/almanac/internal/calendar"
	"github.com/tabletopkit/almanac/internal/database"
)

// engineCache holds constructed calendar engines keyed by calendar ID.
//
// Building an engine parses and validates the definition and sets up the
// lookup tables, so it is worth reusing across requests. An entry is
// stale once the stored row's updated_at moves past the one it was built
// from; calendars are replaced whole, so that is the only invalidation
// signal needed.
type engineCache struct {
	mu         sync.Mutex
	walkBudget int
	entries    map[string]engineEntry
}

type engineEntry struct {
	cal       *calendar.Calendar
	updatedAt time.Time
}

func newEngineCache(walkBudget int) *engineCache {
	return &engineCache{
		walkBudget: walkBudget,
		entries:    make(map[string]engineEntry),
	}
}

// engineFor returns a calendar engine for a stored calendar, building
// and caching one if the cached entry is missing or stale.
func (ec *engineCache) engineFor(row *database.Calendar) (*calendar.Calendar, error) {
	ec.mu.Lock()
	defer ec.mu.Unlock()

	if entry, ok := ec.entries[row.ID]; ok && entry.updatedAt.Equal(row.UpdatedAt) {
		return entry.cal, nil
	}

	def, err := calendar.ParseDefinition(row.Definition)
	if err != nil {
		return nil, fmt.Errorf("parse stored definition: %w", err)
	}

	cal, err := calendar.New(def)
	if err != nil {
		return nil, fmt.Errorf("build calendar engine: %w", err)
	}
	if ec.walkBudget > 0 {
		cal.SetWalkBudget(ec.walkBudget)
	}

	ec.entries[row.ID] = engineEntry{cal: cal, updatedAt: row.UpdatedAt}
	return cal, nil
}

// drop removes a calendar's cached engine, if any.
func (ec *engineCache) drop(id string) {
	ec.mu.Lock()
	defer ec.mu.Unlock()
	delete(ec.entries, id)
}
