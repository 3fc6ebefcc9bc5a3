package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/tabletopkit/almanac/internal/calendar"
	"github.com/tabletopkit/almanac/internal/config"
	"github.com/tabletopkit/almanac/internal/database"
)

// Handlers contains all HTTP handlers and their dependencies.
type Handlers struct {
	db      *database.DB
	engines *engineCache
	cfg     *config.Config
	logger  *slog.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(db *database.DB, cfg *config.Config, logger *slog.Logger) *Handlers {
	return &Handlers{
		db:      db,
		engines: newEngineCache(cfg.WalkBudget),
		cfg:     cfg,
		logger:  logger,
	}
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	// Check database health
	if err := h.db.Health(ctx); err != nil {
		h.logger.Warn("health check failed", slog.Any("error", err))
		WriteError(w, http.StatusServiceUnavailable, "Database unhealthy", "HEALTH_CHECK_FAILED")
		return
	}

	stats, err := h.db.GetStoreStats(ctx)
	if err != nil {
		h.logger.Warn("store stats failed", slog.Any("error", err))
		WriteError(w, http.StatusServiceUnavailable, "Store unhealthy", "HEALTH_CHECK_FAILED")
		return
	}

	WriteSuccess(w, map[string]interface{}{
		"status":    "healthy",
		"calendars": stats,
	})
}

// =============================================================================
// Calendar CRUD
// =============================================================================

// calendarRequest is the request body for creating or updating a calendar.
type calendarRequest struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Definition  json.RawMessage `json:"definition"`
}

// validateDefinition parses and validates a definition document,
// returning the normalized name it declares.
func validateDefinition(raw json.RawMessage) (*calendar.Definition, error) {
	def, err := calendar.ParseDefinition(raw)
	if err != nil {
		return nil, err
	}
	if _, err := calendar.New(def); err != nil {
		return nil, err
	}
	return def, nil
}

// ListCalendars handles GET /api/v1/calendars
func (h *Handlers) ListCalendars(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.db.ListCalendars(r.Context())
	if err != nil {
		h.logger.Error("failed to list calendars", slog.Any("error", err))
		WriteInternalError(w, "Failed to list calendars")
		return
	}

	WriteSuccess(w, map[string]interface{}{
		"calendars": summaries,
		"count":     len(summaries),
	})
}

// CreateCalendar handles POST /api/v1/calendars
func (h *Handlers) CreateCalendar(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req calendarRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteBadRequest(w, fmt.Sprintf("Invalid request body: %v", err))
		return
	}

	if req.Name == "" {
		WriteBadRequest(w, "name is required")
		return
	}
	if len(req.Definition) == 0 {
		WriteBadRequest(w, "definition is required")
		return
	}

	if _, err := validateDefinition(req.Definition); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error(), "DEFINITION_INVALID")
		return
	}

	var description *string
	if req.Description != "" {
		description = &req.Description
	}

	cal, err := h.db.CreateCalendar(ctx, req.Name, description, req.Definition)
	if err != nil {
		if database.IsDuplicate(err) {
			WriteConflict(w, fmt.Sprintf("A calendar named %q already exists", req.Name))
			return
		}
		h.logger.Error("failed to create calendar", slog.Any("error", err))
		WriteInternalError(w, "Failed to create calendar")
		return
	}

	WriteCreated(w, cal)
}

// GetCalendar handles GET /api/v1/calendars/{calendarID}
func (h *Handlers) GetCalendar(w http.ResponseWriter, r *http.Request) {
	cal, err := h.loadCalendar(r.Context(), chi.URLParam(r, "calendarID"))
	if err != nil {
		if database.IsNotFound(err) {
			WriteNotFound(w, "Calendar not found")
			return
		}
		h.logger.Error("failed to get calendar", slog.Any("error", err))
		WriteInternalError(w, "Failed to retrieve calendar")
		return
	}

	WriteSuccess(w, cal)
}

// UpdateCalendar handles PUT /api/v1/calendars/{calendarID}
//
// The stored definition is replaced as a whole; there is no field-level
// patching of calendar structure.
func (h *Handlers) UpdateCalendar(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	existing, err := h.loadCalendar(ctx, chi.URLParam(r, "calendarID"))
	if err != nil {
		if database.IsNotFound(err) {
			WriteNotFound(w, "Calendar not found")
			return
		}
		h.logger.Error("failed to get calendar", slog.Any("error", err))
		WriteInternalError(w, "Failed to retrieve calendar")
		return
	}

	var req calendarRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteBadRequest(w, fmt.Sprintf("Invalid request body: %v", err))
		return
	}

	if req.Name == "" {
		req.Name = existing.Name
	}
	if len(req.Definition) == 0 {
		WriteBadRequest(w, "definition is required")
		return
	}

	if _, err := validateDefinition(req.Definition); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error(), "DEFINITION_INVALID")
		return
	}

	var description *string
	if req.Description != "" {
		description = &req.Description
	} else {
		description = existing.Description
	}

	updated, err := h.db.UpdateCalendar(ctx, existing.ID, req.Name, description, req.Definition)
	if err != nil {
		if database.IsDuplicate(err) {
			WriteConflict(w, fmt.Sprintf("A calendar named %q already exists", req.Name))
			return
		}
		h.logger.Error("failed to update calendar", slog.Any("error", err))
		WriteInternalError(w, "Failed to update calendar")
		return
	}

	// The cached engine, if any, was built from the old definition
	h.engines.drop(existing.ID)

	WriteSuccess(w, updated)
}

// DeleteCalendar handles DELETE /api/v1/calendars/{calendarID}
func (h *Handlers) DeleteCalendar(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	cal, err := h.loadCalendar(ctx, chi.URLParam(r, "calendarID"))
	if err != nil {
		if database.IsNotFound(err) {
			WriteNotFound(w, "Calendar not found")
			return
		}
		h.logger.Error("failed to get calendar", slog.Any("error", err))
		WriteInternalError(w, "Failed to retrieve calendar")
		return
	}

	if cal.IsPreset {
		WriteForbidden(w, "Preset calendars cannot be deleted")
		return
	}

	if err := h.db.DeleteCalendar(ctx, cal.ID); err != nil {
		h.logger.Error("failed to delete calendar", slog.Any("error", err))
		WriteInternalError(w, "Failed to delete calendar")
		return
	}

	h.engines.drop(cal.ID)

	WriteSuccess(w, map[string]string{"message": "Calendar deleted"})
}

// =============================================================================
// Conversion endpoints
// =============================================================================

// GetDate handles GET /api/v1/calendars/{calendarID}/date?t=SECONDS[&hint=YEAR]
func (h *Handlers) GetDate(w http.ResponseWriter, r *http.Request) {
	cal, eng, ok := h.engineForRequest(w, r)
	if !ok {
		return
	}

	tStr := r.URL.Query().Get("t")
	if tStr == "" {
		WriteBadRequest(w, "Query parameter t (world-time seconds) is required")
		return
	}
	t, err := strconv.ParseInt(tStr, 10, 64)
	if err != nil {
		WriteBadRequest(w, fmt.Sprintf("Invalid world time: %q", tStr))
		return
	}

	var date calendar.Date
	if hintStr := r.URL.Query().Get("hint"); hintStr != "" {
		hint, err := strconv.Atoi(hintStr)
		if err != nil {
			WriteBadRequest(w, fmt.Sprintf("Invalid hint year: %q", hintStr))
			return
		}
		date, err = eng.DateAtNear(t, hint)
		if err != nil {
			h.writeConversionError(w, cal, err)
			return
		}
	} else {
		date, err = eng.DateAt(t)
		if err != nil {
			h.writeConversionError(w, cal, err)
			return
		}
	}

	WriteSuccess(w, map[string]interface{}{
		"worldTime": t,
		"date":      date,
		"formatted": eng.Format(date),
	})
}

// GetWorldTime handles GET /api/v1/calendars/{calendarID}/worldtime
// with the date supplied as query parameters (year, month, day, or
// intercalary+day, plus optional hour/minute/second).
func (h *Handlers) GetWorldTime(w http.ResponseWriter, r *http.Request) {
	cal, eng, ok := h.engineForRequest(w, r)
	if !ok {
		return
	}

	date, err := dateFromQuery(r)
	if err != nil {
		WriteBadRequest(w, err.Error())
		return
	}

	t, err := eng.WorldTimeOf(date)
	if err != nil {
		h.writeConversionError(w, cal, err)
		return
	}

	// Round-trip so the response carries the weekday
	canonical, err := eng.DateAtNear(t, date.Year)
	if err != nil {
		h.writeConversionError(w, cal, err)
		return
	}

	WriteSuccess(w, map[string]interface{}{
		"worldTime": t,
		"date":      canonical,
		"formatted": eng.Format(canonical),
	})
}

// addRequest is the request body for date arithmetic.
// The non-zero units are applied in order: years, months, weeks, days.
type addRequest struct {
	Date   calendar.Date `json:"date"`
	Years  int           `json:"years,omitempty"`
	Months int           `json:"months,omitempty"`
	Weeks  int           `json:"weeks,omitempty"`
	Days   int           `json:"days,omitempty"`
}

// AddToDate handles POST /api/v1/calendars/{calendarID}/add
func (h *Handlers) AddToDate(w http.ResponseWriter, r *http.Request) {
	cal, eng, ok := h.engineForRequest(w, r)
	if !ok {
		return
	}

	var req addRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteBadRequest(w, fmt.Sprintf("Invalid request body: %v", err))
		return
	}

	result := req.Date
	var err error

	if req.Years != 0 {
		if result, err = eng.AddYears(result, req.Years); err != nil {
			h.writeConversionError(w, cal, err)
			return
		}
	}
	if req.Months != 0 {
		if result, err = eng.AddMonths(result, req.Months); err != nil {
			h.writeConversionError(w, cal, err)
			return
		}
	}
	if req.Weeks != 0 {
		if result, err = eng.AddWeeks(result, req.Weeks); err != nil {
			h.writeConversionError(w, cal, err)
			return
		}
	}
	if req.Days != 0 {
		if result, err = eng.AddDays(result, req.Days); err != nil {
			h.writeConversionError(w, cal, err)
			return
		}
	}
	if req.Years == 0 && req.Months == 0 && req.Weeks == 0 && req.Days == 0 {
		// Normalize a zero addition too, so the weekday is filled in
		if result, err = eng.AddDays(result, 0); err != nil {
			h.writeConversionError(w, cal, err)
			return
		}
	}

	WriteSuccess(w, map[string]interface{}{
		"date":      result,
		"formatted": eng.Format(result),
	})
}

// =============================================================================
// Helpers
// =============================================================================

// loadCalendar fetches a stored calendar by ID, falling back to the
// unique name so both handles work in URLs.
func (h *Handlers) loadCalendar(ctx context.Context, key string) (*database.Calendar, error) {
	if key == "" {
		return nil, database.ErrNotFound
	}

	cal, err := h.db.GetCalendar(ctx, key)
	if err == nil {
		return cal, nil
	}
	if !database.IsNotFound(err) {
		return nil, err
	}

	return h.db.GetCalendarByName(ctx, key)
}

// engineForRequest resolves the calendar row and its engine for a
// conversion request, writing the error response on failure.
func (h *Handlers) engineForRequest(w http.ResponseWriter, r *http.Request) (*database.Calendar, *calendar.Calendar, bool) {
	cal, err := h.loadCalendar(r.Context(), chi.URLParam(r, "calendarID"))
	if err != nil {
		if database.IsNotFound(err) {
			WriteNotFound(w, "Calendar not found")
			return nil, nil, false
		}
		h.logger.Error("failed to get calendar", slog.Any("error", err))
		WriteInternalError(w, "Failed to retrieve calendar")
		return nil, nil, false
	}

	eng, err := h.engines.engineFor(cal)
	if err != nil {
		h.logger.Error("failed to build calendar engine",
			slog.String("calendar_id", cal.ID),
			slog.Any("error", err))
		WriteInternalError(w, "Stored calendar definition is unusable")
		return nil, nil, false
	}

	return cal, eng, true
}

// writeConversionError maps engine errors to HTTP responses.
func (h *Handlers) writeConversionError(w http.ResponseWriter, cal *database.Calendar, err error) {
	switch {
	case calendar.IsDateOutOfRange(err):
		WriteError(w, http.StatusBadRequest, err.Error(), "DATE_OUT_OF_RANGE")
	case calendar.IsOverflow(err):
		WriteError(w, http.StatusUnprocessableEntity, err.Error(), "CONVERSION_OVERFLOW")
	case calendar.IsDefinitionError(err):
		WriteError(w, http.StatusBadRequest, err.Error(), "DEFINITION_INVALID")
	default:
		h.logger.Error("conversion failed",
			slog.String("calendar_id", cal.ID),
			slog.Any("error", err))
		WriteInternalError(w, "Conversion failed")
	}
}

// dateFromQuery builds a date from query parameters.
// Requires year and day, plus either month or intercalary.
func dateFromQuery(r *http.Request) (calendar.Date, error) {
	q := r.URL.Query()
	var d calendar.Date

	get := func(key string) (int, bool, error) {
		s := q.Get(key)
		if s == "" {
			return 0, false, nil
		}
		v, err := strconv.Atoi(s)
		if err != nil {
			return 0, false, fmt.Errorf("invalid %s: %q", key, s)
		}
		return v, true, nil
	}

	year, ok, err := get("year")
	if err != nil {
		return d, err
	}
	if !ok {
		return d, fmt.Errorf("query parameter year is required")
	}
	d.Year = year

	d.Intercalary = q.Get("intercalary")

	month, hasMonth, err := get("month")
	if err != nil {
		return d, err
	}
	if hasMonth && d.Intercalary != "" {
		return d, fmt.Errorf("month and intercalary are mutually exclusive")
	}
	if !hasMonth && d.Intercalary == "" {
		return d, fmt.Errorf("either month or intercalary is required")
	}
	d.Month = month

	day, ok, err := get("day")
	if err != nil {
		return d, err
	}
	if !ok {
		return d, fmt.Errorf("query parameter day is required")
	}
	d.Day = day

	if d.Hour, _, err = get("hour"); err != nil {
		return d, err
	}
	if d.Minute, _, err = get("minute"); err != nil {
		return d, err
	}
	if d.Second, _, err = get("second"); err != nil {
		return d, err
	}

	return d, nil
}

// decodeJSON decodes JSON request body.
func decodeJSON(r *http.Request, v interface{}) error {
	if r.Body == nil {
		return fmt.Errorf("request body is empty")
	}
	defer r.Body.Close()

	return json.NewDecoder(r.Body).Decode(v)
}
