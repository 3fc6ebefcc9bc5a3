package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"testing"
	"time"

	"github.com/tabletopkit/almanac/internal/calendar"
	"github.com/tabletopkit/almanac/internal/config"
	"github.com/tabletopkit/almanac/internal/database"
)

// =============================================================================
// TEST SETUP HELPERS
// =============================================================================

// testEnv sets up a complete test environment with database, config,
// handlers, and the assembled router.
type testEnv struct {
	db       *database.DB
	cfg      *config.Config
	handlers *Handlers
	router   http.Handler
	cleanup  func()
}

// setupTest creates a fresh test environment.
// Auth is open (development, no API key) unless the test sets cfg.APIKey.
func setupTest(t *testing.T) *testEnv {
	t.Helper()

	// Create in-memory database
	dbCfg := database.Config{
		Path:            ":memory:",
		MaxOpenConns:    1,
		MaxIdleConns:    1,
		ConnMaxLifetime: time.Hour,
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError, // Quiet during tests
	}))

	db, err := database.Open(dbCfg, logger)
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}

	// Run migrations
	ctx := context.Background()
	if _, err := db.Migrate(ctx); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}

	cfg := &config.Config{
		Port:         8080,
		Env:          config.EnvDevelopment,
		DatabasePath: ":memory:",
		WalkBudget:   10000,
		LogLevel:     "error",
		LogFormat:    "text",
	}

	handlers := NewHandlers(db, cfg, logger)
	router := SetupRoutes(handlers, cfg, logger)

	return &testEnv{
		db:       db,
		cfg:      cfg,
		handlers: handlers,
		router:   router,
		cleanup: func() {
			db.Close()
		},
	}
}

// testDefJSON builds a definition document: 12 months of 30 days,
// 7 weekdays, epoch year 1, 86400-second days.
func testDefJSON(t *testing.T, name string, monthDays int) json.RawMessage {
	t.Helper()

	def := calendar.Definition{Name: name}
	for i := 1; i <= 12; i++ {
		def.Months = append(def.Months, calendar.MonthDef{
			Name: fmt.Sprintf("Month %d", i),
			Days: monthDays,
		})
	}
	for i := 1; i <= 7; i++ {
		def.Weekdays = append(def.Weekdays, calendar.WeekdayDef{
			Name: fmt.Sprintf("Day %d", i),
		})
	}
	def.Year = calendar.YearDef{Epoch: 1}
	def.Time = calendar.TimeDef{HoursInDay: 24, MinutesInHour: 60, SecondsInMinute: 60}

	data, err := json.Marshal(def)
	if err != nil {
		t.Fatalf("marshal test definition: %v", err)
	}
	return data
}

// createTestCalendar stores a calendar via the API and returns its ID.
func (env *testEnv) createTestCalendar(t *testing.T, name string, monthDays int) string {
	t.Helper()

	body := map[string]interface{}{
		"name":       name,
		"definition": testDefJSON(t, name, monthDays),
	}

	rr := env.do(t, "POST", "/api/v1/calendars", body, "")
	if rr.Code != http.StatusCreated {
		t.Fatalf("create test calendar: status %d, body: %s", rr.Code, rr.Body.String())
	}

	var resp struct {
		Data database.Calendar `json:"data"`
	}
	parseResponse(t, rr, &resp)
	return resp.Data.ID
}

// do runs a request through the full router.
func (env *testEnv) do(t *testing.T, method, path string, body interface{}, apiKey string) *httptest.ResponseRecorder {
	t.Helper()

	var bodyReader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		bodyReader = bytes.NewReader(jsonData)
	}

	req := httptest.NewRequest(method, path, bodyReader)
	req.Header.Set("Content-Type", "application/json")
	if apiKey != "" {
		req.Header.Set("X-API-Key", apiKey)
	}

	rr := httptest.NewRecorder()
	env.router.ServeHTTP(rr, req)
	return rr
}

// parseResponse parses JSON response
func parseResponse(t *testing.T, rr *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(rr.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v, body: %s", err, rr.Body.String())
	}
}

// dateResponse is the common shape of conversion responses.
type dateResponse struct {
	Success bool `json:"success"`
	Data    struct {
		WorldTime int64         `json:"worldTime"`
		Date      calendar.Date `json:"date"`
		Formatted string        `json:"formatted"`
	} `json:"data"`
	Error *ErrorInfo `json:"error"`
}

// =============================================================================
// HEALTH AND CRUD TESTS
// =============================================================================

func TestHealthCheck(t *testing.T) {
	env := setupTest(t)
	defer env.cleanup()

	rr := env.do(t, "GET", "/health", nil, "")
	if rr.Code != http.StatusOK {
		t.Errorf("Status = %d, want %d, body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}
}

func TestCreateCalendar_Success(t *testing.T) {
	env := setupTest(t)
	defer env.cleanup()

	body := map[string]interface{}{
		"name":        "Campaign Calendar",
		"description": "the main campaign world",
		"definition":  testDefJSON(t, "Campaign Calendar", 30),
	}

	rr := env.do(t, "POST", "/api/v1/calendars", body, "")
	if rr.Code != http.StatusCreated {
		t.Fatalf("Status = %d, want %d, body: %s", rr.Code, http.StatusCreated, rr.Body.String())
	}

	var resp struct {
		Success bool              `json:"success"`
		Data    database.Calendar `json:"data"`
	}
	parseResponse(t, rr, &resp)

	if !resp.Success {
		t.Error("Success = false, want true")
	}
	if resp.Data.ID == "" {
		t.Error("response has no calendar ID")
	}
	if resp.Data.Name != "Campaign Calendar" {
		t.Errorf("Name = %q, want %q", resp.Data.Name, "Campaign Calendar")
	}
}

func TestCreateCalendar_InvalidDefinition(t *testing.T) {
	env := setupTest(t)
	defer env.cleanup()

	// No months: fails engine validation
	body := map[string]interface{}{
		"name": "Broken",
		"definition": json.RawMessage(`{
			"name": "Broken",
			"weekdays": [{"name": "Only Day"}],
			"year": {"epoch": 1},
			"time": {"hoursInDay": 24, "minutesInHour": 60, "secondsInMinute": 60}
		}`),
	}

	rr := env.do(t, "POST", "/api/v1/calendars", body, "")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("Status = %d, want %d, body: %s", rr.Code, http.StatusBadRequest, rr.Body.String())
	}

	var resp Response
	parseResponse(t, rr, &resp)
	if resp.Error == nil || resp.Error.Code != "DEFINITION_INVALID" {
		t.Errorf("error = %+v, want code DEFINITION_INVALID", resp.Error)
	}
}

func TestCreateCalendar_Duplicate(t *testing.T) {
	env := setupTest(t)
	defer env.cleanup()

	env.createTestCalendar(t, "Twin", 30)

	body := map[string]interface{}{
		"name":       "Twin",
		"definition": testDefJSON(t, "Twin", 30),
	}
	rr := env.do(t, "POST", "/api/v1/calendars", body, "")
	if rr.Code != http.StatusConflict {
		t.Errorf("Status = %d, want %d", rr.Code, http.StatusConflict)
	}
}

func TestGetCalendar_ByIDAndName(t *testing.T) {
	env := setupTest(t)
	defer env.cleanup()

	id := env.createTestCalendar(t, "Lookup Calendar", 30)

	for _, key := range []string{id, "Lookup Calendar"} {
		rr := env.do(t, "GET", "/api/v1/calendars/"+url.PathEscape(key), nil, "")
		if rr.Code != http.StatusOK {
			t.Errorf("GET by %q: status = %d, want %d", key, rr.Code, http.StatusOK)
			continue
		}

		var resp struct {
			Data database.Calendar `json:"data"`
		}
		parseResponse(t, rr, &resp)
		if resp.Data.ID != id {
			t.Errorf("GET by %q: id = %q, want %q", key, resp.Data.ID, id)
		}
	}
}

func TestGetCalendar_NotFound(t *testing.T) {
	env := setupTest(t)
	defer env.cleanup()

	rr := env.do(t, "GET", "/api/v1/calendars/no-such-calendar", nil, "")
	if rr.Code != http.StatusNotFound {
		t.Errorf("Status = %d, want %d", rr.Code, http.StatusNotFound)
	}
}

func TestListCalendars(t *testing.T) {
	env := setupTest(t)
	defer env.cleanup()

	env.createTestCalendar(t, "One", 30)
	env.createTestCalendar(t, "Two", 30)

	rr := env.do(t, "GET", "/api/v1/calendars", nil, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("Status = %d, want %d", rr.Code, http.StatusOK)
	}

	var resp struct {
		Data struct {
			Calendars []database.CalendarSummary `json:"calendars"`
			Count     int                        `json:"count"`
		} `json:"data"`
	}
	parseResponse(t, rr, &resp)

	if resp.Data.Count != 2 {
		t.Errorf("Count = %d, want 2", resp.Data.Count)
	}
}

func TestDeleteCalendar(t *testing.T) {
	env := setupTest(t)
	defer env.cleanup()

	id := env.createTestCalendar(t, "Doomed", 30)

	rr := env.do(t, "DELETE", "/api/v1/calendars/"+id, nil, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("Status = %d, want %d, body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}

	rr = env.do(t, "GET", "/api/v1/calendars/"+id, nil, "")
	if rr.Code != http.StatusNotFound {
		t.Errorf("GET after delete: status = %d, want %d", rr.Code, http.StatusNotFound)
	}
}

func TestDeleteCalendar_PresetForbidden(t *testing.T) {
	env := setupTest(t)
	defer env.cleanup()

	ctx := context.Background()
	if err := env.db.UpsertPreset(ctx, "Bundled", nil, testDefJSON(t, "Bundled", 30)); err != nil {
		t.Fatalf("upsert preset: %v", err)
	}

	rr := env.do(t, "DELETE", "/api/v1/calendars/Bundled", nil, "")
	if rr.Code != http.StatusForbidden {
		t.Errorf("Status = %d, want %d", rr.Code, http.StatusForbidden)
	}
}

// =============================================================================
// CONVERSION ENDPOINT TESTS
// =============================================================================

func TestGetDate(t *testing.T) {
	env := setupTest(t)
	defer env.cleanup()

	id := env.createTestCalendar(t, "Twelve Thirty", 30)

	// 30 days in month 1, so day 30 rolls into month 2
	rr := env.do(t, "GET", fmt.Sprintf("/api/v1/calendars/%s/date?t=%d", id, 30*86400), nil, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("Status = %d, want %d, body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}

	var resp dateResponse
	parseResponse(t, rr, &resp)

	want := calendar.Date{Year: 1, Month: 2, Day: 1, Weekday: 2}
	if resp.Data.Date != want {
		t.Errorf("date = %+v, want %+v", resp.Data.Date, want)
	}
	if resp.Data.Formatted == "" {
		t.Error("formatted date is empty")
	}
}

func TestGetDate_WithHint(t *testing.T) {
	env := setupTest(t)
	defer env.cleanup()

	id := env.createTestCalendar(t, "Hinted", 30)

	rr := env.do(t, "GET", fmt.Sprintf("/api/v1/calendars/%s/date?t=0&hint=500", id), nil, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("Status = %d, want %d, body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}

	var resp dateResponse
	parseResponse(t, rr, &resp)
	if resp.Data.Date.Year != 1 || resp.Data.Date.Month != 1 || resp.Data.Date.Day != 1 {
		t.Errorf("date = %+v, want year 1, month 1, day 1", resp.Data.Date)
	}
}

func TestGetDate_BadParams(t *testing.T) {
	env := setupTest(t)
	defer env.cleanup()

	id := env.createTestCalendar(t, "Strict", 30)

	for _, path := range []string{
		fmt.Sprintf("/api/v1/calendars/%s/date", id),
		fmt.Sprintf("/api/v1/calendars/%s/date?t=soon", id),
		fmt.Sprintf("/api/v1/calendars/%s/date?t=0&hint=someday", id),
	} {
		rr := env.do(t, "GET", path, nil, "")
		if rr.Code != http.StatusBadRequest {
			t.Errorf("GET %s: status = %d, want %d", path, rr.Code, http.StatusBadRequest)
		}
	}
}

func TestGetWorldTime(t *testing.T) {
	env := setupTest(t)
	defer env.cleanup()

	id := env.createTestCalendar(t, "Reverse", 30)

	rr := env.do(t, "GET", fmt.Sprintf("/api/v1/calendars/%s/worldtime?year=1&month=2&day=1", id), nil, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("Status = %d, want %d, body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}

	var resp dateResponse
	parseResponse(t, rr, &resp)

	if want := int64(30 * 86400); resp.Data.WorldTime != want {
		t.Errorf("worldTime = %d, want %d", resp.Data.WorldTime, want)
	}
	// The response date carries the computed weekday
	if resp.Data.Date.Weekday != 2 {
		t.Errorf("weekday = %d, want 2", resp.Data.Date.Weekday)
	}
}

func TestGetWorldTime_OutOfRange(t *testing.T) {
	env := setupTest(t)
	defer env.cleanup()

	id := env.createTestCalendar(t, "Bounded", 30)

	rr := env.do(t, "GET", fmt.Sprintf("/api/v1/calendars/%s/worldtime?year=1&month=2&day=31", id), nil, "")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("Status = %d, want %d, body: %s", rr.Code, http.StatusBadRequest, rr.Body.String())
	}

	var resp Response
	parseResponse(t, rr, &resp)
	if resp.Error == nil || resp.Error.Code != "DATE_OUT_OF_RANGE" {
		t.Errorf("error = %+v, want code DATE_OUT_OF_RANGE", resp.Error)
	}
}

func TestAddToDate(t *testing.T) {
	env := setupTest(t)
	defer env.cleanup()

	id := env.createTestCalendar(t, "Arithmetic", 30)

	body := map[string]interface{}{
		"date": map[string]interface{}{"year": 1, "month": 1, "day": 1},
		"days": 30,
	}

	rr := env.do(t, "POST", fmt.Sprintf("/api/v1/calendars/%s/add", id), body, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("Status = %d, want %d, body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}

	var resp dateResponse
	parseResponse(t, rr, &resp)

	if resp.Data.Date.Year != 1 || resp.Data.Date.Month != 2 || resp.Data.Date.Day != 1 {
		t.Errorf("date = %+v, want year 1, month 2, day 1", resp.Data.Date)
	}
}

func TestUpdateCalendar_RebuildsEngine(t *testing.T) {
	env := setupTest(t)
	defer env.cleanup()

	id := env.createTestCalendar(t, "Mutable", 30)

	// Warm the engine cache
	rr := env.do(t, "GET", fmt.Sprintf("/api/v1/calendars/%s/date?t=%d", id, 30*86400), nil, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("warm-up conversion failed: %d", rr.Code)
	}

	// Replace the definition with 40-day months
	body := map[string]interface{}{
		"name":       "Mutable",
		"definition": testDefJSON(t, "Mutable", 40),
	}
	rr = env.do(t, "PUT", "/api/v1/calendars/"+id, body, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("update failed: %d, body: %s", rr.Code, rr.Body.String())
	}

	// Day 31 of the first month now exists
	rr = env.do(t, "GET", fmt.Sprintf("/api/v1/calendars/%s/date?t=%d", id, 30*86400), nil, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("post-update conversion failed: %d", rr.Code)
	}

	var resp dateResponse
	parseResponse(t, rr, &resp)
	if resp.Data.Date.Month != 1 || resp.Data.Date.Day != 31 {
		t.Errorf("date after update = %+v, want month 1, day 31 (new definition)", resp.Data.Date)
	}
}

// =============================================================================
// AUTH TESTS
// =============================================================================

func TestWriteEndpointsRequireKey(t *testing.T) {
	env := setupTest(t)
	defer env.cleanup()

	env.cfg.APIKey = "test-key"

	body := map[string]interface{}{
		"name":       "Guarded",
		"definition": testDefJSON(t, "Guarded", 30),
	}

	rr := env.do(t, "POST", "/api/v1/calendars", body, "")
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("no key: status = %d, want %d", rr.Code, http.StatusUnauthorized)
	}

	rr = env.do(t, "POST", "/api/v1/calendars", body, "wrong-key")
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("wrong key: status = %d, want %d", rr.Code, http.StatusUnauthorized)
	}

	rr = env.do(t, "POST", "/api/v1/calendars", body, "test-key")
	if rr.Code != http.StatusCreated {
		t.Errorf("valid key: status = %d, want %d, body: %s", rr.Code, http.StatusCreated, rr.Body.String())
	}

	// Reads stay public
	rr = env.do(t, "GET", "/api/v1/calendars", nil, "")
	if rr.Code != http.StatusOK {
		t.Errorf("public read: status = %d, want %d", rr.Code, http.StatusOK)
	}
}
