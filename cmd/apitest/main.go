package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

// =============================================================================
// Response Types - Match the actual API response structure
// =============================================================================

type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorInfo  `json:"error,omitempty"`
}

type ErrorInfo struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// DateJSON mirrors the engine's date shape on the wire.
type DateJSON struct {
	Year        int    `json:"year"`
	Month       int    `json:"month,omitempty"`
	Day         int    `json:"day"`
	Weekday     int    `json:"weekday"`
	Hour        int    `json:"hour"`
	Minute      int    `json:"minute"`
	Second      int    `json:"second"`
	Intercalary string `json:"intercalary,omitempty"`
}

// ConversionResponse is the response for /date, /worldtime and /add.
type ConversionResponse struct {
	WorldTime int64    `json:"worldTime"`
	Date      DateJSON `json:"date"`
	Formatted string   `json:"formatted"`
}

// ListResponse is the response for GET /api/v1/calendars.
type ListResponse struct {
	Calendars []struct {
		ID       string `json:"id"`
		Name     string `json:"name"`
		IsPreset bool   `json:"is_preset"`
	} `json:"calendars"`
	Count int `json:"count"`
}

// HealthResponse is the response for /health.
type HealthResponse struct {
	Status string `json:"status"`
}

// =============================================================================
// Test Runner
// =============================================================================

type TestRunner struct {
	baseURL      string
	client       *http.Client
	verbose      bool
	successCount int
	errorCount   int
	errors       []string
}

func NewTestRunner(baseURL string, verbose bool) *TestRunner {
	return &TestRunner{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		verbose: verbose,
	}
}

func (tr *TestRunner) Run() {
	fmt.Println("==============================================")
	fmt.Println("Almanac API Test Suite")
	fmt.Println("==============================================")
	fmt.Printf("Base URL: %s\n", tr.baseURL)
	fmt.Println()

	// Run test groups
	tr.testHealth()
	tr.testPresets()
	tr.testGregorianConversions()
	tr.testHarptosIntercalary()
	tr.testArithmetic()
	tr.testErrorCases()

	// Print summary
	tr.printSummary()
}

// =============================================================================
// Test Groups
// =============================================================================

func (tr *TestRunner) testHealth() {
	tr.printSection("Health Check")

	resp, err := tr.get("/health")
	if err != nil {
		tr.recordError("Health", err.Error())
		return
	}

	var health HealthResponse
	if err := tr.parseDataAs(resp, &health); err != nil {
		tr.recordError("Health", err.Error())
		return
	}

	if health.Status == "healthy" {
		tr.recordSuccess("Health check passed")
	} else {
		tr.recordError("Health", fmt.Sprintf("Unexpected status: %s", health.Status))
	}
}

func (tr *TestRunner) testPresets() {
	tr.printSection("Bundled Presets")

	resp, err := tr.get("/api/v1/calendars")
	if err != nil {
		tr.recordError("List", err.Error())
		return
	}

	var list ListResponse
	if err := tr.parseDataAs(resp, &list); err != nil {
		tr.recordError("List", err.Error())
		return
	}

	wanted := []string{"Gregorian", "Calendar of Harptos", "Golarion (Absalom Reckoning)"}
	for _, name := range wanted {
		found := false
		for _, cal := range list.Calendars {
			if cal.Name == name && cal.IsPreset {
				found = true
				break
			}
		}
		if found {
			tr.recordSuccess(fmt.Sprintf("Preset present: %s", name))
		} else {
			tr.recordError("List", fmt.Sprintf("Preset missing: %s", name))
		}
	}

	// Calendars resolve by name as well as by ID
	if _, err := tr.get("/api/v1/calendars/Gregorian"); err != nil {
		tr.recordError("Get by name", err.Error())
	} else {
		tr.recordSuccess("Lookup by name works")
	}
}

func (tr *TestRunner) testGregorianConversions() {
	tr.printSection("Gregorian Conversions")

	// date -> world time
	resp, err := tr.get("/api/v1/calendars/Gregorian/worldtime?year=2026&month=1&day=1")
	if err != nil {
		tr.recordError("2026-01-01", err.Error())
		return
	}
	var conv ConversionResponse
	if err := tr.parseDataAs(resp, &conv); err != nil {
		tr.recordError("2026-01-01", err.Error())
		return
	}
	if conv.Date.Weekday == 4 {
		tr.recordSuccess(fmt.Sprintf("2026-01-01 is a Thursday (t=%d)", conv.WorldTime))
	} else {
		tr.recordError("2026-01-01", fmt.Sprintf("Expected weekday 4, got %d", conv.Date.Weekday))
	}

	// Round trip: same t must come back as the same date
	resp, err = tr.get(fmt.Sprintf("/api/v1/calendars/Gregorian/date?t=%d", conv.WorldTime))
	if err != nil {
		tr.recordError("Round trip", err.Error())
		return
	}
	var back ConversionResponse
	if err := tr.parseDataAs(resp, &back); err != nil {
		tr.recordError("Round trip", err.Error())
		return
	}
	if back.Date == conv.Date {
		tr.recordSuccess("Round trip preserved the date")
	} else {
		tr.recordError("Round trip", fmt.Sprintf("Got %+v, want %+v", back.Date, conv.Date))
	}

	// The last second of the day still belongs to the same date
	resp, err = tr.get(fmt.Sprintf("/api/v1/calendars/Gregorian/date?t=%d", conv.WorldTime+86399))
	if err != nil {
		tr.recordError("End of day", err.Error())
		return
	}
	var endOfDay ConversionResponse
	if err := tr.parseDataAs(resp, &endOfDay); err != nil {
		tr.recordError("End of day", err.Error())
		return
	}
	if endOfDay.Date.Day == conv.Date.Day && endOfDay.Date.Hour == 23 && endOfDay.Date.Second == 59 {
		tr.recordSuccess("End of day stays on the same date")
	} else {
		tr.recordError("End of day", fmt.Sprintf("Got %+v", endOfDay.Date))
	}

	// Leap day exists in 2024
	if _, err := tr.get("/api/v1/calendars/Gregorian/worldtime?year=2024&month=2&day=29"); err != nil {
		tr.recordError("2024-02-29", err.Error())
	} else {
		tr.recordSuccess("2024-02-29 is a valid date")
	}

	if tr.verbose {
		fmt.Printf("    Formatted: %s\n", conv.Formatted)
	}
}

func (tr *TestRunner) testHarptosIntercalary() {
	tr.printSection("Harptos Intercalary Days")

	cal := "Calendar%20of%20Harptos"

	// Midwinter falls between Hammer and Alturiak and has no weekday
	resp, err := tr.get(fmt.Sprintf("/api/v1/calendars/%s/worldtime?year=1372&intercalary=Midwinter&day=1", cal))
	if err != nil {
		tr.recordError("Midwinter", err.Error())
		return
	}
	var conv ConversionResponse
	if err := tr.parseDataAs(resp, &conv); err != nil {
		tr.recordError("Midwinter", err.Error())
		return
	}
	if conv.Date.Intercalary == "Midwinter" && conv.Date.Weekday == -1 {
		tr.recordSuccess("Midwinter carries no weekday")
	} else {
		tr.recordError("Midwinter", fmt.Sprintf("Got %+v", conv.Date))
	}

	// Weekdays resume unchanged on the far side of Midwinter
	before, err := tr.convert(fmt.Sprintf("/api/v1/calendars/%s/worldtime?year=1372&month=1&day=30", cal))
	if err != nil {
		tr.recordError("Hammer 30", err.Error())
		return
	}
	after, err := tr.convert(fmt.Sprintf("/api/v1/calendars/%s/worldtime?year=1372&month=2&day=1", cal))
	if err != nil {
		tr.recordError("Alturiak 1", err.Error())
		return
	}
	if after.Date.Weekday == (before.Date.Weekday+1)%10 {
		tr.recordSuccess("Weekday count skips Midwinter")
	} else {
		tr.recordError("Weekday skip", fmt.Sprintf("Hammer 30 weekday %d, Alturiak 1 weekday %d",
			before.Date.Weekday, after.Date.Weekday))
	}

	// Shieldmeet only exists in leap years (1372 is one, 1373 is not)
	if _, err := tr.get(fmt.Sprintf("/api/v1/calendars/%s/worldtime?year=1372&intercalary=Shieldmeet&day=1", cal)); err != nil {
		tr.recordError("Shieldmeet 1372", err.Error())
	} else {
		tr.recordSuccess("Shieldmeet exists in 1372")
	}
	tr.expectFailure(fmt.Sprintf("/api/v1/calendars/%s/worldtime?year=1373&intercalary=Shieldmeet&day=1", cal),
		"DATE_OUT_OF_RANGE", "Shieldmeet rejected in 1373")
}

func (tr *TestRunner) testArithmetic() {
	tr.printSection("Date Arithmetic")

	cases := []struct {
		desc string
		body map[string]interface{}
		want DateJSON
	}{
		{
			desc: "30 days from Jan 1",
			body: map[string]interface{}{
				"date": map[string]int{"year": 2026, "month": 1, "day": 1},
				"days": 30,
			},
			want: DateJSON{Year: 2026, Month: 1, Day: 31},
		},
		{
			desc: "1 month from Jan 31 clamps to Feb 28",
			body: map[string]interface{}{
				"date":   map[string]int{"year": 2026, "month": 1, "day": 31},
				"months": 1,
			},
			want: DateJSON{Year: 2026, Month: 2, Day: 28},
		},
		{
			desc: "1 year from a leap day clamps",
			body: map[string]interface{}{
				"date":  map[string]int{"year": 2024, "month": 2, "day": 29},
				"years": 1,
			},
			want: DateJSON{Year: 2025, Month: 2, Day: 28},
		},
	}

	for _, tc := range cases {
		resp, err := tr.post("/api/v1/calendars/Gregorian/add", tc.body)
		if err != nil {
			tr.recordError(tc.desc, err.Error())
			continue
		}
		var conv ConversionResponse
		if err := tr.parseDataAs(resp, &conv); err != nil {
			tr.recordError(tc.desc, err.Error())
			continue
		}
		got := conv.Date
		if got.Year == tc.want.Year && got.Month == tc.want.Month && got.Day == tc.want.Day {
			tr.recordSuccess(fmt.Sprintf("%s -> %s", tc.desc, conv.Formatted))
		} else {
			tr.recordError(tc.desc, fmt.Sprintf("Got %+v, want %d-%02d-%02d",
				got, tc.want.Year, tc.want.Month, tc.want.Day))
		}
	}
}

func (tr *TestRunner) testErrorCases() {
	tr.printSection("Error Handling")

	tr.expectFailure("/api/v1/calendars/Gregorian/worldtime?year=2026&month=2&day=29",
		"DATE_OUT_OF_RANGE", "Feb 29 rejected in a non-leap year")
	tr.expectFailure("/api/v1/calendars/Gregorian/worldtime?year=2026&month=13&day=1",
		"DATE_OUT_OF_RANGE", "Month 13 rejected")
	tr.expectFailure("/api/v1/calendars/Gregorian/date?t=notanumber",
		"", "Malformed world time rejected")
	tr.expectFailure("/api/v1/calendars/no-such-calendar/date?t=0",
		"NOT_FOUND", "Unknown calendar rejected")
}

// =============================================================================
// Helper Methods
// =============================================================================

func (tr *TestRunner) get(path string) (*APIResponse, error) {
	resp, err := tr.client.Get(tr.baseURL + path)
	if err != nil {
		return nil, err
	}
	return tr.decode(resp)
}

func (tr *TestRunner) post(path string, body interface{}) (*APIResponse, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	resp, err := tr.client.Post(tr.baseURL+path, "application/json", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	return tr.decode(resp)
}

func (tr *TestRunner) decode(resp *http.Response) (*APIResponse, error) {
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read error: %w", err)
	}

	var apiResp APIResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}

	if !apiResp.Success {
		errMsg := "unknown error"
		if apiResp.Error != nil {
			errMsg = apiResp.Error.Message
		}
		return nil, fmt.Errorf("API error: %s", errMsg)
	}

	return &apiResp, nil
}

// convert fetches a conversion endpoint and decodes its payload.
func (tr *TestRunner) convert(path string) (*ConversionResponse, error) {
	resp, err := tr.get(path)
	if err != nil {
		return nil, err
	}
	var conv ConversionResponse
	if err := tr.parseDataAs(resp, &conv); err != nil {
		return nil, err
	}
	return &conv, nil
}

// expectFailure asserts that a GET returns an unsuccessful envelope,
// optionally with a specific error code.
func (tr *TestRunner) expectFailure(path, wantCode, desc string) {
	resp, err := tr.client.Get(tr.baseURL + path)
	if err != nil {
		tr.recordError(desc, err.Error())
		return
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		tr.recordError(desc, err.Error())
		return
	}

	var apiResp APIResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		tr.recordError(desc, fmt.Sprintf("parse error: %v", err))
		return
	}

	if apiResp.Success {
		tr.recordError(desc, "Expected an error response, got success")
		return
	}
	if wantCode != "" && (apiResp.Error == nil || apiResp.Error.Code != wantCode) {
		got := "<nil>"
		if apiResp.Error != nil {
			got = apiResp.Error.Code
		}
		tr.recordError(desc, fmt.Sprintf("Expected error code %s, got %s", wantCode, got))
		return
	}
	tr.recordSuccess(desc)
}

func (tr *TestRunner) parseDataAs(resp *APIResponse, target interface{}) error {
	// Re-marshal and unmarshal to convert map to struct
	dataBytes, err := json.Marshal(resp.Data)
	if err != nil {
		return fmt.Errorf("marshal error: %w", err)
	}
	return json.Unmarshal(dataBytes, target)
}

func (tr *TestRunner) printSection(name string) {
	fmt.Println()
	fmt.Printf("--- %s ---\n", name)
	fmt.Println()
}

func (tr *TestRunner) recordSuccess(msg string) {
	tr.successCount++
	fmt.Printf("  ✓ %s\n", msg)
}

func (tr *TestRunner) recordError(context, msg string) {
	tr.errorCount++
	errStr := fmt.Sprintf("%s: %s", context, msg)
	tr.errors = append(tr.errors, errStr)
	fmt.Printf("  ✗ %s\n", errStr)
}

func (tr *TestRunner) printSummary() {
	fmt.Println()
	fmt.Println("==============================================")
	fmt.Println("Summary")
	fmt.Println("==============================================")
	fmt.Printf("  Passed: %d\n", tr.successCount)
	fmt.Printf("  Failed: %d\n", tr.errorCount)
	fmt.Println()

	if tr.errorCount > 0 {
		fmt.Println("Failures:")
		for _, err := range tr.errors {
			fmt.Printf("  • %s\n", err)
		}
		fmt.Println()
	}

	if tr.errorCount == 0 {
		fmt.Println("All tests passed! ✓")
	} else {
		fmt.Printf("Tests completed with %d failure(s)\n", tr.errorCount)
	}
}

// =============================================================================
// Main
// =============================================================================

func main() {
	baseURL := flag.String("url", "http://localhost:8080", "Base URL of the API")
	verbose := flag.Bool("v", false, "Verbose output")
	flag.Parse()

	// Check if server is reachable
	client := &http.Client{Timeout: 2 * time.Second}
	_, err := client.Get(*baseURL + "/health")
	if err != nil {
		fmt.Printf("Error: Cannot connect to %s\n", *baseURL)
		fmt.Println("Make sure the API server is running.")
		os.Exit(1)
	}

	runner := NewTestRunner(*baseURL, *verbose)
	runner.Run()

	// Exit with error code if tests failed
	if runner.errorCount > 0 {
		os.Exit(1)
	}
}
