package calendar

import "fmt"

// NoWeekday is the weekday sentinel carried by days that do not
// participate in weekday counting.
const NoWeekday = -1

// Date is a structured calendar date. Dates are plain transient values:
// produced fresh by each conversion, comparable by value, and never
// retained by the engine.
//
// For a day inside a month, Month is the 1-based month index and Day the
// 1-based day within the month. For an intercalary day, Month is 0,
// Intercalary carries the period name, and Day the 1-based position
// within the period.
//
// Weekday is a 0-based index into the weekday cycle, or NoWeekday for a
// day that does not count. It is informational output; conversions back
// to world-time ignore it.
type Date struct {
	Year        int    `json:"year"`
	Month       int    `json:"month,omitempty"`
	Day         int    `json:"day"`
	Weekday     int    `json:"weekday"`
	Hour        int    `json:"hour"`
	Minute      int    `json:"minute"`
	Second      int    `json:"second"`
	Intercalary string `json:"intercalary,omitempty"`
}

// IsIntercalary reports whether the date falls outside the month sequence.
func (d Date) IsIntercalary() bool {
	return d.Intercalary != ""
}

// String renders the date numerically without calendar context. Use
// Calendar.Format for named months and weekdays.
func (d Date) String() string {
	if d.IsIntercalary() {
		return fmt.Sprintf("%d/%s %d %02d:%02d:%02d", d.Year, d.Intercalary, d.Day, d.Hour, d.Minute, d.Second)
	}
	return fmt.Sprintf("%d-%02d-%02d %02d:%02d:%02d", d.Year, d.Month, d.Day, d.Hour, d.Minute, d.Second)
}
