// Package calendar implements the world calendar engine: converting between
// a host-maintained world-time counter (seconds) and structured calendar
// dates for arbitrary, user-defined calendars.
package calendar

import (
	"encoding/json"
	"errors"
	"fmt"
)

// LeapRule identifies how a calendar decides which years gain extra days.
type LeapRule string

// Known leap-year rules.
const (
	// LeapNone means no year is ever a leap year.
	LeapNone LeapRule = "none"

	// LeapGregorian uses the standard 4/100/400 divisibility test and adds
	// one day to the designated leap month.
	LeapGregorian LeapRule = "gregorian"

	// LeapCustom marks every year divisible by Interval as a leap year and
	// adds ExtraDays to the designated leap month.
	LeapCustom LeapRule = "custom"
)

// Interpretation controls what world-time zero means.
type Interpretation string

// Known world-time interpretations.
const (
	// EpochBased maps world-time 0 to day 1 of the epoch year.
	// This is the default.
	EpochBased Interpretation = "epoch-based"

	// RealTimeBased maps world-time 0 to day 1 of the configured current
	// year, so year numbering tracks a real-world clock convention.
	RealTimeBased Interpretation = "real-time-based"
)

// MonthDef describes one month of the calendar. Month order in the
// definition is significant: it defines the 1-based month index.
type MonthDef struct {
	Name string `json:"name" yaml:"name"`
	Days int    `json:"days" yaml:"days"`
}

// WeekdayDef describes one named day of the repeating weekday cycle.
type WeekdayDef struct {
	Name string `json:"name" yaml:"name"`
}

// LeapYearDef configures the calendar's leap-year rule.
//
// Month names the month that receives the extra day(s); it is resolved by
// name (not index) so month reordering cannot silently retarget it.
type LeapYearDef struct {
	Rule      LeapRule `json:"rule" yaml:"rule"`
	Interval  int      `json:"interval,omitempty" yaml:"interval,omitempty"`
	Month     string   `json:"month,omitempty" yaml:"month,omitempty"`
	ExtraDays int      `json:"extraDays,omitempty" yaml:"extraDays,omitempty"`
}

// IntercalaryDef describes a day (or run of days) that exists outside the
// month sequence, anchored after a month by name.
type IntercalaryDef struct {
	Name              string `json:"name" yaml:"name"`
	After             string `json:"after" yaml:"after"`
	LeapYearOnly      bool   `json:"leapYearOnly,omitempty" yaml:"leapYearOnly,omitempty"`
	CountsForWeekdays bool   `json:"countsForWeekdays,omitempty" yaml:"countsForWeekdays,omitempty"`
	Days              int    `json:"days,omitempty" yaml:"days,omitempty"`
	Description       string `json:"description,omitempty" yaml:"description,omitempty"`
}

// YearDef anchors the calendar's year numbering.
type YearDef struct {
	// Epoch is the origin year for world-time and weekday counting.
	Epoch int `json:"epoch" yaml:"epoch"`

	// CurrentYear is the informational default year; it anchors world-time
	// zero under the real-time-based interpretation.
	CurrentYear int `json:"currentYear,omitempty" yaml:"currentYear,omitempty"`

	// FirstWeekday is the 0-based weekday index of day 1 of the epoch year.
	FirstWeekday int `json:"firstWeekday,omitempty" yaml:"firstWeekday,omitempty"`
}

// TimeDef configures the calendar's time subdivisions. All values must be
// positive; seconds-per-day is their product.
type TimeDef struct {
	HoursInDay      int `json:"hoursInDay" yaml:"hoursInDay"`
	MinutesInHour   int `json:"minutesInHour" yaml:"minutesInHour"`
	SecondsInMinute int `json:"secondsInMinute" yaml:"secondsInMinute"`
}

// WorldTimeDef configures how raw world-time values are interpreted.
type WorldTimeDef struct {
	Interpretation Interpretation `json:"interpretation,omitempty" yaml:"interpretation,omitempty"`
}

// Definition is the complete, human-authored description of one calendar.
//
// A Definition is a plain value: it is validated once at load time and
// never mutated afterward. Switching calendars is a whole-object
// replacement, never an edit in place.
type Definition struct {
	Name        string           `json:"name" yaml:"name"`
	Description string           `json:"description,omitempty" yaml:"description,omitempty"`
	Months      []MonthDef       `json:"months" yaml:"months"`
	Weekdays    []WeekdayDef     `json:"weekdays" yaml:"weekdays"`
	LeapYear    LeapYearDef      `json:"leapYear" yaml:"leapYear"`
	Intercalary []IntercalaryDef `json:"intercalary,omitempty" yaml:"intercalary,omitempty"`
	Year        YearDef          `json:"year" yaml:"year"`
	Time        TimeDef          `json:"time" yaml:"time"`
	WorldTime   WorldTimeDef     `json:"worldTime,omitempty" yaml:"worldTime,omitempty"`
}

// ParseDefinition decodes a JSON definition document, applies defaults,
// and validates it.
func ParseDefinition(data []byte) (*Definition, error) {
	def := new(Definition)
	if err := json.Unmarshal(data, def); err != nil {
		return nil, &DefinitionError{Name: def.Name, Err: fmt.Errorf("parse definition: %w", err)}
	}
	def.Normalize()
	if err := def.Validate(); err != nil {
		return nil, err
	}
	return def, nil
}

// Normalize fills in the documented defaults for optional fields so that
// sparse hand-written definitions behave correctly. It never substitutes
// values for required fields; those are caught by Validate.
func (d *Definition) Normalize() {
	if d.WorldTime.Interpretation == "" {
		d.WorldTime.Interpretation = EpochBased
	}
	if d.LeapYear.Rule == "" {
		d.LeapYear.Rule = LeapNone
	}
	if d.LeapYear.Rule == LeapGregorian && d.LeapYear.ExtraDays == 0 {
		d.LeapYear.ExtraDays = 1
	}
	for i := range d.Intercalary {
		if d.Intercalary[i].Days == 0 {
			d.Intercalary[i].Days = 1
		}
	}
}

// Validate checks the definition for structural errors. It returns a
// *DefinitionError wrapping every problem found, or nil if the definition
// is usable. Invalid definitions must be rejected, not repaired.
func (d *Definition) Validate() error {
	var errs []error

	if len(d.Months) == 0 {
		errs = append(errs, errors.New("calendar has no months"))
	}
	monthNames := make(map[string]bool, len(d.Months))
	for i, m := range d.Months {
		if m.Name == "" {
			errs = append(errs, fmt.Errorf("month %d has no name", i+1))
			continue
		}
		if m.Days < 1 {
			errs = append(errs, fmt.Errorf("month %q has non-positive day count %d", m.Name, m.Days))
		}
		if monthNames[m.Name] {
			errs = append(errs, fmt.Errorf("duplicate month name %q", m.Name))
		}
		monthNames[m.Name] = true
	}

	if len(d.Weekdays) == 0 {
		errs = append(errs, errors.New("calendar has no weekdays"))
	}
	for i, w := range d.Weekdays {
		if w.Name == "" {
			errs = append(errs, fmt.Errorf("weekday %d has no name", i+1))
		}
	}
	if d.Year.FirstWeekday < 0 || (len(d.Weekdays) > 0 && d.Year.FirstWeekday >= len(d.Weekdays)) {
		errs = append(errs, fmt.Errorf("firstWeekday %d outside weekday cycle of length %d", d.Year.FirstWeekday, len(d.Weekdays)))
	}

	switch d.LeapYear.Rule {
	case LeapNone:
		// No further configuration.
	case LeapGregorian:
		if d.LeapYear.Month == "" {
			errs = append(errs, errors.New("gregorian leap rule requires a leap month"))
		} else if !monthNames[d.LeapYear.Month] {
			errs = append(errs, fmt.Errorf("leap month %q does not exist", d.LeapYear.Month))
		}
	case LeapCustom:
		if d.LeapYear.Interval < 1 {
			errs = append(errs, fmt.Errorf("custom leap rule requires a positive interval, got %d", d.LeapYear.Interval))
		}
		if d.LeapYear.ExtraDays < 0 {
			errs = append(errs, fmt.Errorf("custom leap rule has negative extraDays %d", d.LeapYear.ExtraDays))
		}
		// extraDays 0 is legal: the leap year then only gates
		// leap-year-only intercalary days.
		if d.LeapYear.ExtraDays > 0 {
			if d.LeapYear.Month == "" {
				errs = append(errs, errors.New("custom leap rule with extraDays requires a leap month"))
			} else if !monthNames[d.LeapYear.Month] {
				errs = append(errs, fmt.Errorf("leap month %q does not exist", d.LeapYear.Month))
			}
		}
	default:
		errs = append(errs, fmt.Errorf("unknown leap-year rule %q", d.LeapYear.Rule))
	}

	for _, ic := range d.Intercalary {
		if ic.Name == "" {
			errs = append(errs, errors.New("intercalary day has no name"))
		}
		if !monthNames[ic.After] {
			errs = append(errs, fmt.Errorf("intercalary day %q anchors to non-existent month %q", ic.Name, ic.After))
		}
		if ic.Days < 1 {
			errs = append(errs, fmt.Errorf("intercalary day %q has non-positive day count %d", ic.Name, ic.Days))
		}
	}

	if d.Time.HoursInDay < 1 || d.Time.MinutesInHour < 1 || d.Time.SecondsInMinute < 1 {
		errs = append(errs, fmt.Errorf("time subdivisions must be positive, got %d/%d/%d",
			d.Time.HoursInDay, d.Time.MinutesInHour, d.Time.SecondsInMinute))
	}

	switch d.WorldTime.Interpretation {
	case EpochBased, RealTimeBased:
	default:
		errs = append(errs, fmt.Errorf("unknown world-time interpretation %q", d.WorldTime.Interpretation))
	}

	if len(errs) > 0 {
		return &DefinitionError{Name: d.Name, Err: errors.Join(errs...)}
	}
	return nil
}

// SecondsPerDay returns the product of the time subdivisions.
func (d *Definition) SecondsPerDay() int64 {
	return int64(d.Time.HoursInDay) * int64(d.Time.MinutesInHour) * int64(d.Time.SecondsInMinute)
}
