package calendar

import (
	"fmt"
	"slices"
	"sync"
)

// DefaultWalkBudget is the default limit on how many years a single
// conversion may walk away from the world-time anchor before failing
// with an *OverflowError.
const DefaultWalkBudget = 10000

// Calendar is a compiled calendar definition: the definition itself plus
// the lookup tables and caches derived from it.
//
// A Calendar is immutable after New returns (caches are internally
// synchronized), so it is safe for concurrent use. All cached data is
// derived solely from the definition; replacing a calendar means building
// a new Calendar, never mutating an existing one.
type Calendar struct {
	def        Definition
	monthIndex map[string]int     // month name -> 1-based index
	leapMonth  int                // 1-based index of the leap month, 0 if none
	icByMonth  [][]IntercalaryDef // entries anchored after month i+1, declaration order
	walkBudget int

	mu         sync.Mutex
	totalsMemo map[int]yearTotals
	startMemo  map[int]int64 // world-days from the anchor year's day 1 to this year's day 1
	countMemo  map[int]int64 // weekday-counting days from the epoch year's day 1 to this year's day 1
}

// yearTotals caches the expensive per-year sums.
type yearTotals struct {
	days     int // month days + leap days + intercalary days
	counting int // days that advance the weekday cycle
}

// New compiles a definition into a Calendar. The definition is normalized,
// validated, and copied; the caller's value is not retained.
func New(def *Definition) (*Calendar, error) {
	d := *def
	d.Months = slices.Clone(def.Months)
	d.Weekdays = slices.Clone(def.Weekdays)
	d.Intercalary = slices.Clone(def.Intercalary)
	d.Normalize()
	if err := d.Validate(); err != nil {
		return nil, err
	}

	c := &Calendar{
		def:        d,
		monthIndex: make(map[string]int, len(d.Months)),
		icByMonth:  make([][]IntercalaryDef, len(d.Months)),
		walkBudget: DefaultWalkBudget,
		totalsMemo: make(map[int]yearTotals),
		startMemo:  make(map[int]int64),
		countMemo:  make(map[int]int64),
	}
	for i, m := range d.Months {
		c.monthIndex[m.Name] = i + 1
	}
	if d.LeapYear.Rule != LeapNone {
		c.leapMonth = c.monthIndex[d.LeapYear.Month]
	}
	for _, ic := range d.Intercalary {
		anchor := c.monthIndex[ic.After]
		c.icByMonth[anchor-1] = append(c.icByMonth[anchor-1], ic)
	}
	return c, nil
}

// Definition returns a copy of the calendar's definition.
func (c *Calendar) Definition() Definition {
	d := c.def
	d.Months = slices.Clone(c.def.Months)
	d.Weekdays = slices.Clone(c.def.Weekdays)
	d.Intercalary = slices.Clone(c.def.Intercalary)
	return d
}

// Name returns the calendar's display name.
func (c *Calendar) Name() string {
	return c.def.Name
}

// SecondsPerDay returns the length of one day in world-time seconds.
func (c *Calendar) SecondsPerDay() int64 {
	return c.def.SecondsPerDay()
}

// WeekdayCount returns the length of the weekday cycle.
func (c *Calendar) WeekdayCount() int {
	return len(c.def.Weekdays)
}

// MonthCount returns the number of months in a year.
func (c *Calendar) MonthCount() int {
	return len(c.def.Months)
}

// MonthName returns the name of the 1-based month index, or "" if the
// index is out of range.
func (c *Calendar) MonthName(month int) string {
	if month < 1 || month > len(c.def.Months) {
		return ""
	}
	return c.def.Months[month-1].Name
}

// WeekdayName returns the name of the 0-based weekday index, or "" for
// NoWeekday and out-of-range indexes.
func (c *Calendar) WeekdayName(weekday int) string {
	if weekday < 0 || weekday >= len(c.def.Weekdays) {
		return ""
	}
	return c.def.Weekdays[weekday].Name
}

// SetWalkBudget overrides the conversion iteration budget. It must be
// called before the calendar is shared between goroutines.
func (c *Calendar) SetWalkBudget(years int) {
	if years > 0 {
		c.walkBudget = years
	}
}

// anchorYear is the year whose day 1 corresponds to world-time zero.
func (c *Calendar) anchorYear() int {
	if c.def.WorldTime.Interpretation == RealTimeBased {
		return c.def.Year.CurrentYear
	}
	return c.def.Year.Epoch
}

// totals returns the memoized day totals for a year.
func (c *Calendar) totals(year int) yearTotals {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.totalsLocked(year)
}

func (c *Calendar) totalsLocked(year int) yearTotals {
	if t, ok := c.totalsMemo[year]; ok {
		return t
	}
	t := yearTotals{days: c.YearLength(year)}
	t.counting = t.days
	for _, ic := range c.def.Intercalary {
		if ic.LeapYearOnly && !c.IsLeapYear(year) {
			continue
		}
		t.days += ic.Days
		if ic.CountsForWeekdays {
			t.counting += ic.Days
		}
	}
	c.totalsMemo[year] = t
	return t
}

// daysFromAnchor returns the world-day offset of day 1 of the given year
// relative to day 1 of the anchor year. Results are memoized; the walk is
// bounded by the calendar's budget.
func (c *Calendar) daysFromAnchor(year int) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if d, ok := c.startMemo[year]; ok {
		return d, nil
	}
	anchor := c.anchorYear()
	if abs(year-anchor) > c.walkBudget {
		return 0, &OverflowError{Budget: c.walkBudget}
	}
	var days int64
	switch {
	case year >= anchor:
		for y := anchor; y < year; y++ {
			days += int64(c.totalsLocked(y).days)
		}
	default:
		for y := year; y < anchor; y++ {
			days -= int64(c.totalsLocked(y).days)
		}
	}
	c.startMemo[year] = days
	return days, nil
}

// countingFromEpoch returns the number of weekday-counting days between
// day 1 of the epoch year and day 1 of the given year (negative for years
// before the epoch).
func (c *Calendar) countingFromEpoch(year int) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if n, ok := c.countMemo[year]; ok {
		return n, nil
	}
	epoch := c.def.Year.Epoch
	if abs(year-epoch) > c.walkBudget {
		return 0, &OverflowError{Budget: c.walkBudget}
	}
	var n int64
	switch {
	case year >= epoch:
		for y := epoch; y < year; y++ {
			n += int64(c.totalsLocked(y).counting)
		}
	default:
		for y := year; y < epoch; y++ {
			n -= int64(c.totalsLocked(y).counting)
		}
	}
	c.countMemo[year] = n
	return n, nil
}

// Format renders a date with the calendar's month and weekday names,
// e.g. "Mirtul 12, 1372 DR 08:30:00" or "Midwinter (2 of 3), 1372".
func (c *Calendar) Format(d Date) string {
	datePart := ""
	if d.IsIntercalary() {
		if of := c.intercalaryLength(d.Year, d.Intercalary); of > 1 {
			datePart = fmt.Sprintf("%s (%d of %d), %d", d.Intercalary, d.Day, of, d.Year)
		} else {
			datePart = fmt.Sprintf("%s, %d", d.Intercalary, d.Year)
		}
	} else {
		datePart = fmt.Sprintf("%s %d, %d", c.MonthName(d.Month), d.Day, d.Year)
	}
	if name := c.WeekdayName(d.Weekday); name != "" {
		datePart = name + ", " + datePart
	}
	return fmt.Sprintf("%s %02d:%02d:%02d", datePart, d.Hour, d.Minute, d.Second)
}

func (c *Calendar) intercalaryLength(year int, name string) int {
	for _, ic := range c.def.Intercalary {
		if ic.Name == name {
			return ic.Days
		}
	}
	return 0
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// floorDiv divides rounding toward negative infinity, so that negative
// world-times land on the correct day.
func floorDiv(a, b int64) int64 {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

// imod is the floored modulo for weekday indexes.
func imod(a, b int) int {
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}
