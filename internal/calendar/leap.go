package calendar

// IsLeapYear reports whether a year is a leap year under the calendar's
// rule. Zero and negative years go through the same modulo arithmetic as
// positive years; calendars with a negative epoch rely on this.
func (c *Calendar) IsLeapYear(year int) bool {
	switch c.def.LeapYear.Rule {
	case LeapGregorian:
		return year%4 == 0 && (year%100 != 0 || year%400 == 0)
	case LeapCustom:
		return year%c.def.LeapYear.Interval == 0
	default:
		return false
	}
}

// LeapDays returns the number of extra days the year gains from the leap
// rule (0 for non-leap years).
func (c *Calendar) LeapDays(year int) int {
	if !c.IsLeapYear(year) {
		return 0
	}
	return c.def.LeapYear.ExtraDays
}

// MonthLength returns the effective length of a month in a given year:
// the configured day count, plus the leap extension if the month is the
// designated leap month and the year is a leap year. Returns 0 for an
// out-of-range month index.
func (c *Calendar) MonthLength(year, month int) int {
	if month < 1 || month > len(c.def.Months) {
		return 0
	}
	days := c.def.Months[month-1].Days
	if month == c.leapMonth {
		days += c.LeapDays(year)
	}
	return days
}

// YearLength returns the total days across all months of a year,
// including leap days. Intercalary days are tracked separately and are
// not part of this total.
func (c *Calendar) YearLength(year int) int {
	total := c.LeapDays(year)
	for _, m := range c.def.Months {
		total += m.Days
	}
	return total
}
