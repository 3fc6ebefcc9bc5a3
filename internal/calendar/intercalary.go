package calendar

// IntercalaryDay is one expanded intercalary day: a single calendar day
// outside the month sequence. Multi-day entries expand into consecutive
// IntercalaryDay values sharing a name, distinguished by Day (1..Of).
type IntercalaryDay struct {
	Name              string
	AfterMonth        int // 1-based index of the anchor month
	Day               int // 1-based position within the period
	Of                int // period length
	CountsForWeekdays bool
}

// IntercalaryDaysForYear returns every intercalary day occurring in the
// year, in calendar order: anchor month order first, declaration order
// for entries sharing an anchor. Leap-year-only entries are omitted in
// non-leap years.
func (c *Calendar) IntercalaryDaysForYear(year int) []IntercalaryDay {
	var days []IntercalaryDay
	for m := 1; m <= len(c.def.Months); m++ {
		days = append(days, c.IntercalaryDaysAfterMonth(year, m)...)
	}
	return days
}

// IntercalaryDaysAfterMonth returns the expanded intercalary days
// anchored to the given 1-based month in the given year.
func (c *Calendar) IntercalaryDaysAfterMonth(year, month int) []IntercalaryDay {
	if month < 1 || month > len(c.icByMonth) {
		return nil
	}
	leap := c.IsLeapYear(year)
	var days []IntercalaryDay
	for _, ic := range c.icByMonth[month-1] {
		if ic.LeapYearOnly && !leap {
			continue
		}
		for d := 1; d <= ic.Days; d++ {
			days = append(days, IntercalaryDay{
				Name:              ic.Name,
				AfterMonth:        month,
				Day:               d,
				Of:                ic.Days,
				CountsForWeekdays: ic.CountsForWeekdays,
			})
		}
	}
	return days
}

// findIntercalary locates a named intercalary period in a year and
// returns its anchor month, period length, and counting flag. ok is
// false if the name is unknown or the period does not occur that year.
func (c *Calendar) findIntercalary(year int, name string) (anchor, length int, counts, ok bool) {
	leap := c.IsLeapYear(year)
	for _, ic := range c.def.Intercalary {
		if ic.Name != name {
			continue
		}
		if ic.LeapYearOnly && !leap {
			return 0, 0, false, false
		}
		return c.monthIndex[ic.After], ic.Days, ic.CountsForWeekdays, true
	}
	return 0, 0, false, false
}
