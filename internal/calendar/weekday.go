package calendar

// WeekdayOf returns the 0-based weekday index for a day inside a month.
// The weekday is derived from the count of weekday-counting days between
// the epoch and the target date, offset by the calendar's first weekday;
// non-counting intercalary days in between do not shift it. That is what
// keeps an intercalary festival from pushing every later weekday off by
// one.
func (c *Calendar) WeekdayOf(year, month, day int) (int, error) {
	return c.WeekdayOfDate(Date{Year: year, Month: month, Day: day})
}

// WeekdayOfDate is WeekdayOf for any date, including intercalary days.
// A non-counting intercalary day reports NoWeekday: standing on such a
// day, there is no current weekday.
func (c *Calendar) WeekdayOfDate(d Date) (int, error) {
	pos, err := c.locate(d)
	if err != nil {
		return 0, err
	}
	return c.weekdayAt(d.Year, pos)
}

// weekdayAt derives the weekday for a located day.
func (c *Calendar) weekdayAt(year int, pos yearPosition) (int, error) {
	if !pos.counts {
		return NoWeekday, nil
	}
	base, err := c.countingFromEpoch(year)
	if err != nil {
		return 0, err
	}
	w := len(c.def.Weekdays)
	return imod(c.def.Year.FirstWeekday+int((base+int64(pos.countingBefore))%int64(w)), w), nil
}
