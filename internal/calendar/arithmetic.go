package calendar

// AddDays returns the date n days after d (before, for negative n). It
// goes through world-time and back, so every addition agrees with the
// canonical conversion instead of reimplementing the boundary rules.
func (c *Calendar) AddDays(d Date, n int) (Date, error) {
	t, err := c.WorldTimeOf(d)
	if err != nil {
		return Date{}, err
	}
	return c.DateAtNear(t+int64(n)*c.SecondsPerDay(), d.Year)
}

// AddWeeks returns the date n weekday cycles after d.
func (c *Calendar) AddWeeks(d Date, n int) (Date, error) {
	return c.AddDays(d, n*len(c.def.Weekdays))
}

// AddMonths returns the date n months after d, crossing year boundaries
// as needed. A day past the end of the target month clamps to that
// month's last day; this is the one place the engine clamps rather than
// rejects. An intercalary date is treated as a day of its anchor month.
func (c *Calendar) AddMonths(d Date, n int) (Date, error) {
	month, err := c.effectiveMonth(d)
	if err != nil {
		return Date{}, err
	}
	mc := len(c.def.Months)
	total := int64(d.Year)*int64(mc) + int64(month-1) + int64(n)
	year := int(floorDiv(total, int64(mc)))
	month = imod(int(total%int64(mc)), mc) + 1

	day := d.Day
	if ml := c.MonthLength(year, month); day > ml {
		day = ml
	}
	return c.canonical(Date{Year: year, Month: month, Day: day, Hour: d.Hour, Minute: d.Minute, Second: d.Second})
}

// AddYears returns the date n years after d, clamping the day when the
// target month is shorter (a leap day, for instance). An intercalary
// date is treated as a day of its anchor month.
func (c *Calendar) AddYears(d Date, n int) (Date, error) {
	month, err := c.effectiveMonth(d)
	if err != nil {
		return Date{}, err
	}
	year := d.Year + n
	day := d.Day
	if ml := c.MonthLength(year, month); day > ml {
		day = ml
	}
	return c.canonical(Date{Year: year, Month: month, Day: day, Hour: d.Hour, Minute: d.Minute, Second: d.Second})
}

// effectiveMonth resolves the month that month-based arithmetic uses:
// the date's own month, or the anchor month for an intercalary date.
func (c *Calendar) effectiveMonth(d Date) (int, error) {
	if !d.IsIntercalary() {
		if d.Month < 1 || d.Month > len(c.def.Months) {
			return 0, &DateOutOfRangeError{Field: "month", Value: d.Month, Min: 1, Max: len(c.def.Months)}
		}
		return d.Month, nil
	}
	if _, err := c.locate(d); err != nil {
		return 0, err
	}
	anchor, _, _, _ := c.findIntercalary(d.Year, d.Intercalary)
	return anchor, nil
}

// canonical round-trips a constructed date through world-time so the
// result carries the weekday the converter would produce.
func (c *Calendar) canonical(d Date) (Date, error) {
	t, err := c.WorldTimeOf(d)
	if err != nil {
		return Date{}, err
	}
	return c.DateAtNear(t, d.Year)
}
