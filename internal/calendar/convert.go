package calendar

import "strconv"

// yearPosition is a day's location within one calendar year.
type yearPosition struct {
	dayIndex       int  // 0-based day offset from day 1 of the year
	countingBefore int  // weekday-counting days of the year before this day
	counts         bool // whether this day itself advances the weekday cycle
}

// DateAt converts a world-time value into a calendar date. The walk
// starts at the world-time anchor year; for values far from the anchor,
// prefer DateAtNear with a hint close to the expected year.
func (c *Calendar) DateAt(worldTime int64) (Date, error) {
	return c.DateAtNear(worldTime, c.anchorYear())
}

// DateAtNear converts a world-time value into a calendar date, starting
// the year walk at hintYear. A hint near the target year keeps the walk
// short; a wrong hint changes only the cost, never the result.
func (c *Calendar) DateAtNear(worldTime int64, hintYear int) (Date, error) {
	spd := c.SecondsPerDay()
	days := floorDiv(worldTime, spd)
	secs := worldTime - days*spd

	offset, err := c.daysFromAnchor(hintYear)
	if err != nil {
		return Date{}, &OverflowError{WorldTime: worldTime, Budget: c.walkBudget}
	}
	days -= offset

	year := hintYear
	steps := 0
	for days < 0 {
		year--
		days += int64(c.totals(year).days)
		if steps++; steps > c.walkBudget {
			return Date{}, &OverflowError{WorldTime: worldTime, Budget: c.walkBudget}
		}
	}
	for days >= int64(c.totals(year).days) {
		days -= int64(c.totals(year).days)
		year++
		if steps++; steps > c.walkBudget {
			return Date{}, &OverflowError{WorldTime: worldTime, Budget: c.walkBudget}
		}
	}

	d, pos := c.decompose(year, int(days))
	d.Weekday, err = c.weekdayAt(year, pos)
	if err != nil {
		return Date{}, err
	}

	sim := int64(c.def.Time.SecondsInMinute)
	sph := int64(c.def.Time.MinutesInHour) * sim
	d.Hour = int(secs / sph)
	d.Minute = int(secs % sph / sim)
	d.Second = int(secs % sim)
	return d, nil
}

// WorldTimeOf converts a calendar date back into a world-time value. It
// is the structural inverse of DateAt: round-tripping any legally
// constructible date reproduces it exactly. The date's Weekday field is
// ignored.
func (c *Calendar) WorldTimeOf(d Date) (int64, error) {
	if err := c.validateTimeOfDay(d); err != nil {
		return 0, err
	}
	pos, err := c.locate(d)
	if err != nil {
		return 0, err
	}
	start, err := c.daysFromAnchor(d.Year)
	if err != nil {
		return 0, err
	}
	sim := int64(c.def.Time.SecondsInMinute)
	sph := int64(c.def.Time.MinutesInHour) * sim
	days := start + int64(pos.dayIndex)
	return days*c.SecondsPerDay() + int64(d.Hour)*sph + int64(d.Minute)*sim + int64(d.Second), nil
}

// decompose turns a 0-based day index within a year into a date, walking
// months interleaved with their anchored intercalary days in calendar
// order. idx must be within the year's total day count.
func (c *Calendar) decompose(year, idx int) (Date, yearPosition) {
	rem := idx
	counting := 0
	for m := 1; m <= len(c.def.Months); m++ {
		ml := c.MonthLength(year, m)
		if rem < ml {
			return Date{Year: year, Month: m, Day: rem + 1},
				yearPosition{dayIndex: idx, countingBefore: counting + rem, counts: true}
		}
		rem -= ml
		counting += ml

		ics := c.IntercalaryDaysAfterMonth(year, m)
		if rem < len(ics) {
			for _, ic := range ics[:rem] {
				if ic.CountsForWeekdays {
					counting++
				}
			}
			ic := ics[rem]
			return Date{Year: year, Day: ic.Day, Intercalary: ic.Name},
				yearPosition{dayIndex: idx, countingBefore: counting, counts: ic.CountsForWeekdays}
		}
		for _, ic := range ics {
			if ic.CountsForWeekdays {
				counting++
			}
		}
		rem -= len(ics)
	}
	panic("calendar: day index outside year")
}

// locate validates a date's year-level fields and finds its position
// within its year. It is the inverse of decompose.
func (c *Calendar) locate(d Date) (yearPosition, error) {
	if d.IsIntercalary() {
		return c.locateIntercalary(d)
	}

	if d.Month < 1 || d.Month > len(c.def.Months) {
		return yearPosition{}, &DateOutOfRangeError{Field: "month", Value: d.Month, Min: 1, Max: len(c.def.Months)}
	}
	if ml := c.MonthLength(d.Year, d.Month); d.Day < 1 || d.Day > ml {
		return yearPosition{}, &DateOutOfRangeError{Field: "day", Value: d.Day, Min: 1, Max: ml}
	}

	idx, counting := 0, 0
	for m := 1; m < d.Month; m++ {
		ml := c.MonthLength(d.Year, m)
		idx += ml
		counting += ml
		ics := c.IntercalaryDaysAfterMonth(d.Year, m)
		idx += len(ics)
		for _, ic := range ics {
			if ic.CountsForWeekdays {
				counting++
			}
		}
	}
	return yearPosition{dayIndex: idx + d.Day - 1, countingBefore: counting + d.Day - 1, counts: true}, nil
}

func (c *Calendar) locateIntercalary(d Date) (yearPosition, error) {
	anchor, length, counts, ok := c.findIntercalary(d.Year, d.Intercalary)
	if !ok {
		return yearPosition{}, &DateOutOfRangeError{Field: "intercalary " + strconv.Quote(d.Intercalary), Value: d.Day, Min: 1, Max: 0}
	}
	if d.Day < 1 || d.Day > length {
		return yearPosition{}, &DateOutOfRangeError{Field: "day", Value: d.Day, Min: 1, Max: length}
	}

	idx, counting := 0, 0
	for m := 1; m <= anchor; m++ {
		ml := c.MonthLength(d.Year, m)
		idx += ml
		counting += ml
		for _, ic := range c.IntercalaryDaysAfterMonth(d.Year, m) {
			if m == anchor && ic.Name == d.Intercalary && ic.Day == d.Day {
				return yearPosition{dayIndex: idx, countingBefore: counting, counts: counts}, nil
			}
			idx++
			if ic.CountsForWeekdays {
				counting++
			}
		}
	}
	panic("calendar: intercalary day not reachable in its own year")
}

func (c *Calendar) validateTimeOfDay(d Date) error {
	if d.Hour < 0 || d.Hour >= c.def.Time.HoursInDay {
		return &DateOutOfRangeError{Field: "hour", Value: d.Hour, Min: 0, Max: c.def.Time.HoursInDay - 1}
	}
	if d.Minute < 0 || d.Minute >= c.def.Time.MinutesInHour {
		return &DateOutOfRangeError{Field: "minute", Value: d.Minute, Min: 0, Max: c.def.Time.MinutesInHour - 1}
	}
	if d.Second < 0 || d.Second >= c.def.Time.SecondsInMinute {
		return &DateOutOfRangeError{Field: "second", Value: d.Second, Min: 0, Max: c.def.Time.SecondsInMinute - 1}
	}
	return nil
}
