package calendar

import (
	"testing"
)

func TestDateAtEpochBased(t *testing.T) {
	c := mustCalendar(t, festivalDef())
	const spd = 24 * 60 * 60

	tests := []struct {
		worldTime int64
		want      Date
	}{
		{0, Date{Year: 1, Month: 1, Day: 1, Weekday: 0}},
		{3*3600 + 4*60 + 5, Date{Year: 1, Month: 1, Day: 1, Weekday: 0, Hour: 3, Minute: 4, Second: 5}},
		{29 * spd, Date{Year: 1, Month: 1, Day: 30, Weekday: 1}},
		{30 * spd, Date{Year: 1, Month: 2, Day: 1, Weekday: 2}},
		{359 * spd, Date{Year: 1, Month: 12, Day: 30, Weekday: 2}},
		{360 * spd, Date{Year: 1, Day: 1, Weekday: NoWeekday, Intercalary: "Midwinter"}},
		{361 * spd, Date{Year: 2, Month: 1, Day: 1, Weekday: 3}},
		// World-day -1 is the last day of year 0, which is Midwinter.
		{-1, Date{Year: 0, Day: 1, Weekday: NoWeekday, Intercalary: "Midwinter", Hour: 23, Minute: 59, Second: 59}},
		// One day earlier is the last month day of year 0. Day 1 of year 1
		// is weekday 0 and the Midwinter between them does not count, so
		// this day is one counting step before it: weekday 6.
		{-spd - 1, Date{Year: 0, Month: 12, Day: 30, Weekday: 6, Hour: 23, Minute: 59, Second: 59}},
	}
	for _, test := range tests {
		got, err := c.DateAt(test.worldTime)
		if err != nil {
			t.Errorf("DateAt(%d) failed: %v", test.worldTime, err)
			continue
		}
		if got != test.want {
			t.Errorf("DateAt(%d) = %+v, want %+v", test.worldTime, got, test.want)
		}
	}
}

func TestDateAtRealTimeBased(t *testing.T) {
	def, err := Preset("golarion")
	if err != nil {
		t.Fatalf("Preset(golarion) failed: %v", err)
	}
	c := mustCalendar(t, def)

	got, err := c.DateAt(0)
	if err != nil {
		t.Fatalf("DateAt(0) failed: %v", err)
	}
	if got.Year != 4725 || got.Month != 1 || got.Day != 1 {
		t.Errorf("DateAt(0) = %+v, want year 4725, month 1, day 1", got)
	}
	if got.Year == c.def.Year.Epoch {
		t.Errorf("DateAt(0) landed on the epoch year %d; real-time anchoring ignored", got.Year)
	}
}

func TestWorldTimeOfInvertsDateAt(t *testing.T) {
	defs := []*Definition{simpleDef(), festivalDef()}

	leaping := simpleDef()
	leaping.Name = "Leaping"
	leaping.LeapYear = LeapYearDef{Rule: LeapCustom, Interval: 4, Month: "Sixth Month", ExtraDays: 1}
	leaping.Intercalary = []IntercalaryDef{
		{Name: "Summer Festival", After: "Sixth Month", Days: 7, CountsForWeekdays: true},
		{Name: "Leap Feast", After: "Twelfth Month", LeapYearOnly: true},
	}
	defs = append(defs, leaping)

	for _, def := range defs {
		c := mustCalendar(t, def)
		for worldTime := int64(-400_000_000); worldTime <= 400_000_000; worldTime += 1_234_567 {
			d, err := c.DateAt(worldTime)
			if err != nil {
				t.Fatalf("%s: DateAt(%d) failed: %v", def.Name, worldTime, err)
			}
			back, err := c.WorldTimeOf(d)
			if err != nil {
				t.Fatalf("%s: WorldTimeOf(%+v) failed: %v", def.Name, d, err)
			}
			if back != worldTime {
				t.Fatalf("%s: WorldTimeOf(DateAt(%d)) = %d; round trip broken at %+v",
					def.Name, worldTime, back, d)
			}
		}
	}
}

func TestDateAtMonotonic(t *testing.T) {
	c := mustCalendar(t, festivalDef())

	var prev Date
	var prevIndex int
	first := true
	for worldTime := int64(-40_000_000); worldTime <= 40_000_000; worldTime += 86_399 {
		d, err := c.DateAt(worldTime)
		if err != nil {
			t.Fatalf("DateAt(%d) failed: %v", worldTime, err)
		}
		pos, err := c.locate(d)
		if err != nil {
			t.Fatalf("locate(%+v) failed: %v", d, err)
		}
		if !first {
			if d.Year < prev.Year {
				t.Fatalf("DateAt went backward in years: %+v after %+v", d, prev)
			}
			if d.Year == prev.Year && pos.dayIndex < prevIndex {
				t.Fatalf("DateAt went backward in days: %+v after %+v", d, prev)
			}
		}
		prev, prevIndex, first = d, pos.dayIndex, false
	}
}

func TestDateAtNearAgreesWithDateAt(t *testing.T) {
	c := mustCalendar(t, festivalDef())

	for _, worldTime := range []int64{0, 1, -1, 360 * 86400, 1_000_000_000, -1_000_000_000} {
		want, err := c.DateAt(worldTime)
		if err != nil {
			t.Fatalf("DateAt(%d) failed: %v", worldTime, err)
		}
		for _, hint := range []int{1, 40, -40, want.Year} {
			got, err := c.DateAtNear(worldTime, hint)
			if err != nil {
				t.Errorf("DateAtNear(%d, %d) failed: %v", worldTime, hint, err)
				continue
			}
			if got != want {
				t.Errorf("DateAtNear(%d, %d) = %+v, want %+v", worldTime, hint, got, want)
			}
		}
	}
}

func TestConversionOverflow(t *testing.T) {
	c := mustCalendar(t, simpleDef())
	c.SetWalkBudget(10)

	farFuture := int64(20) * 360 * 86400
	if _, err := c.DateAt(farFuture); !IsOverflow(err) {
		t.Errorf("DateAt(%d) = %v, want *OverflowError", farFuture, err)
	}
	if _, err := c.DateAtNear(0, 100); !IsOverflow(err) {
		t.Errorf("DateAtNear(0, 100) = %v, want *OverflowError", err)
	}
	if _, err := c.WorldTimeOf(Date{Year: 100, Month: 1, Day: 1}); !IsOverflow(err) {
		t.Errorf("WorldTimeOf(year 100) = %v, want *OverflowError", err)
	}

	// The budget bounds distance, not direction or sign.
	if _, err := c.DateAt(-farFuture); !IsOverflow(err) {
		t.Errorf("DateAt(%d) = %v, want *OverflowError", -farFuture, err)
	}
}

func TestWorldTimeOfRejectsOutOfRange(t *testing.T) {
	def := festivalDef()
	def.LeapYear = LeapYearDef{Rule: LeapCustom, Interval: 4}
	def.Intercalary = append(def.Intercalary, IntercalaryDef{
		Name: "Shieldmeet", After: "Twelfth Month", LeapYearOnly: true,
	})
	c := mustCalendar(t, def)

	tests := []struct {
		name string
		date Date
	}{
		{"month too large", Date{Year: 1, Month: 13, Day: 1}},
		{"month zero without intercalary", Date{Year: 1, Day: 1}},
		{"day too large", Date{Year: 1, Month: 1, Day: 31}},
		{"day zero", Date{Year: 1, Month: 1, Day: 0}},
		{"hour past end of day", Date{Year: 1, Month: 1, Day: 1, Hour: 24}},
		{"negative minute", Date{Year: 1, Month: 1, Day: 1, Minute: -1}},
		{"second past end of minute", Date{Year: 1, Month: 1, Day: 1, Second: 60}},
		{"intercalary day past period", Date{Year: 1, Day: 2, Intercalary: "Midwinter"}},
		{"unknown intercalary name", Date{Year: 1, Day: 1, Intercalary: "Starfall"}},
		{"leap-only intercalary in common year", Date{Year: 5, Day: 1, Intercalary: "Shieldmeet"}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if _, err := c.WorldTimeOf(test.date); !IsDateOutOfRange(err) {
				t.Errorf("WorldTimeOf(%+v) = %v, want *DateOutOfRangeError", test.date, err)
			}
		})
	}

	// The same leap-only date is valid in a leap year.
	if _, err := c.WorldTimeOf(Date{Year: 4, Day: 1, Intercalary: "Shieldmeet"}); err != nil {
		t.Errorf("WorldTimeOf(Shieldmeet in leap year) failed: %v", err)
	}
}
