package calendar

import (
	"testing"
)

// simpleDef returns a 12x30-day calendar with a 7-day week and no leap
// years or intercalary days.
func simpleDef() *Definition {
	months := make([]MonthDef, 12)
	for i := range months {
		months[i] = MonthDef{Name: monthName(i + 1), Days: 30}
	}
	return &Definition{
		Name:   "Simple",
		Months: months,
		Weekdays: []WeekdayDef{
			{Name: "Sunday"}, {Name: "Monday"}, {Name: "Tuesday"}, {Name: "Wednesday"},
			{Name: "Thursday"}, {Name: "Friday"}, {Name: "Saturday"},
		},
		LeapYear: LeapYearDef{Rule: LeapNone},
		Year:     YearDef{Epoch: 1, CurrentYear: 1},
		Time:     TimeDef{HoursInDay: 24, MinutesInHour: 60, SecondsInMinute: 60},
	}
}

func monthName(i int) string {
	names := []string{
		"First", "Second", "Third", "Fourth", "Fifth", "Sixth",
		"Seventh", "Eighth", "Ninth", "Tenth", "Eleventh", "Twelfth",
	}
	return names[i-1] + " Month"
}

// festivalDef is simpleDef plus a single one-day Midwinter festival after
// the last month that does not count for weekdays.
func festivalDef() *Definition {
	def := simpleDef()
	def.Name = "Festival"
	def.Intercalary = []IntercalaryDef{
		{Name: "Midwinter", After: "Twelfth Month", CountsForWeekdays: false},
	}
	return def
}

func mustCalendar(t *testing.T, def *Definition) *Calendar {
	t.Helper()
	c, err := New(def)
	if err != nil {
		t.Fatalf("New(%q) failed: %v", def.Name, err)
	}
	return c
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Definition)
		valid  bool
	}{
		{
			name:   "baseline",
			mutate: func(d *Definition) {},
			valid:  true,
		},
		{
			name:   "no months",
			mutate: func(d *Definition) { d.Months = nil },
		},
		{
			name:   "zero day month",
			mutate: func(d *Definition) { d.Months[3].Days = 0 },
		},
		{
			name:   "negative day month",
			mutate: func(d *Definition) { d.Months[3].Days = -5 },
		},
		{
			name:   "duplicate month name",
			mutate: func(d *Definition) { d.Months[1].Name = d.Months[0].Name },
		},
		{
			name:   "no weekdays",
			mutate: func(d *Definition) { d.Weekdays = nil },
		},
		{
			name:   "firstWeekday outside cycle",
			mutate: func(d *Definition) { d.Year.FirstWeekday = 7 },
		},
		{
			name:   "unknown leap rule",
			mutate: func(d *Definition) { d.LeapYear.Rule = "julian" },
		},
		{
			name: "gregorian without leap month",
			mutate: func(d *Definition) {
				d.LeapYear = LeapYearDef{Rule: LeapGregorian, ExtraDays: 1}
			},
		},
		{
			name: "custom leap month missing",
			mutate: func(d *Definition) {
				d.LeapYear = LeapYearDef{Rule: LeapCustom, Interval: 4, Month: "Thermidor", ExtraDays: 1}
			},
		},
		{
			name: "custom leap without interval",
			mutate: func(d *Definition) {
				d.LeapYear = LeapYearDef{Rule: LeapCustom, Month: "Sixth Month", ExtraDays: 1}
			},
		},
		{
			name: "custom leap zero extra days is legal",
			mutate: func(d *Definition) {
				d.LeapYear = LeapYearDef{Rule: LeapCustom, Interval: 4}
			},
			valid: true,
		},
		{
			name: "intercalary anchored to missing month",
			mutate: func(d *Definition) {
				d.Intercalary = []IntercalaryDef{{Name: "Lost Day", After: "Thermidor", Days: 1}}
			},
		},
		{
			name: "intercalary without name",
			mutate: func(d *Definition) {
				d.Intercalary = []IntercalaryDef{{After: "Sixth Month", Days: 1}}
			},
		},
		{
			name:   "zero hours in day",
			mutate: func(d *Definition) { d.Time.HoursInDay = 0 },
		},
		{
			name:   "unknown interpretation",
			mutate: func(d *Definition) { d.WorldTime.Interpretation = "sidereal" },
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			def := simpleDef()
			def.Normalize()
			test.mutate(def)
			err := def.Validate()
			if test.valid && err != nil {
				t.Errorf("Validate() = %v; want nil", err)
			}
			if !test.valid {
				if err == nil {
					t.Fatal("Validate() = nil; want error")
				}
				if !IsDefinitionError(err) {
					t.Errorf("Validate() = %v; want *DefinitionError", err)
				}
			}
		})
	}
}

func TestNormalizeDefaults(t *testing.T) {
	def := simpleDef()
	def.LeapYear.Rule = ""
	def.Intercalary = []IntercalaryDef{{Name: "Festival", After: "Sixth Month"}}
	def.Normalize()

	if def.WorldTime.Interpretation != EpochBased {
		t.Errorf("Interpretation = %q, want %q", def.WorldTime.Interpretation, EpochBased)
	}
	if def.LeapYear.Rule != LeapNone {
		t.Errorf("LeapYear.Rule = %q, want %q", def.LeapYear.Rule, LeapNone)
	}
	if def.Intercalary[0].Days != 1 {
		t.Errorf("Intercalary[0].Days = %d, want 1", def.Intercalary[0].Days)
	}
}

func TestParseDefinition(t *testing.T) {
	doc := []byte(`{
		"name": "Twin Moons",
		"months": [
			{"name": "Rise", "days": 40},
			{"name": "Fall", "days": 41}
		],
		"weekdays": [{"name": "Solday"}, {"name": "Moonday"}, {"name": "Stillday"}],
		"leapYear": {"rule": "custom", "interval": 5, "month": "Fall", "extraDays": 2},
		"intercalary": [
			{"name": "The Turning", "after": "Rise", "days": 3, "countsForWeekdays": true}
		],
		"year": {"epoch": -100, "currentYear": 212},
		"time": {"hoursInDay": 20, "minutesInHour": 50, "secondsInMinute": 50}
	}`)

	def, err := ParseDefinition(doc)
	if err != nil {
		t.Fatalf("ParseDefinition failed: %v", err)
	}
	if def.Name != "Twin Moons" {
		t.Errorf("Name = %q, want %q", def.Name, "Twin Moons")
	}
	if got := def.SecondsPerDay(); got != 20*50*50 {
		t.Errorf("SecondsPerDay() = %d, want %d", got, 20*50*50)
	}
	if def.WorldTime.Interpretation != EpochBased {
		t.Errorf("Interpretation = %q, want default %q", def.WorldTime.Interpretation, EpochBased)
	}

	if _, err := ParseDefinition([]byte(`{"months": []`)); !IsDefinitionError(err) {
		t.Errorf("ParseDefinition(truncated) = %v; want *DefinitionError", err)
	}
}
