package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/tabletopkit/almanac/internal/calendar"
)

// This tool walks every day of one calendar year through the conversion
// engine and prints a year sheet: each month's days with their weekdays,
// plus intercalary periods in sequence. Useful for eyeballing a new
// definition before importing it.

func main() {
	preset := flag.String("preset", "", "Bundled preset calendar to use")
	file := flag.String("file", "", "Path to a calendar definition (JSON or YAML)")
	year := flag.Int("year", 1, "Year to generate the sheet for")
	flag.Parse()

	cal, err := loadCalendar(*preset, *file)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}

	if err := printYearSheet(cal, *year); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func loadCalendar(preset, file string) (*calendar.Calendar, error) {
	switch {
	case preset != "" && file != "":
		return nil, fmt.Errorf("-preset and -file are mutually exclusive")
	case preset != "":
		def, err := calendar.Preset(preset)
		if err != nil {
			return nil, err
		}
		return calendar.New(def)
	case file != "":
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, err
		}
		ext := strings.ToLower(filepath.Ext(file))
		if ext == ".yaml" || ext == ".yml" {
			def := new(calendar.Definition)
			if err := yaml.Unmarshal(data, def); err != nil {
				return nil, fmt.Errorf("parse %s: %w", file, err)
			}
			def.Normalize()
			if err := def.Validate(); err != nil {
				return nil, err
			}
			return calendar.New(def)
		}
		def, err := calendar.ParseDefinition(data)
		if err != nil {
			return nil, err
		}
		return calendar.New(def)
	default:
		return nil, fmt.Errorf("one of -preset or -file is required")
	}
}

func printYearSheet(cal *calendar.Calendar, year int) error {
	leap := ""
	if cal.IsLeapYear(year) {
		leap = " (leap year)"
	}
	fmt.Printf("=== %s — Year %d%s ===\n", cal.Name(), year, leap)
	fmt.Printf("Days in year: %d\n\n", cal.YearLength(year))

	start, err := cal.WorldTimeOf(calendar.Date{Year: year, Month: 1, Day: 1})
	if err != nil {
		return err
	}

	spd := cal.SecondsPerDay()
	length := cal.YearLength(year)

	// Section header changes as the walk crosses month and intercalary
	// boundaries.
	section := ""
	for i := 0; i < length; i++ {
		d, err := cal.DateAtNear(start+int64(i)*spd, year)
		if err != nil {
			return err
		}

		var header string
		if d.IsIntercalary() {
			header = d.Intercalary
		} else {
			header = cal.MonthName(d.Month)
		}
		if header != section {
			if section != "" {
				fmt.Println()
			}
			fmt.Printf("%s\n", header)
			section = header
		}

		weekday := "-"
		if d.Weekday != calendar.NoWeekday {
			weekday = cal.WeekdayName(d.Weekday)
		}
		fmt.Printf("  %3d  %s\n", d.Day, weekday)
	}

	fmt.Println()
	fmt.Println("Intercalary periods this year:")
	periods := cal.IntercalaryDaysForYear(year)
	if len(periods) == 0 {
		fmt.Println("  (none)")
		return nil
	}
	for _, p := range periods {
		if p.Day != 1 {
			continue
		}
		counting := "skipped by weekday counting"
		if p.CountsForWeekdays {
			counting = "counts for weekdays"
		}
		fmt.Printf("  %-20s after %s, %d day(s), %s\n", p.Name, cal.MonthName(p.AfterMonth), p.Of, counting)
	}
	return nil
}
