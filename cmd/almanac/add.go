package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tabletopkit/almanac/internal/calendar"
)

func newAddCommand(g *globalConfig) *cobra.Command {
	c := &cobra.Command{
		Use:           "add [flags] YEAR MONTH DAY [HH:MM:SS]",
		Short:         "Add days, weeks, months, or years to a date",
		Args:          cobra.RangeArgs(2, 4),
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	intercalary := c.Flags().String("intercalary", "", "intercalary day `name` (replaces MONTH)")
	days := c.Flags().Int("days", 0, "days to add (may be negative)")
	weeks := c.Flags().Int("weeks", 0, "weekday cycles to add")
	months := c.Flags().Int("months", 0, "months to add (day clamps to month length)")
	years := c.Flags().Int("years", 0, "years to add (day clamps to month length)")
	c.RunE = func(cmd *cobra.Command, args []string) error {
		d, err := parseDateArgs(args, *intercalary)
		if err != nil {
			return err
		}

		cal, err := g.load()
		if err != nil {
			return err
		}

		steps := []struct {
			n     int
			apply func(calendar.Date, int) (calendar.Date, error)
		}{
			{*years, cal.AddYears},
			{*months, cal.AddMonths},
			{*weeks, cal.AddWeeks},
			{*days, cal.AddDays},
		}

		applied := false
		for _, s := range steps {
			if s.n == 0 {
				continue
			}
			if d, err = s.apply(d, s.n); err != nil {
				return err
			}
			applied = true
		}
		if !applied {
			// Normalize so the output carries the weekday
			if d, err = cal.AddDays(d, 0); err != nil {
				return err
			}
		}

		fmt.Println(cal.Format(d))
		return nil
	}
	return c
}
