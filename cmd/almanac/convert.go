package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tabletopkit/almanac/internal/calendar"
)

func newConvertCommand(g *globalConfig) *cobra.Command {
	c := &cobra.Command{
		Use:           "convert [flags] SECONDS",
		Short:         "Convert a world-time value to a calendar date",
		Args:          cobra.ExactArgs(1),
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	hint := c.Flags().Int("hint", 0, "`year` expected to be near the result")
	hintSet := false
	c.PreRun = func(cmd *cobra.Command, args []string) {
		hintSet = cmd.Flags().Changed("hint")
	}
	c.RunE = func(cmd *cobra.Command, args []string) error {
		t, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid world time %q", args[0])
		}

		cal, err := g.load()
		if err != nil {
			return err
		}

		var d calendar.Date
		if hintSet {
			d, err = cal.DateAtNear(t, *hint)
		} else {
			d, err = cal.DateAt(t)
		}
		if err != nil {
			return err
		}

		fmt.Println(cal.Format(d))
		return nil
	}
	return c
}

func newWorldTimeCommand(g *globalConfig) *cobra.Command {
	c := &cobra.Command{
		Use:           "worldtime [flags] YEAR MONTH DAY [HH:MM:SS]",
		Short:         "Convert a calendar date to a world-time value",
		Args:          cobra.RangeArgs(2, 4),
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	intercalary := c.Flags().String("intercalary", "", "intercalary day `name` (replaces MONTH)")
	c.RunE = func(cmd *cobra.Command, args []string) error {
		d, err := parseDateArgs(args, *intercalary)
		if err != nil {
			return err
		}

		cal, err := g.load()
		if err != nil {
			return err
		}

		t, err := cal.WorldTimeOf(d)
		if err != nil {
			return err
		}

		fmt.Println(t)
		return nil
	}
	return c
}

// parseDateArgs builds a date from positional arguments:
// YEAR MONTH DAY [TIME], or YEAR DAY [TIME] when an intercalary name
// stands in for the month. TIME is HH:MM:SS.
func parseDateArgs(args []string, intercalary string) (calendar.Date, error) {
	var d calendar.Date
	d.Intercalary = intercalary

	want := 3
	if intercalary != "" {
		want = 2
	}
	if len(args) < want || len(args) > want+1 {
		return d, fmt.Errorf("expected %d date arguments, got %d", want, len(args))
	}

	nums := make([]int, want)
	for i := 0; i < want; i++ {
		v, err := strconv.Atoi(args[i])
		if err != nil {
			return d, fmt.Errorf("invalid date component %q", args[i])
		}
		nums[i] = v
	}

	if intercalary != "" {
		d.Year, d.Day = nums[0], nums[1]
	} else {
		d.Year, d.Month, d.Day = nums[0], nums[1], nums[2]
	}

	if len(args) == want+1 {
		parts := strings.Split(args[want], ":")
		if len(parts) != 3 {
			return d, fmt.Errorf("invalid time %q, want HH:MM:SS", args[want])
		}
		vals := make([]int, 3)
		for i, p := range parts {
			v, err := strconv.Atoi(p)
			if err != nil {
				return d, fmt.Errorf("invalid time %q, want HH:MM:SS", args[want])
			}
			vals[i] = v
		}
		d.Hour, d.Minute, d.Second = vals[0], vals[1], vals[2]
	}

	return d, nil
}
