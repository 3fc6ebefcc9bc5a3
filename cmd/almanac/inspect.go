package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tabletopkit/almanac/internal/calendar"
)

func newValidateCommand(g *globalConfig) *cobra.Command {
	c := &cobra.Command{
		Use:           "validate",
		Short:         "Validate a calendar definition",
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	c.RunE = func(cmd *cobra.Command, args []string) error {
		cal, err := g.load()
		if err != nil {
			return err
		}

		def := cal.Definition()
		fmt.Printf("%s: ok\n", def.Name)
		fmt.Printf("  months: %d, weekdays: %d, intercalary: %d\n",
			len(def.Months), len(def.Weekdays), len(def.Intercalary))
		fmt.Printf("  leap rule: %s, interpretation: %s\n",
			def.LeapYear.Rule, def.WorldTime.Interpretation)
		return nil
	}
	return c
}

func newPresetsCommand() *cobra.Command {
	c := &cobra.Command{
		Use:           "presets",
		Short:         "List bundled calendar presets",
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	c.RunE = func(cmd *cobra.Command, args []string) error {
		for _, name := range calendar.PresetNames() {
			def, err := calendar.Preset(name)
			if err != nil {
				return err
			}
			fmt.Printf("%-12s %s\n", name, def.Name)
		}
		return nil
	}
	return c
}
