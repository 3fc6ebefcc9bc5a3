// Command almanac runs calendar conversions offline against a definition
// file or a bundled preset.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/tabletopkit/almanac/internal/calendar"
)

// globalConfig carries the flags shared by every subcommand.
type globalConfig struct {
	definitionPath string // --file: JSON or YAML definition document
	preset         string // --preset: bundled calendar name
}

// load resolves the calendar selected by the global flags.
func (g *globalConfig) load() (*calendar.Calendar, error) {
	def, err := g.definition()
	if err != nil {
		return nil, err
	}
	return calendar.New(def)
}

func (g *globalConfig) definition() (*calendar.Definition, error) {
	switch {
	case g.definitionPath != "" && g.preset != "":
		return nil, fmt.Errorf("--file and --preset are mutually exclusive")
	case g.definitionPath != "":
		return loadDefinitionFile(g.definitionPath)
	case g.preset != "":
		return calendar.Preset(g.preset)
	default:
		return nil, fmt.Errorf("no calendar selected: pass --file or --preset")
	}
}

// loadDefinitionFile reads a definition document, decoding YAML or JSON
// by file extension.
func loadDefinitionFile(path string) (*calendar.Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		def := new(calendar.Definition)
		if err := yaml.Unmarshal(data, def); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		def.Normalize()
		if err := def.Validate(); err != nil {
			return nil, err
		}
		return def, nil
	default:
		return calendar.ParseDefinition(data)
	}
}

func main() {
	rootCommand := &cobra.Command{
		Use:           "almanac",
		Short:         "fictional-calendar conversions",
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	g := new(globalConfig)
	rootCommand.PersistentFlags().StringVarP(&g.definitionPath, "file", "f", "", "`path` to a calendar definition (JSON or YAML)")
	rootCommand.PersistentFlags().StringVarP(&g.preset, "preset", "p", "", "bundled calendar `name` (see 'almanac presets')")

	rootCommand.AddCommand(
		newConvertCommand(g),
		newWorldTimeCommand(g),
		newAddCommand(g),
		newValidateCommand(g),
		newPresetsCommand(),
	)

	if err := rootCommand.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "almanac:", err)
		os.Exit(1)
	}
}
