package calendar

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
)

//go:embed presets/*.json
var presetFS embed.FS

// PresetNames lists the bundled calendar presets in sorted order.
func PresetNames() []string {
	entries, err := fs.Glob(presetFS, "presets/*.json")
	if err != nil {
		panic(err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(path.Base(e), ".json"))
	}
	sort.Strings(names)
	return names
}

// Preset loads a bundled calendar definition by name.
func Preset(name string) (*Definition, error) {
	data, err := fs.ReadFile(presetFS, "presets/"+name+".json")
	if err != nil {
		return nil, fmt.Errorf("unknown preset %q", name)
	}
	def, err := ParseDefinition(data)
	if err != nil {
		return nil, fmt.Errorf("preset %q: %w", name, err)
	}
	return def, nil
}
