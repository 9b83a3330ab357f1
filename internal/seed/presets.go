package seed

import (
	"context"
	_ "embed"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

//go:embed presets.yml
var presetsYAML []byte

type presetFile struct {
	Presets map[string]Shape `yaml:"presets"`
}

// LoadPresets parses a presets document.
func LoadPresets(data []byte) (map[string]Shape, error) {
	var file presetFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse presets: %w", err)
	}
	for name, shape := range file.Presets {
		if shape.Users < 0 || shape.PostsPerUser < 0 || shape.CommentsPerPost < 0 || shape.RepliesPerComment < 0 {
			return nil, fmt.Errorf("preset %q: counts must not be negative", name)
		}
	}
	return file.Presets, nil
}

// Presets returns the built-in presets.
func Presets() (map[string]Shape, error) {
	return LoadPresets(presetsYAML)
}

// PresetNames lists the built-in presets in alphabetical order.
func PresetNames() []string {
	presets, err := Presets()
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ApplyPreset runs the built-in preset called name.
func (s *Seeder) ApplyPreset(ctx context.Context, name string) (*Result, error) {
	presets, err := Presets()
	if err != nil {
		return nil, err
	}
	shape, ok := presets[name]
	if !ok {
		return nil, fmt.Errorf("unknown preset %q (available: %v)", name, PresetNames())
	}
	return s.Run(ctx, shape)
}
