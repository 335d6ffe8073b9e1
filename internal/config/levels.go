package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// Level names an optimization preset and the 2-opt iteration budget it maps to.
type Level struct {
	Name          string `yaml:"name" json:"name"`
	Description   string `yaml:"description" json:"description"`
	MaxIterations int    `yaml:"max_iterations" json:"max_iterations"`
}

// Levels is an ordered set of presets looked up case-insensitively by name.
type Levels []Level

var ErrUnknownLevel = errors.New("unknown optimization level")

// DefaultLevels mirrors the presets offered to dashboard users.
func DefaultLevels() Levels {
	return Levels{
		{Name: "basic", Description: "Nearest neighbor only", MaxIterations: 0},
		{Name: "advanced", Description: "Nearest neighbor with 2-opt", MaxIterations: 1000},
		{Name: "premium", Description: "Nearest neighbor with extended 2-opt", MaxIterations: 5000},
	}
}

type levelsFile struct {
	Levels Levels `yaml:"levels"`
}

// LoadLevels reads presets from a YAML file of the form:
//
//	levels:
//	  - name: advanced
//	    max_iterations: 1000
func LoadLevels(path string) (Levels, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load levels: read %q: %w", path, err)
	}

	var f levelsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("load levels: parse yaml: %w", err)
	}

	if len(f.Levels) == 0 {
		return nil, fmt.Errorf("load levels: %q defines no levels", path)
	}

	seen := make(map[string]struct{}, len(f.Levels))
	for i, l := range f.Levels {
		name := strings.ToLower(strings.TrimSpace(l.Name))
		if name == "" {
			return nil, fmt.Errorf("load levels: level #%d has no name", i+1)
		}
		if l.MaxIterations < 0 {
			return nil, fmt.Errorf("load levels: level %q: max_iterations must be >= 0", l.Name)
		}
		if _, ok := seen[name]; ok {
			return nil, fmt.Errorf("load levels: duplicate level %q", l.Name)
		}
		seen[name] = struct{}{}
		f.Levels[i].Name = name
	}

	return f.Levels, nil
}

// LoadLevelsOrDefault loads presets from path, or returns DefaultLevels when path is empty.
func LoadLevelsOrDefault(path string) (Levels, error) {
	if strings.TrimSpace(path) == "" {
		return DefaultLevels(), nil
	}
	return LoadLevels(path)
}

// Budget returns the iteration budget of the named level.
func (ls Levels) Budget(name string) (int, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	i := slices.IndexFunc(ls, func(l Level) bool { return l.Name == name })
	if i < 0 {
		return 0, fmt.Errorf("%w: %q", ErrUnknownLevel, name)
	}
	return ls[i].MaxIterations, nil
}

// Resolve picks the iteration budget for a request: an explicit override wins,
// then the named level, then the fallback level.
func (ls Levels) Resolve(level string, override *int, fallback string) (int, error) {
	if override != nil {
		if *override < 0 {
			return 0, fmt.Errorf("resolve budget: max_iterations must be >= 0, got %d", *override)
		}
		return *override, nil
	}
	if strings.TrimSpace(level) == "" {
		level = fallback
	}
	return ls.Budget(level)
}
