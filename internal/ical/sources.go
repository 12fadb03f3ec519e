// Package ical ingests published external calendar feeds and turns their
// entries into schedule events alongside the organiser's own programme.
package ical

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Source is one external calendar feed. Events from a source are placed
// at the source's venue regardless of the feed's own LOCATION values.
type Source struct {
	Name     string `yaml:"name"`
	URL      string `yaml:"url"`
	Venue    string `yaml:"venue"`
	Priority int    `yaml:"priority"`
	Disabled bool   `yaml:"disabled,omitempty"`
}

// LoadSources reads the calendar source list. A missing file yields an
// empty list; malformed YAML or invalid entries are errors.
func LoadSources(path string) ([]Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read calendar sources: %w", err)
	}

	var sources []Source
	if err := yaml.Unmarshal(data, &sources); err != nil {
		return nil, fmt.Errorf("parse calendar sources: %w", err)
	}

	for i, src := range sources {
		if src.Name == "" {
			return nil, fmt.Errorf("calendar source %d: name is required", i)
		}
		if src.URL == "" {
			return nil, fmt.Errorf("calendar source %q: url is required", src.Name)
		}
		if src.Venue == "" {
			return nil, fmt.Errorf("calendar source %q: venue is required", src.Name)
		}
	}

	return sources, nil
}

// SaveSources writes the source list back out, used by the export command.
func SaveSources(path string, sources []Source) error {
	data, err := yaml.Marshal(sources)
	if err != nil {
		return fmt.Errorf("marshal calendar sources: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("write calendar sources: %w", err)
	}
	return nil
}

// Enabled filters out disabled sources.
func Enabled(sources []Source) []Source {
	var out []Source
	for _, src := range sources {
		if !src.Disabled {
			out = append(out, src)
		}
	}
	return out
}
