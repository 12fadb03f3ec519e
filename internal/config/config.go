package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// CurrentSchemaVersion is the current config schema version.
const CurrentSchemaVersion = 1

// Environment variable names for config overrides.
// Priority: Environment > Config File > Default
const (
	EnvPort         = "LINEUP_PORT"
	EnvLanEnabled   = "LINEUP_LAN_ENABLED"
	EnvEventYear    = "LINEUP_EVENT_YEAR"
	EnvTimezone     = "LINEUP_TIMEZONE"
	EnvUpstreamURL  = "LINEUP_UPSTREAM_URL"
	EnvRefreshCron  = "LINEUP_REFRESH_CRON"
	EnvCalendarCron = "LINEUP_CALENDAR_CRON"
	EnvAuthUser     = "LINEUP_AUTH_USER"
	EnvAuthPass     = "LINEUP_AUTH_PASS"
)

// Config holds application configuration.
type Config struct {
	SchemaVersion int    `json:"schema_version"`
	Port          int    `json:"port"`
	LanEnabled    bool   `json:"lan_enabled"`
	EventYear     int    `json:"event_year"`
	Timezone      string `json:"timezone"`
	UpstreamURL   string `json:"upstream_url"`
	RefreshCron   string `json:"refresh_cron"`
	CalendarCron  string `json:"calendar_cron"`
	AuthUser      string `json:"auth_user"`
	AuthPass      string `json:"auth_pass"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		SchemaVersion: CurrentSchemaVersion,
		Port:          8080,
		LanEnabled:    false,
		EventYear:     time.Now().Year(),
		Timezone:      "Europe/London",
		UpstreamURL:   "", // empty disables upstream refresh
		RefreshCron:   "@every 10m",
		CalendarCron:  "@hourly",
	}
}

// Location resolves the configured timezone, falling back to UTC when the
// name does not resolve.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		log.Printf("Warning: unknown timezone %q, using UTC", c.Timezone)
		return time.UTC
	}
	return loc
}

// AuthEnabled reports whether Basic Auth credentials are configured.
func (c Config) AuthEnabled() bool {
	return c.AuthUser != "" && c.AuthPass != ""
}

// LoadConfig reads config from disk. If the file doesn't exist or is corrupt,
// it returns DefaultConfig with a warning logged (non-fatal).
func LoadConfig() (Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return DefaultConfig(), err
	}

	return LoadConfigFrom(path)
}

// LoadConfigFrom reads config from the specified path.
func LoadConfigFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			// File doesn't exist, use defaults (not an error)
			return cfg, nil
		}
		log.Printf("Warning: failed to read config file: %v, using defaults", err)
		return cfg, nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&cfg); err != nil {
		log.Printf("Warning: config file is corrupt: %v, using defaults", err)
		return DefaultConfig(), nil
	}

	if cfg.SchemaVersion != CurrentSchemaVersion {
		log.Printf("Warning: config schema version mismatch (got %d, expected %d), using defaults",
			cfg.SchemaVersion, CurrentSchemaVersion)
		return DefaultConfig(), nil
	}

	return normalizeConfig(cfg), nil
}

// normalizeConfig validates and normalizes config values.
func normalizeConfig(cfg Config) Config {
	defaults := DefaultConfig()

	cfg.SchemaVersion = CurrentSchemaVersion

	if cfg.Port <= 0 || cfg.Port > 65535 {
		cfg.Port = defaults.Port
	}

	if cfg.EventYear < 2000 || cfg.EventYear > 2100 {
		cfg.EventYear = defaults.EventYear
	}

	if cfg.Timezone == "" {
		cfg.Timezone = defaults.Timezone
	}
	if cfg.RefreshCron == "" {
		cfg.RefreshCron = defaults.RefreshCron
	}
	if cfg.CalendarCron == "" {
		cfg.CalendarCron = defaults.CalendarCron
	}

	return cfg
}

// SaveConfig writes config to disk atomically.
func SaveConfig(cfg Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}

	return SaveConfigTo(cfg, path)
}

// SaveConfigTo writes config to the specified path atomically.
func SaveConfigTo(cfg Config, path string) error {
	cfg.SchemaVersion = CurrentSchemaVersion

	return writeJSONAtomic(path, cfg)
}

// ApplyEnvOverrides applies environment variable overrides to the config.
// Environment variables take highest priority over config file values.
func ApplyEnvOverrides(cfg Config) Config {
	if v := os.Getenv(EnvPort); v != "" {
		if port, err := strconv.Atoi(v); err == nil && port > 0 && port <= 65535 {
			cfg.Port = port
		}
	}

	if v := os.Getenv(EnvLanEnabled); v != "" {
		cfg.LanEnabled = parseBool(v)
	}

	if v := os.Getenv(EnvEventYear); v != "" {
		if year, err := strconv.Atoi(v); err == nil && year >= 2000 && year <= 2100 {
			cfg.EventYear = year
		}
	}

	if v := os.Getenv(EnvTimezone); v != "" {
		cfg.Timezone = v
	}

	if v := os.Getenv(EnvUpstreamURL); v != "" {
		cfg.UpstreamURL = v
	}

	if v := os.Getenv(EnvRefreshCron); v != "" {
		cfg.RefreshCron = v
	}

	if v := os.Getenv(EnvCalendarCron); v != "" {
		cfg.CalendarCron = v
	}

	if v := os.Getenv(EnvAuthUser); v != "" {
		cfg.AuthUser = v
	}

	if v := os.Getenv(EnvAuthPass); v != "" {
		cfg.AuthPass = v
	}

	return cfg
}

// parseBool parses a boolean from various string representations.
// Accepts: "true", "1", "yes", "on" (case-insensitive) as true.
// All other values are treated as false.
func parseBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "true" || s == "1" || s == "yes" || s == "on"
}
