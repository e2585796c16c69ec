// Package config loads the runtime configuration: a YAML file layered with
// MEMOBOARD_* environment overrides. A missing file means defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

var ErrInvalid = errors.New("config: invalid")

type Config struct {
	DBPath             string `yaml:"db_path"`
	HTTPAddr           string `yaml:"http_addr"`
	SnoozeMinutes      int    `yaml:"snooze_minutes"`
	RetentionAge       string `yaml:"retention_age"`       // duration string, e.g. "24h"
	SweepInterval      string `yaml:"sweep_interval"`      // duration string
	RecurrenceInterval string `yaml:"recurrence_interval"` // duration string
	SchedulerBuffer    int    `yaml:"scheduler_buffer"`

	// MistralAPIKey comes from the environment only; it is never written to
	// or read from the YAML file.
	MistralAPIKey string `yaml:"-"`
}

func Default() Config {
	return Config{
		DBPath:             defaultDBPath(),
		HTTPAddr:           ":8488",
		SnoozeMinutes:      10,
		RetentionAge:       "24h",
		SweepInterval:      "24h",
		RecurrenceInterval: "30m",
		SchedulerBuffer:    64,
	}
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "memoboard.db"
	}
	return filepath.Join(home, ".memoboard", "memoboard.db")
}

// Load reads the YAML file at path, falling back to defaults when the file
// does not exist, then applies environment overrides and validates.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("config: parsing %s: %w", path, err)
			}
		case os.IsNotExist(err):
			// Defaults apply.
		default:
			return Config{}, fmt.Errorf("config: reading %s: %w", path, err)
		}
	}

	cfg = FromEnv(cfg)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// FromEnv layers MEMOBOARD_* environment variables over the base config.
func FromEnv(base Config) Config {
	cfg := base
	if v := strings.TrimSpace(os.Getenv("MEMOBOARD_DB_PATH")); v != "" {
		cfg.DBPath = v
	}
	if v := strings.TrimSpace(os.Getenv("MEMOBOARD_HTTP_ADDR")); v != "" {
		cfg.HTTPAddr = v
	}
	if v, ok := getEnvInt("MEMOBOARD_SNOOZE_MINUTES"); ok && v > 0 {
		cfg.SnoozeMinutes = v
	}
	if v := strings.TrimSpace(os.Getenv("MEMOBOARD_RETENTION_AGE")); v != "" {
		cfg.RetentionAge = v
	}
	if v := strings.TrimSpace(os.Getenv("MEMOBOARD_SWEEP_INTERVAL")); v != "" {
		cfg.SweepInterval = v
	}
	if v := strings.TrimSpace(os.Getenv("MEMOBOARD_RECURRENCE_INTERVAL")); v != "" {
		cfg.RecurrenceInterval = v
	}
	if v, ok := getEnvInt("MEMOBOARD_SCHEDULER_BUFFER"); ok && v > 0 {
		cfg.SchedulerBuffer = v
	}
	if v := strings.TrimSpace(os.Getenv("MEMOBOARD_MISTRAL_API_KEY")); v != "" {
		cfg.MistralAPIKey = v
	}
	return cfg
}

func (c Config) Validate() error {
	if c.DBPath == "" {
		return fmt.Errorf("%w: db_path is required", ErrInvalid)
	}
	if c.SnoozeMinutes <= 0 {
		return fmt.Errorf("%w: snooze_minutes must be > 0", ErrInvalid)
	}
	if c.SchedulerBuffer <= 0 {
		return fmt.Errorf("%w: scheduler_buffer must be > 0", ErrInvalid)
	}
	for name, raw := range map[string]string{
		"retention_age":       c.RetentionAge,
		"sweep_interval":      c.SweepInterval,
		"recurrence_interval": c.RecurrenceInterval,
	} {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return fmt.Errorf("%w: %s %q: %v", ErrInvalid, name, raw, err)
		}
		if d <= 0 {
			return fmt.Errorf("%w: %s must be > 0", ErrInvalid, name)
		}
	}
	return nil
}

// RetentionAgeDuration returns the parsed retention age. Call Validate first.
func (c Config) RetentionAgeDuration() time.Duration {
	return mustDuration(c.RetentionAge)
}

func (c Config) SweepIntervalDuration() time.Duration {
	return mustDuration(c.SweepInterval)
}

func (c Config) RecurrenceIntervalDuration() time.Duration {
	return mustDuration(c.RecurrenceInterval)
}

func mustDuration(raw string) time.Duration {
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0
	}
	return d
}

func getEnvInt(name string) (int, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}
