package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	want := Default()
	if cfg.HTTPAddr != want.HTTPAddr || cfg.SnoozeMinutes != want.SnoozeMinutes {
		t.Fatalf("defaults not applied: %#v", cfg)
	}
	if cfg.RetentionAgeDuration() != 24*time.Hour {
		t.Fatalf("retention age: %v", cfg.RetentionAgeDuration())
	}
	if cfg.RecurrenceIntervalDuration() != 30*time.Minute {
		t.Fatalf("recurrence interval: %v", cfg.RecurrenceIntervalDuration())
	}
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	body := "db_path: /tmp/custom.db\nhttp_addr: \":9000\"\nsnooze_minutes: 5\nsweep_interval: 1h\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DBPath != "/tmp/custom.db" || cfg.HTTPAddr != ":9000" || cfg.SnoozeMinutes != 5 {
		t.Fatalf("file values not applied: %#v", cfg)
	}
	if cfg.SweepIntervalDuration() != time.Hour {
		t.Fatalf("sweep interval: %v", cfg.SweepIntervalDuration())
	}
	// Untouched keys keep their defaults.
	if cfg.RecurrenceInterval != "30m" {
		t.Fatalf("recurrence interval default lost: %q", cfg.RecurrenceInterval)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(path, []byte("snooze_minutes: 5\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("MEMOBOARD_SNOOZE_MINUTES", "15")
	t.Setenv("MEMOBOARD_DB_PATH", "/tmp/env.db")
	t.Setenv("MEMOBOARD_MISTRAL_API_KEY", "sk-test")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.SnoozeMinutes != 15 || cfg.DBPath != "/tmp/env.db" {
		t.Fatalf("env overrides not applied: %#v", cfg)
	}
	if cfg.MistralAPIKey != "sk-test" {
		t.Fatalf("api key not picked up: %q", cfg.MistralAPIKey)
	}
}

func TestEnvIgnoresMalformedValues(t *testing.T) {
	t.Setenv("MEMOBOARD_SNOOZE_MINUTES", "soon")
	t.Setenv("MEMOBOARD_SCHEDULER_BUFFER", "-3")

	cfg := FromEnv(Default())
	if cfg.SnoozeMinutes != Default().SnoozeMinutes || cfg.SchedulerBuffer != Default().SchedulerBuffer {
		t.Fatalf("malformed env values must be ignored: %#v", cfg)
	}
}

func TestValidateRejectsBadDurations(t *testing.T) {
	cfg := Default()
	cfg.RetentionAge = "yesterday"
	if err := cfg.Validate(); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got: %v", err)
	}

	cfg = Default()
	cfg.SweepInterval = "-1h"
	if err := cfg.Validate(); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got: %v", err)
	}

	cfg = Default()
	cfg.SnoozeMinutes = 0
	if err := cfg.Validate(); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got: %v", err)
	}
}
