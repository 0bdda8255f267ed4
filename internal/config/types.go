// Package config loads tgblast configuration from YAML or JSON with strict
// field checking, validates it, and supports hot reload via fsnotify.
package config

import (
	"errors"
	"fmt"
	"strings"

	"tgblast/internal/broadcast"
)

type Config struct {
	Telegram  TelegramConfig  `json:"telegram"`
	Logging   LoggingConfig   `json:"logging"`
	Broadcast BroadcastConfig `json:"broadcast"`

	// Storage is optional; when omitted, runs are not persisted.
	Storage *StorageConfig `json:"storage,omitempty"`

	// Schedules drive recurring broadcasts under `tgblast serve`.
	Schedules []ScheduleConfig `json:"schedules,omitempty"`
}

type TelegramConfig struct {
	Token string `json:"token"`
	// SendTimeout is a Go duration string (e.g. "30s") bounding each API call.
	SendTimeout string `json:"send_timeout,omitempty"`
	// RatePerSec caps bot-wide outbound calls (Telegram allows ~30/s).
	RatePerSec int `json:"rate_per_sec,omitempty"`
}

type LoggingConfig struct {
	Level   string      `json:"level"`
	Console bool        `json:"console"`
	File    LoggingFile `json:"file"`
}

type LoggingFile struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path"`
}

// BroadcastConfig supplies the defaults the CLI flags fall back to.
type BroadcastConfig struct {
	// Concurrency is the in-flight send bound, 1..50.
	Concurrency int `json:"concurrency,omitempty"`
	// Delay is the inter-batch delay as a Go duration string, "0s".."10s".
	Delay string `json:"delay,omitempty"`
	// DryRunLatency is the simulated per-send latency for dry runs.
	DryRunLatency string `json:"dry_run_latency,omitempty"`
}

// StorageConfig controls the history store.
//
// Example:
//
//	"storage": { "driver": "sqlite", "path": "./tgblast.db" }
type StorageConfig struct {
	Driver      string `json:"driver"`
	Path        string `json:"path"`
	BusyTimeout string `json:"busy_timeout,omitempty"` // Go duration string
}

// ScheduleConfig declares one recurring broadcast.
type ScheduleConfig struct {
	Name string `json:"name"`
	// Spec is a cron expression ("0 9 * * MON") understood by robfig/cron.
	Spec string `json:"spec"`

	// Exactly one of Message / MessageFile supplies the text.
	Message     string `json:"message,omitempty"`
	MessageFile string `json:"message_file,omitempty"`
	// Image optionally attaches a photo; Message becomes its caption.
	Image string `json:"image,omitempty"`

	// Exactly one of Roster / RosterURL supplies the recipients.
	Roster    string `json:"roster,omitempty"`
	RosterURL string `json:"roster_url,omitempty"`

	// Per-entry overrides of the broadcast defaults.
	Concurrency int    `json:"concurrency,omitempty"`
	Delay       string `json:"delay,omitempty"`
	DryRun      bool   `json:"dry_run,omitempty"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{Level: "info", Console: true},
		Broadcast: BroadcastConfig{
			Concurrency: 10,
			Delay:       "1s",
		},
	}
}

// Validate checks field ranges and cross-field constraints. It does not
// require a token; commands that send check for it themselves.
func (c *Config) Validate() error {
	if c.Broadcast.Concurrency != 0 &&
		(c.Broadcast.Concurrency < broadcast.MinConcurrency || c.Broadcast.Concurrency > broadcast.MaxConcurrency) {
		return fmt.Errorf("broadcast.concurrency must be in [%d, %d]", broadcast.MinConcurrency, broadcast.MaxConcurrency)
	}
	d, err := ParseDurationField("broadcast.delay", c.Broadcast.Delay)
	if err != nil {
		return err
	}
	if d > broadcast.MaxDelay {
		return fmt.Errorf("broadcast.delay must be <= %s", broadcast.MaxDelay)
	}
	if _, err := ParseDurationField("broadcast.dry_run_latency", c.Broadcast.DryRunLatency); err != nil {
		return err
	}
	if _, err := ParseDurationField("telegram.send_timeout", c.Telegram.SendTimeout); err != nil {
		return err
	}
	if c.Storage != nil {
		if strings.TrimSpace(c.Storage.Driver) == "" {
			return errors.New("storage.driver is required when storage is set")
		}
		if _, err := ParseDurationField("storage.busy_timeout", c.Storage.BusyTimeout); err != nil {
			return err
		}
	}

	seen := map[string]bool{}
	for i, s := range c.Schedules {
		at := fmt.Sprintf("schedules[%d]", i)
		if strings.TrimSpace(s.Name) == "" {
			return fmt.Errorf("%s: name is required", at)
		}
		if seen[s.Name] {
			return fmt.Errorf("%s: duplicate schedule name %q", at, s.Name)
		}
		seen[s.Name] = true
		if strings.TrimSpace(s.Spec) == "" {
			return fmt.Errorf("%s: spec is required", at)
		}
		if (s.Message == "") == (s.MessageFile == "") {
			return fmt.Errorf("%s: exactly one of message and message_file is required", at)
		}
		if (s.Roster == "") == (s.RosterURL == "") {
			return fmt.Errorf("%s: exactly one of roster and roster_url is required", at)
		}
		if s.Concurrency != 0 &&
			(s.Concurrency < broadcast.MinConcurrency || s.Concurrency > broadcast.MaxConcurrency) {
			return fmt.Errorf("%s: concurrency must be in [%d, %d]", at, broadcast.MinConcurrency, broadcast.MaxConcurrency)
		}
		d, err := ParseDurationField(at+".delay", s.Delay)
		if err != nil {
			return err
		}
		if d > broadcast.MaxDelay {
			return fmt.Errorf("%s: delay must be <= %s", at, broadcast.MaxDelay)
		}
	}
	return nil
}
