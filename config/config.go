package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the overall unit configuration.
type Config struct {
	Faculty  FacultyConfig  `yaml:"faculty"`
	Broker   BrokerConfig   `yaml:"broker"`
	Presence PresenceConfig `yaml:"presence"`
	Input    InputConfig    `yaml:"input"`
	Display  DisplayConfig  `yaml:"display"`
	Server   ServerConfig   `yaml:"server"`
	Storage  StorageConfig  `yaml:"storage"`
	Unit     UnitConfig     `yaml:"unit"`
}

// FacultyConfig identifies the faculty member this unit serves.
type FacultyConfig struct {
	ID         string `yaml:"id"`
	Name       string `yaml:"name"`
	Department string `yaml:"department"`
	BeaconID   string `yaml:"beacon_id"`
}

// BrokerConfig holds the publish/subscribe link settings.
type BrokerConfig struct {
	URL                  string `yaml:"url"`
	ClientID             string `yaml:"client_id"`
	Username             string `yaml:"username"`
	Password             string `yaml:"password"`
	RetryIntervalSeconds int    `yaml:"retry_interval_seconds"`
	AttachTimeoutSeconds int    `yaml:"attach_timeout_seconds"`

	RetryInterval time.Duration `yaml:"-"`
	AttachTimeout time.Duration `yaml:"-"`
}

// PresenceConfig tunes beacon sighting and decay.
type PresenceConfig struct {
	TimeoutSeconds      int `yaml:"timeout_seconds"`
	ScanIntervalSeconds int `yaml:"scan_interval_seconds"`
	ScanDurationSeconds int `yaml:"scan_duration_seconds"`

	// SimulateIDs makes the unit see these identifiers on every scan instead
	// of using a real radio. Bench/simulation mode only.
	SimulateIDs []string `yaml:"simulate_ids"`

	Timeout      time.Duration `yaml:"-"`
	ScanInterval time.Duration `yaml:"-"`
	ScanDuration time.Duration `yaml:"-"`
}

// InputConfig tunes the button debounce.
type InputConfig struct {
	DebounceMs int `yaml:"debounce_ms"`

	Debounce time.Duration `yaml:"-"`
}

// DisplayConfig describes the panel's text area.
type DisplayConfig struct {
	Width int `yaml:"width"`
}

// ServerConfig holds the local diagnostic API settings.
type ServerConfig struct {
	Enabled         bool    `yaml:"enabled"`
	Port            int     `yaml:"port"`
	RateLimitPerSec float64 `yaml:"rate_limit_per_sec"`
}

// StorageConfig locates the non-volatile state file.
type StorageConfig struct {
	Path string `yaml:"path"`
}

// UnitConfig tunes the tick loop.
type UnitConfig struct {
	TickIntervalMs int `yaml:"tick_interval_ms"`

	TickInterval time.Duration `yaml:"-"`
}

// Load reads the configuration from the given path and applies defaults.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, err
	}

	if cfg.Faculty.ID == "" {
		return nil, fmt.Errorf("faculty.id must be configured")
	}
	if cfg.Broker.URL == "" {
		return nil, fmt.Errorf("broker.url must be configured")
	}
	if cfg.Faculty.BeaconID == "" && len(cfg.Presence.SimulateIDs) == 0 {
		return nil, fmt.Errorf("faculty.beacon_id must be configured")
	}

	if cfg.Broker.ClientID == "" {
		cfg.Broker.ClientID = "desk-" + cfg.Faculty.ID
	}
	if cfg.Broker.RetryIntervalSeconds <= 0 {
		cfg.Broker.RetryIntervalSeconds = 5
	}
	if cfg.Broker.AttachTimeoutSeconds <= 0 {
		cfg.Broker.AttachTimeoutSeconds = 5
	}
	cfg.Broker.RetryInterval = time.Duration(cfg.Broker.RetryIntervalSeconds) * time.Second
	cfg.Broker.AttachTimeout = time.Duration(cfg.Broker.AttachTimeoutSeconds) * time.Second

	if cfg.Presence.TimeoutSeconds <= 0 {
		cfg.Presence.TimeoutSeconds = 60
	}
	if cfg.Presence.ScanIntervalSeconds <= 0 {
		cfg.Presence.ScanIntervalSeconds = 10
	}
	if cfg.Presence.ScanDurationSeconds <= 0 {
		cfg.Presence.ScanDurationSeconds = 3
	}
	cfg.Presence.Timeout = time.Duration(cfg.Presence.TimeoutSeconds) * time.Second
	cfg.Presence.ScanInterval = time.Duration(cfg.Presence.ScanIntervalSeconds) * time.Second
	cfg.Presence.ScanDuration = time.Duration(cfg.Presence.ScanDurationSeconds) * time.Second

	if cfg.Input.DebounceMs <= 0 {
		cfg.Input.DebounceMs = 200
	}
	cfg.Input.Debounce = time.Duration(cfg.Input.DebounceMs) * time.Millisecond

	if cfg.Display.Width <= 0 {
		cfg.Display.Width = 20
	}

	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.RateLimitPerSec <= 0 {
		cfg.Server.RateLimitPerSec = 10
	}

	if cfg.Storage.Path == "" {
		cfg.Storage.Path = "./deskd.db"
	}

	if cfg.Unit.TickIntervalMs <= 0 {
		cfg.Unit.TickIntervalMs = 100
	}
	cfg.Unit.TickInterval = time.Duration(cfg.Unit.TickIntervalMs) * time.Millisecond

	return &cfg, nil
}
