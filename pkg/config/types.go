package config

import (
	"fmt"
	"strconv"
	"strings"
)

// Config represents the persistent gista configuration stored as config.toml
// in the .gista/ directory. The TOML layout uses sections for logical grouping.
type Config struct {
	Version   int           `toml:"version"`
	Namespace string        `toml:"namespace,omitempty"`
	Storage   StorageConfig `toml:"storage"`
	Gemini    GeminiConfig  `toml:"gemini"`
	Scraper   ScraperConfig `toml:"scraper"`
	Ingest    IngestConfig  `toml:"ingest"`
	Events    EventsConfig  `toml:"events"`
	API       APIConfig     `toml:"api"`
}

// StorageConfig selects and configures the persistence backend.
type StorageConfig struct {
	Backend     string `toml:"backend,omitempty"` // "sqlite", "postgres", or "memory"
	SQLitePath  string `toml:"sqlite_path,omitempty"`
	PostgresURL string `toml:"postgres_url,omitempty"`
}

// GeminiConfig holds provider settings. The API key itself comes from the
// environment, never the config file.
type GeminiConfig struct {
	Model   string `toml:"model,omitempty"`
	APIBase string `toml:"api_base,omitempty"`
}

// ScraperConfig selects the web-page acquisition backend.
type ScraperConfig struct {
	Provider string `toml:"provider,omitempty"` // "jina" or "readable"
	Target   string `toml:"target,omitempty"`
}

// IngestConfig holds ingestion pipeline settings.
type IngestConfig struct {
	PollIntervalMS int  `toml:"poll_interval_ms,omitempty"`
	ExtractImages  bool `toml:"extract_images,omitempty"`
	Transcribe     bool `toml:"transcribe,omitempty"`
}

// EventsConfig holds event stream settings.
type EventsConfig struct {
	Enabled bool     `toml:"enabled,omitempty"`
	Brokers []string `toml:"brokers,omitempty"`
	Topic   string   `toml:"topic,omitempty"`
}

// APIConfig holds API server settings.
type APIConfig struct {
	Listen string `toml:"listen,omitempty"`
}

// configKeyInfo maps a user-facing dotted key name to a getter and setter on *Config.
type configKeyInfo struct {
	get func(c *Config) string
	set func(c *Config, v string) error
}

// configKeys is the authoritative map of all supported config keys.
// Keys use dotted notation matching the TOML section structure.
var configKeys = map[string]configKeyInfo{
	"namespace": {
		get: func(c *Config) string { return c.Namespace },
		set: func(c *Config, v string) error { c.Namespace = v; return nil },
	},
	"storage.backend": {
		get: func(c *Config) string { return c.Storage.Backend },
		set: func(c *Config, v string) error {
			switch v {
			case "sqlite", "postgres", "memory":
				c.Storage.Backend = v
				return nil
			}
			return fmt.Errorf("invalid value for storage.backend: %q (available: sqlite, postgres, memory)", v)
		},
	},
	"storage.sqlite_path": {
		get: func(c *Config) string { return c.Storage.SQLitePath },
		set: func(c *Config, v string) error { c.Storage.SQLitePath = v; return nil },
	},
	"storage.postgres_url": {
		get: func(c *Config) string { return c.Storage.PostgresURL },
		set: func(c *Config, v string) error { c.Storage.PostgresURL = v; return nil },
	},
	"gemini.model": {
		get: func(c *Config) string { return c.Gemini.Model },
		set: func(c *Config, v string) error { c.Gemini.Model = v; return nil },
	},
	"gemini.api_base": {
		get: func(c *Config) string { return c.Gemini.APIBase },
		set: func(c *Config, v string) error { c.Gemini.APIBase = v; return nil },
	},
	"scraper.provider": {
		get: func(c *Config) string { return c.Scraper.Provider },
		set: func(c *Config, v string) error {
			switch v {
			case "jina", "readable":
				c.Scraper.Provider = v
				return nil
			}
			return fmt.Errorf("invalid value for scraper.provider: %q (available: jina, readable)", v)
		},
	},
	"scraper.target": {
		get: func(c *Config) string { return c.Scraper.Target },
		set: func(c *Config, v string) error { c.Scraper.Target = v; return nil },
	},
	"ingest.poll_interval_ms": {
		get: func(c *Config) string {
			if c.Ingest.PollIntervalMS == 0 {
				return ""
			}
			return strconv.Itoa(c.Ingest.PollIntervalMS)
		},
		set: func(c *Config, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil || n < 0 {
				return fmt.Errorf("invalid value for ingest.poll_interval_ms: %q", v)
			}
			c.Ingest.PollIntervalMS = n
			return nil
		},
	},
	"ingest.extract_images": {
		get: func(c *Config) string { return strconv.FormatBool(c.Ingest.ExtractImages) },
		set: func(c *Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid value for ingest.extract_images: %w", err)
			}
			c.Ingest.ExtractImages = b
			return nil
		},
	},
	"ingest.transcribe": {
		get: func(c *Config) string { return strconv.FormatBool(c.Ingest.Transcribe) },
		set: func(c *Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid value for ingest.transcribe: %w", err)
			}
			c.Ingest.Transcribe = b
			return nil
		},
	},
	"events.enabled": {
		get: func(c *Config) string { return strconv.FormatBool(c.Events.Enabled) },
		set: func(c *Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid value for events.enabled: %w", err)
			}
			c.Events.Enabled = b
			return nil
		},
	},
	"events.brokers": {
		get: func(c *Config) string { return strings.Join(c.Events.Brokers, ",") },
		set: func(c *Config, v string) error {
			if v == "" {
				c.Events.Brokers = nil
				return nil
			}
			c.Events.Brokers = strings.Split(v, ",")
			return nil
		},
	},
	"events.topic": {
		get: func(c *Config) string { return c.Events.Topic },
		set: func(c *Config, v string) error { c.Events.Topic = v; return nil },
	},
	"api.listen": {
		get: func(c *Config) string { return c.API.Listen },
		set: func(c *Config, v string) error { c.API.Listen = v; return nil },
	},
}
