package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/gistahq/gista/pkg/dotdir"
)

// InitViper creates and returns a configured *viper.Viper.
// It sets defaults from NewDefaultConfig(), reads the config.toml file
// (if found via dotdir resolution), and binds environment variables
// with the GISTA_ prefix.
//
// Config precedence (highest to lowest):
//  1. CLI flags (once bound via viper.BindPFlag)
//  2. Environment variables (GISTA_STORAGE_BACKEND, GISTA_API_LISTEN, etc.)
//  3. config.toml file values
//  4. Defaults from NewDefaultConfig()
func InitViper(configDir string) (*viper.Viper, error) {
	v := viper.New()

	// 1. Register all defaults from NewDefaultConfig().
	setViperDefaults(v)

	// 2. Config file discovery via dotdir resolution.
	v.SetConfigName("config")
	v.SetConfigType("toml")

	ddm := dotdir.NewManager()
	target, err := ddm.Target(configDir)
	if err != nil {
		return nil, fmt.Errorf("resolving config dir: %w", err)
	}

	if target != "" {
		v.AddConfigPath(target)
	}

	if err := v.ReadInConfig(); err != nil {
		// Config file not found errors are fine, defaults will apply.
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	// 3. Environment variables: GISTA_STORAGE_SQLITE_PATH, GISTA_GEMINI_MODEL, etc.
	v.SetEnvPrefix("GISTA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v, nil
}

// setViperDefaults registers defaults from NewDefaultConfig() into viper
// using dotted-key notation. This keeps defaults.go as the single source of truth.
func setViperDefaults(v *viper.Viper) {
	d := NewDefaultConfig()

	v.SetDefault("version", d.Version)
	v.SetDefault("namespace", d.Namespace)

	// Storage
	v.SetDefault("storage.backend", d.Storage.Backend)
	v.SetDefault("storage.sqlite_path", d.Storage.SQLitePath)
	v.SetDefault("storage.postgres_url", d.Storage.PostgresURL)

	// Gemini
	v.SetDefault("gemini.model", d.Gemini.Model)
	v.SetDefault("gemini.api_base", d.Gemini.APIBase)

	// Scraper
	v.SetDefault("scraper.provider", d.Scraper.Provider)
	v.SetDefault("scraper.target", d.Scraper.Target)

	// Ingest
	v.SetDefault("ingest.poll_interval_ms", d.Ingest.PollIntervalMS)
	v.SetDefault("ingest.extract_images", d.Ingest.ExtractImages)
	v.SetDefault("ingest.transcribe", d.Ingest.Transcribe)

	// Events
	v.SetDefault("events.enabled", d.Events.Enabled)
	v.SetDefault("events.brokers", d.Events.Brokers)
	v.SetDefault("events.topic", d.Events.Topic)

	// API
	v.SetDefault("api.listen", d.API.Listen)
}
