package config

const (
	defaultStorageBackend = "sqlite"
	defaultSQLitePath     = "gista.db"

	defaultGeminiModel = "models/gemini-1.5-flash"
	defaultGeminiBase  = "https://generativelanguage.googleapis.com"

	defaultScraperProvider = "readable"

	defaultPollIntervalMS = 2000

	defaultEventsTopic = "gista.conversations"

	defaultAPIListen = ":8090"
)

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		Storage: StorageConfig{
			Backend:    defaultStorageBackend,
			SQLitePath: defaultSQLitePath,
		},
		Gemini: GeminiConfig{
			Model:   defaultGeminiModel,
			APIBase: defaultGeminiBase,
		},
		Scraper: ScraperConfig{
			Provider: defaultScraperProvider,
		},
		Ingest: IngestConfig{
			PollIntervalMS: defaultPollIntervalMS,
		},
		Events: EventsConfig{
			Topic: defaultEventsTopic,
		},
		API: APIConfig{
			Listen: defaultAPIListen,
		},
	}
}
