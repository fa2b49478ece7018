// Package backend assembles the configured storage, provider, acquisition,
// and eventing components into a runnable orchestrator. Command packages
// call into it so flag parsing stays separate from wiring.
package backend

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/gistahq/gista/pkg/acquire"
	"github.com/gistahq/gista/pkg/config"
	"github.com/gistahq/gista/pkg/eventstream"
	"github.com/gistahq/gista/pkg/eventstream/kafka"
	"github.com/gistahq/gista/pkg/eventstream/nop"
	"github.com/gistahq/gista/pkg/ingest"
	"github.com/gistahq/gista/pkg/llm/gemini"
	"github.com/gistahq/gista/pkg/orchestrator"
	"github.com/gistahq/gista/pkg/storage"
	"github.com/gistahq/gista/pkg/storage/inmemory"
	"github.com/gistahq/gista/pkg/storage/postgres"
	"github.com/gistahq/gista/pkg/storage/sqlite"
)

// apiKeyEnv names the environment variable holding the Gemini API key. The
// key never lives in the config file.
const apiKeyEnv = "GEMINI_API_KEY"

// Options tweaks wiring beyond what the config file carries.
type Options struct {
	// ExtractImages enables the markdown image pass for this run.
	ExtractImages bool

	// Transcribe enables audio transcription fallback for caption-less
	// videos.
	Transcribe bool

	// CookiesFile is passed to the caption downloader for gated videos.
	CookiesFile string

	// Model overrides the configured Gemini model.
	Model string
}

// Backend holds the wired components for one process.
type Backend struct {
	Driver       storage.Driver
	Orchestrator *orchestrator.Orchestrator
	Sessions     *orchestrator.SessionStore

	events eventstream.Publisher
}

// New wires a Backend from configuration. Close releases the storage driver
// and event publisher.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger, opts Options) (*Backend, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	driver, err := NewDriver(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	apiKey := os.Getenv(apiKeyEnv)
	if apiKey == "" {
		driver.Close()
		return nil, fmt.Errorf("%s not set", apiKeyEnv)
	}

	model := cfg.Gemini.Model
	if opts.Model != "" {
		model = opts.Model
	}
	provider := gemini.NewClient(apiKey,
		gemini.WithModel(model),
		gemini.WithBase(cfg.Gemini.APIBase),
	)

	acquirer, err := newAcquirer(cfg, opts)
	if err != nil {
		driver.Close()
		return nil, err
	}

	events := newPublisher(cfg)

	ingestor := ingest.New(provider, acquirer, logger, ingest.Options{
		ExtractImages: opts.ExtractImages,
		PollInterval:  time.Duration(cfg.Ingest.PollIntervalMS) * time.Millisecond,
	})

	orch := orchestrator.New(driver, provider, ingestor, events, logger)

	return &Backend{
		Driver:       driver,
		Orchestrator: orch,
		Sessions:     orchestrator.NewSessionStore(orch, logger),
		events:       events,
	}, nil
}

// Close releases the backend's resources.
func (b *Backend) Close() error {
	if err := b.events.Close(); err != nil {
		return err
	}
	return b.Driver.Close()
}

// NewDriver opens the configured storage backend. Exported for commands
// that only need the store (list, show, delete).
func NewDriver(ctx context.Context, cfg *config.Config, logger *zap.Logger) (storage.Driver, error) {
	switch cfg.Storage.Backend {
	case "sqlite", "":
		driver, err := sqlite.NewDriver(cfg.Storage.SQLitePath, logger)
		if err != nil {
			return nil, fmt.Errorf("opening sqlite storage: %w", err)
		}
		return driver, nil

	case "postgres":
		driver, err := postgres.NewDriver(ctx, cfg.Storage.PostgresURL, logger)
		if err != nil {
			return nil, fmt.Errorf("opening postgres storage: %w", err)
		}
		return driver, nil

	case "memory":
		return inmemory.NewDriver(logger), nil

	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

// newAcquirer builds the URL acquisition router: a caption downloader for
// video hosts, a PDF fetcher for documents, and the configured scraper for
// everything else. Acquired sources land in a per-run temp directory.
func newAcquirer(cfg *config.Config, opts Options) (*acquire.Router, error) {
	outputDir, err := os.MkdirTemp("", "gista-sources-")
	if err != nil {
		return nil, fmt.Errorf("creating acquisition dir: %w", err)
	}

	var scraper acquire.Acquirer
	switch cfg.Scraper.Provider {
	case acquire.ScraperJina:
		scraper = &acquire.Jina{
			Target:    cfg.Scraper.Target,
			APIKey:    os.Getenv("JINA_API_KEY"),
			OutputDir: outputDir,
		}
	default:
		scraper = &acquire.Readable{OutputDir: outputDir}
	}

	return &acquire.Router{
		Captions: &acquire.Captions{
			CookiesFile:         opts.CookiesFile,
			EnableTranscription: opts.Transcribe,
			OutputDir:           outputDir,
		},
		Documents: &acquire.Document{OutputDir: outputDir},
		Scraper:   scraper,
	}, nil
}

func newPublisher(cfg *config.Config) eventstream.Publisher {
	if !cfg.Events.Enabled || len(cfg.Events.Brokers) == 0 {
		return nop.NewPublisher()
	}
	return kafka.NewPublisher(cfg.Events.Brokers, cfg.Events.Topic)
}
