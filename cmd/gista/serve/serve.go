// Package servecmder provides the serve command for running the HTTP API
// server.
package servecmder

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gistahq/gista/api"
	"github.com/gistahq/gista/pkg/backend"
	"github.com/gistahq/gista/pkg/config"
	"github.com/gistahq/gista/pkg/logger"
)

type serveCommander struct {
	listen    string
	configDir string
	debug     bool

	cfg    *config.Config
	logger *zap.Logger
}

const serveLongDesc string = `Run the gista HTTP API server.

Serves conversation open, message, history, list, and delete endpoints
over HTTP. Configuration comes from config.toml with GISTA_ environment
variable overrides, so deployments can set GISTA_STORAGE_BACKEND or
GISTA_API_LISTEN without touching the file.

Examples:
  gista serve
  gista serve --listen :9000
  GISTA_STORAGE_BACKEND=postgres gista serve`

const serveShortDesc string = "Run the HTTP API server"

func NewServeCmd() *cobra.Command {
	cmder := &serveCommander{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			cmder.configDir, _ = cmd.Flags().GetString("config-dir")
			cmder.debug, _ = cmd.Flags().GetBool("debug")

			v, err := config.InitViper(cmder.configDir)
			if err != nil {
				return err
			}

			cmder.cfg = &config.Config{
				Version:   v.GetInt("version"),
				Namespace: v.GetString("namespace"),
				Storage: config.StorageConfig{
					Backend:     v.GetString("storage.backend"),
					SQLitePath:  v.GetString("storage.sqlite_path"),
					PostgresURL: v.GetString("storage.postgres_url"),
				},
				Gemini: config.GeminiConfig{
					Model:   v.GetString("gemini.model"),
					APIBase: v.GetString("gemini.api_base"),
				},
				Scraper: config.ScraperConfig{
					Provider: v.GetString("scraper.provider"),
					Target:   v.GetString("scraper.target"),
				},
				Ingest: config.IngestConfig{
					PollIntervalMS: v.GetInt("ingest.poll_interval_ms"),
					ExtractImages:  v.GetBool("ingest.extract_images"),
					Transcribe:     v.GetBool("ingest.transcribe"),
				},
				Events: config.EventsConfig{
					Enabled: v.GetBool("events.enabled"),
					Brokers: v.GetStringSlice("events.brokers"),
					Topic:   v.GetString("events.topic"),
				},
				API: config.APIConfig{
					Listen: v.GetString("api.listen"),
				},
			}

			if !cmd.Flags().Changed("listen") {
				cmder.listen = cmder.cfg.API.Listen
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd.Context())
		},
	}

	cmd.Flags().StringVarP(&cmder.listen, "listen", "l", ":8090", "Address for the API server to listen on")

	return cmd
}

func (c *serveCommander) run(ctx context.Context) error {
	c.logger = logger.NewLogger(c.debug)
	defer c.logger.Sync() //nolint:errcheck

	b, err := backend.New(ctx, c.cfg, c.logger, backend.Options{
		ExtractImages: c.cfg.Ingest.ExtractImages,
		Transcribe:    c.cfg.Ingest.Transcribe,
	})
	if err != nil {
		return err
	}
	defer b.Close()

	server := api.NewServer(api.Config{ListenAddr: c.listen}, b.Sessions, b.Driver, c.logger)

	c.logger.Info("starting api server",
		zap.String("listen", c.listen),
		zap.String("storage", c.cfg.Storage.Backend),
		zap.Bool("events", c.cfg.Events.Enabled),
	)

	errChan := make(chan error, 1)
	go func() {
		if err := server.Run(); err != nil {
			errChan <- fmt.Errorf("api server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return err
	case sig := <-sigChan:
		c.logger.Info("received signal, shutting down", zap.String("signal", sig.String()))
		return server.Shutdown()
	}
}
