// Package configcmder provides the config command for managing persistent
// gista configuration stored in the .gista/ directory.
package configcmder

import (
	"github.com/spf13/cobra"
)

const configLongDesc string = `Manage persistent gista configuration.

Configuration is stored as config.toml in the .gista/ directory and
provides default values for command flags. CLI flags always take
precedence over config file values, and GISTA_ environment variables
override the file for the serve command.

Keys use dotted notation matching the TOML section structure:
  namespace,
  storage.backend, storage.sqlite_path, storage.postgres_url,
  gemini.model, gemini.api_base,
  scraper.provider, scraper.target,
  ingest.poll_interval_ms, ingest.extract_images, ingest.transcribe,
  events.enabled, events.brokers, events.topic,
  api.listen

Use subcommands to get, set, or list configuration values:
  gista config set <key> <value>    Set a configuration value
  gista config get <key>            Get a configuration value
  gista config list                 List all configuration values

Examples:
  gista config set storage.backend postgres
  gista config set gemini.model models/gemini-1.5-pro
  gista config get scraper.provider
  gista config list`

const configShortDesc string = "Manage persistent gista configuration"

func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: configShortDesc,
		Long:  configLongDesc,
	}

	cmd.AddCommand(newSetCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newListCmd())

	return cmd
}
