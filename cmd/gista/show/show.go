// Package showcmder provides the show command for rendering a stored
// conversation transcript.
package showcmder

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gistahq/gista/pkg/backend"
	"github.com/gistahq/gista/pkg/cliui"
	"github.com/gistahq/gista/pkg/config"
	"github.com/gistahq/gista/pkg/logger"
	"github.com/gistahq/gista/pkg/storage"
)

type showCommander struct {
	raw       bool
	configDir string
	debug     bool

	cfg *config.Config
}

const showLongDesc string = `Show a stored conversation as a transcript.

The transcript renders user and model turns as markdown, with uploaded
sources listed by their original path or URL. Use --raw to skip terminal
styling, for piping into a file.

Examples:
  gista show 4f3a9c1b2d...
  gista show 4f3a9c1b2d... --raw > transcript.md`

const showShortDesc string = "Show a conversation transcript"

func NewShowCmd() *cobra.Command {
	cmder := &showCommander{}

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: showShortDesc,
		Long:  showLongDesc,
		Args:  cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			cmder.configDir, _ = cmd.Flags().GetString("config-dir")
			cmder.debug, _ = cmd.Flags().GetBool("debug")

			cfger, err := config.NewConfiger(cmder.configDir)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			cmder.cfg, err = cfger.LoadConfig()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd.Context(), args[0])
		},
	}

	cmd.Flags().BoolVar(&cmder.raw, "raw", false, "Print plain markdown without terminal styling")

	return cmd
}

func (c *showCommander) run(ctx context.Context, id string) error {
	log := logger.New(
		logger.WithPretty(true),
		logger.WithWriter(os.Stderr),
		logger.WithDebug(c.debug),
	)
	zlog := logger.NewLogger(c.debug)
	defer zlog.Sync() //nolint:errcheck

	driver, err := backend.NewDriver(ctx, c.cfg, zlog)
	if err != nil {
		return err
	}
	defer driver.Close()

	conv, err := driver.Load(ctx, id)
	if err != nil {
		var notFound storage.NotFoundError
		if errors.As(err, &notFound) {
			return fmt.Errorf("no conversation with id %q", id)
		}
		return err
	}
	log.Debug("loaded conversation", "id", id, "turns", len(conv.Turns))

	transcript := conv.RenderMarkdown()
	if c.raw {
		fmt.Print(transcript)
		return nil
	}

	rendered, err := cliui.RenderMarkdown(transcript)
	if err != nil {
		rendered = transcript
	}
	fmt.Print(rendered)
	return nil
}
