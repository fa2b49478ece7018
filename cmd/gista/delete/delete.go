// Package deletecmder provides the delete command for removing stored
// conversations.
package deletecmder

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gistahq/gista/pkg/backend"
	"github.com/gistahq/gista/pkg/cliui"
	"github.com/gistahq/gista/pkg/config"
	"github.com/gistahq/gista/pkg/dotdir"
	"github.com/gistahq/gista/pkg/logger"
)

type deleteCommander struct {
	configDir string
	debug     bool

	cfg *config.Config
}

const deleteLongDesc string = `Delete stored conversations by id.

Deleting an id that does not exist is not an error, so retrying a
delete is safe.

Examples:
  gista delete 4f3a9c1b2d...
  gista delete 4f3a9c1b2d... 7e2b0d5f9a...`

const deleteShortDesc string = "Delete stored conversations"

func NewDeleteCmd() *cobra.Command {
	cmder := &deleteCommander{}

	cmd := &cobra.Command{
		Use:   "delete <id>...",
		Short: deleteShortDesc,
		Long:  deleteLongDesc,
		Args:  cobra.MinimumNArgs(1),
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
			return cmder.run(cmd.Context(), args)
		},
	}

	return cmd
}

func (c *deleteCommander) run(ctx context.Context, ids []string) error {
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

	for _, id := range ids {
		if err := driver.Delete(ctx, id); err != nil {
			return fmt.Errorf("deleting %s: %w", id, err)
		}
		fmt.Printf("  %s Deleted %s\n", cliui.SuccessMark, cliui.KeyStyle.Render(id))
	}

	// Drop the resume pointer if it references a deleted conversation.
	ddm := dotdir.NewManager()
	state, err := ddm.LoadResumeState(c.configDir)
	if err != nil || state == nil {
		return nil
	}
	for _, id := range ids {
		if state.ConversationID == id {
			log.Debug("clearing resume state", "id", id)
			return ddm.ClearResumeState(c.configDir)
		}
	}

	return nil
}
