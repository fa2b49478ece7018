// Package listcmder provides the list command for browsing stored
// conversations.
package listcmder

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gistahq/gista/pkg/backend"
	"github.com/gistahq/gista/pkg/cliui"
	"github.com/gistahq/gista/pkg/config"
	"github.com/gistahq/gista/pkg/logger"
	"github.com/gistahq/gista/pkg/storage"
	"github.com/gistahq/gista/pkg/utils"
)

type listCommander struct {
	filter    string
	offset    int
	limit     int
	namespace string
	configDir string
	debug     bool

	cfg *config.Config
}

const listLongDesc string = `List stored conversations, newest first.

Each row shows the conversation id, when it was last saved, and the
inputs it covers. Use --filter to match a substring against files, urls,
and acquired source paths.

Examples:
  gista list
  gista list --filter report.pdf
  gista list --offset 20 --limit 20`

const listShortDesc string = "List stored conversations"

func NewListCmd() *cobra.Command {
	cmder := &listCommander{}

	cmd := &cobra.Command{
		Use:   "list",
		Short: listShortDesc,
		Long:  listLongDesc,
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			cmder.configDir, _ = cmd.Flags().GetString("config-dir")
			cmder.debug, _ = cmd.Flags().GetBool("debug")
			cmder.namespace, _ = cmd.Flags().GetString("namespace")

			cfger, err := config.NewConfiger(cmder.configDir)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			cmder.cfg, err = cfger.LoadConfig()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			if cmder.namespace == "" {
				cmder.namespace = cmder.cfg.Namespace
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&cmder.filter, "filter", "", "Substring to match against files, urls, and source paths")
	cmd.Flags().IntVar(&cmder.offset, "offset", 0, "Rows to skip")
	cmd.Flags().IntVar(&cmder.limit, "limit", 50, "Maximum rows to return (0 = all)")

	return cmd
}

func (c *listCommander) run(ctx context.Context) error {
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

	summaries, err := driver.Query(ctx, storage.QueryOptions{
		Offset:    c.offset,
		Limit:     c.limit,
		Filter:    c.filter,
		Namespace: c.namespace,
	})
	if err != nil {
		return err
	}
	log.Debug("queried conversations", "count", len(summaries), "filter", c.filter)

	if len(summaries) == 0 {
		fmt.Printf("  %s No conversations found.\n", cliui.DimStyle.Render("●"))
		return nil
	}

	fmt.Println()
	for _, s := range summaries {
		inputs := append(append([]string{}, s.Files...), s.URLs...)
		fmt.Printf("  %s  %s  %s\n",
			cliui.KeyStyle.Render(utils.Truncate(s.ID, 16)),
			cliui.DimStyle.Render(s.Timestamp.Format("2006-01-02 15:04")),
			cliui.ValueStyle.Render(utils.Truncate(strings.Join(inputs, ", "), 60)),
		)
		fmt.Printf("      %s\n", cliui.DimStyle.Render(fmt.Sprintf("%d turns", s.TurnCount)))
	}
	fmt.Println()

	return nil
}
