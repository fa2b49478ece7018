// Package gistacmder
package gistacmder

import (
	"github.com/spf13/cobra"

	configcmder "github.com/gistahq/gista/cmd/gista/config"
	deletecmder "github.com/gistahq/gista/cmd/gista/delete"
	listcmder "github.com/gistahq/gista/cmd/gista/list"
	servecmder "github.com/gistahq/gista/cmd/gista/serve"
	showcmder "github.com/gistahq/gista/cmd/gista/show"
	summarizecmder "github.com/gistahq/gista/cmd/gista/summarize"
)

const gistaLongDesc string = `Gista turns documents, web pages, and videos into summarized,
resumable conversations.

Feed it local files and URLs:
  gista summarize -f report.pdf -u https://example.com/post
  gista summarize -f report.pdf -q      Ask follow-up questions interactively
  gista list                            List stored conversations
  gista show <id>                       Show a conversation transcript
  gista serve                           Run the HTTP API server`

const gistaShortDesc string = "Gista - conversational source summarization"

func NewGistaCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gista",
		Short: gistaShortDesc,
		Long:  gistaLongDesc,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Override path to .gista/ config directory")
	cmd.PersistentFlags().StringP("namespace", "n", "", "Storage namespace to operate in")

	// Add subcommands
	cmd.AddCommand(summarizecmder.NewSummarizeCmd())
	cmd.AddCommand(listcmder.NewListCmd())
	cmd.AddCommand(showcmder.NewShowCmd())
	cmd.AddCommand(deletecmder.NewDeleteCmd())
	cmd.AddCommand(servecmder.NewServeCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())

	return cmd
}
