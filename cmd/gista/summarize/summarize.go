// Package summarizecmder provides the summarize command: ingest sources,
// ask the model about them, and persist the conversation.
package summarizecmder

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/gistahq/gista/pkg/backend"
	"github.com/gistahq/gista/pkg/cliui"
	"github.com/gistahq/gista/pkg/config"
	"github.com/gistahq/gista/pkg/dotdir"
	"github.com/gistahq/gista/pkg/logger"
	"github.com/gistahq/gista/pkg/orchestrator"
)

var questionPrompt = lipgloss.NewStyle().Foreground(lipgloss.Color("82")).Bold(true).Render("you> ")

// defaultPrompt is used when no prompt is given.
const defaultPrompt = "Summarize the provided sources. Cover the main arguments, key facts, and conclusions."

type summarizeCommander struct {
	files         []string
	urls          []string
	id            string
	prompt        string
	model         string
	namespace     string
	question      bool
	saveHistory   bool
	overwrite     bool
	extractImages bool
	transcribe    bool
	cookiesFile   string
	configDir     string
	debug         bool

	cfg    *config.Config
	logger *slog.Logger
}

const summarizeLongDesc string = `Summarize local files and URLs in a persistent conversation.

Sources are uploaded once: reopening a conversation with the same inputs
reuses what was already ingested, and adding new inputs ingests only the
difference. Conversation identity derives from the input set, or use --id
to name it explicitly.

URLs route by shape: video pages fetch captions, PDF links download the
document, everything else goes through the configured scraper.

Examples:
  gista summarize -f report.pdf
  gista summarize -f report.pdf -f appendix.pdf -p "What changed since Q1?"
  gista summarize -u https://example.com/post -q
  gista summarize -q                    Resume the last conversation`

const summarizeShortDesc string = "Summarize files and URLs in a persistent conversation"

func NewSummarizeCmd() *cobra.Command {
	cmder := &summarizeCommander{}

	cmd := &cobra.Command{
		Use:   "summarize",
		Short: summarizeShortDesc,
		Long:  summarizeLongDesc,
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
			if !cmd.Flags().Changed("extract-images") {
				cmder.extractImages = cmder.cfg.Ingest.ExtractImages
			}
			if !cmd.Flags().Changed("transcribe") {
				cmder.transcribe = cmder.cfg.Ingest.Transcribe
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd.Context())
		},
	}

	cmd.Flags().StringArrayVarP(&cmder.files, "file", "f", nil, "Local file to ingest (repeatable)")
	cmd.Flags().StringArrayVarP(&cmder.urls, "url", "u", nil, "URL to ingest (repeatable)")
	cmd.Flags().StringVar(&cmder.id, "id", "", "Explicit conversation id")
	cmd.Flags().StringVarP(&cmder.prompt, "prompt", "p", "", "Prompt to send (default: a summary request)")
	cmd.Flags().StringVarP(&cmder.model, "model", "m", "", "Override the configured Gemini model")
	cmd.Flags().BoolVarP(&cmder.question, "question", "q", false, "Ask follow-up questions interactively")
	cmd.Flags().BoolVar(&cmder.saveHistory, "save-history", false, "Export history JSON and markdown transcript")
	cmd.Flags().BoolVar(&cmder.overwrite, "overwrite", false, "Discard persisted state and start over")
	cmd.Flags().BoolVar(&cmder.extractImages, "extract-images", false, "Ingest images embedded in markdown sources")
	cmd.Flags().BoolVar(&cmder.transcribe, "transcribe", false, "Transcribe audio when a video has no captions")
	cmd.Flags().StringVar(&cmder.cookiesFile, "cookies", "", "Cookies file for gated video content")

	return cmd
}

func (c *summarizeCommander) run(ctx context.Context) error {
	// Pretty slog for command-level messages; zap for the backend services.
	c.logger = logger.New(
		logger.WithPretty(true),
		logger.WithWriter(os.Stderr),
		logger.WithDebug(c.debug),
	)
	zlog := logger.NewLogger(c.debug)
	defer zlog.Sync() //nolint:errcheck

	ddm := dotdir.NewManager()

	// With no inputs and no id, fall back to the last conversation.
	if len(c.files) == 0 && len(c.urls) == 0 && c.id == "" {
		state, err := ddm.LoadResumeState(c.configDir)
		if err != nil {
			return err
		}
		if state == nil {
			return fmt.Errorf("nothing to summarize: provide --file, --url, or --id")
		}
		c.id = state.ConversationID
		c.files = state.Files
		c.urls = state.URLs
		if c.namespace == "" {
			c.namespace = state.Namespace
		}
		c.logger.Debug("resuming last conversation", "id", c.id)
	}

	b, err := backend.New(ctx, c.cfg, zlog, backend.Options{
		ExtractImages: c.extractImages,
		Transcribe:    c.transcribe,
		CookiesFile:   c.cookiesFile,
		Model:         c.model,
	})
	if err != nil {
		return err
	}
	defer b.Close()

	var active *orchestrator.Active
	err = cliui.Step(os.Stderr, "preparing sources", func() error {
		var openErr error
		active, openErr = b.Orchestrator.Open(ctx, orchestrator.Request{
			Files:     c.files,
			URLs:      c.urls,
			ID:        c.id,
			Namespace: c.namespace,
			Overwrite: c.overwrite,
		})
		return openErr
	})
	if err != nil {
		return err
	}

	prompt := c.prompt
	if prompt == "" && !active.Resumed() {
		prompt = defaultPrompt
	}

	if prompt != "" {
		if err := c.exchange(ctx, active, prompt); err != nil {
			return err
		}
	}

	if c.question {
		if err := c.questionLoop(ctx, active); err != nil {
			return err
		}
	}

	if err := active.Save(ctx); err != nil {
		return err
	}

	resume := &dotdir.ResumeState{
		ConversationID: active.Conversation.ID,
		Namespace:      active.Conversation.Namespace,
		Files:          active.Conversation.Files,
		URLs:           active.Conversation.URLs,
	}
	if err := ddm.SaveResumeState(resume, c.configDir); err != nil {
		c.logger.Warn("saving resume state failed", "error", err)
	}

	if c.saveHistory {
		historyPath, transcriptPath, err := active.Conversation.Export()
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "  wrote %s\n  wrote %s\n", historyPath, transcriptPath)
	}

	return nil
}

// exchange sends one prompt and renders the reply.
func (c *summarizeCommander) exchange(ctx context.Context, active *orchestrator.Active, prompt string) error {
	reply, err := active.Send(ctx, prompt)
	if err != nil {
		return err
	}

	rendered, err := cliui.RenderMarkdown(reply)
	if err != nil {
		rendered = reply
	}
	fmt.Print(rendered)
	return nil
}

// questionLoop reads follow-up questions from stdin until EOF or an empty
// line. Each answer is rendered and the conversation saved, so an
// interrupted session loses at most the in-flight exchange.
func (c *summarizeCommander) questionLoop(ctx context.Context, active *orchestrator.Active) error {
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print(questionPrompt)
		if !scanner.Scan() {
			fmt.Println()
			return scanner.Err()
		}

		question := strings.TrimSpace(scanner.Text())
		if question == "" || question == "/quit" || question == "/exit" {
			return nil
		}

		if err := c.exchange(ctx, active, question); err != nil {
			return err
		}
		if err := active.Save(ctx); err != nil {
			return err
		}
	}
}
