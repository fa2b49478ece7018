package ingest

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/gistahq/gista/pkg/conversation"
)

// imageLink matches markdown image references with absolute URLs.
var imageLink = regexp.MustCompile(`!\[[^\]]*\]\((https?://[^)\s]+)\)`)

var imageClient = &http.Client{Timeout: 2 * time.Minute}

// isMarkdown guards the image pass. The pass only applies to files the
// pipeline itself produced or was handed as documents, so the extension is
// an adequate signal here.
func isMarkdown(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".md" || ext == ".markdown"
}

// ingestMarkdownImages scans a markdown document for embedded image
// references and uploads each referenced image as an additional artifact,
// in document order.
func (i *Ingestor) ingestMarkdownImages(ctx context.Context, conv *conversation.Conversation, mdPath string) ([]ReadyArtifact, error) {
	content, err := os.ReadFile(mdPath)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", mdPath, err)
	}

	matches := imageLink.FindAllStringSubmatch(string(content), -1)
	if len(matches) == 0 {
		return nil, nil
	}

	var artifacts []ReadyArtifact
	seen := make(map[string]bool)
	for _, match := range matches {
		imageURL := match[1]
		if seen[imageURL] {
			continue
		}
		seen[imageURL] = true

		local, err := i.downloadImage(ctx, imageURL)
		if err != nil {
			return artifacts, err
		}

		ready, err := i.uploadOne(ctx, conv, local, imageURL)
		if err != nil {
			return artifacts, err
		}
		artifacts = append(artifacts, ready)

		i.logger.Debug("ingested embedded image",
			zap.String("document", mdPath),
			zap.String("image", imageURL),
		)
	}

	return artifacts, nil
}

func (i *Ingestor) downloadImage(ctx context.Context, imageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return "", fmt.Errorf("building image request: %w", err)
	}

	resp, err := imageClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("downloading image %s: %w", imageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("downloading image %s: unexpected status %d", imageURL, resp.StatusCode)
	}

	ext := ".img"
	if parsed, err := url.Parse(imageURL); err == nil {
		if e := filepath.Ext(parsed.Path); e != "" {
			ext = e
		}
	}

	out, err := os.CreateTemp("", "gista-image-*"+ext)
	if err != nil {
		return "", fmt.Errorf("creating image file: %w", err)
	}
	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()
		return "", fmt.Errorf("writing image file: %w", err)
	}
	if err := out.Close(); err != nil {
		return "", fmt.Errorf("closing image file: %w", err)
	}
	return out.Name(), nil
}
