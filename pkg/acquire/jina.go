package acquire

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// DefaultJinaTarget is the hosted reader endpoint.
const DefaultJinaTarget = "https://r.jina.ai/"

// Jina scrapes pages through a reader-style endpoint that returns extracted
// markdown as JSON.
type Jina struct {
	// Target is the reader endpoint. Defaults to DefaultJinaTarget.
	Target string

	// APIKey is sent as a bearer token when set.
	APIKey string

	// OutputDir is where produced markdown files land. Defaults to CWD.
	OutputDir string

	// Client is the HTTP client. Defaults to a 2 minute timeout client.
	Client *http.Client
}

type jinaResponse struct {
	Data struct {
		Title   string `json:"title"`
		Content string `json:"content"`
	} `json:"data"`
}

// Fetch posts the URL to the reader endpoint and writes the returned
// markdown as "<title>.jina.md".
func (j *Jina) Fetch(ctx context.Context, rawURL string) (string, error) {
	target := j.Target
	if target == "" {
		target = DefaultJinaTarget
	}
	client := j.Client
	if client == nil {
		client = &http.Client{Timeout: 2 * time.Minute}
	}

	form := url.Values{"url": {rawURL}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("building reader request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if j.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+j.APIKey)
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("scraping %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("scraping %s: unexpected status %d", rawURL, resp.StatusCode)
	}

	var parsed jinaResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("parsing reader response for %s: %w", rawURL, err)
	}

	path := filepath.Join(j.OutputDir, sanitizeTitle(parsed.Data.Title)+".jina.md")
	if err := os.WriteFile(path, []byte(parsed.Data.Content), 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	return path, nil
}
