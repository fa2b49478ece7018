package acquire

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"golang.org/x/net/html"
)

// Readable extracts page content locally: it fetches the page, strips
// boilerplate elements, and writes the remaining text as markdown. Used when
// no hosted scraper is configured.
type Readable struct {
	// OutputDir is where produced markdown files land. Defaults to CWD.
	OutputDir string

	// Client is the HTTP client. Defaults to a 2 minute timeout client.
	Client *http.Client
}

// Fetch downloads the page and writes "<title>.readable.md".
func (r *Readable) Fetch(ctx context.Context, rawURL string) (string, error) {
	client := r.Client
	if client == nil {
		client = &http.Client{Timeout: 2 * time.Minute}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("building page request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetching %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetching %s: unexpected status %d", rawURL, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", rawURL, err)
	}

	title, text, err := extractText(body)
	if err != nil {
		return "", fmt.Errorf("extracting content from %s: %w", rawURL, err)
	}
	if title == "" {
		title = "untitled"
	}

	markdown := fmt.Sprintf("# %s\n\n%s", title, text)
	path := filepath.Join(r.OutputDir, sanitizeTitle(title)+".readable.md")
	if err := os.WriteFile(path, []byte(markdown), 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	return path, nil
}

// skippedTags are elements whose text is boilerplate rather than content.
var skippedTags = map[string]bool{
	"script": true,
	"style":  true,
	"nav":    true,
	"footer": true,
	"header": true,
	"aside":  true,
}

func extractText(page []byte) (title, text string, err error) {
	doc, err := html.Parse(strings.NewReader(string(page)))
	if err != nil {
		return "", "", fmt.Errorf("parsing HTML: %w", err)
	}

	title = strings.TrimSpace(findTitle(doc))

	var b strings.Builder
	collectText(doc, &b)
	return title, cleanWhitespace(b.String()), nil
}

func findTitle(n *html.Node) string {
	if n.Type == html.ElementNode && n.Data == "title" {
		return nodeText(n)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if t := findTitle(c); t != "" {
			return t
		}
	}
	return ""
}

func collectText(n *html.Node, b *strings.Builder) {
	if n.Type == html.ElementNode && (skippedTags[n.Data] || n.Data == "title") {
		return
	}
	if n.Type == html.TextNode {
		b.WriteString(n.Data)
		b.WriteString(" ")
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, b)
	}
}

func nodeText(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		b.WriteString(nodeText(c))
	}
	return b.String()
}

var whitespaceRun = regexp.MustCompile(`[ \t]+`)

func cleanWhitespace(s string) string {
	lines := strings.Split(s, "\n")
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(whitespaceRun.ReplaceAllString(line, " "))
		if line != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}
