// Package acquire turns source URLs into local files ready for upload.
//
// The routing decision lives here: video-hosting URLs go to the caption
// pipeline, PDF URLs to the document downloader, and everything else to the
// configured scraper backend. The backends themselves are interchangeable
// implementations of Acquirer.
package acquire

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

// Acquirer fetches a URL and returns the path of the local file it produced.
type Acquirer interface {
	Fetch(ctx context.Context, rawURL string) (string, error)
}

// Scraper backend names accepted in configuration.
const (
	ScraperJina     = "jina"
	ScraperReadable = "readable"
)

// videoHosts are domains routed to the caption pipeline. Subdomains match.
var videoHosts = []string{
	"youtube.com",
	"youtu.be",
	"bilibili.com",
	"vimeo.com",
}

// Router dispatches URLs to acquisition backends by URL shape.
type Router struct {
	Captions  Acquirer
	Documents Acquirer
	Scraper   Acquirer
}

// Fetch routes the URL to the matching backend.
func (r *Router) Fetch(ctx context.Context, rawURL string) (string, error) {
	switch {
	case IsVideoURL(rawURL):
		if r.Captions == nil {
			return "", fmt.Errorf("no caption backend configured for %s", rawURL)
		}
		return r.Captions.Fetch(ctx, rawURL)

	case IsDocumentURL(rawURL):
		if r.Documents == nil {
			return "", fmt.Errorf("no document backend configured for %s", rawURL)
		}
		return r.Documents.Fetch(ctx, rawURL)

	default:
		if r.Scraper == nil {
			return "", fmt.Errorf("no scraper backend configured for %s", rawURL)
		}
		return r.Scraper.Fetch(ctx, rawURL)
	}
}

// IsVideoURL reports whether the URL belongs to a known video host.
func IsVideoURL(rawURL string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	host := strings.ToLower(parsed.Hostname())
	for _, h := range videoHosts {
		if host == h || strings.HasSuffix(host, "."+h) {
			return true
		}
	}
	return false
}

// IsDocumentURL reports whether the URL points at a PDF document.
func IsDocumentURL(rawURL string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return strings.HasSuffix(strings.ToLower(parsed.Path), ".pdf")
}

// sanitizeTitle strips characters that make awkward filenames, mirroring
// how caption downloads name their output.
func sanitizeTitle(title string) string {
	var b strings.Builder
	for _, r := range title {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == ' ', r == '-', r == '_':
			b.WriteRune(r)
		}
	}
	out := strings.TrimSpace(b.String())
	if out == "" {
		return "untitled"
	}
	return out
}
