package acquire

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Document downloads PDF documents and optionally converts them to markdown
// through a marker-style conversion service.
type Document struct {
	// ConverterURL is the markdown conversion endpoint. Conversion is
	// skipped when empty or Convert is false.
	ConverterURL string

	// Convert enables post-download markdown conversion.
	Convert bool

	// OutputDir is where downloaded files land. Defaults to CWD.
	OutputDir string

	// Client is the HTTP client. Defaults to a 5 minute timeout client.
	Client *http.Client
}

// Fetch downloads the PDF under its own basename. With conversion enabled
// the produced file is the converted "<name>.md" instead.
func (d *Document) Fetch(ctx context.Context, rawURL string) (string, error) {
	client := d.Client
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Minute}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("building download request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("downloading %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("downloading %s: unexpected status %d", rawURL, resp.StatusCode)
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parsing %s: %w", rawURL, err)
	}
	name := filepath.Base(parsed.Path)
	if name == "." || name == "/" || name == "" {
		name = "document.pdf"
	}

	path := filepath.Join(d.OutputDir, name)
	out, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating %s: %w", path, err)
	}
	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	if err := out.Close(); err != nil {
		return "", fmt.Errorf("closing %s: %w", path, err)
	}

	if !d.Convert || d.ConverterURL == "" {
		return path, nil
	}
	return d.convert(ctx, client, path)
}

func (d *Document) convert(ctx context.Context, client *http.Client, pdfPath string) (string, error) {
	pdf, err := os.ReadFile(pdfPath)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", pdfPath, err)
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("pdf_file", filepath.Base(pdfPath))
	if err != nil {
		return "", fmt.Errorf("building conversion form: %w", err)
	}
	if _, err := part.Write(pdf); err != nil {
		return "", fmt.Errorf("building conversion form: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("building conversion form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.ConverterURL, &body)
	if err != nil {
		return "", fmt.Errorf("building conversion request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("converting %s: %w", pdfPath, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("converting %s: unexpected status %d", pdfPath, resp.StatusCode)
	}

	var converted struct {
		Markdown string `json:"markdown"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&converted); err != nil {
		return "", fmt.Errorf("parsing conversion response for %s: %w", pdfPath, err)
	}

	mdPath := strings.TrimSuffix(pdfPath, filepath.Ext(pdfPath)) + ".md"
	if err := os.WriteFile(mdPath, []byte(converted.Markdown), 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", mdPath, err)
	}
	return mdPath, nil
}
