// Package gemini implements the llm.Provider boundary against the Google
// generativelanguage REST API: resumable file uploads, file state polling,
// and generateContent calls carrying the full turn history.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gistahq/gista/pkg/conversation"
	"github.com/gistahq/gista/pkg/llm"
)

const (
	// DefaultBase is the production API endpoint.
	DefaultBase = "https://generativelanguage.googleapis.com"

	// DefaultModel matches the reference deployment.
	DefaultModel = "models/gemini-1.5-flash"

	apiVersion = "v1beta"
)

// Client talks to the generativelanguage API. It implements llm.Provider.
type Client struct {
	apiKey string
	model  string
	base   string
	client *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithModel overrides the default model name.
func WithModel(model string) Option {
	return func(c *Client) {
		if model != "" {
			c.model = model
		}
	}
}

// WithBase overrides the API endpoint, used for tests against a local server.
func WithBase(base string) Option {
	return func(c *Client) {
		if base != "" {
			c.base = strings.TrimRight(base, "/")
		}
	}
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.client = hc
		}
	}
}

// NewClient creates a Gemini client with the given API key.
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey: apiKey,
		model:  DefaultModel,
		base:   DefaultBase,
		client: &http.Client{Timeout: 10 * time.Minute},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// UploadArtifact uploads a local file through the resumable upload protocol
// and returns the provider's handle for it. The returned state is usually
// PROCESSING; callers poll GetArtifactState until terminal.
func (c *Client) UploadArtifact(ctx context.Context, localPath, mimeType string) (*llm.Artifact, error) {
	data, err := os.ReadFile(localPath)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", localPath, err)
	}

	meta, err := json.Marshal(map[string]any{
		"file": map[string]any{"display_name": filepath.Base(localPath)},
	})
	if err != nil {
		return nil, fmt.Errorf("marshaling upload metadata: %w", err)
	}

	startURL := fmt.Sprintf("%s/upload/%s/files?key=%s", c.base, apiVersion, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, startURL, bytes.NewReader(meta))
	if err != nil {
		return nil, fmt.Errorf("building upload start request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Goog-Upload-Protocol", "resumable")
	req.Header.Set("X-Goog-Upload-Command", "start")
	req.Header.Set("X-Goog-Upload-Header-Content-Length", strconv.Itoa(len(data)))
	req.Header.Set("X-Goog-Upload-Header-Content-Type", mimeType)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("starting upload for %s: %w", localPath, err)
	}
	io.Copy(io.Discard, resp.Body) //nolint:errcheck
	resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("starting upload for %s: unexpected status %d", localPath, resp.StatusCode)
	}

	uploadURL := resp.Header.Get("X-Goog-Upload-URL")
	if uploadURL == "" {
		return nil, fmt.Errorf("starting upload for %s: missing upload url", localPath)
	}

	req, err = http.NewRequestWithContext(ctx, http.MethodPost, uploadURL, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("building upload request: %w", err)
	}
	req.Header.Set("Content-Type", mimeType)
	req.Header.Set("X-Goog-Upload-Command", "upload, finalize")
	req.Header.Set("X-Goog-Upload-Offset", "0")

	resp, err = c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("uploading %s: %w", localPath, err)
	}
	defer resp.Body.Close()

	var uploaded uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&uploaded); err != nil {
		return nil, fmt.Errorf("parsing upload response for %s: %w", localPath, err)
	}
	if uploaded.File.URI == "" {
		return nil, fmt.Errorf("uploading %s: response missing file uri", localPath)
	}

	return &llm.Artifact{
		URI:      uploaded.File.URI,
		MIMEType: mimeType,
		State:    mapState(uploaded.File.State),
	}, nil
}

// GetArtifactState queries files.get for the artifact's processing state.
func (c *Client) GetArtifactState(ctx context.Context, uri string) (llm.ArtifactState, error) {
	target := uri
	if !strings.HasPrefix(target, "http") {
		target = fmt.Sprintf("%s/%s/%s", c.base, apiVersion, strings.TrimPrefix(uri, "/"))
	}
	sep := "?"
	if strings.Contains(target, "?") {
		sep = "&"
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target+sep+"key="+c.apiKey, nil)
	if err != nil {
		return "", fmt.Errorf("building file state request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("querying state of %s: %w", uri, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("querying state of %s: unexpected status %d", uri, resp.StatusCode)
	}

	var file fileResource
	if err := json.NewDecoder(resp.Body).Decode(&file); err != nil {
		return "", fmt.Errorf("parsing file state for %s: %w", uri, err)
	}

	return mapState(file.State), nil
}

// StartSession opens a chat session seeded with history. The session keeps
// its own copy of the turns and grows it with each exchange.
func (c *Client) StartSession(_ context.Context, history []conversation.Turn) (llm.Session, error) {
	s := &session{client: c}
	s.history = append(s.history, history...)
	return s, nil
}

type session struct {
	client  *Client
	history []conversation.Turn
}

// Send submits the full history plus the prompt and appends both the user
// and model turns to the session on success.
func (s *session) Send(ctx context.Context, text string) (string, error) {
	userTurn := conversation.NewTextTurn(conversation.RoleUser, text)

	contents := make([]content, 0, len(s.history)+1)
	for _, turn := range append(append([]conversation.Turn{}, s.history...), userTurn) {
		contents = append(contents, turnToContent(turn))
	}

	body, err := json.Marshal(generateRequest{Contents: contents})
	if err != nil {
		return "", fmt.Errorf("marshaling generate request: %w", err)
	}

	url := fmt.Sprintf("%s/%s/%s:generateContent?key=%s", s.client.base, apiVersion, s.client.model, s.client.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("building generate request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling generateContent: %w", err)
	}
	defer resp.Body.Close()

	var generated generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&generated); err != nil {
		return "", fmt.Errorf("parsing generate response: %w", err)
	}

	if generated.Error != nil {
		return "", fmt.Errorf("generateContent failed: %s (%s)", generated.Error.Message, generated.Error.Status)
	}
	if len(generated.Candidates) == 0 || len(generated.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("generateContent returned no candidates")
	}

	var reply strings.Builder
	for _, part := range generated.Candidates[0].Content.Parts {
		reply.WriteString(part.Text)
	}

	s.history = append(s.history, userTurn, conversation.NewTextTurn(conversation.RoleModel, reply.String()))
	return reply.String(), nil
}

func turnToContent(turn conversation.Turn) content {
	parts := make([]contentPart, 0, len(turn.Parts))
	for _, p := range turn.Parts {
		switch p.Type {
		case conversation.PartTypeArtifact:
			parts = append(parts, contentPart{FileData: &filePart{MIMEType: p.MIMEType, FileURI: p.RemoteURI}})
		default:
			parts = append(parts, contentPart{Text: p.Text})
		}
	}
	return content{Role: turn.Role, Parts: parts}
}

// mapState converts the API's file states to the boundary vocabulary.
// Anything non-terminal and unrecognized counts as still processing.
func mapState(state string) llm.ArtifactState {
	switch state {
	case "ACTIVE":
		return llm.StateReady
	case "FAILED":
		return llm.StateFailed
	default:
		return llm.StatePending
	}
}
