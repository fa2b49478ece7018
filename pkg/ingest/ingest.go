// Package ingest normalizes heterogeneous sources into provider-ready
// artifacts: local files upload directly, URLs are first materialized into
// local files by the acquisition router. Every upload is polled until the
// provider reports a terminal state.
package ingest

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/gistahq/gista/pkg/acquire"
	"github.com/gistahq/gista/pkg/conversation"
	"github.com/gistahq/gista/pkg/llm"
)

const defaultPollInterval = 2 * time.Second

// ReadyArtifact is a normalized, uploaded, provider-ready input.
type ReadyArtifact struct {
	RemoteURI  string
	MIMEType   string
	Provenance string
	State      llm.ArtifactState
}

// ArtifactFailedError reports a provider-terminal processing failure for a
// single artifact. It aborts the whole ingestion batch; artifacts already
// ready are not rolled back.
type ArtifactFailedError struct {
	Provenance string
	RemoteURI  string
}

func (e ArtifactFailedError) Error() string {
	return fmt.Sprintf("artifact %s (%s) failed provider processing", e.Provenance, e.RemoteURI)
}

// Options is the validated ingestion configuration. The default is to poll
// every two seconds with no local deadline; the provider's terminal state
// bounds the wait. MaxAttempts exists for tests and cautious deployments.
type Options struct {
	// ExtractImages enables the markdown-embedded-image pass.
	ExtractImages bool

	// PollInterval is the delay between artifact state queries.
	PollInterval time.Duration

	// MaxAttempts caps state queries per artifact. Zero means unbounded.
	MaxAttempts int
}

// Ingestor runs the ingestion pipeline for one conversation at a time.
type Ingestor struct {
	provider llm.Provider
	acquirer acquire.Acquirer
	logger   *zap.Logger
	opts     Options
}

// New creates an Ingestor. The acquirer may be nil when only local files
// are ever ingested.
func New(provider llm.Provider, acquirer acquire.Acquirer, logger *zap.Logger, opts Options) *Ingestor {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = defaultPollInterval
	}
	return &Ingestor{provider: provider, acquirer: acquirer, logger: logger, opts: opts}
}

// Ingest normalizes and uploads the given inputs sequentially, recording
// remote-URI provenance on the conversation for every artifact produced.
// The first terminal failure aborts the batch.
func (i *Ingestor) Ingest(ctx context.Context, conv *conversation.Conversation, files, urls []string) ([]ReadyArtifact, error) {
	var artifacts []ReadyArtifact

	for _, path := range files {
		ready, err := i.uploadAndWait(ctx, conv, path, path)
		if err != nil {
			return artifacts, err
		}
		artifacts = append(artifacts, ready...)
	}

	for _, rawURL := range urls {
		if i.acquirer == nil {
			return artifacts, fmt.Errorf("no acquirer configured for %s", rawURL)
		}

		local, err := i.acquirer.Fetch(ctx, rawURL)
		if err != nil {
			return artifacts, fmt.Errorf("acquiring %s: %w", rawURL, err)
		}
		i.logger.Debug("acquired source",
			zap.String("url", rawURL),
			zap.String("path", local),
		)

		// Provenance is the source URL, not the acquired temp file, so
		// transcripts and filters see what the user actually provided.
		ready, err := i.uploadAndWait(ctx, conv, local, rawURL)
		if err != nil {
			return artifacts, err
		}
		artifacts = append(artifacts, ready...)
	}

	return artifacts, nil
}

// uploadAndWait uploads one local file, polls it to a terminal state, and
// runs the optional image pass on markdown documents. Image artifacts keep
// their position after the originating document.
func (i *Ingestor) uploadAndWait(ctx context.Context, conv *conversation.Conversation, localPath, provenance string) ([]ReadyArtifact, error) {
	ready, err := i.uploadOne(ctx, conv, localPath, provenance)
	if err != nil {
		return nil, err
	}
	artifacts := []ReadyArtifact{ready}

	if i.opts.ExtractImages && isMarkdown(localPath) {
		images, err := i.ingestMarkdownImages(ctx, conv, localPath)
		if err != nil {
			return artifacts, err
		}
		artifacts = append(artifacts, images...)
	}

	return artifacts, nil
}

func (i *Ingestor) uploadOne(ctx context.Context, conv *conversation.Conversation, localPath, provenance string) (ReadyArtifact, error) {
	mimeType, err := DetectMIME(localPath)
	if err != nil {
		return ReadyArtifact{}, err
	}

	artifact, err := i.provider.UploadArtifact(ctx, localPath, mimeType)
	if err != nil {
		return ReadyArtifact{}, fmt.Errorf("uploading %s: %w", provenance, err)
	}
	i.logger.Info("uploaded artifact",
		zap.String("source", provenance),
		zap.String("uri", artifact.URI),
		zap.String("mime", mimeType),
	)

	state, err := i.waitForTerminal(ctx, artifact)
	if err != nil {
		return ReadyArtifact{}, err
	}
	if state == llm.StateFailed {
		return ReadyArtifact{}, ArtifactFailedError{Provenance: provenance, RemoteURI: artifact.URI}
	}

	conv.RecordProvenance(artifact.URI, provenance)

	return ReadyArtifact{
		RemoteURI:  artifact.URI,
		MIMEType:   mimeType,
		Provenance: provenance,
		State:      state,
	}, nil
}

// waitForTerminal polls the provider until the artifact leaves the pending
// state. Pending is not an error; only the provider's own failure state (or
// the optional attempts ceiling) ends the wait unsuccessfully.
func (i *Ingestor) waitForTerminal(ctx context.Context, artifact *llm.Artifact) (llm.ArtifactState, error) {
	state := artifact.State
	attempts := 0

	for !state.Terminal() {
		if i.opts.MaxAttempts > 0 && attempts >= i.opts.MaxAttempts {
			return state, fmt.Errorf("artifact %s still %s after %d state checks", artifact.URI, state, attempts)
		}

		select {
		case <-ctx.Done():
			return state, ctx.Err()
		case <-time.After(i.opts.PollInterval):
		}

		var err error
		state, err = i.provider.GetArtifactState(ctx, artifact.URI)
		if err != nil {
			return state, fmt.Errorf("polling %s: %w", artifact.URI, err)
		}
		attempts++
	}

	return state, nil
}
