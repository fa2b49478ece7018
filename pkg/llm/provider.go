// Package llm defines the boundary to the hosted chat provider: session
// creation over an existing turn history, message sending, and artifact
// upload with readiness polling.
package llm

import (
	"context"

	"github.com/gistahq/gista/pkg/conversation"
)

// ArtifactState is the provider-reported processing state of an uploaded
// artifact.
type ArtifactState string

const (
	// StatePending means the provider is still processing the artifact.
	StatePending ArtifactState = "pending"

	// StateReady means the artifact may be referenced in chat requests.
	StateReady ArtifactState = "ready"

	// StateFailed is the provider's terminal failure state.
	StateFailed ArtifactState = "failed"
)

// Terminal reports whether the state is one the provider will not move past.
func (s ArtifactState) Terminal() bool {
	return s == StateReady || s == StateFailed
}

// Artifact is the provider's handle for an uploaded file.
type Artifact struct {
	// URI is the opaque remote handle used to reference the artifact in
	// chat requests.
	URI string

	// MIMEType is the content type the artifact was uploaded as.
	MIMEType string

	// State is the processing state at the time of the last observation.
	State ArtifactState
}

// Session is an open chat session holding conversation context on the
// provider side.
type Session interface {
	// Send submits a text prompt against the session history and returns
	// the model's reply text.
	Send(ctx context.Context, text string) (string, error)
}

// Provider is the hosted LLM capability consumed by the orchestration core.
type Provider interface {
	// StartSession opens a chat session seeded with the given history.
	// Artifact references in the history must still be resolvable by the
	// provider; expired handles surface as send-time failures.
	StartSession(ctx context.Context, history []conversation.Turn) (Session, error)

	// UploadArtifact uploads a local file and returns its remote handle.
	// The returned state may be pending; callers poll GetArtifactState
	// until a terminal state is reached.
	UploadArtifact(ctx context.Context, localPath, mimeType string) (*Artifact, error)

	// GetArtifactState queries the processing state of an uploaded artifact.
	GetArtifactState(ctx context.Context, uri string) (ArtifactState, error)
}
