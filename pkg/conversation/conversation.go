// Package conversation holds the in-memory model of a chat session: the
// ordered turns exchanged with the model, the set of source inputs that
// produced it, and the provenance index mapping remote artifact URIs back
// to the local paths they came from.
package conversation

import "time"

// Part type constants. The Type field discriminates the union.
const (
	PartTypeText     = "text"
	PartTypeArtifact = "artifact"
)

// Turn role constants.
const (
	RoleUser  = "user"
	RoleModel = "model"
)

// Part is a single piece of content within a turn. The Type field determines
// which other fields are populated.
type Part struct {
	Type string `json:"type"` // "text" or "artifact"

	// Text content (type="text")
	Text string `json:"text,omitempty"`

	// Artifact reference (type="artifact"). RemoteURI is the opaque handle
	// returned by the provider when the artifact was uploaded. The local
	// path is never stored here; it is recovered via the conversation's
	// ArtifactIndex.
	MIMEType  string `json:"mime_type,omitempty"`
	RemoteURI string `json:"remote_uri,omitempty"`
}

// NewTextPart creates a text part.
func NewTextPart(text string) Part {
	return Part{Type: PartTypeText, Text: text}
}

// NewArtifactPart creates a part referencing an uploaded artifact.
func NewArtifactPart(mimeType, remoteURI string) Part {
	return Part{Type: PartTypeArtifact, MIMEType: mimeType, RemoteURI: remoteURI}
}

// Turn is one message-equivalent unit in a conversation, attributed to
// either the user or the model.
type Turn struct {
	Role  string `json:"role"`
	Parts []Part `json:"parts"`
}

// NewTextTurn creates a turn with a single text part.
func NewTextTurn(role, text string) Turn {
	return Turn{Role: role, Parts: []Part{NewTextPart(text)}}
}

// Conversation is the in-memory representation of a chat session.
//
// ID is stable for a given (Files, URLs) pair; see DeriveID. ArtifactIndex
// maps remote artifact URIs to their local provenance paths and is used only
// for display and export, never for identity.
type Conversation struct {
	ID            string
	Files         []string
	URLs          []string
	ArtifactIndex map[string]string
	Turns         []Turn
	Timestamp     time.Time
	Namespace     string
}

// New creates a fresh conversation for the given inputs. The id is derived
// from the inputs unless an explicit id is provided.
func New(files, urls []string, explicitID string) *Conversation {
	return &Conversation{
		ID:            DeriveID(files, urls, explicitID),
		Files:         files,
		URLs:          urls,
		ArtifactIndex: make(map[string]string),
		Timestamp:     time.Now().UTC(),
	}
}

// HasHistory reports whether any turns have been recorded.
func (c *Conversation) HasHistory() bool {
	return len(c.Turns) > 0
}

// Provenance returns the local provenance path recorded for a remote URI,
// or the empty string when none is known.
func (c *Conversation) Provenance(remoteURI string) string {
	return c.ArtifactIndex[remoteURI]
}

// RecordProvenance maps a remote artifact URI to its local origin path.
func (c *Conversation) RecordProvenance(remoteURI, localPath string) {
	if c.ArtifactIndex == nil {
		c.ArtifactIndex = make(map[string]string)
	}
	c.ArtifactIndex[remoteURI] = localPath
}

// AppendTurn appends a turn and bumps the last-touch timestamp.
func (c *Conversation) AppendTurn(t Turn) {
	c.Turns = append(c.Turns, t)
	c.Timestamp = time.Now().UTC()
}

// MergeInputs adds requested inputs that are not yet tracked, preserving the
// order of the existing lists. Called after a successful ingestion so that a
// later diff sees the new sources as already ingested.
func (c *Conversation) MergeInputs(files, urls []string) {
	c.Files = appendMissing(c.Files, files)
	c.URLs = appendMissing(c.URLs, urls)
}

func appendMissing(existing, requested []string) []string {
	seen := make(map[string]struct{}, len(existing))
	for _, v := range existing {
		seen[v] = struct{}{}
	}
	for _, v := range requested {
		if _, ok := seen[v]; ok {
			continue
		}
		existing = append(existing, v)
		seen[v] = struct{}{}
	}
	return existing
}
