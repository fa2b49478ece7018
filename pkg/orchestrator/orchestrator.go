// Package orchestrator ties the pipeline together: it reconciles a request's
// inputs against the persisted conversation, ingests only what is new, opens
// a provider session seeded with the accumulated history, and gates
// persistence on ingestion having succeeded.
package orchestrator

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/gistahq/gista/pkg/conversation"
	"github.com/gistahq/gista/pkg/eventstream"
	"github.com/gistahq/gista/pkg/eventstream/nop"
	"github.com/gistahq/gista/pkg/ingest"
	"github.com/gistahq/gista/pkg/llm"
	"github.com/gistahq/gista/pkg/storage"
)

// Request describes one open-or-resume of a conversation.
type Request struct {
	// Files and URLs are the full requested input set, not a delta. The
	// orchestrator computes the delta itself against what was already
	// ingested.
	Files []string
	URLs  []string

	// ID overrides the derived conversation identity when non-empty.
	ID string

	// Namespace scopes the conversation in storage.
	Namespace string

	// Overwrite discards any persisted state for this identity and starts
	// over with a full ingestion.
	Overwrite bool
}

// Orchestrator runs conversations end to end against a provider and a store.
type Orchestrator struct {
	store    storage.Driver
	provider llm.Provider
	ingestor *ingest.Ingestor
	events   eventstream.Publisher
	logger   *zap.Logger
}

// New creates an Orchestrator. Events and logger may be nil.
func New(store storage.Driver, provider llm.Provider, ingestor *ingest.Ingestor, events eventstream.Publisher, logger *zap.Logger) *Orchestrator {
	if events == nil {
		events = nop.NewPublisher()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		store:    store,
		provider: provider,
		ingestor: ingestor,
		events:   events,
		logger:   logger,
	}
}

// Open loads or creates the conversation for the request's identity, ingests
// the inputs that are not yet part of it, and starts a provider session
// seeded with its history. Newly ingested artifacts are recorded as a user
// turn so the session sees them.
//
// When ingestion fails the conversation is returned to the caller unsaved;
// nothing is persisted for a batch that did not complete.
func (o *Orchestrator) Open(ctx context.Context, req Request) (*Active, error) {
	id := conversation.DeriveID(req.Files, req.URLs, req.ID)

	conv, err := o.loadOrCreate(ctx, id, req)
	if err != nil {
		return nil, err
	}
	if req.Namespace != "" {
		conv.Namespace = req.Namespace
	}
	resumed := conv.HasHistory()

	newFiles, newURLs := conv.NewInputs(req.Files, req.URLs)
	o.logger.Debug("reconciled inputs",
		zap.String("id", id),
		zap.Strings("new_files", newFiles),
		zap.Strings("new_urls", newURLs),
	)

	var artifacts []ingest.ReadyArtifact
	if len(newFiles) > 0 || len(newURLs) > 0 {
		artifacts, err = o.ingestor.Ingest(ctx, conv, newFiles, newURLs)
		if err != nil {
			return nil, fmt.Errorf("ingesting inputs for %s: %w", id, err)
		}
		conv.MergeInputs(newFiles, newURLs)
	}

	if len(artifacts) > 0 {
		conv.AppendTurn(artifactTurn(artifacts))
	}

	session, err := o.provider.StartSession(ctx, conv.Turns)
	if err != nil {
		return nil, fmt.Errorf("starting session for %s: %w", id, err)
	}

	return &Active{
		Conversation: conv,
		orch:         o,
		session:      session,
		newArtifacts: len(artifacts),
		resumed:      resumed,
	}, nil
}

func (o *Orchestrator) loadOrCreate(ctx context.Context, id string, req Request) (*conversation.Conversation, error) {
	if req.Overwrite {
		if err := o.store.Delete(ctx, id); err != nil {
			return nil, fmt.Errorf("discarding conversation %s: %w", id, err)
		}
		return fresh(id, req), nil
	}

	conv, err := o.store.Load(ctx, id)
	if err == nil {
		return conv, nil
	}

	var notFound storage.NotFoundError
	if errors.As(err, &notFound) {
		return fresh(id, req), nil
	}
	return nil, err
}

// fresh starts an empty conversation under the already-derived identity.
// Inputs are merged only after a successful ingestion, so nothing is tracked
// yet.
func fresh(id string, req Request) *conversation.Conversation {
	conv := conversation.New(nil, nil, id)
	conv.Namespace = req.Namespace
	return conv
}

// artifactTurn folds freshly ingested artifacts into one user turn, keeping
// ingestion order.
func artifactTurn(artifacts []ingest.ReadyArtifact) conversation.Turn {
	parts := make([]conversation.Part, 0, len(artifacts))
	for _, a := range artifacts {
		parts = append(parts, conversation.NewArtifactPart(a.MIMEType, a.RemoteURI))
	}
	return conversation.Turn{Role: conversation.RoleUser, Parts: parts}
}

// Active is an open conversation bound to a live provider session.
type Active struct {
	Conversation *conversation.Conversation

	orch         *Orchestrator
	session      llm.Session
	newArtifacts int
	resumed      bool
}

// Resumed reports whether the conversation carried turns before this open.
// Fresh conversations are still Resumed()==false after their artifact turn
// is recorded.
func (a *Active) Resumed() bool {
	return a.resumed
}

// Send submits a prompt over the session and records the exchange as a user
// turn and a model turn.
func (a *Active) Send(ctx context.Context, prompt string) (string, error) {
	reply, err := a.session.Send(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("sending prompt: %w", err)
	}

	a.Conversation.AppendTurn(conversation.NewTextTurn(conversation.RoleUser, prompt))
	a.Conversation.AppendTurn(conversation.NewTextTurn(conversation.RoleModel, reply))
	return reply, nil
}

// Save persists the conversation and emits a saved event. A publish failure
// is logged, not surfaced; the save itself already succeeded.
func (a *Active) Save(ctx context.Context) error {
	conv := a.Conversation
	if err := a.orch.store.Save(ctx, conv); err != nil {
		return fmt.Errorf("saving conversation %s: %w", conv.ID, err)
	}

	event := eventstream.NewConversationSavedEvent(
		conv.ID,
		conv.Namespace,
		eventstream.InputsMeta{Files: conv.Files, URLs: conv.URLs},
		eventstream.ActivityMeta{
			TurnCount:        len(conv.Turns),
			ArtifactCount:    len(conv.ArtifactIndex),
			NewArtifactCount: a.newArtifacts,
		},
	)
	if err := a.orch.events.PublishConversation(ctx, event); err != nil {
		a.orch.logger.Warn("publishing saved event failed",
			zap.String("id", conv.ID),
			zap.Error(err),
		)
	}
	return nil
}
