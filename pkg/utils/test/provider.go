package testutils

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/gistahq/gista/pkg/conversation"
	"github.com/gistahq/gista/pkg/llm"
)

// FakeProvider is a scripted llm.Provider that records calls and returns
// configurable results.
type FakeProvider struct {
	mu sync.Mutex

	// Uploads accumulates every path passed to UploadArtifact.
	Uploads []string

	// UploadStates maps provenance path to the state returned at upload
	// time. Unlisted paths upload as pending.
	UploadStates map[string]llm.ArtifactState

	// PollStates maps artifact URI to a queue of states drained by
	// GetArtifactState. Once drained (or unlisted), polling reports ready.
	PollStates map[string][]llm.ArtifactState

	// FailUpload causes UploadArtifact to return an error.
	FailUpload bool

	// Replies is the queue of canned session replies. When drained,
	// sessions reply "ok".
	Replies []string

	// Sessions accumulates every session opened via StartSession.
	Sessions []*FakeSession

	counter int
}

// NewFakeProvider creates an empty fake provider.
func NewFakeProvider() *FakeProvider {
	return &FakeProvider{
		UploadStates: make(map[string]llm.ArtifactState),
		PollStates:   make(map[string][]llm.ArtifactState),
	}
}

// URIFor returns the deterministic URI the fake assigned to the nth upload
// (zero-based).
func URIFor(n int) string {
	return fmt.Sprintf("files/fake-%d", n)
}

func (f *FakeProvider) UploadArtifact(_ context.Context, localPath, mimeType string) (*llm.Artifact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.FailUpload {
		return nil, errors.New("upload refused")
	}

	uri := URIFor(f.counter)
	f.counter++
	f.Uploads = append(f.Uploads, localPath)

	state := llm.StatePending
	if s, ok := f.UploadStates[localPath]; ok {
		state = s
	}

	return &llm.Artifact{URI: uri, MIMEType: mimeType, State: state}, nil
}

func (f *FakeProvider) GetArtifactState(_ context.Context, uri string) (llm.ArtifactState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	queue := f.PollStates[uri]
	if len(queue) == 0 {
		return llm.StateReady, nil
	}

	state := queue[0]
	f.PollStates[uri] = queue[1:]
	return state, nil
}

func (f *FakeProvider) StartSession(_ context.Context, history []conversation.Turn) (llm.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	session := &FakeSession{provider: f}
	session.History = append(session.History, history...)
	f.Sessions = append(f.Sessions, session)
	return session, nil
}

// nextReply pops the canned reply queue.
func (f *FakeProvider) nextReply() string {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.Replies) == 0 {
		return "ok"
	}
	reply := f.Replies[0]
	f.Replies = f.Replies[1:]
	return reply
}

// FakeSession records prompts and replies from the canned queue.
type FakeSession struct {
	provider *FakeProvider

	// History is the seed history the session was opened with.
	History []conversation.Turn

	// Prompts accumulates every prompt passed to Send.
	Prompts []string

	// FailSend causes Send to return an error.
	FailSend bool
}

func (s *FakeSession) Send(_ context.Context, text string) (string, error) {
	if s.FailSend {
		return "", errors.New("send refused")
	}
	s.Prompts = append(s.Prompts, text)
	return s.provider.nextReply(), nil
}
