package orchestrator

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/gistahq/gista/pkg/conversation"
)

// SessionStore keeps live conversations keyed by (namespace, id) so repeated
// requests against the same identity reuse one provider session instead of
// reopening it per call.
type SessionStore struct {
	mu     sync.Mutex
	active map[sessionKey]*Active
	orch   *Orchestrator
	logger *zap.Logger
}

type sessionKey struct {
	namespace string
	id        string
}

// NewSessionStore creates an empty session store backed by the orchestrator.
func NewSessionStore(orch *Orchestrator, logger *zap.Logger) *SessionStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionStore{
		active: make(map[sessionKey]*Active),
		orch:   orch,
		logger: logger,
	}
}

// Open returns the live conversation for the request's identity, opening it
// through the orchestrator on first use. Overwrite requests always reopen.
// A live session is reused only when the request brings no inputs beyond
// what the conversation already tracks; otherwise its state is saved and
// the conversation reopened so the new inputs go through reconciliation.
func (s *SessionStore) Open(ctx context.Context, req Request) (*Active, error) {
	id := deriveRequestID(req)
	key := sessionKey{namespace: req.Namespace, id: id}

	s.mu.Lock()
	existing, ok := s.active[key]
	s.mu.Unlock()
	if ok && !req.Overwrite {
		newFiles, newURLs := existing.Conversation.NewInputs(req.Files, req.URLs)
		if len(newFiles) == 0 && len(newURLs) == 0 {
			return existing, nil
		}

		// Persist the live turns first so the reopen resumes from them
		// instead of the last save.
		if err := existing.Save(ctx); err != nil {
			return nil, err
		}
		s.logger.Debug("reopening live session for new inputs",
			zap.String("id", id),
			zap.Strings("new_files", newFiles),
			zap.Strings("new_urls", newURLs),
		)
	}

	active, err := s.orch.Open(ctx, req)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.active[key] = active
	s.mu.Unlock()
	return active, nil
}

// Evict drops the live session for an identity. The persisted row is
// untouched.
func (s *SessionStore) Evict(namespace, id string) {
	s.mu.Lock()
	delete(s.active, sessionKey{namespace: namespace, id: id})
	s.mu.Unlock()
}

// Flush saves every live conversation and clears the store. Used on
// shutdown; individual save failures are logged and do not stop the sweep.
func (s *SessionStore) Flush(ctx context.Context) {
	s.mu.Lock()
	active := s.active
	s.active = make(map[sessionKey]*Active)
	s.mu.Unlock()

	for key, a := range active {
		if err := a.Save(ctx); err != nil {
			s.logger.Warn("flush save failed",
				zap.String("id", key.id),
				zap.String("namespace", key.namespace),
				zap.Error(err),
			)
		}
	}
}

// deriveRequestID matches the identity the orchestrator derives in Open.
func deriveRequestID(req Request) string {
	return conversation.DeriveID(req.Files, req.URLs, req.ID)
}
