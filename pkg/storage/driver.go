// Package storage
package storage

import (
	"context"
	"time"

	"github.com/gistahq/gista/pkg/conversation"
)

// Driver defines the interface for persisting and retrieving conversations
// in a storage backend. Rows are keyed by the conversation id; Save is an
// upsert, so writing the same id twice overwrites rather than duplicates.
type Driver interface {
	// Load retrieves a conversation by id. Returns NotFoundError when no
	// row exists. Callers treat that as "no prior conversation".
	Load(ctx context.Context, id string) (*conversation.Conversation, error)

	// Save upserts the conversation row keyed by its id.
	Save(ctx context.Context, conv *conversation.Conversation) error

	// Delete removes the conversation row. Deleting an absent id is a
	// logged no-op, not an error.
	Delete(ctx context.Context, id string) error

	// Query returns conversation summaries ordered by timestamp
	// descending, windowed and filtered per the options.
	Query(ctx context.Context, opts QueryOptions) ([]Summary, error)

	// Close closes the store and releases any resources.
	Close() error
}

// QueryOptions windows and filters a Query.
type QueryOptions struct {
	// Offset skips rows after ordering.
	Offset int

	// Limit caps the result size. Zero means no cap.
	Limit int

	// Filter, when non-empty, keeps rows whose files, urls, or artifact
	// index values contain it as a substring.
	Filter string

	// Namespace, when non-empty, restricts results to one tenant scope.
	Namespace string
}

// Summary is the listing projection of a stored conversation.
type Summary struct {
	ID        string    `json:"id"`
	Namespace string    `json:"namespace,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Files     []string  `json:"files"`
	URLs      []string  `json:"urls"`
	TurnCount int       `json:"turn_count"`
}

// NotFoundError is returned when a conversation doesn't exist in the store.
type NotFoundError struct {
	ID string
}

func (e NotFoundError) Error() string {
	if e.ID == "" {
		return "conversation not found"
	}
	return "conversation not found: " + e.ID
}
