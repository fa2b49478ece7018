// Package inmemory provides a map-backed storage driver for tests and
// ephemeral runs.
package inmemory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/gistahq/gista/pkg/conversation"
	"github.com/gistahq/gista/pkg/storage"
)

// Driver implements storage.Driver using an in-memory map of encoded rows.
// Rows are stored in their persisted encoding so load/save round-trips
// behave exactly like the durable backends.
type Driver struct {
	mu     sync.RWMutex
	rows   map[string]*storage.Row
	logger *zap.Logger
}

// NewDriver creates a new in-memory store.
func NewDriver(logger *zap.Logger) *Driver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Driver{
		rows:   make(map[string]*storage.Row),
		logger: logger,
	}
}

// Load retrieves a conversation by id.
func (d *Driver) Load(_ context.Context, id string) (*conversation.Conversation, error) {
	d.mu.RLock()
	row, ok := d.rows[id]
	d.mu.RUnlock()

	if !ok {
		return nil, storage.NotFoundError{ID: id}
	}
	return storage.DecodeRow(row)
}

// Save upserts the conversation row.
func (d *Driver) Save(_ context.Context, conv *conversation.Conversation) error {
	if conv == nil {
		return errors.New("cannot save nil conversation")
	}

	row, err := storage.EncodeRow(conv)
	if err != nil {
		return err
	}

	d.mu.Lock()
	d.rows[conv.ID] = row
	d.mu.Unlock()
	return nil
}

// Delete removes a row; deleting an absent id is a logged no-op.
func (d *Driver) Delete(_ context.Context, id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.rows[id]; !ok {
		d.logger.Info("delete of absent conversation", zap.String("id", id))
		return nil
	}
	delete(d.rows, id)
	return nil
}

// Query returns summaries ordered by timestamp descending.
func (d *Driver) Query(_ context.Context, opts storage.QueryOptions) ([]storage.Summary, error) {
	d.mu.RLock()
	rows := make([]*storage.Row, 0, len(d.rows))
	for _, row := range d.rows {
		rows = append(rows, row)
	}
	d.mu.RUnlock()

	summaries := make([]storage.Summary, 0, len(rows))
	for _, row := range rows {
		if opts.Namespace != "" && row.Namespace != opts.Namespace {
			continue
		}
		conv, err := storage.DecodeRow(row)
		if err != nil {
			return nil, err
		}
		if !storage.MatchesFilter(conv, opts.Filter) {
			continue
		}
		summaries = append(summaries, storage.Summarize(conv))
	}

	sort.Slice(summaries, func(i, j int) bool {
		if summaries[i].Timestamp.Equal(summaries[j].Timestamp) {
			return summaries[i].ID < summaries[j].ID
		}
		return summaries[i].Timestamp.After(summaries[j].Timestamp)
	})

	return storage.Window(summaries, opts.Offset, opts.Limit), nil
}

// Close is a no-op for the in-memory store.
func (d *Driver) Close() error {
	return nil
}
