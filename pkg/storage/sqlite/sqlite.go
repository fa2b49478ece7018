// Package sqlite provides a SQLite-backed storage driver.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3" // registers the "sqlite3" driver
	"go.uber.org/zap"

	"github.com/gistahq/gista/pkg/conversation"
	"github.com/gistahq/gista/pkg/storage"
)

const schema = `
CREATE TABLE IF NOT EXISTS conversations (
	id             TEXT PRIMARY KEY,
	namespace      TEXT NOT NULL DEFAULT '',
	timestamp      DATETIME NOT NULL,
	history        TEXT NOT NULL,
	artifact_index TEXT NOT NULL,
	files          TEXT NOT NULL,
	urls           TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_conversations_timestamp ON conversations (timestamp);
CREATE INDEX IF NOT EXISTS idx_conversations_namespace ON conversations (namespace);
`

// Driver implements storage.Driver on SQLite.
type Driver struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewDriver creates a SQLite-backed store. The dbPath can be a file path
// or ":memory:" for an in-memory database.
func NewDriver(dbPath string, logger *zap.Logger) (*Driver, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &Driver{db: db, logger: logger}, nil
}

// Load retrieves a conversation by id.
func (d *Driver) Load(ctx context.Context, id string) (*conversation.Conversation, error) {
	row := d.db.QueryRowContext(ctx,
		`SELECT id, namespace, timestamp, history, artifact_index, files, urls
		 FROM conversations WHERE id = ?`, id)

	var r storage.Row
	err := row.Scan(&r.ID, &r.Namespace, &r.Timestamp, &r.History, &r.ArtifactIndex, &r.Files, &r.URLs)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.NotFoundError{ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("loading conversation %s: %w", id, err)
	}

	return storage.DecodeRow(&r)
}

// Save upserts the conversation row.
func (d *Driver) Save(ctx context.Context, conv *conversation.Conversation) error {
	if conv == nil {
		return errors.New("cannot save nil conversation")
	}

	r, err := storage.EncodeRow(conv)
	if err != nil {
		return err
	}

	_, err = d.db.ExecContext(ctx,
		`INSERT INTO conversations (id, namespace, timestamp, history, artifact_index, files, urls)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			namespace = excluded.namespace,
			timestamp = excluded.timestamp,
			history = excluded.history,
			artifact_index = excluded.artifact_index,
			files = excluded.files,
			urls = excluded.urls`,
		r.ID, r.Namespace, r.Timestamp, r.History, r.ArtifactIndex, r.Files, r.URLs)
	if err != nil {
		return fmt.Errorf("saving conversation %s: %w", conv.ID, err)
	}
	return nil
}

// Delete removes a row; deleting an absent id is a logged no-op.
func (d *Driver) Delete(ctx context.Context, id string) error {
	result, err := d.db.ExecContext(ctx, `DELETE FROM conversations WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting conversation %s: %w", id, err)
	}

	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		d.logger.Info("delete of absent conversation", zap.String("id", id))
	}
	return nil
}

// Query returns summaries ordered by timestamp descending. The substring
// filter inspects decoded values, so windowing happens after filtering.
func (d *Driver) Query(ctx context.Context, opts storage.QueryOptions) ([]storage.Summary, error) {
	rows, err := d.db.QueryContext(ctx,
		`SELECT id, namespace, timestamp, history, artifact_index, files, urls
		 FROM conversations
		 WHERE (? = '' OR namespace = ?)
		 ORDER BY timestamp DESC, id ASC`,
		opts.Namespace, opts.Namespace)
	if err != nil {
		return nil, fmt.Errorf("querying conversations: %w", err)
	}
	defer rows.Close()

	var summaries []storage.Summary
	for rows.Next() {
		var r storage.Row
		if err := rows.Scan(&r.ID, &r.Namespace, &r.Timestamp, &r.History, &r.ArtifactIndex, &r.Files, &r.URLs); err != nil {
			return nil, fmt.Errorf("scanning conversation row: %w", err)
		}

		conv, err := storage.DecodeRow(&r)
		if err != nil {
			return nil, err
		}
		if !storage.MatchesFilter(conv, opts.Filter) {
			continue
		}
		summaries = append(summaries, storage.Summarize(conv))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating conversation rows: %w", err)
	}

	return storage.Window(summaries, opts.Offset, opts.Limit), nil
}

// Close closes the underlying database.
func (d *Driver) Close() error {
	return d.db.Close()
}
