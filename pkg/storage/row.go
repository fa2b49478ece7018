package storage

import (
	"fmt"
	"strings"
	"time"

	"github.com/gistahq/gista/pkg/conversation"
)

// Row is the persisted encoding of a conversation: the id, namespace, and
// timestamp columns plus JSON text blobs for history, artifact index,
// files, and urls. The history blob never embeds local paths; provenance
// lives solely in the artifact_index column and is reattached on decode.
type Row struct {
	ID            string
	Namespace     string
	Timestamp     time.Time
	History       string
	ArtifactIndex string
	Files         string
	URLs          string
}

// EncodeRow serializes a conversation for storage.
func EncodeRow(conv *conversation.Conversation) (*Row, error) {
	history, err := conversation.EncodeTurns(conv.Turns, nil)
	if err != nil {
		return nil, fmt.Errorf("encoding history: %w", err)
	}

	index, err := conversation.EncodeIndex(conv.ArtifactIndex)
	if err != nil {
		return nil, fmt.Errorf("encoding artifact index: %w", err)
	}

	files, err := conversation.EncodeStringList(conv.Files)
	if err != nil {
		return nil, fmt.Errorf("encoding files: %w", err)
	}

	urls, err := conversation.EncodeStringList(conv.URLs)
	if err != nil {
		return nil, fmt.Errorf("encoding urls: %w", err)
	}

	return &Row{
		ID:            conv.ID,
		Namespace:     conv.Namespace,
		Timestamp:     conv.Timestamp.UTC(),
		History:       string(history),
		ArtifactIndex: string(index),
		Files:         string(files),
		URLs:          string(urls),
	}, nil
}

// DecodeRow rehydrates a conversation from its persisted encoding,
// reattaching the artifact index provenance held in its own column.
func DecodeRow(row *Row) (*conversation.Conversation, error) {
	turns, _, err := conversation.DecodeTurns([]byte(row.History))
	if err != nil {
		return nil, fmt.Errorf("decoding history for %s: %w", row.ID, err)
	}

	index, err := conversation.DecodeIndex([]byte(row.ArtifactIndex))
	if err != nil {
		return nil, fmt.Errorf("decoding artifact index for %s: %w", row.ID, err)
	}

	files, err := conversation.DecodeStringList([]byte(row.Files))
	if err != nil {
		return nil, fmt.Errorf("decoding files for %s: %w", row.ID, err)
	}

	urls, err := conversation.DecodeStringList([]byte(row.URLs))
	if err != nil {
		return nil, fmt.Errorf("decoding urls for %s: %w", row.ID, err)
	}

	return &conversation.Conversation{
		ID:            row.ID,
		Namespace:     row.Namespace,
		Timestamp:     row.Timestamp,
		Turns:         turns,
		ArtifactIndex: index,
		Files:         files,
		URLs:          urls,
	}, nil
}

// MatchesFilter reports whether the decoded conversation matches a
// substring filter over its files, urls, and artifact index values.
func MatchesFilter(conv *conversation.Conversation, filter string) bool {
	if filter == "" {
		return true
	}
	for _, f := range conv.Files {
		if strings.Contains(f, filter) {
			return true
		}
	}
	for _, u := range conv.URLs {
		if strings.Contains(u, filter) {
			return true
		}
	}
	for _, prov := range conv.ArtifactIndex {
		if strings.Contains(prov, filter) {
			return true
		}
	}
	return false
}

// Summarize builds the listing projection for a decoded conversation.
func Summarize(conv *conversation.Conversation) Summary {
	return Summary{
		ID:        conv.ID,
		Namespace: conv.Namespace,
		Timestamp: conv.Timestamp,
		Files:     conv.Files,
		URLs:      conv.URLs,
		TurnCount: len(conv.Turns),
	}
}

// Window applies offset and limit to an already ordered summary list.
func Window(summaries []Summary, offset, limit int) []Summary {
	if offset >= len(summaries) {
		return []Summary{}
	}
	summaries = summaries[offset:]
	if limit > 0 && limit < len(summaries) {
		summaries = summaries[:limit]
	}
	return summaries
}
