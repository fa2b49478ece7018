package eventstream

import (
	"time"

	"github.com/google/uuid"
)

const (
	// SchemaVersionV1 is the first version of the event payload schema.
	SchemaVersionV1 = 1

	// EventTypeConversationSaved is emitted after a conversation is persisted.
	EventTypeConversationSaved = "gista.conversation.saved"
)

// ConversationSavedEvent is a transport-neutral event payload for a persisted
// conversation.
type ConversationSavedEvent struct {
	SchemaVersion  int          `json:"schema_version"`
	EventType      string       `json:"event_type"`
	EventID        string       `json:"event_id"`
	EmittedAt      time.Time    `json:"emitted_at"`
	ConversationID string       `json:"conversation_id"`
	Namespace      string       `json:"namespace,omitempty"`
	Inputs         InputsMeta   `json:"inputs"`
	Activity       ActivityMeta `json:"activity"`
}

// InputsMeta captures the source inputs tracked by the conversation.
type InputsMeta struct {
	Files []string `json:"files"`
	URLs  []string `json:"urls"`
}

// ActivityMeta captures what the save added.
type ActivityMeta struct {
	TurnCount        int `json:"turn_count"`
	ArtifactCount    int `json:"artifact_count"`
	NewArtifactCount int `json:"new_artifact_count,omitempty"`
}

// NewConversationSavedEvent builds an event envelope with a fresh event id
// and emission timestamp.
func NewConversationSavedEvent(conversationID, namespace string, inputs InputsMeta, activity ActivityMeta) *ConversationSavedEvent {
	return &ConversationSavedEvent{
		SchemaVersion:  SchemaVersionV1,
		EventType:      EventTypeConversationSaved,
		EventID:        "evt_" + uuid.NewString(),
		EmittedAt:      time.Now().UTC(),
		ConversationID: conversationID,
		Namespace:      namespace,
		Inputs:         inputs,
		Activity:       activity,
	}
}
