package eventstream

import "context"

// Publisher publishes conversation events to an event stream backend.
type Publisher interface {
	PublishConversation(ctx context.Context, event *ConversationSavedEvent) error
	Close() error
}
