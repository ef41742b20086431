package store

import "context"

// Message sender roles. Stored rows may also carry "system" from older
// deployments; readers must treat anything that is not "assistant" as a
// user turn.
const (
	SenderUser      = "user"
	SenderAssistant = "assistant"
	SenderSystem    = "system"
)

// Message is a single turn within a conversation. Immutable once created.
type Message struct {
	ID             int32
	ConversationID int32
	SenderRole     string // "user" | "assistant" | "system"
	Content        string
	CreatedTs      int64
}

// CreateMessage is the payload for CreateMessage.
type CreateMessage struct {
	ConversationID int32
	SenderRole     string
	Content        string
}

// FindMessage filters for ListMessages. Messages come back oldest first
// unless Descending is set.
type FindMessage struct {
	ConversationID int32
	Limit          *int
	Descending     bool
}

// CreateMessage persists a new message to a conversation.
func (s *Store) CreateMessage(ctx context.Context, create *CreateMessage) (*Message, error) {
	return s.driver.CreateMessage(ctx, create)
}

// ListMessages returns messages for a conversation, oldest first.
func (s *Store) ListMessages(ctx context.Context, find *FindMessage) ([]*Message, error) {
	return s.driver.ListMessages(ctx, find)
}

// ListRecentMessages returns up to limit messages for a conversation,
// most recent first. Callers building prompts must reverse the slice to
// chronological order themselves.
func (s *Store) ListRecentMessages(ctx context.Context, conversationID int32, limit int) ([]*Message, error) {
	return s.driver.ListMessages(ctx, &FindMessage{
		ConversationID: conversationID,
		Limit:          &limit,
		Descending:     true,
	})
}
