package store

import "context"

// Conversation statuses.
const (
	ConversationActive       = "active"
	ConversationArchived     = "archived"
	ConversationRiskDetected = "risk_detected"
)

// Conversation is a single chat thread. UserID is nil for anonymous chats.
type Conversation struct {
	ID        int32
	UID       string
	UserID    *int32
	Title     string
	Status    string // "active" | "archived" | "risk_detected"
	CreatedTs int64
	UpdatedTs int64
}

// FindConversation filters for ListConversations / GetConversation.
type FindConversation struct {
	ID     *int32
	UID    *string
	UserID *int32
	Status *string
	Limit  *int
}

// UpdateConversation carries the mutable conversation fields.
type UpdateConversation struct {
	UID    string
	Title  *string
	Status *string
}

// CreateConversation persists a new conversation.
func (s *Store) CreateConversation(ctx context.Context, create *Conversation) (*Conversation, error) {
	return s.driver.CreateConversation(ctx, create)
}

// ListConversations lists conversations matching the given filter,
// most recently updated first.
func (s *Store) ListConversations(ctx context.Context, find *FindConversation) ([]*Conversation, error) {
	return s.driver.ListConversations(ctx, find)
}

// GetConversation returns the first match, nil when absent.
func (s *Store) GetConversation(ctx context.Context, find *FindConversation) (*Conversation, error) {
	return s.driver.GetConversation(ctx, find)
}

// UpdateConversation updates a conversation's mutable fields and bumps
// its updated timestamp.
func (s *Store) UpdateConversation(ctx context.Context, update *UpdateConversation) (*Conversation, error) {
	return s.driver.UpdateConversation(ctx, update)
}

// DeleteConversation deletes a conversation and all its messages (cascade).
func (s *Store) DeleteConversation(ctx context.Context, uid string) error {
	return s.driver.DeleteConversation(ctx, uid)
}
