// Package store provides the persistence layer: users, conversations,
// messages and the knowledge base, backed by a pluggable SQL driver.
package store

import (
	"context"
	"database/sql"

	"github.com/iuristatech/legalchat/server/profile"
)

// Store is the database-independent persistence facade.
type Store struct {
	profile *profile.Profile
	driver  Driver
}

// New creates a Store over the given driver.
func New(driver Driver, profile *profile.Profile) *Store {
	return &Store{
		profile: profile,
		driver:  driver,
	}
}

// EnsureTables creates missing tables. Called once at startup.
func (s *Store) EnsureTables(ctx context.Context) error {
	return s.driver.EnsureTables(ctx)
}

func (s *Store) Close() error {
	return s.driver.Close()
}

// Driver is implemented by each database backend.
type Driver interface {
	GetDB() *sql.DB
	Close() error
	EnsureTables(ctx context.Context) error

	CreateUser(ctx context.Context, create *User) (*User, error)
	ListUsers(ctx context.Context, find *FindUser) ([]*User, error)
	GetUser(ctx context.Context, find *FindUser) (*User, error)
	UpdateUser(ctx context.Context, update *UpdateUser) (*User, error)

	CreateConversation(ctx context.Context, create *Conversation) (*Conversation, error)
	ListConversations(ctx context.Context, find *FindConversation) ([]*Conversation, error)
	GetConversation(ctx context.Context, find *FindConversation) (*Conversation, error)
	UpdateConversation(ctx context.Context, update *UpdateConversation) (*Conversation, error)
	DeleteConversation(ctx context.Context, uid string) error

	CreateMessage(ctx context.Context, create *CreateMessage) (*Message, error)
	ListMessages(ctx context.Context, find *FindMessage) ([]*Message, error)

	CreateKnowledgeDocument(ctx context.Context, create *KnowledgeDocument) (*KnowledgeDocument, error)
	ListKnowledgeDocuments(ctx context.Context, find *FindKnowledgeDocument) ([]*KnowledgeDocument, error)
	DeleteKnowledgeDocument(ctx context.Context, uid string) error

	GetDashboardStats(ctx context.Context, activeSince int64) (*DashboardStats, error)
	CountConversationsByUser(ctx context.Context, userID int32) (int32, error)
}
