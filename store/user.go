package store

import "context"

// User roles.
const (
	RoleClient = "client"
	RoleAdmin  = "admin"
)

// User is a registered account.
type User struct {
	ID           int32
	Email        string
	PasswordHash string
	FullName     string
	Role         string // "client" | "admin"
	IsAdmin      bool
	IsApproved   bool
	CreatedTs    int64
}

// FindUser filters for ListUsers / GetUser.
type FindUser struct {
	ID    *int32
	Email *string
}

// UpdateUser carries the mutable user fields.
type UpdateUser struct {
	ID         int32
	FullName   *string
	IsApproved *bool
}

// CreateUser persists a new user.
func (s *Store) CreateUser(ctx context.Context, create *User) (*User, error) {
	return s.driver.CreateUser(ctx, create)
}

// ListUsers lists users matching the given filter.
func (s *Store) ListUsers(ctx context.Context, find *FindUser) ([]*User, error) {
	return s.driver.ListUsers(ctx, find)
}

// GetUser returns the first user matching the given filter, nil when absent.
func (s *Store) GetUser(ctx context.Context, find *FindUser) (*User, error) {
	return s.driver.GetUser(ctx, find)
}

// UpdateUser updates a user's mutable fields.
func (s *Store) UpdateUser(ctx context.Context, update *UpdateUser) (*User, error) {
	return s.driver.UpdateUser(ctx, update)
}
