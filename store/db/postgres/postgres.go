// Package postgres implements the store driver on lib/pq.
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pkg/errors"

	// Postgres driver.
	_ "github.com/lib/pq"

	"github.com/iuristatech/legalchat/server/profile"
	"github.com/iuristatech/legalchat/store"
)

type DB struct {
	db      *sql.DB
	profile *profile.Profile
}

// NewDB opens a Postgres connection pool from the profile DSN.
func NewDB(profile *profile.Profile) (store.Driver, error) {
	sqlDB, err := sql.Open("postgres", profile.DSN)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open postgres connection")
	}
	return &DB{db: sqlDB, profile: profile}, nil
}

func (d *DB) GetDB() *sql.DB {
	return d.db
}

func (d *DB) Close() error {
	return d.db.Close()
}

// placeholder returns the n-th positional parameter, e.g. $1.
func placeholder(n int) string {
	return fmt.Sprintf("$%d", n)
}

func (d *DB) EnsureTables(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id            SERIAL PRIMARY KEY,
			email         TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			full_name     TEXT NOT NULL DEFAULT '',
			role          TEXT NOT NULL DEFAULT 'client',
			is_admin      BOOLEAN NOT NULL DEFAULT FALSE,
			is_approved   BOOLEAN NOT NULL DEFAULT FALSE,
			created_ts    BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())
		)`,
		`CREATE TABLE IF NOT EXISTS conversations (
			id         SERIAL PRIMARY KEY,
			uid        TEXT NOT NULL UNIQUE,
			user_id    INTEGER,
			title      TEXT NOT NULL DEFAULT '',
			status     TEXT NOT NULL DEFAULT 'active',
			created_ts BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW()),
			updated_ts BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())
		)`,
		`CREATE TABLE IF NOT EXISTS messages (
			id              SERIAL PRIMARY KEY,
			conversation_id INTEGER NOT NULL REFERENCES conversations(id) ON DELETE CASCADE,
			sender_role     TEXT NOT NULL,
			content         TEXT NOT NULL,
			created_ts      BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())
		)`,
		`CREATE INDEX IF NOT EXISTS idx_messages_conversation ON messages(conversation_id)`,
		`CREATE TABLE IF NOT EXISTS knowledge_base (
			id         SERIAL PRIMARY KEY,
			uid        TEXT NOT NULL UNIQUE,
			title      TEXT NOT NULL,
			content    TEXT NOT NULL,
			file_type  TEXT NOT NULL DEFAULT '',
			created_ts BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())
		)`,
	}
	for _, stmt := range stmts {
		if _, err := d.db.ExecContext(ctx, stmt); err != nil {
			return errors.Wrap(err, "failed to ensure tables")
		}
	}
	return nil
}
