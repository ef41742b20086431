// Package mysql implements the store driver on go-sql-driver/mysql,
// matching the production deployment of the original service.
package mysql

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"

	// MySQL driver.
	_ "github.com/go-sql-driver/mysql"

	"github.com/iuristatech/legalchat/server/profile"
	"github.com/iuristatech/legalchat/store"
)

type DB struct {
	db      *sql.DB
	profile *profile.Profile
}

// NewDB opens a MySQL connection pool from the profile DSN.
func NewDB(profile *profile.Profile) (store.Driver, error) {
	sqlDB, err := sql.Open("mysql", profile.DSN)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open mysql connection")
	}
	// Recycle connections before the server-side wait_timeout kicks in
	// ("MySQL server has gone away").
	sqlDB.SetConnMaxLifetime(5 * time.Minute)
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	return &DB{db: sqlDB, profile: profile}, nil
}

func (d *DB) GetDB() *sql.DB {
	return d.db
}

func (d *DB) Close() error {
	return d.db.Close()
}

func (d *DB) EnsureTables(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id            INT NOT NULL AUTO_INCREMENT PRIMARY KEY,
			email         VARCHAR(255) NOT NULL UNIQUE,
			password_hash VARCHAR(255) NOT NULL,
			full_name     VARCHAR(100) NOT NULL DEFAULT '',
			role          VARCHAR(32) NOT NULL DEFAULT 'client',
			is_admin      BOOLEAN NOT NULL DEFAULT FALSE,
			is_approved   BOOLEAN NOT NULL DEFAULT FALSE,
			created_ts    TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS conversations (
			id         INT NOT NULL AUTO_INCREMENT PRIMARY KEY,
			uid        VARCHAR(256) NOT NULL UNIQUE,
			user_id    INT NULL,
			title      TEXT NOT NULL,
			status     VARCHAR(32) NOT NULL DEFAULT 'active',
			created_ts TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_ts TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS messages (
			id              INT NOT NULL AUTO_INCREMENT PRIMARY KEY,
			conversation_id INT NOT NULL,
			sender_role     VARCHAR(32) NOT NULL,
			content         TEXT NOT NULL,
			created_ts      TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			INDEX idx_messages_conversation (conversation_id),
			CONSTRAINT fk_messages_conversation FOREIGN KEY (conversation_id) REFERENCES conversations(id) ON DELETE CASCADE
		)`,
		`CREATE TABLE IF NOT EXISTS knowledge_base (
			id         INT NOT NULL AUTO_INCREMENT PRIMARY KEY,
			uid        VARCHAR(256) NOT NULL UNIQUE,
			title      VARCHAR(255) NOT NULL,
			content    LONGTEXT NOT NULL,
			file_type  VARCHAR(50) NOT NULL DEFAULT '',
			created_ts TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
	}
	for _, stmt := range stmts {
		if _, err := d.db.ExecContext(ctx, stmt); err != nil {
			return errors.Wrap(err, "failed to ensure tables")
		}
	}
	return nil
}
