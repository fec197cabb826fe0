// Package testutil provides an in-memory database mirroring the production
// schema so repository and handler tests run without external services.
package testutil

import (
	"database/sql"
	"testing"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	_ "modernc.org/sqlite"
)

// Mirrors internal/database/schema.go with SQLite column types. Statements
// are applied one at a time; the driver handles single statements only.
var schemaStatements = []string{
	`CREATE TABLE users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT NOT NULL UNIQUE,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		email_verified BOOLEAN NOT NULL DEFAULT FALSE,
		onboarding_completed BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE user_profiles (
		user_id INTEGER PRIMARY KEY REFERENCES users(id),
		birthday DATE,
		gender TEXT NOT NULL DEFAULT '',
		bio TEXT NOT NULL DEFAULT '',
		profile_image TEXT
	)`,
	`CREATE TABLE mixtapes (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL REFERENCES users(id),
		name TEXT NOT NULL,
		bio TEXT NOT NULL DEFAULT '',
		photo_url TEXT,
		source TEXT NOT NULL CHECK (source IN ('onboarding', 'sidebar', 'default')),
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE mixtape_songs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		mixtape_id INTEGER NOT NULL REFERENCES mixtapes(id) ON DELETE CASCADE,
		song_name TEXT NOT NULL,
		artist_name TEXT NOT NULL,
		preview_url TEXT,
		artwork_url TEXT
	)`,
	`CREATE TABLE favorites (
		user_id INTEGER NOT NULL REFERENCES users(id),
		favorited_user_id INTEGER NOT NULL REFERENCES users(id),
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (user_id, favorited_user_id)
	)`,
	`CREATE TABLE discarded (
		user_id INTEGER NOT NULL REFERENCES users(id),
		discarded_user_id INTEGER NOT NULL REFERENCES users(id),
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (user_id, discarded_user_id)
	)`,
	`CREATE TABLE polls (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL REFERENCES users(id),
		question TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE poll_options (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		poll_id INTEGER NOT NULL REFERENCES polls(id) ON DELETE CASCADE,
		option_text TEXT NOT NULL
	)`,
	`CREATE TABLE poll_votes (
		poll_id INTEGER NOT NULL REFERENCES polls(id) ON DELETE CASCADE,
		user_id INTEGER NOT NULL REFERENCES users(id),
		option_id INTEGER NOT NULL REFERENCES poll_options(id) ON DELETE CASCADE,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (poll_id, user_id)
	)`,
}

// NewDB returns a fresh in-memory database with the full schema applied.
// The single-connection pool keeps the memory database alive for the
// test's duration.
func NewDB(t *testing.T) *bun.DB {
	t.Helper()

	sqlDB, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	db := bun.NewDB(sqlDB, sqlitedialect.New())
	t.Cleanup(func() {
		db.Close()
	})

	for _, stmt := range schemaStatements {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("failed to apply test schema: %v", err)
		}
	}

	return db
}
