package database

import (
	"database/sql"
	"fmt"
)

// Migrate creates the schema if it does not exist yet. Statements are kept
// in dependency order; each table keeps the field names of the original
// crackme collections (hexid, difficulty, quality, nb_solutions,
// nb_comments) so dumps remain readable across tools.
func Migrate(db *sql.DB) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY,
			hexid VARCHAR(32) UNIQUE NOT NULL,
			name VARCHAR(50) UNIQUE NOT NULL,
			email VARCHAR(100) UNIQUE NOT NULL,
			hashed_password VARCHAR(255) NOT NULL,
			role VARCHAR(16) NOT NULL DEFAULT 'user',
			nb_crackmes INTEGER NOT NULL DEFAULT 0,
			nb_solutions INTEGER NOT NULL DEFAULT 0,
			nb_comments INTEGER NOT NULL DEFAULT 0,
			status VARCHAR(16) NOT NULL DEFAULT 'published',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS crackmes (
			id UUID PRIMARY KEY,
			hexid VARCHAR(32) UNIQUE NOT NULL,
			name VARCHAR(100) NOT NULL,
			slug VARCHAR(120) NOT NULL,
			info TEXT NOT NULL DEFAULT '',
			lang VARCHAR(50) NOT NULL,
			arch VARCHAR(50) NOT NULL,
			platform VARCHAR(50) NOT NULL,
			author VARCHAR(50) NOT NULL,
			difficulty DOUBLE PRECISION NOT NULL DEFAULT 0.0,
			quality DOUBLE PRECISION NOT NULL DEFAULT 0.0,
			nb_solutions INTEGER NOT NULL DEFAULT 0,
			nb_comments INTEGER NOT NULL DEFAULT 0,
			status VARCHAR(16) NOT NULL DEFAULT 'pending',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS solutions (
			id UUID PRIMARY KEY,
			hexid VARCHAR(32) UNIQUE NOT NULL,
			crackme_id UUID NOT NULL REFERENCES crackmes(id),
			info TEXT NOT NULL DEFAULT '',
			author VARCHAR(50) NOT NULL,
			status VARCHAR(16) NOT NULL DEFAULT 'pending',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS comments (
			id UUID PRIMARY KEY,
			crackme_hexid VARCHAR(32) NOT NULL,
			author VARCHAR(50) NOT NULL,
			info TEXT NOT NULL,
			status VARCHAR(16) NOT NULL DEFAULT 'published',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS rating_difficulty (
			id UUID PRIMARY KEY,
			author VARCHAR(50) NOT NULL,
			crackme_hexid VARCHAR(32) NOT NULL,
			rating INTEGER NOT NULL CHECK (rating BETWEEN 1 AND 5),
			status VARCHAR(16) NOT NULL DEFAULT 'published',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS rating_quality (
			id UUID PRIMARY KEY,
			author VARCHAR(50) NOT NULL,
			crackme_hexid VARCHAR(32) NOT NULL,
			rating INTEGER NOT NULL CHECK (rating BETWEEN 1 AND 5),
			status VARCHAR(16) NOT NULL DEFAULT 'published',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS notifications (
			id UUID PRIMARY KEY,
			hexid VARCHAR(32) UNIQUE NOT NULL,
			user_name VARCHAR(50) NOT NULL,
			text TEXT NOT NULL,
			seen BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		// One live rating per (author, crackme, kind). Soft-deleted rows are
		// excluded so a re-rate after deletion stays possible.
		`CREATE UNIQUE INDEX IF NOT EXISTS uniq_rating_difficulty_author
			ON rating_difficulty (author, crackme_hexid) WHERE status <> 'deleted'`,
		`CREATE UNIQUE INDEX IF NOT EXISTS uniq_rating_quality_author
			ON rating_quality (author, crackme_hexid) WHERE status <> 'deleted'`,
		`CREATE INDEX IF NOT EXISTS idx_solutions_crackme ON solutions (crackme_id)`,
		`CREATE INDEX IF NOT EXISTS idx_comments_crackme ON comments (crackme_hexid)`,
	}

	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("database.Migrate: %w", err)
		}
	}
	return nil
}
