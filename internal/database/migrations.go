package database

import (
	"fmt"
	"log"
)

// Migrate runs all database migrations
func (db *DB) Migrate() error {
	log.Printf("[DB] Running migrations...")

	migrations := []string{
		// Catalog table
		`CREATE TABLE IF NOT EXISTS movies (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			title TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			type TEXT NOT NULL DEFAULT 'movies',
			size_mb TEXT NOT NULL DEFAULT '',
			dp TEXT NOT NULL DEFAULT '',
			screenshot1 TEXT NOT NULL DEFAULT '',
			screenshot2 TEXT NOT NULL DEFAULT '',
			sd_file_id TEXT,
			hd_file_id TEXT,
			sd_message_id INTEGER,
			hd_message_id INTEGER,
			slug TEXT NOT NULL UNIQUE,
			upload_date DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_movies_type ON movies(type)`,
		`CREATE INDEX IF NOT EXISTS idx_movies_created_at ON movies(created_at)`,

		// Download tokens table
		`CREATE TABLE IF NOT EXISTS download_tokens (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			token TEXT NOT NULL UNIQUE,
			movie_id INTEGER NOT NULL,
			quality TEXT NOT NULL,
			file_id TEXT NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			expires_at DATETIME NOT NULL,
			FOREIGN KEY (movie_id) REFERENCES movies(id) ON DELETE CASCADE
		)`,
		`CREATE INDEX IF NOT EXISTS idx_download_tokens_movie_quality ON download_tokens(movie_id, quality)`,
		`CREATE INDEX IF NOT EXISTS idx_download_tokens_expires_at ON download_tokens(expires_at)`,

		// Sent files table (delivered messages awaiting cleanup)
		`CREATE TABLE IF NOT EXISTS sent_files (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			chat_id INTEGER NOT NULL,
			message_id INTEGER NOT NULL,
			movie_id INTEGER NOT NULL,
			quality TEXT NOT NULL,
			sent_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			delete_at DATETIME NOT NULL,
			FOREIGN KEY (movie_id) REFERENCES movies(id) ON DELETE CASCADE
		)`,
		`CREATE INDEX IF NOT EXISTS idx_sent_files_delete_at ON sent_files(delete_at)`,
		`CREATE INDEX IF NOT EXISTS idx_sent_files_chat_message ON sent_files(chat_id, message_id)`,
	}

	for i, migration := range migrations {
		if _, err := db.Exec(migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i, err)
		}
	}

	log.Printf("[DB] Migrations completed successfully")
	return nil
}
