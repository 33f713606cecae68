package state

import (
	"database/sql"
)

const currentSchemaVersion = 4

func initSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY
		);

		CREATE TABLE IF NOT EXISTS progress_records (
			item_id TEXT PRIMARY KEY,
			item_name TEXT NOT NULL,
			item_type INTEGER NOT NULL,
			author TEXT,
			locator TEXT,
			position_ms INTEGER NOT NULL DEFAULT 0,
			percent REAL NOT NULL DEFAULT 0,
			total_ms INTEGER NOT NULL DEFAULT 0,
			updated_at INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_progress_updated_at ON progress_records(updated_at DESC);

		CREATE TABLE IF NOT EXISTS bookmarks (
			id TEXT PRIMARY KEY,
			item_id TEXT NOT NULL,
			label TEXT NOT NULL,
			locator TEXT,
			position_ms INTEGER NOT NULL DEFAULT 0,
			percent REAL NOT NULL DEFAULT 0,
			created_at INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_bookmarks_item ON bookmarks(item_id);

		CREATE TABLE IF NOT EXISTS reader_settings (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			font_size INTEGER NOT NULL DEFAULT 100,
			theme TEXT NOT NULL DEFAULT 'dark'
		);

		CREATE TABLE IF NOT EXISTS player_settings (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			rate REAL NOT NULL DEFAULT 1
		);
	`)
	if err != nil {
		return err
	}

	// Set initial version if not exists
	_, err = db.Exec(`
		INSERT OR IGNORE INTO schema_version (version) VALUES (?)
	`, currentSchemaVersion)
	if err != nil {
		return err
	}

	// Migration: add author column if missing
	_, _ = db.Exec(`ALTER TABLE progress_records ADD COLUMN author TEXT`)

	return nil
}
