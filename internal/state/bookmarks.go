package state

import (
	"database/sql"
	"time"

	dbutil "github.com/llehouerou/ribbon/internal/db"
	"github.com/llehouerou/ribbon/internal/progress"
)

// SaveBookmark writes a bookmark immediately. Bookmarks are explicit user
// actions, so they skip the debounce used for position records.
func (m *Manager) SaveBookmark(b progress.Bookmark) error {
	_, err := m.db.Exec(`
		INSERT INTO bookmarks (id, item_id, label, locator, position_ms, percent, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, b.ID, b.ItemID, b.Label, b.Position.Locator, b.Position.Millis,
		b.Percent, b.CreatedAt.UnixMilli())
	return err
}

// DeleteBookmark removes a bookmark by ID.
func (m *Manager) DeleteBookmark(id string) error {
	_, err := m.db.Exec(`DELETE FROM bookmarks WHERE id = ?`, id)
	return err
}

// GetBookmarks loads all persisted bookmarks.
func (m *Manager) GetBookmarks() ([]progress.Bookmark, error) {
	rows, err := m.db.Query(`
		SELECT id, item_id, label, locator, position_ms, percent, created_at
		FROM bookmarks
		ORDER BY created_at
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookmarks []progress.Bookmark
	for rows.Next() {
		var b progress.Bookmark
		var locator sql.NullString
		var createdAt int64

		err := rows.Scan(&b.ID, &b.ItemID, &b.Label, &locator,
			&b.Position.Millis, &b.Percent, &createdAt)
		if err != nil {
			return nil, err
		}

		b.Position.Locator = dbutil.NullStringValue(locator)
		b.CreatedAt = time.UnixMilli(createdAt)
		bookmarks = append(bookmarks, b)
	}

	return bookmarks, rows.Err()
}
