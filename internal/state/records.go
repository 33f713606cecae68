package state

import (
	"database/sql"
	"time"

	dbutil "github.com/llehouerou/ribbon/internal/db"
	"github.com/llehouerou/ribbon/internal/progress"
)

func saveRecord(sqlDB *sql.DB, r progress.Record) error {
	_, err := sqlDB.Exec(`
		INSERT INTO progress_records (item_id, item_name, item_type, author, locator, position_ms, percent, total_ms, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(item_id) DO UPDATE SET
			item_name = excluded.item_name,
			item_type = excluded.item_type,
			author = excluded.author,
			locator = excluded.locator,
			position_ms = excluded.position_ms,
			percent = excluded.percent,
			total_ms = excluded.total_ms,
			updated_at = excluded.updated_at
	`, r.ItemID, r.ItemName, int(r.ItemType), r.Author, r.Position.Locator,
		r.Position.Millis, r.Percent, r.TotalMS, r.UpdatedAt.UnixMilli())
	return err
}

func getRecords(sqlDB *sql.DB) ([]progress.Record, error) {
	rows, err := sqlDB.Query(`
		SELECT item_id, item_name, item_type, author, locator, position_ms, percent, total_ms, updated_at
		FROM progress_records
		ORDER BY updated_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []progress.Record
	for rows.Next() {
		var r progress.Record
		var itemType int
		var author, locator sql.NullString
		var updatedAt int64

		err := rows.Scan(&r.ItemID, &r.ItemName, &itemType, &author, &locator,
			&r.Position.Millis, &r.Percent, &r.TotalMS, &updatedAt)
		if err != nil {
			return nil, err
		}

		r.ItemType = progress.ItemType(itemType)
		r.Author = dbutil.NullStringValue(author)
		r.Position.Locator = dbutil.NullStringValue(locator)
		r.UpdatedAt = time.UnixMilli(updatedAt)
		records = append(records, r)
	}

	return records, rows.Err()
}
