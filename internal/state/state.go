// Package state persists positions, bookmarks and reader settings to a
// local SQLite database.
package state

import (
	"database/sql"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/adrg/xdg"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/llehouerou/ribbon/internal/progress"
)

const (
	appName      = "ribbon"
	dbFileName   = "ribbon.db"
	saveDebounce = 500 * time.Millisecond
)

// Manager owns the database handle. Record writes are debounced: the
// position store pushes a write on every flush tick, but a burst of
// updates for the same item collapses into one disk write.
type Manager struct {
	db        *sql.DB
	saveMu    sync.Mutex
	saveTimer *time.Timer
	pending   map[string]progress.Record
}

func Open() (*Manager, error) {
	dbPath, err := getDBPath()
	if err != nil {
		return nil, err
	}

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}

	if err := initSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Manager{db: db, pending: make(map[string]progress.Record)}, nil
}

// OpenMemory opens an in-memory database, for tests.
func OpenMemory() (*Manager, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, err
	}
	if err := initSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Manager{db: db, pending: make(map[string]progress.Record)}, nil
}

func (m *Manager) Close() error {
	m.saveMu.Lock()
	if m.saveTimer != nil {
		m.saveTimer.Stop()
	}
	pending := m.pending
	m.pending = make(map[string]progress.Record)
	m.saveMu.Unlock()

	// Flush pending records
	for _, r := range pending {
		_ = saveRecord(m.db, r)
	}

	return m.db.Close()
}

func (m *Manager) DB() *sql.DB {
	return m.db
}

// SaveRecord schedules a debounced write of one position record.
// Last write per item wins.
func (m *Manager) SaveRecord(r progress.Record) {
	m.saveMu.Lock()
	defer m.saveMu.Unlock()

	m.pending[r.ItemID] = r

	if m.saveTimer != nil {
		m.saveTimer.Stop()
	}

	m.saveTimer = time.AfterFunc(saveDebounce, func() {
		m.saveMu.Lock()
		pending := m.pending
		m.pending = make(map[string]progress.Record)
		m.saveMu.Unlock()

		for _, r := range pending {
			_ = saveRecord(m.db, r)
		}
	})
}

// GetRecords loads all persisted position records.
func (m *Manager) GetRecords() ([]progress.Record, error) {
	return getRecords(m.db)
}

func getDBPath() (string, error) {
	return xdg.DataFile(filepath.Join(appName, dbFileName))
}
