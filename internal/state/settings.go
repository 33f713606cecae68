package state

import (
	"database/sql"
	"errors"
)

// ReaderSettings are the reflow-affecting reader preferences. Changing
// either field invalidates any location index built under the old values.
type ReaderSettings struct {
	FontSize int    // percentage, e.g. 100
	Theme    string // "dark", "light" or "sepia"
}

// DefaultReaderSettings returns the settings used before any are saved.
func DefaultReaderSettings() ReaderSettings {
	return ReaderSettings{FontSize: 100, Theme: "dark"}
}

// GetReaderSettings loads the persisted reader settings, or the defaults
// if none were saved yet.
func (m *Manager) GetReaderSettings() (ReaderSettings, error) {
	var s ReaderSettings
	row := m.db.QueryRow(`SELECT font_size, theme FROM reader_settings WHERE id = 1`)
	err := row.Scan(&s.FontSize, &s.Theme)
	if errors.Is(err, sql.ErrNoRows) {
		return DefaultReaderSettings(), nil
	}
	if err != nil {
		return ReaderSettings{}, err
	}
	return s, nil
}

// SaveReaderSettings persists the reader settings.
func (m *Manager) SaveReaderSettings(s ReaderSettings) error {
	_, err := m.db.Exec(`
		INSERT INTO reader_settings (id, font_size, theme)
		VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			font_size = excluded.font_size,
			theme = excluded.theme
	`, s.FontSize, s.Theme)
	return err
}

// GetPlaybackRate loads the persisted playback speed, or 1 if none was
// saved yet.
func (m *Manager) GetPlaybackRate() (float64, error) {
	var rate float64
	row := m.db.QueryRow(`SELECT rate FROM player_settings WHERE id = 1`)
	err := row.Scan(&rate)
	if errors.Is(err, sql.ErrNoRows) {
		return 1, nil
	}
	if err != nil {
		return 0, err
	}
	return rate, nil
}

// SavePlaybackRate persists the playback speed.
func (m *Manager) SavePlaybackRate(rate float64) error {
	_, err := m.db.Exec(`
		INSERT INTO player_settings (id, rate)
		VALUES (1, ?)
		ON CONFLICT(id) DO UPDATE SET rate = excluded.rate
	`, rate)
	return err
}
