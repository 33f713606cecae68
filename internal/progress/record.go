// Package progress holds per-item playback and reading positions.
package progress

import "time"

// ItemType identifies the addressing scheme used by a record.
type ItemType int

const (
	Audio ItemType = iota
	Text
)

// String returns the item type name.
func (t ItemType) String() string {
	switch t {
	case Audio:
		return "Audio"
	case Text:
		return "Text"
	default:
		return "Unknown"
	}
}

// Position is a point in a media item. Audio positions carry elapsed
// milliseconds; text positions carry a structural locator whose internal
// format belongs to the renderer.
type Position struct {
	Millis  int64
	Locator string
}

// AtMillis returns an audio position.
func AtMillis(ms int64) Position {
	return Position{Millis: ms}
}

// AtLocator returns a text position.
func AtLocator(locator string) Position {
	return Position{Locator: locator}
}

// IsZero reports whether the position carries no address at all.
func (p Position) IsZero() bool {
	return p.Millis == 0 && p.Locator == ""
}

// Record is the last known position for a media item.
type Record struct {
	ItemID    string
	ItemName  string
	ItemType  ItemType
	Author    string
	Position  Position
	Percent   float64 // completion fraction in [0,1]
	TotalMS   int64   // duration in ms for audio, 1 for text
	UpdatedAt time.Time
}
