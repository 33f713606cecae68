package progress

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// Bookmark is a user-created marker. Immutable once created except for
// deletion.
type Bookmark struct {
	ID        string
	ItemID    string
	Label     string
	Position  Position
	Percent   float64
	CreatedAt time.Time
}

// AddBookmark records a new bookmark and returns its generated ID.
func (s *Store) AddBookmark(b Bookmark) string {
	b.ID = uuid.NewString()
	b.CreatedAt = time.Now()
	s.mu.Lock()
	s.bookmarks = append(s.bookmarks, b)
	fn := s.onBookmark
	s.mu.Unlock()

	if fn != nil {
		fn(b)
	}
	return b.ID
}

// RemoveBookmark deletes a bookmark by ID.
func (s *Store) RemoveBookmark(id string) {
	s.mu.Lock()
	removed := false
	for i, b := range s.bookmarks {
		if b.ID == id {
			s.bookmarks = append(s.bookmarks[:i], s.bookmarks[i+1:]...)
			removed = true
			break
		}
	}
	fn := s.onBookmarkRemoved
	s.mu.Unlock()

	if removed && fn != nil {
		fn(id)
	}
}

// BookmarksFor returns the bookmarks for an item, ordered by position so
// the list is stable for display.
func (s *Store) BookmarksFor(itemID string) []Bookmark {
	s.mu.RLock()
	var result []Bookmark
	for _, b := range s.bookmarks {
		if b.ItemID == itemID {
			result = append(result, b)
		}
	}
	s.mu.RUnlock()

	sort.SliceStable(result, func(i, j int) bool {
		if result[i].Position.Millis != result[j].Position.Millis {
			return result[i].Position.Millis < result[j].Position.Millis
		}
		return result[i].Percent < result[j].Percent
	})
	return result
}

// SeedBookmarks loads bookmarks restored from durable storage. Existing
// bookmarks are kept; IDs are preserved.
func (s *Store) SeedBookmarks(bookmarks []Bookmark) {
	s.mu.Lock()
	s.bookmarks = append(s.bookmarks, bookmarks...)
	s.mu.Unlock()
}

// Seed loads records restored from durable storage without notifying the
// update listener.
func (s *Store) Seed(records []Record) {
	s.mu.Lock()
	for _, r := range records {
		s.records[r.ItemID] = r
	}
	s.mu.Unlock()
}
