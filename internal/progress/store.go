package progress

import (
	"sort"
	"sync"
	"time"
)

// Store is the process-wide keyed position state. It holds at most one
// Record per item (last write wins) plus the user's bookmarks. The store
// does no I/O itself; a listener can be attached to observe writes and
// carry them to durable storage.
type Store struct {
	mu                sync.RWMutex
	records           map[string]Record
	bookmarks         []Bookmark
	onUpdate          func(Record)
	onBookmark        func(Bookmark)
	onBookmarkRemoved func(string)
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		records: make(map[string]Record),
	}
}

// OnUpdate registers a listener invoked after every record write.
// The listener is called outside the store lock.
func (s *Store) OnUpdate(fn func(Record)) {
	s.mu.Lock()
	s.onUpdate = fn
	s.mu.Unlock()
}

// OnBookmark registers a listener invoked after every bookmark creation.
// The listener is called outside the store lock.
func (s *Store) OnBookmark(fn func(Bookmark)) {
	s.mu.Lock()
	s.onBookmark = fn
	s.mu.Unlock()
}

// OnBookmarkRemoved registers a listener invoked with the ID of every
// deleted bookmark.
func (s *Store) OnBookmarkRemoved(fn func(id string)) {
	s.mu.Lock()
	s.onBookmarkRemoved = fn
	s.mu.Unlock()
}

// Update replaces the record for r.ItemID. For audio records the percent
// is derived from position/total; for text records the stored percent is
// preserved unless the caller set one, since a locator alone says nothing
// about completion.
func (s *Store) Update(r Record) {
	s.mu.Lock()
	if r.ItemType == Audio {
		if r.TotalMS > 0 {
			r.Percent = float64(r.Position.Millis) / float64(r.TotalMS)
		} else {
			r.Percent = 0
		}
	} else if r.Percent == 0 {
		if prev, ok := s.records[r.ItemID]; ok {
			r.Percent = prev.Percent
		}
	}
	r.UpdatedAt = time.Now()
	s.records[r.ItemID] = r
	fn := s.onUpdate
	s.mu.Unlock()

	if fn != nil {
		fn(r)
	}
}

// UpdatePercent sets only the completion fraction of an existing record.
// It is a no-op for unknown items.
func (s *Store) UpdatePercent(itemID string, percent float64) {
	s.mu.Lock()
	r, ok := s.records[itemID]
	if !ok {
		s.mu.Unlock()
		return
	}
	r.Percent = percent
	r.UpdatedAt = time.Now()
	s.records[itemID] = r
	fn := s.onUpdate
	s.mu.Unlock()

	if fn != nil {
		fn(r)
	}
}

// Get returns the record for an item, or nil if none exists.
func (s *Store) Get(itemID string) *Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.records[itemID]
	if !ok {
		return nil
	}
	return &r
}

// Remove deletes the record for an item.
func (s *Store) Remove(itemID string) {
	s.mu.Lock()
	delete(s.records, itemID)
	s.mu.Unlock()
}

// RecentlyActive returns in-progress records (strictly between 0 and 100%)
// ordered by most recently updated, up to limit.
func (s *Store) RecentlyActive(limit int) []Record {
	s.mu.RLock()
	records := make([]Record, 0, len(s.records))
	for _, r := range s.records {
		if r.Percent > 0 && r.Percent < 1 {
			records = append(records, r)
		}
	}
	s.mu.RUnlock()

	sort.Slice(records, func(i, j int) bool {
		return records[i].UpdatedAt.After(records[j].UpdatedAt)
	})
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records
}
