package reader

import (
	"sort"
	"strings"
)

// DefaultIndexSamples is the sampling granularity used when building a
// location index.
const DefaultIndexSamples = 1500

// IndexEntry maps one generated locator to its completion fraction.
type IndexEntry struct {
	Locator string
	Percent float64
}

// LocationIndex is the ordered locator/percent table for one document
// under one render-parameter combination. It is owned exclusively by the
// bridge; all conversions go through it so staleness has a single source
// of truth.
type LocationIndex struct {
	entries []IndexEntry
	cmp     func(a, b string) int
	stale   bool
}

// NewLocationIndex builds an index from sampled entries. Entries are
// sorted by percent; cmp orders locators and defaults to lexicographic
// comparison, which matches the renderer's generated locator scheme.
func NewLocationIndex(entries []IndexEntry, cmp func(a, b string) int) *LocationIndex {
	if cmp == nil {
		cmp = strings.Compare
	}
	sorted := append([]IndexEntry(nil), entries...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Percent < sorted[j].Percent
	})
	return &LocationIndex{entries: sorted, cmp: cmp}
}

// Len returns the number of sampled entries.
func (ix *LocationIndex) Len() int { return len(ix.entries) }

// MarkStale invalidates the index after a reflow-affecting change.
func (ix *LocationIndex) MarkStale() { ix.stale = true }

// Stale reports whether the index was invalidated.
func (ix *LocationIndex) Stale() bool { return ix.stale }

// PercentFor converts a locator to a completion fraction. It returns
// false while the index is stale or empty: a stale conversion would be
// computed against the wrong pagination.
func (ix *LocationIndex) PercentFor(locator string) (float64, bool) {
	if ix.stale || len(ix.entries) == 0 {
		return 0, false
	}
	// First entry at or past the locator.
	i := sort.Search(len(ix.entries), func(i int) bool {
		return ix.cmp(ix.entries[i].Locator, locator) >= 0
	})
	if i == len(ix.entries) {
		return ix.entries[len(ix.entries)-1].Percent, true
	}
	return ix.entries[i].Percent, true
}

// LocatorFor converts a completion fraction to the nearest sampled
// locator. It returns false while the index is stale or empty.
func (ix *LocationIndex) LocatorFor(percent float64) (string, bool) {
	if ix.stale || len(ix.entries) == 0 {
		return "", false
	}
	i := sort.Search(len(ix.entries), func(i int) bool {
		return ix.entries[i].Percent >= percent
	})
	if i == len(ix.entries) {
		i = len(ix.entries) - 1
	}
	return ix.entries[i].Locator, true
}
