// Package media declares the catalog collaborators the engine consumes.
// Catalog lookup and binary chapter extraction are owned elsewhere; the
// engine only needs their results.
package media

import (
	"context"
	"time"
)

// Metadata describes one catalog item.
type Metadata struct {
	ID             string
	Name           string
	Author         string
	Type           Type
	RuntimeMS      int64
	StreamURL      string
	Chapters       []Chapter
	RemotePosition int64 // last server-reported position in ms, 0 if none
}

// Type is the kind of media item.
type Type int

const (
	Audiobook Type = iota
	Book
)

// String returns the type name.
func (t Type) String() string {
	switch t {
	case Audiobook:
		return "Audiobook"
	case Book:
		return "Book"
	default:
		return "Unknown"
	}
}

// Chapter is a named marker within an audio item.
type Chapter struct {
	Name  string
	Start time.Duration
}

// Catalog looks up item metadata.
type Catalog interface {
	GetItem(ctx context.Context, id string) (*Metadata, error)
}

// ChapterParser extracts chapter markers from an audio container. The
// binary parsing itself is opaque to the engine.
type ChapterParser func(ctx context.Context, url string) ([]Chapter, error)

// ChapterAt returns the chapter covering pos, or nil if there are no
// chapters. Positions before the first marker map to the first chapter.
func ChapterAt(chapters []Chapter, pos time.Duration) *Chapter {
	if len(chapters) == 0 {
		return nil
	}
	for i := len(chapters) - 1; i >= 0; i-- {
		if pos >= chapters[i].Start {
			return &chapters[i]
		}
	}
	return &chapters[0]
}
