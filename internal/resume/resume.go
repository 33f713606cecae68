// Package resume picks the position a newly opened session should start at.
package resume

import (
	"github.com/llehouerou/ribbon/internal/progress"
)

// minTextPercent is the completion fraction below which a stored text
// position is treated as "no saved progress". Immediately after an index
// rebuild the stored percent can sit near zero until the first relocated
// event arrives; resuming there would clobber a genuine position.
const minTextPercent = 0.01

// Source identifies where a resume target came from.
type Source int

const (
	SourceStart Source = iota
	SourceBookmark
	SourceLocal
	SourceRemote
)

// String returns the source name.
func (s Source) String() string {
	switch s {
	case SourceStart:
		return "Start"
	case SourceBookmark:
		return "Bookmark"
	case SourceLocal:
		return "Local"
	case SourceRemote:
		return "Remote"
	default:
		return "Unknown"
	}
}

// Target is a resolved resume position.
type Target struct {
	Position progress.Position
	Percent  float64
	Source   Source
}

// Start is the zero target: begin at the start of the media.
var Start = Target{Source: SourceStart}

// Resolve picks the position to open a session at. Priority, highest
// first: an explicit bookmark target for this session, the local record
// if its position is non-trivial, then the remote-reported position.
// Audio positions are trivial at 0 ms; text positions are trivial below
// minTextPercent. Resolve is pure: callers apply the result.
func Resolve(bookmark *Target, local *progress.Record, remote *Target) Target {
	if bookmark != nil {
		t := *bookmark
		t.Source = SourceBookmark
		return t
	}

	if local != nil {
		switch local.ItemType {
		case progress.Audio:
			if local.Position.Millis > 0 {
				return Target{Position: local.Position, Percent: local.Percent, Source: SourceLocal}
			}
		case progress.Text:
			if local.Percent > minTextPercent {
				return Target{Position: local.Position, Percent: local.Percent, Source: SourceLocal}
			}
		}
	}

	if remote != nil && !remote.Position.IsZero() {
		t := *remote
		t.Source = SourceRemote
		return t
	}

	return Start
}
