// Package player defines the audio playback seam. Decoding and output
// live behind this interface; the engine only needs transport control,
// position queries and a stream of position events.
package player

import (
	"time"
)

// Interface defines the player contract for dependency injection and testing.
type Interface interface {
	// Load opens a media stream and starts playback at the given offset.
	Load(url string, start time.Duration) error
	Stop()
	Pause()
	Resume()
	Toggle()
	State() State
	Position() time.Duration
	Duration() time.Duration
	// SeekTo jumps to an absolute position. The player confirms the seek
	// with a position event at (or near) the target once it takes effect.
	SeekTo(pos time.Duration) error
	SetRate(rate float64)
	// PositionChanged streams position updates as playback advances.
	PositionChanged() <-chan time.Duration
	Done() <-chan struct{}
}
