package session

import "github.com/llehouerou/ribbon/internal/progress"

const eventBufferSize = 16

// PositionChange is emitted when the accepted position moves. Events the
// suppression controller discards never reach subscribers.
type PositionChange struct {
	Position progress.Position
	Percent  float64
}

// Subscription provides event channels for a subscriber.
type Subscription struct {
	PositionChanged <-chan PositionChange
	Done            <-chan struct{}

	// Internal write channels
	positionCh chan PositionChange
	doneCh     chan struct{}
}

// newSubscription creates a new subscription with buffered channels.
func newSubscription() *Subscription {
	s := &Subscription{
		positionCh: make(chan PositionChange, eventBufferSize),
		doneCh:     make(chan struct{}),
	}
	s.PositionChanged = s.positionCh
	s.Done = s.doneCh
	return s
}

// close signals subscribers to stop by closing doneCh.
func (s *Subscription) close() {
	close(s.doneCh)
}

// sendPosition sends a position change event (non-blocking).
func (s *Subscription) sendPosition(e PositionChange) {
	select {
	case s.positionCh <- e:
	default:
		// Drop if buffer full
	}
}
