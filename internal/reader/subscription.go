package reader

import "github.com/llehouerou/ribbon/internal/errmsg"

const eventBufferSize = 16

// PositionChange is emitted when the accepted reading position moves.
// PercentValid is false while the index is stale or missing and the
// display should fall back to locator-only.
type PositionChange struct {
	Locator      string
	Percent      float64
	PercentValid bool
}

// ErrorEvent is emitted when a renderer operation fails. Terminal errors
// end the session; everything else is an internal recovery surfaced for
// optional display.
type ErrorEvent struct {
	Op       errmsg.Op
	Err      error
	Terminal bool
}

// Subscription provides event channels for a subscriber.
type Subscription struct {
	PositionChanged <-chan PositionChange
	Error           <-chan ErrorEvent
	Done            <-chan struct{}

	// Internal write channels
	positionCh chan PositionChange
	errorCh    chan ErrorEvent
	doneCh     chan struct{}
}

// newSubscription creates a new subscription with buffered channels.
func newSubscription() *Subscription {
	s := &Subscription{
		positionCh: make(chan PositionChange, eventBufferSize),
		errorCh:    make(chan ErrorEvent, eventBufferSize),
		doneCh:     make(chan struct{}),
	}
	s.PositionChanged = s.positionCh
	s.Error = s.errorCh
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

// sendError sends an error event (non-blocking).
func (s *Subscription) sendError(e ErrorEvent) {
	select {
	case s.errorCh <- e:
	default:
	}
}
