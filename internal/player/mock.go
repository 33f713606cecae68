package player

import (
	"sync"
	"time"
)

// Mock is a test double for the player.
type Mock struct {
	mu         sync.Mutex
	state      State
	position   time.Duration
	duration   time.Duration
	rate       float64
	loadErr    error
	seekErr    error
	loadCalls  []string
	seekCalls  []time.Duration
	positionCh chan time.Duration
	done       chan struct{}
}

// Verify Mock implements Interface at compile time.
var _ Interface = (*Mock)(nil)

// NewMock creates a new mock player for testing.
func NewMock() *Mock {
	return &Mock{
		state:      Stopped,
		rate:       1,
		positionCh: make(chan time.Duration, 16),
		done:       make(chan struct{}),
	}
}

func (m *Mock) Load(url string, start time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loadCalls = append(m.loadCalls, url)
	if m.loadErr != nil {
		return m.loadErr
	}
	m.position = start
	m.state = Playing
	return nil
}

func (m *Mock) Stop() {
	m.mu.Lock()
	m.state = Stopped
	m.mu.Unlock()
}

func (m *Mock) Pause() {
	m.mu.Lock()
	if m.state == Playing {
		m.state = Paused
	}
	m.mu.Unlock()
}

func (m *Mock) Resume() {
	m.mu.Lock()
	if m.state == Paused {
		m.state = Playing
	}
	m.mu.Unlock()
}

func (m *Mock) Toggle() {
	m.mu.Lock()
	switch m.state {
	case Playing:
		m.state = Paused
	case Paused:
		m.state = Playing
	case Stopped:
		// Nothing to toggle when stopped
	}
	m.mu.Unlock()
}

func (m *Mock) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *Mock) Position() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.position
}

func (m *Mock) Duration() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.duration
}

func (m *Mock) SeekTo(pos time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seekCalls = append(m.seekCalls, pos)
	if m.seekErr != nil {
		return m.seekErr
	}
	m.position = pos
	return nil
}

func (m *Mock) SetRate(rate float64) {
	m.mu.Lock()
	m.rate = rate
	m.mu.Unlock()
}

func (m *Mock) PositionChanged() <-chan time.Duration {
	return m.positionCh
}

func (m *Mock) Done() <-chan struct{} {
	return m.done
}

// Test helpers

// SetPosition sets the reported position without emitting an event.
func (m *Mock) SetPosition(pos time.Duration) {
	m.mu.Lock()
	m.position = pos
	m.mu.Unlock()
}

// SetDuration sets the reported duration.
func (m *Mock) SetDuration(d time.Duration) {
	m.mu.Lock()
	m.duration = d
	m.mu.Unlock()
}

// SetLoadErr makes subsequent Load calls fail.
func (m *Mock) SetLoadErr(err error) {
	m.mu.Lock()
	m.loadErr = err
	m.mu.Unlock()
}

// EmitPosition pushes a position event to subscribers.
func (m *Mock) EmitPosition(pos time.Duration) {
	m.mu.Lock()
	m.position = pos
	m.mu.Unlock()
	m.positionCh <- pos
}

// LoadCalls returns the URLs passed to Load.
func (m *Mock) LoadCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.loadCalls...)
}

// SeekCalls returns the positions passed to SeekTo.
func (m *Mock) SeekCalls() []time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]time.Duration(nil), m.seekCalls...)
}

// Rate returns the last playback rate set.
func (m *Mock) Rate() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rate
}
