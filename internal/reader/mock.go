package reader

import "sync"

// MockRenderer is a test double for the rendering surface. Commands are
// recorded; tests feed events through Emit.
type MockRenderer struct {
	mu         sync.Mutex
	loadCalls  []string
	gotoCalls  []string
	styleCalls []Style
	buildCalls []int
	events     chan Event
	closed     bool
}

// Verify MockRenderer implements Renderer at compile time.
var _ Renderer = (*MockRenderer)(nil)

// NewMockRenderer creates a new mock renderer for testing.
func NewMockRenderer() *MockRenderer {
	return &MockRenderer{
		events: make(chan Event, 32),
	}
}

func (m *MockRenderer) Load(url string) {
	m.mu.Lock()
	m.loadCalls = append(m.loadCalls, url)
	m.mu.Unlock()
}

func (m *MockRenderer) GoToLocator(locator string) {
	m.mu.Lock()
	m.gotoCalls = append(m.gotoCalls, locator)
	m.mu.Unlock()
}

func (m *MockRenderer) ApplyStyle(style Style) {
	m.mu.Lock()
	m.styleCalls = append(m.styleCalls, style)
	m.mu.Unlock()
}

func (m *MockRenderer) BuildIndex(samples int) {
	m.mu.Lock()
	m.buildCalls = append(m.buildCalls, samples)
	m.mu.Unlock()
}

func (m *MockRenderer) Events() <-chan Event {
	return m.events
}

func (m *MockRenderer) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.closed {
		m.closed = true
		close(m.events)
	}
	return nil
}

// Emit pushes an event to the bridge.
func (m *MockRenderer) Emit(e Event) {
	m.events <- e
}

// LoadCalls returns the URLs passed to Load.
func (m *MockRenderer) LoadCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.loadCalls...)
}

// GoToCalls returns the locators passed to GoToLocator.
func (m *MockRenderer) GoToCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.gotoCalls...)
}

// StyleCalls returns the styles passed to ApplyStyle.
func (m *MockRenderer) StyleCalls() []Style {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Style(nil), m.styleCalls...)
}

// BuildCalls returns the sample counts passed to BuildIndex.
func (m *MockRenderer) BuildCalls() []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]int(nil), m.buildCalls...)
}
