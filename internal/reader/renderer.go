// Package reader bridges the engine to an out-of-process text renderer.
// The renderer paginates the document and owns the locator format; the
// bridge owns resume navigation, the locator/percent location index and
// the suppression of in-flight position updates.
package reader

// Style carries the reflow-affecting render parameters. Any change
// invalidates a location index built under the previous values.
type Style struct {
	FontSize int    // percentage, e.g. 100
	Theme    string // "dark", "light" or "sepia"
	// Locator to restore after the reflow, usually the position captured
	// just before the style change.
	RestoreLocator string
}

// Renderer is the isolated rendering surface. Every command is one-way
// and non-blocking; completion is observed through the event stream.
// Events are delivered in the order emitted (single channel, FIFO).
type Renderer interface {
	// Load starts parsing the document. Completion is signalled by a
	// Ready event, failure by a terminal Error event.
	Load(url string)
	// GoToLocator jumps to a structural locator. Works without an index.
	GoToLocator(locator string)
	// ApplyStyle reapplies the document under new render parameters.
	ApplyStyle(style Style)
	// BuildIndex samples the document and emits IndexReady when done.
	BuildIndex(samples int)
	Events() <-chan Event
	Close() error
}

// EventType tags renderer events.
type EventType int

const (
	// EventReady: the document is parsed and displayed.
	EventReady EventType = iota
	// EventIndexReady: a location index build finished; Entries is set.
	EventIndexReady
	// EventRelocated: the visible position changed; Locator and Percent
	// are set (Percent is negative when the renderer has no index).
	EventRelocated
	// EventNavigationComplete: a GoToLocator command took effect.
	EventNavigationComplete
	// EventStyleApplied: an ApplyStyle command took effect; Locator is
	// the restored position.
	EventStyleApplied
	// EventError: something failed. Terminal errors end the session.
	EventError
)

// String returns the event type name.
func (t EventType) String() string {
	switch t {
	case EventReady:
		return "Ready"
	case EventIndexReady:
		return "IndexReady"
	case EventRelocated:
		return "Relocated"
	case EventNavigationComplete:
		return "NavigationComplete"
	case EventStyleApplied:
		return "StyleApplied"
	case EventError:
		return "Error"
	default:
		return "Unknown"
	}
}

// Event is one renderer signal. Which fields are meaningful depends on
// the type tag.
type Event struct {
	Type     EventType
	Locator  string
	Percent  float64
	Entries  []IndexEntry
	Err      error
	Terminal bool
}
