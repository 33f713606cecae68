package reader

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/llehouerou/ribbon/internal/media"
	"github.com/llehouerou/ribbon/internal/progress"
	"github.com/llehouerou/ribbon/internal/remote"
	"github.com/llehouerou/ribbon/internal/state"
)

type recordingReporter struct {
	mu      sync.Mutex
	reports []remote.ProgressReport
}

func (r *recordingReporter) Report(_ context.Context, p remote.ProgressReport) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reports = append(r.reports, p)
	return nil
}

func (r *recordingReporter) Reports() []remote.ProgressReport {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]remote.ProgressReport(nil), r.reports...)
}

type stubCatalog struct {
	item *media.Metadata
	err  error
}

func (c *stubCatalog) GetItem(_ context.Context, _ string) (*media.Metadata, error) {
	if c.err != nil {
		return nil, c.err
	}
	return c.item, nil
}

func textItem() *media.Metadata {
	return &media.Metadata{
		ID:        "book-1",
		Name:      "A Quiet Novel",
		Author:    "R. Example",
		Type:      media.Book,
		StreamURL: "https://example.org/books/book-1.epub",
	}
}

// sampleEntries spans the document in ten percent steps with locators
// that sort in reading order.
func sampleEntries() []IndexEntry {
	return []IndexEntry{
		{Locator: "loc-00", Percent: 0},
		{Locator: "loc-01", Percent: 0.1},
		{Locator: "loc-02", Percent: 0.2},
		{Locator: "loc-03", Percent: 0.3},
		{Locator: "loc-04", Percent: 0.4},
		{Locator: "loc-05", Percent: 0.5},
		{Locator: "loc-06", Percent: 0.6},
		{Locator: "loc-07", Percent: 0.7},
		{Locator: "loc-08", Percent: 0.8},
		{Locator: "loc-09", Percent: 0.9},
		{Locator: "loc-10", Percent: 1},
	}
}

func openBridge(t *testing.T, store *progress.Store, opts Options) (*Bridge, *MockRenderer) {
	t.Helper()

	mock := NewMockRenderer()
	opts.Renderer = mock
	opts.Store = store
	opts.Catalog = &stubCatalog{item: textItem()}
	if opts.FlushInterval == 0 {
		// Tests drive flushes explicitly.
		opts.FlushInterval = time.Hour
	}

	b, err := OpenText(context.Background(), "book-1", nil, opts)
	if err != nil {
		t.Fatalf("OpenText failed: %v", err)
	}
	t.Cleanup(func() { b.Close() })
	return b, mock
}

// waitFor polls cond until it holds or the test deadline expires.
func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for !cond() {
		select {
		case <-deadline:
			t.Fatal(msg)
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func waitPosition(t *testing.T, sub *Subscription) PositionChange {
	t.Helper()
	select {
	case e := <-sub.PositionChanged:
		return e
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for position event")
		return PositionChange{}
	}
}

func waitError(t *testing.T, sub *Subscription) ErrorEvent {
	t.Helper()
	select {
	case e := <-sub.Error:
		return e
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for error event")
		return ErrorEvent{}
	}
}

func TestOpenText_LoadsDocument(t *testing.T) {
	_, mock := openBridge(t, progress.NewStore(), Options{})

	calls := mock.LoadCalls()
	if len(calls) != 1 || calls[0] != "https://example.org/books/book-1.epub" {
		t.Errorf("unexpected load calls: %v", calls)
	}
}

func TestOpenText_NoProgressStartsAtBeginning(t *testing.T) {
	b, mock := openBridge(t, progress.NewStore(), Options{})

	mock.Emit(Event{Type: EventReady})
	waitFor(t, func() bool { return b.Phase() == PhaseAwaitingIndex }, "never left Initializing")

	if got := mock.GoToCalls(); len(got) != 0 {
		t.Errorf("unexpected navigation on fresh item: %v", got)
	}
	if got := mock.BuildCalls(); len(got) != 1 || got[0] != DefaultIndexSamples {
		t.Errorf("BuildCalls = %v, want one build with %d samples", got, DefaultIndexSamples)
	}
}

func TestOpenText_ResumeLocatorReplayedOnReady(t *testing.T) {
	store := progress.NewStore()
	store.Update(progress.Record{
		ItemID:   "book-1",
		ItemType: progress.Text,
		Position: progress.AtLocator("loc-04"),
		Percent:  0.4,
		TotalMS:  1,
	})

	b, mock := openBridge(t, store, Options{})

	if b.Phase() != PhaseInitializing {
		t.Errorf("Phase = %v before ready, want Initializing", b.Phase())
	}

	mock.Emit(Event{Type: EventReady})
	waitFor(t, func() bool { return len(mock.GoToCalls()) == 1 }, "resume jump never issued")

	if got := mock.GoToCalls()[0]; got != "loc-04" {
		t.Errorf("resumed at %q, want loc-04", got)
	}
}

func TestOpenText_ResumePercentWaitsForIndex(t *testing.T) {
	store := progress.NewStore()
	store.Update(progress.Record{
		ItemID:   "book-1",
		ItemType: progress.Text,
		Position: progress.AtLocator(""),
		Percent:  0.4,
		TotalMS:  1,
	})

	_, mock := openBridge(t, store, Options{})

	// Index finishes before the renderer is ready. The percent target
	// must still be converted and replayed once ready arrives.
	mock.Emit(Event{Type: EventIndexReady, Entries: sampleEntries()})
	mock.Emit(Event{Type: EventReady})

	waitFor(t, func() bool { return len(mock.GoToCalls()) == 1 }, "resume jump never issued")
	if got := mock.GoToCalls()[0]; got != "loc-04" {
		t.Errorf("resumed at %q, want loc-04", got)
	}
}

func TestPendingNavigationLastIntentWins(t *testing.T) {
	b, mock := openBridge(t, progress.NewStore(), Options{})

	// Two requests queued before the renderer is ready: only the newest
	// survives.
	b.GoToLocator("loc-02")
	b.GoToPercent(0.5)

	mock.Emit(Event{Type: EventReady})
	waitFor(t, func() bool { return len(mock.BuildCalls()) == 1 }, "index build never requested")

	mock.Emit(Event{Type: EventIndexReady, Entries: sampleEntries()})
	waitFor(t, func() bool { return len(mock.GoToCalls()) == 1 }, "pending jump never issued")

	calls := mock.GoToCalls()
	if len(calls) != 1 || calls[0] != "loc-05" {
		t.Errorf("GoToCalls = %v, want only the superseding percent target (loc-05)", calls)
	}
}

func TestResumeSupersededByPercentDeepLink(t *testing.T) {
	store := progress.NewStore()
	store.Update(progress.Record{
		ItemID:   "book-1",
		ItemType: progress.Text,
		Position: progress.AtLocator("loc-02"),
		Percent:  0.2,
		TotalMS:  1,
	})

	b, mock := openBridge(t, store, Options{})

	// A percent deep link lands while the resume target is still waiting
	// for the renderer. The resume locator is discarded.
	b.GoToPercent(0.7)

	mock.Emit(Event{Type: EventReady})
	waitFor(t, func() bool { return len(mock.BuildCalls()) == 1 }, "index build never requested")
	mock.Emit(Event{Type: EventIndexReady, Entries: sampleEntries()})

	waitFor(t, func() bool { return len(mock.GoToCalls()) == 1 }, "deep link jump never issued")
	calls := mock.GoToCalls()
	if len(calls) != 1 || calls[0] != "loc-07" {
		t.Errorf("GoToCalls = %v, want only loc-07", calls)
	}
}

func TestRelocatedUpdatesPosition(t *testing.T) {
	b, mock := openBridge(t, progress.NewStore(), Options{})
	sub := b.Subscribe()

	mock.Emit(Event{Type: EventReady})
	mock.Emit(Event{Type: EventIndexReady, Entries: sampleEntries()})
	waitFor(t, func() bool { return b.Phase() == PhaseReady }, "never reached Ready")

	mock.Emit(Event{Type: EventRelocated, Locator: "loc-03", Percent: 0.3})

	e := waitPosition(t, sub)
	if e.Locator != "loc-03" {
		t.Errorf("event locator = %q, want loc-03", e.Locator)
	}
	if !e.PercentValid || e.Percent != 0.3 {
		t.Errorf("event percent = %v (valid %v), want 0.3 valid", e.Percent, e.PercentValid)
	}

	if got := b.Locator(); got != "loc-03" {
		t.Errorf("Locator = %q, want loc-03", got)
	}
	if pct, ok := b.Percent(); !ok || pct != 0.3 {
		t.Errorf("Percent = %v (%v), want 0.3 true", pct, ok)
	}
}

func TestRelocatedDeferredDuringNavigation(t *testing.T) {
	b, mock := openBridge(t, progress.NewStore(), Options{})
	sub := b.Subscribe()

	mock.Emit(Event{Type: EventReady})
	mock.Emit(Event{Type: EventIndexReady, Entries: sampleEntries()})
	waitFor(t, func() bool { return b.Phase() == PhaseReady }, "never reached Ready")

	b.GoToLocator("loc-07")
	waitFor(t, func() bool { return len(mock.GoToCalls()) == 1 }, "jump never issued")

	// Relocated arriving while the navigation is in flight is held back.
	mock.Emit(Event{Type: EventRelocated, Locator: "loc-07", Percent: 0.7})

	select {
	case e := <-sub.PositionChanged:
		t.Fatalf("position surfaced during navigation: %+v", e)
	case <-time.After(50 * time.Millisecond):
	}

	mock.Emit(Event{Type: EventNavigationComplete})

	e := waitPosition(t, sub)
	if e.Locator != "loc-07" || !e.PercentValid || e.Percent != 0.7 {
		t.Errorf("post-navigation event = %+v, want loc-07 at 0.7", e)
	}
}

func TestGoToPercentWithFreshIndex(t *testing.T) {
	b, mock := openBridge(t, progress.NewStore(), Options{})

	mock.Emit(Event{Type: EventReady})
	mock.Emit(Event{Type: EventIndexReady, Entries: sampleEntries()})
	waitFor(t, func() bool { return b.Phase() == PhaseReady }, "never reached Ready")

	b.GoToPercent(0.8)
	waitFor(t, func() bool { return len(mock.GoToCalls()) == 1 }, "jump never issued")

	if got := mock.GoToCalls()[0]; got != "loc-08" {
		t.Errorf("jumped to %q, want loc-08", got)
	}
}

func TestGoToLocatorSuppressesBeforeRecordingIntent(t *testing.T) {
	b, mock := openBridge(t, progress.NewStore(), Options{})
	sub := b.Subscribe()

	// Request before the renderer is ready: the window must already be
	// open, so a relocation arriving now is held rather than surfaced.
	b.GoToLocator("loc-04")
	if !b.guard.Suppressed() {
		t.Fatal("suppression not active after navigation request")
	}
	mock.Emit(Event{Type: EventRelocated, Locator: "loc-01", Percent: 0.1})

	mock.Emit(Event{Type: EventReady})
	waitFor(t, func() bool { return len(mock.GoToCalls()) == 1 }, "pending jump never issued")
	if got := mock.GoToCalls()[0]; got != "loc-04" {
		t.Errorf("jumped to %q, want loc-04", got)
	}

	mock.Emit(Event{Type: EventRelocated, Locator: "loc-04", Percent: 0.4})
	mock.Emit(Event{Type: EventNavigationComplete, Locator: "loc-04"})

	if got := waitPosition(t, sub); got.Locator != "loc-04" {
		t.Errorf("locator = %q, want loc-04", got.Locator)
	}
}

func TestGoToPercentReleasesSuppressionWhenUnresolvable(t *testing.T) {
	b, mock := openBridge(t, progress.NewStore(), Options{})
	sub := b.Subscribe()

	mock.Emit(Event{Type: EventReady})
	// An index with no samples: fresh, but every conversion fails.
	mock.Emit(Event{Type: EventIndexReady})
	waitFor(t, func() bool { return b.Phase() == PhaseReady }, "never reached Ready")

	b.GoToPercent(0.5)
	if len(mock.GoToCalls()) != 0 {
		t.Fatalf("jump issued for unresolvable percent: %v", mock.GoToCalls())
	}
	if b.guard.Suppressed() {
		t.Fatal("suppression left open after abandoned navigation")
	}

	// Ordinary relocations flow again.
	mock.Emit(Event{Type: EventRelocated, Locator: "loc-03", Percent: 0.3})
	if got := waitPosition(t, sub); got.Locator != "loc-03" {
		t.Errorf("locator = %q, want loc-03", got.Locator)
	}
}

func TestStyleChangeInvalidatesIndex(t *testing.T) {
	var saved []state.ReaderSettings
	b, mock := openBridge(t, progress.NewStore(), Options{
		SaveSettings: func(s state.ReaderSettings) { saved = append(saved, s) },
	})
	sub := b.Subscribe()

	mock.Emit(Event{Type: EventReady})
	mock.Emit(Event{Type: EventIndexReady, Entries: sampleEntries()})
	waitFor(t, func() bool { return b.Phase() == PhaseReady }, "never reached Ready")

	mock.Emit(Event{Type: EventRelocated, Locator: "loc-06", Percent: 0.6})
	waitPosition(t, sub)

	b.SetFontSize(10)

	if _, ok := b.Percent(); ok {
		t.Error("percent still trusted after a reflow-affecting change")
	}
	if got := b.Phase(); got != PhaseAwaitingIndex {
		t.Errorf("Phase = %v, want AwaitingIndex while the index rebuilds", got)
	}
	if _, ok := b.PercentFor("loc-03"); ok {
		t.Error("PercentFor answered through a stale index")
	}

	styles := mock.StyleCalls()
	if len(styles) != 1 {
		t.Fatalf("expected 1 style call, got %d", len(styles))
	}
	if styles[0].FontSize != 110 || styles[0].RestoreLocator != "loc-06" {
		t.Errorf("style = %+v, want font 110 restoring loc-06", styles[0])
	}
	if len(saved) != 1 || saved[0].FontSize != 110 {
		t.Errorf("saved settings = %v, want one save with font 110", saved)
	}

	// The renderer reapplies the document and the locator survives.
	mock.Emit(Event{Type: EventStyleApplied})

	e := waitPosition(t, sub)
	if e.Locator != "loc-06" || e.PercentValid {
		t.Errorf("post-style event = %+v, want loc-06 with percent invalid", e)
	}

	// A rebuild was requested; once the fresh index lands percent
	// display comes back.
	waitFor(t, func() bool { return len(mock.BuildCalls()) == 2 }, "rebuild never requested")
	mock.Emit(Event{Type: EventIndexReady, Entries: sampleEntries()})

	e = waitPosition(t, sub)
	if !e.PercentValid || e.Percent != 0.6 {
		t.Errorf("recomputed event = %+v, want 0.6 valid", e)
	}
	if got := b.Phase(); got != PhaseReady {
		t.Errorf("Phase = %v after rebuild, want Ready", got)
	}
}

func TestStyleChangeDropsMidReflowRelocation(t *testing.T) {
	b, mock := openBridge(t, progress.NewStore(), Options{})
	sub := b.Subscribe()

	mock.Emit(Event{Type: EventReady})
	mock.Emit(Event{Type: EventIndexReady, Entries: sampleEntries()})
	waitFor(t, func() bool { return b.Phase() == PhaseReady }, "never reached Ready")
	mock.Emit(Event{Type: EventRelocated, Locator: "loc-03", Percent: 0.3})
	waitPosition(t, sub)

	b.SetTheme("sepia")

	// The renderer reflows and reports a transient position mid-reapply.
	// It must not survive the style change and resurface later.
	mock.Emit(Event{Type: EventRelocated, Locator: "loc-01", Percent: 0.1})
	mock.Emit(Event{Type: EventStyleApplied})

	e := waitPosition(t, sub)
	if e.Locator != "loc-03" {
		t.Fatalf("post-style locator = %q, want loc-03 restored", e.Locator)
	}

	waitFor(t, func() bool { return len(mock.BuildCalls()) == 2 }, "rebuild never requested")
	mock.Emit(Event{Type: EventIndexReady, Entries: sampleEntries()})
	waitPosition(t, sub)

	b.GoToLocator("loc-08")
	waitFor(t, func() bool { return len(mock.GoToCalls()) == 1 }, "jump never issued")
	mock.Emit(Event{Type: EventNavigationComplete})
	mock.Emit(Event{Type: EventRelocated, Locator: "loc-08", Percent: 0.8})

	e = waitPosition(t, sub)
	if e.Locator != "loc-08" {
		t.Errorf("post-navigation locator = %q, want loc-08", e.Locator)
	}
	if got := b.Locator(); got != "loc-08" {
		t.Errorf("Locator = %q, want loc-08", got)
	}
}

func TestSetFontSizeClamps(t *testing.T) {
	b, mock := openBridge(t, progress.NewStore(), Options{})

	mock.Emit(Event{Type: EventReady})
	waitFor(t, func() bool { return b.Phase() == PhaseAwaitingIndex }, "never left Initializing")

	b.SetFontSize(500)
	if got := b.Settings().FontSize; got != 200 {
		t.Errorf("FontSize = %d, want clamped to 200", got)
	}
	b.SetFontSize(-500)
	if got := b.Settings().FontSize; got != 50 {
		t.Errorf("FontSize = %d, want clamped to 50", got)
	}
}

func TestSetTheme(t *testing.T) {
	b, mock := openBridge(t, progress.NewStore(), Options{})

	mock.Emit(Event{Type: EventReady})
	waitFor(t, func() bool { return b.Phase() == PhaseAwaitingIndex }, "never left Initializing")

	b.SetTheme("sepia")
	if got := b.Settings().Theme; got != "sepia" {
		t.Errorf("Theme = %q, want sepia", got)
	}
	styles := mock.StyleCalls()
	if len(styles) != 1 || styles[0].Theme != "sepia" {
		t.Errorf("style calls = %v, want one with sepia", styles)
	}
}

func TestNavigationErrorRecoverable(t *testing.T) {
	b, mock := openBridge(t, progress.NewStore(), Options{})
	sub := b.Subscribe()

	mock.Emit(Event{Type: EventReady})
	mock.Emit(Event{Type: EventIndexReady, Entries: sampleEntries()})
	waitFor(t, func() bool { return b.Phase() == PhaseReady }, "never reached Ready")

	mock.Emit(Event{Type: EventRelocated, Locator: "loc-02", Percent: 0.2})
	waitPosition(t, sub)

	b.GoToLocator("loc-09")
	mock.Emit(Event{Type: EventError, Err: errors.New("render frame detached")})

	e := waitError(t, sub)
	if e.Terminal {
		t.Error("navigation failure reported as terminal")
	}

	// The session stays usable at the last good position.
	if got := b.Locator(); got != "loc-02" {
		t.Errorf("Locator = %q, want loc-02", got)
	}
	if got := b.Phase(); got != PhaseReady {
		t.Errorf("Phase = %v, want Ready", got)
	}
}

func TestTerminalLoadError(t *testing.T) {
	b, mock := openBridge(t, progress.NewStore(), Options{})
	sub := b.Subscribe()

	wantErr := errors.New("not a valid epub")
	mock.Emit(Event{Type: EventError, Err: wantErr, Terminal: true})

	e := waitError(t, sub)
	if !e.Terminal {
		t.Error("terminal error reported as recoverable")
	}
	if !errors.Is(e.Err, wantErr) {
		t.Errorf("error = %v, want %v", e.Err, wantErr)
	}
	if got := b.Phase(); got != PhaseFailed {
		t.Errorf("Phase = %v, want Failed", got)
	}
	if !errors.Is(b.Err(), wantErr) {
		t.Errorf("Err = %v, want %v", b.Err(), wantErr)
	}
}

func TestFlushWritesTextRecord(t *testing.T) {
	store := progress.NewStore()
	reporter := &recordingReporter{}
	b, mock := openBridge(t, store, Options{Reporter: reporter})
	sub := b.Subscribe()

	mock.Emit(Event{Type: EventReady})
	mock.Emit(Event{Type: EventIndexReady, Entries: sampleEntries()})
	waitFor(t, func() bool { return b.Phase() == PhaseReady }, "never reached Ready")
	mock.Emit(Event{Type: EventRelocated, Locator: "loc-04", Percent: 0.4})
	waitPosition(t, sub)

	b.flush()

	r := store.Get("book-1")
	if r == nil {
		t.Fatal("expected a record after flush")
	}
	if r.ItemType != progress.Text {
		t.Errorf("record type = %v, want Text", r.ItemType)
	}
	if r.Position.Locator != "loc-04" {
		t.Errorf("record locator = %q, want loc-04", r.Position.Locator)
	}
	if r.Percent != 0.4 {
		t.Errorf("record percent = %v, want 0.4", r.Percent)
	}

	reports := reporter.Reports()
	if len(reports) != 1 {
		t.Fatalf("expected 1 report, got %d", len(reports))
	}
	want := int64(float64(fallbackTotalTicks) * 0.4)
	if reports[0].PositionTicks != want {
		t.Errorf("report ticks = %d, want %d", reports[0].PositionTicks, want)
	}
	if !reports[0].IsPaused {
		t.Error("text reports are always paused")
	}
}

func TestFlushWithoutIndexSkipsRemoteReport(t *testing.T) {
	store := progress.NewStore()
	reporter := &recordingReporter{}
	b, mock := openBridge(t, store, Options{Reporter: reporter})
	sub := b.Subscribe()

	// No index yet: the locator is accepted but percent stays unknown.
	mock.Emit(Event{Type: EventReady})
	waitFor(t, func() bool { return b.Phase() == PhaseAwaitingIndex }, "never left Initializing")
	mock.Emit(Event{Type: EventRelocated, Locator: "loc-02", Percent: 0.2})
	waitPosition(t, sub)

	b.flush()

	// The locator is still persisted locally.
	r := store.Get("book-1")
	if r == nil || r.Position.Locator != "loc-02" {
		t.Errorf("record = %v, want locator loc-02", r)
	}
	// But there is no trustworthy percent to convert into ticks.
	if got := len(reporter.Reports()); got != 0 {
		t.Errorf("got %d reports without a usable percent, want 0", got)
	}
}

func TestFlushSkippedBeforeFirstLocator(t *testing.T) {
	store := progress.NewStore()
	reporter := &recordingReporter{}
	b, _ := openBridge(t, store, Options{Reporter: reporter})

	b.flush()

	if store.Get("book-1") != nil {
		t.Error("flush persisted before any position was known")
	}
	if len(reporter.Reports()) != 0 {
		t.Error("flush reported before any position was known")
	}
}

func TestBookmarkRoundTrip(t *testing.T) {
	store := progress.NewStore()
	b, mock := openBridge(t, store, Options{})
	sub := b.Subscribe()

	mock.Emit(Event{Type: EventReady})
	mock.Emit(Event{Type: EventIndexReady, Entries: sampleEntries()})
	waitFor(t, func() bool { return b.Phase() == PhaseReady }, "never reached Ready")
	mock.Emit(Event{Type: EventRelocated, Locator: "loc-05", Percent: 0.5})
	waitPosition(t, sub)

	id := b.AddBookmark("before the reveal")
	if id == "" {
		t.Fatal("expected a bookmark id")
	}
	bookmarks := store.BookmarksFor("book-1")
	if len(bookmarks) != 1 || bookmarks[0].Position.Locator != "loc-05" {
		t.Fatalf("bookmarks = %v, want one at loc-05", bookmarks)
	}

	mock.Emit(Event{Type: EventRelocated, Locator: "loc-01", Percent: 0.1})
	waitPosition(t, sub)

	b.JumpToBookmark(bookmarks[0])
	waitFor(t, func() bool { return len(mock.GoToCalls()) == 1 }, "bookmark jump never issued")
	if got := mock.GoToCalls()[0]; got != "loc-05" {
		t.Errorf("jumped to %q, want loc-05", got)
	}
}

func TestCloseFlushesAndTearsDown(t *testing.T) {
	store := progress.NewStore()
	b, mock := openBridge(t, store, Options{})
	sub := b.Subscribe()

	mock.Emit(Event{Type: EventReady})
	mock.Emit(Event{Type: EventIndexReady, Entries: sampleEntries()})
	waitFor(t, func() bool { return b.Phase() == PhaseReady }, "never reached Ready")
	mock.Emit(Event{Type: EventRelocated, Locator: "loc-08", Percent: 0.8})
	waitPosition(t, sub)

	if err := b.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	r := store.Get("book-1")
	if r == nil || r.Position.Locator != "loc-08" {
		t.Errorf("record after close = %v, want loc-08", r)
	}

	select {
	case <-sub.Done:
	case <-time.After(time.Second):
		t.Error("subscription not closed")
	}

	if err := b.Close(); err != nil {
		t.Errorf("second Close failed: %v", err)
	}
}
