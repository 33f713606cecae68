package reader

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/llehouerou/ribbon/internal/errmsg"
	"github.com/llehouerou/ribbon/internal/media"
	"github.com/llehouerou/ribbon/internal/progress"
	"github.com/llehouerou/ribbon/internal/remote"
	"github.com/llehouerou/ribbon/internal/resume"
	"github.com/llehouerou/ribbon/internal/state"
	"github.com/llehouerou/ribbon/internal/suppress"
)

const defaultTextFlushInterval = 10 * time.Second

// fallbackTotalTicks is reported to the server when the item has no
// known runtime; books usually don't.
const fallbackTotalTicks = 10000000000

// Phase is the bridge lifecycle state.
type Phase int

const (
	// PhaseInitializing: waiting for the renderer to parse the document.
	PhaseInitializing Phase = iota
	// PhaseAwaitingIndex: document displayed, location index building.
	PhaseAwaitingIndex
	// PhaseReady: index available, percent navigation enabled.
	PhaseReady
	// PhaseFailed: the document could not be opened.
	PhaseFailed
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case PhaseInitializing:
		return "Initializing"
	case PhaseAwaitingIndex:
		return "AwaitingIndex"
	case PhaseReady:
		return "Ready"
	case PhaseFailed:
		return "Failed"
	default:
		return "Unknown"
	}
}

// pendingNav is the single outstanding navigation request. A newer
// request supersedes an older unconsumed one.
type pendingNav struct {
	locator   string
	percent   float64
	byPercent bool
}

// Options configures a reading session bridge.
type Options struct {
	Renderer Renderer
	Store    *progress.Store
	Reporter remote.Reporter
	Catalog  media.Catalog
	Logger   zerolog.Logger

	Settings     state.ReaderSettings
	SaveSettings func(state.ReaderSettings)

	FlushInterval    time.Duration
	SuppressDeadline time.Duration
	IndexSamples     int
}

func (o *Options) applyDefaults() {
	if o.Reporter == nil {
		o.Reporter = remote.Nop{}
	}
	if o.FlushInterval <= 0 {
		o.FlushInterval = defaultTextFlushInterval
	}
	if o.IndexSamples <= 0 {
		o.IndexSamples = DefaultIndexSamples
	}
	if o.Settings == (state.ReaderSettings{}) {
		o.Settings = state.DefaultReaderSettings()
	}
}

// Bridge manages one reading session: it replays the resume target once
// the renderer is ready, owns the location index, and translates between
// locators and completion percent.
type Bridge struct {
	mu sync.Mutex

	item          *media.Metadata
	playSessionID string

	renderer Renderer
	store    *progress.Store
	reporter remote.Reporter
	guard    *suppress.Controller
	log      zerolog.Logger

	settings     state.ReaderSettings
	saveSettings func(state.ReaderSettings)

	flushEvery time.Duration
	samples    int

	rendererReady bool
	index         *LocationIndex
	pending       *pendingNav

	// Accepted position. percentKnown is false while the index is stale
	// or missing: display degrades to locator-only.
	locator      string
	percent      float64
	percentKnown bool

	// Relocated event held back while a navigation is in flight; it is
	// surfaced when the navigation completes so the reader never sees a
	// flicker back to the pre-navigation position.
	deferred *Event

	// Locator captured before a style change, restored if the renderer
	// does not report one itself.
	preservedLocator string
	styleChanging    bool

	terminalErr error

	subs   []*Subscription
	subsMu sync.RWMutex

	done   chan struct{}
	closed bool
}

// OpenText opens a reading session for an item. The resume target is
// stored as the pending navigation request and replayed once the
// renderer (and, for percent targets, the index) is ready.
func OpenText(ctx context.Context, itemID string, hint *resume.Target, opts Options) (*Bridge, error) {
	opts.applyDefaults()

	item, err := opts.Catalog.GetItem(ctx, itemID)
	if err != nil {
		return nil, err
	}

	b := &Bridge{
		item:          item,
		playSessionID: uuid.NewString(),
		renderer:      opts.Renderer,
		store:         opts.Store,
		reporter:      opts.Reporter,
		guard:         suppress.New(opts.SuppressDeadline),
		log:           opts.Logger,
		settings:      opts.Settings,
		saveSettings:  opts.SaveSettings,
		flushEvery:    opts.FlushInterval,
		samples:       opts.IndexSamples,
		done:          make(chan struct{}),
	}

	target := resume.Resolve(hint, opts.Store.Get(itemID), nil)
	switch {
	case target.Position.Locator != "":
		b.pending = &pendingNav{locator: target.Position.Locator}
		b.locator = target.Position.Locator
		b.percent = target.Percent
	case target.Percent > 0:
		b.pending = &pendingNav{percent: target.Percent, byPercent: true}
		b.percent = target.Percent
	}
	if b.pending != nil {
		b.guard.Begin(suppress.ProgrammaticNav)
	}

	b.renderer.Load(item.StreamURL)

	b.log.Debug().
		Str("item", itemID).
		Stringer("source", target.Source).
		Msg("reading session opened")

	go b.run()
	return b, nil
}

// run dispatches renderer events and drives the periodic flush.
func (b *Bridge) run() {
	ticker := time.NewTicker(b.flushEvery)
	defer ticker.Stop()

	for {
		select {
		case <-b.done:
			return
		case e, ok := <-b.renderer.Events():
			if !ok {
				return
			}
			b.dispatch(e)
		case <-ticker.C:
			b.flush()
		}
	}
}

// dispatch routes one renderer event by its type tag.
func (b *Bridge) dispatch(e Event) {
	switch e.Type {
	case EventReady:
		b.handleReady()
	case EventIndexReady:
		b.handleIndexReady(e.Entries)
	case EventRelocated:
		b.handleRelocated(e)
	case EventNavigationComplete:
		b.handleNavigationComplete()
	case EventStyleApplied:
		b.handleStyleApplied(e)
	case EventError:
		b.handleError(e)
	}
}

func (b *Bridge) handleReady() {
	b.mu.Lock()
	b.rendererReady = true
	var jump string
	if b.pending != nil {
		if !b.pending.byPercent {
			jump = b.pending.locator
			b.pending = nil
		} else if b.index != nil && !b.index.Stale() {
			// Index arrived before the renderer was ready.
			if loc, ok := b.index.LocatorFor(b.pending.percent); ok {
				jump = loc
				b.pending = nil
			}
		}
	}
	b.mu.Unlock()

	if jump != "" {
		b.guard.Begin(suppress.ProgrammaticNav)
		b.renderer.GoToLocator(jump)
	}
	// The index build runs concurrently with any pending locator jump;
	// locator navigation does not need it.
	b.renderer.BuildIndex(b.samples)
}

func (b *Bridge) handleIndexReady(entries []IndexEntry) {
	b.mu.Lock()
	b.index = NewLocationIndex(entries, nil)

	var jump string
	if b.pending != nil && b.pending.byPercent {
		if loc, ok := b.index.LocatorFor(b.pending.percent); ok {
			jump = loc
			b.pending = nil
		}
	}

	var recomputed *PositionChange
	if jump == "" && b.locator != "" {
		if pct, ok := b.index.PercentFor(b.locator); ok {
			b.percent = pct
			b.percentKnown = true
			recomputed = &PositionChange{Locator: b.locator, Percent: pct, PercentValid: true}
		}
	}
	b.mu.Unlock()

	if jump != "" {
		b.guard.Begin(suppress.ProgrammaticNav)
		b.renderer.GoToLocator(jump)
		return
	}
	if recomputed != nil {
		b.store.UpdatePercent(b.item.ID, recomputed.Percent)
		b.publish(*recomputed)
	}
}

func (b *Bridge) handleRelocated(e Event) {
	if b.guard.Suppressed() {
		// Hold the event back; it describes the post-navigation position
		// and is surfaced when the navigation completes.
		b.mu.Lock()
		evt := e
		b.deferred = &evt
		b.mu.Unlock()
		return
	}
	b.accept(e)
}

// accept applies a relocated event to the bridge state and surfaces it.
func (b *Bridge) accept(e Event) {
	b.mu.Lock()
	if e.Locator != "" {
		b.locator = e.Locator
	}
	percentUsable := e.Percent >= 0 && b.index != nil && !b.index.Stale()
	if percentUsable {
		b.percent = e.Percent
		b.percentKnown = true
	}
	change := PositionChange{
		Locator:      b.locator,
		Percent:      b.percent,
		PercentValid: b.percentKnown && percentUsable,
	}
	b.mu.Unlock()

	if change.PercentValid {
		b.store.UpdatePercent(b.item.ID, change.Percent)
	}
	b.publish(change)
}

func (b *Bridge) handleNavigationComplete() {
	b.guard.End()

	b.mu.Lock()
	deferred := b.deferred
	b.deferred = nil
	restored := ""
	if b.styleChanging && deferred == nil && b.preservedLocator != "" {
		restored = b.preservedLocator
		b.locator = restored
	}
	b.mu.Unlock()

	if deferred != nil {
		b.accept(*deferred)
	}
}

func (b *Bridge) handleStyleApplied(e Event) {
	b.mu.Lock()
	if e.Locator != "" {
		b.locator = e.Locator
	} else if b.preservedLocator != "" {
		b.locator = b.preservedLocator
	}
	b.styleChanging = false
	b.preservedLocator = ""
	// A relocation deferred during the reflow describes a transient
	// mid-reapply layout; accepting it later would snap the position to
	// a place the user never was.
	b.deferred = nil
	// Percent stays unavailable until the rebuilt index lands.
	change := PositionChange{Locator: b.locator, Percent: b.percent, PercentValid: false}
	b.mu.Unlock()

	b.guard.End()
	b.publish(change)
	b.renderer.BuildIndex(b.samples)
}

func (b *Bridge) handleError(e Event) {
	if e.Terminal {
		b.mu.Lock()
		b.terminalErr = e.Err
		b.mu.Unlock()
		b.guard.End()
		b.log.Error().Err(e.Err).Str("item", b.item.ID).Msg(string(errmsg.OpDocumentLoad))
		b.publishError(ErrorEvent{Op: errmsg.OpDocumentLoad, Err: e.Err, Terminal: true})
		return
	}

	// Recoverable: clear suppression, drop the request, stay at the last
	// good position. A failed index build leaves percent display
	// degraded until the next rebuild trigger.
	b.guard.End()
	b.mu.Lock()
	b.pending = nil
	b.deferred = nil
	b.styleChanging = false
	b.preservedLocator = ""
	b.mu.Unlock()
	b.log.Warn().Err(e.Err).Str("item", b.item.ID).Msg(string(errmsg.OpNavigate))
	b.publishError(ErrorEvent{Op: errmsg.OpNavigate, Err: e.Err})
}

// flush writes the current snapshot to the position store and reports it
// to the companion server. Nothing is persisted before the first locator
// is known or after a terminal error.
func (b *Bridge) flush() {
	b.mu.Lock()
	locator := b.locator
	percent := b.percent
	percentKnown := b.percentKnown
	failed := b.terminalErr != nil
	b.mu.Unlock()

	if locator == "" || failed {
		return
	}

	r := progress.Record{
		ItemID:   b.item.ID,
		ItemName: b.item.Name,
		ItemType: progress.Text,
		Author:   b.item.Author,
		Position: progress.AtLocator(locator),
		TotalMS:  1,
	}
	if percentKnown {
		r.Percent = percent
	}
	b.store.Update(r)

	// The server only understands tick offsets; without a trustworthy
	// percent there is nothing correct to report.
	if !percentKnown {
		return
	}

	totalTicks := remote.MsToTicks(b.item.RuntimeMS)
	if totalTicks == 0 {
		totalTicks = fallbackTotalTicks
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err := b.reporter.Report(ctx, remote.ProgressReport{
		ItemID:        b.item.ID,
		MediaSourceID: b.item.ID,
		PositionTicks: int64(float64(totalTicks) * percent),
		IsPaused:      true,
		PlaySessionID: b.playSessionID,
	})
	if err != nil {
		b.log.Debug().Err(err).Str("item", b.item.ID).Msg("progress report failed")
	}
}

// GoToLocator navigates to a structural locator. Before the renderer is
// ready the request is stored as the pending navigation, superseding any
// older one. Suppression opens before the intent is recorded so an
// in-flight relocation cannot slip in after it.
func (b *Bridge) GoToLocator(locator string) {
	b.guard.Begin(suppress.ProgrammaticNav)

	b.mu.Lock()
	if !b.rendererReady {
		b.pending = &pendingNav{locator: locator}
		b.mu.Unlock()
		return
	}
	b.mu.Unlock()

	b.renderer.GoToLocator(locator)
}

// GoToPercent navigates to a completion fraction. Percent targets need
// the index; until it is available the request stays pending
// (last-intent-wins).
func (b *Bridge) GoToPercent(percent float64) {
	b.guard.Begin(suppress.ProgrammaticNav)

	b.mu.Lock()
	if !b.rendererReady || b.index == nil || b.index.Stale() {
		b.pending = &pendingNav{percent: percent, byPercent: true}
		b.mu.Unlock()
		return
	}
	loc, ok := b.index.LocatorFor(percent)
	b.mu.Unlock()
	if !ok {
		b.guard.End()
		return
	}

	b.renderer.GoToLocator(loc)
}

// PercentFor converts a locator through the session's index. It returns
// false while the index is missing or stale; a stale answer would be
// computed against the wrong pagination.
func (b *Bridge) PercentFor(locator string) (float64, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.index == nil {
		return 0, false
	}
	return b.index.PercentFor(locator)
}

// SetTheme applies a new theme. The current locator is captured first so
// the document can be reapplied at the same position; the index is
// invalidated and rebuilt, and percent display degrades to locator-only
// until the rebuild completes.
func (b *Bridge) SetTheme(theme string) {
	b.mu.Lock()
	b.settings.Theme = theme
	b.applyStyleLocked()
}

// SetFontSize adjusts the font size by delta percentage points, clamped
// to [50, 200], and reapplies the document like SetTheme.
func (b *Bridge) SetFontSize(delta int) {
	b.mu.Lock()
	size := b.settings.FontSize + delta
	if size < 50 {
		size = 50
	}
	if size > 200 {
		size = 200
	}
	b.settings.FontSize = size
	b.applyStyleLocked()
}

// applyStyleLocked finishes a settings change. Callers hold b.mu; it is
// released here.
func (b *Bridge) applyStyleLocked() {
	b.preservedLocator = b.locator
	b.styleChanging = true
	b.percentKnown = false
	if b.index != nil {
		b.index.MarkStale()
	}
	settings := b.settings
	style := Style{
		FontSize:       settings.FontSize,
		Theme:          settings.Theme,
		RestoreLocator: b.locator,
	}
	save := b.saveSettings
	b.mu.Unlock()

	b.guard.Begin(suppress.ProgrammaticNav)
	b.renderer.ApplyStyle(style)
	if save != nil {
		save(settings)
	}
}

// Settings returns the current reader settings.
func (b *Bridge) Settings() state.ReaderSettings {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.settings
}

// AddBookmark records a bookmark at the accepted position.
func (b *Bridge) AddBookmark(label string) string {
	b.mu.Lock()
	locator := b.locator
	percent := b.percent
	b.mu.Unlock()

	return b.store.AddBookmark(progress.Bookmark{
		ItemID:   b.item.ID,
		Label:    label,
		Position: progress.AtLocator(locator),
		Percent:  percent,
	})
}

// JumpToBookmark navigates to a bookmark's locator.
func (b *Bridge) JumpToBookmark(bm progress.Bookmark) {
	b.GoToLocator(bm.Position.Locator)
}

// Locator returns the accepted locator.
func (b *Bridge) Locator() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.locator
}

// Percent returns the accepted completion fraction and whether it is
// currently trustworthy.
func (b *Bridge) Percent() (float64, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.percent, b.percentKnown
}

// Phase returns the bridge lifecycle state.
func (b *Bridge) Phase() Phase {
	b.mu.Lock()
	defer b.mu.Unlock()
	switch {
	case b.terminalErr != nil:
		return PhaseFailed
	case b.rendererReady && b.index != nil && !b.index.Stale():
		return PhaseReady
	case b.rendererReady:
		return PhaseAwaitingIndex
	default:
		return PhaseInitializing
	}
}

// Err returns the terminal error, if the session failed.
func (b *Bridge) Err() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.terminalErr
}

// Subscribe creates a new event subscription.
func (b *Bridge) Subscribe() *Subscription {
	b.subsMu.Lock()
	defer b.subsMu.Unlock()
	sub := newSubscription()
	b.subs = append(b.subs, sub)
	return sub
}

func (b *Bridge) publish(e PositionChange) {
	b.subsMu.RLock()
	for _, sub := range b.subs {
		sub.sendPosition(e)
	}
	b.subsMu.RUnlock()
}

func (b *Bridge) publishError(e ErrorEvent) {
	b.subsMu.RLock()
	for _, sub := range b.subs {
		sub.sendError(e)
	}
	b.subsMu.RUnlock()
}

// Close performs the final flush and tears the session down. The
// location index and any pending navigation are session-scoped and die
// with it.
func (b *Bridge) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	b.mu.Unlock()

	close(b.done)
	b.flush()
	b.guard.Close()

	b.subsMu.Lock()
	for _, sub := range b.subs {
		sub.close()
	}
	b.subs = nil
	b.subsMu.Unlock()

	return b.renderer.Close()
}
