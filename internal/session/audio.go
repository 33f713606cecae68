// Package session manages open listening and reading sessions: resume
// resolution on open, suppression-gated position tracking, and the
// periodic plus teardown write-through of progress to the local store
// and the companion server.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/llehouerou/ribbon/internal/media"
	"github.com/llehouerou/ribbon/internal/player"
	"github.com/llehouerou/ribbon/internal/progress"
	"github.com/llehouerou/ribbon/internal/remote"
	"github.com/llehouerou/ribbon/internal/resume"
	"github.com/llehouerou/ribbon/internal/suppress"
)

const defaultAudioFlushInterval = 5 * time.Second

// Options configures a session.
type Options struct {
	Player        player.Interface
	Store         *progress.Store
	Reporter      remote.Reporter
	Catalog       media.Catalog
	ChapterParser media.ChapterParser
	Logger        zerolog.Logger

	// Rate is the saved playback speed to reapply once the item is
	// loaded; SaveRate is invoked whenever the user changes it.
	Rate     float64
	SaveRate func(float64)

	FlushInterval    time.Duration
	SettleDelay      time.Duration
	SuppressDeadline time.Duration
}

func (o *Options) applyDefaults() {
	if o.Reporter == nil {
		o.Reporter = remote.Nop{}
	}
	if o.FlushInterval <= 0 {
		o.FlushInterval = defaultAudioFlushInterval
	}
	if o.SettleDelay <= 0 {
		o.SettleDelay = suppress.SettleDelay
	}
}

// Audio is an open audiobook session.
type Audio struct {
	mu sync.Mutex

	item          *media.Metadata
	chapters      []media.Chapter
	playSessionID string

	player   player.Interface
	store    *progress.Store
	reporter remote.Reporter
	guard    *suppress.Controller
	log      zerolog.Logger
	saveRate func(float64)

	settle     time.Duration
	flushEvery time.Duration

	// position is the accepted position: the last player event that made
	// it past the suppression guard, or the target of an explicit jump.
	position time.Duration
	duration time.Duration

	sleepTimer *time.Timer

	subs   []*Subscription
	subsMu sync.RWMutex

	done   chan struct{}
	closed bool
}

// OpenAudio opens a listening session for an item. The resume target is
// resolved from the optional bookmark hint, the local store and the
// server-reported position, then applied before playback starts.
func OpenAudio(ctx context.Context, itemID string, hint *resume.Target, opts Options) (*Audio, error) {
	opts.applyDefaults()

	item, err := opts.Catalog.GetItem(ctx, itemID)
	if err != nil {
		return nil, err
	}

	chapters := item.Chapters
	if len(chapters) == 0 && opts.ChapterParser != nil {
		parsed, err := opts.ChapterParser(ctx, item.StreamURL)
		if err != nil {
			opts.Logger.Debug().Err(err).Str("item", itemID).Msg("could not parse container chapters")
		} else {
			chapters = parsed
		}
	}

	var remoteTarget *resume.Target
	if item.RemotePosition > 0 {
		remoteTarget = &resume.Target{Position: progress.AtMillis(item.RemotePosition)}
	}
	target := resume.Resolve(hint, opts.Store.Get(itemID), remoteTarget)

	s := &Audio{
		item:          item,
		chapters:      chapters,
		playSessionID: uuid.NewString(),
		player:        opts.Player,
		store:         opts.Store,
		reporter:      opts.Reporter,
		guard:         suppress.New(opts.SuppressDeadline),
		log:           opts.Logger,
		saveRate:      opts.SaveRate,
		settle:        opts.SettleDelay,
		flushEvery:    opts.FlushInterval,
		position:      time.Duration(target.Position.Millis) * time.Millisecond,
		duration:      time.Duration(item.RuntimeMS) * time.Millisecond,
		done:          make(chan struct{}),
	}

	if err := s.player.Load(item.StreamURL, s.position); err != nil {
		return nil, err
	}
	if opts.Rate > 0 {
		s.player.SetRate(opts.Rate)
	}

	s.log.Debug().
		Str("item", itemID).
		Stringer("source", target.Source).
		Dur("position", s.position).
		Msg("audio session opened")

	go s.run()
	return s, nil
}

// run consumes player position events and drives the periodic flush.
func (s *Audio) run() {
	ticker := time.NewTicker(s.flushEvery)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case pos := <-s.player.PositionChanged():
			s.handlePosition(pos)
		case <-ticker.C:
			s.flush()
		}
	}
}

// handlePosition accepts a player position event unless a suppression
// window is open. Dropping suppressed events is what keeps a slow async
// update from overwriting a just-performed seek.
func (s *Audio) handlePosition(pos time.Duration) {
	if s.guard.Suppressed() {
		return
	}
	if pos <= 0 {
		// Transient zero while the player rebuffers; keep the last
		// accepted position.
		return
	}

	s.mu.Lock()
	s.position = pos
	if d := s.player.Duration(); d > 0 {
		s.duration = d
	}
	duration := s.duration
	s.mu.Unlock()

	s.publish(pos, duration)
}

func (s *Audio) publish(pos, duration time.Duration) {
	var percent float64
	if duration > 0 {
		percent = float64(pos) / float64(duration)
	}
	e := PositionChange{
		Position: progress.AtMillis(pos.Milliseconds()),
		Percent:  percent,
	}
	s.subsMu.RLock()
	for _, sub := range s.subs {
		sub.sendPosition(e)
	}
	s.subsMu.RUnlock()
}

// flush writes the current snapshot to the position store and reports it
// to the companion server. The remote call is best-effort; its failure
// never interrupts playback.
func (s *Audio) flush() {
	s.mu.Lock()
	pos := s.position
	duration := s.duration
	s.mu.Unlock()

	if duration == 0 {
		return
	}

	s.store.Update(progress.Record{
		ItemID:   s.item.ID,
		ItemName: s.item.Name,
		ItemType: progress.Audio,
		Author:   s.item.Author,
		Position: progress.AtMillis(pos.Milliseconds()),
		TotalMS:  duration.Milliseconds(),
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err := s.reporter.Report(ctx, remote.ProgressReport{
		ItemID:        s.item.ID,
		MediaSourceID: s.item.ID,
		PositionTicks: remote.MsToTicks(pos.Milliseconds()),
		IsPaused:      s.player.State() != player.Playing,
		PlaySessionID: s.playSessionID,
	})
	if err != nil {
		s.log.Debug().Err(err).Str("item", s.item.ID).Msg("progress report failed")
	}
}

// SeekTo jumps to an absolute position. The suppression window opens
// before the seek is issued and stays open for the settle delay after,
// so the player's catch-up events cannot drag the position backwards.
func (s *Audio) SeekTo(pos time.Duration) error {
	s.mu.Lock()
	if pos < 0 {
		pos = 0
	}
	if s.duration > 0 && pos > s.duration {
		pos = s.duration
	}
	s.position = pos
	duration := s.duration
	s.mu.Unlock()

	s.guard.Begin(suppress.Seeking)
	if err := s.player.SeekTo(pos); err != nil {
		s.guard.End()
		return err
	}
	s.guard.EndAfter(s.settle)

	s.publish(pos, duration)
	return nil
}

// Skip moves relative to the accepted position.
func (s *Audio) Skip(delta time.Duration) error {
	s.mu.Lock()
	target := s.position + delta
	s.mu.Unlock()
	return s.SeekTo(target)
}

// JumpToChapter seeks to a chapter start.
func (s *Audio) JumpToChapter(ch media.Chapter) error {
	return s.SeekTo(ch.Start)
}

// CurrentChapter returns the chapter covering the accepted position.
func (s *Audio) CurrentChapter() *media.Chapter {
	s.mu.Lock()
	pos := s.position
	s.mu.Unlock()
	return media.ChapterAt(s.chapters, pos)
}

// Chapters returns the chapter markers for the item.
func (s *Audio) Chapters() []media.Chapter {
	return s.chapters
}

// AddBookmark records a bookmark at the accepted position.
func (s *Audio) AddBookmark(label string) string {
	s.mu.Lock()
	pos := s.position
	duration := s.duration
	s.mu.Unlock()

	var percent float64
	if duration > 0 {
		percent = float64(pos) / float64(duration)
	}
	return s.store.AddBookmark(progress.Bookmark{
		ItemID:   s.item.ID,
		Label:    label,
		Position: progress.AtMillis(pos.Milliseconds()),
		Percent:  percent,
	})
}

// JumpToBookmark seeks to a bookmark's position.
func (s *Audio) JumpToBookmark(b progress.Bookmark) error {
	return s.SeekTo(time.Duration(b.Position.Millis) * time.Millisecond)
}

// Position returns the accepted position.
func (s *Audio) Position() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.position
}

// Duration returns the item duration.
func (s *Audio) Duration() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.duration
}

// Toggle flips between playing and paused.
func (s *Audio) Toggle() { s.player.Toggle() }

// Pause pauses playback.
func (s *Audio) Pause() { s.player.Pause() }

// Resume resumes playback.
func (s *Audio) Resume() { s.player.Resume() }

// SetRate sets the playback speed and saves it for the next session.
func (s *Audio) SetRate(rate float64) {
	s.player.SetRate(rate)
	if s.saveRate != nil {
		s.saveRate(rate)
	}
}

// SetSleepTimer pauses playback after d. A zero duration cancels any
// armed timer.
func (s *Audio) SetSleepTimer(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sleepTimer != nil {
		s.sleepTimer.Stop()
		s.sleepTimer = nil
	}
	if d <= 0 {
		return
	}
	s.sleepTimer = time.AfterFunc(d, s.player.Pause)
}

// Subscribe creates a new event subscription.
func (s *Audio) Subscribe() *Subscription {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	sub := newSubscription()
	s.subs = append(s.subs, sub)
	return sub
}

// Close performs the final flush and tears down timers and
// subscriptions. At most one flush interval of progress can be lost.
func (s *Audio) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	if s.sleepTimer != nil {
		s.sleepTimer.Stop()
		s.sleepTimer = nil
	}
	s.mu.Unlock()

	close(s.done)
	s.flush()
	s.guard.Close()

	s.subsMu.Lock()
	for _, sub := range s.subs {
		sub.close()
	}
	s.subs = nil
	s.subsMu.Unlock()

	return nil
}
