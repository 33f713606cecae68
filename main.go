package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"

	"github.com/llehouerou/ribbon/internal/config"
	"github.com/llehouerou/ribbon/internal/errmsg"
	"github.com/llehouerou/ribbon/internal/progress"
	"github.com/llehouerou/ribbon/internal/state"
)

func main() {
	itemID := flag.String("item", "", "show the saved position and bookmarks for one item")
	verbose := flag.Bool("v", false, "enable debug logging")
	flag.Parse()

	level := zerolog.WarnLevel
	if *verbose {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()

	if err := run(*itemID, logger); err != nil {
		fmt.Fprintln(os.Stderr, errmsg.Format(errmsg.OpInitialize, err))
		os.Exit(1)
	}
}

func run(itemID string, logger zerolog.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	engine := cfg.GetEngineConfig()
	logger.Debug().
		Bool("server", cfg.HasServerConfig()).
		Int("audio_flush_secs", engine.AudioFlushSecs).
		Int("text_flush_secs", engine.TextFlushSecs).
		Msg("config loaded")

	stateMgr, err := state.Open()
	if err != nil {
		return err
	}
	defer stateMgr.Close()

	store := progress.NewStore()
	records, err := stateMgr.GetRecords()
	if err != nil {
		return err
	}
	store.Seed(records)
	bookmarks, err := stateMgr.GetBookmarks()
	if err != nil {
		return err
	}
	store.SeedBookmarks(bookmarks)
	store.OnUpdate(stateMgr.SaveRecord)
	store.OnBookmark(func(b progress.Bookmark) {
		if err := stateMgr.SaveBookmark(b); err != nil {
			logger.Warn().Err(err).Str("id", b.ID).Msg("bookmark save failed")
		}
	})
	store.OnBookmarkRemoved(func(id string) {
		if err := stateMgr.DeleteBookmark(id); err != nil {
			logger.Warn().Err(err).Str("id", id).Msg("bookmark delete failed")
		}
	})

	logger.Debug().Int("records", len(records)).Int("bookmarks", len(bookmarks)).Msg("state loaded")

	if itemID != "" {
		return showItem(store, itemID)
	}
	return showRecent(store)
}

func showRecent(store *progress.Store) error {
	records := store.RecentlyActive(10)
	if len(records) == 0 {
		fmt.Println("nothing in progress")
		return nil
	}
	for _, r := range records {
		fmt.Printf("%-12s %3.0f%%  %s by %s (%s)\n",
			r.ItemType, r.Percent*100, r.ItemName, r.Author, humanize.Time(r.UpdatedAt))
	}
	return nil
}

func bookmarkPosition(r progress.Record, b progress.Bookmark) string {
	if r.ItemType == progress.Audio {
		return fmt.Sprintf("%dms", b.Position.Millis)
	}
	return fmt.Sprintf("%.1f%%", b.Percent*100)
}

func showItem(store *progress.Store, itemID string) error {
	r := store.Get(itemID)
	if r == nil {
		return fmt.Errorf("no saved position for %q", itemID)
	}

	fmt.Printf("%s (%s)\n", r.ItemName, r.ItemType)
	switch r.ItemType {
	case progress.Audio:
		fmt.Printf("  position: %dms / %dms (%.1f%%)\n", r.Position.Millis, r.TotalMS, r.Percent*100)
	case progress.Text:
		fmt.Printf("  locator: %s (%.1f%%)\n", r.Position.Locator, r.Percent*100)
	}
	fmt.Printf("  updated: %s\n", humanize.Time(r.UpdatedAt))

	for _, b := range store.BookmarksFor(itemID) {
		fmt.Printf("  bookmark %q at %s (%s)\n", b.Label, bookmarkPosition(*r, b), humanize.Time(b.CreatedAt))
	}
	return nil
}
