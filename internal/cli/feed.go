package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/ppiankov/kmbfeed/internal/cache"
	"github.com/ppiankov/kmbfeed/internal/kmb"
	"github.com/ppiankov/kmbfeed/internal/plist"
	"github.com/ppiankov/kmbfeed/internal/tables"
)

// newClient builds a KMB client from the loaded config. c may be nil.
func newClient(c kmb.Cache) (*kmb.Client, error) {
	kc := kmb.Config{
		Language:       cfg.Language,
		ETABaseURL:     cfg.HTTP.ETABaseURL,
		DataBaseURL:    cfg.HTTP.DataBaseURL,
		POIBaseURL:     cfg.HTTP.POIBaseURL,
		UserAgent:      cfg.HTTP.UserAgent,
		AcceptLanguage: cfg.HTTP.AcceptLanguage,
		Timeout:        cfg.HTTPTimeout(),
		Retries:        cfg.HTTP.Retries,
		Cache:          c,
	}
	return kmb.New(kc)
}

// feedDay resolves --date, defaulting to today.
func feedDay(date string) (time.Time, error) {
	if date == "" {
		return time.Now(), nil
	}
	return kmb.ParseFeedDate(date)
}

// fetchFeed downloads the POI feed for day through the configured cache.
func fetchFeed(ctx context.Context, day time.Time) ([]byte, error) {
	store, err := cache.Open(ctx, cfg.Cache)
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			slog.Warn("close cache", "error", err)
		}
	}()

	client, err := newClient(store)
	if err != nil {
		return nil, err
	}
	return client.POI(ctx, day)
}

// readFeed returns the feed document from file, or downloads it when file
// is empty.
func readFeed(ctx context.Context, file string, day time.Time) ([]byte, error) {
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read feed: %w", err)
		}
		return data, nil
	}
	return fetchFeed(ctx, day)
}

func replayOptions() tables.Options {
	return tables.Options{
		SkipUnparseable:       cfg.Replay.SkipUnparseable,
		ApplyRouteStopDeletes: cfg.Replay.ApplyRouteStopDeletes,
	}
}

// replayFeed decodes a feed document and replays it into a fresh store.
func replayFeed(data []byte) (*tables.Result, error) {
	statements, err := plist.Statements(data)
	if err != nil {
		return nil, fmt.Errorf("decode feed: %w", err)
	}

	res, err := tables.Replay(statements, replayOptions())
	if err != nil {
		var se *tables.StatementError
		if errors.As(err, &se) {
			slog.Debug("rejected statement", "index", se.Index, "statement", se.Raw)
		}
		return nil, fmt.Errorf("replay: %w", err)
	}

	slog.Info("replay complete",
		"statements", res.Stats.Statements,
		"applied", res.Stats.Applied,
		"skipped", res.Stats.Skipped,
		"flagged", res.Stats.Flagged,
		"records", res.Store.Counts().Total())
	return res, nil
}

func workDir() string {
	if configDir != "" {
		return configDir
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "."
	}
	return cwd
}
