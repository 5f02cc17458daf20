package kmb

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

const feedDateLayout = "20060102"

// FeedDate formats day as the YYYYMMDD stamp of the feed published that
// day in Hong Kong.
func FeedDate(day time.Time) string {
	return day.In(hongKong).Format(feedDateLayout)
}

// ParseFeedDate parses a YYYYMMDD stamp as midnight Hong Kong time.
func ParseFeedDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(feedDateLayout, s, hongKong)
	if err != nil {
		return time.Time{}, fmt.Errorf("feed date %q: want YYYYMMDD", s)
	}
	return t, nil
}

// POIKey is the cache key of the POI feed published on day.
func POIKey(day time.Time) string {
	return FeedDate(day) + "_poi"
}

// POI returns the raw POI feed document published on day. A cached copy
// is served when present; a fresh download is cached on success.
func (c *Client) POI(ctx context.Context, day time.Time) ([]byte, error) {
	key := POIKey(day)

	if c.cfg.Cache != nil {
		data, ok, err := c.cfg.Cache.Get(ctx, key)
		if err != nil {
			slog.Warn("cache read failed", "key", key, "error", err)
		} else if ok {
			slog.Debug("using cached poi feed", "key", key)
			return data, nil
		}
	}

	path := fmt.Sprintf("/apps/%s.xml", key)
	data, err := c.get(ctx, c.cfg.POIBaseURL, path)
	if err != nil {
		return nil, fmt.Errorf("fetch poi feed: %w", err)
	}

	if c.cfg.Cache != nil {
		if err := c.cfg.Cache.Set(ctx, key, data); err != nil {
			slog.Warn("cache write failed", "key", key, "error", err)
		} else {
			slog.Debug("saved poi feed to cache", "key", key)
		}
	}
	return data, nil
}
