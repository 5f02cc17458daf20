package postgres

import (
	"time"

	"github.com/google/uuid"
)

// DefaultSchema receives the feed tables when Config.Schema is empty.
const DefaultSchema = "public"

// Config holds PostgreSQL connection settings.
type Config struct {
	URL    string
	Schema string
}

func (c Config) schema() string {
	if c.Schema == "" {
		return DefaultSchema
	}
	return c.Schema
}

// RunInfo describes the feed a snapshot was built from.
type RunInfo struct {
	FeedDate    string
	Routes      []string // route numbers with live arrival estimates
	Statements  int
	Diagnostics int
	StartedAt   time.Time
}

// Run is one row of kmb_feed_runs.
type Run struct {
	ID          uuid.UUID `json:"id"`
	FeedDate    string    `json:"feedDate"`
	StartedAt   time.Time `json:"startedAt"`
	FinishedAt  time.Time `json:"finishedAt"`
	Statements  int       `json:"statements"`
	Diagnostics int       `json:"diagnostics"`
	Stops       int       `json:"stops"`
	Notes       int       `json:"notes"`
	Routes      int       `json:"routes"`
	RouteStops  int       `json:"routeStops"`
	LiveRoutes  int       `json:"liveRoutes"`
}
