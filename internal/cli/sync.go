package cli

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/ppiankov/kmbfeed/internal/kmb"
	"github.com/ppiankov/kmbfeed/internal/logging"
	"github.com/ppiankov/kmbfeed/internal/postgres"
)

func newSyncCmd() *cobra.Command {
	var (
		dbURL  string
		schema string
		file   string
		date   string
		format string
	)

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Fetch the route list and POI feed, replay it and store the snapshot in PostgreSQL",
		RunE: func(cmd *cobra.Command, args []string) error {
			if dbURL == "" {
				dbURL = cfg.DBURL
			}
			if dbURL == "" {
				return fmt.Errorf("--db-url is required (or set KMBFEED_DB_URL)")
			}
			day, err := feedDay(date)
			if err != nil {
				return err
			}
			started := time.Now()

			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.TimeoutDuration())
			defer cancel()

			client, err := newClient(nil)
			if err != nil {
				return err
			}

			var (
				routes []string
				data   []byte
			)
			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				var err error
				routes, err = client.Routes(gctx)
				return err
			})
			g.Go(func() error {
				var err error
				data, err = readFeed(gctx, file, day)
				return err
			})
			if err := g.Wait(); err != nil {
				return err
			}
			slog.Info("fetched", "routes", len(routes), "feed_bytes", len(data))

			res, err := replayFeed(data)
			if err != nil {
				return err
			}

			slog.Debug("connecting", "db_url", logging.Redact(dbURL))
			w, err := postgres.NewWriter(ctx, postgres.Config{URL: dbURL, Schema: schema})
			if err != nil {
				return err
			}
			defer w.Close()

			ver, err := w.ServerVersion(ctx)
			if err != nil {
				return err
			}
			slog.Info("connected", "version", ver)

			if err := w.EnsureSchema(ctx); err != nil {
				return err
			}
			runID, err := w.Write(ctx, res.Store, postgres.RunInfo{
				FeedDate:    kmb.FeedDate(day),
				Routes:      routes,
				Statements:  res.Stats.Statements,
				Diagnostics: len(res.Diagnostics),
				StartedAt:   started,
			})
			if err != nil {
				return err
			}
			slog.Info("snapshot written", "run_id", runID)

			run, err := w.LatestRun(ctx)
			if err != nil {
				return err
			}
			if format == "json" {
				return writeJSON(cmd.OutOrStdout(), run)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(),
				"Synced feed %s as run %s: %d stops, %d notes, %d routes, %d route stops, %d live routes (%d diagnostics).\n",
				run.FeedDate, run.ID, run.Stops, run.Notes, run.Routes, run.RouteStops, run.LiveRoutes, run.Diagnostics)
			return err
		},
	}

	cmd.Flags().StringVar(&dbURL, "db-url", "", "PostgreSQL connection URL (or set KMBFEED_DB_URL)")
	cmd.Flags().StringVar(&schema, "schema", postgres.DefaultSchema, "schema receiving the feed tables")
	cmd.Flags().StringVar(&file, "file", "", "read the feed document from a file instead of downloading it")
	cmd.Flags().StringVar(&date, "date", "", "feed date as YYYYMMDD (default: today in Hong Kong)")
	cmd.Flags().StringVar(&format, "format", "text", "output format: text or json")
	return cmd
}
