package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ppiankov/kmbfeed/internal/tables"
)

// Writer persists replayed feed snapshots to PostgreSQL.
type Writer struct {
	pool   *pgxpool.Pool
	schema string
}

// NewWriter connects to PostgreSQL, retrying transient failures.
func NewWriter(ctx context.Context, cfg Config) (*Writer, error) {
	return connectWithRetry(ctx, cfg)
}

func newWriterOnce(ctx context.Context, cfg Config) (*Writer, error) {
	pool, err := pgxpool.New(ctx, cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}

	return &Writer{pool: pool, schema: cfg.schema()}, nil
}

// Close releases the connection pool.
func (w *Writer) Close() {
	w.pool.Close()
}

// ServerVersion returns the PostgreSQL server version string.
func (w *Writer) ServerVersion(ctx context.Context) (string, error) {
	var version string
	if err := w.pool.QueryRow(ctx, "SHOW server_version").Scan(&version); err != nil {
		return "", fmt.Errorf("server version: %w", err)
	}
	return version, nil
}

// EnsureSchema creates the feed tables if they do not exist.
func (w *Writer) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schemaDDL(w.schema) {
		if _, err := w.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// Write replaces the stored snapshot with store in one transaction and
// records the run. Returns the new run id.
func (w *Writer) Write(ctx context.Context, store *tables.Store, info RunInfo) (uuid.UUID, error) {
	runID, err := uuid.NewRandom()
	if err != nil {
		return uuid.Nil, fmt.Errorf("run id: %w", err)
	}
	if info.StartedAt.IsZero() {
		info.StartedAt = time.Now()
	}
	id := pgtype.UUID{Bytes: runID, Valid: true}

	tx, err := w.pool.Begin(ctx)
	if err != nil {
		return uuid.Nil, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	names := make([]string, len(snapshotTables))
	for i, t := range snapshotTables {
		names[i] = qualify(w.schema, t)
	}
	if _, err := tx.Exec(ctx, "TRUNCATE "+strings.Join(names, ", ")); err != nil {
		return uuid.Nil, fmt.Errorf("truncate: %w", err)
	}

	copies := []struct {
		table   string
		columns []string
		rows    [][]any
	}{
		{tableStops, stopColumns, stopRows(store, id)},
		{tableNotes, noteColumns, noteRows(store, id)},
		{tableRoutes, routeColumns, routeRows(store, id)},
		{tableRouteStops, routeStopColumns, routeStopRows(store, id)},
		{tableLiveRoutes, liveRouteColumns, liveRouteRows(info.Routes, id)},
	}
	for _, c := range copies {
		n, err := tx.CopyFrom(ctx, pgx.Identifier{w.schema, c.table}, c.columns, pgx.CopyFromRows(c.rows))
		if err != nil {
			return uuid.Nil, fmt.Errorf("copy %s: %w", c.table, err)
		}
		slog.Debug("copied rows", "table", c.table, "rows", n)
	}

	counts := store.Counts()
	_, err = tx.Exec(ctx, fmt.Sprintf(`INSERT INTO %s
		(run_id, feed_date, started_at, statements, diagnostics, stops, notes, routes, route_stops, live_routes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`, qualify(w.schema, tableRuns)),
		id, info.FeedDate, info.StartedAt, info.Statements, info.Diagnostics,
		counts.StopInfo, counts.SpecialNote, counts.RouteMaster, counts.RouteStopFile, len(liveRouteRows(info.Routes, id)))
	if err != nil {
		return uuid.Nil, fmt.Errorf("record run: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return uuid.Nil, fmt.Errorf("commit: %w", err)
	}
	return runID, nil
}

// LatestRun returns the most recently finished run.
func (w *Writer) LatestRun(ctx context.Context) (*Run, error) {
	var r Run
	var id pgtype.UUID
	err := w.pool.QueryRow(ctx, fmt.Sprintf(`SELECT run_id, feed_date, started_at, finished_at,
		statements, diagnostics, stops, notes, routes, route_stops, live_routes
		FROM %s ORDER BY finished_at DESC LIMIT 1`, qualify(w.schema, tableRuns))).Scan(
		&id, &r.FeedDate, &r.StartedAt, &r.FinishedAt,
		&r.Statements, &r.Diagnostics, &r.Stops, &r.Notes, &r.Routes, &r.RouteStops, &r.LiveRoutes)
	if err != nil {
		return nil, fmt.Errorf("latest run: %w", err)
	}
	r.ID = uuid.UUID(id.Bytes)
	return &r, nil
}

// RowCounts returns the number of rows in each snapshot table.
func (w *Writer) RowCounts(ctx context.Context) (map[string]int64, error) {
	out := make(map[string]int64, len(snapshotTables))
	for _, t := range snapshotTables {
		var n int64
		if err := w.pool.QueryRow(ctx, "SELECT count(*) FROM "+qualify(w.schema, t)).Scan(&n); err != nil {
			return nil, fmt.Errorf("count %s: %w", t, err)
		}
		out[t] = n
	}
	return out, nil
}

func stopRows(store *tables.Store, id pgtype.UUID) [][]any {
	rows := make([][]any, 0, len(store.StopInfo))
	for _, code := range store.StopCodes() {
		s := store.StopInfo[code]
		rows = append(rows, []any{s.StopCode, s.RouteNo, s.EngLoc, s.ChiLoc, s.CnLoc, s.StopName, s.StopNameChi, s.Lat, s.Lng, id})
	}
	return rows
}

func noteRows(store *tables.Store, id pgtype.UUID) [][]any {
	rows := make([][]any, 0, len(store.SpecialNote))
	for _, code := range store.NoteCodes() {
		n := store.SpecialNote[code]
		rows = append(rows, []any{n.StopCode, n.EN, n.TC, id})
	}
	return rows
}

func routeRows(store *tables.Store, id pgtype.UUID) [][]any {
	rows := make([][]any, 0, len(store.RouteMaster))
	for _, no := range store.RouteNumbers() {
		r := store.RouteMaster[no]
		rows = append(rows, []any{r.RouteNo, r.Cost, r.LengthKM, r.TimeMins, r.Type, r.Prefix, r.Suffix, id})
	}
	return rows
}

func routeStopRows(store *tables.Store, id pgtype.UUID) [][]any {
	rows := make([][]any, 0, len(store.RouteStopFile))
	for i, rs := range store.RouteStopFile {
		rows = append(rows, []any{
			int32(i), rs.RouteNo, rs.Bound, rs.StopSeq, rs.Area, rs.Price,
			rs.ENRoad, rs.ENDistrict, rs.ENLampost, rs.ENLandmark,
			rs.TCRoad, rs.TCDistrict, rs.TCLampost, rs.TCLandmark,
			rs.SCRoad, rs.SCDistrict, rs.SCLampost, rs.SCLandmark,
			rs.StopID, rs.ENStopName, rs.TCStopName, rs.SCStopName, rs.District, id,
		})
	}
	return rows
}

// liveRouteRows drops blank and repeated route numbers, which would
// violate the primary key.
func liveRouteRows(routes []string, id pgtype.UUID) [][]any {
	seen := make(map[string]bool, len(routes))
	rows := make([][]any, 0, len(routes))
	for _, r := range routes {
		if r == "" || seen[r] {
			continue
		}
		seen[r] = true
		rows = append(rows, []any{r, id})
	}
	return rows
}
