package postgres

import (
	"fmt"
	"slices"
	"strings"

	"github.com/jackc/pgx/v5"
)

// Snapshot tables, replaced wholesale on every write.
const (
	tableStops      = "kmb_stopinfo"
	tableNotes      = "kmb_specialnote"
	tableRoutes     = "kmb_routemaster"
	tableRouteStops = "kmb_routestopfile"
	tableLiveRoutes = "kmb_routes"
	tableRuns       = "kmb_feed_runs"
)

var snapshotTables = []string{tableStops, tableNotes, tableRoutes, tableRouteStops, tableLiveRoutes}

var (
	stopColumns = []string{
		"stop_code", "route_no", "eng_loc", "chi_loc", "cn_loc",
		"stop_name", "stop_name_chi", "lat", "lng", "run_id",
	}
	noteColumns  = []string{"stop_code", "en", "tc", "run_id"}
	routeColumns = []string{
		"route_no", "cost", "length_km", "time_mins", "type", "prefix", "suffix", "run_id",
	}
	routeStopColumns = []string{
		"position", "route_no", "bound", "stop_seq", "area", "price",
		"en_road", "en_district", "en_lampost", "en_landmark",
		"tc_road", "tc_district", "tc_lampost", "tc_landmark",
		"sc_road", "sc_district", "sc_lampost", "sc_landmark",
		"stop_id", "en_stop_name", "tc_stop_name", "sc_stop_name", "district", "run_id",
	}
	liveRouteColumns = []string{"route_no", "run_id"}
)

// schemaDDL returns the CREATE statements for every table, qualified by schema.
// Feed values stay text: the feed is not consistent enough to type them.
func schemaDDL(schema string) []string {
	q := func(table string) string { return qualify(schema, table) }
	textCols := func(cols []string, skip ...string) string {
		var b strings.Builder
		for _, c := range cols {
			if c == "run_id" || c == "position" || slices.Contains(skip, c) {
				continue
			}
			fmt.Fprintf(&b, "\t%s text NOT NULL DEFAULT '',\n", c)
		}
		return b.String()
	}

	return []string{
		fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s", pgx.Identifier{schema}.Sanitize()),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	run_id uuid PRIMARY KEY,
	feed_date text NOT NULL,
	started_at timestamptz NOT NULL,
	finished_at timestamptz NOT NULL DEFAULT now(),
	statements integer NOT NULL,
	diagnostics integer NOT NULL,
	stops integer NOT NULL,
	notes integer NOT NULL,
	routes integer NOT NULL,
	route_stops integer NOT NULL,
	live_routes integer NOT NULL
)`, q(tableRuns)),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	stop_code text PRIMARY KEY,
%s	run_id uuid NOT NULL
)`, q(tableStops), textCols(stopColumns, "stop_code")),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	stop_code text PRIMARY KEY,
%s	run_id uuid NOT NULL
)`, q(tableNotes), textCols(noteColumns, "stop_code")),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	route_no text PRIMARY KEY,
%s	prefix text,
	suffix text,
	run_id uuid NOT NULL
)`, q(tableRoutes), textCols(routeColumns, "route_no", "prefix", "suffix")),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	position integer PRIMARY KEY,
%s	run_id uuid NOT NULL
)`, q(tableRouteStops), textCols(routeStopColumns)),
		fmt.Sprintf("CREATE INDEX IF NOT EXISTS kmb_routestopfile_route_idx ON %s (route_no, bound)", q(tableRouteStops)),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	route_no text PRIMARY KEY,
	run_id uuid NOT NULL
)`, q(tableLiveRoutes)),
	}
}

func qualify(schema, table string) string {
	return pgx.Identifier{schema, table}.Sanitize()
}
