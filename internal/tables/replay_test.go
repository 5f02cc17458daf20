package tables

import (
	"errors"
	"strings"
	"testing"

	"github.com/brianvoe/gofakeit/v7"

	"github.com/ppiankov/kmbfeed/internal/diag"
)

func mustReplay(t *testing.T, stmts []string, opts Options) *Result {
	t.Helper()
	res, err := Replay(stmts, opts)
	if err != nil {
		t.Fatalf("Replay: %v", err)
	}
	return res
}

func diagTypes(ds []diag.Diagnostic) []diag.Type {
	out := make([]diag.Type, len(ds))
	for i, d := range ds {
		out[i] = d.Type
	}
	return out
}

func TestRoutePrefixSuffix(t *testing.T) {
	tests := []struct {
		route  string
		prefix string
		suffix string
	}{
		{"91R", "", "R"},
		{"978A", "", "A"},
		{"N21", "N", ""},
		{"104", "", ""},
		{"NA29", "N", ""},
		{"A", "A", "A"},
		{"", "", ""},
	}
	str := func(p *string) string {
		if p == nil {
			return ""
		}
		return *p
	}
	for _, tt := range tests {
		t.Run(tt.route, func(t *testing.T) {
			if got := str(RoutePrefix(tt.route)); got != tt.prefix {
				t.Errorf("prefix = %q, want %q", got, tt.prefix)
			}
			if got := str(RouteSuffix(tt.route)); got != tt.suffix {
				t.Errorf("suffix = %q, want %q", got, tt.suffix)
			}
		})
	}
}

func TestReplayRouteMasterFields(t *testing.T) {
	res := mustReplay(t, []string{routeMasterInsert("91R")}, Options{})
	r, ok := res.Store.Route("91R")
	if !ok {
		t.Fatal("route 91R missing")
	}
	if r.Cost != "4.9" || r.LengthKM != "12.5" || r.TimeMins != "50" || r.Type != "1" {
		t.Errorf("unexpected fields: %+v", r)
	}
	if r.Prefix != nil {
		t.Errorf("prefix = %q, want nil", *r.Prefix)
	}
	if r.Suffix == nil || *r.Suffix != "R" {
		t.Errorf("suffix = %v, want R", r.Suffix)
	}
}

func TestReplayUpsertLastWriteWins(t *testing.T) {
	first := insertSQL(TableStopInfo, "KO01", "1", "old", "", "", "", "", "22.3", "114.1")
	second := insertSQL(TableStopInfo, "KO01", "2", "new", "", "", "", "", "22.3", "114.1")
	res := mustReplay(t, []string{first, second}, Options{})
	if n := len(res.Store.StopInfo); n != 1 {
		t.Fatalf("got %d stops, want 1", n)
	}
	if s, _ := res.Store.Stop("KO01"); s.EngLoc != "new" || s.RouteNo != "2" {
		t.Errorf("got %+v, want the second insert", s)
	}
}

func TestReplayIdempotentUpsert(t *testing.T) {
	f := gofakeit.New(42)
	for i := 0; i < 20; i++ {
		row := fakeStopRow(f)
		stmt := insertSQL(TableStopInfo, row...)
		once := mustReplay(t, []string{stmt}, Options{})
		twice := mustReplay(t, []string{stmt, stmt}, Options{})
		a, _ := once.Store.Stop(row[0])
		b, ok := twice.Store.Stop(row[0])
		if !ok || a != b || len(twice.Store.StopInfo) != 1 {
			t.Fatalf("row %v: once=%+v twice=%+v", row, a, b)
		}
		if b.Lat != row[7] || b.Lng != row[8] {
			t.Errorf("coordinates changed: %+v", b)
		}
	}
}

func TestReplayDeleteIsolation(t *testing.T) {
	f := gofakeit.New(7)
	var stmts []string
	codes := map[string]bool{}
	for len(codes) < 10 {
		row := fakeStopRow(f)
		if codes[row[0]] {
			continue
		}
		codes[row[0]] = true
		stmts = append(stmts, insertSQL(TableStopInfo, row...))
	}
	var victim string
	for c := range codes {
		victim = c
		break
	}
	stmts = append(stmts, "DELETE FROM kmb_RS_stopinfo WHERE stop_code = "+quote(victim))

	res := mustReplay(t, stmts, Options{})
	if _, ok := res.Store.Stop(victim); ok {
		t.Errorf("%s still present after delete", victim)
	}
	if got, want := len(res.Store.StopInfo), len(codes)-1; got != want {
		t.Errorf("got %d stops, want %d", got, want)
	}
	for c := range codes {
		if c == victim {
			continue
		}
		if _, ok := res.Store.Stop(c); !ok {
			t.Errorf("%s removed by unrelated delete", c)
		}
	}
}

func TestReplayRouteStopShapes(t *testing.T) {
	full := routeStopRow("1A", "1", "3")
	short := full[:routeStopShort]

	res := mustReplay(t, []string{
		insertSQL(TableRouteStopFile, full...),
		insertSQL(TableRouteStopFile, short...),
	}, Options{})

	if n := len(res.Store.RouteStopFile); n != 1 {
		t.Fatalf("got %d route stops, want 1", n)
	}
	rs := res.Store.RouteStopFile[0]
	if rs.RouteNo != "1A" || rs.Bound != "1" || rs.StopSeq != "3" || rs.Area != "K" {
		t.Errorf("key fields: %+v", rs)
	}
	if rs.Price != "f5" || rs.ENRoad != "f6" || rs.SCStopName != "f21" || rs.District != "f22" {
		t.Errorf("field 4 not dropped correctly: %+v", rs)
	}
	if got := diagTypes(res.Diagnostics); len(got) != 1 || got[0] != diag.TypeUnrecognizedShape {
		t.Errorf("diagnostics = %v, want one UNRECOGNIZED_SHAPE", got)
	}
	if res.Stats.Applied != 1 || res.Stats.Flagged != 1 {
		t.Errorf("stats = %+v", res.Stats)
	}
}

func TestReplayRouteStopOrderPreserved(t *testing.T) {
	var stmts []string
	for _, seq := range []string{"2", "1", "2"} {
		stmts = append(stmts, insertSQL(TableRouteStopFile, routeStopRow("5", "1", seq)...))
	}
	res := mustReplay(t, stmts, Options{})
	if n := len(res.Store.RouteStopFile); n != 3 {
		t.Fatalf("got %d rows, want 3 (no dedup)", n)
	}
	for i, want := range []string{"2", "1", "2"} {
		if got := res.Store.RouteStopFile[i].StopSeq; got != want {
			t.Errorf("row %d seq = %s, want %s", i, got, want)
		}
	}
	ordered := res.Store.RouteStops("5", "1")
	if ordered[0].StopSeq != "1" {
		t.Errorf("RouteStops not sorted: %v", ordered)
	}
}

func TestReplayRouteStopDelete(t *testing.T) {
	stmts := []string{
		insertSQL(TableRouteStopFile, routeStopRow("5", "1", "1")...),
		insertSQL(TableRouteStopFile, routeStopRow("5", "1", "2")...),
		"DELETE FROM kmb_routestopfile WHERE route_no = '5' AND bound = '1' AND stop_seq = '1'",
	}

	t.Run("report only", func(t *testing.T) {
		res := mustReplay(t, stmts, Options{})
		if n := len(res.Store.RouteStopFile); n != 2 {
			t.Errorf("got %d rows, want 2", n)
		}
		if len(res.Diagnostics) != 1 {
			t.Fatalf("got %d diagnostics, want 1", len(res.Diagnostics))
		}
		d := res.Diagnostics[0]
		if d.Type != diag.TypeRouteStopDelete || d.Index != 2 || d.Detail["stop_seq"] != "1" {
			t.Errorf("unexpected diagnostic %+v", d)
		}
		if res.Stats.Applied != 2 || res.Stats.Flagged != 1 {
			t.Errorf("stats = %+v, want 2 applied and the delete flagged", res.Stats)
		}
	})

	t.Run("applied", func(t *testing.T) {
		res := mustReplay(t, stmts, Options{ApplyRouteStopDeletes: true})
		if n := len(res.Store.RouteStopFile); n != 1 {
			t.Fatalf("got %d rows, want 1", n)
		}
		if res.Store.RouteStopFile[0].StopSeq != "2" {
			t.Errorf("wrong row removed")
		}
		if len(res.Diagnostics) != 0 {
			t.Errorf("unexpected diagnostics %v", diagTypes(res.Diagnostics))
		}
	})

	t.Run("bad key", func(t *testing.T) {
		res := mustReplay(t, []string{"DELETE FROM kmb_routestopfile WHERE route_no = '5'"}, Options{ApplyRouteStopDeletes: true})
		if got := diagTypes(res.Diagnostics); len(got) != 1 || got[0] != diag.TypeUnrecognizedDeleteKey {
			t.Errorf("diagnostics = %v", got)
		}
	})
}

func TestReplayFeedOrderDependence(t *testing.T) {
	ins1 := insertSQL(TableStopInfo, "K1", "1", "v1", "", "", "", "", "22.3", "114.1")
	ins2 := insertSQL(TableStopInfo, "K1", "1", "v2", "", "", "", "", "22.3", "114.1")
	del := "DELETE FROM kmb_RS_stopinfo WHERE stop_code = 'K1'"

	res := mustReplay(t, []string{ins1, del, ins2}, Options{})
	if s, ok := res.Store.Stop("K1"); !ok || s.EngLoc != "v2" {
		t.Errorf("insert-delete-insert: got %+v, %v", s, ok)
	}

	res = mustReplay(t, []string{ins1, ins2, del}, Options{})
	if _, ok := res.Store.Stop("K1"); ok {
		t.Error("insert-insert-delete: K1 should be gone")
	}
}

func TestReplayUnhandledTables(t *testing.T) {
	stmts := []string{
		"INSERT INTO kmb_businfo VALUES ('a','b','c')",
		"INSERT INTO kmb_routefreqfile VALUES ('1','2')",
		"DELETE FROM kmb_areasearchfile WHERE id = '1'",
		"INSERT INTO something_else VALUES (1)",
	}
	res := mustReplay(t, stmts, Options{})
	if res.Store.Counts().Total() != 0 {
		t.Errorf("store mutated: %+v", res.Store.Counts())
	}
	if res.Stats.Skipped != 4 || res.Stats.Applied != 0 {
		t.Errorf("stats = %+v", res.Stats)
	}
	if len(res.Diagnostics) != 0 {
		t.Errorf("unexpected diagnostics %v", diagTypes(res.Diagnostics))
	}
}

func TestReplayEndToEnd(t *testing.T) {
	stmts := []string{
		stopInsert("HO06-S-1000-0", "1"),
		"   ",
		routeMasterInsert("66X"),
		"DELETE FROM kmb_RS_stopinfo WHERE stop_code = 'HO06-S-1000-0'",
	}
	res := mustReplay(t, stmts, Options{})
	if n := len(res.Store.StopInfo); n != 0 {
		t.Errorf("stopinfo has %d records, want 0", n)
	}
	if n := len(res.Store.RouteMaster); n != 1 {
		t.Fatalf("routemaster has %d records, want 1", n)
	}
	r, _ := res.Store.Route("66X")
	if r.Suffix == nil || *r.Suffix != "X" || r.Prefix != nil {
		t.Errorf("unexpected prefix/suffix %+v", r)
	}
	want := Stats{Statements: 3, Applied: 3, Blank: 1}
	if res.Stats != want {
		t.Errorf("stats = %+v, want %+v", res.Stats, want)
	}
}

func TestReplaySpecialNote(t *testing.T) {
	stmts := []string{
		insertSQL(TableSpecialNote, "ST01", "note", "註"),
		insertSQL(TableSpecialNote, "ST02", "other", "其他"),
		"DELETE FROM kmb_specialnote WHERE route = 'ST01'",
		"DELETE FROM kmb_specialnote WHERE stop_code = 'ST02'",
	}
	res := mustReplay(t, stmts, Options{})
	if _, ok := res.Store.SpecialNote["ST01"]; ok {
		t.Error("ST01 should be deleted via the route column")
	}
	if n, ok := res.Store.SpecialNote["ST02"]; !ok || n.TC != "其他" {
		t.Errorf("ST02 = %+v, %v", n, ok)
	}
	if got := diagTypes(res.Diagnostics); len(got) != 1 || got[0] != diag.TypeUnrecognizedDeleteKey {
		t.Errorf("diagnostics = %v", got)
	}
}

func TestReplayShortRowsAndOtherKinds(t *testing.T) {
	stmts := []string{
		"INSERT INTO kmb_RS_stopinfo VALUES ('a','b')",
		"INSERT INTO kmb_routemaster VALUES ('1','x','2')",
		"INSERT INTO kmb_specialnote VALUES ('a')",
		"UPDATE kmb_routemaster SET cost = '1' WHERE route_no = '1'",
		"DELETE FROM kmb_routemaster",
	}
	res := mustReplay(t, stmts, Options{})
	if res.Store.Counts().Total() != 0 {
		t.Errorf("store mutated: %+v", res.Store.Counts())
	}
	want := []diag.Type{
		diag.TypeUnrecognizedShape,
		diag.TypeUnrecognizedShape,
		diag.TypeUnrecognizedShape,
		diag.TypeUnhandledStatement,
		diag.TypeUnrecognizedDeleteKey,
	}
	got := diagTypes(res.Diagnostics)
	if len(got) != len(want) {
		t.Fatalf("diagnostics = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("diag %d = %s, want %s", i, got[i], want[i])
		}
	}
	if res.Diagnostics[3].Table != TableRouteMaster {
		t.Errorf("table = %q", res.Diagnostics[3].Table)
	}
}

func TestReplayDDLOnKnownTable(t *testing.T) {
	stmts := []string{
		"CREATE TABLE kmb_RS_stopinfo (stop_code varchar(20))",
		"DROP TABLE kmb_routemaster",
		"INSERT INTO kmb_specialnote VALUES ('A','C:\\path','c')",
	}
	res := mustReplay(t, stmts, Options{})

	want := []struct {
		typ   diag.Type
		table string
	}{
		{diag.TypeUnhandledStatement, TableStopInfo},
		{diag.TypeUnhandledStatement, TableRouteMaster},
	}
	if len(res.Diagnostics) != len(want) {
		t.Fatalf("diagnostics = %v, want %d", diagTypes(res.Diagnostics), len(want))
	}
	for i, w := range want {
		if d := res.Diagnostics[i]; d.Type != w.typ || d.Table != w.table {
			t.Errorf("diag %d = %s on %q, want %s on %q", i, d.Type, d.Table, w.typ, w.table)
		}
	}
	if res.Stats.Skipped != 0 || res.Stats.Flagged != 2 {
		t.Errorf("stats = %+v", res.Stats)
	}
	if n, ok := res.Store.SpecialNote["A"]; !ok || n.EN != `C:\path` {
		t.Errorf("note = %+v, want backslash kept", n)
	}
}

func TestReplayCaseInsensitiveTable(t *testing.T) {
	res := mustReplay(t, []string{strings.Replace(routeMasterInsert("1"), TableRouteMaster, "KMB_ROUTEMASTER", 1)}, Options{})
	if _, ok := res.Store.Route("1"); !ok {
		t.Error("upper-case table name not routed")
	}
}

func TestReplayAreaFileIgnored(t *testing.T) {
	res := mustReplay(t, []string{"INSERT INTO kmb_areafile VALUES ('K','Kowloon')"}, Options{})
	if len(res.Store.AreaFile) != 0 || len(res.Diagnostics) != 0 {
		t.Errorf("area file should be a no-op: %+v", res.Store.AreaFile)
	}
}

func TestReplayUnparseable(t *testing.T) {
	stmts := []string{routeMasterInsert("1"), "INSERT INTO (", routeMasterInsert("2")}

	t.Run("fatal", func(t *testing.T) {
		_, err := Replay(stmts, Options{})
		var se *StatementError
		if !errors.As(err, &se) {
			t.Fatalf("got %v, want StatementError", err)
		}
		if se.Index != 1 || se.Raw != "INSERT INTO (" {
			t.Errorf("unexpected error %+v", se)
		}
	})

	t.Run("skipped", func(t *testing.T) {
		res := mustReplay(t, stmts, Options{SkipUnparseable: true})
		if len(res.Store.RouteMaster) != 2 {
			t.Errorf("got %d routes, want 2", len(res.Store.RouteMaster))
		}
		if got := diagTypes(res.Diagnostics); len(got) != 1 || got[0] != diag.TypeUnparseableStatement {
			t.Errorf("diagnostics = %v", got)
		}
		if res.Diagnostics[0].Severity != diag.SeverityHigh {
			t.Errorf("severity = %s", res.Diagnostics[0].Severity)
		}
	})
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		table string
		want  Kind
	}{
		{"kmb_RS_stopinfo", KindStopInfo},
		{"kmb_rs_stopinfo", KindStopInfo},
		{"kmb_specialnote", KindSpecialNote},
		{"kmb_routemaster", KindRouteMaster},
		{"kmb_routestopfile", KindRouteStopFile},
		{"kmb_areafile", KindAreaFile},
		{"kmb_businfo", KindUnhandled},
		{"", KindUnhandled},
	}
	for _, tt := range tests {
		if got := KindOf(tt.table); got != tt.want {
			t.Errorf("KindOf(%q) = %v, want %v", tt.table, got, tt.want)
		}
	}
}
