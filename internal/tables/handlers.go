package tables

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/ppiankov/kmbfeed/internal/diag"
	"github.com/ppiankov/kmbfeed/internal/sqlstmt"
)

const (
	stopInfoFields    = 9
	specialNoteFields = 3
	routeMasterFields = 6
	routeStopFields   = 23
	routeStopShort    = 22
)

type stopInfoHandler struct {
	table map[string]StopRecord
}

func (h *stopInfoHandler) apply(stmt *sqlstmt.Statement, in *inspection) {
	switch {
	case stmt.Kinds.Has(sqlstmt.KindInsert):
		row := stmt.FirstRow()
		if len(row) < stopInfoFields {
			in.flag(diag.TypeUnrecognizedShape, stmt, shortRowMessage(len(row), stopInfoFields), fieldsDetail(len(row)))
			return
		}
		rec := StopRecord{
			StopCode:    row[0].Text,
			RouteNo:     row[1].Text,
			EngLoc:      row[2].Text,
			ChiLoc:      row[3].Text,
			CnLoc:       row[4].Text,
			StopName:    row[5].Text,
			StopNameChi: row[6].Text,
			Lat:         row[7].Text,
			Lng:         row[8].Text,
		}
		h.table[rec.StopCode] = rec
	case stmt.Kinds.Has(sqlstmt.KindDelete):
		if key, ok := deleteKey(stmt, "stop_code", in); ok {
			delete(h.table, key)
		}
	default:
		in.flag(diag.TypeUnhandledStatement, stmt, unhandledMessage(stmt), nil)
	}
}

// specialNoteHandler keys rows by stop code but deletes by the "route"
// column, which is how the feed issues special-note deletions.
type specialNoteHandler struct {
	table map[string]NoteRecord
}

func (h *specialNoteHandler) apply(stmt *sqlstmt.Statement, in *inspection) {
	switch {
	case stmt.Kinds.Has(sqlstmt.KindInsert):
		row := stmt.FirstRow()
		if len(row) < specialNoteFields {
			in.flag(diag.TypeUnrecognizedShape, stmt, shortRowMessage(len(row), specialNoteFields), fieldsDetail(len(row)))
			return
		}
		rec := NoteRecord{StopCode: row[0].Text, EN: row[1].Text, TC: row[2].Text}
		h.table[rec.StopCode] = rec
	case stmt.Kinds.Has(sqlstmt.KindDelete):
		if key, ok := deleteKey(stmt, "route", in); ok {
			delete(h.table, key)
		}
	default:
		in.flag(diag.TypeUnhandledStatement, stmt, unhandledMessage(stmt), nil)
	}
}

type routeMasterHandler struct {
	table map[string]RouteRecord
}

func (h *routeMasterHandler) apply(stmt *sqlstmt.Statement, in *inspection) {
	switch {
	case stmt.Kinds.Has(sqlstmt.KindInsert):
		row := stmt.FirstRow()
		if len(row) < routeMasterFields {
			in.flag(diag.TypeUnrecognizedShape, stmt, shortRowMessage(len(row), routeMasterFields), fieldsDetail(len(row)))
			return
		}
		rec := RouteRecord{
			RouteNo:  row[0].Text,
			Cost:     row[2].Text,
			LengthKM: row[3].Text,
			TimeMins: row[4].Text,
			Type:     row[5].Text,
			Prefix:   RoutePrefix(row[0].Text),
			Suffix:   RouteSuffix(row[0].Text),
		}
		h.table[rec.RouteNo] = rec
	case stmt.Kinds.Has(sqlstmt.KindDelete):
		if key, ok := deleteKey(stmt, "route_no", in); ok {
			delete(h.table, key)
		}
	default:
		in.flag(diag.TypeUnhandledStatement, stmt, unhandledMessage(stmt), nil)
	}
}

// RoutePrefix returns the leading character of routeNo when it is not a digit.
func RoutePrefix(routeNo string) *string {
	if routeNo == "" {
		return nil
	}
	r := []rune(routeNo)
	return nonDigit(r[0])
}

// RouteSuffix returns the trailing character of routeNo when it is not a digit.
func RouteSuffix(routeNo string) *string {
	if routeNo == "" {
		return nil
	}
	r := []rune(routeNo)
	return nonDigit(r[len(r)-1])
}

func nonDigit(r rune) *string {
	if r >= '0' && r <= '9' {
		return nil
	}
	s := string(r)
	return &s
}

type routeStopHandler struct {
	table        *[]RouteStopRecord
	applyDeletes bool
}

var routeStopDeleteKey = []string{"route_no", "bound", "stop_seq"}

func (h *routeStopHandler) apply(stmt *sqlstmt.Statement, in *inspection) {
	switch {
	case stmt.Kinds.Has(sqlstmt.KindInsert):
		row := stmt.FirstRow()
		switch len(row) {
		case routeStopFields:
			*h.table = append(*h.table, routeStopFromRow(row))
		case routeStopShort:
			in.flag(diag.TypeUnrecognizedShape, stmt,
				"22-field route-stop row has no known mapping", fieldsDetail(len(row)))
		default:
			in.flag(diag.TypeUnrecognizedShape, stmt,
				fmt.Sprintf("route-stop row has %d fields, expected %d", len(row), routeStopFields), fieldsDetail(len(row)))
		}
	case stmt.Kinds.Has(sqlstmt.KindDelete):
		key, ok := routeStopKey(stmt)
		if !ok {
			in.flag(diag.TypeUnrecognizedDeleteKey, stmt,
				"route-stop delete must filter on route_no, bound, stop_seq", whereDetail(stmt))
			return
		}
		detail := map[string]string{"route_no": key.RouteNo, "bound": key.Bound, "stop_seq": key.StopSeq}
		if !h.applyDeletes {
			in.flag(diag.TypeRouteStopDelete, stmt, "route-stop delete reported, not applied", detail)
			return
		}
		idx := slices.IndexFunc(*h.table, func(r RouteStopRecord) bool { return r.Key() == key })
		if idx < 0 {
			in.flag(diag.TypeRouteStopDelete, stmt, "route-stop delete matched no record", detail)
			return
		}
		*h.table = slices.Delete(*h.table, idx, idx+1)
	default:
		in.flag(diag.TypeUnhandledStatement, stmt, unhandledMessage(stmt), nil)
	}
}

func routeStopFromRow(row []sqlstmt.Token) RouteStopRecord {
	// row[4] is always zero in the feed
	return RouteStopRecord{
		RouteNo:    row[0].Text,
		Bound:      row[1].Text,
		StopSeq:    row[2].Text,
		Area:       row[3].Text,
		Price:      row[5].Text,
		ENRoad:     row[6].Text,
		ENDistrict: row[7].Text,
		ENLampost:  row[8].Text,
		ENLandmark: row[9].Text,
		TCRoad:     row[10].Text,
		TCDistrict: row[11].Text,
		TCLampost:  row[12].Text,
		TCLandmark: row[13].Text,
		SCRoad:     row[14].Text,
		SCDistrict: row[15].Text,
		SCLampost:  row[16].Text,
		SCLandmark: row[17].Text,
		StopID:     row[18].Text,
		ENStopName: row[19].Text,
		TCStopName: row[20].Text,
		SCStopName: row[21].Text,
		District:   row[22].Text,
	}
}

func routeStopKey(stmt *sqlstmt.Statement) (RouteStopKey, bool) {
	if len(stmt.Where) != len(routeStopDeleteKey) {
		return RouteStopKey{}, false
	}
	vals := make([]string, len(routeStopDeleteKey))
	for i, col := range routeStopDeleteKey {
		w := stmt.Where[i]
		if !strings.EqualFold(w.Column, col) {
			return RouteStopKey{}, false
		}
		tok, ok := w.First()
		if !ok {
			return RouteStopKey{}, false
		}
		vals[i] = tok.Text
	}
	return RouteStopKey{RouteNo: vals[0], Bound: vals[1], StopSeq: vals[2]}, true
}

// areaFileHandler ignores every statement until the row shape is known.
type areaFileHandler struct{}

func (areaFileHandler) apply(*sqlstmt.Statement, *inspection) {}

// deleteKey returns the first value of where[0] when its column is column.
// Any other shape is flagged and no deletion happens.
func deleteKey(stmt *sqlstmt.Statement, column string, in *inspection) (string, bool) {
	if len(stmt.Where) == 0 {
		in.flag(diag.TypeUnrecognizedDeleteKey, stmt, "delete has no WHERE clause", nil)
		return "", false
	}
	w := stmt.Where[0]
	if !strings.EqualFold(w.Column, column) {
		in.flag(diag.TypeUnrecognizedDeleteKey, stmt,
			fmt.Sprintf("delete filters on %q, expected %q", w.Column, column), whereDetail(stmt))
		return "", false
	}
	tok, ok := w.First()
	if !ok {
		in.flag(diag.TypeUnrecognizedDeleteKey, stmt, "delete key has no value", whereDetail(stmt))
		return "", false
	}
	return tok.Text, true
}

func shortRowMessage(got, want int) string {
	return fmt.Sprintf("row has %d fields, need at least %d", got, want)
}

func unhandledMessage(stmt *sqlstmt.Statement) string {
	return fmt.Sprintf("%s statement is not applied to this table", stmt.Kinds)
}

func fieldsDetail(n int) map[string]string {
	return map[string]string{"fields": strconv.Itoa(n)}
}

func whereDetail(stmt *sqlstmt.Statement) map[string]string {
	cols := make([]string, 0, len(stmt.Where))
	for _, w := range stmt.Where {
		cols = append(cols, w.Column)
	}
	return map[string]string{"where": strings.Join(cols, ",")}
}
