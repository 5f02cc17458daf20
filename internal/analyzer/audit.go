package analyzer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ppiankov/kmbfeed/internal/diag"
	"github.com/ppiankov/kmbfeed/internal/tables"
)

// noIndex marks diagnostics that do not point at a feed statement.
const noIndex = -1

// Audit checks a replayed store for records that are individually
// well-formed but inconsistent with the rest of the feed.
func Audit(store *tables.Store, opts AuditOptions) []diag.Diagnostic {
	excluded := make(map[string]bool, len(opts.ExcludeTables))
	for _, t := range opts.ExcludeTables {
		excluded[strings.ToLower(t)] = true
	}
	skip := func(table string) bool { return excluded[strings.ToLower(table)] }

	var diags []diag.Diagnostic

	if !skip(tables.TableStopInfo) {
		diags = append(diags, detectBadCoordinates(store, opts.Bounds)...)
	}
	if !skip(tables.TableRouteStopFile) {
		diags = append(diags, detectUnknownRoutes(store)...)
		diags = append(diags, detectDuplicateRouteStops(store.RouteStopFile)...)
	}

	return diags
}

func newDiagnostic(t diag.Type, table, msg string, detail map[string]string) diag.Diagnostic {
	return diag.Diagnostic{
		Type:     t,
		Severity: diag.DefaultSeverity(t),
		Table:    table,
		Index:    noIndex,
		Message:  msg,
		Detail:   detail,
	}
}

func detectBadCoordinates(store *tables.Store, bounds BoundingBox) []diag.Diagnostic {
	var diags []diag.Diagnostic
	for _, code := range store.StopCodes() {
		s := store.StopInfo[code]
		detail := map[string]string{"stop_code": code, "lat": s.Lat, "lng": s.Lng}

		lat, latErr := strconv.ParseFloat(strings.TrimSpace(s.Lat), 64)
		lng, lngErr := strconv.ParseFloat(strings.TrimSpace(s.Lng), 64)
		if latErr != nil || lngErr != nil {
			diags = append(diags, newDiagnostic(diag.TypeBadCoordinates, tables.TableStopInfo,
				fmt.Sprintf("stop %q has non-numeric coordinates", code), detail))
			continue
		}
		if !bounds.Contains(lat, lng) {
			diags = append(diags, newDiagnostic(diag.TypeBadCoordinates, tables.TableStopInfo,
				fmt.Sprintf("stop %q lies outside the service area", code), detail))
		}
	}
	return diags
}

// detectUnknownRoutes flags route stops whose route is missing from a
// non-empty route master. An empty master means the feed did not carry it.
func detectUnknownRoutes(store *tables.Store) []diag.Diagnostic {
	if len(store.RouteMaster) == 0 {
		return nil
	}
	seen := make(map[string]bool)
	var diags []diag.Diagnostic
	for _, rs := range store.RouteStopFile {
		if _, ok := store.Route(rs.RouteNo); ok || seen[rs.RouteNo] {
			continue
		}
		seen[rs.RouteNo] = true
		diags = append(diags, newDiagnostic(diag.TypeUnknownRoute, tables.TableRouteStopFile,
			fmt.Sprintf("route %q has stops but no route master entry", rs.RouteNo),
			map[string]string{"route_no": rs.RouteNo}))
	}
	return diags
}

func detectDuplicateRouteStops(rows []tables.RouteStopRecord) []diag.Diagnostic {
	counts := make(map[tables.RouteStopKey]int)
	var order []tables.RouteStopKey
	for _, rs := range rows {
		k := rs.Key()
		if counts[k] == 0 {
			order = append(order, k)
		}
		counts[k]++
	}

	var diags []diag.Diagnostic
	for _, k := range order {
		if n := counts[k]; n > 1 {
			diags = append(diags, newDiagnostic(diag.TypeDuplicateRouteStop, tables.TableRouteStopFile,
				fmt.Sprintf("route %s bound %s seq %s appears %d times", k.RouteNo, k.Bound, k.StopSeq, n),
				map[string]string{
					"route_no": k.RouteNo,
					"bound":    k.Bound,
					"stop_seq": k.StopSeq,
					"count":    strconv.Itoa(n),
				}))
		}
	}
	return diags
}
