package reporter

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/ppiankov/kmbfeed/internal/tables"
)

// WriteTables prints the materialized tables of store. SARIF has no
// representation for records and is rejected.
func WriteTables(w io.Writer, store *tables.Store, format Format) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, store)
	case FormatSARIF:
		return fmt.Errorf("tables cannot be written as %s", format)
	default:
		return writeTablesText(w, store)
	}
}

func writeTablesText(w io.Writer, store *tables.Store) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	counts := store.Counts()

	fmt.Fprintf(tw, "%s (%d)\n", tables.TableStopInfo, counts.StopInfo)
	fmt.Fprintln(tw, "  STOP_CODE\tROUTE\tNAME\tLAT\tLNG")
	for _, code := range store.StopCodes() {
		s := store.StopInfo[code]
		fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\t%s\n", s.StopCode, s.RouteNo, s.StopName, s.Lat, s.Lng)
	}

	fmt.Fprintf(tw, "\n%s (%d)\n", tables.TableRouteMaster, counts.RouteMaster)
	fmt.Fprintln(tw, "  ROUTE\tPREFIX\tSUFFIX\tCOST\tKM\tMINS\tTYPE")
	for _, no := range store.RouteNumbers() {
		r := store.RouteMaster[no]
		fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			r.RouteNo, deref(r.Prefix), deref(r.Suffix), r.Cost, r.LengthKM, r.TimeMins, r.Type)
	}

	fmt.Fprintf(tw, "\n%s (%d)\n", tables.TableRouteStopFile, counts.RouteStopFile)
	fmt.Fprintln(tw, "  ROUTE\tBOUND\tSEQ\tSTOP_ID\tNAME\tPRICE")
	for _, rs := range store.RouteStopFile {
		fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\t%s\t%s\n",
			rs.RouteNo, rs.Bound, rs.StopSeq, rs.StopID, rs.ENStopName, rs.Price)
	}

	fmt.Fprintf(tw, "\n%s (%d)\n", tables.TableSpecialNote, counts.SpecialNote)
	for _, code := range store.NoteCodes() {
		n := store.SpecialNote[code]
		fmt.Fprintf(tw, "  %s\t%s\n", n.StopCode, n.EN)
	}

	return tw.Flush()
}

func deref(s *string) string {
	if s == nil {
		return "-"
	}
	return *s
}
