package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ppiankov/kmbfeed/internal/tables"
)

// routeView is the json shape of the route command.
type routeView struct {
	Route tables.RouteRecord       `json:"route"`
	Bound string                   `json:"bound"`
	Stops []tables.RouteStopRecord `json:"stops"`
	Notes []tables.NoteRecord      `json:"notes,omitempty"`
}

func newRouteCmd() *cobra.Command {
	var (
		bound  string
		file   string
		date   string
		format string
	)

	cmd := &cobra.Command{
		Use:   "route ROUTE",
		Short: "Show one route and its stops from the replayed POI feed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := feedDay(date)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.TimeoutDuration())
			defer cancel()

			data, err := readFeed(ctx, file, day)
			if err != nil {
				return err
			}
			res, err := replayFeed(data)
			if err != nil {
				return err
			}

			view, err := lookupRoute(res.Store, args[0], bound)
			if err != nil {
				return err
			}
			if format == "json" {
				return writeJSON(cmd.OutOrStdout(), view)
			}
			return writeRoute(cmd.OutOrStdout(), res.Store, view)
		},
	}

	cmd.Flags().StringVar(&bound, "bound", "1", "route direction: 1 or 2")
	cmd.Flags().StringVar(&file, "file", "", "read the feed document from a file instead of downloading it")
	cmd.Flags().StringVar(&date, "date", "", "feed date as YYYYMMDD (default: today in Hong Kong)")
	cmd.Flags().StringVar(&format, "format", "text", "output format: text or json")
	return cmd
}

func lookupRoute(store *tables.Store, routeNo, bound string) (*routeView, error) {
	route, ok := store.Route(routeNo)
	if !ok {
		return nil, fmt.Errorf("route %s not in feed", routeNo)
	}
	view := &routeView{Route: route, Bound: bound, Stops: store.RouteStops(routeNo, bound)}
	seen := make(map[string]bool)
	for _, rs := range view.Stops {
		n, ok := store.SpecialNote[rs.StopID]
		if !ok || seen[n.StopCode] {
			continue
		}
		seen[n.StopCode] = true
		view.Notes = append(view.Notes, n)
	}
	return view, nil
}

func writeRoute(w io.Writer, store *tables.Store, view *routeView) error {
	r := view.Route
	fmt.Fprintf(w, "Route %s bound %s: %s km, %s min, fare %s\n", r.RouteNo, view.Bound, r.LengthKM, r.TimeMins, r.Cost)
	if len(view.Stops) == 0 {
		_, err := fmt.Fprintln(w, "No stops.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SEQ\tSTOP\tNAME\tLAT\tLNG")
	for _, rs := range view.Stops {
		name := rs.ENStopName
		var lat, lng string
		if s, ok := store.Stop(rs.StopID); ok {
			lat, lng = s.Lat, s.Lng
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", rs.StopSeq, rs.StopID, name, lat, lng)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	for _, n := range view.Notes {
		fmt.Fprintf(w, "Note %s: %s\n", n.StopCode, n.EN)
	}
	return nil
}
